package main

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/roomsync/internal/application"
	"github.com/example/roomsync/internal/scheduler"
	"github.com/example/roomsync/internal/testfixtures"
)

func TestRepositoryAdapters(t *testing.T) {
	for name, newStore := range testfixtures.Stores() {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			store := newStore(t)
			factory := testfixtures.NewServiceFactory(
				testfixtures.WithClock(testfixtures.NewClock(time.Time{})),
				testfixtures.WithIDGenerator(testfixtures.NewIDGenerator("entry")),
				testfixtures.WithSundayPolicy(scheduler.SundayClosed),
			)
			now := factory.Clock.NowFunc()

			roomRepo := newRoomRepositoryAdapter(store.Rooms(), now)
			rooms := factory.NewRoomService(testfixtures.RoomServiceDeps{Rooms: roomRepo})
			created, err := rooms.SeedRooms(ctx, []application.Room{
				testfixtures.NewRoomFixture(testfixtures.WithRoomID("cc101")).Application(),
				testfixtures.NewRoomFixture(testfixtures.WithRoomID("cc201")).Application(),
			})
			require.NoError(t, err)
			require.Equal(t, 2, created)

			schedules := factory.NewScheduleService(testfixtures.ScheduleServiceDeps{
				Entries: newScheduleRepositoryAdapter(store.Schedules(), now),
				Rooms:   rooms,
			})
			month := testfixtures.NewEntryFixture(
				testfixtures.WithEntryID("s1"),
				testfixtures.WithEntryValidity(testfixtures.ReferenceDate(), testfixtures.ReferenceDate().AddDays(30)),
			)
			seeded, err := schedules.Seed(ctx, []scheduler.Entry{month.Entry})
			require.NoError(t, err)
			require.Equal(t, 1, seeded)

			admin := application.Principal{UserID: "admin", Role: application.RoleAdmin}
			input := application.ClassInput{
				RoomID:  "cc101",
				Subject: "Data Structures",
				Teacher: "Dr. Smith",
				Day:     scheduler.Monday,
				Start:   scheduler.Clock(10, 0),
				End:     scheduler.Clock(11, 0),
			}
			_, err = schedules.AddClass(ctx, application.AddClassParams{Principal: admin, Input: input})
			var rejection *scheduler.RejectionError
			require.True(t, errors.As(err, &rejection), "expected a conflict with the seeded class, got %v", err)

			input.Start = scheduler.Clock(10, 30)
			input.End = scheduler.Clock(12, 0)
			entry, err := schedules.AddClass(ctx, application.AddClassParams{Principal: admin, Input: input})
			require.NoError(t, err)
			assert.Equal(t, "entry-1", entry.ID)
			assert.Equal(t, []string{"entry-1"}, factory.IDGenerator.Issued(), "rejected classes must not consume identifiers")
			assert.Equal(t, testfixtures.ReferenceDate(), entry.StartDate)

			listed, err := schedules.Entries(ctx)
			require.NoError(t, err)
			require.Len(t, listed, 2)
			assert.Equal(t, month.Entry, listed[0])
			assert.Equal(t, entry, listed[1])

			occupancy := factory.NewOccupancyService(testfixtures.OccupancyServiceDeps{Rooms: roomRepo, Entries: schedules})
			assert.Equal(t, scheduler.SundayClosed, occupancy.Policy())
			snapshot, err := occupancy.Snapshot(ctx, nil)
			require.NoError(t, err)
			require.Len(t, snapshot.Rooms, 2)
			require.NotNil(t, snapshot.Rooms[0].Occupant)
			assert.Equal(t, "s1", snapshot.Rooms[0].Occupant.ID)
			require.NotNil(t, snapshot.Rooms[0].Next)
			assert.Equal(t, "entry-1", snapshot.Rooms[0].Next.ID)
			assert.True(t, snapshot.Rooms[1].Free())

			factory.Clock.SetSlot(scheduler.Monday, scheduler.Clock(11, 0))
			later := factory.Clock.Context(occupancy.Policy())
			snapshot, err = occupancy.Snapshot(ctx, &later)
			require.NoError(t, err)
			require.NotNil(t, snapshot.Rooms[0].Occupant)
			assert.Equal(t, "entry-1", snapshot.Rooms[0].Occupant.ID)
			assert.Nil(t, snapshot.Rooms[0].Next)
		})
	}
}

func TestUserRepositoryAdapter(t *testing.T) {
	for name, newStore := range testfixtures.Stores() {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			factory := testfixtures.NewServiceFactory()
			users := newUserRepositoryAdapter(newStore(t).Users())

			pending := testfixtures.NewUserFixture(testfixtures.WithUserStatus(application.StatusPending))
			require.NoError(t, users.CreateUser(ctx, pending.Application()))

			factory.Clock.Advance(time.Hour)
			svc := factory.NewUserService(testfixtures.UserServiceDeps{Users: users})
			admin := application.Principal{UserID: "admin", Role: application.RoleAdmin}
			_, err := svc.Approve(ctx, admin, pending.ID)
			require.NoError(t, err)

			stored, err := users.GetUserByEmail(ctx, pending.Email)
			require.NoError(t, err)
			assert.Equal(t, application.StatusApproved, stored.Status)
			assert.Equal(t, application.RoleTeacher, stored.Role)
			assert.True(t, stored.UpdatedAt.Equal(factory.Clock.Current()))
			assert.True(t, stored.CreatedAt.Equal(pending.CreatedAt))
		})
	}
}

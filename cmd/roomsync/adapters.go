package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/example/roomsync/internal/application"
	"github.com/example/roomsync/internal/auth"
	"github.com/example/roomsync/internal/persistence"
	"github.com/example/roomsync/internal/scheduler"
)

type scheduleRepositoryAdapter struct {
	repo persistence.ScheduleRepository
	now  func() time.Time
}

func newScheduleRepositoryAdapter(repo persistence.ScheduleRepository, now func() time.Time) *scheduleRepositoryAdapter {
	return &scheduleRepositoryAdapter{repo: repo, now: now}
}

func (a *scheduleRepositoryAdapter) CreateEntry(ctx context.Context, entry scheduler.Entry) error {
	return a.repo.CreateSchedule(ctx, toPersistenceSchedule(entry, a.now()))
}

func (a *scheduleRepositoryAdapter) GetEntry(ctx context.Context, id string) (scheduler.Entry, error) {
	stored, err := a.repo.GetSchedule(ctx, id)
	if err != nil {
		return scheduler.Entry{}, err
	}
	return toSchedulerEntry(stored)
}

func (a *scheduleRepositoryAdapter) DeleteEntry(ctx context.Context, id string) error {
	return a.repo.DeleteSchedule(ctx, id)
}

func (a *scheduleRepositoryAdapter) ListEntries(ctx context.Context, filter application.EntryFilter) ([]scheduler.Entry, error) {
	persistedFilter := persistence.ScheduleFilter{
		RoomID:   filter.RoomID,
		Section:  filter.Section,
		BookedBy: filter.BookedBy,
		Kind:     string(filter.Kind),
	}
	if filter.Day != nil {
		persistedFilter.Day = filter.Day.String()
	}

	models, err := a.repo.ListSchedules(ctx, persistedFilter)
	if err != nil {
		return nil, err
	}
	entries := make([]scheduler.Entry, 0, len(models))
	for _, model := range models {
		entry, err := toSchedulerEntry(model)
		if err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

func toPersistenceSchedule(entry scheduler.Entry, createdAt time.Time) persistence.ScheduleItem {
	return persistence.ScheduleItem{
		ID:        entry.ID,
		RoomID:    entry.RoomID,
		Subject:   entry.Subject,
		Section:   entry.Section,
		Teacher:   entry.Teacher,
		Day:       entry.Day.String(),
		StartTime: entry.Start.String(),
		EndTime:   entry.End.String(),
		StartDate: entry.StartDate.String(),
		EndDate:   entry.EndDate.String(),
		Color:     entry.Color,
		Kind:      string(entry.Kind),
		BookedBy:  entry.BookedBy,
		CreatedAt: createdAt.UTC(),
	}
}

func toSchedulerEntry(item persistence.ScheduleItem) (scheduler.Entry, error) {
	day, err := scheduler.ParseWeekday(item.Day)
	if err != nil {
		return scheduler.Entry{}, fmt.Errorf("schedule %s: %w", item.ID, err)
	}
	start, err := scheduler.ParseClockTime(item.StartTime)
	if err != nil {
		return scheduler.Entry{}, fmt.Errorf("schedule %s: %w", item.ID, err)
	}
	end, err := scheduler.ParseClockTime(item.EndTime)
	if err != nil {
		return scheduler.Entry{}, fmt.Errorf("schedule %s: %w", item.ID, err)
	}
	startDate, err := scheduler.ParseDate(item.StartDate)
	if err != nil {
		return scheduler.Entry{}, fmt.Errorf("schedule %s: %w", item.ID, err)
	}
	endDate, err := scheduler.ParseDate(item.EndDate)
	if err != nil {
		return scheduler.Entry{}, fmt.Errorf("schedule %s: %w", item.ID, err)
	}
	return scheduler.Entry{
		ID:        item.ID,
		RoomID:    item.RoomID,
		Subject:   item.Subject,
		Section:   item.Section,
		Teacher:   item.Teacher,
		Day:       day,
		Start:     start,
		End:       end,
		StartDate: startDate,
		EndDate:   endDate,
		Color:     item.Color,
		Kind:      scheduler.Kind(item.Kind),
		BookedBy:  item.BookedBy,
	}, nil
}

type roomRepositoryAdapter struct {
	repo persistence.RoomRepository
	now  func() time.Time
}

func newRoomRepositoryAdapter(repo persistence.RoomRepository, now func() time.Time) *roomRepositoryAdapter {
	return &roomRepositoryAdapter{repo: repo, now: now}
}

func (a *roomRepositoryAdapter) CreateRoom(ctx context.Context, room application.Room) error {
	return a.repo.CreateRoom(ctx, persistence.Room{
		ID:        room.ID,
		Name:      room.Name,
		Capacity:  room.Capacity,
		Building:  room.Building,
		Features:  append([]string(nil), room.Features...),
		Image:     room.Image,
		CreatedAt: a.now().UTC(),
	})
}

func (a *roomRepositoryAdapter) GetRoom(ctx context.Context, id string) (application.Room, error) {
	stored, err := a.repo.GetRoom(ctx, id)
	if err != nil {
		return application.Room{}, err
	}
	return toApplicationRoom(stored), nil
}

func (a *roomRepositoryAdapter) ListRooms(ctx context.Context) ([]application.Room, error) {
	models, err := a.repo.ListRooms(ctx)
	if err != nil {
		return nil, err
	}
	rooms := make([]application.Room, 0, len(models))
	for _, model := range models {
		rooms = append(rooms, toApplicationRoom(model))
	}
	return rooms, nil
}

func toApplicationRoom(room persistence.Room) application.Room {
	return application.Room{
		ID:       room.ID,
		Name:     room.Name,
		Capacity: room.Capacity,
		Building: room.Building,
		Features: append([]string(nil), room.Features...),
		Image:    room.Image,
	}
}

type userRepositoryAdapter struct {
	repo persistence.UserRepository
}

func newUserRepositoryAdapter(repo persistence.UserRepository) *userRepositoryAdapter {
	return &userRepositoryAdapter{repo: repo}
}

func (a *userRepositoryAdapter) CreateUser(ctx context.Context, user application.User) error {
	return a.repo.CreateUser(ctx, toPersistenceUser(user))
}

func (a *userRepositoryAdapter) UpdateUser(ctx context.Context, user application.User) error {
	return a.repo.UpdateUser(ctx, toPersistenceUser(user))
}

func (a *userRepositoryAdapter) GetUser(ctx context.Context, id string) (application.User, error) {
	stored, err := a.repo.GetUser(ctx, id)
	if err != nil {
		return application.User{}, err
	}
	return toApplicationUser(stored), nil
}

func (a *userRepositoryAdapter) GetUserByEmail(ctx context.Context, email string) (application.User, error) {
	stored, err := a.repo.GetUserByEmail(ctx, email)
	if err != nil {
		return application.User{}, err
	}
	return toApplicationUser(stored), nil
}

func (a *userRepositoryAdapter) ListUsers(ctx context.Context) ([]application.User, error) {
	models, err := a.repo.ListUsers(ctx)
	if err != nil {
		return nil, err
	}
	users := make([]application.User, 0, len(models))
	for _, model := range models {
		users = append(users, toApplicationUser(model))
	}
	return users, nil
}

func toPersistenceUser(user application.User) persistence.User {
	return persistence.User{
		ID:        user.ID,
		Email:     user.Email,
		Name:      user.Name,
		Role:      string(user.Role),
		Status:    string(user.Status),
		CreatedAt: user.CreatedAt.UTC(),
		UpdatedAt: user.UpdatedAt.UTC(),
	}
}

func toApplicationUser(user persistence.User) application.User {
	role, _ := application.ParseRole(user.Role)
	return application.User{
		ID:        user.ID,
		Email:     user.Email,
		Name:      user.Name,
		Role:      role,
		Status:    application.AccountStatus(user.Status),
		CreatedAt: user.CreatedAt,
		UpdatedAt: user.UpdatedAt,
	}
}

// tokenIssuerAdapter maps principals onto signed token identities.
type tokenIssuerAdapter struct {
	issuer *auth.TokenIssuer
}

func newTokenIssuerAdapter(issuer *auth.TokenIssuer) *tokenIssuerAdapter {
	return &tokenIssuerAdapter{issuer: issuer}
}

func (a *tokenIssuerAdapter) Issue(principal application.Principal, now time.Time) (string, time.Time, error) {
	return a.issuer.Sign(auth.Identity{
		Subject: principal.UserID,
		Role:    string(principal.Role),
		Name:    principal.Name,
		Email:   principal.Email,
	}, now)
}

func (a *tokenIssuerAdapter) Parse(token string, now time.Time) (application.Principal, error) {
	identity, err := a.issuer.Verify(token, now)
	if err != nil {
		return application.Principal{}, err
	}
	role, ok := application.ParseRole(identity.Role)
	if !ok {
		return application.Principal{}, errors.New("token carries an unknown role")
	}
	return application.Principal{
		UserID: identity.Subject,
		Name:   identity.Name,
		Email:  identity.Email,
		Role:   role,
	}, nil
}

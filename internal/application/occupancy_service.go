package application

import (
	"cmp"
	"context"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"time"

	"github.com/example/roomsync/internal/scheduler"
)

// OccupancyService answers which rooms are in use at a time context.
type OccupancyService struct {
	rooms   RoomLister
	entries EntrySource
	clock   TimeSource
	cache   *occupancyCache
	logger  *slog.Logger
}

// NewOccupancyService constructs an occupancy service.
func NewOccupancyService(rooms RoomLister, entries EntrySource, clock TimeSource, now func() time.Time) *OccupancyService {
	return NewOccupancyServiceWithLogger(rooms, entries, clock, now, nil)
}

// NewOccupancyServiceWithLogger constructs an occupancy service with a specified logger.
func NewOccupancyServiceWithLogger(rooms RoomLister, entries EntrySource, clock TimeSource, now func() time.Time, logger *slog.Logger) *OccupancyService {
	return &OccupancyService{
		rooms:   rooms,
		entries: entries,
		clock:   clock,
		cache:   newOccupancyCache(0, 0, now),
		logger:  defaultLogger(logger),
	}
}

func (s *OccupancyService) loggerWith(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	return serviceLogger(ctx, s.logger, "OccupancyService", operation, attrs...)
}

// Invalidate drops cached occupancy. It is registered as a schedule change hook.
func (s *OccupancyService) Invalidate() {
	if s != nil {
		s.cache.Invalidate()
	}
}

// Now returns the current time context.
func (s *OccupancyService) Now() scheduler.TimeContext {
	if s == nil || s.clock == nil {
		return scheduler.ContextAt(time.Now(), scheduler.SundayAsMonday)
	}
	return s.clock.Current()
}

// Policy returns the Sunday policy of the time source, SundayAsMonday when it
// does not expose one.
func (s *OccupancyService) Policy() scheduler.SundayPolicy {
	if s != nil {
		if p, ok := s.clock.(interface{ Policy() scheduler.SundayPolicy }); ok {
			return p.Policy()
		}
	}
	return scheduler.SundayAsMonday
}

// Snapshot reports every room's occupant and next class at tc. A nil tc uses
// the current time context.
func (s *OccupancyService) Snapshot(ctx context.Context, tc *scheduler.TimeContext) (snapshot OccupancySnapshot, err error) {
	if s == nil {
		err = fmt.Errorf("OccupancyService is nil")
		return
	}
	if s.rooms == nil || s.entries == nil {
		err = fmt.Errorf("occupancy sources not configured")
		return
	}

	at := s.Now()
	if tc != nil {
		at = *tc
	}

	rooms, err := s.rooms.ListRooms(ctx)
	if err != nil {
		return
	}
	generation := s.cache.Generation()
	entries, err := s.entries.Entries(ctx)
	if err != nil {
		return
	}

	occupancy := s.resolve(ctx, generation, rooms, entries, at)
	snapshot = OccupancySnapshot{Context: at, Rooms: make([]RoomStatus, 0, len(rooms))}
	for _, room := range rooms {
		status := RoomStatus{Room: room, Occupant: occupancy[room.ID]}
		if next, ok := scheduler.NextUpcoming(room.ID, entries, at); ok {
			status.Next = &next
		}
		snapshot.Rooms = append(snapshot.Rooms, status)
	}
	return
}

// resolve maps rooms to occupants using entries read at generation. Occupant
// and Next of one snapshot always come from the same entries.
func (s *OccupancyService) resolve(ctx context.Context, generation uint64, rooms []Room, entries []scheduler.Entry, at scheduler.TimeContext) map[string]*scheduler.Entry {
	if cached, ok := s.cache.Get(at, generation); ok {
		return cached
	}
	ids := make([]string, 0, len(rooms))
	for _, room := range rooms {
		ids = append(ids, room.ID)
	}
	occupancy := scheduler.Occupancy(ids, entries, at)
	stored := s.cache.Store(at, generation, occupancy)
	s.loggerWith(ctx, "resolve", "context", at.String()).DebugContext(ctx, "occupancy resolved", "rooms", len(ids), "cached", stored)
	return occupancy
}

// Available returns the rooms that are free now, in catalog order.
func (s *OccupancyService) Available(ctx context.Context) ([]Room, error) {
	snapshot, err := s.Snapshot(ctx, nil)
	if err != nil {
		return nil, err
	}
	free := make([]Room, 0, len(snapshot.Rooms))
	for _, status := range snapshot.Rooms {
		if status.Free() {
			free = append(free, status.Room)
		}
	}
	return free, nil
}

// InUse returns occupied rooms ordered by when their current class ends.
func (s *OccupancyService) InUse(ctx context.Context) ([]RoomStatus, error) {
	snapshot, err := s.Snapshot(ctx, nil)
	if err != nil {
		return nil, err
	}
	busy := make([]RoomStatus, 0, len(snapshot.Rooms))
	for _, status := range snapshot.Rooms {
		if !status.Free() {
			busy = append(busy, status)
		}
	}
	slices.SortStableFunc(busy, func(a, b RoomStatus) int {
		return cmp.Compare(a.Occupant.End, b.Occupant.End)
	})
	return busy, nil
}

// RoomStatus returns the live state of one room.
func (s *OccupancyService) RoomStatus(ctx context.Context, roomID string) (RoomStatus, error) {
	snapshot, err := s.Snapshot(ctx, nil)
	if err != nil {
		return RoomStatus{}, err
	}
	roomID = strings.TrimSpace(roomID)
	for _, status := range snapshot.Rooms {
		if status.Room.ID == roomID {
			return status, nil
		}
	}
	return RoomStatus{}, ErrNotFound
}

// NextUpcoming returns the room's next class later today.
func (s *OccupancyService) NextUpcoming(ctx context.Context, roomID string) (scheduler.Entry, bool, error) {
	status, err := s.RoomStatus(ctx, roomID)
	if err != nil {
		return scheduler.Entry{}, false, err
	}
	if status.Next == nil {
		return scheduler.Entry{}, false, nil
	}
	return *status.Next, true, nil
}

// Dashboard summarises rooms, classes and current occupancy.
func (s *OccupancyService) Dashboard(ctx context.Context) (Dashboard, error) {
	snapshot, err := s.Snapshot(ctx, nil)
	if err != nil {
		return Dashboard{}, err
	}
	entries, err := s.entries.Entries(ctx)
	if err != nil {
		return Dashboard{}, err
	}

	counts := make(map[string]int, len(snapshot.Rooms))
	for _, entry := range entries {
		counts[entry.RoomID]++
	}

	dashboard := Dashboard{
		Context:      snapshot.Context,
		TotalRooms:   len(snapshot.Rooms),
		TotalClasses: len(entries),
		Utilisation:  make([]RoomUtilisation, 0, len(snapshot.Rooms)),
	}
	for _, status := range snapshot.Rooms {
		if !status.Free() {
			dashboard.OccupiedNow++
		}
		dashboard.Utilisation = append(dashboard.Utilisation, RoomUtilisation{
			RoomID:  status.Room.ID,
			Name:    status.Room.Name,
			Entries: counts[status.Room.ID],
		})
	}
	return dashboard, nil
}

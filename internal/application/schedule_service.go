package application

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/example/roomsync/internal/recurrence"
	"github.com/example/roomsync/internal/scheduler"
)

// DefaultClassMonths is the validity of a class added without an end date.
const DefaultClassMonths = 4

// ScheduleService is the only writer of schedule entries. The conflict check
// and the append it guards run under one mutex so concurrent requests cannot
// both pass the check for the same slot.
type ScheduleService struct {
	mu sync.Mutex

	entries     ScheduleRepository
	rooms       RoomCatalog
	engine      *recurrence.Engine
	idGenerator func() string
	pickColor   scheduler.ColorPicker
	now         func() time.Time
	location    *time.Location
	logger      *slog.Logger

	listenersMu sync.RWMutex
	listeners   []func()
}

// ScheduleServiceOption customises a ScheduleService.
type ScheduleServiceOption func(*ScheduleService)

// WithColorPicker overrides the palette picker used for new classes.
func WithColorPicker(pick scheduler.ColorPicker) ScheduleServiceOption {
	return func(s *ScheduleService) {
		if pick != nil {
			s.pickColor = pick
		}
	}
}

// WithLocation sets the zone used to derive today's date for default ranges.
func WithLocation(loc *time.Location) ScheduleServiceOption {
	return func(s *ScheduleService) {
		if loc != nil {
			s.location = loc
		}
	}
}

// WithRecurrenceEngine overrides the timetable expansion engine.
func WithRecurrenceEngine(engine *recurrence.Engine) ScheduleServiceOption {
	return func(s *ScheduleService) {
		if engine != nil {
			s.engine = engine
		}
	}
}

// NewScheduleService wires dependencies for schedule operations.
func NewScheduleService(entries ScheduleRepository, rooms RoomCatalog, idGenerator func() string, now func() time.Time, opts ...ScheduleServiceOption) *ScheduleService {
	return NewScheduleServiceWithLogger(entries, rooms, idGenerator, now, nil, opts...)
}

// NewScheduleServiceWithLogger wires dependencies with a specified logger.
func NewScheduleServiceWithLogger(entries ScheduleRepository, rooms RoomCatalog, idGenerator func() string, now func() time.Time, logger *slog.Logger, opts ...ScheduleServiceOption) *ScheduleService {
	if idGenerator == nil {
		idGenerator = func() string { return "" }
	}
	if now == nil {
		now = time.Now
	}
	s := &ScheduleService{
		entries:     entries,
		rooms:       rooms,
		engine:      recurrence.NewEngine(recurrence.MaxWindowDays),
		idGenerator: idGenerator,
		pickColor:   scheduler.RandomColor,
		now:         now,
		location:    time.Local,
		logger:      defaultLogger(logger),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *ScheduleService) loggerWith(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	return serviceLogger(ctx, s.logger, "ScheduleService", operation, attrs...)
}

// OnChange registers fn to run after every successful mutation.
func (s *ScheduleService) OnChange(fn func()) {
	if s == nil || fn == nil {
		return
	}
	s.listenersMu.Lock()
	s.listeners = append(s.listeners, fn)
	s.listenersMu.Unlock()
}

func (s *ScheduleService) notify() {
	s.listenersMu.RLock()
	listeners := slices.Clone(s.listeners)
	s.listenersMu.RUnlock()
	for _, fn := range listeners {
		fn()
	}
}

// AddClass validates and stores a recurring class. Only admins may add classes.
func (s *ScheduleService) AddClass(ctx context.Context, params AddClassParams) (entry scheduler.Entry, err error) {
	if s == nil {
		err = fmt.Errorf("ScheduleService is nil")
		return
	}
	if s.entries == nil {
		err = fmt.Errorf("schedule repository not configured")
		return
	}

	input := params.Input
	logger := s.loggerWith(ctx, "AddClass",
		"principal_id", params.Principal.UserID,
		"room_id", input.RoomID,
		"day", input.Day.String(),
	)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to add class", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.With("schedule_id", entry.ID).InfoContext(ctx, "class added")
	}()

	if !params.Principal.IsAdmin() {
		err = ErrUnauthorized
		return
	}

	vErr := &ValidationError{}
	requireField(vErr, "room_id", input.RoomID, "room is required")
	requireField(vErr, "subject", input.Subject, "subject is required")
	requireField(vErr, "teacher", input.Teacher, "teacher is required")
	if vErr.HasErrors() {
		err = vErr
		return
	}

	if input.StartDate.IsZero() {
		input.StartDate = scheduler.DateOf(s.now().In(s.location))
	}
	if input.EndDate.IsZero() {
		input.EndDate = input.StartDate.AddMonths(DefaultClassMonths)
	}

	if err = s.ensureRoomExists(ctx, input.RoomID); err != nil {
		return
	}

	candidate := scheduler.RecurringCandidate{
		RoomID:    strings.TrimSpace(input.RoomID),
		Day:       input.Day,
		Start:     input.Start,
		End:       input.End,
		StartDate: input.StartDate,
		EndDate:   input.EndDate,
	}
	details := scheduler.Details{
		Subject: input.Subject,
		Section: input.Section,
		Teacher: input.Teacher,
	}

	entry, err = s.insert(ctx, candidate.RoomID, func(existing []scheduler.Entry) (scheduler.Entry, error) {
		if rErr := scheduler.CheckRecurring(existing, candidate); rErr != nil {
			return scheduler.Entry{}, rErr
		}
		return scheduler.BuildClass(s.idGenerator(), candidate, details, s.pickColor), nil
	})
	return
}

// BookMakeup validates and stores a single-day makeup class for the calling
// teacher.
func (s *ScheduleService) BookMakeup(ctx context.Context, params BookMakeupParams) (entry scheduler.Entry, err error) {
	if s == nil {
		err = fmt.Errorf("ScheduleService is nil")
		return
	}
	if s.entries == nil {
		err = fmt.Errorf("schedule repository not configured")
		return
	}

	input := params.Input
	logger := s.loggerWith(ctx, "BookMakeup",
		"principal_id", params.Principal.UserID,
		"room_id", input.RoomID,
		"date", input.Date.String(),
	)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to book makeup class", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.With("schedule_id", entry.ID).InfoContext(ctx, "makeup class booked")
	}()

	if !params.Principal.IsTeacher() {
		err = ErrUnauthorized
		return
	}

	vErr := &ValidationError{}
	requireField(vErr, "room_id", input.RoomID, "room is required")
	requireField(vErr, "subject", input.Subject, "subject is required")
	requireField(vErr, "section", input.Section, "section is required")
	if input.Date.IsZero() {
		vErr.add("date", "date is required")
	}
	if vErr.HasErrors() {
		err = vErr
		return
	}

	if err = s.ensureRoomExists(ctx, input.RoomID); err != nil {
		return
	}

	candidate := scheduler.SingleDayCandidate{
		RoomID: strings.TrimSpace(input.RoomID),
		Date:   input.Date,
		Start:  input.Start,
		End:    input.End,
	}
	details := scheduler.Details{
		Subject:  input.Subject,
		Section:  input.Section,
		Teacher:  params.Principal.Name,
		BookedBy: params.Principal.UserID,
	}

	entry, err = s.insert(ctx, candidate.RoomID, func(existing []scheduler.Entry) (scheduler.Entry, error) {
		if rErr := scheduler.CheckSingleDay(existing, candidate); rErr != nil {
			return scheduler.Entry{}, rErr
		}
		return scheduler.BuildMakeup(s.idGenerator(), candidate, details), nil
	})
	return
}

// insert runs build against the room's current entries and appends the
// result, holding the writer lock for the whole sequence.
func (s *ScheduleService) insert(ctx context.Context, roomID string, build func([]scheduler.Entry) (scheduler.Entry, error)) (scheduler.Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, err := s.entries.ListEntries(ctx, EntryFilter{RoomID: roomID})
	if err != nil {
		return scheduler.Entry{}, mapRepoError(err)
	}

	entry, err := build(existing)
	if err != nil {
		return scheduler.Entry{}, err
	}

	if err := s.entries.CreateEntry(ctx, entry); err != nil {
		return scheduler.Entry{}, mapRepoError(err)
	}
	s.notify()
	return entry, nil
}

// RemoveSchedule deletes an entry. Removing an unknown identifier succeeds.
func (s *ScheduleService) RemoveSchedule(ctx context.Context, principal Principal, id string) (err error) {
	if s == nil {
		return fmt.Errorf("ScheduleService is nil")
	}
	if s.entries == nil {
		return fmt.Errorf("schedule repository not configured")
	}

	logger := s.loggerWith(ctx, "RemoveSchedule",
		"principal_id", principal.UserID,
		"schedule_id", id,
	)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to remove schedule", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.InfoContext(ctx, "schedule removed")
	}()

	if !principal.IsAdmin() {
		return ErrUnauthorized
	}
	return s.remove(ctx, strings.TrimSpace(id))
}

// CancelBooking deletes a makeup booking owned by the calling teacher.
// Cancelling an unknown identifier succeeds.
func (s *ScheduleService) CancelBooking(ctx context.Context, principal Principal, id string) (err error) {
	if s == nil {
		return fmt.Errorf("ScheduleService is nil")
	}
	if s.entries == nil {
		return fmt.Errorf("schedule repository not configured")
	}

	logger := s.loggerWith(ctx, "CancelBooking",
		"principal_id", principal.UserID,
		"schedule_id", id,
	)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to cancel booking", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.InfoContext(ctx, "booking cancelled")
	}()

	if !principal.IsTeacher() {
		return ErrUnauthorized
	}

	id = strings.TrimSpace(id)
	entry, gErr := s.entries.GetEntry(ctx, id)
	if gErr != nil {
		if errors.Is(mapRepoError(gErr), ErrNotFound) {
			return nil
		}
		return mapRepoError(gErr)
	}
	if !entry.IsMakeup() || entry.BookedBy != principal.UserID {
		return ErrUnauthorized
	}
	return s.remove(ctx, id)
}

func (s *ScheduleService) remove(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.entries.DeleteEntry(ctx, id); err != nil {
		if errors.Is(mapRepoError(err), ErrNotFound) {
			return nil
		}
		return mapRepoError(err)
	}
	s.notify()
	return nil
}

// Seed stores fixed catalog entries at startup. Entries that collide with
// already stored ones, or whose identifier is taken, are skipped.
func (s *ScheduleService) Seed(ctx context.Context, entries []scheduler.Entry) (created int, err error) {
	if s == nil {
		return 0, fmt.Errorf("ScheduleService is nil")
	}
	if s.entries == nil {
		return 0, fmt.Errorf("schedule repository not configured")
	}

	logger := s.loggerWith(ctx, "Seed", "entries", len(entries))
	for _, entry := range entries {
		_, iErr := s.insert(ctx, entry.RoomID, func(existing []scheduler.Entry) (scheduler.Entry, error) {
			if slices.ContainsFunc(existing, func(e scheduler.Entry) bool { return e.ID == entry.ID }) {
				return scheduler.Entry{}, ErrAlreadyExists
			}
			if rErr := scheduler.CheckRecurring(existing, scheduler.RecurringCandidate{
				RoomID:    entry.RoomID,
				Day:       entry.Day,
				Start:     entry.Start,
				End:       entry.End,
				StartDate: entry.StartDate,
				EndDate:   entry.EndDate,
			}); rErr != nil {
				return scheduler.Entry{}, rErr
			}
			return entry, nil
		})
		switch {
		case iErr == nil:
			created++
		case errors.Is(iErr, ErrAlreadyExists), errors.As(iErr, new(*scheduler.RejectionError)):
			logger.WarnContext(ctx, "seed entry skipped", "schedule_id", entry.ID, "reason", iErr.Error())
		default:
			logger.ErrorContext(ctx, "failed to seed schedule", "error", iErr, "error_kind", ErrorKind(iErr))
			return created, iErr
		}
	}
	logger.InfoContext(ctx, "schedule seeded", "created", created)
	return created, nil
}

// Entries returns every stored entry in insertion order.
func (s *ScheduleService) Entries(ctx context.Context) ([]scheduler.Entry, error) {
	if s == nil {
		return nil, fmt.Errorf("ScheduleService is nil")
	}
	if s.entries == nil {
		return nil, fmt.Errorf("schedule repository not configured")
	}
	entries, err := s.entries.ListEntries(ctx, EntryFilter{})
	if err != nil {
		return nil, mapRepoError(err)
	}
	return entries, nil
}

// ListSchedule returns stored entries. Without a filter they keep insertion
// order; filtered results are ordered by day and start time.
func (s *ScheduleService) ListSchedule(ctx context.Context, filter ScheduleFilter) ([]scheduler.Entry, error) {
	if s == nil {
		return nil, fmt.Errorf("ScheduleService is nil")
	}
	if s.entries == nil {
		return nil, fmt.Errorf("schedule repository not configured")
	}

	entries, err := s.entries.ListEntries(ctx, EntryFilter{
		RoomID:  strings.TrimSpace(filter.RoomID),
		Day:     filter.Day,
		Section: strings.TrimSpace(filter.Section),
	})
	if err != nil {
		return nil, mapRepoError(err)
	}
	if filter.active() {
		slices.SortStableFunc(entries, func(a, b scheduler.Entry) int {
			if c := cmp.Compare(a.Day, b.Day); c != 0 {
				return c
			}
			return cmp.Compare(a.Start, b.Start)
		})
	}
	return entries, nil
}

// Sections returns the distinct non-empty section labels in use, sorted.
func (s *ScheduleService) Sections(ctx context.Context) ([]string, error) {
	entries, err := s.Entries(ctx)
	if err != nil {
		return nil, err
	}
	sections := make([]string, 0, len(entries))
	for _, entry := range entries {
		if entry.Section != "" {
			sections = append(sections, entry.Section)
		}
	}
	slices.Sort(sections)
	return slices.Compact(sections), nil
}

// MyBookings returns the caller's makeup bookings, latest date first.
func (s *ScheduleService) MyBookings(ctx context.Context, principal Principal) ([]scheduler.Entry, error) {
	if s == nil {
		return nil, fmt.Errorf("ScheduleService is nil")
	}
	if s.entries == nil {
		return nil, fmt.Errorf("schedule repository not configured")
	}
	if !principal.IsTeacher() {
		return nil, ErrUnauthorized
	}

	entries, err := s.entries.ListEntries(ctx, EntryFilter{BookedBy: principal.UserID, Kind: scheduler.KindMakeup})
	if err != nil {
		return nil, mapRepoError(err)
	}
	slices.SortStableFunc(entries, func(a, b scheduler.Entry) int {
		return b.StartDate.Compare(a.StartDate)
	})
	return entries, nil
}

// Timetable expands entries into dated occurrences between From and To.
func (s *ScheduleService) Timetable(ctx context.Context, params TimetableParams) ([]recurrence.Occurrence, error) {
	if s == nil {
		return nil, fmt.Errorf("ScheduleService is nil")
	}
	if s.entries == nil {
		return nil, fmt.Errorf("schedule repository not configured")
	}

	vErr := &ValidationError{}
	if params.From.IsZero() {
		vErr.add("from", "from is required")
	}
	if params.To.IsZero() {
		vErr.add("to", "to is required")
	}
	if vErr.HasErrors() {
		return nil, vErr
	}

	entries, err := s.entries.ListEntries(ctx, EntryFilter{RoomID: strings.TrimSpace(params.RoomID)})
	if err != nil {
		return nil, mapRepoError(err)
	}

	occurrences, err := s.engine.Expand(entries, recurrence.Window{From: params.From, To: params.To})
	switch {
	case errors.Is(err, recurrence.ErrInvalidWindow):
		return nil, newValidationError("to", "to must not be before from")
	case errors.Is(err, recurrence.ErrWindowTooLarge):
		return nil, newValidationError("to", fmt.Sprintf("range must not exceed %d days", recurrence.MaxWindowDays))
	case err != nil:
		return nil, err
	}
	return occurrences, nil
}

func (s *ScheduleService) ensureRoomExists(ctx context.Context, roomID string) error {
	if s.rooms == nil {
		return nil
	}
	exists, err := s.rooms.RoomExists(ctx, strings.TrimSpace(roomID))
	if err != nil {
		return err
	}
	if !exists {
		return newValidationError("room_id", "room does not exist")
	}
	return nil
}

func requireField(vErr *ValidationError, field, value, message string) {
	if strings.TrimSpace(value) == "" {
		vErr.add(field, message)
	}
}

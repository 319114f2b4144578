package testfixtures

import (
	"log/slog"
	"time"

	"github.com/example/roomsync/internal/application"
	"github.com/example/roomsync/internal/scheduler"
)

// ServiceFactory assists tests with constructing application services using
// deterministic identifiers and clocks.
type ServiceFactory struct {
	Clock       *Clock
	IDGenerator *IDGenerator
	Policy      scheduler.SundayPolicy
}

// ServiceFactoryOption configures a ServiceFactory instance.
type ServiceFactoryOption func(*ServiceFactory)

// NewServiceFactory constructs a ServiceFactory with defaults.
func NewServiceFactory(opts ...ServiceFactoryOption) *ServiceFactory {
	factory := &ServiceFactory{
		Clock:       NewClock(time.Time{}),
		IDGenerator: NewIDGenerator("id"),
		Policy:      scheduler.SundayAsMonday,
	}
	for _, opt := range opts {
		opt(factory)
	}
	if factory.Clock == nil {
		factory.Clock = NewClock(time.Time{})
	}
	if factory.IDGenerator == nil {
		factory.IDGenerator = NewIDGenerator("id")
	}
	return factory
}

// WithClock overrides the clock used by the factory.
func WithClock(clock *Clock) ServiceFactoryOption {
	return func(factory *ServiceFactory) {
		factory.Clock = clock
	}
}

// WithIDGenerator overrides the identifier generator used by the factory.
func WithIDGenerator(generator *IDGenerator) ServiceFactoryOption {
	return func(factory *ServiceFactory) {
		factory.IDGenerator = generator
	}
}

// WithSundayPolicy selects how the factory's time sources treat Sunday.
func WithSundayPolicy(policy scheduler.SundayPolicy) ServiceFactoryOption {
	return func(factory *ServiceFactory) {
		factory.Policy = policy
	}
}

// Provider returns a scheduler.Provider reading the factory clock in UTC.
func (f *ServiceFactory) Provider() *scheduler.Provider {
	return scheduler.NewProvider(f.Clock.NowFunc(), time.UTC, f.Policy)
}

// ScheduleServiceDeps captures dependencies for constructing a schedule service.
type ScheduleServiceDeps struct {
	Entries     application.ScheduleRepository
	Rooms       application.RoomCatalog
	IDGenerator func() string
	Now         func() time.Time
	Logger      *slog.Logger
	Options     []application.ScheduleServiceOption
}

// NewScheduleService builds a schedule service using the supplied dependencies
// combined with the factory defaults. Dates are resolved in UTC.
func (f *ServiceFactory) NewScheduleService(deps ScheduleServiceDeps) *application.ScheduleService {
	idGen := deps.IDGenerator
	if idGen == nil {
		idGen = f.IDGenerator.NextFunc()
	}
	now := deps.Now
	if now == nil {
		now = f.Clock.NowFunc()
	}
	opts := append([]application.ScheduleServiceOption{application.WithLocation(time.UTC)}, deps.Options...)
	return application.NewScheduleServiceWithLogger(deps.Entries, deps.Rooms, idGen, now, deps.Logger, opts...)
}

// RoomServiceDeps captures dependencies for constructing a room service.
type RoomServiceDeps struct {
	Rooms  application.RoomRepository
	Logger *slog.Logger
}

// NewRoomService builds a room service.
func (f *ServiceFactory) NewRoomService(deps RoomServiceDeps) *application.RoomService {
	return application.NewRoomServiceWithLogger(deps.Rooms, deps.Logger)
}

// UserServiceDeps captures dependencies for constructing a user service.
type UserServiceDeps struct {
	Users  application.UserRepository
	Now    func() time.Time
	Logger *slog.Logger
}

// NewUserService builds a user service using the factory clock by default.
func (f *ServiceFactory) NewUserService(deps UserServiceDeps) *application.UserService {
	now := deps.Now
	if now == nil {
		now = f.Clock.NowFunc()
	}
	return application.NewUserServiceWithLogger(deps.Users, now, deps.Logger)
}

// OccupancyServiceDeps captures dependencies for constructing an occupancy service.
type OccupancyServiceDeps struct {
	Rooms   application.RoomLister
	Entries application.EntrySource
	Clock   application.TimeSource
	Logger  *slog.Logger
}

// NewOccupancyService builds an occupancy service. Without an explicit time
// source it reads a Provider bound to the factory clock.
func (f *ServiceFactory) NewOccupancyService(deps OccupancyServiceDeps) *application.OccupancyService {
	var source application.TimeSource = deps.Clock
	if source == nil {
		source = f.Provider()
	}
	return application.NewOccupancyServiceWithLogger(deps.Rooms, deps.Entries, source, f.Clock.NowFunc(), deps.Logger)
}

package testfixtures

import (
	"time"

	"github.com/rs/zerolog"

	"github.com/example/opsroster/internal/application"
)

// ServiceFactory assists tests with constructing application services using
// deterministic identifiers and clocks.
type ServiceFactory struct {
	Clock       *Clock
	IDGenerator *IDGenerator
}

// ServiceFactoryOption configures a ServiceFactory instance.
type ServiceFactoryOption func(*ServiceFactory)

// NewServiceFactory constructs a ServiceFactory with defaults.
func NewServiceFactory(opts ...ServiceFactoryOption) *ServiceFactory {
	factory := &ServiceFactory{
		Clock:       NewClock(time.Time{}),
		IDGenerator: NewIDGenerator("id"),
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

// MaterializationDeps captures dependencies for constructing a
// materialization service.
type MaterializationDeps struct {
	Routines    application.RoutineSource
	WorkItems   application.WorkItemStore
	IDGenerator func() string
	Now         func() time.Time
	Logger      zerolog.Logger
}

// NewMaterializationService builds a materialization service using the
// supplied dependencies combined with the factory defaults.
func (f *ServiceFactory) NewMaterializationService(deps MaterializationDeps) *application.MaterializationService {
	idGen := deps.IDGenerator
	if idGen == nil {
		idGen = f.IDGenerator.NextFunc()
	}
	now := deps.Now
	if now == nil {
		now = f.Clock.NowFunc()
	}
	return application.NewMaterializationService(
		deps.Routines,
		deps.WorkItems,
		idGen,
		now,
		deps.Logger,
	)
}

// RecommendationDeps captures dependencies for constructing a recommendation
// service.
type RecommendationDeps struct {
	Shifts      application.ShiftCatalog
	Employees   application.EmployeeDirectory
	Assignments application.AssignmentLedger
	Logger      zerolog.Logger
}

// NewRecommendationService builds a recommendation service using the supplied
// dependencies.
func (f *ServiceFactory) NewRecommendationService(deps RecommendationDeps) *application.RecommendationService {
	return application.NewRecommendationService(
		deps.Shifts,
		deps.Employees,
		deps.Assignments,
		deps.Logger,
	)
}

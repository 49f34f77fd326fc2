// Package platform is the operation surface of the service. Every call is
// authorized by the role gate and then runs inside the platform lock:
// mutations take it exclusively, reads and recommendation snapshots share it.
// Domain events are published after the lock is released.
package platform

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"jobmatrimony/access"
	"jobmatrimony/catalog"
	"jobmatrimony/domain"
	"jobmatrimony/events"
	"jobmatrimony/matrimony"
	"jobmatrimony/messaging"
	"jobmatrimony/metrics"
	"jobmatrimony/profile"
	"jobmatrimony/recommend"
)

// ErrNotOwner signals a caller reading or changing data owned by another
// identity without being an admin.
var ErrNotOwner = fmt.Errorf("platform: caller does not own the resource: %w", domain.ErrUnauthorized)

// Repositories bundles the storage backends the platform runs on.
type Repositories struct {
	Roles     access.Repository
	Profiles  profile.Repository
	Catalog   catalog.Repository
	Matrimony matrimony.Repository
	Messages  messaging.Repository
	// Purger, when set, makes DeleteUser a single transaction. Without it
	// the deletes run one by one with the role removed last, so a failed
	// DeleteUser can be retried.
	Purger    Purger
}

// Deps configures a Service. Engine and Publisher are optional.
type Deps struct {
	Repos           Repositories
	BootstrapAdmins []string
	Engine          *recommend.Engine
	Publisher       events.Publisher
	Logger          *zap.Logger
}

type Service struct {
	mu sync.RWMutex

	gate      *access.Gate
	profiles  *profile.Service
	catalog   *catalog.Service
	matrimony *matrimony.Service
	messages  *messaging.Service
	purger    Purger
	engine    *recommend.Engine
	emitter   *events.Emitter
	logger    *zap.Logger
	now       func() time.Time
}

func New(deps Deps) *Service {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	engine := deps.Engine
	if engine == nil {
		engine = recommend.NewEngine(logger)
	}

	profiles := profile.NewService(deps.Repos.Profiles, logger)
	s := &Service{
		gate:     access.NewGate(deps.Repos.Roles, deps.BootstrapAdmins, logger),
		profiles: profiles,
		catalog:  catalog.NewService(deps.Repos.Catalog, logger),
		messages: messaging.NewService(deps.Repos.Messages, logger),
		purger:   deps.Repos.Purger,
		engine:   engine,
		emitter:  events.NewEmitter(deps.Publisher, logger),
		logger:   logger.Named("platform"),
		now:      time.Now,
	}
	s.matrimony = matrimony.NewService(deps.Repos.Matrimony, profiles, logger).WithScorer(s.compatibility)
	return s
}

// WithClock overrides the time source of every component that stamps records.
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	s.catalog.WithClock(now)
	s.matrimony.WithClock(now)
	s.messages.WithClock(now)
	return s
}

// compatibility scores a pair for a match created by an accepted interest.
// A missing matrimonial profile on either side scores 0.
func (s *Service) compatibility(ctx context.Context, a, b domain.Identity) (int, error) {
	pa, err := s.profiles.Matrimonial(ctx, a)
	if err != nil {
		return missingAsZero(err)
	}
	pb, err := s.profiles.Matrimonial(ctx, b)
	if err != nil {
		return missingAsZero(err)
	}
	return recommend.Compatibility(pa, pb), nil
}

func missingAsZero(err error) (int, error) {
	if errors.Is(err, domain.ErrNotFound) {
		return 0, nil
	}
	return 0, err
}

type lockMode int

const (
	shared lockMode = iota
	exclusive
)

// call authorizes caller for op and runs fn under the platform lock. The
// role handed to fn is the caller's effective role at authorization time.
func call[T any](ctx context.Context, s *Service, caller domain.Identity, op access.Operation, mode lockMode, fn func(role access.Role) (T, error)) (out T, err error) {
	start := time.Now()
	defer func() {
		outcome := metrics.OutcomeOK
		if err != nil {
			outcome = metrics.OutcomeError
		}
		metrics.OperationsTotal.WithLabelValues(string(op), outcome).Inc()
		metrics.OperationDuration.WithLabelValues(string(op)).Observe(time.Since(start).Seconds())
	}()

	if mode == exclusive {
		s.mu.Lock()
		defer s.mu.Unlock()
	} else {
		s.mu.RLock()
		defer s.mu.RUnlock()
	}

	role, err := s.gate.Authorize(ctx, caller, op)
	if err != nil {
		return out, err
	}
	return fn(role)
}

// exec is call for operations without a result.
func exec(ctx context.Context, s *Service, caller domain.Identity, op access.Operation, mode lockMode, fn func(role access.Role) error) error {
	_, err := call(ctx, s, caller, op, mode, func(role access.Role) (struct{}, error) {
		return struct{}{}, fn(role)
	})
	return err
}

func (s *Service) emit(ctx context.Context, evs ...events.Event) {
	s.emitter.Emit(context.WithoutCancel(ctx), evs...)
}

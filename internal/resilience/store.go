package resilience

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/paulmach/orb"
	"github.com/rs/zerolog"
	"github.com/sony/gobreaker/v2"

	"github.com/shaardie/emissions-api/internal/emissions"
)

// ErrStoreUnavailable is returned while the circuit breaker rejects queries.
var ErrStoreUnavailable = errors.New("store unavailable: circuit breaker is open")

// StoreHealth represents the health status of the guarded store.
type StoreHealth struct {
	// Name is the circuit breaker name.
	Name string

	// CircuitState is the current circuit breaker state.
	CircuitState gobreaker.State

	// Counts contains circuit breaker statistics.
	Counts gobreaker.Counts

	// LastSuccessAt is the timestamp of the last successful query.
	LastSuccessAt *time.Time

	// LastFailureAt is the timestamp of the last failed query.
	LastFailureAt *time.Time

	// LastError is the most recent error message, if any.
	LastError string
}

// IsHealthy returns true if the store is considered healthy.
func (h *StoreHealth) IsHealthy() bool {
	return h.CircuitState == gobreaker.StateClosed
}

// IsDegraded returns true if the store is in a degraded state (half-open).
func (h *StoreHealth) IsDegraded() bool {
	return h.CircuitState == gobreaker.StateHalfOpen
}

// IsUnhealthy returns true if the store is unhealthy (circuit open).
func (h *StoreHealth) IsUnhealthy() bool {
	return h.CircuitState == gobreaker.StateOpen
}

// Store wraps an emissions.Store so every Fetch runs through one shared
// circuit breaker.
type Store struct {
	next emissions.Store
	cb   *gobreaker.CircuitBreaker[any]

	mu            sync.RWMutex
	lastSuccessAt *time.Time
	lastFailureAt *time.Time
	lastError     string
}

// NewStore guards next with a circuit breaker built from cfg. State changes
// are logged at warn level.
func NewStore(next emissions.Store, cfg CircuitBreakerConfig, logger zerolog.Logger) *Store {
	onChange := cfg.OnStateChange
	cfg.OnStateChange = func(name string, from, to gobreaker.State) {
		logger.Warn().
			Str("breaker", name).
			Str("from", from.String()).
			Str("to", to.String()).
			Msg("store circuit breaker state changed")
		if onChange != nil {
			onChange(name, from, to)
		}
	}

	return &Store{
		next: next,
		cb:   NewCircuitBreaker[any](cfg),
	}
}

// Points implements emissions.Store.
func (s *Store) Points(boundary orb.Ring, dates emissions.DateRange) emissions.Query[emissions.PointRow] {
	return &guardedQuery[emissions.PointRow]{store: s, next: s.next.Points(boundary, dates)}
}

// Averages implements emissions.Store.
func (s *Store) Averages(boundary orb.Ring, dates emissions.DateRange) emissions.Query[emissions.AverageRow] {
	return &guardedQuery[emissions.AverageRow]{store: s, next: s.next.Averages(boundary, dates)}
}

// Ping implements emissions.Pinger. It bypasses the breaker so readiness
// reflects the database itself; stores without Ping are always reachable.
func (s *Store) Ping(ctx context.Context) error {
	if p, ok := s.next.(emissions.Pinger); ok {
		return p.Ping(ctx)
	}
	return nil
}

// Health returns the current breaker state and the last query outcomes.
func (s *Store) Health() *StoreHealth {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return &StoreHealth{
		Name:          s.cb.Name(),
		CircuitState:  s.cb.State(),
		Counts:        s.cb.Counts(),
		LastSuccessAt: s.lastSuccessAt,
		LastFailureAt: s.lastFailureAt,
		LastError:     s.lastError,
	}
}

func (s *Store) recordSuccess() {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now()
	s.lastSuccessAt = &now
}

func (s *Store) recordFailure(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now()
	s.lastFailureAt = &now
	s.lastError = err.Error()
}

type guardedQuery[T any] struct {
	store *Store
	next  emissions.Query[T]
}

func (q *guardedQuery[T]) Paginate(page emissions.Pagination) emissions.Query[T] {
	return &guardedQuery[T]{store: q.store, next: q.next.Paginate(page)}
}

func (q *guardedQuery[T]) Fetch(ctx context.Context) ([]T, error) {
	res, err := q.store.cb.Execute(func() (any, error) {
		return q.next.Fetch(ctx)
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return nil, ErrStoreUnavailable
		}
		if !errors.Is(err, context.Canceled) {
			q.store.recordFailure(err)
		}
		return nil, err
	}

	q.store.recordSuccess()
	rows, _ := res.([]T)
	return rows, nil
}

var (
	_ emissions.Store  = (*Store)(nil)
	_ emissions.Pinger = (*Store)(nil)
)

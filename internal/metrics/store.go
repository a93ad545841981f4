package metrics

import (
	"context"
	"time"

	"github.com/paulmach/orb"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/shaardie/emissions-api/internal/emissions"
)

const (
	queryPoints   = "points"
	queryAverages = "averages"

	outcomeOK    = "ok"
	outcomeError = "error"
)

// StoreMetrics holds the collectors recorded by Store.
type StoreMetrics struct {
	duration *prometheus.HistogramVec
	rows     *prometheus.CounterVec
}

// NewStoreMetrics creates and registers the store collectors on reg.
func NewStoreMetrics(reg prometheus.Registerer) *StoreMetrics {
	m := &StoreMetrics{
		duration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "emissions_store_query_duration_seconds",
				Help:    "Duration of store queries.",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"query", "outcome"},
		),
		rows: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "emissions_store_rows_total",
				Help: "Rows returned by store queries.",
			},
			[]string{"query"},
		),
	}
	reg.MustRegister(m.duration, m.rows)
	return m
}

// Store records the duration and row count of every Fetch.
type Store struct {
	next    emissions.Store
	metrics *StoreMetrics
}

// NewStore instruments next.
func NewStore(next emissions.Store, m *StoreMetrics) *Store {
	return &Store{next: next, metrics: m}
}

// Points implements emissions.Store.
func (s *Store) Points(boundary orb.Ring, dates emissions.DateRange) emissions.Query[emissions.PointRow] {
	return &timedQuery[emissions.PointRow]{name: queryPoints, metrics: s.metrics, next: s.next.Points(boundary, dates)}
}

// Averages implements emissions.Store.
func (s *Store) Averages(boundary orb.Ring, dates emissions.DateRange) emissions.Query[emissions.AverageRow] {
	return &timedQuery[emissions.AverageRow]{name: queryAverages, metrics: s.metrics, next: s.next.Averages(boundary, dates)}
}

// Ping implements emissions.Pinger.
func (s *Store) Ping(ctx context.Context) error {
	if p, ok := s.next.(emissions.Pinger); ok {
		return p.Ping(ctx)
	}
	return nil
}

type timedQuery[T any] struct {
	name    string
	metrics *StoreMetrics
	next    emissions.Query[T]
}

func (q *timedQuery[T]) Paginate(page emissions.Pagination) emissions.Query[T] {
	return &timedQuery[T]{name: q.name, metrics: q.metrics, next: q.next.Paginate(page)}
}

func (q *timedQuery[T]) Fetch(ctx context.Context) ([]T, error) {
	start := time.Now()
	rows, err := q.next.Fetch(ctx)

	outcome := outcomeOK
	if err != nil {
		outcome = outcomeError
	}
	q.metrics.duration.WithLabelValues(q.name, outcome).Observe(time.Since(start).Seconds())
	q.metrics.rows.WithLabelValues(q.name).Add(float64(len(rows)))

	return rows, err
}

var (
	_ emissions.Store  = (*Store)(nil)
	_ emissions.Pinger = (*Store)(nil)
)

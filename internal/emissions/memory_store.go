package emissions

import (
	"context"
	"sort"
	"time"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"
)

// MemoryStore is an in-memory Store. Rows are copied on construction and
// never modified, so a MemoryStore is safe for concurrent use.
type MemoryStore struct {
	samples []PointRow
}

// NewMemoryStore creates a store holding samples ordered by timestamp.
func NewMemoryStore(samples []PointRow) *MemoryStore {
	rows := make([]PointRow, len(samples))
	copy(rows, samples)
	sort.SliceStable(rows, func(i, j int) bool {
		return rows[i].Timestamp.Before(rows[j].Timestamp)
	})
	return &MemoryStore{samples: rows}
}

// Points implements Store.
func (s *MemoryStore) Points(boundary orb.Ring, dates DateRange) Query[PointRow] {
	return &memoryQuery[PointRow]{
		load: func() []PointRow { return s.match(boundary, dates) },
	}
}

// Averages implements Store. Samples are bucketed per UTC day.
func (s *MemoryStore) Averages(boundary orb.Ring, dates DateRange) Query[AverageRow] {
	return &memoryQuery[AverageRow]{
		load: func() []AverageRow { return dailyAverages(s.match(boundary, dates)) },
	}
}

// Ping implements Pinger.
func (s *MemoryStore) Ping(_ context.Context) error {
	return nil
}

func (s *MemoryStore) match(boundary orb.Ring, dates DateRange) []PointRow {
	var bound orb.Bound
	if len(boundary) > 0 {
		bound = boundary.Bound()
	}

	out := make([]PointRow, 0, len(s.samples))
	for _, row := range s.samples {
		if dates.Begin != nil && !row.Timestamp.After(*dates.Begin) {
			continue
		}
		if dates.End != nil && !row.Timestamp.Before(*dates.End) {
			continue
		}
		if len(boundary) > 0 {
			pt := orb.Point{row.Longitude, row.Latitude}
			if !bound.Contains(pt) || !planar.RingContains(boundary, pt) {
				continue
			}
		}
		out = append(out, row)
	}
	return out
}

func dailyAverages(rows []PointRow) []AverageRow {
	type bucket struct {
		sum        float64
		count      int64
		start, end time.Time
	}

	var days []time.Time
	buckets := make(map[time.Time]*bucket)
	for _, row := range rows {
		ts := row.Timestamp.UTC()
		day := time.Date(ts.Year(), ts.Month(), ts.Day(), 0, 0, 0, 0, time.UTC)
		b, ok := buckets[day]
		if !ok {
			b = &bucket{start: row.Timestamp, end: row.Timestamp}
			buckets[day] = b
			days = append(days, day)
		}
		b.sum += row.Value
		b.count++
		if row.Timestamp.Before(b.start) {
			b.start = row.Timestamp
		}
		if row.Timestamp.After(b.end) {
			b.end = row.Timestamp
		}
	}

	sort.Slice(days, func(i, j int) bool { return days[i].Before(days[j]) })

	out := make([]AverageRow, 0, len(days))
	for _, day := range days {
		b := buckets[day]
		out = append(out, AverageRow{
			Average: b.sum / float64(b.count),
			End:     b.end,
			Start:   b.start,
			Count:   b.count,
		})
	}
	return out
}

type memoryQuery[T any] struct {
	load func() []T
	page Pagination
}

func (q *memoryQuery[T]) Paginate(page Pagination) Query[T] {
	return &memoryQuery[T]{load: q.load, page: page}
}

func (q *memoryQuery[T]) Fetch(ctx context.Context) ([]T, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return Window(q.load(), q.page), nil
}

var (
	_ Store  = (*MemoryStore)(nil)
	_ Pinger = (*MemoryStore)(nil)
)

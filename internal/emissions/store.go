package emissions

import (
	"context"

	"github.com/paulmach/orb"
)

// Query is a prepared, lazily executed store query. Fetch may be called more
// than once; each call runs the query again.
type Query[T any] interface {
	// Paginate returns a query narrowed to page. A zero page returns an
	// equivalent query.
	Paginate(page Pagination) Query[T]
	// Fetch executes the query and returns its rows in store order.
	Fetch(ctx context.Context) ([]T, error)
}

// Store is the persistence collaborator owning emission samples and their
// aggregation. A nil boundary or nil date bound means unrestricted.
type Store interface {
	// Points returns samples within boundary and strictly between the dates.
	Points(boundary orb.Ring, dates DateRange) Query[PointRow]
	// Averages returns daily aggregates of the samples Points would return.
	Averages(boundary orb.Ring, dates DateRange) Query[AverageRow]
}

// Pinger is implemented by stores that can report their availability.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Window applies page to rows: skip Offset rows, then keep at most Limit.
func Window[T any](rows []T, page Pagination) []T {
	if page.Offset != nil {
		off := *page.Offset
		if off >= len(rows) {
			return rows[:0]
		}
		if off > 0 {
			rows = rows[off:]
		}
	}
	if page.Limit != nil && *page.Limit < len(rows) {
		rows = rows[:*page.Limit]
	}
	return rows
}

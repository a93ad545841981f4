package emissions

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/paulmach/orb"
	"github.com/rotisserie/eris"
	"github.com/twpayne/go-geom"
	"github.com/twpayne/go-geom/encoding/ewkb"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/shaardie/emissions-api/internal/database"
	"github.com/shaardie/emissions-api/internal/telemetry"
)

// SRID of stored geometries and boundary parameters.
const SRID = 4326

const (
	pointsSelect = `SELECT value, "timestamp", ST_X(geom), ST_Y(geom) FROM carbonmonoxide`
	pointsOrder  = ` ORDER BY "timestamp"`

	averagesSelect = `SELECT avg(value), max("timestamp"), min("timestamp"), count(*) FROM carbonmonoxide`
	averagesGroup  = ` GROUP BY date_trunc('day', "timestamp") ORDER BY date_trunc('day', "timestamp")`
)

// PostgresStore is a PostGIS implementation of Store.
type PostgresStore struct {
	db     database.Querier
	tracer trace.Tracer
}

// NewPostgresStore creates a store reading the carbonmonoxide table.
func NewPostgresStore(db database.Querier) *PostgresStore {
	return &PostgresStore{
		db:     db,
		tracer: telemetry.Tracer("emissions.store"),
	}
}

// Points implements Store.
func (s *PostgresStore) Points(boundary orb.Ring, dates DateRange) Query[PointRow] {
	where, args, err := whereClause(boundary, dates)
	return &pgQuery[PointRow]{
		store: s,
		name:  "points",
		sql:   pointsSelect + where + pointsOrder,
		args:  args,
		err:   err,
		scan: func(rows pgx.Rows) (PointRow, error) {
			var r PointRow
			err := rows.Scan(&r.Value, &r.Timestamp, &r.Longitude, &r.Latitude)
			return r, err
		},
	}
}

// Averages implements Store. Samples are bucketed per day.
func (s *PostgresStore) Averages(boundary orb.Ring, dates DateRange) Query[AverageRow] {
	where, args, err := whereClause(boundary, dates)
	return &pgQuery[AverageRow]{
		store: s,
		name:  "averages",
		sql:   averagesSelect + where + averagesGroup,
		args:  args,
		err:   err,
		scan: func(rows pgx.Rows) (AverageRow, error) {
			var r AverageRow
			err := rows.Scan(&r.Average, &r.End, &r.Start, &r.Count)
			return r, err
		},
	}
}

// Ping implements Pinger.
func (s *PostgresStore) Ping(ctx context.Context) error {
	if err := s.db.Ping(ctx); err != nil {
		return eris.Wrap(err, "store: ping")
	}
	return nil
}

// whereClause builds the filter predicates with positional arguments.
func whereClause(boundary orb.Ring, dates DateRange) (string, []any, error) {
	var (
		conds []string
		args  []any
	)

	if len(boundary) > 0 {
		wkb, err := EncodeBoundary(boundary)
		if err != nil {
			return "", nil, err
		}
		args = append(args, wkb)
		conds = append(conds, fmt.Sprintf("ST_Intersects(geom, ST_GeomFromEWKB($%d))", len(args)))
	}
	if dates.Begin != nil {
		args = append(args, *dates.Begin)
		conds = append(conds, fmt.Sprintf(`"timestamp" > $%d`, len(args)))
	}
	if dates.End != nil {
		args = append(args, *dates.End)
		conds = append(conds, fmt.Sprintf(`"timestamp" < $%d`, len(args)))
	}

	if len(conds) == 0 {
		return "", nil, nil
	}
	return " WHERE " + strings.Join(conds, " AND "), args, nil
}

// EncodeBoundary encodes a closed ring as a little-endian EWKB polygon.
func EncodeBoundary(ring orb.Ring) ([]byte, error) {
	flat := make([]float64, 0, 2*len(ring))
	for _, p := range ring {
		flat = append(flat, p.Lon(), p.Lat())
	}
	poly := geom.NewPolygonFlat(geom.XY, flat, []int{len(flat)}).SetSRID(SRID)

	data, err := ewkb.Marshal(poly, ewkb.NDR)
	if err != nil {
		return nil, eris.Wrap(err, "store: encode boundary")
	}
	return data, nil
}

type pgQuery[T any] struct {
	store *PostgresStore
	name  string
	sql   string
	args  []any
	err   error
	page  Pagination
	scan  func(pgx.Rows) (T, error)
}

func (q *pgQuery[T]) Paginate(page Pagination) Query[T] {
	c := *q
	c.page = page
	return &c
}

// statement returns the final SQL with LIMIT and OFFSET applied.
func (q *pgQuery[T]) statement() (string, []any) {
	sql := q.sql
	args := make([]any, len(q.args), len(q.args)+2)
	copy(args, q.args)

	if q.page.Limit != nil {
		args = append(args, *q.page.Limit)
		sql += fmt.Sprintf(" LIMIT $%d", len(args))
	}
	if q.page.Offset != nil {
		args = append(args, *q.page.Offset)
		sql += fmt.Sprintf(" OFFSET $%d", len(args))
	}
	return sql, args
}

func (q *pgQuery[T]) Fetch(ctx context.Context) ([]T, error) {
	if q.err != nil {
		return nil, q.err
	}

	ctx, span := q.store.tracer.Start(ctx, "store."+q.name,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(attribute.String("db.system", "postgresql")),
	)
	defer span.End()

	sql, args := q.statement()
	rows, err := q.store.db.Query(ctx, sql, args...)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "query failed")
		return nil, eris.Wrapf(err, "store: query %s", q.name)
	}
	defer rows.Close()

	out := make([]T, 0)
	for rows.Next() {
		row, err := q.scan(rows)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "scan failed")
			return nil, eris.Wrapf(err, "store: scan %s", q.name)
		}
		out = append(out, row)
	}
	if err := rows.Err(); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "rows failed")
		return nil, eris.Wrapf(err, "store: read %s", q.name)
	}

	span.SetAttributes(attribute.Int("db.rows", len(out)))
	return out, nil
}

var (
	_ Store  = (*PostgresStore)(nil)
	_ Pinger = (*PostgresStore)(nil)
)

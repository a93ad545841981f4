// Package emissions validates emission data requests, resolves them into a
// canonical spatial and temporal filter, queries a Store and shapes the
// results into API responses.
package emissions

import (
	"time"

	"github.com/paulmach/orb"
)

// Request parameter names.
const (
	ParamGeoframe = "geoframe"
	ParamCountry  = "country"
	ParamPolygon  = "polygon"
	ParamBegin    = "begin"
	ParamEnd      = "end"
	ParamLimit    = "limit"
	ParamOffset   = "offset"
)

// ValueProperty is the feature property holding the measured value.
const ValueProperty = "carbonmonoxide"

// Request holds the raw filter parameters of a data request.
// A nil field means the parameter was not supplied.
type Request struct {
	// Geoframe is min-lon, min-lat, max-lon, max-lat as supplied.
	Geoframe []string
	Country  *string
	// Polygon is a flat lon,lat,lon,lat,... sequence as supplied.
	Polygon []string
	Begin   *string
	End     *string
	Limit   *int
	Offset  *int
}

// DateRange bounds a query in time. A nil bound is unbounded on that side.
type DateRange struct {
	Begin *time.Time
	End   *time.Time
}

// Pagination narrows a query to a window of rows.
type Pagination struct {
	Limit  *int `param:"limit" validate:"omitempty,gte=0"`
	Offset *int `param:"offset" validate:"omitempty,gte=0"`
}

// IsZero reports whether no pagination was requested.
func (p Pagination) IsZero() bool {
	return p.Limit == nil && p.Offset == nil
}

// Filter is the canonical, validated form of a Request.
type Filter struct {
	// Boundary is a closed ring (first vertex == last vertex), or nil for no
	// spatial restriction.
	Boundary orb.Ring
	Dates    DateRange
	Page     Pagination
}

// HasBoundary reports whether the filter restricts results spatially.
func (f Filter) HasBoundary() bool {
	return len(f.Boundary) > 0
}

// PointRow is a single emission sample as returned by a Store.
type PointRow struct {
	Value     float64
	Timestamp time.Time
	Longitude float64
	Latitude  float64
}

// AverageRow is one aggregation bucket as returned by a Store, in store
// column order: average, window end, window start, sample count.
type AverageRow struct {
	Average float64
	End     time.Time
	Start   time.Time
	Count   int64
}

// AverageRecord is the public shape of an aggregation bucket.
type AverageRecord struct {
	Average float64   `json:"average"`
	Start   time.Time `json:"start"`
	End     time.Time `json:"end"`
}

// Rectangle is an axis-aligned bounding box in degrees.
type Rectangle struct {
	MinLon float64 `json:"minLon"`
	MinLat float64 `json:"minLat"`
	MaxLon float64 `json:"maxLon"`
	MaxLat float64 `json:"maxLat"`
}

// Valid reports whether the rectangle is well formed.
func (r Rectangle) Valid() bool {
	return r.MinLon <= r.MaxLon && r.MinLat <= r.MaxLat
}

// Ring traces the rectangle corners as a closed 5-vertex ring:
// (minLon minLat) (minLon maxLat) (maxLon maxLat) (maxLon minLat) (minLon minLat).
func (r Rectangle) Ring() orb.Ring {
	return orb.Ring{
		{r.MinLon, r.MinLat},
		{r.MinLon, r.MaxLat},
		{r.MaxLon, r.MaxLat},
		{r.MaxLon, r.MinLat},
		{r.MinLon, r.MinLat},
	}
}

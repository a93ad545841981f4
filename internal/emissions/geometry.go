package emissions

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/paulmach/orb"
)

// Polygon validation messages.
const (
	msgPolygonNotNumeric   = "Polygon coordinates have to be numbers"
	msgPolygonOddElements  = "Number of elements has to be even"
	msgPolygonTooFewPoints = "Not enough points for polygon"
	msgPolygonOutOfRange   = "Polygon coordinates out of range"
	msgPolygonDegenerate   = "Not enough distinct points for polygon"
)

// minPolygonVertices is the smallest vertex count (before closing) of a polygon.
const minPolygonVertices = 3

// GeometrySource is one of the mutually exclusive spatial inputs of a request:
// BoundingBoxSource, CountrySource, PolygonSource or NoGeometry.
type GeometrySource interface {
	// Name identifies the variant for logging.
	Name() string
	// Boundary converts the input into a closed ring, or nil for no restriction.
	Boundary(countries CountryLookup) (orb.Ring, error)

	geometrySource()
}

// BoundingBoxSource is a geoframe: min-lon, min-lat, max-lon, max-lat.
type BoundingBoxSource struct {
	Values []string
}

// CountrySource is a country code resolved through the country table.
type CountrySource struct {
	Code string
}

// PolygonSource is a flat lon,lat,lon,lat,... vertex sequence.
type PolygonSource struct {
	Values []string
}

// NoGeometry means the request has no spatial restriction.
type NoGeometry struct{}

func (BoundingBoxSource) geometrySource() {}
func (CountrySource) geometrySource()     {}
func (PolygonSource) geometrySource()     {}
func (NoGeometry) geometrySource()        {}

func (BoundingBoxSource) Name() string { return ParamGeoframe }
func (CountrySource) Name() string     { return ParamCountry }
func (PolygonSource) Name() string     { return ParamPolygon }
func (NoGeometry) Name() string        { return "none" }

// SelectGeometry picks the single honored spatial input of req.
// Precedence is geoframe, then country, then polygon; lower-precedence inputs
// are ignored entirely once a higher one is present.
func SelectGeometry(req Request) GeometrySource {
	switch {
	case req.Geoframe != nil:
		return BoundingBoxSource{Values: req.Geoframe}
	case req.Country != nil:
		return CountrySource{Code: *req.Country}
	case req.Polygon != nil:
		return PolygonSource{Values: req.Polygon}
	default:
		return NoGeometry{}
	}
}

// ResolveGeometry converts the selected spatial input of req into a closed ring.
func ResolveGeometry(req Request, countries CountryLookup) (orb.Ring, error) {
	return SelectGeometry(req).Boundary(countries)
}

// Boundary implements GeometrySource.
func (b BoundingBoxSource) Boundary(_ CountryLookup) (orb.Ring, error) {
	values, err := parseCoordinates(b.Values)
	if err != nil || len(values) != 4 {
		return nil, InvalidGeoframe()
	}
	rect := Rectangle{MinLon: values[0], MinLat: values[1], MaxLon: values[2], MaxLat: values[3]}
	if !rect.Valid() {
		return nil, InvalidGeoframe()
	}
	return rect.Ring(), nil
}

// Boundary implements GeometrySource.
func (c CountrySource) Boundary(countries CountryLookup) (orb.Ring, error) {
	rect, ok := countries.Lookup(c.Code)
	if !ok {
		return nil, UnknownCountryCode()
	}
	return rect.Ring(), nil
}

// Boundary implements GeometrySource. A valid polygon has an even number of
// numeric values, at least three vertices with three of them distinct, and
// coordinates within [-180,180] x [-90,90]. An open ring is closed by
// repeating the first vertex.
func (p PolygonSource) Boundary(_ CountryLookup) (orb.Ring, error) {
	values, err := parseCoordinates(p.Values)
	if err != nil {
		return nil, InvalidPolygon(msgPolygonNotNumeric)
	}
	if len(values)%2 != 0 {
		return nil, InvalidPolygon(msgPolygonOddElements)
	}
	if len(values) < 2*minPolygonVertices {
		return nil, InvalidPolygon(msgPolygonTooFewPoints)
	}

	ring := make(orb.Ring, 0, len(values)/2+1)
	distinct := make(map[orb.Point]struct{}, len(values)/2)
	for i := 0; i < len(values); i += 2 {
		pt := orb.Point{values[i], values[i+1]}
		if pt.Lon() < -180 || pt.Lon() > 180 || pt.Lat() < -90 || pt.Lat() > 90 {
			return nil, InvalidPolygon(msgPolygonOutOfRange)
		}
		ring = append(ring, pt)
		distinct[pt] = struct{}{}
	}
	if len(distinct) < minPolygonVertices {
		return nil, InvalidPolygon(msgPolygonDegenerate)
	}
	if ring[0] != ring[len(ring)-1] {
		ring = append(ring, ring[0])
	}
	return ring, nil
}

// Boundary implements GeometrySource.
func (NoGeometry) Boundary(_ CountryLookup) (orb.Ring, error) {
	return nil, nil
}

// parseCoordinates parses comma separated and/or repeated numeric values.
func parseCoordinates(raw []string) ([]float64, error) {
	var out []float64
	for _, item := range raw {
		for _, part := range strings.Split(item, ",") {
			f, err := strconv.ParseFloat(strings.TrimSpace(part), 64)
			if err != nil {
				return nil, err
			}
			if math.IsNaN(f) || math.IsInf(f, 0) {
				return nil, fmt.Errorf("coordinate %q is not finite", part)
			}
			out = append(out, f)
		}
	}
	return out, nil
}

package emissions

import (
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
)

// ShapePoints maps sample rows to a feature collection, one point feature per
// row in row order. No rows yields an empty, non-nil collection.
func ShapePoints(rows []PointRow) *geojson.FeatureCollection {
	fc := geojson.NewFeatureCollection()
	fc.Features = make([]*geojson.Feature, 0, len(rows))
	for _, row := range rows {
		f := geojson.NewFeature(orb.Point{row.Longitude, row.Latitude})
		f.Properties[ValueProperty] = row.Value
		f.Properties["timestamp"] = row.Timestamp
		fc.Append(f)
	}
	return fc
}

// ShapeAverages maps aggregate rows to public records, dropping the count.
func ShapeAverages(rows []AverageRow) []AverageRecord {
	out := make([]AverageRecord, 0, len(rows))
	for _, row := range rows {
		out = append(out, AverageRecord{
			Average: row.Average,
			Start:   row.Start,
			End:     row.End,
		})
	}
	return out
}

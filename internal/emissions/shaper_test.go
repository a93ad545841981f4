package emissions_test

import (
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/paulmach/orb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shaardie/emissions-api/internal/emissions"
)

func TestShapePoints(t *testing.T) {
	ts := time.Date(2019, 2, 1, 10, 0, 0, 0, time.UTC)
	fc := emissions.ShapePoints([]emissions.PointRow{
		{Value: 0.03, Timestamp: ts, Longitude: 15.12, Latitude: 50.13},
		{Value: 0.04, Timestamp: ts.Add(time.Hour), Longitude: 15.15, Latitude: 50.16},
	})

	require.Len(t, fc.Features, 2)
	f := fc.Features[0]
	assert.Equal(t, orb.Point{15.12, 50.13}, f.Geometry)
	assert.Equal(t, 0.03, f.Properties[emissions.ValueProperty])
	assert.Equal(t, ts, f.Properties["timestamp"])
	assert.Equal(t, orb.Point{15.15, 50.16}, fc.Features[1].Geometry)
}

func TestShapePoints_Empty(t *testing.T) {
	fc := emissions.ShapePoints(nil)
	require.NotNil(t, fc.Features)
	assert.Empty(t, fc.Features)

	data, err := json.Marshal(fc)
	require.NoError(t, err)
	assert.JSONEq(t, `{"type":"FeatureCollection","features":[]}`, string(data))
}

func TestShapePoints_JSON(t *testing.T) {
	ts := time.Date(2019, 2, 1, 10, 0, 0, 0, time.UTC)
	fc := emissions.ShapePoints([]emissions.PointRow{{Value: 1.5, Timestamp: ts, Longitude: 1, Latitude: 2}})

	data, err := json.Marshal(fc)
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"type": "FeatureCollection",
		"features": [{
			"type": "Feature",
			"geometry": {"type": "Point", "coordinates": [1, 2]},
			"properties": {"carbonmonoxide": 1.5, "timestamp": "2019-02-01T10:00:00Z"}
		}]
	}`, string(data))
}

func TestShapeAverages(t *testing.T) {
	t1 := time.Date(2019, 2, 1, 0, 0, 0, 0, time.UTC)
	t2 := t1.Add(20 * time.Hour)

	got := emissions.ShapeAverages([]emissions.AverageRow{
		{Average: 1.5, End: t2, Start: t1, Count: 7},
	})

	require.Len(t, got, 1)
	assert.Equal(t, emissions.AverageRecord{Average: 1.5, Start: t1, End: t2}, got[0])
}

func TestShapeAverages_Empty(t *testing.T) {
	got := emissions.ShapeAverages(nil)
	require.NotNil(t, got)

	data, err := json.Marshal(got)
	require.NoError(t, err)
	assert.Equal(t, "[]", string(data))
}

package emissions_test

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shaardie/emissions-api/internal/emissions"
)

func strPtr(s string) *string { return &s }
func intPtr(i int) *int       { return &i }

func TestParseDate(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want time.Time
	}{
		{"date only", "2019-02-01", time.Date(2019, 2, 1, 0, 0, 0, 0, time.UTC)},
		{"rfc3339", "2019-02-01T10:30:00Z", time.Date(2019, 2, 1, 10, 30, 0, 0, time.UTC)},
		{"space separated", "2019-02-01 10:30:00", time.Date(2019, 2, 1, 10, 30, 0, 0, time.UTC)},
		{"written month", "Feb 1, 2019", time.Date(2019, 2, 1, 0, 0, 0, 0, time.UTC)},
		{"surrounding whitespace", "  2019-02-01  ", time.Date(2019, 2, 1, 0, 0, 0, 0, time.UTC)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := emissions.ParseDate(tt.raw)
			require.NoError(t, err)
			assert.True(t, tt.want.Equal(got), "want %s, got %s", tt.want, got)
		})
	}
}

func TestParseDate_Invalid(t *testing.T) {
	for _, raw := range []string{"not-a-date", "2019-13-45"} {
		_, err := emissions.ParseDate(raw)
		assert.Error(t, err, "input %q", raw)
	}
}

func TestParseDateRange(t *testing.T) {
	t.Run("both absent", func(t *testing.T) {
		dr, err := emissions.ParseDateRange(nil, nil)
		require.NoError(t, err)
		assert.Nil(t, dr.Begin)
		assert.Nil(t, dr.End)
	})

	t.Run("begin only", func(t *testing.T) {
		dr, err := emissions.ParseDateRange(strPtr("2019-02-01"), nil)
		require.NoError(t, err)
		require.NotNil(t, dr.Begin)
		assert.Nil(t, dr.End)
		assert.Equal(t, 2019, dr.Begin.Year())
	})

	t.Run("invalid begin", func(t *testing.T) {
		_, err := emissions.ParseDateRange(strPtr("garbage"), strPtr("2019-02-01"))
		require.Error(t, err)
		assert.True(t, errors.Is(err, emissions.ErrInvalidDate))
		ce, ok := emissions.AsClientError(err)
		require.True(t, ok)
		assert.Equal(t, "Invalid begin", ce.Message)
		assert.Equal(t, emissions.ParamBegin, ce.Field)
	})

	t.Run("invalid end", func(t *testing.T) {
		_, err := emissions.ParseDateRange(strPtr("2019-02-01"), strPtr("garbage"))
		ce, ok := emissions.AsClientError(err)
		require.True(t, ok)
		assert.Equal(t, "Invalid end", ce.Message)
	})

	t.Run("begin reported first", func(t *testing.T) {
		_, err := emissions.ParseDateRange(strPtr("not-a-date"), strPtr("also-not-a-date"))
		ce, ok := emissions.AsClientError(err)
		require.True(t, ok)
		assert.Equal(t, "Invalid begin", ce.Message)
	})
}

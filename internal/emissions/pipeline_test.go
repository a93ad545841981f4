package emissions_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shaardie/emissions-api/internal/emissions"
)

func TestNewPipeline_Order(t *testing.T) {
	p := emissions.NewPipeline(newSpy())

	names := make([]string, 0, len(p))
	for _, st := range p {
		names = append(names, st.Name)
	}
	assert.Equal(t, []string{"dates", "geometry", "pagination"}, names)
}

func TestPipeline_StopsAtFirstError(t *testing.T) {
	var ran []string
	stage := func(name string, err error) emissions.Stage {
		return emissions.Stage{
			Name: name,
			Apply: func(_ emissions.Request, f emissions.Filter) (emissions.Filter, error) {
				ran = append(ran, name)
				return f, err
			},
		}
	}

	boom := errors.New("boom")
	p := emissions.Pipeline{stage("a", nil), stage("b", boom), stage("c", nil)}

	f, err := p.Run(emissions.Request{})
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, emissions.Filter{}, f)
	assert.Equal(t, []string{"a", "b"}, ran)
}

func TestPipeline_GeometryNotConsultedAfterDateFailure(t *testing.T) {
	spy := newSpy()
	_, err := emissions.NewPipeline(spy).Run(emissions.Request{
		Begin:   strPtr("not-a-date"),
		Country: strPtr("DE"),
	})
	require.Error(t, err)
	assert.Empty(t, spy.calls)
}

func TestPipeline_BuildsFilter(t *testing.T) {
	f, err := emissions.NewPipeline(newSpy()).Run(emissions.Request{
		Country: strPtr("DE"),
		Begin:   strPtr("2019-02-01"),
		Limit:   intPtr(10),
		Offset:  intPtr(0),
	})
	require.NoError(t, err)
	assert.True(t, f.HasBoundary())
	require.NotNil(t, f.Dates.Begin)
	assert.Nil(t, f.Dates.End)
	assert.Equal(t, 10, *f.Page.Limit)
	assert.Equal(t, 0, *f.Page.Offset)
}

func TestPaginationStage(t *testing.T) {
	tests := []struct {
		name    string
		limit   *int
		offset  *int
		wantMsg string
	}{
		{"absent", nil, nil, ""},
		{"zero", intPtr(0), intPtr(0), ""},
		{"negative limit", intPtr(-1), nil, "Invalid limit"},
		{"negative offset", nil, intPtr(-5), "Invalid offset"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f, err := emissions.PaginationStage().Apply(emissions.Request{Limit: tt.limit, Offset: tt.offset}, emissions.Filter{})
			if tt.wantMsg == "" {
				require.NoError(t, err)
				assert.Equal(t, tt.limit, f.Page.Limit)
				assert.Equal(t, tt.offset, f.Page.Offset)
				return
			}
			require.Error(t, err)
			assert.True(t, errors.Is(err, emissions.ErrInvalidPagination))
			assert.Equal(t, tt.wantMsg, err.Error())
		})
	}
}

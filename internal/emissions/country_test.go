package emissions_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shaardie/emissions-api/internal/emissions"
)

func TestLoadCountryTable(t *testing.T) {
	table, err := emissions.LoadCountryTable()
	require.NoError(t, err)
	assert.Greater(t, table.Len(), 150)

	for _, code := range []string{"DE", "US", "GB", "FR"} {
		rect, ok := table.Lookup(code)
		assert.True(t, ok, code)
		assert.True(t, rect.Valid(), code)
	}

	_, ok := table.Lookup("ZZ")
	assert.False(t, ok)
}

func TestCountryTable_LookupNormalizesCode(t *testing.T) {
	table, err := emissions.LoadCountryTable()
	require.NoError(t, err)

	want, ok := table.Lookup("DE")
	require.True(t, ok)

	got, ok := table.Lookup(" de ")
	require.True(t, ok)
	assert.Equal(t, want, got)
}

func TestCountryTable_EntriesSorted(t *testing.T) {
	table, err := emissions.NewCountryTable([]emissions.CountryEntry{
		{Code: "fr", Name: "France"},
		{Code: "AT", Name: "Austria"},
	})
	require.NoError(t, err)

	entries := table.Entries()
	require.Len(t, entries, 2)
	assert.Equal(t, "AT", entries[0].Code)
	assert.Equal(t, "FR", entries[1].Code)

	entries[0].Code = "XX"
	assert.Equal(t, "AT", table.Entries()[0].Code)
}

func TestNewCountryTable_Duplicate(t *testing.T) {
	_, err := emissions.NewCountryTable([]emissions.CountryEntry{
		{Code: "DE"}, {Code: "de"},
	})
	assert.Error(t, err)
}

func TestParseCountryTable_InvalidBounds(t *testing.T) {
	_, err := emissions.ParseCountryTable([]byte(`[{"code":"XX","name":"X","bbox":[10,0,5,1]}]`))
	assert.Error(t, err)

	_, err = emissions.ParseCountryTable([]byte(`{`))
	assert.Error(t, err)
}

package emissions

import (
	_ "embed"
	"fmt"
	"sort"
	"strings"

	"github.com/goccy/go-json"
)

//go:embed countries.json
var countriesJSON []byte

// CountryLookup resolves a country code to its bounding rectangle.
type CountryLookup interface {
	Lookup(code string) (Rectangle, bool)
}

// CountryEntry is one row of the country table.
type CountryEntry struct {
	Code   string    `json:"code"`
	Name   string    `json:"name"`
	Bounds Rectangle `json:"bounds"`
}

// CountryTable maps ISO 3166-1 alpha-2 codes to bounding rectangles.
// It is never modified after construction and is safe for concurrent use.
type CountryTable struct {
	byCode  map[string]CountryEntry
	entries []CountryEntry
}

type rawCountry struct {
	Code string     `json:"code"`
	Name string     `json:"name"`
	BBox [4]float64 `json:"bbox"`
}

// LoadCountryTable builds the table from the embedded country data.
func LoadCountryTable() (*CountryTable, error) {
	return ParseCountryTable(countriesJSON)
}

// ParseCountryTable builds a table from a JSON array of
// {"code", "name", "bbox": [minLon, minLat, maxLon, maxLat]} objects.
func ParseCountryTable(data []byte) (*CountryTable, error) {
	var raw []rawCountry
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("decode country table: %w", err)
	}

	entries := make([]CountryEntry, 0, len(raw))
	for _, c := range raw {
		code := normalizeCountryCode(c.Code)
		if code == "" {
			return nil, fmt.Errorf("country table: empty code for %q", c.Name)
		}
		bounds := Rectangle{MinLon: c.BBox[0], MinLat: c.BBox[1], MaxLon: c.BBox[2], MaxLat: c.BBox[3]}
		if !bounds.Valid() {
			return nil, fmt.Errorf("country table: invalid bounds for %s", code)
		}
		entries = append(entries, CountryEntry{Code: code, Name: c.Name, Bounds: bounds})
	}

	return NewCountryTable(entries)
}

// NewCountryTable builds a table from entries. Duplicate codes are rejected.
func NewCountryTable(entries []CountryEntry) (*CountryTable, error) {
	t := &CountryTable{
		byCode:  make(map[string]CountryEntry, len(entries)),
		entries: make([]CountryEntry, 0, len(entries)),
	}
	for _, e := range entries {
		e.Code = normalizeCountryCode(e.Code)
		if _, dup := t.byCode[e.Code]; dup {
			return nil, fmt.Errorf("country table: duplicate code %s", e.Code)
		}
		t.byCode[e.Code] = e
		t.entries = append(t.entries, e)
	}
	sort.Slice(t.entries, func(i, j int) bool {
		return t.entries[i].Code < t.entries[j].Code
	})
	return t, nil
}

// Lookup returns the bounding rectangle for code. Codes are matched
// case-insensitively after trimming surrounding whitespace.
func (t *CountryTable) Lookup(code string) (Rectangle, bool) {
	e, ok := t.byCode[normalizeCountryCode(code)]
	return e.Bounds, ok
}

// Entries returns all countries ordered by code.
func (t *CountryTable) Entries() []CountryEntry {
	out := make([]CountryEntry, len(t.entries))
	copy(out, t.entries)
	return out
}

// Len returns the number of countries in the table.
func (t *CountryTable) Len() int {
	return len(t.entries)
}

func normalizeCountryCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

var _ CountryLookup = (*CountryTable)(nil)

package emissions

import (
	"strings"
	"time"

	"github.com/araddon/dateparse"
)

// ParseDate parses free-form date text such as "2019-02-01",
// "2019-02-01T10:00:00Z" or "Feb 1, 2019". Times without a zone are UTC.
func ParseDate(raw string) (time.Time, error) {
	return dateparse.ParseIn(strings.TrimSpace(raw), time.UTC)
}

// ParseDateRange parses the begin and end fields in that order.
// Absent fields stay unbounded; the first unparseable field fails the whole
// range with InvalidDateField.
func ParseDateRange(begin, end *string) (DateRange, error) {
	var dr DateRange

	fields := []struct {
		name string
		raw  *string
		dst  **time.Time
	}{
		{ParamBegin, begin, &dr.Begin},
		{ParamEnd, end, &dr.End},
	}

	for _, f := range fields {
		if f.raw == nil {
			continue
		}
		t, err := ParseDate(*f.raw)
		if err != nil {
			return DateRange{}, InvalidDateField(f.name)
		}
		*f.dst = &t
	}

	return dr, nil
}

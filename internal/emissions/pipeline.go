package emissions

import (
	"errors"
	"reflect"
	"sync"

	"github.com/go-playground/validator/v10"
)

// Stage is one validation step. It reads the raw request and the filter built
// so far, and returns the extended filter or a terminal error.
type Stage struct {
	Name  string
	Apply func(req Request, f Filter) (Filter, error)
}

// Pipeline runs stages in order and stops at the first error.
type Pipeline []Stage

// NewPipeline returns the request pipeline: dates, then geometry, then
// pagination.
func NewPipeline(countries CountryLookup) Pipeline {
	return Pipeline{
		DateStage(),
		GeometryStage(countries),
		PaginationStage(),
	}
}

// Run builds the filter for req. No partial filter is returned on error.
func (p Pipeline) Run(req Request) (Filter, error) {
	var f Filter
	for _, st := range p {
		next, err := st.Apply(req, f)
		if err != nil {
			return Filter{}, err
		}
		f = next
	}
	return f, nil
}

// DateStage parses the begin and end fields.
func DateStage() Stage {
	return Stage{
		Name: "dates",
		Apply: func(req Request, f Filter) (Filter, error) {
			dr, err := ParseDateRange(req.Begin, req.End)
			if err != nil {
				return Filter{}, err
			}
			f.Dates = dr
			return f, nil
		},
	}
}

// GeometryStage resolves the spatial input using countries for country codes.
func GeometryStage(countries CountryLookup) Stage {
	return Stage{
		Name: "geometry",
		Apply: func(req Request, f Filter) (Filter, error) {
			ring, err := ResolveGeometry(req, countries)
			if err != nil {
				return Filter{}, err
			}
			f.Boundary = ring
			return f, nil
		},
	}
}

// PaginationStage checks that limit and offset are not negative.
func PaginationStage() Stage {
	return Stage{
		Name: "pagination",
		Apply: func(req Request, f Filter) (Filter, error) {
			page := Pagination{Limit: req.Limit, Offset: req.Offset}
			if err := getValidator().Struct(page); err != nil {
				var verrs validator.ValidationErrors
				if errors.As(err, &verrs) && len(verrs) > 0 {
					return Filter{}, InvalidPagination(verrs[0].Field())
				}
				return Filter{}, err
			}
			f.Page = page
			return f, nil
		},
	}
}

var (
	validate     *validator.Validate
	validateOnce sync.Once
)

// getValidator returns the shared validator. Field names in errors use the
// `param` struct tag so they match request parameter names.
func getValidator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
		validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
			if name := fld.Tag.Get("param"); name != "" {
				return name
			}
			return fld.Name
		})
	})
	return validate
}

package emissions

import (
	"errors"
	"net/http"
)

// Client error kinds. Every *ClientError matches exactly one of these with errors.Is.
var (
	ErrInvalidDate       = errors.New("invalid date")
	ErrInvalidGeoframe   = errors.New("invalid geoframe")
	ErrUnknownCountry    = errors.New("unknown country code")
	ErrInvalidPolygon    = errors.New("invalid polygon")
	ErrInvalidPagination = errors.New("invalid pagination")
)

// ClientError is a terminal validation failure caused by request input.
// Message is safe to return to the caller verbatim.
type ClientError struct {
	Kind    error
	Field   string
	Message string
	Status  int
}

func (e *ClientError) Error() string {
	return e.Message
}

// Is reports whether target is the kind of this error.
func (e *ClientError) Is(target error) bool {
	return e.Kind == target
}

func (e *ClientError) Unwrap() error {
	return e.Kind
}

func newClientError(kind error, field, message string) *ClientError {
	return &ClientError{
		Kind:    kind,
		Field:   field,
		Message: message,
		Status:  http.StatusBadRequest,
	}
}

// InvalidDateField returns the error for an unparseable date in field.
func InvalidDateField(field string) *ClientError {
	return newClientError(ErrInvalidDate, field, "Invalid "+field)
}

// InvalidGeoframe returns the error for a malformed bounding box.
func InvalidGeoframe() *ClientError {
	return newClientError(ErrInvalidGeoframe, ParamGeoframe, "Invalid geoparam")
}

// UnknownCountryCode returns the error for a code missing from the country table.
func UnknownCountryCode() *ClientError {
	return newClientError(ErrUnknownCountry, ParamCountry, "Unknown country code.")
}

// InvalidPolygon returns the error for a polygon failing validation with detail.
func InvalidPolygon(detail string) *ClientError {
	return newClientError(ErrInvalidPolygon, ParamPolygon, detail)
}

// InvalidPagination returns the error for a negative or malformed limit/offset.
func InvalidPagination(field string) *ClientError {
	return newClientError(ErrInvalidPagination, field, "Invalid "+field)
}

// AsClientError extracts a *ClientError from err.
func AsClientError(err error) (*ClientError, bool) {
	var ce *ClientError
	if errors.As(err, &ce) {
		return ce, true
	}
	return nil, false
}

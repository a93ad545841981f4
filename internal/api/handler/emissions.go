// Package handler provides HTTP handlers for the emissions API.
package handler

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/rs/zerolog"

	"github.com/shaardie/emissions-api/internal/api/models"
	"github.com/shaardie/emissions-api/internal/api/response"
	"github.com/shaardie/emissions-api/internal/emissions"
	"github.com/shaardie/emissions-api/internal/resilience"
)

// EmissionsHandler handles the emission data endpoints.
type EmissionsHandler struct {
	service *emissions.Service
}

// NewEmissionsHandler creates a new EmissionsHandler.
func NewEmissionsHandler(service *emissions.Service) *EmissionsHandler {
	return &EmissionsHandler{service: service}
}

// Points handles GET /api/v1/geo.json - samples as a GeoJSON FeatureCollection.
func (h *EmissionsHandler) Points(w http.ResponseWriter, r *http.Request) {
	req, err := ParseRequest(r.URL.Query())
	if err != nil {
		writeError(w, r, err)
		return
	}

	fc, err := h.service.Points(r.Context(), req)
	if err != nil {
		writeError(w, r, err)
		return
	}
	response.GeoJSON(w, r, http.StatusOK, fc)
}

// Averages handles GET /api/v1/average.json - daily averages.
func (h *EmissionsHandler) Averages(w http.ResponseWriter, r *http.Request) {
	req, err := ParseRequest(r.URL.Query())
	if err != nil {
		writeError(w, r, err)
		return
	}

	records, err := h.service.Averages(r.Context(), req)
	if err != nil {
		writeError(w, r, err)
		return
	}
	response.JSON(w, r, http.StatusOK, records)
}

// ParseRequest extracts the filter parameters from a query string.
// Absent parameters stay nil; only limit and offset are converted here.
func ParseRequest(q url.Values) (emissions.Request, error) {
	req := emissions.Request{
		Geoframe: q[emissions.ParamGeoframe],
		Polygon:  q[emissions.ParamPolygon],
		Country:  optional(q, emissions.ParamCountry),
		Begin:    optional(q, emissions.ParamBegin),
		End:      optional(q, emissions.ParamEnd),
	}

	var err error
	if req.Limit, err = optionalInt(q, emissions.ParamLimit); err != nil {
		return emissions.Request{}, err
	}
	if req.Offset, err = optionalInt(q, emissions.ParamOffset); err != nil {
		return emissions.Request{}, err
	}
	return req, nil
}

func optional(q url.Values, key string) *string {
	if _, ok := q[key]; !ok {
		return nil
	}
	v := q.Get(key)
	return &v
}

func optionalInt(q url.Values, key string) (*int, error) {
	raw := optional(q, key)
	if raw == nil {
		return nil, nil
	}
	n, err := strconv.Atoi(strings.TrimSpace(*raw))
	if err != nil {
		return nil, emissions.InvalidPagination(key)
	}
	return &n, nil
}

// writeError maps service errors to problem responses.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	log := zerolog.Ctx(r.Context())

	if ce, ok := emissions.AsClientError(err); ok {
		response.BadRequest(w, r, ce.Message, []models.FieldError{{
			Field:   ce.Field,
			Message: ce.Message,
		}})
		return
	}

	switch {
	case errors.Is(err, resilience.ErrStoreUnavailable):
		log.Warn().Err(err).Msg("store unavailable")
		response.ServiceUnavailable(w, r, "The emission store is temporarily unavailable.")
	case errors.Is(err, context.Canceled):
		log.Debug().Err(err).Msg("request canceled")
	default:
		log.Error().Err(err).Msg("failed to query emissions")
		response.InternalError(w, r, "Failed to query emission data.")
	}
}

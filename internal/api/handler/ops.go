package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/shaardie/emissions-api/internal/api/models"
	"github.com/shaardie/emissions-api/internal/api/response"
	"github.com/shaardie/emissions-api/internal/emissions"
	"github.com/shaardie/emissions-api/internal/resilience"
)

const readyTimeout = 2 * time.Second

// StoreHealthReporter reports circuit breaker state of a guarded store.
type StoreHealthReporter interface {
	Health() *resilience.StoreHealth
}

// OpsHandler handles operational endpoints.
type OpsHandler struct {
	version   string
	buildTime string
	store     emissions.Pinger
	countries *emissions.CountryTable
}

// NewOpsHandler creates a new OpsHandler. store may be nil, in which case
// readiness only reports the process itself.
func NewOpsHandler(version, buildTime string, store emissions.Pinger, countries *emissions.CountryTable) *OpsHandler {
	return &OpsHandler{
		version:   version,
		buildTime: buildTime,
		store:     store,
		countries: countries,
	}
}

// HealthCheck handles GET /api/v1/ops/health - liveness check.
func (h *OpsHandler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	health := models.Health{
		Status: models.HealthStatusOK,
		Time:   time.Now().UTC(),
		Details: map[string]any{
			"version":   h.version,
			"buildTime": h.buildTime,
		},
	}
	response.JSON(w, r, http.StatusOK, health)
}

// ReadinessCheck handles GET /api/v1/ops/ready - store reachability and
// breaker state. Any failing check turns the response into a 503.
func (h *OpsHandler) ReadinessCheck(w http.ResponseWriter, r *http.Request) {
	ready := models.Readiness{
		Status: models.HealthStatusOK,
		Time:   time.Now().UTC(),
		Checks: []models.Check{},
	}

	if h.store != nil {
		ctx, cancel := context.WithTimeout(r.Context(), readyTimeout)
		defer cancel()

		check := models.Check{Name: "database", Status: models.HealthStatusOK}
		if err := h.store.Ping(ctx); err != nil {
			check.Status = models.HealthStatusFail
			check.Detail = err.Error()
		}
		ready.Checks = append(ready.Checks, check)

		if reporter, ok := h.store.(StoreHealthReporter); ok {
			ready.Checks = append(ready.Checks, breakerCheck(reporter.Health()))
		}
	}

	status := http.StatusOK
	for _, c := range ready.Checks {
		switch c.Status {
		case models.HealthStatusFail:
			ready.Status = models.HealthStatusFail
			status = http.StatusServiceUnavailable
		case models.HealthStatusDegraded:
			if ready.Status == models.HealthStatusOK {
				ready.Status = models.HealthStatusDegraded
			}
		}
	}
	response.JSON(w, r, status, ready)
}

func breakerCheck(health *resilience.StoreHealth) models.Check {
	check := models.Check{
		Name:          "circuit-breaker",
		Status:        models.HealthStatusOK,
		Detail:        health.CircuitState.String(),
		LastSuccessAt: health.LastSuccessAt,
		LastFailureAt: health.LastFailureAt,
	}
	switch {
	case health.IsUnhealthy():
		check.Status = models.HealthStatusFail
	case health.IsDegraded():
		check.Status = models.HealthStatusDegraded
	}
	return check
}

// ListCountries handles GET /api/v1/countries - supported country codes.
func (h *OpsHandler) ListCountries(w http.ResponseWriter, r *http.Request) {
	entries := h.countries.Entries()
	out := make([]models.Country, 0, len(entries))
	for _, e := range entries {
		out = append(out, models.Country{
			Code: e.Code,
			Name: e.Name,
			BBox: []float64{e.Bounds.MinLon, e.Bounds.MinLat, e.Bounds.MaxLon, e.Bounds.MaxLat},
		})
	}
	response.JSON(w, r, http.StatusOK, out)
}

// Root handles GET / - redirects to the health endpoint.
func (h *OpsHandler) Root(w http.ResponseWriter, r *http.Request) {
	http.Redirect(w, r, "/api/v1/ops/health", http.StatusFound)
}

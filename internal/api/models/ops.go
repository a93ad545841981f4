// Package models provides response models for the emissions API.
package models

import "time"

// HealthStatus represents the health status of a service.
type HealthStatus string

const (
	HealthStatusOK       HealthStatus = "OK"
	HealthStatusDegraded HealthStatus = "DEGRADED"
	HealthStatusFail     HealthStatus = "FAIL"
)

// Health represents the health status of the service.
type Health struct {
	Status  HealthStatus   `json:"status"`
	Time    time.Time      `json:"time"`
	Details map[string]any `json:"details,omitempty"`
}

// Readiness reports whether the service can answer data requests.
type Readiness struct {
	Status HealthStatus `json:"status"`
	Time   time.Time    `json:"time"`
	Checks []Check      `json:"checks"`
}

// Check is the outcome of one readiness dependency check.
type Check struct {
	Name          string       `json:"name"`
	Status        HealthStatus `json:"status"`
	Detail        string       `json:"detail,omitempty"`
	LastSuccessAt *time.Time   `json:"lastSuccessAt,omitempty"`
	LastFailureAt *time.Time   `json:"lastFailureAt,omitempty"`
}

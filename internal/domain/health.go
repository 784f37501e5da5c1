package domain

import "fmt"

// HealthStatus indicates doctor check outcomes.
type HealthStatus string

const (
	HealthOK    HealthStatus = "ok"
	HealthWarn  HealthStatus = "warn"
	HealthError HealthStatus = "error"
)

// HealthCheck captures a single diagnostic result.
type HealthCheck struct {
	Name    string
	Status  HealthStatus
	Details string
}

// HealthReport aggregates checks.
type HealthReport struct {
	Checks []HealthCheck
}

// Healthy is false when any check failed outright.
func (r HealthReport) Healthy() bool {
	for _, check := range r.Checks {
		if check.Status == HealthError {
			return false
		}
	}
	return true
}

// Summary counts checks by status, e.g. "4 ok, 1 warn, 0 error".
func (r HealthReport) Summary() string {
	counts := map[HealthStatus]int{}
	for _, check := range r.Checks {
		counts[check.Status]++
	}
	return fmt.Sprintf("%d ok, %d warn, %d error", counts[HealthOK], counts[HealthWarn], counts[HealthError])
}

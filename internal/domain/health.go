package domain

import "time"

type HealthStatus string

const (
	HealthStatusHealthy   HealthStatus = "healthy"
	HealthStatusUnhealthy HealthStatus = "unhealthy"
)

type HealthResponse struct {
	Status    HealthStatus `json:"status"`
	Timestamp time.Time    `json:"timestamp"`
	Service   string       `json:"service"`
	Message   string       `json:"message,omitempty"`
}

// ServiceStatus is a point-in-time snapshot of the checker service.
type ServiceStatus struct {
	Service   string            `json:"service"`
	IsRunning bool              `json:"is_running"`
	InFlight  int64             `json:"in_flight"`
	Total     int64             `json:"total"`
	Verdicts  map[Verdict]int64 `json:"verdicts"`
	MaxValue  int64             `json:"max_value"`
	Timeout   string            `json:"timeout"`
}

// BuildInfo describes the running binary.
type BuildInfo struct {
	Service string `json:"service"`
	Version string `json:"version"`
	Commit  string `json:"commit"`
}

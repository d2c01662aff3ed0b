package component

import "context"

// HealthStatus is the health state of a component.
type HealthStatus string

const (
	StatusHealthy   HealthStatus = "healthy"
	StatusUnhealthy HealthStatus = "unhealthy"
	StatusDegraded  HealthStatus = "degraded"
)

// Health is a component health report.
type Health struct {
	Name    string       `json:"name"`
	Status  HealthStatus `json:"status"`
	Message string       `json:"message,omitempty"`
}

// Component is a lifecycle-managed infrastructure component.
type Component interface {
	Name() string
	Start(ctx context.Context) error
	Stop(ctx context.Context) error
	Health(ctx context.Context) Health
}

// Description is what a component reports about itself in the startup summary.
type Description struct {
	// Name defaults to the component Name() when empty.
	Name string `json:"name" yaml:"name"`
	// Type categorizes the component, e.g. "mongodb".
	Type string `json:"type" yaml:"type"`
	// Details is a one-line summary such as "db1:27017,db2:27017 db=orders".
	Details string `json:"details" yaml:"details"`
}

// Describable is optionally implemented by components that contribute to
// the startup summary.
type Describable interface {
	Describe() Description
}

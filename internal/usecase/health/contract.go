package health

import "context"

// Pinger checks a backing store (catalog database, snapshot mirror).
type Pinger interface {
	Ping(ctx context.Context) error
}

// GenerationChecker checks generation provider availability.
type GenerationChecker interface {
	HealthCheck(ctx context.Context) error
}

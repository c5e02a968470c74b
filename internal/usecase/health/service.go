package health

import (
	"context"

	"go.uber.org/zap"
)

// Status represents the aggregated health status.
type Status string

const (
	// Healthy indicates all components are operational.
	Healthy Status = "ok"
	// Degraded indicates partial failure.
	Degraded Status = "degraded"
)

// CheckResult represents an individual component health check outcome.
type CheckResult string

const (
	// CheckOK indicates a passing health check.
	CheckOK CheckResult = "ok"
	// CheckError indicates a failing health check.
	CheckError CheckResult = "error"
)

// Component names reported in Report.Checks.
const (
	ComponentCatalog    = "catalog"
	ComponentMirror     = "mirror"
	ComponentGeneration = "generation"
)

// Report aggregates health check results.
type Report struct {
	Status Status
	Checks map[string]CheckResult
}

// Service coordinates health checks.
type Service struct {
	catalog    Pinger
	mirror     Pinger
	generation GenerationChecker
	logger     *zap.Logger
}

// New creates a Service. Only the catalog database is mandatory.
func New(catalog Pinger, logger *zap.Logger) *Service {
	return &Service{catalog: catalog, logger: logger}
}

// WithMirror adds the snapshot mirror check.
func (s *Service) WithMirror(p Pinger) *Service {
	s.mirror = p
	return s
}

// WithGeneration adds the generation provider check.
func (s *Service) WithGeneration(g GenerationChecker) *Service {
	s.generation = g
	return s
}

// Check runs health checks against all configured components.
func (s *Service) Check(ctx context.Context) Report {
	checks := make(map[string]CheckResult, 3)

	checks[ComponentCatalog] = s.result(ComponentCatalog, s.catalog.Ping(ctx))
	if s.mirror != nil {
		checks[ComponentMirror] = s.result(ComponentMirror, s.mirror.Ping(ctx))
	}
	if s.generation != nil {
		checks[ComponentGeneration] = s.result(ComponentGeneration, s.generation.HealthCheck(ctx))
	}

	status := Healthy
	for _, v := range checks {
		if v == CheckError {
			status = Degraded
			break
		}
	}

	return Report{Status: status, Checks: checks}
}

func (s *Service) result(component string, err error) CheckResult {
	if err == nil {
		return CheckOK
	}
	s.logger.Warn("Health check failed", zap.String("component", component), zap.Error(err))
	return CheckError
}

// Package health aggregates per-dataset source health checks.
package health

import "context"

// SourcePinger checks a record source's availability.
type SourcePinger interface {
	Ping(ctx context.Context) error
}

// AgentChecker checks the voice agent's language-model provider.
type AgentChecker interface {
	HealthCheck(ctx context.Context) error
}

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

// Report aggregates health check results.
type Report struct {
	Status Status
	Checks map[string]CheckResult
}

// Service coordinates health checks over record sources and, optionally,
// the agent provider. A failed check degrades the report without touching
// the other components: dataset failures stay isolated.
type Service struct {
	sources map[string]SourcePinger
	agent   AgentChecker
}

// New creates a Service. agent can be nil.
func New(sources map[string]SourcePinger, agent AgentChecker) *Service {
	return &Service{sources: sources, agent: agent}
}

// Check runs health checks against all components.
func (s *Service) Check(ctx context.Context) Report {
	checks := make(map[string]CheckResult)

	for name, src := range s.sources {
		if err := src.Ping(ctx); err != nil {
			checks["source:"+name] = CheckError
		} else {
			checks["source:"+name] = CheckOK
		}
	}

	if s.agent != nil {
		if err := s.agent.HealthCheck(ctx); err != nil {
			checks["agent"] = CheckError
		} else {
			checks["agent"] = CheckOK
		}
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

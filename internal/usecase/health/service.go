package health

import "context"

// Status represents the aggregated health status.
type Status string

const (
	// Healthy indicates all components are operational.
	Healthy Status = "ok"
	// Degraded indicates an optional component (embedding, cache) is failing.
	Degraded Status = "degraded"
	// Unhealthy indicates the vector database is unreachable.
	Unhealthy Status = "error"
)

// CheckResult represents an individual component health check outcome.
type CheckResult string

const (
	// CheckOK indicates a passing health check.
	CheckOK CheckResult = "ok"
	// CheckError indicates a failing health check.
	CheckError CheckResult = "error"
)

// VectorDatabase is the name of the required check.
const VectorDatabase = "vector_database"

// Report aggregates health check results.
type Report struct {
	Status Status                 `json:"status"`
	Checks map[string]CheckResult `json:"checks"`
}

// Service coordinates health checks.
type Service struct {
	vectorDB Pinger
	optional map[string]Pinger
}

// New creates a Service around the required vector database check.
func New(vectorDB Pinger) *Service {
	return &Service{vectorDB: vectorDB, optional: map[string]Pinger{}}
}

// WithCheck adds an optional component; its failure only degrades the report.
func (s *Service) WithCheck(name string, p Pinger) *Service {
	if p != nil {
		s.optional[name] = p
	}
	return s
}

// Check runs health checks against all components.
func (s *Service) Check(ctx context.Context) Report {
	checks := make(map[string]CheckResult, len(s.optional)+1)
	status := Healthy

	checks[VectorDatabase] = run(ctx, s.vectorDB)
	if checks[VectorDatabase] == CheckError {
		status = Unhealthy
	}

	for name, p := range s.optional {
		checks[name] = run(ctx, p)
		if checks[name] == CheckError && status == Healthy {
			status = Degraded
		}
	}

	return Report{Status: status, Checks: checks}
}

func run(ctx context.Context, p Pinger) CheckResult {
	if err := p.Ping(ctx); err != nil {
		return CheckError
	}
	return CheckOK
}

package health

import "context"

// Status represents the aggregated health status.
type Status string

const (
	// Healthy indicates all components are operational.
	Healthy Status = "ok"
	// Degraded indicates predictions are served but a supporting component failed.
	Degraded Status = "degraded"
	// Unhealthy indicates predictions cannot be served.
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

// Component names reported in Report.Checks.
const (
	ComponentArtifacts = "artifacts"
	ComponentDatabase  = "database"
)

// Report aggregates health check results.
type Report struct {
	Status      Status
	Checks      map[string]CheckResult
	Fingerprint string
}

// Service coordinates health checks.
type Service struct {
	artifacts ArtifactProvider
	db        DBPinger
}

// New creates a Service. db can be nil when no database is configured.
func New(artifacts ArtifactProvider, db DBPinger) *Service {
	return &Service{artifacts: artifacts, db: db}
}

// Check runs health checks against all components.
func (s *Service) Check(ctx context.Context) Report {
	r := Report{Status: Healthy, Checks: make(map[string]CheckResult)}

	if store, err := s.artifacts.Artifacts(ctx); err != nil {
		r.Checks[ComponentArtifacts] = CheckError
		r.Status = Unhealthy
	} else {
		r.Checks[ComponentArtifacts] = CheckOK
		r.Fingerprint = store.Fingerprint()
	}

	if s.db != nil {
		if err := s.db.Ping(ctx); err != nil {
			r.Checks[ComponentDatabase] = CheckError
			if r.Status == Healthy {
				r.Status = Degraded
			}
		} else {
			r.Checks[ComponentDatabase] = CheckOK
		}
	}

	return r
}

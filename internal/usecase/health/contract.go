package health

import (
	"context"

	"github.com/kailas-cloud/lnaperf/internal/domain/artifact"
)

// DBPinger checks database availability.
type DBPinger interface {
	Ping(ctx context.Context) error
}

// ArtifactProvider returns the loaded artifacts.
type ArtifactProvider interface {
	Artifacts(ctx context.Context) (*artifact.Store, error)
}

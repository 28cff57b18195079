package prediction

import (
	"context"

	"github.com/kailas-cloud/lnaperf/internal/domain/artifact"
	domprediction "github.com/kailas-cloud/lnaperf/internal/domain/prediction"
)

// ArtifactProvider returns the loaded artifact store.
type ArtifactProvider interface {
	Artifacts(ctx context.Context) (*artifact.Store, error)
}

// ResultCache stores successful predictions by key. Implementations must not fail the caller.
type ResultCache interface {
	Get(ctx context.Context, key string) (domprediction.Result, bool)
	Put(ctx context.Context, key string, r domprediction.Result)
}

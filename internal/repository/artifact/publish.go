package artifact

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	domartifact "github.com/kailas-cloud/lnaperf/internal/domain/artifact"
)

// kvSetter is the consumer interface for Publish (ISP).
type kvSetter interface {
	Set(ctx context.Context, key string, value []byte) error
}

// Publish validates the artifacts in src and copies them to dst under prefix+name,
// so a KVSource with the same prefix and names serves them. Each blob is read once,
// so the published bytes are the validated ones. Returns the fingerprint.
func Publish(
	ctx context.Context, src Source, dst kvSetter, prefix string, names Names, logger *zap.Logger,
) (string, error) {
	store, blobs, err := NewLoader(src, names, logger).LoadBlobs(ctx)
	if err != nil {
		return "", err
	}

	for i, a := range domartifact.Names() {
		file := names.file(a)
		if err := dst.Set(ctx, prefix+file, blobs[i]); err != nil {
			return "", fmt.Errorf("publish %s: %w", file, err)
		}
	}
	return store.Fingerprint(), nil
}

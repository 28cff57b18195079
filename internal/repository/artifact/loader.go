package artifact

import (
	"context"
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"fmt"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/kailas-cloud/lnaperf/internal/domain"
	domartifact "github.com/kailas-cloud/lnaperf/internal/domain/artifact"
	"github.com/kailas-cloud/lnaperf/internal/domain/model"
	"github.com/kailas-cloud/lnaperf/internal/metrics"
)

// Names maps each artifact to its file name (or key suffix).
type Names struct {
	Gain    string
	Noise   string
	Scaler  string
	Encoder string
}

// DefaultNames returns the file names written by the training process.
func DefaultNames() Names {
	return Names{
		Gain:    "gb_model_gain.json",
		Noise:   "gb_model_noise.json",
		Scaler:  "scaler.json",
		Encoder: "label_encoder.json",
	}
}

func (n Names) file(a domartifact.Name) string {
	switch a {
	case domartifact.GainModel:
		return n.Gain
	case domartifact.NoiseModel:
		return n.Noise
	case domartifact.Scaler:
		return n.Scaler
	case domartifact.Encoder:
		return n.Encoder
	default:
		return ""
	}
}

// Loader fetches and decodes the four artifacts into a domain store.
type Loader struct {
	source Source
	names  Names
	logger *zap.Logger
}

// NewLoader creates a loader.
func NewLoader(source Source, names Names, logger *zap.Logger) *Loader {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Loader{source: source, names: names, logger: logger}
}

// Load fetches all four artifacts concurrently. It returns a complete store or an
// ArtifactMissingError naming the first failing artifact in load order.
func (l *Loader) Load(ctx context.Context) (*domartifact.Store, error) {
	store, _, err := l.LoadBlobs(ctx)
	return store, err
}

// LoadBlobs is Load that also returns the raw blobs the store was decoded from,
// indexed like domartifact.Names().
func (l *Loader) LoadBlobs(ctx context.Context) (*domartifact.Store, [][]byte, error) {
	start := time.Now()
	store, blobs, err := l.load(ctx)
	elapsed := time.Since(start)

	status := "ok"
	if err != nil {
		status = "error"
	}
	metrics.ArtifactLoadDuration.WithLabelValues(l.source.Kind(), status).Observe(elapsed.Seconds())

	if err != nil {
		l.logger.Error("Failed to load artifacts",
			zap.String("source", l.source.Kind()),
			zap.Duration("duration", elapsed),
			zap.Error(err),
		)
		return nil, nil, err
	}
	l.logger.Info("Artifacts loaded",
		zap.String("source", l.source.Kind()),
		zap.String("fingerprint", store.Fingerprint()),
		zap.Strings("materials", store.Encoder().SortedClasses()),
		zap.Duration("duration", elapsed),
	)
	return store, blobs, nil
}

func (l *Loader) load(ctx context.Context) (*domartifact.Store, [][]byte, error) {
	names := domartifact.Names()
	blobs := make([][]byte, len(names))
	errs := make([]error, len(names))

	var (
		gain, noise *model.Ensemble
		scaler      *model.NumericScaler
		encoder     *model.CategoryEncoder
	)

	var g errgroup.Group
	for i, name := range names {
		g.Go(func() error {
			file := l.names.file(name)
			data, err := l.source.Fetch(ctx, file)
			if err != nil {
				errs[i] = domain.NewArtifactMissing(string(name), err)
				return nil
			}
			blobs[i] = data

			switch name {
			case domartifact.GainModel:
				gain, err = decodeRegressor(data)
			case domartifact.NoiseModel:
				noise, err = decodeRegressor(data)
			case domartifact.Scaler:
				scaler, err = decodeScaler(data)
			case domartifact.Encoder:
				encoder, err = decodeEncoder(data)
			}
			if err != nil {
				errs[i] = domain.NewArtifactMissing(string(name), fmt.Errorf("decode %s: %w", file, err))
			}
			return nil
		})
	}
	_ = g.Wait() // per-artifact errors are collected in errs

	for _, err := range errs {
		if err != nil {
			return nil, nil, err
		}
	}
	store, err := domartifact.New(gain, noise, scaler, encoder, fingerprint(blobs))
	if err != nil {
		return nil, nil, err
	}
	return store, blobs, nil
}

// fingerprint hashes the raw blobs in load order.
func fingerprint(blobs [][]byte) string {
	h := sha256.New()
	var size [8]byte
	for _, b := range blobs {
		binary.LittleEndian.PutUint64(size[:], uint64(len(b)))
		h.Write(size[:])
		h.Write(b)
	}
	return hex.EncodeToString(h.Sum(nil))[:16]
}

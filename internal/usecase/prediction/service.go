package prediction

import (
	"context"
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"fmt"
	"math"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/kailas-cloud/lnaperf/internal/domain"
	"github.com/kailas-cloud/lnaperf/internal/domain/artifact"
	"github.com/kailas-cloud/lnaperf/internal/domain/design"
	domfeature "github.com/kailas-cloud/lnaperf/internal/domain/feature"
	domprediction "github.com/kailas-cloud/lnaperf/internal/domain/prediction"
	logpkg "github.com/kailas-cloud/lnaperf/internal/logger"
	"github.com/kailas-cloud/lnaperf/internal/metrics"
)

// Default batch limits.
const (
	DefaultMaxBatchSize = 100
	DefaultBatchWorkers = 4
)

// Service serves predictions against an explicitly provided artifact store.
type Service struct {
	artifacts    ArtifactProvider
	cache        ResultCache
	logger       *zap.Logger
	maxBatchSize int
	workers      int
}

// New creates a prediction service.
func New(artifacts ArtifactProvider, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		artifacts:    artifacts,
		logger:       logger,
		maxBatchSize: DefaultMaxBatchSize,
		workers:      DefaultBatchWorkers,
	}
}

// WithCache enables result caching.
func (s *Service) WithCache(c ResultCache) *Service {
	s.cache = c
	return s
}

// WithBatchLimits configures the maximum batch size and the number of concurrent workers.
func (s *Service) WithBatchLimits(maxSize, workers int) *Service {
	if maxSize > 0 {
		s.maxBatchSize = maxSize
	}
	if workers > 0 {
		s.workers = workers
	}
	return s
}

// MaxBatchSize returns the largest accepted batch.
func (s *Service) MaxBatchSize() int {
	return s.maxBatchSize
}

// Predict returns the predicted gain and noise figure for params.
func (s *Service) Predict(ctx context.Context, params design.Parameters) (domprediction.Result, error) {
	start := time.Now()
	res, err := s.predict(ctx, params)
	s.observe(ctx, params, time.Since(start), err)
	return res, err
}

func (s *Service) predict(ctx context.Context, params design.Parameters) (domprediction.Result, error) {
	if err := params.Validate(); err != nil {
		return domprediction.Result{}, err
	}

	store, err := s.artifacts.Artifacts(ctx)
	if err != nil {
		return domprediction.Result{}, fmt.Errorf("get artifacts: %w", err)
	}

	var key string
	if s.cache != nil {
		key = CacheKey(store, params)
		if res, ok := s.cache.Get(ctx, key); ok {
			metrics.PredictionCacheTotal.WithLabelValues("hit").Inc()
			return res, nil
		}
		metrics.PredictionCacheTotal.WithLabelValues("miss").Inc()
	}

	res, err := Predict(params, store)
	if err != nil {
		return domprediction.Result{}, err
	}

	if s.cache != nil {
		s.cache.Put(ctx, key, res)
	}
	return res, nil
}

func (s *Service) observe(ctx context.Context, params design.Parameters, d time.Duration, err error) {
	metrics.PredictionDuration.Observe(d.Seconds())
	log := logpkg.FromContextOr(ctx, s.logger)

	if err == nil {
		metrics.PredictionsTotal.WithLabelValues("ok").Inc()
		log.Debug("Prediction served",
			zap.String("material", params.Material()),
			zap.String("architecture", params.Architecture()),
			zap.Duration("duration", d),
		)
		return
	}

	kind := domain.KindOf(err)
	metrics.PredictionsTotal.WithLabelValues(string(kind)).Inc()

	fields := []zap.Field{
		zap.String("material", params.Material()),
		zap.Float64("frequency_ghz", params.FrequencyGHz()),
		zap.Float64("bandwidth_ghz", params.BandwidthGHz()),
		zap.String("architecture", params.Architecture()),
		zap.String("kind", string(kind)),
		zap.Error(err),
	}
	switch kind {
	case domain.KindInternal, domain.KindArtifactMissing:
		log.Error("Prediction failed", fields...)
	default:
		log.Info("Prediction rejected", fields...)
	}
}

// PredictBatch predicts every design independently. Item i of the result
// corresponds to params[i]; a failing item never affects the others.
func (s *Service) PredictBatch(
	ctx context.Context, params []design.Parameters,
) ([]domprediction.Item, error) {
	if len(params) > s.maxBatchSize {
		return nil, fmt.Errorf("%w: %d items, max %d", domain.ErrBatchTooLarge, len(params), s.maxBatchSize)
	}

	items := make([]domprediction.Item, len(params))
	var g errgroup.Group
	g.SetLimit(s.workers)

	for i, p := range params {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				items[i] = domprediction.NewError(i, err)
				return nil
			}
			res, err := s.Predict(ctx, p)
			if err != nil {
				items[i] = domprediction.NewError(i, err)
				return nil
			}
			items[i] = domprediction.NewOK(i, res)
			return nil
		})
	}
	_ = g.Wait() // workers never return an error

	return items, nil
}

// KnownMaterials returns the materials the encoder accepts, sorted.
func (s *Service) KnownMaterials(ctx context.Context) ([]string, error) {
	store, err := s.artifacts.Artifacts(ctx)
	if err != nil {
		return nil, fmt.Errorf("get artifacts: %w", err)
	}
	return store.Encoder().SortedClasses(), nil
}

// KnownArchitectures returns the accepted architectures in one-hot column order.
func (s *Service) KnownArchitectures() []string {
	return domfeature.Architectures()
}

// FeatureColumns returns the training-time feature column order.
func (s *Service) FeatureColumns() []string {
	return domfeature.Columns()
}

// CacheKey identifies a prediction by artifact fingerprint and normalized parameters.
func CacheKey(store *artifact.Store, params design.Parameters) string {
	h := sha256.New()
	h.Write([]byte(store.Fingerprint()))
	h.Write([]byte{0})
	h.Write([]byte(store.Encoder().Normalize(params.Material())))
	h.Write([]byte{0})
	var buf [16]byte
	binary.LittleEndian.PutUint64(buf[:8], math.Float64bits(params.FrequencyGHz()))
	binary.LittleEndian.PutUint64(buf[8:], math.Float64bits(params.BandwidthGHz()))
	h.Write(buf[:])
	h.Write([]byte(params.Architecture()))
	return hex.EncodeToString(h.Sum(nil))
}

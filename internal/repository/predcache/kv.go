// Package predcache caches prediction results by key.
package predcache

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"math"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/lnaperf/internal/db"
	"github.com/kailas-cloud/lnaperf/internal/domain/prediction"
)

// KeyPrefix namespaces cached predictions in a shared key-value store.
const KeyPrefix = "lnaperf:pred:"

const resultSize = 16

// store is the consumer interface for the KV cache (ISP).
type store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	SetWithTTL(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

// KV caches results in a key-value store. Store failures are logged and
// reported as misses.
type KV struct {
	store  store
	ttl    time.Duration
	logger *zap.Logger
}

// NewKV creates a key-value backed cache. ttl <= 0 means no expiry.
func NewKV(s store, ttl time.Duration, logger *zap.Logger) *KV {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &KV{store: s, ttl: ttl, logger: logger}
}

// Get returns the cached result for key.
func (c *KV) Get(ctx context.Context, key string) (prediction.Result, bool) {
	data, err := c.store.Get(ctx, KeyPrefix+key)
	if err != nil {
		if !errors.Is(err, db.ErrKeyNotFound) {
			c.logger.Warn("Failed to get cached prediction", zap.String("key", key), zap.Error(err))
		}
		return prediction.Result{}, false
	}

	res, err := decodeResult(data)
	if err != nil {
		c.logger.Warn("Failed to parse cached prediction", zap.String("key", key), zap.Error(err))
		return prediction.Result{}, false
	}
	return res, true
}

// Put stores r under key.
func (c *KV) Put(ctx context.Context, key string, r prediction.Result) {
	data := encodeResult(r)
	var err error
	if c.ttl > 0 {
		err = c.store.SetWithTTL(ctx, KeyPrefix+key, data, c.ttl)
	} else {
		err = c.store.Set(ctx, KeyPrefix+key, data)
	}
	if err != nil {
		c.logger.Warn("Failed to cache prediction", zap.String("key", key), zap.Error(err))
	}
}

func encodeResult(r prediction.Result) []byte {
	buf := make([]byte, resultSize)
	binary.LittleEndian.PutUint64(buf[:8], math.Float64bits(r.GainDB()))
	binary.LittleEndian.PutUint64(buf[8:], math.Float64bits(r.NoiseDB()))
	return buf
}

func decodeResult(data []byte) (prediction.Result, error) {
	if len(data) != resultSize {
		return prediction.Result{}, fmt.Errorf("invalid prediction cache data: len=%d", len(data))
	}
	return prediction.NewResult(
		math.Float64frombits(binary.LittleEndian.Uint64(data[:8])),
		math.Float64frombits(binary.LittleEndian.Uint64(data[8:])),
	), nil
}

package predcache

import (
	"context"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"

	"github.com/kailas-cloud/lnaperf/internal/domain/prediction"
)

// Memory is an in-process LRU cache with optional expiry. Safe for concurrent use.
type Memory struct {
	lru *expirable.LRU[string, prediction.Result]
}

// NewMemory creates an LRU cache holding up to size entries. ttl <= 0 means no expiry.
func NewMemory(size int, ttl time.Duration) *Memory {
	if ttl < 0 {
		ttl = 0
	}
	return &Memory{lru: expirable.NewLRU[string, prediction.Result](size, nil, ttl)}
}

// Get returns the cached result for key.
func (m *Memory) Get(_ context.Context, key string) (prediction.Result, bool) {
	return m.lru.Get(key)
}

// Put stores r under key, evicting the least recently used entry when full.
func (m *Memory) Put(_ context.Context, key string, r prediction.Result) {
	m.lru.Add(key, r)
}

// Len returns the number of cached entries.
func (m *Memory) Len() int {
	return m.lru.Len()
}

package artifact

import (
	"context"
	"sync/atomic"

	"golang.org/x/sync/singleflight"

	domartifact "github.com/kailas-cloud/lnaperf/internal/domain/artifact"
)

type storeLoader interface {
	Load(ctx context.Context) (*domartifact.Store, error)
}

// Lazy loads the artifacts on first use. Concurrent first callers share a single load;
// a failed load is retried by the next caller.
type Lazy struct {
	loader storeLoader
	store  atomic.Pointer[domartifact.Store]
	group  singleflight.Group
}

// NewLazy creates a lazily loading provider.
func NewLazy(loader storeLoader) *Lazy {
	return &Lazy{loader: loader}
}

// Artifacts returns the loaded store, loading it if needed.
func (l *Lazy) Artifacts(ctx context.Context) (*domartifact.Store, error) {
	if s := l.store.Load(); s != nil {
		return s, nil
	}

	v, err, _ := l.group.Do("artifacts", func() (any, error) {
		if s := l.store.Load(); s != nil {
			return s, nil
		}
		// one caller's cancellation must not fail the load shared with the others
		s, err := l.loader.Load(context.WithoutCancel(ctx))
		if err != nil {
			return nil, err
		}
		l.store.Store(s)
		return s, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*domartifact.Store), nil
}

// Loaded reports whether the artifacts are in memory.
func (l *Lazy) Loaded() bool {
	return l.store.Load() != nil
}

// Static serves a store loaded up front.
type Static struct {
	store *domartifact.Store
}

// NewStatic creates a provider for an already loaded store.
func NewStatic(store *domartifact.Store) *Static {
	return &Static{store: store}
}

// Artifacts returns the store.
func (s *Static) Artifacts(_ context.Context) (*domartifact.Store, error) {
	return s.store, nil
}

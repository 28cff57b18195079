package artifact

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	domartifact "github.com/kailas-cloud/lnaperf/internal/domain/artifact"
	"github.com/kailas-cloud/lnaperf/internal/domain/artifact/artifacttest"
)

type countingLoader struct {
	calls atomic.Int32
	delay time.Duration
	fail  atomic.Bool
	store *domartifact.Store
}

func (l *countingLoader) Load(_ context.Context) (*domartifact.Store, error) {
	l.calls.Add(1)
	time.Sleep(l.delay)
	if l.fail.Load() {
		return nil, errors.New("boom")
	}
	return l.store, nil
}

func TestLazy_ConcurrentFirstCallersLoadOnce(t *testing.T) {
	loader := &countingLoader{delay: 50 * time.Millisecond, store: artifacttest.NewStore(t)}
	lazy := NewLazy(loader)

	const callers = 32
	var wg sync.WaitGroup
	stores := make([]*domartifact.Store, callers)
	for i := range callers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			s, err := lazy.Artifacts(context.Background())
			if err != nil {
				t.Errorf("unexpected error: %v", err)
				return
			}
			stores[i] = s
		}()
	}
	wg.Wait()

	if got := loader.calls.Load(); got != 1 {
		t.Errorf("loads = %d, want 1", got)
	}
	for i, s := range stores {
		if s != loader.store {
			t.Errorf("caller %d got a different store", i)
		}
	}
	if !lazy.Loaded() {
		t.Error("Loaded() = false after load")
	}

	if _, err := lazy.Artifacts(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := loader.calls.Load(); got != 1 {
		t.Errorf("loads after warm call = %d, want 1", got)
	}
}

func TestLazy_RetriesAfterFailure(t *testing.T) {
	loader := &countingLoader{store: artifacttest.NewStore(t)}
	loader.fail.Store(true)
	lazy := NewLazy(loader)

	if _, err := lazy.Artifacts(context.Background()); err == nil {
		t.Fatal("expected error")
	}
	if lazy.Loaded() {
		t.Fatal("Loaded() = true after failed load")
	}

	loader.fail.Store(false)
	s, err := lazy.Artifacts(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if s != loader.store {
		t.Error("unexpected store")
	}
	if got := loader.calls.Load(); got != 2 {
		t.Errorf("loads = %d, want 2", got)
	}
}

func TestLazy_CanceledCallerDoesNotFailLoad(t *testing.T) {
	lazy := NewLazy(NewLoader(testdataSource(t), DefaultNames(), nil))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := lazy.Artifacts(ctx); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestStatic(t *testing.T) {
	store := artifacttest.NewStore(t)
	s, err := NewStatic(store).Artifacts(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if s != store {
		t.Error("unexpected store")
	}
}

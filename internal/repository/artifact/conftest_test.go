package artifact

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/kailas-cloud/lnaperf/internal/db"
)

// mapSource serves blobs from memory. With corruptAfterRead set, every blob is
// replaced by invalid JSON once it has been read.
type mapSource struct {
	mu               sync.Mutex
	blobs            map[string][]byte
	calls            int
	corruptAfterRead bool
}

func (m *mapSource) Fetch(_ context.Context, name string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	data, ok := m.blobs[name]
	if !ok {
		return nil, ErrNotFound
	}
	if m.corruptAfterRead {
		m.blobs[name] = []byte("{corrupt")
	}
	return data, nil
}

func (m *mapSource) Kind() string { return "memory" }

// mockKVStore implements kvGetter and kvSetter over a map.
type mockKVStore struct {
	mu     sync.Mutex
	data   map[string][]byte
	getErr error
}

func newMockKVStore() *mockKVStore {
	return &mockKVStore{data: make(map[string][]byte)}
}

func (m *mockKVStore) Get(_ context.Context, key string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.getErr != nil {
		return nil, m.getErr
	}
	v, ok := m.data[key]
	if !ok {
		return nil, db.ErrKeyNotFound
	}
	return v, nil
}

func (m *mockKVStore) Set(_ context.Context, key string, value []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = append([]byte(nil), value...)
	return nil
}

// testdataSource reads every testdata blob into a mapSource.
func testdataSource(t *testing.T) *mapSource {
	t.Helper()
	names := DefaultNames()
	src := &mapSource{blobs: make(map[string][]byte)}
	for _, n := range []string{names.Gain, names.Noise, names.Scaler, names.Encoder} {
		data, err := os.ReadFile(filepath.Join("testdata", n))
		if err != nil {
			t.Fatalf("read testdata: %v", err)
		}
		src.blobs[n] = data
	}
	return src
}

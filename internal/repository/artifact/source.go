// Package artifact loads the trained artifacts from a file directory or a key-value store.
package artifact

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/kailas-cloud/lnaperf/internal/db"
)

// Source fetches raw artifact blobs by file name.
type Source interface {
	Fetch(ctx context.Context, name string) ([]byte, error)
	// Kind names the source for logs and metrics.
	Kind() string
}

// ErrNotFound is returned by a Source when the blob does not exist.
var ErrNotFound = errors.New("artifact blob not found")

// FileSource reads artifacts from a directory.
type FileSource struct {
	dir string
}

// NewFileSource creates a source rooted at dir.
func NewFileSource(dir string) *FileSource {
	return &FileSource{dir: dir}
}

// Fetch reads dir/name.
func (s *FileSource) Fetch(ctx context.Context, name string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	path := filepath.Join(s.dir, name)
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, path)
		}
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return data, nil
}

// Kind returns "file".
func (s *FileSource) Kind() string { return "file" }

// kvGetter is the consumer interface for KVSource (ISP).
type kvGetter interface {
	Get(ctx context.Context, key string) ([]byte, error)
}

// KVSource reads artifacts from a key-value store under prefix+name.
type KVSource struct {
	store  kvGetter
	prefix string
}

// NewKVSource creates a key-value backed source.
func NewKVSource(store kvGetter, prefix string) *KVSource {
	return &KVSource{store: store, prefix: prefix}
}

// Fetch gets prefix+name.
func (s *KVSource) Fetch(ctx context.Context, name string) ([]byte, error) {
	key := s.prefix + name
	data, err := s.store.Get(ctx, key)
	if err != nil {
		if errors.Is(err, db.ErrKeyNotFound) {
			return nil, fmt.Errorf("%w: key %s", ErrNotFound, key)
		}
		return nil, fmt.Errorf("get %s: %w", key, err)
	}
	return data, nil
}

// Kind returns "redis".
func (s *KVSource) Kind() string { return "redis" }

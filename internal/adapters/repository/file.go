package repository

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/okian/ekiden/pkg/metrics"
)

// FileBackend keeps one file per key in a directory.
// Each file is replaced through a temporary file and rename.
type FileBackend struct {
	dir      string
	ext      string
	fileMode os.FileMode
	dirMode  os.FileMode

	mu     sync.Mutex
	closed bool
}

// NewFileBackend creates the data directory if needed.
func NewFileBackend(dir string, opts ...FileOption) (*FileBackend, error) {
	b := &FileBackend{
		dir:      dir,
		ext:      ".json",
		fileMode: 0o644,
		dirMode:  0o755,
	}
	for _, opt := range opts {
		opt(b)
	}
	if err := os.MkdirAll(dir, b.dirMode); err != nil {
		return nil, fmt.Errorf("create data dir %s: %w", dir, err)
	}
	return b, nil
}

// Path returns the file that holds key.
func (b *FileBackend) Path(key string) string {
	return filepath.Join(b.dir, key+b.ext)
}

func (b *FileBackend) Load(_ context.Context, key string) ([]byte, error) {
	start := time.Now()
	defer func() {
		metrics.RecordRepositoryLoadLatency(msSince(start))
	}()

	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return nil, ErrClosed
	}

	data, err := os.ReadFile(b.Path(key))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, ErrNotFound
	}
	if err != nil {
		metrics.RecordRepositoryError("load")
		return nil, fmt.Errorf("read %s: %w", key, err)
	}
	return data, nil
}

func (b *FileBackend) SaveBatch(_ context.Context, docs map[string][]byte) error {
	start := time.Now()
	defer func() {
		metrics.RecordRepositorySaveLatency(msSince(start))
	}()

	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return ErrClosed
	}

	keys := make([]string, 0, len(docs))
	for k := range docs {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	// Stage every document before the first rename so an encoding or disk
	// error leaves all previous files in place.
	staged := make([]string, 0, len(keys))
	cleanup := func() {
		for _, tmp := range staged {
			_ = os.Remove(tmp)
		}
	}
	for _, k := range keys {
		tmp := b.Path(k) + ".tmp"
		if err := os.WriteFile(tmp, docs[k], b.fileMode); err != nil {
			cleanup()
			metrics.RecordRepositoryError("save")
			return fmt.Errorf("write %s: %w", k, err)
		}
		staged = append(staged, tmp)
	}
	for i, k := range keys {
		if err := os.Rename(staged[i], b.Path(k)); err != nil {
			cleanup()
			metrics.RecordRepositoryError("save")
			return fmt.Errorf("replace %s: %w", k, err)
		}
	}
	return nil
}

func (b *FileBackend) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.closed = true
	return nil
}

// Package dedupe tracks processed input items so each one is acted on once.
//
// The engine records the commentary item behind every comment headline here.
// The ledger is bounded: once full, the oldest id is evicted first.
package dedupe

import (
	"container/list"
	"context"
	"sync"
)

// Deduper records seen item IDs to ensure at-most-once processing.
type Deduper interface {
	// SeenAndRecord atomically checks if id was seen and records it if not.
	// Returns true if id was already seen, false if it was newly recorded.
	SeenAndRecord(ctx context.Context, id string) bool

	// Seen reports whether id is recorded without changing the ledger.
	Seen(ctx context.Context, id string) bool

	Size() int64

	// IDs returns the recorded ids, oldest first.
	IDs() []string
}

// inMemoryDeduper keeps insertion order in a list so eviction and
// persistence both see the oldest entry first.
type inMemoryDeduper struct {
	mu      sync.Mutex
	seen    map[string]*list.Element
	order   *list.List
	maxSize int // 0 or negative = unbounded
	seed    []string
}

// Option applies a configuration option to the in-memory deduper.
type Option func(*inMemoryDeduper)

// WithMaxSize sets the maximum number of IDs to keep.
// If maxSize <= 0 the ledger is unbounded.
func WithMaxSize(maxSize int) Option {
	return func(d *inMemoryDeduper) {
		d.maxSize = maxSize
	}
}

// WithIDs preloads ids, oldest first, e.g. from a persisted ledger.
func WithIDs(ids []string) Option {
	return func(d *inMemoryDeduper) {
		d.seed = append(d.seed, ids...)
	}
}

// NewInMemoryDeduper creates a new in-memory deduper with configuration options.
func NewInMemoryDeduper(opts ...Option) Deduper {
	d := &inMemoryDeduper{
		maxSize: 1000,
		seen:    make(map[string]*list.Element),
		order:   list.New(),
	}
	for _, opt := range opts {
		opt(d)
	}
	for _, id := range d.seed {
		d.record(id)
	}
	d.seed = nil
	return d
}

func (d *inMemoryDeduper) SeenAndRecord(_ context.Context, id string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return !d.record(id)
}

func (d *inMemoryDeduper) Seen(_ context.Context, id string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	_, ok := d.seen[id]
	return ok
}

// record adds id and reports whether it was new. Caller holds d.mu.
func (d *inMemoryDeduper) record(id string) bool {
	if _, exists := d.seen[id]; exists {
		return false
	}
	if d.maxSize > 0 {
		for d.order.Len() >= d.maxSize {
			oldest := d.order.Front()
			delete(d.seen, oldest.Value.(string))
			d.order.Remove(oldest)
		}
	}
	d.seen[id] = d.order.PushBack(id)
	return true
}

// Size returns the current number of entries in the deduper.
func (d *inMemoryDeduper) Size() int64 {
	d.mu.Lock()
	defer d.mu.Unlock()
	return int64(d.order.Len())
}

func (d *inMemoryDeduper) IDs() []string {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make([]string, 0, d.order.Len())
	for e := d.order.Front(); e != nil; e = e.Next() {
		out = append(out, e.Value.(string))
	}
	return out
}

// Package dedupe tracks idempotency keys for asynchronous division requests.
package dedupe

import (
	"container/list"
	"context"
	"sync"
)

// DefaultMaxSize is the number of keys kept before the oldest is evicted.
const DefaultMaxSize = 50000

// Deduper maps client request ids to the job created for them so that a
// retried submission is answered with the original job.
type Deduper interface {
	// Claim atomically records key -> value unless key is already known.
	// It returns the recorded value and whether key had been seen before.
	Claim(ctx context.Context, key, value string) (string, bool)

	// Unrecord forgets key, allowing it to be claimed again. It is used when
	// a claimed submission could not be enqueued.
	Unrecord(ctx context.Context, key string)

	Size() int64
}

type entry struct {
	key   string
	value string
}

// inMemoryDeduper keeps keys in a map plus an insertion-ordered list. In
// bounded mode the oldest key is evicted when the limit is reached.
type inMemoryDeduper struct {
	mu      sync.Mutex
	seen    map[string]*list.Element
	order   *list.List // front is newest
	maxSize int        // 0 or negative = unbounded
}

// NewInMemoryDeduper creates a new in-memory deduper with configuration options.
func NewInMemoryDeduper(opts ...Option) Deduper {
	d := &inMemoryDeduper{
		maxSize: DefaultMaxSize,
	}
	for _, opt := range opts {
		opt(d)
	}
	d.seen = make(map[string]*list.Element)
	d.order = list.New()
	return d
}

// Claim implements Deduper.
func (d *inMemoryDeduper) Claim(_ context.Context, key, value string) (string, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if el, ok := d.seen[key]; ok {
		return el.Value.(*entry).value, true
	}
	if d.maxSize > 0 && d.order.Len() >= d.maxSize {
		d.evictOldest()
	}
	d.seen[key] = d.order.PushFront(&entry{key: key, value: value})
	return value, false
}

// Unrecord implements Deduper.
func (d *inMemoryDeduper) Unrecord(_ context.Context, key string) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if el, ok := d.seen[key]; ok {
		d.order.Remove(el)
		delete(d.seen, key)
	}
}

// evictOldest must be called with d.mu held.
func (d *inMemoryDeduper) evictOldest() {
	back := d.order.Back()
	if back == nil {
		return
	}
	d.order.Remove(back)
	delete(d.seen, back.Value.(*entry).key)
}

// Size returns the current number of keys.
func (d *inMemoryDeduper) Size() int64 {
	d.mu.Lock()
	defer d.mu.Unlock()
	return int64(d.order.Len())
}

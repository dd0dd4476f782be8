// Package preview decodes clipboard images off the interactive loop and
// keeps the most recently viewed ones in an LRU cache.
//
// A Pipeline runs a single worker goroutine. The interactive loop sends
// requests with RequestDecode and collects results with Poll; neither call
// blocks. The cache, the pending set and Poll belong to the interactive
// loop and must not be used concurrently.
package preview

import (
	"context"
	"errors"
	"fmt"
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/jamesainslie/clipr/pkg/clipr/logging"
)

// DefaultCacheSize is used when Options.CacheSize is zero.
const DefaultCacheSize = 20

const defaultQueueSize = 8

// Options configures a Pipeline.
type Options struct {
	// CacheSize is the number of decoded images kept. Zero means
	// DefaultCacheSize.
	CacheSize int
	// MaxWidth and MaxHeight bound the scaled image in pixels. Zero leaves
	// a dimension unbounded.
	MaxWidth  int
	MaxHeight int
	// MaxFileSize is the largest file reference that will be read, in bytes.
	// Zero disables the limit.
	MaxFileSize int64
	// QueueSize bounds pending requests and undelivered results.
	QueueSize int
}

type result struct {
	id  uint64
	img *Image
	err error
}

// Pipeline owns the decode worker and the preview cache.
type Pipeline struct {
	requests chan Request
	results  chan result
	cache    *lru.Cache[uint64, *Image]
	pending  map[uint64]struct{}
	dec      decoder

	cancel context.CancelFunc
	done   chan struct{}
	once   sync.Once
}

// New builds the cache and starts the worker. The worker stops when ctx is
// cancelled or Close is called.
func New(ctx context.Context, opts Options) (*Pipeline, error) {
	size := opts.CacheSize
	if size == 0 {
		size = DefaultCacheSize
	}
	cache, err := lru.New[uint64, *Image](size)
	if err != nil {
		return nil, fmt.Errorf("creating preview cache: %w", err)
	}
	queue := opts.QueueSize
	if queue <= 0 {
		queue = defaultQueueSize
	}

	ctx, cancel := context.WithCancel(ctx)
	p := &Pipeline{
		requests: make(chan Request, queue),
		results:  make(chan result, queue),
		cache:    cache,
		pending:  make(map[uint64]struct{}),
		dec: decoder{
			maxWidth:    opts.MaxWidth,
			maxHeight:   opts.MaxHeight,
			maxFileSize: opts.MaxFileSize,
		},
		cancel: cancel,
		done:   make(chan struct{}),
	}
	go p.worker(ctx)
	return p, nil
}

// worker decodes requests until the context ends. A full result queue
// holds the worker until the next Poll, so every pending id gets its result.
func (p *Pipeline) worker(ctx context.Context) {
	defer close(p.done)
	for {
		select {
		case <-ctx.Done():
			return
		case req := <-p.requests:
			img, err := p.dec.decode(req)
			select {
			case p.results <- result{id: req.ID, img: img, err: err}:
			case <-ctx.Done():
				return
			}
		}
	}
}

// RequestDecode queues req without blocking. It reports false when the id
// is already cached or in flight, the queue is full, or the worker stopped.
func (p *Pipeline) RequestDecode(req Request) bool {
	if _, busy := p.pending[req.ID]; busy || p.cache.Contains(req.ID) {
		return false
	}
	select {
	case <-p.done:
		return false
	default:
	}
	select {
	case p.requests <- req:
		p.pending[req.ID] = struct{}{}
		return true
	default:
		return false
	}
}

// Poll drains finished decodes into the cache without blocking and returns
// how many images were added. Failures are logged and not cached, so the
// same entry can be requested again. Results for entries that are no longer
// selected are cached like any other.
func (p *Pipeline) Poll() int {
	added := 0
	for {
		select {
		case r := <-p.results:
			delete(p.pending, r.id)
			if r.err != nil {
				if !errors.Is(r.err, ErrDecodeFailure) {
					r.err = fmt.Errorf("%w: %w", ErrDecodeFailure, r.err)
				}
				logging.Get("preview").Warn("could not decode image", "id", r.id, "err", r.err)
				continue
			}
			p.cache.Add(r.id, r.img)
			added++
		default:
			return added
		}
	}
}

// Pending reports whether a decode for id is in flight.
func (p *Pipeline) Pending(id uint64) bool {
	_, ok := p.pending[id]
	return ok
}

// Get returns the cached image for id and marks it recently used.
func (p *Pipeline) Get(id uint64) (*Image, bool) {
	return p.cache.Get(id)
}

// Peek returns the cached image for id without touching its recency.
func (p *Pipeline) Peek(id uint64) (*Image, bool) {
	return p.cache.Peek(id)
}

// Contains reports whether id is cached, without touching its recency.
func (p *Pipeline) Contains(id uint64) bool {
	return p.cache.Contains(id)
}

// Len returns the number of cached images.
func (p *Pipeline) Len() int {
	return p.cache.Len()
}

// Keys returns cached ids from least to most recently used.
func (p *Pipeline) Keys() []uint64 {
	return p.cache.Keys()
}

// Resize changes the cache capacity, evicting the least recently used
// images if it shrinks.
func (p *Pipeline) Resize(size int) {
	if size <= 0 {
		size = DefaultCacheSize
	}
	if evicted := p.cache.Resize(size); evicted > 0 {
		logging.Get("preview").Debug("shrunk preview cache", "evicted", evicted, "size", size)
	}
}

// Close stops the worker and waits for it to exit. It is safe to call more
// than once.
func (p *Pipeline) Close() {
	p.once.Do(func() {
		p.cancel()
		<-p.done
	})
}

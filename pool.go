package doc2substack

import (
	"context"
	"errors"
	"runtime"
	"sync"

	"golang.org/x/sync/semaphore"
)

const (
	MinPoolSize = 1

	// MaxPoolSize bounds automatic sizing. A converter using the browser
	// renderer holds a Chrome process of roughly 200MB.
	MaxPoolSize = 8

	// cpuDivisor leaves cores for the pandoc and Chrome child processes.
	cpuDivisor = 2
)

// ConverterPool lends up to Size converters to concurrent callers. Each
// converter owns its image renderer, so browser rendering runs in parallel.
// Converters are built on first demand and reused afterwards.
type ConverterPool struct {
	size  int
	opts  []Option
	slots *semaphore.Weighted

	mu     sync.Mutex
	idle   []*Converter
	closed bool
}

// NewConverterPool returns a pool of n converters built with opts. n below
// one is raised to one. No converter is built until Acquire.
func NewConverterPool(n int, opts ...Option) *ConverterPool {
	n = max(n, MinPoolSize)
	return &ConverterPool{
		size:  n,
		opts:  opts,
		slots: semaphore.NewWeighted(int64(n)),
	}
}

// Acquire blocks until a converter is free or ctx ends. A NewConverter
// failure is returned as is and gives the slot back, so a later call retries
// the build. Every converter obtained must be handed back with Release.
func (p *ConverterPool) Acquire(ctx context.Context) (*Converter, error) {
	if err := p.slots.Acquire(ctx, 1); err != nil {
		return nil, err
	}

	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		p.slots.Release(1)
		return nil, ErrPoolClosed
	}
	if n := len(p.idle); n > 0 {
		conv := p.idle[n-1]
		p.idle = p.idle[:n-1]
		p.mu.Unlock()
		return conv, nil
	}
	p.mu.Unlock()

	conv, err := NewConverter(p.opts...)
	if err != nil {
		p.slots.Release(1)
		return nil, err
	}
	return conv, nil
}

// Release returns conv to the pool. After Close the converter is closed
// instead. A nil conv is ignored.
func (p *ConverterPool) Release(conv *Converter) {
	if conv == nil {
		return
	}
	p.mu.Lock()
	closed := p.closed
	if !closed {
		p.idle = append(p.idle, conv)
	}
	p.mu.Unlock()

	if closed {
		_ = conv.Close()
	}
	p.slots.Release(1)
}

// Close closes the idle converters and makes Acquire fail with
// ErrPoolClosed. Converters still lent out are closed as they come back.
func (p *ConverterPool) Close() error {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return nil
	}
	p.closed = true
	idle := p.idle
	p.idle = nil
	p.mu.Unlock()

	var errs []error
	for _, conv := range idle {
		if err := conv.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (p *ConverterPool) Size() int {
	return p.size
}

// ResolvePoolSize returns workers when positive, otherwise half of
// GOMAXPROCS clamped to [MinPoolSize, MaxPoolSize]. automaxprocs makes
// GOMAXPROCS follow container CPU quotas.
func ResolvePoolSize(workers int) int {
	if workers > 0 {
		return workers
	}
	return min(max(runtime.GOMAXPROCS(0)/cpuDivisor, MinPoolSize), MaxPoolSize)
}

package main

import (
	"context"
	"fmt"

	doc2substack "github.com/alnah/go-doc2substack"
)

// poolAdapter exposes a *doc2substack.ConverterPool through the Pool interface.
type poolAdapter struct {
	pool *doc2substack.ConverterPool
}

// Compile-time check that poolAdapter implements Pool.
var _ Pool = (*poolAdapter)(nil)

// Acquire blocks until a converter is free or ctx ends. A failed build
// returns a nil interface, never a typed nil.
func (a *poolAdapter) Acquire(ctx context.Context) (CLIConverter, error) {
	conv, err := a.pool.Acquire(ctx)
	if err != nil {
		return nil, err
	}
	return conv, nil
}

// Release returns a converter to the pool.
// Panics if conv was not acquired from this adapter (programmer error).
func (a *poolAdapter) Release(conv CLIConverter) {
	c, ok := conv.(*doc2substack.Converter)
	if !ok {
		panic(fmt.Sprintf("poolAdapter.Release: unexpected type %T", conv))
	}
	a.pool.Release(c)
}

// Size returns the pool capacity.
func (a *poolAdapter) Size() int {
	return a.pool.Size()
}

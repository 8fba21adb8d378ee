package chart

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/simonvc/finreports/internal/ledger"
)

// Source supplies the account list a chart is built from.
type Source interface {
	Accounts(ctx context.Context) ([]ledger.Account, error)
}

// Static is a fixed account list.
type Static []ledger.Account

func (s Static) Accounts(context.Context) ([]ledger.Account, error) {
	return s, nil
}

type loaded struct {
	chart      *Chart
	generation uint64
}

// Registry holds the process-wide chart. Readers get the current chart
// without locking; Reload builds a new chart and swaps it in.
type Registry struct {
	src     Source
	mu      sync.Mutex
	current atomic.Pointer[loaded]
}

func NewRegistry(src Source) *Registry {
	return &Registry{src: src}
}

// Reload rebuilds the chart from the source. On failure the previous chart
// stays in place.
func (r *Registry) Reload(ctx context.Context) (*Chart, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	accounts, err := r.src.Accounts(ctx)
	if err != nil {
		return nil, fmt.Errorf("load accounts: %w", err)
	}
	c, err := New(accounts)
	if err != nil {
		return nil, err
	}

	var gen uint64 = 1
	if prev := r.current.Load(); prev != nil {
		gen = prev.generation + 1
	}
	r.current.Store(&loaded{chart: c, generation: gen})
	return c, nil
}

// Snapshot returns the current chart and its generation. The chart is nil
// until the first successful Reload.
func (r *Registry) Snapshot() (*Chart, uint64) {
	l := r.current.Load()
	if l == nil {
		return nil, 0
	}
	return l.chart, l.generation
}

func (r *Registry) Current() *Chart {
	c, _ := r.Snapshot()
	return c
}

func (r *Registry) Generation() uint64 {
	_, gen := r.Snapshot()
	return gen
}

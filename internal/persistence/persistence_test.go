package persistence

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
)

type sample struct {
	ProductID string `json:"product_id"`
	Quantity  int    `json:"quantity"`
}

// failingProvider fails the first failN saves, then delegates to Memory.
type failingProvider struct {
	*Memory
	failN int32
	calls atomic.Int32
}

func (f *failingProvider) Save(ctx context.Context, key string, blob []byte) error {
	if f.calls.Add(1) <= f.failN {
		return errors.New("quota exceeded")
	}
	return f.Memory.Save(ctx, key, blob)
}

// gatedProvider blocks every save until release is closed and records the
// blobs it was asked to write.
type gatedProvider struct {
	*Memory
	started chan string
	release chan struct{}

	mu     sync.Mutex
	writes []string
}

func newGatedProvider() *gatedProvider {
	return &gatedProvider{
		Memory:  NewMemory(),
		started: make(chan string, 16),
		release: make(chan struct{}),
	}
}

func (g *gatedProvider) Save(ctx context.Context, key string, blob []byte) error {
	g.started <- key
	<-g.release
	g.mu.Lock()
	g.writes = append(g.writes, key+"="+string(blob))
	g.mu.Unlock()
	return g.Memory.Save(ctx, key, blob)
}

func (g *gatedProvider) Writes() []string {
	g.mu.Lock()
	defer g.mu.Unlock()
	return append([]string(nil), g.writes...)
}

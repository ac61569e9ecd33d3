package persistence

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v5"
)

// ErrClosed is returned by Save after the async provider has been closed.
var ErrClosed = errors.New("persistence: provider closed")

// AsyncConfig controls the background writer.
type AsyncConfig struct {
	MaxTries        uint
	InitialInterval time.Duration
	MaxInterval     time.Duration
	WriteTimeout    time.Duration
}

// DefaultAsyncConfig returns sensible defaults for a remote backend.
func DefaultAsyncConfig() AsyncConfig {
	return AsyncConfig{
		MaxTries:        5,
		InitialInterval: 100 * time.Millisecond,
		MaxInterval:     2 * time.Second,
		WriteTimeout:    5 * time.Second,
	}
}

// Async dispatches saves to a background writer so callers never wait on the
// backend. Only the latest blob per key is written; retries and backoff are
// owned here. Load sees queued and in-flight blobs before asking the backend.
type Async struct {
	next   Provider
	cfg    AsyncConfig
	logger *slog.Logger

	mu           sync.Mutex
	pending      map[string][]byte
	inflightKey  string
	inflightBlob []byte
	closed       bool

	wake chan struct{}
	done chan struct{}
	wg   sync.WaitGroup
}

// NewAsync starts the background writer for next.
func NewAsync(next Provider, cfg AsyncConfig, logger *slog.Logger) *Async {
	a := &Async{
		next:    next,
		cfg:     cfg,
		logger:  logger,
		pending: make(map[string][]byte),
		wake:    make(chan struct{}, 1),
		done:    make(chan struct{}),
	}
	a.wg.Add(1)
	go a.run()
	return a
}

// Load returns the newest known blob for key.
func (a *Async) Load(ctx context.Context, key string) ([]byte, error) {
	a.mu.Lock()
	if blob, ok := a.pending[key]; ok {
		a.mu.Unlock()
		return append([]byte(nil), blob...), nil
	}
	if a.inflightKey == key && a.inflightBlob != nil {
		blob := append([]byte(nil), a.inflightBlob...)
		a.mu.Unlock()
		return blob, nil
	}
	a.mu.Unlock()

	return a.next.Load(ctx, key)
}

// Save queues blob for key and returns immediately.
func (a *Async) Save(_ context.Context, key string, blob []byte) error {
	a.mu.Lock()
	if a.closed {
		a.mu.Unlock()
		return ErrClosed
	}
	a.pending[key] = append([]byte(nil), blob...)
	a.mu.Unlock()

	select {
	case a.wake <- struct{}{}:
	default:
	}
	return nil
}

// Close stops accepting saves, flushes the queue and waits for the writer,
// or returns ctx.Err() if ctx ends first.
func (a *Async) Close(ctx context.Context) error {
	a.mu.Lock()
	if a.closed {
		a.mu.Unlock()
		return nil
	}
	a.closed = true
	a.mu.Unlock()
	close(a.done)

	stopped := make(chan struct{})
	go func() {
		a.wg.Wait()
		close(stopped)
	}()

	select {
	case <-stopped:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (a *Async) run() {
	defer a.wg.Done()
	for {
		select {
		case <-a.wake:
			a.drain()
		case <-a.done:
			a.drain()
			return
		}
	}
}

func (a *Async) drain() {
	for {
		key, blob, ok := a.take()
		if !ok {
			return
		}
		a.write(key, blob)

		a.mu.Lock()
		a.inflightKey, a.inflightBlob = "", nil
		a.mu.Unlock()
	}
}

// take moves one queued blob to the in-flight slot.
func (a *Async) take() (string, []byte, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	for key, blob := range a.pending {
		delete(a.pending, key)
		a.inflightKey, a.inflightBlob = key, blob
		return key, blob, true
	}
	return "", nil, false
}

func (a *Async) write(key string, blob []byte) {
	ctx, cancel := context.WithTimeout(context.Background(), a.cfg.WriteTimeout)
	defer cancel()

	b := backoff.NewExponentialBackOff()
	b.InitialInterval = a.cfg.InitialInterval
	b.MaxInterval = a.cfg.MaxInterval

	_, err := backoff.Retry(ctx, func() (struct{}, error) {
		return struct{}{}, a.next.Save(ctx, key, blob)
	}, backoff.WithBackOff(b), backoff.WithMaxTries(a.cfg.MaxTries))
	if err != nil {
		asyncDroppedTotal.WithLabelValues(DomainOf(key)).Inc()
		a.logger.Warn("dropping queued state save after retries",
			slog.String("key", key),
			slog.String("error", err.Error()),
		)
	}
}

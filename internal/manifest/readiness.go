package manifest

// readiness.go implements the one-shot initialization latch for the
// spreadsheet engine.
//
// The latch moves NotStarted -> Loading -> Ready exactly once and never
// resets. Readers only observe the state; the single transition to Ready is
// published by closing a channel, so no lock is needed afterwards.

import (
	"context"
	"sync"
	"sync/atomic"
)

// InitState is the warm-up state of the spreadsheet engine.
type InitState int32

const (
	InitNotStarted InitState = iota
	InitLoading
	InitReady
)

func (s InitState) String() string {
	switch s {
	case InitLoading:
		return "loading"
	case InitReady:
		return "ready"
	default:
		return "not_started"
	}
}

// Readiness is a tri-state latch set once by a background initializer.
type Readiness struct {
	state atomic.Int32
	once  sync.Once
	done  chan struct{}

	mu  sync.Mutex
	err error
}

// NewReadiness returns a latch in the NotStarted state.
func NewReadiness() *Readiness {
	return &Readiness{done: make(chan struct{})}
}

// ReadyNow returns a latch that is already Ready. Useful for tests and for
// hosts that warm up synchronously.
func ReadyNow() *Readiness {
	r := NewReadiness()
	r.once.Do(func() {
		r.state.Store(int32(InitReady))
		close(r.done)
	})
	return r
}

// Start runs init in the background and marks the latch Ready once it
// succeeds. Only the first call has any effect. If init fails the latch stays
// Loading and Err reports the failure.
func (r *Readiness) Start(init func() error) {
	r.once.Do(func() {
		r.state.Store(int32(InitLoading))
		go func() {
			if err := init(); err != nil {
				r.mu.Lock()
				r.err = err
				r.mu.Unlock()
				return
			}
			r.state.Store(int32(InitReady))
			close(r.done)
		}()
	})
}

// State returns the current state.
func (r *Readiness) State() InitState {
	return InitState(r.state.Load())
}

// Ready reports whether initialization completed.
func (r *Readiness) Ready() bool {
	return r.State() == InitReady
}

// Err returns the initializer error, if any.
func (r *Readiness) Err() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.err
}

// Done returns a channel closed when the latch becomes Ready.
func (r *Readiness) Done() <-chan struct{} {
	return r.done
}

// Wait blocks until Ready or until ctx is done.
func (r *Readiness) Wait(ctx context.Context) error {
	select {
	case <-r.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

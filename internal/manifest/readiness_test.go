package manifest

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestReadiness(t *testing.T) {
	t.Run("starts not started", func(t *testing.T) {
		r := NewReadiness()
		if got := r.State(); got != InitNotStarted {
			t.Errorf("State() = %v, want %v", got, InitNotStarted)
		}
		if r.Ready() {
			t.Error("Ready() = true, want false")
		}
	})

	t.Run("becomes ready once", func(t *testing.T) {
		r := NewReadiness()
		release := make(chan struct{})
		r.Start(func() error {
			<-release
			return nil
		})
		if got := r.State(); got != InitLoading {
			t.Errorf("State() = %v, want %v", got, InitLoading)
		}

		calls := 0
		r.Start(func() error { calls++; return nil })
		close(release)

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := r.Wait(ctx); err != nil {
			t.Fatalf("Wait() error = %v", err)
		}
		if !r.Ready() {
			t.Error("Ready() = false after Wait")
		}
		if calls != 0 {
			t.Errorf("second Start ran its initializer %d times", calls)
		}
	})

	t.Run("failed init stays loading", func(t *testing.T) {
		r := NewReadiness()
		boom := errors.New("boom")
		r.Start(func() error { return boom })

		deadline := time.Now().Add(5 * time.Second)
		for r.Err() == nil && time.Now().Before(deadline) {
			time.Sleep(5 * time.Millisecond)
		}
		if !errors.Is(r.Err(), boom) {
			t.Fatalf("Err() = %v, want %v", r.Err(), boom)
		}
		if got := r.State(); got != InitLoading {
			t.Errorf("State() = %v, want %v", got, InitLoading)
		}
	})

	t.Run("wait honours context", func(t *testing.T) {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
		defer cancel()
		if err := NewReadiness().Wait(ctx); !errors.Is(err, context.DeadlineExceeded) {
			t.Errorf("Wait() error = %v, want context.DeadlineExceeded", err)
		}
	})

	t.Run("ready now", func(t *testing.T) {
		r := ReadyNow()
		if !r.Ready() {
			t.Error("ReadyNow().Ready() = false")
		}
		select {
		case <-r.Done():
		default:
			t.Error("Done() not closed")
		}
	})
}

func TestInitState_String(t *testing.T) {
	tests := []struct {
		state InitState
		want  string
	}{
		{InitNotStarted, "not_started"},
		{InitLoading, "loading"},
		{InitReady, "ready"},
	}
	for _, tt := range tests {
		if got := tt.state.String(); got != tt.want {
			t.Errorf("InitState(%d).String() = %q, want %q", tt.state, got, tt.want)
		}
	}
}

package supervisor

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"
)

func TestGoRecoversPanicAndCancelsOnError(t *testing.T) {
	s := NewSupervisor(context.Background(), WithCancelOnError(true))

	s.Go("boom", func(ctx context.Context) error { panic("kaboom") })

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	err := s.Wait(ctx)
	if err == nil || !strings.Contains(err.Error(), "kaboom") {
		t.Fatalf("expected panic error, got %v", err)
	}
	if s.Context().Err() == nil {
		t.Fatalf("expected supervisor context to be canceled")
	}
}

func TestStopWaitsForGoroutines(t *testing.T) {
	s := NewSupervisor(context.Background())
	exited := make(chan struct{})
	started := make(chan struct{})
	s.Go("loop", func(ctx context.Context) error {
		close(started)
		<-ctx.Done()
		close(exited)
		return ctx.Err()
	})

	<-started
	if n := s.Running("loop"); n != 1 {
		t.Fatalf("expected one running goroutine, got %d", n)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := s.Stop(ctx); err != nil {
		t.Fatalf("Stop: %v", err)
	}
	select {
	case <-exited:
	default:
		t.Fatalf("goroutine did not exit before Stop returned")
	}
	if n := s.Running("loop"); n != 0 {
		t.Fatalf("expected no running goroutines, got %d", n)
	}
}

func TestFirstErrorWins(t *testing.T) {
	s := NewSupervisor(context.Background())
	first := errors.New("first")
	done := make(chan struct{})
	s.Go("a", func(ctx context.Context) error { defer close(done); return first })
	<-done
	s.Go("b", func(ctx context.Context) error { return errors.New("second") })

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := s.Wait(ctx); !errors.Is(err, first) {
		t.Fatalf("expected first error, got %v", err)
	}
}

package poller

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"
)

func TestRunMaxRuns(t *testing.T) {
	var calls []int
	p := New(time.Millisecond, 3, func(_ context.Context, n int) error {
		calls = append(calls, n)
		return nil
	}, nil)

	if got := p.Run(context.Background()); got != 3 {
		t.Errorf("Run() = %d runs, want 3", got)
	}
	if len(calls) != 3 || calls[0] != 1 || calls[2] != 3 {
		t.Errorf("job calls = %v, want [1 2 3]", calls)
	}
	if s := p.Status(); s.Runs != 3 || s.LastRun.IsZero() {
		t.Errorf("Status() = %+v, want 3 runs and a last run", s)
	}
}

func TestRunKeepsGoingOnError(t *testing.T) {
	boom := errors.New("price API down")
	var calls atomic.Int32
	p := New(time.Millisecond, 2, func(_ context.Context, n int) error {
		calls.Add(1)
		if n == 1 {
			return boom
		}
		return nil
	}, nil)

	p.Run(context.Background())
	if calls.Load() != 2 {
		t.Errorf("job called %d times, want 2", calls.Load())
	}
	if s := p.Status(); s.LastError != "" {
		t.Errorf("LastError = %q, want it cleared by the successful run", s.LastError)
	}
}

func TestRunStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	p := New(time.Hour, 0, func(context.Context, int) error {
		cancel()
		return nil
	}, nil)

	done := make(chan int)
	go func() { done <- p.Run(ctx) }()
	select {
	case n := <-done:
		if n != 1 {
			t.Errorf("Run() = %d runs, want 1", n)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Run() did not return after cancellation")
	}
}

func TestStartStop(t *testing.T) {
	started := make(chan struct{}, 1)
	p := New(time.Hour, 0, func(context.Context, int) error {
		select {
		case started <- struct{}{}:
		default:
		}
		return errors.New("no prices")
	}, nil)

	if err := p.Start(context.Background()); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	<-started
	if err := p.Start(context.Background()); !errors.Is(err, ErrRunning) {
		t.Errorf("second Start() error = %v, want ErrRunning", err)
	}

	s := p.Status()
	if !s.Running || s.Interval != "1h0m0s" {
		t.Errorf("Status() = %+v, want running every hour", s)
	}

	p.Stop()
	s = p.Status()
	if s.Running {
		t.Errorf("Status().Running = true after Stop()")
	}
	if s.Runs != 1 || s.LastError != "no prices" {
		t.Errorf("Status() = %+v, want 1 failed run", s)
	}

	// restart after a stop
	if err := p.Start(context.Background()); err != nil {
		t.Fatalf("Start() after Stop() error = %v", err)
	}
	p.Stop()
}

func TestStopWhenIdle(t *testing.T) {
	p := New(time.Second, 0, func(context.Context, int) error { return nil }, nil)
	p.Stop()
	if s := p.Status(); s.Running || s.Interval != "1s" {
		t.Errorf("Status() = %+v", s)
	}
}

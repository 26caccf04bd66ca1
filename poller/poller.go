// Package poller runs a job immediately and then at a fixed interval.
package poller

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/etnz/cryptofolio/metrics"
)

// ErrRunning is returned by Start when a loop is already running.
var ErrRunning = errors.New("auto-update is already running")

// Job is one tick of work. n starts at 1.
type Job func(ctx context.Context, n int) error

// Poller drives a Job.
type Poller struct {
	Interval time.Duration
	MaxRuns  int // 0 means unlimited
	Job      Job
	Log      *slog.Logger

	now func() time.Time

	mu      sync.Mutex
	cancel  context.CancelFunc
	done    chan struct{}
	status  Status
	running bool
}

// Status is a snapshot of the loop state.
type Status struct {
	Running   bool      `json:"running"`
	Interval  string    `json:"interval"`
	Runs      int       `json:"runs"`
	MaxRuns   int       `json:"max_runs"`
	LastRun   time.Time `json:"last_run,omitzero"`
	LastError string    `json:"last_error,omitempty"`
	NextRun   time.Time `json:"next_run,omitzero"`
}

// New returns a Poller.
func New(interval time.Duration, maxRuns int, job Job, log *slog.Logger) *Poller {
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	return &Poller{Interval: interval, MaxRuns: maxRuns, Job: job, Log: log}
}

func (p *Poller) clock() time.Time {
	if p.now != nil {
		return p.now()
	}
	return time.Now()
}

// Run runs the job now and then at every interval, until ctx is done or
// MaxRuns is reached. Job errors are logged and do not stop the loop.
// It returns the number of runs.
func (p *Poller) Run(ctx context.Context) int {
	interval := p.interval()
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	runs := 0
	for {
		runs++
		p.tick(ctx, runs, interval)
		if p.MaxRuns > 0 && runs >= p.MaxRuns {
			p.log().Info("auto-update reached its maximum number of runs", "runs", runs)
			return runs
		}

		select {
		case <-ctx.Done():
			return runs
		case <-ticker.C:
		}
	}
}

func (p *Poller) interval() time.Duration {
	if p.Interval <= 0 {
		return time.Minute
	}
	return p.Interval
}

func (p *Poller) log() *slog.Logger {
	if p.Log == nil {
		return slog.New(slog.DiscardHandler)
	}
	return p.Log
}

func (p *Poller) tick(ctx context.Context, n int, interval time.Duration) {
	err := p.Job(ctx, n)
	status := "success"
	if err != nil {
		status = "error"
		if ctx.Err() != nil {
			status = "cancelled"
		}
		p.log().Error("auto-update run failed", "run", n, "error", err)
	}
	metrics.AutoUpdateRuns.WithLabelValues(status).Inc()

	p.mu.Lock()
	defer p.mu.Unlock()
	p.status.Runs = n
	p.status.LastRun = p.clock()
	p.status.NextRun = p.status.LastRun.Add(interval)
	p.status.LastError = ""
	if err != nil {
		p.status.LastError = err.Error()
	}
}

// Start runs the loop in the background. Only one loop runs at a time.
func (p *Poller) Start(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.running {
		return ErrRunning
	}
	ctx, cancel := context.WithCancel(ctx)
	p.cancel = cancel
	p.done = make(chan struct{})
	p.running = true
	p.status = Status{Running: true, Interval: p.interval().String(), MaxRuns: p.MaxRuns}

	done := p.done
	go func() {
		defer close(done)
		p.Run(ctx)
		p.mu.Lock()
		p.running = false
		p.status.Running = false
		p.status.NextRun = time.Time{}
		p.mu.Unlock()
		cancel()
	}()
	p.log().Info("auto-update started", "interval", p.interval(), "max_runs", p.MaxRuns)
	return nil
}

// Stop stops the background loop and waits for it. It is a no-op when nothing runs.
func (p *Poller) Stop() {
	p.mu.Lock()
	cancel, done := p.cancel, p.done
	p.mu.Unlock()
	if cancel == nil {
		return
	}
	cancel()
	<-done
	p.log().Info("auto-update stopped")
}

// Status returns the current loop state.
func (p *Poller) Status() Status {
	p.mu.Lock()
	defer p.mu.Unlock()
	s := p.status
	s.Running = p.running
	if s.Interval == "" {
		s.Interval = p.interval().String()
		s.MaxRuns = p.MaxRuns
	}
	return s
}

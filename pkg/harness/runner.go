package harness

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"
)

// Result summarizes one completed run.
type Result struct {
	Workload  Workload `json:"workload"`
	Target    string   `json:"target"`
	ElapsedMS int64    `json:"elapsed_ms"`
	Count     int      `json:"count"`
	Batches   int      `json:"batches"`
	NonOK     int      `json:"non_ok"`
	Label     string   `json:"label"`
}

// Runner issues workloads against a target base URL such as "http://localhost:9000/api".
type Runner struct {
	transport Transport
	logger    *slog.Logger
	now       func() time.Time
	sleep     func(ctx context.Context, d time.Duration) error
}

// Option configures a Runner.
type Option func(*Runner)

// WithTransport replaces the fiber transport.
func WithTransport(t Transport) Option {
	return func(r *Runner) {
		r.transport = t
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Runner) {
		r.logger = logger
	}
}

// WithClock replaces time.Now for elapsed time measurement.
func WithClock(now func() time.Time) Option {
	return func(r *Runner) {
		r.now = now
	}
}

// WithSleep replaces the pause between db batches.
func WithSleep(sleep func(ctx context.Context, d time.Duration) error) Option {
	return func(r *Runner) {
		r.sleep = sleep
	}
}

// NewRunner creates a Runner using the fiber transport by default.
func NewRunner(opts ...Option) *Runner {
	r := &Runner{
		transport: NewFiberTransport(),
		logger:    slog.Default(),
		now:       time.Now,
		sleep:     sleepContext,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run sends count requests of workload w to target in batches. Every request
// of a batch is in flight at once and the batch settles before the next one
// starts. Non-2xx responses are counted, not fatal; a request that gets no
// response aborts the run with a *TransportError.
func (r *Runner) Run(ctx context.Context, target string, w Workload, count int) (Result, error) {
	s, ok := workloads[w]
	if !ok {
		return Result{}, fmt.Errorf("%w: %q", ErrUnknownWorkload, w)
	}
	if count < 1 || count > MaxRequests {
		return Result{}, fmt.Errorf("%w: %d (must be between 1 and %d)", ErrInvalidCount, count, MaxRequests)
	}

	batches := Batches(count, s.batchSize)
	r.logger.Debug("starting run", "workload", w, "target", target, "count", count, "batches", len(batches))

	var nonOK atomic.Int64
	start := r.now()
	sent := 0

	for b, size := range batches {
		g, gctx := errgroup.WithContext(ctx)
		for i := sent; i < sent+size; i++ {
			req, err := s.build(target, i, r.now())
			if err != nil {
				return Result{}, fmt.Errorf("failed to build request: %w", err)
			}
			g.Go(func() error {
				resp, err := r.transport.Do(gctx, req)
				if err != nil {
					return err
				}
				if !resp.OK() {
					nonOK.Add(1)
				}
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return Result{}, &TransportError{Target: target, Err: err}
		}
		sent += size

		if s.pause > 0 && b < len(batches)-1 {
			if err := r.sleep(ctx, s.pause); err != nil {
				return Result{}, err
			}
		}
	}

	elapsed := r.now().Sub(start)
	res := Result{
		Workload:  w,
		Target:    target,
		ElapsedMS: int64(math.Round(float64(elapsed) / float64(time.Millisecond))),
		Count:     sent,
		Batches:   len(batches),
		NonOK:     int(nonOK.Load()),
		Label:     w.Label(sent),
	}
	if res.NonOK > 0 {
		r.logger.Warn("run finished with non-2xx responses", "workload", w, "target", target, "non_ok", res.NonOK)
	}
	r.logger.Debug("run finished", "workload", w, "target", target, "elapsed_ms", res.ElapsedMS)
	return res, nil
}

func sleepContext(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

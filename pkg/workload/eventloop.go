package workload

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"sync/atomic"

	"github.com/aretw0/lifecycle/pkg/core/worker"
)

// ErrLoopStopped is returned when work is submitted to a loop that is not running.
var ErrLoopStopped = errors.New("event loop is not running")

// DefaultQueueSize bounds the number of tasks waiting for the loop.
const DefaultQueueSize = 1024

type task struct {
	fn   func()
	err  error
	done chan struct{}
}

// EventLoop executes every task on a single goroutine, one at a time.
// Tasks queue up behind whatever is running, so a compute-bound task
// delays every other request sharing the loop.
type EventLoop struct {
	*worker.BaseWorker
	tasks     chan *task
	stopped   chan struct{}
	running   atomic.Bool
	processed atomic.Int64
	cancel    context.CancelFunc
	logger    *slog.Logger
}

// NewEventLoop creates a stopped loop. queueSize <= 0 selects DefaultQueueSize.
func NewEventLoop(queueSize int, logger *slog.Logger) *EventLoop {
	if queueSize <= 0 {
		queueSize = DefaultQueueSize
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &EventLoop{
		BaseWorker: worker.NewBaseWorker("event-loop"),
		tasks:      make(chan *task, queueSize),
		stopped:    make(chan struct{}),
		logger:     logger,
	}
}

func (l *EventLoop) Name() string { return FlavorEventLoop }

// Start launches the loop goroutine. It stops when ctx is cancelled or Stop is called.
func (l *EventLoop) Start(ctx context.Context) error {
	if ctx.Err() != nil {
		return ctx.Err()
	}

	status := l.State().Status
	if status != worker.StatusCreated && status != worker.StatusPending {
		return fmt.Errorf("event loop already started (status: %s)", status)
	}

	runCtx, cancel := context.WithCancel(ctx)
	l.cancel = cancel
	l.running.Store(true)

	l.SetStatus(worker.StatusRunning)
	return l.StartFunc(runCtx, l.run)
}

func (l *EventLoop) Stop(ctx context.Context) error {
	if l.cancel != nil {
		l.StopRequested = true
		l.cancel()
	}
	return l.BaseWorker.Stop(ctx)
}

func (l *EventLoop) State() worker.State {
	return l.ExportState(func(s *worker.State) {
		s.Metadata = map[string]string{
			worker.MetadataType: string(worker.TypeGoroutine),
			"queued":            strconv.Itoa(len(l.tasks)),
			"processed":         strconv.FormatInt(l.processed.Load(), 10),
		}
	})
}

// Processed returns the number of tasks executed so far.
func (l *EventLoop) Processed() int64 {
	return l.processed.Load()
}

func (l *EventLoop) run(ctx context.Context) error {
	defer close(l.stopped)
	defer l.running.Store(false)

	for {
		select {
		case <-ctx.Done():
			l.logger.Debug("event loop stopped", "processed", l.processed.Load())
			return nil
		case t := <-l.tasks:
			t.err = protect(t.fn)
			l.processed.Add(1)
			close(t.done)
		}
	}
}

// Do queues fn on the loop and waits for it to run.
func (l *EventLoop) Do(ctx context.Context, fn func()) error {
	if !l.running.Load() {
		return ErrLoopStopped
	}

	t := &task{fn: fn, done: make(chan struct{})}
	select {
	case l.tasks <- t:
	case <-l.stopped:
		return ErrLoopStopped
	case <-ctx.Done():
		return ctx.Err()
	}

	select {
	case <-t.done:
		return t.err
	case <-l.stopped:
		return ErrLoopStopped
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Spawn runs all n units back to back inside a single loop task, the way
// an all-settled fan-out of synchronous work behaves on one thread.
func (l *EventLoop) Spawn(ctx context.Context, n int, unit func(i int)) (int, error) {
	completed := 0
	err := l.Do(ctx, func() {
		for i := 0; i < n; i++ {
			unit(i)
			completed++
		}
	})
	if err != nil {
		// The task may still be running; completed is not safe to read.
		return 0, err
	}
	return completed, nil
}

var _ Executor = (*EventLoop)(nil)

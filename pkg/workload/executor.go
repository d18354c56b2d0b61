package workload

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
)

// Flavor names, reported by backends in every benchmark reply.
const (
	FlavorGoroutines = "go"
	FlavorEventLoop  = "eventloop"
)

// Executor decides where request compute runs.
type Executor interface {
	// Name identifies the execution model.
	Name() string

	// Do runs fn and waits for it to finish. A panic inside fn is returned as an error.
	Do(ctx context.Context, fn func()) error

	// Spawn launches n independent units, waits for all of them and returns how
	// many completed. Unit scheduling order is unspecified.
	Spawn(ctx context.Context, n int, unit func(i int)) (int, error)
}

// Goroutines runs request work on the calling goroutine and fans units out to
// one goroutine each.
type Goroutines struct{}

// NewGoroutines returns the goroutine-per-unit executor.
func NewGoroutines() *Goroutines {
	return &Goroutines{}
}

func (g *Goroutines) Name() string { return FlavorGoroutines }

func (g *Goroutines) Do(ctx context.Context, fn func()) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return protect(fn)
}

func (g *Goroutines) Spawn(ctx context.Context, n int, unit func(i int)) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	var (
		wg        sync.WaitGroup
		completed atomic.Int64
		mu        sync.Mutex
		firstErr  error
	)
	for i := 0; i < n; i++ {
		wg.Go(func() {
			if err := protect(func() { unit(i) }); err != nil {
				mu.Lock()
				if firstErr == nil {
					firstErr = err
				}
				mu.Unlock()
				return
			}
			completed.Add(1)
		})
	}
	wg.Wait()

	return int(completed.Load()), firstErr
}

// protect converts a panic in fn into an error.
func protect(fn func()) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("task panic: %v", r)
		}
	}()
	fn()
	return nil
}

var _ Executor = (*Goroutines)(nil)

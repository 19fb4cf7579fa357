// Package parallel provides the worker pools used by the batch stages of
// digitcv: an order-preserving Map over a slice, and range splitting for
// CPU-bound loops.
package parallel

import (
	"context"
	"fmt"
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	"github.com/YuminosukeSato/digitcv/pkg/errors"
)

type options struct {
	workers int
	timeout time.Duration
}

// Option configures Map.
type Option func(*options)

// WithWorkers bounds the pool to n goroutines. Values <= 0 select
// runtime.NumCPU().
func WithWorkers(n int) Option {
	return func(o *options) {
		o.workers = n
	}
}

// WithTimeout bounds the whole batch. Zero means no timeout.
func WithTimeout(d time.Duration) Option {
	return func(o *options) {
		o.timeout = d
	}
}

// Workers returns the pool size Map would use for n items.
func Workers(n int, opts ...Option) int {
	o := resolve(opts)
	if o.workers > n {
		return n
	}
	return o.workers
}

func resolve(opts []Option) options {
	o := options{}
	for _, opt := range opts {
		opt(&o)
	}
	if o.workers <= 0 {
		o.workers = runtime.NumCPU()
	}
	return o
}

// Map applies fn to every input on a bounded pool and returns the results in
// input order: out[i] = fn(inputs[i]).
//
// The first failing call cancels dispatch of the remaining items and its error
// is returned, annotated with the item index. A panic in fn is returned as an
// *errors.PanicError. The pool lives for the duration of the call: every
// worker has exited when Map returns, on success and on failure.
func Map[In, Out any](ctx context.Context, inputs []In, fn func(context.Context, In) (Out, error), opts ...Option) ([]Out, error) {
	o := resolve(opts)
	out := make([]Out, len(inputs))
	if len(inputs) == 0 {
		return out, nil
	}

	var cancel context.CancelFunc
	if o.timeout > 0 {
		ctx, cancel = context.WithTimeout(ctx, o.timeout)
	} else {
		ctx, cancel = context.WithCancel(ctx)
	}
	defer cancel()

	workers := o.workers
	if workers > len(inputs) {
		workers = len(inputs)
	}

	var (
		wg       sync.WaitGroup
		once     sync.Once
		firstErr error
		done     atomic.Int64
	)
	fail := func(err error) {
		once.Do(func() {
			firstErr = err
			cancel()
		})
	}

	jobs := make(chan int)
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				if ctx.Err() != nil {
					continue
				}
				res, err := call(ctx, fn, inputs[i], i)
				if err != nil {
					fail(errors.Wrapf(err, "item %d", i))
					continue
				}
				out[i] = res
				done.Add(1)
			}
		}()
	}

dispatch:
	for i := range inputs {
		select {
		case jobs <- i:
		case <-ctx.Done():
			break dispatch
		}
	}
	close(jobs)
	wg.Wait()

	if firstErr != nil {
		return nil, firstErr
	}
	if n := int(done.Load()); n != len(inputs) {
		err := ctx.Err()
		if err == nil {
			err = errors.New("parallel map stopped early")
		}
		return nil, errors.Wrapf(err, "parallel map stopped after %d of %d items", n, len(inputs))
	}
	return out, nil
}

func call[In, Out any](ctx context.Context, fn func(context.Context, In) (Out, error), in In, i int) (res Out, err error) {
	defer errors.Recover(&err, fmt.Sprintf("parallel.Map item %d", i))
	return fn(ctx, in)
}

// Parallelize divides items into one contiguous range per CPU core and runs
// fn(start, end) for each range concurrently. It returns when every range is
// done.
func Parallelize(items int, fn func(start, end int)) {
	if items == 0 {
		return
	}

	numWorkers := runtime.NumCPU()
	if numWorkers > items {
		numWorkers = items
	}

	// ceiling division
	chunkSize := (items + numWorkers - 1) / numWorkers

	var wg sync.WaitGroup
	for i := 0; i < numWorkers; i++ {
		start := i * chunkSize
		end := start + chunkSize
		if end > items {
			end = items
		}
		if start >= end {
			continue
		}

		wg.Add(1)
		go func(s, e int) {
			defer wg.Done()
			fn(s, e)
		}(start, end)
	}

	wg.Wait()
}

// ParallelizeWithThreshold runs fn sequentially on the whole range when items
// does not exceed threshold, and through Parallelize otherwise.
func ParallelizeWithThreshold(items int, threshold int, fn func(start, end int)) {
	if items <= threshold {
		fn(0, items)
		return
	}
	Parallelize(items, fn)
}

package parallel

import (
	"context"
	"fmt"
	"runtime"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/YuminosukeSato/digitcv/pkg/errors"
)

func TestMapPreservesOrder(t *testing.T) {
	square := func(_ context.Context, x int) (int, error) {
		// uneven work so that completion order differs from input order
		time.Sleep(time.Duration((x*7)%5) * time.Millisecond)
		return x * x, nil
	}

	for _, n := range []int{0, 1, 2, 17, 200} {
		t.Run(fmt.Sprintf("n=%d", n), func(t *testing.T) {
			inputs := make([]int, n)
			for i := range inputs {
				inputs[i] = i
			}

			// sequential reference
			want := make([]int, n)
			for i, x := range inputs {
				want[i], _ = square(context.Background(), x)
			}

			got, err := Map(context.Background(), inputs, square, WithWorkers(4))
			require.NoError(t, err)
			assert.Equal(t, want, got)
		})
	}
}

func TestMapBoundsWorkers(t *testing.T) {
	var active, peak atomic.Int64
	fn := func(_ context.Context, x int) (int, error) {
		cur := active.Add(1)
		for {
			p := peak.Load()
			if cur <= p || peak.CompareAndSwap(p, cur) {
				break
			}
		}
		time.Sleep(2 * time.Millisecond)
		active.Add(-1)
		return x, nil
	}

	inputs := make([]int, 50)
	_, err := Map(context.Background(), inputs, fn, WithWorkers(3))
	require.NoError(t, err)
	assert.LessOrEqual(t, peak.Load(), int64(3))
}

func TestMapFailsBatch(t *testing.T) {
	sentinel := errors.New("bad input")
	var calls atomic.Int64
	fn := func(_ context.Context, x int) (string, error) {
		calls.Add(1)
		if x == 3 {
			return "", sentinel
		}
		return fmt.Sprint(x), nil
	}

	inputs := make([]int, 1000)
	for i := range inputs {
		inputs[i] = i
	}

	out, err := Map(context.Background(), inputs, fn, WithWorkers(2))
	require.Error(t, err)
	assert.Nil(t, out)
	assert.True(t, errors.Is(err, sentinel))
	assert.Contains(t, err.Error(), "item 3")
	assert.Less(t, calls.Load(), int64(1000), "dispatch should stop after the failure")
}

func TestMapRecoversPanic(t *testing.T) {
	fn := func(_ context.Context, x int) (int, error) {
		if x == 1 {
			panic("descriptor exploded")
		}
		return x, nil
	}

	_, err := Map(context.Background(), []int{0, 1, 2}, fn)
	require.Error(t, err)

	var panicErr *errors.PanicError
	require.True(t, errors.As(err, &panicErr))
	assert.Equal(t, "descriptor exploded", panicErr.PanicValue)
}

func TestMapJoinsWorkersOnFailure(t *testing.T) {
	before := runtime.NumGoroutine()

	fn := func(_ context.Context, x int) (int, error) {
		if x%2 == 0 {
			return 0, errors.Newf("fail %d", x)
		}
		return x, nil
	}
	for i := 0; i < 20; i++ {
		_, err := Map(context.Background(), make([]int, 64), fn, WithWorkers(8))
		require.Error(t, err)
	}

	// Map waits for its workers, so the goroutine count returns to its baseline.
	assert.Eventually(t, func() bool {
		return runtime.NumGoroutine() <= before
	}, time.Second, 5*time.Millisecond)
}

func TestMapTimeout(t *testing.T) {
	fn := func(ctx context.Context, x int) (int, error) {
		select {
		case <-time.After(time.Second):
			return x, nil
		case <-ctx.Done():
			return 0, ctx.Err()
		}
	}

	start := time.Now()
	_, err := Map(context.Background(), []int{1, 2, 3, 4}, fn, WithWorkers(2), WithTimeout(20*time.Millisecond))
	require.Error(t, err)
	assert.True(t, errors.Is(err, context.DeadlineExceeded))
	assert.Less(t, time.Since(start), 500*time.Millisecond)
}

func TestMapCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Map(ctx, []int{1, 2, 3}, func(_ context.Context, x int) (int, error) { return x, nil })
	require.Error(t, err)
	assert.True(t, errors.Is(err, context.Canceled))
}

func TestWorkers(t *testing.T) {
	assert.Equal(t, 3, Workers(3, WithWorkers(8)))
	assert.Equal(t, 2, Workers(10, WithWorkers(2)))
	assert.Equal(t, min(runtime.NumCPU(), 1000), Workers(1000))
}

func TestParallelize(t *testing.T) {
	tests := []struct {
		name  string
		items int
	}{
		{"empty", 0},
		{"single", 1},
		{"fewer than cores", 3},
		{"many", 1037},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			seen := make([]int, tt.items)
			var mu sync.Mutex
			Parallelize(tt.items, func(start, end int) {
				mu.Lock()
				defer mu.Unlock()
				for i := start; i < end; i++ {
					seen[i]++
				}
			})
			for i, c := range seen {
				if c != 1 {
					t.Fatalf("index %d visited %d times", i, c)
				}
			}
		})
	}
}

func TestParallelizeWithThreshold(t *testing.T) {
	var calls atomic.Int64
	ParallelizeWithThreshold(10, 100, func(start, end int) {
		calls.Add(1)
		assert.Equal(t, 0, start)
		assert.Equal(t, 10, end)
	})
	assert.Equal(t, int64(1), calls.Load())
}

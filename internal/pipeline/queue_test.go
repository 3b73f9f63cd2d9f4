package pipeline

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReceiptQueue_ProcessesAllJobs(t *testing.T) {
	var count atomic.Int64
	q := NewReceiptQueue(func(_ context.Context, _ Job) error {
		count.Add(1)
		return nil
	}, nil)

	for i := 0; i < 10; i++ {
		require.NoError(t, q.Enqueue(context.Background(), Job{Path: "r.jpg"}))
	}
	q.Shutdown(context.Background())

	assert.Equal(t, int64(10), count.Load())
}

// With the default single worker, jobs are handled strictly one at a time.
func TestReceiptQueue_DefaultSingleWorkerIsSequential(t *testing.T) {
	var inflight, maxInflight atomic.Int64
	q := NewReceiptQueue(func(_ context.Context, _ Job) error {
		cur := inflight.Add(1)
		for {
			prev := maxInflight.Load()
			if cur <= prev || maxInflight.CompareAndSwap(prev, cur) {
				break
			}
		}
		inflight.Add(-1)
		return nil
	}, nil)

	for i := 0; i < 20; i++ {
		require.NoError(t, q.Enqueue(context.Background(), Job{Path: "r.jpg"}))
	}
	q.Shutdown(context.Background())

	assert.Equal(t, int64(1), maxInflight.Load())
}

func TestReceiptQueue_MultipleWorkers(t *testing.T) {
	var mu sync.Mutex
	seen := map[string]bool{}
	q := NewReceiptQueue(func(_ context.Context, job Job) error {
		mu.Lock()
		seen[job.Path] = true
		mu.Unlock()
		return nil
	}, nil, WithWorkers(4), WithQueueSize(8))

	paths := []string{"a.jpg", "b.png", "c.pdf", "d.webp", "e.jpg", "f.jpg"}
	for _, p := range paths {
		require.NoError(t, q.Enqueue(context.Background(), Job{Path: p}))
	}
	q.Shutdown(context.Background())

	assert.Len(t, seen, len(paths))
}

func TestReceiptQueue_EnqueueAfterShutdownIsNoop(t *testing.T) {
	var count atomic.Int64
	q := NewReceiptQueue(func(_ context.Context, _ Job) error {
		count.Add(1)
		return nil
	}, nil)

	q.Shutdown(context.Background())
	require.NoError(t, q.Enqueue(context.Background(), Job{Path: "late.jpg"}))
	assert.Equal(t, int64(0), count.Load())
}

func TestReceiptQueue_ShutdownTwice(t *testing.T) {
	q := NewReceiptQueue(func(_ context.Context, _ Job) error { return nil }, nil)
	q.Shutdown(context.Background())
	q.Shutdown(context.Background()) // must not panic
}

package services

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestWorker_ProcessesJobs(t *testing.T) {
	var (
		mu   sync.Mutex
		seen []uint64
	)
	w := NewWorker(func(ctx context.Context, job ScreeningJob) {
		mu.Lock()
		seen = append(seen, job.Dispatch.Generation)
		mu.Unlock()
	}, 2, 10)

	w.Start(context.Background())
	defer w.Stop()

	for i := 1; i <= 5; i++ {
		assert.NoError(t, w.EnqueueJob(ScreeningJob{SessionID: "s", Dispatch: Dispatch{Generation: uint64(i)}}))
	}

	assert.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(seen) == 5
	}, time.Second, 5*time.Millisecond)

	mu.Lock()
	assert.ElementsMatch(t, []uint64{1, 2, 3, 4, 5}, seen)
	mu.Unlock()
}

func TestWorker_EnqueueAfterStop(t *testing.T) {
	w := NewWorker(func(context.Context, ScreeningJob) {}, 1, 1)
	w.Start(context.Background())

	w.Stop()
	w.Stop()

	assert.ErrorIs(t, w.EnqueueJob(ScreeningJob{SessionID: "s"}), ErrWorkerStopped)
}

package worker

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func double(ctx context.Context, v int) (int, error) {
	return v * 2, nil
}

func TestNewPool(t *testing.T) {
	tests := []struct {
		desc    string
		workers int
		want    int
	}{
		{desc: "positive", workers: 5, want: 5},
		{desc: "zero", workers: 0, want: 1},
		{desc: "negative", workers: -1, want: 1},
	}

	for _, tt := range tests {
		t.Run(tt.desc, func(t *testing.T) {
			p := NewPool(context.Background(), tt.workers, double)
			if p.workers != tt.want {
				t.Errorf("Expected %d workers, got %d", tt.want, p.workers)
			}
		})
	}
}

func TestPool_OrderedOutcomes(t *testing.T) {
	pool := NewPool(context.Background(), 3, func(ctx context.Context, v int) (int, error) {
		// Later inputs finish first
		time.Sleep(time.Duration(5-v) * time.Millisecond)
		return v * 10, nil
	})
	pool.Start()

	for i := 0; i < 5; i++ {
		pool.Submit(i)
	}

	outcomes := pool.Wait()
	if len(outcomes) != 5 {
		t.Fatalf("Expected 5 outcomes, got %d", len(outcomes))
	}
	for i, out := range outcomes {
		if out.Index != i {
			t.Errorf("Expected index %d, got %d", i, out.Index)
		}
		if out.Value != i*10 {
			t.Errorf("Expected value %d, got %d", i*10, out.Value)
		}
	}
}

func TestPool_Concurrency(t *testing.T) {
	workers := 3
	totalJobs := 10

	var current, maxConcurrent int32
	var mu sync.Mutex

	pool := NewPool(context.Background(), workers, func(ctx context.Context, v int) (int, error) {
		curr := atomic.AddInt32(&current, 1)
		mu.Lock()
		if curr > maxConcurrent {
			maxConcurrent = curr
		}
		mu.Unlock()
		time.Sleep(10 * time.Millisecond)
		atomic.AddInt32(&current, -1)
		return v, nil
	})
	pool.Start()

	for i := 0; i < totalJobs; i++ {
		pool.Submit(i)
	}
	outcomes := pool.Wait()

	if len(outcomes) != totalJobs {
		t.Errorf("Expected %d outcomes, got %d", totalJobs, len(outcomes))
	}

	mu.Lock()
	max := maxConcurrent
	mu.Unlock()
	if max > int32(workers) {
		t.Errorf("Expected max concurrency <= %d, got %d", workers, max)
	}
}

func TestPool_ErrorAndPanic(t *testing.T) {
	pool := NewPool(context.Background(), 2, func(ctx context.Context, v int) (int, error) {
		switch v {
		case 1:
			return 0, errors.New("job error")
		case 2:
			panic("boom")
		}
		return v, nil
	})
	pool.Start()

	for i := 0; i < 3; i++ {
		pool.Submit(i)
	}
	outcomes := pool.Wait()
	if len(outcomes) != 3 {
		t.Fatalf("Expected 3 outcomes, got %d", len(outcomes))
	}

	if outcomes[0].Err != nil {
		t.Errorf("Expected no error for job 0, got %v", outcomes[0].Err)
	}
	if outcomes[1].Err == nil || outcomes[1].Panicked() {
		t.Errorf("Expected plain error for job 1, got %v", outcomes[1].Err)
	}
	if !outcomes[2].Panicked() {
		t.Errorf("Expected panic for job 2, got %v", outcomes[2].Err)
	}
	var pe *PanicError
	if !errors.As(outcomes[2].Err, &pe) || pe.Value != "boom" {
		t.Errorf("Expected recovered value boom, got %v", outcomes[2].Err)
	}
}

func TestPool_SubmitAfterShutdown(t *testing.T) {
	pool := NewPool(context.Background(), 2, double)
	pool.Start()
	pool.Shutdown()

	done := make(chan struct{})
	go func() {
		pool.Submit(1)
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(1 * time.Second):
		t.Fatal("Submit after shutdown blocked")
	}
}

func TestPool_Shutdown(t *testing.T) {
	started := make(chan struct{})
	pool := NewPool(context.Background(), 2, func(ctx context.Context, v int) (int, error) {
		close(started)
		select {
		case <-time.After(200 * time.Millisecond):
		case <-ctx.Done():
		}
		return v, ctx.Err()
	})
	pool.Start()
	pool.Submit(1)
	<-started

	pool.Shutdown()

	done := make(chan struct{})
	go func() {
		for range pool.results {
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(1 * time.Second):
		t.Fatal("Shutdown timed out")
	}
}

func TestMap(t *testing.T) {
	inputs := make([]int, 100)
	for i := range inputs {
		inputs[i] = i
	}

	outcomes := Map(context.Background(), 4, inputs, double)
	if len(outcomes) != len(inputs) {
		t.Fatalf("Expected %d outcomes, got %d", len(inputs), len(outcomes))
	}
	for i, out := range outcomes {
		if out.Err != nil {
			t.Errorf("Expected no error at %d, got %v", i, out.Err)
		}
		if out.Value != i*2 {
			t.Errorf("Expected %d at %d, got %d", i*2, i, out.Value)
		}
	}

	if got := Map(context.Background(), 4, nil, double); got != nil {
		t.Errorf("Expected nil for empty input, got %v", got)
	}
}

func TestMap_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	outcomes := Map(ctx, 2, []int{1, 2, 3}, double)
	if len(outcomes) != 3 {
		t.Fatalf("Expected 3 outcomes, got %d", len(outcomes))
	}
	for i, out := range outcomes {
		if out.Index != i {
			t.Errorf("Expected index %d, got %d", i, out.Index)
		}
	}
}

package worker

import (
	"context"
	"fmt"
	"runtime/debug"
	"sort"
	"sync"
)

// Func processes one input value
type Func[T, R any] func(ctx context.Context, v T) (R, error)

// Outcome carries a processed value back with the index it was submitted under
type Outcome[R any] struct {
	Index int
	Value R
	Err   error
}

// Panicked reports whether the job panicked instead of returning
func (o Outcome[R]) Panicked() bool {
	_, ok := o.Err.(*PanicError)
	return ok
}

// PanicError wraps a value recovered from a panicking job
type PanicError struct {
	Value any
	Stack []byte
}

func (e *PanicError) Error() string {
	return fmt.Sprintf("worker: job panicked: %v", e.Value)
}

type task[T any] struct {
	index int
	value T
}

// Pool runs a Func over submitted values with a fixed number of workers.
// A panicking job is isolated to its own Outcome.
type Pool[T, R any] struct {
	workers    int
	fn         Func[T, R]
	jobQueue   chan task[T]
	results    chan Outcome[R]
	wg         sync.WaitGroup
	ctx        context.Context
	cancelFunc context.CancelFunc
	closeOnce  sync.Once
	queueOnce  sync.Once
	submitted  int
}

// NewPool creates a new worker pool with the specified number of workers
func NewPool[T, R any](ctx context.Context, workers int, fn Func[T, R]) *Pool[T, R] {
	if workers <= 0 {
		workers = 1
	}
	if ctx == nil {
		ctx = context.Background()
	}

	ctx, cancel := context.WithCancel(ctx)

	return &Pool[T, R]{
		workers:    workers,
		fn:         fn,
		jobQueue:   make(chan task[T], workers*2),
		results:    make(chan Outcome[R], workers*2),
		ctx:        ctx,
		cancelFunc: cancel,
	}
}

// Start starts the worker goroutines
func (p *Pool[T, R]) Start() {
	for i := 0; i < p.workers; i++ {
		p.wg.Add(1)
		go p.worker()
	}
}

func (p *Pool[T, R]) worker() {
	defer p.wg.Done()

	for {
		select {
		case <-p.ctx.Done():
			return
		case t, ok := <-p.jobQueue:
			if !ok {
				return
			}
			out := p.run(t)
			select {
			case p.results <- out:
			case <-p.ctx.Done():
				return
			}
		}
	}
}

func (p *Pool[T, R]) run(t task[T]) (out Outcome[R]) {
	out.Index = t.index
	defer func() {
		if r := recover(); r != nil {
			out.Err = &PanicError{Value: r, Stack: debug.Stack()}
		}
	}()
	out.Value, out.Err = p.fn(p.ctx, t.value)
	return out
}

// Submit queues v under the next index. It returns false once the pool is cancelled.
func (p *Pool[T, R]) Submit(v T) bool {
	t := task[T]{index: p.submitted, value: v}
	select {
	case <-p.ctx.Done():
		return false
	case p.jobQueue <- t:
		p.submitted++
		return true
	}
}

// Wait closes the queue, waits for all jobs and returns their outcomes
// ordered by submission index.
func (p *Pool[T, R]) Wait() []Outcome[R] {
	p.closeQueue()
	return p.collect()
}

func (p *Pool[T, R]) collect() []Outcome[R] {
	go func() {
		p.wg.Wait()
		p.closeResults()
	}()

	var outcomes []Outcome[R]
	for out := range p.results {
		outcomes = append(outcomes, out)
	}

	sort.Slice(outcomes, func(i, j int) bool { return outcomes[i].Index < outcomes[j].Index })
	return outcomes
}

// Shutdown cancels in-flight work and stops the workers
func (p *Pool[T, R]) Shutdown() {
	p.cancelFunc()
	p.wg.Wait()
	p.closeResults()
}

func (p *Pool[T, R]) closeQueue() {
	p.queueOnce.Do(func() {
		close(p.jobQueue)
	})
}

func (p *Pool[T, R]) closeResults() {
	p.closeOnce.Do(func() {
		close(p.results)
	})
}

// Map runs fn over inputs concurrently and returns one Outcome per input,
// in input order. Inputs never started because ctx was cancelled carry ctx's error.
func Map[T, R any](ctx context.Context, workers int, inputs []T, fn Func[T, R]) []Outcome[R] {
	if len(inputs) == 0 {
		return nil
	}
	if workers > len(inputs) {
		workers = len(inputs)
	}

	pool := NewPool(ctx, workers, fn)
	pool.Start()

	// Submission runs beside collection so full buffers never deadlock
	go func() {
		defer pool.closeQueue()
		for _, v := range inputs {
			if !pool.Submit(v) {
				return
			}
		}
	}()

	outcomes := make([]Outcome[R], len(inputs))
	filled := make([]bool, len(inputs))
	for _, out := range pool.collect() {
		outcomes[out.Index] = out
		filled[out.Index] = true
	}
	pool.cancelFunc()

	for i := range outcomes {
		if !filled[i] {
			err := ctx.Err()
			if err == nil {
				err = context.Canceled
			}
			outcomes[i] = Outcome[R]{Index: i, Err: err}
		}
	}
	return outcomes
}

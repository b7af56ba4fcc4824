// Package worker runs bounded concurrent jobs and throttles outbound requests per host.
package worker

import (
	"context"
	"fmt"
	"runtime/debug"
	"sync"
)

// Job represents a unit of work to be executed
type Job interface {
	Execute(ctx context.Context) Result
}

// Result represents the result of a job execution
type Result interface {
	GetError() error
}

// JobFunc adapts a function to the Job interface
type JobFunc func(ctx context.Context) Result

// Execute calls f
func (f JobFunc) Execute(ctx context.Context) Result { return f(ctx) }

// PanicError is the error of a job that panicked
type PanicError struct {
	Value any
	Stack []byte
}

func (e *PanicError) Error() string {
	return fmt.Sprintf("job panicked: %v", e.Value)
}

// PanicResult is delivered in place of the result of a panicking job
type PanicResult struct {
	Job Job
	Err *PanicError
}

// GetError returns the captured panic
func (r *PanicResult) GetError() error { return r.Err }

// pool runs jobs on a fixed number of workers. A panic inside one job is
// captured as a PanicResult and never stops the pool.
type pool struct {
	workers   int
	jobQueue  chan Job
	results   chan Result
	wg        sync.WaitGroup
	queueOnce sync.Once
}

func newPool(workers int) *pool {
	if workers <= 0 {
		workers = 1
	}
	return &pool{
		workers:  workers,
		jobQueue: make(chan Job, workers*2),
		results:  make(chan Result, workers*2),
	}
}

func (p *pool) start() {
	for i := 0; i < p.workers; i++ {
		p.wg.Add(1)
		go p.worker()
	}
}

func (p *pool) worker() {
	defer p.wg.Done()
	for job := range p.jobQueue {
		p.results <- p.execute(job)
	}
}

func (p *pool) execute(job Job) (result Result) {
	defer func() {
		if r := recover(); r != nil {
			result = &PanicResult{Job: job, Err: &PanicError{Value: r, Stack: debug.Stack()}}
		}
	}()
	return job.Execute(context.Background())
}

// close stops accepting jobs and closes results after the workers drain the queue
func (p *pool) close() {
	p.queueOnce.Do(func() {
		close(p.jobQueue)
		go func() {
			p.wg.Wait()
			close(p.results)
		}()
	})
}

// Stream runs jobs on a fresh pool of the given size and returns their results
// as they complete. The channel is closed after the last result. Callers must
// drain it.
func Stream(workers int, jobs []Job) <-chan Result {
	p := newPool(workers)
	p.start()

	go func() {
		for _, job := range jobs {
			p.jobQueue <- job
		}
		p.close()
	}()

	return p.results
}

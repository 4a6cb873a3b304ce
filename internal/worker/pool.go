package worker

import (
	"context"
	"fmt"
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

// ErrorResult is the result of a job that was cancelled before it started or panicked
type ErrorResult struct {
	Err error
}

// GetError returns the error
func (r ErrorResult) GetError() error {
	return r.Err
}

// Pool runs independent jobs on a fixed number of workers
type Pool struct {
	workers int
}

// NewPool creates a new worker pool with the specified number of workers
func NewPool(workers int) *Pool {
	if workers <= 0 {
		workers = 1
	}
	return &Pool{workers: workers}
}

// Run executes jobs concurrently and returns their results in job order.
// Jobs still queued when ctx is done are not started; their result carries ctx.Err().
func (p *Pool) Run(ctx context.Context, jobs []Job) []Result {
	results := make([]Result, len(jobs))
	if len(jobs) == 0 {
		return results
	}

	indexes := make(chan int)
	var wg sync.WaitGroup
	for range min(p.workers, len(jobs)) {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range indexes {
				if err := ctx.Err(); err != nil {
					results[i] = ErrorResult{Err: err}
					continue
				}
				results[i] = execute(ctx, jobs[i])
			}
		}()
	}

	for i := range jobs {
		indexes <- i
	}
	close(indexes)
	wg.Wait()

	return results
}

// execute runs one job; a panic becomes an error result instead of killing the batch
func execute(ctx context.Context, job Job) (res Result) {
	defer func() {
		if r := recover(); r != nil {
			res = ErrorResult{Err: fmt.Errorf("job panicked: %v", r)}
		}
	}()
	res = job.Execute(ctx)
	if res == nil {
		res = ErrorResult{}
	}
	return res
}

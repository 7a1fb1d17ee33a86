package worker

import (
	"context"
	"sync"
)

// Job represents a unit of work to be executed
type Job interface {
	Execute(ctx context.Context) Result
	// Fail builds the result for a job that never ran
	Fail(err error) Result
}

// Result represents the result of a job execution
type Result interface {
	GetError() error
}

// Pool runs jobs on a fixed number of workers
type Pool struct {
	workers int
	ctx     context.Context
}

// NewPool creates a pool whose jobs are canceled along with ctx
func NewPool(ctx context.Context, workers int) *Pool {
	if workers <= 0 {
		workers = 1
	}
	return &Pool{workers: workers, ctx: ctx}
}

// Run executes every job and returns exactly one result per job, in completion
// order. Jobs dequeued after ctx is done are not executed; their result is
// job.Fail(ctx.Err()).
func (p *Pool) Run(jobs []Job) []Result {
	queue := make(chan Job)
	results := make(chan Result, p.workers)

	var wg sync.WaitGroup
	for i := 0; i < p.workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for job := range queue {
				results <- p.execute(job)
			}
		}()
	}

	go func() {
		for _, job := range jobs {
			queue <- job
		}
		close(queue)
	}()

	go func() {
		wg.Wait()
		close(results)
	}()

	collected := make([]Result, 0, len(jobs))
	for result := range results {
		collected = append(collected, result)
	}
	return collected
}

func (p *Pool) execute(job Job) Result {
	if err := p.ctx.Err(); err != nil {
		return job.Fail(err)
	}
	return job.Execute(p.ctx)
}

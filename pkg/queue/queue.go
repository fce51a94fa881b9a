// Package queue serializes novel generation jobs. Providers rate-limit
// aggressively, so runs execute one at a time in submission order.
package queue

import (
	"context"
	"errors"

	"github.com/charmbracelet/log"

	"fabula/pkg/engine"
)

type Runner func(ctx context.Context, concept engine.Concept) (*engine.Result, error)

type Job struct {
	ctx     context.Context
	concept engine.Concept
	result  chan *engine.Result
	err     chan error
}

type Queue struct {
	run  Runner
	jobs chan *Job
	stop chan struct{}
}

func New(run Runner) *Queue {
	return &Queue{
		run:  run,
		jobs: make(chan *Job, 16),
		stop: make(chan struct{}),
	}
}

func (q *Queue) Start() {
	go q.processLoop()
}

func (q *Queue) Stop() {
	close(q.stop)
}

// Add enqueues a run. Exactly one of the returned channels fires; both
// are buffered so the worker never blocks on a gone caller.
func (q *Queue) Add(ctx context.Context, concept engine.Concept) (chan *engine.Result, chan error, error) {
	j := &Job{
		ctx:     ctx,
		concept: concept,
		result:  make(chan *engine.Result, 1),
		err:     make(chan error, 1),
	}
	// Checked first: a buffered send could otherwise still win after Stop.
	select {
	case <-q.stop:
		return nil, nil, errors.New("queue stopped")
	default:
	}
	select {
	case q.jobs <- j:
		return j.result, j.err, nil
	case <-q.stop:
		return nil, nil, errors.New("queue stopped")
	default:
		return nil, nil, errors.New("queue full")
	}
}

func (q *Queue) processLoop() {
	for {
		select {
		case <-q.stop:
			return
		case j := <-q.jobs:
			if err := j.ctx.Err(); err != nil {
				log.Debug("skipping cancelled job", "error", err)
				j.err <- err
				continue
			}
			result, err := q.run(j.ctx, j.concept)
			if err != nil {
				log.Error("generation job failed", "error", err)
				j.err <- err
				continue
			}
			j.result <- result
		}
	}
}

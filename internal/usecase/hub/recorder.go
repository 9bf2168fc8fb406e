package hub

import (
	"context"
	"sync"

	"github.com/kiryu-dev/omok/internal/domain"
)

type recordJob struct {
	gameUuid string
	seq      int
	record   domain.MoveRecord
	clear    bool
}

// recorder queues record jobs without bounds so matches never wait on
// storage. Jobs are handled in the order they were pushed.
type recorder struct {
	mu     *sync.Mutex
	jobs   []recordJob
	signal chan struct{}
}

func newRecorder() *recorder {
	return &recorder{
		mu:     &sync.Mutex{},
		signal: make(chan struct{}, 1),
	}
}

func (r *recorder) push(job recordJob) {
	r.mu.Lock()
	r.jobs = append(r.jobs, job)
	r.mu.Unlock()
	select {
	case r.signal <- struct{}{}:
	default:
	}
}

func (r *recorder) drain() []recordJob {
	r.mu.Lock()
	defer r.mu.Unlock()
	jobs := r.jobs
	r.jobs = nil
	return jobs
}

func (r *recorder) run(ctx context.Context, handle func(job recordJob)) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-r.signal:
			for _, job := range r.drain() {
				handle(job)
			}
		}
	}
}

// Package worker drains evidence notes from the queue into the journal.
package worker

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/okian/raidluck/internal/domain/model"
	"github.com/okian/raidluck/pkg/logger"
	"github.com/okian/raidluck/pkg/metrics"
)

// workerShutdownTimeout bounds how long Stop waits per worker.
const workerShutdownTimeout = 5 * time.Second

// Note is what workers read off the queue.
type Note = model.EvidenceNote

// Archiver persists one evidence note.
type Archiver interface {
	Append(ctx context.Context, note Note) error
}

// Queue defines how workers receive notes.
type Queue interface {
	Dequeue(ctx context.Context) <-chan Note
}

// Worker consumes notes until its context is canceled or the queue closes.
type Worker struct {
	queue    Queue
	archiver Archiver
	name     string

	shutdown chan struct{}
	done     chan struct{}

	logger logger.Logger
}

// NewWorker creates a worker with configuration options.
func NewWorker(queue Queue, archiver Archiver, opts ...Option) *Worker {
	w := &Worker{
		queue:    queue,
		archiver: archiver,
		name:     "worker",
		shutdown: make(chan struct{}),
		done:     make(chan struct{}),
	}
	for _, opt := range opts {
		opt(w)
	}
	if w.logger == nil {
		w.logger = logger.Get().Named(w.name)
	}
	return w
}

// Run starts the worker loop.
func (w *Worker) Run(ctx context.Context) {
	defer close(w.done)

	notes := w.queue.Dequeue(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-w.shutdown:
			w.drain(ctx, notes)
			return
		case note, ok := <-notes:
			if !ok {
				return
			}
			w.process(ctx, note)
		}
	}
}

// drain archives whatever is still buffered so a graceful shutdown
// does not lose accepted notes.
func (w *Worker) drain(ctx context.Context, notes <-chan Note) {
	for {
		select {
		case note, ok := <-notes:
			if !ok {
				return
			}
			w.process(ctx, note)
		default:
			return
		}
	}
}

func (w *Worker) process(ctx context.Context, note Note) {
	if err := w.archiver.Append(ctx, note); err != nil {
		metrics.RecordEvidenceArchiveError()
		metrics.RecordErrorByComponent("worker", "archive_error")
		w.logger.Error(ctx, "archiving evidence note failed",
			logger.String("submissionID", note.SubmissionID),
			logger.Error(err),
		)
		return
	}
	metrics.RecordEvidenceArchived()
}

// Shutdown stops the worker and waits for it to finish.
func (w *Worker) Shutdown(ctx context.Context) error {
	close(w.shutdown)
	select {
	case <-w.done:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("worker shutdown timed out: %w", ctx.Err())
	}
}

// Pool manages multiple workers draining the same queue.
type Pool struct {
	workers []*Worker
	logger  logger.Logger
}

// NewPool creates a pool of count workers.
func NewPool(count int, queue Queue, archiver Archiver) *Pool {
	if count < 1 {
		count = 1
	}
	p := &Pool{
		workers: make([]*Worker, count),
		logger:  logger.Get().Named("evidence-pool"),
	}
	for i := range p.workers {
		p.workers[i] = NewWorker(queue, archiver, WithName("worker-"+strconv.Itoa(i)))
	}
	metrics.UpdateEvidenceWorkerCount(count)
	return p
}

// Start starts all workers in the pool.
func (p *Pool) Start(ctx context.Context) {
	for _, w := range p.workers {
		go w.Run(ctx)
	}
}

// Stop stops all workers, waiting up to a bounded time for each.
func (p *Pool) Stop() {
	for _, w := range p.workers {
		select {
		case <-w.shutdown:
			// already signalled
		default:
			close(w.shutdown)
		}
	}
	for i, w := range p.workers {
		select {
		case <-w.done:
		case <-time.After(workerShutdownTimeout):
			p.logger.Warn(context.Background(), "worker shutdown timed out", logger.Int("worker", i))
		}
	}
}

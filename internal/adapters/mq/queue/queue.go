// Package queue defines the contract for enqueuing and consuming
// evidence notes. The in-memory bounded queue decouples the submit path
// from journal I/O.
package queue

import (
	"context"
	"sync"

	"github.com/okian/raidluck/internal/domain/model"
	"github.com/okian/raidluck/pkg/metrics"
)

// defaultCapacity bounds the queue when no option overrides it.
const defaultCapacity = 10_000

// Note is the payload type flowing through the queue.
type Note = model.EvidenceNote

// Queue provides non-blocking enqueue and channel-based dequeue semantics.
type Queue interface {
	// Enqueue adds a note to the queue.
	// Returns false if the queue is full or closed and the note was dropped.
	Enqueue(ctx context.Context, n Note) bool

	// Dequeue returns a channel that receives notes as they become
	// available. The channel is closed when the queue is closed.
	Dequeue(ctx context.Context) <-chan Note

	// Len returns the current number of queued notes.
	Len(ctx context.Context) int

	// Close gracefully shuts down the queue. After closing, no new
	// notes can be enqueued and the dequeue channel drains then closes.
	Close() error

	// IsClosed returns true if the queue has been closed.
	IsClosed() bool
}

// InMemoryQueue implements Queue using a buffered channel.
type InMemoryQueue struct {
	notes    chan Note
	capacity int
	mu       sync.RWMutex
	closed   bool
}

// NewInMemoryQueue creates a new in-memory queue with configuration options.
func NewInMemoryQueue(opts ...Option) *InMemoryQueue {
	q := &InMemoryQueue{
		capacity: defaultCapacity,
	}
	for _, opt := range opts {
		opt(q)
	}
	q.notes = make(chan Note, q.capacity)

	metrics.UpdateEvidenceQueueCapacity(q.capacity)
	metrics.UpdateEvidenceQueueSize(0)
	metrics.UpdateEvidenceQueueUtilization(0)
	return q
}

// Enqueue adds a note to the queue without blocking.
func (q *InMemoryQueue) Enqueue(ctx context.Context, n Note) bool {
	q.mu.RLock()
	defer q.mu.RUnlock()

	if q.closed {
		metrics.RecordEvidenceEnqueueError()
		metrics.RecordErrorByComponent("queue", "closed")
		return false
	}

	select {
	case q.notes <- n:
		metrics.RecordEvidenceEnqueued()
		q.publishSize()
		return true
	case <-ctx.Done():
		metrics.RecordEvidenceEnqueueError()
		metrics.RecordErrorByComponent("queue", "context_cancelled")
		return false
	default:
		metrics.RecordEvidenceEnqueueError()
		metrics.RecordErrorByComponent("queue", "queue_full")
		return false
	}
}

// Dequeue returns a channel that receives notes as they become available.
func (q *InMemoryQueue) Dequeue(ctx context.Context) <-chan Note {
	out := make(chan Note)
	go func() {
		defer close(out)
		for note := range q.notes {
			select {
			case out <- note:
				metrics.RecordEvidenceDequeued()
				q.publishSize()
			case <-ctx.Done():
				return
			}
		}
	}()
	return out
}

// Len returns the current number of queued notes.
func (q *InMemoryQueue) Len(_ context.Context) int {
	size := len(q.notes)
	q.publishSize()
	return size
}

func (q *InMemoryQueue) publishSize() {
	size := len(q.notes)
	metrics.UpdateEvidenceQueueSize(size)
	metrics.UpdateEvidenceQueueUtilization(float64(size) / float64(q.capacity))
}

// Close gracefully shuts down the queue.
func (q *InMemoryQueue) Close() error {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return nil
	}
	close(q.notes)
	q.closed = true
	return nil
}

// IsClosed returns true if the queue has been closed.
func (q *InMemoryQueue) IsClosed() bool {
	q.mu.RLock()
	defer q.mu.RUnlock()
	return q.closed
}

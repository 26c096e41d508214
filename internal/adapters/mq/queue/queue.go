// Package queue hands scored assessments from request handlers to the
// history writers without blocking the request path.
package queue

import (
	"context"
	"sync"

	"github.com/healthtwin/riskengine/internal/domain/model"
	"github.com/healthtwin/riskengine/pkg/metrics"
)

const defaultQueueCapacity = 10_000

// Drop reasons reported to metrics.
const (
	reasonFull      = "queue_full"
	reasonClosed    = "closed"
	reasonCancelled = "context_cancelled"
)

// Record is the payload flowing through the queue.
type Record = model.Assessment

// Queue provides non-blocking enqueue and channel-based dequeue semantics.
type Queue interface {
	// Enqueue adds a record without blocking. It returns ErrQueueFull when
	// the buffer is at capacity and ErrQueueClosed after Close.
	Enqueue(ctx context.Context, r Record) error

	// Dequeue returns the channel writers drain. It is closed by Close once
	// buffered records have been received.
	Dequeue(ctx context.Context) <-chan Record

	// Len returns the current number of queued records.
	Len(ctx context.Context) int

	// Capacity returns the configured bound.
	Capacity() int

	// Close stops accepting records. Buffered records remain readable.
	Close() error

	// IsClosed returns true if the queue has been closed.
	IsClosed() bool
}

// InMemoryQueue implements Queue using a buffered channel.
type InMemoryQueue struct {
	records  chan Record
	capacity int

	mu     sync.RWMutex
	closed bool
}

// NewInMemoryQueue creates a new in-memory queue with configuration options.
func NewInMemoryQueue(opts ...Option) *InMemoryQueue {
	q := &InMemoryQueue{
		capacity: defaultQueueCapacity,
	}
	for _, opt := range opts {
		opt(q)
	}

	q.records = make(chan Record, q.capacity)

	metrics.UpdateQueueCapacity(q.capacity)
	metrics.UpdateQueueSize(0)

	return q
}

// Enqueue adds a record to the queue.
func (q *InMemoryQueue) Enqueue(ctx context.Context, r Record) error { //nolint:gocritic // hugeParam: records are passed by value for channel semantics
	// the read lock keeps Close from closing the channel mid-send
	q.mu.RLock()
	defer q.mu.RUnlock()

	if q.closed {
		metrics.RecordQueueDropped(reasonClosed)
		return ErrQueueClosed
	}

	if err := ctx.Err(); err != nil {
		metrics.RecordQueueDropped(reasonCancelled)
		return err
	}

	select {
	case q.records <- r:
		metrics.UpdateQueueSize(len(q.records))
		return nil
	default:
		metrics.RecordQueueDropped(reasonFull)
		return ErrQueueFull
	}
}

// Dequeue returns a channel that will receive records as they become available.
func (q *InMemoryQueue) Dequeue(_ context.Context) <-chan Record {
	return q.records
}

// Len returns the current number of queued records.
func (q *InMemoryQueue) Len(_ context.Context) int {
	size := len(q.records)
	metrics.UpdateQueueSize(size)
	return size
}

// Capacity returns the maximum number of queued records.
func (q *InMemoryQueue) Capacity() int {
	return q.capacity
}

// Close gracefully shuts down the queue.
func (q *InMemoryQueue) Close() error {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return nil
	}

	close(q.records)
	q.closed = true

	return nil
}

// IsClosed returns true if the queue has been closed.
func (q *InMemoryQueue) IsClosed() bool {
	q.mu.RLock()
	defer q.mu.RUnlock()
	return q.closed
}

// Package worker drains queued assessments into the history store.
package worker

import (
	"context"
	"fmt"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/healthtwin/riskengine/internal/adapters/mq/queue"
	"github.com/healthtwin/riskengine/pkg/logger"
	"github.com/healthtwin/riskengine/pkg/metrics"
)

// Default worker configuration constants.
const (
	defaultWorkerCount    = 4
	defaultSaveTimeout    = 5 * time.Second
	metricsUpdateInterval = 5 * time.Second
	poolShutdownTimeout   = 30 * time.Second
)

// Record is what workers read off the queue.
type Record = queue.Record

// Writer persists one assessment.
type Writer interface {
	Save(ctx context.Context, r Record) error
}

// Queue defines how workers receive records.
type Queue interface {
	Dequeue(ctx context.Context) <-chan Record
}

// Worker drains records and hands them to a Writer.
type Worker interface {
	// Run consumes records until the queue closes or ctx is canceled.
	Run(ctx context.Context)

	// Wait blocks until Run has returned or ctx expires.
	Wait(ctx context.Context) error
}

// InMemoryWorker implements Worker.
type InMemoryWorker struct {
	queue       Queue
	writer      Writer
	name        string
	saveTimeout time.Duration

	processed atomic.Int64
	failed    atomic.Int64

	done   chan struct{}
	logger logger.Logger
}

// NewInMemoryWorker creates a new worker with configuration options.
func NewInMemoryWorker(q Queue, w Writer, opts ...Option) *InMemoryWorker {
	wk := &InMemoryWorker{
		queue:       q,
		writer:      w,
		name:        "worker",
		saveTimeout: defaultSaveTimeout,
		done:        make(chan struct{}),
		logger:      logger.Get().Named("worker"),
	}
	for _, opt := range opts {
		opt(wk)
	}

	if wk.name != "worker" {
		wk.logger = wk.logger.Named(wk.name)
	}
	return wk
}

// Run starts the worker loop. Records still buffered when the queue is
// closed are written before Run returns.
func (w *InMemoryWorker) Run(ctx context.Context) {
	defer close(w.done)

	records := w.queue.Dequeue(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case r, ok := <-records:
			if !ok {
				return
			}
			if err := w.save(ctx, r); err != nil {
				w.logger.Error(ctx, "history write failed",
					logger.String("assessment_id", r.ID.String()),
					logger.String("kind", r.Kind.String()),
					logger.Error(err),
				)
			}
		}
	}
}

// Wait blocks until the worker loop has exited.
func (w *InMemoryWorker) Wait(ctx context.Context) error {
	select {
	case <-w.done:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("worker %s: %w", w.name, ctx.Err())
	}
}

// Processed returns the number of records written successfully.
func (w *InMemoryWorker) Processed() int64 { return w.processed.Load() }

// Failed returns the number of records the writer rejected.
func (w *InMemoryWorker) Failed() int64 { return w.failed.Load() }

func (w *InMemoryWorker) save(ctx context.Context, r Record) error { //nolint:gocritic // hugeParam: records are passed by value for channel semantics
	// a write in flight should finish even if the run context is cancelled
	saveCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), w.saveTimeout)
	defer cancel()

	start := time.Now()
	err := w.writer.Save(saveCtx, r)
	if err != nil {
		w.failed.Add(1)
		metrics.RecordHistoryError()
		return fmt.Errorf("save assessment %s: %w", r.ID, err)
	}

	w.processed.Add(1)
	metrics.RecordHistoryWrite(float64(time.Since(start).Microseconds()) / 1000)
	return nil
}

// Pool manages multiple workers reading the same queue.
type Pool struct {
	workers []*InMemoryWorker
	queue   Queue
	cancel  context.CancelFunc
	logger  logger.Logger
}

// NewPool creates a new worker pool. A non-positive workerCount falls back
// to a small default.
func NewPool(workerCount int, q Queue, w Writer, opts ...Option) *Pool {
	if workerCount < 1 {
		workerCount = defaultWorkerCount
	}

	pool := &Pool{
		workers: make([]*InMemoryWorker, workerCount),
		queue:   q,
		logger:  logger.Get().Named("worker-pool"),
	}

	for i := 0; i < workerCount; i++ {
		workerOpts := append([]Option{WithName("worker-" + strconv.Itoa(i))}, opts...)
		pool.workers[i] = NewInMemoryWorker(q, w, workerOpts...)
	}

	metrics.UpdateWorkerCount(workerCount)
	return pool
}

// Size returns the number of workers.
func (p *Pool) Size() int { return len(p.workers) }

// Processed returns the total number of records written by all workers.
func (p *Pool) Processed() int64 {
	var n int64
	for _, w := range p.workers {
		n += w.Processed()
	}
	return n
}

// Failed returns the total number of failed writes.
func (p *Pool) Failed() int64 {
	var n int64
	for _, w := range p.workers {
		n += w.Failed()
	}
	return n
}

// Start starts all workers in the pool.
func (p *Pool) Start(ctx context.Context) {
	ctx, p.cancel = context.WithCancel(ctx)
	for _, w := range p.workers {
		go w.Run(ctx)
	}
	go p.startMetricsUpdater(ctx)
}

// startMetricsUpdater periodically refreshes the queue depth gauge.
func (p *Pool) startMetricsUpdater(ctx context.Context) {
	lenner, ok := p.queue.(interface{ Len(context.Context) int })
	if !ok {
		return
	}

	ticker := time.NewTicker(metricsUpdateInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			lenner.Len(ctx)
		}
	}
}

// Shutdown closes the queue, lets workers drain what is buffered and
// waits for them to exit. Workers still running when ctx (or the pool
// timeout) expires are cancelled.
func (p *Pool) Shutdown(ctx context.Context) error {
	if closer, ok := p.queue.(interface{ Close() error }); ok {
		if err := closer.Close(); err != nil {
			p.logger.Error(ctx, "error closing queue", logger.Error(err))
		}
	}

	if p.cancel == nil {
		return nil // never started
	}

	waitCtx, cancel := context.WithTimeout(ctx, poolShutdownTimeout)
	defer cancel()

	var firstErr error
	for i, w := range p.workers {
		if err := w.Wait(waitCtx); err != nil {
			p.logger.Warn(ctx, "worker shutdown timed out", logger.Int("worker_id", i))
			if firstErr == nil {
				firstErr = err
			}
		}
	}

	p.cancel()
	return firstErr
}

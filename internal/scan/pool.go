package scan

import (
	"context"
	"log/slog"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/jackzampolin/lexscan/internal/extract"
	"github.com/jackzampolin/lexscan/internal/source"
)

// Handler processes one document and returns its records and page count.
// Implementations must be safe for concurrent use.
type Handler func(ctx context.Context, doc source.Document) ([]extract.Record, int, error)

// DocumentResult is the outcome of one document. Index is the document's
// position in the canonical order.
type DocumentResult struct {
	Index    int
	Document source.Document
	Records  []extract.Record
	Pages    int
	Err      error
	Duration time.Duration
}

type unit struct {
	index int
	doc   source.Document
}

// Pool runs a handler over documents with a fixed number of workers.
// All workers share a single queue; results are collected by index, so the
// returned slice is in document order whatever order workers finish in.
type Pool struct {
	name        string
	logger      *slog.Logger
	workerCount int
	queueSize   int

	inFlight  atomic.Int32
	completed atomic.Int32
}

// PoolConfig configures a new Pool.
type PoolConfig struct {
	Name        string
	Logger      *slog.Logger
	WorkerCount int // Number of worker goroutines (default 1)
	QueueSize   int // Queue size (default: WorkerCount*2)
}

// NewPool creates a new worker pool.
func NewPool(cfg PoolConfig) *Pool {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	name := cfg.Name
	if name == "" {
		name = "scan"
	}

	workerCount := cfg.WorkerCount
	if workerCount <= 0 {
		workerCount = 1
	}

	queueSize := cfg.QueueSize
	if queueSize <= 0 {
		queueSize = workerCount * 2
	}

	return &Pool{
		name:        name,
		logger:      logger.With("pool", name, "workers", workerCount),
		workerCount: workerCount,
		queueSize:   queueSize,
	}
}

// PoolStatus is a point-in-time view of the pool.
type PoolStatus struct {
	Name      string `json:"name" yaml:"name"`
	Workers   int    `json:"workers" yaml:"workers"`
	InFlight  int    `json:"in_flight" yaml:"in_flight"`
	Completed int    `json:"completed" yaml:"completed"`
}

// Status returns current pool status.
func (p *Pool) Status() PoolStatus {
	return PoolStatus{
		Name:      p.name,
		Workers:   p.workerCount,
		InFlight:  int(p.inFlight.Load()),
		Completed: int(p.completed.Load()),
	}
}

// Run feeds docs to the workers and blocks until every document has a
// result or ctx is cancelled. Handler errors are per-document results, not
// failures of the run; only cancellation makes Run return an error.
func (p *Pool) Run(ctx context.Context, docs []source.Document, handle Handler) ([]DocumentResult, error) {
	out := make([]DocumentResult, len(docs))
	if len(docs) == 0 {
		return out, nil
	}

	queue := make(chan unit, p.queueSize)
	results := make(chan DocumentResult, p.queueSize)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		defer close(queue)
		for i, doc := range docs {
			select {
			case queue <- unit{index: i, doc: doc}:
			case <-gctx.Done():
				return gctx.Err()
			}
		}
		return nil
	})

	for i := 0; i < p.workerCount; i++ {
		id := i
		g.Go(func() error {
			return p.worker(gctx, id, queue, results, handle)
		})
	}

	// The collector is the only writer of out.
	collected := make(chan struct{})
	go func() {
		defer close(collected)
		for r := range results {
			out[r.Index] = r
		}
	}()

	err := g.Wait()
	close(results)
	<-collected
	if err == nil {
		err = ctx.Err()
	}
	if err != nil {
		return nil, err
	}
	return out, nil
}

// worker processes units from the shared queue until it is drained.
func (p *Pool) worker(ctx context.Context, id int, queue <-chan unit, results chan<- DocumentResult, handle Handler) error {
	logger := p.logger.With("worker_id", id)
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case u, ok := <-queue:
			if !ok {
				return nil
			}
			logger.Debug("worker received document", "document", u.doc.Name, "index", u.index)
			p.inFlight.Add(1)
			start := time.Now()
			records, pages, err := handle(ctx, u.doc)
			p.inFlight.Add(-1)
			p.completed.Add(1)

			r := DocumentResult{
				Index:    u.index,
				Document: u.doc,
				Records:  records,
				Pages:    pages,
				Err:      err,
				Duration: time.Since(start),
			}
			logger.Debug("worker completed document", "document", u.doc.Name, "records", len(records), "error", err)

			select {
			case results <- r:
			case <-ctx.Done():
				return ctx.Err()
			}
		}
	}
}

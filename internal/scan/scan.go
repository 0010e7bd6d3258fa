// Package scan runs the extraction engine over a folder of documents.
//
// Documents are processed concurrently, each into a private record list.
// Results are merged in canonical document order, then deduplicated and
// sorted, so the output does not depend on which worker finished first.
package scan

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/jackzampolin/lexscan/internal/extract"
	"github.com/jackzampolin/lexscan/internal/source"
)

// ErrNoDocuments is returned alongside an empty result when the input folder
// holds no scannable documents.
var ErrNoDocuments = errors.New("no documents found")

// DefaultBestExamples is the number of best examples kept in a Result.
const DefaultBestExamples = 10

// MinExampleLines is the fewest explanation lines a record needs to be
// listed as a best example.
const MinExampleLines = 3

// Config configures a Scanner.
type Config struct {
	Engine *extract.Engine
	Reader *source.Reader

	Mode       extract.Mode
	Extensions []string

	// Workers is the number of concurrent documents (default: runtime.NumCPU()).
	Workers int
	// DocumentTimeout bounds the time spent on one document. Zero disables it.
	DocumentTimeout time.Duration
	// BestExamples is how many records with the most explanation lines the
	// result lists. Negative disables the listing.
	BestExamples int

	Logger *slog.Logger
}

// Scanner scans documents into records.
type Scanner struct {
	engine       *extract.Engine
	reader       *source.Reader
	mode         extract.Mode
	extensions   []string
	workers      int
	timeout      time.Duration
	bestExamples int
	logger       *slog.Logger
}

// New creates a Scanner.
func New(cfg Config) (*Scanner, error) {
	if cfg.Engine == nil {
		return nil, fmt.Errorf("scan: engine is required")
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	reader := cfg.Reader
	if reader == nil {
		reader = source.NewReader(source.ReaderConfig{Logger: logger})
	}
	workers := cfg.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	best := cfg.BestExamples
	if best == 0 {
		best = DefaultBestExamples
	}
	mode := cfg.Mode
	if mode == "" {
		mode = extract.ModeAll
	}
	return &Scanner{
		engine:       cfg.Engine,
		reader:       reader,
		mode:         mode,
		extensions:   cfg.Extensions,
		workers:      workers,
		timeout:      cfg.DocumentTimeout,
		bestExamples: best,
		logger:       logger,
	}, nil
}

// Engine returns the scanner's engine.
func (s *Scanner) Engine() *extract.Engine {
	return s.engine
}

// ScanDir discovers the documents in dir and scans them. An empty folder
// yields an empty result and ErrNoDocuments.
func (s *Scanner) ScanDir(ctx context.Context, dir string) (*Result, error) {
	docs, err := source.Discover(dir, s.extensions)
	if err != nil {
		return nil, err
	}
	res, err := s.Scan(ctx, docs)
	if err != nil {
		return nil, err
	}
	res.InputDir = dir
	if len(docs) == 0 {
		return res, fmt.Errorf("%w in %s", ErrNoDocuments, dir)
	}
	return res, nil
}

// Scan processes docs, which must already be in canonical order. A document
// that fails to read is recorded in Result.Skipped; only cancellation of ctx
// fails the scan.
func (s *Scanner) Scan(ctx context.Context, docs []source.Document) (*Result, error) {
	runID := uuid.New().String()
	logger := s.logger.With("run_id", runID)
	start := time.Now()

	logger.Info("scan starting", "documents", len(docs), "mode", s.mode, "workers", s.workers)

	pool := NewPool(PoolConfig{Name: "scan", Logger: logger, WorkerCount: s.workers})
	results, err := pool.Run(ctx, docs, s.scanDocument)
	if err != nil {
		return nil, fmt.Errorf("scan cancelled: %w", err)
	}

	res := &Result{
		RunID:     runID,
		Mode:      s.mode,
		StartedAt: start.UTC(),
	}

	// Merge barrier: canonical document order, never completion order.
	var all []extract.Record
	for _, r := range results {
		if r.Err != nil {
			logger.Warn("skipping document", "document", r.Document.Name, "error", r.Err)
			res.Skipped = append(res.Skipped, SkippedDocument{Document: r.Document.Name, Error: r.Err.Error()})
			continue
		}
		res.Documents = append(res.Documents, DocumentSummary{
			Document: r.Document.Name,
			Pages:    r.Pages,
			Records:  len(r.Records),
			Duration: r.Duration,
		})
		res.Pages += r.Pages
		all = append(all, r.Records...)
	}

	res.Extracted = len(all)
	res.Records = extract.Dedupe(all, s.engine.Config())
	res.Kinds = countKinds(res.Records)
	if s.bestExamples > 0 {
		res.BestExamples = bestExamples(res.Records, s.bestExamples)
	}
	res.Duration = time.Since(start)

	logger.Info("scan complete",
		"documents", len(res.Documents),
		"skipped", len(res.Skipped),
		"pages", res.Pages,
		"extracted", res.Extracted,
		"unique", len(res.Records),
		"duration", res.Duration)

	return res, nil
}

// ScanDocument reads and scans a single document.
func (s *Scanner) ScanDocument(ctx context.Context, doc source.Document) ([]extract.Record, error) {
	records, _, err := s.scanDocument(ctx, doc)
	return records, err
}

func (s *Scanner) scanDocument(ctx context.Context, doc source.Document) ([]extract.Record, int, error) {
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	pages, err := s.reader.Read(ctx, doc)
	if err != nil {
		return nil, 0, err
	}

	var records []extract.Record
	for _, p := range pages {
		if err := ctx.Err(); err != nil {
			return nil, 0, &source.DocumentReadError{Path: doc.Path, Err: err}
		}
		records = append(records, s.engine.ScanPage(doc.Name, p.Number, p.Text)...)
	}
	return records, len(pages), nil
}

func countKinds(records []extract.Record) map[extract.TermKind]int {
	counts := make(map[extract.TermKind]int)
	for _, r := range records {
		counts[r.Kind]++
	}
	return counts
}

// bestExamples returns up to n records with the most explanation lines,
// ignoring records with fewer than MinExampleLines.
func bestExamples(records []extract.Record, n int) []Example {
	var sorted []extract.Record
	for _, r := range records {
		if r.LineCount >= MinExampleLines {
			sorted = append(sorted, r)
		}
	}
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].LineCount > sorted[j].LineCount
	})
	if len(sorted) > n {
		sorted = sorted[:n]
	}
	examples := make([]Example, len(sorted))
	for i, r := range sorted {
		examples[i] = Example{
			Heading:  r.Heading,
			Lines:    r.LineCount,
			Document: r.Source,
			Page:     r.Page,
		}
	}
	return examples
}

// Package source finds documents in an input folder and decodes them into
// numbered page texts for the extraction engine.
package source

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/avast/retry-go/v4"
)

// ErrUnsupportedFormat is returned for documents no decoder handles.
var ErrUnsupportedFormat = errors.New("unsupported document format")

// DefaultExtensions are the document extensions scanned when none are configured.
var DefaultExtensions = []string{".pdf", ".txt"}

// Document is one input file.
type Document struct {
	Path string // Full path to the file
	Name string // Base name, used as the record's source document
	Ext  string // Lower-cased extension including the dot
}

// Page is the text of one page. Number is 1-based.
type Page struct {
	Number int
	Text   string
}

// Decoder turns a document file into page texts.
type Decoder interface {
	Decode(ctx context.Context, path string) ([]Page, error)
}

// DocumentReadError reports a document that could not be opened or decoded.
// The scan skips the document and carries on.
type DocumentReadError struct {
	Path string
	Err  error
}

func (e *DocumentReadError) Error() string {
	return fmt.Sprintf("read %s: %v", filepath.Base(e.Path), e.Err)
}

func (e *DocumentReadError) Unwrap() error {
	return e.Err
}

// NormalizeExtensions lower-cases exts and gives each a leading dot, so
// "PDF" and ".pdf" name the same documents.
func NormalizeExtensions(exts []string) []string {
	out := make([]string, len(exts))
	for i, ext := range exts {
		ext = strings.ToLower(strings.TrimSpace(ext))
		if !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		out[i] = ext
	}
	return out
}

// Discover lists the documents directly inside dir whose extension is in
// exts (case-insensitive), in canonical order. Sub-directories are ignored.
func Discover(dir string, exts []string) ([]Document, error) {
	if len(exts) == 0 {
		exts = DefaultExtensions
	}
	allowed := make(map[string]bool, len(exts))
	for _, ext := range NormalizeExtensions(exts) {
		allowed[ext] = true
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read input directory: %w", err)
	}

	var docs []Document
	for _, entry := range entries {
		if entry.IsDir() || strings.HasPrefix(entry.Name(), ".") {
			continue
		}
		ext := strings.ToLower(filepath.Ext(entry.Name()))
		if !allowed[ext] {
			continue
		}
		docs = append(docs, Document{
			Path: filepath.Join(dir, entry.Name()),
			Name: entry.Name(),
			Ext:  ext,
		})
	}

	SortDocuments(docs)
	return docs, nil
}

var numberSuffix = regexp.MustCompile(`^(.*?)[-_ ]?(\d+)$`)

// SortDocuments sorts documents into canonical order: by name stem, then by
// numeric suffix, so "notes-2.pdf" comes before "notes-10.pdf". The order is
// total, which keeps merges and dedup tie-breaks reproducible.
func SortDocuments(docs []Document) {
	sort.SliceStable(docs, func(i, j int) bool {
		si, ni := splitNumber(docs[i].Name)
		sj, nj := splitNumber(docs[j].Name)
		if si != sj {
			return si < sj
		}
		if ni != nj {
			return ni < nj
		}
		return docs[i].Name < docs[j].Name
	})
}

func splitNumber(name string) (stem string, n int) {
	stem = strings.ToLower(strings.TrimSuffix(name, filepath.Ext(name)))
	m := numberSuffix.FindStringSubmatch(stem)
	if m == nil {
		return stem, -1
	}
	n, err := strconv.Atoi(m[2])
	if err != nil {
		return stem, -1
	}
	return m[1], n
}

// ReaderConfig configures a Reader.
type ReaderConfig struct {
	// Decoders maps lower-cased extensions to decoders. Nil uses DefaultDecoders.
	Decoders map[string]Decoder

	// Retries is the number of attempts for a failing decode. Files still being
	// copied into a watched folder usually succeed on a later attempt.
	Retries    uint
	RetryDelay time.Duration

	Logger *slog.Logger
}

// DefaultDecoders returns the PDF and plain-text decoders.
func DefaultDecoders() map[string]Decoder {
	return map[string]Decoder{
		".pdf": NewPDFDecoder(),
		".txt": TextDecoder{},
	}
}

// Reader decodes documents with the decoder registered for their extension.
type Reader struct {
	decoders map[string]Decoder
	retries  uint
	delay    time.Duration
	logger   *slog.Logger
}

// NewReader creates a Reader.
func NewReader(cfg ReaderConfig) *Reader {
	decoders := cfg.Decoders
	if decoders == nil {
		decoders = DefaultDecoders()
	}
	retries := cfg.Retries
	if retries == 0 {
		retries = 1
	}
	delay := cfg.RetryDelay
	if delay == 0 {
		delay = 200 * time.Millisecond
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Reader{decoders: decoders, retries: retries, delay: delay, logger: logger}
}

// Read decodes doc. Any failure is returned as a *DocumentReadError.
func (r *Reader) Read(ctx context.Context, doc Document) ([]Page, error) {
	ext := doc.Ext
	if ext == "" {
		ext = strings.ToLower(filepath.Ext(doc.Path))
	}
	dec, ok := r.decoders[ext]
	if !ok {
		return nil, &DocumentReadError{Path: doc.Path, Err: fmt.Errorf("%w: %q", ErrUnsupportedFormat, ext)}
	}

	var pages []Page
	err := retry.Do(
		func() error {
			var err error
			pages, err = dec.Decode(ctx, doc.Path)
			return err
		},
		retry.Context(ctx),
		retry.Attempts(r.retries),
		retry.Delay(r.delay),
		retry.LastErrorOnly(true),
		retry.RetryIf(func(err error) bool {
			return !errors.Is(err, ErrUnsupportedFormat) && !errors.Is(err, os.ErrNotExist)
		}),
		retry.OnRetry(func(n uint, err error) {
			r.logger.Debug("retrying document", "document", doc.Name, "attempt", n+1, "error", err)
		}),
	)
	if err != nil {
		return nil, &DocumentReadError{Path: doc.Path, Err: err}
	}
	return pages, nil
}

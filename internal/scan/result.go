package scan

import (
	"time"

	"github.com/jackzampolin/lexscan/internal/extract"
)

// Result is the outcome of a scan run.
type Result struct {
	RunID     string       `json:"run_id" yaml:"run_id"`
	Mode      extract.Mode `json:"mode" yaml:"mode"`
	InputDir  string       `json:"input_dir,omitempty" yaml:"input_dir,omitempty"`
	StartedAt time.Time    `json:"started_at" yaml:"started_at"`

	Documents []DocumentSummary `json:"documents" yaml:"documents"`
	Skipped   []SkippedDocument `json:"skipped,omitempty" yaml:"skipped,omitempty"`

	Pages     int `json:"pages" yaml:"pages"`
	Extracted int `json:"extracted" yaml:"extracted"`

	// Records are the deduplicated records sorted by heading.
	Records []extract.Record `json:"-" yaml:"-"`

	Kinds        map[extract.TermKind]int `json:"kinds" yaml:"kinds"`
	BestExamples []Example                `json:"best_examples,omitempty" yaml:"best_examples,omitempty"`
	Duration     time.Duration            `json:"duration" yaml:"duration"`
}

// DocumentSummary describes one scanned document.
type DocumentSummary struct {
	Document string        `json:"document" yaml:"document"`
	Pages    int           `json:"pages" yaml:"pages"`
	Records  int           `json:"records" yaml:"records"`
	Duration time.Duration `json:"duration" yaml:"duration"`
}

// SkippedDocument is a document that could not be read.
type SkippedDocument struct {
	Document string `json:"document" yaml:"document"`
	Error    string `json:"error" yaml:"error"`
}

// Example is one entry of the best-examples listing.
type Example struct {
	Heading  string `json:"heading" yaml:"heading"`
	Lines    int    `json:"lines" yaml:"lines"`
	Document string `json:"document" yaml:"document"`
	Page     int    `json:"page" yaml:"page"`
}

// Summary is the printable view of a Result.
type Summary struct {
	Result `yaml:",inline"`
	Unique int    `json:"unique" yaml:"unique"`
	Output string `json:"output,omitempty" yaml:"output,omitempty"`
}

// Summary returns the printable view of r, noting where the records were written.
func (r *Result) Summary(output string) Summary {
	return Summary{Result: *r, Unique: len(r.Records), Output: output}
}

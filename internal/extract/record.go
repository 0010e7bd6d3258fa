package extract

import "strings"

// Line is one line of normalized page text.
type Line struct {
	Index int
	Text  string

	// Bulleted is set when the raw line started with a bullet glyph that
	// normalization removed.
	Bulleted bool
}

// Blank reports whether the line carries no text.
func (l Line) Blank() bool {
	return l.Text == ""
}

// CandidateHeading is a line provisionally identified as a term or case name.
type CandidateHeading struct {
	Text           string   `json:"text" yaml:"text"`
	StartLineIndex int      `json:"start_line_index" yaml:"start_line_index"`
	Kind           TermKind `json:"kind" yaml:"kind"`

	// Definition is the same-line definition for inline matches.
	Definition string `json:"definition,omitempty" yaml:"definition,omitempty"`
}

// ExplanationWindow is the bounded run of lines attached to a heading.
type ExplanationWindow struct {
	Lines      []string   `json:"lines" yaml:"lines"`
	StopReason StopReason `json:"stop_reason" yaml:"stop_reason"`

	// Next is the index of the first line the window did not consume.
	Next int `json:"next" yaml:"next"`
}

// Record is the unit of output.
type Record struct {
	Heading     string   `json:"heading" yaml:"heading"`
	Kind        TermKind `json:"kind" yaml:"kind"`
	Explanation []string `json:"explanation" yaml:"explanation"`
	Source      string   `json:"source_document" yaml:"source_document"`
	Page        int      `json:"page" yaml:"page"`
	LineCount   int      `json:"explanation_line_count" yaml:"explanation_line_count"`
	RawLine     string   `json:"raw_line,omitempty" yaml:"raw_line,omitempty"`

	joiner string
}

// Text joins the explanation lines with the separator configured for the
// record's kind.
func (r Record) Text() string {
	sep := r.joiner
	if sep == "" {
		sep = " "
	}
	return strings.Join(r.Explanation, sep)
}

// WithJoiner returns a copy of r that joins its explanation with sep.
func (r Record) WithJoiner(sep string) Record {
	r.joiner = sep
	return r
}

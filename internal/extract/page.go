package extract

import "fmt"

// Engine is the configured extraction engine. It is safe for concurrent use:
// it holds only immutable configuration.
type Engine struct {
	cfg        Config
	classifier *Classifier
}

// New validates cfg and builds an engine over the default rule cascade.
func New(cfg Config) (*Engine, error) {
	return NewWithRules(cfg, DefaultRules())
}

// NewWithRules builds an engine over a custom rule cascade.
func NewWithRules(cfg Config, rules []Rule) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Engine{cfg: cfg, classifier: NewClassifierWithRules(cfg, rules)}, nil
}

// Config returns the engine configuration.
func (e *Engine) Config() Config {
	return e.cfg
}

// Classify classifies a single normalized line.
func (e *Engine) Classify(line Line) (CandidateHeading, bool) {
	return e.classifier.Classify(line)
}

// TraceEntry records the driver's decision for one candidate or skipped line.
type TraceEntry struct {
	Line      int                `json:"line" yaml:"line"`
	Text      string             `json:"text" yaml:"text"`
	Candidate *CandidateHeading  `json:"candidate,omitempty" yaml:"candidate,omitempty"`
	Window    *ExplanationWindow `json:"window,omitempty" yaml:"window,omitempty"`
	Accepted  bool               `json:"accepted" yaml:"accepted"`
}

// ScanPage runs the page driver over one page of raw text and returns the
// records found, in line order. page is 1-based.
func (e *Engine) ScanPage(source string, page int, text string) []Record {
	var records []Record
	e.drive(Lines(text), func(_ TraceEntry, rec *Record) {
		if rec != nil {
			rec.Source = source
			rec.Page = page
			records = append(records, *rec)
		}
	})
	return records
}

// Trace runs the page driver and reports every decision it makes.
func (e *Engine) Trace(text string) []TraceEntry {
	var entries []TraceEntry
	e.drive(Lines(text), func(entry TraceEntry, _ *Record) {
		entries = append(entries, entry)
	})
	return entries
}

// drive is the page state machine. While seeking it classifies the line at
// the cursor; a miss advances one line. A candidate switches to windowing;
// a produced record moves the cursor past the consumed lines, a discarded
// window advances one line so the lines stay available to later candidates.
// No state survives the page.
func (e *Engine) drive(lines []Line, visit func(TraceEntry, *Record)) {
	i := 0
	for i < len(lines) {
		line := lines[i]
		if line.Blank() {
			i++
			continue
		}

		cand, ok := e.classifier.Classify(line)
		if !ok {
			visit(TraceEntry{Line: line.Index, Text: line.Text}, nil)
			i++
			continue
		}

		w := e.BuildWindow(lines, i, cand.Kind)
		entry := TraceEntry{Line: line.Index, Text: line.Text, Candidate: &cand, Window: &w}
		if !e.accepts(w, cand.Kind) {
			visit(entry, nil)
			i++
			continue
		}

		rec := e.record(line, cand, w)
		entry.Accepted = true
		visit(entry, &rec)
		i = w.Next
	}
}

func (e *Engine) record(line Line, cand CandidateHeading, w ExplanationWindow) Record {
	kc := e.cfg.Kinds.For(cand.Kind)
	rec := Record{
		Heading: cand.Text,
		Kind:    cand.Kind,
	}
	if cand.Kind == KindInlineDefinition {
		rec.Explanation = append([]string{cand.Definition}, w.Lines...)
		rec.RawLine = line.Text
	} else {
		rec.Explanation = append([]string(nil), w.Lines...)
	}
	rec.LineCount = len(rec.Explanation)
	return rec.WithJoiner(kc.Joiner)
}

// String implements fmt.Stringer for log output.
func (c CandidateHeading) String() string {
	return fmt.Sprintf("%s@%d(%s)", c.Text, c.StartLineIndex, c.Kind)
}

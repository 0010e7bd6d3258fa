package extract

import (
	"reflect"
	"testing"
)

// samplePage mixes every heading kind plus the noise a converted PDF carries.
const samplePage = `Chapter 3 Contract Formation
12 Offer and Acceptance
Offer: a definite promise to be bound on specific terms
made with the intention that it becomes binding
once accepted by the offeree.

Consideration
• Something of value given in exchange
• Must move from the promisee
• Need not be adequate but must be sufficient
Page 42

Carlill v. Carbolic Smoke Ball Co [1893]
The advertisement was held to be a unilateral offer
that could be accepted by performing the conditions.
See https://www.bailii.org/ew/cases/EWCA/Civ/1892/1.html

What is an invitation to treat? An indication of willingness to negotiate
Force Majeure
- Unforeseeable events beyond the control of either party
- Excuses performance for the duration of the event
Estoppel is a legal principle that prevents a party from going back on a promise
`

func TestScanPage_Idempotent(t *testing.T) {
	for _, mode := range Modes {
		t.Run(string(mode), func(t *testing.T) {
			e := newEngine(t, mode)
			first := e.ScanPage("sample.pdf", 1, samplePage)
			second := e.ScanPage("sample.pdf", 1, samplePage)
			if !reflect.DeepEqual(first, second) {
				t.Errorf("two scans differ:\n%+v\n%+v", first, second)
			}
		})
	}
}

func TestScanPage_Properties(t *testing.T) {
	for _, mode := range Modes {
		t.Run(string(mode), func(t *testing.T) {
			e := newEngine(t, mode)
			cfg := e.Config()

			recs := e.ScanPage("sample.pdf", 1, samplePage)
			if len(recs) == 0 {
				t.Fatal("sample page produced no records")
			}
			for _, r := range recs {
				n := charCount(r.Heading)
				if n < cfg.HeadingMinChars || n > cfg.HeadingMaxChars {
					t.Errorf("heading %q has %d chars, outside [%d, %d]", r.Heading, n, cfg.HeadingMinChars, cfg.HeadingMaxChars)
				}
				if !cfg.IsEnabled(r.Kind) {
					t.Errorf("record %q has disabled kind %s", r.Heading, r.Kind)
				}
				if r.LineCount != len(r.Explanation) {
					t.Errorf("record %q line count %d != %d", r.Heading, r.LineCount, len(r.Explanation))
				}
			}
		})
	}
}

func TestTrace_WindowsStayWithinLookahead(t *testing.T) {
	for _, mode := range Modes {
		t.Run(string(mode), func(t *testing.T) {
			e := newEngine(t, mode)
			for _, entry := range e.Trace(samplePage) {
				if entry.Window == nil {
					continue
				}
				kc := e.Config().Kinds.For(entry.Candidate.Kind)
				if consumed := entry.Window.Next - entry.Line - 1; consumed > kc.MaxLookahead {
					t.Errorf("%s window consumed %d lines, lookahead is %d", entry.Candidate, consumed, kc.MaxLookahead)
				}
				if len(entry.Window.Lines) > kc.MaxLookahead {
					t.Errorf("%s window has %d lines, lookahead is %d", entry.Candidate, len(entry.Window.Lines), kc.MaxLookahead)
				}
			}
		})
	}
}

func TestDedupe_KeysUnique(t *testing.T) {
	for _, mode := range Modes {
		t.Run(string(mode), func(t *testing.T) {
			e := newEngine(t, mode)
			cfg := e.Config()

			var all []Record
			for _, src := range []string{"a.pdf", "b.pdf", "c.pdf"} {
				all = append(all, e.ScanPage(src, 1, samplePage)...)
			}
			out := Dedupe(all, cfg)

			seen := map[string]bool{}
			for i, r := range out {
				k := Key(r, cfg)
				if seen[k] {
					t.Errorf("duplicate key %q after dedupe", k)
				}
				seen[k] = true
				if r.Source != "a.pdf" {
					t.Errorf("record %q kept from %s, want the first document", r.Heading, r.Source)
				}
				if i > 0 && out[i-1].Heading > r.Heading {
					t.Errorf("output not sorted at %d: %q > %q", i, out[i-1].Heading, r.Heading)
				}
			}
		})
	}
}

// Package extract implements the heuristic line-scanning engine that turns
// normalized page text into term/explanation and citation/explanation records.
//
// The engine is pure and sequential: every exported operation is a function of
// its inputs and an explicit Config. It never logs and never fails; input it
// cannot use degrades to an empty result.
package extract

import "fmt"

// TermKind classifies a candidate heading.
type TermKind string

const (
	KindInlineDefinition TermKind = "inline_definition"
	KindCaseCitation     TermKind = "case_citation"
	KindStructuredTerm   TermKind = "structured_term"
	KindBulletedTerm     TermKind = "bulleted_term"
)

// AllKinds lists the kinds in precision order, highest first.
var AllKinds = []TermKind{
	KindInlineDefinition,
	KindCaseCitation,
	KindStructuredTerm,
	KindBulletedTerm,
}

// Rank returns the precision rank of the kind. Lower is more precise.
// Unknown kinds rank below every known kind.
func (k TermKind) Rank() int {
	for i, kind := range AllKinds {
		if kind == k {
			return i
		}
	}
	return len(AllKinds)
}

// Label returns the human column label for headings of this kind.
func (k TermKind) Label() string {
	if k == KindCaseCitation {
		return "Case Name"
	}
	return "Term"
}

// ParseKind parses a kind name as used in config files.
func ParseKind(s string) (TermKind, error) {
	for _, kind := range AllKinds {
		if string(kind) == s {
			return kind, nil
		}
	}
	return "", fmt.Errorf("unknown term kind: %q", s)
}

// StopReason records why an explanation window stopped growing.
type StopReason string

const (
	StopNextHeading        StopReason = "next_heading"
	StopPageArtifact       StopReason = "page_artifact"
	StopLookaheadExhausted StopReason = "lookahead_exhausted"
	StopBlankRun           StopReason = "blank_run"
)

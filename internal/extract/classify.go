package extract

import (
	"strings"
	"unicode"
)

// Rule is one step of the classification cascade: a pure predicate and
// extractor over a single line.
type Rule struct {
	Name string
	// Kinds lists the kinds Match may return; a rule none of whose kinds is
	// enabled is left out of the cascade.
	Kinds []TermKind
	Match func(cfg Config, line Line) (CandidateHeading, bool)
}

// DefaultRules returns the cascade in precision order: inline connectors,
// citation shapes, then the shape-only structured/bulleted heuristic.
func DefaultRules() []Rule {
	return []Rule{
		{Name: "inline", Kinds: []TermKind{KindInlineDefinition}, Match: matchInlineRule},
		{Name: "citation", Kinds: []TermKind{KindCaseCitation}, Match: matchCitationRule},
		{Name: "shape", Kinds: []TermKind{KindStructuredTerm, KindBulletedTerm}, Match: matchShapeRule},
	}
}

// Classifier runs an ordered rule cascade. First match wins.
type Classifier struct {
	cfg   Config
	rules []Rule
}

// NewClassifier builds a classifier over DefaultRules.
func NewClassifier(cfg Config) *Classifier {
	return NewClassifierWithRules(cfg, DefaultRules())
}

// NewClassifierWithRules builds a classifier over rules, keeping their order
// and dropping rules that cannot emit an enabled kind.
func NewClassifierWithRules(cfg Config, rules []Rule) *Classifier {
	c := &Classifier{cfg: cfg}
	for _, r := range rules {
		for _, kind := range r.Kinds {
			if cfg.IsEnabled(kind) {
				c.rules = append(c.rules, r)
				break
			}
		}
	}
	return c
}

// Rules returns the names of the active rules in cascade order.
func (c *Classifier) Rules() []string {
	names := make([]string, len(c.rules))
	for i, r := range c.rules {
		names[i] = r.Name
	}
	return names
}

// Classify returns the first candidate heading the cascade yields for line.
func (c *Classifier) Classify(line Line) (CandidateHeading, bool) {
	return c.classify(line, len(AllKinds))
}

// classify only accepts candidates whose kind ranks at or above maxRank.
func (c *Classifier) classify(line Line, maxRank int) (CandidateHeading, bool) {
	if line.Blank() {
		return CandidateHeading{}, false
	}
	for _, r := range c.rules {
		cand, ok := r.Match(c.cfg, line)
		if !ok {
			continue
		}
		if !c.cfg.IsEnabled(cand.Kind) || !c.headingInBounds(cand.Text) {
			continue
		}
		if cand.Kind.Rank() > maxRank {
			continue
		}
		cand.StartLineIndex = line.Index
		return cand, true
	}
	return CandidateHeading{}, false
}

func (c *Classifier) headingInBounds(heading string) bool {
	n := charCount(heading)
	return n >= c.cfg.HeadingMinChars && n <= c.cfg.HeadingMaxChars
}

func matchInlineRule(cfg Config, line Line) (CandidateHeading, bool) {
	term, def, ok := matchInline(cfg, line.Text)
	if !ok {
		return CandidateHeading{}, false
	}
	return CandidateHeading{Text: term, Kind: KindInlineDefinition, Definition: def}, true
}

// matchInline tries the connector patterns in order and returns the first
// match whose term and definition pass validation.
func matchInline(cfg Config, text string) (term, definition string, ok bool) {
	minDef := cfg.Kinds.InlineDefinition.MinChars
	for _, p := range inlinePatterns {
		m := p.re.FindStringSubmatch(text)
		if m == nil {
			continue
		}
		term = cleanTerm(m[1])
		definition = Normalize(m[2])
		if !validInlineTerm(cfg, term) || definition == "" || charCount(definition) < minDef {
			continue
		}
		return term, definition, true
	}
	return "", "", false
}

func validInlineTerm(cfg Config, term string) bool {
	if charCount(term) < cfg.HeadingMinChars || charCount(term) > cfg.HeadingMaxChars {
		return false
	}
	if cfg.InlineMaxTermWords > 0 && wordCount(term) > cfg.InlineMaxTermWords {
		return false
	}
	if inlineTermStopwords[strings.ToLower(term)] {
		return false
	}
	return strings.IndexFunc(term, unicode.IsLetter) >= 0
}

func matchCitationRule(_ Config, line Line) (CandidateHeading, bool) {
	for _, re := range citationPatterns {
		if m := re.FindString(line.Text); m != "" {
			return CandidateHeading{Text: strings.TrimSpace(m), Kind: KindCaseCitation}, true
		}
	}
	return CandidateHeading{}, false
}

// matchShapeRule accepts short heading-shaped lines: no sentence punctuation,
// an uppercase start or list marker, and none of the excluded tokens.
func matchShapeRule(cfg Config, line Line) (CandidateHeading, bool) {
	text := line.Text
	n := charCount(text)
	if n < cfg.ShapeMinChars || n > cfg.ShapeMaxChars || endsSentence(text) {
		return CandidateHeading{}, false
	}
	marked := hasListMarker(line)
	if !marked && !startsUpper(text) {
		return CandidateHeading{}, false
	}
	if isPageArtifact(text) ||
		yearPattern.MatchString(text) ||
		referenceWordPattern.MatchString(text) ||
		trailingStopWord.MatchString(text) ||
		definitionCue.MatchString(text) {
		return CandidateHeading{}, false
	}

	heading := stripMarker(text)
	if heading == "" || strings.IndexFunc(heading, unicode.IsLetter) < 0 {
		return CandidateHeading{}, false
	}
	kind := KindStructuredTerm
	if marked {
		kind = KindBulletedTerm
	}
	return CandidateHeading{Text: heading, Kind: kind}, true
}

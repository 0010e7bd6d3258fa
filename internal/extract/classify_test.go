package extract

import (
	"reflect"
	"testing"
)

func line(text string) Line {
	return Lines(text)[0]
}

func TestClassifier_Classify(t *testing.T) {
	c := NewClassifier(DefaultConfig())

	tests := []struct {
		name     string
		input    string
		wantOK   bool
		wantKind TermKind
		wantText string
		wantDef  string
	}{
		{
			name:     "inline connector",
			input:    "Estoppel is a legal principle that prevents a party from...",
			wantOK:   true,
			wantKind: KindInlineDefinition,
			wantText: "Estoppel",
			wantDef:  "a legal principle that prevents a party from...",
		},
		{
			name:     "inline colon form",
			input:    "Contract: an agreement between two or more parties",
			wantOK:   true,
			wantKind: KindInlineDefinition,
			wantText: "Contract",
			wantDef:  "an agreement between two or more parties",
		},
		{
			name:     "inline question form",
			input:    "What is negligence? A breach of a duty of care owed to another",
			wantOK:   true,
			wantKind: KindInlineDefinition,
			wantText: "negligence",
			wantDef:  "A breach of a duty of care owed to another",
		},
		{
			name:     "inline article form strips the article",
			input:    "The offeree is the person to whom an offer is made",
			wantOK:   true,
			wantKind: KindInlineDefinition,
			wantText: "offeree",
			wantDef:  "the person to whom an offer is made",
		},
		{
			name:     "case citation with year",
			input:    "Smith v. Jones [1998]",
			wantOK:   true,
			wantKind: KindCaseCitation,
			wantText: "Smith v. Jones [1998]",
		},
		{
			name:     "case citation capital V",
			input:    "Carlill V Carbolic",
			wantOK:   true,
			wantKind: KindCaseCitation,
			wantText: "Carlill V Carbolic",
		},
		{
			name:     "structured term",
			input:    "Force Majeure",
			wantOK:   true,
			wantKind: KindStructuredTerm,
			wantText: "Force Majeure",
		},
		{
			name:     "bulleted term keeps text without glyph",
			input:    "• Excuses performance",
			wantOK:   true,
			wantKind: KindBulletedTerm,
			wantText: "Excuses performance",
		},
		{
			name:     "numbered term strips numbering",
			input:    "1. Consideration",
			wantOK:   true,
			wantKind: KindBulletedTerm,
			wantText: "Consideration",
		},
		{name: "pronoun term rejected", input: "This is a sentence that ends with a period."},
		{name: "year excluded", input: "Statute of Frauds 1677 Overview"},
		{name: "reference word excluded", input: "Chapter Overview"},
		{name: "trailing preposition excluded", input: "Remedies for breach of"},
		{name: "page artifact", input: "Page 42"},
		{name: "lowercase fragment", input: "continued below"},
		{name: "blank", input: "   "},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := c.Classify(line(tt.input))
			if ok != tt.wantOK {
				t.Fatalf("Classify(%q) ok = %v, want %v (got %+v)", tt.input, ok, tt.wantOK, got)
			}
			if !ok {
				return
			}
			if got.Kind != tt.wantKind {
				t.Errorf("kind = %s, want %s", got.Kind, tt.wantKind)
			}
			if got.Text != tt.wantText {
				t.Errorf("text = %q, want %q", got.Text, tt.wantText)
			}
			if got.Definition != tt.wantDef {
				t.Errorf("definition = %q, want %q", got.Definition, tt.wantDef)
			}
		})
	}
}

func TestClassifier_RespectsEnabledKinds(t *testing.T) {
	cfg, err := Preset(ModeCases)
	if err != nil {
		t.Fatal(err)
	}
	c := NewClassifier(cfg)

	if got := c.Rules(); !reflect.DeepEqual(got, []string{"citation"}) {
		t.Errorf("rules = %v, want [citation]", got)
	}
	if _, ok := c.Classify(line("Force Majeure")); ok {
		t.Error("structured heading should not classify in cases mode")
	}
	if _, ok := c.Classify(line("Donoghue v Stevenson")); !ok {
		t.Error("expected citation to classify in cases mode")
	}
}

func TestClassifier_HeadingBounds(t *testing.T) {
	cfg := DefaultConfig()
	cfg.HeadingMaxChars = 10
	c := NewClassifier(cfg)

	if _, ok := c.Classify(line("Donoghue v Stevenson")); ok {
		t.Error("heading longer than max should be rejected")
	}
	if _, ok := c.Classify(line("Tort Duty")); !ok {
		t.Error("heading within bounds should classify")
	}
}

func TestClassifier_CustomRule(t *testing.T) {
	schedule := Rule{
		Name:  "schedule",
		Kinds: []TermKind{KindStructuredTerm},
		Match: func(_ Config, l Line) (CandidateHeading, bool) {
			if l.Text == "Schedule A" {
				return CandidateHeading{Text: "Schedule A", Kind: KindStructuredTerm}, true
			}
			return CandidateHeading{}, false
		},
	}
	c := NewClassifierWithRules(DefaultConfig(), append([]Rule{schedule}, DefaultRules()...))

	got, ok := c.Classify(line("Schedule A"))
	if !ok || got.Text != "Schedule A" {
		t.Errorf("custom rule did not match: %+v, %v", got, ok)
	}
	if names := c.Rules(); names[0] != "schedule" {
		t.Errorf("custom rule should run first, got %v", names)
	}
}

func TestTermKind_Rank(t *testing.T) {
	if !(KindInlineDefinition.Rank() < KindCaseCitation.Rank() &&
		KindCaseCitation.Rank() < KindStructuredTerm.Rank() &&
		KindStructuredTerm.Rank() < KindBulletedTerm.Rank()) {
		t.Error("ranks must follow cascade precision order")
	}
	if TermKind("bogus").Rank() != len(AllKinds) {
		t.Error("unknown kinds should rank last")
	}
	if _, err := ParseKind("case_citation"); err != nil {
		t.Errorf("ParseKind: %v", err)
	}
	if _, err := ParseKind("nope"); err == nil {
		t.Error("expected error for unknown kind")
	}
}

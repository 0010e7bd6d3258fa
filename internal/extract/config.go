package extract

import (
	"errors"
	"fmt"
)

// ErrInvalidConfig is returned by Config.Validate.
var ErrInvalidConfig = errors.New("invalid engine config")

// DedupMode selects how a record's identity key is built.
type DedupMode string

const (
	// DedupHeading keys on the lower-cased, whitespace-normalized heading.
	DedupHeading DedupMode = "heading"
	// DedupHeadingCompact additionally drops spaces and hyphens.
	DedupHeadingCompact DedupMode = "heading-compact"
	// DedupHeadingPrefix combines the heading with a prefix of the explanation.
	DedupHeadingPrefix DedupMode = "heading+prefix"
)

// Mode is an operating preset mirroring one extractor variant.
type Mode string

const (
	ModeDefinitions Mode = "definitions"
	ModeCases       Mode = "cases"
	ModeBullets     Mode = "bullets"
	ModeStructured  Mode = "structured"
	ModeAll         Mode = "all"
)

// Modes lists every known mode.
var Modes = []Mode{ModeDefinitions, ModeCases, ModeBullets, ModeStructured, ModeAll}

// KindConfig holds the window thresholds for one TermKind.
type KindConfig struct {
	// MaxLookahead bounds how many lines past the heading a window may consume.
	MaxLookahead int `mapstructure:"max_lookahead" yaml:"max_lookahead" json:"max_lookahead"`
	// MinLines is the fewest included lines a window needs. Zero disables the check.
	MinLines int `mapstructure:"min_lines" yaml:"min_lines" json:"min_lines"`
	// MinChars is the shortest joined explanation accepted.
	MinChars int `mapstructure:"min_chars" yaml:"min_chars" json:"min_chars"`
	// MinWords: a line with more words than this is included.
	MinWords int `mapstructure:"min_words" yaml:"min_words" json:"min_words"`
	// MinLineChars: shorter lines are inspected but never included.
	MinLineChars int `mapstructure:"min_line_chars" yaml:"min_line_chars" json:"min_line_chars"`
	// BlankRun stops the window after this many consecutive blank lines. Zero disables.
	BlankRun int    `mapstructure:"blank_run" yaml:"blank_run" json:"blank_run"`
	Joiner   string `mapstructure:"joiner" yaml:"joiner" json:"joiner"`
}

// KindsConfig is the per-kind threshold table.
type KindsConfig struct {
	InlineDefinition KindConfig `mapstructure:"inline_definition" yaml:"inline_definition" json:"inline_definition"`
	CaseCitation     KindConfig `mapstructure:"case_citation" yaml:"case_citation" json:"case_citation"`
	StructuredTerm   KindConfig `mapstructure:"structured_term" yaml:"structured_term" json:"structured_term"`
	BulletedTerm     KindConfig `mapstructure:"bulleted_term" yaml:"bulleted_term" json:"bulleted_term"`
}

// For returns the thresholds for kind.
func (k KindsConfig) For(kind TermKind) KindConfig {
	switch kind {
	case KindInlineDefinition:
		return k.InlineDefinition
	case KindCaseCitation:
		return k.CaseCitation
	case KindBulletedTerm:
		return k.BulletedTerm
	default:
		return k.StructuredTerm
	}
}

// Config configures the engine. It is passed by value; the engine keeps no
// other state.
type Config struct {
	// Enabled lists the heading kinds the classifier may emit.
	Enabled []TermKind `mapstructure:"enabled" yaml:"enabled" json:"enabled"`

	HeadingMinChars int `mapstructure:"heading_min_chars" yaml:"heading_min_chars" json:"heading_min_chars"`
	HeadingMaxChars int `mapstructure:"heading_max_chars" yaml:"heading_max_chars" json:"heading_max_chars"`

	// ShapeMinChars and ShapeMaxChars bound the length of a line that may be
	// a structured or bulleted heading.
	ShapeMinChars int `mapstructure:"shape_min_chars" yaml:"shape_min_chars" json:"shape_min_chars"`
	ShapeMaxChars int `mapstructure:"shape_max_chars" yaml:"shape_max_chars" json:"shape_max_chars"`

	// InlineMaxTermWords rejects inline terms with more words.
	InlineMaxTermWords int `mapstructure:"inline_max_term_words" yaml:"inline_max_term_words" json:"inline_max_term_words"`

	Dedup            DedupMode `mapstructure:"dedup_key" yaml:"dedup_key" json:"dedup_key"`
	DedupPrefixChars int       `mapstructure:"dedup_prefix_chars" yaml:"dedup_prefix_chars" json:"dedup_prefix_chars"`

	// MaxFields is K, the number of explanation columns in the columnar layout.
	MaxFields int `mapstructure:"max_fields" yaml:"max_fields" json:"max_fields"`

	Kinds KindsConfig `mapstructure:"kinds" yaml:"kinds" json:"kinds"`
}

// DefaultConfig returns the seed thresholds with every kind enabled.
func DefaultConfig() Config {
	return Config{
		Enabled:            append([]TermKind(nil), AllKinds...),
		HeadingMinChars:    3,
		HeadingMaxChars:    100,
		ShapeMinChars:      3,
		ShapeMaxChars:      60,
		InlineMaxTermWords: 8,
		Dedup:              DedupHeading,
		DedupPrefixChars:   50,
		MaxFields:          4,
		Kinds: KindsConfig{
			InlineDefinition: KindConfig{
				MaxLookahead: 3,
				MinChars:     11,
				MinLineChars: 16,
				BlankRun:     1,
				Joiner:       " ",
			},
			CaseCitation: KindConfig{
				MaxLookahead: 10,
				MinLines:     1,
				MinChars:     21,
				MinLineChars: 10,
				BlankRun:     3,
				Joiner:       " ",
			},
			StructuredTerm: KindConfig{
				MaxLookahead: 7,
				MinLines:     2,
				MinWords:     3,
				MinLineChars: 6,
				Joiner:       " | ",
			},
			BulletedTerm: KindConfig{
				MaxLookahead: 9,
				MinLines:     2,
				MinWords:     4,
				MinLineChars: 3,
				Joiner:       " | ",
			},
		},
	}
}

// Preset returns the default config adjusted for mode.
func Preset(mode Mode) (Config, error) {
	cfg := DefaultConfig()
	switch mode {
	case ModeDefinitions:
		cfg.Enabled = []TermKind{KindInlineDefinition}
		cfg.Dedup = DedupHeadingPrefix
	case ModeCases:
		cfg.Enabled = []TermKind{KindCaseCitation}
	case ModeBullets:
		cfg.Enabled = []TermKind{KindStructuredTerm, KindBulletedTerm}
		cfg.Dedup = DedupHeadingCompact
		cfg.Kinds.StructuredTerm = cfg.Kinds.BulletedTerm
	case ModeStructured:
		cfg.Enabled = []TermKind{KindStructuredTerm, KindBulletedTerm}
	case ModeAll, "":
	default:
		return Config{}, fmt.Errorf("%w: unknown mode %q", ErrInvalidConfig, mode)
	}
	return cfg, nil
}

// IsEnabled reports whether the classifier may emit kind.
func (c Config) IsEnabled(kind TermKind) bool {
	for _, k := range c.Enabled {
		if k == kind {
			return true
		}
	}
	return false
}

// Validate checks the config for values the engine cannot work with.
func (c Config) Validate() error {
	if len(c.Enabled) == 0 {
		return fmt.Errorf("%w: no term kinds enabled", ErrInvalidConfig)
	}
	for _, kind := range c.Enabled {
		if _, err := ParseKind(string(kind)); err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
		}
	}
	if c.HeadingMinChars < 1 || c.HeadingMaxChars < c.HeadingMinChars {
		return fmt.Errorf("%w: heading bounds [%d, %d]", ErrInvalidConfig, c.HeadingMinChars, c.HeadingMaxChars)
	}
	if c.ShapeMinChars < 1 || c.ShapeMaxChars < c.ShapeMinChars {
		return fmt.Errorf("%w: shape bounds [%d, %d]", ErrInvalidConfig, c.ShapeMinChars, c.ShapeMaxChars)
	}
	switch c.Dedup {
	case DedupHeading, DedupHeadingCompact:
	case DedupHeadingPrefix:
		if c.DedupPrefixChars <= 0 {
			return fmt.Errorf("%w: dedup_prefix_chars must be positive", ErrInvalidConfig)
		}
	default:
		return fmt.Errorf("%w: unknown dedup key mode %q", ErrInvalidConfig, c.Dedup)
	}
	if c.MaxFields <= 0 {
		return fmt.Errorf("%w: max_fields must be positive", ErrInvalidConfig)
	}
	for _, kind := range AllKinds {
		kc := c.Kinds.For(kind)
		if kc.MaxLookahead <= 0 {
			return fmt.Errorf("%w: %s.max_lookahead must be positive", ErrInvalidConfig, kind)
		}
		if kc.MinLines < 0 || kc.MinChars < 0 || kc.MinWords < 0 || kc.MinLineChars < 0 || kc.BlankRun < 0 {
			return fmt.Errorf("%w: %s thresholds must not be negative", ErrInvalidConfig, kind)
		}
	}
	return nil
}

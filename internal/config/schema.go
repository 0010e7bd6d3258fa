package config

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/go-viper/mapstructure/v2"

	"github.com/jackzampolin/lexscan/internal/extract"
	"github.com/jackzampolin/lexscan/internal/report"
)

// ErrInvalidConfig is returned when the loaded configuration cannot be used.
var ErrInvalidConfig = errors.New("invalid configuration")

// Output formats for the record file.
const (
	FormatCSV  = "csv"
	FormatJSON = "json"
)

// Config holds lexscan configuration.
// Stored at: {home}/config.yaml or ./lexscan.yaml
type Config struct {
	InputDir string `mapstructure:"input_dir" yaml:"input_dir" json:"input_dir"`
	Output   string `mapstructure:"output" yaml:"output" json:"output"`
	Format   string `mapstructure:"format" yaml:"format" json:"format"` // "csv" or "json"
	Mode     string `mapstructure:"mode" yaml:"mode" json:"mode"`

	Workers         int      `mapstructure:"workers" yaml:"workers" json:"workers"`                            // 0 uses every CPU
	DocumentTimeout string   `mapstructure:"document_timeout" yaml:"document_timeout" json:"document_timeout"` // e.g. "2m", empty disables
	OpenRetries     uint     `mapstructure:"open_retries" yaml:"open_retries" json:"open_retries"`
	LogLevel        string   `mapstructure:"log_level" yaml:"log_level" json:"log_level"`
	Extensions      []string `mapstructure:"extensions" yaml:"extensions" json:"extensions"`

	// Engine overrides the mode preset. Keys follow extract.Config.
	Engine map[string]any `mapstructure:"engine" yaml:"engine,omitempty" json:"engine,omitempty"`

	Report report.Config `mapstructure:"report" yaml:"report" json:"report"`
}

// DefaultConfig returns configuration with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		InputDir:        "./documents",
		Output:          "legal_terms.csv",
		Format:          FormatCSV,
		Mode:            string(extract.ModeAll),
		Workers:         0,
		DocumentTimeout: "2m",
		OpenRetries:     2,
		LogLevel:        "info",
		Extensions:      []string{".pdf", ".txt"},
		Report:          report.DefaultConfig(),
	}
}

// Validate checks every field that a command would otherwise fail on late.
func (c *Config) Validate() error {
	switch c.Format {
	case FormatCSV, FormatJSON:
	default:
		return fmt.Errorf("%w: unknown format %q", ErrInvalidConfig, c.Format)
	}
	if c.Workers < 0 {
		return fmt.Errorf("%w: workers must not be negative", ErrInvalidConfig)
	}
	if _, err := c.Timeout(); err != nil {
		return err
	}
	if _, err := c.Level(); err != nil {
		return err
	}
	if _, err := c.EngineConfig(); err != nil {
		return err
	}
	return nil
}

// Timeout parses DocumentTimeout. Zero means no per-document limit.
func (c *Config) Timeout() (time.Duration, error) {
	if c.DocumentTimeout == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(c.DocumentTimeout)
	if err != nil || d < 0 {
		return 0, fmt.Errorf("%w: document_timeout %q", ErrInvalidConfig, c.DocumentTimeout)
	}
	return d, nil
}

// Level parses LogLevel.
func (c *Config) Level() (slog.Level, error) {
	switch strings.ToLower(c.LogLevel) {
	case "debug":
		return slog.LevelDebug, nil
	case "info", "":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	}
	return slog.LevelInfo, fmt.Errorf("%w: log_level %q", ErrInvalidConfig, c.LogLevel)
}

// ExtractMode returns the configured operating mode.
func (c *Config) ExtractMode() extract.Mode {
	if c.Mode == "" {
		return extract.ModeAll
	}
	return extract.Mode(c.Mode)
}

// EngineConfig resolves the mode preset and overlays the engine section.
// Unknown engine keys are rejected so typos do not pass silently.
func (c *Config) EngineConfig() (extract.Config, error) {
	cfg, err := extract.Preset(c.ExtractMode())
	if err != nil {
		return extract.Config{}, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	if len(c.Engine) > 0 {
		dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
			Result:           &cfg,
			WeaklyTypedInput: true,
			ErrorUnused:      true,
		})
		if err != nil {
			return extract.Config{}, fmt.Errorf("failed to create engine decoder: %w", err)
		}
		if err := dec.Decode(c.Engine); err != nil {
			return extract.Config{}, fmt.Errorf("%w: engine: %v", ErrInvalidConfig, err)
		}
	}
	if err := cfg.Validate(); err != nil {
		return extract.Config{}, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	return cfg, nil
}

package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"sync"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v2"
)

// LocalFileName is the project-local config file checked before the home config.
const LocalFileName = "lexscan.yaml"

// Manager handles loading and hot-reloading configuration.
type Manager struct {
	mu        sync.RWMutex
	v         *viper.Viper
	path      string
	config    *Config
	callbacks []func(*Config)
	logger    *slog.Logger
}

// ResolvePath picks the config file: the explicit path, else ./lexscan.yaml,
// else homeConfig when it exists. Empty means defaults and environment only.
func ResolvePath(explicit, homeConfig string) string {
	if explicit != "" {
		return explicit
	}
	for _, p := range []string{LocalFileName, homeConfig} {
		if p == "" {
			continue
		}
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	return ""
}

// NewManager creates a new config manager and loads initial config.
func NewManager(cfgFile string, logger *slog.Logger) (*Manager, error) {
	if logger == nil {
		logger = slog.Default()
	}
	cm := &Manager{
		v:         viper.New(),
		path:      cfgFile,
		callbacks: make([]func(*Config), 0),
		logger:    logger,
	}

	if err := cm.initViper(); err != nil {
		return nil, err
	}

	cfg, err := cm.load()
	if err != nil {
		return nil, err
	}
	cm.config = cfg

	return cm, nil
}

// initViper sets up viper with defaults and config file.
func (cm *Manager) initViper() error {
	defaults := DefaultConfig()
	v := cm.v
	v.SetDefault("input_dir", defaults.InputDir)
	v.SetDefault("output", defaults.Output)
	v.SetDefault("format", defaults.Format)
	v.SetDefault("mode", defaults.Mode)
	v.SetDefault("workers", defaults.Workers)
	v.SetDefault("document_timeout", defaults.DocumentTimeout)
	v.SetDefault("open_retries", defaults.OpenRetries)
	v.SetDefault("log_level", defaults.LogLevel)
	v.SetDefault("extensions", defaults.Extensions)
	v.SetDefault("report.title", defaults.Report.Title)
	v.SetDefault("report.subtitle", defaults.Report.Subtitle)
	v.SetDefault("report.entries_per_page", defaults.Report.EntriesPerPage)
	v.SetDefault("report.paragraph_chars", defaults.Report.ParagraphChars)
	v.SetDefault("report.title_size", defaults.Report.TitleSize)
	v.SetDefault("report.heading_size", defaults.Report.HeadingSize)
	v.SetDefault("report.body_size", defaults.Report.BodySize)
	v.SetDefault("report.source_size", defaults.Report.SourceSize)

	// Environment variables with LEXSCAN_ prefix, nested keys joined by _
	v.SetEnvPrefix("LEXSCAN")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if cm.path == "" {
		return nil
	}
	v.SetConfigFile(cm.path)
	if err := v.ReadInConfig(); err != nil {
		var configFileNotFoundError viper.ConfigFileNotFoundError
		if errors.As(err, &configFileNotFoundError) || errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("config file not found: %s", cm.path)
		}
		return fmt.Errorf("error reading config file: %w", err)
	}
	return nil
}

// load parses the current viper state into a Config struct.
func (cm *Manager) load() (*Config, error) {
	var cfg Config
	if err := cm.v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Path returns the config file in use, or "" when none was found.
func (cm *Manager) Path() string {
	return cm.path
}

// Get returns the current configuration (thread-safe).
func (cm *Manager) Get() *Config {
	cm.mu.RLock()
	defer cm.mu.RUnlock()
	return cm.config
}

// Set overrides a key, typically from a command-line flag, and reloads.
func (cm *Manager) Set(key string, value any) error {
	cm.mu.Lock()
	defer cm.mu.Unlock()
	cm.v.Set(key, value)
	cfg, err := cm.load()
	if err != nil {
		return err
	}
	cm.config = cfg
	return nil
}

// OnChange registers a callback for config changes.
func (cm *Manager) OnChange(fn func(*Config)) {
	cm.mu.Lock()
	defer cm.mu.Unlock()
	cm.callbacks = append(cm.callbacks, fn)
}

// WatchConfig enables hot-reloading of configuration. A change that fails
// to load or validate is logged and the previous config kept.
func (cm *Manager) WatchConfig() {
	if cm.path == "" {
		return
	}
	cm.v.OnConfigChange(func(e fsnotify.Event) {
		cm.mu.Lock()
		cfg, err := cm.load()
		if err != nil {
			cm.mu.Unlock()
			cm.logger.Warn("ignoring config change", "file", e.Name, "error", err)
			return
		}
		cm.config = cfg
		callbacks := make([]func(*Config), len(cm.callbacks))
		copy(callbacks, cm.callbacks)
		cm.mu.Unlock()

		cm.logger.Info("config reloaded", "file", e.Name)
		for _, fn := range callbacks {
			fn(cfg)
		}
	})
	cm.v.WatchConfig()
}

// WriteDefault writes the default configuration to the specified path.
func WriteDefault(path string) error {
	cfg := DefaultConfig()
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	header := []byte(`# lexscan configuration
# Any key can be overridden with a LEXSCAN_ environment variable,
# e.g. LEXSCAN_MODE=cases or LEXSCAN_REPORT_TITLE="Contract Law".
# Add an engine: section to override the mode preset, for example:
#   engine:
#     heading_max_chars: 80
#     kinds:
#       case_citation:
#         max_lookahead: 6

`)
	if err := os.WriteFile(path, append(header, data...), 0o644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}

package home

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

const (
	// DefaultDirName is the default name for the lexscan home directory.
	DefaultDirName = ".lexscan"

	// ExportsDirName is the subdirectory for rendered reports.
	ExportsDirName = "exports"

	// ConfigFileName is the default config file name.
	ConfigFileName = "config.yaml"
)

// Dir represents the lexscan home directory structure.
type Dir struct {
	path string
}

// New creates a new Dir with the given path.
// If path is empty, uses the default (~/.lexscan).
func New(path string) (*Dir, error) {
	if path == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("failed to get user home directory: %w", err)
		}
		path = filepath.Join(home, DefaultDirName)
	}

	return &Dir{path: path}, nil
}

// Path returns the root path of the home directory.
func (d *Dir) Path() string {
	return d.path
}

// ConfigPath returns the path to the default config file.
func (d *Dir) ConfigPath() string {
	return filepath.Join(d.path, ConfigFileName)
}

// ExportsDir returns the directory for rendered reports.
func (d *Dir) ExportsDir() string {
	return filepath.Join(d.path, ExportsDirName)
}

// ExportPath returns where the report for a record file is written when no
// output is given: the record file's base name with ext in the exports dir.
func (d *Dir) ExportPath(recordFile, ext string) string {
	base := strings.TrimSuffix(filepath.Base(recordFile), filepath.Ext(recordFile))
	return filepath.Join(d.ExportsDir(), base+ext)
}

// EnsureExists creates the home directory and subdirectories if they don't exist.
func (d *Dir) EnsureExists() error {
	// Create exports directory (this also creates the parent)
	if err := os.MkdirAll(d.ExportsDir(), 0o755); err != nil {
		return fmt.Errorf("failed to create exports directory: %w", err)
	}
	return nil
}

// Exists returns true if the home directory exists.
func (d *Dir) Exists() bool {
	_, err := os.Stat(d.path)
	return err == nil
}

// ConfigExists returns true if the config file exists in the home directory.
func (d *Dir) ConfigExists() bool {
	_, err := os.Stat(d.ConfigPath())
	return err == nil
}

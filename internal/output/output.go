// Package output renders command results on stdout as YAML or JSON.
package output

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sync"

	"gopkg.in/yaml.v3"
)

// Format defines the output format for CLI commands.
type Format string

const (
	FormatYAML Format = "yaml"
	FormatJSON Format = "json"
)

// DefaultFormat is the default output format.
const DefaultFormat = FormatYAML

var (
	mu            sync.RWMutex
	currentFormat = DefaultFormat
)

// ParseFormat validates a --output-format value.
func ParseFormat(s string) (Format, error) {
	switch Format(s) {
	case FormatYAML, FormatJSON:
		return Format(s), nil
	case "":
		return DefaultFormat, nil
	}
	return "", fmt.Errorf("unknown output format: %s", s)
}

// SetFormat sets the format used by Print. Unknown values fall back to YAML.
func SetFormat(format string) {
	f, err := ParseFormat(format)
	if err != nil {
		f = DefaultFormat
	}
	mu.Lock()
	currentFormat = f
	mu.Unlock()
}

// CurrentFormat returns the format used by Print.
func CurrentFormat() Format {
	mu.RLock()
	defer mu.RUnlock()
	return currentFormat
}

// Print writes data to stdout in the current format.
func Print(data any) error {
	return To(os.Stdout, CurrentFormat(), data)
}

// To writes data to the given writer in the specified format.
func To(w io.Writer, format Format, data any) error {
	switch format {
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(data)
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		defer enc.Close()
		return enc.Encode(data)
	default:
		return fmt.Errorf("unknown output format: %s", format)
	}
}

package records

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/jackzampolin/lexscan/internal/extract"
)

//go:embed export.schema.json
var exportSchemaJSON []byte

var (
	exportSchemaOnce sync.Once
	exportSchema     *jsonschema.Schema
	exportSchemaErr  error
)

// Export is the JSON document written by WriteJSON.
type Export struct {
	RunID       string           `json:"run_id"`
	Mode        extract.Mode     `json:"mode"`
	GeneratedAt time.Time        `json:"generated_at"`
	Records     []extract.Record `json:"records"`
}

// NewExport builds an export, normalizing nil slices so the document
// satisfies the schema.
func NewExport(runID string, mode extract.Mode, recs []extract.Record) Export {
	if mode == "" {
		mode = extract.ModeAll
	}
	out := make([]extract.Record, len(recs))
	for i, r := range recs {
		if r.Explanation == nil {
			r.Explanation = []string{}
		}
		out[i] = r
	}
	return Export{RunID: runID, Mode: mode, GeneratedAt: time.Now().UTC(), Records: out}
}

func compiledExportSchema() (*jsonschema.Schema, error) {
	exportSchemaOnce.Do(func() {
		compiler := jsonschema.NewCompiler()
		compiler.AssertFormat = true
		if err := compiler.AddResource("export.schema.json", bytes.NewReader(exportSchemaJSON)); err != nil {
			exportSchemaErr = fmt.Errorf("failed to load export schema: %w", err)
			return
		}
		exportSchema, exportSchemaErr = compiler.Compile("export.schema.json")
		if exportSchemaErr != nil {
			exportSchemaErr = fmt.Errorf("failed to compile export schema: %w", exportSchemaErr)
		}
	})
	return exportSchema, exportSchemaErr
}

// ValidateExport checks an encoded export against the embedded schema.
func ValidateExport(data []byte) error {
	schema, err := compiledExportSchema()
	if err != nil {
		return err
	}
	var doc any
	if err := json.Unmarshal(data, &doc); err != nil {
		return fmt.Errorf("failed to decode export for validation: %w", err)
	}
	if err := schema.Validate(doc); err != nil {
		return fmt.Errorf("export does not match schema: %w", err)
	}
	return nil
}

// WriteJSON encodes exp, validates it and writes it to w. Nothing is written
// when validation fails.
func WriteJSON(w io.Writer, exp Export) error {
	data, err := json.MarshalIndent(exp, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode export: %w", err)
	}
	if err := ValidateExport(data); err != nil {
		return err
	}
	data = append(data, '\n')
	if _, err := w.Write(data); err != nil {
		return fmt.Errorf("failed to write export: %w", err)
	}
	return nil
}

// WriteJSONFile writes the export to path.
func WriteJSONFile(path string, exp Export) error {
	return writeFileAtomic(path, func(w io.Writer) error {
		return WriteJSON(w, exp)
	})
}

// ReadJSON decodes an export and validates it.
func ReadJSON(r io.Reader) (*Export, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read export: %w", err)
	}
	if err := ValidateExport(data); err != nil {
		return nil, err
	}
	var exp Export
	if err := json.Unmarshal(data, &exp); err != nil {
		return nil, fmt.Errorf("failed to decode export: %w", err)
	}
	return &exp, nil
}

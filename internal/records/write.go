package records

import (
	"fmt"

	"github.com/jackzampolin/lexscan/internal/extract"
)

// Record file formats.
const (
	FormatCSV  = "csv"
	FormatJSON = "json"
)

// WriteFile writes recs to path in format: CSV with the mode's column layout,
// or a schema-validated JSON export. An empty recs still produces a file.
func WriteFile(path, format, runID string, mode extract.Mode, k int, recs []extract.Record) error {
	switch format {
	case FormatCSV, "":
		layout, err := LayoutFor(mode, k)
		if err != nil {
			return err
		}
		return WriteCSVFile(path, layout, recs)
	case FormatJSON:
		return WriteJSONFile(path, NewExport(runID, mode, recs))
	}
	return fmt.Errorf("unknown record format %q", format)
}

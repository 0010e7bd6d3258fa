// Package records serializes extraction records: delimited files in a
// per-mode column layout, reading those files back, and a JSON export
// checked against a JSON Schema.
package records

import (
	"fmt"
	"strconv"

	"github.com/jackzampolin/lexscan/internal/extract"
)

// Column names shared by the layouts.
const (
	ColTerm        = "Term"
	ColCaseName    = "Case Name"
	ColDefinition  = "Definition"
	ColExplanation = "Explanation"
	ColSource      = "Source Document"
	ColPage        = "Page"
	ColRawLine     = "Raw Line"
	ColLinesFound  = "Lines Found"
	ColLineCount   = "Line Count"
	ColKind        = "Kind"
)

// Layout is a column layout for one operating mode.
type Layout struct {
	Mode    extract.Mode
	Columns []string

	// Columnar layouts spread the explanation over K columns.
	Columnar bool
	K        int
}

// LayoutFor returns the layout used for mode. k is the number of explanation
// columns in the columnar layout.
func LayoutFor(mode extract.Mode, k int) (Layout, error) {
	if k <= 0 {
		k = 1
	}
	switch mode {
	case extract.ModeDefinitions:
		return Layout{Mode: mode, Columns: []string{ColTerm, ColDefinition, ColSource, ColPage, ColRawLine}}, nil
	case extract.ModeCases:
		return Layout{Mode: mode, Columns: []string{ColCaseName, ColExplanation, ColSource, ColPage}}, nil
	case extract.ModeBullets:
		cols := []string{ColTerm}
		for i := 1; i <= k; i++ {
			cols = append(cols, fmt.Sprintf("%s %d", ColExplanation, i))
		}
		cols = append(cols, ColSource, ColPage, ColLineCount)
		return Layout{Mode: mode, Columns: cols, Columnar: true, K: k}, nil
	case extract.ModeStructured:
		return Layout{Mode: mode, Columns: []string{ColTerm, ColExplanation, ColSource, ColPage, ColLinesFound}}, nil
	case extract.ModeAll, "":
		return Layout{Mode: extract.ModeAll, Columns: []string{ColTerm, ColExplanation, ColSource, ColPage, ColKind}}, nil
	default:
		return Layout{}, fmt.Errorf("no layout for mode %q", mode)
	}
}

// Row renders r as one row of the layout.
func (l Layout) Row(r extract.Record) []string {
	page := strconv.Itoa(r.Page)
	if l.Columnar {
		row := make([]string, 0, len(l.Columns))
		row = append(row, r.Heading)
		for i := 0; i < l.K; i++ {
			if i < len(r.Explanation) {
				row = append(row, r.Explanation[i])
			} else {
				row = append(row, "")
			}
		}
		return append(row, r.Source, page, strconv.Itoa(r.LineCount))
	}

	row := []string{r.Heading, r.Text(), r.Source, page}
	switch l.Mode {
	case extract.ModeDefinitions:
		row = append(row, r.RawLine)
	case extract.ModeStructured:
		row = append(row, strconv.Itoa(r.LineCount))
	case extract.ModeAll:
		row = append(row, string(r.Kind))
	}
	return row
}

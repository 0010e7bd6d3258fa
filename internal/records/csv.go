package records

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/jackzampolin/lexscan/internal/extract"
)

// ErrMalformedRow marks a row with fewer columns than its layout requires.
var ErrMalformedRow = errors.New("malformed row")

// MalformedRowError describes a skipped row. Line is 1-based and counts the header.
type MalformedRowError struct {
	Line    int
	Columns int
	Want    int
}

func (e *MalformedRowError) Error() string {
	return fmt.Sprintf("line %d: %d columns, want at least %d", e.Line, e.Columns, e.Want)
}

func (e *MalformedRowError) Unwrap() error {
	return ErrMalformedRow
}

// WriteCSV writes a header and one row per record.
func WriteCSV(w io.Writer, layout Layout, recs []extract.Record) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(layout.Columns); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}
	for _, r := range recs {
		if err := cw.Write(layout.Row(r)); err != nil {
			return fmt.Errorf("failed to write record %q: %w", r.Heading, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteCSVFile writes the records to path, creating parent directories. The
// file is written to a temporary name first and renamed into place.
func WriteCSVFile(path string, layout Layout, recs []extract.Record) error {
	return writeFileAtomic(path, func(w io.Writer) error {
		return WriteCSV(w, layout, recs)
	})
}

// Entry is one row read back from a record file.
type Entry struct {
	Heading     string
	Explanation string
	Source      string
	Page        int
}

// ReadResult holds the entries of a record file and the rows skipped.
type ReadResult struct {
	Header    []string
	Entries   []Entry
	Malformed []*MalformedRowError
	// Empty counts well-formed rows with no heading or no explanation.
	Empty int
}

// ReadCSV reads a record file written in any layout. The header names the
// columns; rows shorter than the Source Document column are malformed and
// skipped.
func ReadCSV(r io.Reader) (*ReadResult, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true

	header, err := cr.Read()
	if err == io.EOF {
		return &ReadResult{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read header: %w", err)
	}
	if len(header) > 0 {
		header[0] = strings.TrimPrefix(header[0], "\ufeff")
	}

	cols := columnsOf(header)
	res := &ReadResult{Header: header}

	for line := 2; ; line++ {
		row, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		if len(row) < cols.required {
			res.Malformed = append(res.Malformed, &MalformedRowError{Line: line, Columns: len(row), Want: cols.required})
			continue
		}

		e := cols.entry(row)
		if e.Heading == "" || e.Explanation == "" {
			res.Empty++
			continue
		}
		res.Entries = append(res.Entries, e)
	}
	return res, nil
}

// ReadCSVFile reads the record file at path.
func ReadCSVFile(path string) (*ReadResult, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open record file: %w", err)
	}
	defer f.Close()
	return ReadCSV(f)
}

type columnIndex struct {
	heading      int
	explanations []int
	source       int
	page         int
	required     int
}

// columnsOf maps a header to column positions. Unknown headers fall back to
// the flowing order: heading, explanation, source.
func columnsOf(header []string) columnIndex {
	idx := columnIndex{heading: 0, source: -1, page: -1}
	for i, name := range header {
		switch name = strings.TrimSpace(name); {
		case name == ColDefinition || name == ColExplanation:
			idx.explanations = append(idx.explanations, i)
		case strings.HasPrefix(name, ColExplanation+" "):
			idx.explanations = append(idx.explanations, i)
		case name == ColSource:
			idx.source = i
		case name == ColPage:
			idx.page = i
		}
	}
	if len(idx.explanations) == 0 {
		idx.explanations = []int{1}
	}
	if idx.source < 0 {
		idx.source = 2
	}
	idx.required = idx.source + 1
	return idx
}

func (c columnIndex) entry(row []string) Entry {
	var parts []string
	for _, i := range c.explanations {
		if i >= len(row) {
			continue
		}
		if s := strings.TrimSpace(row[i]); s != "" {
			parts = append(parts, s)
		}
	}
	e := Entry{
		Heading:     strings.TrimSpace(row[c.heading]),
		Explanation: strings.Join(parts, " "),
		Source:      strings.TrimSpace(row[c.source]),
	}
	if c.page >= 0 && c.page < len(row) {
		e.Page, _ = strconv.Atoi(strings.TrimSpace(row[c.page]))
	}
	return e
}

func writeFileAtomic(path string, write func(io.Writer) error) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create output directory: %w", err)
		}
	}
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*")
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if err := tmp.Chmod(0o644); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to set output file mode: %w", err)
	}
	if err := write(tmp); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close output file: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("failed to move output into place: %w", err)
	}
	return nil
}

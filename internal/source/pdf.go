package source

import (
	"bytes"
	"context"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/ledongthuc/pdf"
	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"golang.org/x/text/encoding/charmap"
)

// PDFDecoder extracts page text from PDF files. Text comes from the
// ledongthuc reader grouped into rows; pages it cannot split into more than
// one row fall back to the text operators of the pdfcpu content stream.
type PDFDecoder struct {
	conf *model.Configuration
}

// NewPDFDecoder creates a PDFDecoder.
func NewPDFDecoder() *PDFDecoder {
	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed
	return &PDFDecoder{conf: conf}
}

// PageCount returns the number of pages in the PDF at path.
func (d *PDFDecoder) PageCount(path string) (int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, fmt.Errorf("failed to open PDF: %w", err)
	}
	defer f.Close()

	n, err := api.PageCount(f, d.conf)
	if err != nil {
		return 0, fmt.Errorf("failed to get page count: %w", err)
	}
	return n, nil
}

// Decode implements Decoder.
func (d *PDFDecoder) Decode(ctx context.Context, path string) ([]Page, error) {
	count, err := d.PageCount(path)
	if err != nil {
		return nil, err
	}

	f, reader, err := pdf.Open(path)
	if err != nil {
		// The reader rejects some files pdfcpu accepts; use the fallback for all pages.
		reader = nil
	} else {
		defer f.Close()
	}

	var (
		fallback    *model.Context
		fallbackErr error
	)
	pages := make([]Page, 0, count)
	for n := 1; n <= count; n++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		var text string
		rows := 0
		if reader != nil && n <= reader.NumPage() {
			text, rows = rowText(reader.Page(n))
		}
		// Text placed with cm rather than the text matrix lands on a single
		// row, so one row is not trusted and the content stream decides.
		if rows <= 1 && fallbackErr == nil {
			if fallback == nil {
				fallback, fallbackErr = d.readContext(path)
			}
			if fallbackErr == nil {
				if s := streamText(fallback, n); strings.TrimSpace(s) != "" {
					text = s
				}
			}
		}
		if fallbackErr != nil && strings.TrimSpace(text) == "" {
			return nil, fallbackErr
		}
		pages = append(pages, Page{Number: n, Text: text})
	}
	return pages, nil
}

func (d *PDFDecoder) readContext(path string) (*model.Context, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open PDF: %w", err)
	}
	defer f.Close()

	pctx, err := api.ReadValidateAndOptimize(f, d.conf)
	if err != nil {
		return nil, fmt.Errorf("pdfcpu read: %w", err)
	}
	return pctx, nil
}

// rowText joins the page's text runs into lines, top of the page first, and
// reports how many rows it found. Malformed pages make the reader panic;
// they yield no text.
func rowText(page pdf.Page) (text string, rows int) {
	defer func() {
		if r := recover(); r != nil {
			text, rows = "", 0
		}
	}()
	if page.V.IsNull() {
		return "", 0
	}

	byRow, err := page.GetTextByRow()
	if err != nil || len(byRow) == 0 {
		plain, err := page.GetPlainText(nil)
		if err != nil {
			return "", 0
		}
		return plain, 0
	}

	sort.SliceStable(byRow, func(i, j int) bool {
		return byRow[i].Position > byRow[j].Position
	})
	var sb strings.Builder
	for i, row := range byRow {
		if i > 0 {
			sb.WriteByte('\n')
		}
		for _, t := range row.Content {
			sb.WriteString(t.S)
		}
	}
	return sb.String(), len(byRow)
}

// streamText reads the text of one page from its content stream.
func streamText(pctx *model.Context, pageNr int) string {
	r, err := pdfcpu.ExtractPageContent(pctx, pageNr)
	if err != nil || r == nil {
		return ""
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return ""
	}
	return contentText(data)
}

// contentText walks a content stream token by token and collects the
// operands of the show-text operators. Operators that move to a new line or
// close a text object start a new output line, wherever they sit in the
// stream.
func contentText(data []byte) string {
	var (
		sb       strings.Builder
		operands []string
	)
	newline := func() {
		if sb.Len() > 0 && !strings.HasSuffix(sb.String(), "\n") {
			sb.WriteByte('\n')
		}
	}
	show := func() {
		for _, s := range operands {
			sb.WriteString(s)
		}
	}

	for i := 0; i < len(data); {
		c := data[i]
		switch {
		case isPDFSpace(c):
			i++
		case c == '%':
			for i < len(data) && data[i] != '\n' && data[i] != '\r' {
				i++
			}
		case c == '(':
			s, n := literalString(data[i:])
			operands = append(operands, s)
			i += n
		case c == '<' && i+1 < len(data) && data[i+1] == '<',
			c == '>' && i+1 < len(data) && data[i+1] == '>':
			i += 2
		case c == '<':
			end := bytes.IndexByte(data[i:], '>')
			if end < 0 {
				i = len(data)
				continue
			}
			operands = append(operands, hexString(data[i+1:i+end]))
			i += end + 1
		case c == '/':
			i++
			for i < len(data) && !isPDFDelim(data[i]) && !isPDFSpace(data[i]) {
				i++
			}
		case isPDFDelim(c):
			i++
		default:
			j := i
			for j < len(data) && !isPDFDelim(data[j]) && !isPDFSpace(data[j]) {
				j++
			}
			tok := string(data[i:j])
			i = j
			if isPDFNumber(tok) {
				continue
			}
			switch tok {
			case "Tj", "TJ":
				show()
			case "'", `"`:
				newline()
				show()
			case "Td", "TD", "T*", "Tm", "ET":
				newline()
			case "BI":
				i = skipInlineImage(data, i)
			}
			operands = operands[:0]
		}
	}
	return strings.TrimRight(sb.String(), "\n")
}

func isPDFSpace(c byte) bool {
	switch c {
	case ' ', '\t', '\n', '\r', '\f', 0:
		return true
	}
	return false
}

func isPDFDelim(c byte) bool {
	switch c {
	case '(', ')', '<', '>', '[', ']', '{', '}', '/', '%':
		return true
	}
	return false
}

func isPDFNumber(tok string) bool {
	if tok == "" {
		return false
	}
	for _, r := range tok {
		if (r < '0' || r > '9') && r != '.' && r != '-' && r != '+' {
			return false
		}
	}
	return true
}

// literalString decodes the parenthesised string at the start of data and
// returns it with the number of bytes consumed. Balanced parentheses nest.
func literalString(data []byte) (string, int) {
	depth := 0
	for i := 0; i < len(data); i++ {
		switch data[i] {
		case '\\':
			i++
		case '(':
			depth++
		case ')':
			depth--
			if depth == 0 {
				return winAnsi(unescapePDF(data[1:i])), i + 1
			}
		}
	}
	return winAnsi(unescapePDF(data[1:])), len(data)
}

func hexString(raw []byte) string {
	digits := make([]byte, 0, len(raw)+1)
	for _, c := range raw {
		if !isPDFSpace(c) {
			digits = append(digits, c)
		}
	}
	if len(digits)%2 == 1 {
		digits = append(digits, '0')
	}
	b, err := hex.DecodeString(string(digits))
	if err != nil {
		return ""
	}
	return winAnsi(string(b))
}

// winAnsi decodes the single-byte encoding used by the standard fonts.
func winAnsi(s string) string {
	for i := 0; i < len(s); i++ {
		if s[i] >= 0x80 {
			out, err := charmap.Windows1252.NewDecoder().String(s)
			if err != nil {
				return s
			}
			return out
		}
	}
	return s
}

// skipInlineImage returns the offset just past the EI that closes the
// inline image whose BI ends at i.
func skipInlineImage(data []byte, i int) int {
	for k := i; k+2 <= len(data); k++ {
		if data[k] != 'E' || data[k+1] != 'I' {
			continue
		}
		if k > 0 && !isPDFSpace(data[k-1]) {
			continue
		}
		if k+2 == len(data) || isPDFSpace(data[k+2]) {
			return k + 2
		}
	}
	return len(data)
}

func unescapePDF(raw []byte) string {
	var sb strings.Builder
	for i := 0; i < len(raw); i++ {
		c := raw[i]
		if c != '\\' || i+1 >= len(raw) {
			sb.WriteByte(c)
			continue
		}
		i++
		switch raw[i] {
		case 'n':
			sb.WriteByte('\n')
		case 'r':
			sb.WriteByte('\r')
		case 't':
			sb.WriteByte('\t')
		case '\n':
		case '0', '1', '2', '3', '4', '5', '6', '7':
			val := 0
			for k := 0; k < 3 && i < len(raw) && raw[i] >= '0' && raw[i] <= '7'; k++ {
				val = val*8 + int(raw[i]-'0')
				i++
			}
			i--
			sb.WriteByte(byte(val))
		default:
			sb.WriteByte(raw[i])
		}
	}
	return sb.String()
}

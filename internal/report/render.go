package report

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"unicode/utf8"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"

	"github.com/jackzampolin/lexscan/internal/records"
)

// A4 portrait in points, origin lower left.
const (
	pageWidth    = 595.0
	pageHeight   = 842.0
	marginLeft   = 60.0
	marginRight  = 60.0
	marginTop    = 60.0
	marginBottom = 40.0
	indent       = 25.0

	// Average Helvetica glyph width as a fraction of the font size.
	glyphWidth = 0.5
	leading    = 1.35
)

// Config controls the compilation layout.
type Config struct {
	Title    string `mapstructure:"title" yaml:"title" json:"title"`
	Subtitle string `mapstructure:"subtitle" yaml:"subtitle" json:"subtitle"`

	// EntriesPerPage forces a page break after this many entries.
	EntriesPerPage int `mapstructure:"entries_per_page" yaml:"entries_per_page" json:"entries_per_page"`
	// ParagraphChars is the longest paragraph before the explanation is split.
	ParagraphChars int `mapstructure:"paragraph_chars" yaml:"paragraph_chars" json:"paragraph_chars"`

	TitleSize   int `mapstructure:"title_size" yaml:"title_size" json:"title_size"`
	HeadingSize int `mapstructure:"heading_size" yaml:"heading_size" json:"heading_size"`
	BodySize    int `mapstructure:"body_size" yaml:"body_size" json:"body_size"`
	SourceSize  int `mapstructure:"source_size" yaml:"source_size" json:"source_size"`
}

// DefaultConfig returns the default layout.
func DefaultConfig() Config {
	return Config{
		Title:          "Legal Terms Compilation",
		Subtitle:       "Terms, cases and explanations extracted from course materials",
		EntriesPerPage: 8,
		ParagraphChars: 350,
		TitleSize:      20,
		HeadingSize:    14,
		BodySize:       11,
		SourceSize:     9,
	}
}

func (c Config) withDefaults() Config {
	d := DefaultConfig()
	if c.Title == "" {
		c.Title = d.Title
	}
	if c.EntriesPerPage <= 0 {
		c.EntriesPerPage = d.EntriesPerPage
	}
	if c.ParagraphChars <= 0 {
		c.ParagraphChars = d.ParagraphChars
	}
	if c.TitleSize <= 0 {
		c.TitleSize = d.TitleSize
	}
	if c.HeadingSize <= 0 {
		c.HeadingSize = d.HeadingSize
	}
	if c.BodySize <= 0 {
		c.BodySize = d.BodySize
	}
	if c.SourceSize <= 0 {
		c.SourceSize = d.SourceSize
	}
	return c
}

// Stats summarizes a rendered compilation.
type Stats struct {
	Entries   int `json:"entries" yaml:"entries"`
	Skipped   int `json:"skipped" yaml:"skipped"`
	Malformed int `json:"malformed" yaml:"malformed"`
	Pages     int `json:"pages" yaml:"pages"`
}

// pdfcpu create input.
type (
	pdfDoc struct {
		Paper  string             `json:"paper"`
		Origin string             `json:"origin"`
		Pages  map[string]pdfPage `json:"pages"`
	}
	pdfPage struct {
		Content pdfContent `json:"content"`
	}
	pdfContent struct {
		Text []pdfText `json:"text"`
	}
	pdfText struct {
		Value string     `json:"value"`
		Pos   [2]float64 `json:"pos"`
		Font  pdfFont    `json:"font"`
	}
	pdfFont struct {
		Name string `json:"name"`
		Size int    `json:"size"`
	}
)

// Render lays out entries and writes the PDF to w.
func Render(w io.Writer, entries []records.Entry, cfg Config) (Stats, error) {
	cfg = cfg.withDefaults()
	doc, stats := layout(entries, cfg)

	data, err := json.Marshal(doc)
	if err != nil {
		return stats, fmt.Errorf("failed to encode page layout: %w", err)
	}
	conf := model.NewDefaultConfiguration()
	if err := api.Create(nil, bytes.NewReader(data), w, conf); err != nil {
		return stats, fmt.Errorf("failed to create PDF: %w", err)
	}
	return stats, nil
}

// RenderFile reads the record file at in and writes the compilation to out.
// Malformed rows are logged and skipped.
func RenderFile(in, out string, cfg Config, logger *slog.Logger) (Stats, error) {
	if logger == nil {
		logger = slog.Default()
	}
	res, err := records.ReadCSVFile(in)
	if err != nil {
		return Stats{}, err
	}
	for _, m := range res.Malformed {
		logger.Warn("skipping malformed row", "file", in, "line", m.Line, "columns", m.Columns, "want", m.Want)
	}

	f, err := os.Create(out)
	if err != nil {
		return Stats{}, fmt.Errorf("failed to create output file: %w", err)
	}
	stats, err := Render(f, res.Entries, cfg)
	if cerr := f.Close(); err == nil && cerr != nil {
		err = fmt.Errorf("failed to close output file: %w", cerr)
	}
	stats.Malformed = len(res.Malformed)
	stats.Skipped += res.Empty
	if err != nil {
		os.Remove(out)
		return stats, err
	}

	logger.Info("report written", "output", out, "entries", stats.Entries, "pages", stats.Pages, "skipped", stats.Skipped)
	return stats, nil
}

// pager places text lines top to bottom, starting new pages as needed.
type pager struct {
	pages []pdfPage
	y     float64
}

func (p *pager) newPage() {
	p.pages = append(p.pages, pdfPage{})
	p.y = pageHeight - marginTop
}

func (p *pager) fits(height float64) bool {
	return len(p.pages) > 0 && p.y-height >= marginBottom
}

func (p *pager) line(text string, x float64, font string, size int) {
	h := float64(size) * leading
	if !p.fits(h) {
		p.newPage()
	}
	p.y -= h
	cur := &p.pages[len(p.pages)-1]
	cur.Content.Text = append(cur.Content.Text, pdfText{
		Value: text,
		Pos:   [2]float64{x, p.y},
		Font:  pdfFont{Name: font, Size: size},
	})
}

func (p *pager) space(h float64) {
	if p.fits(h) {
		p.y -= h
	}
}

func wrapWidth(size int, inset float64) int {
	usable := pageWidth - marginLeft - marginRight - 2*inset
	return int(usable / (float64(size) * glyphWidth))
}

func centered(text string, size int) float64 {
	w := float64(utf8.RuneCountInString(text)) * float64(size) * glyphWidth
	x := (pageWidth - w) / 2
	if x < marginLeft {
		return marginLeft
	}
	return x
}

func layout(entries []records.Entry, cfg Config) (pdfDoc, Stats) {
	var (
		p     pager
		stats Stats
	)

	// Title page.
	p.newPage()
	p.y = pageHeight * 0.6
	p.line(cfg.Title, centered(cfg.Title, cfg.TitleSize), "Helvetica-Bold", cfg.TitleSize)
	if cfg.Subtitle != "" {
		p.space(40)
		p.line(cfg.Subtitle, centered(cfg.Subtitle, 12), "Helvetica", 12)
	}

	bodyWidth := wrapWidth(cfg.BodySize, indent)
	sourceWidth := wrapWidth(cfg.SourceSize, indent)
	headingWidth := wrapWidth(cfg.HeadingSize, 0)

	onPage := cfg.EntriesPerPage
	for _, e := range entries {
		heading := Clean(e.Heading)
		explanation := Clean(e.Explanation)
		if heading == "" || explanation == "" {
			stats.Skipped++
			continue
		}

		if onPage >= cfg.EntriesPerPage {
			p.newPage()
			onPage = 0
		}
		// Keep a heading with at least its first body line.
		headingHeight := float64(cfg.HeadingSize)*leading + float64(cfg.BodySize)*leading + 15
		if !p.fits(headingHeight) {
			p.newPage()
			onPage = 0
		}

		if onPage > 0 {
			p.space(25)
		}
		for _, l := range wrap(heading, headingWidth) {
			p.line(l, marginLeft, "Helvetica-Bold", cfg.HeadingSize)
		}
		p.space(10)

		for _, para := range SplitParagraphs(explanation, cfg.ParagraphChars) {
			for _, l := range wrap(EnsureTerminal(para), bodyWidth) {
				p.line(l, marginLeft+indent, "Helvetica", cfg.BodySize)
			}
			p.space(6)
		}

		if src := sourceLabel(Clean(e.Source)); src != "" {
			label := "Source: " + src
			if e.Page > 0 {
				label += ", page " + strconv.Itoa(e.Page)
			}
			for _, l := range wrap(label, sourceWidth) {
				p.line(l, marginLeft+indent, "Helvetica-Oblique", cfg.SourceSize)
			}
		}

		onPage++
		stats.Entries++
	}

	doc := pdfDoc{Paper: "A4", Origin: "LowerLeft", Pages: make(map[string]pdfPage, len(p.pages))}
	for i, pg := range p.pages {
		doc.Pages[strconv.Itoa(i+1)] = pg
	}
	stats.Pages = len(p.pages)
	return doc, stats
}

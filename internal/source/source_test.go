package source

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/jackzampolin/lexscan/internal/extract"
	"github.com/jackzampolin/lexscan/internal/records"
	"github.com/jackzampolin/lexscan/internal/report"
)

func TestSortDocuments(t *testing.T) {
	tests := []struct {
		name     string
		input    []string
		expected []string
	}{
		{
			name:     "already sorted",
			input:    []string{"notes-1.pdf", "notes-2.pdf", "notes-3.pdf"},
			expected: []string{"notes-1.pdf", "notes-2.pdf", "notes-3.pdf"},
		},
		{
			name:     "reverse order",
			input:    []string{"notes-3.pdf", "notes-2.pdf", "notes-1.pdf"},
			expected: []string{"notes-1.pdf", "notes-2.pdf", "notes-3.pdf"},
		},
		{
			name:     "mixed with double digits",
			input:    []string{"notes-10.pdf", "notes-2.pdf", "notes-1.pdf"},
			expected: []string{"notes-1.pdf", "notes-2.pdf", "notes-10.pdf"},
		},
		{
			name:     "numbered and unnumbered",
			input:    []string{"notes-2.pdf", "notes.pdf", "notes-1.pdf"},
			expected: []string{"notes.pdf", "notes-1.pdf", "notes-2.pdf"},
		},
		{
			name:     "different stems",
			input:    []string{"torts-1.pdf", "contract-2.pdf", "contract-1.txt"},
			expected: []string{"contract-1.txt", "contract-2.pdf", "torts-1.pdf"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			docs := make([]Document, len(tt.input))
			for i, name := range tt.input {
				docs[i] = Document{Name: name}
			}
			SortDocuments(docs)
			for i := range docs {
				if docs[i].Name != tt.expected[i] {
					t.Errorf("index %d: got %q, want %q", i, docs[i].Name, tt.expected[i])
				}
			}
		})
	}
}

func TestNormalizeExtensions(t *testing.T) {
	got := NormalizeExtensions([]string{"pdf", ".TXT", " .Md "})
	want := []string{".pdf", ".txt", ".md"}
	if len(got) != len(want) {
		t.Fatalf("got %q, want %q", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("index %d: got %q, want %q", i, got[i], want[i])
		}
	}
}

func TestDiscover(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"b-2.PDF", "b-10.pdf", "a.txt", "notes.docx", ".hidden.pdf"} {
		if err := os.WriteFile(filepath.Join(dir, name), []byte("x"), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	if err := os.Mkdir(filepath.Join(dir, "nested.pdf"), 0o755); err != nil {
		t.Fatal(err)
	}

	docs, err := Discover(dir, nil)
	if err != nil {
		t.Fatalf("Discover: %v", err)
	}
	var names []string
	for _, d := range docs {
		names = append(names, d.Name)
	}
	want := []string{"a.txt", "b-2.PDF", "b-10.pdf"}
	if len(names) != len(want) {
		t.Fatalf("got %v, want %v", names, want)
	}
	for i := range want {
		if names[i] != want[i] {
			t.Errorf("index %d: got %q, want %q", i, names[i], want[i])
		}
	}
	if docs[1].Ext != ".pdf" {
		t.Errorf("extension = %q, want lower-cased .pdf", docs[1].Ext)
	}

	t.Run("extension filter", func(t *testing.T) {
		docs, err := Discover(dir, []string{"txt"})
		if err != nil {
			t.Fatal(err)
		}
		if len(docs) != 1 || docs[0].Name != "a.txt" {
			t.Errorf("got %+v, want only a.txt", docs)
		}
	})

	t.Run("missing directory", func(t *testing.T) {
		if _, err := Discover(filepath.Join(dir, "missing"), nil); err == nil {
			t.Error("expected error for missing directory")
		}
	})
}

func TestTextDecoder(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "notes.txt")
	content := "Consideration\n• Something of value\fForce Majeure\n• Excuses performance"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	pages, err := TextDecoder{}.Decode(context.Background(), path)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if len(pages) != 2 {
		t.Fatalf("got %d pages, want 2", len(pages))
	}
	if pages[0].Number != 1 || pages[1].Number != 2 {
		t.Errorf("page numbers = %d, %d", pages[0].Number, pages[1].Number)
	}
	if pages[1].Text != "Force Majeure\n• Excuses performance" {
		t.Errorf("page 2 text = %q", pages[1].Text)
	}

	bad := filepath.Join(dir, "bad.txt")
	if err := os.WriteFile(bad, []byte{0xff, 0xfe, 0x00}, 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := (TextDecoder{}).Decode(context.Background(), bad); !errors.Is(err, ErrUnsupportedFormat) {
		t.Errorf("err = %v, want ErrUnsupportedFormat", err)
	}
}

type flakyDecoder struct {
	failures int
	calls    int
}

func (d *flakyDecoder) Decode(_ context.Context, _ string) ([]Page, error) {
	d.calls++
	if d.calls <= d.failures {
		return nil, errors.New("file is still being written")
	}
	return []Page{{Number: 1, Text: "ok"}}, nil
}

func TestReader_Read(t *testing.T) {
	ctx := context.Background()

	t.Run("unsupported extension", func(t *testing.T) {
		r := NewReader(ReaderConfig{})
		_, err := r.Read(ctx, Document{Path: "/tmp/x.docx", Name: "x.docx", Ext: ".docx"})
		var readErr *DocumentReadError
		if !errors.As(err, &readErr) {
			t.Fatalf("err = %v, want *DocumentReadError", err)
		}
		if !errors.Is(err, ErrUnsupportedFormat) {
			t.Errorf("err = %v, want ErrUnsupportedFormat", err)
		}
		if readErr.Path != "/tmp/x.docx" {
			t.Errorf("path = %q", readErr.Path)
		}
	})

	t.Run("retries transient failures", func(t *testing.T) {
		dec := &flakyDecoder{failures: 2}
		r := NewReader(ReaderConfig{
			Decoders:   map[string]Decoder{".txt": dec},
			Retries:    3,
			RetryDelay: time.Millisecond,
		})
		pages, err := r.Read(ctx, Document{Path: "a.txt", Name: "a.txt", Ext: ".txt"})
		if err != nil {
			t.Fatalf("Read: %v", err)
		}
		if len(pages) != 1 || dec.calls != 3 {
			t.Errorf("pages = %d, calls = %d", len(pages), dec.calls)
		}
	})

	t.Run("gives up after retries", func(t *testing.T) {
		dec := &flakyDecoder{failures: 5}
		r := NewReader(ReaderConfig{
			Decoders:   map[string]Decoder{".txt": dec},
			Retries:    2,
			RetryDelay: time.Millisecond,
		})
		_, err := r.Read(ctx, Document{Path: "a.txt", Name: "a.txt", Ext: ".txt"})
		var readErr *DocumentReadError
		if !errors.As(err, &readErr) {
			t.Fatalf("err = %v, want *DocumentReadError", err)
		}
		if dec.calls != 2 {
			t.Errorf("calls = %d, want 2", dec.calls)
		}
	})

	t.Run("missing file is not retried", func(t *testing.T) {
		r := NewReader(ReaderConfig{Retries: 3, RetryDelay: time.Millisecond})
		_, err := r.Read(ctx, Document{Path: filepath.Join(t.TempDir(), "gone.txt"), Name: "gone.txt", Ext: ".txt"})
		if !errors.Is(err, os.ErrNotExist) {
			t.Errorf("err = %v, want os.ErrNotExist", err)
		}
	})
}

func TestContentText(t *testing.T) {
	tests := []struct {
		name   string
		stream string
		want   string
	}{
		{
			name:   "single line stream",
			stream: "q BT /F0 14.00 Tf ET Q q 1 0 0 1 72 700 cm BT 0 0 Td (Estoppel) Tj ET Q q 1 0 0 1 72 680 cm BT 0 0 Td (Estoppel is a rule.) Tj ET Q",
			want:   "Estoppel\nEstoppel is a rule.",
		},
		{
			name:   "line operators",
			stream: "BT\n/F1 12 Tf\n72 700 Td\n(First) Tj\n0 -14 Td\n(Second) Tj\nT* (Third) Tj (Fourth) '\nET",
			want:   "First\nSecond\nThird\nFourth",
		},
		{
			name:   "kerned array",
			stream: "BT [(Con) -20 (tract)] TJ ET",
			want:   "Contract",
		},
		{
			name:   "escapes and nesting",
			stream: `BT (a \(b\) (c) d\\e) Tj ET`,
			want:   `a (b) (c) d\e`,
		},
		{
			name:   "hex string",
			stream: "BT <4F66666572> Tj ET",
			want:   "Offer",
		},
		{
			name:   "win ansi",
			stream: `BT (caf\351) Tj ET`,
			want:   "café",
		},
		{
			name:   "dictionary and inline image skipped",
			stream: "/Span <</MCID 0>> BDC BI /W 1 /H 1 ID \x00(x)\x01 EI BT (Kept) Tj ET EMC",
			want:   "Kept",
		},
		{
			name:   "no text",
			stream: "q 0 0 612 792 re f Q",
			want:   "",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := contentText([]byte(tt.stream)); got != tt.want {
				t.Errorf("contentText = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestPDFDecoder_RenderedReport(t *testing.T) {
	path := filepath.Join(t.TempDir(), "terms.pdf")
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	entries := []records.Entry{{
		Heading:     "Estoppel",
		Explanation: "Estoppel is a legal principle that prevents a party from denying facts.",
		Source:      "a.pdf",
		Page:        1,
	}}
	if _, err := report.Render(f, entries, report.DefaultConfig()); err != nil {
		f.Close()
		t.Fatalf("Render: %v", err)
	}
	if err := f.Close(); err != nil {
		t.Fatal(err)
	}

	dec := NewPDFDecoder()
	n, err := dec.PageCount(path)
	if err != nil {
		t.Fatalf("PageCount: %v", err)
	}
	pages, err := dec.Decode(context.Background(), path)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if n != 2 || len(pages) != n {
		t.Fatalf("decoded %d pages, page count %d, want 2", len(pages), n)
	}
	for i, p := range pages {
		if p.Number != i+1 {
			t.Errorf("page %d numbered %d", i+1, p.Number)
		}
	}

	lines := strings.Split(pages[1].Text, "\n")
	if len(lines) < 3 || strings.TrimSpace(lines[0]) != "Estoppel" {
		t.Fatalf("page 2 lines = %q, want the heading on its own line", lines)
	}
	if last := strings.TrimSpace(lines[len(lines)-1]); last != "Source: a, page 1" {
		t.Errorf("last line = %q", last)
	}

	cfg, err := extract.Preset(extract.ModeDefinitions)
	if err != nil {
		t.Fatal(err)
	}
	eng, err := extract.New(cfg)
	if err != nil {
		t.Fatal(err)
	}
	recs := eng.ScanPage("terms.pdf", pages[1].Number, pages[1].Text)
	var found bool
	for _, r := range recs {
		if r.Heading == "Estoppel" && strings.Contains(r.Text(), "legal principle") {
			found = true
		}
	}
	if !found {
		t.Errorf("records = %+v, want Estoppel with its definition", recs)
	}
}

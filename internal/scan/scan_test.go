package scan

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/jackzampolin/lexscan/internal/extract"
	"github.com/jackzampolin/lexscan/internal/source"
)

// fakeDecoder serves canned pages per file name. Earlier documents sleep
// longer so workers finish out of order.
type fakeDecoder struct {
	pages map[string][]source.Page
	delay map[string]time.Duration
}

func (d fakeDecoder) Decode(ctx context.Context, path string) ([]source.Page, error) {
	name := filepath.Base(path)
	if wait := d.delay[name]; wait > 0 {
		select {
		case <-time.After(wait):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	pages, ok := d.pages[name]
	if !ok {
		return nil, errors.New("corrupt document")
	}
	return pages, nil
}

func docs(names ...string) []source.Document {
	out := make([]source.Document, len(names))
	for i, n := range names {
		out[i] = source.Document{Path: "/in/" + n, Name: n, Ext: ".fake"}
	}
	return out
}

func newScanner(t *testing.T, mode extract.Mode, dec source.Decoder, workers int) *Scanner {
	t.Helper()
	cfg, err := extract.Preset(mode)
	if err != nil {
		t.Fatal(err)
	}
	engine, err := extract.New(cfg)
	if err != nil {
		t.Fatal(err)
	}
	reader := source.NewReader(source.ReaderConfig{
		Decoders:   map[string]source.Decoder{".fake": dec, ".txt": source.TextDecoder{}},
		Retries:    1,
		RetryDelay: time.Millisecond,
	})
	s, err := New(Config{Engine: engine, Reader: reader, Mode: mode, Workers: workers})
	if err != nil {
		t.Fatal(err)
	}
	return s
}

const forceMajeure = "Force Majeure\n" +
	"• Unforeseeable events beyond control\n" +
	"• Excuses performance of the contract\n" +
	"• Must be notified promptly"

const consideration = "Consideration\n" +
	"• Something of value given in exchange\n" +
	"• Must move from the promisee"

func TestScan_FirstDocumentWins(t *testing.T) {
	dec := fakeDecoder{
		pages: map[string][]source.Page{
			"a.fake": {{Number: 1, Text: forceMajeure}},
			"b.fake": {{Number: 4, Text: forceMajeure}, {Number: 5, Text: consideration}},
		},
		delay: map[string]time.Duration{"a.fake": 30 * time.Millisecond},
	}
	s := newScanner(t, extract.ModeStructured, dec, 2)

	res, err := s.Scan(context.Background(), docs("a.fake", "b.fake"))
	if err != nil {
		t.Fatalf("Scan: %v", err)
	}
	if len(res.Records) != 2 {
		t.Fatalf("got %d records, want 2: %+v", len(res.Records), res.Records)
	}
	if res.Records[0].Heading != "Consideration" || res.Records[1].Heading != "Force Majeure" {
		t.Errorf("records not sorted by heading: %q, %q", res.Records[0].Heading, res.Records[1].Heading)
	}
	if fm := res.Records[1]; fm.Source != "a.fake" || fm.Page != 1 {
		t.Errorf("Force Majeure kept from %s page %d, want a.fake page 1", fm.Source, fm.Page)
	}
	if res.Extracted != 3 || res.Pages != 3 {
		t.Errorf("extracted = %d, pages = %d", res.Extracted, res.Pages)
	}
	if res.RunID == "" {
		t.Error("missing run id")
	}
}

func TestScan_DeterministicAcrossWorkerCounts(t *testing.T) {
	dec := fakeDecoder{
		pages: map[string][]source.Page{
			"a.fake": {{Number: 1, Text: forceMajeure}},
			"b.fake": {{Number: 1, Text: consideration}},
			"c.fake": {{Number: 2, Text: forceMajeure + "\n\n" + consideration}},
		},
		delay: map[string]time.Duration{"a.fake": 20 * time.Millisecond, "b.fake": 10 * time.Millisecond},
	}

	var want []extract.Record
	for _, workers := range []int{1, 2, 3, 8} {
		s := newScanner(t, extract.ModeStructured, dec, workers)
		res, err := s.Scan(context.Background(), docs("a.fake", "b.fake", "c.fake"))
		if err != nil {
			t.Fatalf("workers=%d: %v", workers, err)
		}
		if want == nil {
			want = res.Records
			continue
		}
		if len(res.Records) != len(want) {
			t.Fatalf("workers=%d: %d records, want %d", workers, len(res.Records), len(want))
		}
		for i := range want {
			if res.Records[i].Heading != want[i].Heading || res.Records[i].Source != want[i].Source {
				t.Errorf("workers=%d: record %d = %s/%s, want %s/%s", workers, i,
					res.Records[i].Heading, res.Records[i].Source, want[i].Heading, want[i].Source)
			}
		}
	}
}

func TestScan_SkipsUnreadableDocuments(t *testing.T) {
	dec := fakeDecoder{pages: map[string][]source.Page{
		"good.fake": {{Number: 1, Text: consideration}},
	}}
	s := newScanner(t, extract.ModeStructured, dec, 2)

	res, err := s.Scan(context.Background(), docs("bad.fake", "good.fake"))
	if err != nil {
		t.Fatalf("Scan: %v", err)
	}
	if len(res.Skipped) != 1 || res.Skipped[0].Document != "bad.fake" {
		t.Fatalf("skipped = %+v, want bad.fake", res.Skipped)
	}
	if !strings.Contains(res.Skipped[0].Error, "corrupt document") {
		t.Errorf("skip error = %q", res.Skipped[0].Error)
	}
	if len(res.Documents) != 1 || len(res.Records) != 1 {
		t.Errorf("documents = %d, records = %d", len(res.Documents), len(res.Records))
	}
}

func TestScan_DocumentTimeout(t *testing.T) {
	dec := fakeDecoder{
		pages: map[string][]source.Page{"slow.fake": {{Number: 1, Text: consideration}}},
		delay: map[string]time.Duration{"slow.fake": time.Second},
	}
	s := newScanner(t, extract.ModeStructured, dec, 1)
	s.timeout = 10 * time.Millisecond

	res, err := s.Scan(context.Background(), docs("slow.fake"))
	if err != nil {
		t.Fatalf("Scan: %v", err)
	}
	if len(res.Skipped) != 1 {
		t.Fatalf("skipped = %+v, want the slow document", res.Skipped)
	}
	if len(res.Records) != 0 {
		t.Errorf("records = %+v, want none", res.Records)
	}
}

func TestScan_Cancelled(t *testing.T) {
	dec := fakeDecoder{
		pages: map[string][]source.Page{"a.fake": {{Number: 1, Text: consideration}}},
		delay: map[string]time.Duration{"a.fake": time.Second},
	}
	s := newScanner(t, extract.ModeStructured, dec, 1)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	if _, err := s.Scan(ctx, docs("a.fake", "a.fake", "a.fake")); err == nil {
		t.Error("expected error from cancelled scan")
	}
}

func TestScanDir(t *testing.T) {
	t.Run("empty folder", func(t *testing.T) {
		s := newScanner(t, extract.ModeAll, fakeDecoder{}, 1)
		res, err := s.ScanDir(context.Background(), t.TempDir())
		if !errors.Is(err, ErrNoDocuments) {
			t.Fatalf("err = %v, want ErrNoDocuments", err)
		}
		if res == nil || len(res.Records) != 0 {
			t.Errorf("expected empty result, got %+v", res)
		}
	})

	t.Run("text documents", func(t *testing.T) {
		dir := t.TempDir()
		if err := os.WriteFile(filepath.Join(dir, "notes-1.txt"), []byte(consideration+"\f"+forceMajeure), 0o644); err != nil {
			t.Fatal(err)
		}
		s := newScanner(t, extract.ModeStructured, fakeDecoder{}, 2)
		s.extensions = []string{".txt"}

		res, err := s.ScanDir(context.Background(), dir)
		if err != nil {
			t.Fatalf("ScanDir: %v", err)
		}
		if len(res.Records) != 2 {
			t.Fatalf("got %d records, want 2", len(res.Records))
		}
		if res.Records[1].Heading != "Force Majeure" || res.Records[1].Page != 2 {
			t.Errorf("record = %+v, want Force Majeure on page 2", res.Records[1])
		}
		if res.InputDir != dir {
			t.Errorf("input dir = %q", res.InputDir)
		}
	})
}

func TestBestExamples(t *testing.T) {
	records := []extract.Record{
		{Heading: "A", LineCount: 2},
		{Heading: "B", LineCount: 5},
		{Heading: "C", LineCount: 3},
		{Heading: "D", LineCount: 5},
	}
	tests := []struct {
		name    string
		records []extract.Record
		n       int
		want    []string
	}{
		{"top n by line count", records, 3, []string{"B", "D", "C"}},
		{"short records never listed", records, 10, []string{"B", "D", "C"}},
		{"sparse corpus", []extract.Record{{Heading: "E", LineCount: 1}, {Heading: "F", LineCount: 2}}, 10, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := bestExamples(tt.records, tt.n)
			if len(got) != len(tt.want) {
				t.Fatalf("got %d examples, want %d", len(got), len(tt.want))
			}
			for i := range tt.want {
				if got[i].Heading != tt.want[i] {
					t.Errorf("position %d = %s, want %s", i, got[i].Heading, tt.want[i])
				}
			}
		})
	}
}

func TestPool_Status(t *testing.T) {
	p := NewPool(PoolConfig{WorkerCount: 3})
	handle := func(_ context.Context, _ source.Document) ([]extract.Record, int, error) {
		return nil, 1, nil
	}
	results, err := p.Run(context.Background(), docs("a", "b", "c", "d"), handle)
	if err != nil {
		t.Fatal(err)
	}
	for i, r := range results {
		if r.Index != i || r.Pages != 1 {
			t.Errorf("result %d = %+v", i, r)
		}
	}
	st := p.Status()
	if st.Workers != 3 || st.Completed != 4 || st.InFlight != 0 {
		t.Errorf("status = %+v", st)
	}
}

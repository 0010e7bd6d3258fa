package main

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jackzampolin/lexscan/internal/extract"
	"github.com/jackzampolin/lexscan/internal/output"
	"github.com/jackzampolin/lexscan/internal/source"
)

var (
	classifyCandidatesOnly bool
	classifyPage           int
)

// pageTrace is the classification trace of one page.
type pageTrace struct {
	Page    int                  `json:"page" yaml:"page"`
	Records int                  `json:"records" yaml:"records"`
	Lines   []extract.TraceEntry `json:"lines" yaml:"lines"`
}

var classifyCmd = &cobra.Command{
	Use:   "classify FILE",
	Short: "Show how each line of a document is classified",
	Long: `Run the extraction engine over one document and print, for every line,
the candidate heading it produced (if any) and the explanation window built
for it: the lines included and why the window stopped.

Use it to see why a term was or was not extracted before adjusting the
engine section of the config.

Examples:
  lexscan classify lecture-3.pdf --mode cases --candidates
  lexscan classify notes.txt --page 2 -o json`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := setup(cmd, map[string]string{"mode": "mode"})
		if err != nil {
			return err
		}
		cfg := e.manager.Get()

		engCfg, err := cfg.EngineConfig()
		if err != nil {
			return err
		}
		eng, err := extract.New(engCfg)
		if err != nil {
			return err
		}

		path := args[0]
		reader := source.NewReader(source.ReaderConfig{Retries: cfg.OpenRetries + 1, Logger: e.logger})
		pages, err := reader.Read(cmd.Context(), source.Document{
			Path: path,
			Name: filepath.Base(path),
			Ext:  strings.ToLower(filepath.Ext(path)),
		})
		if err != nil {
			return err
		}

		var traces []pageTrace
		for _, p := range pages {
			if classifyPage > 0 && p.Number != classifyPage {
				continue
			}
			t := pageTrace{Page: p.Number}
			for _, entry := range eng.Trace(p.Text) {
				if entry.Accepted {
					t.Records++
				}
				if classifyCandidatesOnly && entry.Candidate == nil {
					continue
				}
				t.Lines = append(t.Lines, entry)
			}
			traces = append(traces, t)
		}
		if classifyPage > 0 && len(traces) == 0 {
			return fmt.Errorf("%s has no page %d", filepath.Base(path), classifyPage)
		}
		return output.Print(traces)
	},
}

func init() {
	classifyCmd.Flags().String("mode", "", "extraction mode: definitions, cases, bullets, structured or all")
	classifyCmd.Flags().BoolVar(&classifyCandidatesOnly, "candidates", false, "only show lines that produced a candidate heading")
	classifyCmd.Flags().IntVar(&classifyPage, "page", 0, "only show this page (1-based)")
	rootCmd.AddCommand(classifyCmd)
}

package main

import (
	"github.com/spf13/cobra"

	"github.com/jackzampolin/lexscan/internal/output"
	"github.com/jackzampolin/lexscan/internal/report"
)

var (
	renderInput  string
	renderOutput string
	renderTitle  string
)

var renderCmd = &cobra.Command{
	Use:   "render",
	Short: "Render a record CSV into a PDF compilation",
	Long: `Render a record CSV written by "lexscan scan" into a paginated PDF:
a title page, then each term with its explanation split into paragraphs and
the document and page it came from.

Rows with too few columns are skipped with a warning, as are rows whose term
or explanation is empty after cleaning.

Examples:
  lexscan render                                  # config output -> ~/.lexscan/exports/
  lexscan render --input cases.csv --output cases.pdf --title "Case Law"`,
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := setup(cmd, nil)
		if err != nil {
			return err
		}
		cfg := e.manager.Get()

		in := renderInput
		if in == "" {
			in = cfg.Output
		}
		out := renderOutput
		if out == "" {
			if err := e.home.EnsureExists(); err != nil {
				return err
			}
			out = e.home.ExportPath(in, ".pdf")
		}
		layout := cfg.Report
		if renderTitle != "" {
			layout.Title = renderTitle
		}

		stats, err := report.RenderFile(in, out, layout, e.logger)
		if err != nil {
			return err
		}
		return output.Print(struct {
			Input  string `json:"input" yaml:"input"`
			Output string `json:"output" yaml:"output"`
			report.Stats `yaml:",inline"`
		}{in, out, stats})
	},
}

func init() {
	renderCmd.Flags().StringVar(&renderInput, "input", "", "record CSV to render (default: the configured output)")
	renderCmd.Flags().StringVar(&renderOutput, "output", "", "PDF to write (default: <home>/exports/<input>.pdf)")
	renderCmd.Flags().StringVar(&renderTitle, "title", "", "title page heading")
	rootCmd.AddCommand(renderCmd)
}

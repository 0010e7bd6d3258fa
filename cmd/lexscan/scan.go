package main

import (
	"context"
	"errors"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/jackzampolin/lexscan/internal/config"
	"github.com/jackzampolin/lexscan/internal/extract"
	"github.com/jackzampolin/lexscan/internal/output"
	"github.com/jackzampolin/lexscan/internal/records"
	"github.com/jackzampolin/lexscan/internal/scan"
	"github.com/jackzampolin/lexscan/internal/source"
)

// scanOverrides maps the scan and watch flags to config keys.
var scanOverrides = map[string]string{
	"input":   "input_dir",
	"output":  "output",
	"mode":    "mode",
	"format":  "format",
	"workers": "workers",
}

var scanCmd = &cobra.Command{
	Use:   "scan",
	Short: "Extract records from every document in the input folder",
	Long: `Scan every PDF and text document in the input folder and write the
extracted records to a CSV or JSON file.

Documents are read concurrently and merged in document order, so the output
is the same however many workers are used. A document that cannot be read is
skipped and listed in the summary; the record file is always written.

Modes:
  definitions  inline "X is/means Y" definitions
  cases        case citations and the lines explaining them
  bullets      bulleted terms, one column per explanation line
  structured   short headings followed by explanation lines
  all          every rule above (default)

Examples:
  lexscan scan --input ./lectures
  lexscan scan --mode cases --output cases.csv
  lexscan scan --format json --output terms.json -o json`,
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := setup(cmd, scanOverrides)
		if err != nil {
			return err
		}
		summary, err := runScan(cmd.Context(), e.manager.Get(), e.logger)
		if err != nil {
			return err
		}
		return output.Print(summary)
	},
}

func init() {
	addScanFlags(scanCmd)
	rootCmd.AddCommand(scanCmd)
}

func addScanFlags(cmd *cobra.Command) {
	cmd.Flags().String("input", "", "folder of documents to scan (default from config: ./documents)")
	cmd.Flags().String("output", "", "record file to write (default from config: legal_terms.csv)")
	cmd.Flags().String("mode", "", "extraction mode: definitions, cases, bullets, structured or all")
	cmd.Flags().String("format", "", "record file format: csv or json")
	cmd.Flags().Int("workers", 0, "documents scanned concurrently (default: number of CPUs)")
}

// newScanner builds the engine, reader and scanner from cfg.
func newScanner(cfg *config.Config, logger *slog.Logger) (*scan.Scanner, extract.Config, error) {
	engCfg, err := cfg.EngineConfig()
	if err != nil {
		return nil, extract.Config{}, err
	}
	eng, err := extract.New(engCfg)
	if err != nil {
		return nil, extract.Config{}, err
	}
	timeout, err := cfg.Timeout()
	if err != nil {
		return nil, extract.Config{}, err
	}

	s, err := scan.New(scan.Config{
		Engine: eng,
		Reader: source.NewReader(source.ReaderConfig{
			Retries: cfg.OpenRetries + 1,
			Logger:  logger,
		}),
		Mode:            cfg.ExtractMode(),
		Extensions:      cfg.Extensions,
		Workers:         cfg.Workers,
		DocumentTimeout: timeout,
		Logger:          logger,
	})
	if err != nil {
		return nil, extract.Config{}, err
	}
	return s, engCfg, nil
}

// runScan scans cfg.InputDir and writes the record file. An empty folder is
// reported but still produces an (empty) record file.
func runScan(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*scan.Summary, error) {
	s, engCfg, err := newScanner(cfg, logger)
	if err != nil {
		return nil, err
	}

	res, err := s.ScanDir(ctx, cfg.InputDir)
	switch {
	case errors.Is(err, scan.ErrNoDocuments):
		logger.Warn("no documents to scan", "dir", cfg.InputDir, "extensions", cfg.Extensions)
	case err != nil:
		return nil, err
	}

	if err := records.WriteFile(cfg.Output, cfg.Format, res.RunID, cfg.ExtractMode(), engCfg.MaxFields, res.Records); err != nil {
		return nil, err
	}
	logger.Info("records written", "output", cfg.Output, "format", cfg.Format, "records", len(res.Records))

	summary := res.Summary(cfg.Output)
	return &summary, nil
}

package main

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/jackzampolin/lexscan/internal/config"
	"github.com/jackzampolin/lexscan/internal/output"
	"github.com/jackzampolin/lexscan/internal/watch"
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Rescan the input folder whenever its documents change",
	Long: `Scan the input folder, then keep watching it. Adding, changing or
removing a document rescans the folder and rewrites the record file once the
folder has been quiet for a moment. Editing the config file applies the new
settings and rescans.

Stop with Ctrl+C.

Examples:
  lexscan watch --input ./lectures --mode structured`,
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := setup(cmd, scanOverrides)
		if err != nil {
			return err
		}
		cfg := e.manager.Get()

		w, err := watch.New(watch.Config{
			Dir:        cfg.InputDir,
			Extensions: cfg.Extensions,
			Logger:     e.logger,
		})
		if err != nil {
			return err
		}

		e.manager.OnChange(func(c *config.Config) {
			e.applyLevel(c)
			if c.InputDir != cfg.InputDir {
				e.logger.Warn("input_dir changes need a restart of watch", "watching", cfg.InputDir, "configured", c.InputDir)
			}
			w.Trigger("config changed")
		})
		e.manager.WatchConfig()

		return w.Run(cmd.Context(), func(ctx context.Context) error {
			current := *e.manager.Get()
			current.InputDir = cfg.InputDir
			summary, err := runScan(ctx, &current, e.logger)
			if err != nil {
				return err
			}
			return output.Print(summary)
		})
	},
}

func init() {
	addScanFlags(watchCmd)
	rootCmd.AddCommand(watchCmd)
}

package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/jackzampolin/lexscan/internal/config"
	"github.com/jackzampolin/lexscan/internal/home"
	"github.com/jackzampolin/lexscan/internal/output"
	"github.com/jackzampolin/lexscan/version"
)

var (
	cfgFile      string
	homeDir      string
	logLevel     string
	outputFormat string
)

var rootCmd = &cobra.Command{
	Use:   "lexscan",
	Short: "Extract legal terms and case explanations from course documents",
	Long: `lexscan scans a folder of PDF and text documents for legal terms, case
citations and their explanations, and writes them to a CSV or JSON record file.

Extraction works line by line:
  - Inline definitions ("Estoppel is a principle that ...")
  - Case citations ("Smith v. Jones [1998]") with the lines that follow
  - Short structured or bulleted headings with their explanation lines

A record file can then be rendered into a paginated PDF compilation.`,
	Version:       version.GitRelease,
	SilenceUsage:  true,
	SilenceErrors: false,
}

func init() {
	rootCmd.PersistentFlags().StringVar(
		&cfgFile, "config", "", "config file (default: ./lexscan.yaml or ~/.lexscan/config.yaml)",
	)
	rootCmd.PersistentFlags().StringVar(
		&homeDir, "home", "", "lexscan home directory (default: ~/.lexscan)",
	)
	rootCmd.PersistentFlags().StringVar(
		&logLevel, "log-level", "", "log level: debug, info, warn or error (overrides log_level)",
	)
	rootCmd.PersistentFlags().StringVarP(
		&outputFormat, "output-format", "o", "yaml", "output format for command results: yaml or json",
	)

	// Set output format before any command runs
	rootCmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		if _, err := output.ParseFormat(outputFormat); err != nil {
			return err
		}
		output.SetFormat(outputFormat)
		return nil
	}

	rootCmd.AddCommand(versionCmd)
}

// env is what every command needs after flags are parsed.
type env struct {
	home    *home.Dir
	manager *config.Manager
	logger  *slog.Logger
	level   *slog.LevelVar
}

// setup resolves the home directory, loads configuration, applies the
// command's flag overrides and builds the logger. overrides maps flag names
// to config keys; only flags set on the command line are applied.
func setup(cmd *cobra.Command, overrides map[string]string) (*env, error) {
	h, err := home.New(homeDir)
	if err != nil {
		return nil, err
	}

	level := new(slog.LevelVar)
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	mgr, err := config.NewManager(config.ResolvePath(cfgFile, h.ConfigPath()), logger)
	if err != nil {
		return nil, err
	}

	var setErr error
	cmd.Flags().Visit(func(f *pflag.Flag) {
		key, ok := overrides[f.Name]
		if !ok || setErr != nil {
			return
		}
		setErr = mgr.Set(key, flagValue(f))
	})
	if setErr != nil {
		return nil, setErr
	}
	if logLevel != "" {
		if err := mgr.Set("log_level", logLevel); err != nil {
			return nil, err
		}
	}

	e := &env{home: h, manager: mgr, logger: logger, level: level}
	e.applyLevel(mgr.Get())
	slog.SetDefault(logger)
	if p := mgr.Path(); p != "" {
		logger.Debug("config loaded", "file", p)
	}
	return e, nil
}

// applyLevel sets the logger level from cfg; cfg has been validated.
func (e *env) applyLevel(cfg *config.Config) {
	if lvl, err := cfg.Level(); err == nil {
		e.level.Set(lvl)
	}
}

// flagValue returns the typed value of a flag so viper stores an int as an int.
func flagValue(f *pflag.Flag) any {
	switch f.Value.Type() {
	case "int":
		var n int
		fmt.Sscan(f.Value.String(), &n)
		return n
	case "stringSlice":
		if sv, ok := f.Value.(pflag.SliceValue); ok {
			return sv.GetSlice()
		}
	}
	return f.Value.String()
}

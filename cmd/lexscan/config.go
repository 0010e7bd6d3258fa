package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/jackzampolin/lexscan/internal/config"
	"github.com/jackzampolin/lexscan/internal/home"
	"github.com/jackzampolin/lexscan/internal/output"
)

var configForce bool

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage lexscan configuration",
}

var configInitCmd = &cobra.Command{
	Use:   "init [PATH]",
	Short: "Write the default configuration file",
	Long: `Write the default configuration to PATH, or to the home directory
(~/.lexscan/config.yaml) when no path is given. An existing file is kept
unless --force is set.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		h, err := home.New(homeDir)
		if err != nil {
			return err
		}
		path := h.ConfigPath()
		if len(args) == 1 {
			path = args[0]
		} else if err := h.EnsureExists(); err != nil {
			return err
		}

		if _, err := os.Stat(path); err == nil && !configForce {
			return fmt.Errorf("%s already exists (use --force to overwrite)", path)
		}
		if err := config.WriteDefault(path); err != nil {
			return err
		}
		return output.Print(map[string]string{"config": path})
	},
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the effective configuration",
	Long: `Print the configuration after defaults, the config file and LEXSCAN_
environment variables have been applied.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := setup(cmd, nil)
		if err != nil {
			return err
		}
		cfg := e.manager.Get()
		engine, err := cfg.EngineConfig()
		if err != nil {
			return err
		}
		return output.Print(struct {
			File          string `json:"file,omitempty" yaml:"file,omitempty"`
			config.Config `yaml:",inline"`
			Resolved      any `json:"resolved_engine" yaml:"resolved_engine"`
		}{e.manager.Path(), *cfg, engine})
	},
}

func init() {
	configInitCmd.Flags().BoolVar(&configForce, "force", false, "overwrite an existing config file")
	configCmd.AddCommand(configInitCmd, configShowCmd)
	rootCmd.AddCommand(configCmd)
}

package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"coda/internal/app"
	"coda/internal/config"
	"coda/internal/logging"
)

var (
	version = "0.1.0"
	cfgFile string
	model   string
	resume  string
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "coda",
		Short: "AI coding assistant for your terminal",
		Long: `Coda is an interactive terminal assistant that pairs a remote language
model with local project awareness: it finds and ranks relevant files,
lets the model read, search and edit the project through tools, and
keeps every file edit reviewable and reversible with automatic backups.`,
		RunE:          run,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $XDG_CONFIG_HOME/coda/config.yaml)")
	rootCmd.PersistentFlags().StringVar(&model, "model", "", "model to use")
	rootCmd.PersistentFlags().StringVar(&resume, "resume", "", "resume a stored session by id, or 'latest'")

	rootCmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print the version number",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("coda version %s\n", version)
		},
	})

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func run(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	if model != "" {
		cfg.Model.Name = model
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	if cfg.Logging.ToFile {
		dir, err := config.ConfigDir()
		if err == nil {
			if err := logging.EnableFileLogging(dir, logging.Level(cfg.Logging.Level)); err != nil {
				fmt.Fprintln(os.Stderr, "warning: file logging disabled:", err)
			}
		}
	}

	workDir, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("getting working directory: %w", err)
	}

	application, err := app.New(context.Background(), cfg, workDir, resume)
	if err != nil {
		return err
	}
	return application.Run()
}

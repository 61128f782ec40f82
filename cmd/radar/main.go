package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/bossy-radar/radar/internal/config"
	"github.com/bossy-radar/radar/internal/logging"
)

var (
	// Global flags, applied over the loaded configuration
	mode     string
	dataRoot string
	apiBase  string
	logLevel string
	timeout  time.Duration

	cfg    *config.Config
	logger *zap.Logger
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "radar",
	Short: "Company lookup data service",
	Long: `radar serves company, violation and salary disclosure data either from a
live backend (dynamic mode) or from exported JSON snapshots (static mode).

Configuration comes from .env, the YAML file named by RADAR_CONFIG and the
environment. Flags override all of them.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load()
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		if mode != "" {
			cfg.Data.Mode = mode
		}
		if dataRoot != "" {
			cfg.Data.DataRoot = dataRoot
		}
		if apiBase != "" {
			cfg.Data.APIBase = apiBase
		}
		if logLevel != "" {
			cfg.Log.Level = logLevel
		}
		if timeout > 0 {
			cfg.Data.FetchTimeout = timeout
		}
		if err := cfg.Validate(); err != nil {
			return err
		}

		logger, err = logging.New(cfg.Log)
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&mode, "mode", "", "data mode: static or dynamic")
	rootCmd.PersistentFlags().StringVar(&dataRoot, "data-root", "", "snapshot directory")
	rootCmd.PersistentFlags().StringVar(&apiBase, "api-base", "", "backend origin for dynamic mode")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "DEBUG, INFO, WARN or ERROR")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", 0, "deadline for each outbound request")

	rootCmd.AddCommand(serveCmd, exportCmd, companiesCmd, profileCmd, summaryCmd, watchCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

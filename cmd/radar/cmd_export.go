package main

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/bossy-radar/radar/internal/config"
	"github.com/bossy-radar/radar/internal/datasource"
	"github.com/bossy-radar/radar/internal/snapshot"
)

var (
	exportDir         string
	exportConcurrency int
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Write the static snapshot tree from the backend",
	Long: `Reads every resource from the live backend and writes the JSON files that
static mode serves: the catalog, yearly shards and their index, the MOPS
lists, leaderboards, sync status and one profile per company.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if exportDir != "" {
			cfg.Export.OutputDir = exportDir
		}
		if exportConcurrency > 0 {
			cfg.Export.Concurrency = exportConcurrency
		}

		// The export always reads the backend, whatever mode serves the site
		dataCfg := cfg.Data
		dataCfg.Mode = config.ModeDynamic
		src, err := datasource.New(dataCfg, datasource.Deps{Notifier: cliNotifier(), Logger: logger})
		if err != nil {
			return err
		}

		stats, err := snapshot.NewExporter(src, cfg.Export, logger).Export(cmd.Context())
		if err != nil {
			logger.Error("export failed", zap.Error(err))
			return err
		}
		return printJSON(cmd.OutOrStdout(), map[string]any{
			"dir":           cfg.ExportDir(),
			"companies":     stats.Companies,
			"profiles":      stats.Profiles,
			"years":         stats.Years,
			"summary_items": stats.SummaryItems,
			"files":         stats.Files,
			"duration":      stats.Duration.String(),
		})
	},
}

func init() {
	exportCmd.Flags().StringVarP(&exportDir, "out", "o", "", "output directory (default: data root)")
	exportCmd.Flags().IntVar(&exportConcurrency, "concurrency", 0, "parallel profile downloads")
}

package commands

import (
	"conut-agent/internal/ingest"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

var ingestCmd = &cobra.Command{
	Use:   "ingest",
	Short: "Clean raw POS report exports into the processed data directory",
	Long: `Reads every CSV in the raw data directory, strips report banners,
repeated headers, and empty rows, normalizes column names, tags each row
with its source file, and writes <stem>_cleaned.csv files into the
processed data directory.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cleaned, err := ingest.IngestAll(cfg.RawDataDir, cfg.ProcessedDataDir)
		if err != nil {
			return err
		}
		log.Info().
			Int("files", len(cleaned)).
			Str("raw", cfg.RawDataDir).
			Str("processed", cfg.ProcessedDataDir).
			Msg("Ingest complete")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(ingestCmd)
}

package main

import (
	"encoding/json"
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/leadgen-cli/internal/ingest"
	"github.com/sells-group/leadgen-cli/internal/workflow"
)

var (
	importTenant    string
	importFrom      string
	importDelimiter string
)

var importCmd = &cobra.Command{
	Use:   "import",
	Short: "Import leads for a tenant from a CSV file or URL",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		opts := ingest.CSVOptions{}
		if importDelimiter != "" {
			runes := []rune(importDelimiter)
			if len(runes) != 1 {
				return eris.Errorf("delimiter must be a single character, got %q", importDelimiter)
			}
			opts.Delimiter = runes[0]
		}

		env, err := initEnv(ctx)
		if err != nil {
			return err
		}
		defer env.Close()

		rc, err := ingest.Open(ctx, importFrom)
		if err != nil {
			return err
		}
		defer rc.Close() //nolint:errcheck

		leads, err := ingest.ReadLeads(ctx, rc, opts)
		if err != nil {
			return err
		}
		if len(leads) == 0 {
			return eris.Errorf("no importable leads in %s", importFrom)
		}

		deduped := workflow.Deduplicate(leads)
		result, err := env.Saver.SaveBatch(ctx, importTenant, deduped)
		if err != nil {
			return eris.Wrap(err, "import batch")
		}

		zap.L().Info("import complete",
			zap.Int("rows", len(leads)),
			zap.Int("after_dedup", len(deduped)),
			zap.Int("leads_created", result.LeadsCreated),
			zap.Int("companies_created", result.CompaniesCreated))

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(result)
	},
}

func init() {
	importCmd.Flags().StringVar(&importTenant, "tenant", "", "tenant ID (required)")
	importCmd.Flags().StringVar(&importFrom, "from", "", "CSV file path or URL (required)")
	importCmd.Flags().StringVar(&importDelimiter, "delimiter", "", "field delimiter (default comma)")
	_ = importCmd.MarkFlagRequired("tenant")
	_ = importCmd.MarkFlagRequired("from")
	rootCmd.AddCommand(importCmd)
}

package main

import (
	"encoding/json"
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/leadgen-cli/internal/model"
	"github.com/sells-group/leadgen-cli/internal/workflow"
)

var (
	generateTenant  string
	generateMethods []string
	generateMax     int
	generateName    string
	generateNotes   string
)

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Run lead generation for a tenant",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		env, err := initEnv(ctx)
		if err != nil {
			return err
		}
		defer env.Close()

		prefs, err := env.Store.GetPreferences(ctx, generateTenant)
		if err != nil {
			return eris.Wrap(err, "load preferences")
		}
		if prefs == nil {
			zap.L().Warn("no stored preferences for tenant, using defaults",
				zap.String("tenant_id", generateTenant))
			prefs = &model.Preferences{TenantID: generateTenant}
		}

		methods, err := parseMethods(generateMethods)
		if err != nil {
			return err
		}
		if len(methods) == 0 {
			methods = prefs.EnabledMethods
		}
		if len(methods) == 0 {
			methods = model.KnownMethods
		}

		result, err := env.Engine.Run(ctx, workflow.Request{
			TenantID:     generateTenant,
			TenantName:   generateName,
			AdminNotes:   generateNotes,
			Preferences:  *prefs,
			Methods:      methods,
			MaxPerMethod: generateMax,
		})
		if err != nil {
			return eris.Wrap(err, "run workflow")
		}

		zap.L().Info("lead generation complete",
			zap.Bool("success", result.Success),
			zap.Int("leads_created", result.LeadsCreated),
			zap.Int("companies_created", result.CompaniesCreated))

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(result)
	},
}

// parseMethods validates --method values. Unknown names fail fast here; the
// workflow itself tolerates them, but a typo on the command line should not
// silently produce an empty run.
func parseMethods(names []string) ([]model.Method, error) {
	methods := make([]model.Method, 0, len(names))
	for _, name := range names {
		m := model.Method(name)
		if !m.Valid() {
			return nil, eris.Errorf("unknown method: %s", name)
		}
		methods = append(methods, m)
	}
	return methods, nil
}

func init() {
	generateCmd.Flags().StringVar(&generateTenant, "tenant", "", "tenant ID (required)")
	generateCmd.Flags().StringSliceVar(&generateMethods, "method", nil, "acquisition methods to run (default: tenant's enabled methods, else all)")
	generateCmd.Flags().IntVar(&generateMax, "max", 0, "max leads per method (default from config)")
	generateCmd.Flags().StringVar(&generateName, "tenant-name", "", "tenant display name for generative research")
	generateCmd.Flags().StringVar(&generateNotes, "notes", "", "admin notes for generative research")
	_ = generateCmd.MarkFlagRequired("tenant")
	rootCmd.AddCommand(generateCmd)
}

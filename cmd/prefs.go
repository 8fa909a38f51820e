package main

import (
	"encoding/json"
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/leadgen-cli/internal/model"
)

var (
	prefsTenant string
	prefsFile   string
)

var prefsCmd = &cobra.Command{
	Use:   "prefs",
	Short: "Manage tenant lead generation preferences",
}

var prefsGetCmd = &cobra.Command{
	Use:   "get",
	Short: "Print a tenant's stored preferences",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close()

		if err := st.Migrate(ctx); err != nil {
			return eris.Wrap(err, "migrate store")
		}

		prefs, err := st.GetPreferences(ctx, prefsTenant)
		if err != nil {
			return eris.Wrap(err, "get preferences")
		}
		if prefs == nil {
			return eris.Errorf("no preferences stored for tenant %s", prefsTenant)
		}

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(prefs)
	},
}

var prefsSetCmd = &cobra.Command{
	Use:   "set",
	Short: "Store a tenant's preferences from a JSON file",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		data, err := os.ReadFile(prefsFile)
		if err != nil {
			return eris.Wrap(err, "read preferences file")
		}

		var prefs model.Preferences
		if err := json.Unmarshal(data, &prefs); err != nil {
			return eris.Wrap(err, "parse preferences file")
		}
		prefs.TenantID = prefsTenant

		if err := validatePreferences(prefs); err != nil {
			return err
		}

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close()

		if err := st.Migrate(ctx); err != nil {
			return eris.Wrap(err, "migrate store")
		}

		if err := st.SavePreferences(ctx, prefs); err != nil {
			return eris.Wrap(err, "save preferences")
		}

		zap.L().Info("preferences saved", zap.String("tenant_id", prefsTenant))
		return nil
	},
}

// validatePreferences enforces the constraints shared with the API surface:
// experience operator must be one of >, <, = and years must be within 0-30.
func validatePreferences(prefs model.Preferences) error {
	for _, op := range []string{prefs.ExperienceOperator, prefs.LinkedInExperienceOperator} {
		switch op {
		case "", ">", "<", "=":
		default:
			return eris.Errorf("invalid experience operator: %s", op)
		}
	}
	for _, years := range []int{prefs.ExperienceYears, prefs.LinkedInExperienceYears} {
		if years < 0 || years > 30 {
			return eris.Errorf("experience years out of range: %d", years)
		}
	}
	for _, m := range prefs.EnabledMethods {
		if !m.Valid() {
			return eris.Errorf("unknown method in enabled_methods: %s", m)
		}
	}
	return nil
}

func init() {
	prefsCmd.PersistentFlags().StringVar(&prefsTenant, "tenant", "", "tenant ID (required)")
	_ = prefsCmd.MarkPersistentFlagRequired("tenant")

	prefsSetCmd.Flags().StringVar(&prefsFile, "file", "", "path to preferences JSON (required)")
	_ = prefsSetCmd.MarkFlagRequired("file")

	prefsCmd.AddCommand(prefsGetCmd, prefsSetCmd)
	rootCmd.AddCommand(prefsCmd)
}

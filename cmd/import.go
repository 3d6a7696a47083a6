package main

import (
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var importSource string

var importCmd = &cobra.Command{
	Use:   "import",
	Short: "Import candidate leads into the store without scoring",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		if err := cfg.Validate("pipeline"); err != nil {
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

		leads, err := importLeads(ctx, importSource)
		if err != nil {
			return err
		}

		imported := 0
		for i := range leads {
			if _, err := st.UpsertLead(ctx, &leads[i]); err != nil {
				zap.L().Warn("import: upsert failed",
					zap.String("business", leads[i].BusinessName),
					zap.Error(err),
				)
				continue
			}
			imported++
		}

		zap.L().Info("import complete",
			zap.String("source", importSource),
			zap.Int("imported", imported),
			zap.Int("failed", len(leads)-imported),
		)
		return nil
	},
}

func init() {
	importCmd.Flags().StringVar(&importSource, "source", "", "lead list source: local path, http(s), or ftp URL (required)")
	_ = importCmd.MarkFlagRequired("source")
	rootCmd.AddCommand(importCmd)
}

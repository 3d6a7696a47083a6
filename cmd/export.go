package main

import (
	"context"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/leadgen-cli/internal/export"
	"github.com/sells-group/leadgen-cli/internal/model"
	"github.com/sells-group/leadgen-cli/internal/store"
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Deliver stored leads to a file or CRM",
	Long: `Export stored leads to csv, jsonl, xlsx, notion, or salesforce.

Examples:
  # Top 50 A+ leads to a spreadsheet
  export --grade A+ --limit 50 --format xlsx --output top.xlsx

  # Everything scoring 70+ into Salesforce
  export --min-score 70 --format salesforce`,
	RunE: runExportCmd,
}

func init() {
	f := exportCmd.Flags()
	f.String("format", "", "export format (default from config)")
	f.String("output", "", "output file path for file formats (default from config)")
	f.String("grade", "", "only export leads with this grade")
	f.Int("min-score", -1, "only export leads scoring at least this")
	f.String("category", "", "only export leads in this category")
	f.Int("limit", 0, "maximum number of leads (0 = no limit)")

	rootCmd.AddCommand(exportCmd)
}

func runExportCmd(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	if format, _ := cmd.Flags().GetString("format"); format != "" {
		cfg.Export.Format = format
	}
	if output, _ := cmd.Flags().GetString("output"); output != "" {
		cfg.Export.Path = output
	}
	if err := cfg.Validate("export"); err != nil {
		return err
	}
	if err := cfg.Validate("pipeline"); err != nil {
		return err
	}

	st, err := initStore(ctx)
	if err != nil {
		return err
	}
	defer st.Close()

	filter := store.LeadFilter{}
	if g, _ := cmd.Flags().GetString("grade"); g != "" {
		filter.Grade = model.Grade(g)
	}
	if min, _ := cmd.Flags().GetInt("min-score"); min >= 0 {
		filter.MinScore = &min
	}
	filter.Category, _ = cmd.Flags().GetString("category")
	filter.Limit, _ = cmd.Flags().GetInt("limit")

	leads, err := st.ListLeads(ctx, filter)
	if err != nil {
		return eris.Wrap(err, "export: list leads")
	}

	sink, cleanup, err := buildSink(cfg.Export.Format, cfg.Export.Path)
	if err != nil {
		return err
	}
	defer cleanup()

	exported, err := exportLeads(ctx, sink, leads)
	if err != nil {
		return err
	}

	zap.L().Info("export complete",
		zap.String("format", cfg.Export.Format),
		zap.Int("exported", exported),
		zap.Int("failed", len(leads)-exported),
	)
	return nil
}

// exportLeads emits every lead to the sink and flushes. A failing lead is
// logged and skipped so one bad record cannot abort a CRM batch.
func exportLeads(ctx context.Context, sink export.Sink, leads []model.Lead) (int, error) {
	exported := 0
	for i := range leads {
		if err := sink.Emit(ctx, &leads[i]); err != nil {
			zap.L().Warn("export: emit failed",
				zap.String("sink", sink.Name()),
				zap.String("business", leads[i].BusinessName),
				zap.Error(err),
			)
			continue
		}
		exported++
	}

	if err := sink.Flush(ctx); err != nil {
		return exported, eris.Wrapf(err, "export: flush %s", sink.Name())
	}
	return exported, nil
}

package main

import (
	"encoding/json"
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/leadgen-cli/internal/icp"
	"github.com/sells-group/leadgen-cli/internal/pipeline"
)

var (
	runSource  string
	runWorkers int
	runExport  bool
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the full pipeline: import, resolve, score, export",
	RunE: func(cmd *cobra.Command, args []string) error {
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

		profile, err := icp.LoadFile(cfg.ICP.Path)
		if err != nil {
			return err
		}

		leads, err := importLeads(ctx, runSource)
		if err != nil {
			return err
		}

		territory, err := buildTerritory()
		if err != nil {
			return err
		}

		opts := []pipeline.Option{
			pipeline.WithResolver(buildResolver()),
			pipeline.WithTerritory(territory),
			pipeline.WithWorkers(cfg.Pipeline.Workers),
		}
		if runWorkers > 0 {
			opts = append(opts, pipeline.WithWorkers(runWorkers))
		}

		if runExport {
			if err := cfg.Validate("export"); err != nil {
				return err
			}
			sink, cleanup, err := buildSink(cfg.Export.Format, cfg.Export.Path)
			if err != nil {
				return err
			}
			defer cleanup()
			opts = append(opts, pipeline.WithSink(sink))
		}

		p := pipeline.New(st, profile, opts...)

		stats, err := p.Run(ctx, leads)
		if err != nil {
			return eris.Wrap(err, "pipeline run")
		}

		zap.L().Info("run complete",
			zap.String("source", runSource),
			zap.Int("total", stats.Total),
			zap.Int("scored", stats.Scored),
			zap.Int("resolved", stats.Resolved),
		)

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(stats)
	},
}

func init() {
	runCmd.Flags().StringVar(&runSource, "source", "", "lead list source: local path, http(s), or ftp URL (required)")
	runCmd.Flags().IntVar(&runWorkers, "workers", 0, "concurrent workers (default from config)")
	runCmd.Flags().BoolVar(&runExport, "export", false, "deliver scored leads to the configured export target")
	_ = runCmd.MarkFlagRequired("source")
	rootCmd.AddCommand(runCmd)
}

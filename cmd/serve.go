package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/leadgen-cli/internal/icp"
	"github.com/sells-group/leadgen-cli/internal/model"
	"github.com/sells-group/leadgen-cli/internal/pipeline"
	"github.com/sells-group/leadgen-cli/internal/scorer"
)

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start webhook server for scoring and enrichment requests",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		if err := cfg.Validate("serve"); err != nil {
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

		if err := st.Migrate(ctx); err != nil {
			return eris.Wrap(err, "migrate store")
		}

		profile, err := icp.LoadFile(cfg.ICP.Path)
		if err != nil {
			return err
		}

		territory, err := buildTerritory()
		if err != nil {
			return err
		}

		p := pipeline.New(st, profile,
			pipeline.WithResolver(buildResolver()),
			pipeline.WithTerritory(territory),
			pipeline.WithWorkers(cfg.Pipeline.Workers),
		)

		mux := serveMux(ctx, profile, p)

		port := servePort
		if port == 0 {
			port = cfg.Server.Port
		}

		srv := &http.Server{
			Addr:    fmt.Sprintf(":%d", port),
			Handler: mux,
		}

		// Graceful shutdown
		go func() {
			<-ctx.Done()
			zap.L().Info("shutting down server")
			srv.Shutdown(ctx)
		}()

		zap.L().Info("starting server", zap.Int("port", port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return eris.Wrap(err, "server listen")
		}

		return nil
	},
}

// serveMux builds the webhook routes. Split out so handler behavior is
// testable without binding a port.
func serveMux(ctx context.Context, profile *icp.Profile, p *pipeline.Pipeline) *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
	})

	// Synchronous: score the posted lead and return it with score fields set.
	// Nothing is persisted.
	mux.HandleFunc("POST /webhook/score", func(w http.ResponseWriter, r *http.Request) {
		var lead model.Lead
		if err := json.NewDecoder(r.Body).Decode(&lead); err != nil {
			http.Error(w, `{"error":"invalid request body"}`, http.StatusBadRequest)
			return
		}
		if lead.BusinessName == "" {
			http.Error(w, `{"error":"businessName is required"}`, http.StatusBadRequest)
			return
		}

		result := scorer.Score(&lead, profile)
		lead.ApplyScore(result)

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(lead)
	})

	// Asynchronous: run the posted lead through the full pipeline.
	mux.HandleFunc("POST /webhook/enrich", func(w http.ResponseWriter, r *http.Request) {
		var lead model.Lead
		if err := json.NewDecoder(r.Body).Decode(&lead); err != nil {
			http.Error(w, `{"error":"invalid request body"}`, http.StatusBadRequest)
			return
		}
		if lead.BusinessName == "" {
			http.Error(w, `{"error":"businessName is required"}`, http.StatusBadRequest)
			return
		}

		go func() {
			stats, err := p.Run(ctx, []model.Lead{lead})
			if err != nil {
				zap.L().Error("webhook enrichment failed",
					zap.String("business", lead.BusinessName),
					zap.Error(err),
				)
				return
			}
			zap.L().Info("webhook enrichment complete",
				zap.String("business", lead.BusinessName),
				zap.Int("scored", stats.Scored),
			)
		}()

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusAccepted)
		json.NewEncoder(w).Encode(map[string]string{
			"status":   "accepted",
			"business": lead.BusinessName,
		})
	})

	return mux
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "server port (default from config)")
	rootCmd.AddCommand(serveCmd)
}

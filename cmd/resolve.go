package main

import (
	"encoding/json"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var resolveURL string

// resolveCmd is a debugging aid: run contact resolution against one website
// and dump whatever it finds.
var resolveCmd = &cobra.Command{
	Use:   "resolve",
	Short: "Resolve contact details from a single website",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		r := buildResolver()
		result := r.Resolve(ctx, resolveURL)

		zap.L().Info("resolution complete",
			zap.String("website", resolveURL),
			zap.Int("pages_visited", result.PagesVisited),
			zap.Bool("email_found", result.Email != nil),
			zap.Int("social_links", result.SocialLinks.Count()),
		)

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(result)
	},
}

func init() {
	resolveCmd.Flags().StringVar(&resolveURL, "url", "", "website URL (required)")
	_ = resolveCmd.MarkFlagRequired("url")
	rootCmd.AddCommand(resolveCmd)
}

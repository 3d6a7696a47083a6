package main

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/leadgen-cli/internal/icp"
	"github.com/sells-group/leadgen-cli/internal/model"
	"github.com/sells-group/leadgen-cli/internal/scorer"
	"github.com/sells-group/leadgen-cli/internal/store"
)

var scoreCmd = &cobra.Command{
	Use:   "score",
	Short: "Score leads against the ideal customer profile",
	Long: `Score leads against the ICP defined in icp.yaml.

By default scores leads already in the store, optionally filtered by
category or a previous grade. With --source, scores a CSV/XLSX file
directly without touching the store.

Examples:
  # Re-score everything in the store and persist the results
  score --save

  # Preview scores for one category
  score --category Plumbing --format table

  # Score a file without importing it
  score --source leads.csv --format csv --output scored.csv`,
	RunE: runScore,
}

func init() {
	f := scoreCmd.Flags()
	f.String("source", "", "score a CSV/XLSX file instead of stored leads")
	f.String("category", "", "only score stored leads in this category")
	f.String("grade", "", "only score stored leads with this current grade")
	f.Int("limit", 0, "maximum number of leads to score (0 = no limit)")
	f.String("format", "table", "output format: table or csv")
	f.String("output", "", "output file path (default: stdout)")
	f.Bool("save", false, "persist scores to the store (stored leads only)")

	rootCmd.AddCommand(scoreCmd)
}

func runScore(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	source, _ := cmd.Flags().GetString("source")
	format, _ := cmd.Flags().GetString("format")
	outputPath, _ := cmd.Flags().GetString("output")
	save, _ := cmd.Flags().GetBool("save")

	if format != "table" && format != "csv" {
		return eris.Errorf("score: --format must be table or csv (got %q)", format)
	}

	profile, err := icp.LoadFile(cfg.ICP.Path)
	if err != nil {
		return err
	}

	var leads []model.Lead
	var st store.Store

	if source != "" {
		leads, err = importLeads(ctx, source)
		if err != nil {
			return err
		}
	} else {
		if err := cfg.Validate("pipeline"); err != nil {
			return err
		}
		st, err = initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close()

		if err := st.Migrate(ctx); err != nil {
			return eris.Wrap(err, "migrate store")
		}

		filter := store.LeadFilter{}
		filter.Category, _ = cmd.Flags().GetString("category")
		if g, _ := cmd.Flags().GetString("grade"); g != "" {
			filter.Grade = model.Grade(g)
		}
		filter.Limit, _ = cmd.Flags().GetInt("limit")

		leads, err = st.ListLeads(ctx, filter)
		if err != nil {
			return eris.Wrap(err, "score: list leads")
		}
	}

	if len(leads) == 0 {
		fmt.Println("No leads to score.")
		return nil
	}

	configHash := scorer.ProfileHash(profile)
	for i := range leads {
		lead := &leads[i]
		result := scorer.Score(lead, profile)
		lead.ApplyScore(result)

		if save && st != nil && lead.ID != "" {
			if err := st.SaveScore(ctx, lead.ID, result, configHash); err != nil {
				zap.L().Warn("score: save failed",
					zap.String("business", lead.BusinessName),
					zap.Error(err),
				)
			}
		}
	}

	zap.L().Info("scoring complete",
		zap.Int("total", len(leads)),
		zap.Bool("saved", save && st != nil),
	)

	if err := outputLeadScores(leads, format, outputPath); err != nil {
		return err
	}
	printGradeSummary(leads)
	return nil
}

func outputLeadScores(leads []model.Lead, format, outputPath string) error {
	var w *os.File
	if outputPath != "" {
		var err error
		w, err = os.Create(outputPath)
		if err != nil {
			return eris.Wrapf(err, "score: create output file %s", outputPath)
		}
		defer w.Close() //nolint:errcheck
	} else {
		w = os.Stdout
	}

	switch format {
	case "csv":
		return writeLeadCSV(w, leads)
	case "table":
		return writeLeadTable(w, leads)
	default:
		return eris.Errorf("score: unsupported format %q", format)
	}
}

func writeLeadCSV(w *os.File, leads []model.Lead) error {
	cw := csv.NewWriter(w)
	defer cw.Flush()

	header := []string{"business_name", "category", "website", "score", "grade"}
	if err := cw.Write(header); err != nil {
		return eris.Wrap(err, "score: write CSV header")
	}

	for _, l := range leads {
		row := []string{
			l.BusinessName,
			strDeref(l.Category),
			strDeref(l.Website),
			scoreString(l.LeadScore),
			gradeString(l.LeadGrade),
		}
		if err := cw.Write(row); err != nil {
			return eris.Wrap(err, "score: write CSV row")
		}
	}
	return nil
}

func writeLeadTable(w *os.File, leads []model.Lead) error {
	header := fmt.Sprintf("%-40s %-20s %6s %6s\n", "Business", "Category", "Score", "Grade")
	if _, err := fmt.Fprint(w, header); err != nil {
		return eris.Wrap(err, "score: write table header")
	}
	if _, err := fmt.Fprintln(w, strings.Repeat("-", 75)); err != nil {
		return eris.Wrap(err, "score: write table separator")
	}

	for _, l := range leads {
		name := l.BusinessName
		if len(name) > 40 {
			name = name[:37] + "..."
		}
		line := fmt.Sprintf("%-40s %-20s %6s %6s\n",
			name, strDeref(l.Category), scoreString(l.LeadScore), gradeString(l.LeadGrade))
		if _, err := fmt.Fprint(w, line); err != nil {
			return eris.Wrap(err, "score: write table row")
		}
	}
	return nil
}

func printGradeSummary(leads []model.Lead) {
	if len(leads) == 0 {
		return
	}

	byGrade := make(map[model.Grade]int)
	var sum, scored int
	for _, l := range leads {
		if l.LeadScore == nil || l.LeadGrade == nil {
			continue
		}
		scored++
		sum += *l.LeadScore
		byGrade[*l.LeadGrade]++
	}
	if scored == 0 {
		return
	}

	fmt.Printf("\n--- Summary ---\n")
	fmt.Printf("Total scored:  %d\n", scored)
	fmt.Printf("Average score: %.1f\n", float64(sum)/float64(scored))
	for _, g := range model.AllGrades() {
		if n := byGrade[g]; n > 0 {
			fmt.Printf("  %-3s %d\n", g, n)
		}
	}
}

func strDeref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func scoreString(score *int) string {
	if score == nil {
		return ""
	}
	return strconv.Itoa(*score)
}

func gradeString(g *model.Grade) string {
	if g == nil {
		return ""
	}
	return string(*g)
}

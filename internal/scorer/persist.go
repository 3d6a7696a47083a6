package scorer

import (
	"context"
	"crypto/sha256"
	"encoding/json"
	"fmt"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/leadgen-cli/internal/icp"
	"github.com/sells-group/leadgen-cli/internal/model"
)

// ScoreSaver is the slice of the store the scorer needs for persistence.
type ScoreSaver interface {
	SaveScore(ctx context.Context, leadID string, result model.ScoreResult, configHash string) error
}

// SaveAll persists score results for the given leads. Leads without an ID
// (not yet stored) are skipped. The profile hash is recorded with each row
// so historical scores remain attributable to the ICP that produced them.
func SaveAll(ctx context.Context, saver ScoreSaver, leads []model.Lead, profile *icp.Profile) error {
	hash := ProfileHash(profile)
	var saved int
	for i := range leads {
		l := &leads[i]
		if l.ID == "" || l.LeadScore == nil || l.LeadGrade == nil || l.ScoreBreakdown == nil {
			continue
		}
		result := model.ScoreResult{
			Score:     *l.LeadScore,
			Grade:     *l.LeadGrade,
			Breakdown: *l.ScoreBreakdown,
		}
		if err := saver.SaveScore(ctx, l.ID, result, hash); err != nil {
			return eris.Wrapf(err, "scorer: save score for lead %s", l.ID)
		}
		saved++
	}

	zap.L().Info("scorer: saved scores",
		zap.Int("count", saved),
		zap.String("config_hash", hash),
	)
	return nil
}

// ProfileHash returns a short SHA-256 hash of the profile for
// reproducibility tracking. An unmarshalable or nil profile hashes to "".
func ProfileHash(profile *icp.Profile) string {
	if profile == nil {
		return ""
	}
	data, err := json.Marshal(profile)
	if err != nil {
		return ""
	}
	h := sha256.Sum256(data)
	return fmt.Sprintf("%x", h[:16])
}

package scorer

import (
	"context"
	"testing"

	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/leadgen-cli/internal/icp"
	"github.com/sells-group/leadgen-cli/internal/model"
)

type savedScore struct {
	leadID     string
	result     model.ScoreResult
	configHash string
}

type fakeSaver struct {
	saved []savedScore
	err   error
}

func (f *fakeSaver) SaveScore(_ context.Context, leadID string, result model.ScoreResult, configHash string) error {
	if f.err != nil {
		return f.err
	}
	f.saved = append(f.saved, savedScore{leadID, result, configHash})
	return nil
}

func scoredLead(id string, score int) model.Lead {
	lead := model.Lead{ID: id}
	lead.ApplyScore(model.ScoreResult{
		Score:     score,
		Grade:     GradeFor(score),
		Breakdown: model.ScoreBreakdown{DataQuality: score},
	})
	return lead
}

func TestSaveAll(t *testing.T) {
	profile := &icp.Profile{Industries: icp.Dimension{Legacy: []string{"plumbing"}}}
	leads := []model.Lead{
		scoredLead("lead-1", 88),
		{ID: "lead-2"},           // never scored, skipped
		scoredLead("", 70),       // not stored, skipped
		scoredLead("lead-3", 42),
	}

	saver := &fakeSaver{}
	require.NoError(t, SaveAll(context.Background(), saver, leads, profile))

	require.Len(t, saver.saved, 2)
	assert.Equal(t, "lead-1", saver.saved[0].leadID)
	assert.Equal(t, 88, saver.saved[0].result.Score)
	assert.Equal(t, model.GradeAPlus, saver.saved[0].result.Grade)
	assert.Equal(t, "lead-3", saver.saved[1].leadID)

	wantHash := ProfileHash(profile)
	assert.Equal(t, wantHash, saver.saved[0].configHash)
	assert.Equal(t, wantHash, saver.saved[1].configHash)
}

func TestSaveAllPropagatesError(t *testing.T) {
	saver := &fakeSaver{err: eris.New("connection reset")}
	err := SaveAll(context.Background(), saver, []model.Lead{scoredLead("lead-1", 50)}, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "lead-1")
}

func TestProfileHash(t *testing.T) {
	assert.Empty(t, ProfileHash(nil))

	a := &icp.Profile{Industries: icp.Dimension{Legacy: []string{"hvac"}}}
	b := &icp.Profile{Industries: icp.Dimension{Legacy: []string{"hvac"}}}
	c := &icp.Profile{Industries: icp.Dimension{Legacy: []string{"retail"}}}

	assert.Len(t, ProfileHash(a), 32)
	assert.Equal(t, ProfileHash(a), ProfileHash(b))
	assert.NotEqual(t, ProfileHash(a), ProfileHash(c))
}

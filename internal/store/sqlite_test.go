package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/leadgen-cli/internal/model"
)

func newTestSQLite(t *testing.T) *SQLiteStore {
	t.Helper()
	s, err := NewSQLite(filepath.Join(t.TempDir(), "leads.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	require.NoError(t, s.Migrate(context.Background()))
	return s
}

func strp(s string) *string     { return &s }
func boolp(b bool) *bool        { return &b }
func intp(n int) *int           { return &n }
func floatp(f float64) *float64 { return &f }

func sampleLead() *model.Lead {
	return &model.Lead{
		BusinessName: "Acme Plumbing",
		Email:        strp("info@acmeplumbing.com"),
		EmailValid:   boolp(true),
		Phone:        strp("512-555-0100"),
		Website:      strp("https://acmeplumbing.com"),
		Address:      strp("500 Congress Ave, Austin, TX"),
		Category:     strp("Plumbing"),
		Rating:       floatp(4.7),
		ReviewCount:  intp(134),
		Claimed:      true,
		SocialLinks:  model.SocialLinks{LinkedIn: strp("https://linkedin.com/company/acme")},
		Reviews:      []model.Review{{Rating: 5, Text: "great", Author: "Sam", Date: "2026-01-12"}},
	}
}

func TestSQLiteUpsertAndGet(t *testing.T) {
	s := newTestSQLite(t)
	ctx := context.Background()

	id, err := s.UpsertLead(ctx, sampleLead())
	require.NoError(t, err)
	require.NotEmpty(t, id)

	got, err := s.GetLead(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "Acme Plumbing", got.BusinessName)
	require.NotNil(t, got.Email)
	assert.Equal(t, "info@acmeplumbing.com", *got.Email)
	require.NotNil(t, got.EmailValid)
	assert.True(t, *got.EmailValid)
	require.NotNil(t, got.Website)
	assert.True(t, got.Claimed)
	require.NotNil(t, got.SocialLinks.LinkedIn)
	require.Len(t, got.Reviews, 1)
	assert.Equal(t, "Sam", got.Reviews[0].Author)
	assert.Nil(t, got.LeadScore)
}

func TestSQLiteUpsertSameBusinessUpdates(t *testing.T) {
	s := newTestSQLite(t)
	ctx := context.Background()

	first, err := s.UpsertLead(ctx, sampleLead())
	require.NoError(t, err)

	updated := sampleLead()
	updated.Email = strp("sales@acmeplumbing.com")
	second, err := s.UpsertLead(ctx, updated)
	require.NoError(t, err)
	assert.Equal(t, first, second)

	got, err := s.GetLead(ctx, first)
	require.NoError(t, err)
	assert.Equal(t, "sales@acmeplumbing.com", *got.Email)

	leads, err := s.ListLeads(ctx, LeadFilter{})
	require.NoError(t, err)
	assert.Len(t, leads, 1)
}

func TestSQLiteNilFieldsRoundTrip(t *testing.T) {
	s := newTestSQLite(t)
	ctx := context.Background()

	id, err := s.UpsertLead(ctx, &model.Lead{BusinessName: "Bare Minimum Bakery"})
	require.NoError(t, err)

	got, err := s.GetLead(ctx, id)
	require.NoError(t, err)
	assert.Nil(t, got.Email)
	assert.Nil(t, got.EmailValid)
	assert.Nil(t, got.Website)
	assert.Nil(t, got.Rating)
	assert.False(t, got.Claimed)
	assert.Equal(t, 0, got.SocialLinks.Count())
	assert.Empty(t, got.Reviews)
}

func TestSQLiteGetLeadNotFound(t *testing.T) {
	s := newTestSQLite(t)
	_, err := s.GetLead(context.Background(), "missing-id")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
}

func TestSQLiteSaveScoreAndLatestWins(t *testing.T) {
	s := newTestSQLite(t)
	ctx := context.Background()

	id, err := s.UpsertLead(ctx, sampleLead())
	require.NoError(t, err)

	older := model.ScoreResult{
		Score: 61, Grade: model.GradeC,
		Breakdown: model.ScoreBreakdown{DataQuality: 20, Engagement: 10, Firmographic: 31},
	}
	require.NoError(t, s.SaveScore(ctx, id, older, "hash-a"))

	newer := model.ScoreResult{
		Score: 88, Grade: model.GradeAPlus,
		Breakdown: model.ScoreBreakdown{DataQuality: 35, Engagement: 13, Firmographic: 40},
	}
	require.NoError(t, s.SaveScore(ctx, id, newer, "hash-b"))

	got, err := s.GetLead(ctx, id)
	require.NoError(t, err)
	require.NotNil(t, got.LeadScore)
	assert.Equal(t, 88, *got.LeadScore)
	require.NotNil(t, got.LeadGrade)
	assert.Equal(t, model.GradeAPlus, *got.LeadGrade)
	require.NotNil(t, got.ScoreBreakdown)
	assert.Equal(t, 35, got.ScoreBreakdown.DataQuality)
}

func TestSQLiteListLeadsFilters(t *testing.T) {
	s := newTestSQLite(t)
	ctx := context.Background()

	plumber := sampleLead()
	plumberID, err := s.UpsertLead(ctx, plumber)
	require.NoError(t, err)
	require.NoError(t, s.SaveScore(ctx, plumberID, model.ScoreResult{
		Score: 88, Grade: model.GradeAPlus,
		Breakdown: model.ScoreBreakdown{DataQuality: 35, Engagement: 13, Firmographic: 40},
	}, ""))

	bakery := &model.Lead{BusinessName: "Bayside Bakery", Category: strp("Bakery")}
	bakeryID, err := s.UpsertLead(ctx, bakery)
	require.NoError(t, err)
	require.NoError(t, s.SaveScore(ctx, bakeryID, model.ScoreResult{
		Score: 42, Grade: model.GradeF,
		Breakdown: model.ScoreBreakdown{DataQuality: 15, Engagement: 5, Firmographic: 22},
	}, ""))

	all, err := s.ListLeads(ctx, LeadFilter{})
	require.NoError(t, err)
	assert.Len(t, all, 2)

	aPlus, err := s.ListLeads(ctx, LeadFilter{Grade: model.GradeAPlus})
	require.NoError(t, err)
	require.Len(t, aPlus, 1)
	assert.Equal(t, "Acme Plumbing", aPlus[0].BusinessName)

	highScore, err := s.ListLeads(ctx, LeadFilter{MinScore: intp(50)})
	require.NoError(t, err)
	require.Len(t, highScore, 1)

	bakers, err := s.ListLeads(ctx, LeadFilter{Category: "bak"})
	require.NoError(t, err)
	require.Len(t, bakers, 1)
	assert.Equal(t, "Bayside Bakery", bakers[0].BusinessName)

	limited, err := s.ListLeads(ctx, LeadFilter{Limit: 1})
	require.NoError(t, err)
	assert.Len(t, limited, 1)
}

// Package store persists leads and their score history in Postgres or
// SQLite. SQLite is the zero-infrastructure default; Postgres is for shared
// deployments.
package store

import (
	"context"

	"github.com/sells-group/leadgen-cli/internal/model"
)

// LeadFilter specifies criteria for listing leads.
type LeadFilter struct {
	Grade    model.Grade `json:"grade,omitempty"`
	MinScore *int        `json:"min_score,omitempty"`
	Category string      `json:"category,omitempty"`
	Limit    int         `json:"limit,omitempty"`
	Offset   int         `json:"offset,omitempty"`
}

// Store defines the persistence interface for the lead pipeline.
type Store interface {
	// UpsertLead inserts the lead or updates the existing row matching the
	// same business name and website. Returns the lead's stored ID.
	UpsertLead(ctx context.Context, lead *model.Lead) (string, error)
	GetLead(ctx context.Context, id string) (*model.Lead, error)
	ListLeads(ctx context.Context, filter LeadFilter) ([]model.Lead, error)

	// SaveScore appends a score history row for the lead. The config hash
	// ties the score to the ICP that produced it.
	SaveScore(ctx context.Context, leadID string, result model.ScoreResult, configHash string) error

	// Lifecycle
	Migrate(ctx context.Context) error
	Close() error
}

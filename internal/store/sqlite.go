package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"

	"github.com/sells-group/leadgen-cli/internal/model"
)

// SQLiteStore implements Store using modernc.org/sqlite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLite opens a SQLite database at the given path and configures WAL mode.
func NewSQLite(dsn string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: open")
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
		"PRAGMA foreign_keys=ON",
	} {
		if _, err := db.Exec(pragma); err != nil {
			_ = db.Close()
			return nil, eris.Wrapf(err, "sqlite: exec %s", pragma)
		}
	}
	return &SQLiteStore{db: db}, nil
}

// website is stored as '' (never NULL) so the uniqueness constraint treats
// two rows with the same name and no website as the same business.
const sqliteMigration = `
CREATE TABLE IF NOT EXISTS leads (
	id             TEXT PRIMARY KEY,
	business_name  TEXT NOT NULL,
	google_maps_url TEXT NOT NULL DEFAULT '',
	email          TEXT,
	email_valid    INTEGER,
	phone          TEXT,
	phone_valid    INTEGER,
	website        TEXT NOT NULL DEFAULT '',
	address        TEXT,
	category       TEXT,
	rating         REAL,
	review_count   INTEGER,
	claimed        INTEGER NOT NULL DEFAULT 0,
	employee_count INTEGER,
	latitude       REAL,
	longitude      REAL,
	social_links   TEXT NOT NULL DEFAULT '{}',
	reviews        TEXT,
	created_at     DATETIME NOT NULL DEFAULT (datetime('now')),
	updated_at     DATETIME NOT NULL DEFAULT (datetime('now')),
	UNIQUE (business_name, website)
);

CREATE TABLE IF NOT EXISTS lead_scores (
	id           TEXT PRIMARY KEY,
	lead_id      TEXT NOT NULL REFERENCES leads(id),
	score        INTEGER NOT NULL,
	grade        TEXT NOT NULL,
	data_quality INTEGER NOT NULL,
	engagement   INTEGER NOT NULL,
	firmographic INTEGER NOT NULL,
	config_hash  TEXT NOT NULL DEFAULT '',
	scored_at    DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE INDEX IF NOT EXISTS idx_leads_category ON leads(category);
CREATE INDEX IF NOT EXISTS idx_lead_scores_lead_id ON lead_scores(lead_id);
`

func (s *SQLiteStore) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, sqliteMigration)
	return eris.Wrap(err, "sqlite: migrate")
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) UpsertLead(ctx context.Context, lead *model.Lead) (string, error) {
	socialJSON, reviewsJSON, err := marshalLeadJSON(lead)
	if err != nil {
		return "", eris.Wrap(err, "sqlite: marshal lead")
	}

	id := lead.ID
	if id == "" {
		id = uuid.New().String()
	}
	now := time.Now().UTC()

	row := s.db.QueryRowContext(ctx, `
		INSERT INTO leads (
			id, business_name, google_maps_url, email, email_valid,
			phone, phone_valid, website, address, category,
			rating, review_count, claimed, employee_count, latitude, longitude,
			social_links, reviews, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (business_name, website) DO UPDATE SET
			google_maps_url = excluded.google_maps_url,
			email           = excluded.email,
			email_valid     = excluded.email_valid,
			phone           = excluded.phone,
			phone_valid     = excluded.phone_valid,
			address         = excluded.address,
			category        = excluded.category,
			rating          = excluded.rating,
			review_count    = excluded.review_count,
			claimed         = excluded.claimed,
			employee_count  = excluded.employee_count,
			latitude        = excluded.latitude,
			longitude       = excluded.longitude,
			social_links    = excluded.social_links,
			reviews         = excluded.reviews,
			updated_at      = excluded.updated_at
		RETURNING id`,
		id, lead.BusinessName, lead.GoogleMapsURL, lead.Email, lead.EmailValid,
		lead.Phone, lead.PhoneValid, websiteKey(lead), lead.Address, lead.Category,
		lead.Rating, lead.ReviewCount, lead.Claimed, lead.EmployeeCount, lead.Latitude, lead.Longitude,
		socialJSON, reviewsJSON, now, now,
	)

	var storedID string
	if err := row.Scan(&storedID); err != nil {
		return "", eris.Wrapf(err, "sqlite: upsert lead %s", lead.BusinessName)
	}
	return storedID, nil
}

const sqliteLeadColumns = `
	l.id, l.business_name, l.google_maps_url, l.email, l.email_valid,
	l.phone, l.phone_valid, l.website, l.address, l.category,
	l.rating, l.review_count, l.claimed, l.employee_count, l.latitude, l.longitude,
	l.social_links, l.reviews,
	s.score, s.grade, s.data_quality, s.engagement, s.firmographic`

const sqliteLatestScoreJoin = `
	LEFT JOIN lead_scores s ON s.id = (
		SELECT id FROM lead_scores WHERE lead_id = l.id
		ORDER BY scored_at DESC LIMIT 1
	)`

func (s *SQLiteStore) GetLead(ctx context.Context, id string) (*model.Lead, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+sqliteLeadColumns+` FROM leads l`+sqliteLatestScoreJoin+` WHERE l.id = ?`,
		id,
	)
	lead, err := scanLead(row)
	if err == sql.ErrNoRows {
		return nil, eris.Errorf("sqlite: lead not found: %s", id)
	}
	if err != nil {
		return nil, eris.Wrapf(err, "sqlite: get lead %s", id)
	}
	return lead, nil
}

func (s *SQLiteStore) ListLeads(ctx context.Context, filter LeadFilter) ([]model.Lead, error) {
	query := `SELECT ` + sqliteLeadColumns + ` FROM leads l` + sqliteLatestScoreJoin + ` WHERE 1=1`
	var args []any

	if filter.Grade != "" {
		query += ` AND s.grade = ?`
		args = append(args, string(filter.Grade))
	}
	if filter.MinScore != nil {
		query += ` AND s.score >= ?`
		args = append(args, *filter.MinScore)
	}
	if filter.Category != "" {
		query += ` AND l.category LIKE ?`
		args = append(args, "%"+filter.Category+"%")
	}

	query += ` ORDER BY l.created_at, l.id`
	if filter.Limit > 0 {
		query += ` LIMIT ?`
		args = append(args, filter.Limit)
	}
	if filter.Offset > 0 {
		query += ` OFFSET ?`
		args = append(args, filter.Offset)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list leads")
	}
	defer rows.Close()

	var leads []model.Lead
	for rows.Next() {
		lead, err := scanLead(rows)
		if err != nil {
			return nil, eris.Wrap(err, "sqlite: scan lead")
		}
		leads = append(leads, *lead)
	}
	return leads, eris.Wrap(rows.Err(), "sqlite: list leads")
}

func (s *SQLiteStore) SaveScore(ctx context.Context, leadID string, result model.ScoreResult, configHash string) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO lead_scores (id, lead_id, score, grade, data_quality, engagement, firmographic, config_hash, scored_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		uuid.New().String(), leadID, result.Score, string(result.Grade),
		result.Breakdown.DataQuality, result.Breakdown.Engagement, result.Breakdown.Firmographic,
		configHash, time.Now().UTC(),
	)
	return eris.Wrapf(err, "sqlite: save score for lead %s", leadID)
}

type scannable interface {
	Scan(dest ...any) error
}

// scanLead reads one row in sqliteLeadColumns order.
func scanLead(row scannable) (*model.Lead, error) {
	var (
		lead        model.Lead
		website     string
		socialJSON  string
		reviewsJSON sql.NullString
		score       sql.NullInt64
		grade       sql.NullString
		dataQuality sql.NullInt64
		engagement  sql.NullInt64
		firmo       sql.NullInt64
	)

	err := row.Scan(
		&lead.ID, &lead.BusinessName, &lead.GoogleMapsURL, &lead.Email, &lead.EmailValid,
		&lead.Phone, &lead.PhoneValid, &website, &lead.Address, &lead.Category,
		&lead.Rating, &lead.ReviewCount, &lead.Claimed, &lead.EmployeeCount, &lead.Latitude, &lead.Longitude,
		&socialJSON, &reviewsJSON,
		&score, &grade, &dataQuality, &engagement, &firmo,
	)
	if err != nil {
		return nil, err
	}

	if website != "" {
		lead.Website = &website
	}
	if err := json.Unmarshal([]byte(socialJSON), &lead.SocialLinks); err != nil {
		return nil, eris.Wrap(err, "unmarshal social links")
	}
	if reviewsJSON.Valid && reviewsJSON.String != "" {
		if err := json.Unmarshal([]byte(reviewsJSON.String), &lead.Reviews); err != nil {
			return nil, eris.Wrap(err, "unmarshal reviews")
		}
	}

	if score.Valid && grade.Valid {
		lead.ApplyScore(model.ScoreResult{
			Score: int(score.Int64),
			Grade: model.Grade(grade.String),
			Breakdown: model.ScoreBreakdown{
				DataQuality:  int(dataQuality.Int64),
				Engagement:   int(engagement.Int64),
				Firmographic: int(firmo.Int64),
			},
		})
	}

	return &lead, nil
}

func marshalLeadJSON(lead *model.Lead) (social string, reviews any, err error) {
	socialBytes, err := json.Marshal(lead.SocialLinks)
	if err != nil {
		return "", nil, err
	}

	if len(lead.Reviews) == 0 {
		return string(socialBytes), nil, nil
	}
	reviewBytes, err := json.Marshal(lead.Reviews)
	if err != nil {
		return "", nil, err
	}
	return string(socialBytes), string(reviewBytes), nil
}

func websiteKey(lead *model.Lead) string {
	if lead.Website != nil {
		return *lead.Website
	}
	return ""
}

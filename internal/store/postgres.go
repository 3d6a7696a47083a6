package store

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rotisserie/eris"

	"github.com/sells-group/leadgen-cli/internal/model"
)

// Pool is the subset of pgxpool.Pool the store uses. pgxmock implements it
// for unit tests.
type Pool interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Ping(ctx context.Context) error
	Close()
}

// PostgresStore implements Store using pgxpool.
type PostgresStore struct {
	pool Pool
}

// PoolConfig holds optional connection pool tuning parameters.
type PoolConfig struct {
	MaxConns int32 `yaml:"max_conns" mapstructure:"max_conns"`
	MinConns int32 `yaml:"min_conns" mapstructure:"min_conns"`
}

// NewPostgres creates a PostgresStore with a connection pool.
func NewPostgres(ctx context.Context, connString string, poolCfg *PoolConfig) (*PostgresStore, error) {
	pgxCfg, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: parse config")
	}

	maxConns := int32(10)
	minConns := int32(2)
	if poolCfg != nil {
		if poolCfg.MaxConns > 0 {
			maxConns = poolCfg.MaxConns
		}
		if poolCfg.MinConns > 0 {
			minConns = poolCfg.MinConns
		}
	}
	pgxCfg.MaxConns = maxConns
	pgxCfg.MinConns = minConns
	pgxCfg.MaxConnLifetime = 30 * time.Minute
	pgxCfg.MaxConnIdleTime = 5 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, pgxCfg)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: create pool")
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, eris.Wrap(err, "postgres: ping")
	}
	return &PostgresStore{pool: pool}, nil
}

const postgresMigration = `
CREATE TABLE IF NOT EXISTS leads (
	id             TEXT PRIMARY KEY DEFAULT gen_random_uuid()::text,
	business_name  TEXT NOT NULL,
	google_maps_url TEXT NOT NULL DEFAULT '',
	email          TEXT,
	email_valid    BOOLEAN,
	phone          TEXT,
	phone_valid    BOOLEAN,
	website        TEXT NOT NULL DEFAULT '',
	address        TEXT,
	category       TEXT,
	rating         DOUBLE PRECISION,
	review_count   INTEGER,
	claimed        BOOLEAN NOT NULL DEFAULT false,
	employee_count INTEGER,
	latitude       DOUBLE PRECISION,
	longitude      DOUBLE PRECISION,
	social_links   JSONB NOT NULL DEFAULT '{}',
	reviews        JSONB,
	created_at     TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at     TIMESTAMPTZ NOT NULL DEFAULT now(),
	UNIQUE (business_name, website)
);

CREATE TABLE IF NOT EXISTS lead_scores (
	id           TEXT PRIMARY KEY DEFAULT gen_random_uuid()::text,
	lead_id      TEXT NOT NULL REFERENCES leads(id),
	score        INTEGER NOT NULL,
	grade        TEXT NOT NULL,
	data_quality INTEGER NOT NULL,
	engagement   INTEGER NOT NULL,
	firmographic INTEGER NOT NULL,
	config_hash  TEXT NOT NULL DEFAULT '',
	scored_at    TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE INDEX IF NOT EXISTS idx_leads_category ON leads(category);
CREATE INDEX IF NOT EXISTS idx_lead_scores_lead_id ON lead_scores(lead_id);
`

func (s *PostgresStore) Migrate(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, postgresMigration)
	return eris.Wrap(err, "postgres: migrate")
}

func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}

func (s *PostgresStore) UpsertLead(ctx context.Context, lead *model.Lead) (string, error) {
	socialJSON, reviewsJSON, err := marshalLeadJSON(lead)
	if err != nil {
		return "", eris.Wrap(err, "postgres: marshal lead")
	}

	id := lead.ID
	if id == "" {
		id = uuid.New().String()
	}
	now := time.Now().UTC()

	row := s.pool.QueryRow(ctx, `
		INSERT INTO leads (
			id, business_name, google_maps_url, email, email_valid,
			phone, phone_valid, website, address, category,
			rating, review_count, claimed, employee_count, latitude, longitude,
			social_links, reviews, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20)
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
		return "", eris.Wrapf(err, "postgres: upsert lead %s", lead.BusinessName)
	}
	return storedID, nil
}

const pgLeadColumns = `
	l.id, l.business_name, l.google_maps_url, l.email, l.email_valid,
	l.phone, l.phone_valid, l.website, l.address, l.category,
	l.rating, l.review_count, l.claimed, l.employee_count, l.latitude, l.longitude,
	l.social_links, l.reviews,
	s.score, s.grade, s.data_quality, s.engagement, s.firmographic`

const pgLatestScoreJoin = `
	LEFT JOIN lead_scores s ON s.id = (
		SELECT id FROM lead_scores WHERE lead_id = l.id
		ORDER BY scored_at DESC LIMIT 1
	)`

func (s *PostgresStore) GetLead(ctx context.Context, id string) (*model.Lead, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT `+pgLeadColumns+` FROM leads l`+pgLatestScoreJoin+` WHERE l.id = $1`,
		id,
	)
	lead, err := scanPgLead(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, eris.Errorf("postgres: lead not found: %s", id)
	}
	if err != nil {
		return nil, eris.Wrapf(err, "postgres: get lead %s", id)
	}
	return lead, nil
}

func (s *PostgresStore) ListLeads(ctx context.Context, filter LeadFilter) ([]model.Lead, error) {
	query := `SELECT ` + pgLeadColumns + ` FROM leads l` + pgLatestScoreJoin + ` WHERE 1=1`
	var args []any

	arg := func(v any) string {
		args = append(args, v)
		return "$" + strconv.Itoa(len(args))
	}

	if filter.Grade != "" {
		query += ` AND s.grade = ` + arg(string(filter.Grade))
	}
	if filter.MinScore != nil {
		query += ` AND s.score >= ` + arg(*filter.MinScore)
	}
	if filter.Category != "" {
		query += ` AND l.category ILIKE ` + arg("%"+filter.Category+"%")
	}

	query += ` ORDER BY l.created_at, l.id`
	if filter.Limit > 0 {
		query += ` LIMIT ` + arg(filter.Limit)
	}
	if filter.Offset > 0 {
		query += ` OFFSET ` + arg(filter.Offset)
	}

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list leads")
	}
	defer rows.Close()

	var leads []model.Lead
	for rows.Next() {
		lead, err := scanPgLead(rows)
		if err != nil {
			return nil, eris.Wrap(err, "postgres: scan lead")
		}
		leads = append(leads, *lead)
	}
	return leads, eris.Wrap(rows.Err(), "postgres: list leads")
}

func (s *PostgresStore) SaveScore(ctx context.Context, leadID string, result model.ScoreResult, configHash string) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO lead_scores (id, lead_id, score, grade, data_quality, engagement, firmographic, config_hash, scored_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		uuid.New().String(), leadID, result.Score, string(result.Grade),
		result.Breakdown.DataQuality, result.Breakdown.Engagement, result.Breakdown.Firmographic,
		configHash, time.Now().UTC(),
	)
	return eris.Wrapf(err, "postgres: save score for lead %s", leadID)
}

// scanPgLead reads one row in pgLeadColumns order. JSONB columns arrive as
// []byte; score columns are NULL for never-scored leads.
func scanPgLead(row pgx.Row) (*model.Lead, error) {
	var (
		lead        model.Lead
		website     string
		socialJSON  []byte
		reviewsJSON []byte
		score       *int
		grade       *string
		dataQuality *int
		engagement  *int
		firmo       *int
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
	if len(socialJSON) > 0 {
		if err := json.Unmarshal(socialJSON, &lead.SocialLinks); err != nil {
			return nil, eris.Wrap(err, "unmarshal social links")
		}
	}
	if len(reviewsJSON) > 0 {
		if err := json.Unmarshal(reviewsJSON, &lead.Reviews); err != nil {
			return nil, eris.Wrap(err, "unmarshal reviews")
		}
	}

	if score != nil && grade != nil {
		breakdown := model.ScoreBreakdown{}
		if dataQuality != nil {
			breakdown.DataQuality = *dataQuality
		}
		if engagement != nil {
			breakdown.Engagement = *engagement
		}
		if firmo != nil {
			breakdown.Firmographic = *firmo
		}
		lead.ApplyScore(model.ScoreResult{
			Score:     *score,
			Grade:     model.Grade(*grade),
			Breakdown: breakdown,
		})
	}

	return &lead, nil
}

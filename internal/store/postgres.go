package store

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rotisserie/eris"

	"github.com/algominds35/email-tool/internal/model"
)

// Pool is the subset of pgxpool.Pool used by the store. pgxmock satisfies
// it, which keeps the atomic-update SQL testable without a live database.
type Pool interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Begin(ctx context.Context) (pgx.Tx, error)
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

// NewPostgresFromPool wraps an existing pool. Used by tests with pgxmock.
func NewPostgresFromPool(pool Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

const postgresMigration = `
CREATE TABLE IF NOT EXISTS users (
	id                  TEXT PRIMARY KEY,
	email               TEXT NOT NULL UNIQUE,
	company_name        TEXT NOT NULL DEFAULT '',
	product_description TEXT NOT NULL DEFAULT '',
	value_prop          TEXT NOT NULL DEFAULT '',
	target_audience     TEXT NOT NULL DEFAULT '',
	emails_remaining    INTEGER NOT NULL DEFAULT 0
);

CREATE TABLE IF NOT EXISTS campaigns (
	id              TEXT PRIMARY KEY,
	user_id         TEXT NOT NULL REFERENCES users(id),
	name            TEXT NOT NULL,
	status          TEXT NOT NULL DEFAULT 'pending',
	total_leads     INTEGER NOT NULL DEFAULT 0,
	processed_leads INTEGER NOT NULL DEFAULT 0,
	processed_at    TIMESTAMPTZ,
	created_at      TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS leads (
	id              TEXT PRIMARY KEY,
	campaign_id     TEXT NOT NULL REFERENCES campaigns(id),
	email           TEXT NOT NULL,
	first_name      TEXT NOT NULL,
	last_name       TEXT NOT NULL DEFAULT '',
	company         TEXT NOT NULL DEFAULT '',
	title           TEXT NOT NULL DEFAULT '',
	linkedin_url    TEXT NOT NULL DEFAULT '',
	company_website TEXT NOT NULL DEFAULT '',
	user_research   TEXT NOT NULL DEFAULT '',
	research        JSONB,
	created_at      TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS emails (
	id               TEXT PRIMARY KEY,
	lead_id          TEXT NOT NULL UNIQUE REFERENCES leads(id),
	subject          TEXT NOT NULL,
	body             TEXT NOT NULL,
	confidence_score INTEGER NOT NULL DEFAULT 0,
	status           TEXT NOT NULL DEFAULT 'generated',
	research_summary TEXT NOT NULL DEFAULT '',
	created_at       TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at       TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE INDEX IF NOT EXISTS idx_campaigns_user_id ON campaigns(user_id);
CREATE INDEX IF NOT EXISTS idx_campaigns_status ON campaigns(status);
CREATE INDEX IF NOT EXISTS idx_leads_campaign_id ON leads(campaign_id);
CREATE INDEX IF NOT EXISTS idx_emails_lead_id ON emails(lead_id);
`

func (s *PostgresStore) Migrate(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, postgresMigration)
	return eris.Wrap(err, "postgres: migrate")
}

func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}

func (s *PostgresStore) CreateUser(ctx context.Context, user *model.User) error {
	if user.ID == "" {
		user.ID = uuid.New().String()
	}
	_, err := s.pool.Exec(ctx,
		`INSERT INTO users (id, email, company_name, product_description, value_prop, target_audience, emails_remaining)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		user.ID, user.Email, user.CompanyName, user.ProductDescription,
		user.ValueProp, user.TargetAudience, user.EmailsRemaining,
	)
	return eris.Wrap(err, "postgres: insert user")
}

func (s *PostgresStore) GetUser(ctx context.Context, userID string) (*model.User, error) {
	var u model.User
	err := s.pool.QueryRow(ctx,
		`SELECT id, email, company_name, product_description, value_prop, target_audience, emails_remaining
		 FROM users WHERE id = $1`, userID,
	).Scan(&u.ID, &u.Email, &u.CompanyName, &u.ProductDescription, &u.ValueProp, &u.TargetAudience, &u.EmailsRemaining)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, eris.Errorf("postgres: user %s not found", userID)
	}
	if err != nil {
		return nil, eris.Wrap(err, "postgres: get user")
	}
	return &u, nil
}

func (s *PostgresStore) DecrementCredits(ctx context.Context, userID string) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE users SET emails_remaining = emails_remaining - 1 WHERE id = $1`, userID,
	)
	if err != nil {
		return eris.Wrap(err, "postgres: decrement credits")
	}
	if tag.RowsAffected() == 0 {
		return eris.Errorf("postgres: user %s not found", userID)
	}
	return nil
}

func (s *PostgresStore) CreateCampaign(ctx context.Context, userID, name string, leads []model.LeadInput) (*model.Campaign, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: begin create campaign")
	}
	defer tx.Rollback(ctx)

	campaign := &model.Campaign{
		ID:         uuid.New().String(),
		UserID:     userID,
		Name:       name,
		Status:     model.CampaignStatusPending,
		TotalLeads: len(leads),
		CreatedAt:  time.Now().UTC(),
	}

	_, err = tx.Exec(ctx,
		`INSERT INTO campaigns (id, user_id, name, status, total_leads, processed_leads, created_at)
		 VALUES ($1, $2, $3, $4, $5, 0, $6)`,
		campaign.ID, campaign.UserID, campaign.Name, string(campaign.Status), campaign.TotalLeads, campaign.CreatedAt,
	)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: insert campaign")
	}

	for _, in := range leads {
		_, err = tx.Exec(ctx,
			`INSERT INTO leads (id, campaign_id, email, first_name, last_name, company, title, linkedin_url, company_website, user_research, created_at)
			 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
			uuid.New().String(), campaign.ID, in.Email, in.FirstName, in.LastName,
			in.Company, in.Title, in.LinkedInURL, in.CompanyWebsite, in.UserResearch, campaign.CreatedAt,
		)
		if err != nil {
			return nil, eris.Wrap(err, "postgres: insert lead")
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, eris.Wrap(err, "postgres: commit create campaign")
	}
	return campaign, nil
}

func (s *PostgresStore) GetCampaign(ctx context.Context, campaignID string) (*model.Campaign, error) {
	var c model.Campaign
	var status string
	err := s.pool.QueryRow(ctx,
		`SELECT id, user_id, name, status, total_leads, processed_leads, processed_at, created_at
		 FROM campaigns WHERE id = $1`, campaignID,
	).Scan(&c.ID, &c.UserID, &c.Name, &status, &c.TotalLeads, &c.ProcessedLeads, &c.ProcessedAt, &c.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, eris.Errorf("postgres: campaign %s not found", campaignID)
	}
	if err != nil {
		return nil, eris.Wrap(err, "postgres: get campaign")
	}
	c.Status = model.CampaignStatus(status)
	return &c, nil
}

func (s *PostgresStore) StartCampaign(ctx context.Context, campaignID string) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE campaigns SET status = 'processing', processed_leads = 0 WHERE id = $1`, campaignID,
	)
	if err != nil {
		return eris.Wrap(err, "postgres: start campaign")
	}
	if tag.RowsAffected() == 0 {
		return eris.Errorf("postgres: campaign %s not found", campaignID)
	}
	return nil
}

func (s *PostgresStore) IncrementProcessed(ctx context.Context, campaignID string) error {
	_, err := s.pool.Exec(ctx,
		`UPDATE campaigns SET processed_leads = processed_leads + 1 WHERE id = $1`, campaignID,
	)
	return eris.Wrap(err, "postgres: increment processed")
}

func (s *PostgresStore) CompleteCampaign(ctx context.Context, campaignID string) error {
	_, err := s.pool.Exec(ctx,
		`UPDATE campaigns SET status = 'complete', processed_at = COALESCE(processed_at, now()) WHERE id = $1`, campaignID,
	)
	return eris.Wrap(err, "postgres: complete campaign")
}

func (s *PostgresStore) FailCampaign(ctx context.Context, campaignID string) error {
	_, err := s.pool.Exec(ctx,
		`UPDATE campaigns SET status = 'error' WHERE id = $1`, campaignID,
	)
	return eris.Wrap(err, "postgres: fail campaign")
}

func (s *PostgresStore) ListLeads(ctx context.Context, campaignID string) ([]model.Lead, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, campaign_id, email, first_name, last_name, company, title, linkedin_url, company_website, user_research, research, created_at
		 FROM leads WHERE campaign_id = $1 ORDER BY created_at, id`, campaignID,
	)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list leads")
	}
	defer rows.Close()

	var leads []model.Lead
	for rows.Next() {
		lead, err := scanLead(rows)
		if err != nil {
			return nil, err
		}
		leads = append(leads, *lead)
	}
	return leads, eris.Wrap(rows.Err(), "postgres: iterate leads")
}

func (s *PostgresStore) GetLead(ctx context.Context, leadID string) (*model.Lead, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT id, campaign_id, email, first_name, last_name, company, title, linkedin_url, company_website, user_research, research, created_at
		 FROM leads WHERE id = $1`, leadID,
	)
	lead, err := scanLead(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, eris.Errorf("postgres: lead %s not found", leadID)
		}
		return nil, err
	}
	return lead, nil
}

func scanLead(row pgx.Row) (*model.Lead, error) {
	var l model.Lead
	var research []byte
	err := row.Scan(&l.ID, &l.CampaignID, &l.Email, &l.FirstName, &l.LastName, &l.Company,
		&l.Title, &l.LinkedInURL, &l.CompanyWebsite, &l.UserResearch, &research, &l.CreatedAt)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: scan lead")
	}
	if len(research) > 0 {
		var r model.Research
		if err := json.Unmarshal(research, &r); err != nil {
			return nil, eris.Wrap(err, "postgres: unmarshal research")
		}
		l.Research = &r
	}
	return &l, nil
}

func (s *PostgresStore) SaveLeadResearch(ctx context.Context, leadID string, research *model.Research) error {
	data, err := json.Marshal(research)
	if err != nil {
		return eris.Wrap(err, "postgres: marshal research")
	}
	tag, err := s.pool.Exec(ctx,
		`UPDATE leads SET research = $1 WHERE id = $2`, data, leadID,
	)
	if err != nil {
		return eris.Wrap(err, "postgres: save lead research")
	}
	if tag.RowsAffected() == 0 {
		return eris.Errorf("postgres: lead %s not found", leadID)
	}
	return nil
}

func (s *PostgresStore) CreateEmail(ctx context.Context, email *model.Email) error {
	if email.ID == "" {
		email.ID = uuid.New().String()
	}
	if email.Status == "" {
		email.Status = model.EmailStatusGenerated
	}
	now := time.Now().UTC()
	email.CreatedAt = now
	email.UpdatedAt = now

	_, err := s.pool.Exec(ctx,
		`INSERT INTO emails (id, lead_id, subject, body, confidence_score, status, research_summary, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		email.ID, email.LeadID, email.Subject, email.Body, email.ConfidenceScore,
		string(email.Status), email.ResearchSummary, email.CreatedAt, email.UpdatedAt,
	)
	return eris.Wrap(err, "postgres: insert email")
}

func (s *PostgresStore) GetEmail(ctx context.Context, emailID string) (*model.Email, error) {
	email, err := s.scanEmailRow(s.pool.QueryRow(ctx, selectEmail+` WHERE id = $1`, emailID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, eris.Errorf("postgres: email %s not found", emailID)
		}
		return nil, err
	}
	return email, nil
}

func (s *PostgresStore) GetEmailByLead(ctx context.Context, leadID string) (*model.Email, error) {
	email, err := s.scanEmailRow(s.pool.QueryRow(ctx, selectEmail+` WHERE lead_id = $1`, leadID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return email, nil
}

func (s *PostgresStore) ListEmails(ctx context.Context, campaignID string) ([]model.Email, error) {
	rows, err := s.pool.Query(ctx,
		selectEmail+` JOIN leads ON leads.id = emails.lead_id WHERE leads.campaign_id = $1 ORDER BY emails.created_at, emails.id`,
		campaignID,
	)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list emails")
	}
	defer rows.Close()

	var emails []model.Email
	for rows.Next() {
		email, err := s.scanEmailRow(rows)
		if err != nil {
			return nil, err
		}
		emails = append(emails, *email)
	}
	return emails, eris.Wrap(rows.Err(), "postgres: iterate emails")
}

func (s *PostgresStore) UpdateEmail(ctx context.Context, email *model.Email) error {
	email.UpdatedAt = time.Now().UTC()
	tag, err := s.pool.Exec(ctx,
		`UPDATE emails SET subject = $1, body = $2, confidence_score = $3, status = $4, research_summary = $5, updated_at = $6 WHERE id = $7`,
		email.Subject, email.Body, email.ConfidenceScore, string(email.Status), email.ResearchSummary, email.UpdatedAt, email.ID,
	)
	if err != nil {
		return eris.Wrap(err, "postgres: update email")
	}
	if tag.RowsAffected() == 0 {
		return eris.Errorf("postgres: email %s not found", email.ID)
	}
	return nil
}

const selectEmail = `SELECT emails.id, emails.lead_id, emails.subject, emails.body, emails.confidence_score, emails.status, emails.research_summary, emails.created_at, emails.updated_at FROM emails`

func (s *PostgresStore) scanEmailRow(row pgx.Row) (*model.Email, error) {
	var e model.Email
	var status string
	err := row.Scan(&e.ID, &e.LeadID, &e.Subject, &e.Body, &e.ConfidenceScore, &status, &e.ResearchSummary, &e.CreatedAt, &e.UpdatedAt)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: scan email")
	}
	e.Status = model.EmailStatus(status)
	return &e, nil
}

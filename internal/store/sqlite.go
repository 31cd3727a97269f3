package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"

	"github.com/algominds35/email-tool/internal/model"
)

// SQLiteStore implements Store using modernc.org/sqlite. Used for local
// single-process runs and as the backing store for the shared test suite.
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
			db.Close()
			return nil, eris.Wrapf(err, "sqlite: exec %s", pragma)
		}
	}
	return &SQLiteStore{db: db}, nil
}

const sqliteMigration = `
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
	processed_at    DATETIME,
	created_at      DATETIME NOT NULL DEFAULT (datetime('now'))
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
	research        TEXT,
	created_at      DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE TABLE IF NOT EXISTS emails (
	id               TEXT PRIMARY KEY,
	lead_id          TEXT NOT NULL UNIQUE REFERENCES leads(id),
	subject          TEXT NOT NULL,
	body             TEXT NOT NULL,
	confidence_score INTEGER NOT NULL DEFAULT 0,
	status           TEXT NOT NULL DEFAULT 'generated',
	research_summary TEXT NOT NULL DEFAULT '',
	created_at       DATETIME NOT NULL,
	updated_at       DATETIME NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_campaigns_user_id ON campaigns(user_id);
CREATE INDEX IF NOT EXISTS idx_campaigns_status ON campaigns(status);
CREATE INDEX IF NOT EXISTS idx_leads_campaign_id ON leads(campaign_id);
CREATE INDEX IF NOT EXISTS idx_emails_lead_id ON emails(lead_id);
`

func (s *SQLiteStore) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, sqliteMigration)
	return eris.Wrap(err, "sqlite: migrate")
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) CreateUser(ctx context.Context, user *model.User) error {
	if user.ID == "" {
		user.ID = uuid.New().String()
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO users (id, email, company_name, product_description, value_prop, target_audience, emails_remaining)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		user.ID, user.Email, user.CompanyName, user.ProductDescription,
		user.ValueProp, user.TargetAudience, user.EmailsRemaining,
	)
	return eris.Wrap(err, "sqlite: insert user")
}

func (s *SQLiteStore) GetUser(ctx context.Context, userID string) (*model.User, error) {
	var u model.User
	err := s.db.QueryRowContext(ctx,
		`SELECT id, email, company_name, product_description, value_prop, target_audience, emails_remaining
		 FROM users WHERE id = ?`, userID,
	).Scan(&u.ID, &u.Email, &u.CompanyName, &u.ProductDescription, &u.ValueProp, &u.TargetAudience, &u.EmailsRemaining)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, eris.Errorf("sqlite: user %s not found", userID)
	}
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: get user")
	}
	return &u, nil
}

func (s *SQLiteStore) DecrementCredits(ctx context.Context, userID string) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE users SET emails_remaining = emails_remaining - 1 WHERE id = ?`, userID,
	)
	if err != nil {
		return eris.Wrap(err, "sqlite: decrement credits")
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return eris.Errorf("sqlite: user %s not found", userID)
	}
	return nil
}

func (s *SQLiteStore) CreateCampaign(ctx context.Context, userID, name string, leads []model.LeadInput) (*model.Campaign, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: begin create campaign")
	}
	defer tx.Rollback()

	campaign := &model.Campaign{
		ID:         uuid.New().String(),
		UserID:     userID,
		Name:       name,
		Status:     model.CampaignStatusPending,
		TotalLeads: len(leads),
		CreatedAt:  time.Now().UTC(),
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO campaigns (id, user_id, name, status, total_leads, processed_leads, created_at)
		 VALUES (?, ?, ?, ?, ?, 0, ?)`,
		campaign.ID, campaign.UserID, campaign.Name, string(campaign.Status), campaign.TotalLeads, campaign.CreatedAt,
	)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: insert campaign")
	}

	for _, in := range leads {
		_, err = tx.ExecContext(ctx,
			`INSERT INTO leads (id, campaign_id, email, first_name, last_name, company, title, linkedin_url, company_website, user_research, created_at)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			uuid.New().String(), campaign.ID, in.Email, in.FirstName, in.LastName,
			in.Company, in.Title, in.LinkedInURL, in.CompanyWebsite, in.UserResearch, campaign.CreatedAt,
		)
		if err != nil {
			return nil, eris.Wrap(err, "sqlite: insert lead")
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, eris.Wrap(err, "sqlite: commit create campaign")
	}
	return campaign, nil
}

func (s *SQLiteStore) GetCampaign(ctx context.Context, campaignID string) (*model.Campaign, error) {
	var c model.Campaign
	var status string
	var processedAt sql.NullTime
	err := s.db.QueryRowContext(ctx,
		`SELECT id, user_id, name, status, total_leads, processed_leads, processed_at, created_at
		 FROM campaigns WHERE id = ?`, campaignID,
	).Scan(&c.ID, &c.UserID, &c.Name, &status, &c.TotalLeads, &c.ProcessedLeads, &processedAt, &c.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, eris.Errorf("sqlite: campaign %s not found", campaignID)
	}
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: get campaign")
	}
	c.Status = model.CampaignStatus(status)
	if processedAt.Valid {
		t := processedAt.Time
		c.ProcessedAt = &t
	}
	return &c, nil
}

func (s *SQLiteStore) StartCampaign(ctx context.Context, campaignID string) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE campaigns SET status = 'processing', processed_leads = 0 WHERE id = ?`, campaignID,
	)
	if err != nil {
		return eris.Wrap(err, "sqlite: start campaign")
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return eris.Errorf("sqlite: campaign %s not found", campaignID)
	}
	return nil
}

func (s *SQLiteStore) IncrementProcessed(ctx context.Context, campaignID string) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE campaigns SET processed_leads = processed_leads + 1 WHERE id = ?`, campaignID,
	)
	return eris.Wrap(err, "sqlite: increment processed")
}

func (s *SQLiteStore) CompleteCampaign(ctx context.Context, campaignID string) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE campaigns SET status = 'complete', processed_at = COALESCE(processed_at, ?) WHERE id = ?`,
		time.Now().UTC(), campaignID,
	)
	return eris.Wrap(err, "sqlite: complete campaign")
}

func (s *SQLiteStore) FailCampaign(ctx context.Context, campaignID string) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE campaigns SET status = 'error' WHERE id = ?`, campaignID,
	)
	return eris.Wrap(err, "sqlite: fail campaign")
}

func (s *SQLiteStore) ListLeads(ctx context.Context, campaignID string) ([]model.Lead, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, campaign_id, email, first_name, last_name, company, title, linkedin_url, company_website, user_research, research, created_at
		 FROM leads WHERE campaign_id = ? ORDER BY created_at, id`, campaignID,
	)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list leads")
	}
	defer rows.Close()

	var leads []model.Lead
	for rows.Next() {
		lead, err := scanSQLiteLead(rows)
		if err != nil {
			return nil, err
		}
		leads = append(leads, *lead)
	}
	return leads, eris.Wrap(rows.Err(), "sqlite: iterate leads")
}

func (s *SQLiteStore) GetLead(ctx context.Context, leadID string) (*model.Lead, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, campaign_id, email, first_name, last_name, company, title, linkedin_url, company_website, user_research, research, created_at
		 FROM leads WHERE id = ?`, leadID,
	)
	lead, err := scanSQLiteLead(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, eris.Errorf("sqlite: lead %s not found", leadID)
		}
		return nil, err
	}
	return lead, nil
}

// scanner covers both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanSQLiteLead(row scanner) (*model.Lead, error) {
	var l model.Lead
	var research sql.NullString
	err := row.Scan(&l.ID, &l.CampaignID, &l.Email, &l.FirstName, &l.LastName, &l.Company,
		&l.Title, &l.LinkedInURL, &l.CompanyWebsite, &l.UserResearch, &research, &l.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, eris.Wrap(err, "sqlite: scan lead")
	}
	if research.Valid && research.String != "" {
		var r model.Research
		if err := json.Unmarshal([]byte(research.String), &r); err != nil {
			return nil, eris.Wrap(err, "sqlite: unmarshal research")
		}
		l.Research = &r
	}
	return &l, nil
}

func (s *SQLiteStore) SaveLeadResearch(ctx context.Context, leadID string, research *model.Research) error {
	data, err := json.Marshal(research)
	if err != nil {
		return eris.Wrap(err, "sqlite: marshal research")
	}
	res, err := s.db.ExecContext(ctx,
		`UPDATE leads SET research = ? WHERE id = ?`, string(data), leadID,
	)
	if err != nil {
		return eris.Wrap(err, "sqlite: save lead research")
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return eris.Errorf("sqlite: lead %s not found", leadID)
	}
	return nil
}

func (s *SQLiteStore) CreateEmail(ctx context.Context, email *model.Email) error {
	if email.ID == "" {
		email.ID = uuid.New().String()
	}
	if email.Status == "" {
		email.Status = model.EmailStatusGenerated
	}
	now := time.Now().UTC()
	email.CreatedAt = now
	email.UpdatedAt = now

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO emails (id, lead_id, subject, body, confidence_score, status, research_summary, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		email.ID, email.LeadID, email.Subject, email.Body, email.ConfidenceScore,
		string(email.Status), email.ResearchSummary, email.CreatedAt, email.UpdatedAt,
	)
	return eris.Wrap(err, "sqlite: insert email")
}

const sqliteSelectEmail = `SELECT emails.id, emails.lead_id, emails.subject, emails.body, emails.confidence_score, emails.status, emails.research_summary, emails.created_at, emails.updated_at FROM emails`

func (s *SQLiteStore) GetEmail(ctx context.Context, emailID string) (*model.Email, error) {
	email, err := scanSQLiteEmail(s.db.QueryRowContext(ctx, sqliteSelectEmail+` WHERE id = ?`, emailID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, eris.Errorf("sqlite: email %s not found", emailID)
		}
		return nil, err
	}
	return email, nil
}

func (s *SQLiteStore) GetEmailByLead(ctx context.Context, leadID string) (*model.Email, error) {
	email, err := scanSQLiteEmail(s.db.QueryRowContext(ctx, sqliteSelectEmail+` WHERE lead_id = ?`, leadID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return email, nil
}

func (s *SQLiteStore) ListEmails(ctx context.Context, campaignID string) ([]model.Email, error) {
	rows, err := s.db.QueryContext(ctx,
		sqliteSelectEmail+` JOIN leads ON leads.id = emails.lead_id WHERE leads.campaign_id = ? ORDER BY emails.created_at, emails.id`,
		campaignID,
	)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list emails")
	}
	defer rows.Close()

	var emails []model.Email
	for rows.Next() {
		email, err := scanSQLiteEmail(rows)
		if err != nil {
			return nil, err
		}
		emails = append(emails, *email)
	}
	return emails, eris.Wrap(rows.Err(), "sqlite: iterate emails")
}

func (s *SQLiteStore) UpdateEmail(ctx context.Context, email *model.Email) error {
	email.UpdatedAt = time.Now().UTC()
	res, err := s.db.ExecContext(ctx,
		`UPDATE emails SET subject = ?, body = ?, confidence_score = ?, status = ?, research_summary = ?, updated_at = ? WHERE id = ?`,
		email.Subject, email.Body, email.ConfidenceScore, string(email.Status), email.ResearchSummary, email.UpdatedAt, email.ID,
	)
	if err != nil {
		return eris.Wrap(err, "sqlite: update email")
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return eris.Errorf("sqlite: email %s not found", email.ID)
	}
	return nil
}

func scanSQLiteEmail(row scanner) (*model.Email, error) {
	var e model.Email
	var status string
	err := row.Scan(&e.ID, &e.LeadID, &e.Subject, &e.Body, &e.ConfidenceScore, &status, &e.ResearchSummary, &e.CreatedAt, &e.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, eris.Wrap(err, "sqlite: scan email")
	}
	e.Status = model.EmailStatus(status)
	return &e, nil
}

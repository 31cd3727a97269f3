// Package store provides persistence for users, campaigns, leads, and
// generated emails, with Postgres and SQLite backends.
package store

import (
	"context"

	"github.com/algominds35/email-tool/internal/model"
)

// Store defines the persistence interface consumed by the pipeline and the
// dispatcher. Counter updates (IncrementProcessed, DecrementCredits) are
// single-statement atomic operations so sibling lead workers never lose
// updates to read-modify-write races.
type Store interface {
	// Users
	CreateUser(ctx context.Context, user *model.User) error
	GetUser(ctx context.Context, userID string) (*model.User, error)
	// DecrementCredits atomically decrements the user's remaining email
	// credits by one. Called once per successfully generated email.
	DecrementCredits(ctx context.Context, userID string) error

	// Campaigns
	CreateCampaign(ctx context.Context, userID, name string, leads []model.LeadInput) (*model.Campaign, error)
	GetCampaign(ctx context.Context, campaignID string) (*model.Campaign, error)
	// StartCampaign moves the campaign to processing and resets the
	// processed counter for the new attempt.
	StartCampaign(ctx context.Context, campaignID string) error
	// IncrementProcessed atomically bumps processed_leads by one.
	IncrementProcessed(ctx context.Context, campaignID string) error
	// CompleteCampaign moves the campaign to complete and stamps
	// processed_at on the first terminal transition only.
	CompleteCampaign(ctx context.Context, campaignID string) error
	// FailCampaign marks the campaign's terminal error state. Partial
	// progress is left as-is; there is no rollback.
	FailCampaign(ctx context.Context, campaignID string) error

	// Leads
	ListLeads(ctx context.Context, campaignID string) ([]model.Lead, error)
	GetLead(ctx context.Context, leadID string) (*model.Lead, error)
	// SaveLeadResearch overwrites the lead's aggregated research bundle.
	SaveLeadResearch(ctx context.Context, leadID string, research *model.Research) error

	// Emails
	CreateEmail(ctx context.Context, email *model.Email) error
	GetEmail(ctx context.Context, emailID string) (*model.Email, error)
	// GetEmailByLead returns the lead's email, or (nil, nil) when none
	// exists. Used by the processor's idempotent reprocessing check.
	GetEmailByLead(ctx context.Context, leadID string) (*model.Email, error)
	ListEmails(ctx context.Context, campaignID string) ([]model.Email, error)
	UpdateEmail(ctx context.Context, email *model.Email) error

	// Lifecycle
	Migrate(ctx context.Context) error
	Close() error
}

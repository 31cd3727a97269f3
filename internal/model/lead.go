package model

import (
	"strings"
	"time"
)

// Lead is a prospective contact sourced from an uploaded batch.
type Lead struct {
	ID             string    `json:"id"`
	CampaignID     string    `json:"campaign_id"`
	Email          string    `json:"email"`
	FirstName      string    `json:"first_name"`
	LastName       string    `json:"last_name,omitempty"`
	Company        string    `json:"company,omitempty"`
	Title          string    `json:"title,omitempty"`
	LinkedInURL    string    `json:"linkedin_url,omitempty"`
	CompanyWebsite string    `json:"company_website,omitempty"`
	UserResearch   string    `json:"user_research,omitempty"` // free-text research supplied by the user, outranks scraped signals
	Research       *Research `json:"research,omitempty"`      // aggregated bundle, overwritten on reprocessing
	CreatedAt      time.Time `json:"created_at"`
}

// FullName joins first and last name, tolerating a missing last name.
func (l Lead) FullName() string {
	if l.LastName == "" {
		return l.FirstName
	}
	return l.FirstName + " " + l.LastName
}

// EmailDomain returns the domain part of the lead's email address, used as
// a website fallback when no company website was provided.
func (l Lead) EmailDomain() string {
	if at := strings.LastIndex(l.Email, "@"); at >= 0 && at < len(l.Email)-1 {
		return l.Email[at+1:]
	}
	return ""
}

// LeadInput is the caller-supplied shape for campaign creation, before the
// store assigns identities.
type LeadInput struct {
	Email          string `json:"email" csv:"email"`
	FirstName      string `json:"first_name" csv:"first_name"`
	LastName       string `json:"last_name,omitempty" csv:"last_name,omitempty"`
	Company        string `json:"company,omitempty" csv:"company,omitempty"`
	Title          string `json:"title,omitempty" csv:"title,omitempty"`
	LinkedInURL    string `json:"linkedin_url,omitempty" csv:"linkedin_url,omitempty"`
	CompanyWebsite string `json:"company_website,omitempty" csv:"company_website,omitempty"`
	UserResearch   string `json:"user_research,omitempty" csv:"user_research,omitempty"`
}

// Valid reports whether the input carries the minimum fields to be processed.
func (in LeadInput) Valid() bool {
	return strings.Contains(in.Email, "@") && strings.TrimSpace(in.FirstName) != ""
}

// OutcomeStatus classifies the terminal state of one lead processing attempt.
type OutcomeStatus string

const (
	OutcomeEmailed OutcomeStatus = "emailed" // email generated and persisted
	OutcomeSkipped OutcomeStatus = "skipped" // an email already existed for the lead
	OutcomeFailed  OutcomeStatus = "failed"  // a step errored; lead counted, no email
)

// LeadOutcome is the tagged per-lead result reported by the processor.
// Failures carry the step that errored so callers and tests can assert on
// failure reasons instead of inspecting logs.
type LeadOutcome struct {
	LeadID     string        `json:"lead_id"`
	Status     OutcomeStatus `json:"status"`
	Email      *Email        `json:"email,omitempty"`
	FailedStep string        `json:"failed_step,omitempty"`
	Reason     string        `json:"reason,omitempty"`
}

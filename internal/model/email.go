package model

import "time"

// EmailStatus tracks what the user has done with a generated email.
type EmailStatus string

const (
	EmailStatusGenerated EmailStatus = "generated"
	EmailStatusEdited    EmailStatus = "edited"
	EmailStatusApproved  EmailStatus = "approved"
)

// Email is the generated outreach email for one lead, one per processing
// attempt. ConfidenceScore is the deterministic 0-100 quality heuristic.
type Email struct {
	ID              string      `json:"id"`
	LeadID          string      `json:"lead_id"`
	Subject         string      `json:"subject"`
	Body            string      `json:"body"`
	ConfidenceScore int         `json:"confidence_score"`
	Status          EmailStatus `json:"status"`
	ResearchSummary string      `json:"research_summary,omitempty"`
	CreatedAt       time.Time   `json:"created_at"`
	UpdatedAt       time.Time   `json:"updated_at"`
}

// Draft is the unsaved subject/body pair produced by the content generator.
type Draft struct {
	Subject string `json:"subject"`
	Body    string `json:"body"`
	Summary string `json:"summary"`
}

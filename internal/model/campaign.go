// Package model defines the domain types shared across the outreach pipeline.
package model

import "time"

// CampaignStatus represents the lifecycle state of a campaign run.
// Transitions are linear and never reversed:
// pending -> processing -> complete (or error).
type CampaignStatus string

const (
	CampaignStatusPending    CampaignStatus = "pending"
	CampaignStatusProcessing CampaignStatus = "processing"
	CampaignStatusComplete   CampaignStatus = "complete"
	CampaignStatusError      CampaignStatus = "error"
)

// Campaign is one batch-processing run over a set of leads.
type Campaign struct {
	ID             string         `json:"id"`
	UserID         string         `json:"user_id"`
	Name           string         `json:"name"`
	Status         CampaignStatus `json:"status"`
	TotalLeads     int            `json:"total_leads"`
	ProcessedLeads int            `json:"processed_leads"`
	ProcessedAt    *time.Time     `json:"processed_at,omitempty"`
	CreatedAt      time.Time      `json:"created_at"`
}

// Progress is the externally visible view of a running campaign.
// ProcessedLeads counts leads that reached a terminal outcome, including
// tolerated failures, so readers must treat it as an eventually-consistent
// progress counter rather than a count of generated emails.
type Progress struct {
	CampaignID     string         `json:"campaign_id"`
	Status         CampaignStatus `json:"status"`
	ProcessedLeads int            `json:"processed_leads"`
	TotalLeads     int            `json:"total_leads"`
}

package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/algominds35/email-tool/internal/model"
)

func newTestSQLiteStore(t *testing.T) *SQLiteStore {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "test.db")
	st, err := NewSQLite(dbPath)
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() }) //nolint:errcheck
	require.NoError(t, st.Migrate(context.Background()))
	return st
}

func seedTestUser(t *testing.T, st *SQLiteStore, credits int) *model.User {
	t.Helper()
	user := &model.User{
		Email:           "founder@example.com",
		CompanyName:     "Acme Outreach",
		EmailsRemaining: credits,
	}
	require.NoError(t, st.CreateUser(context.Background(), user))
	return user
}

// --- Users ---

func TestSQLite_CreateAndGetUser(t *testing.T) {
	st := newTestSQLiteStore(t)
	ctx := context.Background()

	user := &model.User{
		Email:              "founder@example.com",
		CompanyName:        "Acme Outreach",
		ProductDescription: "Cold email automation",
		ValueProp:          "book more meetings",
		TargetAudience:     "Sales leaders",
		EmailsRemaining:    50,
	}
	require.NoError(t, st.CreateUser(ctx, user))
	require.NotEmpty(t, user.ID)

	got, err := st.GetUser(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, "founder@example.com", got.Email)
	assert.Equal(t, "Acme Outreach", got.CompanyName)
	assert.Equal(t, 50, got.EmailsRemaining)
}

func TestSQLite_GetUser_NotFound(t *testing.T) {
	st := newTestSQLiteStore(t)

	_, err := st.GetUser(context.Background(), "nonexistent")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
}

func TestSQLite_DecrementCredits(t *testing.T) {
	st := newTestSQLiteStore(t)
	ctx := context.Background()
	user := seedTestUser(t, st, 3)

	require.NoError(t, st.DecrementCredits(ctx, user.ID))
	require.NoError(t, st.DecrementCredits(ctx, user.ID))

	got, err := st.GetUser(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, got.EmailsRemaining)
}

func TestSQLite_DecrementCredits_UnknownUser(t *testing.T) {
	st := newTestSQLiteStore(t)

	err := st.DecrementCredits(context.Background(), "nonexistent")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
}

// --- Campaigns ---

func TestSQLite_CreateCampaign_PersistsLeads(t *testing.T) {
	st := newTestSQLiteStore(t)
	ctx := context.Background()
	user := seedTestUser(t, st, 10)

	inputs := []model.LeadInput{
		{Email: "jane@acme.com", FirstName: "Jane", LastName: "Doe", Company: "Acme", Title: "VP Sales"},
		{Email: "bob@globex.com", FirstName: "Bob", CompanyWebsite: "https://globex.com"},
	}
	campaign, err := st.CreateCampaign(ctx, user.ID, "Q3 Outreach", inputs)
	require.NoError(t, err)
	require.NotEmpty(t, campaign.ID)
	assert.Equal(t, model.CampaignStatusPending, campaign.Status)
	assert.Equal(t, 2, campaign.TotalLeads)
	assert.Equal(t, 0, campaign.ProcessedLeads)

	leads, err := st.ListLeads(ctx, campaign.ID)
	require.NoError(t, err)
	require.Len(t, leads, 2)
	assert.Equal(t, "jane@acme.com", leads[0].Email)
	assert.Equal(t, "Jane", leads[0].FirstName)
	assert.Equal(t, campaign.ID, leads[0].CampaignID)
	assert.Nil(t, leads[0].Research)
}

func TestSQLite_GetCampaign_NotFound(t *testing.T) {
	st := newTestSQLiteStore(t)

	_, err := st.GetCampaign(context.Background(), "nonexistent")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
}

func TestSQLite_CampaignLifecycle(t *testing.T) {
	st := newTestSQLiteStore(t)
	ctx := context.Background()
	user := seedTestUser(t, st, 10)

	campaign, err := st.CreateCampaign(ctx, user.ID, "Lifecycle", []model.LeadInput{
		{Email: "a@a.com", FirstName: "A"},
		{Email: "b@b.com", FirstName: "B"},
	})
	require.NoError(t, err)

	require.NoError(t, st.StartCampaign(ctx, campaign.ID))
	got, err := st.GetCampaign(ctx, campaign.ID)
	require.NoError(t, err)
	assert.Equal(t, model.CampaignStatusProcessing, got.Status)
	assert.Nil(t, got.ProcessedAt)

	require.NoError(t, st.IncrementProcessed(ctx, campaign.ID))
	require.NoError(t, st.IncrementProcessed(ctx, campaign.ID))
	got, err = st.GetCampaign(ctx, campaign.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, got.ProcessedLeads)

	require.NoError(t, st.CompleteCampaign(ctx, campaign.ID))
	got, err = st.GetCampaign(ctx, campaign.ID)
	require.NoError(t, err)
	assert.Equal(t, model.CampaignStatusComplete, got.Status)
	require.NotNil(t, got.ProcessedAt)
	firstStamp := *got.ProcessedAt

	// A second completion must not move the timestamp.
	require.NoError(t, st.CompleteCampaign(ctx, campaign.ID))
	got, err = st.GetCampaign(ctx, campaign.ID)
	require.NoError(t, err)
	require.NotNil(t, got.ProcessedAt)
	assert.Equal(t, firstStamp, *got.ProcessedAt)
}

func TestSQLite_StartCampaign_ResetsProgress(t *testing.T) {
	st := newTestSQLiteStore(t)
	ctx := context.Background()
	user := seedTestUser(t, st, 10)

	campaign, err := st.CreateCampaign(ctx, user.ID, "Restart", []model.LeadInput{
		{Email: "a@a.com", FirstName: "A"},
	})
	require.NoError(t, err)

	require.NoError(t, st.StartCampaign(ctx, campaign.ID))
	require.NoError(t, st.IncrementProcessed(ctx, campaign.ID))

	require.NoError(t, st.StartCampaign(ctx, campaign.ID))
	got, err := st.GetCampaign(ctx, campaign.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, got.ProcessedLeads)
}

func TestSQLite_FailCampaign(t *testing.T) {
	st := newTestSQLiteStore(t)
	ctx := context.Background()
	user := seedTestUser(t, st, 10)

	campaign, err := st.CreateCampaign(ctx, user.ID, "Doomed", []model.LeadInput{
		{Email: "a@a.com", FirstName: "A"},
	})
	require.NoError(t, err)

	require.NoError(t, st.FailCampaign(ctx, campaign.ID))
	got, err := st.GetCampaign(ctx, campaign.ID)
	require.NoError(t, err)
	assert.Equal(t, model.CampaignStatusError, got.Status)
}

// --- Leads ---

func TestSQLite_SaveAndLoadLeadResearch(t *testing.T) {
	st := newTestSQLiteStore(t)
	ctx := context.Background()
	user := seedTestUser(t, st, 10)

	campaign, err := st.CreateCampaign(ctx, user.ID, "Research", []model.LeadInput{
		{Email: "jane@acme.com", FirstName: "Jane"},
	})
	require.NoError(t, err)
	leads, err := st.ListLeads(ctx, campaign.ID)
	require.NoError(t, err)
	require.Len(t, leads, 1)

	research := &model.Research{
		LinkedIn: &model.LinkedInSignal{
			Headline: "VP Sales at Acme",
			Posts:    []model.Post{{Text: "We just shipped v2"}},
		},
		Website: &model.WebsiteSignal{Content: "Acme builds widgets", Source: "jina"},
	}
	require.NoError(t, st.SaveLeadResearch(ctx, leads[0].ID, research))

	got, err := st.GetLead(ctx, leads[0].ID)
	require.NoError(t, err)
	require.NotNil(t, got.Research)
	require.NotNil(t, got.Research.LinkedIn)
	assert.Equal(t, "VP Sales at Acme", got.Research.LinkedIn.Headline)
	require.NotNil(t, got.Research.Website)
	assert.Equal(t, "jina", got.Research.Website.Source)
	assert.Nil(t, got.Research.News)
}

func TestSQLite_SaveLeadResearch_UnknownLead(t *testing.T) {
	st := newTestSQLiteStore(t)

	err := st.SaveLeadResearch(context.Background(), "nonexistent", &model.Research{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
}

// --- Emails ---

func seedLead(t *testing.T, st *SQLiteStore, userID string) model.Lead {
	t.Helper()
	ctx := context.Background()
	campaign, err := st.CreateCampaign(ctx, userID, "Emails", []model.LeadInput{
		{Email: "jane@acme.com", FirstName: "Jane"},
	})
	require.NoError(t, err)
	leads, err := st.ListLeads(ctx, campaign.ID)
	require.NoError(t, err)
	require.Len(t, leads, 1)
	return leads[0]
}

func TestSQLite_CreateAndGetEmail(t *testing.T) {
	st := newTestSQLiteStore(t)
	ctx := context.Background()
	user := seedTestUser(t, st, 10)
	lead := seedLead(t, st, user.ID)

	email := &model.Email{
		LeadID:          lead.ID,
		Subject:         "Quick question about Acme",
		Body:            "Saw your recent launch.",
		ConfidenceScore: 85,
		ResearchSummary: "LinkedIn headline, website",
	}
	require.NoError(t, st.CreateEmail(ctx, email))
	require.NotEmpty(t, email.ID)
	assert.Equal(t, model.EmailStatusGenerated, email.Status)
	assert.False(t, email.CreatedAt.IsZero())

	got, err := st.GetEmail(ctx, email.ID)
	require.NoError(t, err)
	assert.Equal(t, "Quick question about Acme", got.Subject)
	assert.Equal(t, 85, got.ConfidenceScore)
	assert.Equal(t, model.EmailStatusGenerated, got.Status)
}

func TestSQLite_GetEmailByLead(t *testing.T) {
	st := newTestSQLiteStore(t)
	ctx := context.Background()
	user := seedTestUser(t, st, 10)
	lead := seedLead(t, st, user.ID)

	// Absent email is (nil, nil), not an error: the processor uses this
	// to decide whether a lead was already handled.
	got, err := st.GetEmailByLead(ctx, lead.ID)
	require.NoError(t, err)
	assert.Nil(t, got)

	email := &model.Email{LeadID: lead.ID, Subject: "s", Body: "b"}
	require.NoError(t, st.CreateEmail(ctx, email))

	got, err = st.GetEmailByLead(ctx, lead.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, email.ID, got.ID)
}

func TestSQLite_CreateEmail_DuplicateLeadRejected(t *testing.T) {
	st := newTestSQLiteStore(t)
	ctx := context.Background()
	user := seedTestUser(t, st, 10)
	lead := seedLead(t, st, user.ID)

	require.NoError(t, st.CreateEmail(ctx, &model.Email{LeadID: lead.ID, Subject: "a", Body: "a"}))
	err := st.CreateEmail(ctx, &model.Email{LeadID: lead.ID, Subject: "b", Body: "b"})
	require.Error(t, err)
}

func TestSQLite_ListEmails_ByCampaign(t *testing.T) {
	st := newTestSQLiteStore(t)
	ctx := context.Background()
	user := seedTestUser(t, st, 10)

	campaign, err := st.CreateCampaign(ctx, user.ID, "Two leads", []model.LeadInput{
		{Email: "a@a.com", FirstName: "A"},
		{Email: "b@b.com", FirstName: "B"},
	})
	require.NoError(t, err)
	other, err := st.CreateCampaign(ctx, user.ID, "Other", []model.LeadInput{
		{Email: "c@c.com", FirstName: "C"},
	})
	require.NoError(t, err)

	leads, err := st.ListLeads(ctx, campaign.ID)
	require.NoError(t, err)
	otherLeads, err := st.ListLeads(ctx, other.ID)
	require.NoError(t, err)

	for _, l := range leads {
		require.NoError(t, st.CreateEmail(ctx, &model.Email{LeadID: l.ID, Subject: "s", Body: "b"}))
	}
	require.NoError(t, st.CreateEmail(ctx, &model.Email{LeadID: otherLeads[0].ID, Subject: "s", Body: "b"}))

	emails, err := st.ListEmails(ctx, campaign.ID)
	require.NoError(t, err)
	assert.Len(t, emails, 2)
}

func TestSQLite_UpdateEmail(t *testing.T) {
	st := newTestSQLiteStore(t)
	ctx := context.Background()
	user := seedTestUser(t, st, 10)
	lead := seedLead(t, st, user.ID)

	email := &model.Email{LeadID: lead.ID, Subject: "before", Body: "body"}
	require.NoError(t, st.CreateEmail(ctx, email))

	email.Subject = "after"
	email.Status = model.EmailStatusEdited
	require.NoError(t, st.UpdateEmail(ctx, email))

	got, err := st.GetEmail(ctx, email.ID)
	require.NoError(t, err)
	assert.Equal(t, "after", got.Subject)
	assert.Equal(t, model.EmailStatusEdited, got.Status)
	assert.True(t, !got.UpdatedAt.Before(got.CreatedAt))
}

func TestSQLite_UpdateEmail_NotFound(t *testing.T) {
	st := newTestSQLiteStore(t)

	err := st.UpdateEmail(context.Background(), &model.Email{ID: "nonexistent"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
}

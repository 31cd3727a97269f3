package pipeline

import (
	"context"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/algominds35/email-tool/internal/config"
	"github.com/algominds35/email-tool/internal/model"
	"github.com/algominds35/email-tool/internal/store"
	"github.com/algominds35/email-tool/pkg/anthropic"
)

// Pipeline owns the collaborators for lead processing: storage, the research
// aggregator, and the generative-text client.
type Pipeline struct {
	cfg      *config.Config
	store    store.Store
	research *Aggregator
	ai       anthropic.Client
}

// New creates a Pipeline with all dependencies.
func New(cfg *config.Config, st store.Store, research *Aggregator, aiClient anthropic.Client) *Pipeline {
	return &Pipeline{
		cfg:      cfg,
		store:    st,
		research: research,
		ai:       aiClient,
	}
}

func messageRequest(model string, maxTokens int64, system, prompt string, temperature *float64) anthropic.MessageRequest {
	return anthropic.MessageRequest{
		Model:       model,
		MaxTokens:   maxTokens,
		System:      system,
		Messages:    []anthropic.Message{{Role: "user", Content: prompt}},
		Temperature: temperature,
	}
}

// RegenerateEmail re-runs angle selection, generation, and scoring for an
// existing email using the lead's stored research, and overwrites the email
// in place. The edit status resets to generated since the new content is
// machine-written. No credit is charged: the credit was spent when the email
// was first generated.
func (p *Pipeline) RegenerateEmail(ctx context.Context, emailID string) (*model.Email, error) {
	email, err := p.store.GetEmail(ctx, emailID)
	if err != nil {
		return nil, eris.Wrap(err, "pipeline: load email")
	}
	lead, err := p.store.GetLead(ctx, email.LeadID)
	if err != nil {
		return nil, eris.Wrap(err, "pipeline: load lead")
	}
	campaign, err := p.store.GetCampaign(ctx, lead.CampaignID)
	if err != nil {
		return nil, eris.Wrap(err, "pipeline: load campaign")
	}
	user, err := p.store.GetUser(ctx, campaign.UserID)
	if err != nil {
		return nil, eris.Wrap(err, "pipeline: load user")
	}

	log := zap.L().With(zap.String("email", emailID), zap.String("lead", lead.Email))
	log.Info("pipeline: regenerating email")

	angle := p.SelectAngle(ctx, *lead, lead.Research)
	draft := p.GenerateDraft(ctx, *lead, user.Sender(), lead.Research, angle)

	email.Subject = draft.Subject
	email.Body = draft.Body
	email.ConfidenceScore = Score(draft.Body, lead.Research.Present())
	email.ResearchSummary = draft.Summary
	email.Status = model.EmailStatusGenerated

	if err := p.store.UpdateEmail(ctx, email); err != nil {
		return nil, eris.Wrap(err, "pipeline: update email")
	}
	return email, nil
}

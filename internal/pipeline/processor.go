package pipeline

import (
	"context"

	"go.uber.org/zap"

	"github.com/algominds35/email-tool/internal/model"
)

// ProcessLead runs one lead through the full pipeline:
// research -> angle -> generate -> score -> persist.
//
// The outcome is always terminal. A lead that already has an email is
// skipped without regenerating or charging a second credit, so re-running a
// campaign is safe. Failures are tolerated per lead: the error is logged
// with the lead's identity, the progress counter still advances, and sibling
// leads keep processing.
func (p *Pipeline) ProcessLead(ctx context.Context, lead model.Lead, sender model.SenderContext, userID string) model.LeadOutcome {
	log := zap.L().With(
		zap.String("lead_id", lead.ID),
		zap.String("lead", lead.Email),
		zap.String("campaign_id", lead.CampaignID),
	)

	outcome := func(o model.LeadOutcome) model.LeadOutcome {
		if err := p.store.IncrementProcessed(ctx, lead.CampaignID); err != nil {
			log.Warn("processor: failed to advance progress counter", zap.Error(err))
		}
		return o
	}
	fail := func(step string, err error) model.LeadOutcome {
		log.Error("processor: lead failed", zap.String("step", step), zap.Error(err))
		return outcome(model.LeadOutcome{
			LeadID:     lead.ID,
			Status:     model.OutcomeFailed,
			FailedStep: step,
			Reason:     err.Error(),
		})
	}

	existing, err := p.store.GetEmailByLead(ctx, lead.ID)
	if err != nil {
		return fail("lookup_email", err)
	}
	if existing != nil {
		log.Info("processor: email already exists, skipping lead")
		return outcome(model.LeadOutcome{
			LeadID: lead.ID,
			Status: model.OutcomeSkipped,
			Email:  existing,
		})
	}

	log.Info("processor: researching lead")
	research := p.research.Gather(ctx, lead)
	if err := p.store.SaveLeadResearch(ctx, lead.ID, research); err != nil {
		return fail("save_research", err)
	}

	log.Info("processor: generating email")
	angle := p.SelectAngle(ctx, lead, research)
	draft := p.GenerateDraft(ctx, lead, sender, research, angle)
	score := Score(draft.Body, research.Present())

	email := &model.Email{
		LeadID:          lead.ID,
		Subject:         draft.Subject,
		Body:            draft.Body,
		ConfidenceScore: score,
		ResearchSummary: draft.Summary,
	}
	if err := p.store.CreateEmail(ctx, email); err != nil {
		return fail("persist_email", err)
	}

	// The email is already persisted; a failed decrement drifts the ledger
	// rather than losing work, so log it loudly and keep the outcome.
	if err := p.store.DecrementCredits(ctx, userID); err != nil {
		log.Error("processor: failed to decrement credits", zap.Error(err))
	}

	log.Info("processor: lead emailed",
		zap.Int("score", score),
		zap.String("angle_type", string(angle.Type)),
	)
	return outcome(model.LeadOutcome{
		LeadID: lead.ID,
		Status: model.OutcomeEmailed,
		Email:  email,
	})
}

package pipeline

import (
	"context"
	"sync"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/algominds35/email-tool/internal/model"
)

const defaultLeadConcurrency = 10

// RunSummary aggregates per-lead outcomes for one campaign run.
type RunSummary struct {
	CampaignID string
	Emailed    int
	Skipped    int
	Failed     int
	Outcomes   []model.LeadOutcome
}

// RunCampaign processes every lead in the campaign through a bounded worker
// pool. Per-lead failures are tolerated and counted; the campaign still
// completes. Storage errors around the campaign itself (loading leads,
// status transitions) abort the run and surface to the caller, which is
// what lets the dispatcher retry the whole job.
func (p *Pipeline) RunCampaign(ctx context.Context, campaignID, userID string) (*RunSummary, error) {
	log := zap.L().With(zap.String("campaign_id", campaignID))

	user, err := p.store.GetUser(ctx, userID)
	if err != nil {
		return nil, eris.Wrap(err, "campaign: load user")
	}
	sender := user.Sender()

	if err := p.store.StartCampaign(ctx, campaignID); err != nil {
		return nil, eris.Wrap(err, "campaign: mark processing")
	}

	leads, err := p.store.ListLeads(ctx, campaignID)
	if err != nil {
		return nil, eris.Wrap(err, "campaign: list leads")
	}
	log.Info("campaign: processing leads", zap.Int("total", len(leads)))

	concurrency := p.cfg.Pipeline.LeadConcurrency
	if concurrency <= 0 {
		concurrency = defaultLeadConcurrency
	}

	summary := &RunSummary{CampaignID: campaignID}
	var mu sync.Mutex

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)
	for _, lead := range leads {
		lead := lead
		g.Go(func() error {
			outcome := p.ProcessLead(gctx, lead, sender, userID)
			mu.Lock()
			defer mu.Unlock()
			summary.Outcomes = append(summary.Outcomes, outcome)
			switch outcome.Status {
			case model.OutcomeEmailed:
				summary.Emailed++
			case model.OutcomeSkipped:
				summary.Skipped++
			case model.OutcomeFailed:
				summary.Failed++
			}
			return nil
		})
	}
	g.Wait() //nolint:errcheck // workers never return errors

	if err := p.store.CompleteCampaign(ctx, campaignID); err != nil {
		return nil, eris.Wrap(err, "campaign: mark complete")
	}

	log.Info("campaign: complete",
		zap.Int("emailed", summary.Emailed),
		zap.Int("skipped", summary.Skipped),
		zap.Int("failed", summary.Failed),
	)
	return summary, nil
}

// Package dispatch runs campaign processing jobs in the background with a
// bounded concurrency pool and per-job retries.
package dispatch

import (
	"context"
	"sync"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/sync/semaphore"

	"github.com/algominds35/email-tool/internal/config"
	"github.com/algominds35/email-tool/internal/model"
	"github.com/algominds35/email-tool/internal/pipeline"
	"github.com/algominds35/email-tool/internal/resilience"
	"github.com/algominds35/email-tool/internal/store"
)

const (
	defaultCampaignConcurrency = 5
	defaultMaxAttempts         = 3
	defaultInitialBackoff      = 5 * time.Second
)

// Runner executes one campaign end to end. Satisfied by *pipeline.Pipeline.
type Runner interface {
	RunCampaign(ctx context.Context, campaignID, userID string) (*pipeline.RunSummary, error)
}

// Dispatcher validates campaign requests and runs them asynchronously.
// At most CampaignConcurrency campaigns process at once; additional jobs
// queue on the semaphore. Each job retries on any error with exponential
// backoff before the campaign is marked failed.
type Dispatcher struct {
	store  store.Store
	runner Runner

	concurrency int64
	retry       resilience.RetryConfig
	sem         *semaphore.Weighted

	mu       sync.Mutex
	inFlight map[string]struct{}
	wg       sync.WaitGroup

	// OnComplete and OnFailed, when set, observe terminal job states. Used
	// by tests and operational hooks; never called while locks are held.
	OnComplete func(campaignID string, summary *pipeline.RunSummary)
	OnFailed   func(campaignID string, err error)
}

// New creates a Dispatcher from config, applying defaults for unset values.
func New(st store.Store, runner Runner, cfg config.DispatchConfig) *Dispatcher {
	concurrency := int64(cfg.CampaignConcurrency)
	if concurrency <= 0 {
		concurrency = defaultCampaignConcurrency
	}
	maxAttempts := cfg.MaxAttempts
	if maxAttempts <= 0 {
		maxAttempts = defaultMaxAttempts
	}
	backoff := time.Duration(cfg.InitialBackoffSecs) * time.Second
	if backoff <= 0 {
		backoff = defaultInitialBackoff
	}

	return &Dispatcher{
		store:       st,
		runner:      runner,
		concurrency: concurrency,
		sem:         semaphore.NewWeighted(concurrency),
		retry: resilience.RetryConfig{
			MaxAttempts:    maxAttempts,
			InitialBackoff: backoff,
			ShouldRetry:    resilience.RetryAlways,
		},
		inFlight: make(map[string]struct{}),
	}
}

// CreateAndEnqueue validates the lead list and the user's credit balance,
// persists the campaign, and schedules it for background processing. The
// returned campaign is in pending state; progress is observable via Status.
func (d *Dispatcher) CreateAndEnqueue(ctx context.Context, userID, name string, leads []model.LeadInput) (*model.Campaign, error) {
	if len(leads) == 0 {
		return nil, eris.New("dispatch: campaign has no leads")
	}
	for i, lead := range leads {
		if !lead.Valid() {
			return nil, eris.Errorf("dispatch: lead %d is missing an email address or first name", i)
		}
	}

	user, err := d.store.GetUser(ctx, userID)
	if err != nil {
		return nil, eris.Wrap(err, "dispatch: load user")
	}
	if user.EmailsRemaining < len(leads) {
		return nil, eris.Errorf("dispatch: insufficient credits: have %d, need %d", user.EmailsRemaining, len(leads))
	}

	campaign, err := d.store.CreateCampaign(ctx, userID, name, leads)
	if err != nil {
		return nil, eris.Wrap(err, "dispatch: create campaign")
	}

	d.Enqueue(campaign.ID, userID)
	return campaign, nil
}

// Enqueue schedules an existing campaign for processing. Enqueueing a
// campaign that is already queued or running is a no-op, so repeated process
// requests cannot fork duplicate workers.
func (d *Dispatcher) Enqueue(campaignID, userID string) {
	d.mu.Lock()
	if _, running := d.inFlight[campaignID]; running {
		d.mu.Unlock()
		zap.L().Info("dispatch: campaign already in flight", zap.String("campaign_id", campaignID))
		return
	}
	d.inFlight[campaignID] = struct{}{}
	d.mu.Unlock()

	d.wg.Add(1)
	go d.run(campaignID, userID)
}

func (d *Dispatcher) run(campaignID, userID string) {
	defer d.wg.Done()
	defer func() {
		d.mu.Lock()
		delete(d.inFlight, campaignID)
		d.mu.Unlock()
	}()

	log := zap.L().With(zap.String("campaign_id", campaignID))
	ctx := context.Background()

	if err := d.sem.Acquire(ctx, 1); err != nil {
		log.Error("dispatch: semaphore acquire failed", zap.Error(err))
		return
	}
	defer d.sem.Release(1)

	retry := d.retry
	retry.OnRetry = resilience.RetryLogger("dispatch", "process campaign")

	var summary *pipeline.RunSummary
	err := resilience.Do(ctx, retry, func(ctx context.Context) error {
		var runErr error
		summary, runErr = d.runner.RunCampaign(ctx, campaignID, userID)
		return runErr
	})
	if err != nil {
		log.Error("dispatch: campaign failed after retries", zap.Error(err))
		if failErr := d.store.FailCampaign(ctx, campaignID); failErr != nil {
			log.Error("dispatch: failed to mark campaign errored", zap.Error(failErr))
		}
		if d.OnFailed != nil {
			d.OnFailed(campaignID, err)
		}
		return
	}

	log.Info("dispatch: campaign job complete",
		zap.Int("emailed", summary.Emailed),
		zap.Int("skipped", summary.Skipped),
		zap.Int("failed", summary.Failed),
	)
	if d.OnComplete != nil {
		d.OnComplete(campaignID, summary)
	}
}

// Status reports a campaign's processing progress.
func (d *Dispatcher) Status(ctx context.Context, campaignID string) (*model.Progress, error) {
	campaign, err := d.store.GetCampaign(ctx, campaignID)
	if err != nil {
		return nil, eris.Wrap(err, "dispatch: load campaign")
	}
	return &model.Progress{
		CampaignID:     campaign.ID,
		Status:         campaign.Status,
		ProcessedLeads: campaign.ProcessedLeads,
		TotalLeads:     campaign.TotalLeads,
	}, nil
}

// Drain blocks until all in-flight jobs finish. Used on shutdown.
func (d *Dispatcher) Drain() {
	d.wg.Wait()
}

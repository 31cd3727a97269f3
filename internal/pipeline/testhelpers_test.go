package pipeline

import (
	"github.com/algominds35/email-tool/internal/config"
	"github.com/algominds35/email-tool/internal/model"
	"github.com/algominds35/email-tool/internal/store"
	"github.com/algominds35/email-tool/pkg/anthropic"
)

func testConfig() *config.Config {
	return &config.Config{
		Anthropic: config.AnthropicConfig{Model: "claude-sonnet-4-5-20250929"},
		Research: config.ResearchConfig{
			ProfileTimeoutSecs: 5,
			WebsiteTimeoutSecs: 5,
			NewsTimeoutSecs:    5,
			ContentMaxChars:    3000,
		},
		Pipeline: config.PipelineConfig{LeadConcurrency: 4},
	}
}

// newTestPipeline wires a Pipeline with a disabled research aggregator, for
// tests that exercise generation and persistence without provider calls.
func newTestPipeline(st store.Store, ai anthropic.Client) *Pipeline {
	cfg := testConfig()
	return New(cfg, st, NewAggregator(cfg.Research, nil, nil, nil, 5), ai)
}

func testLead() model.Lead {
	return model.Lead{
		ID:         "lead-1",
		CampaignID: "camp-1",
		Email:      "jane@acme.com",
		FirstName:  "Jane",
		LastName:   "Doe",
		Company:    "Acme",
		Title:      "VP Sales",
	}
}

func testSender() model.SenderContext {
	return model.User{}.Sender()
}

package main

import (
	"context"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/algominds35/email-tool/internal/dispatch"
	"github.com/algominds35/email-tool/internal/pipeline"
	"github.com/algominds35/email-tool/internal/scrape"
	"github.com/algominds35/email-tool/internal/store"
	anthropicpkg "github.com/algominds35/email-tool/pkg/anthropic"
	"github.com/algominds35/email-tool/pkg/brave"
	"github.com/algominds35/email-tool/pkg/firecrawl"
	"github.com/algominds35/email-tool/pkg/jina"
	"github.com/algominds35/email-tool/pkg/proxycurl"
)

// pipelineEnv bundles the wired application for a command's lifetime.
type pipelineEnv struct {
	Store      store.Store
	Pipeline   *pipeline.Pipeline
	Dispatcher *dispatch.Dispatcher
}

func (e *pipelineEnv) Close() {
	if e.Dispatcher != nil {
		e.Dispatcher.Drain()
	}
	if e.Store != nil {
		_ = e.Store.Close()
	}
}

func initStore(ctx context.Context) (store.Store, error) {
	switch cfg.Store.Driver {
	case "sqlite":
		return store.NewSQLite(cfg.Store.DatabaseURL)
	case "postgres", "":
		return store.NewPostgres(ctx, cfg.Store.DatabaseURL, nil)
	default:
		return nil, eris.Errorf("unknown store driver %q", cfg.Store.Driver)
	}
}

// initEnv sets up the store, the provider clients, and the pipeline with its
// dispatcher. Callers should defer env.Close().
func initEnv(ctx context.Context) (*pipelineEnv, error) {
	if cfg.Anthropic.Key == "" {
		return nil, eris.New("anthropic api key is required (EMAILTOOL_ANTHROPIC_KEY)")
	}

	st, err := initStore(ctx)
	if err != nil {
		return nil, eris.Wrap(err, "init store")
	}
	if err := st.Migrate(ctx); err != nil {
		_ = st.Close()
		return nil, eris.Wrap(err, "migrate store")
	}

	anthropicClient := anthropicpkg.NewClient(cfg.Anthropic.Key)

	// Profile lookups are optional: without a key every lead simply loses
	// the LinkedIn signal.
	var profileClient proxycurl.Client
	if cfg.Proxycurl.Key != "" {
		profileClient = proxycurl.NewClient(cfg.Proxycurl.Key, proxycurl.WithBaseURL(cfg.Proxycurl.BaseURL))
	} else {
		zap.L().Warn("EMAILTOOL_PROXYCURL_KEY not set, profile research disabled")
	}

	// Website text extraction: Firecrawl first when paid access is
	// configured, Jina Reader as the free fallback.
	var scrapers []scrape.Scraper
	if cfg.Firecrawl.Key != "" {
		fcClient := firecrawl.NewClient(cfg.Firecrawl.Key, firecrawl.WithBaseURL(cfg.Firecrawl.BaseURL))
		scrapers = append(scrapers, scrape.NewFirecrawlScraper(fcClient))
	}
	jinaClient := jina.NewClient(cfg.Jina.Key, jina.WithBaseURL(cfg.Jina.BaseURL))
	scrapers = append(scrapers, scrape.NewJinaScraper(jinaClient))
	chain := scrape.NewChain(scrapers...)

	var newsClient brave.Client
	if cfg.Brave.Key != "" {
		newsClient = brave.NewClient(cfg.Brave.Key, brave.WithBaseURL(cfg.Brave.BaseURL))
	} else {
		zap.L().Warn("EMAILTOOL_BRAVE_KEY not set, news research disabled")
	}

	aggregator := pipeline.NewAggregator(cfg.Research, profileClient, chain, newsClient, cfg.Brave.Count)
	p := pipeline.New(cfg, st, aggregator, anthropicClient)
	d := dispatch.New(st, p, cfg.Dispatch)

	return &pipelineEnv{Store: st, Pipeline: p, Dispatcher: d}, nil
}

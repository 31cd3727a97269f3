// Package pipeline implements the lead outreach pipeline: research
// aggregation, angle selection, email generation, quality scoring, and the
// per-campaign worker pool that drives them.
package pipeline

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/algominds35/email-tool/internal/config"
	"github.com/algominds35/email-tool/internal/model"
	"github.com/algominds35/email-tool/internal/scrape"
	"github.com/algominds35/email-tool/pkg/brave"
	"github.com/algominds35/email-tool/pkg/proxycurl"
)

const (
	maxPosts        = 3
	maxNewsArticles = 5
)

// Aggregator gathers per-lead research from three independent sources:
// professional profile, company website text, and recent company news.
// Every source is optional and fault-tolerant; a provider failure degrades
// that signal to nil instead of failing the lead.
type Aggregator struct {
	cfg       config.ResearchConfig
	profile   proxycurl.Client
	chain     *scrape.Chain
	news      brave.Client
	newsCount int

	profileLimiter *rate.Limiter
	websiteLimiter *rate.Limiter
	newsLimiter    *rate.Limiter
}

// NewAggregator builds an Aggregator. Any client may be nil, which disables
// that source. newsCount bounds the search result count per news lookup.
func NewAggregator(cfg config.ResearchConfig, profile proxycurl.Client, chain *scrape.Chain, news brave.Client, newsCount int) *Aggregator {
	if newsCount <= 0 {
		newsCount = maxNewsArticles
	}
	return &Aggregator{
		cfg:            cfg,
		profile:        profile,
		chain:          chain,
		news:           news,
		newsCount:      newsCount,
		profileLimiter: newLimiter(cfg.ProfileRate),
		websiteLimiter: newLimiter(cfg.WebsiteRate),
		newsLimiter:    newLimiter(cfg.NewsRate),
	}
}

func newLimiter(perSecond float64) *rate.Limiter {
	if perSecond <= 0 {
		return rate.NewLimiter(rate.Inf, 1)
	}
	return rate.NewLimiter(rate.Limit(perSecond), 1)
}

// Gather runs the three sub-fetches in parallel and returns whatever was
// collected. It never returns an error: missing inputs and provider failures
// both degrade to nil signals. The call returns when the slowest non-failed
// sub-fetch finishes, bounded by the per-source timeouts.
func (a *Aggregator) Gather(ctx context.Context, lead model.Lead) *model.Research {
	research := &model.Research{}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		research.LinkedIn = a.fetchProfile(ctx, lead)
		return nil
	})
	g.Go(func() error {
		research.Website = a.fetchWebsite(ctx, lead)
		return nil
	})
	g.Go(func() error {
		research.News = a.fetchNews(ctx, lead)
		return nil
	})
	g.Wait() //nolint:errcheck // sub-fetches never return errors

	return research
}

func (a *Aggregator) fetchProfile(ctx context.Context, lead model.Lead) *model.LinkedInSignal {
	if a.profile == nil || lead.LinkedInURL == "" {
		return nil
	}
	log := zap.L().With(zap.String("lead", lead.Email), zap.String("source", "profile"))

	ctx, cancel := context.WithTimeout(ctx, time.Duration(a.cfg.ProfileTimeoutSecs)*time.Second)
	defer cancel()

	if err := a.profileLimiter.Wait(ctx); err != nil {
		log.Warn("research: rate wait aborted", zap.Error(err))
		return nil
	}

	profile, err := a.profile.GetProfile(ctx, lead.LinkedInURL)
	if err != nil {
		log.Warn("research: profile fetch failed", zap.Error(err))
		return nil
	}

	signal := &model.LinkedInSignal{
		Headline: profile.Headline,
		Summary:  profile.Summary,
		Location: strings.TrimSpace(profile.City + " " + profile.Country),
	}
	if len(profile.Experiences) > 0 {
		signal.CurrentRole = profile.Experiences[0].Title
		signal.CurrentCompany = profile.Experiences[0].Company
	}

	// Posts are best-effort: the profile alone is still a usable signal.
	posts, err := a.profile.GetPosts(ctx, lead.LinkedInURL)
	if err != nil {
		log.Warn("research: posts fetch failed", zap.Error(err))
		return signal
	}
	for i, post := range posts.Posts {
		if i >= maxPosts {
			break
		}
		signal.Posts = append(signal.Posts, model.Post{Text: post.Text, Date: post.PostedOn})
	}
	return signal
}

func (a *Aggregator) fetchWebsite(ctx context.Context, lead model.Lead) *model.WebsiteSignal {
	if a.chain == nil {
		return nil
	}
	targetURL := lead.CompanyWebsite
	if targetURL == "" {
		targetURL = lead.EmailDomain()
	}
	if targetURL == "" {
		return nil
	}
	if !strings.HasPrefix(targetURL, "http://") && !strings.HasPrefix(targetURL, "https://") {
		targetURL = "https://" + targetURL
	}
	log := zap.L().With(zap.String("lead", lead.Email), zap.String("source", "website"))

	ctx, cancel := context.WithTimeout(ctx, time.Duration(a.cfg.WebsiteTimeoutSecs)*time.Second)
	defer cancel()

	if err := a.websiteLimiter.Wait(ctx); err != nil {
		log.Warn("research: rate wait aborted", zap.Error(err))
		return nil
	}

	result, err := a.chain.Scrape(ctx, targetURL)
	if err != nil {
		log.Warn("research: website scrape failed", zap.Error(err))
		return nil
	}
	return &model.WebsiteSignal{
		Content: truncate(result.Content, a.cfg.ContentMaxChars),
		Source:  result.Source,
	}
}

func (a *Aggregator) fetchNews(ctx context.Context, lead model.Lead) *model.NewsSignal {
	if a.news == nil || lead.Company == "" {
		return nil
	}
	log := zap.L().With(zap.String("lead", lead.Email), zap.String("source", "news"))

	ctx, cancel := context.WithTimeout(ctx, time.Duration(a.cfg.NewsTimeoutSecs)*time.Second)
	defer cancel()

	if err := a.newsLimiter.Wait(ctx); err != nil {
		log.Warn("research: rate wait aborted", zap.Error(err))
		return nil
	}

	query := fmt.Sprintf("%s funding OR news OR announcement", lead.Company)
	resp, err := a.news.Search(ctx, query, a.newsCount)
	if err != nil {
		log.Warn("research: news search failed", zap.Error(err))
		return nil
	}
	if len(resp.Web.Results) == 0 {
		return nil
	}

	signal := &model.NewsSignal{Source: "brave"}
	for i, result := range resp.Web.Results {
		if i >= maxNewsArticles {
			break
		}
		signal.Articles = append(signal.Articles, model.Article{
			Title:       result.Title,
			Description: result.Description,
			URL:         result.URL,
			Date:        result.Age,
		})
	}
	return signal
}

// truncate caps s at max characters. Non-positive max disables truncation.
func truncate(s string, max int) string {
	if max <= 0 || len(s) <= max {
		return s
	}
	return s[:max]
}

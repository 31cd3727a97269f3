package scrape

import (
	"context"

	"github.com/rotisserie/eris"

	"github.com/algominds35/email-tool/pkg/firecrawl"
)

// FirecrawlScraper extracts page markdown via the Firecrawl API.
type FirecrawlScraper struct {
	client firecrawl.Client
}

// NewFirecrawlScraper creates a Firecrawl-backed scraper.
func NewFirecrawlScraper(client firecrawl.Client) *FirecrawlScraper {
	return &FirecrawlScraper{client: client}
}

func (s *FirecrawlScraper) Name() string { return "firecrawl" }

func (s *FirecrawlScraper) Scrape(ctx context.Context, targetURL string) (*Result, error) {
	resp, err := s.client.Scrape(ctx, firecrawl.ScrapeRequest{
		URL:     targetURL,
		Formats: []string{"markdown"},
	})
	if err != nil {
		return nil, eris.Wrap(err, "scrape: firecrawl scrape")
	}
	if !resp.Success || resp.Data.Markdown == "" {
		return nil, eris.Errorf("scrape: firecrawl returned no content for %s", targetURL)
	}
	return &Result{
		URL:     targetURL,
		Title:   resp.Data.Title,
		Content: resp.Data.Markdown,
		Source:  s.Name(),
	}, nil
}

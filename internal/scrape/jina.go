package scrape

import (
	"context"

	"github.com/rotisserie/eris"

	"github.com/algominds35/email-tool/pkg/jina"
)

// JinaScraper extracts page text via the Jina AI Reader.
type JinaScraper struct {
	client jina.Client
}

// NewJinaScraper creates a Jina-backed scraper.
func NewJinaScraper(client jina.Client) *JinaScraper {
	return &JinaScraper{client: client}
}

func (s *JinaScraper) Name() string { return "jina" }

func (s *JinaScraper) Scrape(ctx context.Context, targetURL string) (*Result, error) {
	resp, err := s.client.Read(ctx, targetURL)
	if err != nil {
		return nil, eris.Wrap(err, "scrape: jina read")
	}
	if resp.Data.Content == "" {
		return nil, eris.Errorf("scrape: jina returned empty content for %s", targetURL)
	}
	return &Result{
		URL:     targetURL,
		Title:   resp.Data.Title,
		Content: resp.Data.Content,
		Source:  s.Name(),
	}, nil
}

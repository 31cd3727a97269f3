// Package scrape provides chained website-text extraction for lead research.
package scrape

import "context"

// Result is the outcome of a successful scrape.
type Result struct {
	URL     string
	Title   string
	Content string // markdown or plain text
	Source  string // scraper name that produced the content
}

// Scraper fetches one URL's text content.
type Scraper interface {
	// Name identifies the scraper in logs and result provenance.
	Name() string
	// Scrape fetches the URL's content. Implementations return an error on
	// any failure; the chain decides whether to fall through.
	Scrape(ctx context.Context, targetURL string) (*Result, error)
}

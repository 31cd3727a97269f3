// Package proxycurl provides a client for the Proxycurl LinkedIn profile API.
package proxycurl

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/rotisserie/eris"

	"github.com/algominds35/email-tool/internal/resilience"
)

const defaultBaseURL = "https://nubela.co/proxycurl"

// Client defines the profile lookup operations used by the research aggregator.
type Client interface {
	// GetProfile fetches the profile behind a public LinkedIn URL.
	GetProfile(ctx context.Context, profileURL string) (*Profile, error)
	// GetPosts fetches the most recent posts for a profile URL.
	GetPosts(ctx context.Context, profileURL string) (*PostsResponse, error)
}

// Profile is the parsed response from GET /api/v2/linkedin.
type Profile struct {
	FullName    string       `json:"full_name"`
	Headline    string       `json:"headline"`
	Summary     string       `json:"summary"`
	City        string       `json:"city"`
	Country     string       `json:"country"`
	Experiences []Experience `json:"experiences"`
}

// Experience is a single role on the profile, most recent first.
type Experience struct {
	Title   string `json:"title"`
	Company string `json:"company"`
}

// PostsResponse is the parsed response from GET /api/linkedin/profile/posts.
type PostsResponse struct {
	Posts []Post `json:"posts"`
}

// Post is a single profile post.
type Post struct {
	Text     string `json:"text"`
	PostedOn string `json:"posted_on"`
}

// Option configures the client.
type Option func(*httpClient)

// WithBaseURL overrides the default API base URL.
func WithBaseURL(u string) Option {
	return func(c *httpClient) {
		c.baseURL = u
	}
}

// WithHTTPClient overrides the default http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *httpClient) {
		c.http = hc
	}
}

type httpClient struct {
	apiKey  string
	baseURL string
	http    *http.Client
}

// NewClient creates a Proxycurl API client.
func NewClient(apiKey string, opts ...Option) Client {
	c := &httpClient{
		apiKey:  apiKey,
		baseURL: defaultBaseURL,
		http: &http.Client{
			Timeout: 30 * time.Second,
			Transport: &http.Transport{
				MaxIdleConnsPerHost: 20,
				IdleConnTimeout:     90 * time.Second,
			},
		},
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

func (c *httpClient) GetProfile(ctx context.Context, profileURL string) (*Profile, error) {
	var profile Profile
	if err := c.get(ctx, "/api/v2/linkedin", profileURL, &profile); err != nil {
		return nil, eris.Wrap(err, "proxycurl: get profile")
	}
	return &profile, nil
}

func (c *httpClient) GetPosts(ctx context.Context, profileURL string) (*PostsResponse, error) {
	var posts PostsResponse
	if err := c.get(ctx, "/api/linkedin/profile/posts", profileURL, &posts); err != nil {
		return nil, eris.Wrap(err, "proxycurl: get posts")
	}
	return &posts, nil
}

func (c *httpClient) get(ctx context.Context, path, profileURL string, out any) error {
	q := url.Values{}
	q.Set("url", profileURL)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path+"?"+q.Encode(), nil)
	if err != nil {
		return eris.Wrap(err, "create request")
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.http.Do(req)
	if err != nil {
		return eris.Wrap(err, "send request")
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return eris.Wrap(err, "read response")
	}

	if resp.StatusCode != http.StatusOK {
		err := eris.Errorf("unexpected status %d: %s", resp.StatusCode, string(body))
		if resilience.IsTransientHTTPStatus(resp.StatusCode) {
			return resilience.NewTransientError(err, resp.StatusCode)
		}
		return err
	}

	if err := json.Unmarshal(body, out); err != nil {
		return eris.Wrap(err, "unmarshal response")
	}
	return nil
}

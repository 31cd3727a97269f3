package proxycurl

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/algominds35/email-tool/internal/resilience"
)

func TestGetProfile_Success(t *testing.T) {
	t.Parallel()

	want := Profile{
		FullName: "Jane Doe",
		Headline: "VP Sales at Acme",
		Summary:  "20 years selling things.",
		City:     "Austin",
		Country:  "US",
		Experiences: []Experience{
			{Title: "VP Sales", Company: "Acme"},
			{Title: "Director of Sales", Company: "Initech"},
		},
	}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/api/v2/linkedin", r.URL.Path)
		assert.Equal(t, "https://linkedin.com/in/janedoe", r.URL.Query().Get("url"))
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(want)
	}))
	defer srv.Close()

	client := NewClient("test-key", WithBaseURL(srv.URL))
	got, err := client.GetProfile(context.Background(), "https://linkedin.com/in/janedoe")

	require.NoError(t, err)
	assert.Equal(t, want.FullName, got.FullName)
	assert.Equal(t, want.Headline, got.Headline)
	require.Len(t, got.Experiences, 2)
	assert.Equal(t, "VP Sales", got.Experiences[0].Title)
}

func TestGetPosts_Success(t *testing.T) {
	t.Parallel()

	want := PostsResponse{
		Posts: []Post{
			{Text: "Excited to announce our Series B!", PostedOn: "2026-08-12"},
			{Text: "Hiring across the GTM org.", PostedOn: "2026-08-01"},
		},
	}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/linkedin/profile/posts", r.URL.Path)
		assert.Equal(t, "https://linkedin.com/in/janedoe", r.URL.Query().Get("url"))

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(want)
	}))
	defer srv.Close()

	client := NewClient("test-key", WithBaseURL(srv.URL))
	got, err := client.GetPosts(context.Background(), "https://linkedin.com/in/janedoe")

	require.NoError(t, err)
	require.Len(t, got.Posts, 2)
	assert.Equal(t, want.Posts[0].Text, got.Posts[0].Text)
}

func TestGetProfile_NotFoundIsPermanent(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{"error":"profile not found"}`))
	}))
	defer srv.Close()

	client := NewClient("test-key", WithBaseURL(srv.URL))
	_, err := client.GetProfile(context.Background(), "https://linkedin.com/in/ghost")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "404")
	assert.False(t, resilience.IsTransient(err))
}

func TestGetProfile_RateLimitIsTransient(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		w.Write([]byte(`{"error":"rate limit"}`))
	}))
	defer srv.Close()

	client := NewClient("test-key", WithBaseURL(srv.URL))
	_, err := client.GetProfile(context.Background(), "https://linkedin.com/in/janedoe")

	require.Error(t, err)
	assert.True(t, resilience.IsTransient(err))
}

func TestGetProfile_MalformedJSON(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{not json`))
	}))
	defer srv.Close()

	client := NewClient("test-key", WithBaseURL(srv.URL))
	_, err := client.GetProfile(context.Background(), "https://linkedin.com/in/janedoe")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "unmarshal")
}

func TestGetProfile_ContextCancellation(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	client := NewClient("test-key", WithBaseURL(srv.URL))
	_, err := client.GetProfile(ctx, "https://linkedin.com/in/janedoe")

	require.Error(t, err)
}

func TestNewClient_Defaults(t *testing.T) {
	t.Parallel()
	c := NewClient("my-key")
	hc := c.(*httpClient)
	assert.Equal(t, "my-key", hc.apiKey)
	assert.Equal(t, "https://nubela.co/proxycurl", hc.baseURL)
	assert.NotNil(t, hc.http)
}

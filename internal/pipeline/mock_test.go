package pipeline

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/algominds35/email-tool/internal/model"
	"github.com/algominds35/email-tool/pkg/anthropic"
	"github.com/algominds35/email-tool/pkg/brave"
	"github.com/algominds35/email-tool/pkg/jina"
	"github.com/algominds35/email-tool/pkg/proxycurl"
)

// --- Anthropic Mock ---

type mockAnthropicClient struct {
	mock.Mock
}

func (m *mockAnthropicClient) CreateMessage(ctx context.Context, req anthropic.MessageRequest) (*anthropic.MessageResponse, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*anthropic.MessageResponse), args.Error(1)
}

// textResponse wraps a raw model reply the way CreateMessage returns it.
func textResponse(text string) *anthropic.MessageResponse {
	return &anthropic.MessageResponse{
		Content: []anthropic.ContentBlock{{Type: "text", Text: text}},
	}
}

// --- Proxycurl Mock ---

type mockProxycurlClient struct {
	mock.Mock
}

func (m *mockProxycurlClient) GetProfile(ctx context.Context, profileURL string) (*proxycurl.Profile, error) {
	args := m.Called(ctx, profileURL)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*proxycurl.Profile), args.Error(1)
}

func (m *mockProxycurlClient) GetPosts(ctx context.Context, profileURL string) (*proxycurl.PostsResponse, error) {
	args := m.Called(ctx, profileURL)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*proxycurl.PostsResponse), args.Error(1)
}

// --- Brave Mock ---

type mockBraveClient struct {
	mock.Mock
}

func (m *mockBraveClient) Search(ctx context.Context, query string, count int) (*brave.SearchResponse, error) {
	args := m.Called(ctx, query, count)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*brave.SearchResponse), args.Error(1)
}

// --- Jina Mock ---

type mockJinaClient struct {
	mock.Mock
}

func (m *mockJinaClient) Read(ctx context.Context, targetURL string) (*jina.ReadResponse, error) {
	args := m.Called(ctx, targetURL)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*jina.ReadResponse), args.Error(1)
}

// --- Store Mock ---

type mockStore struct {
	mock.Mock
}

func (m *mockStore) CreateUser(ctx context.Context, user *model.User) error {
	return m.Called(ctx, user).Error(0)
}

func (m *mockStore) GetUser(ctx context.Context, userID string) (*model.User, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

func (m *mockStore) DecrementCredits(ctx context.Context, userID string) error {
	return m.Called(ctx, userID).Error(0)
}

func (m *mockStore) CreateCampaign(ctx context.Context, userID, name string, leads []model.LeadInput) (*model.Campaign, error) {
	args := m.Called(ctx, userID, name, leads)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Campaign), args.Error(1)
}

func (m *mockStore) GetCampaign(ctx context.Context, campaignID string) (*model.Campaign, error) {
	args := m.Called(ctx, campaignID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Campaign), args.Error(1)
}

func (m *mockStore) StartCampaign(ctx context.Context, campaignID string) error {
	return m.Called(ctx, campaignID).Error(0)
}

func (m *mockStore) IncrementProcessed(ctx context.Context, campaignID string) error {
	return m.Called(ctx, campaignID).Error(0)
}

func (m *mockStore) CompleteCampaign(ctx context.Context, campaignID string) error {
	return m.Called(ctx, campaignID).Error(0)
}

func (m *mockStore) FailCampaign(ctx context.Context, campaignID string) error {
	return m.Called(ctx, campaignID).Error(0)
}

func (m *mockStore) ListLeads(ctx context.Context, campaignID string) ([]model.Lead, error) {
	args := m.Called(ctx, campaignID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Lead), args.Error(1)
}

func (m *mockStore) GetLead(ctx context.Context, leadID string) (*model.Lead, error) {
	args := m.Called(ctx, leadID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Lead), args.Error(1)
}

func (m *mockStore) SaveLeadResearch(ctx context.Context, leadID string, research *model.Research) error {
	return m.Called(ctx, leadID, research).Error(0)
}

func (m *mockStore) CreateEmail(ctx context.Context, email *model.Email) error {
	return m.Called(ctx, email).Error(0)
}

func (m *mockStore) GetEmail(ctx context.Context, emailID string) (*model.Email, error) {
	args := m.Called(ctx, emailID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Email), args.Error(1)
}

func (m *mockStore) GetEmailByLead(ctx context.Context, leadID string) (*model.Email, error) {
	args := m.Called(ctx, leadID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Email), args.Error(1)
}

func (m *mockStore) ListEmails(ctx context.Context, campaignID string) ([]model.Email, error) {
	args := m.Called(ctx, campaignID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Email), args.Error(1)
}

func (m *mockStore) UpdateEmail(ctx context.Context, email *model.Email) error {
	return m.Called(ctx, email).Error(0)
}

func (m *mockStore) Migrate(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

func (m *mockStore) Close() error {
	return m.Called().Error(0)
}

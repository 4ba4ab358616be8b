package newsletter

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"nichifier-service/internal/domain/auth"
	"nichifier-service/internal/domain/niche"
	xerrors "nichifier-service/internal/pkg/errors"

	openai "github.com/sashabaranov/go-openai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func feedServer(t *testing.T, status int, body string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		fmt.Fprint(w, body)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestFetchNewsFeedKeepsFiveItems(t *testing.T) {
	items := make([]map[string]string, 0, 7)
	for i := 0; i < 7; i++ {
		items = append(items, map[string]string{
			"title": fmt.Sprintf(" Story %d ", i),
			"url":   fmt.Sprintf("https://news.example.com/%d", i),
		})
	}
	items[1]["title"] = ""
	body, err := json.Marshal(items)
	require.NoError(t, err)

	srv := feedServer(t, http.StatusOK, string(body))
	got := NewFeedFetcher(time.Second, zap.NewNop()).FetchNewsFeed(context.Background(), srv.URL)

	require.Len(t, got, maxFeedItems)
	assert.Equal(t, "Story 0", got[0].Title)
	assert.Equal(t, "Untitled", got[1].Title)
	assert.Equal(t, "https://news.example.com/4", got[4].URL)
}

func TestFetchNewsFeedToleratesLooseDates(t *testing.T) {
	body := `[
		{"title":"A","url":"https://x.test/a","published_at":"2024-05-01"},
		{"title":"B","url":"https://x.test/b","source":" Wire ","published_at":"last tuesday"},
		{"title":"C","url":"https://x.test/c","published_at":"2024-05-02T08:30:00Z"}
	]`
	fetchedAt := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
	fetcher := NewFeedFetcher(time.Second, zap.NewNop())
	fetcher.now = func() time.Time { return fetchedAt }

	got := fetcher.FetchNewsFeed(context.Background(), feedServer(t, http.StatusOK, body).URL)

	require.Len(t, got, 3)
	assert.Equal(t, time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC), got[0].PublishedAt)
	assert.Equal(t, unknownSource, got[0].Source)
	assert.Equal(t, fetchedAt, got[1].PublishedAt)
	assert.Equal(t, "Wire", got[1].Source)
	assert.Equal(t, time.Date(2024, 5, 2, 8, 30, 0, 0, time.UTC), got[2].PublishedAt)
}

func TestFetchNewsFeedFailuresYieldEmptyList(t *testing.T) {
	fetcher := NewFeedFetcher(time.Second, zap.NewNop())
	ctx := context.Background()

	assert.Empty(t, fetcher.FetchNewsFeed(ctx, feedServer(t, http.StatusBadGateway, `[]`).URL))
	assert.Empty(t, fetcher.FetchNewsFeed(ctx, feedServer(t, http.StatusOK, `{"not":"a list"}`).URL))
	assert.Empty(t, fetcher.FetchNewsFeed(ctx, "http://127.0.0.1:1/unreachable"))
}

func TestPromptsUseNicheVoiceOrDefaults(t *testing.T) {
	n := &niche.Niche{Name: "Fintech", ReportCadence: niche.CadenceQuarterly}

	p := BuildNewsletterPrompt(n, []FeedItem{{Title: "Rates hold", URL: "https://x.test/a"}})
	assert.Contains(t, p, "'Fintech'")
	assert.Contains(t, p, defaultNewsletterVoice)
	assert.Contains(t, p, defaultNewsletterStyle)
	assert.Contains(t, p, "- Rates hold (https://x.test/a)")

	n.VoiceInstructions = sql.NullString{String: "Dry and witty.", Valid: true}
	n.StyleGuide = sql.NullString{String: "No bullet points.", Valid: true}
	r := BuildReportPrompt(n, "growth slowed\n\n  churn is up ")
	assert.True(t, strings.HasPrefix(r, "Draft a quarterly deep-dive report"))
	assert.Contains(t, r, "Voice guidance: Dry and witty.")
	assert.Contains(t, r, "Style guidance: No bullet points.")
	assert.Contains(t, r, "* growth slowed\n* churn is up")
	assert.NotContains(t, r, defaultReportVoice)
}

func TestFirstLine(t *testing.T) {
	assert.Equal(t, "Weekly wrap", firstLine("\n\n## Weekly wrap\nbody"))
	assert.Equal(t, "", firstLine("  \n"))
}

func TestDrafterCallsChatCompletions(t *testing.T) {
	var got openai.ChatCompletionRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"id":"c1","object":"chat.completion","choices":[{"index":0,"message":{"role":"assistant","content":"  # Draft\nBody  "},"finish_reason":"stop"}],"usage":{"prompt_tokens":3,"completion_tokens":2,"total_tokens":5}}`)
	}))
	defer srv.Close()

	cfg := openai.DefaultConfig("test-key")
	cfg.BaseURL = srv.URL + "/v1"
	d := NewDrafterWithConfig(cfg, "", zap.NewNop())

	out, err := d.Draft(context.Background(), "write something")
	require.NoError(t, err)
	assert.Equal(t, "# Draft\nBody", out)
	assert.Equal(t, openai.GPT4oMini, got.Model)
	require.Len(t, got.Messages, 2)
	assert.Equal(t, openai.ChatMessageRoleSystem, got.Messages[0].Role)
	assert.Equal(t, "write something", got.Messages[1].Content)
}

func TestDrafterWithoutKeyIsDisabled(t *testing.T) {
	_, err := NewDrafter("", "", zap.NewNop()).Draft(context.Background(), "x")
	assert.ErrorIs(t, err, ErrDraftingDisabled)
}

type memIssues struct {
	articles    []*niche.NewsArticle
	newsletters []*niche.NewsletterIssue
	reports     []*niche.ReportIssue
}

func (m *memIssues) SaveArticles(_ context.Context, articles []*niche.NewsArticle) error {
	for _, a := range articles {
		a.ID = int64(len(m.articles) + 1)
		m.articles = append(m.articles, a)
	}
	return nil
}

func (m *memIssues) CreateNewsletterIssue(_ context.Context, issue *niche.NewsletterIssue) error {
	issue.ID = int64(len(m.newsletters) + 1)
	m.newsletters = append(m.newsletters, issue)
	return nil
}

func (m *memIssues) CreateReportIssue(_ context.Context, issue *niche.ReportIssue) error {
	issue.ID = int64(len(m.reports) + 1)
	m.reports = append(m.reports, issue)
	return nil
}

type memNiches map[int64]*niche.Niche

func (m memNiches) FindByID(_ context.Context, id int64) (*niche.Niche, error) {
	n, ok := m[id]
	if !ok {
		return nil, xerrors.ErrNotFound
	}
	return n, nil
}

type staticFeed []FeedItem

func (f staticFeed) FetchNewsFeed(context.Context, string) []FeedItem { return f }

type mockWriter struct{ mock.Mock }

func (m *mockWriter) Draft(ctx context.Context, prompt string) (string, error) {
	args := m.Called(ctx, prompt)
	return args.String(0), args.Error(1)
}

func newDraftFixture(feed Feed) (*Service, *memIssues, *mockWriter) {
	niches := memNiches{
		7: {
			ID:            7,
			Name:          "Climate",
			ReportCadence: niche.CadenceMonthly,
			OwnerID:       sql.NullInt64{Int64: 2, Valid: true},
		},
	}
	issues := &memIssues{}
	writer := &mockWriter{}
	svc := NewService(niches, issues, feed, writer, zap.NewNop())
	svc.now = func() time.Time { return time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC) }
	return svc, issues, writer
}

var (
	owner    = &auth.User{ID: 2, Role: auth.RoleNicheAdmin}
	stranger = &auth.User{ID: 3, Role: auth.RoleNicheAdmin}
)

func TestDraftNewsletterPersistsArticlesAndIssue(t *testing.T) {
	published := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	feed := staticFeed{
		{Title: "Carbon prices", URL: "https://x.test/1", Summary: "up again", PublishedAt: published},
		{Title: "Grid storage", URL: "https://x.test/2"},
	}
	svc, issues, writer := newDraftFixture(feed)
	writer.On("Draft", mock.Anything, mock.MatchedBy(func(p string) bool {
		return strings.Contains(p, "Carbon prices") && strings.Contains(p, "Grid storage")
	})).Return("## Prices climb\nDetails follow.", nil).Once()

	issue, err := svc.DraftNewsletter(context.Background(), owner, 7, &niche.DraftNewsletterRequest{FeedURL: "https://feed.test"})
	require.NoError(t, err)

	assert.Equal(t, "Climate briefing 2026-03-02", issue.Title)
	assert.Equal(t, "Prices climb", issue.Summary)
	assert.Equal(t, int64(1), issue.ID)
	require.Len(t, issues.articles, 2)
	assert.True(t, issues.articles[0].PublishedAt.Valid)
	assert.False(t, issues.articles[1].Summary.Valid)
	writer.AssertExpectations(t)
}

func TestDraftNewsletterRules(t *testing.T) {
	svc, issues, writer := newDraftFixture(staticFeed{})
	ctx := context.Background()
	req := &niche.DraftNewsletterRequest{FeedURL: "https://feed.test"}

	_, err := svc.DraftNewsletter(ctx, stranger, 7, req)
	assert.ErrorIs(t, err, xerrors.ErrForbidden)

	_, err = svc.DraftNewsletter(ctx, owner, 99, req)
	assert.ErrorIs(t, err, xerrors.ErrNotFound)

	_, err = svc.DraftNewsletter(ctx, owner, 7, req)
	assert.ErrorIs(t, err, xerrors.ErrInvalidInput)

	assert.Empty(t, issues.newsletters)
	writer.AssertNotCalled(t, "Draft", mock.Anything, mock.Anything)
}

func TestDraftReport(t *testing.T) {
	svc, issues, writer := newDraftFixture(staticFeed{})
	writer.On("Draft", mock.Anything, mock.Anything).Return("Report body", nil).Once()

	admin := &auth.User{ID: 1, Role: auth.RoleAdmin}
	issue, err := svc.DraftReport(context.Background(), admin, 7, &niche.DraftReportRequest{Insights: "demand is rising"})
	require.NoError(t, err)
	assert.Equal(t, "Climate monthly report", issue.Title)
	assert.Equal(t, niche.CadenceMonthly, issue.Cadence)
	assert.Len(t, issues.reports, 1)

	_, err = svc.DraftReport(context.Background(), admin, 7, &niche.DraftReportRequest{Insights: "   "})
	assert.ErrorIs(t, err, xerrors.ErrInvalidInput)
}

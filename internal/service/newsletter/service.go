// internal/service/newsletter/service.go
package newsletter

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"nichifier-service/internal/domain/auth"
	"nichifier-service/internal/domain/niche"
	xerrors "nichifier-service/internal/pkg/errors"
	nichesvc "nichifier-service/internal/service/niche"

	"go.uber.org/zap"
)

// IssueStore persists collected articles and drafted issues.
type IssueStore interface {
	SaveArticles(ctx context.Context, articles []*niche.NewsArticle) error
	CreateNewsletterIssue(ctx context.Context, issue *niche.NewsletterIssue) error
	CreateReportIssue(ctx context.Context, issue *niche.ReportIssue) error
}

type NicheReader interface {
	FindByID(ctx context.Context, id int64) (*niche.Niche, error)
}

type Feed interface {
	FetchNewsFeed(ctx context.Context, url string) []FeedItem
}

type Writer interface {
	Draft(ctx context.Context, prompt string) (string, error)
}

type Service struct {
	niches NicheReader
	issues IssueStore
	feed   Feed
	writer Writer
	now    func() time.Time
	logger *zap.Logger
}

func NewService(niches NicheReader, issues IssueStore, feed Feed, writer Writer, logger *zap.Logger) *Service {
	return &Service{
		niches: niches,
		issues: issues,
		feed:   feed,
		writer: writer,
		now:    time.Now,
		logger: logger,
	}
}

// DraftNewsletter collects the feed, drafts a newsletter from it and stores the issue.
func (s *Service) DraftNewsletter(ctx context.Context, actor *auth.User, nicheID int64, req *niche.DraftNewsletterRequest) (*niche.NewsletterIssue, error) {
	n, err := s.manageable(ctx, actor, nicheID)
	if err != nil {
		return nil, err
	}

	items := s.feed.FetchNewsFeed(ctx, req.FeedURL)
	if len(items) == 0 {
		return nil, xerrors.Invalid("news feed returned no articles")
	}

	articles := make([]*niche.NewsArticle, 0, len(items))
	for _, item := range items {
		articles = append(articles, &niche.NewsArticle{
			NicheID:     n.ID,
			Title:       item.Title,
			URL:         item.URL,
			Summary:     sql.NullString{String: item.Summary, Valid: item.Summary != ""},
			Source:      item.Source,
			PublishedAt: sql.NullTime{Time: item.PublishedAt, Valid: !item.PublishedAt.IsZero()},
		})
	}
	if err := s.issues.SaveArticles(ctx, articles); err != nil {
		return nil, err
	}

	content, err := s.writer.Draft(ctx, BuildNewsletterPrompt(n, items))
	if err != nil {
		return nil, err
	}

	issue := &niche.NewsletterIssue{
		NicheID: n.ID,
		Title:   fmt.Sprintf("%s briefing %s", n.Name, s.now().UTC().Format("2006-01-02")),
		Summary: firstLine(content),
		Content: content,
	}
	if err := s.issues.CreateNewsletterIssue(ctx, issue); err != nil {
		return nil, err
	}

	s.logger.Info("newsletter drafted",
		zap.Int64("niche_id", n.ID),
		zap.Int64("issue_id", issue.ID),
		zap.Int("articles", len(articles)),
	)
	return issue, nil
}

// DraftReport drafts a report from curator insights at the niche's report cadence.
func (s *Service) DraftReport(ctx context.Context, actor *auth.User, nicheID int64, req *niche.DraftReportRequest) (*niche.ReportIssue, error) {
	if strings.TrimSpace(req.Insights) == "" {
		return nil, xerrors.Invalid("insights are required")
	}
	n, err := s.manageable(ctx, actor, nicheID)
	if err != nil {
		return nil, err
	}

	content, err := s.writer.Draft(ctx, BuildReportPrompt(n, req.Insights))
	if err != nil {
		return nil, err
	}

	title := strings.TrimSpace(req.Title)
	if title == "" {
		title = fmt.Sprintf("%s %s report", n.Name, n.ReportCadence)
	}
	issue := &niche.ReportIssue{
		NicheID: n.ID,
		Title:   title,
		Cadence: n.ReportCadence,
		Content: content,
	}
	if err := s.issues.CreateReportIssue(ctx, issue); err != nil {
		return nil, err
	}

	s.logger.Info("report drafted", zap.Int64("niche_id", n.ID), zap.Int64("issue_id", issue.ID))
	return issue, nil
}

func (s *Service) manageable(ctx context.Context, actor *auth.User, nicheID int64) (*niche.Niche, error) {
	n, err := s.niches.FindByID(ctx, nicheID)
	if err != nil {
		return nil, fmt.Errorf("niche %d: %w", nicheID, err)
	}
	if !nichesvc.CanManage(actor, n) {
		return nil, fmt.Errorf("niche %d: %w", nicheID, xerrors.ErrForbidden)
	}
	return n, nil
}

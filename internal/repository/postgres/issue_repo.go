// internal/repository/postgres/issue_repo.go
package postgres

import (
	"context"
	"fmt"

	"nichifier-service/internal/domain/niche"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type IssueRepository struct {
	db *pgxpool.Pool
}

func NewIssueRepository(db *pgxpool.Pool) *IssueRepository {
	return &IssueRepository{db: db}
}

// SaveArticles inserts feed items for a niche in one batch.
func (r *IssueRepository) SaveArticles(ctx context.Context, articles []*niche.NewsArticle) error {
	if len(articles) == 0 {
		return nil
	}
	query := `
		INSERT INTO news_articles (niche_id, title, url, summary, source, published_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at
	`
	batch := &pgx.Batch{}
	for _, a := range articles {
		batch.Queue(query, a.NicheID, a.Title, a.URL, a.Summary, a.Source, a.PublishedAt)
	}

	results := r.db.SendBatch(ctx, batch)
	defer results.Close()
	for _, a := range articles {
		if err := results.QueryRow().Scan(&a.ID, &a.CreatedAt); err != nil {
			return fmt.Errorf("failed to save article: %w", err)
		}
	}
	return nil
}

// CreateNewsletterIssue stores a drafted newsletter.
func (r *IssueRepository) CreateNewsletterIssue(ctx context.Context, issue *niche.NewsletterIssue) error {
	query := `
		INSERT INTO newsletter_issues (niche_id, title, summary, content)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at
	`
	err := r.db.QueryRow(ctx, query, issue.NicheID, issue.Title, issue.Summary, issue.Content).
		Scan(&issue.ID, &issue.CreatedAt)
	return mapError(err, "failed to create newsletter issue")
}

// CreateReportIssue stores a drafted report.
func (r *IssueRepository) CreateReportIssue(ctx context.Context, issue *niche.ReportIssue) error {
	query := `
		INSERT INTO report_issues (niche_id, title, cadence, content)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at
	`
	err := r.db.QueryRow(ctx, query, issue.NicheID, issue.Title, issue.Cadence, issue.Content).
		Scan(&issue.ID, &issue.CreatedAt)
	return mapError(err, "failed to create report issue")
}

// internal/repository/postgres/niche_repo.go
package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"nichifier-service/internal/domain/admin"
	"nichifier-service/internal/domain/niche"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type NicheRepository struct {
	db *pgxpool.Pool
}

func NewNicheRepository(db *pgxpool.Pool) *NicheRepository {
	return &NicheRepository{db: db}
}

const nicheColumns = `
	id, name, short_description, detailed_description, splash_image_url,
	newsletter_price, report_price, currency_code, newsletter_cadence, report_cadence,
	voice_instructions, style_guide, owner_id, created_at, updated_at
`

func scanNiche(row pgx.Row) (*niche.Niche, error) {
	var n niche.Niche
	err := row.Scan(
		&n.ID, &n.Name, &n.ShortDescription, &n.DetailedDescription, &n.SplashImageURL,
		&n.NewsletterPrice, &n.ReportPrice, &n.CurrencyCode, &n.NewsletterCadence, &n.ReportCadence,
		&n.VoiceInstructions, &n.StyleGuide, &n.OwnerID, &n.CreatedAt, &n.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &n, nil
}

// Create inserts a niche. A case-insensitive name clash yields ErrConflict.
func (r *NicheRepository) Create(ctx context.Context, n *niche.Niche) error {
	query := `
		INSERT INTO niches (
			name, short_description, detailed_description, splash_image_url,
			newsletter_price, report_price, currency_code, newsletter_cadence, report_cadence,
			voice_instructions, style_guide, owner_id
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		RETURNING id, created_at, updated_at
	`
	err := r.db.QueryRow(ctx, query,
		n.Name, n.ShortDescription, n.DetailedDescription, n.SplashImageURL,
		n.NewsletterPrice, n.ReportPrice, n.CurrencyCode, n.NewsletterCadence, n.ReportCadence,
		n.VoiceInstructions, n.StyleGuide, n.OwnerID,
	).Scan(&n.ID, &n.CreatedAt, &n.UpdatedAt)
	return mapError(err, "failed to create niche")
}

// Update rewrites the niche's editable columns. Ownership is not changed.
func (r *NicheRepository) Update(ctx context.Context, n *niche.Niche) error {
	query := `
		UPDATE niches SET
			name = $2,
			short_description = $3,
			detailed_description = $4,
			splash_image_url = $5,
			newsletter_price = $6,
			report_price = $7,
			currency_code = $8,
			newsletter_cadence = $9,
			report_cadence = $10,
			voice_instructions = $11,
			style_guide = $12,
			updated_at = NOW()
		WHERE id = $1
		RETURNING updated_at
	`
	err := r.db.QueryRow(ctx, query,
		n.ID, n.Name, n.ShortDescription, n.DetailedDescription, n.SplashImageURL,
		n.NewsletterPrice, n.ReportPrice, n.CurrencyCode, n.NewsletterCadence, n.ReportCadence,
		n.VoiceInstructions, n.StyleGuide,
	).Scan(&n.UpdatedAt)
	return mapError(err, "failed to update niche")
}

// FindByID retrieves a niche by ID
func (r *NicheRepository) FindByID(ctx context.Context, id int64) (*niche.Niche, error) {
	n, err := scanNiche(r.db.QueryRow(ctx, `SELECT `+nicheColumns+` FROM niches WHERE id = $1`, id))
	if err != nil {
		return nil, mapError(err, "failed to find niche")
	}
	return n, nil
}

// List returns all niches ordered by name, ignoring case.
func (r *NicheRepository) List(ctx context.Context) ([]*niche.Niche, error) {
	rows, err := r.db.Query(ctx, `SELECT `+nicheColumns+` FROM niches ORDER BY LOWER(name) ASC`)
	if err != nil {
		return nil, fmt.Errorf("failed to list niches: %w", err)
	}
	defer rows.Close()

	niches := []*niche.Niche{}
	for rows.Next() {
		n, err := scanNiche(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan niche: %w", err)
		}
		niches = append(niches, n)
	}
	return niches, rows.Err()
}

// ListWithOwners returns all niches ordered by name with the owning account joined in.
func (r *NicheRepository) ListWithOwners(ctx context.Context) ([]*admin.NicheListing, error) {
	query := `
		SELECT n.id, n.name, n.short_description, n.detailed_description, n.splash_image_url,
		       n.newsletter_price, n.report_price, n.currency_code, n.newsletter_cadence, n.report_cadence,
		       n.voice_instructions, n.style_guide, n.owner_id, n.created_at, n.updated_at,
		       u.email, u.full_name
		FROM niches n
		LEFT JOIN users u ON u.id = n.owner_id
		ORDER BY LOWER(n.name) ASC
	`
	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list niches with owners: %w", err)
	}
	defer rows.Close()

	listings := []*admin.NicheListing{}
	for rows.Next() {
		var n niche.Niche
		var ownerEmail, ownerName sql.NullString
		if err := rows.Scan(
			&n.ID, &n.Name, &n.ShortDescription, &n.DetailedDescription, &n.SplashImageURL,
			&n.NewsletterPrice, &n.ReportPrice, &n.CurrencyCode, &n.NewsletterCadence, &n.ReportCadence,
			&n.VoiceInstructions, &n.StyleGuide, &n.OwnerID, &n.CreatedAt, &n.UpdatedAt,
			&ownerEmail, &ownerName,
		); err != nil {
			return nil, fmt.Errorf("failed to scan niche: %w", err)
		}

		listing := &admin.NicheListing{Niche: &n}
		if n.OwnerID.Valid && ownerEmail.Valid {
			listing.Owner = &admin.NicheOwner{
				ID:       n.OwnerID.Int64,
				Email:    ownerEmail.String,
				FullName: ownerName.String,
			}
		}
		listings = append(listings, listing)
	}
	return listings, rows.Err()
}

// ExistsByName checks for a case-insensitive name clash, ignoring excludeID.
func (r *NicheRepository) ExistsByName(ctx context.Context, name string, excludeID int64) (bool, error) {
	var exists bool
	query := `SELECT EXISTS(SELECT 1 FROM niches WHERE LOWER(name) = LOWER($1) AND id <> $2)`
	if err := r.db.QueryRow(ctx, query, name, excludeID).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to check niche name: %w", err)
	}
	return exists, nil
}

// CountByOwner counts the niches a user owns.
func (r *NicheRepository) CountByOwner(ctx context.Context, ownerID int64) (int64, error) {
	var count int64
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM niches WHERE owner_id = $1`, ownerID).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count niches: %w", err)
	}
	return count, nil
}

// Delete removes a niche and everything hanging off it in one transaction.
func (r *NicheRepository) Delete(ctx context.Context, id int64) (*niche.DeleteStats, error) {
	stats := &niche.DeleteStats{}
	err := withTx(ctx, r.db, func(tx pgx.Tx) error {
		steps := []struct {
			query string
			count *int64
		}{
			{`DELETE FROM news_articles WHERE niche_id = $1`, &stats.Articles},
			{`DELETE FROM newsletter_issues WHERE niche_id = $1`, &stats.Newsletters},
			{`DELETE FROM report_issues WHERE niche_id = $1`, &stats.Reports},
			{`DELETE FROM subscriptions WHERE niche_id = $1`, &stats.Subscriptions},
		}
		for _, step := range steps {
			tag, err := tx.Exec(ctx, step.query, id)
			if err != nil {
				return fmt.Errorf("failed to delete niche dependents: %w", err)
			}
			*step.count = tag.RowsAffected()
		}

		tag, err := tx.Exec(ctx, `DELETE FROM niches WHERE id = $1`, id)
		if err != nil {
			return fmt.Errorf("failed to delete niche: %w", err)
		}
		if tag.RowsAffected() == 0 {
			return mapError(pgx.ErrNoRows, "failed to delete niche")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return stats, nil
}

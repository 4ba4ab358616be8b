// internal/domain/niche/entity.go
package niche

import (
	"database/sql"
	"time"

	"github.com/shopspring/decimal"
)

// Cadence is how often a niche publishes a product.
type Cadence string

const (
	CadenceWeekly      Cadence = "weekly"
	CadenceFortnightly Cadence = "fortnightly"
	CadenceMonthly     Cadence = "monthly"
	CadenceQuarterly   Cadence = "quarterly"
)

// IsValid reports whether c is one of the supported cadences.
func (c Cadence) IsValid() bool {
	switch c {
	case CadenceWeekly, CadenceFortnightly, CadenceMonthly, CadenceQuarterly:
		return true
	}
	return false
}

// Niche is a curated topic vertical selling a newsletter and a report.
type Niche struct {
	ID                  int64           `json:"id" db:"id"`
	Name                string          `json:"name" db:"name"`
	ShortDescription    string          `json:"short_description" db:"short_description"`
	DetailedDescription sql.NullString  `json:"detailed_description" db:"detailed_description"`
	SplashImageURL      sql.NullString  `json:"splash_image_url" db:"splash_image_url"`
	NewsletterPrice     decimal.Decimal `json:"newsletter_price" db:"newsletter_price"`
	ReportPrice         decimal.Decimal `json:"report_price" db:"report_price"`
	CurrencyCode        string          `json:"currency_code" db:"currency_code"`
	NewsletterCadence   Cadence         `json:"newsletter_cadence" db:"newsletter_cadence"`
	ReportCadence       Cadence         `json:"report_cadence" db:"report_cadence"`
	VoiceInstructions   sql.NullString  `json:"voice_instructions" db:"voice_instructions"`
	StyleGuide          sql.NullString  `json:"style_guide" db:"style_guide"`
	OwnerID             sql.NullInt64   `json:"owner_id" db:"owner_id"`
	CreatedAt           time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt           time.Time       `json:"updated_at" db:"updated_at"`
}

// OwnedBy reports whether userID owns the niche.
func (n *Niche) OwnedBy(userID int64) bool {
	return n.OwnerID.Valid && n.OwnerID.Int64 == userID
}

// NewsArticle is a feed item collected for a niche.
type NewsArticle struct {
	ID          int64          `json:"id" db:"id"`
	NicheID     int64          `json:"niche_id" db:"niche_id"`
	Title       string         `json:"title" db:"title"`
	URL         string         `json:"url" db:"url"`
	Summary     sql.NullString `json:"summary" db:"summary"`
	Source      string         `json:"source" db:"source"`
	PublishedAt sql.NullTime   `json:"published_at" db:"published_at"`
	CreatedAt   time.Time      `json:"created_at" db:"created_at"`
}

// NewsletterIssue is a drafted newsletter edition.
type NewsletterIssue struct {
	ID        int64     `json:"id" db:"id"`
	NicheID   int64     `json:"niche_id" db:"niche_id"`
	Title     string    `json:"title" db:"title"`
	Summary   string    `json:"summary" db:"summary"`
	Content   string    `json:"content" db:"content"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// ReportIssue is a drafted long-form report.
type ReportIssue struct {
	ID        int64     `json:"id" db:"id"`
	NicheID   int64     `json:"niche_id" db:"niche_id"`
	Title     string    `json:"title" db:"title"`
	Cadence   Cadence   `json:"cadence" db:"cadence"`
	Content   string    `json:"content" db:"content"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// DeleteStats records what a cascading niche delete removed.
type DeleteStats struct {
	Articles      int64 `json:"articles"`
	Newsletters   int64 `json:"newsletters"`
	Reports       int64 `json:"reports"`
	Subscriptions int64 `json:"subscriptions"`
}

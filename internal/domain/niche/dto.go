// internal/domain/niche/dto.go
package niche

// NicheRequest is used for both create and update; update replaces every field.
type NicheRequest struct {
	Name                string `json:"name" binding:"required"`
	ShortDescription    string `json:"short_description" binding:"required"`
	DetailedDescription string `json:"detailed_description"`
	SplashImageURL      string `json:"splash_image_url"`
	NewsletterPrice     string `json:"newsletter_price"`
	ReportPrice         string `json:"report_price"`
	CurrencyCode        string `json:"currency_code"`
	NewsletterCadence   string `json:"newsletter_cadence"`
	ReportCadence       string `json:"report_cadence"`
	VoiceInstructions   string `json:"voice_instructions"`
	StyleGuide          string `json:"style_guide"`
}

// DraftNewsletterRequest asks for a newsletter drafted from a news feed.
type DraftNewsletterRequest struct {
	FeedURL string `json:"feed_url" binding:"required,url"`
}

// DraftReportRequest asks for a report drafted from curator insights.
type DraftReportRequest struct {
	Title    string `json:"title"`
	Insights string `json:"insights" binding:"required"`
}

// internal/service/newsletter/prompts.go
package newsletter

import (
	"fmt"
	"strings"

	"nichifier-service/internal/domain/niche"
)

const (
	defaultNewsletterVoice = "Use an energetic, professional tone."
	defaultNewsletterStyle = "Write in short paragraphs with bullet highlights."
	defaultReportVoice     = "Adopt an authoritative yet friendly tone."
	defaultReportStyle     = "Include an executive summary, key metrics and an outlook."
)

// BuildNewsletterPrompt asks for a briefing that summarises the given articles.
func BuildNewsletterPrompt(n *niche.Niche, articles []FeedItem) string {
	var b strings.Builder
	fmt.Fprintf(&b, "You are writing a briefing for the '%s' niche.\n", n.Name)
	fmt.Fprintf(&b, "Voice guidance: %s\n", orDefault(n.VoiceInstructions.String, defaultNewsletterVoice))
	fmt.Fprintf(&b, "Style guidance: %s\n", orDefault(n.StyleGuide.String, defaultNewsletterStyle))
	b.WriteString("Summarise the following articles with crisp insights and action items:\n")
	for _, a := range articles {
		fmt.Fprintf(&b, "- %s (%s)\n", a.Title, a.URL)
	}
	return strings.TrimRight(b.String(), "\n")
}

// BuildReportPrompt asks for a long-form report at the niche's report cadence. insights is
// split into one bullet per non-empty line.
func BuildReportPrompt(n *niche.Niche, insights string) string {
	cadence := n.ReportCadence
	if cadence == "" {
		cadence = niche.CadenceMonthly
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Draft a %s deep-dive report for the '%s' niche.\n", cadence, n.Name)
	fmt.Fprintf(&b, "Voice guidance: %s\n", orDefault(n.VoiceInstructions.String, defaultReportVoice))
	fmt.Fprintf(&b, "Style guidance: %s\n", orDefault(n.StyleGuide.String, defaultReportStyle))
	b.WriteString("Incorporate the following curated insights:\n")
	for _, line := range strings.Split(insights, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			fmt.Fprintf(&b, "* %s\n", line)
		}
	}
	return strings.TrimRight(b.String(), "\n")
}

func orDefault(v, fallback string) string {
	if v = strings.TrimSpace(v); v != "" {
		return v
	}
	return fallback
}

// firstLine picks the first non-empty line of a draft, without markdown heading marks.
func firstLine(content string) string {
	for _, line := range strings.Split(content, "\n") {
		line = strings.TrimSpace(strings.TrimLeft(strings.TrimSpace(line), "#"))
		if line != "" {
			return line
		}
	}
	return ""
}

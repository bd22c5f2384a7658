package blog

import (
	"strings"

	"github.com/dalemusser/stratablog/internal/app/system/htmlsanitize"
	"github.com/dalemusser/stratablog/internal/domain/models"
)

const ellipsis = "..."

// ClampSummary limits s to models.SummaryMaxLen characters. Longer values keep
// their first SummaryMaxLen-3 characters followed by "...".
func ClampSummary(s string) string {
	r := []rune(s)
	if len(r) <= models.SummaryMaxLen {
		return s
	}
	return string(r[:models.SummaryMaxLen-len(ellipsis)]) + ellipsis
}

// DeriveSummary builds a summary from sanitized post content.
func DeriveSummary(content string) string {
	return ClampSummary(htmlsanitize.PlainText(content))
}

// summaryFor returns the summary to store: the provided one when it has
// text, otherwise one derived from content.
func summaryFor(provided, content string) string {
	if s := strings.TrimSpace(provided); s != "" {
		return ClampSummary(s)
	}
	return DeriveSummary(content)
}

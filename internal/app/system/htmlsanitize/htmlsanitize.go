// Package htmlsanitize provides HTML sanitization for post content produced by
// the rich-text editor. It uses bluemonday to strip potentially dangerous HTML
// while preserving safe formatting, tables, images and YouTube embeds.
package htmlsanitize

import (
	"strings"
	"sync"

	"github.com/microcosm-cc/bluemonday"
)

var (
	// policy is the shared bluemonday policy for sanitizing post content.
	policy     *bluemonday.Policy
	policyOnce sync.Once
)

// getPolicy returns the shared sanitization policy, creating it on first use.
func getPolicy() *bluemonday.Policy {
	policyOnce.Do(func() {
		p := bluemonday.NewPolicy()

		p.AllowElements(
			"h1", "h2", "h3", "h4", "h5", "h6",
			"blockquote", "p", "ul", "ol", "nl", "li",
			"b", "i", "strong", "em", "strike", "code", "pre",
			"hr", "br", "div", "span",
		)

		// Tables
		p.AllowElements("table", "thead", "caption", "tbody", "tr", "th", "td")
		p.AllowAttrs("colspan", "rowspan").OnElements("th", "td")

		// Links and images
		p.AllowAttrs("href", "name", "target", "class").OnElements("a")
		p.AllowAttrs("src", "alt", "class", "width", "height").OnElements("img")

		p.AllowAttrs("class", "data-type").OnElements("div")

		// Inline styling from the editor's color and font controls
		p.AllowAttrs("style", "class").OnElements("span")
		p.AllowStyles(
			"color", "background-color",
			"font-size", "font-family", "font-weight", "font-style",
			"text-decoration", "text-align",
		).OnElements("span")

		// Embeds. The src host is checked by normalizeEmbeds before the policy runs.
		p.AllowAttrs(
			"src", "class", "frameborder", "allowfullscreen", "width", "height",
			"title", "referrerpolicy", "allow",
		).OnElements("iframe")

		p.AllowURLSchemes("http", "https", "mailto", "tel")
		p.AllowRelativeURLs(true)
		p.RequireParseableURLs(true)

		policy = p
	})
	return policy
}

// Sanitize cleans HTML input, removing potentially dangerous elements and attributes.
// Iframes are kept only when they point at YouTube and are rewritten to the
// standard embed attributes. Unknown elements are unwrapped and their text kept.
//
// Sanitize is idempotent: Sanitize(Sanitize(x)) == Sanitize(x).
func Sanitize(raw string) string {
	if raw == "" {
		return ""
	}
	return getPolicy().Sanitize(normalizeEmbeds(raw))
}

// IsPlainText checks if content appears to be plain text (no HTML tags).
func IsPlainText(content string) bool {
	if content == "" {
		return true
	}
	// Valid HTML tags require both characters, so if either is missing, treat as plain text
	return !strings.Contains(content, "<") || !strings.Contains(content, ">")
}

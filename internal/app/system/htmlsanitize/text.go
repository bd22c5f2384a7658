package htmlsanitize

import (
	"html"
	"strings"

	xhtml "golang.org/x/net/html"
)

// Elements whose boundaries separate words in the rendered page.
var blockElements = map[string]bool{
	"p": true, "div": true, "br": true, "hr": true,
	"h1": true, "h2": true, "h3": true, "h4": true, "h5": true, "h6": true,
	"ul": true, "ol": true, "nl": true, "li": true,
	"blockquote": true, "pre": true,
	"table": true, "caption": true, "thead": true, "tbody": true, "tr": true, "th": true, "td": true,
	"iframe": true, "img": true,
}

// Elements whose text is never visible.
var hiddenElements = map[string]bool{
	"script": true, "style": true, "iframe": true, "template": true,
}

// PlainText returns the visible text of an HTML fragment: tags removed,
// entities decoded and whitespace collapsed to single spaces. Block
// boundaries become spaces; inline tags vanish without one, so
// "<b>wor</b>ld" reads "world".
func PlainText(content string) string {
	if content == "" {
		return ""
	}
	if IsPlainText(content) {
		return collapse(html.UnescapeString(content))
	}

	z := xhtml.NewTokenizer(strings.NewReader(content))
	var b strings.Builder
	hidden := 0
	for {
		switch z.Next() {
		case xhtml.ErrorToken:
			return collapse(b.String())

		case xhtml.TextToken:
			if hidden == 0 {
				b.Write(z.Text())
			}

		case xhtml.StartTagToken:
			name, _ := z.TagName()
			tag := string(name)
			if hiddenElements[tag] {
				hidden++
			}
			if blockElements[tag] {
				b.WriteByte(' ')
			}

		case xhtml.EndTagToken:
			name, _ := z.TagName()
			tag := string(name)
			if hiddenElements[tag] && hidden > 0 {
				hidden--
			}
			if blockElements[tag] {
				b.WriteByte(' ')
			}

		case xhtml.SelfClosingTagToken:
			name, _ := z.TagName()
			if blockElements[string(name)] {
				b.WriteByte(' ')
			}
		}
	}
}

func collapse(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

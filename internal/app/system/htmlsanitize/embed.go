package htmlsanitize

import (
	"html"
	"net/url"
	"strings"

	xhtml "golang.org/x/net/html"
)

// Hosts allowed as iframe sources.
var embedHosts = map[string]bool{
	"youtube.com":     true,
	"www.youtube.com": true,
	"youtu.be":        true,
}

// Attributes written on every kept embed, after src.
var embedAttrs = [][2]string{
	{"class", "w-full aspect-video rounded-lg my-4"},
	{"frameborder", "0"},
	{"allow", "accelerometer; autoplay; clipboard-write; encrypted-media; gyroscope; picture-in-picture; web-share"},
	{"allowfullscreen", "true"},
	{"title", "YouTube video player"},
	{"referrerpolicy", "strict-origin-when-cross-origin"},
	{"width", "560"},
	{"height", "315"},
}

// IsEmbedSource reports whether src may be used as an iframe source.
func IsEmbedSource(src string) bool {
	_, ok := embedSource(src)
	return ok
}

// embedSource checks src and returns the form written on a kept embed.
// Protocol-relative sources ("//www.youtube.com/...") are pinned to https.
func embedSource(src string) (string, bool) {
	src = strings.TrimSpace(src)
	u, err := url.Parse(src)
	if err != nil {
		return "", false
	}
	switch strings.ToLower(u.Scheme) {
	case "http", "https":
	case "":
		if !strings.HasPrefix(src, "//") {
			return "", false
		}
		src = "https:" + src
	default:
		return "", false
	}
	if !embedHosts[strings.ToLower(u.Hostname())] {
		return "", false
	}
	return src, true
}

// normalizeEmbeds rewrites iframes before the allow-list policy runs.
// Frames with an allowed source are re-emitted with the canonical embed
// attributes and no inner content; all other frames are dropped with their
// content. Everything else passes through untouched.
func normalizeEmbeds(raw string) string {
	if !strings.Contains(strings.ToLower(raw), "<iframe") {
		return raw
	}

	z := xhtml.NewTokenizer(strings.NewReader(raw))
	var b strings.Builder
	b.Grow(len(raw))

	inFrame, keep := false, false
	for {
		tt := z.Next()
		if tt == xhtml.ErrorToken {
			if inFrame && keep {
				b.WriteString("</iframe>")
			}
			return b.String()
		}

		// Raw is only valid until Token is called.
		rawTok := string(z.Raw())
		tok := z.Token()

		isFrame := tok.Data == "iframe" &&
			(tt == xhtml.StartTagToken || tt == xhtml.EndTagToken || tt == xhtml.SelfClosingTagToken)

		switch {
		case isFrame && tt == xhtml.EndTagToken:
			if inFrame && keep {
				b.WriteString("</iframe>")
			}
			inFrame, keep = false, false

		case isFrame:
			src, ok := attr(tok, "src")
			if ok {
				src, keep = embedSource(src)
			} else {
				keep = false
			}
			if keep {
				writeEmbed(&b, src)
			}
			inFrame = tt == xhtml.StartTagToken
			if !inFrame && keep {
				b.WriteString("</iframe>")
			}

		case inFrame:
			// inner content of a frame is never kept

		default:
			b.WriteString(rawTok)
		}
	}
}

func writeEmbed(b *strings.Builder, src string) {
	b.WriteString(`<iframe src="`)
	b.WriteString(html.EscapeString(src))
	b.WriteByte('"')
	for _, kv := range embedAttrs {
		b.WriteByte(' ')
		b.WriteString(kv[0])
		b.WriteString(`="`)
		b.WriteString(html.EscapeString(kv[1]))
		b.WriteByte('"')
	}
	b.WriteByte('>')
}

func attr(tok xhtml.Token, key string) (string, bool) {
	for _, a := range tok.Attr {
		if a.Namespace == "" && strings.EqualFold(a.Key, key) {
			return a.Val, true
		}
	}
	return "", false
}

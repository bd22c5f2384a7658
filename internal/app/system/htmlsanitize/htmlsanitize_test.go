package htmlsanitize

import (
	"strings"
	"testing"
)

func TestSanitize(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		contains []string // Strings that should be in output
		excludes []string // Strings that should NOT be in output
	}{
		{
			name:     "empty string",
			input:    "",
			contains: []string{},
			excludes: []string{},
		},
		{
			name:     "plain text",
			input:    "Hello World",
			contains: []string{"Hello World"},
			excludes: []string{},
		},
		{
			name:     "safe HTML preserved",
			input:    "<p>Hello <strong>World</strong></p>",
			contains: []string{"<p>", "<strong>", "Hello", "World"},
			excludes: []string{},
		},
		{
			name:     "script tag removed",
			input:    "<p>Hello</p><script>alert('xss')</script>",
			contains: []string{"<p>Hello</p>"},
			excludes: []string{"<script>", "alert", "xss"},
		},
		{
			name:     "onclick removed",
			input:    `<p onclick="alert('xss')">Click me</p>`,
			contains: []string{"<p>", "Click me"},
			excludes: []string{"onclick", "alert"},
		},
		{
			name:     "javascript URL removed",
			input:    `<a href="javascript:alert('xss')">Link</a>`,
			contains: []string{"Link"},
			excludes: []string{"javascript:", "alert"},
		},
		{
			name:     "safe link preserved",
			input:    `<a href="https://example.com" target="_blank">Link</a>`,
			contains: []string{"<a", `href="https://example.com"`, `target="_blank"`, "Link"},
			excludes: []string{},
		},
		{
			name:     "mailto link preserved",
			input:    `<a href="mailto:me@example.com">Mail</a>`,
			contains: []string{"mailto:me@example.com"},
			excludes: []string{},
		},
		{
			name:     "table elements preserved",
			input:    `<table><caption>Cap</caption><tbody><tr><td colspan="2">Cell</td></tr></tbody></table>`,
			contains: []string{"<table>", "<caption>", "<tr>", "<td", `colspan="2"`, "Cell"},
			excludes: []string{},
		},
		{
			name:     "style tag removed",
			input:    "<style>body{display:none}</style><p>Content</p>",
			contains: []string{"<p>Content</p>"},
			excludes: []string{"<style>", "display:none"},
		},
		{
			name:     "onerror removed",
			input:    `<img src="https://example.com/a.png" alt="pic" onerror="alert('xss')">`,
			contains: []string{"<img", `alt="pic"`, "https://example.com/a.png"},
			excludes: []string{"onerror", "alert"},
		},
		{
			name:     "div data-type preserved",
			input:    `<div class="callout" data-type="note">Content</div>`,
			contains: []string{`data-type="note"`, `class="callout"`, "Content"},
			excludes: []string{},
		},
		{
			name:     "other data attributes removed",
			input:    `<div data-id="123">Content</div>`,
			contains: []string{"Content"},
			excludes: []string{"data-id"},
		},
		{
			name:     "unknown tag unwrapped",
			input:    `<p><custom-widget>kept text</custom-widget></p>`,
			contains: []string{"<p>", "kept text"},
			excludes: []string{"custom-widget"},
		},
		{
			name:     "form elements removed",
			input:    `<form action="/x"><input name="a"><p>After</p></form>`,
			contains: []string{"<p>After</p>"},
			excludes: []string{"<form", "<input"},
		},
		{
			name:     "span color kept",
			input:    `<span style="color: red">Red</span>`,
			contains: []string{"<span", "color", "Red"},
			excludes: []string{},
		},
		{
			name:     "span positioning removed",
			input:    `<span style="position: fixed">Text</span>`,
			contains: []string{"Text"},
			excludes: []string{"position"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := Sanitize(tt.input)

			for _, s := range tt.contains {
				if !strings.Contains(result, s) {
					t.Errorf("Sanitize() result should contain %q, got %q", s, result)
				}
			}

			for _, s := range tt.excludes {
				if strings.Contains(result, s) {
					t.Errorf("Sanitize() result should NOT contain %q, got %q", s, result)
				}
			}
		})
	}
}

func TestSanitize_Embeds(t *testing.T) {
	canonical := []string{
		`class="w-full aspect-video rounded-lg my-4"`,
		`frameborder="0"`,
		`allow="accelerometer; autoplay; clipboard-write; encrypted-media; gyroscope; picture-in-picture; web-share"`,
		`allowfullscreen="true"`,
		`title="YouTube video player"`,
		`referrerpolicy="strict-origin-when-cross-origin"`,
		`width="560"`,
		`height="315"`,
	}

	t.Run("youtube embed normalized", func(t *testing.T) {
		in := `<p>Watch:</p><iframe src="https://www.youtube.com/embed/abc123" width="100" height="50" onload="steal()" style="border:0"></iframe>`
		out := Sanitize(in)

		want := append([]string{`<iframe src="https://www.youtube.com/embed/abc123"`, "</iframe>", "<p>Watch:</p>"}, canonical...)
		for _, s := range want {
			if !strings.Contains(out, s) {
				t.Errorf("Sanitize() should contain %q, got %q", s, out)
			}
		}
		for _, s := range []string{"onload", "steal", `width="100"`, `height="50"`, "border:0"} {
			if strings.Contains(out, s) {
				t.Errorf("Sanitize() should NOT contain %q, got %q", s, out)
			}
		}
	})

	t.Run("short host allowed", func(t *testing.T) {
		out := Sanitize(`<iframe src="https://youtu.be/abc123"></iframe>`)
		if !strings.Contains(out, `src="https://youtu.be/abc123"`) {
			t.Errorf("Sanitize() should keep youtu.be embed, got %q", out)
		}
	})

	t.Run("protocol-relative source pinned to https", func(t *testing.T) {
		out := Sanitize(`<iframe src="//www.youtube.com/embed/abc123"></iframe>`)
		if !strings.Contains(out, `src="https://www.youtube.com/embed/abc123"`) {
			t.Errorf("Sanitize() should keep the embed with an https source, got %q", out)
		}
		if again := Sanitize(out); again != out {
			t.Errorf("Sanitize() not idempotent for pinned embed:\n first=%q\nsecond=%q", out, again)
		}
	})

	t.Run("inner content dropped", func(t *testing.T) {
		out := Sanitize(`<iframe src="https://youtube.com/embed/x">fallback text</iframe>`)
		if strings.Contains(out, "fallback") {
			t.Errorf("Sanitize() should drop iframe content, got %q", out)
		}
		if !strings.Contains(out, "<iframe") {
			t.Errorf("Sanitize() should keep allowed iframe, got %q", out)
		}
	})

	removed := []struct {
		name  string
		input string
	}{
		{"foreign host", `<iframe src="https://evil.com/embed"><p>inner</p></iframe><p>Content</p>`},
		{"lookalike host", `<iframe src="https://www.youtube.com.evil.com/embed/x"></iframe><p>Content</p>`},
		{"host in query", `<iframe src="https://evil.com/?h=youtube.com"></iframe><p>Content</p>`},
		{"javascript scheme", `<iframe src="javascript:alert(1)"></iframe><p>Content</p>`},
		{"no src", `<iframe></iframe><p>Content</p>`},
		{"self-closing foreign", `<iframe src="https://evil.com"/><p>Content</p>`},
	}
	for _, tt := range removed {
		t.Run(tt.name, func(t *testing.T) {
			out := Sanitize(tt.input)
			if strings.Contains(out, "<iframe") {
				t.Errorf("Sanitize() should remove iframe, got %q", out)
			}
			if strings.Contains(out, "evil") || strings.Contains(out, "inner") {
				t.Errorf("Sanitize() leaked frame source or content, got %q", out)
			}
			if !strings.Contains(out, "<p>Content</p>") {
				t.Errorf("Sanitize() should keep surrounding content, got %q", out)
			}
		})
	}
}

func TestSanitize_Idempotent(t *testing.T) {
	inputs := []string{
		"<p>Hello <strong>World</strong></p>",
		`<p onclick="x()">Click</p><script>bad()</script>`,
		`<iframe src="https://www.youtube.com/embed/abc?a=1&b=2" width="1"></iframe>`,
		`<iframe src="https://evil.com"></iframe><p>after</p>`,
		`<span style="color: red; position: fixed">Red</span>`,
		`<a href="https://example.com?q=a&amp;r=b">Link</a>`,
		`<p>unclosed <b>bold`,
		`Tom & Jerry < Spike`,
		`<table><tr><th rowspan="2">H</th></tr></table>`,
	}

	for _, in := range inputs {
		t.Run(in, func(t *testing.T) {
			once := Sanitize(in)
			twice := Sanitize(once)
			if once != twice {
				t.Errorf("Sanitize() not idempotent:\n first=%q\nsecond=%q", once, twice)
			}
		})
	}
}

func TestSanitize_FormattingElements(t *testing.T) {
	tests := []struct {
		tag   string
		input string
	}{
		{"strong", "<strong>Bold</strong>"},
		{"em", "<em>Italic</em>"},
		{"b", "<b>Bold</b>"},
		{"i", "<i>Italic</i>"},
		{"strike", "<strike>Struck</strike>"},
		{"blockquote", "<blockquote>Quote</blockquote>"},
		{"code", "<code>Code</code>"},
		{"pre", "<pre>Preformatted</pre>"},
		{"h1", "<h1>Heading</h1>"},
		{"h6", "<h6>Heading</h6>"},
		{"ul", "<ul><li>Item</li></ul>"},
		{"ol", "<ol><li>Item</li></ol>"},
	}

	for _, tt := range tests {
		t.Run(tt.tag, func(t *testing.T) {
			result := Sanitize(tt.input)
			if !strings.Contains(result, "<"+tt.tag+">") {
				t.Errorf("Sanitize() should preserve <%s>, got %q", tt.tag, result)
			}
		})
	}
}

func TestPlainText(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"empty", "", ""},
		{"plain", "  just   text  ", "just text"},
		{"paragraphs", "<p>Hello</p><p>World</p>", "Hello World"},
		{"inline", "<p>Hello <strong>World</strong></p>", "Hello World"},
		{"entities", "<p>Tom &amp; Jerry</p>", "Tom & Jerry"},
		{"script dropped", "<script>alert(1)</script><p>Hi</p>", "Hi"},
		{"newlines", "<p>line one\n\nline two</p>", "line one line two"},
		{"inline mid-word", "<p>Hello <b>wor</b>ld</p>", "Hello world"},
		{"nested inline", "<p><em>un<strong>break</strong>able</em></p>", "unbreakable"},
		{"link inline", `<p>see <a href="https://example.com">docs</a>.</p>`, "see docs."},
		{"headings and lists", "<h2>Title</h2><ul><li>one</li><li>two</li></ul>", "Title one two"},
		{"line break", "first<br>second<br/>third", "first second third"},
		{"table cells", "<table><tr><td>a</td><td>b</td></tr></table>", "a b"},
		{"style dropped", "<style>p{color:red}</style><p>Hi</p>", "Hi"},
		{"embed text dropped", `<iframe src="https://youtu.be/x">fallback</iframe><p>after</p>`, "after"},
		{"plain entities", "Tom &amp; Jerry", "Tom & Jerry"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := PlainText(tt.input); got != tt.want {
				t.Errorf("PlainText(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestIsPlainText(t *testing.T) {
	tests := []struct {
		content string
		want    bool
	}{
		{"", true},
		{"Hello World", true},
		{"<p>Has tags</p>", false},                // Has both < and >
		{"Has < but no closing", true},            // Has < but no > = plain text
		{"Has > but no opening", true},            // Has > but no < = plain text
		{"Plain text with symbols: & < >", false}, // Has both < and >
	}

	for _, tt := range tests {
		t.Run(tt.content, func(t *testing.T) {
			got := IsPlainText(tt.content)
			if got != tt.want {
				t.Errorf("IsPlainText(%q) = %v, want %v", tt.content, got, tt.want)
			}
		})
	}
}

func TestIsEmbedSource(t *testing.T) {
	tests := []struct {
		src  string
		want bool
	}{
		{"https://www.youtube.com/embed/x", true},
		{"http://youtube.com/embed/x", true},
		{"https://YOUTU.BE/x", true},
		{"  https://youtu.be/x  ", true},
		{"//www.youtube.com/embed/x", true},
		{"//evil.com/embed/x", false},
		{"/embed/x", false},
		{"www.youtube.com/embed/x", false},
		{"ftp://youtube.com/x", false},
		{"https://vimeo.com/1", false},
		{"https://m.youtube.com/x", false},
		{"", false},
	}
	for _, tt := range tests {
		t.Run(tt.src, func(t *testing.T) {
			if got := IsEmbedSource(tt.src); got != tt.want {
				t.Errorf("IsEmbedSource(%q) = %v, want %v", tt.src, got, tt.want)
			}
		})
	}
}

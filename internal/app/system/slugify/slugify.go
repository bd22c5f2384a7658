// Package slugify builds the permanent URL identifiers for posts.
//
// A slug has the form "posts/<date-token>/<title-token>". The date token is
// the creation instant in UTC at second precision, so slugs sort the same way
// posts do. The title token is a strict, ASCII-only slugification of the title.
package slugify

import (
	"errors"
	"strings"
	"time"

	"github.com/gosimple/slug"
)

// Prefix is the leading path segment of every post slug.
const Prefix = "posts"

// dateLayout is RFC 3339 at second precision with colons replaced by hyphens.
const dateLayout = "2006-01-02T15-04-05Z"

// ErrEmptyToken is returned when a title contains nothing that survives
// slugification (for example a title made only of punctuation).
var ErrEmptyToken = errors.New("title produces an empty slug")

// Generate returns the slug for a post with the given title created at createdAt.
func Generate(title string, createdAt time.Time) (string, error) {
	token := TitleToken(title)
	if token == "" {
		return "", ErrEmptyToken
	}
	return Prefix + "/" + DateToken(createdAt) + "/" + token, nil
}

// DateToken formats t as a lexically sortable, URL-safe UTC timestamp.
// Sub-second precision is dropped.
func DateToken(t time.Time) string {
	return t.UTC().Format(dateLayout)
}

// TitleToken transliterates title to lowercase ASCII and keeps only
// [a-z0-9-], with single hyphens between words and none at either end.
func TitleToken(title string) string {
	s := slug.Make(strings.TrimSpace(title))

	var b strings.Builder
	b.Grow(len(s))
	lastHyphen := true // suppresses a leading hyphen
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			lastHyphen = false
		case r >= 'A' && r <= 'Z':
			b.WriteRune(r + ('a' - 'A'))
			lastHyphen = false
		default:
			if !lastHyphen {
				b.WriteByte('-')
				lastHyphen = true
			}
		}
	}
	return strings.TrimRight(b.String(), "-")
}

// Changed reports whether a title edit requires a new slug. Edits that only
// add or remove surrounding whitespace do not.
func Changed(stored, incoming string) bool {
	return strings.TrimSpace(stored) != strings.TrimSpace(incoming)
}

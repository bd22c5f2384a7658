// Package normalize canonicalizes user-supplied strings before they are
// stored or compared.
package normalize

import "strings"

// LoginID lowercases and trims an email used as a login ID.
func LoginID(s string) string { return folded(s) }

// Role lowercases and trims a role name.
func Role(s string) string { return folded(s) }

// Status lowercases and trims an account status.
func Status(s string) string { return folded(s) }

// Name trims a display name, keeping its case.
func Name(s string) string { return strings.TrimSpace(s) }

// Text trims a single-line post field such as a title or meta description.
func Text(s string) string { return strings.TrimSpace(s) }

// Keywords trims each keyword and drops the ones left empty. Order is kept
// and the result is never nil.
func Keywords(in []string) []string {
	out := make([]string, 0, len(in))
	for _, k := range in {
		if k = strings.TrimSpace(k); k != "" {
			out = append(out, k)
		}
	}
	return out
}

func folded(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

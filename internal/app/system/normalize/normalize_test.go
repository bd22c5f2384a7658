package normalize

import (
	"slices"
	"testing"
)

func TestStrings(t *testing.T) {
	tests := []struct {
		name string
		fn   func(string) string
		in   string
		want string
	}{
		{"login id mixed case", LoginID, "  Ada@Example.COM ", "ada@example.com"},
		{"login id blank", LoginID, "\t\n", ""},
		{"role upper", Role, "ADMIN", "admin"},
		{"role padded", Role, " author ", "author"},
		{"status", Status, " Disabled", "disabled"},
		{"name keeps case", Name, "  Ada Lovelace\n", "Ada Lovelace"},
		{"text keeps inner spacing", Text, "\tHello,  World! ", "Hello,  World!"},
		{"text blank", Text, "   ", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.fn(tt.in); got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestKeywords(t *testing.T) {
	tests := []struct {
		name string
		in   []string
		want []string
	}{
		{"nil", nil, []string{}},
		{"clean", []string{"go", "blog"}, []string{"go", "blog"}},
		{"trimmed", []string{"  go ", "\tblog"}, []string{"go", "blog"}},
		{"empties dropped", []string{"", "  ", "go"}, []string{"go"}},
		{"duplicates kept", []string{"go", "go"}, []string{"go", "go"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Keywords(tt.in)
			if got == nil {
				t.Fatal("Keywords() returned nil")
			}
			if !slices.Equal(got, tt.want) {
				t.Errorf("Keywords(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

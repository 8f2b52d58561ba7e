package feed

import (
	"testing"
)

func TestSlugify(t *testing.T) {
	tests := []struct {
		title string
		want  string
	}{
		{"History Hour", "history-hour"},
		{"  Leading and trailing  ", "leading-and-trailing"},
		{"What's Up?!", "whats-up"},
		{"snake_case_title", "snake-case-title"},
		{"Multiple   Spaces", "multiple-spaces"},
		{"--Already Hyphened--", "already-hyphened"},
		{"100% True Crime", "100-true-crime"},
		{"", ""},
		{"!!!", ""},
	}

	for _, tt := range tests {
		t.Run(tt.title, func(t *testing.T) {
			if got := Slugify(tt.title); got != tt.want {
				t.Errorf("Slugify(%q) = %q, want %q", tt.title, got, tt.want)
			}
		})
	}
}

func TestSlugifyIsDeterministic(t *testing.T) {
	if Slugify("Some Title") != Slugify("Some Title") {
		t.Error("Expected identical titles to produce identical slugs")
	}
}

package common

import "testing"

func TestNormalizeSlug(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"Startup Week 2024", "startup-week-2024"},
		{"  Demo_Day  ", "demo-day"},
		{"already-ok", "already-ok"},
		{"Road -- Construction!", "road-construction"},
		{"---", ""},
	}

	for _, tt := range tests {
		if got := NormalizeSlug(tt.input); got != tt.expected {
			t.Errorf("NormalizeSlug(%q) = %q, want %q", tt.input, got, tt.expected)
		}
	}
}

func TestIsValidSlug(t *testing.T) {
	valid := []string{"a", "news-1", "startup-week-2024"}
	invalid := []string{"", "-a", "a-", "A", "a--b", "a b"}

	for _, s := range valid {
		if !IsValidSlug(s) {
			t.Errorf("IsValidSlug(%q) = false, want true", s)
		}
	}
	for _, s := range invalid {
		if IsValidSlug(s) {
			t.Errorf("IsValidSlug(%q) = true, want false", s)
		}
	}
}

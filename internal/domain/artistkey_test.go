package domain

import "testing"

func TestArtistKey(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"plain", "Daft Punk", "daft-punk"},
		{"diacritics", "Beyoncé", "beyonce"},
		{"punctuation collapsed", "AC/DC!!", "ac-dc"},
		{"leading trailing noise", "  --The Weeknd-- ", "the-weeknd"},
		{"mixed unicode", "Sigur Rós", "sigur-ros"},
		{"digits kept", "Blink-182", "blink-182"},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ArtistKey(tt.input); got != tt.expected {
				t.Errorf("ArtistKey(%q) = %q, want %q", tt.input, got, tt.expected)
			}
		})
	}
}

package ingest

import "testing"

func TestIsAlbumLike(t *testing.T) {
	tests := []struct {
		name        string
		title       string
		description string
		expected    bool
	}{
		{"plain album", "Discovery (Full Album)", "", true},
		{"ep", "Homework EP", "", true},
		{"mixtape included", "Summer Mixtape", "", true},
		{"no hint", "Greatest Hits", "", false},
		{"album hint in description", "Discovery", "the 2001 album", true},
		{"mix excluded", "Best of 2020 Mix", "an album of sorts", false},
		{"live excluded", "Alive 2007 Live Album", "", false},
		{"reaction excluded", "Album reaction", "", false},
		{"compilation excluded", "Album compilation", "", false},
		{"official album overrides", "Live at the Garden", "official album release", true},
		{"case insensitive", "DISCOVERY ALBUM", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsAlbumLike(tt.title, tt.description); got != tt.expected {
				t.Errorf("IsAlbumLike(%q, %q) = %v, want %v", tt.title, tt.description, got, tt.expected)
			}
		})
	}
}

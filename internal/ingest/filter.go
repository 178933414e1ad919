package ingest

import (
	"regexp"
	"strings"
)

// Keyword heuristic separating album-like playlists from mixes, live sets
// and fan compilations. Word-bounded so "mixtape" is not caught by "mix".
var (
	includeRE = regexp.MustCompile(`\b(album|ep|lp|mixtape|discography|full album)\b`)
	excludeRE = regexp.MustCompile(`\b(mix|remix|megamix|live|concert|reaction|compilation|mashup|cover|karaoke)\b`)
)

const overrideMarker = "official album"

// IsAlbumLike reports whether a playlist's title+description reads like an
// album. An explicit "official album" marker overrides any exclusion hit.
func IsAlbumLike(title, description string) bool {
	text := strings.ToLower(title + " " + description)
	if strings.Contains(text, overrideMarker) {
		return true
	}
	if !includeRE.MatchString(text) {
		return false
	}
	return !excludeRE.MatchString(text)
}

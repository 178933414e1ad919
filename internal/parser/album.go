package parser

import (
	"encoding/json"

	"github.com/melodexapp/melodex/internal/domain"
)

// ParseAlbum normalizes one album browse document. Album rows frequently
// omit the per-row artist; the header artist is filled in as a fallback.
func ParseAlbum(raw []byte, browseID string) domain.ParsedAlbum {
	album := domain.ParsedAlbum{BrowseID: browseID}

	var doc map[string]interface{}
	if err := json.Unmarshal(raw, &doc); err != nil {
		return album
	}

	h := header{doc: doc}
	album.Title = h.title()
	album.ArtistName = h.ownerName()
	album.ThumbnailURL = h.thumbnail()
	album.Year = h.year()
	album.Tracks = extractTracks(doc)
	album.TrackCount = len(album.Tracks)

	for i := range album.Tracks {
		if album.Tracks[i].ArtistName == "" {
			album.Tracks[i].ArtistName = album.ArtistName
		}
		if album.Tracks[i].ThumbnailURL == "" {
			album.Tracks[i].ThumbnailURL = album.ThumbnailURL
		}
	}
	return album
}

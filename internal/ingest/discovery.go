package ingest

import (
	"context"

	"github.com/melodexapp/melodex/internal/domain"
)

// Playlists examined at most per discovery pass. The search endpoint is two
// orders of magnitude more expensive than a list call, so this stays small.
const discoveryMaxPlaylists = 5

// discover runs the supplementary search-based pass when the channel-based
// pass yielded too little. Everything here is best-effort: failures are
// swallowed because the primary pass already produced a usable result.
func (p *Pipeline) discover(ctx context.Context, artist *domain.Artist, result *domain.ArtistIngestResult) {
	log := p.log.WithArtist(artist.ArtistKey, "")

	refs, fres := p.fetcher.SearchPlaylists(ctx, artist.Name+" album", discoveryMaxPlaylists*2)
	if !fres.OK() {
		log.Debug("discovery search failed", "status", fres.Status, "error", fres.Err)
		return
	}

	examined := 0
	for _, ref := range refs {
		if examined >= discoveryMaxPlaylists {
			break
		}
		if !IsAlbumLike(ref.Title, ref.Description) {
			continue
		}
		examined++
		counts, ok := p.ingestOnePlaylist(ctx, ref, domain.KindAlbum, 0)
		if !ok {
			log.Debug("discovery playlist ingestion failed", "playlist_id", ref.ID)
			continue
		}
		result.PlaylistsIngested++
		result.TracksIngested += counts.TrackCount
	}
}

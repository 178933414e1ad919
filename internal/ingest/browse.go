package ingest

import (
	"context"
	"strings"

	"github.com/melodexapp/melodex/internal/catalog"
	"github.com/melodexapp/melodex/internal/domain"
	"github.com/melodexapp/melodex/internal/parser"
)

// ingestViaBrowse recovers a playlist or album through the unmetered browse
// endpoint when the metered listing cannot serve it. The parsed header fills
// gaps in the listing-level ref, and the parsed rows stand in for the batch
// detail lookup.
func (p *Pipeline) ingestViaBrowse(ctx context.Context, ref catalog.PlaylistRef, kind domain.PlaylistKind, maxTracks int) (*domain.PlaylistIngestResult, bool) {
	raw, fres := p.fetcher.Browse(ctx, browseIDFor(ref.ID, kind))
	if !fres.OK() {
		p.log.Warn("browse fallback failed", "playlist_id", ref.ID, "status", fres.Status, "error", fres.Err)
		return nil, false
	}
	year, rows := parseBrowseDoc(raw, &ref, kind)

	if maxTracks > 0 && len(rows) > maxTracks {
		rows = rows[:maxTracks]
	}
	tracks := make([]*domain.Track, 0, len(rows))
	order := make([]string, 0, len(rows))
	for _, row := range rows {
		tracks = append(tracks, browseTrack(row))
		order = append(order, row.VideoID)
	}
	p.log.Info("ingested via browse fallback", "playlist_id", ref.ID, "tracks", len(tracks))
	return p.persistPlaylist(ref, kind, year, tracks, order, nil)
}

// enrichHeader fills missing listing-level header fields (title, owner,
// thumbnail, year) from one unmetered browse call. Best effort; a browse
// failure leaves the ref untouched.
func (p *Pipeline) enrichHeader(ctx context.Context, ref *catalog.PlaylistRef, kind domain.PlaylistKind) *int {
	raw, fres := p.fetcher.Browse(ctx, browseIDFor(ref.ID, kind))
	if !fres.OK() {
		p.log.Debug("header enrichment skipped", "playlist_id", ref.ID, "status", fres.Status)
		return nil
	}
	year, _ := parseBrowseDoc(raw, ref, kind)
	return year
}

// parseBrowseDoc normalizes one browse document, filling empty ref fields
// from the parsed header and returning the header year plus the extracted
// rows.
func parseBrowseDoc(raw []byte, ref *catalog.PlaylistRef, kind domain.PlaylistKind) (*int, []domain.ParsedTrack) {
	if kind == domain.KindAlbum {
		album := parser.ParseAlbum(raw, ref.ID)
		if ref.Title == "" {
			ref.Title = album.Title
		}
		if ref.ChannelTitle == "" {
			ref.ChannelTitle = album.ArtistName
		}
		if ref.ThumbnailURL == "" {
			ref.ThumbnailURL = album.ThumbnailURL
		}
		return album.Year, album.Tracks
	}

	pl := parser.ParsePlaylist(raw, ref.ID)
	if ref.Title == "" {
		ref.Title = pl.Title
	}
	if ref.ChannelTitle == "" {
		ref.ChannelTitle = pl.ChannelTitle
	}
	if ref.ChannelID == "" {
		ref.ChannelID = pl.ChannelID
	}
	if ref.ThumbnailURL == "" {
		ref.ThumbnailURL = pl.ThumbnailURL
	}
	return pl.Year, pl.Tracks
}

// Plain playlists are browsed under a VL-prefixed id; album browse ids are
// used as-is.
func browseIDFor(id string, kind domain.PlaylistKind) string {
	if kind == domain.KindPlaylist && !strings.HasPrefix(id, "VL") {
		return "VL" + id
	}
	return id
}

func browseTrack(row domain.ParsedTrack) *domain.Track {
	track := &domain.Track{
		VideoID:         row.VideoID,
		Title:           row.Title,
		ArtistName:      row.ArtistName,
		ThumbnailURL:    row.ThumbnailURL,
		DurationSeconds: row.DurationSeconds,
	}
	if row.ChannelID != "" {
		channelID := row.ChannelID
		track.ChannelID = &channelID
	}
	return track
}

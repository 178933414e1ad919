// Package ingest orchestrates fetcher output into upsert batches against
// the store. It owns deduplication, link-table maintenance, and the
// per-target in-flight guard that keeps the same logical entity from being
// ingested concurrently twice.
package ingest

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/melodexapp/melodex/internal/catalog"
	"github.com/melodexapp/melodex/internal/constants"
	"github.com/melodexapp/melodex/internal/domain"
	"github.com/melodexapp/melodex/internal/logger"
)

// Fetcher is the slice of the catalog client the pipeline consumes.
type Fetcher interface {
	ValidateChannel(ctx context.Context, channelID string) (*catalog.ChannelInfo, catalog.FetchResult)
	ListChannelPlaylists(ctx context.Context, channelID string, max int) ([]catalog.PlaylistRef, catalog.FetchResult)
	ListPlaylistItems(ctx context.Context, playlistID string) ([]catalog.PlaylistItemRef, catalog.FetchResult)
	BatchVideoDetails(ctx context.Context, ids []string) (map[string]catalog.VideoDetail, catalog.FetchResult)
	SearchPlaylists(ctx context.Context, query string, max int) ([]catalog.PlaylistRef, catalog.FetchResult)
	Browse(ctx context.Context, browseID string) ([]byte, catalog.FetchResult)
}

// Store is the slice of the relational store the pipeline consumes.
type Store interface {
	ResolveArtist(artist *domain.Artist) error
	GetArtistByChannelID(channelID string) (*domain.Artist, error)
	ClearArtistChannel(channelID string) error
	MarkArtistIngested(id int64) error
	UpsertTracks(tracks []*domain.Track) (map[string]int64, error)
	UpdateTrackViewCount(trackID, viewsTotal int64) error
	UpsertPlaylist(pl *domain.Playlist) error
	ReplacePlaylistLinks(playlistID int64, trackIDs []int64) error
}

// Options bounds one artist ingestion run.
type Options struct {
	MaxPlaylists int
	MaxTracks    int
}

// Pipeline is the ingestion orchestrator. One instance is shared by the
// route layer and the scheduler; the guard it owns is what collapses their
// concurrent triggers.
type Pipeline struct {
	store   Store
	fetcher Fetcher
	guard   *Guard
	log     *logger.Logger
}

func NewPipeline(store Store, fetcher Fetcher, guard *Guard, log *logger.Logger) *Pipeline {
	return &Pipeline{
		store:   store,
		fetcher: fetcher,
		guard:   guard,
		log:     log.WithComponent("ingest"),
	}
}

// guardKey prefers the already-known artist key for a channel so triggers by
// key and by channel coalesce onto the same entry.
func (p *Pipeline) guardKey(channelID string) string {
	artist, err := p.store.GetArtistByChannelID(channelID)
	if err != nil || artist == nil {
		return "channel:" + channelID
	}
	return artist.ArtistKey
}

// TriggerArtist starts an artist ingestion decoupled from the caller's
// request cycle. Returns false when a run for the same target is already in
// flight; the existing run's result is not joined.
func (p *Pipeline) TriggerArtist(channelID string, opts Options) bool {
	key := p.guardKey(channelID)
	if !p.guard.TryAcquire(key) {
		p.log.Info("ingestion already in flight, skipping", "key", key, "channel_id", channelID)
		return false
	}

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), constants.DefaultRunTimeout)
		defer cancel()

		ok := false
		defer func() { p.guard.Release(key, ok) }()

		var result *domain.ArtistIngestResult
		result, ok = p.ingestArtist(ctx, channelID, opts)
		if !ok {
			p.log.Warn("artist ingestion failed", "channel_id", channelID)
			return
		}
		p.log.Info("artist ingestion finished", "channel_id", channelID,
			"playlists", result.PlaylistsIngested, "tracks", result.TracksIngested)
	}()
	return true
}

// IngestArtist runs the ingestion body synchronously under the guard.
// Returns nil,false on any required upstream failure.
func (p *Pipeline) IngestArtist(ctx context.Context, channelID string, opts Options) (*domain.ArtistIngestResult, bool) {
	key := p.guardKey(channelID)
	if !p.guard.TryAcquire(key) {
		p.log.Info("ingestion already in flight, skipping", "key", key, "channel_id", channelID)
		return nil, false
	}
	// Release in a defer so a panic escaping the body cannot wedge the key
	// as permanently in-flight.
	ok := false
	defer func() { p.guard.Release(key, ok) }()

	var result *domain.ArtistIngestResult
	result, ok = p.ingestArtist(ctx, channelID, opts)
	return result, ok
}

func (p *Pipeline) ingestArtist(ctx context.Context, channelID string, opts Options) (*domain.ArtistIngestResult, bool) {
	log := p.log.WithArtist("", channelID)

	info, fres := p.fetcher.ValidateChannel(ctx, channelID)
	if !fres.OK() || info == nil {
		log.Warn("channel validation failed, clearing stale mapping", "status", fres.Status, "error", fres.Err)
		if err := p.store.ClearArtistChannel(channelID); err != nil && !errors.Is(err, sql.ErrNoRows) {
			log.Error("failed to clear artist channel", "error", err)
		}
		return nil, false
	}

	artist := &domain.Artist{
		ArtistKey:    domain.ArtistKey(info.Title),
		Name:         info.Title,
		ChannelID:    &info.ID,
		ThumbnailURL: info.ThumbnailURL,
		BannerURL:    info.BannerURL,
	}
	if err := p.store.ResolveArtist(artist); err != nil {
		log.Error("failed to resolve artist", "error", err)
		return nil, false
	}
	log = p.log.WithArtist(artist.ArtistKey, channelID)

	maxPlaylists := opts.MaxPlaylists
	if maxPlaylists <= 0 {
		maxPlaylists = constants.DefaultMaxPlaylists
	}

	refs, fres := p.fetcher.ListChannelPlaylists(ctx, channelID, maxPlaylists)
	if fres.Status == catalog.StatusNotModified {
		// A stable upstream listing is still a completed run; without the
		// ingested_at bump the nightly sweep would re-select this artist
		// forever.
		log.Info("channel playlists unchanged upstream, nothing to ingest")
		if err := p.store.MarkArtistIngested(artist.ID); err != nil {
			log.Error("failed to mark artist ingested", "error", err)
		}
		return &domain.ArtistIngestResult{ArtistID: artist.ID}, true
	}
	if !fres.OK() {
		log.Warn("playlist listing failed", "status", fres.Status, "error", fres.Err)
		return nil, false
	}

	result := &domain.ArtistIngestResult{ArtistID: artist.ID}
	for _, ref := range refs {
		if !IsAlbumLike(ref.Title, ref.Description) {
			continue
		}
		counts, ok := p.ingestOnePlaylist(ctx, ref, domain.KindAlbum, opts.MaxTracks)
		if !ok {
			log.Warn("playlist ingestion failed, skipping", "playlist_id", ref.ID)
			continue
		}
		result.PlaylistsIngested++
		result.TracksIngested += counts.TrackCount
	}

	// Channel listings miss content published outside the official channel;
	// a thin primary pass gets one bounded, best-effort search top-up.
	if result.PlaylistsIngested < constants.DiscoveryMinPlaylists ||
		result.TracksIngested < constants.DiscoveryMinTracks {
		p.discover(ctx, artist, result)
	}

	if err := p.store.MarkArtistIngested(artist.ID); err != nil {
		log.Error("failed to mark artist ingested", "error", err)
	}
	return result, true
}

// IngestPlaylist ingests one playlist or album directly by its browse id.
func (p *Pipeline) IngestPlaylist(ctx context.Context, browseID string, kind domain.PlaylistKind, maxTracks int) (*domain.PlaylistIngestResult, bool) {
	return p.ingestOnePlaylist(ctx, catalog.PlaylistRef{ID: browseID}, kind, maxTracks)
}

// ingestOnePlaylist fetches a playlist's items, resolves authoritative
// details in batches, upserts tracks, and replaces the link rows. Track
// upserts complete before link replacement so links reference only
// persisted rows.
func (p *Pipeline) ingestOnePlaylist(ctx context.Context, ref catalog.PlaylistRef, kind domain.PlaylistKind, maxTracks int) (*domain.PlaylistIngestResult, bool) {
	items, fres := p.fetcher.ListPlaylistItems(ctx, ref.ID)
	if !fres.OK() {
		// The metered listing is unavailable; the unmetered browse surface
		// can still serve the same rows.
		return p.ingestViaBrowse(ctx, ref, kind, maxTracks)
	}

	// Rows without a resolvable id are dropped; order is preserved.
	var ids []string
	seen := make(map[string]bool, len(items))
	kept := make([]catalog.PlaylistItemRef, 0, len(items))
	for _, item := range items {
		if item.VideoID == "" || seen[item.VideoID] {
			continue
		}
		seen[item.VideoID] = true
		kept = append(kept, item)
		ids = append(ids, item.VideoID)
		if maxTracks > 0 && len(kept) >= maxTracks {
			break
		}
	}

	details, fres := p.fetcher.BatchVideoDetails(ctx, ids)
	if !fres.OK() {
		return nil, false
	}

	// Direct ingestion by browse id arrives with a bare ref; one unmetered
	// browse call fills the header so the playlist row is not persisted
	// untitled.
	var year *int
	if ref.Title == "" {
		year = p.enrichHeader(ctx, &ref, kind)
	}

	tracks := make([]*domain.Track, 0, len(kept))
	for _, item := range kept {
		tracks = append(tracks, mergeTrack(item, details[item.VideoID]))
	}
	return p.persistPlaylist(ref, kind, year, tracks, ids, details)
}

// persistPlaylist writes the track batch, the playlist header row, and the
// link rows, in that order. order holds video ids in upstream sequence;
// details, when present, also refreshes per-track view counts.
func (p *Pipeline) persistPlaylist(ref catalog.PlaylistRef, kind domain.PlaylistKind, year *int, tracks []*domain.Track, order []string, details map[string]catalog.VideoDetail) (*domain.PlaylistIngestResult, bool) {
	if len(tracks) == 0 {
		// An empty playlist still upserts its header row.
		if _, err := p.upsertPlaylistRow(ref, kind, year, 0); err != nil {
			p.log.Error("failed to upsert playlist", "playlist_id", ref.ID, "error", err)
			return nil, false
		}
		return &domain.PlaylistIngestResult{}, true
	}

	trackIDs, err := p.store.UpsertTracks(tracks)
	if err != nil {
		p.log.Error("failed to upsert tracks", "playlist_id", ref.ID, "error", err)
		return nil, false
	}
	for videoID, detail := range details {
		if id, found := trackIDs[videoID]; found && detail.ViewCount > 0 {
			if err := p.store.UpdateTrackViewCount(id, detail.ViewCount); err != nil {
				p.log.Error("failed to update view count", "video_id", videoID, "error", err)
			}
		}
	}

	pl, err := p.upsertPlaylistRow(ref, kind, year, len(tracks))
	if err != nil {
		p.log.Error("failed to upsert playlist", "playlist_id", ref.ID, "error", err)
		return nil, false
	}

	ordered := make([]int64, 0, len(order))
	for _, videoID := range order {
		if id, found := trackIDs[videoID]; found {
			ordered = append(ordered, id)
		}
	}
	if err := p.store.ReplacePlaylistLinks(pl.ID, ordered); err != nil {
		p.log.Error("failed to replace playlist links", "playlist_id", ref.ID, "error", err)
		return nil, false
	}

	return &domain.PlaylistIngestResult{TrackCount: len(tracks), LinkCount: len(ordered)}, true
}

func (p *Pipeline) upsertPlaylistRow(ref catalog.PlaylistRef, kind domain.PlaylistKind, year *int, itemCount int) (*domain.Playlist, error) {
	pl := &domain.Playlist{
		BrowseID:     ref.ID,
		Kind:         kind,
		Title:        ref.Title,
		ThumbnailURL: ref.ThumbnailURL,
		ChannelTitle: ref.ChannelTitle,
		Year:         year,
		ItemCount:    itemCount,
	}
	if ref.ChannelID != "" {
		pl.ChannelID = &ref.ChannelID
	}
	if err := p.store.UpsertPlaylist(pl); err != nil {
		return nil, fmt.Errorf("failed to upsert playlist row: %w", err)
	}
	return pl, nil
}

// mergeTrack combines listing-level fallback values with the authoritative
// detail record. Detail values win when present.
func mergeTrack(item catalog.PlaylistItemRef, detail catalog.VideoDetail) *domain.Track {
	track := &domain.Track{
		VideoID:      item.VideoID,
		Title:        item.Title,
		ArtistName:   item.ChannelTitle,
		ThumbnailURL: item.ThumbnailURL,
	}
	if detail.Title != "" {
		track.Title = detail.Title
	}
	if detail.ChannelTitle != "" {
		track.ArtistName = detail.ChannelTitle
	}
	if detail.ThumbnailURL != "" {
		track.ThumbnailURL = detail.ThumbnailURL
	}
	if detail.ChannelID != "" {
		channelID := detail.ChannelID
		track.ChannelID = &channelID
	}
	track.DurationSeconds = detail.DurationSeconds
	return track
}

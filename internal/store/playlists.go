package store

import (
	"fmt"
	"time"

	"github.com/melodexapp/melodex/internal/domain"
)

// UpsertPlaylist persists a playlist or album idempotently on browse_id and
// fills in the row id.
func (db *DB) UpsertPlaylist(pl *domain.Playlist) error {
	now := time.Now()
	pl.CreatedAt = now
	pl.UpdatedAt = now

	_, err := db.NamedExec(`INSERT INTO playlists
		(browse_id, kind, title, thumbnail_url, channel_id, channel_title, year, item_count, created_at, updated_at)
		VALUES (:browse_id, :kind, :title, :thumbnail_url, :channel_id, :channel_title, :year, :item_count, :created_at, :updated_at)
		ON CONFLICT(browse_id) DO UPDATE SET
			kind = excluded.kind,
			title = excluded.title,
			thumbnail_url = CASE WHEN excluded.thumbnail_url != '' THEN excluded.thumbnail_url ELSE playlists.thumbnail_url END,
			channel_id = COALESCE(excluded.channel_id, playlists.channel_id),
			channel_title = excluded.channel_title,
			year = COALESCE(excluded.year, playlists.year),
			item_count = excluded.item_count,
			updated_at = excluded.updated_at`, pl)
	if err != nil {
		return fmt.Errorf("failed to upsert playlist: %w", err)
	}

	if err := db.Get(&pl.ID, `SELECT id FROM playlists WHERE browse_id = ?`, pl.BrowseID); err != nil {
		return fmt.Errorf("failed to read back playlist id: %w", err)
	}
	return nil
}

func (db *DB) GetPlaylistByBrowseID(browseID string) (*domain.Playlist, error) {
	var pl domain.Playlist
	if err := db.Get(&pl, `SELECT * FROM playlists WHERE browse_id = ?`, browseID); err != nil {
		return nil, err
	}
	return &pl, nil
}

func (db *DB) CountPlaylistsByChannel(channelID string) (int, error) {
	var count int
	err := db.Get(&count, `SELECT COUNT(*) FROM playlists WHERE channel_id = ?`, channelID)
	return count, err
}

// ReplacePlaylistLinks swaps a playlist's link rows for freshly computed
// 1-based positions. Delete-then-insert inside one transaction so stale
// positions from a prior partial ingestion cannot linger.
func (db *DB) ReplacePlaylistLinks(playlistID int64, trackIDs []int64) error {
	tx, err := db.Beginx()
	if err != nil {
		return fmt.Errorf("failed to begin link replacement: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // no-op after commit

	if _, err := tx.Exec(`DELETE FROM playlist_tracks WHERE playlist_id = ?`, playlistID); err != nil {
		return fmt.Errorf("failed to clear playlist links: %w", err)
	}

	seen := make(map[int64]bool, len(trackIDs))
	position := 0
	for _, trackID := range trackIDs {
		if seen[trackID] {
			continue
		}
		seen[trackID] = true
		position++
		if _, err := tx.Exec(`INSERT INTO playlist_tracks (playlist_id, track_id, position) VALUES (?, ?, ?)`,
			playlistID, trackID, position); err != nil {
			return fmt.Errorf("failed to insert playlist link: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit link replacement: %w", err)
	}
	return nil
}

func (db *DB) ListPlaylistLinks(playlistID int64) ([]*domain.PlaylistTrack, error) {
	var links []*domain.PlaylistTrack
	err := db.Select(&links, `SELECT * FROM playlist_tracks WHERE playlist_id = ? ORDER BY position ASC`, playlistID)
	return links, err
}

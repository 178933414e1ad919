package store

import (
	"fmt"
	"strings"
	"time"

	"github.com/melodexapp/melodex/internal/constants"
	"github.com/melodexapp/melodex/internal/domain"
)

// UpsertTracks persists tracks idempotently on video_id, chunked to bound
// statement size. Returns video_id → row id for every input track.
func (db *DB) UpsertTracks(tracks []*domain.Track) (map[string]int64, error) {
	ids := make(map[string]int64, len(tracks))
	for start := 0; start < len(tracks); start += constants.TrackUpsertChunk {
		end := start + constants.TrackUpsertChunk
		if end > len(tracks) {
			end = len(tracks)
		}
		if err := db.upsertTrackChunk(tracks[start:end], ids); err != nil {
			return nil, err
		}
	}
	return ids, nil
}

func (db *DB) upsertTrackChunk(tracks []*domain.Track, ids map[string]int64) error {
	now := time.Now()
	values := make([]string, 0, len(tracks))
	args := make([]interface{}, 0, len(tracks)*7)
	for _, t := range tracks {
		values = append(values, "(?, ?, ?, ?, ?, ?, ?, ?)")
		args = append(args, t.VideoID, t.Title, t.ArtistName, t.DurationSeconds,
			t.ThumbnailURL, t.ChannelID, now, now)
	}

	query := fmt.Sprintf(`INSERT INTO tracks
		(video_id, title, artist_name, duration_seconds, thumbnail_url, channel_id, created_at, updated_at)
		VALUES %s
		ON CONFLICT(video_id) DO UPDATE SET
			title = excluded.title,
			artist_name = excluded.artist_name,
			duration_seconds = COALESCE(excluded.duration_seconds, tracks.duration_seconds),
			thumbnail_url = CASE WHEN excluded.thumbnail_url != '' THEN excluded.thumbnail_url ELSE tracks.thumbnail_url END,
			channel_id = COALESCE(excluded.channel_id, tracks.channel_id),
			updated_at = excluded.updated_at`,
		strings.Join(values, ", "))

	if _, err := db.Exec(query, args...); err != nil {
		return fmt.Errorf("failed to upsert tracks: %w", err)
	}

	videoIDs := make([]string, 0, len(tracks))
	for _, t := range tracks {
		videoIDs = append(videoIDs, t.VideoID)
	}
	rows, err := db.Queryx(fmt.Sprintf(`SELECT id, video_id FROM tracks WHERE video_id IN (%s)`,
		placeholders(len(videoIDs))), toAny(videoIDs)...)
	if err != nil {
		return fmt.Errorf("failed to read back track ids: %w", err)
	}
	defer rows.Close() //nolint:errcheck // deferred cleanup

	for rows.Next() {
		var id int64
		var videoID string
		if err := rows.Scan(&id, &videoID); err != nil {
			return fmt.Errorf("failed to scan track id: %w", err)
		}
		ids[videoID] = id
	}
	return rows.Err()
}

func (db *DB) GetTrackByVideoID(videoID string) (*domain.Track, error) {
	var track domain.Track
	if err := db.Get(&track, `SELECT * FROM tracks WHERE video_id = ?`, videoID); err != nil {
		return nil, err
	}
	return &track, nil
}

func (db *DB) CountTracks() (int, error) {
	var count int
	err := db.Get(&count, `SELECT COUNT(*) FROM tracks`)
	return count, err
}

// UpsertTrackStats refreshes the view statistics for one track.
func (db *DB) UpsertTrackStats(stats *domain.TrackStats) error {
	_, err := db.NamedExec(`INSERT INTO track_stats
		(track_id, views_7d, views_total, quality, validated, refreshed_at, last_interaction_at)
		VALUES (:track_id, :views_7d, :views_total, :quality, :validated, :refreshed_at, :last_interaction_at)
		ON CONFLICT(track_id) DO UPDATE SET
			views_7d = excluded.views_7d,
			views_total = excluded.views_total,
			quality = excluded.quality,
			validated = excluded.validated,
			refreshed_at = excluded.refreshed_at,
			last_interaction_at = excluded.last_interaction_at`, stats)
	if err != nil {
		return fmt.Errorf("failed to upsert track stats: %w", err)
	}
	return nil
}

// UpdateTrackViewCount folds a fresh lifetime view count into the stats row.
// The 7-day figure is maintained as the positive delta against the previous
// lifetime count; interaction-driven refreshes overwrite it separately.
func (db *DB) UpdateTrackViewCount(trackID, viewsTotal int64) error {
	_, err := db.Exec(`INSERT INTO track_stats (track_id, views_7d, views_total, refreshed_at)
		VALUES (?, 0, ?, ?)
		ON CONFLICT(track_id) DO UPDATE SET
			views_7d = MAX(0, excluded.views_total - track_stats.views_total),
			views_total = excluded.views_total,
			refreshed_at = excluded.refreshed_at`,
		trackID, viewsTotal, time.Now())
	if err != nil {
		return fmt.Errorf("failed to update track view count: %w", err)
	}
	return nil
}

func placeholders(n int) string {
	return strings.TrimSuffix(strings.Repeat("?, ", n), ", ")
}

func toAny(ss []string) []interface{} {
	out := make([]interface{}, len(ss))
	for i, s := range ss {
		out[i] = s
	}
	return out
}

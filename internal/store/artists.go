package store

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/melodexapp/melodex/internal/domain"
)

// ResolveArtist finds an existing artist by channel id first, then by artist
// key, and upserts it. The existing row's id is always reused so dependent
// rows keep a stable foreign key.
func (db *DB) ResolveArtist(artist *domain.Artist) error {
	existing, err := db.findArtist(artist)
	if err != nil {
		return err
	}

	now := time.Now()
	if existing == nil {
		artist.CreatedAt = now
		artist.UpdatedAt = now
		res, err := db.NamedExec(`INSERT INTO artists
			(artist_key, name, channel_id, thumbnail_url, banner_url, created_at, updated_at)
			VALUES (:artist_key, :name, :channel_id, :thumbnail_url, :banner_url, :created_at, :updated_at)`,
			artist)
		if err != nil {
			return fmt.Errorf("failed to insert artist: %w", err)
		}
		id, err := res.LastInsertId()
		if err != nil {
			return err
		}
		artist.ID = id
		return nil
	}

	artist.ID = existing.ID
	artist.CreatedAt = existing.CreatedAt
	artist.UpdatedAt = now
	if artist.ChannelID == nil {
		artist.ChannelID = existing.ChannelID
	}
	if artist.ThumbnailURL == "" {
		artist.ThumbnailURL = existing.ThumbnailURL
	}
	if artist.BannerURL == "" {
		artist.BannerURL = existing.BannerURL
	}

	_, err = db.NamedExec(`UPDATE artists SET
		artist_key = :artist_key, name = :name, channel_id = :channel_id,
		thumbnail_url = :thumbnail_url, banner_url = :banner_url, updated_at = :updated_at
		WHERE id = :id`, artist)
	if err != nil {
		return fmt.Errorf("failed to update artist: %w", err)
	}
	return nil
}

func (db *DB) findArtist(artist *domain.Artist) (*domain.Artist, error) {
	var existing domain.Artist
	if artist.ChannelID != nil && *artist.ChannelID != "" {
		err := db.Get(&existing, `SELECT * FROM artists WHERE channel_id = ?`, *artist.ChannelID)
		if err == nil {
			return &existing, nil
		}
		if !errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("failed to query artist by channel: %w", err)
		}
	}
	err := db.Get(&existing, `SELECT * FROM artists WHERE artist_key = ?`, artist.ArtistKey)
	if err == nil {
		return &existing, nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	return nil, fmt.Errorf("failed to query artist by key: %w", err)
}

func (db *DB) GetArtistByKey(key string) (*domain.Artist, error) {
	var artist domain.Artist
	if err := db.Get(&artist, `SELECT * FROM artists WHERE artist_key = ?`, key); err != nil {
		return nil, err
	}
	return &artist, nil
}

func (db *DB) GetArtistByChannelID(channelID string) (*domain.Artist, error) {
	var artist domain.Artist
	if err := db.Get(&artist, `SELECT * FROM artists WHERE channel_id = ?`, channelID); err != nil {
		return nil, err
	}
	return &artist, nil
}

// ClearArtistChannel drops a stale channel mapping after upstream validation
// rejected the channel.
func (db *DB) ClearArtistChannel(channelID string) error {
	_, err := db.Exec(`UPDATE artists SET channel_id = NULL, updated_at = ? WHERE channel_id = ?`,
		time.Now(), channelID)
	return err
}

func (db *DB) MarkArtistIngested(id int64) error {
	_, err := db.Exec(`UPDATE artists SET ingested_at = ?, updated_at = ? WHERE id = ?`,
		time.Now(), time.Now(), id)
	return err
}

// ListArtistsForSweep returns artists with a bound channel, oldest ingestion
// first, for the scheduled re-ingestion sweep.
func (db *DB) ListArtistsForSweep(limit int) ([]*domain.Artist, error) {
	var artists []*domain.Artist
	err := db.Select(&artists, `SELECT * FROM artists
		WHERE channel_id IS NOT NULL
		ORDER BY ingested_at IS NOT NULL, ingested_at ASC
		LIMIT ?`, limit)
	return artists, err
}

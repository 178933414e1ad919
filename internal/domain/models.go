package domain

import (
	"time"
)

// Artist is a persisted catalog artist. Identity is the derived artist key;
// the upstream channel id is bound once known and is unique per artist.
type Artist struct {
	ID           int64      `json:"id" db:"id"`
	ArtistKey    string     `json:"artist_key" db:"artist_key"`
	Name         string     `json:"name" db:"name"`
	ChannelID    *string    `json:"channel_id,omitempty" db:"channel_id"`
	ThumbnailURL string     `json:"thumbnail_url" db:"thumbnail_url"`
	BannerURL    string     `json:"banner_url" db:"banner_url"`
	CreatedAt    time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at" db:"updated_at"`
	IngestedAt   *time.Time `json:"ingested_at,omitempty" db:"ingested_at"`
}

// Track is a persisted catalog track keyed by its upstream video id.
type Track struct {
	ID              int64     `json:"id" db:"id"`
	VideoID         string    `json:"video_id" db:"video_id"`
	Title           string    `json:"title" db:"title"`
	ArtistName      string    `json:"artist_name" db:"artist_name"`
	DurationSeconds *int      `json:"duration_seconds,omitempty" db:"duration_seconds"`
	ThumbnailURL    string    `json:"thumbnail_url" db:"thumbnail_url"`
	ChannelID       *string   `json:"channel_id,omitempty" db:"channel_id"`
	CreatedAt       time.Time `json:"created_at" db:"created_at"`
	UpdatedAt       time.Time `json:"updated_at" db:"updated_at"`
}

// PlaylistKind distinguishes albums from plain playlists. Both persist to the
// same table; the kind drives presentation only.
type PlaylistKind string

const (
	KindAlbum    PlaylistKind = "album"
	KindPlaylist PlaylistKind = "playlist"
)

// Playlist is a persisted playlist or album keyed by its upstream browse id.
// ItemCount is advisory and may lag true membership.
type Playlist struct {
	ID           int64        `json:"id" db:"id"`
	BrowseID     string       `json:"browse_id" db:"browse_id"`
	Kind         PlaylistKind `json:"kind" db:"kind"`
	Title        string       `json:"title" db:"title"`
	ThumbnailURL string       `json:"thumbnail_url" db:"thumbnail_url"`
	ChannelID    *string      `json:"channel_id,omitempty" db:"channel_id"`
	ChannelTitle string       `json:"channel_title" db:"channel_title"`
	Year         *int         `json:"year,omitempty" db:"year"`
	ItemCount    int          `json:"item_count" db:"item_count"`
	CreatedAt    time.Time    `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time    `json:"updated_at" db:"updated_at"`
}

// PlaylistTrack links a playlist to a track with a 1-based position. Link rows
// are replaced wholesale on every re-ingestion of the parent playlist.
type PlaylistTrack struct {
	PlaylistID int64 `json:"playlist_id" db:"playlist_id"`
	TrackID    int64 `json:"track_id" db:"track_id"`
	Position   int   `json:"position" db:"position"`
}

// QuotaUsage is one append-only row of the quota burn log.
type QuotaUsage struct {
	ID        int64     `json:"id" db:"id"`
	CallerKey string    `json:"caller_key" db:"caller_key"` // sha256, hex-truncated
	Endpoint  string    `json:"endpoint" db:"endpoint"`
	Cost      int       `json:"cost" db:"cost"`
	Status    string    `json:"status" db:"status"`
	Error     string    `json:"error" db:"error"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// TrackStats carries the view statistics backing ranking candidates.
type TrackStats struct {
	TrackID           int64      `json:"track_id" db:"track_id"`
	Views7d           int64      `json:"views_7d" db:"views_7d"`
	ViewsTotal        int64      `json:"views_total" db:"views_total"`
	Quality           float64    `json:"quality" db:"quality"`
	Validated         bool       `json:"validated" db:"validated"`
	RefreshedAt       time.Time  `json:"refreshed_at" db:"refreshed_at"`
	LastInteractionAt *time.Time `json:"last_interaction_at,omitempty" db:"last_interaction_at"`
}

// CandidateRow is the read-only projection of an entity plus its view
// statistics consumed by the ranking engine. Never mutated by ranking.
type CandidateRow struct {
	TrackID           int64      `json:"track_id" db:"track_id"`
	VideoID           string     `json:"video_id" db:"video_id"`
	Title             string     `json:"title" db:"title"`
	ArtistName        string     `json:"artist_name" db:"artist_name"`
	ThumbnailURL      string     `json:"thumbnail_url" db:"thumbnail_url"`
	Views7d           int64      `json:"views_7d" db:"views_7d"`
	ViewsTotal        int64      `json:"views_total" db:"views_total"`
	Quality           float64    `json:"quality" db:"quality"`
	Validated         bool       `json:"validated" db:"validated"`
	RefreshedAt       time.Time  `json:"refreshed_at" db:"refreshed_at"`
	LastInteractionAt *time.Time `json:"last_interaction_at,omitempty" db:"last_interaction_at"`
}

// RankedItem is one scored entry of a snapshot.
type RankedItem struct {
	TrackID      int64   `json:"track_id"`
	VideoID      string  `json:"video_id"`
	Title        string  `json:"title"`
	ArtistName   string  `json:"artist_name"`
	ThumbnailURL string  `json:"thumbnail_url"`
	Score        float64 `json:"score"`
	Rank         int     `json:"rank"`
}

// Snapshot is an immutable, time-bounded ranked result set for one home
// section. A superseding run closes ValidUntil on the previous row.
type Snapshot struct {
	ID          int64        `json:"id" db:"id"`
	SectionKey  string       `json:"section_key" db:"section_key"`
	GeneratedAt time.Time    `json:"generated_at" db:"generated_at"`
	Items       RankedItems  `json:"items" db:"items"`
	RefreshNote string       `json:"refresh_note" db:"refresh_note"`
	ValidUntil  *time.Time   `json:"valid_until,omitempty" db:"valid_until"`
}

// Section is the descriptor row for one home section.
type Section struct {
	Key       string    `json:"key" db:"key"`
	Title     string    `json:"title" db:"title"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// RunStatus tracks the lifecycle of one snapshot generation run.
type RunStatus string

const (
	RunStatusRunning RunStatus = "running"
	RunStatusSuccess RunStatus = "success"
	RunStatusError   RunStatus = "error"
)

// SectionRun is the audit row for one snapshot generation.
type SectionRun struct {
	ID         string     `json:"id" db:"id"`
	SectionKey string     `json:"section_key" db:"section_key"`
	Status     RunStatus  `json:"status" db:"status"`
	Note       string     `json:"note" db:"note"`
	Error      string     `json:"error" db:"error"`
	StartedAt  time.Time  `json:"started_at" db:"started_at"`
	FinishedAt *time.Time `json:"finished_at,omitempty" db:"finished_at"`
}

package domain

// ParsedTrack is a normalized track extracted from one upstream browse
// document. Fields other than VideoID are best-effort and may be empty.
type ParsedTrack struct {
	VideoID         string `json:"video_id"`
	Title           string `json:"title"`
	ArtistName      string `json:"artist_name"`
	DurationSeconds *int   `json:"duration_seconds,omitempty"`
	ThumbnailURL    string `json:"thumbnail_url"`
	ChannelID       string `json:"channel_id"`
}

// ParsedPlaylist is a normalized playlist header plus its extracted rows.
type ParsedPlaylist struct {
	BrowseID     string        `json:"browse_id"`
	Title        string        `json:"title"`
	ThumbnailURL string        `json:"thumbnail_url"`
	ChannelID    string        `json:"channel_id"`
	ChannelTitle string        `json:"channel_title"`
	Year         *int          `json:"year,omitempty"`
	ItemCount    int           `json:"item_count"`
	Tracks       []ParsedTrack `json:"tracks"`
}

// ParsedAlbum is a normalized album header plus its extracted rows.
type ParsedAlbum struct {
	BrowseID     string        `json:"browse_id"`
	Title        string        `json:"title"`
	ArtistName   string        `json:"artist_name"`
	ThumbnailURL string        `json:"thumbnail_url"`
	Year         *int          `json:"year,omitempty"`
	TrackCount   int           `json:"track_count"`
	Tracks       []ParsedTrack `json:"tracks"`
}

// ArtistIngestResult summarizes one completed artist ingestion.
type ArtistIngestResult struct {
	ArtistID          int64 `json:"artist_id"`
	PlaylistsIngested int   `json:"playlists_ingested"`
	TracksIngested    int   `json:"tracks_ingested"`
}

// PlaylistIngestResult summarizes one completed playlist or album ingestion.
type PlaylistIngestResult struct {
	TrackCount int `json:"track_count"`
	LinkCount  int `json:"link_count"`
}

// RefreshResult is returned by an on-demand snapshot refresh.
type RefreshResult struct {
	Snapshot  *Snapshot `json:"snapshot"`
	Persisted bool      `json:"persisted"`
	RunID     string    `json:"run_id"`
}

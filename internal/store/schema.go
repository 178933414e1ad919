package store

const Schema = `
CREATE TABLE IF NOT EXISTS artists (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	artist_key TEXT UNIQUE NOT NULL,
	name TEXT NOT NULL,
	channel_id TEXT,
	thumbnail_url TEXT NOT NULL DEFAULT '',
	banner_url TEXT NOT NULL DEFAULT '',
	created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
	updated_at DATETIME DEFAULT CURRENT_TIMESTAMP,
	ingested_at DATETIME
);

CREATE UNIQUE INDEX IF NOT EXISTS idx_artists_channel_id ON artists(channel_id)
WHERE channel_id IS NOT NULL;

CREATE TABLE IF NOT EXISTS tracks (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	video_id TEXT UNIQUE NOT NULL,
	title TEXT NOT NULL,
	artist_name TEXT NOT NULL DEFAULT '',
	duration_seconds INTEGER,
	thumbnail_url TEXT NOT NULL DEFAULT '',
	channel_id TEXT,
	created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
	updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_tracks_channel_id ON tracks(channel_id);

CREATE TABLE IF NOT EXISTS playlists (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	browse_id TEXT UNIQUE NOT NULL,
	kind TEXT NOT NULL,
	title TEXT NOT NULL,
	thumbnail_url TEXT NOT NULL DEFAULT '',
	channel_id TEXT,
	channel_title TEXT NOT NULL DEFAULT '',
	year INTEGER,
	item_count INTEGER NOT NULL DEFAULT 0,
	created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
	updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_playlists_channel_id ON playlists(channel_id);

CREATE TABLE IF NOT EXISTS playlist_tracks (
	playlist_id INTEGER NOT NULL,
	track_id INTEGER NOT NULL,
	position INTEGER NOT NULL,
	PRIMARY KEY (playlist_id, track_id),
	FOREIGN KEY (playlist_id) REFERENCES playlists(id) ON DELETE CASCADE,
	FOREIGN KEY (track_id) REFERENCES tracks(id) ON DELETE CASCADE
);

CREATE INDEX IF NOT EXISTS idx_playlist_tracks_track ON playlist_tracks(track_id);

CREATE TABLE IF NOT EXISTS track_stats (
	track_id INTEGER PRIMARY KEY,
	views_7d INTEGER NOT NULL DEFAULT 0,
	views_total INTEGER NOT NULL DEFAULT 0,
	quality REAL NOT NULL DEFAULT 0,
	validated BOOLEAN NOT NULL DEFAULT 0,
	refreshed_at DATETIME DEFAULT CURRENT_TIMESTAMP,
	last_interaction_at DATETIME,
	FOREIGN KEY (track_id) REFERENCES tracks(id) ON DELETE CASCADE
);

CREATE TABLE IF NOT EXISTS quota_usage (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	caller_key TEXT NOT NULL,
	endpoint TEXT NOT NULL,
	cost INTEGER NOT NULL,
	status TEXT NOT NULL,
	error TEXT NOT NULL DEFAULT '',
	created_at DATETIME DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_quota_usage_created ON quota_usage(created_at);

CREATE TABLE IF NOT EXISTS etags (
	resource_key TEXT PRIMARY KEY,
	etag TEXT NOT NULL,
	fetched_at DATETIME DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS home_sections (
	key TEXT PRIMARY KEY,
	title TEXT NOT NULL,
	created_at DATETIME DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS home_section_snapshots (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	section_key TEXT NOT NULL,
	generated_at DATETIME NOT NULL,
	items TEXT NOT NULL,
	refresh_note TEXT NOT NULL DEFAULT '',
	valid_until DATETIME,
	FOREIGN KEY (section_key) REFERENCES home_sections(key)
);

CREATE INDEX IF NOT EXISTS idx_snapshots_section_generated
ON home_section_snapshots(section_key, generated_at DESC);

CREATE TABLE IF NOT EXISTS home_section_runs (
	id TEXT PRIMARY KEY,
	section_key TEXT NOT NULL,
	status TEXT NOT NULL,
	note TEXT NOT NULL DEFAULT '',
	error TEXT NOT NULL DEFAULT '',
	started_at DATETIME NOT NULL,
	finished_at DATETIME,
	FOREIGN KEY (section_key) REFERENCES home_sections(key)
);
`

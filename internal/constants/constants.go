// Package constants contains application-wide constants to avoid magic numbers and strings.
package constants

import "time"

// Application defaults
const (
	DefaultPort         = "8080"
	DefaultDBPath       = "melodex.db"
	DefaultInnertubeURL = "https://music.youtube.com/youtubei/v1"
	DefaultDataAPIURL   = "https://www.googleapis.com/youtube/v3"
	DefaultHTTPTimeout  = 30 * time.Second
	DefaultRunTimeout   = 10 * time.Minute
)

// Fetch budgets
const (
	MaxListPages        = 10  // hard ceiling on paginated list calls per resource
	DetailBatchSize     = 50  // ids per batched detail lookup
	RequestsPerSecond   = 5   // outbound pacing
	TrackUpsertChunk    = 100 // rows per upsert statement
	DefaultMaxPlaylists = 25  // per-artist playlist ceiling unless overridden
)

// Quota costs, per upstream pricing of each endpoint
const (
	QuotaCostList   = 1
	QuotaCostSearch = 100
	QuotaCostBrowse = 0 // Innertube calls are unmetered but still logged
)

// Ingestion thresholds triggering the supplementary discovery pass
const (
	DiscoveryMinPlaylists = 5
	DiscoveryMinTracks    = 10
)

// Home sections
const (
	SectionTrending = "trending"
	SectionPopular  = "most-popular"
)

// Snapshot policy
const (
	SnapshotMaxItems = 18
	TrendingValidity = 8 * 24 * time.Hour
	PopularValidity  = 30 * 24 * time.Hour
)

// Cron cadences
const (
	TrendingCron    = "23 */6 * * *"
	PopularCron     = "47 4 * * *"
	IngestSweepCron = "11 2 * * *"
)

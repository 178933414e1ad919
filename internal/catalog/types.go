package catalog

// Status classifies the outcome of one upstream call.
type Status string

const (
	StatusOK          Status = "ok"
	StatusHTTPError   Status = "http_error"
	StatusBadPayload  Status = "bad_payload"
	StatusConsent     Status = "consent"
	StatusNotModified Status = "not_modified"
)

// FetchResult is the inspectable outcome of one fetch. Fetch methods never
// return a Go error to callers; they return a zero payload plus a result
// whose OK() is false, and the caller decides whether to abort.
type FetchResult struct {
	Status Status
	Err    error
}

func (r FetchResult) OK() bool {
	return r.Status == StatusOK || r.Status == StatusNotModified
}

func (r FetchResult) errText() string {
	if r.Err == nil {
		return ""
	}
	return r.Err.Error()
}

func ok() FetchResult {
	return FetchResult{Status: StatusOK}
}

func failed(status Status, err error) FetchResult {
	return FetchResult{Status: status, Err: err}
}

// ChannelInfo is the validated identity of an upstream channel.
type ChannelInfo struct {
	ID                string
	Title             string
	ThumbnailURL      string
	BannerURL         string
	UploadsPlaylistID string
}

// PlaylistRef is one entry of a channel's playlist listing.
type PlaylistRef struct {
	ID           string
	Title        string
	Description  string
	ThumbnailURL string
	ChannelID    string
	ChannelTitle string
	ItemCount    int
}

// PlaylistItemRef is one entry of a playlist items page. Title, channel and
// thumbnail are listing-level fallback values; the batched detail lookup is
// authoritative.
type PlaylistItemRef struct {
	VideoID      string
	Title        string
	ChannelTitle string
	ThumbnailURL string
	Position     int
}

// VideoDetail is the authoritative per-video record from the batch endpoint.
type VideoDetail struct {
	VideoID         string
	Title           string
	ChannelID       string
	ChannelTitle    string
	ThumbnailURL    string
	DurationSeconds *int
	ViewCount       int64
}

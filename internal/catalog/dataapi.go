package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"regexp"
	"strconv"
	"strings"

	"github.com/melodexapp/melodex/internal/constants"
)

const pageSize = 50

// getJSON issues one paced Data API call and decodes the payload. When an
// etagKey is given the stored ETag rides along as If-None-Match; an upstream
// 304 is reported as StatusNotModified at zero additional quota cost. The
// quota log fires in the cleanup path regardless of outcome.
func (f *Fetcher) getJSON(ctx context.Context, endpoint string, cost int,
	params map[string]string, etagKey string, target interface{}) (result FetchResult) {

	defer func() {
		logged := cost
		if result.Status == StatusNotModified {
			logged = 0
		}
		f.logUsage(endpoint, logged, result)
	}()

	if err := f.limiter.Wait(ctx); err != nil {
		return failed(StatusHTTPError, err)
	}

	req := f.data.R().SetContext(ctx).SetQueryParams(params).SetQueryParam("key", f.apiKey)
	if etagKey != "" {
		if etag, _ := f.store.GetETag(etagKey); etag != "" {
			req.SetHeader("If-None-Match", etag)
		}
	}

	resp, err := req.Get(endpoint)
	if err != nil {
		return failed(StatusHTTPError, err)
	}
	if resp.StatusCode() == http.StatusNotModified {
		return FetchResult{Status: StatusNotModified}
	}
	if resp.StatusCode() != http.StatusOK {
		return failed(StatusHTTPError, fmt.Errorf("%s: HTTP %d: %s", endpoint, resp.StatusCode(), truncate(resp.Body())))
	}

	if err := json.Unmarshal(resp.Body(), target); err != nil {
		return failed(StatusBadPayload, fmt.Errorf("%s: %w", endpoint, err))
	}

	if etagKey != "" {
		if etag := resp.Header().Get("ETag"); etag != "" {
			if err := f.store.SetETag(etagKey, etag); err != nil {
				f.log.Warn("failed to store etag", "key", etagKey, "error", err)
			}
		}
	}
	return ok()
}

// ValidateChannel resolves a channel id through one upstream call. A channel
// the upstream does not know yields StatusBadPayload with a nil info.
func (f *Fetcher) ValidateChannel(ctx context.Context, channelID string) (*ChannelInfo, FetchResult) {
	var payload struct {
		Items []struct {
			ID      string `json:"id"`
			Snippet struct {
				Title      string     `json:"title"`
				Thumbnails thumbnails `json:"thumbnails"`
			} `json:"snippet"`
			BrandingSettings struct {
				Image struct {
					BannerExternalURL string `json:"bannerExternalUrl"`
				} `json:"image"`
			} `json:"brandingSettings"`
			ContentDetails struct {
				RelatedPlaylists struct {
					Uploads string `json:"uploads"`
				} `json:"relatedPlaylists"`
			} `json:"contentDetails"`
		} `json:"items"`
	}

	result := f.getJSON(ctx, "channels.list", constants.QuotaCostList, map[string]string{
		"part": "snippet,contentDetails,brandingSettings",
		"id":   channelID,
	}, "", &payload)
	if !result.OK() {
		return nil, result
	}
	if len(payload.Items) == 0 {
		return nil, failed(StatusBadPayload, fmt.Errorf("channels.list: unknown channel %s", channelID))
	}

	item := payload.Items[0]
	return &ChannelInfo{
		ID:                item.ID,
		Title:             item.Snippet.Title,
		ThumbnailURL:      item.Snippet.Thumbnails.best(),
		BannerURL:         item.BrandingSettings.Image.BannerExternalURL,
		UploadsPlaylistID: item.ContentDetails.RelatedPlaylists.Uploads,
	}, ok()
}

// ListChannelPlaylists pages through a channel's playlists up to the page
// ceiling and the caller's max. The first page is fetched conditionally; an
// unchanged listing short-circuits with StatusNotModified and a nil slice.
func (f *Fetcher) ListChannelPlaylists(ctx context.Context, channelID string, max int) ([]PlaylistRef, FetchResult) {
	var refs []PlaylistRef
	pageToken := ""

	for page := 0; page < constants.MaxListPages; page++ {
		var payload struct {
			NextPageToken string `json:"nextPageToken"`
			Items         []struct {
				ID      string `json:"id"`
				Snippet struct {
					Title        string     `json:"title"`
					Description  string     `json:"description"`
					ChannelID    string     `json:"channelId"`
					ChannelTitle string     `json:"channelTitle"`
					Thumbnails   thumbnails `json:"thumbnails"`
				} `json:"snippet"`
				ContentDetails struct {
					ItemCount int `json:"itemCount"`
				} `json:"contentDetails"`
			} `json:"items"`
		}

		params := map[string]string{
			"part":       "snippet,contentDetails",
			"channelId":  channelID,
			"maxResults": strconv.Itoa(pageSize),
		}
		etagKey := ""
		if pageToken != "" {
			params["pageToken"] = pageToken
		} else {
			etagKey = "playlists:" + channelID
		}

		result := f.getJSON(ctx, "playlists.list", constants.QuotaCostList, params, etagKey, &payload)
		if result.Status == StatusNotModified {
			return nil, result
		}
		if !result.OK() {
			return nil, result
		}

		for _, item := range payload.Items {
			refs = append(refs, PlaylistRef{
				ID:           item.ID,
				Title:        item.Snippet.Title,
				Description:  item.Snippet.Description,
				ThumbnailURL: item.Snippet.Thumbnails.best(),
				ChannelID:    item.Snippet.ChannelID,
				ChannelTitle: item.Snippet.ChannelTitle,
				ItemCount:    item.ContentDetails.ItemCount,
			})
			if max > 0 && len(refs) >= max {
				return refs, ok()
			}
		}

		pageToken = payload.NextPageToken
		if pageToken == "" {
			break
		}
	}
	return refs, ok()
}

// ListPlaylistItems pages through one playlist's items preserving upstream
// order.
func (f *Fetcher) ListPlaylistItems(ctx context.Context, playlistID string) ([]PlaylistItemRef, FetchResult) {
	var items []PlaylistItemRef
	pageToken := ""

	for page := 0; page < constants.MaxListPages; page++ {
		var payload struct {
			NextPageToken string `json:"nextPageToken"`
			Items         []struct {
				Snippet struct {
					Title                 string     `json:"title"`
					Position              int        `json:"position"`
					VideoOwnerChannelTitle string    `json:"videoOwnerChannelTitle"`
					Thumbnails            thumbnails `json:"thumbnails"`
				} `json:"snippet"`
				ContentDetails struct {
					VideoID string `json:"videoId"`
				} `json:"contentDetails"`
			} `json:"items"`
		}

		params := map[string]string{
			"part":       "snippet,contentDetails",
			"playlistId": playlistID,
			"maxResults": strconv.Itoa(pageSize),
		}
		if pageToken != "" {
			params["pageToken"] = pageToken
		}

		result := f.getJSON(ctx, "playlistItems.list", constants.QuotaCostList, params, "", &payload)
		if !result.OK() {
			return nil, result
		}

		for _, item := range payload.Items {
			items = append(items, PlaylistItemRef{
				VideoID:      item.ContentDetails.VideoID,
				Title:        item.Snippet.Title,
				ChannelTitle: item.Snippet.VideoOwnerChannelTitle,
				ThumbnailURL: item.Snippet.Thumbnails.best(),
				Position:     item.Snippet.Position,
			})
		}

		pageToken = payload.NextPageToken
		if pageToken == "" {
			break
		}
	}
	return items, ok()
}

// BatchVideoDetails resolves authoritative metadata for up to N ids in
// batches of 50. A failing batch aborts; earlier batches are discarded by
// the caller per its fail-fast policy.
func (f *Fetcher) BatchVideoDetails(ctx context.Context, ids []string) (map[string]VideoDetail, FetchResult) {
	details := make(map[string]VideoDetail, len(ids))

	for start := 0; start < len(ids); start += constants.DetailBatchSize {
		end := start + constants.DetailBatchSize
		if end > len(ids) {
			end = len(ids)
		}

		var payload struct {
			Items []struct {
				ID      string `json:"id"`
				Snippet struct {
					Title        string     `json:"title"`
					ChannelID    string     `json:"channelId"`
					ChannelTitle string     `json:"channelTitle"`
					Thumbnails   thumbnails `json:"thumbnails"`
				} `json:"snippet"`
				ContentDetails struct {
					Duration string `json:"duration"`
				} `json:"contentDetails"`
				Statistics struct {
					ViewCount string `json:"viewCount"`
				} `json:"statistics"`
			} `json:"items"`
		}

		result := f.getJSON(ctx, "videos.list", constants.QuotaCostList, map[string]string{
			"part": "snippet,contentDetails,statistics",
			"id":   joinIDs(ids[start:end]),
		}, "", &payload)
		if !result.OK() {
			return nil, result
		}

		for _, item := range payload.Items {
			views, _ := strconv.ParseInt(item.Statistics.ViewCount, 10, 64)
			details[item.ID] = VideoDetail{
				VideoID:         item.ID,
				Title:           item.Snippet.Title,
				ChannelID:       item.Snippet.ChannelID,
				ChannelTitle:    item.Snippet.ChannelTitle,
				ThumbnailURL:    item.Snippet.Thumbnails.best(),
				DurationSeconds: parseISODuration(item.ContentDetails.Duration),
				ViewCount:       views,
			}
		}
	}
	return details, ok()
}

// SearchPlaylists runs the expensive search endpoint for the supplementary
// discovery pass.
func (f *Fetcher) SearchPlaylists(ctx context.Context, query string, max int) ([]PlaylistRef, FetchResult) {
	var payload struct {
		Items []struct {
			ID struct {
				PlaylistID string `json:"playlistId"`
			} `json:"id"`
			Snippet struct {
				Title        string     `json:"title"`
				Description  string     `json:"description"`
				ChannelID    string     `json:"channelId"`
				ChannelTitle string     `json:"channelTitle"`
				Thumbnails   thumbnails `json:"thumbnails"`
			} `json:"snippet"`
		} `json:"items"`
	}

	if max <= 0 || max > pageSize {
		max = pageSize
	}
	result := f.getJSON(ctx, "search.list", constants.QuotaCostSearch, map[string]string{
		"part":       "snippet",
		"q":          query,
		"type":       "playlist",
		"maxResults": strconv.Itoa(max),
	}, "", &payload)
	if !result.OK() {
		return nil, result
	}

	refs := make([]PlaylistRef, 0, len(payload.Items))
	for _, item := range payload.Items {
		if item.ID.PlaylistID == "" {
			continue
		}
		refs = append(refs, PlaylistRef{
			ID:           item.ID.PlaylistID,
			Title:        item.Snippet.Title,
			Description:  item.Snippet.Description,
			ThumbnailURL: item.Snippet.Thumbnails.best(),
			ChannelID:    item.Snippet.ChannelID,
			ChannelTitle: item.Snippet.ChannelTitle,
		})
	}
	return refs, ok()
}

// thumbnails is the Data API thumbnail set; best() prefers the highest
// resolution variant present.
type thumbnails struct {
	Default  thumb `json:"default"`
	Medium   thumb `json:"medium"`
	High     thumb `json:"high"`
	Standard thumb `json:"standard"`
	Maxres   thumb `json:"maxres"`
}

type thumb struct {
	URL string `json:"url"`
}

func (t thumbnails) best() string {
	for _, candidate := range []string{t.Maxres.URL, t.Standard.URL, t.High.URL, t.Medium.URL, t.Default.URL} {
		if candidate != "" {
			return candidate
		}
	}
	return ""
}

var isoDurationRE = regexp.MustCompile(`^PT(?:(\d+)H)?(?:(\d+)M)?(?:(\d+)S)?$`)

// parseISODuration converts "PT1H2M10S" into seconds.
func parseISODuration(s string) *int {
	m := isoDurationRE.FindStringSubmatch(s)
	if m == nil {
		return nil
	}
	hours, _ := strconv.Atoi(m[1])
	minutes, _ := strconv.Atoi(m[2])
	seconds, _ := strconv.Atoi(m[3])
	total := hours*3600 + minutes*60 + seconds
	return &total
}

func joinIDs(ids []string) string {
	return strings.Join(ids, ",")
}

func truncate(body []byte) string {
	const max = 200
	if len(body) > max {
		body = body[:max]
	}
	return string(body)
}

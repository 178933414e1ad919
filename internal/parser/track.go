package parser

import (
	"encoding/json"
	"regexp"
	"strconv"
	"strings"

	"github.com/melodexapp/melodex/internal/domain"
)

var durationRE = regexp.MustCompile(`^(?:(\d+):)?(\d{1,2}):(\d{2})$`)

// ParseTracks extracts all track rows from one upstream browse document.
// Rows without a resolvable video id are dropped; duplicates are collapsed
// keeping the first-seen position.
func ParseTracks(raw []byte) []domain.ParsedTrack {
	var doc map[string]interface{}
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil
	}
	return extractTracks(doc)
}

func extractTracks(doc map[string]interface{}) []domain.ParsedTrack {
	rows := trackRows(doc)
	tracks := make([]domain.ParsedTrack, 0, len(rows))
	seen := make(map[string]bool, len(rows))

	for _, row := range rows {
		track, ok := parseRow(row)
		if !ok || seen[track.VideoID] {
			continue
		}
		seen[track.VideoID] = true
		tracks = append(tracks, track)
	}
	return tracks
}

func parseRow(row interface{}) (domain.ParsedTrack, bool) {
	if r := obj(row, "musicResponsiveListItemRenderer"); r != nil {
		return parseResponsiveRow(r)
	}
	if r := obj(row, "playlistPanelVideoRenderer"); r != nil {
		return parsePanelRow(r)
	}
	if r := obj(row, "musicTwoRowItemRenderer"); r != nil {
		return parseTwoRowItem(r)
	}
	return domain.ParsedTrack{}, false
}

func parseResponsiveRow(r map[string]interface{}) (domain.ParsedTrack, bool) {
	videoID := firstString(r,
		path{"playlistItemData", "videoId"},
		path{"overlay", "musicItemThumbnailOverlayRenderer", "content",
			"musicPlayButtonRenderer", "playNavigationEndpoint", "watchEndpoint", "videoId"},
		path{"flexColumns", 0, "musicResponsiveListItemFlexColumnRenderer",
			"text", "runs", 0, "navigationEndpoint", "watchEndpoint", "videoId"},
	)
	if videoID == "" {
		return domain.ParsedTrack{}, false
	}

	track := domain.ParsedTrack{
		VideoID: videoID,
		Title: firstRunText(r, "flexColumns", 0,
			"musicResponsiveListItemFlexColumnRenderer", "text"),
		ArtistName: firstRunText(r, "flexColumns", 1,
			"musicResponsiveListItemFlexColumnRenderer", "text"),
		ChannelID: str(r, "flexColumns", 1, "musicResponsiveListItemFlexColumnRenderer",
			"text", "runs", 0, "navigationEndpoint", "browseEndpoint", "browseId"),
		ThumbnailURL: lastThumbnailURL(r, "thumbnail", "musicThumbnailRenderer",
			"thumbnail", "thumbnails"),
	}
	track.DurationSeconds = parseDuration(firstString(r,
		path{"fixedColumns", 0, "musicResponsiveListItemFixedColumnRenderer", "text"},
	))
	return track, true
}

func parsePanelRow(r map[string]interface{}) (domain.ParsedTrack, bool) {
	videoID := str(r, "videoId")
	if videoID == "" {
		videoID = str(r, "navigationEndpoint", "watchEndpoint", "videoId")
	}
	if videoID == "" {
		return domain.ParsedTrack{}, false
	}

	track := domain.ParsedTrack{
		VideoID:      videoID,
		Title:        runsText(r, "title"),
		ArtistName:   firstRunText(r, "shortBylineText"),
		ChannelID:    str(r, "shortBylineText", "runs", 0, "navigationEndpoint", "browseEndpoint", "browseId"),
		ThumbnailURL: lastThumbnailURL(r, "thumbnail", "thumbnails"),
	}
	track.DurationSeconds = parseDuration(runsText(r, "lengthText"))
	return track, true
}

func parseTwoRowItem(r map[string]interface{}) (domain.ParsedTrack, bool) {
	videoID := str(r, "navigationEndpoint", "watchEndpoint", "videoId")
	if videoID == "" {
		return domain.ParsedTrack{}, false
	}
	return domain.ParsedTrack{
		VideoID:    videoID,
		Title:      runsText(r, "title"),
		ArtistName: firstRunText(r, "subtitle"),
		ThumbnailURL: lastThumbnailURL(r, "thumbnailRenderer", "musicThumbnailRenderer",
			"thumbnail", "thumbnails"),
	}, true
}

// parseDuration converts "3:35" or "1:02:10" into seconds.
func parseDuration(text string) *int {
	m := durationRE.FindStringSubmatch(strings.TrimSpace(text))
	if m == nil {
		return nil
	}
	hours := 0
	if m[1] != "" {
		hours, _ = strconv.Atoi(m[1])
	}
	minutes, _ := strconv.Atoi(m[2])
	seconds, _ := strconv.Atoi(m[3])
	total := hours*3600 + minutes*60 + seconds
	return &total
}

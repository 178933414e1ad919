package parser

import (
	"encoding/json"
	"regexp"
	"strconv"

	"github.com/melodexapp/melodex/internal/domain"
)

var yearRE = regexp.MustCompile(`\b(19\d{2}|20\d{2})\b`)

// ParsePlaylist normalizes one playlist browse document. A document with no
// recognizable rows still yields a valid (if empty) result.
func ParsePlaylist(raw []byte, browseID string) domain.ParsedPlaylist {
	pl := domain.ParsedPlaylist{BrowseID: browseID}

	var doc map[string]interface{}
	if err := json.Unmarshal(raw, &doc); err != nil {
		return pl
	}

	h := header{doc: doc}
	pl.Title = h.title()
	pl.ChannelTitle = h.ownerName()
	pl.ChannelID = h.ownerChannelID()
	pl.ThumbnailURL = h.thumbnail()
	pl.Year = h.year()
	pl.Tracks = extractTracks(doc)
	pl.ItemCount = len(pl.Tracks)
	return pl
}

// header collects the fallback locations shared by playlist and album
// documents. Every accessor is first-match-wins over the known layout
// variants.
type header struct {
	doc map[string]interface{}
}

func (h header) title() string {
	return firstString(h.doc,
		path{"microformat", "microformatDataRenderer", "title"},
		path{"header", "musicDetailHeaderRenderer", "title"},
		path{"header", "musicResponsiveHeaderRenderer", "title"},
		path{"contents", "twoColumnBrowseResultsRenderer", "tabs", 0, "tabRenderer",
			"content", "sectionListRenderer", "contents", 0,
			"musicResponsiveHeaderRenderer", "title"},
	)
}

func (h header) subtitleNodes() []interface{} {
	var nodes []interface{}
	for _, p := range []path{
		{"header", "musicDetailHeaderRenderer", "subtitle"},
		{"header", "musicDetailHeaderRenderer", "secondSubtitle"},
		{"header", "musicResponsiveHeaderRenderer", "subtitle"},
		{"header", "musicResponsiveHeaderRenderer", "secondSubtitle"},
		{"header", "musicResponsiveHeaderRenderer", "straplineTextOne"},
		{"contents", "twoColumnBrowseResultsRenderer", "tabs", 0, "tabRenderer",
			"content", "sectionListRenderer", "contents", 0,
			"musicResponsiveHeaderRenderer", "subtitle"},
		{"contents", "twoColumnBrowseResultsRenderer", "tabs", 0, "tabRenderer",
			"content", "sectionListRenderer", "contents", 0,
			"musicResponsiveHeaderRenderer", "secondSubtitle"},
	} {
		if n := dig(h.doc, []interface{}(p)...); n != nil {
			nodes = append(nodes, n)
		}
	}
	return nodes
}

// ownerName walks subtitle variants for the owner display name. Linked runs
// win; otherwise the first plain run that is not a separator, a kind label,
// or a year. An entity carrying only a secondSubtitle still yields a name.
func (h header) ownerName() string {
	nodes := h.subtitleNodes()
	for _, node := range nodes {
		for _, run := range list(node, "runs") {
			if str(run, "navigationEndpoint", "browseEndpoint", "browseId") == "" {
				continue
			}
			if text := str(run, "text"); text != "" {
				return text
			}
		}
	}
	for _, node := range nodes {
		for _, run := range list(node, "runs") {
			text := str(run, "text")
			if text == "" || isSeparator(text) || isKindLabel(text) || yearRE.MatchString(text) {
				continue
			}
			return text
		}
	}
	return ""
}

func (h header) ownerChannelID() string {
	for _, node := range h.subtitleNodes() {
		for _, run := range list(node, "runs") {
			if id := str(run, "navigationEndpoint", "browseEndpoint", "browseId"); id != "" {
				return id
			}
		}
	}
	return ""
}

// year scans whichever subtitle text is available for a 4-digit 19xx/20xx
// year.
func (h header) year() *int {
	for _, node := range h.subtitleNodes() {
		if m := yearRE.FindString(runsText(node)); m != "" {
			y, _ := strconv.Atoi(m)
			return &y
		}
	}
	return nil
}

func (h header) thumbnail() string {
	for _, p := range []path{
		{"header", "musicDetailHeaderRenderer", "thumbnail", "croppedSquareThumbnailRenderer",
			"thumbnail", "thumbnails"},
		{"header", "musicResponsiveHeaderRenderer", "thumbnail", "musicThumbnailRenderer",
			"thumbnail", "thumbnails"},
		{"background", "musicThumbnailRenderer", "thumbnail", "thumbnails"},
	} {
		if url := lastThumbnailURL(h.doc, []interface{}(p)...); url != "" {
			return url
		}
	}
	return ""
}

func isSeparator(text string) bool {
	switch text {
	case " • ", "•", " · ", ", ", " & ":
		return true
	}
	return false
}

func isKindLabel(text string) bool {
	switch text {
	case "Playlist", "Album", "Single", "EP", "Song", "Video":
		return true
	}
	return false
}

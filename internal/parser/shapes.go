package parser

// Known upstream row renderer keys. A list whose elements carry one of these
// is a plausible track container.
var rowRendererKeys = []string{
	"musicResponsiveListItemRenderer",
	"playlistPanelVideoRenderer",
	"musicTwoRowItemRenderer",
}

// trackRows walks the known container shapes in order and returns the first
// populated row list. When none match it falls back to a generic recursive
// scan for the largest plausible container anywhere in the document.
func trackRows(doc map[string]interface{}) []interface{} {
	shapes := [][]interface{}{
		// Two-column browse results (playlist/album detail pages).
		{"contents", "twoColumnBrowseResultsRenderer", "secondaryContents",
			"sectionListRenderer", "contents", 0, "musicPlaylistShelfRenderer", "contents"},
		{"contents", "twoColumnBrowseResultsRenderer", "secondaryContents",
			"sectionListRenderer", "contents", 0, "musicShelfRenderer", "contents"},
		// Single-column browse tabs.
		{"contents", "singleColumnBrowseResultsRenderer", "tabs", 0, "tabRenderer",
			"content", "sectionListRenderer", "contents", 0, "musicPlaylistShelfRenderer", "contents"},
		{"contents", "singleColumnBrowseResultsRenderer", "tabs", 0, "tabRenderer",
			"content", "sectionListRenderer", "contents", 0, "musicShelfRenderer", "contents"},
		// Watch-next playlist panel.
		{"contents", "singleColumnMusicWatchNextResultsRenderer", "tabbedRenderer",
			"watchNextTabbedResultsRenderer", "tabs", 0, "tabRenderer", "content",
			"musicQueueRenderer", "content", "playlistPanelRenderer", "contents"},
	}

	for _, shape := range shapes {
		if rows := list(doc, shape...); len(rows) > 0 && isRowList(rows) {
			return rows
		}
	}
	return largestRowList(doc)
}

func isRowList(rows []interface{}) bool {
	for _, row := range rows {
		obj, ok := row.(map[string]interface{})
		if !ok {
			continue
		}
		for _, key := range rowRendererKeys {
			if _, ok := obj[key]; ok {
				return true
			}
		}
	}
	return false
}

// largestRowList is the last-resort extraction step: scan the whole document
// for lists of row renderers and keep the biggest one. Real content blocks
// outrank decorative ones by sheer size.
func largestRowList(n interface{}) []interface{} {
	var best []interface{}
	walkForRows(n, &best)
	return best
}

func walkForRows(n interface{}, best *[]interface{}) {
	switch v := n.(type) {
	case map[string]interface{}:
		for _, child := range v {
			walkForRows(child, best)
		}
	case []interface{}:
		if isRowList(v) && len(v) > len(*best) {
			*best = v
		}
		for _, child := range v {
			walkForRows(child, best)
		}
	}
}

// Package parser turns loosely-structured upstream browse documents into
// normalized records. Extraction never fails: unknown shapes degrade to
// empty fields and zero rows, and callers decide what to do with a thin
// result.
package parser

import (
	"strings"
)

// dig walks a decoded JSON value along a path of string keys (for objects)
// and int indexes (for arrays). A negative index counts from the end.
// Returns nil whenever any step does not match.
func dig(n interface{}, path ...interface{}) interface{} {
	cur := n
	for _, step := range path {
		switch key := step.(type) {
		case string:
			obj, ok := cur.(map[string]interface{})
			if !ok {
				return nil
			}
			cur = obj[key]
		case int:
			arr, ok := cur.([]interface{})
			if !ok {
				return nil
			}
			idx := key
			if idx < 0 {
				idx += len(arr)
			}
			if idx < 0 || idx >= len(arr) {
				return nil
			}
			cur = arr[idx]
		default:
			return nil
		}
		if cur == nil {
			return nil
		}
	}
	return cur
}

// str reads a string leaf at the path, or "".
func str(n interface{}, path ...interface{}) string {
	s, _ := dig(n, path...).(string)
	return s
}

// list reads an array leaf at the path, or nil.
func list(n interface{}, path ...interface{}) []interface{} {
	l, _ := dig(n, path...).([]interface{})
	return l
}

// obj reads an object leaf at the path, or nil.
func obj(n interface{}, path ...interface{}) map[string]interface{} {
	o, _ := dig(n, path...).(map[string]interface{})
	return o
}

// runsText joins the text of a {"runs": [{"text": ...}, ...]} node found at
// the path. Returns "" when the node is absent or empty.
func runsText(n interface{}, path ...interface{}) string {
	node := dig(n, path...)
	if node == nil {
		return ""
	}
	runs := list(node, "runs")
	if runs == nil {
		// Caller may already point at the runs array.
		runs, _ = node.([]interface{})
	}
	var parts []string
	for _, r := range runs {
		if t := str(r, "text"); t != "" {
			parts = append(parts, t)
		}
	}
	return strings.Join(parts, "")
}

// firstRunText returns the text of the first run only.
func firstRunText(n interface{}, path ...interface{}) string {
	node := dig(n, path...)
	if node == nil {
		return ""
	}
	return str(node, "runs", 0, "text")
}

// path is one candidate extraction location.
type path []interface{}

// firstString tries each path in order and returns the first non-empty
// string leaf, reading either a plain string or a runs node.
func firstString(n interface{}, paths ...path) string {
	for _, p := range paths {
		node := dig(n, []interface{}(p)...)
		if node == nil {
			continue
		}
		if s, ok := node.(string); ok {
			if strings.TrimSpace(s) != "" {
				return s
			}
			continue
		}
		if s := runsText(node); strings.TrimSpace(s) != "" {
			return s
		}
	}
	return ""
}

// lastThumbnailURL picks the last (highest resolution) entry of a thumbnail
// list found at the path.
func lastThumbnailURL(n interface{}, path ...interface{}) string {
	thumbs := list(n, path...)
	if len(thumbs) == 0 {
		return ""
	}
	return str(thumbs[len(thumbs)-1], "url")
}

package backup

import (
	"regexp"
	"strings"
)

// mediaRefPattern matches "/media/<id>" anywhere in text, including the
// /api/media/<id> URLs the media endpoint hands out.
var mediaRefPattern = regexp.MustCompile(`/media/([A-Za-z0-9][A-Za-z0-9_-]*)`)

const mediaRefPrefix = "/media/"

// ScanMediaRefs returns the distinct media ids referenced in s, in order of
// first appearance.
func ScanMediaRefs(s string) []string {
	if !strings.Contains(s, mediaRefPrefix) {
		return nil
	}
	var ids []string
	seen := make(map[string]bool)
	for _, m := range mediaRefPattern.FindAllStringSubmatch(s, -1) {
		if id := m[1]; !seen[id] {
			seen[id] = true
			ids = append(ids, id)
		}
	}
	return ids
}

// RewriteMediaRefs replaces every referenced id found in mapping. Ids
// without a mapping are left as they are.
func RewriteMediaRefs(s string, mapping map[string]string) string {
	if len(mapping) == 0 || !strings.Contains(s, mediaRefPrefix) {
		return s
	}
	return mediaRefPattern.ReplaceAllStringFunc(s, func(match string) string {
		if newID, ok := mapping[match[len(mediaRefPrefix):]]; ok {
			return mediaRefPrefix + newID
		}
		return match
	})
}

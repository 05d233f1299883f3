package models

import (
	"strings"

	"golang.org/x/text/unicode/norm"
)

// Tag is a canonical key / display name pair. The key is derived from the
// display name, so "Big Tech" and "big tech" resolve to the same tag.
type Tag struct {
	Key  string `json:"tagKey"`
	Name string `json:"tagName"`
}

// NormalizeTagKey derives the canonical key for a tag display name: trim,
// lowercase, unicode NFKD decomposition, then strip everything outside
// [a-z0-9]. Blank input yields an empty key, which callers must reject.
func NormalizeTagKey(raw string) string {
	s := strings.ToLower(strings.TrimSpace(raw))
	s = norm.NFKD.String(s)

	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// TagDisplayNames extracts the distinct, non-blank display names from a tag
// list, falling back to the key when the name is blank.
func TagDisplayNames(tags []Tag) []string {
	if len(tags) == 0 {
		return nil
	}

	seen := make(map[string]struct{}, len(tags))
	names := make([]string, 0, len(tags))
	for _, tag := range tags {
		candidate := strings.TrimSpace(tag.Name)
		if candidate == "" {
			candidate = strings.TrimSpace(tag.Key)
		}
		if candidate == "" {
			continue
		}
		if _, ok := seen[candidate]; ok {
			continue
		}
		seen[candidate] = struct{}{}
		names = append(names, candidate)
	}
	return names
}

package pipeline

import "strings"

// mergeTags combines analysis tags with the tags already on the item.
// Russian tags come first, then Kazakh, then the existing ones; the first
// occurrence of each tag wins and blanks are dropped.
func mergeTags(tagsRu, tagsKz, existing []string) []string {
	var merged []string
	seen := make(map[string]struct{})
	for _, group := range [][]string{tagsRu, tagsKz, existing} {
		for _, tag := range group {
			trimmed := strings.TrimSpace(tag)
			if trimmed == "" {
				continue
			}
			if _, ok := seen[trimmed]; ok {
				continue
			}
			seen[trimmed] = struct{}{}
			merged = append(merged, trimmed)
		}
	}
	return merged
}

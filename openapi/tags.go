package openapi

import "sort"

// collectTags returns one tag object per distinct tag name used by the
// operations of the given path items, sorted by name.
func collectTags(paths map[string]any) []any {
	seen := make(map[string]bool)
	var names []string

	for _, item := range paths {
		pathItem, ok := item.(map[string]any)
		if !ok {
			continue
		}
		for _, op := range pathItem {
			operation, ok := op.(map[string]any)
			if !ok {
				continue
			}
			for _, name := range tagNames(operation["tags"]) {
				if !seen[name] {
					seen[name] = true
					names = append(names, name)
				}
			}
		}
	}

	sort.Strings(names)

	tags := make([]any, 0, len(names))
	for _, name := range names {
		tags = append(tags, map[string]any{"name": name})
	}
	return tags
}

// tagNames accepts []string and []any tag lists; other values yield nothing.
func tagNames(v any) []string {
	switch tags := v.(type) {
	case []string:
		return tags
	case []any:
		names := make([]string, 0, len(tags))
		for _, t := range tags {
			if s, ok := t.(string); ok {
				names = append(names, s)
			}
		}
		return names
	}
	return nil
}

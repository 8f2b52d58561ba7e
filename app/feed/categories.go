package feed

import (
	"cmp"
	"sort"
	"strings"

	"github.com/mmcdole/gofeed"
	ext "github.com/mmcdole/gofeed/extensions"
)

// Nested iTunes category structures are flattened recursively; the depth
// bound guards against pathological inputs.
const maxCategoryDepth = 8

// extractGenres collects genre strings from the feed, trying sources in
// priority order and stopping at the first one that yields anything:
// iTunes categories (all nesting levels), generic category tags, then
// category/subject values from other feed extensions. The result is
// deduplicated case-insensitively, keeping first-seen order and casing.
func extractGenres(parsed *gofeed.Feed) []string {
	var genres []string

	if parsed.ITunesExt != nil {
		for _, cat := range parsed.ITunesExt.Categories {
			genres = append(genres, flattenCategory(cat, 0)...)
		}
	}

	if len(genres) == 0 {
		genres = append(genres, parsed.Categories...)
	}

	if len(genres) == 0 {
		genres = extensionCategories(parsed.Extensions)
	}

	return dedupeGenres(genres)
}

func flattenCategory(cat *ext.ITunesCategory, depth int) []string {
	if cat == nil || depth >= maxCategoryDepth {
		return nil
	}

	var names []string
	if cat.Text != "" {
		names = append(names, cat.Text)
	}
	names = append(names, flattenCategory(cat.Subcategory, depth+1)...)
	return names
}

// extensionCategories is the last-resort genre source: category or subject
// elements from any other feed extension namespace (media, dc, ...).
func extensionCategories(extensions ext.Extensions) []string {
	namespaces := make([]string, 0, len(extensions))
	for ns := range extensions {
		namespaces = append(namespaces, ns)
	}
	sort.Strings(namespaces)

	var genres []string
	for _, ns := range namespaces {
		for _, name := range []string{"category", "subject"} {
			for _, e := range extensions[ns][name] {
				value := cmp.Or(e.Attrs["term"], e.Attrs["label"], e.Attrs["text"], strings.TrimSpace(e.Value))
				if value != "" {
					genres = append(genres, value)
				}
			}
		}
	}
	return genres
}

func dedupeGenres(genres []string) []string {
	seen := make(map[string]bool, len(genres))
	var unique []string
	for _, g := range genres {
		if g == "" {
			continue
		}
		key := strings.ToLower(g)
		if seen[key] {
			continue
		}
		seen[key] = true
		unique = append(unique, g)
	}
	return unique
}

package drops

import (
	"maps"
	"regexp"
	"slices"
	"strings"
)

var (
	sectionHeaderPattern = regexp.MustCompile(`(?m)^===\s*(.+?)\s*===\s*$`)
	plinkPattern         = regexp.MustCompile(`(?i)\{\{\s*plink\s*\|([^}|]+)`)
)

// CollectionLog maps a collection log section title to the item names listed
// under it, in page order.
type CollectionLog map[string][]string

// ParseCollectionLog splits collection log markup into "=== Title ===" sections
// and collects the {{plink|Item}} names of each. Sections without items are
// left out.
func ParseCollectionLog(text string) CollectionLog {
	sections := make(CollectionLog)

	headers := sectionHeaderPattern.FindAllStringSubmatchIndex(text, -1)
	for i, h := range headers {
		title := strings.TrimSpace(text[h[2]:h[3]])
		end := len(text)
		if i+1 < len(headers) {
			end = headers[i+1][0]
		}

		seen := make(map[string]bool)
		var items []string
		for _, m := range plinkPattern.FindAllStringSubmatch(text[h[0]:end], -1) {
			item := strings.TrimSpace(m[1])
			if item == "" || seen[item] {
				continue
			}
			seen[item] = true
			items = append(items, item)
		}

		if len(items) > 0 {
			sections[title] = append(sections[title], items...)
		}
	}

	return sections
}

// Items returns the item names for a source. Explicit section titles win when
// any of them exist; otherwise the source name is tried as is, with a "The "
// prefix added or removed, and finally case-insensitively, trying titles in
// sorted order. ok is false when no section matches.
func (c CollectionLog) Items(source string, sections []string) ([]string, bool) {
	var merged []string
	for _, s := range sections {
		merged = append(merged, c[s]...)
	}
	if len(merged) > 0 {
		return merged, true
	}

	candidates := []string{source, "The " + source}
	if trimmed, ok := strings.CutPrefix(source, "The "); ok {
		candidates = append(candidates, trimmed)
	}
	for _, name := range candidates {
		if items, ok := c[name]; ok {
			return items, true
		}
	}

	for _, title := range slices.Sorted(maps.Keys(c)) {
		if strings.EqualFold(title, source) {
			return c[title], true
		}
	}

	return nil, false
}

// FilterByName keeps the records whose name is in names, case-insensitively.
func FilterByName(records []Record, names []string) []Record {
	allowed := make(map[string]bool, len(names))
	for _, n := range names {
		allowed[strings.ToLower(strings.TrimSpace(n))] = true
	}

	filtered := make([]Record, 0, len(records))
	for _, r := range records {
		if allowed[strings.ToLower(r.Name)] {
			filtered = append(filtered, r)
		}
	}
	return filtered
}

// Dedupe drops records whose name repeats an earlier one, case-insensitively.
func Dedupe(records []Record) []Record {
	seen := make(map[string]bool, len(records))
	unique := make([]Record, 0, len(records))
	for _, r := range records {
		key := strings.ToLower(r.Name)
		if seen[key] {
			continue
		}
		seen[key] = true
		unique = append(unique, r)
	}
	return unique
}

// WithItemIDs returns a copy of records where every record lacking a positive
// item ID takes the ID mapped to its lower-cased name, if any.
func WithItemIDs(records []Record, ids map[string]int) []Record {
	resolved := make([]Record, len(records))
	for i, r := range records {
		if r.ItemID <= 0 {
			if id, ok := ids[strings.ToLower(strings.TrimSpace(r.Name))]; ok {
				r.ItemID = id
			}
		}
		resolved[i] = r
	}
	return resolved
}

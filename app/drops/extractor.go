package drops

import (
	"iter"
	"regexp"
	"slices"
	"strconv"
	"strings"
)

// DefaultMarkers are the drop-line template names recognised by default.
var DefaultMarkers = []string{"DropsLine", "DropsLineReward", "DropsLineSkill"}

// Extractor finds drop-line invocations in wiki markup and turns them into
// records.
type Extractor struct {
	start  *regexp.Regexp
	rarity *Normalizer
}

// NewExtractor builds an extractor for the given template names (matched
// case-insensitively). Empty markers fall back to DefaultMarkers and a nil
// normalizer to one with DefaultKeywords.
func NewExtractor(markers []string, rarity *Normalizer) *Extractor {
	if len(markers) == 0 {
		markers = DefaultMarkers
	}
	if rarity == nil {
		rarity = NewNormalizer(nil)
	}

	// Longest first, so a marker that prefixes another cannot shadow it.
	names := make([]string, 0, len(markers))
	for _, m := range markers {
		if m = strings.TrimSpace(m); m != "" {
			names = append(names, regexp.QuoteMeta(m))
		}
	}
	slices.SortStableFunc(names, func(a, b string) int { return len(b) - len(a) })

	return &Extractor{
		start:  regexp.MustCompile(`(?i)\{\{\s*(?:` + strings.Join(names, "|") + `)\s*\|`),
		rarity: rarity,
	}
}

// Run returns the drop records found in text, in invocation order.
// Invocations without a name, with an unusable rarity, or without a closing
// delimiter are skipped.
func (e *Extractor) Run(text string) []Record {
	records := []Record{}

	for pos := 0; pos < len(text); {
		loc := e.start.FindStringIndex(text[pos:])
		if loc == nil {
			break
		}

		body := text[pos+loc[1]:]
		end := walkTemplate(body, true, nil)
		if end < 0 {
			pos += loc[1]
			continue
		}
		pos += loc[1] + end + len(closeDelim)

		if record, ok := e.record(ParseParams(body[:end])); ok {
			records = append(records, record)
		}
	}

	return records
}

func (e *Extractor) record(params Params) (Record, bool) {
	name := strings.TrimSpace(params["name"])
	if name == "" {
		return Record{}, false
	}

	rarity := params["rarity"]
	rate := e.rarity.Parse(rarity)
	if !ValidRate(rate) {
		return Record{}, false
	}

	itemID := Unparseable
	if raw, ok := params["id"]; ok {
		if id, err := strconv.Atoi(strings.TrimSpace(raw)); err == nil {
			itemID = id
		}
	}

	return Record{
		Name:        name,
		Rate:        rate,
		RateDisplay: e.rarity.Display(rarity, rate),
		ItemID:      itemID,
	}, true
}

// Resolve runs the extractor on primary and then on each alternative in
// order, returning the first non-empty result. It returns an empty slice when
// no text yields records.
func (e *Extractor) Resolve(primary string, alternatives []string) []Record {
	return e.ResolveSeq(func(yield func(string) bool) {
		if !yield(primary) {
			return
		}
		for _, alt := range alternatives {
			if !yield(alt) {
				return
			}
		}
	})
}

// ResolveSeq is Resolve over texts produced on demand. Iteration stops at the
// first text that yields records, so a lazily fetching sequence performs no
// work past that point.
func (e *Extractor) ResolveSeq(texts iter.Seq[string]) []Record {
	for text := range texts {
		if text == "" {
			continue
		}
		if records := e.Run(text); len(records) > 0 {
			return records
		}
	}
	return []Record{}
}

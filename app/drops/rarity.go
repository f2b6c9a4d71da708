package drops

import (
	"math"
	"regexp"
	"strconv"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

// Keyword maps a qualitative rarity word to its canonical probability.
type Keyword struct {
	Text string
	Rate float64
}

// DefaultKeywords is ordered most-specific-first: "very rare" must be tried
// before "rare" and "uncommon" before "common", since matching is by
// substring.
var DefaultKeywords = []Keyword{
	{Text: "always", Rate: 1.0},
	{Text: "very rare", Rate: 1.0 / 512},
	{Text: "uncommon", Rate: 1.0 / 64},
	{Text: "common", Rate: 1.0 / 16},
	{Text: "rare", Rate: 1.0 / 128},
}

var (
	commentPattern = regexp.MustCompile(`(?s)<!--.*?-->`)
	// Digits may be grouped with commas ("1/5,000").
	fractionPattern = regexp.MustCompile(`(\d{1,3}(?:,\d{3})+(?:\.\d+)?|\d+(?:\.\d+)?)\s*/\s*(\d{1,3}(?:,\d{3})+(?:\.\d+)?|\d+(?:\.\d+)?)`)
)

// Normalizer turns free-text rarity expressions into probabilities and
// display strings.
type Normalizer struct {
	keywords []Keyword
	printer  *message.Printer
}

// NewNormalizer copies keywords; a nil or empty table falls back to
// DefaultKeywords.
func NewNormalizer(keywords []Keyword) *Normalizer {
	if len(keywords) == 0 {
		keywords = DefaultKeywords
	}

	table := make([]Keyword, len(keywords))
	for i, kw := range keywords {
		table[i] = Keyword{Text: strings.ToLower(strings.TrimSpace(kw.Text)), Rate: kw.Rate}
	}

	return &Normalizer{
		keywords: table,
		printer:  message.NewPrinter(language.English),
	}
}

// Parse returns the probability described by raw, or Unparseable. The result
// may still fall outside (0,1), e.g. 1.0 for "Always"; callers gate on
// ValidRate.
func (n *Normalizer) Parse(raw string) float64 {
	if raw == "" {
		return Unparseable
	}

	cleaned := cleanRarity(raw)

	if num, den, ok := findFraction(cleaned); ok && den > 0 {
		return num / den
	}

	lower := strings.ToLower(cleaned)
	for _, kw := range n.keywords {
		if kw.Text != "" && strings.Contains(lower, kw.Text) {
			return kw.Rate
		}
	}

	return Unparseable
}

// Display formats rate for humans. A whole-number fraction in raw with a
// numerator of at most 10 is kept as written ("2/128"); anything else
// becomes "1/N" with N = round(1/rate). Display returns "" for a rate that is
// not positive.
func (n *Normalizer) Display(raw string, rate float64) string {
	if rate <= 0 {
		return ""
	}

	if raw != "" {
		num, den, ok := findFraction(cleanRarity(raw))
		if ok && isWhole(num) && isWhole(den) && num <= 10 {
			return n.printer.Sprintf("%v/%v", whole(num), whole(den))
		}
	}

	return n.printer.Sprintf("1/%v", whole(1/rate))
}

// whole formats v rounded half away from zero, grouped, with no fraction
// digits. Values beyond the int64 range keep their magnitude.
func whole(v float64) number.Formatter {
	return number.Decimal(math.Round(v), number.MaxFractionDigits(0))
}

func cleanRarity(raw string) string {
	cleaned := commentPattern.ReplaceAllString(raw, "")
	cleaned = stripTemplates(cleaned)
	cleaned = strings.ReplaceAll(cleaned, "~", "")
	return strings.TrimSpace(cleaned)
}

func findFraction(s string) (float64, float64, bool) {
	m := fractionPattern.FindStringSubmatch(s)
	if m == nil {
		return 0, 0, false
	}

	num, err := parseNumber(m[1])
	if err != nil {
		return 0, 0, false
	}
	den, err := parseNumber(m[2])
	if err != nil {
		return 0, 0, false
	}

	return num, den, true
}

func parseNumber(s string) (float64, error) {
	return strconv.ParseFloat(strings.ReplaceAll(s, ",", ""), 64)
}

func isWhole(f float64) bool {
	return f == math.Trunc(f)
}

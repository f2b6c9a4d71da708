package drops

// Unparseable is returned by rarity parsing and used for item IDs when the
// source markup has no usable value.
const Unparseable = -1

// Record is one item's entry in a drop table. Rate is always strictly
// between 0 and 1 for records produced by an Extractor.
type Record struct {
	Name        string  `json:"name"`
	Rate        float64 `json:"rate"`
	RateDisplay string  `json:"rateDisplay"`
	ItemID      int     `json:"itemId"`
}

// Params maps lower-cased template parameter keys to their trimmed raw values.
type Params map[string]string

// Source is the unit handed to the output writer: a named source and its
// drops in first-seen markup order.
type Source struct {
	Name  string   `json:"name"`
	Drops []Record `json:"drops"`
}

// ValidRate reports whether rate is a usable probability.
func ValidRate(rate float64) bool {
	return rate > 0 && rate < 1
}

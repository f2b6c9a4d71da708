package cfg

import "time"

const (
	CommandScrape = "scrape"
	CommandServe  = "serve"
)

type Cfg struct {
	Command string

	// Wiki access
	WikiAPI      string
	PricesAPI    string
	UserAgent    string
	RequestDelay time.Duration
	Timeout      time.Duration

	// Scraping
	CatalogPath    string
	OutputDir      string
	DBPath         string
	ResolveItemIDs bool
	ClogFilter     bool

	// Server
	Port           string
	APIAccessKey   string
	ScrapeInterval time.Duration

	// Application metadata
	LogFormat string
	Debug     bool
	Version   string
}

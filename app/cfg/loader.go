package cfg

import (
	"cmp"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/jessevdk/go-flags"
	"github.com/joho/godotenv"
)

// Version is set at build time via -ldflags
var Version = "dev"

func GetVersion() string {
	return cmp.Or(Version, "unknown")
}

type rawCfg struct {
	// Wiki access
	WikiAPI      string `long:"wiki-api" env:"WIKI_API" default:"https://oldschool.runescape.wiki/api.php" description:"MediaWiki API endpoint"`
	PricesAPI    string `long:"prices-api" env:"PRICES_API" default:"https://prices.runescape.wiki/api/v1/osrs/mapping" description:"Item mapping endpoint used to resolve item IDs"`
	UserAgent    string `long:"user-agent" env:"USER_AGENT" default:"droppy-scraper/1.0 (drop rate extractor)" description:"User agent string for HTTP requests"`
	RequestDelay int    `long:"request-delay" env:"REQUEST_DELAY" default:"500" description:"Minimum delay between wiki requests in milliseconds"`
	Timeout      int    `long:"timeout" env:"TIMEOUT" default:"30" description:"HTTP request timeout in seconds"`

	// Scraping
	CatalogPath    string `long:"catalog" env:"CATALOG" description:"YAML catalog overriding the built-in source list"`
	OutputDir      string `long:"output-dir" env:"OUTPUT_DIR" default:"./data" description:"Directory for generated JSON files"`
	DBPath         string `long:"db-path" env:"DB_PATH" default:"./data/droppy.db" description:"SQLite database file"`
	ResolveItemIDs bool   `long:"resolve-item-ids" env:"RESOLVE_ITEM_IDS" description:"Fill missing item IDs from the item mapping"`
	ClogFilter     bool   `long:"clog-filter" env:"CLOG_FILTER" description:"Restrict drops to collection log items"`

	// Server
	Port           string `long:"port" env:"PORT" default:"8080" description:"HTTP server port"`
	APIAccessKey   string `long:"api-key" env:"API_ACCESS_KEY" description:"API access key for authentication (optional)"`
	ScrapeInterval int    `long:"scrape-interval" env:"SCRAPE_INTERVAL" default:"0" description:"Seconds between full scrapes in serve mode (0 disables)"`

	// Application metadata
	LogFormat string `long:"log-format" env:"LOG_FORMAT" default:"text" choice:"text" choice:"json" description:"Log output format"`
	Debug     bool   `long:"debug" env:"DEBUG" description:"Enable debug logging"`

	Args struct {
		Command string `positional-arg-name:"command" description:"scrape (default) or serve"`
	} `positional-args:"yes"`
}

var globalCfg *Cfg

// Load reads configuration from the process arguments. A nil config with a
// nil error means help was requested.
func Load() (*Cfg, error) {
	return LoadArgs(os.Args[1:])
}

func LoadArgs(args []string) (*Cfg, error) {
	// .env is optional
	_ = godotenv.Load()

	var raw rawCfg

	parser := flags.NewParser(&raw, flags.Default)

	if _, err := parser.ParseArgs(args); err != nil {
		var flagsErr *flags.Error
		if errors.As(err, &flagsErr) && flagsErr.Type == flags.ErrHelp {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to parse configuration: %w", err)
	}

	command := strings.ToLower(strings.TrimSpace(cmp.Or(raw.Args.Command, CommandScrape)))
	if command != CommandScrape && command != CommandServe {
		return nil, fmt.Errorf("unknown command %q (expected %q or %q)", raw.Args.Command, CommandScrape, CommandServe)
	}

	if raw.RequestDelay < 0 {
		return nil, fmt.Errorf("request delay must not be negative, got %d", raw.RequestDelay)
	}
	if raw.Timeout <= 0 {
		return nil, fmt.Errorf("timeout must be positive, got %d", raw.Timeout)
	}
	if raw.ScrapeInterval < 0 {
		return nil, fmt.Errorf("scrape interval must not be negative, got %d", raw.ScrapeInterval)
	}

	cfg := &Cfg{
		Command:        command,
		WikiAPI:        raw.WikiAPI,
		PricesAPI:      raw.PricesAPI,
		UserAgent:      raw.UserAgent,
		RequestDelay:   time.Duration(raw.RequestDelay) * time.Millisecond,
		Timeout:        time.Duration(raw.Timeout) * time.Second,
		CatalogPath:    raw.CatalogPath,
		OutputDir:      raw.OutputDir,
		DBPath:         raw.DBPath,
		ResolveItemIDs: raw.ResolveItemIDs,
		ClogFilter:     raw.ClogFilter,
		Port:           raw.Port,
		APIAccessKey:   raw.APIAccessKey,
		ScrapeInterval: time.Duration(raw.ScrapeInterval) * time.Second,
		LogFormat:      raw.LogFormat,
		Debug:          raw.Debug,
		Version:        GetVersion(),
	}

	globalCfg = cfg

	return cfg, nil
}

func Get() *Cfg {
	if globalCfg == nil {
		panic("configuration not loaded - call cfg.Load() first")
	}
	return globalCfg
}

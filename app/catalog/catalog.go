package catalog

import (
	_ "embed"
	"fmt"
	"os"
	"strings"

	"github.com/bckpockets/droppy-scraper/app/drops"
	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

//go:embed default.yml
var defaultCatalog []byte

type Catalog struct {
	Markers           []string            `yaml:"markers"`
	Suffixes          []string            `yaml:"suffixes" validate:"dive,required"`
	CollectionLogPage string              `yaml:"collection_log_page"`
	Keywords          []Keyword           `yaml:"keywords" validate:"dive"`
	Sources           []Source            `yaml:"sources" validate:"required,min=1,dive"`
	Aliases           map[string][]string `yaml:"aliases" validate:"dive,keys,required,endkeys,min=1,dive,required"`

	byName map[string]*Source
}

// Source is one collection log entry and the wiki pages its drops live on.
type Source struct {
	Name     string   `yaml:"name" validate:"required"`
	Pages    []string `yaml:"pages" validate:"dive,required"`
	Sections []string `yaml:"sections" validate:"dive,required"`
}

type Keyword struct {
	Text string  `yaml:"text" validate:"required"`
	Rate float64 `yaml:"rate" validate:"gt=0,lte=1"`
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Load reads the catalog at path, or the embedded default when path is empty.
func Load(path string) (*Catalog, error) {
	if path == "" {
		return Parse(defaultCatalog)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}

	c, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("invalid catalog %s: %w", path, err)
	}
	return c, nil
}

func Default() *Catalog {
	c, err := Parse(defaultCatalog)
	if err != nil {
		panic(fmt.Sprintf("embedded catalog is invalid: %v", err))
	}
	return c
}

func Parse(data []byte) (*Catalog, error) {
	var c Catalog
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	c.setDefaults()

	if err := c.validate(); err != nil {
		return nil, err
	}

	c.byName = make(map[string]*Source, len(c.Sources))
	for i := range c.Sources {
		c.byName[strings.ToLower(c.Sources[i].Name)] = &c.Sources[i]
	}

	return &c, nil
}

func (c *Catalog) setDefaults() {
	if len(c.Markers) == 0 {
		c.Markers = drops.DefaultMarkers
	}
	if c.CollectionLogPage == "" {
		c.CollectionLogPage = "Collection log"
	}

	normalized := make(map[string][]string, len(c.Aliases))
	for alias, targets := range c.Aliases {
		key := strings.ToLower(strings.TrimSpace(alias))
		normalized[key] = append(normalized[key], targets...)
	}
	c.Aliases = normalized
}

func (c *Catalog) validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	seen := make(map[string]bool, len(c.Sources))
	for i, s := range c.Sources {
		key := strings.ToLower(s.Name)
		if seen[key] {
			return fmt.Errorf("duplicate source at index %d: %s", i, s.Name)
		}
		seen[key] = true
	}

	// Keywords match by substring, so one contained in a later keyword would
	// shadow it.
	for i, kw := range c.Keywords {
		text := strings.ToLower(strings.TrimSpace(kw.Text))
		for _, later := range c.Keywords[i+1:] {
			if strings.Contains(strings.ToLower(later.Text), text) {
				return fmt.Errorf("keyword %q must come after %q", kw.Text, later.Text)
			}
		}
	}

	for alias, targets := range c.Aliases {
		for _, target := range targets {
			if !seen[strings.ToLower(target)] {
				return fmt.Errorf("alias %q points to unknown source %q", alias, target)
			}
		}
	}

	return nil
}

// Source returns the source with the given name, case-insensitively.
func (c *Catalog) Source(name string) (*Source, bool) {
	s, ok := c.byName[strings.ToLower(strings.TrimSpace(name))]
	return s, ok
}

// RarityKeywords returns the configured keyword table, or nil to use the
// normalizer's defaults.
func (c *Catalog) RarityKeywords() []drops.Keyword {
	if len(c.Keywords) == 0 {
		return nil
	}

	keywords := make([]drops.Keyword, len(c.Keywords))
	for i, kw := range c.Keywords {
		keywords[i] = drops.Keyword{Text: kw.Text, Rate: kw.Rate}
	}
	return keywords
}

// WikiPages returns the pages to scrape for s, defaulting to its own name.
func (s Source) WikiPages() []string {
	if len(s.Pages) == 0 {
		return []string{s.Name}
	}
	return s.Pages
}

// Candidates lists page followed by page+suffix for every fallback suffix,
// in the order they should be tried.
func (c *Catalog) Candidates(page string) []string {
	candidates := make([]string, 0, len(c.Suffixes)+1)
	candidates = append(candidates, page)
	for _, suffix := range c.Suffixes {
		candidates = append(candidates, page+suffix)
	}
	return candidates
}

package tasks

import (
	"context"
	"errors"
	"iter"
	"log/slog"
	"time"

	"github.com/bckpockets/droppy-scraper/app/catalog"
	"github.com/bckpockets/droppy-scraper/app/drops"
	"github.com/bckpockets/droppy-scraper/app/metrics"
	"github.com/bckpockets/droppy-scraper/app/wiki"
)

// Extras carries the optional per-run data used to refine scraped records.
// Zero values disable the corresponding step.
type Extras struct {
	ItemIDs       map[string]int
	CollectionLog drops.CollectionLog
}

// Scraper turns a catalog source into drop records by fetching its wiki
// pages, falling back to suffixed pages when a page yields nothing.
type Scraper struct {
	wiki      WikiClient
	extractor *drops.Extractor
	catalog   *catalog.Catalog
}

func NewScraper(wikiClient WikiClient, extractor *drops.Extractor, c *catalog.Catalog) *Scraper {
	return &Scraper{
		wiki:      wikiClient,
		extractor: extractor,
		catalog:   c,
	}
}

// Scrape resolves every page of source in order, then de-duplicates the
// combined records and applies the collection log filter and item IDs from
// extras. The only error returned is ctx's.
func (s *Scraper) Scrape(ctx context.Context, source catalog.Source, extras Extras) ([]drops.Record, error) {
	var records []drops.Record

	for _, page := range source.WikiPages() {
		var used string
		found := s.extractor.ResolveSeq(s.pageTexts(ctx, page, &used))
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		if len(found) == 0 {
			slog.Debug("No drops found on page or fallbacks", "source", source.Name, "page", page)
			continue
		}
		if used != page {
			metrics.FallbackPagesTotal.Inc()
			slog.Info("Fallback page used", "source", source.Name, "page", page, "fallback", used)
		}
		records = append(records, found...)
	}

	records = drops.Dedupe(records)

	if extras.CollectionLog != nil {
		if items, ok := extras.CollectionLog.Items(source.Name, source.Sections); ok {
			before := len(records)
			records = drops.FilterByName(records, items)
			slog.Debug("Collection log filter applied", "source", source.Name, "before", before, "after", len(records))
		}
	}

	if extras.ItemIDs != nil {
		records = drops.WithItemIDs(records, extras.ItemIDs)
	}

	return records, nil
}

// pageTexts yields the wikitext of page and then of each suffixed fallback,
// fetching only as far as the consumer reads. A failed fetch yields "".
// used is set to the candidate behind the last yielded text.
func (s *Scraper) pageTexts(ctx context.Context, page string, used *string) iter.Seq[string] {
	return func(yield func(string) bool) {
		for _, candidate := range s.catalog.Candidates(page) {
			if ctx.Err() != nil {
				return
			}
			*used = candidate
			if !yield(s.fetch(ctx, candidate)) {
				return
			}
		}
	}
}

func (s *Scraper) fetch(ctx context.Context, page string) string {
	start := time.Now()
	text, err := s.wiki.FetchText(ctx, page)
	metrics.WikiFetchDuration.Observe(time.Since(start).Seconds())

	switch {
	case err == nil:
		metrics.WikiFetchesTotal.WithLabelValues(metrics.ResultOK).Inc()
		return text
	case errors.Is(err, wiki.ErrPageNotFound):
		metrics.WikiFetchesTotal.WithLabelValues(metrics.ResultNotFound).Inc()
		slog.Debug("Page not found", "page", page)
	case ctx.Err() != nil:
		// cancellation is reported by the caller
	default:
		metrics.WikiFetchesTotal.WithLabelValues(metrics.ResultError).Inc()
		slog.Warn("Failed to fetch page", "page", page, "error", err)
	}
	return ""
}

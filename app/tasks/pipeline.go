package tasks

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/bckpockets/droppy-scraper/app/catalog"
	"github.com/bckpockets/droppy-scraper/app/database"
	"github.com/bckpockets/droppy-scraper/app/drops"
	"github.com/bckpockets/droppy-scraper/app/metrics"
	"github.com/bckpockets/droppy-scraper/app/output"
	"github.com/google/uuid"
)

// ErrNoDrops is returned when a source resolves to zero drop records.
var ErrNoDrops = errors.New("no drops found")

// ErrUnknownSource is returned when a requested source is not in the catalog.
var ErrUnknownSource = errors.New("unknown source")

type Options struct {
	PricesURL      string
	ResolveItemIDs bool
	ClogFilter     bool
}

// Report summarizes one full run.
type Report struct {
	RunID    string
	Resolved []string // identifiers in resolution order
	Failed   []string // source names
	Drops    int
	Duration time.Duration
}

// Pipeline runs scrapes end to end: fetch, extract, persist and write files.
// Runs are serialized.
type Pipeline struct {
	catalog *catalog.Catalog
	scraper *Scraper
	wiki    WikiClient
	writer  *output.Writer
	sources database.SourceRepository
	runs    database.RunRepository
	opts    Options

	mu sync.Mutex
}

func NewPipeline(c *catalog.Catalog, scraper *Scraper, wikiClient WikiClient, writer *output.Writer,
	sources database.SourceRepository, runs database.RunRepository, opts Options) *Pipeline {
	return &Pipeline{
		catalog: c,
		scraper: scraper,
		wiki:    wikiClient,
		writer:  writer,
		sources: sources,
		runs:    runs,
		opts:    opts,
	}
}

// RunAll scrapes every catalog source in order and writes index.json and
// all.json. Sources with no drops are reported as failed; only a cancelled
// context or an output/storage failure aborts the run.
func (p *Pipeline) RunAll(ctx context.Context) (*Report, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	start := time.Now()
	report := &Report{RunID: uuid.NewString()}
	extras := p.prepare(ctx)
	all := make(map[string]drops.Source, len(p.catalog.Sources))
	ids := make(map[string]string, len(p.catalog.Sources))

	slog.Info("Scrape started", "run_id", report.RunID, "sources", len(p.catalog.Sources))

	for _, source := range p.catalog.Sources {
		id, records, err := p.scrapeSource(ctx, source, extras)
		if errors.Is(err, ErrNoDrops) {
			report.Failed = append(report.Failed, source.Name)
			continue
		}
		if err != nil {
			metrics.ScrapeRunsTotal.WithLabelValues(metrics.ResultError).Inc()
			return nil, err
		}

		report.Resolved = append(report.Resolved, id)
		report.Drops += len(records)
		all[id] = drops.Source{Name: source.Name, Drops: records}
		ids[source.Name] = id
	}

	aliases := p.aliasIDs(ids)

	if err := p.writer.WriteIndex(output.Index{Sources: report.Resolved, Aliases: aliases}); err != nil {
		return nil, err
	}
	if err := p.writer.WriteAll(all); err != nil {
		return nil, err
	}
	if err := p.sources.ReplaceAliases(ctx, aliases); err != nil {
		return nil, err
	}
	if err := p.prune(ctx, report.Resolved); err != nil {
		return nil, err
	}

	report.Duration = time.Since(start)

	if err := p.runs.SaveRun(ctx, database.Run{
		ID:            report.RunID,
		StartedAt:     start,
		FinishedAt:    start.Add(report.Duration),
		Resolved:      len(report.Resolved),
		Failed:        len(report.Failed),
		Drops:         report.Drops,
		FailedSources: report.Failed,
	}); err != nil {
		slog.Warn("Failed to record run", "run_id", report.RunID, "error", err)
	}

	result := metrics.ResultOK
	if len(report.Resolved) == 0 {
		result = metrics.ResultEmpty
	}
	metrics.ScrapeRunsTotal.WithLabelValues(result).Inc()
	metrics.ScrapeRunDuration.Observe(report.Duration.Seconds())

	if len(report.Failed) > 0 {
		slog.Warn("Sources with no drops", "count", len(report.Failed), "sources", report.Failed)
	}
	slog.Info("Scrape completed",
		"run_id", report.RunID,
		"duration", report.Duration,
		"resolved", len(report.Resolved),
		"failed", len(report.Failed),
		"drops", report.Drops)

	return report, nil
}

// RunSource re-scrapes a single catalog source and returns its record count.
func (p *Pipeline) RunSource(ctx context.Context, name string) (int, error) {
	source, ok := p.catalog.Source(name)
	if !ok {
		return 0, fmt.Errorf("%w: %s", ErrUnknownSource, name)
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	_, records, err := p.scrapeSource(ctx, *source, p.prepare(ctx))
	if err != nil {
		return 0, err
	}
	return len(records), nil
}

func (p *Pipeline) scrapeSource(ctx context.Context, source catalog.Source, extras Extras) (string, []drops.Record, error) {
	records, err := p.scraper.Scrape(ctx, source, extras)
	if err != nil {
		return "", nil, fmt.Errorf("failed to scrape %s: %w", source.Name, err)
	}

	if len(records) == 0 {
		metrics.SourcesScrapedTotal.WithLabelValues(metrics.ResultEmpty).Inc()
		slog.Warn("No drops found", "source", source.Name)
		return "", nil, fmt.Errorf("%w: %s", ErrNoDrops, source.Name)
	}

	resolved := drops.Source{Name: source.Name, Drops: records}
	id, err := p.writer.WriteSource(resolved)
	if err != nil {
		return "", nil, fmt.Errorf("failed to write %s: %w", source.Name, err)
	}
	if err := p.sources.SaveSource(ctx, id, resolved, time.Now()); err != nil {
		return "", nil, fmt.Errorf("failed to persist %s: %w", source.Name, err)
	}

	metrics.SourcesScrapedTotal.WithLabelValues(metrics.ResultOK).Inc()
	metrics.DropsExtractedTotal.Add(float64(len(records)))
	slog.Info("Source scraped", "source", source.Name, "id", id, "drops", len(records))

	return id, records, nil
}

// prune drops stored sources and their files that this run did not resolve,
// so the API serves the same set as index.json.
func (p *Pipeline) prune(ctx context.Context, resolved []string) error {
	stale, err := p.sources.PruneSources(ctx, resolved)
	if err != nil {
		return err
	}

	for _, id := range stale {
		if err := p.writer.RemoveSource(id); err != nil {
			slog.Warn("Failed to remove stale source file", "id", id, "error", err)
			continue
		}
		slog.Info("Stale source removed", "id", id)
	}
	return nil
}

// prepare fetches the optional item mapping and collection log. Failures
// only disable the step that needed them.
func (p *Pipeline) prepare(ctx context.Context) Extras {
	var extras Extras

	if p.opts.ResolveItemIDs {
		ids, err := p.wiki.FetchItemIDs(ctx, p.opts.PricesURL)
		if err != nil {
			slog.Warn("Item ID resolution disabled for this run", "error", err)
		} else {
			slog.Debug("Item mapping loaded", "items", len(ids))
			extras.ItemIDs = ids
		}
	}

	if p.opts.ClogFilter {
		text, err := p.wiki.FetchText(ctx, p.catalog.CollectionLogPage)
		if err != nil {
			slog.Warn("Collection log filter disabled for this run", "page", p.catalog.CollectionLogPage, "error", err)
		} else {
			extras.CollectionLog = drops.ParseCollectionLog(text)
			slog.Debug("Collection log loaded", "sections", len(extras.CollectionLog))
		}
	}

	return extras
}

// aliasIDs maps each catalog alias to the identifiers of its resolved
// targets. Aliases with no resolved target are left out.
func (p *Pipeline) aliasIDs(ids map[string]string) map[string][]string {
	aliases := make(map[string][]string, len(p.catalog.Aliases))
	for alias, targets := range p.catalog.Aliases {
		var resolved []string
		for _, target := range targets {
			source, ok := p.catalog.Source(target)
			if !ok {
				continue
			}
			if id, ok := ids[source.Name]; ok {
				resolved = append(resolved, id)
			}
		}
		if len(resolved) > 0 {
			aliases[alias] = resolved
		}
	}
	return aliases
}

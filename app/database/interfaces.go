package database

import (
	"context"
	"time"

	"github.com/bckpockets/droppy-scraper/app/drops"
)

type SourceRepository interface {
	GetSource(ctx context.Context, id string) (*Source, error)
	ListSources(ctx context.Context) ([]SourceSummary, error)
	GetSourceCount(ctx context.Context) (int, error)
	GetDropCount(ctx context.Context) (int, error)
	GetAliases(ctx context.Context) (map[string][]string, error)

	SaveSource(ctx context.Context, id string, source drops.Source, scrapedAt time.Time) error
	ReplaceAliases(ctx context.Context, aliases map[string][]string) error
	PruneSources(ctx context.Context, keep []string) ([]string, error)
}

type RunRepository interface {
	SaveRun(ctx context.Context, run Run) error
	GetLastRun(ctx context.Context) (*Run, error)
}

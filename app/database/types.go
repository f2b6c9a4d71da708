package database

import (
	"time"

	"github.com/bckpockets/droppy-scraper/app/drops"
)

type Source struct {
	ID        string // Canonical identifier, also the output file name
	Name      string
	Drops     []drops.Record
	ScrapedAt time.Time
}

type SourceSummary struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	DropCount int       `json:"dropCount"`
	ScrapedAt time.Time `json:"scrapedAt"`
}

// Run is the outcome of one full scrape.
type Run struct {
	ID            string    `json:"id"`
	StartedAt     time.Time `json:"startedAt"`
	FinishedAt    time.Time `json:"finishedAt"`
	Resolved      int       `json:"resolved"`
	Failed        int       `json:"failed"`
	Drops         int       `json:"drops"`
	FailedSources []string  `json:"failedSources"`
}

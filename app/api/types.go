package api

import (
	"time"

	"github.com/bckpockets/droppy-scraper/app/catalog"
	"github.com/bckpockets/droppy-scraper/app/database"
	"github.com/bckpockets/droppy-scraper/app/drops"
	"github.com/bckpockets/droppy-scraper/app/tasks"
)

type Handler struct {
	sources   database.SourceRepository
	runs      database.RunRepository
	catalog   *catalog.Catalog
	dry       *DryStore
	pipeline  *tasks.Pipeline
	scheduler tasks.TaskSchedulerInterface
	version   string
}

type dryRequest struct {
	Name     string `json:"name" binding:"required"`
	Response string `json:"response" binding:"required"`
}

type scrapeRequest struct {
	Source string `json:"source" binding:"omitempty,max=200"`
}

type sourceResponse struct {
	ID        string         `json:"id"`
	Name      string         `json:"name"`
	ScrapedAt time.Time      `json:"scrapedAt"`
	Drops     []drops.Record `json:"drops"`
}

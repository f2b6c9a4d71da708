package api

import (
	"errors"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/bckpockets/droppy-scraper/app/catalog"
	"github.com/bckpockets/droppy-scraper/app/database"
	"github.com/bckpockets/droppy-scraper/app/tasks"
	"github.com/gin-gonic/gin"
)

func NewHandler(sources database.SourceRepository, runs database.RunRepository, c *catalog.Catalog,
	dry *DryStore, pipeline *tasks.Pipeline, scheduler tasks.TaskSchedulerInterface, version string) *Handler {
	return &Handler{
		sources:   sources,
		runs:      runs,
		catalog:   c,
		dry:       dry,
		pipeline:  pipeline,
		scheduler: scheduler,
		version:   version,
	}
}

func (h *Handler) GetHealth(c *gin.Context) {
	health := map[string]interface{}{
		"status":    "ok",
		"version":   h.version,
		"timestamp": time.Now().In(time.Local).Format(time.RFC3339),
	}

	if count, err := h.sources.GetSourceCount(c.Request.Context()); err == nil {
		health["sources"] = count
	}

	c.JSON(http.StatusOK, health)
}

func (h *Handler) GetStats(c *gin.Context) {
	ctx := c.Request.Context()

	sourceCount, err := h.sources.GetSourceCount(ctx)
	if err != nil {
		slog.Error("Database error", "operation", "get_source_count", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}

	dropCount, err := h.sources.GetDropCount(ctx)
	if err != nil {
		slog.Error("Database error", "operation", "get_drop_count", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}

	lastRun, err := h.runs.GetLastRun(ctx)
	if err != nil {
		slog.Error("Database error", "operation", "get_last_run", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"catalog_sources": len(h.catalog.Sources),
		"sources":         sourceCount,
		"drops":           dropCount,
		"dry_responses":   h.dry.Len(),
		"last_run":        lastRun,
	})
}

func (h *Handler) ListSources(c *gin.Context) {
	sources, err := h.sources.ListSources(c.Request.Context())
	if err != nil {
		slog.Error("Database error", "operation", "list_sources", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"sources": sources,
		"total":   len(sources),
	})
}

func (h *Handler) GetSource(c *gin.Context) {
	name := c.Param("name")

	found, err := lookupSources(c.Request.Context(), h.sources, name)
	if err != nil {
		slog.Error("Database error", "operation", "lookup_source", "name", name, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}

	if len(found) == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "Source not found", "name": name})
		return
	}

	sources := make([]sourceResponse, 0, len(found))
	for _, s := range found {
		sources = append(sources, sourceResponse{
			ID:        s.ID,
			Name:      s.Name,
			ScrapedAt: s.ScrapedAt,
			Drops:     s.Drops,
		})
	}

	c.JSON(http.StatusOK, gin.H{
		"query":   name,
		"sources": sources,
	})
}

func (h *Handler) GetIndex(c *gin.Context) {
	ctx := c.Request.Context()

	summaries, err := h.sources.ListSources(ctx)
	if err != nil {
		slog.Error("Database error", "operation", "list_sources", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}

	aliases, err := h.sources.GetAliases(ctx)
	if err != nil {
		slog.Error("Database error", "operation", "get_aliases", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}

	ids := make([]string, 0, len(summaries))
	for _, s := range summaries {
		ids = append(ids, s.ID)
	}

	c.JSON(http.StatusOK, gin.H{
		"sources": ids,
		"aliases": aliases,
	})
}

func (h *Handler) PutDry(c *gin.Context) {
	var req dryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.String(http.StatusBadRequest, "Bad request")
		return
	}

	if !h.dry.Put(req.Name, req.Response) {
		c.String(http.StatusBadRequest, "Bad request")
		return
	}

	c.String(http.StatusOK, "OK")
}

func (h *Handler) GetDry(c *gin.Context) {
	name := c.Query("name")
	if dryKey(name) == "" {
		c.String(http.StatusBadRequest, "Bad request")
		return
	}

	response, ok := h.dry.Get(name)
	if !ok {
		c.String(http.StatusNotFound, "Not found")
		return
	}

	c.String(http.StatusOK, response)
}

// APIScrape queues a full scrape, or a single source when the body names one.
func (h *Handler) APIScrape(c *gin.Context) {
	var req scrapeRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
		return
	}

	var task tasks.TaskInterface
	if req.Source != "" {
		source, ok := h.catalog.Source(req.Source)
		if !ok {
			c.JSON(http.StatusNotFound, gin.H{"error": "Source not in catalog", "source": req.Source})
			return
		}
		task = tasks.NewScrapeSourceTask(source.Name, h.pipeline)
	} else {
		task = tasks.NewScrapeAllTask(h.pipeline)
	}

	if err := h.scheduler.EnqueueTask(task); err != nil {
		slog.Error("Error enqueueing scrape task", "type", string(task.GetType()), "error", err)
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"error":   "Failed to enqueue scrape task",
			"details": err.Error(),
		})
		return
	}

	c.JSON(http.StatusAccepted, gin.H{
		"success": true,
		"task": gin.H{
			"id":     task.GetID(),
			"type":   task.GetType(),
			"source": task.GetSourceName(),
		},
	})
}

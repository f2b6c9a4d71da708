package tasks

import "context"

// TaskSchedulerInterface defines the interface for task scheduling operations.
// Used by the main application and the API to queue scrapes.
//
//	scheduler := NewScheduler(pipeline, interval)
//	scheduler.Start()
//	defer scheduler.Stop()
//	scheduler.EnqueueTask(NewScrapeSourceTask("Zulrah", pipeline))
type TaskSchedulerInterface interface {
	Start()
	Stop()
	EnqueueTask(task TaskInterface) error
}

// WikiClient is the subset of the wiki client the scraper needs.
type WikiClient interface {
	FetchText(ctx context.Context, page string) (string, error)
	FetchItemIDs(ctx context.Context, mappingURL string) (map[string]int, error)
}

package tasks

import (
	"context"
	"log/slog"
)

type ScrapeAllTask struct {
	Task
	pipeline *Pipeline
}

func NewScrapeAllTask(pipeline *Pipeline) *ScrapeAllTask {
	return &ScrapeAllTask{
		Task:     NewTask(TaskTypeScrapeAll, "", 0),
		pipeline: pipeline,
	}
}

func (t *ScrapeAllTask) Execute(ctx context.Context) error {
	report, err := t.pipeline.RunAll(ctx)
	if err != nil {
		return err
	}

	slog.Info("Task completed",
		"type", string(t.Type),
		"id", t.ID,
		"duration", t.GetDuration(),
		"resolved", len(report.Resolved),
		"failed", len(report.Failed))

	return nil
}

type ScrapeSourceTask struct {
	Task
	pipeline *Pipeline
}

func NewScrapeSourceTask(sourceName string, pipeline *Pipeline) *ScrapeSourceTask {
	return &ScrapeSourceTask{
		Task:     NewTask(TaskTypeScrapeSource, sourceName, DefaultMaxRetries),
		pipeline: pipeline,
	}
}

func (t *ScrapeSourceTask) Execute(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	count, err := t.pipeline.RunSource(ctx, t.SourceName)
	if err != nil {
		return err
	}

	slog.Info("Task completed",
		"type", string(t.Type),
		"source", t.SourceName,
		"duration", t.GetDuration(),
		"drops", count)

	return nil
}

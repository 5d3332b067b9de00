package pipeline

import (
	"context"
	"fmt"
	"log/slog"
)

// Worker runs build jobs.
type Worker struct {
	builder *Builder
	publish func(*DataResult)
	log     *slog.Logger
}

// NewWorker returns a worker building with b. publish receives every
// successful data build.
func NewWorker(b *Builder, publish func(*DataResult), log *slog.Logger) *Worker {
	return &Worker{builder: b, publish: publish, log: log}
}

// Process runs the docs build and then the data build for job.
func (w *Worker) Process(ctx context.Context, job *Job) {
	log := w.log.With("job_id", job.ID, "trigger", job.Trigger)

	// Phase 1: reader pages
	job.SetStatus(StatusBuildingDocs, "docs")
	docs, err := w.builder.Docs(ctx, "")
	if err != nil {
		log.Error("docs build failed", "error", err)
		job.AddError(fmt.Sprintf("docs: %s", err))
		job.SetStatus(StatusFailed, "docs")
		return
	}
	job.SetDocs(len(docs.Pages), docs.Headings())

	// Phase 2: data file
	job.SetStatus(StatusBuildingData, "data")
	res, err := w.builder.Data(ctx, DataOptions{})
	if err != nil {
		log.Error("data build failed", "error", err)
		job.AddError(fmt.Sprintf("data: %s", err))
		job.SetStatus(StatusFailed, "data")
		return
	}
	job.SetData(res.Set.Meta.KnowledgeCount, res.Set.Meta.QuestionCount)
	if w.publish != nil {
		w.publish(res)
	}

	log.Info("build complete",
		"documents", len(docs.Pages),
		"knowledge", res.Set.Meta.KnowledgeCount,
		"questions", res.Set.Meta.QuestionCount,
	)
	job.SetStatus(StatusCompleted, "done")
}

package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"sync"
	"time"

	"github.com/dgallion1/texsite/internal/config"
	"github.com/dgallion1/texsite/internal/dataset"
	"github.com/dgallion1/texsite/internal/extract"
)

// Orchestrator queues rebuilds for the preview server and holds the data
// set of the latest successful build.
type Orchestrator struct {
	jobs    *JobStore
	queue   chan *Job
	builder *Builder
	log     *slog.Logger
	cfg     config.Config

	mu     sync.RWMutex
	latest *dataset.DataSet

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewOrchestrator creates the pipeline. Call Start to begin draining jobs.
func NewOrchestrator(cfg config.Config, log *slog.Logger) *Orchestrator {
	return &Orchestrator{
		jobs:    NewJobStore(cfg.JobTTL),
		queue:   make(chan *Job, cfg.MaxQueueSize),
		builder: NewBuilder(cfg, log),
		log:     log,
		cfg:     cfg,
	}
}

// Start launches the build worker and the job store cleanup. Builds run
// one at a time since they write the same output tree.
func (o *Orchestrator) Start(ctx context.Context) {
	workerCtx, cancel := context.WithCancel(ctx)
	o.cancel = cancel

	o.wg.Add(1)
	go func() {
		defer o.wg.Done()
		w := NewWorker(o.builder, o.publish, o.log)
		for {
			select {
			case <-workerCtx.Done():
				return
			case job, ok := <-o.queue:
				if !ok {
					return
				}
				w.Process(workerCtx, job)
			}
		}
	}()

	o.wg.Add(1)
	go func() {
		defer o.wg.Done()
		ticker := time.NewTicker(5 * time.Minute)
		defer ticker.Stop()
		for {
			select {
			case <-workerCtx.Done():
				return
			case <-ticker.C:
				o.jobs.Cleanup()
			}
		}
	}()
}

// Stop gracefully shuts down the pipeline.
func (o *Orchestrator) Stop() {
	if o.cancel != nil {
		o.cancel()
	}
	close(o.queue)
	o.wg.Wait()
}

// Submit queues a new job for processing.
func (o *Orchestrator) Submit(job *Job) error {
	o.jobs.Put(job)
	select {
	case o.queue <- job:
		return nil
	default:
		job.SetStatus(StatusFailed, "queue_full")
		return fmt.Errorf("job queue is full (%d)", o.cfg.MaxQueueSize)
	}
}

// GetJob returns a job by ID.
func (o *Orchestrator) GetJob(id string) *Job {
	return o.jobs.Get(id)
}

// QueueDepth returns current queue depth.
func (o *Orchestrator) QueueDepth() int {
	return len(o.queue)
}

// Latest returns the data set of the latest build, or nil.
func (o *Orchestrator) Latest() *dataset.DataSet {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return o.latest
}

// RowStats returns the row statistics of the latest data build.
func (o *Orchestrator) RowStats() extract.StatsSnapshot {
	return o.builder.Stats().Snapshot()
}

// LoadExisting seeds Latest from a data file left by an earlier build.
func (o *Orchestrator) LoadExisting() error {
	f, err := os.Open(o.cfg.DataPath())
	if err != nil {
		return err
	}
	defer f.Close()
	set, err := dataset.Decode(f)
	if err != nil {
		return fmt.Errorf("load %s: %w", o.cfg.DataPath(), err)
	}
	o.setLatest(set)
	o.log.Info("loaded existing data set", "path", o.cfg.DataPath(), "questions", set.Meta.QuestionCount)
	return nil
}

func (o *Orchestrator) publish(res *DataResult) {
	o.setLatest(res.Set)
}

func (o *Orchestrator) setLatest(set *dataset.DataSet) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.latest = set
}

package pipeline

import (
	"context"
	"testing"
	"time"
)

func waitForJob(t *testing.T, job *Job) JobSnapshot {
	t.Helper()
	deadline := time.Now().Add(10 * time.Second)
	for time.Now().Before(deadline) {
		snap := job.Snapshot()
		if snap.Status == StatusCompleted || snap.Status == StatusFailed {
			return snap
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("job %s did not finish", job.ID)
	return JobSnapshot{}
}

func TestOrchestrator_Build(t *testing.T) {
	cfg := testConfig(t)
	o := NewOrchestrator(cfg, quietLogger())
	if o.Latest() != nil {
		t.Fatal("expected no data set before the first build")
	}
	o.Start(context.Background())
	defer o.Stop()

	job := NewJob("test")
	if err := o.Submit(job); err != nil {
		t.Fatalf("unexpected submit error: %v", err)
	}
	if o.GetJob(job.ID) != job {
		t.Error("expected submitted job to be retrievable")
	}

	snap := waitForJob(t, job)
	if snap.Status != StatusCompleted {
		t.Fatalf("expected completed, got %+v", snap)
	}
	if snap.Progress.Documents != 2 || snap.Progress.Questions != 2 || snap.Progress.Knowledge != 1 {
		t.Errorf("unexpected progress %+v", snap.Progress)
	}
	latest := o.Latest()
	if latest == nil || latest.Meta.QuestionCount != 2 {
		t.Fatalf("expected latest data set to be published, got %+v", latest)
	}
	if len(o.RowStats().Sources) != 2 {
		t.Errorf("unexpected row stats %+v", o.RowStats())
	}
}

func TestOrchestrator_FailedBuild(t *testing.T) {
	cfg := testConfig(t)
	cfg.Bank.Source = "absent.tex"
	o := NewOrchestrator(cfg, quietLogger())
	o.Start(context.Background())
	defer o.Stop()

	job := NewJob("test")
	if err := o.Submit(job); err != nil {
		t.Fatal(err)
	}
	snap := waitForJob(t, job)
	if snap.Status != StatusFailed || snap.Phase != "data" || len(snap.Progress.Errors) != 1 {
		t.Errorf("unexpected snapshot %+v", snap)
	}
	if o.Latest() != nil {
		t.Error("expected no data set after a failed build")
	}
}

func TestOrchestrator_QueueFull(t *testing.T) {
	cfg := testConfig(t)
	cfg.MaxQueueSize = 1
	o := NewOrchestrator(cfg, quietLogger())
	defer o.Stop()

	if err := o.Submit(NewJob("a")); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	overflow := NewJob("b")
	if err := o.Submit(overflow); err == nil {
		t.Fatal("expected queue full error")
	}
	if s := overflow.Snapshot(); s.Status != StatusFailed || s.Phase != "queue_full" {
		t.Errorf("unexpected overflow job state %+v", s)
	}
	if o.QueueDepth() != 1 {
		t.Errorf("expected queue depth 1, got %d", o.QueueDepth())
	}
}

func TestOrchestrator_LoadExisting(t *testing.T) {
	cfg := testConfig(t)
	o := NewOrchestrator(cfg, quietLogger())
	if err := o.LoadExisting(); err == nil {
		t.Fatal("expected error without a data file")
	}

	if _, err := NewBuilder(cfg, quietLogger()).Data(context.Background(), DataOptions{}); err != nil {
		t.Fatal(err)
	}
	if err := o.LoadExisting(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if latest := o.Latest(); latest == nil || latest.Meta.KnowledgeCount != 1 {
		t.Errorf("unexpected latest %+v", latest)
	}
}

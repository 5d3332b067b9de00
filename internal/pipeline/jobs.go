package pipeline

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// JobStatus represents the state of a build job.
type JobStatus string

const (
	StatusQueued       JobStatus = "queued"
	StatusBuildingDocs JobStatus = "building_docs"
	StatusBuildingData JobStatus = "building_data"
	StatusCompleted    JobStatus = "completed"
	StatusFailed       JobStatus = "failed"
)

// Job tracks the state of a single rebuild.
type Job struct {
	mu sync.Mutex

	ID      string `json:"job_id"`
	Trigger string `json:"trigger"`

	Status JobStatus `json:"status"`
	Phase  string    `json:"phase"`

	Progress Progress `json:"progress"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	errors []string
}

// Progress tracks what a build has produced so far.
type Progress struct {
	Documents int      `json:"documents"`
	Headings  int      `json:"headings"`
	Knowledge int      `json:"knowledge"`
	Questions int      `json:"questions"`
	Errors    []string `json:"errors"`
}

// NewJob returns a queued job with a fresh id.
func NewJob(trigger string) *Job {
	now := time.Now()
	return &Job{
		ID:        uuid.NewString(),
		Trigger:   trigger,
		Status:    StatusQueued,
		Phase:     "queued",
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// JobStore is a thread-safe in-memory job registry with TTL eviction.
type JobStore struct {
	mu   sync.Mutex
	jobs map[string]*Job
	ttl  time.Duration
}

func NewJobStore(ttl time.Duration) *JobStore {
	return &JobStore{
		jobs: make(map[string]*Job),
		ttl:  ttl,
	}
}

func (s *JobStore) Put(job *Job) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.jobs[job.ID] = job
}

func (s *JobStore) Get(id string) *Job {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.jobs[id]
}

// Cleanup removes expired jobs.
func (s *JobStore) Cleanup() {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now()
	for id, job := range s.jobs {
		job.mu.Lock()
		updated := job.UpdatedAt
		job.mu.Unlock()
		if now.Sub(updated) > s.ttl {
			delete(s.jobs, id)
		}
	}
}

// SetStatus updates job status atomically.
func (j *Job) SetStatus(status JobStatus, phase string) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.Status = status
	j.Phase = phase
	j.UpdatedAt = time.Now()
}

// AddError records an error.
func (j *Job) AddError(err string) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.errors = append(j.errors, err)
	j.Progress.Errors = j.errors
	j.UpdatedAt = time.Now()
}

// SetDocs records the outcome of the docs build.
func (j *Job) SetDocs(documents, headings int) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.Progress.Documents = documents
	j.Progress.Headings = headings
	j.UpdatedAt = time.Now()
}

// SetData records the outcome of the data build.
func (j *Job) SetData(knowledge, questions int) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.Progress.Knowledge = knowledge
	j.Progress.Questions = questions
	j.UpdatedAt = time.Now()
}

// JobSnapshot is a read-only, JSON-safe copy of job state.
type JobSnapshot struct {
	ID        string    `json:"job_id"`
	Trigger   string    `json:"trigger"`
	Status    JobStatus `json:"status"`
	Phase     string    `json:"phase"`
	Progress  Progress  `json:"progress"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Snapshot returns a JSON-safe copy of the job state.
func (j *Job) Snapshot() JobSnapshot {
	j.mu.Lock()
	defer j.mu.Unlock()
	errs := append([]string{}, j.Progress.Errors...)
	progress := j.Progress
	progress.Errors = errs
	return JobSnapshot{
		ID:        j.ID,
		Trigger:   j.Trigger,
		Status:    j.Status,
		Phase:     j.Phase,
		Progress:  progress,
		CreatedAt: j.CreatedAt,
		UpdatedAt: j.UpdatedAt,
	}
}

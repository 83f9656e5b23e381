package server

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/dygy/beatforge/internal/pipeline"
)

// Job status constants
type JobStatus string

const (
	StatusPending    JobStatus = "pending"
	StatusProcessing JobStatus = "processing"
	StatusComplete   JobStatus = "complete"
	StatusFailed     JobStatus = "failed"
)

// jobTTL is how long a finished job and its artifact stay available.
const jobTTL = 10 * time.Minute

// Job represents one render job
type Job struct {
	ID        string
	Status    JobStatus
	Request   pipeline.Config
	Result    *pipeline.Result
	Error     string
	WorkDir   string
	CreatedAt time.Time
}

// OutputPath is where the job's artifact lands.
func (j *Job) OutputPath() string {
	return filepath.Join(j.WorkDir, "track.wav")
}

// JobManager manages render jobs. All jobs run through one orchestrator,
// so every request hits the same decode cache and no sample is decoded
// more than once for the life of the process.
type JobManager struct {
	jobs    map[string]*Job
	mu      sync.RWMutex
	seq     uint64
	pipe    *pipeline.Orchestrator
	version string
}

// NewJobManager creates a new job manager
func NewJobManager(sampleDir, alternateDir, version string) *JobManager {
	return &JobManager{
		jobs:    make(map[string]*Job),
		pipe:    pipeline.NewOrchestrator(sampleDir, alternateDir, io.Discard, false),
		version: version,
	}
}

// Create registers a new pending job for a request.
func (m *JobManager) Create(req pipeline.Config) (*Job, error) {
	workDir, err := os.MkdirTemp("", "beatforge-job-*")
	if err != nil {
		return nil, fmt.Errorf("create job dir: %w", err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	// the sequence number keeps ids unique even when two requests land on
	// the same clock tick
	m.seq++
	job := &Job{
		ID:        fmt.Sprintf("%d-%d", time.Now().UnixNano(), m.seq),
		Status:    StatusPending,
		Request:   req,
		WorkDir:   workDir,
		CreatedAt: time.Now(),
	}
	m.jobs[job.ID] = job
	return job, nil
}

// Snapshot returns a copy of a job's current state. Handlers use this so
// they never read fields the processing goroutine is writing.
func (m *JobManager) Snapshot(id string) (Job, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	job, ok := m.jobs[id]
	if !ok {
		return Job{}, false
	}
	return *job, true
}

// Process runs the pipeline for a job. Meant to run on its own goroutine;
// the job record carries the outcome.
func (m *JobManager) Process(job *Job) {
	defer func() {
		time.AfterFunc(jobTTL, func() {
			os.RemoveAll(job.WorkDir)
			m.mu.Lock()
			delete(m.jobs, job.ID)
			m.mu.Unlock()
		})
	}()

	m.setStatus(job, StatusProcessing)

	cfg := job.Request
	cfg.OutputPath = job.OutputPath()
	cfg.Version = m.version

	result, err := m.pipe.Execute(context.Background(), cfg)

	m.mu.Lock()
	defer m.mu.Unlock()
	if err != nil {
		job.Status = StatusFailed
		job.Error = err.Error()
		return
	}
	job.Result = result
	job.Status = StatusComplete
}

func (m *JobManager) setStatus(job *Job, status JobStatus) {
	m.mu.Lock()
	defer m.mu.Unlock()
	job.Status = status
}

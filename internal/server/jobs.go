package server

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync"
	"time"

	"github.com/CarsonHerness/ctcsound-Example/internal/pipeline"
	"github.com/google/uuid"
	"github.com/remeh/sizedwaitgroup"
	log "github.com/sirupsen/logrus"
)

const (
	jobRetention  = 10 * time.Minute
	renderTimeout = 5 * time.Minute
)

// Job status constants
type JobStatus string

const (
	StatusPending    JobStatus = "pending"
	StatusProcessing JobStatus = "processing"
	StatusComplete   JobStatus = "complete"
	StatusFailed     JobStatus = "failed"
)

// JobResult holds render results
type JobResult struct {
	Seed      int64  `json:"seed"`
	Events    int    `json:"events"`
	Orchestra string `json:"orchestra"`
	Score     string `json:"score"`
	CacheKey  string `json:"cache_key,omitempty"`
	WAVPath   string `json:"-"`
}

// Job represents a render job. Status fields are guarded by mu; Updates is
// closed once the job has reached a final status.
type Job struct {
	ID        string
	WorkDir   string
	CreatedAt time.Time
	Updates   chan string

	mu     sync.RWMutex
	status JobStatus
	stage  string
	result *JobResult
	err    string
}

// JobView is the JSON form of a job
type JobView struct {
	ID        string     `json:"id"`
	Status    JobStatus  `json:"status"`
	Stage     string     `json:"stage,omitempty"`
	Error     string     `json:"error,omitempty"`
	Result    *JobResult `json:"result,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
}

// View returns a consistent snapshot of the job
func (j *Job) View() JobView {
	j.mu.RLock()
	defer j.mu.RUnlock()
	return JobView{
		ID:        j.ID,
		Status:    j.status,
		Stage:     j.stage,
		Error:     j.err,
		Result:    j.result,
		CreatedAt: j.CreatedAt,
	}
}

// Status returns the current job status
func (j *Job) Status() JobStatus {
	j.mu.RLock()
	defer j.mu.RUnlock()
	return j.status
}

// Result returns the render result, nil until the job completes
func (j *Job) Result() *JobResult {
	j.mu.RLock()
	defer j.mu.RUnlock()
	return j.result
}

func (j *Job) setStage(status JobStatus, stage string) {
	j.mu.Lock()
	j.status = status
	j.stage = stage
	j.mu.Unlock()
	j.publish(stage)
}

func (j *Job) fail(err error) {
	j.mu.Lock()
	j.status = StatusFailed
	j.err = err.Error()
	j.stage = "Failed"
	j.mu.Unlock()
	j.publish("Error: " + err.Error())
}

func (j *Job) complete(result *JobResult) {
	j.mu.Lock()
	j.status = StatusComplete
	j.result = result
	j.stage = "Complete!"
	j.mu.Unlock()
	j.publish("Complete!")
}

// publish drops the update when nobody is listening and the buffer is full
func (j *Job) publish(msg string) {
	select {
	case j.Updates <- msg:
	default:
	}
}

// JobManager manages render jobs. At most maxRenders jobs run csound at
// once; the rest wait in StatusPending.
type JobManager struct {
	jobs     map[string]*Job
	mu       sync.RWMutex
	newSynth pipeline.SynthFactory
	renders  sizedwaitgroup.SizedWaitGroup
	accepted sync.WaitGroup // jobs handed to Start, queued or running
}

// NewJobManager creates a new job manager. maxRenders <= 0 means one render
// per CPU.
func NewJobManager(newSynth pipeline.SynthFactory, maxRenders int) *JobManager {
	if maxRenders <= 0 {
		maxRenders = runtime.NumCPU()
	}
	return &JobManager{
		jobs:     make(map[string]*Job),
		newSynth: newSynth,
		renders:  sizedwaitgroup.New(maxRenders),
	}
}

// Wait blocks until every job passed to Start has finished
func (m *JobManager) Wait() {
	m.accepted.Wait()
}

// Start processes job in the background. The job counts towards Wait from
// the moment Start returns.
func (m *JobManager) Start(job *Job, cfg pipeline.Config) {
	m.accepted.Add(1)
	go func() {
		defer m.accepted.Done()
		m.Process(job, cfg)
	}()
}

// Create creates a new job with its own work directory
func (m *JobManager) Create() (*Job, error) {
	workDir, err := os.MkdirTemp("", "markov-score-job-*")
	if err != nil {
		return nil, fmt.Errorf("create job dir: %w", err)
	}

	job := &Job{
		ID:        uuid.NewString(),
		WorkDir:   workDir,
		CreatedAt: time.Now(),
		Updates:   make(chan string, 32),
		status:    StatusPending,
		stage:     "Queued",
	}

	m.mu.Lock()
	m.jobs[job.ID] = job
	m.mu.Unlock()
	return job, nil
}

// Get retrieves a job by ID
func (m *JobManager) Get(id string) *Job {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.jobs[id]
}

// Process composes and renders a job to WorkDir/render.wav
func (m *JobManager) Process(job *Job, cfg pipeline.Config) {
	defer close(job.Updates)
	defer func() {
		time.AfterFunc(jobRetention, func() {
			os.RemoveAll(job.WorkDir)
			m.mu.Lock()
			delete(m.jobs, job.ID)
			m.mu.Unlock()
		})
	}()

	logger := log.WithFields(log.Fields{
		"function": "JobManager.Process",
		"job":      job.ID,
	})

	m.renders.Add()
	defer m.renders.Done()

	job.setStage(StatusProcessing, "Starting...")

	ctx, cancel := context.WithTimeout(context.Background(), renderTimeout)
	defer cancel()

	cfg.Render = true
	cfg.OutputDir = job.WorkDir
	cfg.WAVPath = filepath.Join(job.WorkDir, "render.wav")

	out := &lineWriter{job: job}
	var orch *pipeline.Orchestrator
	if m.newSynth != nil {
		orch = pipeline.NewOrchestratorWithSynth(out, true, m.newSynth)
	} else {
		orch = pipeline.NewOrchestrator(out, true)
	}

	result, err := orch.Execute(ctx, cfg)
	if err != nil {
		logger.WithError(err).Warn("render job failed")
		job.fail(err)
		return
	}

	logger.WithField("events", result.Events).Info("render job complete")
	job.complete(&JobResult{
		Seed:      result.Seed,
		Events:    result.Events,
		Orchestra: result.Orchestra,
		Score:     result.Score,
		CacheKey:  result.CacheKey,
		WAVPath:   result.WAVPath,
	})
}

// lineWriter turns pipeline progress output into job updates
type lineWriter struct {
	job     *Job
	pending string
}

func (w *lineWriter) Write(p []byte) (int, error) {
	w.pending += string(p)
	for {
		i := strings.IndexByte(w.pending, '\n')
		if i < 0 {
			break
		}
		line := strings.TrimSpace(w.pending[:i])
		w.pending = w.pending[i+1:]
		if line == "" {
			continue
		}
		w.job.mu.Lock()
		w.job.stage = line
		w.job.mu.Unlock()
		w.job.publish(line)
	}
	return len(p), nil
}

var _ io.Writer = (*lineWriter)(nil)

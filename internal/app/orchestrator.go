package app

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/verijob/verijob/internal/interfaces"
	"github.com/verijob/verijob/internal/logging"
	"github.com/verijob/verijob/internal/model"
)

type JobEventType string

const (
	JobEventStatus JobEventType = "status"
	JobEventResult JobEventType = "result"
)

type JobEvent struct {
	JobID string       `json:"job_id"`
	Type  JobEventType `json:"type"`

	Status JobStatus `json:"status,omitempty"`
	Error  string    `json:"error,omitempty"`

	// Set on result events.
	Result *model.AnalysisResponse `json:"result,omitempty"`
}

type JobStatus string

const (
	JobPending  JobStatus = "pending"
	JobRunning  JobStatus = "running"
	JobDone     JobStatus = "done"
	JobFailed   JobStatus = "failed"
	JobCanceled JobStatus = "canceled"
)

// Job is one in-flight or finished analysis. Events is read by the
// websocket handler and closed when the job settles.
type Job struct {
	ID        string                  `json:"id"`
	Status    JobStatus               `json:"status"`
	Error     string                  `json:"error,omitempty"`
	StartedAt time.Time               `json:"started_at"`
	EndedAt   time.Time               `json:"ended_at"`
	Result    *model.AnalysisResponse `json:"result,omitempty"`
	Events    chan JobEvent           `json:"-"`

	owner string
}

// Orchestrator runs analyses as cancellable background jobs and enforces
// the one-analysis-per-session rule.
type Orchestrator struct {
	detector interfaces.Detector
	logger   logging.Logger

	retention time.Duration

	jobsMu     sync.Mutex
	jobs       map[string]*Job
	jobCancels map[string]context.CancelFunc
	inflight   map[string]string // session key -> job ID
}

const defaultRetention = 30 * time.Minute

func NewOrchestrator(detector interfaces.Detector, logger logging.Logger) *Orchestrator {
	return &Orchestrator{
		detector:   detector,
		logger:     logger,
		retention:  defaultRetention,
		jobs:       make(map[string]*Job),
		jobCancels: make(map[string]context.CancelFunc),
		inflight:   make(map[string]string),
	}
}

func (o *Orchestrator) emitJobEvent(jobID string, ev JobEvent) {
	o.jobsMu.Lock()
	job, ok := o.jobs[jobID]
	o.jobsMu.Unlock()
	if !ok || job == nil || job.Events == nil {
		return
	}

	// Non-blocking send; drop if buffer is full.
	select {
	case job.Events <- ev:
	default:
	}
}

// StartAnalysis launches an analysis job for the given session key. If the
// session already has a job in flight, that job is returned unchanged and no
// new work starts.
func (o *Orchestrator) StartAnalysis(ctx context.Context, sessionKey string, req *model.AnalysisRequest) (*Job, bool) {
	o.jobsMu.Lock()
	if existingID, ok := o.inflight[sessionKey]; ok {
		if j, ok := o.jobs[existingID]; ok && !settled(j.Status) {
			o.jobsMu.Unlock()
			return j, false
		}
		delete(o.inflight, sessionKey)
	}

	jobID := uuid.New().String()
	job := &Job{
		ID:        jobID,
		Status:    JobPending,
		StartedAt: time.Now().UTC(),
		Events:    make(chan JobEvent, 16),
		owner:     sessionKey,
	}
	o.jobs[jobID] = job
	if sessionKey != "" {
		o.inflight[sessionKey] = jobID
	}

	jobCtx, cancel := context.WithCancel(ctx)
	o.jobCancels[jobID] = cancel
	o.jobsMu.Unlock()

	o.emitJobEvent(jobID, JobEvent{JobID: jobID, Type: JobEventStatus, Status: JobPending})

	go o.run(jobCtx, jobID, req)

	return job, true
}

func (o *Orchestrator) run(ctx context.Context, jobID string, req *model.AnalysisRequest) {
	defer func() {
		o.jobsMu.Lock()
		j := o.jobs[jobID]
		if j != nil {
			j.EndedAt = time.Now().UTC()
			if j.owner != "" && o.inflight[j.owner] == jobID {
				delete(o.inflight, j.owner)
			}
		}
		delete(o.jobCancels, jobID)
		o.jobsMu.Unlock()

		if j != nil && j.Events != nil {
			close(j.Events)
		}
	}()

	o.setStatus(jobID, JobRunning, "")
	o.emitJobEvent(jobID, JobEvent{JobID: jobID, Type: JobEventStatus, Status: JobRunning})

	result, err := o.detector.Analyze(ctx, req)
	if err != nil {
		status := JobFailed
		if ctx.Err() != nil {
			status = JobCanceled
			err = ctx.Err()
		}
		o.setStatus(jobID, status, err.Error())
		o.emitJobEvent(jobID, JobEvent{JobID: jobID, Type: JobEventStatus, Status: status, Error: err.Error()})
		return
	}

	o.jobsMu.Lock()
	if j, ok := o.jobs[jobID]; ok {
		j.Status = JobDone
		j.Result = result
	}
	o.jobsMu.Unlock()
	o.emitJobEvent(jobID, JobEvent{JobID: jobID, Type: JobEventResult, Status: JobDone, Result: result})
}

func (o *Orchestrator) setStatus(jobID string, status JobStatus, errMsg string) {
	o.jobsMu.Lock()
	defer o.jobsMu.Unlock()
	if j, ok := o.jobs[jobID]; ok {
		j.Status = status
		j.Error = errMsg
	}
}

// Analyze runs an analysis synchronously, bypassing the job machinery. The
// JSON API uses this path.
func (o *Orchestrator) Analyze(ctx context.Context, req *model.AnalysisRequest) (*model.AnalysisResponse, error) {
	return o.detector.Analyze(ctx, req)
}

// InFlight reports whether the session currently has an unsettled job.
func (o *Orchestrator) InFlight(sessionKey string) bool {
	o.jobsMu.Lock()
	defer o.jobsMu.Unlock()
	jobID, ok := o.inflight[sessionKey]
	if !ok {
		return false
	}
	j, ok := o.jobs[jobID]
	return ok && !settled(j.Status)
}

func (o *Orchestrator) CancelJob(jobID string) {
	o.jobsMu.Lock()
	cancel := o.jobCancels[jobID]
	o.jobsMu.Unlock()
	if cancel != nil {
		cancel()
	}
}

func (o *Orchestrator) GetJob(jobID string) *Job {
	o.jobsMu.Lock()
	defer o.jobsMu.Unlock()
	return o.jobs[jobID]
}

// Prune drops settled jobs older than the retention window.
func (o *Orchestrator) Prune(now time.Time) int {
	o.jobsMu.Lock()
	defer o.jobsMu.Unlock()
	removed := 0
	for id, j := range o.jobs {
		if settled(j.Status) && !j.EndedAt.IsZero() && now.Sub(j.EndedAt) > o.retention {
			delete(o.jobs, id)
			removed++
		}
	}
	return removed
}

func settled(s JobStatus) bool {
	return s == JobDone || s == JobFailed || s == JobCanceled
}

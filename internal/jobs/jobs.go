package jobs

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
)

type Status string

const (
	StatusRunning   Status = "running"
	StatusDone      Status = "done"
	StatusError     Status = "error"
	StatusCancelled Status = "cancelled"
)

var ErrJobNotFound = errors.New("job not found")

type Result struct {
	Kind     string   `json:"kind"`
	Rows     int      `json:"rows"`
	Output   string   `json:"output"`   // Full path
	Filename string   `json:"filename"` // Just filename for download
	Export   string   `json:"export,omitempty"`
	Summary  []string `json:"summary"`
	Problems []string `json:"problems,omitempty"`
}

type Job struct {
	ID        string
	Status    Status
	Logs      []string
	Progress  int // 0-100
	Result    *Result
	Error     string
	CreatedAt time.Time

	cancel context.CancelFunc
	mu     sync.RWMutex
}

// Snapshot is a consistent copy of a job for serialization.
type Snapshot struct {
	ID       string   `json:"id"`
	Status   Status   `json:"status"`
	Logs     []string `json:"logs"`
	Progress int      `json:"progress"`
	Result   *Result  `json:"result,omitempty"`
	Error    string   `json:"error,omitempty"`
}

func newJob() *Job {
	return &Job{
		ID:        uuid.New().String(),
		Status:    StatusRunning,
		Logs:      []string{},
		CreatedAt: time.Now(),
	}
}

func (j *Job) Log(msg string) {
	j.mu.Lock()
	defer j.mu.Unlock()
	ts := time.Now().Format("15:04:05")
	j.Logs = append(j.Logs, fmt.Sprintf("[%s] %s", ts, msg))
}

func (j *Job) SetProgress(current, total int, msg string) {
	j.mu.Lock()
	defer j.mu.Unlock()
	if total > 0 {
		j.Progress = int(float64(current) / float64(total) * 100)
	}
	if msg != "" {
		ts := time.Now().Format("15:04:05")
		j.Logs = append(j.Logs, fmt.Sprintf("[%s] %s", ts, msg))
	}
}

// Cancel asks the running work to stop; it is a no-op once the job ended.
func (j *Job) Cancel() {
	j.mu.RLock()
	cancel := j.cancel
	j.mu.RUnlock()
	if cancel != nil {
		cancel()
	}
}

func (j *Job) Snapshot() Snapshot {
	j.mu.RLock()
	defer j.mu.RUnlock()
	logs := make([]string, len(j.Logs))
	copy(logs, j.Logs)
	return Snapshot{
		ID:       j.ID,
		Status:   j.Status,
		Logs:     logs,
		Progress: j.Progress,
		Result:   j.Result,
		Error:    j.Error,
	}
}

func (j *Job) fail(status Status, msg string) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.Status = status
	j.Error = msg
	j.Logs = append(j.Logs, "[ERROR] "+msg)
}

func (j *Job) finish(res *Result) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.Status = StatusDone
	j.Result = res
	j.Progress = 100
	j.Logs = append(j.Logs, fmt.Sprintf("[%s] done", time.Now().Format("15:04:05")))
}

// Func is the work a job runs. It must honor ctx cancellation.
type Func func(ctx context.Context, job *Job) (*Result, error)

type Store struct {
	mu   sync.RWMutex
	jobs map[string]*Job
	wg   sync.WaitGroup
}

func NewStore() *Store {
	return &Store{jobs: make(map[string]*Job)}
}

// Start registers a job and runs fn in its own goroutine.
func (s *Store) Start(parent context.Context, fn Func) *Job {
	job := newJob()
	ctx, cancel := context.WithCancel(parent)
	job.cancel = cancel

	s.mu.Lock()
	s.jobs[job.ID] = job
	s.mu.Unlock()

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		defer cancel()
		s.run(ctx, job, fn)
	}()
	return job
}

func (s *Store) run(ctx context.Context, job *Job, fn Func) {
	defer func() {
		if r := recover(); r != nil {
			job.fail(StatusError, fmt.Sprintf("panic: %v", r))
		}
	}()

	res, err := fn(ctx, job)
	switch {
	case errors.Is(err, context.Canceled):
		job.fail(StatusCancelled, "cancelled")
	case err != nil:
		job.fail(StatusError, err.Error())
	default:
		job.finish(res)
	}
}

func (s *Store) Get(id string) (*Job, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	job, ok := s.jobs[id]
	if !ok {
		return nil, ErrJobNotFound
	}
	return job, nil
}

// Wait blocks until every started job has returned.
func (s *Store) Wait() {
	s.wg.Wait()
}

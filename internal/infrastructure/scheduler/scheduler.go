// Package scheduler runs long background jobs, such as deployment loops, on a
// bounded worker pool.
package scheduler

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// JobStatus represents the status of a scheduled job
type JobStatus string

const (
	JobStatusPending JobStatus = "PENDING"
	JobStatusRunning JobStatus = "RUNNING"
	JobStatusSuccess JobStatus = "SUCCESS"
	JobStatusFailed  JobStatus = "FAILED"
)

// Job identifies one unit of background work. ID is the aggregate the
// executor works on.
type Job struct {
	ID          uuid.UUID
	OwnerID     uuid.UUID
	Status      JobStatus
	Error       string
	SubmittedAt time.Time
	StartedAt   *time.Time
	CompletedAt *time.Time
}

// NewJob creates a pending job
func NewJob(id, ownerID uuid.UUID) *Job {
	return &Job{
		ID:          id,
		OwnerID:     ownerID,
		Status:      JobStatusPending,
		SubmittedAt: time.Now(),
	}
}

// Start marks the job as running
func (j *Job) Start() {
	now := time.Now()
	j.Status = JobStatusRunning
	j.StartedAt = &now
	j.Error = ""
}

// Complete marks the job as successful
func (j *Job) Complete() {
	now := time.Now()
	j.Status = JobStatusSuccess
	j.CompletedAt = &now
}

// Fail marks the job as failed
func (j *Job) Fail(err string) {
	now := time.Now()
	j.Status = JobStatusFailed
	j.CompletedAt = &now
	j.Error = err
}

// JobExecutor runs one job
type JobExecutor interface {
	Execute(ctx context.Context, job *Job) error
}

// ExecutorFunc adapts a function to JobExecutor
type ExecutorFunc func(ctx context.Context, job *Job) error

// Execute calls f
func (f ExecutorFunc) Execute(ctx context.Context, job *Job) error { return f(ctx, job) }

// SchedulerConfig holds scheduler configuration
type SchedulerConfig struct {
	Name              string
	MaxConcurrentJobs int
	QueueSize         int
	JobTimeout        time.Duration
}

// DefaultSchedulerConfig returns default scheduler configuration
func DefaultSchedulerConfig() SchedulerConfig {
	return SchedulerConfig{
		Name:              "jobs",
		MaxConcurrentJobs: 4,
		QueueSize:         100,
		JobTimeout:        30 * time.Minute,
	}
}

// Scheduler feeds submitted jobs to a fixed pool of workers
type Scheduler struct {
	config   SchedulerConfig
	executor JobExecutor
	logger   *zap.Logger

	jobs      chan *Job
	cancel    context.CancelFunc
	wg        sync.WaitGroup
	mu        sync.Mutex
	isRunning bool
}

// NewScheduler creates a new scheduler instance
func NewScheduler(config SchedulerConfig, executor JobExecutor, logger *zap.Logger) *Scheduler {
	def := DefaultSchedulerConfig()
	if config.MaxConcurrentJobs <= 0 {
		config.MaxConcurrentJobs = def.MaxConcurrentJobs
	}
	if config.QueueSize <= 0 {
		config.QueueSize = def.QueueSize
	}
	if config.JobTimeout <= 0 {
		config.JobTimeout = def.JobTimeout
	}
	if config.Name == "" {
		config.Name = def.Name
	}
	return &Scheduler{
		config:   config,
		executor: executor,
		logger:   logger.With(zap.String("scheduler", config.Name)),
		jobs:     make(chan *Job, config.QueueSize),
	}
}

// Start starts the worker pool. Jobs keep running until Stop or until ctx is cancelled.
func (s *Scheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.isRunning {
		return nil
	}
	s.isRunning = true

	ctx, cancel := context.WithCancel(ctx)
	s.cancel = cancel

	for i := 0; i < s.config.MaxConcurrentJobs; i++ {
		s.wg.Add(1)
		go s.worker(ctx, i)
	}

	s.logger.Info("Scheduler started",
		zap.Int("workers", s.config.MaxConcurrentJobs),
		zap.Duration("job_timeout", s.config.JobTimeout),
	)
	return nil
}

// Stop cancels running jobs and waits for the workers to exit
func (s *Scheduler) Stop(ctx context.Context) error {
	s.mu.Lock()
	if !s.isRunning {
		s.mu.Unlock()
		return nil
	}
	s.isRunning = false
	if s.cancel != nil {
		s.cancel()
	}
	close(s.jobs)
	s.mu.Unlock()

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		s.logger.Info("Scheduler stopped gracefully")
		return nil
	case <-ctx.Done():
		s.logger.Warn("Scheduler stop timed out")
		return ctx.Err()
	}
}

// SubmitJob queues a job without blocking
func (s *Scheduler) SubmitJob(job *Job) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.isRunning {
		return ErrSchedulerNotRunning
	}

	select {
	case s.jobs <- job:
		s.logger.Debug("Job submitted", zap.String("job_id", job.ID.String()))
		return nil
	default:
		return ErrJobQueueFull
	}
}

// Enqueue submits work on the aggregate id for ownerID
func (s *Scheduler) Enqueue(id, ownerID uuid.UUID) error {
	return s.SubmitJob(NewJob(id, ownerID))
}

func (s *Scheduler) worker(ctx context.Context, workerID int) {
	defer s.wg.Done()

	for {
		select {
		case <-ctx.Done():
			return
		case job, ok := <-s.jobs:
			if !ok {
				return
			}
			s.processJob(ctx, job, workerID)
		}
	}
}

func (s *Scheduler) processJob(ctx context.Context, job *Job, workerID int) {
	job.Start()
	s.logger.Debug("Processing job",
		zap.Int("worker_id", workerID),
		zap.String("job_id", job.ID.String()),
	)

	jobCtx, cancel := context.WithTimeout(ctx, s.config.JobTimeout)
	defer cancel()

	defer func() {
		if r := recover(); r != nil {
			job.Fail("panic")
			s.logger.Error("Job panicked",
				zap.String("job_id", job.ID.String()),
				zap.Any("panic", r),
				zap.Stack("stack"),
			)
		}
	}()

	if err := s.executor.Execute(jobCtx, job); err != nil {
		job.Fail(err.Error())
		s.logger.Error("Job failed",
			zap.Int("worker_id", workerID),
			zap.String("job_id", job.ID.String()),
			zap.Error(err),
		)
		return
	}

	job.Complete()
	s.logger.Debug("Job completed",
		zap.Int("worker_id", workerID),
		zap.String("job_id", job.ID.String()),
		zap.Duration("duration", time.Since(*job.StartedAt)),
	)
}

package job

import (
	"context"
	"sync"
	"time"

	"token-radar/internal/radar/monitor"

	"go.uber.org/zap"
)

// JobFunc 作业执行函数
type JobFunc func(ctx context.Context) error

// Scheduler 作业调度器
type Scheduler struct {
	jobs    map[string]*ScheduledJob
	running bool
	mu      sync.Mutex
	logger  *zap.Logger
}

// ScheduledJob 一个调度的作业
type ScheduledJob struct {
	name     string
	interval time.Duration
	fn       JobFunc
	stopCh   chan struct{}
	done     sync.WaitGroup
	once     bool

	mu     sync.Mutex
	cancel context.CancelFunc
}

func NewScheduler(logger *zap.Logger) *Scheduler {
	return &Scheduler{
		jobs:   make(map[string]*ScheduledJob),
		logger: logger,
	}
}

// RegisterJob interval <= 0 时忽略
func (s *Scheduler) RegisterJob(name string, interval time.Duration, fn JobFunc) {
	if interval <= 0 {
		s.logger.Info("Job disabled", zap.String("job", name))
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.jobs[name] = &ScheduledJob{
		name:     name,
		interval: interval,
		fn:       fn,
		stopCh:   make(chan struct{}),
	}

	s.logger.Info("Registered job", zap.String("job", name), zap.Duration("interval", interval))
}

// RegisterOnceJob 注册只运行一次的作业
func (s *Scheduler) RegisterOnceJob(name string, fn JobFunc) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.jobs[name] = &ScheduledJob{
		name:   name,
		fn:     fn,
		stopCh: make(chan struct{}),
		once:   true,
	}

	s.logger.Info("Registered once job", zap.String("job", name))
}

// Jobs 已注册的作业名
func (s *Scheduler) Jobs() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	names := make([]string, 0, len(s.jobs))
	for name := range s.jobs {
		names = append(names, name)
	}
	return names
}

func (s *Scheduler) Start(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		return
	}
	s.running = true

	for _, j := range s.jobs {
		j.done.Add(1)
		go func() {
			defer j.done.Done()
			if j.once {
				s.logger.Info("Running one-time job", zap.String("job", j.name))
				s.executeJob(ctx, j)
			} else {
				s.runJob(ctx, j)
			}
		}()
	}
}

// Stop 取消执行中的作业并等待退出，ctx 到期后不再等待
func (s *Scheduler) Stop(ctx context.Context) {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return
	}
	s.running = false

	for _, j := range s.jobs {
		j.mu.Lock()
		if j.cancel != nil {
			j.cancel()
		}
		j.mu.Unlock()
		close(j.stopCh)
	}
	jobs := make([]*ScheduledJob, 0, len(s.jobs))
	for _, j := range s.jobs {
		jobs = append(jobs, j)
	}
	s.mu.Unlock()

	s.logger.Warn("Stopping scheduler...")

	waitCh := make(chan struct{})
	go func() {
		for _, j := range jobs {
			j.done.Wait()
		}
		close(waitCh)
	}()

	select {
	case <-waitCh:
		s.logger.Info("All jobs stopped successfully")
	case <-ctx.Done():
		s.logger.Warn("Context deadline exceeded while waiting for jobs to stop")
	}
}

func (s *Scheduler) runJob(ctx context.Context, job *ScheduledJob) {
	s.logger.Info("Running job", zap.String("job", job.name))

	ticker := time.NewTicker(job.interval)
	defer ticker.Stop()

	// 立即运行一次
	s.executeJob(ctx, job)

	for {
		select {
		case <-ticker.C:
			s.executeJob(ctx, job)
		case <-job.stopCh:
			s.logger.Info("Stopping job", zap.String("job", job.name))
			return
		case <-ctx.Done():
			s.logger.Info("Context cancelled, stopping job", zap.String("job", job.name))
			return
		}
	}
}

// jobContext 一次性作业只可取消，周期作业超时为间隔的一半
func jobContext(ctx context.Context, job *ScheduledJob) (context.Context, context.CancelFunc) {
	if job.once {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, job.interval/2)
}

// executeJob 执行作业并记录结果
func (s *Scheduler) executeJob(ctx context.Context, job *ScheduledJob) {
	jobCtx, cancel := jobContext(ctx, job)
	job.mu.Lock()
	job.cancel = cancel
	job.mu.Unlock()
	defer cancel()

	s.logger.Debug("Starting job execution", zap.String("job", job.name))
	startTime := time.Now()

	err := job.fn(jobCtx)
	duration := time.Since(startTime)
	monitor.JobDuration.WithLabelValues(job.name).Observe(duration.Seconds())

	if err != nil {
		monitor.JobRuns.WithLabelValues(job.name, "error").Inc()
		s.logger.Error("Job execution failed",
			zap.String("job", job.name),
			zap.Error(err),
			zap.Duration("duration", duration))
		return
	}
	monitor.JobRuns.WithLabelValues(job.name, "ok").Inc()
	s.logger.Debug("Job execution completed",
		zap.String("job", job.name),
		zap.Duration("duration", duration))
}

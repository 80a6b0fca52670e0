package scheduler

import (
	"context"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"dealradar/internal/models"
	"dealradar/internal/pkg/httpclient"
	"dealradar/internal/repository"
)

// Repos bundles the repositories the scheduler's periodic tasks need.
type Repos struct {
	Job     *repository.ScrapeJobRepository
	Product *repository.ProductRepository
	Setting *repository.SettingRepository
}

// marketplaceBases are probed by the reachability check.
var marketplaceBases = map[string]string{
	"amazon":  "https://www.amazon.com",
	"rakuten": "https://www.rakuten.co.jp",
}

// Scheduler owns the process's periodic work: the per-minute due-job sweep,
// the daily product retention sweep, and the marketplace reachability check.
// It is a plain service object; the composition root constructs exactly one.
type Scheduler struct {
	cron       *cron.Cron
	repos      *Repos
	executor   *Executor
	recurrence *Recurrence
	logger     *zap.Logger
	now        func() time.Time

	mu      sync.Mutex
	started bool
}

func New(repos *Repos, executor *Executor, recurrence *Recurrence, logger *zap.Logger) *Scheduler {
	return &Scheduler{
		cron:       cron.New(cron.WithSeconds()),
		repos:      repos,
		executor:   executor,
		recurrence: recurrence,
		logger:     logger,
		now:        time.Now,
	}
}

// Start reconciles stale next-run times, registers the periodic tasks and
// launches the timer. Calling it a second time is a no-op.
func (s *Scheduler) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.started {
		return
	}
	s.started = true

	s.logger.Info("Starting scrape scheduler...")

	s.reconcile()

	// Due-job sweep - every minute
	s.cron.AddFunc("0 * * * * *", func() {
		s.logger.Debug("Running: due job sweep")
		s.tick()
	})

	// Product retention - daily at 3 AM
	s.cron.AddFunc("0 0 3 * * *", func() {
		s.logger.Debug("Running: retention sweep")
		s.retentionSweep()
	})

	// Marketplace reachability - every 5 minutes
	s.cron.AddFunc("0 */5 * * * *", func() {
		s.logger.Debug("Running: reachability check")
		s.reachabilityCheck()
	})

	s.cron.Start()
	s.logger.Info("Scrape scheduler started")
}

// Stop halts the timer and returns a context that is done once in-flight
// tasks finish.
func (s *Scheduler) Stop() context.Context {
	return s.cron.Stop()
}

// reconcile recomputes absent or past next-run times for active jobs at
// process start, without running any of them.
func (s *Scheduler) reconcile() {
	jobs, err := s.repos.Job.FindActive()
	if err != nil {
		s.logger.Error("Startup reconciliation failed to list jobs", zap.Error(err))
		return
	}

	now := s.now()
	for _, job := range jobs {
		if job.NextRunAt != nil && job.NextRunAt.After(now) {
			continue
		}

		next, nerr := s.recurrence.Next(job.Schedule, now)
		warning := ""
		if nerr != nil {
			warning = models.ScheduleWarningInvalid
		}
		if err := s.repos.Job.Update(job.ID, map[string]interface{}{
			"next_run_at":      next,
			"schedule_warning": warning,
		}); err != nil {
			s.logger.Error("Failed to reconcile job schedule",
				zap.String("job_id", job.ID), zap.Error(err))
		}
	}
}

// tick selects due jobs in next-run order and feeds them to the executor
// through a worker pool bounded by the max_concurrent_jobs setting. One
// job's failure never blocks the rest of the tick.
func (s *Scheduler) tick() {
	defer s.recoverFromPanic("tick")

	due, err := s.repos.Job.FindDue(s.now())
	if err != nil {
		s.logger.Error("Due-job query failed", zap.Error(err))
		return
	}
	if len(due) == 0 {
		return
	}

	sem := make(chan struct{}, s.concurrencyLimit())
	var wg sync.WaitGroup
	for i := range due {
		job := due[i]
		sem <- struct{}{}
		wg.Add(1)
		go func() {
			defer wg.Done()
			defer func() { <-sem }()
			defer s.recoverFromPanic("job " + job.ID)

			res := s.executor.Run(context.Background(), &job)
			s.logger.Info("Job run finished",
				zap.String("job_id", job.ID),
				zap.String("name", job.Name),
				zap.String("status", res.Status),
				zap.Int("items_scraped", res.ItemsScraped),
			)
		}()
	}
	wg.Wait()
}

func (s *Scheduler) concurrencyLimit() int {
	setting, err := s.repos.Setting.Get()
	if err != nil || setting.MaxConcurrentJobs <= 0 {
		return 1
	}
	return setting.MaxConcurrentJobs
}

// RunNow executes one job immediately, regardless of its due state. The
// executor's inactive guard still applies.
func (s *Scheduler) RunNow(ctx context.Context, id string) (*models.ScrapeJob, Result, error) {
	job, err := s.repos.Job.FindByID(id)
	if err != nil {
		return nil, Result{}, err
	}

	res := s.executor.Run(ctx, job)

	updated, err := s.repos.Job.FindByID(id)
	if err != nil {
		updated = job
	}
	return updated, res, nil
}

func (s *Scheduler) retentionSweep() {
	defer s.recoverFromPanic("retentionSweep")

	setting, err := s.repos.Setting.Get()
	if err != nil || setting.DataRetentionDays <= 0 {
		return
	}

	removed, err := s.repos.Product.DeleteOlderThan(setting.DataRetentionDays)
	if err != nil {
		s.logger.Error("Retention sweep failed", zap.Error(err))
		return
	}
	if removed > 0 {
		s.logger.Info("Retention sweep removed products",
			zap.Int64("removed", removed),
			zap.Int("retention_days", setting.DataRetentionDays),
		)
	}
}

func (s *Scheduler) reachabilityCheck() {
	defer s.recoverFromPanic("reachabilityCheck")

	client := httpclient.New().WithTimeout(10 * time.Second)
	if setting, err := s.repos.Setting.Get(); err == nil && setting.UserAgent != "" {
		client = client.WithUserAgent(setting.UserAgent)
	}

	for name, base := range marketplaceBases {
		if _, err := client.Get(base); err != nil {
			s.logger.Warn("Marketplace unreachable",
				zap.String("source", name),
				zap.String("url", base),
				zap.Error(err),
			)
		}
	}
}

func (s *Scheduler) recoverFromPanic(task string) {
	if r := recover(); r != nil {
		s.logger.Error("Scheduled task panicked", zap.String("task", task), zap.Any("error", r))
	}
}

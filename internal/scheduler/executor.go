package scheduler

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"dealradar/internal/models"
	"dealradar/internal/repository"
	"dealradar/internal/scraper"
)

// ProductScraper runs the extraction pipeline for one target.
type ProductScraper interface {
	Scrape(ctx context.Context, target string, src models.Source) ([]scraper.Candidate, error)
}

// StatusSkipped is the executor result for an inactive job; the job record
// itself is untouched.
const StatusSkipped = "skipped"

// Result summarizes one executor pass over a job.
type Result struct {
	Status       string `json:"status"`
	ItemsScraped int    `json:"items_scraped"`
	Message      string `json:"message"`
}

// Executor runs one job to completion: running mark, extraction, dedup
// persistence, bounded log append, next-run recomputation.
type Executor struct {
	jobs       *repository.ScrapeJobRepository
	products   *repository.ProductRepository
	scraper    ProductScraper
	recurrence *Recurrence
	logger     *zap.Logger
	now        func() time.Time
}

func NewExecutor(
	jobs *repository.ScrapeJobRepository,
	products *repository.ProductRepository,
	sc ProductScraper,
	recurrence *Recurrence,
	logger *zap.Logger,
) *Executor {
	return &Executor{
		jobs:       jobs,
		products:   products,
		scraper:    sc,
		recurrence: recurrence,
		logger:     logger,
		now:        time.Now,
	}
}

// Run executes a job and always completes the exit sequence: whatever
// extraction or persistence does, the job leaves with status success or
// failed, fresh timestamps and a recomputed next run. Extraction errors
// never escape; they become the failed log entry's message.
func (e *Executor) Run(ctx context.Context, job *models.ScrapeJob) Result {
	if !job.IsActive {
		return Result{Status: StatusSkipped, Message: "job is not active"}
	}

	started := e.now()

	var inserted int
	var runErr error
	if err := e.jobs.MarkRunning(job.ID); err != nil {
		e.logger.Error("Failed to mark job running", zap.String("job_id", job.ID), zap.Error(err))
		runErr = fmt.Errorf("mark running: %w", err)
	} else {
		inserted, runErr = e.execute(ctx, job)
	}

	finished := e.now()
	entry := models.RunLog{
		RunAt:        finished,
		DurationMs:   finished.Sub(started).Milliseconds(),
		ItemsScraped: inserted,
	}

	status := models.JobStatusSuccess
	if runErr != nil {
		status = models.JobStatusFailed
		entry.Status = models.RunStatusFailed
		entry.Message = runErr.Error()
	} else {
		entry.Status = models.RunStatusSuccess
		entry.Message = fmt.Sprintf("scraped %d new products", inserted)
	}

	nextRun, warning := e.nextRun(job.Schedule, finished)
	if err := e.jobs.FinishRun(job, entry, status, nextRun, warning); err != nil {
		e.logger.Error("Failed to persist job outcome", zap.String("job_id", job.ID), zap.Error(err))
	}

	return Result{Status: status, ItemsScraped: inserted, Message: entry.Message}
}

func (e *Executor) nextRun(expr string, now time.Time) (time.Time, string) {
	next, err := e.recurrence.Next(expr, now)
	if err != nil {
		return next, models.ScheduleWarningInvalid
	}
	return next, ""
}

// execute dispatches by target kind, scrapes, and batch-persists. The batch
// starts only after the full candidate list is in hand; a mid-batch
// persistence error aborts the remainder and fails the run.
func (e *Executor) execute(ctx context.Context, job *models.ScrapeJob) (int, error) {
	var target string
	switch job.Type {
	case models.KindKeyword:
		target = job.Keyword
	case models.KindURL:
		target = job.URL
	default:
		return 0, fmt.Errorf("unsupported job type %q", job.Type)
	}
	if target == "" {
		return 0, fmt.Errorf("job has no %s target", job.Type)
	}

	src := models.Source(strings.ToLower(string(job.Source)))
	candidates, err := e.scraper.Scrape(ctx, target, src)
	if err != nil {
		if errors.Is(err, scraper.ErrNoProducts) {
			return 0, nil
		}
		return 0, err
	}

	inserted := 0
	for i := range candidates {
		ok, err := e.products.InsertIfAbsent(candidates[i].ToProduct())
		if err != nil {
			return inserted, err
		}
		if ok {
			inserted++
		}
	}
	return inserted, nil
}

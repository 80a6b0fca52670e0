package scheduler

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"dealradar/internal/models"
	"dealradar/internal/repository"
	"dealradar/internal/scraper"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	path := filepath.Join(t.TempDir(), "test.db")
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := db.AutoMigrate(&models.ScrapeJob{}, &models.Product{}, &models.Setting{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

// stubScraper returns a fixed candidate list or error for every target.
type stubScraper struct {
	candidates []scraper.Candidate
	err        error
	calls      int
}

func (s *stubScraper) Scrape(ctx context.Context, target string, src models.Source) ([]scraper.Candidate, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	return s.candidates, nil
}

type executorFixture struct {
	jobs     *repository.ScrapeJobRepository
	products *repository.ProductRepository
	executor *Executor
	scraper  *stubScraper
}

func newExecutorFixture(t *testing.T, sc *stubScraper) *executorFixture {
	t.Helper()
	db := newTestDB(t)
	jobs := repository.NewScrapeJobRepository(db)
	products := repository.NewProductRepository(db)
	ex := NewExecutor(jobs, products, sc, NewRecurrence(), zap.NewNop())
	return &executorFixture{jobs: jobs, products: products, executor: ex, scraper: sc}
}

func makeJob(t *testing.T, repo *repository.ScrapeJobRepository, mutate func(*models.ScrapeJob)) *models.ScrapeJob {
	t.Helper()
	job := &models.ScrapeJob{
		Name:     "wireless earbuds",
		Type:     models.KindKeyword,
		Keyword:  "wireless earbuds",
		Source:   models.SourceAmazon,
		Schedule: "0 * * * *",
		IsActive: true,
	}
	if mutate != nil {
		mutate(job)
	}
	require.NoError(t, repo.Create(job))
	return job
}

func TestExecutorRun_Success(t *testing.T) {
	f := newExecutorFixture(t, &stubScraper{candidates: []scraper.Candidate{
		{Title: "Earbuds A", Source: models.SourceAmazon, SourceURL: "https://www.amazon.com/dp/A"},
		{Title: "Earbuds B", Source: models.SourceAmazon, SourceURL: "https://www.amazon.com/dp/B"},
	}})
	job := makeJob(t, f.jobs, nil)

	res := f.executor.Run(context.Background(), job)

	assert.Equal(t, models.JobStatusSuccess, res.Status)
	assert.Equal(t, 2, res.ItemsScraped)

	got, err := f.jobs.FindByID(job.ID)
	require.NoError(t, err)
	assert.Equal(t, models.JobStatusSuccess, got.Status)
	assert.NotNil(t, got.LastRunAt)
	require.NotNil(t, got.NextRunAt)
	assert.True(t, got.NextRunAt.After(time.Now()), "next run is recomputed into the future")
	assert.Empty(t, got.ScheduleWarning)

	logs := got.RunLogs()
	require.Len(t, logs, 1)
	assert.Equal(t, models.RunStatusSuccess, logs[0].Status)
	assert.Equal(t, 2, logs[0].ItemsScraped)

	_, total, err := f.products.FindAll(50, 1, "")
	require.NoError(t, err)
	assert.EqualValues(t, 2, total)
}

func TestExecutorRun_DuplicatesPersistNothing(t *testing.T) {
	f := newExecutorFixture(t, &stubScraper{candidates: []scraper.Candidate{
		{Title: "Earbuds A", Source: models.SourceAmazon, SourceURL: "https://www.amazon.com/dp/A"},
	}})
	job := makeJob(t, f.jobs, nil)

	first := f.executor.Run(context.Background(), job)
	require.Equal(t, 1, first.ItemsScraped)

	job, err := f.jobs.FindByID(job.ID)
	require.NoError(t, err)
	second := f.executor.Run(context.Background(), job)

	assert.Equal(t, models.JobStatusSuccess, second.Status, "a duplicate-only run still succeeds")
	assert.Equal(t, 0, second.ItemsScraped)

	_, total, err := f.products.FindAll(50, 1, "")
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
}

func TestExecutorRun_InactiveJobIsSkipped(t *testing.T) {
	f := newExecutorFixture(t, &stubScraper{})
	job := makeJob(t, f.jobs, func(j *models.ScrapeJob) {
		j.IsActive = false
		j.Status = models.JobStatusDisabled
	})

	res := f.executor.Run(context.Background(), job)

	assert.Equal(t, StatusSkipped, res.Status)
	assert.Zero(t, f.scraper.calls, "extraction never starts for an inactive job")

	got, err := f.jobs.FindByID(job.ID)
	require.NoError(t, err)
	assert.Equal(t, models.JobStatusDisabled, got.Status)
	assert.Nil(t, got.LastRunAt, "skipped run leaves the record untouched")
	assert.Empty(t, got.RunLogs())
}

func TestExecutorRun_ExtractionFailure(t *testing.T) {
	netErr := &scraper.NetworkError{
		URL:       "https://www.amazon.com/s?k=wireless+earbuds",
		Timestamp: time.Now(),
		Err:       errors.New("connection refused"),
	}
	f := newExecutorFixture(t, &stubScraper{err: netErr})
	job := makeJob(t, f.jobs, nil)

	res := f.executor.Run(context.Background(), job)

	assert.Equal(t, models.JobStatusFailed, res.Status)
	assert.Zero(t, res.ItemsScraped)

	got, err := f.jobs.FindByID(job.ID)
	require.NoError(t, err)
	assert.Equal(t, models.JobStatusFailed, got.Status, "job is never left at running")
	require.NotNil(t, got.NextRunAt)
	assert.True(t, got.NextRunAt.After(time.Now()), "failed run still schedules the next one")

	logs := got.RunLogs()
	require.Len(t, logs, 1)
	assert.Equal(t, models.RunStatusFailed, logs[0].Status)
	assert.Contains(t, logs[0].Message, "connection refused")
}

func TestExecutorRun_EmptyResultSucceeds(t *testing.T) {
	f := newExecutorFixture(t, &stubScraper{err: scraper.ErrNoProducts})
	job := makeJob(t, f.jobs, nil)

	res := f.executor.Run(context.Background(), job)

	assert.Equal(t, models.JobStatusSuccess, res.Status, "no matches is not a failure")
	assert.Zero(t, res.ItemsScraped)
}

func TestExecutorRun_InvalidScheduleWarning(t *testing.T) {
	f := newExecutorFixture(t, &stubScraper{candidates: []scraper.Candidate{
		{Title: "Earbuds A", Source: models.SourceAmazon, SourceURL: "https://www.amazon.com/dp/A"},
	}})
	job := makeJob(t, f.jobs, func(j *models.ScrapeJob) {
		j.Schedule = "not a cron"
	})

	res := f.executor.Run(context.Background(), job)
	assert.Equal(t, models.JobStatusSuccess, res.Status)

	got, err := f.jobs.FindByID(job.ID)
	require.NoError(t, err)
	assert.Equal(t, models.ScheduleWarningInvalid, got.ScheduleWarning)
	require.NotNil(t, got.NextRunAt)
	assert.WithinDuration(t, time.Now().Add(24*time.Hour), *got.NextRunAt, time.Minute,
		"malformed schedule degrades to a daily retry")
}

func TestExecutorRun_UnsupportedKindFails(t *testing.T) {
	f := newExecutorFixture(t, &stubScraper{})
	job := makeJob(t, f.jobs, func(j *models.ScrapeJob) {
		j.Type = models.KindSitemap
		j.Keyword = ""
		j.URL = "https://example.com/sitemap.xml"
	})

	res := f.executor.Run(context.Background(), job)

	assert.Equal(t, models.JobStatusFailed, res.Status)
	assert.Contains(t, res.Message, "unsupported job type")
	assert.Zero(t, f.scraper.calls)
}

func TestExecutorRun_MarkRunningFailureStillFinishes(t *testing.T) {
	db := newTestDB(t)
	jobs := repository.NewScrapeJobRepository(db)
	products := repository.NewProductRepository(db)
	sc := &stubScraper{candidates: []scraper.Candidate{
		{Title: "Earbuds A", Source: models.SourceAmazon, SourceURL: "https://www.amazon.com/dp/A"},
	}}
	ex := NewExecutor(jobs, products, sc, NewRecurrence(), zap.NewNop())
	job := makeJob(t, jobs, nil)

	// First update (the running mark) fails, later updates succeed.
	failedOnce := false
	require.NoError(t, db.Callback().Update().Before("gorm:update").Register("fail_first_update", func(tx *gorm.DB) {
		if !failedOnce {
			failedOnce = true
			tx.AddError(errors.New("database is locked"))
		}
	}))

	res := ex.Run(context.Background(), job)

	assert.Equal(t, models.JobStatusFailed, res.Status)
	assert.Zero(t, sc.calls, "extraction never starts when the running mark fails")

	got, err := jobs.FindByID(job.ID)
	require.NoError(t, err)
	assert.Equal(t, models.JobStatusFailed, got.Status)
	require.NotNil(t, got.NextRunAt)
	assert.True(t, got.NextRunAt.After(time.Now()), "failed mark still schedules the next run")

	logs := got.RunLogs()
	require.Len(t, logs, 1, "the failure lands in the run history")
	assert.Equal(t, models.RunStatusFailed, logs[0].Status)
	assert.Contains(t, logs[0].Message, "database is locked")
}

func TestExecutorRun_LogHistoryStaysBounded(t *testing.T) {
	f := newExecutorFixture(t, &stubScraper{err: scraper.ErrNoProducts})
	job := makeJob(t, f.jobs, func(j *models.ScrapeJob) {
		var history []models.RunLog
		for i := 0; i < models.MaxRunLogs; i++ {
			history = append(history, models.RunLog{
				RunAt:  time.Now().Add(time.Duration(i-60) * time.Hour),
				Status: models.RunStatusSuccess,
			})
		}
		j.Logs = models.EncodeRunLogs(history)
	})

	f.executor.Run(context.Background(), job)

	got, err := f.jobs.FindByID(job.ID)
	require.NoError(t, err)
	assert.Len(t, got.RunLogs(), models.MaxRunLogs)
}

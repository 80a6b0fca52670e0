package repository

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"dealradar/internal/models"
)

// ErrDuplicateJob is returned when a create collides with an existing job on
// (source, name|keyword|url).
var ErrDuplicateJob = errors.New("a job with the same source and target already exists")

// ScrapeJobRepository handles scheduled scrape-job definitions.
type ScrapeJobRepository struct {
	db *gorm.DB
}

func NewScrapeJobRepository(db *gorm.DB) *ScrapeJobRepository {
	return &ScrapeJobRepository{db: db}
}

// Create inserts a new job, assigning an id when absent. Duplicate
// (source, name|keyword|url) combinations are rejected.
func (r *ScrapeJobRepository) Create(job *models.ScrapeJob) error {
	if job.ID == "" {
		job.ID = uuid.NewString()
	}
	if job.Status == "" {
		job.Status = models.JobStatusIdle
	}
	if job.Logs == "" {
		job.Logs = "[]"
	}

	dup, err := r.hasDuplicate(job)
	if err != nil {
		return err
	}
	if dup {
		return ErrDuplicateJob
	}

	return r.db.Create(job).Error
}

func (r *ScrapeJobRepository) hasDuplicate(job *models.ScrapeJob) (bool, error) {
	q := r.db.Model(&models.ScrapeJob{}).
		Where("source = ? AND id != ?", job.Source, job.ID)

	cond := r.db.Where("name = ?", job.Name)
	if job.Keyword != "" {
		cond = cond.Or("keyword = ?", job.Keyword)
	}
	if job.URL != "" {
		cond = cond.Or("url = ?", job.URL)
	}

	var count int64
	if err := q.Where(cond).Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// FindAll returns every job, newest first.
func (r *ScrapeJobRepository) FindAll() ([]models.ScrapeJob, error) {
	var jobs []models.ScrapeJob
	err := r.db.Order("created_at DESC").Find(&jobs).Error
	return jobs, err
}

func (r *ScrapeJobRepository) FindByID(id string) (*models.ScrapeJob, error) {
	var job models.ScrapeJob
	if err := r.db.Where("id = ?", id).First(&job).Error; err != nil {
		return nil, err
	}
	return &job, nil
}

// FindDue returns active jobs whose next run time has passed and which are
// not currently executing, in ascending next_run_at order. The status filter
// is what keeps a job from being selected twice; there is no separate lock.
func (r *ScrapeJobRepository) FindDue(now time.Time) ([]models.ScrapeJob, error) {
	var jobs []models.ScrapeJob
	err := r.db.
		Where("is_active = ? AND next_run_at IS NOT NULL AND next_run_at <= ? AND status != ?",
			true, now, models.JobStatusRunning).
		Order("next_run_at ASC").
		Find(&jobs).Error
	return jobs, err
}

// FindActive returns every active job, for startup reconciliation.
func (r *ScrapeJobRepository) FindActive() ([]models.ScrapeJob, error) {
	var jobs []models.ScrapeJob
	err := r.db.Where("is_active = ?", true).Find(&jobs).Error
	return jobs, err
}

func (r *ScrapeJobRepository) Update(id string, updates map[string]interface{}) error {
	return r.db.Model(&models.ScrapeJob{}).Where("id = ?", id).Updates(updates).Error
}

// MarkRunning durably flags the job before extraction begins so due-job scans
// exclude it.
func (r *ScrapeJobRepository) MarkRunning(id string) error {
	return r.Update(id, map[string]interface{}{"status": models.JobStatusRunning})
}

// FinishRun records the outcome of one executor pass: timestamps, recomputed
// next run, terminal status, schedule warning, and the bounded log append.
func (r *ScrapeJobRepository) FinishRun(job *models.ScrapeJob, entry models.RunLog, status string, nextRunAt time.Time, scheduleWarning string) error {
	logs := append(job.RunLogs(), entry)
	return r.Update(job.ID, map[string]interface{}{
		"status":           status,
		"schedule_warning": scheduleWarning,
		"last_run_at":      entry.RunAt,
		"next_run_at":      nextRunAt,
		"logs":             models.EncodeRunLogs(logs),
	})
}

func (r *ScrapeJobRepository) Delete(id string) error {
	return r.db.Where("id = ?", id).Delete(&models.ScrapeJob{}).Error
}

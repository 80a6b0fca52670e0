package api

import (
	"errors"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"dealradar/internal/middleware"
	"dealradar/internal/models"
	"dealradar/internal/repository"
	"dealradar/internal/scheduler"
)

// JobHandler handles all scrape-job API actions.
type JobHandler struct {
	repos      *Repos
	scheduler  *scheduler.Scheduler
	recurrence *scheduler.Recurrence
	deduper    middleware.RunDeduper
	logger     *zap.Logger
}

func NewJobHandler(
	repos *Repos,
	sched *scheduler.Scheduler,
	recurrence *scheduler.Recurrence,
	deduper middleware.RunDeduper,
	logger *zap.Logger,
) *JobHandler {
	return &JobHandler{
		repos:      repos,
		scheduler:  sched,
		recurrence: recurrence,
		deduper:    deduper,
		logger:     logger,
	}
}

// Handle routes scrape-job API requests.
// POST /api/jobs
func (h *JobHandler) Handle(c echo.Context) error {
	action, body, err := parseBodyAction(c)
	if err != nil {
		return errorResponse(c, "Invalid request body")
	}

	switch action {
	case "jobs":
		return h.listJobs(c)
	case "job":
		return h.getJob(c, body)
	case "job_add":
		return h.addJob(c, body)
	case "job_edit":
		return h.editJob(c, body)
	case "job_toggle":
		return h.toggleJob(c, body)
	case "job_delete":
		return h.deleteJob(c, body)
	case "job_run":
		return h.runJob(c, body)
	default:
		return errorResponse(c, "Unknown action: "+action)
	}
}

func (h *JobHandler) listJobs(c echo.Context) error {
	jobs, err := h.repos.Job.FindAll()
	if err != nil {
		h.logger.Error("Failed to list jobs", zap.Error(err))
		return errorResponse(c, "Failed to retrieve jobs")
	}
	return successResponse(c, "Successful", map[string]interface{}{"jobs": jobs})
}

func (h *JobHandler) getJob(c echo.Context, body map[string]interface{}) error {
	id := getStringField(body, "id")
	if id == "" {
		return errorResponse(c, "id is required")
	}

	job, err := h.repos.Job.FindByID(id)
	if err != nil {
		return errorResponse(c, "Job not found")
	}

	return successResponse(c, "Successful", map[string]interface{}{
		"job":  job,
		"logs": job.RunLogs(),
	})
}

func (h *JobHandler) addJob(c echo.Context, body map[string]interface{}) error {
	job := &models.ScrapeJob{
		Name:     getStringField(body, "name"),
		Type:     models.TargetKind(getStringField(body, "type")),
		Keyword:  getStringField(body, "keyword"),
		URL:      getStringField(body, "url"),
		Source:   models.Source(getStringField(body, "source")),
		Schedule: getStringField(body, "schedule"),
		IsActive: getBoolField(body, "is_active", true),
		Status:   models.JobStatusIdle,
	}

	if msg := validateJob(job); msg != "" {
		return errorResponse(c, msg)
	}

	next, warning := h.computeNextRun(job.Schedule)
	job.NextRunAt = &next
	job.ScheduleWarning = warning
	if !job.IsActive {
		job.Status = models.JobStatusDisabled
	}

	if err := h.repos.Job.Create(job); err != nil {
		if errors.Is(err, repository.ErrDuplicateJob) {
			return errorResponse(c, err.Error())
		}
		h.logger.Error("Failed to create job", zap.Error(err))
		return errorResponse(c, "Failed to create job")
	}

	return successResponse(c, "Job created", job)
}

func (h *JobHandler) editJob(c echo.Context, body map[string]interface{}) error {
	id := getStringField(body, "id")
	if id == "" {
		return errorResponse(c, "id is required")
	}

	job, err := h.repos.Job.FindByID(id)
	if err != nil {
		return errorResponse(c, "Job not found")
	}

	// Partial merge, then re-validate the combined record.
	if hasField(body, "name") {
		job.Name = getStringField(body, "name")
	}
	if hasField(body, "type") {
		job.Type = models.TargetKind(getStringField(body, "type"))
	}
	if hasField(body, "keyword") {
		job.Keyword = getStringField(body, "keyword")
	}
	if hasField(body, "url") {
		job.URL = getStringField(body, "url")
	}
	if hasField(body, "source") {
		job.Source = models.Source(getStringField(body, "source"))
	}
	scheduleChanged := false
	if hasField(body, "schedule") {
		newSchedule := getStringField(body, "schedule")
		scheduleChanged = newSchedule != job.Schedule
		job.Schedule = newSchedule
	}

	if msg := validateJob(job); msg != "" {
		return errorResponse(c, msg)
	}

	updates := map[string]interface{}{
		"name":     job.Name,
		"type":     job.Type,
		"keyword":  job.Keyword,
		"url":      job.URL,
		"source":   job.Source,
		"schedule": job.Schedule,
	}
	if scheduleChanged {
		next, warning := h.computeNextRun(job.Schedule)
		updates["next_run_at"] = next
		updates["schedule_warning"] = warning
	}

	if err := h.repos.Job.Update(id, updates); err != nil {
		h.logger.Error("Failed to update job", zap.String("job_id", id), zap.Error(err))
		return errorResponse(c, "Failed to update job")
	}

	updated, err := h.repos.Job.FindByID(id)
	if err != nil {
		updated = job
	}
	return successResponse(c, "Job updated", updated)
}

func (h *JobHandler) toggleJob(c echo.Context, body map[string]interface{}) error {
	id := getStringField(body, "id")
	if id == "" {
		return errorResponse(c, "id is required")
	}

	job, err := h.repos.Job.FindByID(id)
	if err != nil {
		return errorResponse(c, "Job not found")
	}

	updates := map[string]interface{}{"is_active": !job.IsActive}
	if job.IsActive {
		updates["status"] = models.JobStatusDisabled
	} else {
		next, warning := h.computeNextRun(job.Schedule)
		updates["status"] = models.JobStatusIdle
		updates["next_run_at"] = next
		updates["schedule_warning"] = warning
	}

	if err := h.repos.Job.Update(id, updates); err != nil {
		h.logger.Error("Failed to toggle job", zap.String("job_id", id), zap.Error(err))
		return errorResponse(c, "Failed to toggle job")
	}

	updated, err := h.repos.Job.FindByID(id)
	if err != nil {
		updated = job
	}
	return successResponse(c, "Job toggled", updated)
}

func (h *JobHandler) deleteJob(c echo.Context, body map[string]interface{}) error {
	id := getStringField(body, "id")
	if id == "" {
		return errorResponse(c, "id is required")
	}
	if err := h.repos.Job.Delete(id); err != nil {
		h.logger.Error("Failed to delete job", zap.String("job_id", id), zap.Error(err))
		return errorResponse(c, "Failed to delete job")
	}
	return successResponse(c, "Job deleted", nil)
}

func (h *JobHandler) runJob(c echo.Context, body map[string]interface{}) error {
	id := getStringField(body, "id")
	if id == "" {
		return errorResponse(c, "id is required")
	}

	ctx := c.Request().Context()
	if h.deduper != nil {
		if seen, err := h.deduper.Seen(ctx, id); err == nil && seen {
			return errorResponse(c, "Job was just triggered, ignoring duplicate run")
		}
	}

	job, result, err := h.scheduler.RunNow(ctx, id)
	if err != nil {
		return errorResponse(c, "Job not found")
	}

	obj := map[string]interface{}{
		"status": result.Status,
		"job":    job,
	}
	if result.Status == models.JobStatusFailed {
		obj["error"] = result.Message
	} else {
		obj["items_scraped"] = result.ItemsScraped
	}
	return successResponse(c, "Run completed", obj)
}

// computeNextRun never surfaces a parse error to the caller: a malformed
// expression degrades to the daily fallback with a warning on the record.
func (h *JobHandler) computeNextRun(expr string) (time.Time, string) {
	next, err := h.recurrence.Next(expr, time.Now())
	if err != nil {
		return next, models.ScheduleWarningInvalid
	}
	return next, ""
}

func validateJob(job *models.ScrapeJob) string {
	if job.Name == "" {
		return "name is required"
	}
	if job.Schedule == "" {
		return "schedule is required"
	}

	switch job.Source {
	case models.SourceAmazon, models.SourceRakuten, models.SourceGeneric:
	default:
		return "source must be one of amazon, rakuten, generic"
	}

	switch job.Type {
	case models.KindKeyword:
		if job.Keyword == "" {
			return "keyword is required for keyword jobs"
		}
	case models.KindURL, models.KindSitemap:
		if job.URL == "" {
			return "url is required for " + string(job.Type) + " jobs"
		}
	default:
		return "type must be one of keyword, url, sitemap"
	}

	return ""
}

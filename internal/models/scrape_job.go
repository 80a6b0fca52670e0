package models

import (
	"encoding/json"
	"time"
)

// Source identifies the marketplace a job scrapes. Generic fans out to every
// supported marketplace.
type Source string

const (
	SourceAmazon  Source = "amazon"
	SourceRakuten Source = "rakuten"
	SourceGeneric Source = "generic"
)

// TargetKind selects which target field of a job is authoritative.
type TargetKind string

const (
	KindKeyword TargetKind = "keyword"
	KindURL     TargetKind = "url"
	KindSitemap TargetKind = "sitemap"
)

// Job status values. A job is never left at running after an executor pass.
const (
	JobStatusIdle     = "idle"
	JobStatusRunning  = "running"
	JobStatusSuccess  = "success"
	JobStatusFailed   = "failed"
	JobStatusDisabled = "disabled"
)

// Run log outcome values.
const (
	RunStatusSuccess = "success"
	RunStatusFailed  = "failed"
	RunStatusPartial = "partial_success"
)

// ScheduleWarningInvalid marks a job whose cron expression failed to parse and
// is running on the daily fallback interval.
const ScheduleWarningInvalid = "invalid-schedule"

// MaxRunLogs bounds the per-job run history; oldest entries are trimmed first.
const MaxRunLogs = 50

// ScrapeJob maps to the `scrape_jobs` table: a recurring scrape definition.
type ScrapeJob struct {
	ID              string     `gorm:"column:id;primaryKey;size:64" json:"id"`
	Name            string     `gorm:"column:name;size:255" json:"name"`
	Type            TargetKind `gorm:"column:type;size:20" json:"type"`
	Keyword         string     `gorm:"column:keyword;size:500" json:"keyword"`
	URL             string     `gorm:"column:url;size:1000" json:"url"`
	Source          Source     `gorm:"column:source;size:20" json:"source"`
	Schedule        string     `gorm:"column:schedule;size:100" json:"schedule"`
	IsActive        bool       `gorm:"column:is_active;default:true;index:idx_scrape_jobs_due,priority:1" json:"is_active"`
	Status          string     `gorm:"column:status;size:20;default:idle;index:idx_scrape_jobs_due,priority:3" json:"status"`
	ScheduleWarning string     `gorm:"column:schedule_warning;size:40" json:"schedule_warning"`
	LastRunAt       *time.Time `gorm:"column:last_run_at" json:"last_run_at"`
	NextRunAt       *time.Time `gorm:"column:next_run_at;index:idx_scrape_jobs_due,priority:2" json:"next_run_at"`
	Logs            string     `gorm:"column:logs;type:longtext" json:"-"`
	CreatedAt       time.Time  `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt       time.Time  `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}

func (ScrapeJob) TableName() string {
	return "scrape_jobs"
}

// Target returns the field selected by the job's kind.
func (j *ScrapeJob) Target() string {
	if j.Type == KindURL {
		return j.URL
	}
	return j.Keyword
}

// RunLog is one entry of a job's bounded execution history, serialized as a
// JSON array into ScrapeJob.Logs.
type RunLog struct {
	RunAt        time.Time `json:"run_at"`
	Status       string    `json:"status"`
	Message      string    `json:"message"`
	DurationMs   int64     `json:"duration_ms"`
	ItemsScraped int       `json:"items_scraped"`
}

// RunLogs decodes the job's log column. A malformed column decodes to an
// empty history rather than an error.
func (j *ScrapeJob) RunLogs() []RunLog {
	if j.Logs == "" {
		return nil
	}
	var logs []RunLog
	if err := json.Unmarshal([]byte(j.Logs), &logs); err != nil {
		return nil
	}
	return logs
}

// EncodeRunLogs serializes a run history, keeping only the most recent
// MaxRunLogs entries in chronological order.
func EncodeRunLogs(logs []RunLog) string {
	if len(logs) > MaxRunLogs {
		logs = logs[len(logs)-MaxRunLogs:]
	}
	raw, err := json.Marshal(logs)
	if err != nil {
		return "[]"
	}
	return string(raw)
}

package models

// Setting maps to the `setting` table (single-row config table). The
// orchestrator and scheduler read it on demand; the admin API mutates it.
type Setting struct {
	ID                uint   `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	UserAgent         string `gorm:"column:user_agent;size:500" json:"user_agent"`
	RequestTimeoutMs  int    `gorm:"column:request_timeout_ms;default:30000" json:"request_timeout_ms"`
	WaitTimeMs        int    `gorm:"column:wait_time_ms;default:2000" json:"wait_time_ms"`
	UseProxy          bool   `gorm:"column:use_proxy;default:false" json:"use_proxy"`
	ProxyList         string `gorm:"column:proxy_list;type:text" json:"proxy_list"`
	MaxConcurrentJobs int    `gorm:"column:max_concurrent_jobs;default:3" json:"max_concurrent_jobs"`
	DataRetentionDays int    `gorm:"column:data_retention_days;default:90" json:"data_retention_days"`
}

func (Setting) TableName() string {
	return "setting"
}

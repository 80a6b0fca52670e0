package api

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"dealradar/internal/models"
)

func TestValidateJob(t *testing.T) {
	base := func() *models.ScrapeJob {
		return &models.ScrapeJob{
			Name:     "watch iphone",
			Type:     models.KindKeyword,
			Keyword:  "iphone",
			Source:   models.SourceAmazon,
			Schedule: "0 * * * *",
		}
	}

	tests := []struct {
		name    string
		mutate  func(*models.ScrapeJob)
		wantMsg string
	}{
		{"valid keyword job", func(j *models.ScrapeJob) {}, ""},
		{"valid url job", func(j *models.ScrapeJob) {
			j.Type = models.KindURL
			j.Keyword = ""
			j.URL = "https://www.amazon.com/dp/X"
		}, ""},
		{"valid generic source", func(j *models.ScrapeJob) {
			j.Source = models.SourceGeneric
		}, ""},
		{"missing name", func(j *models.ScrapeJob) {
			j.Name = ""
		}, "name is required"},
		{"missing schedule", func(j *models.ScrapeJob) {
			j.Schedule = ""
		}, "schedule is required"},
		{"unknown source", func(j *models.ScrapeJob) {
			j.Source = "ebay"
		}, "source must be one of amazon, rakuten, generic"},
		{"keyword job without keyword", func(j *models.ScrapeJob) {
			j.Keyword = ""
		}, "keyword is required for keyword jobs"},
		{"url job without url", func(j *models.ScrapeJob) {
			j.Type = models.KindURL
		}, "url is required for url jobs"},
		{"sitemap job without url", func(j *models.ScrapeJob) {
			j.Type = models.KindSitemap
		}, "url is required for sitemap jobs"},
		{"unknown kind", func(j *models.ScrapeJob) {
			j.Type = "rss"
		}, "type must be one of keyword, url, sitemap"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			job := base()
			tt.mutate(job)
			assert.Equal(t, tt.wantMsg, validateJob(job))
		})
	}
}

func TestBodyFieldHelpers(t *testing.T) {
	body := map[string]interface{}{
		"name":   "watch iphone",
		"limit":  float64(25),
		"active": true,
	}

	assert.Equal(t, "watch iphone", getStringField(body, "name"))
	assert.Equal(t, "", getStringField(body, "missing"))
	assert.Equal(t, 25, getIntField(body, "limit", 50))
	assert.Equal(t, 50, getIntField(body, "missing", 50))
	assert.True(t, getBoolField(body, "active", false))
	assert.False(t, getBoolField(body, "missing", false))
	assert.True(t, hasField(body, "name"))
	assert.False(t, hasField(body, "missing"))
}

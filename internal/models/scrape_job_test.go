package models

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScrapeJobTarget(t *testing.T) {
	keyword := &ScrapeJob{Type: KindKeyword, Keyword: "iphone", URL: "https://x"}
	assert.Equal(t, "iphone", keyword.Target())

	url := &ScrapeJob{Type: KindURL, Keyword: "iphone", URL: "https://www.amazon.com/dp/X"}
	assert.Equal(t, "https://www.amazon.com/dp/X", url.Target())
}

func TestRunLogsRoundTrip(t *testing.T) {
	job := &ScrapeJob{}
	assert.Nil(t, job.RunLogs(), "empty column decodes to empty history")

	job.Logs = "{not json"
	assert.Nil(t, job.RunLogs(), "malformed column decodes to empty history")

	entry := RunLog{RunAt: time.Now().UTC(), Status: RunStatusSuccess, Message: "ok", ItemsScraped: 3}
	job.Logs = EncodeRunLogs([]RunLog{entry})
	logs := job.RunLogs()
	require.Len(t, logs, 1)
	assert.Equal(t, "ok", logs[0].Message)
	assert.Equal(t, 3, logs[0].ItemsScraped)
}

func TestEncodeRunLogs_TrimsOldest(t *testing.T) {
	var history []RunLog
	for i := 0; i < MaxRunLogs+10; i++ {
		history = append(history, RunLog{Message: fmt.Sprintf("run %d", i)})
	}

	job := &ScrapeJob{Logs: EncodeRunLogs(history)}
	logs := job.RunLogs()
	require.Len(t, logs, MaxRunLogs)
	assert.Equal(t, "run 10", logs[0].Message)
	assert.Equal(t, fmt.Sprintf("run %d", MaxRunLogs+9), logs[len(logs)-1].Message)
}

package scheduler

import (
	"time"

	"github.com/robfig/cron/v3"
)

// fallbackInterval is the retry spacing for jobs with malformed schedules.
const fallbackInterval = 24 * time.Hour

// Recurrence computes next run times from standard five-field cron
// expressions (descriptors like @daily included).
type Recurrence struct {
	parser cron.Parser
}

func NewRecurrence() *Recurrence {
	return &Recurrence{
		parser: cron.NewParser(
			cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor,
		),
	}
}

// Next returns the next time strictly after now that satisfies expr. A
// malformed expression degrades to now + 24h instead of stalling the job;
// the returned error flags the degradation so callers can record an
// invalid-schedule warning on the job.
func (r *Recurrence) Next(expr string, now time.Time) (time.Time, error) {
	sched, err := r.parser.Parse(expr)
	if err != nil {
		return now.Add(fallbackInterval), err
	}
	return sched.Next(now), nil
}

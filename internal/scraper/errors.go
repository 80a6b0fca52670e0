package scraper

import (
	"context"
	"errors"
	"fmt"
	"net"
	"time"
)

// ErrNoProducts signals that extraction completed but nothing matched. It is
// not a failure: callers decide whether an empty result is acceptable.
var ErrNoProducts = errors.New("no products extracted")

// ScraperError is a generic extraction failure with the target attached.
type ScraperError struct {
	Target    string
	Timestamp time.Time
	Detail    map[string]interface{}
	Err       error
}

func (e *ScraperError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("scrape failed for %q: %v", e.Target, e.Err)
	}
	return fmt.Sprintf("scrape failed for %q", e.Target)
}

func (e *ScraperError) Unwrap() error { return e.Err }

// NetworkError is a transport-level failure with the URL attached.
type NetworkError struct {
	URL       string
	Timestamp time.Time
	Detail    map[string]interface{}
	Err       error
}

func (e *NetworkError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("network error fetching %s: %v", e.URL, e.Err)
	}
	return fmt.Sprintf("network error fetching %s", e.URL)
}

func (e *NetworkError) Unwrap() error { return e.Err }

// TimeoutError is a bounded operation that ran out of time.
type TimeoutError struct {
	Timeout   time.Duration
	Timestamp time.Time
	Detail    map[string]interface{}
	Err       error
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("operation timed out after %s", e.Timeout)
}

func (e *TimeoutError) Unwrap() error { return e.Err }

// wrapFetchErr classifies a raw fetch error into the taxonomy at the strategy
// boundary. Timeouts beat transport errors beat the generic case.
func wrapFetchErr(err error, target, url string, timeout time.Duration) error {
	if err == nil {
		return nil
	}

	var alreadyScraper *ScraperError
	var alreadyNetwork *NetworkError
	var alreadyTimeout *TimeoutError
	if errors.As(err, &alreadyScraper) || errors.As(err, &alreadyNetwork) || errors.As(err, &alreadyTimeout) {
		return err
	}

	now := time.Now()

	var netErr net.Error
	if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &netErr) && netErr.Timeout()) {
		return &TimeoutError{
			Timeout:   timeout,
			Timestamp: now,
			Detail:    map[string]interface{}{"url": url},
			Err:       err,
		}
	}

	if errors.As(err, &netErr) {
		return &NetworkError{
			URL:       url,
			Timestamp: now,
			Detail:    map[string]interface{}{"target": target},
			Err:       err,
		}
	}

	return &ScraperError{
		Target:    target,
		Timestamp: now,
		Detail:    map[string]interface{}{"url": url},
		Err:       err,
	}
}

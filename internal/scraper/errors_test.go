package scraper

import (
	"context"
	"errors"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeNetError struct {
	timeout bool
}

func (e *fakeNetError) Error() string   { return "fake net error" }
func (e *fakeNetError) Timeout() bool   { return e.timeout }
func (e *fakeNetError) Temporary() bool { return false }

var _ net.Error = (*fakeNetError)(nil)

func TestWrapFetchErr(t *testing.T) {
	target := "earbuds"
	url := "https://www.amazon.com/s?k=earbuds"

	t.Run("nil passes through", func(t *testing.T) {
		assert.NoError(t, wrapFetchErr(nil, target, url, time.Second))
	})

	t.Run("deadline exceeded becomes timeout", func(t *testing.T) {
		err := wrapFetchErr(context.DeadlineExceeded, target, url, 30*time.Second)
		var te *TimeoutError
		require.ErrorAs(t, err, &te)
		assert.Equal(t, 30*time.Second, te.Timeout)
		assert.Equal(t, url, te.Detail["url"])
		assert.False(t, te.Timestamp.IsZero())
	})

	t.Run("net timeout becomes timeout", func(t *testing.T) {
		err := wrapFetchErr(&fakeNetError{timeout: true}, target, url, time.Second)
		var te *TimeoutError
		assert.ErrorAs(t, err, &te)
	})

	t.Run("net error becomes network error", func(t *testing.T) {
		err := wrapFetchErr(&fakeNetError{}, target, url, time.Second)
		var ne *NetworkError
		require.ErrorAs(t, err, &ne)
		assert.Equal(t, url, ne.URL)
		assert.Equal(t, target, ne.Detail["target"])
	})

	t.Run("anything else becomes scraper error", func(t *testing.T) {
		cause := errors.New("bad markup")
		err := wrapFetchErr(cause, target, url, time.Second)
		var se *ScraperError
		require.ErrorAs(t, err, &se)
		assert.Equal(t, target, se.Target)
		assert.ErrorIs(t, err, cause)
	})

	t.Run("taxonomy errors pass through unchanged", func(t *testing.T) {
		orig := &NetworkError{URL: url, Timestamp: time.Now()}
		assert.Equal(t, error(orig), wrapFetchErr(orig, target, url, time.Second))
	})
}

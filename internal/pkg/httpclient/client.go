package httpclient

import (
	"time"

	"github.com/go-resty/resty/v2"
)

// Client wraps resty for plain HTTP requests outside the scraping path,
// such as marketplace reachability probes.
type Client struct {
	r *resty.Client
}

// New creates a new HTTP client with sensible defaults.
func New() *Client {
	r := resty.New().
		SetTimeout(30 * time.Second).
		SetRetryCount(2).
		SetRetryWaitTime(1 * time.Second).
		SetRetryMaxWaitTime(5 * time.Second)

	return &Client{r: r}
}

// WithTimeout sets a custom timeout.
func (c *Client) WithTimeout(d time.Duration) *Client {
	c.r.SetTimeout(d)
	return c
}

// WithUserAgent sets the User-Agent header for all requests.
func (c *Client) WithUserAgent(ua string) *Client {
	c.r.SetHeader("User-Agent", ua)
	return c
}

// Get sends a GET request and returns the response body.
func (c *Client) Get(url string) ([]byte, error) {
	resp, err := c.r.R().Get(url)
	if err != nil {
		return nil, err
	}
	return resp.Body(), nil
}

package scraper

import (
	"context"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/gocolly/colly/v2"
	"github.com/gocolly/colly/v2/proxy"

	"dealradar/internal/models"
)

// maxSearchItems caps how many item links a search listing contributes.
const maxSearchItems = 5

// FetchConfig holds the per-invocation browser parameters, derived fresh from
// the settings row on every orchestrator call.
type FetchConfig struct {
	UserAgent string
	Timeout   time.Duration
	WaitTime  time.Duration
	UseProxy  bool
	Proxies   []string
}

// DefaultFetchConfig is the hardcoded minimal fallback used when the settings
// read itself fails.
func DefaultFetchConfig() FetchConfig {
	return FetchConfig{
		UserAgent: "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0 Safari/537.36",
		Timeout:   30 * time.Second,
		WaitTime:  2 * time.Second,
	}
}

// Strategy is the per-marketplace extraction logic. Implementations raise
// only taxonomy errors at this boundary.
type Strategy interface {
	// Source returns the marketplace this strategy extracts from.
	Source() models.Source

	// SearchLinks fetches a search-results listing for a keyword and returns
	// up to limit item-page links.
	SearchLinks(ctx context.Context, fc FetchConfig, keyword string, limit int) ([]string, error)

	// FetchItem extracts the catalog view of a single item page, including
	// the richer reviews sub-resource URL when the page links one.
	FetchItem(ctx context.Context, fc FetchConfig, itemURL string) (*ItemView, error)

	// FetchReviews extracts the richer reviews view of an item.
	FetchReviews(ctx context.Context, fc FetchConfig, reviewsURL string) (*Candidate, error)
}

// selectorSet is the volatile part of a strategy: the CSS selectors that map
// a marketplace's markup onto candidate fields.
type selectorSet struct {
	searchLink   string
	title        string
	price        string
	description  string
	image        string
	ratingScore  string
	ratingCount  string
	category     string
	reviewsLink  string
	reviewBlock  string
	reviewAuthor string
	reviewBody   string
	reviewScore  string
}

// newCollector builds a collector from the fetch config. A collector is
// scoped to a single strategy invocation and never reused.
func newCollector(ctx context.Context, fc FetchConfig) (*colly.Collector, error) {
	c := colly.NewCollector(
		colly.UserAgent(fc.UserAgent),
		colly.StdlibContext(ctx),
	)
	c.SetRequestTimeout(fc.Timeout)

	if fc.UseProxy && len(fc.Proxies) > 0 {
		switcher, err := proxy.RoundRobinProxySwitcher(fc.Proxies...)
		if err != nil {
			return nil, err
		}
		c.SetProxyFunc(switcher)
	}

	return c, nil
}

var ratingNumberRe = regexp.MustCompile(`[\d.]+`)
var countNumberRe = regexp.MustCompile(`[\d,]+`)

// parseScore pulls the first decimal number out of a rating blurb like
// "4.3 out of 5 stars".
func parseScore(raw string) float64 {
	m := ratingNumberRe.FindString(raw)
	if m == "" {
		return 0
	}
	score, err := strconv.ParseFloat(m, 64)
	if err != nil {
		return 0
	}
	return score
}

// parseCount pulls the first integer out of a count blurb like "1,204 ratings".
func parseCount(raw string) int {
	m := countNumberRe.FindString(raw)
	if m == "" {
		return 0
	}
	n, err := strconv.Atoi(strings.ReplaceAll(m, ",", ""))
	if err != nil {
		return 0
	}
	return n
}

func cleanText(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

package scraper

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"

	"dealradar/internal/models"
)

// SettingsSource supplies the mutable operational parameters. Reads happen on
// every Scrape call; nothing is cached here.
type SettingsSource interface {
	Get() (*models.Setting, error)
}

// Orchestrator translates a (target, source) request into a flat,
// deduplicated candidate list by dispatching to per-marketplace strategies.
type Orchestrator struct {
	strategies map[models.Source]Strategy
	settings   SettingsSource
	logger     *zap.Logger
	sleep      func(time.Duration)
}

func NewOrchestrator(settings SettingsSource, logger *zap.Logger) *Orchestrator {
	return &Orchestrator{
		strategies: defaultStrategies(),
		settings:   settings,
		logger:     logger,
		sleep:      time.Sleep,
	}
}

// RegisterStrategy replaces the strategy for its source. Lets callers swap in
// alternative marketplace implementations.
func (o *Orchestrator) RegisterStrategy(s Strategy) {
	o.strategies[s.Source()] = s
}

// Scrape runs the extraction pipeline. A target beginning with http:// or
// https:// is treated as a direct item URL, anything else as a search
// keyword. When nothing matches anywhere it returns (nil, ErrNoProducts).
func (o *Orchestrator) Scrape(ctx context.Context, target string, src models.Source) ([]Candidate, error) {
	strategies, err := o.strategiesFor(src)
	if err != nil {
		return nil, err
	}

	fc := o.fetchConfig()

	var all []Candidate
	for i, st := range strategies {
		if i > 0 {
			// Inter-source pacing: the second marketplace waits out the
			// configured delay before its first request.
			o.sleep(fc.WaitTime)
		}

		cands, err := o.scrapeSource(ctx, st, fc, target)
		if err != nil {
			if errors.Is(err, ErrNoProducts) {
				continue
			}
			return nil, err
		}
		all = append(all, cands...)
	}

	all = dedupeCandidates(all)
	if len(all) == 0 {
		return nil, ErrNoProducts
	}
	return all, nil
}

func (o *Orchestrator) scrapeSource(ctx context.Context, st Strategy, fc FetchConfig, target string) ([]Candidate, error) {
	if IsItemURL(target) {
		cand, err := o.scrapeItem(ctx, st, fc, target)
		if err != nil {
			return nil, err
		}
		return []Candidate{*cand}, nil
	}

	links, err := st.SearchLinks(ctx, fc, target, maxSearchItems)
	if err != nil {
		return nil, err
	}
	if len(links) == 0 {
		return nil, ErrNoProducts
	}

	var out []Candidate
	for _, link := range links {
		cand, err := o.scrapeItem(ctx, st, fc, link)
		if err != nil {
			// A single bad item never sinks the batch.
			o.logger.Warn("Skipping item after extraction failure",
				zap.String("source", string(st.Source())),
				zap.String("url", link),
				zap.Error(err),
			)
			continue
		}
		out = append(out, *cand)
	}
	if len(out) == 0 {
		return nil, ErrNoProducts
	}
	return out, nil
}

// scrapeItem fetches the catalog view of one item, then the richer reviews
// view when the page links one, and merges the two.
func (o *Orchestrator) scrapeItem(ctx context.Context, st Strategy, fc FetchConfig, itemURL string) (*Candidate, error) {
	view, err := st.FetchItem(ctx, fc, itemURL)
	if err != nil {
		return nil, err
	}

	merged := view.Candidate
	if view.ReviewsURL != "" {
		richer, err := st.FetchReviews(ctx, fc, view.ReviewsURL)
		if err != nil {
			// The catalog view alone is still a valid result.
			o.logger.Warn("Reviews view fetch failed, keeping catalog view",
				zap.String("url", view.ReviewsURL),
				zap.Error(err),
			)
		} else {
			merged = mergeViews(view.Candidate, *richer)
		}
	}

	if !merged.Usable() {
		return nil, ErrNoProducts
	}
	return &merged, nil
}

// mergeViews overlays the richer reviews view on the catalog view. Richer
// fields win, except where the richer view came back absent or thinner:
// shorter title or description, fewer images.
func mergeViews(catalog, richer Candidate) Candidate {
	out := richer

	if len(richer.Title) < len(catalog.Title) {
		out.Title = catalog.Title
	}
	if len(richer.Description) < len(catalog.Description) {
		out.Description = catalog.Description
	}
	if len(richer.Images) < len(catalog.Images) {
		out.Images = catalog.Images
	}
	if richer.Price == "" {
		out.Price = catalog.Price
	}
	if richer.Category == "" {
		out.Category = catalog.Category
	}
	if len(richer.Tags) == 0 {
		out.Tags = catalog.Tags
	}
	if richer.Rating.Score == 0 {
		out.Rating.Score = catalog.Rating.Score
	}
	if richer.Rating.Count == 0 {
		out.Rating.Count = catalog.Rating.Count
	}
	if len(richer.Reviews) == 0 {
		out.Reviews = catalog.Reviews
	}
	if richer.ContentLanguage == "" {
		out.ContentLanguage = catalog.ContentLanguage
	}

	// Identity always comes from the item page, not the reviews sub-resource.
	out.Source = catalog.Source
	out.SourceURL = catalog.SourceURL
	return out
}

// IsItemURL reports whether a free-form target is a direct item URL.
func IsItemURL(target string) bool {
	return strings.HasPrefix(target, "http://") || strings.HasPrefix(target, "https://")
}

func dedupeCandidates(in []Candidate) []Candidate {
	seen := make(map[string]bool, len(in))
	out := make([]Candidate, 0, len(in))
	for _, c := range in {
		key := string(c.Source) + "|" + c.SourceURL
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, c)
	}
	return out
}

// fetchConfig derives browser parameters from settings, falling back to the
// hardcoded defaults when the settings read fails.
func (o *Orchestrator) fetchConfig() FetchConfig {
	setting, err := o.settings.Get()
	if err != nil {
		o.logger.Warn("Settings read failed, using fallback fetch config", zap.Error(err))
		return DefaultFetchConfig()
	}

	fc := DefaultFetchConfig()
	if setting.UserAgent != "" {
		fc.UserAgent = setting.UserAgent
	}
	if setting.RequestTimeoutMs > 0 {
		fc.Timeout = time.Duration(setting.RequestTimeoutMs) * time.Millisecond
	}
	if setting.WaitTimeMs > 0 {
		fc.WaitTime = time.Duration(setting.WaitTimeMs) * time.Millisecond
	}
	fc.UseProxy = setting.UseProxy
	if setting.ProxyList != "" {
		var proxies []string
		if err := json.Unmarshal([]byte(setting.ProxyList), &proxies); err == nil {
			fc.Proxies = proxies
		}
	}
	return fc
}

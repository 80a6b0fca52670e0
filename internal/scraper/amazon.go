package scraper

import (
	"context"
	"net/url"

	"github.com/gocolly/colly/v2"

	"dealradar/internal/models"
)

// amazonStrategy extracts candidates from Amazon search listings, item pages
// and the see-all-reviews view.
type amazonStrategy struct {
	baseURL   string
	selectors selectorSet
}

func newAmazonStrategy() *amazonStrategy {
	return &amazonStrategy{
		baseURL: "https://www.amazon.com",
		selectors: selectorSet{
			searchLink:   `div[data-component-type="s-search-result"] h2 a`,
			title:        "#productTitle",
			price:        "span.a-price span.a-offscreen",
			description:  "#productDescription p, #feature-bullets ul",
			image:        "#imgTagWrapperId img, #altImages img",
			ratingScore:  "#acrPopover span.a-icon-alt",
			ratingCount:  "#acrCustomerReviewText",
			category:     "#wayfinding-breadcrumbs_feature_div li a",
			reviewsLink:  "a[data-hook=see-all-reviews-link-foot]",
			reviewBlock:  "div[data-hook=review]",
			reviewAuthor: "span.a-profile-name",
			reviewBody:   "span[data-hook=review-body]",
			reviewScore:  "i[data-hook=review-star-rating] span",
		},
	}
}

func (a *amazonStrategy) Source() models.Source { return models.SourceAmazon }

func (a *amazonStrategy) SearchLinks(ctx context.Context, fc FetchConfig, keyword string, limit int) ([]string, error) {
	c, err := newCollector(ctx, fc)
	if err != nil {
		return nil, wrapFetchErr(err, keyword, a.baseURL, fc.Timeout)
	}

	var links []string
	c.OnHTML(a.selectors.searchLink, func(e *colly.HTMLElement) {
		if len(links) >= limit {
			return
		}
		if href := e.Request.AbsoluteURL(e.Attr("href")); href != "" {
			links = append(links, href)
		}
	})

	searchURL := a.baseURL + "/s?k=" + url.QueryEscape(keyword)
	if err := c.Visit(searchURL); err != nil {
		return nil, wrapFetchErr(err, keyword, searchURL, fc.Timeout)
	}
	return links, nil
}

func (a *amazonStrategy) FetchItem(ctx context.Context, fc FetchConfig, itemURL string) (*ItemView, error) {
	c, err := newCollector(ctx, fc)
	if err != nil {
		return nil, wrapFetchErr(err, itemURL, itemURL, fc.Timeout)
	}

	view := &ItemView{Candidate: emptyCandidate(models.SourceAmazon, itemURL, "en")}
	sel := a.selectors

	c.OnHTML("html", func(e *colly.HTMLElement) {
		if lang := e.Attr("lang"); lang != "" {
			view.Candidate.ContentLanguage = lang
		}
		view.Candidate.Title = cleanText(e.ChildText(sel.title))
		view.Candidate.Price = cleanText(e.ChildText(sel.price))
		view.Candidate.Description = cleanText(e.ChildText(sel.description))
		for _, src := range e.ChildAttrs(sel.image, "src") {
			if src != "" {
				view.Candidate.Images = append(view.Candidate.Images, e.Request.AbsoluteURL(src))
			}
		}
		view.Candidate.Rating.Score = parseScore(e.ChildText(sel.ratingScore))
		view.Candidate.Rating.Count = parseCount(e.ChildText(sel.ratingCount))
		e.ForEach(sel.category, func(_ int, crumb *colly.HTMLElement) {
			if t := cleanText(crumb.Text); t != "" {
				view.Candidate.Category = t
				view.Candidate.Tags = append(view.Candidate.Tags, t)
			}
		})
		if href := e.ChildAttr(sel.reviewsLink, "href"); href != "" {
			view.ReviewsURL = e.Request.AbsoluteURL(href)
		}
	})

	if err := c.Visit(itemURL); err != nil {
		return nil, wrapFetchErr(err, itemURL, itemURL, fc.Timeout)
	}
	return view, nil
}

func (a *amazonStrategy) FetchReviews(ctx context.Context, fc FetchConfig, reviewsURL string) (*Candidate, error) {
	c, err := newCollector(ctx, fc)
	if err != nil {
		return nil, wrapFetchErr(err, reviewsURL, reviewsURL, fc.Timeout)
	}

	cand := emptyCandidate(models.SourceAmazon, reviewsURL, "en")
	sel := a.selectors

	c.OnHTML("html", func(e *colly.HTMLElement) {
		cand.Title = cleanText(e.ChildText("a[data-hook=product-link]"))
		cand.Rating.Score = parseScore(e.ChildText("span[data-hook=rating-out-of-text]"))
		cand.Rating.Count = parseCount(e.ChildText("div[data-hook=total-review-count]"))
		e.ForEach(sel.reviewBlock, func(_ int, rev *colly.HTMLElement) {
			cand.Reviews = append(cand.Reviews, Review{
				Author: cleanText(rev.ChildText(sel.reviewAuthor)),
				Body:   cleanText(rev.ChildText(sel.reviewBody)),
				Score:  parseScore(rev.ChildText(sel.reviewScore)),
			})
		})
	})

	if err := c.Visit(reviewsURL); err != nil {
		return nil, wrapFetchErr(err, reviewsURL, reviewsURL, fc.Timeout)
	}
	return &cand, nil
}

func emptyCandidate(src models.Source, sourceURL, lang string) Candidate {
	return Candidate{
		Images:          []string{},
		Reviews:         []Review{},
		Tags:            []string{},
		ContentLanguage: lang,
		Source:          src,
		SourceURL:       sourceURL,
	}
}

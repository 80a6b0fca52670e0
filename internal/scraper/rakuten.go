package scraper

import (
	"context"
	"net/url"

	"github.com/gocolly/colly/v2"

	"dealradar/internal/models"
)

// rakutenStrategy extracts candidates from Rakuten Ichiba search listings,
// item pages and the item review view.
type rakutenStrategy struct {
	searchBaseURL string
	selectors     selectorSet
}

func newRakutenStrategy() *rakutenStrategy {
	return &rakutenStrategy{
		searchBaseURL: "https://search.rakuten.co.jp/search/mall/",
		selectors: selectorSet{
			searchLink:   "div.searchresultitem h2 a, div.dui-card.searchresultitem a.image",
			title:        "span.item_name, h1.item-name, div.normal_reserve_item_name",
			price:        "span.price2, div.price-wrapper span.price",
			description:  "span.item_desc, div.item_desc, div.sale_desc",
			image:        "div.image_main img, span.sale_gallery img",
			ratingScore:  "span.revRating span.value, div.revEvaluate span.value",
			ratingCount:  "a.revEvaluate span.Count, span.revCount",
			category:     "div.pathArea a, ul.breadcrumb li a",
			reviewsLink:  "a.revList, div.revCust a",
			reviewBlock:  "div.revRvwUserSec",
			reviewAuthor: "span.revUserFaceName",
			reviewBody:   "dd.revRvwUserEntryCmt",
			reviewScore:  "span.revUserRvwerNum",
		},
	}
}

func (r *rakutenStrategy) Source() models.Source { return models.SourceRakuten }

func (r *rakutenStrategy) SearchLinks(ctx context.Context, fc FetchConfig, keyword string, limit int) ([]string, error) {
	c, err := newCollector(ctx, fc)
	if err != nil {
		return nil, wrapFetchErr(err, keyword, r.searchBaseURL, fc.Timeout)
	}

	var links []string
	seen := make(map[string]bool)
	c.OnHTML(r.selectors.searchLink, func(e *colly.HTMLElement) {
		if len(links) >= limit {
			return
		}
		href := e.Request.AbsoluteURL(e.Attr("href"))
		if href == "" || seen[href] {
			return
		}
		seen[href] = true
		links = append(links, href)
	})

	searchURL := r.searchBaseURL + url.PathEscape(keyword) + "/"
	if err := c.Visit(searchURL); err != nil {
		return nil, wrapFetchErr(err, keyword, searchURL, fc.Timeout)
	}
	return links, nil
}

func (r *rakutenStrategy) FetchItem(ctx context.Context, fc FetchConfig, itemURL string) (*ItemView, error) {
	c, err := newCollector(ctx, fc)
	if err != nil {
		return nil, wrapFetchErr(err, itemURL, itemURL, fc.Timeout)
	}

	view := &ItemView{Candidate: emptyCandidate(models.SourceRakuten, itemURL, "ja")}
	sel := r.selectors

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

func (r *rakutenStrategy) FetchReviews(ctx context.Context, fc FetchConfig, reviewsURL string) (*Candidate, error) {
	c, err := newCollector(ctx, fc)
	if err != nil {
		return nil, wrapFetchErr(err, reviewsURL, reviewsURL, fc.Timeout)
	}

	cand := emptyCandidate(models.SourceRakuten, reviewsURL, "ja")
	sel := r.selectors

	c.OnHTML("html", func(e *colly.HTMLElement) {
		cand.Title = cleanText(e.ChildText("h1.revItemTtl, div.revItemTitle a"))
		cand.Rating.Score = parseScore(e.ChildText("span.revEvaNumber"))
		cand.Rating.Count = parseCount(e.ChildText("span.revEvaCount"))
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

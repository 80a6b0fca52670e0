package scraper

import (
	"encoding/json"

	"dealradar/internal/models"
)

// Rating aggregates a product's review score.
type Rating struct {
	Score float64 `json:"score"`
	Count int     `json:"count"`
}

// Review is one sampled customer review from a marketplace reviews view.
type Review struct {
	Author string  `json:"author"`
	Body   string  `json:"body"`
	Score  float64 `json:"score"`
}

// Candidate is an unpersisted product record produced by extraction. Fields
// default to zero values rather than being absent, so partially populated
// candidates keep a stable shape for downstream persistence.
type Candidate struct {
	Title           string        `json:"title"`
	Price           string        `json:"price"`
	Description     string        `json:"description"`
	Images          []string      `json:"images"`
	Rating          Rating        `json:"rating"`
	Reviews         []Review      `json:"reviews"`
	Category        string        `json:"category"`
	Tags            []string      `json:"tags"`
	ContentLanguage string        `json:"content_language"`
	Source          models.Source `json:"source"`
	SourceURL       string        `json:"source_url"`
}

// Usable reports whether extraction produced anything worth persisting.
func (c *Candidate) Usable() bool {
	return c.Title != "" || c.Description != "" || len(c.Images) > 0
}

// ToProduct converts a candidate into its persisted form. SEO fields are
// left empty here; the store fills defaults on insert.
func (c *Candidate) ToProduct() *models.Product {
	return &models.Product{
		Title:           c.Title,
		Price:           c.Price,
		Description:     c.Description,
		Images:          marshalList(c.Images),
		RatingScore:     c.Rating.Score,
		RatingCount:     c.Rating.Count,
		Reviews:         marshalList(c.Reviews),
		Category:        c.Category,
		Tags:            marshalList(c.Tags),
		ContentLanguage: c.ContentLanguage,
		Source:          string(c.Source),
		SourceURL:       c.SourceURL,
	}
}

func marshalList(v interface{}) string {
	raw, err := json.Marshal(v)
	if err != nil {
		return "[]"
	}
	return string(raw)
}

// ItemView is the catalog view of a single item page, plus the richer
// reviews sub-resource linked from it when the page exposes one.
type ItemView struct {
	Candidate  Candidate
	ReviewsURL string
}

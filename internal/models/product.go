package models

import "time"

// Product maps to the `products` table. The composite unique index on
// (source, source_url) is the dedup-insert identity: a conflicting insert is
// the "already exists" signal, so the check-then-act race never applies.
type Product struct {
	ID              uint      `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	Title           string    `gorm:"column:title;size:1000" json:"title"`
	Price           string    `gorm:"column:price;size:100" json:"price"`
	Description     string    `gorm:"column:description;type:text" json:"description"`
	Images          string    `gorm:"column:images;type:text" json:"images"`
	RatingScore     float64   `gorm:"column:rating_score;default:0" json:"rating_score"`
	RatingCount     int       `gorm:"column:rating_count;default:0" json:"rating_count"`
	Reviews         string    `gorm:"column:reviews;type:text" json:"reviews"`
	Category        string    `gorm:"column:category;size:400" json:"category"`
	Tags            string    `gorm:"column:tags;type:text" json:"tags"`
	ContentLanguage string    `gorm:"column:content_language;size:20" json:"content_language"`
	Source          string    `gorm:"column:source;size:20;uniqueIndex:idx_products_source_url,priority:1" json:"source"`
	SourceURL       string    `gorm:"column:source_url;size:700;uniqueIndex:idx_products_source_url,priority:2" json:"source_url"`
	SeoTitle        string    `gorm:"column:seo_title;size:1000" json:"seo_title"`
	SeoDescription  string    `gorm:"column:seo_description;size:1000" json:"seo_description"`
	SeoKeywords     string    `gorm:"column:seo_keywords;type:text" json:"seo_keywords"`
	CreatedAt       time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt       time.Time `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}

func (Product) TableName() string {
	return "products"
}

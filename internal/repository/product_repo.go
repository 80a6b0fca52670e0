package repository

import (
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"dealradar/internal/models"
	"dealradar/internal/pkg/utils"
)

// seoDescriptionLimit is the meta-description length cap.
const seoDescriptionLimit = 160

// ProductRepository handles persisted products.
type ProductRepository struct {
	db *gorm.DB
}

func NewProductRepository(db *gorm.DB) *ProductRepository {
	return &ProductRepository{db: db}
}

// InsertIfAbsent stores a product unless one with the same (source,
// source_url) already exists, and reports whether a row was written. The
// unique index decides existence, so two concurrent inserts of the same
// identity cannot both land.
func (r *ProductRepository) InsertIfAbsent(p *models.Product) (bool, error) {
	fillSeoDefaults(p)

	res := r.db.Clauses(clause.OnConflict{DoNothing: true}).Create(p)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func fillSeoDefaults(p *models.Product) {
	if p.SeoTitle == "" {
		p.SeoTitle = p.Title
	}
	if p.SeoDescription == "" {
		p.SeoDescription = utils.TruncateRunes(p.Description, seoDescriptionLimit)
	}
	if p.SeoKeywords == "" {
		p.SeoKeywords = utils.KeywordsFromTitle(p.Title)
	}
}

// FindAll returns products with pagination, newest first.
func (r *ProductRepository) FindAll(limit, page int, query string) ([]models.Product, int64, error) {
	var items []models.Product
	var total int64

	db := r.db.Model(&models.Product{})
	if query != "" {
		db = db.Where("title LIKE ?", "%"+query+"%")
	}
	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	if limit <= 0 {
		limit = 50
	}
	if page <= 0 {
		page = 1
	}
	offset := (page - 1) * limit
	if err := db.Order("created_at DESC").Limit(limit).Offset(offset).Find(&items).Error; err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

func (r *ProductRepository) FindByID(id int) (*models.Product, error) {
	var p models.Product
	if err := r.db.Where("id = ?", id).First(&p).Error; err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *ProductRepository) Delete(id int) error {
	return r.db.Where("id = ?", id).Delete(&models.Product{}).Error
}

// DeleteOlderThan removes products created before the retention window and
// returns how many went.
func (r *ProductRepository) DeleteOlderThan(days int) (int64, error) {
	if days <= 0 {
		return 0, nil
	}
	cutoff := time.Now().AddDate(0, 0, -days)
	res := r.db.Where("created_at < ?", cutoff).Delete(&models.Product{})
	return res.RowsAffected, res.Error
}

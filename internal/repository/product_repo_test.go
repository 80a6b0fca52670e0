package repository

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dealradar/internal/models"
)

func TestProductInsertIfAbsent(t *testing.T) {
	repo := NewProductRepository(newTestDB(t))

	p := &models.Product{
		Title:     "Wireless Headphones",
		Price:     "$59.99",
		Source:    "amazon",
		SourceURL: "https://www.amazon.com/dp/B0TEST",
	}
	inserted, err := repo.InsertIfAbsent(p)
	require.NoError(t, err)
	assert.True(t, inserted)

	// Same identity again: no new row, no error.
	again, err := repo.InsertIfAbsent(&models.Product{
		Title:     "Wireless Headphones (relisted)",
		Source:    "amazon",
		SourceURL: "https://www.amazon.com/dp/B0TEST",
	})
	require.NoError(t, err)
	assert.False(t, again, "conflicting insert reports already-exists")

	// Same URL from another marketplace is a distinct product.
	other, err := repo.InsertIfAbsent(&models.Product{
		Title:     "Wireless Headphones",
		Source:    "rakuten",
		SourceURL: "https://www.amazon.com/dp/B0TEST",
	})
	require.NoError(t, err)
	assert.True(t, other)

	items, total, err := repo.FindAll(50, 1, "")
	require.NoError(t, err)
	assert.EqualValues(t, 2, total)
	assert.Len(t, items, 2)
}

func TestProductInsertIfAbsent_SeoDefaults(t *testing.T) {
	repo := NewProductRepository(newTestDB(t))

	longDesc := strings.Repeat("a", 200)
	p := &models.Product{
		Title:       "Ergonomic Office Chair Black",
		Description: longDesc,
		Source:      "amazon",
		SourceURL:   "https://www.amazon.com/dp/B0CHAIR",
	}
	_, err := repo.InsertIfAbsent(p)
	require.NoError(t, err)

	got, err := repo.FindByID(int(p.ID))
	require.NoError(t, err)

	assert.Equal(t, "Ergonomic Office Chair Black", got.SeoTitle)
	assert.Equal(t, longDesc[:160], got.SeoDescription)
	assert.Equal(t, "Ergonomic,Office,Chair,Black", got.SeoKeywords)
}

func TestProductInsertIfAbsent_KeepsExplicitSeo(t *testing.T) {
	repo := NewProductRepository(newTestDB(t))

	p := &models.Product{
		Title:          "Desk Lamp",
		SeoTitle:       "Best Desk Lamp 2026",
		SeoDescription: "A very good lamp.",
		SeoKeywords:    "lamp,desk",
		Source:         "rakuten",
		SourceURL:      "https://item.rakuten.co.jp/shop/lamp",
	}
	_, err := repo.InsertIfAbsent(p)
	require.NoError(t, err)

	got, err := repo.FindByID(int(p.ID))
	require.NoError(t, err)
	assert.Equal(t, "Best Desk Lamp 2026", got.SeoTitle)
	assert.Equal(t, "A very good lamp.", got.SeoDescription)
	assert.Equal(t, "lamp,desk", got.SeoKeywords)
}

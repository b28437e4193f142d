package models_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"fashion-store/models"
)

func TestRecomputeTotalStock(t *testing.T) {
	p := models.Product{
		Sizes: []models.SizeStock{
			{Size: "S", Stock: 3},
			{Size: "M", Stock: 0},
			{Size: "L", Stock: 7},
		},
	}
	p.RecomputeTotalStock()
	assert.Equal(t, 10, p.TotalStock)

	p.Sizes = nil
	p.RecomputeTotalStock()
	assert.Equal(t, 0, p.TotalStock)
}

func TestSizeEntry(t *testing.T) {
	p := models.Product{Sizes: []models.SizeStock{{Size: "M", Stock: 4}}}

	entry := p.SizeEntry("M")
	assert.NotNil(t, entry)
	assert.Equal(t, 4, entry.Stock)

	// The entry aliases the slice so stock math writes through.
	entry.Stock--
	assert.Equal(t, 3, p.Sizes[0].Stock)

	assert.Nil(t, p.SizeEntry("XXL"))
}

func TestIsValidCategory(t *testing.T) {
	for _, c := range models.Categories {
		assert.True(t, models.IsValidCategory(c))
	}
	assert.False(t, models.IsValidCategory("gadgets"))
	assert.False(t, models.IsValidCategory(""))
}

func TestNewPagination(t *testing.T) {
	tests := []struct {
		name  string
		page  int64
		limit int64
		total int64
		want  models.Pagination
	}{
		{
			name: "middle_page", page: 2, limit: 10, total: 35,
			want: models.Pagination{CurrentPage: 2, TotalPages: 4, TotalItems: 35, HasNextPage: true, HasPrevPage: true},
		},
		{
			name: "first_page", page: 1, limit: 10, total: 35,
			want: models.Pagination{CurrentPage: 1, TotalPages: 4, TotalItems: 35, HasNextPage: true},
		},
		{
			name: "last_page", page: 4, limit: 10, total: 35,
			want: models.Pagination{CurrentPage: 4, TotalPages: 4, TotalItems: 35, HasPrevPage: true},
		},
		{
			name: "empty_result", page: 1, limit: 10, total: 0,
			want: models.Pagination{CurrentPage: 1, TotalPages: 0, TotalItems: 0},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, models.NewPagination(tt.page, tt.limit, tt.total))
		})
	}
}

func TestNormalizeEmail(t *testing.T) {
	assert.Equal(t, "ada@example.com", models.NormalizeEmail("  Ada@Example.COM "))
}

package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Valid product categories. The catalog is closed; anything else is rejected
// at validation time.
var Categories = []string{"men", "women", "children", "accessories", "shoes", "bags"}

// IsValidCategory reports whether c is one of the known categories.
func IsValidCategory(c string) bool {
	for _, v := range Categories {
		if v == c {
			return true
		}
	}
	return false
}

// SizeStock is the inventory count for a single size of a product.
type SizeStock struct {
	Size  string `bson:"size" json:"size"`
	Stock int    `bson:"stock" json:"stock"`
}

// ColorVariant groups the images for one color of a product.
type ColorVariant struct {
	Color   string   `bson:"color" json:"color"`
	HexCode string   `bson:"hex_code,omitempty" json:"hexCode,omitempty"`
	Images  []string `bson:"images,omitempty" json:"images,omitempty"`
}

// Rating is a running average over the product's reviews.
type Rating struct {
	Average float64 `bson:"average" json:"average"`
	Count   int     `bson:"count" json:"count"`
}

// Review is a single user review embedded in a product. One per user per
// product.
type Review struct {
	UserID    primitive.ObjectID `bson:"user_id" json:"userId"`
	Rating    int                `bson:"rating" json:"rating"`
	Comment   string             `bson:"comment,omitempty" json:"comment,omitempty"`
	CreatedAt time.Time          `bson:"created_at" json:"createdAt"`
}

// Product represents a catalog item. Products are soft-deleted by flipping
// IsActive so historical orders can still resolve them.
type Product struct {
	ID               primitive.ObjectID `bson:"_id,omitempty" json:"id,omitempty"`
	Name             string             `bson:"name" json:"name"`
	Description      string             `bson:"description" json:"description"`
	Price            float64            `bson:"price" json:"price"`
	OriginalPrice    float64            `bson:"original_price,omitempty" json:"originalPrice,omitempty"`
	Category         string             `bson:"category" json:"category"`
	Subcategory      string             `bson:"subcategory" json:"subcategory"`
	Brand            string             `bson:"brand" json:"brand"`
	Sizes            []SizeStock        `bson:"sizes" json:"sizes"`
	Colors           []ColorVariant     `bson:"colors,omitempty" json:"colors,omitempty"`
	Images           []string           `bson:"images" json:"images"`
	Tags             []string           `bson:"tags,omitempty" json:"tags,omitempty"`
	Material         string             `bson:"material,omitempty" json:"material,omitempty"`
	CareInstructions string             `bson:"care_instructions,omitempty" json:"careInstructions,omitempty"`
	Rating           Rating             `bson:"rating" json:"rating"`
	Reviews          []Review           `bson:"reviews,omitempty" json:"reviews,omitempty"`
	IsActive         bool               `bson:"is_active" json:"isActive"`
	IsFeatured       bool               `bson:"is_featured" json:"isFeatured"`
	TotalStock       int                `bson:"total_stock" json:"totalStock"`
	SoldCount        int                `bson:"sold_count" json:"soldCount"`
	ViewCount        int                `bson:"view_count" json:"viewCount"`
	CreatedAt        time.Time          `bson:"created_at" json:"createdAt"`
	UpdatedAt        time.Time          `bson:"updated_at" json:"updatedAt"`
}

// RecomputeTotalStock refreshes the cached TotalStock field from the per-size
// entries. Must be called before every save that touches Sizes.
func (p *Product) RecomputeTotalStock() {
	total := 0
	for _, s := range p.Sizes {
		total += s.Stock
	}
	p.TotalStock = total
}

// SizeEntry returns the stock entry for the given size label, or nil if the
// product does not carry that size.
func (p *Product) SizeEntry(size string) *SizeStock {
	for i := range p.Sizes {
		if p.Sizes[i].Size == size {
			return &p.Sizes[i]
		}
	}
	return nil
}

// Summary projects the product to the lightweight shape returned by listing
// and recommendation endpoints.
func (p *Product) Summary() ProductSummary {
	return ProductSummary{
		ID:          p.ID,
		Name:        p.Name,
		Price:       p.Price,
		Images:      p.Images,
		Category:    p.Category,
		Subcategory: p.Subcategory,
		Brand:       p.Brand,
		Rating:      p.Rating,
		SoldCount:   p.SoldCount,
	}
}

// ProductSummary is the trimmed product view used by recommendation results.
type ProductSummary struct {
	ID          primitive.ObjectID `bson:"_id" json:"id"`
	Name        string             `bson:"name" json:"name"`
	Price       float64            `bson:"price" json:"price"`
	Images      []string           `bson:"images" json:"images"`
	Category    string             `bson:"category" json:"category"`
	Subcategory string             `bson:"subcategory,omitempty" json:"subcategory,omitempty"`
	Brand       string             `bson:"brand" json:"brand"`
	Rating      Rating             `bson:"rating" json:"rating"`
	SoldCount   int                `bson:"sold_count" json:"soldCount"`
}

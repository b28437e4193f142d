package services

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"fashion-store/models"
)

// CatalogService owns product CRUD and reviews.
type CatalogService struct {
	products ProductStore
}

// NewCatalogService wires the catalog.
func NewCatalogService(products ProductStore) *CatalogService {
	return &CatalogService{products: products}
}

// List runs the customer catalog query.
func (s *CatalogService) List(ctx context.Context, q ProductQuery) ([]models.Product, models.Pagination, error) {
	if q.Category != "" && !models.IsValidCategory(q.Category) {
		return nil, models.Pagination{}, fmt.Errorf("%w: unknown category %q", ErrValidation, q.Category)
	}
	if q.Page < 1 {
		q.Page = 1
	}
	if q.Limit < 1 {
		q.Limit = 12
	}
	products, total, err := s.products.List(ctx, q)
	if err != nil {
		return nil, models.Pagination{}, err
	}
	return products, models.NewPagination(q.Page, q.Limit, total), nil
}

// Get fetches one product and bumps its view counter. The bump is
// best-effort browsing telemetry, not part of the read contract.
func (s *CatalogService) Get(ctx context.Context, id primitive.ObjectID) (*models.Product, error) {
	product, err := s.products.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.products.IncViewCount(ctx, id); err != nil {
		log.Error().Err(err).Str("product_id", id.Hex()).Msg("catalog: view count bump failed")
	}
	return product, nil
}

// Create validates and persists a new product. Admin only; the role gate
// lives in the routing layer.
func (s *CatalogService) Create(ctx context.Context, p *models.Product) error {
	if err := validateProduct(p); err != nil {
		return err
	}
	p.IsActive = true
	return s.products.Insert(ctx, p)
}

// Update replaces an existing product document, keeping its identity and
// preserved counters.
func (s *CatalogService) Update(ctx context.Context, id primitive.ObjectID, p *models.Product) (*models.Product, error) {
	if err := validateProduct(p); err != nil {
		return nil, err
	}
	existing, err := s.products.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	p.ID = existing.ID
	p.CreatedAt = existing.CreatedAt
	p.Reviews = existing.Reviews
	p.Rating = existing.Rating
	p.SoldCount = existing.SoldCount
	p.ViewCount = existing.ViewCount
	// An edit payload normally omits the flag; replacing the document must
	// not soft-delete the product.
	p.IsActive = existing.IsActive
	if err := s.products.Update(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

// Delete soft-deletes: the product disappears from customer queries but stays
// addressable for historical orders.
func (s *CatalogService) Delete(ctx context.Context, id primitive.ObjectID) error {
	return s.products.SoftDelete(ctx, id)
}

// Categories returns the distinct active categories, subcategories and
// brands.
func (s *CatalogService) Categories(ctx context.Context) (map[string][]string, error) {
	out := make(map[string][]string, 3)
	for field, key := range map[string]string{
		"category":    "categories",
		"subcategory": "subcategories",
		"brand":       "brands",
	} {
		values, err := s.products.DistinctActive(ctx, field)
		if err != nil {
			return nil, err
		}
		out[key] = values
	}
	return out, nil
}

// AddReview appends a review — one per user per product — and recomputes the
// running rating average.
func (s *CatalogService) AddReview(ctx context.Context, productID, userID primitive.ObjectID, rating int, comment string) (*models.Product, error) {
	if rating < 1 || rating > 5 {
		return nil, fmt.Errorf("%w: rating must be between 1 and 5", ErrValidation)
	}

	product, err := s.products.FindByID(ctx, productID)
	if err != nil {
		return nil, err
	}
	for _, r := range product.Reviews {
		if r.UserID == userID {
			return nil, fmt.Errorf("%w: you have already reviewed this product", ErrConflict)
		}
	}

	product.Reviews = append(product.Reviews, models.Review{
		UserID:    userID,
		Rating:    rating,
		Comment:   comment,
		CreatedAt: time.Now().UTC(),
	})

	total := 0
	for _, r := range product.Reviews {
		total += r.Rating
	}
	product.Rating.Count = len(product.Reviews)
	product.Rating.Average = float64(total) / float64(len(product.Reviews))

	if err := s.products.Update(ctx, product); err != nil {
		return nil, err
	}
	return product, nil
}

func validateProduct(p *models.Product) error {
	if p.Name == "" {
		return fmt.Errorf("%w: product name is required", ErrValidation)
	}
	if p.Price < 0 {
		return fmt.Errorf("%w: price cannot be negative", ErrValidation)
	}
	if !models.IsValidCategory(p.Category) {
		return fmt.Errorf("%w: unknown category %q", ErrValidation, p.Category)
	}
	if len(p.Images) == 0 {
		return fmt.Errorf("%w: at least one product image is required", ErrValidation)
	}
	for _, size := range p.Sizes {
		if size.Stock < 0 {
			return fmt.Errorf("%w: stock cannot be negative", ErrValidation)
		}
	}
	return nil
}

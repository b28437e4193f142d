package services

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"fashion-store/models"
)

const (
	// DefaultRecommendationLimit caps result lists unless the caller
	// overrides it.
	DefaultRecommendationLimit = 8
	maxRecommendationLimit     = 50

	trendingWindow = 30 * 24 * time.Hour
)

// RecommendationService is the read-only analytics side: ranked product lists
// derived from the catalog and the order ledger. It never mutates state.
type RecommendationService struct {
	products ProductStore
	orders   OrderStore
	now      func() time.Time
}

// NewRecommendationService wires the recommendation engine.
func NewRecommendationService(products ProductStore, orders OrderStore) *RecommendationService {
	return &RecommendationService{
		products: products,
		orders:   orders,
		now:      time.Now,
	}
}

// ClampLimit normalizes a caller-supplied limit.
func ClampLimit(limit int64) int64 {
	if limit < 1 {
		return DefaultRecommendationLimit
	}
	if limit > maxRecommendationLimit {
		return maxRecommendationLimit
	}
	return limit
}

// Popular ranks active products by sales, then rating.
func (s *RecommendationService) Popular(ctx context.Context, category string, limit int64) ([]models.ProductSummary, error) {
	return s.products.PopularSummaries(ctx, category, ClampLimit(limit))
}

// Trending ranks products by quantity sold in paid orders over the last 30
// days. The aggregation order is preserved through the join back to the
// catalog; products that went inactive are silently dropped, not replaced.
// An optional category narrows the result at the join.
func (s *RecommendationService) Trending(ctx context.Context, category string, limit int64) ([]models.ProductSummary, error) {
	limit = ClampLimit(limit)
	since := s.now().Add(-trendingWindow)

	entries, err := s.orders.TrendingSince(ctx, since, limit)
	if err != nil {
		return nil, err
	}
	if len(entries) == 0 {
		return nil, nil
	}

	ids := make([]primitive.ObjectID, len(entries))
	for i, e := range entries {
		ids[i] = e.ProductID
	}
	summaries, err := s.products.ActiveSummariesByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}

	byID := make(map[primitive.ObjectID]models.ProductSummary, len(summaries))
	for _, p := range summaries {
		byID[p.ID] = p
	}

	ranked := make([]models.ProductSummary, 0, len(entries))
	for _, e := range entries {
		p, ok := byID[e.ProductID]
		if !ok {
			continue
		}
		if category != "" && p.Category != category {
			continue
		}
		ranked = append(ranked, p)
	}
	return ranked, nil
}

// Personalized recommends active products sharing a category or brand with
// the user's paid purchase history, excluding what they already bought. Users
// with no qualifying history get the popular list instead.
func (s *RecommendationService) Personalized(ctx context.Context, userID primitive.ObjectID, limit int64) ([]models.ProductSummary, error) {
	limit = ClampLimit(limit)

	history, err := s.orders.PaidByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if len(history) == 0 {
		return s.products.PopularSummaries(ctx, "", limit)
	}

	purchasedIDs := make(map[primitive.ObjectID]struct{})
	for _, order := range history {
		for _, item := range order.Items {
			purchasedIDs[item.ProductID] = struct{}{}
		}
	}

	ids := make([]primitive.ObjectID, 0, len(purchasedIDs))
	for id := range purchasedIDs {
		ids = append(ids, id)
	}
	// Inactive products still count toward history; their categories and
	// brands remain useful signals.
	purchased, err := s.products.FindByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}

	categories := uniqueStrings(purchased, func(p models.Product) string { return p.Category })
	brands := uniqueStrings(purchased, func(p models.Product) string { return p.Brand })

	return s.products.RecommendableSummaries(ctx, categories, brands, ids, limit)
}

// Similar ranks active products related to a reference product by category,
// subcategory and brand.
func (s *RecommendationService) Similar(ctx context.Context, productID primitive.ObjectID, limit int64) ([]models.ProductSummary, error) {
	ref, err := s.products.FindByID(ctx, productID)
	if err != nil {
		return nil, err
	}
	return s.products.SimilarSummaries(ctx, ref, ClampLimit(limit))
}

// Category lists one category, optional subcategory, with a caller-selected
// sort: popular (default), rating, newest, price-low, price-high.
func (s *RecommendationService) Category(ctx context.Context, category, subcategory, sortBy string, limit int64) ([]models.ProductSummary, error) {
	return s.products.CategorySummaries(ctx, category, subcategory, sortBy, ClampLimit(limit))
}

// RecentlyViewed surfaces the most browsed active products.
func (s *RecommendationService) RecentlyViewed(ctx context.Context, limit int64) ([]models.ProductSummary, error) {
	return s.products.MostViewedSummaries(ctx, ClampLimit(limit))
}

// Seasonal matches products tagged for the current season.
func (s *RecommendationService) Seasonal(ctx context.Context, limit int64) ([]models.ProductSummary, []string, error) {
	tags := SeasonalTags(s.now())
	products, err := s.products.SeasonalSummaries(ctx, tags, ClampLimit(limit))
	if err != nil {
		return nil, nil, err
	}
	return products, tags, nil
}

// SeasonalTags derives the tag set for the calendar month: three 3-month
// bands plus winter for the remainder.
func SeasonalTags(t time.Time) []string {
	switch m := t.Month(); {
	case m >= time.March && m <= time.May:
		return []string{"spring", "light", "casual"}
	case m >= time.June && m <= time.August:
		return []string{"summer", "beach", "shorts", "light"}
	case m >= time.September && m <= time.November:
		return []string{"fall", "autumn", "jacket", "warm"}
	default:
		return []string{"winter", "coat", "warm", "heavy"}
	}
}

func uniqueStrings(products []models.Product, key func(models.Product) string) []string {
	seen := make(map[string]struct{})
	var out []string
	for _, p := range products {
		v := key(p)
		if v == "" {
			continue
		}
		if _, ok := seen[v]; !ok {
			seen[v] = struct{}{}
			out = append(out, v)
		}
	}
	return out
}

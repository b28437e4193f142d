package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"fashion-store/models"
	"fashion-store/services"
)

// summaryProjection trims product documents for listing/recommendation reads.
var summaryProjection = bson.M{
	"name": 1, "price": 1, "images": 1, "category": 1,
	"subcategory": 1, "brand": 1, "rating": 1, "sold_count": 1,
}

// ProductStore is the Mongo-backed catalog store.
type ProductStore struct {
	col *mongo.Collection
}

// NewProductStore returns a catalog store over db's products collection.
func NewProductStore(db *mongo.Database) *ProductStore {
	return &ProductStore{col: db.Collection("products")}
}

func (s *ProductStore) Insert(ctx context.Context, p *models.Product) error {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	now := time.Now().UTC()
	p.CreatedAt = now
	p.UpdatedAt = now
	p.RecomputeTotalStock()

	res, err := s.col.InsertOne(ctx, p)
	if err != nil {
		return fmt.Errorf("insert product: %w", err)
	}
	p.ID = res.InsertedID.(primitive.ObjectID)
	return nil
}

func (s *ProductStore) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Product, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	var p models.Product
	err := s.col.FindOne(ctx, bson.M{"_id": id}).Decode(&p)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, services.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find product: %w", err)
	}
	return &p, nil
}

func (s *ProductStore) FindByIDs(ctx context.Context, ids []primitive.ObjectID) ([]models.Product, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	cursor, err := s.col.Find(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return nil, fmt.Errorf("find products: %w", err)
	}
	var products []models.Product
	if err := cursor.All(ctx, &products); err != nil {
		return nil, fmt.Errorf("decode products: %w", err)
	}
	return products, nil
}

// List runs the customer catalog query: active products only, filters,
// sorting and pagination. Reviews are projected out for size.
func (s *ProductStore) List(ctx context.Context, q services.ProductQuery) ([]models.Product, int64, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	filter := bson.M{"is_active": true}
	if q.Category != "" {
		filter["category"] = q.Category
	}
	if q.Subcategory != "" {
		filter["subcategory"] = q.Subcategory
	}
	if q.Brand != "" {
		filter["brand"] = primitive.Regex{Pattern: q.Brand, Options: "i"}
	}
	if q.MinPrice > 0 || q.MaxPrice > 0 {
		price := bson.M{}
		if q.MinPrice > 0 {
			price["$gte"] = q.MinPrice
		}
		if q.MaxPrice > 0 {
			price["$lte"] = q.MaxPrice
		}
		filter["price"] = price
	}
	if q.Size != "" {
		filter["sizes.size"] = q.Size
	}
	if q.Featured {
		filter["is_featured"] = true
	}
	if q.Search != "" {
		filter["$text"] = bson.M{"$search": q.Search}
	}

	total, err := s.col.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("count products: %w", err)
	}

	page, limit := q.Page, q.Limit
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 12
	}

	opts := options.Find().
		SetProjection(bson.M{"reviews": 0}).
		SetSort(listSort(q.Sort)).
		SetSkip((page - 1) * limit).
		SetLimit(limit)

	cursor, err := s.col.Find(ctx, filter, opts)
	if err != nil {
		return nil, 0, fmt.Errorf("list products: %w", err)
	}
	var products []models.Product
	if err := cursor.All(ctx, &products); err != nil {
		return nil, 0, fmt.Errorf("decode products: %w", err)
	}
	return products, total, nil
}

func listSort(sort string) bson.D {
	switch sort {
	case "price-low":
		return bson.D{{Key: "price", Value: 1}}
	case "price-high":
		return bson.D{{Key: "price", Value: -1}}
	case "rating":
		return bson.D{{Key: "rating.average", Value: -1}, {Key: "rating.count", Value: -1}}
	case "popular":
		return bson.D{{Key: "sold_count", Value: -1}, {Key: "rating.average", Value: -1}}
	default:
		return bson.D{{Key: "created_at", Value: -1}}
	}
}

func (s *ProductStore) Update(ctx context.Context, p *models.Product) error {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	p.UpdatedAt = time.Now().UTC()
	p.RecomputeTotalStock()

	res, err := s.col.ReplaceOne(ctx, bson.M{"_id": p.ID}, p)
	if err != nil {
		return fmt.Errorf("update product: %w", err)
	}
	if res.MatchedCount == 0 {
		return services.ErrNotFound
	}
	return nil
}

// SoftDelete flips is_active; the document stays addressable for historical
// orders.
func (s *ProductStore) SoftDelete(ctx context.Context, id primitive.ObjectID) error {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	res, err := s.col.UpdateOne(ctx, bson.M{"_id": id}, bson.M{
		"$set": bson.M{"is_active": false, "updated_at": time.Now().UTC()},
	})
	if err != nil {
		return fmt.Errorf("soft delete product: %w", err)
	}
	if res.MatchedCount == 0 {
		return services.ErrNotFound
	}
	return nil
}

func (s *ProductStore) DistinctActive(ctx context.Context, field string) ([]string, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	raw, err := s.col.Distinct(ctx, field, bson.M{"is_active": true})
	if err != nil {
		return nil, fmt.Errorf("distinct %s: %w", field, err)
	}
	values := make([]string, 0, len(raw))
	for _, v := range raw {
		if str, ok := v.(string); ok && str != "" {
			values = append(values, str)
		}
	}
	return values, nil
}

// AdjustStock applies delta to one (product, size) entry in a single
// conditional update. The $elemMatch guard makes decrement-if-enough atomic,
// which closes the two-checkouts-for-the-last-unit race; the cached
// total_stock moves with the same $inc.
func (s *ProductStore) AdjustStock(ctx context.Context, productID primitive.ObjectID, size string, delta int, requireNonNegative bool) error {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	sizeCond := bson.M{"size": size}
	if requireNonNegative && delta < 0 {
		sizeCond["stock"] = bson.M{"$gte": -delta}
	}
	filter := bson.M{
		"_id":   productID,
		"sizes": bson.M{"$elemMatch": sizeCond},
	}
	update := bson.M{
		"$inc": bson.M{"sizes.$.stock": delta, "total_stock": delta},
		"$set": bson.M{"updated_at": time.Now().UTC()},
	}

	res, err := s.col.UpdateOne(ctx, filter, update)
	if err != nil {
		return fmt.Errorf("adjust stock: %w", err)
	}
	if res.MatchedCount == 0 {
		if requireNonNegative {
			return services.ErrInsufficientStock
		}
		return services.ErrNotFound
	}
	return nil
}

func (s *ProductStore) IncViewCount(ctx context.Context, id primitive.ObjectID) error {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	_, err := s.col.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$inc": bson.M{"view_count": 1}})
	if err != nil {
		return fmt.Errorf("inc view count: %w", err)
	}
	return nil
}

func (s *ProductStore) IncSoldCount(ctx context.Context, id primitive.ObjectID, delta int) error {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	_, err := s.col.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$inc": bson.M{"sold_count": delta}})
	if err != nil {
		return fmt.Errorf("inc sold count: %w", err)
	}
	return nil
}

func (s *ProductStore) summaries(ctx context.Context, filter bson.M, sort bson.D, limit int64) ([]models.ProductSummary, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	opts := options.Find().SetProjection(summaryProjection)
	if sort != nil {
		opts.SetSort(sort)
	}
	if limit > 0 {
		opts.SetLimit(limit)
	}
	cursor, err := s.col.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("find summaries: %w", err)
	}
	var summaries []models.ProductSummary
	if err := cursor.All(ctx, &summaries); err != nil {
		return nil, fmt.Errorf("decode summaries: %w", err)
	}
	return summaries, nil
}

var (
	sortBySales  = bson.D{{Key: "sold_count", Value: -1}, {Key: "rating.average", Value: -1}}
	sortByRating = bson.D{{Key: "rating.average", Value: -1}, {Key: "sold_count", Value: -1}}
)

func (s *ProductStore) PopularSummaries(ctx context.Context, category string, limit int64) ([]models.ProductSummary, error) {
	filter := bson.M{"is_active": true}
	if category != "" {
		filter["category"] = category
	}
	return s.summaries(ctx, filter, sortBySales, limit)
}

func (s *ProductStore) MostViewedSummaries(ctx context.Context, limit int64) ([]models.ProductSummary, error) {
	sort := bson.D{{Key: "view_count", Value: -1}, {Key: "rating.average", Value: -1}}
	return s.summaries(ctx, bson.M{"is_active": true}, sort, limit)
}

func (s *ProductStore) SeasonalSummaries(ctx context.Context, tags []string, limit int64) ([]models.ProductSummary, error) {
	filter := bson.M{"is_active": true, "tags": bson.M{"$in": tags}}
	return s.summaries(ctx, filter, sortByRating, limit)
}

// SimilarSummaries matches (category+subcategory) or (category+brand) or
// (brand) against the reference product, excluding it.
func (s *ProductStore) SimilarSummaries(ctx context.Context, ref *models.Product, limit int64) ([]models.ProductSummary, error) {
	filter := bson.M{
		"is_active": true,
		"_id":       bson.M{"$ne": ref.ID},
		"$or": []bson.M{
			{"category": ref.Category, "subcategory": ref.Subcategory},
			{"category": ref.Category, "brand": ref.Brand},
			{"brand": ref.Brand},
		},
	}
	return s.summaries(ctx, filter, sortByRating, limit)
}

func (s *ProductStore) CategorySummaries(ctx context.Context, category, subcategory, sortBy string, limit int64) ([]models.ProductSummary, error) {
	filter := bson.M{"is_active": true, "category": category}
	if subcategory != "" {
		filter["subcategory"] = subcategory
	}

	var sort bson.D
	switch sortBy {
	case "rating":
		sort = bson.D{{Key: "rating.average", Value: -1}, {Key: "rating.count", Value: -1}}
	case "newest":
		sort = bson.D{{Key: "created_at", Value: -1}}
	case "price-low":
		sort = bson.D{{Key: "price", Value: 1}}
	case "price-high":
		sort = bson.D{{Key: "price", Value: -1}}
	default:
		sort = sortBySales
	}
	return s.summaries(ctx, filter, sort, limit)
}

func (s *ProductStore) RecommendableSummaries(ctx context.Context, categories, brands []string, exclude []primitive.ObjectID, limit int64) ([]models.ProductSummary, error) {
	filter := bson.M{
		"is_active": true,
		"$or": []bson.M{
			{"category": bson.M{"$in": categories}},
			{"brand": bson.M{"$in": brands}},
		},
	}
	if len(exclude) > 0 {
		filter["_id"] = bson.M{"$nin": exclude}
	}
	return s.summaries(ctx, filter, sortByRating, limit)
}

func (s *ProductStore) ActiveSummariesByIDs(ctx context.Context, ids []primitive.ObjectID) ([]models.ProductSummary, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	filter := bson.M{"_id": bson.M{"$in": ids}, "is_active": true}
	return s.summaries(ctx, filter, nil, 0)
}

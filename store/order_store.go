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

// OrderStore is the Mongo-backed order ledger.
type OrderStore struct {
	col      *mongo.Collection
	counters *mongo.Collection
}

// NewOrderStore returns an order ledger over db's orders collection. Order
// numbers draw from a sequence document in the counters collection.
func NewOrderStore(db *mongo.Database) *OrderStore {
	return &OrderStore{
		col:      db.Collection("orders"),
		counters: db.Collection("counters"),
	}
}

// NextOrderNumber issues the next order number from an atomic sequence.
// FindOneAndUpdate with $inc + upsert is a single document operation, so
// concurrent checkouts can never draw the same number.
func (s *OrderStore) NextOrderNumber(ctx context.Context) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	opts := options.FindOneAndUpdate().
		SetUpsert(true).
		SetReturnDocument(options.After)

	var counter struct {
		Seq int64 `bson:"seq"`
	}
	err := s.counters.FindOneAndUpdate(ctx,
		bson.M{"_id": "orders"},
		bson.M{"$inc": bson.M{"seq": 1}},
		opts,
	).Decode(&counter)
	if err != nil {
		return "", fmt.Errorf("next order sequence: %w", err)
	}

	// %04d pads but never truncates, so the sequence alone keeps numbers
	// unique after the pad width is exhausted.
	return fmt.Sprintf("NF%d%04d", time.Now().UnixMilli(), counter.Seq), nil
}

func (s *OrderStore) Insert(ctx context.Context, o *models.Order) error {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	now := time.Now().UTC()
	o.CreatedAt = now
	o.UpdatedAt = now

	res, err := s.col.InsertOne(ctx, o)
	if err != nil {
		return fmt.Errorf("insert order: %w", err)
	}
	o.ID = res.InsertedID.(primitive.ObjectID)
	return nil
}

func (s *OrderStore) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Order, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	var o models.Order
	err := s.col.FindOne(ctx, bson.M{"_id": id}).Decode(&o)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, services.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find order: %w", err)
	}
	return &o, nil
}

func (s *OrderStore) Update(ctx context.Context, o *models.Order) error {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	o.UpdatedAt = time.Now().UTC()
	res, err := s.col.ReplaceOne(ctx, bson.M{"_id": o.ID}, o)
	if err != nil {
		return fmt.Errorf("update order: %w", err)
	}
	if res.MatchedCount == 0 {
		return services.ErrNotFound
	}
	return nil
}

func (s *OrderStore) ListByUser(ctx context.Context, userID primitive.ObjectID, status models.OrderStatus, page, limit int64) ([]models.Order, int64, error) {
	filter := bson.M{"user_id": userID}
	if status != "" {
		filter["status"] = status
	}
	return s.list(ctx, filter, page, limit)
}

func (s *OrderStore) ListAll(ctx context.Context, f services.OrderFilter, page, limit int64) ([]models.Order, int64, error) {
	return s.list(ctx, adminFilter(f), page, limit)
}

func (s *OrderStore) list(ctx context.Context, filter bson.M, page, limit int64) ([]models.Order, int64, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	total, err := s.col.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("count orders: %w", err)
	}

	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 10
	}
	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}}).
		SetSkip((page - 1) * limit).
		SetLimit(limit)

	cursor, err := s.col.Find(ctx, filter, opts)
	if err != nil {
		return nil, 0, fmt.Errorf("list orders: %w", err)
	}
	var orders []models.Order
	if err := cursor.All(ctx, &orders); err != nil {
		return nil, 0, fmt.Errorf("decode orders: %w", err)
	}
	return orders, total, nil
}

func adminFilter(f services.OrderFilter) bson.M {
	filter := bson.M{}
	if f.Status != "" {
		filter["status"] = f.Status
	}
	if f.PaymentStatus != "" {
		filter["payment_status"] = f.PaymentStatus
	}
	if f.StartDate != nil || f.EndDate != nil {
		created := bson.M{}
		if f.StartDate != nil {
			created["$gte"] = *f.StartDate
		}
		if f.EndDate != nil {
			created["$lte"] = *f.EndDate
		}
		filter["created_at"] = created
	}
	return filter
}

// Stats aggregates revenue figures over the filtered order set.
func (s *OrderStore) Stats(ctx context.Context, f services.OrderFilter) (*models.OrderStats, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: adminFilter(f)}},
		{{Key: "$group", Value: bson.M{
			"_id":                 nil,
			"total_revenue":       bson.M{"$sum": "$total"},
			"average_order_value": bson.M{"$avg": "$total"},
			"total_orders":        bson.M{"$sum": 1},
		}}},
	}

	cursor, err := s.col.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("order stats: %w", err)
	}
	var rows []models.OrderStats
	if err := cursor.All(ctx, &rows); err != nil {
		return nil, fmt.Errorf("decode order stats: %w", err)
	}
	if len(rows) == 0 {
		return &models.OrderStats{}, nil
	}
	return &rows[0], nil
}

// paidStatuses are the order states that count as a completed sale.
var paidStatuses = []models.OrderStatus{
	models.StatusConfirmed, models.StatusProcessing,
	models.StatusShipped, models.StatusDelivered,
}

// TrendingSince groups recent paid orders by product, summing quantities and
// counting orders, most sold first.
func (s *OrderStore) TrendingSince(ctx context.Context, since time.Time, limit int64) ([]services.TrendingEntry, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{
			"created_at": bson.M{"$gte": since},
			"status":     bson.M{"$in": paidStatuses},
		}}},
		{{Key: "$unwind", Value: "$items"}},
		{{Key: "$group", Value: bson.M{
			"_id":         "$items.product_id",
			"total_sold":  bson.M{"$sum": "$items.quantity"},
			"order_count": bson.M{"$sum": 1},
		}}},
		{{Key: "$sort", Value: bson.D{
			{Key: "total_sold", Value: -1},
			{Key: "order_count", Value: -1},
		}}},
		{{Key: "$limit", Value: limit}},
	}

	cursor, err := s.col.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("trending aggregation: %w", err)
	}
	var entries []services.TrendingEntry
	if err := cursor.All(ctx, &entries); err != nil {
		return nil, fmt.Errorf("decode trending entries: %w", err)
	}
	return entries, nil
}

// PaidByUser returns the user's orders in paid states, for the personalized
// recommendation history.
func (s *OrderStore) PaidByUser(ctx context.Context, userID primitive.ObjectID) ([]models.Order, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	filter := bson.M{
		"user_id": userID,
		"status":  bson.M{"$in": paidStatuses},
	}
	cursor, err := s.col.Find(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("find paid orders: %w", err)
	}
	var orders []models.Order
	if err := cursor.All(ctx, &orders); err != nil {
		return nil, fmt.Errorf("decode paid orders: %w", err)
	}
	return orders, nil
}

package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"fashion-store/models"
	"fashion-store/services"
)

// UserStore is the Mongo-backed account store.
type UserStore struct {
	col *mongo.Collection
}

// NewUserStore returns an account store over db's users collection.
func NewUserStore(db *mongo.Database) *UserStore {
	return &UserStore{col: db.Collection("users")}
}

func (s *UserStore) Insert(ctx context.Context, u *models.User) error {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	now := time.Now().UTC()
	u.CreatedAt = now
	u.UpdatedAt = now
	if u.Cart == nil {
		u.Cart = []models.CartItem{}
	}

	res, err := s.col.InsertOne(ctx, u)
	if mongo.IsDuplicateKeyError(err) {
		return services.ErrConflict
	}
	if err != nil {
		return fmt.Errorf("insert user: %w", err)
	}
	u.ID = res.InsertedID.(primitive.ObjectID)
	return nil
}

func (s *UserStore) FindByID(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	return s.findOne(ctx, bson.M{"_id": id})
}

func (s *UserStore) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	return s.findOne(ctx, bson.M{"email": models.NormalizeEmail(email)})
}

func (s *UserStore) findOne(ctx context.Context, filter bson.M) (*models.User, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	var u models.User
	err := s.col.FindOne(ctx, filter).Decode(&u)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, services.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find user: %w", err)
	}
	return &u, nil
}

func (s *UserStore) Update(ctx context.Context, u *models.User) error {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	u.UpdatedAt = time.Now().UTC()
	res, err := s.col.ReplaceOne(ctx, bson.M{"_id": u.ID}, u)
	if err != nil {
		return fmt.Errorf("update user: %w", err)
	}
	if res.MatchedCount == 0 {
		return services.ErrNotFound
	}
	return nil
}

func (s *UserStore) UpdateCart(ctx context.Context, userID primitive.ObjectID, cart []models.CartItem) error {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	if cart == nil {
		cart = []models.CartItem{}
	}
	res, err := s.col.UpdateOne(ctx, bson.M{"_id": userID}, bson.M{
		"$set": bson.M{"cart": cart, "updated_at": time.Now().UTC()},
	})
	if err != nil {
		return fmt.Errorf("update cart: %w", err)
	}
	if res.MatchedCount == 0 {
		return services.ErrNotFound
	}
	return nil
}

func (s *UserStore) ClearCart(ctx context.Context, userID primitive.ObjectID) error {
	return s.UpdateCart(ctx, userID, []models.CartItem{})
}

// DebitBalance subtracts amount from the user's balance only while the
// balance covers it. The balance >= amount guard and the $inc run as one
// update, so no interleaved checkout can observe a stale balance.
func (s *UserStore) DebitBalance(ctx context.Context, userID primitive.ObjectID, amount float64) error {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	filter := bson.M{"_id": userID, "balance": bson.M{"$gte": amount}}
	update := bson.M{
		"$inc": bson.M{"balance": -amount},
		"$set": bson.M{"updated_at": time.Now().UTC()},
	}
	res, err := s.col.UpdateOne(ctx, filter, update)
	if err != nil {
		return fmt.Errorf("debit balance: %w", err)
	}
	if res.MatchedCount == 0 {
		// No match means either the balance guard failed or the user is
		// gone; tell them apart so a vanished account is not a 400.
		if err := s.col.FindOne(ctx, bson.M{"_id": userID}).Err(); errors.Is(err, mongo.ErrNoDocuments) {
			return services.ErrNotFound
		}
		return services.ErrInsufficientBalance
	}
	return nil
}

func (s *UserStore) CreditBalance(ctx context.Context, userID primitive.ObjectID, amount float64) error {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	res, err := s.col.UpdateOne(ctx, bson.M{"_id": userID}, bson.M{
		"$inc": bson.M{"balance": amount},
		"$set": bson.M{"updated_at": time.Now().UTC()},
	})
	if err != nil {
		return fmt.Errorf("credit balance: %w", err)
	}
	if res.MatchedCount == 0 {
		return services.ErrNotFound
	}
	return nil
}

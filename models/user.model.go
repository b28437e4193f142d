package models

import (
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Roles known to the system.
const (
	RoleCustomer = "customer"
	RoleAdmin    = "admin"
)

// Address is a shipping or billing address.
type Address struct {
	FirstName string `bson:"first_name" json:"firstName"`
	LastName  string `bson:"last_name" json:"lastName"`
	Email     string `bson:"email,omitempty" json:"email,omitempty"`
	Phone     string `bson:"phone,omitempty" json:"phone,omitempty"`
	Street    string `bson:"street" json:"street"`
	City      string `bson:"city" json:"city"`
	State     string `bson:"state" json:"state"`
	ZipCode   string `bson:"zip_code" json:"zipCode"`
	Country   string `bson:"country" json:"country"`
}

// CartItem is a mutable sub-document in a user's cart. Each entry carries its
// own ID so it can be updated or removed individually.
type CartItem struct {
	ID        string             `bson:"item_id" json:"itemId"`
	ProductID primitive.ObjectID `bson:"product_id" json:"productId"`
	Quantity  int                `bson:"quantity" json:"quantity"`
	Size      string             `bson:"size,omitempty" json:"size,omitempty"`
	Color     string             `bson:"color,omitempty" json:"color,omitempty"`
}

// User represents an account. Users are never hard-deleted; IsActive gates
// login instead.
type User struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id,omitempty"`
	Name      string             `bson:"name" json:"name"`
	Email     string             `bson:"email" json:"email"`
	Password  string             `bson:"password" json:"-"`
	Role      string             `bson:"role" json:"role"`
	Balance   float64            `bson:"balance" json:"balance"`
	Cart      []CartItem         `bson:"cart" json:"cart"`
	Address   Address            `bson:"address,omitempty" json:"address,omitempty"`
	IsActive  bool               `bson:"is_active" json:"isActive"`
	LastLogin time.Time          `bson:"last_login,omitempty" json:"lastLogin,omitempty"`
	CreatedAt time.Time          `bson:"created_at" json:"createdAt"`
	UpdatedAt time.Time          `bson:"updated_at" json:"updatedAt"`
}

// NormalizeEmail case-folds an email address; user uniqueness is over the
// folded form.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// CartEntry returns the cart item with the given sub-document ID, or nil.
func (u *User) CartEntry(itemID string) *CartItem {
	for i := range u.Cart {
		if u.Cart[i].ID == itemID {
			return &u.Cart[i]
		}
	}
	return nil
}

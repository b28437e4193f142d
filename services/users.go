package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/crypto/bcrypt"

	"fashion-store/models"
)

// Credentials is the login input.
type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Registration is the signup input.
type Registration struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// CartAdd is the add-to-cart input.
type CartAdd struct {
	ProductID primitive.ObjectID `json:"productId"`
	Quantity  int                `json:"quantity"`
	Size      string             `json:"size,omitempty"`
	Color     string             `json:"color,omitempty"`
}

// CartView is a cart entry joined with its product's display fields.
type CartView struct {
	models.CartItem
	Name       string  `json:"name"`
	Price      float64 `json:"price"`
	Image      string  `json:"image,omitempty"`
	TotalStock int     `json:"totalStock"`
}

// UserService owns accounts and carts.
type UserService struct {
	users    UserStore
	products ProductStore
	notifier Notifier
}

// NewUserService wires the account workflows.
func NewUserService(users UserStore, products ProductStore, notifier Notifier) *UserService {
	return &UserService{users: users, products: products, notifier: notifier}
}

// Register creates an account with a case-folded unique email and a bcrypt
// password hash. ErrConflict when the email is taken.
func (s *UserService) Register(ctx context.Context, reg Registration) (*models.User, error) {
	if reg.Name == "" || reg.Email == "" {
		return nil, fmt.Errorf("%w: name and email are required", ErrValidation)
	}
	if len(reg.Password) < 6 {
		return nil, fmt.Errorf("%w: password must be at least 6 characters", ErrValidation)
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(reg.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := &models.User{
		Name:     reg.Name,
		Email:    models.NormalizeEmail(reg.Email),
		Password: string(hashed),
		Role:     models.RoleCustomer,
		Cart:     []models.CartItem{},
		IsActive: true,
	}
	if err := s.users.Insert(ctx, user); err != nil {
		if errors.Is(err, ErrConflict) {
			return nil, fmt.Errorf("%w: user already exists with this email", ErrConflict)
		}
		return nil, err
	}

	go func(u models.User) {
		if err := s.notifier.SendWelcome(&u); err != nil {
			log.Error().Err(err).Str("email", u.Email).Msg("users: welcome email failed")
		}
	}(*user)

	log.Info().Str("email", user.Email).Msg("user registered")
	return user, nil
}

// Authenticate verifies credentials and stamps last login. Every failure mode
// maps to the same ErrForbidden so the response does not leak which part was
// wrong.
func (s *UserService) Authenticate(ctx context.Context, creds Credentials) (*models.User, error) {
	user, err := s.users.FindByEmail(ctx, creds.Email)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid email or password", ErrForbidden)
	}
	if !user.IsActive {
		return nil, fmt.Errorf("%w: account is deactivated", ErrForbidden)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(creds.Password)); err != nil {
		return nil, fmt.Errorf("%w: invalid email or password", ErrForbidden)
	}

	user.LastLogin = time.Now().UTC()
	if err := s.users.Update(ctx, user); err != nil {
		log.Error().Err(err).Str("email", user.Email).Msg("users: last login stamp failed")
	}
	return user, nil
}

// Profile returns the account document.
func (s *UserService) Profile(ctx context.Context, userID primitive.ObjectID) (*models.User, error) {
	return s.users.FindByID(ctx, userID)
}

// UpdateProfile applies the mutable profile fields.
func (s *UserService) UpdateProfile(ctx context.Context, userID primitive.ObjectID, name string, address *models.Address) (*models.User, error) {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if name != "" {
		user.Name = name
	}
	if address != nil {
		user.Address = *address
	}
	if err := s.users.Update(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// Cart returns the user's cart enriched with product display fields.
func (s *UserService) Cart(ctx context.Context, userID primitive.ObjectID) ([]CartView, error) {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	return s.enrichCart(ctx, user.Cart)
}

// AddToCart merges the request into the cart: an existing entry with the same
// product, size and color grows; anything else appends a new entry with its
// own sub-document ID.
func (s *UserService) AddToCart(ctx context.Context, userID primitive.ObjectID, add CartAdd) ([]CartView, error) {
	if add.Quantity < 1 {
		add.Quantity = 1
	}

	product, err := s.products.FindByID(ctx, add.ProductID)
	if err != nil {
		return nil, err
	}
	if !product.IsActive {
		return nil, fmt.Errorf("%w: product is unavailable", ErrValidation)
	}

	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	merged := false
	for i := range user.Cart {
		item := &user.Cart[i]
		if item.ProductID == add.ProductID && item.Size == add.Size && item.Color == add.Color {
			item.Quantity += add.Quantity
			merged = true
			break
		}
	}
	if !merged {
		user.Cart = append(user.Cart, models.CartItem{
			ID:        uuid.NewString(),
			ProductID: add.ProductID,
			Quantity:  add.Quantity,
			Size:      add.Size,
			Color:     add.Color,
		})
	}

	if err := s.users.UpdateCart(ctx, userID, user.Cart); err != nil {
		return nil, err
	}
	return s.enrichCart(ctx, user.Cart)
}

// UpdateCartItem sets the quantity of one cart entry by its sub-document ID.
func (s *UserService) UpdateCartItem(ctx context.Context, userID primitive.ObjectID, itemID string, quantity int) ([]CartView, error) {
	if quantity < 1 {
		return nil, fmt.Errorf("%w: quantity must be at least 1", ErrValidation)
	}

	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	entry := user.CartEntry(itemID)
	if entry == nil {
		return nil, fmt.Errorf("%w: cart item", ErrNotFound)
	}
	entry.Quantity = quantity

	if err := s.users.UpdateCart(ctx, userID, user.Cart); err != nil {
		return nil, err
	}
	return s.enrichCart(ctx, user.Cart)
}

// RemoveFromCart drops one cart entry by its sub-document ID.
func (s *UserService) RemoveFromCart(ctx context.Context, userID primitive.ObjectID, itemID string) ([]CartView, error) {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	kept := user.Cart[:0]
	found := false
	for _, item := range user.Cart {
		if item.ID == itemID {
			found = true
			continue
		}
		kept = append(kept, item)
	}
	if !found {
		return nil, fmt.Errorf("%w: cart item", ErrNotFound)
	}

	if err := s.users.UpdateCart(ctx, userID, kept); err != nil {
		return nil, err
	}
	return s.enrichCart(ctx, kept)
}

// ClearCart empties the cart.
func (s *UserService) ClearCart(ctx context.Context, userID primitive.ObjectID) error {
	return s.users.ClearCart(ctx, userID)
}

func (s *UserService) enrichCart(ctx context.Context, cart []models.CartItem) ([]CartView, error) {
	if len(cart) == 0 {
		return []CartView{}, nil
	}

	ids := make([]primitive.ObjectID, 0, len(cart))
	for _, item := range cart {
		ids = append(ids, item.ProductID)
	}
	products, err := s.products.FindByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	byID := make(map[primitive.ObjectID]models.Product, len(products))
	for _, p := range products {
		byID[p.ID] = p
	}

	views := make([]CartView, 0, len(cart))
	for _, item := range cart {
		view := CartView{CartItem: item}
		if p, ok := byID[item.ProductID]; ok {
			view.Name = p.Name
			view.Price = p.Price
			view.TotalStock = p.TotalStock
			if len(p.Images) > 0 {
				view.Image = p.Images[0]
			}
		}
		views = append(views, view)
	}
	return views, nil
}

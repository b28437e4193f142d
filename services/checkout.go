package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"fashion-store/models"
)

// Notifier delivers customer notifications. Notification failures never fail
// the workflow that triggered them.
type Notifier interface {
	SendOrderConfirmation(user *models.User, order *models.Order) error
	SendWelcome(user *models.User) error
}

// CheckoutItem is one requested line of a checkout.
type CheckoutItem struct {
	ProductID primitive.ObjectID `json:"productId"`
	Quantity  int                `json:"quantity"`
	Size      string             `json:"size"`
	Color     string             `json:"color,omitempty"`
}

// CheckoutRequest is the full place-order input.
type CheckoutRequest struct {
	Items           []CheckoutItem       `json:"items"`
	ShippingAddress models.Address       `json:"shippingAddress"`
	BillingAddress  *models.Address      `json:"billingAddress,omitempty"`
	PaymentMethod   models.PaymentMethod `json:"paymentMethod"`
}

// CheckoutService orchestrates order placement: validation, balance debit,
// stock decrement, order persistence, cart clearing and notification.
type CheckoutService struct {
	users    UserStore
	products ProductStore
	orders   OrderStore
	pricing  Pricing
	notifier Notifier
}

// NewCheckoutService wires a checkout workflow.
func NewCheckoutService(users UserStore, products ProductStore, orders OrderStore, pricing Pricing, notifier Notifier) *CheckoutService {
	return &CheckoutService{
		users:    users,
		products: products,
		orders:   orders,
		pricing:  pricing,
		notifier: notifier,
	}
}

// PlaceOrder runs the checkout workflow. There is no cross-document
// transaction; instead every mutation is a conditional single-document update
// ordered so that any later failure can be compensated:
//
//	validate (reads only) -> debit balance -> decrement stock -> insert order
//
// A stock failure restores the already-decremented sizes and credits the
// balance back, so a rejected checkout leaves no mutation behind.
func (s *CheckoutService) PlaceOrder(ctx context.Context, userID primitive.ObjectID, req CheckoutRequest) (*models.Order, error) {
	if len(req.Items) == 0 {
		return nil, fmt.Errorf("%w: order must contain at least one item", ErrValidation)
	}
	for _, item := range req.Items {
		if item.Quantity < 1 {
			return nil, fmt.Errorf("%w: quantity must be at least 1", ErrValidation)
		}
	}

	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	// Validate items and snapshot prices. Reads only; nothing to undo yet.
	subtotal := decimal.Zero
	orderItems := make([]models.OrderItem, 0, len(req.Items))
	for _, item := range req.Items {
		product, err := s.products.FindByID(ctx, item.ProductID)
		if err != nil {
			if errors.Is(err, ErrNotFound) {
				return nil, fmt.Errorf("%w: product %s unavailable", ErrValidation, item.ProductID.Hex())
			}
			return nil, err
		}
		if !product.IsActive {
			return nil, fmt.Errorf("%w: product %s unavailable", ErrValidation, product.Name)
		}

		entry := product.SizeEntry(item.Size)
		if entry == nil || entry.Stock < item.Quantity {
			return nil, fmt.Errorf("%w: %s size %s", ErrInsufficientStock, product.Name, item.Size)
		}

		lineSubtotal := LineSubtotal(product.Price, item.Quantity)
		subtotal = subtotal.Add(lineSubtotal)

		image := ""
		if len(product.Images) > 0 {
			image = product.Images[0]
		}
		orderItems = append(orderItems, models.OrderItem{
			ProductID: product.ID,
			Name:      product.Name,
			Image:     image,
			Quantity:  item.Quantity,
			Size:      item.Size,
			Color:     item.Color,
			Price:     product.Price,
			Subtotal:  lineSubtotal.InexactFloat64(),
		})
	}

	totals := s.pricing.Compute(subtotal)

	// The balance check and debit are one conditional update.
	if err := s.users.DebitBalance(ctx, user.ID, totals.Total); err != nil {
		return nil, err
	}

	// Decrement stock per line, conditionally. On failure, put back what was
	// taken and refund the debit.
	for i, item := range req.Items {
		if err := s.products.AdjustStock(ctx, item.ProductID, item.Size, -item.Quantity, true); err != nil {
			s.compensate(ctx, user.ID, totals.Total, req.Items[:i])
			if errors.Is(err, ErrInsufficientStock) {
				return nil, fmt.Errorf("%w: %s size %s", ErrInsufficientStock, orderItems[i].Name, item.Size)
			}
			return nil, err
		}
	}

	orderNumber, err := s.orders.NextOrderNumber(ctx)
	if err != nil {
		s.compensate(ctx, user.ID, totals.Total, req.Items)
		return nil, err
	}

	billing := req.ShippingAddress
	if req.BillingAddress != nil {
		billing = *req.BillingAddress
	}
	order := &models.Order{
		OrderNumber:     orderNumber,
		UserID:          user.ID,
		Items:           orderItems,
		ShippingAddress: req.ShippingAddress,
		BillingAddress:  billing,
		PaymentMethod:   req.PaymentMethod,
		Subtotal:        totals.Subtotal,
		Tax:             totals.Tax,
		Shipping:        totals.Shipping,
		Total:           totals.Total,
		Status:          models.StatusPending,
		PaymentStatus:   models.PaymentPending,
	}
	if err := s.orders.Insert(ctx, order); err != nil {
		s.compensate(ctx, user.ID, totals.Total, req.Items)
		return nil, err
	}

	// The order stands for the whole cart, whatever was actually requested.
	if err := s.users.ClearCart(ctx, user.ID); err != nil {
		log.Error().Err(err).Str("user_id", user.ID.Hex()).Msg("checkout: failed to clear cart")
	}

	go func(u models.User, o models.Order) {
		if err := s.notifier.SendOrderConfirmation(&u, &o); err != nil {
			log.Error().Err(err).Str("order_number", o.OrderNumber).Msg("checkout: confirmation email failed")
		}
	}(*user, *order)

	log.Info().
		Str("order_number", order.OrderNumber).
		Str("user_id", user.ID.Hex()).
		Float64("total", order.Total).
		Msg("order placed")

	return order, nil
}

// compensate undoes a partially applied checkout: restock the decremented
// lines and credit the debited total back.
func (s *CheckoutService) compensate(ctx context.Context, userID primitive.ObjectID, total float64, decremented []CheckoutItem) {
	for _, item := range decremented {
		if err := s.products.AdjustStock(ctx, item.ProductID, item.Size, item.Quantity, false); err != nil {
			log.Error().Err(err).
				Str("product_id", item.ProductID.Hex()).
				Str("size", item.Size).
				Msg("checkout: stock compensation failed")
		}
	}
	if err := s.users.CreditBalance(ctx, userID, total); err != nil {
		log.Error().Err(err).Str("user_id", userID.Hex()).Msg("checkout: balance compensation failed")
	}
}

package services

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"fashion-store/models"
)

// allowedTransitions is the order lifecycle: pending -> confirmed ->
// processing -> shipped -> delivered, with cancelled as a side exit before
// shipping and refunded reachable from anywhere (administrative).
var allowedTransitions = map[models.OrderStatus]map[models.OrderStatus]bool{
	models.StatusPending: {
		models.StatusConfirmed: true,
		models.StatusCancelled: true,
		models.StatusRefunded:  true,
	},
	models.StatusConfirmed: {
		models.StatusProcessing: true,
		models.StatusCancelled:  true,
		models.StatusRefunded:   true,
	},
	models.StatusProcessing: {
		models.StatusShipped:   true,
		models.StatusCancelled: true,
		models.StatusRefunded:  true,
	},
	models.StatusShipped: {
		models.StatusDelivered: true,
		models.StatusRefunded:  true,
	},
	models.StatusDelivered: {
		models.StatusRefunded: true,
	},
	models.StatusCancelled: {
		models.StatusRefunded: true,
	},
	models.StatusRefunded: {},
}

// cancellableStatuses are the states a customer may cancel from.
var cancellableStatuses = map[models.OrderStatus]bool{
	models.StatusPending:    true,
	models.StatusConfirmed:  true,
	models.StatusProcessing: true,
}

// StatusUpdate is the admin transition input.
type StatusUpdate struct {
	Status            models.OrderStatus `json:"status"`
	TrackingNumber    string             `json:"trackingNumber,omitempty"`
	EstimatedDelivery *time.Time         `json:"estimatedDelivery,omitempty"`
}

// OrderService owns the order lifecycle and the read side of the ledger.
type OrderService struct {
	orders         OrderStore
	products       ProductStore
	users          UserStore
	refundOnCancel bool
}

// NewOrderService wires the order lifecycle workflow. refundOnCancel controls
// whether a customer cancellation credits the total back to their balance.
func NewOrderService(orders OrderStore, products ProductStore, users UserStore, refundOnCancel bool) *OrderService {
	return &OrderService{
		orders:         orders,
		products:       products,
		users:          users,
		refundOnCancel: refundOnCancel,
	}
}

// Get returns one order, visible to its owner or an admin.
func (s *OrderService) Get(ctx context.Context, orderID, requesterID primitive.ObjectID, requesterRole string) (*models.Order, error) {
	order, err := s.orders.FindByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order.UserID != requesterID && requesterRole != models.RoleAdmin {
		return nil, ErrForbidden
	}
	return order, nil
}

// ListForUser pages through the caller's own orders.
func (s *OrderService) ListForUser(ctx context.Context, userID primitive.ObjectID, status models.OrderStatus, page, limit int64) ([]models.Order, models.Pagination, error) {
	if status != "" && !models.IsValidStatus(status) {
		return nil, models.Pagination{}, fmt.Errorf("%w: unknown status %q", ErrValidation, status)
	}
	orders, total, err := s.orders.ListByUser(ctx, userID, status, page, limit)
	if err != nil {
		return nil, models.Pagination{}, err
	}
	return orders, models.NewPagination(page, limit, total), nil
}

// ListAll pages through every order with aggregate revenue stats. Admin only;
// the role gate lives in the routing layer.
func (s *OrderService) ListAll(ctx context.Context, f OrderFilter, page, limit int64) ([]models.Order, *models.OrderStats, models.Pagination, error) {
	orders, total, err := s.orders.ListAll(ctx, f, page, limit)
	if err != nil {
		return nil, nil, models.Pagination{}, err
	}
	stats, err := s.orders.Stats(ctx, f)
	if err != nil {
		return nil, nil, models.Pagination{}, err
	}
	return orders, stats, models.NewPagination(page, limit, total), nil
}

// UpdateStatus applies an admin transition through the lifecycle table.
// The first transition into confirmed bumps each line's product soldCount,
// exactly once per order.
func (s *OrderService) UpdateStatus(ctx context.Context, orderID primitive.ObjectID, update StatusUpdate) (*models.Order, error) {
	if !models.IsValidStatus(update.Status) {
		return nil, fmt.Errorf("%w: unknown status %q", ErrValidation, update.Status)
	}

	order, err := s.orders.FindByID(ctx, orderID)
	if err != nil {
		return nil, err
	}

	if !allowedTransitions[order.Status][update.Status] {
		return nil, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, order.Status, update.Status)
	}

	order.Status = update.Status
	if update.TrackingNumber != "" {
		order.TrackingNumber = update.TrackingNumber
	}
	if update.EstimatedDelivery != nil {
		order.EstimatedDelivery = update.EstimatedDelivery
	}

	bumpSoldCount := false
	switch update.Status {
	case models.StatusDelivered:
		now := time.Now().UTC()
		order.ActualDelivery = &now
	case models.StatusConfirmed:
		if !order.SoldCountApplied {
			order.SoldCountApplied = true
			bumpSoldCount = true
		}
	case models.StatusRefunded:
		order.PaymentStatus = models.PaymentRefunded
	}

	if err := s.orders.Update(ctx, order); err != nil {
		return nil, err
	}

	// The marker is saved with the status, so the counters only move once the
	// save has stuck; a retried transition after a failed save cannot double
	// count.
	if bumpSoldCount {
		for _, item := range order.Items {
			if err := s.products.IncSoldCount(ctx, item.ProductID, item.Quantity); err != nil {
				log.Error().Err(err).
					Str("product_id", item.ProductID.Hex()).
					Msg("orders: sold count update failed")
			}
		}
	}

	log.Info().
		Str("order_number", order.OrderNumber).
		Str("status", string(order.Status)).
		Msg("order status updated")

	return order, nil
}

// Cancel is the owner-side exit. It restores every decremented (product,
// size) quantity; the balance is credited back only when the service was
// configured to refund on cancel.
func (s *OrderService) Cancel(ctx context.Context, orderID, requesterID primitive.ObjectID, reason string) (*models.Order, error) {
	order, err := s.orders.FindByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order.UserID != requesterID {
		return nil, ErrForbidden
	}
	if !cancellableStatuses[order.Status] {
		return nil, fmt.Errorf("%w: order cannot be cancelled while %s", ErrInvalidTransition, order.Status)
	}

	order.Status = models.StatusCancelled
	order.CancelReason = reason
	if err := s.orders.Update(ctx, order); err != nil {
		return nil, err
	}

	// Inverse of the checkout decrement. No non-negative guard: we are
	// adding stock back.
	for _, item := range order.Items {
		if err := s.products.AdjustStock(ctx, item.ProductID, item.Size, item.Quantity, false); err != nil {
			log.Error().Err(err).
				Str("product_id", item.ProductID.Hex()).
				Str("size", item.Size).
				Msg("orders: stock restore failed on cancel")
		}
	}

	if s.refundOnCancel {
		if err := s.users.CreditBalance(ctx, order.UserID, order.Total); err != nil {
			log.Error().Err(err).
				Str("order_number", order.OrderNumber).
				Msg("orders: refund on cancel failed")
		} else {
			order.PaymentStatus = models.PaymentRefunded
			if err := s.orders.Update(ctx, order); err != nil {
				log.Error().Err(err).Str("order_number", order.OrderNumber).Msg("orders: refund status save failed")
			}
		}
	}

	log.Info().
		Str("order_number", order.OrderNumber).
		Str("reason", reason).
		Msg("order cancelled")

	return order, nil
}

package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// OrderStatus is the lifecycle state of an order.
type OrderStatus string

const (
	StatusPending    OrderStatus = "pending"
	StatusConfirmed  OrderStatus = "confirmed"
	StatusProcessing OrderStatus = "processing"
	StatusShipped    OrderStatus = "shipped"
	StatusDelivered  OrderStatus = "delivered"
	StatusCancelled  OrderStatus = "cancelled"
	StatusRefunded   OrderStatus = "refunded"
)

// IsValidStatus reports whether s names a known order status.
func IsValidStatus(s OrderStatus) bool {
	switch s {
	case StatusPending, StatusConfirmed, StatusProcessing, StatusShipped,
		StatusDelivered, StatusCancelled, StatusRefunded:
		return true
	}
	return false
}

// PaymentStatus is tracked separately from the order lifecycle.
type PaymentStatus string

const (
	PaymentPending  PaymentStatus = "pending"
	PaymentPaid     PaymentStatus = "paid"
	PaymentFailed   PaymentStatus = "failed"
	PaymentRefunded PaymentStatus = "refunded"
)

// PaymentMethod describes how an order was paid. Only the descriptor is
// stored; card data never touches this system.
type PaymentMethod struct {
	Type  string `bson:"type" json:"type"`
	Last4 string `bson:"last4,omitempty" json:"last4,omitempty"`
	Brand string `bson:"brand,omitempty" json:"brand,omitempty"`
}

// OrderItem snapshots a product line at purchase time. Price and subtotal are
// copies, not live references, so later catalog edits never alter history.
type OrderItem struct {
	ProductID primitive.ObjectID `bson:"product_id" json:"productId"`
	Name      string             `bson:"name" json:"name"`
	Image     string             `bson:"image,omitempty" json:"image,omitempty"`
	Quantity  int                `bson:"quantity" json:"quantity"`
	Size      string             `bson:"size,omitempty" json:"size,omitempty"`
	Color     string             `bson:"color,omitempty" json:"color,omitempty"`
	Price     float64            `bson:"price" json:"price"`
	Subtotal  float64            `bson:"subtotal" json:"subtotal"`
}

// Order is created once by checkout and mutated only through the status
// workflow. SoldCountApplied guards the confirmed-transition sold-count bump
// against double counting.
type Order struct {
	ID                primitive.ObjectID `bson:"_id,omitempty" json:"id,omitempty"`
	OrderNumber       string             `bson:"order_number" json:"orderNumber"`
	UserID            primitive.ObjectID `bson:"user_id" json:"userId"`
	Items             []OrderItem        `bson:"items" json:"items"`
	ShippingAddress   Address            `bson:"shipping_address" json:"shippingAddress"`
	BillingAddress    Address            `bson:"billing_address" json:"billingAddress"`
	PaymentMethod     PaymentMethod      `bson:"payment_method" json:"paymentMethod"`
	Subtotal          float64            `bson:"subtotal" json:"subtotal"`
	Tax               float64            `bson:"tax" json:"tax"`
	Shipping          float64            `bson:"shipping" json:"shipping"`
	Total             float64            `bson:"total" json:"total"`
	Status            OrderStatus        `bson:"status" json:"status"`
	PaymentStatus     PaymentStatus      `bson:"payment_status" json:"paymentStatus"`
	SoldCountApplied  bool               `bson:"sold_count_applied" json:"-"`
	TrackingNumber    string             `bson:"tracking_number,omitempty" json:"trackingNumber,omitempty"`
	EstimatedDelivery *time.Time         `bson:"estimated_delivery,omitempty" json:"estimatedDelivery,omitempty"`
	ActualDelivery    *time.Time         `bson:"actual_delivery,omitempty" json:"actualDelivery,omitempty"`
	CancelReason      string             `bson:"cancel_reason,omitempty" json:"cancelReason,omitempty"`
	CreatedAt         time.Time          `bson:"created_at" json:"createdAt"`
	UpdatedAt         time.Time          `bson:"updated_at" json:"updatedAt"`
}

// OrderStats is the admin aggregate over a filtered order set.
type OrderStats struct {
	TotalRevenue      float64 `bson:"total_revenue" json:"totalRevenue"`
	AverageOrderValue float64 `bson:"average_order_value" json:"averageOrderValue"`
	TotalOrders       int64   `bson:"total_orders" json:"totalOrders"`
}

// Pagination describes a page of list results.
type Pagination struct {
	CurrentPage int64 `json:"currentPage"`
	TotalPages  int64 `json:"totalPages"`
	TotalItems  int64 `json:"totalItems"`
	HasNextPage bool  `json:"hasNextPage"`
	HasPrevPage bool  `json:"hasPrevPage"`
}

// NewPagination computes page bookkeeping for a total row count.
func NewPagination(page, limit, total int64) Pagination {
	if limit <= 0 {
		limit = 10
	}
	totalPages := (total + limit - 1) / limit
	return Pagination{
		CurrentPage: page,
		TotalPages:  totalPages,
		TotalItems:  total,
		HasNextPage: page < totalPages,
		HasPrevPage: page > 1,
	}
}

package services_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"fashion-store/models"
	"fashion-store/services"
)

func testProduct(name string, price float64, sizes ...models.SizeStock) *models.Product {
	p := &models.Product{
		ID:       primitive.NewObjectID(),
		Name:     name,
		Price:    price,
		Category: "men",
		Images:   []string{"https://cdn.example/" + name + ".jpg"},
		Sizes:    sizes,
		IsActive: true,
	}
	p.RecomputeTotalStock()
	return p
}

func testUser(balance float64) *models.User {
	return &models.User{
		ID:       primitive.NewObjectID(),
		Name:     "Ada",
		Email:    "ada@example.com",
		Role:     models.RoleCustomer,
		Balance:  balance,
		Cart:     []models.CartItem{{ID: "item-1", ProductID: primitive.NewObjectID(), Quantity: 1}},
		IsActive: true,
	}
}

func newCheckout(users *fakeUserStore, products *fakeProductStore, orders *fakeOrderStore) *services.CheckoutService {
	pricing := services.NewPricing(0.08, 10.00, 50.00)
	return services.NewCheckoutService(users, products, orders, pricing, &fakeNotifier{})
}

func TestCheckout_PlaceOrder(t *testing.T) {
	shirt := testProduct("shirt", 20.00, models.SizeStock{Size: "M", Stock: 5})
	user := testUser(100.00)

	products := newFakeProductStore(shirt)
	users := newFakeUserStore(user)
	orders := newFakeOrderStore()
	svc := newCheckout(users, products, orders)

	order, err := svc.PlaceOrder(context.Background(), user.ID, services.CheckoutRequest{
		Items: []services.CheckoutItem{
			{ProductID: shirt.ID, Quantity: 2, Size: "M"},
		},
		ShippingAddress: models.Address{Street: "1 Main St", City: "Springfield"},
		PaymentMethod:   models.PaymentMethod{Type: "card", Last4: "4242"},
	})
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(order.OrderNumber, "NF"))
	assert.Equal(t, models.StatusPending, order.Status)
	assert.Equal(t, models.PaymentPending, order.PaymentStatus)
	assert.Equal(t, 40.00, order.Subtotal)
	assert.Equal(t, 3.20, order.Tax)
	assert.Equal(t, 10.00, order.Shipping)
	assert.Equal(t, 53.20, order.Total)

	require.Len(t, order.Items, 1)
	assert.Equal(t, "shirt", order.Items[0].Name)
	assert.Equal(t, 20.00, order.Items[0].Price)
	assert.Equal(t, 40.00, order.Items[0].Subtotal)

	// Billing falls back to shipping when absent.
	assert.Equal(t, order.ShippingAddress, order.BillingAddress)

	assert.Equal(t, 3, products.stock(shirt.ID, "M"))
	assert.Equal(t, 100.00-53.20, users.balance(user.ID))
	assert.True(t, users.cartCleared)
	assert.Equal(t, 1, orders.count())
}

func TestCheckout_PlaceOrder_Validation(t *testing.T) {
	shirt := testProduct("shirt", 20.00, models.SizeStock{Size: "M", Stock: 5})
	inactive := testProduct("discontinued", 15.00, models.SizeStock{Size: "M", Stock: 5})
	inactive.IsActive = false
	user := testUser(100.00)

	tests := []struct {
		name    string
		items   []services.CheckoutItem
		wantErr error
	}{
		{
			name:    "empty_order",
			items:   nil,
			wantErr: services.ErrValidation,
		},
		{
			name:    "zero_quantity",
			items:   []services.CheckoutItem{{ProductID: shirt.ID, Quantity: 0, Size: "M"}},
			wantErr: services.ErrValidation,
		},
		{
			name:    "unknown_product",
			items:   []services.CheckoutItem{{ProductID: primitive.NewObjectID(), Quantity: 1, Size: "M"}},
			wantErr: services.ErrValidation,
		},
		{
			name:    "inactive_product",
			items:   []services.CheckoutItem{{ProductID: inactive.ID, Quantity: 1, Size: "M"}},
			wantErr: services.ErrValidation,
		},
		{
			name:    "unknown_size",
			items:   []services.CheckoutItem{{ProductID: shirt.ID, Quantity: 1, Size: "XXL"}},
			wantErr: services.ErrInsufficientStock,
		},
		{
			name:    "quantity_over_stock",
			items:   []services.CheckoutItem{{ProductID: shirt.ID, Quantity: 6, Size: "M"}},
			wantErr: services.ErrInsufficientStock,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			products := newFakeProductStore(shirt, inactive)
			users := newFakeUserStore(user)
			orders := newFakeOrderStore()
			svc := newCheckout(users, products, orders)

			_, err := svc.PlaceOrder(context.Background(), user.ID, services.CheckoutRequest{Items: tt.items})
			assert.ErrorIs(t, err, tt.wantErr)

			// A rejected checkout leaves nothing behind.
			assert.Equal(t, 5, products.stock(shirt.ID, "M"))
			assert.Equal(t, 100.00, users.balance(user.ID))
			assert.Equal(t, 0, orders.count())
		})
	}
}

func TestCheckout_PlaceOrder_InsufficientBalance(t *testing.T) {
	shirt := testProduct("shirt", 20.00, models.SizeStock{Size: "M", Stock: 5})
	user := testUser(10.00)

	products := newFakeProductStore(shirt)
	users := newFakeUserStore(user)
	orders := newFakeOrderStore()
	svc := newCheckout(users, products, orders)

	_, err := svc.PlaceOrder(context.Background(), user.ID, services.CheckoutRequest{
		Items: []services.CheckoutItem{{ProductID: shirt.ID, Quantity: 2, Size: "M"}},
	})
	assert.ErrorIs(t, err, services.ErrInsufficientBalance)

	assert.Equal(t, 5, products.stock(shirt.ID, "M"))
	assert.Equal(t, 10.00, users.balance(user.ID))
	assert.Equal(t, 0, orders.count())
}

func TestCheckout_PlaceOrder_UserVanishesBeforeDebit(t *testing.T) {
	shirt := testProduct("shirt", 20.00, models.SizeStock{Size: "M", Stock: 5})
	user := testUser(100.00)

	products := newFakeProductStore(shirt)
	users := newFakeUserStore(user)
	users.dropBeforeDebit = true
	orders := newFakeOrderStore()
	svc := newCheckout(users, products, orders)

	_, err := svc.PlaceOrder(context.Background(), user.ID, services.CheckoutRequest{
		Items: []services.CheckoutItem{{ProductID: shirt.ID, Quantity: 1, Size: "M"}},
	})

	// A deleted account is a missing resource, not a balance rejection.
	assert.ErrorIs(t, err, services.ErrNotFound)
	assert.NotErrorIs(t, err, services.ErrInsufficientBalance)

	assert.Equal(t, 5, products.stock(shirt.ID, "M"))
	assert.Equal(t, 0, orders.count())
}

func TestCheckout_PlaceOrder_CompensatesFailedDecrement(t *testing.T) {
	shirt := testProduct("shirt", 20.00, models.SizeStock{Size: "M", Stock: 5})
	hat := testProduct("hat", 10.00, models.SizeStock{Size: "OS", Stock: 2})
	user := testUser(200.00)

	products := newFakeProductStore(shirt, hat)
	// The hat sells out between validation and the conditional decrement.
	products.failDecrement[hat.ID] = services.ErrInsufficientStock

	users := newFakeUserStore(user)
	orders := newFakeOrderStore()
	svc := newCheckout(users, products, orders)

	_, err := svc.PlaceOrder(context.Background(), user.ID, services.CheckoutRequest{
		Items: []services.CheckoutItem{
			{ProductID: shirt.ID, Quantity: 2, Size: "M"},
			{ProductID: hat.ID, Quantity: 1, Size: "OS"},
		},
	})
	assert.ErrorIs(t, err, services.ErrInsufficientStock)

	// The shirt decrement was applied first and must be rolled back, along
	// with the debited balance.
	assert.Equal(t, 5, products.stock(shirt.ID, "M"))
	assert.Equal(t, 2, products.stock(hat.ID, "OS"))
	assert.Equal(t, 200.00, users.balance(user.ID))
	assert.Equal(t, 0, orders.count())
}

func TestCheckout_PlaceOrder_CompensatesFailedInsert(t *testing.T) {
	shirt := testProduct("shirt", 20.00, models.SizeStock{Size: "M", Stock: 5})
	user := testUser(200.00)

	products := newFakeProductStore(shirt)
	users := newFakeUserStore(user)
	orders := newFakeOrderStore()
	orders.insertErr = errors.New("write concern failure")
	svc := newCheckout(users, products, orders)

	_, err := svc.PlaceOrder(context.Background(), user.ID, services.CheckoutRequest{
		Items: []services.CheckoutItem{{ProductID: shirt.ID, Quantity: 1, Size: "M"}},
	})
	require.Error(t, err)

	assert.Equal(t, 5, products.stock(shirt.ID, "M"))
	assert.InDelta(t, 200.00, users.balance(user.ID), 1e-9)
	assert.Equal(t, 0, orders.count())
	assert.False(t, users.cartCleared)
}

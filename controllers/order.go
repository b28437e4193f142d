package controllers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"fashion-store/metrics"
	"fashion-store/middleware"
	"fashion-store/models"
	"fashion-store/services"
	"fashion-store/utils"
)

// OrderController handles checkout and order lifecycle requests.
type OrderController struct {
	checkout *services.CheckoutService
	orders   *services.OrderService
}

// NewOrderController creates an OrderController.
func NewOrderController(checkout *services.CheckoutService, orders *services.OrderService) *OrderController {
	return &OrderController{checkout: checkout, orders: orders}
}

// CreateOrder handles POST /orders.
func (oc *OrderController) CreateOrder(w http.ResponseWriter, r *http.Request) {
	userID, ok := requesterID(r)
	if !ok {
		utils.RespondErrorMessage(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	var req services.CheckoutRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondErrorMessage(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	order, err := oc.checkout.PlaceOrder(r.Context(), userID, req)
	if err != nil {
		utils.RespondError(w, err)
		return
	}

	metrics.OrdersPlaced.Inc()
	utils.RespondData(w, http.StatusCreated, "Order created successfully", map[string]interface{}{"order": order})
}

// GetOrders handles GET /orders: the caller's own orders.
func (oc *OrderController) GetOrders(w http.ResponseWriter, r *http.Request) {
	userID, ok := requesterID(r)
	if !ok {
		utils.RespondErrorMessage(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	status := models.OrderStatus(r.URL.Query().Get("status"))
	page := queryInt64(r, "page", 1)
	limit := queryInt64(r, "limit", 10)

	orders, pagination, err := oc.orders.ListForUser(r.Context(), userID, status, page, limit)
	if err != nil {
		utils.RespondError(w, err)
		return
	}
	utils.RespondData(w, http.StatusOK, "", map[string]interface{}{
		"orders":     orders,
		"pagination": pagination,
	})
}

// GetOrderByID handles GET /orders/{id}. Owner or admin.
func (oc *OrderController) GetOrderByID(w http.ResponseWriter, r *http.Request) {
	userID, ok := requesterID(r)
	if !ok {
		utils.RespondErrorMessage(w, http.StatusUnauthorized, "Unauthorized")
		return
	}
	claims, _ := middleware.ClaimsFromContext(r.Context())

	orderID, err := primitive.ObjectIDFromHex(mux.Vars(r)["id"])
	if err != nil {
		utils.RespondErrorMessage(w, http.StatusBadRequest, "Invalid order ID")
		return
	}

	order, err := oc.orders.Get(r.Context(), orderID, userID, claims.Role)
	if err != nil {
		utils.RespondError(w, err)
		return
	}
	utils.RespondData(w, http.StatusOK, "", map[string]interface{}{"order": order})
}

// CancelOrder handles PUT /orders/{id}/cancel. Owner only.
func (oc *OrderController) CancelOrder(w http.ResponseWriter, r *http.Request) {
	userID, ok := requesterID(r)
	if !ok {
		utils.RespondErrorMessage(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	orderID, err := primitive.ObjectIDFromHex(mux.Vars(r)["id"])
	if err != nil {
		utils.RespondErrorMessage(w, http.StatusBadRequest, "Invalid order ID")
		return
	}

	var body struct {
		Reason string `json:"reason"`
	}
	// A body is optional on cancellation.
	_ = json.NewDecoder(r.Body).Decode(&body)

	order, err := oc.orders.Cancel(r.Context(), orderID, userID, body.Reason)
	if err != nil {
		utils.RespondError(w, err)
		return
	}
	utils.RespondData(w, http.StatusOK, "Order cancelled successfully", map[string]interface{}{"order": order})
}

// UpdateOrderStatus handles PUT /orders/{id}/status. Admin only.
func (oc *OrderController) UpdateOrderStatus(w http.ResponseWriter, r *http.Request) {
	orderID, err := primitive.ObjectIDFromHex(mux.Vars(r)["id"])
	if err != nil {
		utils.RespondErrorMessage(w, http.StatusBadRequest, "Invalid order ID")
		return
	}

	var update services.StatusUpdate
	if err := json.NewDecoder(r.Body).Decode(&update); err != nil {
		utils.RespondErrorMessage(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	order, err := oc.orders.UpdateStatus(r.Context(), orderID, update)
	if err != nil {
		utils.RespondError(w, err)
		return
	}
	utils.RespondData(w, http.StatusOK, "Order status updated successfully", map[string]interface{}{"order": order})
}

// GetAllOrders handles GET /orders/admin/all. Admin only.
func (oc *OrderController) GetAllOrders(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := services.OrderFilter{
		Status:        models.OrderStatus(q.Get("status")),
		PaymentStatus: models.PaymentStatus(q.Get("paymentStatus")),
	}
	if v := q.Get("startDate"); v != "" {
		if t, err := time.Parse(time.RFC3339, v); err == nil {
			filter.StartDate = &t
		}
	}
	if v := q.Get("endDate"); v != "" {
		if t, err := time.Parse(time.RFC3339, v); err == nil {
			filter.EndDate = &t
		}
	}

	page := queryInt64(r, "page", 1)
	limit := queryInt64(r, "limit", 10)

	orders, stats, pagination, err := oc.orders.ListAll(r.Context(), filter, page, limit)
	if err != nil {
		utils.RespondError(w, err)
		return
	}
	utils.RespondData(w, http.StatusOK, "", map[string]interface{}{
		"orders":     orders,
		"stats":      stats,
		"pagination": pagination,
	})
}

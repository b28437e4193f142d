package routes

import (
	"net/http"

	"github.com/gorilla/mux"

	"fashion-store/controllers"
	"fashion-store/metrics"
	"fashion-store/middleware"
	"fashion-store/utils"
)

// RegisterRoutes sets up all the routes for the application.
func RegisterRoutes(router *mux.Router, userController *controllers.UserController, productController *controllers.ProductController, orderController *controllers.OrderController, recommendationController *controllers.RecommendationController) {
	router.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		utils.RespondData(w, http.StatusOK, "", map[string]string{"status": "ok"})
	}).Methods("GET")
	router.Handle("/metrics", metrics.Handler()).Methods("GET")

	// Public routes
	router.HandleFunc("/users/register", userController.Register).Methods("POST")
	router.HandleFunc("/users/login", userController.Login).Methods("POST")

	router.HandleFunc("/products", productController.GetProducts).Methods("GET")
	router.HandleFunc("/products/categories", productController.GetCategories).Methods("GET")
	router.HandleFunc("/products/{id}", productController.GetProductByID).Methods("GET")

	router.HandleFunc("/recommendations/popular", recommendationController.Popular).Methods("GET")
	router.HandleFunc("/recommendations/trending", recommendationController.Trending).Methods("GET")
	router.HandleFunc("/recommendations/seasonal", recommendationController.Seasonal).Methods("GET")
	router.HandleFunc("/recommendations/recently-viewed", recommendationController.RecentlyViewed).Methods("GET")
	router.HandleFunc("/recommendations/similar/{productId}", recommendationController.Similar).Methods("GET")
	router.HandleFunc("/recommendations/category/{category}", recommendationController.Category).Methods("GET")

	// Protected routes
	protected := router.PathPrefix("/").Subrouter()
	protected.Use(middleware.AuthMiddleware)
	protected.HandleFunc("/users/profile", userController.GetProfile).Methods("GET")
	protected.HandleFunc("/users/profile", userController.UpdateProfile).Methods("PUT")
	protected.HandleFunc("/users/cart", userController.GetCart).Methods("GET")
	protected.HandleFunc("/users/cart", userController.AddToCart).Methods("POST")
	protected.HandleFunc("/users/cart", userController.ClearCart).Methods("DELETE")
	protected.HandleFunc("/users/cart/{itemId}", userController.UpdateCartItem).Methods("PUT")
	protected.HandleFunc("/users/cart/{itemId}", userController.RemoveFromCart).Methods("DELETE")

	protected.HandleFunc("/products/{id}/reviews", productController.AddReview).Methods("POST")

	protected.HandleFunc("/orders", orderController.CreateOrder).Methods("POST")
	protected.HandleFunc("/orders", orderController.GetOrders).Methods("GET")
	protected.HandleFunc("/orders/{id}", orderController.GetOrderByID).Methods("GET")
	protected.HandleFunc("/orders/{id}/cancel", orderController.CancelOrder).Methods("PUT")

	protected.HandleFunc("/recommendations/personalized", recommendationController.Personalized).Methods("GET")

	// Admin routes
	admin := router.PathPrefix("/").Subrouter()
	admin.Use(middleware.AuthMiddleware)
	admin.Use(middleware.AdminMiddleware)
	admin.HandleFunc("/products", productController.CreateProduct).Methods("POST")
	admin.HandleFunc("/products/{id}", productController.UpdateProduct).Methods("PUT")
	admin.HandleFunc("/products/{id}", productController.DeleteProduct).Methods("DELETE")
	admin.HandleFunc("/orders/admin/all", orderController.GetAllOrders).Methods("GET")
	admin.HandleFunc("/orders/{id}/status", orderController.UpdateOrderStatus).Methods("PUT")
}

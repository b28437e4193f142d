package controllers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"fashion-store/models"
	"fashion-store/services"
	"fashion-store/utils"
)

// ProductController handles catalog requests.
type ProductController struct {
	catalog *services.CatalogService
}

// NewProductController creates a ProductController.
func NewProductController(catalog *services.CatalogService) *ProductController {
	return &ProductController{catalog: catalog}
}

func queryFloat(r *http.Request, key string) float64 {
	v := r.URL.Query().Get(key)
	if v == "" {
		return 0
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil || f < 0 {
		return 0
	}
	return f
}

// GetProducts handles GET /products with filtering, sorting and pagination.
func (pc *ProductController) GetProducts(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	query := services.ProductQuery{
		Category:    q.Get("category"),
		Subcategory: q.Get("subcategory"),
		Brand:       q.Get("brand"),
		MinPrice:    queryFloat(r, "minPrice"),
		MaxPrice:    queryFloat(r, "maxPrice"),
		Size:        q.Get("size"),
		Featured:    q.Get("featured") == "true",
		Search:      q.Get("search"),
		Sort:        q.Get("sort"),
		Page:        queryInt64(r, "page", 1),
		Limit:       queryInt64(r, "limit", 12),
	}

	products, pagination, err := pc.catalog.List(r.Context(), query)
	if err != nil {
		utils.RespondError(w, err)
		return
	}
	utils.RespondData(w, http.StatusOK, "", map[string]interface{}{
		"products":   products,
		"pagination": pagination,
	})
}

// GetProductByID handles GET /products/{id}.
func (pc *ProductController) GetProductByID(w http.ResponseWriter, r *http.Request) {
	id, err := primitive.ObjectIDFromHex(mux.Vars(r)["id"])
	if err != nil {
		utils.RespondErrorMessage(w, http.StatusBadRequest, "Invalid product ID")
		return
	}

	product, err := pc.catalog.Get(r.Context(), id)
	if err != nil {
		utils.RespondError(w, err)
		return
	}
	utils.RespondData(w, http.StatusOK, "", map[string]interface{}{"product": product})
}

// CreateProduct handles POST /products. Admin only.
func (pc *ProductController) CreateProduct(w http.ResponseWriter, r *http.Request) {
	var product models.Product
	if err := json.NewDecoder(r.Body).Decode(&product); err != nil {
		utils.RespondErrorMessage(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := pc.catalog.Create(r.Context(), &product); err != nil {
		utils.RespondError(w, err)
		return
	}
	utils.RespondData(w, http.StatusCreated, "Product created successfully", map[string]interface{}{"product": product})
}

// UpdateProduct handles PUT /products/{id}. Admin only.
func (pc *ProductController) UpdateProduct(w http.ResponseWriter, r *http.Request) {
	id, err := primitive.ObjectIDFromHex(mux.Vars(r)["id"])
	if err != nil {
		utils.RespondErrorMessage(w, http.StatusBadRequest, "Invalid product ID")
		return
	}

	var product models.Product
	if err := json.NewDecoder(r.Body).Decode(&product); err != nil {
		utils.RespondErrorMessage(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	updated, err := pc.catalog.Update(r.Context(), id, &product)
	if err != nil {
		utils.RespondError(w, err)
		return
	}
	utils.RespondData(w, http.StatusOK, "Product updated successfully", map[string]interface{}{"product": updated})
}

// DeleteProduct handles DELETE /products/{id}. Admin only; soft delete.
func (pc *ProductController) DeleteProduct(w http.ResponseWriter, r *http.Request) {
	id, err := primitive.ObjectIDFromHex(mux.Vars(r)["id"])
	if err != nil {
		utils.RespondErrorMessage(w, http.StatusBadRequest, "Invalid product ID")
		return
	}

	if err := pc.catalog.Delete(r.Context(), id); err != nil {
		utils.RespondError(w, err)
		return
	}
	utils.RespondMessage(w, http.StatusOK, "Product deleted successfully")
}

// GetCategories handles GET /products/categories.
func (pc *ProductController) GetCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := pc.catalog.Categories(r.Context())
	if err != nil {
		utils.RespondError(w, err)
		return
	}
	utils.RespondData(w, http.StatusOK, "", categories)
}

// AddReview handles POST /products/{id}/reviews.
func (pc *ProductController) AddReview(w http.ResponseWriter, r *http.Request) {
	userID, ok := requesterID(r)
	if !ok {
		utils.RespondErrorMessage(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	id, err := primitive.ObjectIDFromHex(mux.Vars(r)["id"])
	if err != nil {
		utils.RespondErrorMessage(w, http.StatusBadRequest, "Invalid product ID")
		return
	}

	var body struct {
		Rating  int    `json:"rating"`
		Comment string `json:"comment"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		utils.RespondErrorMessage(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	product, err := pc.catalog.AddReview(r.Context(), id, userID, body.Rating, body.Comment)
	if err != nil {
		utils.RespondError(w, err)
		return
	}
	utils.RespondData(w, http.StatusCreated, "Review added successfully", map[string]interface{}{
		"rating":       product.Rating,
		"reviewsCount": len(product.Reviews),
	})
}

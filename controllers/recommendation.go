package controllers

import (
	"net/http"

	"github.com/gorilla/mux"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"fashion-store/services"
	"fashion-store/utils"
)

// RecommendationController serves the ranked product lists.
type RecommendationController struct {
	recommend *services.RecommendationService
}

// NewRecommendationController creates a RecommendationController.
func NewRecommendationController(recommend *services.RecommendationService) *RecommendationController {
	return &RecommendationController{recommend: recommend}
}

func limitParam(r *http.Request) int64 {
	return queryInt64(r, "limit", services.DefaultRecommendationLimit)
}

// Popular handles GET /recommendations/popular.
func (rc *RecommendationController) Popular(w http.ResponseWriter, r *http.Request) {
	products, err := rc.recommend.Popular(r.Context(), r.URL.Query().Get("category"), limitParam(r))
	if err != nil {
		utils.RespondError(w, err)
		return
	}
	utils.RespondData(w, http.StatusOK, "", map[string]interface{}{"products": products})
}

// Trending handles GET /recommendations/trending.
func (rc *RecommendationController) Trending(w http.ResponseWriter, r *http.Request) {
	products, err := rc.recommend.Trending(r.Context(), r.URL.Query().Get("category"), limitParam(r))
	if err != nil {
		utils.RespondError(w, err)
		return
	}
	utils.RespondData(w, http.StatusOK, "", map[string]interface{}{"products": products})
}

// Personalized handles GET /recommendations/personalized. Authenticated.
func (rc *RecommendationController) Personalized(w http.ResponseWriter, r *http.Request) {
	userID, ok := requesterID(r)
	if !ok {
		utils.RespondErrorMessage(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	products, err := rc.recommend.Personalized(r.Context(), userID, limitParam(r))
	if err != nil {
		utils.RespondError(w, err)
		return
	}
	utils.RespondData(w, http.StatusOK, "", map[string]interface{}{"products": products})
}

// Similar handles GET /recommendations/similar/{productId}.
func (rc *RecommendationController) Similar(w http.ResponseWriter, r *http.Request) {
	productID, err := primitive.ObjectIDFromHex(mux.Vars(r)["productId"])
	if err != nil {
		utils.RespondErrorMessage(w, http.StatusBadRequest, "Invalid product ID")
		return
	}

	products, err := rc.recommend.Similar(r.Context(), productID, limitParam(r))
	if err != nil {
		utils.RespondError(w, err)
		return
	}
	utils.RespondData(w, http.StatusOK, "", map[string]interface{}{"products": products})
}

// Category handles GET /recommendations/category/{category}.
func (rc *RecommendationController) Category(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	products, err := rc.recommend.Category(
		r.Context(),
		mux.Vars(r)["category"],
		q.Get("subcategory"),
		q.Get("sortBy"),
		limitParam(r),
	)
	if err != nil {
		utils.RespondError(w, err)
		return
	}
	utils.RespondData(w, http.StatusOK, "", map[string]interface{}{
		"products": products,
		"category": mux.Vars(r)["category"],
	})
}

// RecentlyViewed handles GET /recommendations/recently-viewed.
func (rc *RecommendationController) RecentlyViewed(w http.ResponseWriter, r *http.Request) {
	products, err := rc.recommend.RecentlyViewed(r.Context(), limitParam(r))
	if err != nil {
		utils.RespondError(w, err)
		return
	}
	utils.RespondData(w, http.StatusOK, "", map[string]interface{}{"products": products})
}

// Seasonal handles GET /recommendations/seasonal.
func (rc *RecommendationController) Seasonal(w http.ResponseWriter, r *http.Request) {
	products, tags, err := rc.recommend.Seasonal(r.Context(), limitParam(r))
	if err != nil {
		utils.RespondError(w, err)
		return
	}
	utils.RespondData(w, http.StatusOK, "", map[string]interface{}{
		"products": products,
		"season":   tags[0],
		"tags":     tags,
	})
}

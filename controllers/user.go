package controllers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"fashion-store/middleware"
	"fashion-store/models"
	"fashion-store/services"
	"fashion-store/utils"
)

// UserController handles account and cart requests.
type UserController struct {
	users *services.UserService
}

// NewUserController creates a UserController.
func NewUserController(users *services.UserService) *UserController {
	return &UserController{users: users}
}

// requesterID resolves the authenticated user's ObjectID from the request
// context.
func requesterID(r *http.Request) (primitive.ObjectID, bool) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		return primitive.NilObjectID, false
	}
	id, err := primitive.ObjectIDFromHex(claims.UserID)
	if err != nil {
		return primitive.NilObjectID, false
	}
	return id, true
}

func queryInt64(r *http.Request, key string, fallback int64) int64 {
	v := r.URL.Query().Get(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil || n < 1 {
		return fallback
	}
	return n
}

// Register handles POST /users/register.
func (uc *UserController) Register(w http.ResponseWriter, r *http.Request) {
	var reg services.Registration
	if err := json.NewDecoder(r.Body).Decode(&reg); err != nil {
		utils.RespondErrorMessage(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	user, err := uc.users.Register(r.Context(), reg)
	if err != nil {
		utils.RespondError(w, err)
		return
	}

	token, err := utils.GenerateJWT(user.ID.Hex(), user.Email, user.Role)
	if err != nil {
		utils.RespondError(w, err)
		return
	}

	utils.RespondData(w, http.StatusCreated, "User registered successfully", map[string]interface{}{
		"user":  user,
		"token": token,
	})
}

// Login handles POST /users/login.
func (uc *UserController) Login(w http.ResponseWriter, r *http.Request) {
	var creds services.Credentials
	if err := json.NewDecoder(r.Body).Decode(&creds); err != nil {
		utils.RespondErrorMessage(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	user, err := uc.users.Authenticate(r.Context(), creds)
	if err != nil {
		// Every authentication failure is a 401; the message never says
		// which part was wrong.
		utils.RespondErrorMessage(w, http.StatusUnauthorized, "Invalid email or password")
		return
	}

	token, err := utils.GenerateJWT(user.ID.Hex(), user.Email, user.Role)
	if err != nil {
		utils.RespondError(w, err)
		return
	}

	utils.RespondData(w, http.StatusOK, "Login successful", map[string]interface{}{
		"user":  user,
		"token": token,
	})
}

// GetProfile handles GET /users/profile.
func (uc *UserController) GetProfile(w http.ResponseWriter, r *http.Request) {
	userID, ok := requesterID(r)
	if !ok {
		utils.RespondErrorMessage(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	user, err := uc.users.Profile(r.Context(), userID)
	if err != nil {
		utils.RespondError(w, err)
		return
	}
	utils.RespondData(w, http.StatusOK, "", map[string]interface{}{"user": user})
}

// UpdateProfile handles PUT /users/profile.
func (uc *UserController) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	userID, ok := requesterID(r)
	if !ok {
		utils.RespondErrorMessage(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	var body struct {
		Name    string          `json:"name"`
		Address *models.Address `json:"address"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		utils.RespondErrorMessage(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	user, err := uc.users.UpdateProfile(r.Context(), userID, body.Name, body.Address)
	if err != nil {
		utils.RespondError(w, err)
		return
	}
	utils.RespondData(w, http.StatusOK, "Profile updated successfully", map[string]interface{}{"user": user})
}

// GetCart handles GET /users/cart.
func (uc *UserController) GetCart(w http.ResponseWriter, r *http.Request) {
	userID, ok := requesterID(r)
	if !ok {
		utils.RespondErrorMessage(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	cart, err := uc.users.Cart(r.Context(), userID)
	if err != nil {
		utils.RespondError(w, err)
		return
	}
	utils.RespondData(w, http.StatusOK, "", map[string]interface{}{"cart": cart})
}

// AddToCart handles POST /users/cart.
func (uc *UserController) AddToCart(w http.ResponseWriter, r *http.Request) {
	userID, ok := requesterID(r)
	if !ok {
		utils.RespondErrorMessage(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	var add services.CartAdd
	if err := json.NewDecoder(r.Body).Decode(&add); err != nil {
		utils.RespondErrorMessage(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	cart, err := uc.users.AddToCart(r.Context(), userID, add)
	if err != nil {
		utils.RespondError(w, err)
		return
	}
	utils.RespondData(w, http.StatusOK, "Item added to cart successfully", map[string]interface{}{"cart": cart})
}

// UpdateCartItem handles PUT /users/cart/{itemId}.
func (uc *UserController) UpdateCartItem(w http.ResponseWriter, r *http.Request) {
	userID, ok := requesterID(r)
	if !ok {
		utils.RespondErrorMessage(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	var body struct {
		Quantity int `json:"quantity"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		utils.RespondErrorMessage(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	cart, err := uc.users.UpdateCartItem(r.Context(), userID, mux.Vars(r)["itemId"], body.Quantity)
	if err != nil {
		utils.RespondError(w, err)
		return
	}
	utils.RespondData(w, http.StatusOK, "Cart item updated successfully", map[string]interface{}{"cart": cart})
}

// RemoveFromCart handles DELETE /users/cart/{itemId}.
func (uc *UserController) RemoveFromCart(w http.ResponseWriter, r *http.Request) {
	userID, ok := requesterID(r)
	if !ok {
		utils.RespondErrorMessage(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	cart, err := uc.users.RemoveFromCart(r.Context(), userID, mux.Vars(r)["itemId"])
	if err != nil {
		utils.RespondError(w, err)
		return
	}
	utils.RespondData(w, http.StatusOK, "Item removed from cart successfully", map[string]interface{}{"cart": cart})
}

// ClearCart handles DELETE /users/cart.
func (uc *UserController) ClearCart(w http.ResponseWriter, r *http.Request) {
	userID, ok := requesterID(r)
	if !ok {
		utils.RespondErrorMessage(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	if err := uc.users.ClearCart(r.Context(), userID); err != nil {
		utils.RespondError(w, err)
		return
	}
	utils.RespondMessage(w, http.StatusOK, "Cart cleared successfully")
}

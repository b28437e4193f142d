package services

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"fashion-store/models"
)

// ProductQuery is the customer-facing catalog filter. Zero values mean "no
// filter". Inactive products are always excluded.
type ProductQuery struct {
	Category    string
	Subcategory string
	Brand       string
	MinPrice    float64
	MaxPrice    float64
	Size        string
	Featured    bool
	Search      string
	Sort        string
	Page        int64
	Limit       int64
}

// OrderFilter narrows admin order listings.
type OrderFilter struct {
	Status        models.OrderStatus
	PaymentStatus models.PaymentStatus
	StartDate     *time.Time
	EndDate       *time.Time
}

// TrendingEntry is one row of the trending aggregation: a product with its
// summed quantity and order count over the window.
type TrendingEntry struct {
	ProductID  primitive.ObjectID `bson:"_id"`
	TotalSold  int                `bson:"total_sold"`
	OrderCount int                `bson:"order_count"`
}

// ProductStore is the catalog persistence boundary.
type ProductStore interface {
	Insert(ctx context.Context, p *models.Product) error
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.Product, error)
	FindByIDs(ctx context.Context, ids []primitive.ObjectID) ([]models.Product, error)
	List(ctx context.Context, q ProductQuery) ([]models.Product, int64, error)
	Update(ctx context.Context, p *models.Product) error
	SoftDelete(ctx context.Context, id primitive.ObjectID) error
	DistinctActive(ctx context.Context, field string) ([]string, error)

	// AdjustStock applies delta to the (product, size) stock entry as a
	// single conditional update. With requireNonNegative set the update only
	// matches while the resulting stock stays >= 0, and ErrInsufficientStock
	// is returned when no document matches.
	AdjustStock(ctx context.Context, productID primitive.ObjectID, size string, delta int, requireNonNegative bool) error
	IncViewCount(ctx context.Context, id primitive.ObjectID) error
	IncSoldCount(ctx context.Context, id primitive.ObjectID, delta int) error

	PopularSummaries(ctx context.Context, category string, limit int64) ([]models.ProductSummary, error)
	MostViewedSummaries(ctx context.Context, limit int64) ([]models.ProductSummary, error)
	SeasonalSummaries(ctx context.Context, tags []string, limit int64) ([]models.ProductSummary, error)
	SimilarSummaries(ctx context.Context, ref *models.Product, limit int64) ([]models.ProductSummary, error)
	CategorySummaries(ctx context.Context, category, subcategory, sortBy string, limit int64) ([]models.ProductSummary, error)
	RecommendableSummaries(ctx context.Context, categories, brands []string, exclude []primitive.ObjectID, limit int64) ([]models.ProductSummary, error)
	ActiveSummariesByIDs(ctx context.Context, ids []primitive.ObjectID) ([]models.ProductSummary, error)
}

// UserStore is the account persistence boundary.
type UserStore interface {
	Insert(ctx context.Context, u *models.User) error
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.User, error)
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	Update(ctx context.Context, u *models.User) error
	UpdateCart(ctx context.Context, userID primitive.ObjectID, cart []models.CartItem) error
	ClearCart(ctx context.Context, userID primitive.ObjectID) error

	// DebitBalance subtracts amount only while balance >= amount, as one
	// conditional update; ErrInsufficientBalance when the guard fails.
	DebitBalance(ctx context.Context, userID primitive.ObjectID, amount float64) error
	CreditBalance(ctx context.Context, userID primitive.ObjectID, amount float64) error
}

// OrderStore is the order-ledger persistence boundary.
type OrderStore interface {
	// NextOrderNumber issues a ledger-unique human-readable order number
	// backed by an atomic sequence.
	NextOrderNumber(ctx context.Context) (string, error)
	Insert(ctx context.Context, o *models.Order) error
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.Order, error)
	Update(ctx context.Context, o *models.Order) error
	ListByUser(ctx context.Context, userID primitive.ObjectID, status models.OrderStatus, page, limit int64) ([]models.Order, int64, error)
	ListAll(ctx context.Context, f OrderFilter, page, limit int64) ([]models.Order, int64, error)
	Stats(ctx context.Context, f OrderFilter) (*models.OrderStats, error)
	TrendingSince(ctx context.Context, since time.Time, limit int64) ([]TrendingEntry, error)
	PaidByUser(ctx context.Context, userID primitive.ObjectID) ([]models.Order, error)
}

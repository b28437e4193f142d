package services_test

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"fashion-store/models"
	"fashion-store/services"
)

// fakeProductStore keeps products in a map and applies stock adjustments with
// the same conditional semantics as the Mongo implementation.
type fakeProductStore struct {
	mu       sync.Mutex
	products map[primitive.ObjectID]*models.Product

	// failDecrement forces AdjustStock to fail for a product when delta < 0,
	// simulating a concurrent buyer winning the conditional update.
	failDecrement map[primitive.ObjectID]error

	popular       []models.ProductSummary
	mostViewed    []models.ProductSummary
	seasonal      []models.ProductSummary
	similar       []models.ProductSummary
	category      []models.ProductSummary
	recommendable []models.ProductSummary

	popularCalls     int
	seasonalTagsSeen []string
	excludeSeen      []primitive.ObjectID
	categoriesSeen   []string
	brandsSeen       []string
}

func newFakeProductStore(products ...*models.Product) *fakeProductStore {
	s := &fakeProductStore{
		products:      make(map[primitive.ObjectID]*models.Product),
		failDecrement: make(map[primitive.ObjectID]error),
	}
	for _, p := range products {
		s.products[p.ID] = p
	}
	return s
}

func (s *fakeProductStore) Insert(_ context.Context, p *models.Product) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if p.ID.IsZero() {
		p.ID = primitive.NewObjectID()
	}
	s.products[p.ID] = p
	return nil
}

func (s *fakeProductStore) FindByID(_ context.Context, id primitive.ObjectID) (*models.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.products[id]
	if !ok {
		return nil, services.ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (s *fakeProductStore) FindByIDs(_ context.Context, ids []primitive.ObjectID) ([]models.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.Product
	for _, id := range ids {
		if p, ok := s.products[id]; ok {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (s *fakeProductStore) List(context.Context, services.ProductQuery) ([]models.Product, int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.Product
	for _, p := range s.products {
		if p.IsActive {
			out = append(out, *p)
		}
	}
	return out, int64(len(out)), nil
}

func (s *fakeProductStore) Update(_ context.Context, p *models.Product) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.products[p.ID]; !ok {
		return services.ErrNotFound
	}
	cp := *p
	s.products[p.ID] = &cp
	return nil
}

func (s *fakeProductStore) SoftDelete(_ context.Context, id primitive.ObjectID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.products[id]
	if !ok {
		return services.ErrNotFound
	}
	p.IsActive = false
	return nil
}

func (s *fakeProductStore) DistinctActive(context.Context, string) ([]string, error) {
	return nil, nil
}

func (s *fakeProductStore) AdjustStock(_ context.Context, productID primitive.ObjectID, size string, delta int, requireNonNegative bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if delta < 0 {
		if err, ok := s.failDecrement[productID]; ok {
			return err
		}
	}
	p, ok := s.products[productID]
	if !ok {
		return services.ErrNotFound
	}
	entry := p.SizeEntry(size)
	if entry == nil {
		return services.ErrNotFound
	}
	if requireNonNegative && entry.Stock+delta < 0 {
		return services.ErrInsufficientStock
	}
	entry.Stock += delta
	p.TotalStock += delta
	return nil
}

func (s *fakeProductStore) IncViewCount(_ context.Context, id primitive.ObjectID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if p, ok := s.products[id]; ok {
		p.ViewCount++
	}
	return nil
}

func (s *fakeProductStore) IncSoldCount(_ context.Context, id primitive.ObjectID, delta int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if p, ok := s.products[id]; ok {
		p.SoldCount += delta
	}
	return nil
}

func (s *fakeProductStore) PopularSummaries(_ context.Context, _ string, _ int64) ([]models.ProductSummary, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.popularCalls++
	return s.popular, nil
}

func (s *fakeProductStore) MostViewedSummaries(context.Context, int64) ([]models.ProductSummary, error) {
	return s.mostViewed, nil
}

func (s *fakeProductStore) SeasonalSummaries(_ context.Context, tags []string, _ int64) ([]models.ProductSummary, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.seasonalTagsSeen = tags
	return s.seasonal, nil
}

func (s *fakeProductStore) SimilarSummaries(context.Context, *models.Product, int64) ([]models.ProductSummary, error) {
	return s.similar, nil
}

func (s *fakeProductStore) CategorySummaries(context.Context, string, string, string, int64) ([]models.ProductSummary, error) {
	return s.category, nil
}

func (s *fakeProductStore) RecommendableSummaries(_ context.Context, categories, brands []string, exclude []primitive.ObjectID, _ int64) ([]models.ProductSummary, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.categoriesSeen = categories
	s.brandsSeen = brands
	s.excludeSeen = exclude
	return s.recommendable, nil
}

func (s *fakeProductStore) ActiveSummariesByIDs(_ context.Context, ids []primitive.ObjectID) ([]models.ProductSummary, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.ProductSummary
	for _, id := range ids {
		if p, ok := s.products[id]; ok && p.IsActive {
			out = append(out, p.Summary())
		}
	}
	return out, nil
}

func (s *fakeProductStore) stock(id primitive.ObjectID, size string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	if p, ok := s.products[id]; ok {
		if entry := p.SizeEntry(size); entry != nil {
			return entry.Stock
		}
	}
	return -1
}

func (s *fakeProductStore) soldCount(id primitive.ObjectID) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	if p, ok := s.products[id]; ok {
		return p.SoldCount
	}
	return -1
}

// fakeUserStore keeps users in a map. DebitBalance mirrors the conditional
// balance guard of the Mongo implementation.
type fakeUserStore struct {
	mu    sync.Mutex
	users map[primitive.ObjectID]*models.User

	cartCleared bool

	// dropBeforeDebit removes the user just before DebitBalance runs,
	// simulating an account deleted mid-checkout.
	dropBeforeDebit bool
}

func newFakeUserStore(users ...*models.User) *fakeUserStore {
	s := &fakeUserStore{users: make(map[primitive.ObjectID]*models.User)}
	for _, u := range users {
		s.users[u.ID] = u
	}
	return s
}

func (s *fakeUserStore) Insert(_ context.Context, u *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.users {
		if existing.Email == u.Email {
			return services.ErrConflict
		}
	}
	if u.ID.IsZero() {
		u.ID = primitive.NewObjectID()
	}
	cp := *u
	s.users[u.ID] = &cp
	return nil
}

func (s *fakeUserStore) FindByID(_ context.Context, id primitive.ObjectID) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return nil, services.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (s *fakeUserStore) FindByEmail(_ context.Context, email string) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.Email == models.NormalizeEmail(email) {
			cp := *u
			return &cp, nil
		}
	}
	return nil, services.ErrNotFound
}

func (s *fakeUserStore) Update(_ context.Context, u *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.users[u.ID]; !ok {
		return services.ErrNotFound
	}
	cp := *u
	s.users[u.ID] = &cp
	return nil
}

func (s *fakeUserStore) UpdateCart(_ context.Context, userID primitive.ObjectID, cart []models.CartItem) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[userID]
	if !ok {
		return services.ErrNotFound
	}
	u.Cart = cart
	return nil
}

func (s *fakeUserStore) ClearCart(_ context.Context, userID primitive.ObjectID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[userID]
	if !ok {
		return services.ErrNotFound
	}
	u.Cart = []models.CartItem{}
	s.cartCleared = true
	return nil
}

func (s *fakeUserStore) DebitBalance(_ context.Context, userID primitive.ObjectID, amount float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.dropBeforeDebit {
		delete(s.users, userID)
	}
	u, ok := s.users[userID]
	if !ok {
		return services.ErrNotFound
	}
	if u.Balance < amount {
		return services.ErrInsufficientBalance
	}
	u.Balance -= amount
	return nil
}

func (s *fakeUserStore) CreditBalance(_ context.Context, userID primitive.ObjectID, amount float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[userID]
	if !ok {
		return services.ErrNotFound
	}
	u.Balance += amount
	return nil
}

func (s *fakeUserStore) balance(id primitive.ObjectID) float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	if u, ok := s.users[id]; ok {
		return u.Balance
	}
	return -1
}

// fakeOrderStore keeps orders in a slice with a simple sequence counter.
type fakeOrderStore struct {
	mu     sync.Mutex
	orders map[primitive.ObjectID]*models.Order
	seq    int

	insertErr error
	updateErr error
	trending  []services.TrendingEntry
	paid      []models.Order
}

func newFakeOrderStore(orders ...*models.Order) *fakeOrderStore {
	s := &fakeOrderStore{orders: make(map[primitive.ObjectID]*models.Order)}
	for _, o := range orders {
		s.orders[o.ID] = o
	}
	return s
}

func (s *fakeOrderStore) NextOrderNumber(context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.seq++
	return fmt.Sprintf("NF%d%04d", time.Now().UnixMilli(), s.seq), nil
}

func (s *fakeOrderStore) Insert(_ context.Context, o *models.Order) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.insertErr != nil {
		return s.insertErr
	}
	if o.ID.IsZero() {
		o.ID = primitive.NewObjectID()
	}
	o.CreatedAt = time.Now().UTC()
	o.UpdatedAt = o.CreatedAt
	cp := *o
	s.orders[o.ID] = &cp
	return nil
}

func (s *fakeOrderStore) FindByID(_ context.Context, id primitive.ObjectID) (*models.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	o, ok := s.orders[id]
	if !ok {
		return nil, services.ErrNotFound
	}
	cp := *o
	return &cp, nil
}

func (s *fakeOrderStore) Update(_ context.Context, o *models.Order) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.updateErr != nil {
		return s.updateErr
	}
	if _, ok := s.orders[o.ID]; !ok {
		return services.ErrNotFound
	}
	cp := *o
	s.orders[o.ID] = &cp
	return nil
}

func (s *fakeOrderStore) ListByUser(_ context.Context, userID primitive.ObjectID, status models.OrderStatus, _, _ int64) ([]models.Order, int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.Order
	for _, o := range s.orders {
		if o.UserID == userID && (status == "" || o.Status == status) {
			out = append(out, *o)
		}
	}
	return out, int64(len(out)), nil
}

func (s *fakeOrderStore) ListAll(context.Context, services.OrderFilter, int64, int64) ([]models.Order, int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.Order
	for _, o := range s.orders {
		out = append(out, *o)
	}
	return out, int64(len(out)), nil
}

func (s *fakeOrderStore) Stats(context.Context, services.OrderFilter) (*models.OrderStats, error) {
	return &models.OrderStats{}, nil
}

func (s *fakeOrderStore) TrendingSince(context.Context, time.Time, int64) ([]services.TrendingEntry, error) {
	return s.trending, nil
}

func (s *fakeOrderStore) PaidByUser(context.Context, primitive.ObjectID) ([]models.Order, error) {
	return s.paid, nil
}

func (s *fakeOrderStore) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.orders)
}

func (s *fakeOrderStore) get(id primitive.ObjectID) *models.Order {
	s.mu.Lock()
	defer s.mu.Unlock()
	if o, ok := s.orders[id]; ok {
		cp := *o
		return &cp
	}
	return nil
}

// fakeNotifier records deliveries. Safe for the goroutines the services spawn.
type fakeNotifier struct {
	mu            sync.Mutex
	confirmations int
	welcomes      int
}

func (n *fakeNotifier) SendOrderConfirmation(*models.User, *models.Order) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.confirmations++
	return nil
}

func (n *fakeNotifier) SendWelcome(*models.User) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.welcomes++
	return nil
}

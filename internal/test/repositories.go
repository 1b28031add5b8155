package test

import (
	"context"
	"sort"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	domainErrors "github.com/polkiloo/healthmart/internal/domain/errors"
	"github.com/polkiloo/healthmart/internal/domain/model"
)

// UserRepositoryStub stores users in-memory for tests.
type UserRepositoryStub struct {
	Users      map[string]*model.User
	ByID       map[int64]*model.User
	Next       int64
	Err         error
	TouchErr    error
	PasswordErr error
	LoginCalls  int
}

// NewUserRepositoryStub constructs stub repository with initialized maps.
func NewUserRepositoryStub() *UserRepositoryStub {
	return &UserRepositoryStub{
		Users: make(map[string]*model.User),
		ByID:  make(map[int64]*model.User),
		Next:  1,
	}
}

// Create registers user unless email is taken or stub has explicit error.
func (s *UserRepositoryStub) Create(ctx context.Context, user model.User) (*model.User, error) {
	if s.Err != nil {
		return nil, s.Err
	}
	if _, exists := s.Users[user.Email]; exists {
		return nil, domainErrors.ErrAlreadyExists
	}
	if s.Next == 0 {
		s.Next = 1
	}
	user.ID = s.Next
	user.CreatedAt = time.Now()
	s.Next++
	stored := user
	s.Users[user.Email] = &stored
	s.ByID[user.ID] = &stored
	return &stored, nil
}

// GetByEmail fetches user by email or returns not found.
func (s *UserRepositoryStub) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	if s.Err != nil {
		return nil, s.Err
	}
	if user, ok := s.Users[email]; ok {
		return user, nil
	}
	return nil, domainErrors.ErrNotFound
}

// GetByID fetches user by identifier or returns not found.
func (s *UserRepositoryStub) GetByID(ctx context.Context, id int64) (*model.User, error) {
	if s.Err != nil {
		return nil, s.Err
	}
	if user, ok := s.ByID[id]; ok {
		return user, nil
	}
	return nil, domainErrors.ErrNotFound
}

// UpdateProfile applies non-nil fields.
func (s *UserRepositoryStub) UpdateProfile(ctx context.Context, id int64, update model.ProfileUpdate) (*model.User, error) {
	user, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if update.Email != nil && *update.Email != user.Email {
		if _, taken := s.Users[*update.Email]; taken {
			return nil, domainErrors.ErrAlreadyExists
		}
		delete(s.Users, user.Email)
		user.Email = *update.Email
		s.Users[user.Email] = user
	}
	if update.Name != nil {
		user.Name = *update.Name
	}
	if update.Phone != nil {
		user.Phone = *update.Phone
	}
	return user, nil
}

// UpdatePassword stores the new hash.
func (s *UserRepositoryStub) UpdatePassword(ctx context.Context, id int64, passwordHash string) error {
	if s.PasswordErr != nil {
		return s.PasswordErr
	}
	user, err := s.GetByID(ctx, id)
	if err != nil {
		return err
	}
	user.PasswordHash = passwordHash
	return nil
}

// TouchLogin counts successful logins.
func (s *UserRepositoryStub) TouchLogin(ctx context.Context, id int64) error {
	if s.TouchErr != nil {
		return s.TouchErr
	}
	s.LoginCalls++
	return nil
}

// ProductRepositoryStub keeps products in memory and applies stock changes
// atomically under a mutex.
type ProductRepositoryStub struct {
	GetByIDFn        func(context.Context, int64) (*model.Product, error)
	DecrementStockFn func(context.Context, int64, int) (int, error)
	IncrementStockFn func(context.Context, int64, int) (int, error)
	ListFn           func(context.Context, model.ProductFilter) ([]model.Product, int, error)
	Err              error

	mu         sync.Mutex
	items      map[int64]*model.Product
	reviews    map[[2]int64]model.Review
	next       int64
	Increments []StockCall
	Decrements []StockCall
}

// StockCall records a stock mutation request.
type StockCall struct {
	ProductID int64
	Quantity  int
}

// NewProductRepositoryStub constructs stub repository seeded with products.
func NewProductRepositoryStub(products ...model.Product) *ProductRepositoryStub {
	s := &ProductRepositoryStub{
		items:   make(map[int64]*model.Product),
		reviews: make(map[[2]int64]model.Review),
	}
	for _, p := range products {
		if p.ID > s.next {
			s.next = p.ID
		}
		s.items[p.ID] = &p
	}
	return s
}

// Snapshot copies products and reviews; restore puts the copy back.
func (s *ProductRepositoryStub) Snapshot() func() {
	s.mu.Lock()
	defer s.mu.Unlock()
	items := make(map[int64]model.Product, len(s.items))
	for id, p := range s.items {
		items[id] = *p
	}
	reviews := make(map[[2]int64]model.Review, len(s.reviews))
	for k, r := range s.reviews {
		reviews[k] = r
	}
	next := s.next
	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		s.items = make(map[int64]*model.Product, len(items))
		for id, p := range items {
			s.items[id] = &p
		}
		s.reviews = reviews
		s.next = next
	}
}

// Stock returns current stock for product id, or -1 when absent.
func (s *ProductRepositoryStub) Stock(id int64) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	if p, ok := s.items[id]; ok {
		return p.Stock
	}
	return -1
}

// GetByID returns a copy of the stored product.
func (s *ProductRepositoryStub) GetByID(ctx context.Context, id int64) (*model.Product, error) {
	if s.GetByIDFn != nil {
		return s.GetByIDFn(ctx, id)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return nil, s.Err
	}
	p, ok := s.items[id]
	if !ok {
		return nil, domainErrors.ErrNotFound
	}
	cp := *p
	return &cp, nil
}

// List filters by category and active flag and sorts by id.
func (s *ProductRepositoryStub) List(ctx context.Context, filter model.ProductFilter) ([]model.Product, int, error) {
	if s.ListFn != nil {
		return s.ListFn(ctx, filter)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return nil, 0, s.Err
	}
	var out []model.Product
	for _, p := range s.items {
		if filter.ActiveOnly && !p.IsActive {
			continue
		}
		if filter.Category != "" && p.Category != filter.Category {
			continue
		}
		if filter.Search != "" && !strings.Contains(strings.ToLower(p.Name), strings.ToLower(filter.Search)) {
			continue
		}
		out = append(out, *p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	total := len(out)
	start := filter.Page.Offset()
	if start > total {
		start = total
	}
	end := start + filter.Page.Limit
	if end > total || filter.Page.Limit == 0 {
		end = total
	}
	return out[start:end], total, nil
}

// Count returns number of stored products.
func (s *ProductRepositoryStub) Count(ctx context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return 0, s.Err
	}
	return len(s.items), nil
}

// Create stores product with next identifier.
func (s *ProductRepositoryStub) Create(ctx context.Context, product model.Product) (*model.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return nil, s.Err
	}
	s.next++
	product.ID = s.next
	product.CreatedAt = time.Now()
	product.UpdatedAt = product.CreatedAt
	s.items[product.ID] = &product
	cp := product
	return &cp, nil
}

// Update replaces stored product fields except stock.
func (s *ProductRepositoryStub) Update(ctx context.Context, product model.Product) (*model.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return nil, s.Err
	}
	stored, ok := s.items[product.ID]
	if !ok {
		return nil, domainErrors.ErrNotFound
	}
	product.Stock = stored.Stock
	product.UpdatedAt = time.Now()
	s.items[product.ID] = &product
	cp := product
	return &cp, nil
}

// Delete removes product.
func (s *ProductRepositoryStub) Delete(ctx context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return s.Err
	}
	if _, ok := s.items[id]; !ok {
		return domainErrors.ErrNotFound
	}
	delete(s.items, id)
	return nil
}

// SetStock overwrites stock.
func (s *ProductRepositoryStub) SetStock(ctx context.Context, id int64, stock int) (*model.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.items[id]
	if !ok {
		return nil, domainErrors.ErrNotFound
	}
	p.Stock = stock
	cp := *p
	return &cp, nil
}

// DecrementStock subtracts quantity only when enough stock remains.
func (s *ProductRepositoryStub) DecrementStock(ctx context.Context, id int64, quantity int) (int, error) {
	if s.DecrementStockFn != nil {
		return s.DecrementStockFn(ctx, id, quantity)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Decrements = append(s.Decrements, StockCall{ProductID: id, Quantity: quantity})
	p, ok := s.items[id]
	if !ok {
		return 0, domainErrors.ErrNotFound
	}
	if p.Stock < quantity {
		return 0, domainErrors.ErrInsufficientStock
	}
	p.Stock -= quantity
	return p.Stock, nil
}

// IncrementStock adds quantity back.
func (s *ProductRepositoryStub) IncrementStock(ctx context.Context, id int64, quantity int) (int, error) {
	if s.IncrementStockFn != nil {
		return s.IncrementStockFn(ctx, id, quantity)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Increments = append(s.Increments, StockCall{ProductID: id, Quantity: quantity})
	p, ok := s.items[id]
	if !ok {
		return 0, domainErrors.ErrNotFound
	}
	p.Stock += quantity
	return p.Stock, nil
}

// AddReview stores one review per user and recomputes ratings.
func (s *ProductRepositoryStub) AddReview(ctx context.Context, review model.Review) (*model.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.items[review.ProductID]
	if !ok {
		return nil, domainErrors.ErrNotFound
	}
	key := [2]int64{review.ProductID, review.UserID}
	if _, dup := s.reviews[key]; dup {
		return nil, domainErrors.ErrAlreadyReviewed
	}
	s.reviews[key] = review
	total := p.Ratings.Average*float64(p.Ratings.Count) + float64(review.Rating)
	p.Ratings.Count++
	p.Ratings.Average = total / float64(p.Ratings.Count)
	cp := *p
	return &cp, nil
}

// OrderRepositoryStub keeps orders in memory with compare-and-set updates.
type OrderRepositoryStub struct {
	CreateFn       func(context.Context, model.Order) (*model.Order, error)
	UpdateStatusFn func(context.Context, int64, model.StatusChange) (*model.Order, error)
	Err            error

	mu     sync.Mutex
	orders map[int64]*model.Order
	next   int64
}

// Snapshot copies stored orders; restore puts the copy back.
func (s *OrderRepositoryStub) Snapshot() func() {
	s.mu.Lock()
	defer s.mu.Unlock()
	orders := make(map[int64]model.Order, len(s.orders))
	for id, o := range s.orders {
		orders[id] = *o
	}
	next := s.next
	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		s.orders = make(map[int64]*model.Order, len(orders))
		for id, o := range orders {
			s.orders[id] = &o
		}
		s.next = next
	}
}

// NewOrderRepositoryStub constructs stub repository seeded with orders.
func NewOrderRepositoryStub(orders ...model.Order) *OrderRepositoryStub {
	s := &OrderRepositoryStub{orders: make(map[int64]*model.Order)}
	for _, o := range orders {
		if o.ID > s.next {
			s.next = o.ID
		}
		s.orders[o.ID] = &o
	}
	return s
}

// Len returns number of stored orders.
func (s *OrderRepositoryStub) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.orders)
}

// Create stores order with next identifier.
func (s *OrderRepositoryStub) Create(ctx context.Context, order model.Order) (*model.Order, error) {
	if s.CreateFn != nil {
		return s.CreateFn(ctx, order)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return nil, s.Err
	}
	s.next++
	order.ID = s.next
	order.CreatedAt = time.Now()
	order.UpdatedAt = order.CreatedAt
	s.orders[order.ID] = &order
	cp := order
	return &cp, nil
}

// GetByID returns stored order.
func (s *OrderRepositoryStub) GetByID(ctx context.Context, id int64) (*model.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return nil, s.Err
	}
	o, ok := s.orders[id]
	if !ok {
		return nil, domainErrors.ErrNotFound
	}
	cp := *o
	return &cp, nil
}

// ListByUser returns the user's orders, newest id first.
func (s *OrderRepositoryStub) ListByUser(ctx context.Context, userID int64) ([]model.Order, error) {
	items, _, err := s.List(ctx, model.OrderFilter{UserID: userID})
	return items, err
}

// List filters by user and statuses, newest id first.
func (s *OrderRepositoryStub) List(ctx context.Context, filter model.OrderFilter) ([]model.Order, int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return nil, 0, s.Err
	}
	var out []model.Order
	for _, o := range s.orders {
		if filter.UserID != 0 && o.UserID != filter.UserID {
			continue
		}
		if filter.Status != "" && o.Status != filter.Status {
			continue
		}
		if filter.PaymentStatus != "" && o.PaymentStatus != filter.PaymentStatus {
			continue
		}
		out = append(out, *o)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, len(out), nil
}

// UpdateStatus applies change when stored status equals change.From.
func (s *OrderRepositoryStub) UpdateStatus(ctx context.Context, id int64, change model.StatusChange) (*model.Order, error) {
	if s.UpdateStatusFn != nil {
		return s.UpdateStatusFn(ctx, id, change)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	o, ok := s.orders[id]
	if !ok {
		return nil, domainErrors.ErrNotFound
	}
	if o.Status != change.From {
		return nil, domainErrors.ErrInvalidTransition
	}
	o.Status = change.To
	if change.TrackingNumber != "" {
		o.TrackingNumber = change.TrackingNumber
	}
	if change.EstimatedDeliveryAt != nil {
		o.EstimatedDeliveryAt = change.EstimatedDeliveryAt
	}
	if change.DeliveredAt != nil {
		o.DeliveredAt = change.DeliveredAt
	}
	cp := *o
	return &cp, nil
}

// UpdatePayment applies change when stored payment status equals change.From.
func (s *OrderRepositoryStub) UpdatePayment(ctx context.Context, id int64, change model.PaymentChange) (*model.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	o, ok := s.orders[id]
	if !ok {
		return nil, domainErrors.ErrNotFound
	}
	if o.PaymentStatus != change.From {
		return nil, domainErrors.ErrInvalidTransition
	}
	o.PaymentStatus = change.To
	o.Payment.TransactionID = change.TransactionID
	if change.PaidAt != nil {
		o.Payment.PaidAt = change.PaidAt
	}
	cp := *o
	return &cp, nil
}

// ResetTokenRepositoryStub keeps reset tokens in memory.
type ResetTokenRepositoryStub struct {
	Now     func() time.Time
	Err     error
	entries map[string]resetEntry
}

type resetEntry struct {
	userID  int64
	expires time.Time
}

// NewResetTokenRepositoryStub constructs an empty token store.
func NewResetTokenRepositoryStub() *ResetTokenRepositoryStub {
	return &ResetTokenRepositoryStub{Now: time.Now, entries: make(map[string]resetEntry)}
}

// Tokens returns stored digests.
func (s *ResetTokenRepositoryStub) Tokens() []string {
	out := make([]string, 0, len(s.entries))
	for k := range s.entries {
		out = append(out, k)
	}
	return out
}

// Save stores digest with expiry.
func (s *ResetTokenRepositoryStub) Save(ctx context.Context, tokenHash string, userID int64, ttl time.Duration) error {
	if s.Err != nil {
		return s.Err
	}
	s.entries[tokenHash] = resetEntry{userID: userID, expires: s.Now().Add(ttl)}
	return nil
}

// Lookup returns the owner of an unexpired token.
func (s *ResetTokenRepositoryStub) Lookup(ctx context.Context, tokenHash string) (int64, error) {
	if s.Err != nil {
		return 0, s.Err
	}
	entry, ok := s.entries[tokenHash]
	if !ok || s.Now().After(entry.expires) {
		return 0, domainErrors.ErrInvalidResetToken
	}
	return entry.userID, nil
}

// Consume returns and removes an unexpired token.
func (s *ResetTokenRepositoryStub) Consume(ctx context.Context, tokenHash string) (int64, error) {
	if s.Err != nil {
		return 0, s.Err
	}
	entry, ok := s.entries[tokenHash]
	delete(s.entries, tokenHash)
	if !ok || s.Now().After(entry.expires) {
		return 0, domainErrors.ErrInvalidResetToken
	}
	return entry.userID, nil
}

// Snapshotter captures in-memory state so a failed transaction can undo it.
type Snapshotter interface {
	Snapshot() (restore func())
}

// TransactorStub runs fn inline and counts invocations. Stores listed in
// Rollback are restored when fn fails.
type TransactorStub struct {
	Err      error
	Rollback []Snapshotter
	calls    atomic.Int32
}

// Calls reports how many transactions were started.
func (t *TransactorStub) Calls() int {
	return int(t.calls.Load())
}

// WithinTransaction executes fn unless Err is set.
func (t *TransactorStub) WithinTransaction(ctx context.Context, fn func(context.Context) error) error {
	t.calls.Add(1)
	if t.Err != nil {
		return t.Err
	}
	restores := make([]func(), 0, len(t.Rollback))
	for _, store := range t.Rollback {
		restores = append(restores, store.Snapshot())
	}
	err := fn(ctx)
	if err != nil {
		for i := len(restores) - 1; i >= 0; i-- {
			restores[i]()
		}
	}
	return err
}

package tests

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"storefront/pkg/storefront/domain/model"
	"storefront/pkg/storefront/domain/service"
)

// memoryStore backs every mock repository. Transactions run one at a time and
// are undone from a snapshot when the callback fails. Contention on
// DecrementStock itself is exercised without the transaction lock.
type memoryStore struct {
	txMu sync.Mutex
	mu   sync.Mutex

	merchants map[string]*model.Merchant
	products  map[uuid.UUID]*model.Product
	orders    map[uuid.UUID]*model.Order
	movements []model.InventoryMovement

	failCreate error
	commits    int
	rollbacks  int
}

func newMemoryStore() *memoryStore {
	return &memoryStore{
		merchants: make(map[string]*model.Merchant),
		products:  make(map[uuid.UUID]*model.Product),
		orders:    make(map[uuid.UUID]*model.Order),
	}
}

func (s *memoryStore) addMerchant(slug string) *model.Merchant {
	m := &model.Merchant{
		ID:           uuid.New(),
		Slug:         slug,
		Name:         slug,
		Active:       true,
		AcceptOrders: true,
		CreatedAt:    time.Now().UTC(),
	}
	s.merchants[slug] = m
	return m
}

func (s *memoryStore) addProduct(merchant *model.Merchant, name string, priceCents int64, stock int) *model.Product {
	p := &model.Product{
		ID:         uuid.New(),
		MerchantID: merchant.ID,
		Name:       name,
		PriceCents: priceCents,
		Stock:      stock,
		Active:     true,
		Version:    1,
	}
	s.products[p.ID] = p
	return p
}

func (s *memoryStore) stockOf(id uuid.UUID) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.products[id].Stock
}

func (s *memoryStore) movementsOf(productID uuid.UUID) []model.InventoryMovement {
	s.mu.Lock()
	defer s.mu.Unlock()
	var movements []model.InventoryMovement
	for _, m := range s.movements {
		if m.ProductID == productID {
			movements = append(movements, m)
		}
	}
	return movements
}

func (s *memoryStore) orderCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.orders)
}

var _ model.MerchantRepository = &mockMerchantRepository{}

type mockMerchantRepository struct {
	store *memoryStore
}

func (m *mockMerchantRepository) FindBySlug(_ context.Context, slug string) (*model.Merchant, error) {
	m.store.mu.Lock()
	defer m.store.mu.Unlock()
	if merchant, ok := m.store.merchants[slug]; ok {
		clone := *merchant
		return &clone, nil
	}
	return nil, model.ErrMerchantNotFound
}

var _ model.ProductRepository = &mockProductRepository{}

type mockProductRepository struct {
	store *memoryStore
}

func (m *mockProductRepository) ListAvailable(_ context.Context, merchantID uuid.UUID) ([]model.Product, error) {
	m.store.mu.Lock()
	defer m.store.mu.Unlock()
	var products []model.Product
	for _, p := range m.store.products {
		if p.MerchantID == merchantID && p.Available() {
			products = append(products, *p)
		}
	}
	return products, nil
}

func (m *mockProductRepository) DecrementStock(_ context.Context, merchantID, productID uuid.UUID, quantity int) (*model.Product, error) {
	m.store.mu.Lock()
	defer m.store.mu.Unlock()
	p, ok := m.store.products[productID]
	if !ok || p.MerchantID != merchantID || !p.Active {
		return nil, model.ErrProductNotFound
	}
	if p.Stock < quantity {
		return nil, model.ErrInsufficientStock
	}
	p.Stock -= quantity
	p.Version++
	clone := *p
	return &clone, nil
}

var _ model.OrderRepository = &mockOrderRepository{}

type mockOrderRepository struct {
	store *memoryStore
}

func (m *mockOrderRepository) NextID() (uuid.UUID, error) {
	return uuid.NewRandom()
}

func (m *mockOrderRepository) Create(_ context.Context, order *model.Order) error {
	m.store.mu.Lock()
	defer m.store.mu.Unlock()
	if m.store.failCreate != nil {
		return m.store.failCreate
	}
	if _, exists := m.store.orders[order.ID]; exists {
		return errors.New("order with this ID already exists")
	}
	for _, existing := range m.store.orders {
		if existing.Number == order.Number {
			return model.ErrDuplicateOrderNumber
		}
	}
	m.store.orders[order.ID] = cloneOrder(order)
	return nil
}

func (m *mockOrderRepository) FindByNumber(_ context.Context, merchantID uuid.UUID, number string) (*model.Order, error) {
	m.store.mu.Lock()
	defer m.store.mu.Unlock()
	for _, order := range m.store.orders {
		if order.Number == number && order.MerchantID == merchantID {
			return cloneOrder(order), nil
		}
	}
	return nil, model.ErrOrderNotFound
}

func cloneOrder(order *model.Order) *model.Order {
	clone := *order
	clone.Items = append([]model.LineItem(nil), order.Items...)
	return &clone
}

var _ model.UnitOfWork = &mockUnitOfWork{}

type mockUnitOfWork struct {
	store *memoryStore
}

func (u *mockUnitOfWork) Execute(_ context.Context, fn func(provider model.RepositoryProvider) error) error {
	u.store.txMu.Lock()
	defer u.store.txMu.Unlock()

	u.store.mu.Lock()
	products := make(map[uuid.UUID]model.Product, len(u.store.products))
	for id, p := range u.store.products {
		products[id] = *p
	}
	orders := make(map[uuid.UUID]*model.Order, len(u.store.orders))
	for id, o := range u.store.orders {
		orders[id] = o
	}
	movements := len(u.store.movements)
	u.store.mu.Unlock()

	err := fn(u)

	u.store.mu.Lock()
	defer u.store.mu.Unlock()
	if err != nil {
		for id, p := range products {
			restored := p
			u.store.products[id] = &restored
		}
		u.store.orders = orders
		u.store.movements = u.store.movements[:movements]
		u.store.rollbacks++
		return err
	}
	u.store.commits++
	return nil
}

func (u *mockUnitOfWork) ProductRepository() model.ProductRepository {
	return &mockProductRepository{store: u.store}
}

func (u *mockUnitOfWork) OrderRepository() model.OrderRepository {
	return &mockOrderRepository{store: u.store}
}

func (u *mockUnitOfWork) InventoryMovementRepository() model.InventoryMovementRepository {
	return &mockInventoryMovementRepository{store: u.store}
}

var _ model.InventoryMovementRepository = &mockInventoryMovementRepository{}

type mockInventoryMovementRepository struct {
	store *memoryStore
}

func (m *mockInventoryMovementRepository) NextID() (uuid.UUID, error) {
	return uuid.NewRandom()
}

func (m *mockInventoryMovementRepository) Record(_ context.Context, movement model.InventoryMovement) error {
	m.store.mu.Lock()
	defer m.store.mu.Unlock()
	m.store.movements = append(m.store.movements, movement)
	return nil
}

var _ service.EventDispatcher = &mockEventDispatcher{}

type mockEventDispatcher struct {
	mu     sync.Mutex
	events []service.Event
	err    error
}

func (m *mockEventDispatcher) Dispatch(_ context.Context, event service.Event) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, event)
	return m.err
}

func (m *mockEventDispatcher) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = nil
}

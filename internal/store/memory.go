package store

import (
	"context"
	"sync"
	"time"

	"boltform_back_end/internal/models"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Memory is an in-process Store for local development (MONGO_URI=memory://)
// and tests. It mirrors the Mongo semantics, including cart versioning.
type Memory struct {
	mu        sync.Mutex
	users     map[string]models.User
	carts     map[primitive.ObjectID]models.Cart
	addresses []models.Address
	orders    []models.Order
}

func NewMemory() *Memory {
	return &Memory{
		users: make(map[string]models.User),
		carts: make(map[primitive.ObjectID]models.Cart),
	}
}

func (m *Memory) FindUserByEmail(_ context.Context, email string) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	user, ok := m.users[email]
	if !ok {
		return nil, ErrUserNotFound
	}
	return &user, nil
}

func (m *Memory) UpsertUser(_ context.Context, user models.User) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	existing, ok := m.users[user.Email]
	if ok {
		existing.Name = user.Name
		existing.Image = user.Image
		existing.Provider = user.Provider
		user = existing
	} else {
		if user.ID.IsZero() {
			user.ID = primitive.NewObjectID()
		}
		user.CreatedAt = time.Now()
	}
	m.users[user.Email] = user
	return &user, nil
}

func (m *Memory) GetCart(_ context.Context, userID primitive.ObjectID) (*models.Cart, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	cart, ok := m.carts[userID]
	if !ok {
		return nil, nil
	}
	cart.Items = append([]models.CartLine{}, cart.Items...)
	return &cart, nil
}

func (m *Memory) SaveCart(_ context.Context, userID primitive.ObjectID, items []models.CartLine, expectedVersion *int64) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	cart, ok := m.carts[userID]
	if expectedVersion != nil && cart.Version != *expectedVersion {
		return 0, ErrCartVersionConflict
	}
	if !ok {
		cart = models.Cart{ID: primitive.NewObjectID(), UserID: userID}
	}
	cart.Items = append([]models.CartLine{}, items...)
	cart.Version++
	cart.UpdatedAt = time.Now()
	m.carts[userID] = cart
	return cart.Version, nil
}

func (m *Memory) CountAddresses(_ context.Context, userID primitive.ObjectID) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var n int64
	for _, a := range m.addresses {
		if a.UserID == userID {
			n++
		}
	}
	return n, nil
}

func (m *Memory) InsertAddress(_ context.Context, addr models.Address) (primitive.ObjectID, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if addr.ID.IsZero() {
		addr.ID = primitive.NewObjectID()
	}
	m.addresses = append(m.addresses, addr)
	return addr.ID, nil
}

func (m *Memory) FirstAddress(_ context.Context, userID primitive.ObjectID) (*models.Address, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, a := range m.addresses {
		if a.UserID == userID {
			found := a
			return &found, nil
		}
	}
	return nil, nil
}

func (m *Memory) InsertOrder(_ context.Context, order models.Order) (primitive.ObjectID, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if order.ID.IsZero() {
		order.ID = primitive.NewObjectID()
	}
	if order.CreatedAt.IsZero() {
		order.CreatedAt = time.Now()
	}
	m.orders = append(m.orders, order)
	return order.ID, nil
}

// Orders returns a copy of every stored order.
func (m *Memory) Orders() []models.Order {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]models.Order(nil), m.orders...)
}

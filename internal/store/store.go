package store

import (
	"context"
	"errors"

	"boltform_back_end/internal/models"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

var (
	ErrUserNotFound        = errors.New("user not found")
	ErrCartVersionConflict = errors.New("cart was modified concurrently")
)

// Users resolves session principals to user documents.
type Users interface {
	FindUserByEmail(ctx context.Context, email string) (*models.User, error)
	UpsertUser(ctx context.Context, user models.User) (*models.User, error)
}

// Carts holds one cart document per user.
type Carts interface {
	// GetCart returns nil, nil when the user has no cart yet.
	GetCart(ctx context.Context, userID primitive.ObjectID) (*models.Cart, error)
	// SaveCart replaces the whole item list. With a nil expectedVersion the
	// write is unconditional (last write wins); otherwise it only applies when
	// the stored version matches and ErrCartVersionConflict is returned if not.
	SaveCart(ctx context.Context, userID primitive.ObjectID, items []models.CartLine, expectedVersion *int64) (int64, error)
}

type Addresses interface {
	CountAddresses(ctx context.Context, userID primitive.ObjectID) (int64, error)
	InsertAddress(ctx context.Context, addr models.Address) (primitive.ObjectID, error)
	// FirstAddress returns nil, nil when the user has none.
	FirstAddress(ctx context.Context, userID primitive.ObjectID) (*models.Address, error)
}

type Orders interface {
	InsertOrder(ctx context.Context, order models.Order) (primitive.ObjectID, error)
}

// Store is everything the persistence endpoint needs.
type Store interface {
	Users
	Carts
	Addresses
	Orders
}

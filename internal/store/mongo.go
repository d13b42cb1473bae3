package store

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"boltform_back_end/internal/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	usersCollection     = "users"
	cartsCollection     = "carts"
	addressesCollection = "addresses"
	ordersCollection    = "orders"
)

// Mongo implements Store on a single MongoDB database.
type Mongo struct {
	db *mongo.Database
}

func NewMongo(db *mongo.Database) *Mongo {
	return &Mongo{db: db}
}

// EnsureIndexes creates the unique keys the store relies on. The unique
// carts.userId index is what turns a racing first insert into a version
// conflict instead of a second cart document.
func (m *Mongo) EnsureIndexes(ctx context.Context) error {
	specs := map[string][]mongo.IndexModel{
		usersCollection: {{
			Keys:    bson.D{{Key: "email", Value: 1}},
			Options: options.Index().SetUnique(true),
		}},
		cartsCollection: {{
			Keys:    bson.D{{Key: "userId", Value: 1}},
			Options: options.Index().SetUnique(true),
		}},
		addressesCollection: {{Keys: bson.D{{Key: "userId", Value: 1}}}},
		ordersCollection: {{
			Keys: bson.D{{Key: "userId", Value: 1}, {Key: "createdAt", Value: -1}},
		}},
	}

	for coll, indexes := range specs {
		if _, err := m.db.Collection(coll).Indexes().CreateMany(ctx, indexes); err != nil {
			return fmt.Errorf("create indexes on %s: %w", coll, err)
		}
	}
	log.Println("✅ Mongo indexes ensured")
	return nil
}

func (m *Mongo) FindUserByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	err := m.db.Collection(usersCollection).FindOne(ctx, bson.M{"email": email}).Decode(&user)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// UpsertUser creates the user on first sign-in and refreshes profile fields after.
func (m *Mongo) UpsertUser(ctx context.Context, user models.User) (*models.User, error) {
	update := bson.M{
		"$set": bson.M{
			"name":     user.Name,
			"image":    user.Image,
			"provider": user.Provider,
		},
		"$setOnInsert": bson.M{"createdAt": time.Now()},
	}
	opts := options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After)

	var saved models.User
	err := m.db.Collection(usersCollection).
		FindOneAndUpdate(ctx, bson.M{"email": user.Email}, update, opts).
		Decode(&saved)
	if err != nil {
		return nil, err
	}
	return &saved, nil
}

func (m *Mongo) GetCart(ctx context.Context, userID primitive.ObjectID) (*models.Cart, error) {
	var cart models.Cart
	err := m.db.Collection(cartsCollection).FindOne(ctx, bson.M{"userId": userID}).Decode(&cart)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if cart.Items == nil {
		cart.Items = []models.CartLine{}
	}
	return &cart, nil
}

func (m *Mongo) SaveCart(ctx context.Context, userID primitive.ObjectID, items []models.CartLine, expectedVersion *int64) (int64, error) {
	if items == nil {
		items = []models.CartLine{}
	}

	filter, upsert := cartSaveFilter(userID, expectedVersion)
	update := bson.M{
		"$set": bson.M{"items": items, "updatedAt": time.Now()},
		"$inc": bson.M{"version": int64(1)},
	}
	opts := options.FindOneAndUpdate().SetUpsert(upsert).SetReturnDocument(options.After)

	var saved models.Cart
	err := m.db.Collection(cartsCollection).FindOneAndUpdate(ctx, filter, update, opts).Decode(&saved)
	if err != nil {
		return 0, cartSaveError(err)
	}
	return saved.Version, nil
}

// cartSaveFilter selects the cart a conditional write may replace. Only a
// write expecting version 0 may create the document.
func cartSaveFilter(userID primitive.ObjectID, expectedVersion *int64) (bson.M, bool) {
	filter := bson.M{"userId": userID}
	if expectedVersion == nil {
		return filter, true
	}
	if *expectedVersion == 0 {
		// documents written before versioning have no version field
		filter["version"] = bson.M{"$in": bson.A{0, nil}}
		return filter, true
	}
	filter["version"] = *expectedVersion
	return filter, false
}

// cartSaveError maps a missed conditional match, or a racing first insert
// hitting the unique userId index, to ErrCartVersionConflict.
func cartSaveError(err error) error {
	if errors.Is(err, mongo.ErrNoDocuments) || mongo.IsDuplicateKeyError(err) {
		return ErrCartVersionConflict
	}
	return err
}

func (m *Mongo) CountAddresses(ctx context.Context, userID primitive.ObjectID) (int64, error) {
	return m.db.Collection(addressesCollection).CountDocuments(ctx, bson.M{"userId": userID})
}

func (m *Mongo) InsertAddress(ctx context.Context, addr models.Address) (primitive.ObjectID, error) {
	if addr.ID.IsZero() {
		addr.ID = primitive.NewObjectID()
	}
	if _, err := m.db.Collection(addressesCollection).InsertOne(ctx, addr); err != nil {
		return primitive.NilObjectID, err
	}
	return addr.ID, nil
}

func (m *Mongo) FirstAddress(ctx context.Context, userID primitive.ObjectID) (*models.Address, error) {
	var addr models.Address
	err := m.db.Collection(addressesCollection).FindOne(ctx, bson.M{"userId": userID}).Decode(&addr)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &addr, nil
}

func (m *Mongo) InsertOrder(ctx context.Context, order models.Order) (primitive.ObjectID, error) {
	if order.ID.IsZero() {
		order.ID = primitive.NewObjectID()
	}
	if order.CreatedAt.IsZero() {
		order.CreatedAt = time.Now()
	}
	if _, err := m.db.Collection(ordersCollection).InsertOne(ctx, order); err != nil {
		return primitive.NilObjectID, err
	}
	return order.ID, nil
}

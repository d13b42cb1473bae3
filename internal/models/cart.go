package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// CartLine is one product in a cart. Lines are unique by ID once they go
// through the reconciliation engine.
type CartLine struct {
	ID       string         `json:"id" bson:"id"`
	Title    string         `json:"title" bson:"title"`
	Price    float64        `json:"price" bson:"price"`
	Quantity int            `json:"quantity" bson:"quantity"`
	Image    string         `json:"image,omitempty" bson:"image,omitempty"`
	Meta     map[string]any `json:"meta,omitempty" bson:"meta,omitempty"`
}

// Cart is the server-held document, one per user.
type Cart struct {
	ID        primitive.ObjectID `json:"_id,omitempty" bson:"_id,omitempty"`
	UserID    primitive.ObjectID `json:"userId" bson:"userId"`
	Items     []CartLine         `json:"items" bson:"items"`
	Version   int64              `json:"version" bson:"version"`
	UpdatedAt time.Time          `json:"updatedAt,omitempty" bson:"updatedAt,omitempty"`
}

// CartTotal sums price × quantity.
func CartTotal(lines []CartLine) float64 {
	var total float64
	for _, line := range lines {
		total += line.Price * float64(line.Quantity)
	}
	return total
}

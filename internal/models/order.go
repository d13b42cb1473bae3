package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	PaymentStatusPending  = "pending"
	OrderStatusProcessing = "processing"
)

type Order struct {
	ID                primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	UserID            primitive.ObjectID `json:"userId" bson:"userId"`
	Items             []CartLine         `json:"items" bson:"items"`
	Total             float64            `json:"total" bson:"total"`
	ShippingAddressID primitive.ObjectID `json:"shippingAddressId" bson:"shippingAddressId"`
	PaymentStatus     string             `json:"paymentStatus" bson:"paymentStatus"`
	OrderStatus       string             `json:"orderStatus" bson:"orderStatus"`
	CreatedAt         time.Time          `json:"createdAt" bson:"createdAt"`
}

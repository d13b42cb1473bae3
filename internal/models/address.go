package models

import "go.mongodb.org/mongo-driver/bson/primitive"

// MaxAddressesPerUser is enforced on every address write.
const MaxAddressesPerUser = 5

// Address is stored denormalized: the client sends province/city/landmark
// already folded into Address.
type Address struct {
	ID       primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	UserID   primitive.ObjectID `json:"userId" bson:"userId"`
	Email    string             `json:"email,omitempty" bson:"email,omitempty"`
	Address  string             `json:"address" bson:"address"`
	Phone    string             `json:"phone" bson:"phone"`
	Province string             `json:"province,omitempty" bson:"province,omitempty"`
	City     string             `json:"city,omitempty" bson:"city,omitempty"`
	Landmark string             `json:"landmark,omitempty" bson:"landmark,omitempty"`
}

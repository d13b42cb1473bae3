package models

// DeliveryFee is the flat fee the shipping step adds to every order.
const DeliveryFee = 0.75

type ShippingQuote struct {
	Admitted    bool    `json:"admitted"`
	DeliveryFee float64 `json:"deliveryFee"`
}

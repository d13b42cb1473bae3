// Package checkout turns a cart into a hosted payment session whose success
// URL carries a signed handoff token.
package checkout

import (
	"context"
	"fmt"
	"log"
	"math"
	"net/url"
	"strings"
	"time"

	"boltform_back_end/internal/token"
)

const (
	AnonymousUserID = "anon"
	DefaultName     = "customer"
)

// Item is one cart line as submitted by the storefront.
type Item struct {
	Price    float64 `json:"price"`
	Title    string  `json:"title"`
	Quantity int     `json:"quantity"`
}

// Buyer identifies who is paying. Both fields are optional.
type Buyer struct {
	ID   string
	Name string
}

// LineItem is an Item converted to minor currency units.
type LineItem struct {
	Name       string
	UnitAmount int64
	Quantity   int64
}

// SessionRequest is everything the payment provider needs.
type SessionRequest struct {
	Currency   string
	LineItems  []LineItem
	SuccessURL string
	CancelURL  string
}

// PaymentSessions creates a hosted payment page and returns its URL.
type PaymentSessions interface {
	Create(ctx context.Context, req SessionRequest) (string, error)
}

type Result struct {
	URL string `json:"url"`
}

// InvalidCartError reports the first offending line. Index is -1 for an
// empty cart.
type InvalidCartError struct {
	Index  int
	Reason string
}

func (e *InvalidCartError) Error() string {
	if e.Index < 0 {
		return "invalid cart: " + e.Reason
	}
	return fmt.Sprintf("invalid cart item %d: %s", e.Index, e.Reason)
}

// CheckoutSessionError wraps a payment provider failure.
type CheckoutSessionError struct {
	Message string
	Err     error
}

func (e *CheckoutSessionError) Error() string { return e.Message }
func (e *CheckoutSessionError) Unwrap() error { return e.Err }

type Initiator struct {
	tokens   *token.Service
	sessions PaymentSessions
	baseURL  string
	currency string
	ttl      time.Duration
}

func NewInitiator(tokens *token.Service, sessions PaymentSessions, baseURL, currency string, ttl time.Duration) *Initiator {
	return &Initiator{
		tokens:   tokens,
		sessions: sessions,
		baseURL:  strings.TrimRight(baseURL, "/"),
		currency: currency,
		ttl:      ttl,
	}
}

// Initiate validates the cart, mints a success token and opens a payment
// session. Nothing external is called when validation fails.
func (in *Initiator) Initiate(ctx context.Context, cart []Item, buyer Buyer) (*Result, error) {
	lines, err := toLineItems(cart)
	if err != nil {
		return nil, err
	}

	claims := token.Subject{"userId": buyer.ID, "name": buyer.Name}
	if buyer.ID == "" {
		claims["userId"] = AnonymousUserID
	}
	if buyer.Name == "" {
		claims["name"] = DefaultName
	}

	tok, err := in.tokens.Issue(claims, in.ttl)
	if err != nil {
		return nil, fmt.Errorf("issue success token: %w", err)
	}

	req := SessionRequest{
		Currency:   in.currency,
		LineItems:  lines,
		SuccessURL: in.baseURL + "/success?token=" + url.QueryEscape(tok),
		CancelURL:  in.baseURL + "/cart",
	}

	sessionURL, err := in.sessions.Create(ctx, req)
	if err != nil {
		log.Printf("❌ Payment session failed: %v", err)
		return nil, &CheckoutSessionError{Message: err.Error(), Err: err}
	}

	log.Printf("💳 Checkout session opened for %s (%d lines)", claims.String("userId"), len(lines))
	return &Result{URL: sessionURL}, nil
}

// MinorUnits converts a decimal price to cents, rounding half away from zero.
func MinorUnits(price float64) int64 {
	return int64(math.Round(price * 100))
}

func toLineItems(cart []Item) ([]LineItem, error) {
	if len(cart) == 0 {
		return nil, &InvalidCartError{Index: -1, Reason: "cart is empty"}
	}

	lines := make([]LineItem, 0, len(cart))
	for i, item := range cart {
		switch {
		case strings.TrimSpace(item.Title) == "":
			return nil, &InvalidCartError{Index: i, Reason: "title is required"}
		case math.IsNaN(item.Price) || math.IsInf(item.Price, 0) || item.Price <= 0:
			return nil, &InvalidCartError{Index: i, Reason: "price must be positive"}
		case item.Quantity <= 0:
			return nil, &InvalidCartError{Index: i, Reason: "quantity must be positive"}
		}

		amount := MinorUnits(item.Price)
		if amount <= 0 {
			return nil, &InvalidCartError{Index: i, Reason: "price rounds to zero"}
		}
		lines = append(lines, LineItem{
			Name:       item.Title,
			UnitAmount: amount,
			Quantity:   int64(item.Quantity),
		})
	}
	return lines, nil
}

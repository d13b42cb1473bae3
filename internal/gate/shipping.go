// Package gate holds the page guards that sit behind a handoff token.
package gate

import (
	"sync"
	"time"

	"boltform_back_end/internal/token"
)

type ShippingState int

const (
	Pending ShippingState = iota
	Admitted
)

func (s ShippingState) String() string {
	if s == Admitted {
		return "admitted"
	}
	return "pending"
}

// ShippingGate admits a visitor once a valid shipping token is presented.
// Admission never regresses.
type ShippingGate struct {
	tokens *token.Service

	mu    sync.Mutex
	state ShippingState
}

func NewShippingGate(tokens *token.Service) *ShippingGate {
	return &ShippingGate{tokens: tokens}
}

// Enter reports whether the gate is admitted after presenting raw.
func (g *ShippingGate) Enter(raw string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.state == Admitted {
		return true
	}
	if g.tokens.Valid(raw) {
		g.state = Admitted
	}
	return g.state == Admitted
}

func (g *ShippingGate) State() ShippingState {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.state
}

// IssueShippingToken mints the short-lived link token for the shipping page.
func IssueShippingToken(tokens *token.Service, ttl time.Duration, now time.Time) (string, error) {
	return tokens.Issue(token.Subject{"id": now.UnixMilli()}, ttl)
}

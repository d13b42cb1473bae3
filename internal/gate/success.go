package gate

import (
	"context"
	"log"
	"time"

	"boltform_back_end/internal/checkout"
	"boltform_back_end/internal/token"
)

// Consumer marks a token ID as spent. See cache.ReplayGuard.
type Consumer interface {
	Consume(ctx context.Context, id string, ttl time.Duration) (bool, error)
}

// SuccessGate decides whether the post-payment page may render.
type SuccessGate struct {
	tokens *token.Service
	replay Consumer // nil: tokens are reusable until they expire
	now    func() time.Time
}

func NewSuccessGate(tokens *token.Service, replay Consumer) *SuccessGate {
	return &SuccessGate{tokens: tokens, replay: replay, now: time.Now}
}

// Resolve returns the buyer name carried by raw. ok is false for absent,
// invalid, expired or already consumed tokens.
func (g *SuccessGate) Resolve(ctx context.Context, raw string) (name string, ok bool) {
	tok, err := g.tokens.Inspect(raw)
	if err != nil {
		return "", false
	}

	if g.replay != nil && tok.ID != "" {
		fresh, err := g.replay.Consume(ctx, tok.ID, tok.ExpiresAt.Sub(g.now()))
		if err != nil {
			log.Printf("❌ Replay guard unavailable: %v", err)
			return "", false
		}
		if !fresh {
			return "", false
		}
	}

	name = tok.Subject.String("name")
	if name == "" {
		name = checkout.DefaultName
	}
	return name, true
}

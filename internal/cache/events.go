package cache

import (
	"context"

	"github.com/redis/go-redis/v9"
)

// CartUpdated is the payload published on a cart channel after every write.
const CartUpdated = "updated"

// CartEvents fans cart writes out to every server instance.
type CartEvents struct {
	rdb *redis.Client
}

func NewCartEvents(rdb *redis.Client) *CartEvents {
	return &CartEvents{rdb: rdb}
}

func CartChannel(userID string) string {
	return "cart:" + userID
}

func (e *CartEvents) Publish(ctx context.Context, userID string) error {
	return e.rdb.Publish(ctx, CartChannel(userID), CartUpdated).Err()
}

// Subscribe returns a subscription on the user's cart channel. The caller
// closes it.
func (e *CartEvents) Subscribe(ctx context.Context, userID string) *redis.PubSub {
	return e.rdb.Subscribe(ctx, CartChannel(userID))
}

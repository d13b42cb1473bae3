package handlers

import (
	"context"
	"log"
	"net/http"
	"time"

	"boltform_back_end/internal/models"
	"boltform_back_end/internal/store"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// CartSubscriber opens a cart event subscription. See cache.CartEvents.
type CartSubscriber interface {
	Subscribe(ctx context.Context, userID string) *redis.PubSub
}

type CartSocketHandler struct {
	Carts    store.Carts
	Events   CartSubscriber
	Upgrader websocket.Upgrader
}

type cartUpdate struct {
	Type    string            `json:"type"`
	Items   []models.CartLine `json:"items"`
	Version int64             `json:"version"`
}

// Serve handles GET /api/cart/ws: it pushes the cart each time another tab
// saves it.
func (h *CartSocketHandler) Serve(c *gin.Context) {
	userID, err := primitive.ObjectIDFromHex(c.GetString("user_id"))
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "Not authenticated"})
		return
	}

	conn, err := h.Upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Printf("❌ WebSocket upgrade: %v", err)
		return
	}
	defer conn.Close()

	ctx, cancel := context.WithCancel(c.Request.Context())
	defer cancel()

	pubsub := h.Events.Subscribe(ctx, userID.Hex())
	defer pubsub.Close()
	// wait for the subscription so no update slips in before the first snapshot
	if _, err := pubsub.Receive(ctx); err != nil {
		log.Printf("❌ Cart subscription: %v", err)
		return
	}
	ch := pubsub.Channel()

	// reader: notices the client going away
	go func() {
		defer cancel()
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	if err := conn.WriteJSON(h.snapshot(ctx, userID)); err != nil {
		return
	}

	ping := time.NewTicker(30 * time.Second)
	defer ping.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case _, ok := <-ch:
			if !ok {
				return
			}
			if err := conn.WriteJSON(h.snapshot(ctx, userID)); err != nil {
				log.Printf("❌ WebSocket send: %v", err)
				return
			}
		case <-ping.C:
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func (h *CartSocketHandler) snapshot(ctx context.Context, userID primitive.ObjectID) cartUpdate {
	ctx, cancel := context.WithTimeout(ctx, storeTimeout)
	defer cancel()

	update := cartUpdate{Type: "cart_updated", Items: []models.CartLine{}}
	cart, err := h.Carts.GetCart(ctx, userID)
	if err != nil {
		log.Printf("⚠️ WebSocket cart load: %v", err)
		return update
	}
	if cart != nil {
		update.Items = cart.Items
		update.Version = cart.Version
	}
	return update
}

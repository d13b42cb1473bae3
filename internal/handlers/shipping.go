package handlers

import (
	"log"
	"net/http"
	"time"

	"boltform_back_end/internal/gate"
	"boltform_back_end/internal/models"
	"boltform_back_end/internal/token"

	"github.com/gin-gonic/gin"
)

type ShippingHandler struct {
	Tokens *token.Service
	TTL    time.Duration
}

// Token handles GET /api/shipping/token.
func (h *ShippingHandler) Token(c *gin.Context) {
	raw, err := gate.IssueShippingToken(h.Tokens, h.TTL, time.Now())
	if err != nil {
		log.Printf("❌ Shipping token: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not issue token"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"token": raw})
}

// Valid handles GET /api/shipping/valid. It never reports an error body.
func (h *ShippingHandler) Valid(c *gin.Context) {
	raw := c.Query("token")
	if _, err := h.Tokens.Verify(raw); err != nil {
		log.Printf("🔎 Shipping token rejected: %v", err)
		c.JSON(http.StatusOK, gin.H{"valid": false})
		return
	}
	c.JSON(http.StatusOK, gin.H{"valid": true})
}

// Enter handles GET /api/shipping: it runs a fresh gate for the presented
// link and quotes the delivery fee once admitted.
func (h *ShippingHandler) Enter(c *gin.Context) {
	g := gate.NewShippingGate(h.Tokens)
	if !g.Enter(c.Query("token")) {
		c.JSON(http.StatusForbidden, gin.H{"admitted": false, "error": "invalid or expired link"})
		return
	}
	c.JSON(http.StatusOK, models.ShippingQuote{Admitted: true, DeliveryFee: models.DeliveryFee})
}

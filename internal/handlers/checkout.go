package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"boltform_back_end/internal/checkout"

	"github.com/gin-gonic/gin"
)

const paymentTimeout = 20 * time.Second

// Initiator opens a payment session for a cart. See checkout.Initiator.
type Initiator interface {
	Initiate(ctx context.Context, cart []checkout.Item, buyer checkout.Buyer) (*checkout.Result, error)
}

type CheckoutHandler struct {
	Initiator Initiator
}

type checkoutRequest struct {
	UserID string          `json:"userId"`
	Name   string          `json:"name"`
	Items  []checkout.Item `json:"items"`
}

// Create handles POST /api/checkout.
func (h *CheckoutHandler) Create(c *gin.Context) {
	var req checkoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), paymentTimeout)
	defer cancel()

	res, err := h.Initiator.Initiate(ctx, req.Items, checkout.Buyer{ID: req.UserID, Name: req.Name})

	var invalid *checkout.InvalidCartError
	var upstream *checkout.CheckoutSessionError
	switch {
	case err == nil:
		c.JSON(http.StatusOK, res)
	case errors.As(err, &invalid):
		c.JSON(http.StatusBadRequest, gin.H{"error": invalid.Error()})
	case errors.As(err, &upstream):
		c.JSON(http.StatusInternalServerError, gin.H{"error": upstream.Message})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}

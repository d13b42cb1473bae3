package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strings"
	"time"

	"boltform_back_end/internal/models"
	"boltform_back_end/internal/store"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const storeTimeout = 10 * time.Second

// CartPublisher announces cart writes. See cache.CartEvents.
type CartPublisher interface {
	Publish(ctx context.Context, userID string) error
}

// OrderMailer sends the confirmation for a new order. See utils.Mailer.
type OrderMailer interface {
	SendOrderConfirmation(ctx context.Context, to, name string, order models.Order, baseURL string) error
}

// SaveHandler serves /api/save: the cart, order and address writes of a
// signed-in user.
type SaveHandler struct {
	Store   store.Store
	Users   store.Users   // defaults to Store; usually the Redis-cached view
	Events  CartPublisher // optional
	Mailer  OrderMailer   // optional
	BaseURL string
}

type saveRequest struct {
	Type    string          `json:"type"`
	Data    json.RawMessage `json:"data"`
	Version *int64          `json:"version"`
}

type orderData struct {
	Items     []models.CartLine `json:"items"`
	AddressID string            `json:"addressId"`
}

func (h *SaveHandler) users() store.Users {
	if h.Users != nil {
		return h.Users
	}
	return h.Store
}

// principal resolves the signed-in user or writes the error response.
func (h *SaveHandler) principal(ctx context.Context, c *gin.Context) (*models.User, bool) {
	email := c.GetString("email")
	if email == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "Not authenticated"})
		return nil, false
	}

	user, err := h.users().FindUserByEmail(ctx, email)
	if errors.Is(err, store.ErrUserNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"message": "User not found"})
		return nil, false
	}
	if err != nil {
		log.Printf("❌ User lookup %s: %v", email, err)
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Error saving data", "error": err.Error()})
		return nil, false
	}
	return user, true
}

// Save handles POST /api/save.
func (h *SaveHandler) Save(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), storeTimeout)
	defer cancel()

	user, ok := h.principal(ctx, c)
	if !ok {
		return
	}

	var req saveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid request body", "error": err.Error()})
		return
	}

	switch req.Type {
	case "cart":
		h.saveCart(ctx, c, user, req)
	case "order":
		h.saveOrder(ctx, c, user, req.Data)
	case "address":
		h.saveAddress(ctx, c, user, req.Data)
	default:
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid type"})
	}
}

func (h *SaveHandler) saveCart(ctx context.Context, c *gin.Context, user *models.User, req saveRequest) {
	if len(req.Data) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Cart items are required"})
		return
	}
	var lines []models.CartLine
	if err := json.Unmarshal(req.Data, &lines); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Cart items are invalid", "error": err.Error()})
		return
	}

	version, err := h.Store.SaveCart(ctx, user.ID, lines, req.Version)
	if errors.Is(err, store.ErrCartVersionConflict) {
		c.JSON(http.StatusConflict, gin.H{"message": "Cart was changed elsewhere", "error": err.Error()})
		return
	}
	if err != nil {
		log.Printf("❌ Save cart for %s: %v", user.Email, err)
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Error saving data", "error": err.Error()})
		return
	}

	if h.Events != nil {
		if err := h.Events.Publish(ctx, user.ID.Hex()); err != nil {
			log.Printf("⚠️ Cart event for %s: %v", user.ID.Hex(), err)
		}
	}

	c.JSON(http.StatusOK, gin.H{"message": "Saved successfully ✅", "version": version})
}

func (h *SaveHandler) saveOrder(ctx context.Context, c *gin.Context, user *models.User, raw json.RawMessage) {
	var data orderData
	if len(raw) == 0 || json.Unmarshal(raw, &data) != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Order data is required"})
		return
	}
	if len(data.Items) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Order items are required"})
		return
	}
	addressID, err := primitive.ObjectIDFromHex(data.AddressID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "A valid addressId is required"})
		return
	}

	order := models.Order{
		UserID:            user.ID,
		Items:             data.Items,
		Total:             models.CartTotal(data.Items),
		ShippingAddressID: addressID,
		PaymentStatus:     models.PaymentStatusPending,
		OrderStatus:       models.OrderStatusProcessing,
		CreatedAt:         time.Now(),
	}

	id, err := h.Store.InsertOrder(ctx, order)
	if err != nil {
		log.Printf("❌ Insert order for %s: %v", user.Email, err)
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Error saving data", "error": err.Error()})
		return
	}
	order.ID = id
	log.Printf("🧾 Order %s created for %s (%.2f)", id.Hex(), user.Email, order.Total)

	if h.Mailer != nil {
		go func(to, name string, order models.Order) {
			ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()
			_ = h.Mailer.SendOrderConfirmation(ctx, to, name, order, h.BaseURL)
		}(user.Email, user.Name, order)
	}

	c.JSON(http.StatusCreated, gin.H{"orderId": id.Hex()})
}

func (h *SaveHandler) saveAddress(ctx context.Context, c *gin.Context, user *models.User, raw json.RawMessage) {
	var addr models.Address
	if len(raw) == 0 || json.Unmarshal(raw, &addr) != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Address data is required"})
		return
	}
	if strings.TrimSpace(addr.Address) == "" || strings.TrimSpace(addr.Phone) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Address and phone are required"})
		return
	}

	count, err := h.Store.CountAddresses(ctx, user.ID)
	if err != nil {
		log.Printf("❌ Count addresses for %s: %v", user.Email, err)
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Error saving data", "error": err.Error()})
		return
	}
	if count >= models.MaxAddressesPerUser {
		c.JSON(http.StatusForbidden, gin.H{"message": "You can only have up to 5 addresses"})
		return
	}

	addr.ID = primitive.NilObjectID
	addr.UserID = user.ID
	id, err := h.Store.InsertAddress(ctx, addr)
	if err != nil {
		log.Printf("❌ Insert address for %s: %v", user.Email, err)
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Error saving data", "error": err.Error()})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"addressId": id.Hex()})
}

// Load handles GET /api/save.
func (h *SaveHandler) Load(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), storeTimeout)
	defer cancel()

	switch c.Query("type") {
	case "cart":
		user, ok := h.principal(ctx, c)
		if !ok {
			return
		}
		cart, err := h.Store.GetCart(ctx, user.ID)
		if err != nil {
			log.Printf("❌ Load cart for %s: %v", user.Email, err)
			c.JSON(http.StatusInternalServerError, gin.H{"message": "Error loading data", "error": err.Error()})
			return
		}
		if cart == nil {
			c.JSON(http.StatusOK, gin.H{"items": []models.CartLine{}})
			return
		}
		c.JSON(http.StatusOK, cart)

	case "address":
		email := c.Query("email")
		if email == "" {
			c.JSON(http.StatusBadRequest, gin.H{"message": "Email is required"})
			return
		}
		if email != c.GetString("email") {
			c.JSON(http.StatusForbidden, gin.H{"message": "Unauthorized access 🚫"})
			return
		}
		user, ok := h.principal(ctx, c)
		if !ok {
			return
		}
		addr, err := h.Store.FirstAddress(ctx, user.ID)
		if err != nil {
			log.Printf("❌ Load address for %s: %v", user.Email, err)
			c.JSON(http.StatusInternalServerError, gin.H{"message": "Error loading data", "error": err.Error()})
			return
		}
		if addr == nil {
			c.JSON(http.StatusOK, gin.H{"exist": false})
			return
		}
		c.JSON(http.StatusOK, gin.H{"address": addr.Address, "phone": addr.Phone, "exist": true})

	default:
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid type"})
	}
}

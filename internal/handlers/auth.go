package handlers

import (
	"context"
	"log"
	"net/http"
	"net/url"
	"strings"
	"time"

	"boltform_back_end/internal/models"
	"boltform_back_end/internal/store"
	"boltform_back_end/internal/token"

	"github.com/gin-gonic/gin"
	"github.com/markbates/goth"
	"github.com/markbates/goth/gothic"
)

// AuthHandler glues an OAuth provider sign-in to a session token.
type AuthHandler struct {
	Users      store.Users
	Sessions   *token.Service
	SessionTTL time.Duration
	BaseURL    string

	// Complete finishes the provider flow; gothic.CompleteUserAuth by default.
	Complete func(w http.ResponseWriter, r *http.Request) (goth.User, error)
}

func withProvider(c *gin.Context) bool {
	provider := c.Param("provider")
	if provider == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "no provider given"})
		return false
	}
	c.Request = gothic.GetContextWithProvider(c.Request, provider)
	return true
}

// Begin handles GET /api/auth/:provider.
func (h *AuthHandler) Begin(c *gin.Context) {
	if !withProvider(c) {
		return
	}
	gothic.BeginAuthHandler(c.Writer, c.Request)
}

// Callback handles GET /api/auth/:provider/callback.
func (h *AuthHandler) Callback(c *gin.Context) {
	if !withProvider(c) {
		return
	}

	complete := h.Complete
	if complete == nil {
		complete = gothic.CompleteUserAuth
	}
	gu, err := complete(c.Writer, c.Request)
	if err != nil {
		log.Printf("❌ OAuth callback: %v", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	email := strings.ToLower(strings.TrimSpace(gu.Email))
	if email == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "provider did not return an e-mail"})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), storeTimeout)
	defer cancel()

	user, err := h.Users.UpsertUser(ctx, models.User{
		Email:    email,
		Name:     gu.Name,
		Image:    gu.AvatarURL,
		Provider: gu.Provider,
	})
	if err != nil {
		log.Printf("❌ Upsert user %s: %v", email, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not save user"})
		return
	}

	session, err := h.Sessions.Issue(token.Subject{
		"email":  user.Email,
		"name":   user.Name,
		"userId": user.ID.Hex(),
	}, h.SessionTTL)
	if err != nil {
		log.Printf("❌ Session token for %s: %v", email, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not start session"})
		return
	}

	log.Printf("✅ %s signed in with %s", email, gu.Provider)
	c.Redirect(http.StatusTemporaryRedirect,
		strings.TrimRight(h.BaseURL, "/")+"/?"+url.Values{"session": {session}}.Encode())
}

// Me handles GET /api/auth/me.
func (h *AuthHandler) Me(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"email":  c.GetString("email"),
		"name":   c.GetString("name"),
		"userId": c.GetString("user_id"),
	})
}

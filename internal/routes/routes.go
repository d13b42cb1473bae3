package routes

import (
	"time"

	"boltform_back_end/internal/handlers"
	"boltform_back_end/internal/middleware"
	"boltform_back_end/internal/token"

	"github.com/gin-gonic/gin"
)

// Deps is everything the route table needs, built once in main.
type Deps struct {
	Sessions *token.Service

	Save     *handlers.SaveHandler
	Checkout *handlers.CheckoutHandler
	Shipping *handlers.ShippingHandler
	Success  *handlers.SuccessHandler
	Auth     *handlers.AuthHandler
	CartWS   *handlers.CartSocketHandler // nil disables live cart sync

	RateCounter       middleware.Counter
	CheckoutRateLimit int64
}

func RegisterRoutes(r *gin.Engine, d Deps) {
	r.GET("/health", func(c *gin.Context) { c.JSON(200, gin.H{"status": "ok"}) })

	// Post-payment page
	r.GET("/success", d.Success.Show)

	api := r.Group("/api")

	// Shipping handoff
	api.GET("/shipping/token", d.Shipping.Token)
	api.GET("/shipping/valid", d.Shipping.Valid)
	api.GET("/shipping", d.Shipping.Enter)

	// Checkout
	api.POST("/checkout",
		middleware.RateLimit(d.RateCounter, "rl:checkout", d.CheckoutRateLimit, time.Minute),
		d.Checkout.Create)

	// Sign-in
	auth := api.Group("/auth")
	auth.GET("/me", middleware.AuthRequired(d.Sessions), d.Auth.Me)
	auth.GET("/:provider", d.Auth.Begin)
	auth.GET("/:provider/callback", d.Auth.Callback)

	// Signed-in persistence
	private := api.Group("", middleware.AuthRequired(d.Sessions))
	private.GET("/save", d.Save.Load)
	private.POST("/save", d.Save.Save)
	if d.CartWS != nil {
		private.GET("/cart/ws", d.CartWS.Serve)
	}
}

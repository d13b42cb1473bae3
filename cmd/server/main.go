package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"boltform_back_end/internal/cache"
	"boltform_back_end/internal/checkout"
	"boltform_back_end/internal/config"
	"boltform_back_end/internal/database"
	"boltform_back_end/internal/gate"
	"boltform_back_end/internal/handlers"
	"boltform_back_end/internal/routes"
	"boltform_back_end/internal/token"
	"boltform_back_end/internal/utils"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/sessions"
	"github.com/gorilla/websocket"
	"github.com/markbates/goth"
	"github.com/markbates/goth/gothic"
	"github.com/stripe/stripe-go/v83"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("❌ Invalid configuration: %v", err)
	}

	stripe.Key = cfg.StripeSecretKey
	log.Println("✅ Stripe initialised")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	conns, err := database.ConnectDatabases(ctx, cfg)
	if err != nil {
		log.Fatalf("❌ Database connection failed: %v", err)
	}
	defer conns.Close(context.Background())

	handoff, err := token.NewService(cfg.TokenSecret)
	if err != nil {
		log.Fatalf("❌ Handoff tokens: %v", err)
	}
	sessionTokens, err := token.NewService(cfg.JWTSecret)
	if err != nil {
		log.Fatalf("❌ Session tokens: %v", err)
	}

	initOAuthProviders(cfg)

	users := cache.NewUserCache(conns.Store, conns.Redis)
	events := cache.NewCartEvents(conns.Redis)

	var replay gate.Consumer
	if cfg.TokenSingleUse {
		replay = cache.NewReplayGuard(conns.Redis)
		log.Println("🔒 Success tokens are single-use")
	}

	save := &handlers.SaveHandler{
		Store:   conns.Store,
		Users:   users,
		Events:  events,
		BaseURL: cfg.BaseURL,
	}
	if mailer := utils.NewMailer(cfg); mailer != nil {
		save.Mailer = mailer
	}

	r := gin.Default()
	r.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.CORSOrigins,
		AllowMethods:     []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	routes.RegisterRoutes(r, routes.Deps{
		Sessions: sessionTokens,
		Save:     save,
		Checkout: &handlers.CheckoutHandler{
			Initiator: checkout.NewInitiator(handoff, checkout.StripeSessions{},
				cfg.BaseURL, cfg.StripeCurrency, cfg.CheckoutTokenTTL),
		},
		Shipping: &handlers.ShippingHandler{Tokens: handoff, TTL: cfg.ShippingTokenTTL},
		Success:  &handlers.SuccessHandler{Gate: gate.NewSuccessGate(handoff, replay), BaseURL: cfg.BaseURL},
		Auth: &handlers.AuthHandler{
			Users:      users,
			Sessions:   sessionTokens,
			SessionTTL: cfg.SessionTTL,
			BaseURL:    cfg.BaseURL,
		},
		CartWS: &handlers.CartSocketHandler{
			Carts:  conns.Store,
			Events: events,
			Upgrader: websocket.Upgrader{
				CheckOrigin: originChecker(cfg.CORSOrigins),
			},
		},
		RateCounter:       cache.NewCounter(conns.Redis),
		CheckoutRateLimit: cfg.CheckoutRateLimit,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Println("🚀 Boltform API listening on port", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("❌ Server error: %v", err)
		}
	}()

	<-ctx.Done()
	log.Println("🛑 Shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("⚠️ Shutdown: %v", err)
	}
}

func initOAuthProviders(cfg *config.Config) {
	store := sessions.NewCookieStore(cfg.SessionSecret)
	store.Options = &sessions.Options{
		Path:     "/",
		MaxAge:   600,
		HttpOnly: true,
		Secure:   strings.HasPrefix(cfg.APIBaseURL, "https:"),
		SameSite: http.SameSiteLaxMode,
	}
	gothic.Store = store

	providers := cfg.OAuthProviders()
	if len(providers) == 0 {
		log.Println("⚠️ No OAuth provider configured")
		return
	}
	goth.UseProviders(providers...)
	log.Printf("✅ %d OAuth provider(s) initialised", len(providers))
}

func originChecker(allowed []string) func(*http.Request) bool {
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" {
			return true
		}
		for _, o := range allowed {
			if o == origin {
				return true
			}
		}
		return false
	}
}

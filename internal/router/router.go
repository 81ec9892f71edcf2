package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/sirupsen/logrus"

	"guild-economy-api/internal/handler"
	"guild-economy-api/internal/metrics"
	"guild-economy-api/internal/middleware"
	"guild-economy-api/pkg/logger"
)

// Config holds the configuration for creating a router.
type Config struct {
	Handler        *handler.Handler
	EconomyHandler *handler.EconomyHandler
	AdminHandler   *handler.AdminHandler
	AuthMiddleware func(http.Handler) http.Handler
	RateLimiter    *middleware.RateLimiter
	Logger         logrus.FieldLogger
}

// New creates and configures the HTTP router.
func New(cfg Config) *chi.Mux {
	if cfg.Logger == nil {
		cfg.Logger = logger.Discard()
	}

	r := chi.NewRouter()

	// Global middleware stack (applies to ALL routes)
	r.Use(middleware.RequestID)
	r.Use(middleware.NewRecovery(cfg.Logger))
	r.Use(middleware.NewLogging(cfg.Logger))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID", "X-API-Key"},
		ExposedHeaders:   []string{"X-Request-ID"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	// PUBLIC routes (no auth required)
	if cfg.Handler != nil {
		r.Get("/api/status", cfg.Handler.Status)
		r.Get("/api/v1/health", cfg.Handler.Health)
		r.Get("/api/v1/ready", cfg.Handler.Ready)
	}
	r.Handle("/metrics", metrics.Handler())

	// AUTHENTICATED routes
	r.Group(func(r chi.Router) {
		if cfg.AuthMiddleware != nil {
			r.Use(cfg.AuthMiddleware)
		}
		if cfg.RateLimiter != nil {
			r.Use(cfg.RateLimiter.Handler)
		}

		r.Route("/api/v1", func(r chi.Router) {
			if cfg.AdminHandler != nil {
				r.Route("/admin", func(r chi.Router) {
					r.Get("/stats", cfg.AdminHandler.GetStats)
					r.Post("/normalize", cfg.AdminHandler.Normalize)
				})
			}

			if cfg.EconomyHandler != nil {
				r.Route("/guilds/{guild_id}", func(r chi.Router) {
					mountGuild(r, cfg.EconomyHandler)
				})
			}
		})
	})

	return r
}

func mountGuild(r chi.Router, h *handler.EconomyHandler) {
	r.Get("/leaderboard", h.Leaderboard)

	r.Route("/shop", func(r chi.Router) {
		r.Get("/", h.ListShop)
		r.Post("/", h.CreateShopItem)
		r.Get("/{item_id}", h.GetShopItem)
		r.Patch("/{item_id}", h.UpdateShopItem)
		r.Delete("/{item_id}", h.DeleteShopItem)
	})

	r.Route("/users/{user_id}", func(r chi.Router) {
		r.Get("/", h.GetUser)
		r.Post("/deposit", h.Deposit)
		r.Post("/withdraw", h.Withdraw)
		r.Post("/{field:(balance|bank)}/{op}", h.MutateField)

		r.Get("/rewards/{type}", h.GetReward)
		r.Post("/rewards/{type}", h.CollectReward)

		r.Get("/inventory", h.GetInventory)
		r.Get("/inventory/{item_id}", h.GetInventoryItem)
		r.Post("/inventory/{item_id}/{action}", h.ItemAction)

		r.Get("/history", h.GetHistory)
		r.Delete("/history/{id}", h.DeleteHistory)
	})
}

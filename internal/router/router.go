package router

import (
	"log"
	"net/http"

	"github.com/aadelicias/api/internal/config"
	"github.com/aadelicias/api/internal/database"
	"github.com/aadelicias/api/internal/handler"
	mw "github.com/aadelicias/api/internal/middleware"
	"github.com/aadelicias/api/internal/service"
	"github.com/aadelicias/api/internal/ws"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/jackc/pgx/v5/pgxpool"
)

// New creates a Chi router with all application routes wired up.
func New(cfg *config.Config, queries *database.Queries, pool *pgxpool.Pool, hub *ws.Hub) chi.Router {
	r := chi.NewRouter()

	// Standard middleware
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	// CORS configuration
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{
			"http://localhost:5173", // dashboard dev server
			"https://app.aadelicias.com.br",
		},
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300, // 5 minutes
	}))

	// Public routes
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"ok","version":"1.0.0"}`))
	})

	// Auth routes (public)
	authHandler := handler.NewAuthHandler(queries, cfg.JWTSecret)
	authHandler.RegisterRoutes(r)

	// WebSocket route (handles auth internally via query param)
	r.Get("/ws/orders", func(w http.ResponseWriter, r *http.Request) {
		ws.ServeWS(hub, cfg.JWTSecret, w, r)
	})

	// Protected routes (require authentication)
	r.Group(func(r chi.Router) {
		r.Use(mw.Authenticate(cfg.JWTSecret))

		// Catalog
		productHandler := handler.NewProductHandler(queries)
		r.Route("/products", productHandler.RegisterRoutes)

		// Orders
		orderService := service.NewOrderService(pool, func(db database.DBTX) service.OrderStore {
			return database.New(db)
		})
		orderHandler := handler.NewOrderHandler(orderService, queries, hub)
		r.Route("/orders", orderHandler.RegisterRoutes)

		// Customers
		customerHandler := handler.NewCustomerHandler(queries)
		r.Route("/customers", customerHandler.RegisterRoutes)

		// Opportunities
		opportunityHandler := handler.NewOpportunityHandler(queries, cfg.OpportunityLeadDays)
		r.Route("/opportunities", opportunityHandler.RegisterRoutes)

		// Owner-only routes: the ledger and its reports
		r.Group(func(r chi.Router) {
			r.Use(mw.RequireRole("OWNER"))

			transactionHandler := handler.NewTransactionHandler(queries)
			r.Route("/transactions", transactionHandler.RegisterRoutes)

			reportsHandler := handler.NewReportsHandler(queries)
			r.Route("/reports", reportsHandler.RegisterRoutes)
		})
	})

	log.Println("Router initialized with all handlers")
	return r
}

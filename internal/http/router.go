package http

import (
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"community-backend/internal/handlers"
	"community-backend/internal/middleware"
)

// NewRouter wires all API routes with the shared middleware chain
func NewRouter(
	authHandler *handlers.AuthHandler,
	treeHandler *handlers.FamilyTreeHandler,
	healthHandler *handlers.HealthHandler,
	authMiddleware *middleware.AuthMiddleware,
) *mux.Router {
	r := mux.NewRouter()

	r.Use(middleware.SecurityHeaders)
	r.Use(middleware.RequestLogging)
	r.Use(middleware.Metrics)
	r.Use(middleware.GzipCompression)

	r.Handle("/metrics", promhttp.Handler()).Methods("GET")

	api := r.PathPrefix("/api").Subrouter()

	// Public routes
	public := api.NewRoute().Subrouter()
	loginLimiter := middleware.NewRateLimiter(10, time.Minute)
	public.Handle("/auth/register", loginLimiter.Middleware(http.HandlerFunc(authHandler.Register))).Methods("POST")
	public.Handle("/auth/login", loginLimiter.Middleware(http.HandlerFunc(authHandler.Login))).Methods("POST")
	public.HandleFunc("/health", healthHandler.Check).Methods("GET")

	// Authenticated routes
	protected := api.NewRoute().Subrouter()
	protected.Use(authMiddleware.RequireAuth)

	protected.HandleFunc("/auth/me", authHandler.Me).Methods("GET")

	protected.HandleFunc("/family-trees", treeHandler.List).Methods("GET")
	protected.HandleFunc("/family-trees", treeHandler.Create).Methods("POST")
	protected.HandleFunc("/family-trees/my-tree", treeHandler.GetMyTree).Methods("GET")
	protected.HandleFunc("/family-trees/user/{accountID:[0-9]+}", treeHandler.GetByOwner).Methods("GET")
	protected.HandleFunc("/family-trees/{id:[0-9]+}", treeHandler.Get).Methods("GET")
	protected.HandleFunc("/family-trees/{id:[0-9]+}/layout", treeHandler.Layout).Methods("GET")
	protected.HandleFunc("/family-trees/{id:[0-9]+}/members", treeHandler.AddMember).Methods("POST")
	protected.HandleFunc("/family-trees/{id:[0-9]+}/members/{memberID}", treeHandler.UpdateMember).Methods("PUT")
	protected.HandleFunc("/family-trees/{id:[0-9]+}/members/{memberID}", treeHandler.RemoveMember).Methods("DELETE")
	protected.HandleFunc("/family-trees/{id:[0-9]+}/link-account", treeHandler.LinkAccount).Methods("POST")

	// Admin routes
	admin := api.NewRoute().Subrouter()
	admin.Use(authMiddleware.RequireAuth, authMiddleware.RequireAdmin)
	admin.HandleFunc("/health/detailed", healthHandler.Detailed).Methods("GET")

	return r
}

package http

import (
	"database/sql"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"

	"bloodbridge-backend/internal/identity"
	"bloodbridge-backend/internal/metrics"
	"bloodbridge-backend/internal/service"
)

// RouterDeps carries everything the HTTP surface needs.
type RouterDeps struct {
	AuthSvc    service.AuthService
	UserSvc    service.UserService
	RequestSvc service.RequestService
	Provider   identity.Provider
	Collector  *metrics.Collector
	Registry   *prometheus.Registry
	DB         *sql.DB

	LoginPerMinute int
	LoginBurst     int
}

// NewRouter builds the full route table. Ordering matters: the auth
// middleware runs on every request so public endpoints still see a
// reconciled state when a token is presented.
func NewRouter(deps RouterDeps) *mux.Router {
	router := mux.NewRouter()

	mw := NewMiddleware(deps.Provider, deps.AuthSvc, deps.Collector)
	router.Use(mw.RequestID, mw.Logging, mw.Authenticate)

	authHandler := NewAuthHandler(deps.AuthSvc)
	userHandler := NewUserHandler(deps.UserSvc)
	requestHandler := NewRequestHandler(deps.RequestSvc, deps.Collector)
	adminHandler := NewAdminHandler(deps.UserSvc)

	router.HandleFunc("/healthz", healthz(deps.DB)).Methods("GET")
	if deps.Registry != nil {
		router.Handle("/metrics", metrics.Handler(deps.Registry)).Methods("GET")
	}

	api := router.PathPrefix("/api/v1").Subrouter()

	// Public surface
	limiter := newLoginLimiter(deps.LoginPerMinute, deps.LoginBurst)
	api.HandleFunc("/auth/login", limiter.Limit(authHandler.Login)).Methods("POST")
	api.HandleFunc("/auth/register", authHandler.Register).Methods("POST")
	api.HandleFunc("/donors/search", userHandler.SearchDonors).Methods("GET")
	api.HandleFunc("/donation-requests/pending", requestHandler.ListPending).Methods("GET")

	// Session-holding surface
	protected := api.NewRoute().Subrouter()
	protected.Use(mw.RequireSession)

	protected.HandleFunc("/auth/federated", authHandler.Federated).Methods("POST")
	protected.HandleFunc("/auth/logout", authHandler.Logout).Methods("POST")
	protected.HandleFunc("/auth/me", authHandler.Me).Methods("GET")

	protected.HandleFunc("/users", userHandler.List).Methods("GET")
	protected.HandleFunc("/users", userHandler.Create).Methods("POST")
	protected.HandleFunc("/users/{email}", userHandler.Get).Methods("GET")
	protected.HandleFunc("/users/{email}", userHandler.Update).Methods("PUT")
	protected.HandleFunc("/users/{email}/role-status", userHandler.RoleStatus).Methods("GET")
	protected.HandleFunc("/users/{email}/status", userHandler.SetStatus).Methods("PATCH")
	protected.HandleFunc("/users/{email}/role", userHandler.SetRole).Methods("PATCH")

	protected.HandleFunc("/donation-requests", requestHandler.List).Methods("GET")
	protected.HandleFunc("/donation-requests", requestHandler.Create).Methods("POST")
	protected.HandleFunc("/donation-requests/user/{email}", requestHandler.ListByUser).Methods("GET")
	protected.HandleFunc("/donation-requests/{id:[0-9]+}", requestHandler.Get).Methods("GET")
	protected.HandleFunc("/donation-requests/{id:[0-9]+}", requestHandler.Update).Methods("PUT")
	protected.HandleFunc("/donation-requests/{id:[0-9]+}/status", requestHandler.Transition).Methods("PATCH")
	protected.HandleFunc("/donation-requests/{id:[0-9]+}", requestHandler.Delete).Methods("DELETE")

	protected.HandleFunc("/admin/stats", adminHandler.Stats).Methods("GET")

	return router
}

func healthz(db *sql.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if db != nil {
			if err := db.PingContext(r.Context()); err != nil {
				writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "degraded"})
				return
			}
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}
}

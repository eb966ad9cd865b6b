package http

import (
	"context"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"golang.org/x/time/rate"

	"bloodbridge-backend/internal/domain"
	"bloodbridge-backend/internal/identity"
	"bloodbridge-backend/internal/logger"
	"bloodbridge-backend/internal/metrics"
	"bloodbridge-backend/internal/service"
)

type contextKey string

const (
	authStateKey contextKey = "authState"
	requestIDKey contextKey = "requestID"
)

// AuthStateFrom returns the reconciled identity for the request, or the
// unauthenticated zero state when no session was presented.
func AuthStateFrom(ctx context.Context) domain.AuthState {
	if state, ok := ctx.Value(authStateKey).(domain.AuthState); ok {
		return state
	}
	return domain.Unauthenticated()
}

// RequestIDFrom returns the correlation id assigned to the request.
func RequestIDFrom(ctx context.Context) string {
	if id, ok := ctx.Value(requestIDKey).(string); ok {
		return id
	}
	return ""
}

// Middleware bundles the cross-cutting request plumbing.
type Middleware struct {
	provider  identity.Provider
	authSvc   service.AuthService
	collector *metrics.Collector
}

func NewMiddleware(provider identity.Provider, authSvc service.AuthService, collector *metrics.Collector) *Middleware {
	return &Middleware{
		provider:  provider,
		authSvc:   authSvc,
		collector: collector,
	}
}

// RequestID assigns each request a correlation id, honoring one supplied by
// the client.
func (m *Middleware) RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get("X-Request-ID")
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set("X-Request-ID", id)
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), requestIDKey, id)))
	})
}

// statusRecorder captures the status code written downstream.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (sr *statusRecorder) WriteHeader(code int) {
	sr.status = code
	sr.ResponseWriter.WriteHeader(code)
}

// Logging logs one line per request and feeds the HTTP metrics.
func (m *Middleware) Logging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

		next.ServeHTTP(rec, r)

		route := r.URL.Path
		if current := mux.CurrentRoute(r); current != nil {
			if tmpl, err := current.GetPathTemplate(); err == nil {
				route = tmpl
			}
		}

		duration := time.Since(start)
		if m.collector != nil {
			m.collector.RecordHTTPRequest(r.Method, route, rec.status, duration)
		}
		logger.Info("HTTP request",
			"method", r.Method,
			"route", route,
			"status", rec.status,
			"duration_ms", duration.Milliseconds(),
			"request_id", RequestIDFrom(r.Context()),
		)
	})
}

// Authenticate verifies the bearer token, reconciles the session against the
// directory, and stores the resulting AuthState on the context. A request
// with no token proceeds as unauthenticated; a bad token is rejected here,
// and a blocked account is terminated here so no handler runs for it.
func (m *Middleware) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := bearerToken(r)
		if token == "" {
			next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), authStateKey, domain.Unauthenticated())))
			return
		}

		session, err := m.provider.VerifySession(r.Context(), token)
		if err != nil {
			writeJSON(w, http.StatusUnauthorized, errorBody{Error: errorDetail{
				Code:    "invalid_session",
				Message: "session token is invalid, expired, or revoked",
			}})
			return
		}

		state := m.authSvc.Reconcile(r.Context(), session)
		if m.collector != nil {
			m.collector.RecordReconciliation(string(state.Phase))
		}

		if state.Phase == domain.AuthPhaseBlocked {
			writeError(w, domain.ErrBlocked)
			return
		}

		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), authStateKey, state)))
	})
}

// RequireSession rejects requests that carry no verified session. Role and
// standing checks stay in the service layer; this gate only distinguishes
// 401 from 403.
func (m *Middleware) RequireSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		state := AuthStateFrom(r.Context())
		if state.Session == nil {
			writeJSON(w, http.StatusUnauthorized, errorBody{Error: errorDetail{
				Code:    "unauthenticated",
				Message: "authentication required",
			}})
			return
		}
		next.ServeHTTP(w, r)
	})
}

func bearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	if header == "" {
		return ""
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}

// loginLimiter throttles credential logins per client IP.
type loginLimiter struct {
	mu       sync.Mutex
	limiters map[string]*rate.Limiter
	rate     rate.Limit
	burst    int
}

func newLoginLimiter(perMinute, burst int) *loginLimiter {
	return &loginLimiter{
		limiters: make(map[string]*rate.Limiter),
		rate:     rate.Limit(float64(perMinute) / 60.0),
		burst:    burst,
	}
}

func (l *loginLimiter) allow(ip string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	lim, ok := l.limiters[ip]
	if !ok {
		lim = rate.NewLimiter(l.rate, l.burst)
		l.limiters[ip] = lim
	}
	return lim.Allow()
}

// Limit wraps a handler with the per-IP login throttle.
func (l *loginLimiter) Limit(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ip := clientIP(r)
		if !l.allow(ip) {
			logger.Warn("Login rate limit exceeded", "ip", ip)
			writeJSON(w, http.StatusTooManyRequests, errorBody{Error: errorDetail{
				Code:    "rate_limited",
				Message: "too many login attempts, try again later",
			}})
			return
		}
		next(w, r)
	}
}

func clientIP(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		if idx := strings.Index(fwd, ","); idx >= 0 {
			return strings.TrimSpace(fwd[:idx])
		}
		return strings.TrimSpace(fwd)
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

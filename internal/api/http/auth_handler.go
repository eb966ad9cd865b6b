package http

import (
	"net/http"

	"bloodbridge-backend/internal/domain"
	"bloodbridge-backend/internal/service"
)

// AuthHandler exposes login, registration and session endpoints.
type AuthHandler struct {
	authSvc service.AuthService
}

func NewAuthHandler(authSvc service.AuthService) *AuthHandler {
	return &AuthHandler{authSvc: authSvc}
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type sessionResponse struct {
	Token string           `json:"token,omitempty"`
	Auth  domain.AuthState `json:"auth"`
}

// Login handles POST /api/v1/auth/login.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}

	token, state, err := h.authSvc.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, sessionResponse{Token: token, Auth: state})
}

// Register handles POST /api/v1/auth/register.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var input service.RegisterInput
	if err := decodeJSON(r, &input); err != nil {
		writeError(w, err)
		return
	}

	token, state, err := h.authSvc.RegisterWithCredentials(r.Context(), input)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, sessionResponse{Token: token, Auth: state})
}

// Federated handles POST /api/v1/auth/federated. The session was already
// verified by the auth middleware; this endpoint only synthesizes the
// directory record on a first federated login.
func (h *AuthHandler) Federated(w http.ResponseWriter, r *http.Request) {
	state := AuthStateFrom(r.Context())

	reconciled, err := h.authSvc.RegisterFederated(r.Context(), state.Session)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, sessionResponse{Auth: reconciled})
}

// Logout handles POST /api/v1/auth/logout.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	state := AuthStateFrom(r.Context())
	if err := h.authSvc.Logout(r.Context(), state.Session); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusNoContent, nil)
}

// Me handles GET /api/v1/auth/me, returning the reconciled state for the
// presented session.
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, sessionResponse{Auth: AuthStateFrom(r.Context())})
}

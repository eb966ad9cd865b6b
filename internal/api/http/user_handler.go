package http

import (
	"net/http"
	"strings"

	"github.com/gorilla/mux"

	"bloodbridge-backend/internal/domain"
	"bloodbridge-backend/internal/service"
)

// UserHandler exposes the user directory endpoints.
type UserHandler struct {
	userSvc service.UserService
}

func NewUserHandler(userSvc service.UserService) *UserHandler {
	return &UserHandler{userSvc: userSvc}
}

// List handles GET /api/v1/users (admin only).
func (h *UserHandler) List(w http.ResponseWriter, r *http.Request) {
	users, err := h.userSvc.List(r.Context(), AuthStateFrom(r.Context()))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, users)
}

// Get handles GET /api/v1/users/{email}.
func (h *UserHandler) Get(w http.ResponseWriter, r *http.Request) {
	email := mux.Vars(r)["email"]
	user, err := h.userSvc.GetProfile(r.Context(), AuthStateFrom(r.Context()), email)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, user)
}

// RoleStatus handles GET /api/v1/users/{email}/role-status. The projection is
// restricted to the identity itself and admins; it is not public data.
func (h *UserHandler) RoleStatus(w http.ResponseWriter, r *http.Request) {
	email := mux.Vars(r)["email"]
	actor := AuthStateFrom(r.Context())
	if !actor.HasRole(domain.RoleAdmin) && !strings.EqualFold(actor.Email(), email) {
		writeError(w, domain.ErrUnauthorized)
		return
	}

	rs, err := h.userSvc.GetRoleStatus(r.Context(), email)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, rs)
}

// Create handles POST /api/v1/users. An identity may create its own directory
// record; admins may create any.
func (h *UserHandler) Create(w http.ResponseWriter, r *http.Request) {
	var user domain.User
	if err := decodeJSON(r, &user); err != nil {
		writeError(w, err)
		return
	}

	actor := AuthStateFrom(r.Context())
	if !actor.HasRole(domain.RoleAdmin) && !strings.EqualFold(actor.Email(), user.Email) {
		writeError(w, domain.ErrUnauthorized)
		return
	}

	if err := h.userSvc.CreateRecord(r.Context(), &user); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, user)
}

// Update handles PUT /api/v1/users/{email}.
func (h *UserHandler) Update(w http.ResponseWriter, r *http.Request) {
	email := mux.Vars(r)["email"]
	var input service.ProfileInput
	if err := decodeJSON(r, &input); err != nil {
		writeError(w, err)
		return
	}

	user, err := h.userSvc.UpdateProfile(r.Context(), AuthStateFrom(r.Context()), email, input)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, user)
}

type statusChangeRequest struct {
	Status string `json:"status"`
}

// SetStatus handles PATCH /api/v1/users/{email}/status (admin only).
func (h *UserHandler) SetStatus(w http.ResponseWriter, r *http.Request) {
	email := mux.Vars(r)["email"]
	var req statusChangeRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}

	if err := h.userSvc.SetStatus(r.Context(), AuthStateFrom(r.Context()), email, domain.AccountStatus(req.Status)); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusNoContent, nil)
}

type roleChangeRequest struct {
	Role string `json:"role"`
}

// SetRole handles PATCH /api/v1/users/{email}/role (admin only).
func (h *UserHandler) SetRole(w http.ResponseWriter, r *http.Request) {
	email := mux.Vars(r)["email"]
	var req roleChangeRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}

	if err := h.userSvc.SetRole(r.Context(), AuthStateFrom(r.Context()), email, domain.Role(req.Role)); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusNoContent, nil)
}

// SearchDonors handles GET /api/v1/donors/search. Public: donor discovery is
// the point of the platform.
func (h *UserHandler) SearchDonors(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	donors, err := h.userSvc.SearchDonors(r.Context(), q.Get("bloodGroup"), q.Get("district"), q.Get("upazila"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, donors)
}

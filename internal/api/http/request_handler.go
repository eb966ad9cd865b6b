package http

import (
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"bloodbridge-backend/internal/domain"
	"bloodbridge-backend/internal/metrics"
	"bloodbridge-backend/internal/service"
)

// RequestHandler exposes the donation-request lifecycle endpoints.
type RequestHandler struct {
	requestSvc service.RequestService
	collector  *metrics.Collector
}

func NewRequestHandler(requestSvc service.RequestService, collector *metrics.Collector) *RequestHandler {
	return &RequestHandler{requestSvc: requestSvc, collector: collector}
}

// List handles GET /api/v1/donation-requests (admin and volunteer only).
func (h *RequestHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	requests, err := h.requestSvc.ListAll(r.Context(), AuthStateFrom(r.Context()),
		domain.RequestStatus(q.Get("status")), q.Get("search"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, requests)
}

// ListPending handles GET /api/v1/donation-requests/pending, the public
// landing-page sample.
func (h *RequestHandler) ListPending(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	requests, err := h.requestSvc.ListPendingSample(r.Context(), limit)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, requests)
}

// ListByUser handles GET /api/v1/donation-requests/user/{email}.
func (h *RequestHandler) ListByUser(w http.ResponseWriter, r *http.Request) {
	email := mux.Vars(r)["email"]
	requests, err := h.requestSvc.ListByOwner(r.Context(), AuthStateFrom(r.Context()), email)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, requests)
}

// Get handles GET /api/v1/donation-requests/{id}.
func (h *RequestHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, err)
		return
	}

	dr, err := h.requestSvc.Get(r.Context(), AuthStateFrom(r.Context()), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, dr)
}

// Create handles POST /api/v1/donation-requests.
func (h *RequestHandler) Create(w http.ResponseWriter, r *http.Request) {
	var input service.RequestInput
	if err := decodeJSON(r, &input); err != nil {
		writeError(w, err)
		return
	}

	dr, err := h.requestSvc.Create(r.Context(), AuthStateFrom(r.Context()), input)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, dr)
}

// Update handles PUT /api/v1/donation-requests/{id}.
func (h *RequestHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, err)
		return
	}

	var input service.RequestInput
	if err := decodeJSON(r, &input); err != nil {
		writeError(w, err)
		return
	}

	dr, err := h.requestSvc.Edit(r.Context(), AuthStateFrom(r.Context()), id, input)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, dr)
}

// Transition handles PATCH /api/v1/donation-requests/{id}/status. A target of
// inprogress assigns the acting identity as the donor; done and canceled
// resolve an in-progress request.
func (h *RequestHandler) Transition(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, err)
		return
	}

	var req statusChangeRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}

	target := domain.RequestStatus(req.Status)
	var dr *domain.DonationRequest
	switch target {
	case domain.RequestStatusInProgress:
		dr, err = h.requestSvc.Assign(r.Context(), AuthStateFrom(r.Context()), id)
	case domain.RequestStatusDone, domain.RequestStatusCanceled:
		dr, err = h.requestSvc.Resolve(r.Context(), AuthStateFrom(r.Context()), id, target)
	default:
		writeError(w, domain.Validationf("cannot transition to %q", req.Status))
		return
	}

	if h.collector != nil {
		h.collector.RecordTransition(string(target), err == nil)
	}
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, dr)
}

// Delete handles DELETE /api/v1/donation-requests/{id}.
func (h *RequestHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, err)
		return
	}

	if err := h.requestSvc.Delete(r.Context(), AuthStateFrom(r.Context()), id); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusNoContent, nil)
}

func pathID(r *http.Request) (int64, error) {
	raw := mux.Vars(r)["id"]
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, domain.Validationf("invalid request id %q", raw)
	}
	return id, nil
}

package handler

import (
	"errors"
	"log/slog"
	"net/http"
	"net/url"

	"github.com/go-chi/chi/v5"

	"github.com/custadmin/custadmin/internal/console"
	"github.com/custadmin/custadmin/internal/gateway"
	"github.com/custadmin/custadmin/internal/handler/dto"
	"github.com/custadmin/custadmin/internal/model"
	"github.com/custadmin/custadmin/internal/store"
)

// CustomerHandler handles HTTP requests for the customer console.
type CustomerHandler struct {
	console *console.Console
	logger  *slog.Logger
}

// NewCustomerHandler creates a new CustomerHandler.
func NewCustomerHandler(c *console.Console, logger *slog.Logger) *CustomerHandler {
	return &CustomerHandler{
		console: c,
		logger:  logger,
	}
}

// CustomerMutationResponse is returned by actions that change the list.
type CustomerMutationResponse struct {
	Customer dto.CustomerResponse `json:"customer"`
	Revision string               `json:"revision"`
}

// List handles GET /api/v1/customers.
func (h *CustomerHandler) List(w http.ResponseWriter, r *http.Request) {
	snap, err := h.console.List(r.Context())
	if err != nil {
		h.handleError(w, err)
		return
	}

	etag := revisionETag(snap.Revision)
	if etag != "" && r.Header.Get("If-None-Match") == etag {
		w.Header().Set("ETag", etag)
		w.WriteHeader(http.StatusNotModified)
		return
	}
	if etag != "" {
		w.Header().Set("ETag", etag)
	}
	writeJSON(w, http.StatusOK, dto.ToCustomerListResponse(snap))
}

// Refresh handles POST /api/v1/customers/refresh.
func (h *CustomerHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	snap, err := h.console.Load(r.Context())
	if err != nil {
		h.handleError(w, err)
		return
	}
	w.Header().Set("ETag", revisionETag(snap.Revision))
	writeJSON(w, http.StatusOK, dto.ToCustomerListResponse(snap))
}

// Get handles GET /api/v1/customers/{id}.
func (h *CustomerHandler) Get(w http.ResponseWriter, r *http.Request) {
	customer, err := h.console.Profile(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.handleError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, dto.ToCustomerResponse(*customer))
}

// Create handles POST /api/v1/customers.
func (h *CustomerHandler) Create(w http.ResponseWriter, r *http.Request) {
	h.save(w, r, console.ModeAdd, "", http.StatusCreated)
}

// Update handles PUT /api/v1/customers/{id}.
func (h *CustomerHandler) Update(w http.ResponseWriter, r *http.Request) {
	h.save(w, r, console.ModeEdit, chi.URLParam(r, "id"), http.StatusOK)
}

func (h *CustomerHandler) save(w http.ResponseWriter, r *http.Request, mode console.Mode, id string, status int) {
	var req dto.CustomerRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	customer, snap, err := h.console.Save(r.Context(), mode, id, req.ToForm())
	if err != nil {
		h.handleError(w, err)
		return
	}

	w.Header().Set("ETag", revisionETag(snap.Revision))
	writeJSON(w, status, CustomerMutationResponse{
		Customer: dto.ToCustomerResponse(*customer),
		Revision: snap.Revision,
	})
}

// Associations handles PATCH /api/v1/customers/{id}/associations.
func (h *CustomerHandler) Associations(w http.ResponseWriter, r *http.Request) {
	var req dto.AssociationsRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	customer, snap, err := h.console.AttachAssociations(r.Context(), chi.URLParam(r, "id"), req.ToAssociations())
	if err != nil {
		h.handleError(w, err)
		return
	}

	w.Header().Set("ETag", revisionETag(snap.Revision))
	writeJSON(w, http.StatusOK, CustomerMutationResponse{
		Customer: dto.ToCustomerResponse(*customer),
		Revision: snap.Revision,
	})
}

// Delete handles DELETE /api/v1/customers/{id}.
func (h *CustomerHandler) Delete(w http.ResponseWriter, r *http.Request) {
	snap, err := h.console.Delete(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.handleError(w, err)
		return
	}
	w.Header().Set("ETag", revisionETag(snap.Revision))
	w.WriteHeader(http.StatusNoContent)
}

// ChangePassword handles PATCH /api/v1/password.
func (h *CustomerHandler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	var req dto.PasswordRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	if err := h.console.ChangePassword(r.Context(), req.ToPasswordChange()); err != nil {
		h.handleError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleError maps console and gateway errors to HTTP responses.
func (h *CustomerHandler) handleError(w http.ResponseWriter, err error) {
	var (
		verrs     model.ValidationErrors
		statusErr *gateway.StatusError
		urlErr    *url.Error
	)

	switch {
	case errors.As(err, &verrs):
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{
			Error:  "Validation failed",
			Code:   "VALIDATION_FAILED",
			Fields: verrs,
		})
	case errors.Is(err, console.ErrCustomerNotFound):
		writeError(w, http.StatusNotFound, "CUSTOMER_NOT_FOUND", "Customer not found")
	case errors.Is(err, console.ErrMissingID):
		writeError(w, http.StatusBadRequest, "MISSING_ID", "Customer ID is required")
	case errors.Is(err, console.ErrUnknownMode):
		writeError(w, http.StatusBadRequest, "UNKNOWN_MODE", "Unknown dialog mode")
	case errors.Is(err, store.ErrConflict):
		writeError(w, http.StatusConflict, "CONFLICT", "Customer list changed concurrently, retry")
	case errors.As(err, &statusErr):
		h.logger.Warn("upstream_rejected",
			"method", statusErr.Method,
			"path", statusErr.Path,
			"upstream_status", statusErr.StatusCode,
		)
		status, code, msg := http.StatusBadGateway, "UPSTREAM_ERROR", "Users service failed"
		if statusErr.StatusCode >= 400 && statusErr.StatusCode < 500 {
			status, code, msg = statusErr.StatusCode, "UPSTREAM_REJECTED", "Users service rejected the request"
		}
		writeJSON(w, status, dto.ErrorResponse{
			Error:          msg,
			Code:           code,
			UpstreamStatus: statusErr.StatusCode,
		})
	case errors.Is(err, gateway.ErrMissingInfo):
		h.logger.Warn("upstream_malformed", "error", err)
		writeError(w, http.StatusBadGateway, "UPSTREAM_ERROR", "Users service returned no data")
	case errors.As(err, &urlErr):
		h.logger.Warn("upstream_unavailable", "error", err)
		writeError(w, http.StatusBadGateway, "UPSTREAM_UNAVAILABLE", "Users service unavailable")
	default:
		h.logger.Error("internal_error", "error", err)
		writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "An internal error occurred")
	}
}

func revisionETag(revision string) string {
	if revision == "" {
		return ""
	}
	return `"` + revision + `"`
}

// Mount registers the customer console routes on r.
func (h *CustomerHandler) Mount(r chi.Router) {
	r.Route("/customers", func(r chi.Router) {
		r.Get("/", h.List)
		r.Post("/", h.Create)
		r.Post("/refresh", h.Refresh)
		r.Get("/{id}", h.Get)
		r.Put("/{id}", h.Update)
		r.Delete("/{id}", h.Delete)
		r.Patch("/{id}/associations", h.Associations)
	})
	r.Patch("/password", h.ChangePassword)
}

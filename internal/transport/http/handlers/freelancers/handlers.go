package freelancershandler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"flm/internal/domain/audit"
	"flm/internal/domain/auth"
	"flm/internal/domain/freelancer"
	"flm/internal/transport/http/api"
	"flm/internal/transport/http/middleware"
	"flm/internal/transport/http/shared"
)

type Handler struct {
	Service *freelancer.Service
	Audit   *audit.Service
	Perms   middleware.PermissionStore
}

func NewHandler(service *freelancer.Service, auditSvc *audit.Service, perms middleware.PermissionStore) *Handler {
	return &Handler{Service: service, Audit: auditSvc, Perms: perms}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/freelancers", func(r chi.Router) {
		r.With(middleware.RequirePermission(auth.PermFreelancersRead, h.Perms)).Get("/", h.handleList)
		r.With(middleware.RequirePermission(auth.PermFreelancersWrite, h.Perms)).Post("/", h.handleCreate)
		r.Route("/{freelancerID}", func(r chi.Router) {
			r.With(middleware.RequirePermission(auth.PermFreelancersRead, h.Perms)).Get("/", h.handleGet)
			r.With(middleware.RequirePermission(auth.PermFreelancersWrite, h.Perms)).Put("/", h.handleUpdate)
			r.With(middleware.RequirePermission(auth.PermFreelancersWrite, h.Perms)).Post("/status", h.handleSetStatus)
			r.With(middleware.RequirePermission(auth.PermFreelancersRead, h.Perms)).Get("/tier-history", h.handleTierHistory)
		})
	})

	r.With(middleware.RequirePermission(auth.PermPortalSelf, h.Perms)).Get("/portal/profile", h.handlePortalProfile)
	r.With(middleware.RequirePermission(auth.PermPortalSelf, h.Perms)).Get("/portal/tier-history", h.handlePortalTierHistory)
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	page := shared.ParsePagination(r, 50, 200)
	q := r.URL.Query()
	filter := freelancer.ListFilter{
		Status:  strings.ToUpper(strings.TrimSpace(q.Get("status"))),
		Tier:    strings.ToUpper(strings.TrimSpace(q.Get("tier"))),
		Grade:   strings.ToUpper(strings.TrimSpace(q.Get("grade"))),
		Country: q.Get("country"),
		Search:  q.Get("search"),
		SortBy:  q.Get("sortBy"),
		SortDir: q.Get("sortDir"),
		Limit:   page.Limit,
		Offset:  page.Offset,
	}

	items, total, err := h.Service.List(r.Context(), filter)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "list_failed", "failed to list freelancers", middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, map[string]any{"items": items, "total": total}, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	var payload freelancer.Freelancer
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", middleware.GetRequestID(r.Context()))
		return
	}

	v := shared.NewValidator()
	v.Required("firstName", payload.FirstName, "first name is required")
	v.Required("lastName", payload.LastName, "last name is required")
	v.Required("email", payload.Email, "email is required")
	if v.Reject(w, middleware.GetRequestID(r.Context())) {
		return
	}

	created, err := h.Service.Create(r.Context(), payload)
	if err != nil {
		if errors.Is(err, freelancer.ErrDuplicateEmail) {
			api.Fail(w, http.StatusConflict, "duplicate_email", err.Error(), middleware.GetRequestID(r.Context()))
			return
		}
		api.Fail(w, http.StatusInternalServerError, "create_failed", "failed to create freelancer", middleware.GetRequestID(r.Context()))
		return
	}

	h.recordAudit(r, "freelancer.create", created.ID, nil, created)
	api.Created(w, created, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	f, err := h.Service.Get(r.Context(), chi.URLParam(r, "freelancerID"))
	if err != nil {
		api.Fail(w, http.StatusNotFound, "not_found", "freelancer not found", middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, f, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleUpdate(w http.ResponseWriter, r *http.Request) {
	var payload freelancer.Freelancer
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", middleware.GetRequestID(r.Context()))
		return
	}
	payload.ID = chi.URLParam(r, "freelancerID")

	before, _ := h.Service.Get(r.Context(), payload.ID)
	updated, err := h.Service.Update(r.Context(), payload)
	if err != nil {
		switch {
		case errors.Is(err, freelancer.ErrNotFound):
			api.Fail(w, http.StatusNotFound, "not_found", "freelancer not found", middleware.GetRequestID(r.Context()))
		case errors.Is(err, freelancer.ErrDuplicateEmail):
			api.Fail(w, http.StatusConflict, "duplicate_email", err.Error(), middleware.GetRequestID(r.Context()))
		default:
			api.Fail(w, http.StatusInternalServerError, "update_failed", "failed to update freelancer", middleware.GetRequestID(r.Context()))
		}
		return
	}

	h.recordAudit(r, "freelancer.update", updated.ID, before, updated)
	api.Success(w, updated, middleware.GetRequestID(r.Context()))
}

type statusRequest struct {
	Status string `json:"status"`
}

func (h *Handler) handleSetStatus(w http.ResponseWriter, r *http.Request) {
	var payload statusRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", middleware.GetRequestID(r.Context()))
		return
	}

	id := chi.URLParam(r, "freelancerID")
	if err := h.Service.SetStatus(r.Context(), id, strings.ToUpper(strings.TrimSpace(payload.Status))); err != nil {
		switch {
		case errors.Is(err, freelancer.ErrNotFound):
			api.Fail(w, http.StatusNotFound, "not_found", "freelancer not found", middleware.GetRequestID(r.Context()))
		case errors.Is(err, freelancer.ErrInvalidStatus):
			api.Fail(w, http.StatusBadRequest, "invalid_status", err.Error(), middleware.GetRequestID(r.Context()))
		default:
			api.Fail(w, http.StatusInternalServerError, "update_failed", "failed to update status", middleware.GetRequestID(r.Context()))
		}
		return
	}

	h.recordAudit(r, "freelancer.status", id, nil, map[string]string{"status": payload.Status})
	api.Success(w, map[string]string{"status": payload.Status}, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleTierHistory(w http.ResponseWriter, r *http.Request) {
	history, err := h.Service.TierHistory(r.Context(), chi.URLParam(r, "freelancerID"))
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "history_failed", "failed to load tier history", middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, history, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handlePortalProfile(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())
	profile, err := h.Service.GetByUserID(r.Context(), user.UserID)
	if err != nil {
		api.Fail(w, http.StatusNotFound, "not_found", "no roster profile linked to this account", middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, profile, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handlePortalTierHistory(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())
	profile, err := h.Service.GetByUserID(r.Context(), user.UserID)
	if err != nil {
		api.Fail(w, http.StatusNotFound, "not_found", "no roster profile linked to this account", middleware.GetRequestID(r.Context()))
		return
	}
	history, err := h.Service.TierHistory(r.Context(), profile.ID)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "history_failed", "failed to load tier history", middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, history, middleware.GetRequestID(r.Context()))
}

func (h *Handler) recordAudit(r *http.Request, action, entityID string, before, after any) {
	if h.Audit == nil {
		return
	}
	user, _ := middleware.GetUser(r.Context())
	if err := h.Audit.Record(r.Context(), user.UserID, action, "freelancer", entityID, middleware.GetRequestID(r.Context()), r.RemoteAddr, before, after); err != nil {
		slog.Warn("audit record failed", "action", action, "err", err)
	}
}

package applicationshandler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"flm/internal/domain/application"
	"flm/internal/domain/audit"
	"flm/internal/domain/auth"
	"flm/internal/transport/http/api"
	"flm/internal/transport/http/middleware"
	"flm/internal/transport/http/shared"
)

type Handler struct {
	Service     *application.Service
	Audit       *audit.Service
	Perms       middleware.PermissionStore
	AllowPublic bool
}

func NewHandler(service *application.Service, auditSvc *audit.Service, perms middleware.PermissionStore, allowPublic bool) *Handler {
	return &Handler{Service: service, Audit: auditSvc, Perms: perms, AllowPublic: allowPublic}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/applications", func(r chi.Router) {
		r.Post("/apply", h.handleApply)
		r.With(middleware.RequirePermission(auth.PermApplicationsRead, h.Perms)).Get("/", h.handleList)
		r.With(middleware.RequirePermission(auth.PermApplicationsRead, h.Perms)).Get("/stats", h.handleStats)
		r.Route("/{applicationID}", func(r chi.Router) {
			r.With(middleware.RequirePermission(auth.PermApplicationsRead, h.Perms)).Get("/", h.handleGet)
			r.With(middleware.RequirePermission(auth.PermApplicationsWrite, h.Perms)).Post("/review", h.handleReview)
			r.With(middleware.RequirePermission(auth.PermApplicationsWrite, h.Perms)).Post("/accept", h.handleAccept)
		})
	})
}

func (h *Handler) handleApply(w http.ResponseWriter, r *http.Request) {
	if !h.AllowPublic {
		if _, ok := middleware.GetUser(r.Context()); !ok {
			api.Fail(w, http.StatusForbidden, "applications_closed", "applications are not being accepted", middleware.GetRequestID(r.Context()))
			return
		}
	}

	var payload application.Application
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", middleware.GetRequestID(r.Context()))
		return
	}

	v := shared.NewValidator()
	v.Required("firstName", payload.FirstName, "first name is required")
	v.Required("lastName", payload.LastName, "last name is required")
	v.Required("email", payload.Email, "email is required")
	if payload.Email != "" && !strings.Contains(payload.Email, "@") {
		v.Add("email", "must be a valid email address")
	}
	if v.Reject(w, middleware.GetRequestID(r.Context())) {
		return
	}

	created, err := h.Service.Submit(r.Context(), payload)
	if err != nil {
		switch {
		case errors.Is(err, application.ErrDuplicateEmail):
			api.Fail(w, http.StatusConflict, "duplicate_application", err.Error(), middleware.GetRequestID(r.Context()))
		case errors.Is(err, application.ErrMissingRequired):
			api.Fail(w, http.StatusBadRequest, "missing_required", err.Error(), middleware.GetRequestID(r.Context()))
		default:
			api.Fail(w, http.StatusInternalServerError, "apply_failed", "failed to submit application", middleware.GetRequestID(r.Context()))
		}
		return
	}
	api.Created(w, created, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	page := shared.ParsePagination(r, 50, 200)
	filter := application.ListFilter{
		Status:  strings.ToUpper(strings.TrimSpace(r.URL.Query().Get("status"))),
		Country: r.URL.Query().Get("country"),
		Search:  r.URL.Query().Get("search"),
		Limit:   page.Limit,
		Offset:  page.Offset,
	}

	apps, total, err := h.Service.List(r.Context(), filter)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "list_failed", "failed to list applications", middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, map[string]any{"items": apps, "total": total}, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	app, err := h.Service.Get(r.Context(), chi.URLParam(r, "applicationID"))
	if err != nil {
		api.Fail(w, http.StatusNotFound, "not_found", "application not found", middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, app, middleware.GetRequestID(r.Context()))
}

type reviewRequest struct {
	Status string `json:"status"`
	Reason string `json:"reason"`
}

func (h *Handler) handleReview(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())

	var payload reviewRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", middleware.GetRequestID(r.Context()))
		return
	}

	id := chi.URLParam(r, "applicationID")
	before, _ := h.Service.Get(r.Context(), id)
	updated, err := h.Service.Review(r.Context(), id, payload.Status, user.UserID, payload.Reason)
	if err != nil {
		switch {
		case errors.Is(err, application.ErrNotFound):
			api.Fail(w, http.StatusNotFound, "not_found", "application not found", middleware.GetRequestID(r.Context()))
		case errors.Is(err, application.ErrBadTransition), errors.Is(err, application.ErrAlreadyReviewed):
			api.Fail(w, http.StatusConflict, "invalid_transition", err.Error(), middleware.GetRequestID(r.Context()))
		default:
			api.Fail(w, http.StatusBadRequest, "review_failed", err.Error(), middleware.GetRequestID(r.Context()))
		}
		return
	}

	h.recordAudit(r, user.UserID, "application.review", updated.ID, before, updated)
	api.Success(w, updated, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleAccept(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())
	id := chi.URLParam(r, "applicationID")

	result, err := h.Service.Accept(r.Context(), id, user.UserID)
	if err != nil {
		switch {
		case errors.Is(err, application.ErrNotFound):
			api.Fail(w, http.StatusNotFound, "not_found", "application not found", middleware.GetRequestID(r.Context()))
		case errors.Is(err, application.ErrAlreadyReviewed):
			api.Fail(w, http.StatusConflict, "already_reviewed", err.Error(), middleware.GetRequestID(r.Context()))
		case errors.Is(err, application.ErrDuplicateEmail):
			api.Fail(w, http.StatusConflict, "duplicate_email", err.Error(), middleware.GetRequestID(r.Context()))
		default:
			api.Fail(w, http.StatusInternalServerError, "accept_failed", "failed to accept application", middleware.GetRequestID(r.Context()))
		}
		return
	}

	h.recordAudit(r, user.UserID, "application.accept", id, nil, map[string]string{
		"freelancerId": result.FreelancerID,
		"rosterId":     result.RosterID,
	})
	api.Created(w, result, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.Service.Stats(r.Context())
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "stats_failed", "failed to load application stats", middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, stats, middleware.GetRequestID(r.Context()))
}

func (h *Handler) recordAudit(r *http.Request, actorID, action, entityID string, before, after any) {
	if h.Audit == nil {
		return
	}
	if err := h.Audit.Record(r.Context(), actorID, action, "application", entityID, middleware.GetRequestID(r.Context()), r.RemoteAddr, before, after); err != nil {
		slog.Warn("audit record failed", "action", action, "err", err)
	}
}

package projectshandler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"flm/internal/domain/audit"
	"flm/internal/domain/auth"
	"flm/internal/domain/project"
	"flm/internal/transport/http/api"
	"flm/internal/transport/http/middleware"
	"flm/internal/transport/http/shared"
)

type Handler struct {
	Service *project.Service
	Audit   *audit.Service
	Perms   middleware.PermissionStore
}

func NewHandler(service *project.Service, auditSvc *audit.Service, perms middleware.PermissionStore) *Handler {
	return &Handler{Service: service, Audit: auditSvc, Perms: perms}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/projects", func(r chi.Router) {
		r.With(middleware.RequirePermission(auth.PermProjectsRead, h.Perms)).Get("/", h.handleList)
		r.With(middleware.RequirePermission(auth.PermProjectsWrite, h.Perms)).Post("/", h.handleCreate)
		r.Route("/{projectID}", func(r chi.Router) {
			r.With(middleware.RequirePermission(auth.PermProjectsRead, h.Perms)).Get("/", h.handleGet)
			r.With(middleware.RequirePermission(auth.PermProjectsWrite, h.Perms)).Put("/", h.handleUpdate)
			r.With(middleware.RequirePermission(auth.PermProjectsWrite, h.Perms)).Delete("/", h.handleDelete)
			r.With(middleware.RequirePermission(auth.PermProjectsRead, h.Perms)).Get("/assignments", h.handleListAssignments)
			r.With(middleware.RequirePermission(auth.PermProjectsWrite, h.Perms)).Post("/assignments", h.handleAssign)
		})
	})
	r.Route("/assignments", func(r chi.Router) {
		r.With(middleware.RequirePermission(auth.PermProjectsRead, h.Perms)).Get("/", h.handleAssignmentsByFreelancer)
		r.Route("/{assignmentID}", func(r chi.Router) {
			r.With(middleware.RequirePermission(auth.PermProjectsWrite, h.Perms)).Put("/", h.handleUpdateAssignment)
			r.With(middleware.RequirePermission(auth.PermProjectsWrite, h.Perms)).Delete("/", h.handleRemoveAssignment)
		})
	})
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	page := shared.ParsePagination(r, 50, 200)
	filter := project.ListFilter{
		Status: strings.ToUpper(strings.TrimSpace(r.URL.Query().Get("status"))),
		Search: r.URL.Query().Get("search"),
		Limit:  page.Limit,
		Offset: page.Offset,
	}

	items, total, err := h.Service.List(r.Context(), filter)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "list_failed", "failed to list projects", middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, map[string]any{"items": items, "total": total}, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	var payload project.Project
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", middleware.GetRequestID(r.Context()))
		return
	}

	v := shared.NewValidator()
	v.Required("code", payload.Code, "project code is required")
	v.Required("name", payload.Name, "project name is required")
	v.Required("paymentModel", payload.PaymentModel, "payment model is required")
	if v.Reject(w, middleware.GetRequestID(r.Context())) {
		return
	}

	created, err := h.Service.Create(r.Context(), payload)
	if err != nil {
		switch {
		case errors.Is(err, project.ErrDuplicateCode):
			api.Fail(w, http.StatusConflict, "duplicate_code", err.Error(), middleware.GetRequestID(r.Context()))
		case errors.Is(err, project.ErrInvalidModel), errors.Is(err, project.ErrMissingRate):
			api.Fail(w, http.StatusBadRequest, "invalid_rate_card", err.Error(), middleware.GetRequestID(r.Context()))
		default:
			api.Fail(w, http.StatusInternalServerError, "create_failed", "failed to create project", middleware.GetRequestID(r.Context()))
		}
		return
	}

	h.recordAudit(r, "project.create", created.ID, nil, created)
	api.Created(w, created, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	p, err := h.Service.Get(r.Context(), chi.URLParam(r, "projectID"))
	if err != nil {
		api.Fail(w, http.StatusNotFound, "not_found", "project not found", middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, p, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleUpdate(w http.ResponseWriter, r *http.Request) {
	var payload project.Project
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", middleware.GetRequestID(r.Context()))
		return
	}
	payload.ID = chi.URLParam(r, "projectID")

	before, _ := h.Service.Get(r.Context(), payload.ID)
	updated, err := h.Service.Update(r.Context(), payload)
	if err != nil {
		switch {
		case errors.Is(err, project.ErrNotFound):
			api.Fail(w, http.StatusNotFound, "not_found", "project not found", middleware.GetRequestID(r.Context()))
		case errors.Is(err, project.ErrInvalidModel), errors.Is(err, project.ErrMissingRate):
			api.Fail(w, http.StatusBadRequest, "invalid_rate_card", err.Error(), middleware.GetRequestID(r.Context()))
		case errors.Is(err, project.ErrDuplicateCode):
			api.Fail(w, http.StatusConflict, "duplicate_code", err.Error(), middleware.GetRequestID(r.Context()))
		default:
			api.Fail(w, http.StatusInternalServerError, "update_failed", "failed to update project", middleware.GetRequestID(r.Context()))
		}
		return
	}

	h.recordAudit(r, "project.update", updated.ID, before, updated)
	api.Success(w, updated, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleDelete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "projectID")
	if err := h.Service.Delete(r.Context(), id); err != nil {
		if errors.Is(err, project.ErrNotFound) {
			api.Fail(w, http.StatusNotFound, "not_found", "project not found", middleware.GetRequestID(r.Context()))
			return
		}
		api.Fail(w, http.StatusInternalServerError, "delete_failed", "failed to delete project", middleware.GetRequestID(r.Context()))
		return
	}
	h.recordAudit(r, "project.delete", id, nil, nil)
	api.Success(w, map[string]string{"status": "deleted"}, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleListAssignments(w http.ResponseWriter, r *http.Request) {
	assignments, err := h.Service.Assignments(r.Context(), chi.URLParam(r, "projectID"))
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "list_failed", "failed to list assignments", middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, assignments, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleAssign(w http.ResponseWriter, r *http.Request) {
	var payload project.Assignment
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", middleware.GetRequestID(r.Context()))
		return
	}
	payload.ProjectID = chi.URLParam(r, "projectID")

	v := shared.NewValidator()
	v.Required("freelancerId", payload.FreelancerID, "freelancer id is required")
	v.Required("role", payload.Role, "role is required")
	if v.Reject(w, middleware.GetRequestID(r.Context())) {
		return
	}

	created, err := h.Service.Assign(r.Context(), payload)
	if err != nil {
		switch {
		case errors.Is(err, project.ErrNotFound):
			api.Fail(w, http.StatusNotFound, "not_found", "project not found", middleware.GetRequestID(r.Context()))
		case errors.Is(err, project.ErrAlreadyAssigned):
			api.Fail(w, http.StatusConflict, "already_assigned", err.Error(), middleware.GetRequestID(r.Context()))
		case errors.Is(err, project.ErrInvalidRole):
			api.Fail(w, http.StatusBadRequest, "invalid_role", err.Error(), middleware.GetRequestID(r.Context()))
		default:
			api.Fail(w, http.StatusInternalServerError, "assign_failed", "failed to assign freelancer", middleware.GetRequestID(r.Context()))
		}
		return
	}

	h.recordAudit(r, "project.assign", created.ID, nil, created)
	api.Created(w, created, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleAssignmentsByFreelancer(w http.ResponseWriter, r *http.Request) {
	freelancerID := strings.TrimSpace(r.URL.Query().Get("freelancerId"))
	if freelancerID == "" {
		api.Fail(w, http.StatusBadRequest, "missing_filter", "freelancerId query parameter is required", middleware.GetRequestID(r.Context()))
		return
	}
	assignments, err := h.Service.FreelancerAssignments(r.Context(), freelancerID)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "list_failed", "failed to list assignments", middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, assignments, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleUpdateAssignment(w http.ResponseWriter, r *http.Request) {
	var payload project.Assignment
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", middleware.GetRequestID(r.Context()))
		return
	}
	payload.ID = chi.URLParam(r, "assignmentID")

	updated, err := h.Service.UpdateAssignment(r.Context(), payload)
	if err != nil {
		switch {
		case errors.Is(err, project.ErrAssignmentNotFound):
			api.Fail(w, http.StatusNotFound, "not_found", "assignment not found", middleware.GetRequestID(r.Context()))
		case errors.Is(err, project.ErrInvalidRole):
			api.Fail(w, http.StatusBadRequest, "invalid_role", err.Error(), middleware.GetRequestID(r.Context()))
		default:
			api.Fail(w, http.StatusInternalServerError, "update_failed", "failed to update assignment", middleware.GetRequestID(r.Context()))
		}
		return
	}
	h.recordAudit(r, "project.assignment.update", updated.ID, nil, updated)
	api.Success(w, updated, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleRemoveAssignment(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "assignmentID")
	if err := h.Service.RemoveAssignment(r.Context(), id); err != nil {
		if errors.Is(err, project.ErrAssignmentNotFound) {
			api.Fail(w, http.StatusNotFound, "not_found", "assignment not found", middleware.GetRequestID(r.Context()))
			return
		}
		api.Fail(w, http.StatusInternalServerError, "remove_failed", "failed to remove assignment", middleware.GetRequestID(r.Context()))
		return
	}
	h.recordAudit(r, "project.assignment.remove", id, nil, nil)
	api.Success(w, map[string]string{"status": "removed"}, middleware.GetRequestID(r.Context()))
}

func (h *Handler) recordAudit(r *http.Request, action, entityID string, before, after any) {
	if h.Audit == nil {
		return
	}
	user, _ := middleware.GetUser(r.Context())
	if err := h.Audit.Record(r.Context(), user.UserID, action, "project", entityID, middleware.GetRequestID(r.Context()), r.RemoteAddr, before, after); err != nil {
		slog.Warn("audit record failed", "action", action, "err", err)
	}
}

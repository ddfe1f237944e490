package tieringhandler

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"flm/internal/domain/audit"
	"flm/internal/domain/auth"
	"flm/internal/domain/tiering"
	"flm/internal/platform/jobs"
	"flm/internal/transport/http/api"
	"flm/internal/transport/http/middleware"
	"flm/internal/transport/http/shared"
)

type Handler struct {
	Service *tiering.Service
	Jobs    *jobs.Service
	Audit   *audit.Service
	Perms   middleware.PermissionStore
}

func NewHandler(service *tiering.Service, jobsSvc *jobs.Service, auditSvc *audit.Service, perms middleware.PermissionStore) *Handler {
	return &Handler{Service: service, Jobs: jobsSvc, Audit: auditSvc, Perms: perms}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/tiering", func(r chi.Router) {
		r.With(middleware.RequirePermission(auth.PermTieringRead, h.Perms)).Get("/calculate/{freelancerID}", h.handleCalculate)
		r.With(middleware.RequirePermission(auth.PermTieringApply, h.Perms)).Post("/apply/{freelancerID}", h.handleApply)
		r.With(middleware.RequirePermission(auth.PermTieringApply, h.Perms)).Post("/calculate-all", h.handleCalculateAll)
		r.With(middleware.RequirePermission(auth.PermTieringRead, h.Perms)).Get("/stats", h.handleStats)
		r.With(middleware.RequirePermission(auth.PermTieringRead, h.Perms)).Get("/runs", h.handleRuns)
	})
}

func (h *Handler) handleCalculate(w http.ResponseWriter, r *http.Request) {
	period := r.URL.Query().Get("period")
	calc, err := h.Service.Calculate(r.Context(), chi.URLParam(r, "freelancerID"), period)
	if err != nil {
		switch {
		case errors.Is(err, tiering.ErrNotFound):
			api.Fail(w, http.StatusNotFound, "not_found", "freelancer not found", middleware.GetRequestID(r.Context()))
		case errors.Is(err, tiering.ErrNoData):
			api.Fail(w, http.StatusUnprocessableEntity, "no_data", err.Error(), middleware.GetRequestID(r.Context()))
		case errors.Is(err, tiering.ErrUnknownPeriod):
			api.Fail(w, http.StatusBadRequest, "invalid_period", err.Error(), middleware.GetRequestID(r.Context()))
		default:
			api.Fail(w, http.StatusInternalServerError, "calculate_failed", "failed to calculate classification", middleware.GetRequestID(r.Context()))
		}
		return
	}
	api.Success(w, calc, middleware.GetRequestID(r.Context()))
}

type applyRequest struct {
	Tier   string `json:"tier"`
	Grade  string `json:"grade"`
	Reason string `json:"reason"`
}

func (h *Handler) handleApply(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())

	var payload applyRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", middleware.GetRequestID(r.Context()))
		return
	}

	freelancerID := chi.URLParam(r, "freelancerID")
	tier := strings.ToUpper(strings.TrimSpace(payload.Tier))
	grade := strings.ToUpper(strings.TrimSpace(payload.Grade))
	if err := h.Service.Apply(r.Context(), freelancerID, tier, grade, payload.Reason, user.UserID); err != nil {
		switch {
		case errors.Is(err, tiering.ErrNotFound):
			api.Fail(w, http.StatusNotFound, "not_found", "freelancer not found", middleware.GetRequestID(r.Context()))
		case errors.Is(err, tiering.ErrInvalidTierGrade):
			api.Fail(w, http.StatusBadRequest, "invalid_tier_grade", err.Error(), middleware.GetRequestID(r.Context()))
		default:
			api.Fail(w, http.StatusInternalServerError, "apply_failed", "failed to apply classification", middleware.GetRequestID(r.Context()))
		}
		return
	}

	if h.Audit != nil {
		if err := h.Audit.Record(r.Context(), user.UserID, "tiering.apply", "freelancer", freelancerID, middleware.GetRequestID(r.Context()), r.RemoteAddr, nil, map[string]string{
			"tier":  tier,
			"grade": grade,
		}); err != nil {
			slog.Warn("audit record failed", "action", "tiering.apply", "err", err)
		}
	}

	api.Success(w, map[string]string{"tier": tier, "grade": grade}, middleware.GetRequestID(r.Context()))
}

type calculateAllRequest struct {
	Period    string `json:"period"`
	AutoApply bool   `json:"autoApply"`
	Async     bool   `json:"async"`
}

func (h *Handler) handleCalculateAll(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())

	var payload calculateAllRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", middleware.GetRequestID(r.Context()))
		return
	}

	if payload.Async && h.Jobs != nil {
		actor := user.UserID
		period := payload.Period
		autoApply := payload.AutoApply
		h.Jobs.Enqueue(jobs.JobBulkTiering, func(ctx context.Context) (any, error) {
			return h.Service.CalculateAll(ctx, period, autoApply, actor)
		})
		api.WriteJSON(w, http.StatusAccepted, api.Envelope{
			Success:   true,
			Data:      map[string]string{"status": "queued"},
			RequestID: middleware.GetRequestID(r.Context()),
		})
		return
	}

	result, err := h.Service.CalculateAll(r.Context(), payload.Period, payload.AutoApply, user.UserID)
	if err != nil {
		if errors.Is(err, tiering.ErrUnknownPeriod) {
			api.Fail(w, http.StatusBadRequest, "invalid_period", err.Error(), middleware.GetRequestID(r.Context()))
			return
		}
		api.Fail(w, http.StatusInternalServerError, "bulk_failed", "bulk classification failed", middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, result, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.Service.Stats(r.Context())
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "stats_failed", "failed to load tier stats", middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, stats, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleRuns(w http.ResponseWriter, r *http.Request) {
	if h.Jobs == nil {
		api.Success(w, []any{}, middleware.GetRequestID(r.Context()))
		return
	}
	page := shared.ParsePagination(r, 20, 100)
	runs, err := h.Jobs.ListRuns(r.Context(), jobs.JobBulkTiering, page.Limit, page.Offset)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "runs_failed", "failed to list job runs", middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, runs, middleware.GetRequestID(r.Context()))
}

package performancehandler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"flm/internal/domain/auth"
	"flm/internal/domain/freelancer"
	"flm/internal/domain/performance"
	"flm/internal/transport/http/api"
	"flm/internal/transport/http/middleware"
	"flm/internal/transport/http/shared"
)

type Handler struct {
	Service     *performance.Service
	Freelancers *freelancer.Service
	Perms       middleware.PermissionStore
}

func NewHandler(service *performance.Service, freelancers *freelancer.Service, perms middleware.PermissionStore) *Handler {
	return &Handler{Service: service, Freelancers: freelancers, Perms: perms}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/performance", func(r chi.Router) {
		r.Route("/records", func(r chi.Router) {
			r.With(middleware.RequirePermission(auth.PermPerformanceRead, h.Perms)).Get("/", h.handleList)
			r.With(middleware.RequirePermission(auth.PermPerformanceWrite, h.Perms)).Post("/", h.handleCreate)
			r.With(middleware.RequirePermission(auth.PermPerformanceWrite, h.Perms)).Post("/bulk", h.handleBulkCreate)
			r.Route("/{recordID}", func(r chi.Router) {
				r.With(middleware.RequirePermission(auth.PermPerformanceRead, h.Perms)).Get("/", h.handleGet)
				r.With(middleware.RequirePermission(auth.PermPerformanceWrite, h.Perms)).Put("/", h.handleUpdate)
				r.With(middleware.RequirePermission(auth.PermPerformanceWrite, h.Perms)).Delete("/", h.handleDelete)
			})
		})
		r.With(middleware.RequirePermission(auth.PermPerformanceRead, h.Perms)).Get("/freelancers/{freelancerID}/stats", h.handleFreelancerStats)
	})

	r.With(middleware.RequirePermission(auth.PermPortalSelf, h.Perms)).Get("/portal/performance", h.handlePortalRecords)
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	filter, ok := h.parseFilter(w, r)
	if !ok {
		return
	}

	records, total, err := h.Service.List(r.Context(), filter)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "list_failed", "failed to list performance records", middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, map[string]any{"items": records, "total": total}, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())

	var payload performance.Record
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", middleware.GetRequestID(r.Context()))
		return
	}
	payload.RecordedBy = user.UserID

	created, err := h.Service.Create(r.Context(), payload)
	if err != nil {
		h.failFromDomain(w, r, err, "create_failed", "failed to create performance record")
		return
	}
	api.Created(w, created, middleware.GetRequestID(r.Context()))
}

// handleBulkCreate imports a batch of rows; rows are independent, so one
// bad row is reported and skipped instead of aborting the batch.
func (h *Handler) handleBulkCreate(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())

	var payload struct {
		Records []performance.Record `json:"records"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", middleware.GetRequestID(r.Context()))
		return
	}
	if len(payload.Records) == 0 {
		api.Fail(w, http.StatusBadRequest, "empty_batch", "records array is empty", middleware.GetRequestID(r.Context()))
		return
	}

	type rowResult struct {
		Index int    `json:"index"`
		ID    string `json:"id,omitempty"`
		Error string `json:"error,omitempty"`
	}
	results := make([]rowResult, 0, len(payload.Records))
	imported := 0
	for i, record := range payload.Records {
		record.RecordedBy = user.UserID
		created, err := h.Service.Create(r.Context(), record)
		if err != nil {
			results = append(results, rowResult{Index: i, Error: err.Error()})
			continue
		}
		imported++
		results = append(results, rowResult{Index: i, ID: created.ID})
	}

	api.Success(w, map[string]any{
		"imported": imported,
		"failed":   len(payload.Records) - imported,
		"rows":     results,
	}, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	record, err := h.Service.Get(r.Context(), chi.URLParam(r, "recordID"))
	if err != nil {
		api.Fail(w, http.StatusNotFound, "not_found", "performance record not found", middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, record, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleUpdate(w http.ResponseWriter, r *http.Request) {
	var payload performance.Record
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", middleware.GetRequestID(r.Context()))
		return
	}
	payload.ID = chi.URLParam(r, "recordID")

	updated, err := h.Service.Update(r.Context(), payload)
	if err != nil {
		h.failFromDomain(w, r, err, "update_failed", "failed to update performance record")
		return
	}
	api.Success(w, updated, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleDelete(w http.ResponseWriter, r *http.Request) {
	if err := h.Service.Delete(r.Context(), chi.URLParam(r, "recordID")); err != nil {
		if errors.Is(err, performance.ErrNotFound) {
			api.Fail(w, http.StatusNotFound, "not_found", "performance record not found", middleware.GetRequestID(r.Context()))
			return
		}
		api.Fail(w, http.StatusInternalServerError, "delete_failed", "failed to delete performance record", middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, map[string]string{"status": "deleted"}, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleFreelancerStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.Service.FreelancerStats(r.Context(), chi.URLParam(r, "freelancerID"))
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "stats_failed", "failed to load performance stats", middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, stats, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handlePortalRecords(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())
	profile, err := h.Freelancers.GetByUserID(r.Context(), user.UserID)
	if err != nil {
		api.Fail(w, http.StatusNotFound, "not_found", "no roster profile linked to this account", middleware.GetRequestID(r.Context()))
		return
	}

	page := shared.ParsePagination(r, 50, 200)
	records, total, err := h.Service.List(r.Context(), performance.ListFilter{
		FreelancerID: profile.ID,
		Limit:        page.Limit,
		Offset:       page.Offset,
	})
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "list_failed", "failed to list performance records", middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, map[string]any{"items": records, "total": total}, middleware.GetRequestID(r.Context()))
}

func (h *Handler) parseFilter(w http.ResponseWriter, r *http.Request) (performance.ListFilter, bool) {
	page := shared.ParsePagination(r, 50, 200)
	q := r.URL.Query()
	filter := performance.ListFilter{
		FreelancerID: q.Get("freelancerId"),
		ProjectID:    q.Get("projectId"),
		RecordType:   strings.ToUpper(strings.TrimSpace(q.Get("recordType"))),
		Limit:        page.Limit,
		Offset:       page.Offset,
	}

	v := shared.NewValidator()
	if raw := q.Get("from"); raw != "" {
		if from, ok := v.Date("from", raw); ok {
			filter.From = &from
		}
	}
	if raw := q.Get("to"); raw != "" {
		if to, ok := v.Date("to", raw); ok {
			filter.To = &to
		}
	}
	if v.Reject(w, middleware.GetRequestID(r.Context())) {
		return performance.ListFilter{}, false
	}
	return filter, true
}

func (h *Handler) failFromDomain(w http.ResponseWriter, r *http.Request, err error, code, fallback string) {
	switch {
	case errors.Is(err, performance.ErrNotFound):
		api.Fail(w, http.StatusNotFound, "not_found", "performance record not found", middleware.GetRequestID(r.Context()))
	case errors.Is(err, performance.ErrInvalidScore),
		errors.Is(err, performance.ErrInvalidType),
		errors.Is(err, performance.ErrMissingRequired):
		api.Fail(w, http.StatusBadRequest, "invalid_record", err.Error(), middleware.GetRequestID(r.Context()))
	default:
		api.Fail(w, http.StatusInternalServerError, code, fallback, middleware.GetRequestID(r.Context()))
	}
}

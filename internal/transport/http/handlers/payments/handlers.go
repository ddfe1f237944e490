package paymentshandler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"flm/internal/domain/audit"
	"flm/internal/domain/auth"
	"flm/internal/domain/freelancer"
	"flm/internal/domain/payment"
	"flm/internal/transport/http/api"
	"flm/internal/transport/http/middleware"
	"flm/internal/transport/http/shared"
)

type Handler struct {
	Service     *payment.Service
	Freelancers *freelancer.Service
	Audit       *audit.Service
	Perms       middleware.PermissionStore
}

func NewHandler(service *payment.Service, freelancers *freelancer.Service, auditSvc *audit.Service, perms middleware.PermissionStore) *Handler {
	return &Handler{Service: service, Freelancers: freelancers, Audit: auditSvc, Perms: perms}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/payments", func(r chi.Router) {
		r.With(middleware.RequirePermission(auth.PermPaymentsWrite, h.Perms)).Post("/calculate", h.handleCalculate)
		r.With(middleware.RequirePermission(auth.PermPaymentsWrite, h.Perms)).Post("/", h.handleCreate)
		r.With(middleware.RequirePermission(auth.PermPaymentsRead, h.Perms)).Get("/", h.handleList)
		r.With(middleware.RequirePermission(auth.PermPaymentsRead, h.Perms)).Get("/stats", h.handleStats)
		r.With(middleware.RequirePermission(auth.PermPaymentsRead, h.Perms)).Get("/export", h.handleExportCSV)
		r.Route("/{paymentID}", func(r chi.Router) {
			r.With(middleware.RequirePermission(auth.PermPaymentsRead, h.Perms)).Get("/", h.handleGet)
			r.With(middleware.RequirePermission(auth.PermPaymentsApprove, h.Perms)).Patch("/status", h.handleUpdateStatus)
			r.With(middleware.RequirePermission(auth.PermPaymentsWrite, h.Perms)).Delete("/", h.handleDelete)
			r.With(middleware.RequirePermission(auth.PermPaymentsRead, h.Perms)).Get("/statement", h.handleStatement)
		})
	})

	r.With(middleware.RequirePermission(auth.PermPortalSelf, h.Perms)).Get("/portal/payments", h.handlePortalPayments)
}

type calculateRequest struct {
	FreelancerID string `json:"freelancerId"`
	PeriodStart  string `json:"periodStart"`
	PeriodEnd    string `json:"periodEnd"`
}

func (h *Handler) handleCalculate(w http.ResponseWriter, r *http.Request) {
	var payload calculateRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", middleware.GetRequestID(r.Context()))
		return
	}

	v := shared.NewValidator()
	v.Required("freelancerId", payload.FreelancerID, "freelancer id is required")
	start, _ := v.Date("periodStart", payload.PeriodStart)
	end, _ := v.Date("periodEnd", payload.PeriodEnd)
	if v.Reject(w, middleware.GetRequestID(r.Context())) {
		return
	}

	calc, err := h.Service.Calculate(r.Context(), payload.FreelancerID, start, end)
	if err != nil {
		if errors.Is(err, payment.ErrInvalidRange) {
			api.Fail(w, http.StatusBadRequest, "invalid_range", err.Error(), middleware.GetRequestID(r.Context()))
			return
		}
		api.Fail(w, http.StatusInternalServerError, "calculate_failed", "failed to calculate payment", middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, calc, middleware.GetRequestID(r.Context()))
}

type createRequest struct {
	FreelancerID string             `json:"freelancerId"`
	Year         int                `json:"year"`
	Month        int                `json:"month"`
	PeriodStart  string             `json:"periodStart"`
	PeriodEnd    string             `json:"periodEnd"`
	LineItems    []payment.LineItem `json:"lineItems"`
	TotalAmount  float64            `json:"totalAmount"`
	Notes        string             `json:"notes"`
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())

	var payload createRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", middleware.GetRequestID(r.Context()))
		return
	}

	v := shared.NewValidator()
	v.Required("freelancerId", payload.FreelancerID, "freelancer id is required")
	if len(payload.LineItems) == 0 {
		v.Add("lineItems", "at least one line item is required")
	}
	start, startOK := v.Date("periodStart", payload.PeriodStart)
	end, endOK := v.Date("periodEnd", payload.PeriodEnd)
	if startOK && endOK && end.Before(start) {
		v.Add("periodEnd", "must be on or after periodStart")
	}
	if v.Reject(w, middleware.GetRequestID(r.Context())) {
		return
	}

	created, err := h.Service.Create(r.Context(), payment.CreateInput{
		FreelancerID: payload.FreelancerID,
		Year:         payload.Year,
		Month:        payload.Month,
		PeriodStart:  start,
		PeriodEnd:    end,
		LineItems:    payload.LineItems,
		TotalAmount:  payload.TotalAmount,
		Notes:        payload.Notes,
		CreatedBy:    user.UserID,
	})
	if err != nil {
		switch {
		case errors.Is(err, payment.ErrInvalidRange):
			api.Fail(w, http.StatusBadRequest, "invalid_range", err.Error(), middleware.GetRequestID(r.Context()))
		case errors.Is(err, payment.ErrTotalMismatch):
			api.Fail(w, http.StatusUnprocessableEntity, "total_mismatch", err.Error(), middleware.GetRequestID(r.Context()))
		case errors.Is(err, payment.ErrDuplicatePeriod):
			api.Fail(w, http.StatusConflict, "duplicate_period", err.Error(), middleware.GetRequestID(r.Context()))
		default:
			api.Fail(w, http.StatusInternalServerError, "create_failed", "failed to create payment", middleware.GetRequestID(r.Context()))
		}
		return
	}

	h.recordAudit(r, "payment.create", created.ID, nil, created)
	api.Created(w, created, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	filter := h.parseFilter(r)
	payments, total, err := h.Service.List(r.Context(), filter)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "list_failed", "failed to list payments", middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, map[string]any{"items": payments, "total": total}, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	p, err := h.Service.Get(r.Context(), chi.URLParam(r, "paymentID"))
	if err != nil {
		api.Fail(w, http.StatusNotFound, "not_found", "payment not found", middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, p, middleware.GetRequestID(r.Context()))
}

type statusRequest struct {
	Status          string `json:"status"`
	PaymentMethod   string `json:"paymentMethod"`
	ReferenceNumber string `json:"referenceNumber"`
	PaidAt          string `json:"paidAt"`
}

func (h *Handler) handleUpdateStatus(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())

	var payload statusRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", middleware.GetRequestID(r.Context()))
		return
	}

	upd := payment.StatusUpdate{
		NewStatus:       strings.ToUpper(strings.TrimSpace(payload.Status)),
		PaymentMethod:   payload.PaymentMethod,
		ReferenceNumber: payload.ReferenceNumber,
		ActorID:         user.UserID,
	}
	if payload.PaidAt != "" {
		paidAt, err := shared.ParseDate(payload.PaidAt)
		if err != nil {
			api.Fail(w, http.StatusBadRequest, "invalid_payload", "paidAt must be a valid date", middleware.GetRequestID(r.Context()))
			return
		}
		upd.PaidAt = &paidAt
	} else if upd.NewStatus == payment.StatusPaid {
		now := time.Now().UTC()
		upd.PaidAt = &now
	}

	id := chi.URLParam(r, "paymentID")
	updated, err := h.Service.UpdateStatus(r.Context(), id, upd)
	if err != nil {
		switch {
		case errors.Is(err, payment.ErrNotFound):
			api.Fail(w, http.StatusNotFound, "not_found", "payment not found", middleware.GetRequestID(r.Context()))
		case errors.Is(err, payment.ErrInvalidTransition):
			api.Fail(w, http.StatusConflict, "invalid_transition", err.Error(), middleware.GetRequestID(r.Context()))
		default:
			api.Fail(w, http.StatusInternalServerError, "status_failed", "failed to update payment status", middleware.GetRequestID(r.Context()))
		}
		return
	}

	h.recordAudit(r, "payment.status", id, nil, map[string]string{"status": upd.NewStatus})
	api.Success(w, updated, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleDelete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "paymentID")
	if err := h.Service.Delete(r.Context(), id); err != nil {
		switch {
		case errors.Is(err, payment.ErrNotFound):
			api.Fail(w, http.StatusNotFound, "not_found", "payment not found", middleware.GetRequestID(r.Context()))
		case errors.Is(err, payment.ErrPaidImmutable):
			api.Fail(w, http.StatusConflict, "paid_immutable", err.Error(), middleware.GetRequestID(r.Context()))
		default:
			api.Fail(w, http.StatusInternalServerError, "delete_failed", "failed to delete payment", middleware.GetRequestID(r.Context()))
		}
		return
	}
	h.recordAudit(r, "payment.delete", id, nil, nil)
	api.Success(w, map[string]string{"status": "deleted"}, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleStats(w http.ResponseWriter, r *http.Request) {
	year, _ := strconv.Atoi(r.URL.Query().Get("year"))
	stats, err := h.Service.Stats(r.Context(), year)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "stats_failed", "failed to load payment stats", middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, stats, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleExportCSV(w http.ResponseWriter, r *http.Request) {
	data, err := h.Service.ExportCSV(r.Context(), h.parseFilter(r))
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "export_failed", "failed to export payments", middleware.GetRequestID(r.Context()))
		return
	}
	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", `attachment; filename="payments.csv"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

func (h *Handler) handleStatement(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "paymentID")
	data, err := h.Service.Statement(r.Context(), id)
	if err != nil {
		if errors.Is(err, payment.ErrNotFound) {
			api.Fail(w, http.StatusNotFound, "not_found", "payment not found", middleware.GetRequestID(r.Context()))
			return
		}
		api.Fail(w, http.StatusInternalServerError, "statement_failed", "failed to render statement", middleware.GetRequestID(r.Context()))
		return
	}
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", `attachment; filename="statement-`+id+`.pdf"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

func (h *Handler) handlePortalPayments(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())
	profile, err := h.Freelancers.GetByUserID(r.Context(), user.UserID)
	if err != nil {
		api.Fail(w, http.StatusNotFound, "not_found", "no roster profile linked to this account", middleware.GetRequestID(r.Context()))
		return
	}

	page := shared.ParsePagination(r, 50, 200)
	payments, total, err := h.Service.List(r.Context(), payment.ListFilter{
		FreelancerID: profile.ID,
		Limit:        page.Limit,
		Offset:       page.Offset,
	})
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "list_failed", "failed to list payments", middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, map[string]any{"items": payments, "total": total}, middleware.GetRequestID(r.Context()))
}

func (h *Handler) parseFilter(r *http.Request) payment.ListFilter {
	page := shared.ParsePagination(r, 50, 200)
	q := r.URL.Query()
	year, _ := strconv.Atoi(q.Get("year"))
	month, _ := strconv.Atoi(q.Get("month"))
	return payment.ListFilter{
		FreelancerID: q.Get("freelancerId"),
		Status:       strings.ToUpper(strings.TrimSpace(q.Get("status"))),
		Year:         year,
		Month:        month,
		Limit:        page.Limit,
		Offset:       page.Offset,
	}
}

func (h *Handler) recordAudit(r *http.Request, action, entityID string, before, after any) {
	if h.Audit == nil {
		return
	}
	user, _ := middleware.GetUser(r.Context())
	if err := h.Audit.Record(r.Context(), user.UserID, action, "payment", entityID, middleware.GetRequestID(r.Context()), r.RemoteAddr, before, after); err != nil {
		slog.Warn("audit record failed", "action", action, "err", err)
	}
}

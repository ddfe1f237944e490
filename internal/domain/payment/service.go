package payment

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/jung-kurt/gofpdf"

	"flm/internal/domain/settings"
)

type Service struct {
	store StoreAPI
	cfg   ConfigAPI
}

// ConfigAPI exposes the system settings the payment engine reads.
type ConfigAPI interface {
	Value(ctx context.Context, key string) (string, error)
}

func NewService(store StoreAPI, cfg ConfigAPI) *Service {
	return &Service{store: store, cfg: cfg}
}

// Calculate runs the payment engine for one freelancer over an arbitrary
// period without persisting anything. The billing month and year come
// from the period start. Work records that cannot be billed come back as
// gaps so the admin can fix the data before creating the payment.
func (s *Service) Calculate(ctx context.Context, freelancerID string, periodStart, periodEnd time.Time) (Calculation, error) {
	if periodStart.IsZero() || periodEnd.IsZero() || periodEnd.Before(periodStart) {
		return Calculation{}, ErrInvalidRange
	}

	records, err := s.store.WorkRecords(ctx, freelancerID, periodStart, periodEnd)
	if err != nil {
		return Calculation{}, err
	}

	projectIDs := make([]string, 0, len(records))
	seen := map[string]bool{}
	for _, r := range records {
		if !seen[r.ProjectID] {
			seen[r.ProjectID] = true
			projectIDs = append(projectIDs, r.ProjectID)
		}
	}

	projects, err := s.store.ProjectRatesByID(ctx, projectIDs)
	if err != nil {
		return Calculation{}, err
	}
	roles, err := s.store.AssignmentRoles(ctx, freelancerID, projectIDs, periodStart, periodEnd)
	if err != nil {
		return Calculation{}, err
	}

	items, gaps := BuildLineItems(records, projects, roles)
	total, hours, assets, objects := Summarize(items)

	if len(gaps) > 0 {
		slog.Warn("payment calculation has unbillable records",
			"freelancerId", freelancerID,
			"periodStart", periodStart.Format("2006-01-02"),
			"periodEnd", periodEnd.Format("2006-01-02"),
			"gaps", len(gaps))
	}

	return Calculation{
		FreelancerID:     freelancerID,
		Month:            int(periodStart.Month()),
		Year:             periodStart.Year(),
		PeriodStart:      periodStart,
		PeriodEnd:        periodEnd,
		LineItems:        items,
		Gaps:             gaps,
		TotalAmount:      total,
		HoursWorked:      hours,
		AssetsCompleted:  assets,
		ObjectsAnnotated: objects,
	}, nil
}

// Create persists a calculation as a PENDING payment. The declared total
// is re-checked against the line item sum because items may have been
// edited between calculation and submission.
func (s *Service) Create(ctx context.Context, in CreateInput) (Payment, error) {
	if in.Month < 1 || in.Month > 12 || in.Year < 2000 {
		return Payment{}, ErrInvalidRange
	}
	if in.PeriodEnd.Before(in.PeriodStart) {
		return Payment{}, ErrInvalidRange
	}

	total, hours, assets, objects := Summarize(in.LineItems)
	if math.Abs(total-in.TotalAmount) > 0.005 {
		return Payment{}, fmt.Errorf("%w: declared %.2f, items sum to %.2f", ErrTotalMismatch, in.TotalAmount, total)
	}
	in.TotalAmount = total

	currency := "USD"
	if v, err := s.cfg.Value(ctx, settings.KeyCurrency); err == nil && v != "" {
		currency = v
	}

	totals := Calculation{HoursWorked: hours, AssetsCompleted: assets, ObjectsAnnotated: objects}
	p, err := s.store.Insert(ctx, in, totals, currency)
	if err != nil {
		return Payment{}, err
	}
	slog.Info("payment created", "paymentId", p.ID, "freelancerId", p.FreelancerID,
		"period", fmt.Sprintf("%d-%02d", p.Year, p.Month), "total", p.TotalAmount)
	return p, nil
}

func (s *Service) Get(ctx context.Context, id string) (Payment, error) {
	return s.store.Get(ctx, id)
}

func (s *Service) List(ctx context.Context, f ListFilter) ([]Payment, int, error) {
	return s.store.List(ctx, f)
}

func (s *Service) UpdateStatus(ctx context.Context, id string, upd StatusUpdate) (Payment, error) {
	if !ValidStatus(upd.NewStatus) {
		return Payment{}, fmt.Errorf("%w: unknown status %q", ErrInvalidTransition, upd.NewStatus)
	}
	p, err := s.store.UpdateStatus(ctx, id, upd)
	if err != nil {
		return Payment{}, err
	}
	slog.Info("payment status changed", "paymentId", id, "status", upd.NewStatus, "actor", upd.ActorID)
	return p, nil
}

func (s *Service) Delete(ctx context.Context, id string) error {
	return s.store.Delete(ctx, id)
}

func (s *Service) Stats(ctx context.Context, year int) (Stats, error) {
	return s.store.Stats(ctx, year)
}

// ExportCSV renders the current payment listing as CSV for finance
// hand-off.
func (s *Service) ExportCSV(ctx context.Context, f ListFilter) ([]byte, error) {
	f.Limit = 10000
	f.Offset = 0
	payments, _, err := s.store.List(ctx, f)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	_ = w.Write([]string{"Freelancer", "Year", "Month", "Status", "Currency", "Total"})
	for _, p := range payments {
		_ = w.Write([]string{
			p.FreelancerName,
			fmt.Sprintf("%d", p.Year),
			fmt.Sprintf("%d", p.Month),
			p.Status,
			p.Currency,
			fmt.Sprintf("%.2f", p.TotalAmount),
		})
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("write csv: %w", err)
	}
	return buf.Bytes(), nil
}

// Statement renders a single payment as a PDF statement for the
// freelancer.
func (s *Service) Statement(ctx context.Context, id string) ([]byte, error) {
	p, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetTitle("Payment Statement", false)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 16)
	pdf.Cell(0, 10, "Payment Statement")
	pdf.Ln(12)

	pdf.SetFont("Helvetica", "", 11)
	pdf.Cell(0, 6, fmt.Sprintf("Freelancer: %s", p.FreelancerName))
	pdf.Ln(6)
	pdf.Cell(0, 6, fmt.Sprintf("Period: %s - %s",
		p.PeriodStart.Format("2006-01-02"), p.PeriodEnd.Format("2006-01-02")))
	pdf.Ln(6)
	pdf.Cell(0, 6, fmt.Sprintf("Status: %s", p.Status))
	pdf.Ln(10)

	pdf.SetFont("Helvetica", "B", 10)
	pdf.CellFormat(70, 7, "Description", "1", 0, "L", false, 0, "")
	pdf.CellFormat(30, 7, "Date", "1", 0, "L", false, 0, "")
	pdf.CellFormat(25, 7, "Quantity", "1", 0, "R", false, 0, "")
	pdf.CellFormat(25, 7, "Rate", "1", 0, "R", false, 0, "")
	pdf.CellFormat(30, 7, "Amount", "1", 1, "R", false, 0, "")

	pdf.SetFont("Helvetica", "", 10)
	for _, it := range p.LineItems {
		pdf.CellFormat(70, 7, it.Description, "1", 0, "L", false, 0, "")
		pdf.CellFormat(30, 7, it.WorkDate.Format("2006-01-02"), "1", 0, "L", false, 0, "")
		pdf.CellFormat(25, 7, fmt.Sprintf("%.2f", it.Quantity), "1", 0, "R", false, 0, "")
		pdf.CellFormat(25, 7, fmt.Sprintf("%.2f", it.Rate), "1", 0, "R", false, 0, "")
		pdf.CellFormat(30, 7, fmt.Sprintf("%.2f", it.Amount), "1", 1, "R", false, 0, "")
	}

	pdf.SetFont("Helvetica", "B", 11)
	pdf.CellFormat(150, 8, "Total", "1", 0, "R", false, 0, "")
	pdf.CellFormat(30, 8, fmt.Sprintf("%s %.2f", p.Currency, p.TotalAmount), "1", 1, "R", false, 0, "")

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("render statement pdf: %w", err)
	}
	return buf.Bytes(), nil
}

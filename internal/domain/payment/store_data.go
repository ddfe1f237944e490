package payment

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Store struct {
	DB *pgxpool.Pool
}

func NewStore(db *pgxpool.Pool) *Store {
	return &Store{DB: db}
}

func (s *Store) WorkRecords(ctx context.Context, freelancerID string, from, to time.Time) ([]WorkRecord, error) {
	rows, err := s.DB.Query(ctx, `
		SELECT id, COALESCE(project_id::text, ''), record_date, hours_worked, assets_completed, tasks_completed
		FROM performance_records
		WHERE freelancer_id = $1 AND record_date >= $2 AND record_date <= $3
		ORDER BY record_date`,
		freelancerID, from, to)
	if err != nil {
		return nil, fmt.Errorf("query work records: %w", err)
	}
	defer rows.Close()

	var recs []WorkRecord
	for rows.Next() {
		var r WorkRecord
		if err := rows.Scan(&r.ID, &r.ProjectID, &r.WorkDate, &r.HoursWorked, &r.AssetsCompleted, &r.ObjectsAnnotated); err != nil {
			return nil, fmt.Errorf("scan work record: %w", err)
		}
		recs = append(recs, r)
	}
	return recs, rows.Err()
}

func (s *Store) ProjectRatesByID(ctx context.Context, ids []string) (map[string]ProjectRates, error) {
	out := make(map[string]ProjectRates, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	rows, err := s.DB.Query(ctx, `
		SELECT id, name, payment_model,
		       hourly_rate_annotation, hourly_rate_review,
		       per_asset_rate_annotation, per_asset_rate_review,
		       per_object_rate_annotation, per_object_rate_review
		FROM projects
		WHERE id = ANY($1)`, ids)
	if err != nil {
		return nil, fmt.Errorf("query project rates: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var p ProjectRates
		if err := rows.Scan(&p.ID, &p.Name, &p.Model,
			&p.HourlyRateAnnotation, &p.HourlyRateReview,
			&p.PerAssetRateAnnotation, &p.PerAssetRateReview,
			&p.PerObjectRateAnnotation, &p.PerObjectRateReview); err != nil {
			return nil, fmt.Errorf("scan project rates: %w", err)
		}
		out[p.ID] = p
	}
	return out, rows.Err()
}

func (s *Store) AssignmentRoles(ctx context.Context, freelancerID string, projectIDs []string, from, to time.Time) (map[string]string, error) {
	out := make(map[string]string, len(projectIDs))
	if len(projectIDs) == 0 {
		return out, nil
	}
	rows, err := s.DB.Query(ctx, `
		SELECT DISTINCT ON (project_id) project_id, role
		FROM project_assignments
		WHERE freelancer_id = $1 AND project_id = ANY($2)
		  AND status <> 'REMOVED'
		  AND (start_date IS NULL OR start_date <= $4)
		  AND (end_date IS NULL OR end_date >= $3)
		ORDER BY project_id, created_at DESC`,
		freelancerID, projectIDs, from, to)
	if err != nil {
		return nil, fmt.Errorf("query assignment roles: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var projectID, role string
		if err := rows.Scan(&projectID, &role); err != nil {
			return nil, fmt.Errorf("scan assignment role: %w", err)
		}
		out[projectID] = role
	}
	return out, rows.Err()
}

func (s *Store) Insert(ctx context.Context, in CreateInput, totals Calculation, currency string) (Payment, error) {
	tx, err := s.DB.Begin(ctx)
	if err != nil {
		return Payment{}, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	var p Payment
	err = tx.QueryRow(ctx, `
		INSERT INTO payments (freelancer_id, month, year, period_start, period_end,
		                      status, total_amount, currency,
		                      hours_worked, assets_completed, objects_annotated,
		                      notes, created_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		RETURNING id, freelancer_id, month, year, period_start, period_end,
		          status, total_amount, currency, COALESCE(notes, ''), created_at`,
		in.FreelancerID, in.Month, in.Year, in.PeriodStart, in.PeriodEnd,
		StatusPending, in.TotalAmount, currency,
		totals.HoursWorked, totals.AssetsCompleted, totals.ObjectsAnnotated,
		nullIfEmpty(in.Notes), nullIfEmpty(in.CreatedBy)).
		Scan(&p.ID, &p.FreelancerID, &p.Month, &p.Year, &p.PeriodStart, &p.PeriodEnd,
			&p.Status, &p.TotalAmount, &p.Currency, &p.Notes, &p.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return Payment{}, ErrDuplicatePeriod
		}
		return Payment{}, fmt.Errorf("insert payment: %w", err)
	}

	for _, it := range in.LineItems {
		_, err = tx.Exec(ctx, `
			INSERT INTO payment_line_items (payment_id, project_id, description, work_date,
			                                hours_worked, assets_completed, objects_annotated,
			                                quantity, rate, rate_type, amount)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
			p.ID, nullIfEmpty(it.ProjectID), it.Description, it.WorkDate,
			it.HoursWorked, it.AssetsCompleted, it.ObjectsAnnotated,
			it.Quantity, it.Rate, it.RateType, it.Amount)
		if err != nil {
			return Payment{}, fmt.Errorf("insert line item: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return Payment{}, fmt.Errorf("commit payment: %w", err)
	}
	p.LineItems = in.LineItems
	return p, nil
}

func (s *Store) Get(ctx context.Context, id string) (Payment, error) {
	var p Payment
	err := s.DB.QueryRow(ctx, `
		SELECT p.id, p.freelancer_id, f.first_name || ' ' || f.last_name,
		       p.month, p.year, p.period_start, p.period_end,
		       p.status, p.total_amount, p.currency,
		       p.hours_worked, p.assets_completed, p.objects_annotated,
		       COALESCE(p.payment_method, ''), COALESCE(p.reference_number, ''), COALESCE(p.notes, ''),
		       COALESCE(p.approved_by::text, ''), p.approved_at, p.paid_at,
		       COALESCE(p.created_by::text, ''), p.created_at
		FROM payments p
		JOIN freelancers f ON f.id = p.freelancer_id
		WHERE p.id = $1`, id).
		Scan(&p.ID, &p.FreelancerID, &p.FreelancerName,
			&p.Month, &p.Year, &p.PeriodStart, &p.PeriodEnd,
			&p.Status, &p.TotalAmount, &p.Currency,
			&p.HoursWorked, &p.AssetsCompleted, &p.ObjectsAnnotated,
			&p.PaymentMethod, &p.ReferenceNumber, &p.Notes,
			&p.ApprovedBy, &p.ApprovedAt, &p.PaidAt,
			&p.CreatedBy, &p.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Payment{}, ErrNotFound
	}
	if err != nil {
		return Payment{}, fmt.Errorf("get payment: %w", err)
	}

	rows, err := s.DB.Query(ctx, `
		SELECT li.id, COALESCE(li.project_id::text, ''), COALESCE(pr.name, ''),
		       li.description, li.work_date,
		       li.hours_worked, li.assets_completed, li.objects_annotated,
		       li.quantity, li.rate, li.rate_type, li.amount
		FROM payment_line_items li
		LEFT JOIN projects pr ON pr.id = li.project_id
		WHERE li.payment_id = $1
		ORDER BY li.work_date, li.id`, id)
	if err != nil {
		return Payment{}, fmt.Errorf("query line items: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var it LineItem
		if err := rows.Scan(&it.ID, &it.ProjectID, &it.ProjectName,
			&it.Description, &it.WorkDate,
			&it.HoursWorked, &it.AssetsCompleted, &it.ObjectsAnnotated,
			&it.Quantity, &it.Rate, &it.RateType, &it.Amount); err != nil {
			return Payment{}, fmt.Errorf("scan line item: %w", err)
		}
		p.LineItems = append(p.LineItems, it)
	}
	return p, rows.Err()
}

func (s *Store) List(ctx context.Context, f ListFilter) ([]Payment, int, error) {
	where := []string{"1=1"}
	args := []any{}
	arg := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}
	if f.FreelancerID != "" {
		where = append(where, "p.freelancer_id = "+arg(f.FreelancerID))
	}
	if f.Status != "" {
		where = append(where, "p.status = "+arg(f.Status))
	}
	if f.Year > 0 {
		where = append(where, "p.year = "+arg(f.Year))
	}
	if f.Month > 0 {
		where = append(where, "p.month = "+arg(f.Month))
	}
	cond := strings.Join(where, " AND ")

	var total int
	if err := s.DB.QueryRow(ctx, "SELECT COUNT(*) FROM payments p WHERE "+cond, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count payments: %w", err)
	}

	limit := f.Limit
	if limit <= 0 {
		limit = 50
	}
	query := fmt.Sprintf(`
		SELECT p.id, p.freelancer_id, f.first_name || ' ' || f.last_name,
		       p.month, p.year, p.period_start, p.period_end,
		       p.status, p.total_amount, p.currency, p.created_at
		FROM payments p
		JOIN freelancers f ON f.id = p.freelancer_id
		WHERE %s
		ORDER BY p.year DESC, p.month DESC, f.last_name
		LIMIT %s OFFSET %s`, cond, arg(limit), arg(f.Offset))

	rows, err := s.DB.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list payments: %w", err)
	}
	defer rows.Close()

	var out []Payment
	for rows.Next() {
		var p Payment
		if err := rows.Scan(&p.ID, &p.FreelancerID, &p.FreelancerName,
			&p.Month, &p.Year, &p.PeriodStart, &p.PeriodEnd,
			&p.Status, &p.TotalAmount, &p.Currency, &p.CreatedAt); err != nil {
			return nil, 0, fmt.Errorf("scan payment: %w", err)
		}
		out = append(out, p)
	}
	return out, total, rows.Err()
}

// UpdateStatus performs the transition inside a transaction so a
// concurrent update cannot slip between the legality check and the write.
func (s *Store) UpdateStatus(ctx context.Context, id string, upd StatusUpdate) (Payment, error) {
	tx, err := s.DB.Begin(ctx)
	if err != nil {
		return Payment{}, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	var current string
	err = tx.QueryRow(ctx, `SELECT status FROM payments WHERE id = $1 FOR UPDATE`, id).Scan(&current)
	if errors.Is(err, pgx.ErrNoRows) {
		return Payment{}, ErrNotFound
	}
	if err != nil {
		return Payment{}, fmt.Errorf("lock payment: %w", err)
	}
	if !CanTransition(current, upd.NewStatus) {
		return Payment{}, fmt.Errorf("%w: %s to %s", ErrInvalidTransition, current, upd.NewStatus)
	}

	switch upd.NewStatus {
	case StatusApproved:
		_, err = tx.Exec(ctx, `
			UPDATE payments SET status = $2, approved_by = $3, approved_at = now(), updated_at = now()
			WHERE id = $1`, id, upd.NewStatus, upd.ActorID)
	case StatusPaid:
		paidAt := upd.PaidAt
		if paidAt == nil {
			now := time.Now()
			paidAt = &now
		}
		_, err = tx.Exec(ctx, `
			UPDATE payments SET status = $2, payment_method = $3, reference_number = $4,
			       paid_at = $5, updated_at = now()
			WHERE id = $1`, id, upd.NewStatus, nullIfEmpty(upd.PaymentMethod), nullIfEmpty(upd.ReferenceNumber), paidAt)
	default:
		_, err = tx.Exec(ctx, `
			UPDATE payments SET status = $2, updated_at = now() WHERE id = $1`, id, upd.NewStatus)
	}
	if err != nil {
		return Payment{}, fmt.Errorf("update payment status: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return Payment{}, fmt.Errorf("commit status update: %w", err)
	}
	return s.Get(ctx, id)
}

func (s *Store) Delete(ctx context.Context, id string) error {
	var status string
	err := s.DB.QueryRow(ctx, `SELECT status FROM payments WHERE id = $1`, id).Scan(&status)
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("get payment status: %w", err)
	}
	if status == StatusPaid {
		return ErrPaidImmutable
	}
	_, err = s.DB.Exec(ctx, `DELETE FROM payments WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete payment: %w", err)
	}
	return nil
}

func (s *Store) Stats(ctx context.Context, year int) (Stats, error) {
	cond := ""
	args := []any{}
	if year > 0 {
		cond = "WHERE year = $1"
		args = append(args, year)
	}
	rows, err := s.DB.Query(ctx, `
		SELECT status, COUNT(*), COALESCE(SUM(total_amount), 0)
		FROM payments `+cond+`
		GROUP BY status`, args...)
	if err != nil {
		return Stats{}, fmt.Errorf("query payment stats: %w", err)
	}
	defer rows.Close()

	st := Stats{ByStatus: map[string]StatusStats{}}
	for rows.Next() {
		var status string
		var ss StatusStats
		if err := rows.Scan(&status, &ss.Count, &ss.TotalAmount); err != nil {
			return Stats{}, fmt.Errorf("scan payment stats: %w", err)
		}
		st.ByStatus[status] = ss
		st.TotalPayments += ss.Count
		st.TotalAmount += ss.TotalAmount
		switch status {
		case StatusPaid:
			st.TotalPaid += ss.TotalAmount
		case StatusPending, StatusApproved:
			st.TotalPending += ss.TotalAmount
		}
	}
	return st, rows.Err()
}

func (s *Store) FreelancerName(ctx context.Context, freelancerID string) (string, error) {
	var name string
	err := s.DB.QueryRow(ctx,
		`SELECT first_name || ' ' || last_name FROM freelancers WHERE id = $1`, freelancerID).
		Scan(&name)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", ErrNotFound
	}
	return name, err
}

func nullIfEmpty(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

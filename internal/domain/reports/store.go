package reports

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"flm/internal/domain/application"
	"flm/internal/domain/freelancer"
	"flm/internal/domain/payment"
	"flm/internal/domain/project"
)

type Store struct {
	DB *pgxpool.Pool
}

func NewStore(db *pgxpool.Pool) *Store {
	return &Store{DB: db}
}

func (s *Store) FreelancerCounts(ctx context.Context) (total, active int, err error) {
	err = s.DB.QueryRow(ctx, `
		SELECT COUNT(*), COUNT(*) FILTER (WHERE status IN ($1, $2))
		FROM freelancers`,
		freelancer.StatusActive, freelancer.StatusEngaged).
		Scan(&total, &active)
	if err != nil {
		return 0, 0, fmt.Errorf("freelancer counts: %w", err)
	}
	return total, active, nil
}

func (s *Store) PendingApplications(ctx context.Context) (int, error) {
	var n int
	err := s.DB.QueryRow(ctx, `
		SELECT COUNT(*) FROM applications WHERE status NOT IN ($1, $2, $3)`,
		application.StatusAccepted, application.StatusRejected, application.StatusWithdrawn).
		Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("pending applications: %w", err)
	}
	return n, nil
}

func (s *Store) ActiveProjects(ctx context.Context) (int, error) {
	var n int
	err := s.DB.QueryRow(ctx,
		`SELECT COUNT(*) FROM projects WHERE status = $1`, project.StatusActive).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("active projects: %w", err)
	}
	return n, nil
}

func (s *Store) PaymentTotals(ctx context.Context, year int) (pending, paid float64, err error) {
	err = s.DB.QueryRow(ctx, `
		SELECT COALESCE(SUM(total_amount) FILTER (WHERE status IN ($2, $3)), 0),
		       COALESCE(SUM(total_amount) FILTER (WHERE status = $4), 0)
		FROM payments
		WHERE year = $1`,
		year, payment.StatusPending, payment.StatusApproved, payment.StatusPaid).
		Scan(&pending, &paid)
	if err != nil {
		return 0, 0, fmt.Errorf("payment totals: %w", err)
	}
	return pending, paid, nil
}

func (s *Store) AvgOverallScore(ctx context.Context) (float64, error) {
	var avg float64
	err := s.DB.QueryRow(ctx, `
		SELECT COALESCE(AVG(overall_score), 0)
		FROM performance_records
		WHERE overall_score IS NOT NULL
		  AND record_date >= now() - interval '30 days'`).Scan(&avg)
	if err != nil {
		return 0, fmt.Errorf("avg overall score: %w", err)
	}
	return avg, nil
}

func (s *Store) TierDistribution(ctx context.Context) (map[string]int, error) {
	rows, err := s.DB.Query(ctx,
		`SELECT current_tier, COUNT(*) FROM freelancers GROUP BY current_tier`)
	if err != nil {
		return nil, fmt.Errorf("tier distribution: %w", err)
	}
	defer rows.Close()

	out := map[string]int{}
	for rows.Next() {
		var tier string
		var n int
		if err := rows.Scan(&tier, &n); err != nil {
			return nil, fmt.Errorf("scan tier distribution: %w", err)
		}
		out[tier] = n
	}
	return out, rows.Err()
}

func (s *Store) RecentApplications(ctx context.Context, limit int) ([]application.Application, error) {
	apps, _, err := application.NewStore(s.DB).List(ctx, application.ListFilter{Limit: limit})
	return apps, err
}

func (s *Store) MonthlyPaymentSeries(ctx context.Context, year int) ([]MonthTotal, error) {
	rows, err := s.DB.Query(ctx, `
		SELECT month, COALESCE(SUM(total_amount), 0)
		FROM payments
		WHERE year = $1
		GROUP BY month
		ORDER BY month`, year)
	if err != nil {
		return nil, fmt.Errorf("monthly payment series: %w", err)
	}
	defer rows.Close()

	var out []MonthTotal
	for rows.Next() {
		var mt MonthTotal
		if err := rows.Scan(&mt.Month, &mt.Total); err != nil {
			return nil, fmt.Errorf("scan monthly series: %w", err)
		}
		out = append(out, mt)
	}
	return out, rows.Err()
}

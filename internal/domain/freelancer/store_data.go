package freelancer

import (
	"context"
	"errors"
	"fmt"
	"strings"

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

const freelancerColumns = `
	id, roster_id, COALESCE(user_id::text, ''), first_name, COALESCE(middle_name, ''), last_name,
	email, COALESCE(phone, ''), COALESCE(city, ''), COALESCE(country, ''), COALESCE(timezone, ''),
	status, onboarding_status, current_tier, current_grade,
	COALESCE(availability_type, ''), hours_per_week, COALESCE(skills, ''), COALESCE(payout_account, ''),
	COALESCE(notes, ''), created_at, updated_at`

func scanFreelancer(row pgx.Row) (Freelancer, error) {
	var f Freelancer
	err := row.Scan(
		&f.ID, &f.RosterID, &f.UserID, &f.FirstName, &f.MiddleName, &f.LastName,
		&f.Email, &f.Phone, &f.City, &f.Country, &f.Timezone,
		&f.Status, &f.Onboarding, &f.CurrentTier, &f.CurrentGrade,
		&f.AvailabilityType, &f.HoursPerWeek, &f.Skills, &f.PayoutAccount,
		&f.Notes, &f.CreatedAt, &f.UpdatedAt)
	return f, err
}

func (s *Store) Insert(ctx context.Context, f Freelancer) (Freelancer, error) {
	row := s.DB.QueryRow(ctx, `
		INSERT INTO freelancers (roster_id, user_id, first_name, middle_name, last_name,
			email, phone, city, country, timezone,
			status, onboarding_status, current_tier, current_grade,
			availability_type, hours_per_week, skills, payout_account, notes)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10,
		        $11, $12, $13, $14, $15, $16, $17, $18, $19)
		RETURNING `+freelancerColumns,
		f.RosterID, nullIfEmpty(f.UserID), f.FirstName, nullIfEmpty(f.MiddleName), f.LastName,
		f.Email, nullIfEmpty(f.Phone), nullIfEmpty(f.City), nullIfEmpty(f.Country), nullIfEmpty(f.Timezone),
		f.Status, f.Onboarding, f.CurrentTier, f.CurrentGrade,
		nullIfEmpty(f.AvailabilityType), f.HoursPerWeek, nullIfEmpty(f.Skills), nullIfEmpty(f.PayoutAccount), nullIfEmpty(f.Notes))
	saved, err := scanFreelancer(row)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return Freelancer{}, ErrDuplicateEmail
		}
		return Freelancer{}, fmt.Errorf("insert freelancer: %w", err)
	}
	return saved, nil
}

func (s *Store) Get(ctx context.Context, id string) (Freelancer, error) {
	f, err := scanFreelancer(s.DB.QueryRow(ctx,
		`SELECT `+freelancerColumns+` FROM freelancers WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return Freelancer{}, ErrNotFound
	}
	if err != nil {
		return Freelancer{}, fmt.Errorf("get freelancer: %w", err)
	}
	return f, nil
}

func (s *Store) GetByUserID(ctx context.Context, userID string) (Freelancer, error) {
	f, err := scanFreelancer(s.DB.QueryRow(ctx,
		`SELECT `+freelancerColumns+` FROM freelancers WHERE user_id = $1`, userID))
	if errors.Is(err, pgx.ErrNoRows) {
		return Freelancer{}, ErrNotFound
	}
	if err != nil {
		return Freelancer{}, fmt.Errorf("get freelancer by user: %w", err)
	}
	return f, nil
}

func (s *Store) List(ctx context.Context, f ListFilter) ([]Freelancer, int, error) {
	where := []string{"1=1"}
	args := []any{}
	arg := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}
	if f.Status != "" {
		where = append(where, "status = "+arg(f.Status))
	}
	if f.Tier != "" {
		where = append(where, "current_tier = "+arg(f.Tier))
	}
	if f.Grade != "" {
		where = append(where, "current_grade = "+arg(f.Grade))
	}
	if f.Country != "" {
		where = append(where, "country = "+arg(f.Country))
	}
	if f.Search != "" {
		ph := arg("%" + f.Search + "%")
		where = append(where, "(first_name ILIKE "+ph+" OR last_name ILIKE "+ph+
			" OR email ILIKE "+ph+" OR roster_id ILIKE "+ph+")")
	}
	cond := strings.Join(where, " AND ")

	var total int
	if err := s.DB.QueryRow(ctx, "SELECT COUNT(*) FROM freelancers WHERE "+cond, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count freelancers: %w", err)
	}

	sortCol := map[string]string{
		"createdAt":    "created_at",
		"firstName":    "first_name",
		"lastName":     "last_name",
		"currentTier":  "current_tier",
		"currentGrade": "current_grade",
	}[f.SortBy]
	if sortCol == "" {
		sortCol = "created_at"
	}
	dir := "DESC"
	if strings.EqualFold(f.SortDir, "asc") {
		dir = "ASC"
	}
	limit := f.Limit
	if limit <= 0 {
		limit = 50
	}

	rows, err := s.DB.Query(ctx, fmt.Sprintf(
		`SELECT `+freelancerColumns+` FROM freelancers WHERE %s ORDER BY %s %s LIMIT %s OFFSET %s`,
		cond, sortCol, dir, arg(limit), arg(f.Offset)), args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list freelancers: %w", err)
	}
	defer rows.Close()

	var out []Freelancer
	for rows.Next() {
		fl, err := scanFreelancer(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan freelancer: %w", err)
		}
		out = append(out, fl)
	}
	return out, total, rows.Err()
}

func (s *Store) Update(ctx context.Context, f Freelancer) (Freelancer, error) {
	tag, err := s.DB.Exec(ctx, `
		UPDATE freelancers SET
			first_name = $2, middle_name = $3, last_name = $4, phone = $5,
			city = $6, country = $7, timezone = $8,
			onboarding_status = $9, availability_type = $10, hours_per_week = $11,
			skills = $12, payout_account = $13, notes = $14, updated_at = now()
		WHERE id = $1`,
		f.ID, f.FirstName, nullIfEmpty(f.MiddleName), f.LastName, nullIfEmpty(f.Phone),
		nullIfEmpty(f.City), nullIfEmpty(f.Country), nullIfEmpty(f.Timezone),
		f.Onboarding, nullIfEmpty(f.AvailabilityType), f.HoursPerWeek,
		nullIfEmpty(f.Skills), nullIfEmpty(f.PayoutAccount), nullIfEmpty(f.Notes))
	if err != nil {
		return Freelancer{}, fmt.Errorf("update freelancer: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return Freelancer{}, ErrNotFound
	}
	return s.Get(ctx, f.ID)
}

func (s *Store) SetStatus(ctx context.Context, id, status string) error {
	tag, err := s.DB.Exec(ctx,
		`UPDATE freelancers SET status = $2, updated_at = now() WHERE id = $1`, id, status)
	if err != nil {
		return fmt.Errorf("set freelancer status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *Store) TierHistory(ctx context.Context, freelancerID string) ([]TierChange, error) {
	rows, err := s.DB.Query(ctx, `
		SELECT id, freelancer_id, COALESCE(previous_tier, ''), new_tier,
		       COALESCE(previous_grade, ''), new_grade,
		       COALESCE(reason, ''), COALESCE(changed_by::text, ''), created_at
		FROM tier_history
		WHERE freelancer_id = $1
		ORDER BY created_at DESC`, freelancerID)
	if err != nil {
		return nil, fmt.Errorf("query tier history: %w", err)
	}
	defer rows.Close()

	var out []TierChange
	for rows.Next() {
		var tc TierChange
		if err := rows.Scan(&tc.ID, &tc.FreelancerID, &tc.PreviousTier, &tc.NewTier,
			&tc.PreviousGrade, &tc.NewGrade, &tc.Reason, &tc.ChangedBy, &tc.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan tier history: %w", err)
		}
		out = append(out, tc)
	}
	return out, rows.Err()
}

// NextRosterSeq allocates the next roster number for display IDs.
func (s *Store) NextRosterSeq(ctx context.Context) (int, error) {
	var n int
	if err := s.DB.QueryRow(ctx, `SELECT nextval('freelancer_roster_seq')`).Scan(&n); err != nil {
		return 0, fmt.Errorf("next roster sequence: %w", err)
	}
	return n, nil
}

func nullIfEmpty(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

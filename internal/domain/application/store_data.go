package application

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"flm/internal/domain/auth"
	"flm/internal/domain/freelancer"
	"flm/internal/domain/tiering"
)

type Store struct {
	DB *pgxpool.Pool
}

func NewStore(db *pgxpool.Pool) *Store {
	return &Store{DB: db}
}

const applicationColumns = `
	id, first_name, last_name, email, COALESCE(phone, ''), COALESCE(city, ''),
	COALESCE(country, ''), COALESCE(timezone, ''),
	COALESCE(annotation_types, ''), COALESCE(annotation_methods, ''), COALESCE(annotation_tools, ''),
	COALESCE(language_proficiency, ''), years_experience,
	COALESCE(availability_type, ''), hours_per_week,
	COALESCE(portfolio_url, ''), COALESCE(cover_note, ''),
	status, COALESCE(reviewed_by::text, ''), reviewed_at, COALESCE(rejection_reason, ''),
	created_at, updated_at`

func scanApplication(row pgx.Row) (Application, error) {
	var a Application
	err := row.Scan(
		&a.ID, &a.FirstName, &a.LastName, &a.Email, &a.Phone, &a.City,
		&a.Country, &a.Timezone,
		&a.AnnotationTypes, &a.AnnotationMethods, &a.AnnotationTools,
		&a.LanguageProficiency, &a.YearsExperience,
		&a.AvailabilityType, &a.HoursPerWeek,
		&a.PortfolioURL, &a.CoverNote,
		&a.Status, &a.ReviewedBy, &a.ReviewedAt, &a.RejectionReason,
		&a.CreatedAt, &a.UpdatedAt)
	return a, err
}

func (s *Store) Insert(ctx context.Context, a Application) (Application, error) {
	row := s.DB.QueryRow(ctx, `
		INSERT INTO applications (first_name, last_name, email, phone, city, country, timezone,
			annotation_types, annotation_methods, annotation_tools,
			language_proficiency, years_experience, availability_type, hours_per_week,
			portfolio_url, cover_note, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)
		RETURNING `+applicationColumns,
		a.FirstName, a.LastName, a.Email, nullIfEmpty(a.Phone), nullIfEmpty(a.City),
		nullIfEmpty(a.Country), nullIfEmpty(a.Timezone),
		nullIfEmpty(a.AnnotationTypes), nullIfEmpty(a.AnnotationMethods), nullIfEmpty(a.AnnotationTools),
		nullIfEmpty(a.LanguageProficiency), a.YearsExperience,
		nullIfEmpty(a.AvailabilityType), a.HoursPerWeek,
		nullIfEmpty(a.PortfolioURL), nullIfEmpty(a.CoverNote), a.Status)
	saved, err := scanApplication(row)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return Application{}, ErrDuplicateEmail
		}
		return Application{}, fmt.Errorf("insert application: %w", err)
	}
	return saved, nil
}

func (s *Store) Get(ctx context.Context, id string) (Application, error) {
	a, err := scanApplication(s.DB.QueryRow(ctx,
		`SELECT `+applicationColumns+` FROM applications WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return Application{}, ErrNotFound
	}
	if err != nil {
		return Application{}, fmt.Errorf("get application: %w", err)
	}
	return a, nil
}

func (s *Store) List(ctx context.Context, f ListFilter) ([]Application, int, error) {
	where := []string{"1=1"}
	args := []any{}
	arg := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}
	if f.Status != "" {
		where = append(where, "status = "+arg(f.Status))
	}
	if f.Country != "" {
		where = append(where, "country = "+arg(f.Country))
	}
	if f.Search != "" {
		ph := arg("%" + f.Search + "%")
		where = append(where, "(first_name ILIKE "+ph+" OR last_name ILIKE "+ph+" OR email ILIKE "+ph+")")
	}
	cond := strings.Join(where, " AND ")

	var total int
	if err := s.DB.QueryRow(ctx, "SELECT COUNT(*) FROM applications WHERE "+cond, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count applications: %w", err)
	}

	limit := f.Limit
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.DB.Query(ctx, fmt.Sprintf(
		`SELECT `+applicationColumns+` FROM applications WHERE %s ORDER BY created_at DESC LIMIT %s OFFSET %s`,
		cond, arg(limit), arg(f.Offset)), args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list applications: %w", err)
	}
	defer rows.Close()

	var out []Application
	for rows.Next() {
		a, err := scanApplication(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan application: %w", err)
		}
		out = append(out, a)
	}
	return out, total, rows.Err()
}

func (s *Store) SetStatus(ctx context.Context, id, status, reviewerID, reason string) error {
	tag, err := s.DB.Exec(ctx, `
		UPDATE applications
		SET status = $2, reviewed_by = $3, reviewed_at = now(),
		    rejection_reason = $4, updated_at = now()
		WHERE id = $1`,
		id, status, nullIfEmpty(reviewerID), nullIfEmpty(reason))
	if err != nil {
		return fmt.Errorf("update application status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// Accept converts the application in one transaction: marks it ACCEPTED,
// creates the portal user and inserts the roster profile.
func (s *Store) Accept(ctx context.Context, data AcceptData) (AcceptResult, error) {
	tx, err := s.DB.Begin(ctx)
	if err != nil {
		return AcceptResult{}, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	app, err := scanApplication(tx.QueryRow(ctx,
		`SELECT `+applicationColumns+` FROM applications WHERE id = $1 FOR UPDATE`, data.ApplicationID))
	if errors.Is(err, pgx.ErrNoRows) {
		return AcceptResult{}, ErrNotFound
	}
	if err != nil {
		return AcceptResult{}, fmt.Errorf("lock application: %w", err)
	}
	if Terminal(app.Status) {
		return AcceptResult{}, ErrAlreadyReviewed
	}

	_, err = tx.Exec(ctx, `
		UPDATE applications
		SET status = $2, reviewed_by = $3, reviewed_at = now(), updated_at = now()
		WHERE id = $1`,
		data.ApplicationID, StatusAccepted, data.ReviewerID)
	if err != nil {
		return AcceptResult{}, fmt.Errorf("mark accepted: %w", err)
	}

	var userID string
	err = tx.QueryRow(ctx, `
		INSERT INTO users (email, password_hash, role_id, status)
		VALUES ($1, $2, $3, $4)
		RETURNING id`,
		app.Email, data.PasswordHash, data.RoleID, auth.UserStatusActive).
		Scan(&userID)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return AcceptResult{}, ErrDuplicateEmail
		}
		return AcceptResult{}, fmt.Errorf("create portal user: %w", err)
	}

	var freelancerID string
	err = tx.QueryRow(ctx, `
		INSERT INTO freelancers (roster_id, user_id, application_id,
			first_name, last_name, email, phone, city, country, timezone,
			availability_type, hours_per_week,
			status, onboarding_status, current_tier, current_grade)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)
		RETURNING id`,
		data.RosterID, userID, app.ID,
		app.FirstName, app.LastName, app.Email, nullIfEmpty(app.Phone),
		nullIfEmpty(app.City), nullIfEmpty(app.Country), nullIfEmpty(app.Timezone),
		nullIfEmpty(app.AvailabilityType), app.HoursPerWeek,
		freelancer.StatusActive, freelancer.OnboardingPending, tiering.TierBronze, tiering.GradeC).
		Scan(&freelancerID)
	if err != nil {
		return AcceptResult{}, fmt.Errorf("create roster profile: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return AcceptResult{}, fmt.Errorf("commit accept: %w", err)
	}
	return AcceptResult{
		FreelancerID: freelancerID,
		RosterID:     data.RosterID,
		UserID:       userID,
		Email:        app.Email,
	}, nil
}

func (s *Store) Stats(ctx context.Context) (Stats, error) {
	rows, err := s.DB.Query(ctx, `SELECT status, COUNT(*) FROM applications GROUP BY status`)
	if err != nil {
		return Stats{}, fmt.Errorf("query application stats: %w", err)
	}
	defer rows.Close()

	st := Stats{ByStatus: map[string]int{}}
	for rows.Next() {
		var status string
		var n int
		if err := rows.Scan(&status, &n); err != nil {
			return Stats{}, fmt.Errorf("scan application stats: %w", err)
		}
		st.ByStatus[status] = n
		st.Total += n
	}
	return st, rows.Err()
}

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

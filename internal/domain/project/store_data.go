package project

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

const projectColumns = `
	id, code, name, COALESCE(client, ''), COALESCE(description, ''), status, payment_model,
	hourly_rate_annotation, hourly_rate_review,
	per_asset_rate_annotation, per_asset_rate_review, expected_time_per_asset,
	per_object_rate_annotation, per_object_rate_review,
	start_date, end_date, created_at, updated_at`

func scanProject(row pgx.Row) (Project, error) {
	var p Project
	err := row.Scan(
		&p.ID, &p.Code, &p.Name, &p.Client, &p.Description, &p.Status, &p.PaymentModel,
		&p.HourlyRateAnnotation, &p.HourlyRateReview,
		&p.PerAssetRateAnnotation, &p.PerAssetRateReview, &p.ExpectedTimePerAsset,
		&p.PerObjectRateAnnotation, &p.PerObjectRateReview,
		&p.StartDate, &p.EndDate, &p.CreatedAt, &p.UpdatedAt)
	return p, err
}

func (s *Store) Insert(ctx context.Context, p Project) (Project, error) {
	row := s.DB.QueryRow(ctx, `
		INSERT INTO projects (code, name, client, description, status, payment_model,
			hourly_rate_annotation, hourly_rate_review,
			per_asset_rate_annotation, per_asset_rate_review, expected_time_per_asset,
			per_object_rate_annotation, per_object_rate_review,
			start_date, end_date)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
		RETURNING `+projectColumns,
		p.Code, p.Name, nullIfEmpty(p.Client), nullIfEmpty(p.Description), p.Status, p.PaymentModel,
		p.HourlyRateAnnotation, p.HourlyRateReview,
		p.PerAssetRateAnnotation, p.PerAssetRateReview, p.ExpectedTimePerAsset,
		p.PerObjectRateAnnotation, p.PerObjectRateReview,
		p.StartDate, p.EndDate)
	saved, err := scanProject(row)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return Project{}, ErrDuplicateCode
		}
		return Project{}, fmt.Errorf("insert project: %w", err)
	}
	return saved, nil
}

func (s *Store) Get(ctx context.Context, id string) (Project, error) {
	p, err := scanProject(s.DB.QueryRow(ctx,
		`SELECT `+projectColumns+` FROM projects WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return Project{}, ErrNotFound
	}
	if err != nil {
		return Project{}, fmt.Errorf("get project: %w", err)
	}
	return p, nil
}

func (s *Store) List(ctx context.Context, f ListFilter) ([]Project, int, error) {
	where := []string{"1=1"}
	args := []any{}
	arg := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}
	if f.Status != "" {
		where = append(where, "status = "+arg(f.Status))
	}
	if f.Search != "" {
		ph := arg("%" + f.Search + "%")
		where = append(where, "(name ILIKE "+ph+" OR code ILIKE "+ph+")")
	}
	cond := strings.Join(where, " AND ")

	var total int
	if err := s.DB.QueryRow(ctx, "SELECT COUNT(*) FROM projects WHERE "+cond, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count projects: %w", err)
	}

	limit := f.Limit
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.DB.Query(ctx, fmt.Sprintf(
		`SELECT `+projectColumns+` FROM projects WHERE %s ORDER BY created_at DESC LIMIT %s OFFSET %s`,
		cond, arg(limit), arg(f.Offset)), args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list projects: %w", err)
	}
	defer rows.Close()

	var out []Project
	for rows.Next() {
		p, err := scanProject(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan project: %w", err)
		}
		out = append(out, p)
	}
	return out, total, rows.Err()
}

func (s *Store) Update(ctx context.Context, p Project) (Project, error) {
	tag, err := s.DB.Exec(ctx, `
		UPDATE projects SET
			name = $2, client = $3, description = $4, status = $5, payment_model = $6,
			hourly_rate_annotation = $7, hourly_rate_review = $8,
			per_asset_rate_annotation = $9, per_asset_rate_review = $10, expected_time_per_asset = $11,
			per_object_rate_annotation = $12, per_object_rate_review = $13,
			start_date = $14, end_date = $15, updated_at = now()
		WHERE id = $1`,
		p.ID, p.Name, nullIfEmpty(p.Client), nullIfEmpty(p.Description), p.Status, p.PaymentModel,
		p.HourlyRateAnnotation, p.HourlyRateReview,
		p.PerAssetRateAnnotation, p.PerAssetRateReview, p.ExpectedTimePerAsset,
		p.PerObjectRateAnnotation, p.PerObjectRateReview,
		p.StartDate, p.EndDate)
	if err != nil {
		return Project{}, fmt.Errorf("update project: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return Project{}, ErrNotFound
	}
	return s.Get(ctx, p.ID)
}

func (s *Store) Delete(ctx context.Context, id string) error {
	tag, err := s.DB.Exec(ctx, `DELETE FROM projects WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete project: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *Store) Assign(ctx context.Context, a Assignment) (Assignment, error) {
	err := s.DB.QueryRow(ctx, `
		INSERT INTO project_assignments (project_id, freelancer_id, role, status, start_date, end_date)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at`,
		a.ProjectID, a.FreelancerID, a.Role, a.Status, a.StartDate, a.EndDate).
		Scan(&a.ID, &a.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return Assignment{}, ErrAlreadyAssigned
		}
		return Assignment{}, fmt.Errorf("insert assignment: %w", err)
	}
	return a, nil
}

const assignmentColumns = `
	a.id, a.project_id, p.name, a.freelancer_id, f.first_name || ' ' || f.last_name,
	a.role, a.status, a.start_date, a.end_date, a.created_at`

func scanAssignment(row pgx.Row) (Assignment, error) {
	var a Assignment
	err := row.Scan(&a.ID, &a.ProjectID, &a.ProjectName, &a.FreelancerID, &a.FreelancerName,
		&a.Role, &a.Status, &a.StartDate, &a.EndDate, &a.CreatedAt)
	return a, err
}

func (s *Store) Assignments(ctx context.Context, projectID string) ([]Assignment, error) {
	return s.queryAssignments(ctx, "a.project_id = $1", projectID)
}

func (s *Store) FreelancerAssignments(ctx context.Context, freelancerID string) ([]Assignment, error) {
	return s.queryAssignments(ctx, "a.freelancer_id = $1", freelancerID)
}

func (s *Store) queryAssignments(ctx context.Context, cond string, arg any) ([]Assignment, error) {
	rows, err := s.DB.Query(ctx, `
		SELECT `+assignmentColumns+`
		FROM project_assignments a
		JOIN projects p ON p.id = a.project_id
		JOIN freelancers f ON f.id = a.freelancer_id
		WHERE `+cond+`
		ORDER BY a.created_at DESC`, arg)
	if err != nil {
		return nil, fmt.Errorf("query assignments: %w", err)
	}
	defer rows.Close()

	var out []Assignment
	for rows.Next() {
		a, err := scanAssignment(rows)
		if err != nil {
			return nil, fmt.Errorf("scan assignment: %w", err)
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

func (s *Store) UpdateAssignment(ctx context.Context, a Assignment) (Assignment, error) {
	tag, err := s.DB.Exec(ctx, `
		UPDATE project_assignments
		SET role = $2, status = $3, start_date = $4, end_date = $5
		WHERE id = $1`,
		a.ID, a.Role, a.Status, a.StartDate, a.EndDate)
	if err != nil {
		return Assignment{}, fmt.Errorf("update assignment: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return Assignment{}, ErrAssignmentNotFound
	}
	got, err := scanAssignment(s.DB.QueryRow(ctx, `
		SELECT `+assignmentColumns+`
		FROM project_assignments a
		JOIN projects p ON p.id = a.project_id
		JOIN freelancers f ON f.id = a.freelancer_id
		WHERE a.id = $1`, a.ID))
	if err != nil {
		return Assignment{}, fmt.Errorf("get assignment: %w", err)
	}
	return got, nil
}

func (s *Store) RemoveAssignment(ctx context.Context, id string) error {
	tag, err := s.DB.Exec(ctx, `DELETE FROM project_assignments WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete assignment: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrAssignmentNotFound
	}
	return nil
}

func nullIfEmpty(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

package performance

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Store struct {
	DB *pgxpool.Pool
}

func NewStore(db *pgxpool.Pool) *Store {
	return &Store{DB: db}
}

const recordColumns = `
	r.id, r.freelancer_id, f.first_name || ' ' || f.last_name,
	COALESCE(r.project_id::text, ''), COALESCE(p.name, ''),
	r.record_type, r.record_date, r.month, r.year,
	r.hours_worked, r.assets_completed, r.tasks_completed, r.avg_time_per_task,
	r.com_responsibility, r.com_commitment, r.com_initiative, r.com_willingness, r.com_communication, r.com_total,
	r.qual_speed, r.qual_delib_omission, r.qual_accuracy, r.qual_attention, r.qual_unannotated, r.qual_understanding,
	r.qual_rejected_count, r.qual_total,
	r.overall_score, COALESCE(r.recorded_by::text, ''), COALESCE(r.notes, ''), r.created_at, r.updated_at`

func scanRecord(row pgx.Row) (Record, error) {
	var r Record
	err := row.Scan(
		&r.ID, &r.FreelancerID, &r.FreelancerName,
		&r.ProjectID, &r.ProjectName,
		&r.RecordType, &r.RecordDate, &r.Month, &r.Year,
		&r.HoursWorked, &r.AssetsCompleted, &r.TasksCompleted, &r.AvgTimePerTask,
		&r.ComResponsibility, &r.ComCommitment, &r.ComInitiative, &r.ComWillingness, &r.ComCommunication, &r.ComTotal,
		&r.QualSpeed, &r.QualDelibOmission, &r.QualAccuracy, &r.QualAttention, &r.QualUnannotated, &r.QualUnderstanding,
		&r.QualRejectedCount, &r.QualTotal,
		&r.OverallScore, &r.RecordedBy, &r.Notes, &r.CreatedAt, &r.UpdatedAt)
	return r, err
}

func (s *Store) Insert(ctx context.Context, r Record) (Record, error) {
	var id string
	err := s.DB.QueryRow(ctx, `
		INSERT INTO performance_records (
			freelancer_id, project_id, record_type, record_date, month, year,
			hours_worked, assets_completed, tasks_completed, avg_time_per_task,
			com_responsibility, com_commitment, com_initiative, com_willingness, com_communication, com_total,
			qual_speed, qual_delib_omission, qual_accuracy, qual_attention, qual_unannotated, qual_understanding,
			qual_rejected_count, qual_total, overall_score, recorded_by, notes)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10,
		        $11, $12, $13, $14, $15, $16,
		        $17, $18, $19, $20, $21, $22,
		        $23, $24, $25, $26, $27)
		RETURNING id`,
		r.FreelancerID, nullIfEmpty(r.ProjectID), r.RecordType, r.RecordDate, r.Month, r.Year,
		r.HoursWorked, r.AssetsCompleted, r.TasksCompleted, r.AvgTimePerTask,
		r.ComResponsibility, r.ComCommitment, r.ComInitiative, r.ComWillingness, r.ComCommunication, r.ComTotal,
		r.QualSpeed, r.QualDelibOmission, r.QualAccuracy, r.QualAttention, r.QualUnannotated, r.QualUnderstanding,
		r.QualRejectedCount, r.QualTotal, r.OverallScore, nullIfEmpty(r.RecordedBy), nullIfEmpty(r.Notes)).
		Scan(&id)
	if err != nil {
		return Record{}, fmt.Errorf("insert performance record: %w", err)
	}
	return s.Get(ctx, id)
}

func (s *Store) Get(ctx context.Context, id string) (Record, error) {
	r, err := scanRecord(s.DB.QueryRow(ctx, `
		SELECT `+recordColumns+`
		FROM performance_records r
		JOIN freelancers f ON f.id = r.freelancer_id
		LEFT JOIN projects p ON p.id = r.project_id
		WHERE r.id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return Record{}, ErrNotFound
	}
	if err != nil {
		return Record{}, fmt.Errorf("get performance record: %w", err)
	}
	return r, nil
}

func (s *Store) List(ctx context.Context, f ListFilter) ([]Record, int, error) {
	where := []string{"1=1"}
	args := []any{}
	arg := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}
	if f.FreelancerID != "" {
		where = append(where, "r.freelancer_id = "+arg(f.FreelancerID))
	}
	if f.ProjectID != "" {
		where = append(where, "r.project_id = "+arg(f.ProjectID))
	}
	if f.RecordType != "" {
		where = append(where, "r.record_type = "+arg(f.RecordType))
	}
	if f.From != nil {
		where = append(where, "r.record_date >= "+arg(*f.From))
	}
	if f.To != nil {
		where = append(where, "r.record_date <= "+arg(*f.To))
	}
	cond := strings.Join(where, " AND ")

	var total int
	if err := s.DB.QueryRow(ctx,
		"SELECT COUNT(*) FROM performance_records r WHERE "+cond, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count performance records: %w", err)
	}

	limit := f.Limit
	if limit <= 0 {
		limit = 50
	}
	query := fmt.Sprintf(`
		SELECT `+recordColumns+`
		FROM performance_records r
		JOIN freelancers f ON f.id = r.freelancer_id
		LEFT JOIN projects p ON p.id = r.project_id
		WHERE %s
		ORDER BY r.record_date DESC, r.created_at DESC
		LIMIT %s OFFSET %s`, cond, arg(limit), arg(f.Offset))

	rows, err := s.DB.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list performance records: %w", err)
	}
	defer rows.Close()

	var out []Record
	for rows.Next() {
		r, err := scanRecord(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan performance record: %w", err)
		}
		out = append(out, r)
	}
	return out, total, rows.Err()
}

func (s *Store) Update(ctx context.Context, r Record) (Record, error) {
	tag, err := s.DB.Exec(ctx, `
		UPDATE performance_records SET
			project_id = $2, record_type = $3, record_date = $4, month = $5, year = $6,
			hours_worked = $7, assets_completed = $8, tasks_completed = $9, avg_time_per_task = $10,
			com_responsibility = $11, com_commitment = $12, com_initiative = $13,
			com_willingness = $14, com_communication = $15, com_total = $16,
			qual_speed = $17, qual_delib_omission = $18, qual_accuracy = $19,
			qual_attention = $20, qual_unannotated = $21, qual_understanding = $22,
			qual_rejected_count = $23, qual_total = $24, overall_score = $25,
			notes = $26, updated_at = now()
		WHERE id = $1`,
		r.ID, nullIfEmpty(r.ProjectID), r.RecordType, r.RecordDate, r.Month, r.Year,
		r.HoursWorked, r.AssetsCompleted, r.TasksCompleted, r.AvgTimePerTask,
		r.ComResponsibility, r.ComCommitment, r.ComInitiative,
		r.ComWillingness, r.ComCommunication, r.ComTotal,
		r.QualSpeed, r.QualDelibOmission, r.QualAccuracy,
		r.QualAttention, r.QualUnannotated, r.QualUnderstanding,
		r.QualRejectedCount, r.QualTotal, r.OverallScore,
		nullIfEmpty(r.Notes))
	if err != nil {
		return Record{}, fmt.Errorf("update performance record: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return Record{}, ErrNotFound
	}
	return s.Get(ctx, r.ID)
}

func (s *Store) Delete(ctx context.Context, id string) error {
	tag, err := s.DB.Exec(ctx, `DELETE FROM performance_records WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete performance record: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *Store) FreelancerStats(ctx context.Context, freelancerID string) (FreelancerStats, error) {
	var st FreelancerStats
	err := s.DB.QueryRow(ctx, `
		SELECT COUNT(*),
		       COALESCE(AVG(com_total), 0),
		       COALESCE(AVG(qual_total), 0),
		       COALESCE(AVG(overall_score), 0),
		       COALESCE(SUM(hours_worked), 0),
		       COALESCE(SUM(assets_completed), 0),
		       COALESCE(SUM(tasks_completed), 0)
		FROM performance_records
		WHERE freelancer_id = $1`, freelancerID).
		Scan(&st.RecordCount, &st.AvgComTotal, &st.AvgQualTotal, &st.AvgOverallScore,
			&st.TotalHours, &st.TotalAssets, &st.TotalTasks)
	if err != nil {
		return FreelancerStats{}, fmt.Errorf("freelancer performance stats: %w", err)
	}
	return st, nil
}

func nullIfEmpty(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

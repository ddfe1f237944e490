package tiering

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Store struct {
	DB *pgxpool.Pool
}

func NewStore(db *pgxpool.Pool) *Store {
	return &Store{DB: db}
}

func (s *Store) OverallScores(ctx context.Context, freelancerID string, since time.Time) ([]float64, error) {
	query := `
    SELECT overall_score
    FROM performance_records
    WHERE freelancer_id = $1 AND overall_score IS NOT NULL
  `
	args := []any{freelancerID}
	if !since.IsZero() {
		query += " AND record_date >= $2"
		args = append(args, since)
	}
	rows, err := s.DB.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var scores []float64
	for rows.Next() {
		var score float64
		if err := rows.Scan(&score); err != nil {
			return nil, err
		}
		scores = append(scores, score)
	}
	return scores, rows.Err()
}

func (s *Store) GetFreelancer(ctx context.Context, freelancerID string) (FreelancerRef, error) {
	var ref FreelancerRef
	err := s.DB.QueryRow(ctx, `
    SELECT id, first_name || ' ' || last_name, current_tier, current_grade
    FROM freelancers
    WHERE id = $1
  `, freelancerID).Scan(&ref.ID, &ref.Name, &ref.Tier, &ref.Grade)
	if errors.Is(err, pgx.ErrNoRows) {
		return FreelancerRef{}, ErrNotFound
	}
	if err != nil {
		return FreelancerRef{}, err
	}
	return ref, nil
}

func (s *Store) ListActiveFreelancers(ctx context.Context) ([]FreelancerRef, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT id, first_name || ' ' || last_name, current_tier, current_grade
    FROM freelancers
    WHERE status = 'ACTIVE'
    ORDER BY last_name, first_name
  `)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var refs []FreelancerRef
	for rows.Next() {
		var ref FreelancerRef
		if err := rows.Scan(&ref.ID, &ref.Name, &ref.Tier, &ref.Grade); err != nil {
			return nil, err
		}
		refs = append(refs, ref)
	}
	return refs, rows.Err()
}

// ApplyClassification locks the freelancer row so two concurrent applies
// cannot interleave a tier from one calculation with a grade from another.
// Re-applying the stored classification is a no-op and writes no history.
func (s *Store) ApplyClassification(ctx context.Context, freelancerID, tier, grade, reason, changedBy string) error {
	tx, err := s.DB.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	var currentTier, currentGrade string
	err = tx.QueryRow(ctx, `
    SELECT current_tier, current_grade
    FROM freelancers
    WHERE id = $1
    FOR UPDATE
  `, freelancerID).Scan(&currentTier, &currentGrade)
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNotFound
	}
	if err != nil {
		return err
	}

	if currentTier == tier && currentGrade == grade {
		return tx.Commit(ctx)
	}

	if _, err := tx.Exec(ctx, `
    UPDATE freelancers
    SET current_tier = $1, current_grade = $2, updated_at = now()
    WHERE id = $3
  `, tier, grade, freelancerID); err != nil {
		return err
	}

	if _, err := tx.Exec(ctx, `
    INSERT INTO tier_history (freelancer_id, from_tier, from_grade, to_tier, to_grade, reason, changed_by)
    VALUES ($1,$2,$3,$4,$5,$6,$7)
  `, freelancerID, currentTier, currentGrade, tier, grade, reason, nullIfEmpty(changedBy)); err != nil {
		return err
	}

	return tx.Commit(ctx)
}

func (s *Store) TierGradeCounts(ctx context.Context) (Stats, error) {
	stats := Stats{
		ByTier:      map[string]int{TierPlatinum: 0, TierGold: 0, TierSilver: 0, TierBronze: 0},
		ByGrade:     map[string]int{GradeA: 0, GradeB: 0, GradeC: 0},
		ByTierGrade: map[string]int{},
	}
	rows, err := s.DB.Query(ctx, `
    SELECT current_tier, current_grade
    FROM freelancers
    WHERE status = 'ACTIVE'
  `)
	if err != nil {
		return stats, err
	}
	defer rows.Close()

	for rows.Next() {
		var tier, grade string
		if err := rows.Scan(&tier, &grade); err != nil {
			return stats, err
		}
		stats.Total++
		stats.ByTier[tier]++
		stats.ByGrade[grade]++
		stats.ByTierGrade[tier+"-"+grade]++
	}
	return stats, rows.Err()
}

func nullIfEmpty(value string) any {
	if value == "" {
		return nil
	}
	return value
}

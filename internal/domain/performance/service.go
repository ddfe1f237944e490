package performance

import (
	"context"
	"fmt"
	"log/slog"
	"time"
)

// Notifier lets the service announce new reviews without depending on the
// notification package directly.
type Notifier interface {
	NotifyFreelancer(ctx context.Context, freelancerID, title, message string) error
}

type Service struct {
	store    StoreAPI
	notifier Notifier
}

func NewService(store StoreAPI, notifier Notifier) *Service {
	return &Service{store: store, notifier: notifier}
}

// Create validates, derives the score totals and stores the record. The
// freelancer is notified of the new review; a notification failure is
// logged but never fails the write.
func (s *Service) Create(ctx context.Context, r Record) (Record, error) {
	if r.FreelancerID == "" || r.RecordType == "" {
		return Record{}, ErrMissingRequired
	}
	if !ValidRecordType(r.RecordType) {
		return Record{}, ErrInvalidType
	}
	if err := ValidateScores(&r); err != nil {
		return Record{}, err
	}
	if r.RecordDate.IsZero() {
		r.RecordDate = time.Now().UTC()
	}
	r.Month = int(r.RecordDate.Month())
	r.Year = r.RecordDate.Year()
	DeriveTotals(&r)

	saved, err := s.store.Insert(ctx, r)
	if err != nil {
		return Record{}, err
	}

	if s.notifier != nil {
		msg := "A new performance review has been recorded."
		if saved.OverallScore != nil {
			msg = fmt.Sprintf("A new performance review has been recorded. Overall score: %.2f", *saved.OverallScore)
		}
		if err := s.notifier.NotifyFreelancer(ctx, saved.FreelancerID, "New Performance Review", msg); err != nil {
			slog.Warn("performance review notification failed", "freelancerId", saved.FreelancerID, "error", err)
		}
	}
	return saved, nil
}

func (s *Service) Get(ctx context.Context, id string) (Record, error) {
	return s.store.Get(ctx, id)
}

func (s *Service) List(ctx context.Context, f ListFilter) ([]Record, int, error) {
	return s.store.List(ctx, f)
}

// Update re-validates and re-derives the totals so edited sub-scores can
// never leave stale aggregates behind.
func (s *Service) Update(ctx context.Context, r Record) (Record, error) {
	if !ValidRecordType(r.RecordType) {
		return Record{}, ErrInvalidType
	}
	if err := ValidateScores(&r); err != nil {
		return Record{}, err
	}
	r.Month = int(r.RecordDate.Month())
	r.Year = r.RecordDate.Year()
	DeriveTotals(&r)
	return s.store.Update(ctx, r)
}

func (s *Service) Delete(ctx context.Context, id string) error {
	return s.store.Delete(ctx, id)
}

func (s *Service) FreelancerStats(ctx context.Context, freelancerID string) (FreelancerStats, error) {
	return s.store.FreelancerStats(ctx, freelancerID)
}

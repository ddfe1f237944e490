package tiering

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"flm/internal/domain/settings"
)

type Service struct {
	store StoreAPI
	cfg   ConfigAPI
}

func NewService(store StoreAPI, cfg ConfigAPI) *Service {
	return &Service{store: store, cfg: cfg}
}

// Calculate runs the classification engine for one freelancer over the
// given period and returns an ephemeral recommendation. Nothing is
// persisted here.
func (s *Service) Calculate(ctx context.Context, freelancerID, period string) (Calculation, error) {
	since, err := PeriodRange(period, time.Now())
	if err != nil {
		return Calculation{}, err
	}

	freelancer, err := s.store.GetFreelancer(ctx, freelancerID)
	if err != nil {
		return Calculation{}, err
	}

	scores, err := s.store.OverallScores(ctx, freelancerID, since)
	if err != nil {
		return Calculation{}, err
	}

	cfg := s.loadConfig(ctx)
	calc, err := Classify(scores, TierGrade{Tier: freelancer.Tier, Grade: freelancer.Grade}, cfg)
	if err != nil {
		return Calculation{}, err
	}
	calc.FreelancerID = freelancerID
	calc.Period = normalizePeriod(period)
	return calc, nil
}

// Apply copies an accepted recommendation into the freelancer's stored
// classification. Idempotent: re-applying the current values changes
// nothing and records no history.
func (s *Service) Apply(ctx context.Context, freelancerID, tier, grade, reason, changedBy string) error {
	if !ValidTier(tier) || !ValidGrade(grade) {
		return ErrInvalidTierGrade
	}
	if reason == "" {
		reason = "Performance-based update"
	}
	return s.store.ApplyClassification(ctx, freelancerID, tier, grade, reason, changedBy)
}

// CalculateAll runs the engine across every ACTIVE freelancer. Failures
// are isolated per freelancer: an error classifying one is recorded as an
// error outcome and the batch continues.
func (s *Service) CalculateAll(ctx context.Context, period string, autoApply bool, changedBy string) (BulkResult, error) {
	since, err := PeriodRange(period, time.Now())
	if err != nil {
		return BulkResult{}, err
	}

	freelancers, err := s.store.ListActiveFreelancers(ctx)
	if err != nil {
		return BulkResult{}, err
	}

	cfg := s.loadConfig(ctx)
	result := BulkResult{Results: make([]BulkItem, 0, len(freelancers))}

	for _, freelancer := range freelancers {
		item := s.classifyOne(ctx, freelancer, since, cfg, autoApply, changedBy)
		result.Results = append(result.Results, item)
		switch item.Status {
		case OutcomeUpdated:
			result.Summary.Updated++
		case OutcomeChangeDetected:
			result.Summary.ChangesDetected++
		case OutcomeNoChange:
			result.Summary.NoChange++
		case OutcomeSkipped:
			result.Summary.Skipped++
		case OutcomeError:
			result.Summary.Errors++
		}
	}
	result.Summary.Total = len(result.Results)
	return result, nil
}

func (s *Service) classifyOne(ctx context.Context, freelancer FreelancerRef, since time.Time, cfg Config, autoApply bool, changedBy string) BulkItem {
	item := BulkItem{FreelancerID: freelancer.ID, Name: freelancer.Name}

	scores, err := s.store.OverallScores(ctx, freelancer.ID, since)
	if err != nil {
		item.Status = OutcomeError
		item.Error = err.Error()
		return item
	}

	calc, err := Classify(scores, TierGrade{Tier: freelancer.Tier, Grade: freelancer.Grade}, cfg)
	if errors.Is(err, ErrNoData) {
		item.Status = OutcomeSkipped
		item.Reason = "No performance records with scores"
		return item
	}
	if err != nil {
		item.Status = OutcomeError
		item.Error = err.Error()
		return item
	}

	item.From = fmt.Sprintf("%s-%s", calc.Current.Tier, calc.Current.Grade)
	item.To = fmt.Sprintf("%s-%s", calc.Recommended.Tier, calc.Recommended.Grade)
	item.AvgScore = calc.AvgScore
	item.Consistency = calc.Consistency

	if !calc.Changed {
		item.Status = OutcomeNoChange
		return item
	}

	if !autoApply {
		item.Status = OutcomeChangeDetected
		return item
	}

	if err := s.store.ApplyClassification(ctx, freelancer.ID, calc.Recommended.Tier, calc.Recommended.Grade, "Bulk performance-based update", changedBy); err != nil {
		item.Status = OutcomeError
		item.Error = err.Error()
		return item
	}
	item.Status = OutcomeUpdated
	return item
}

func (s *Service) Stats(ctx context.Context) (Stats, error) {
	return s.store.TierGradeCounts(ctx)
}

// loadConfig reads the threshold tables from system_config, falling back
// to the seeded defaults when a key is missing or unparseable.
func (s *Service) loadConfig(ctx context.Context) Config {
	cfg := DefaultConfig()

	if raw, err := s.cfg.Value(ctx, settings.KeyTierThresholds); err == nil {
		if cutoffs, err := settings.ParseTierCutoffs(raw); err == nil {
			cfg.TierCutoffs = cutoffs
		} else {
			slog.Warn("tier thresholds config invalid, using defaults", "err", err)
		}
	} else if !errors.Is(err, settings.ErrNotFound) {
		slog.Warn("tier thresholds config lookup failed", "err", err)
	}

	if raw, err := s.cfg.Value(ctx, settings.KeyGradeThresholds); err == nil {
		if cutoffs, err := settings.ParseGradeCutoffs(raw); err == nil {
			cfg.GradeCutoffs = cutoffs
		} else {
			slog.Warn("grade thresholds config invalid, using defaults", "err", err)
		}
	} else if !errors.Is(err, settings.ErrNotFound) {
		slog.Warn("grade thresholds config lookup failed", "err", err)
	}

	return cfg
}

func normalizePeriod(period string) string {
	if period == "" {
		return PeriodAll
	}
	return period
}

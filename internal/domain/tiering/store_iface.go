package tiering

import (
	"context"
	"time"
)

type StoreAPI interface {
	// OverallScores returns the non-null overall scores of a freelancer's
	// performance records on or after since; a zero since means all time.
	OverallScores(ctx context.Context, freelancerID string, since time.Time) ([]float64, error)
	GetFreelancer(ctx context.Context, freelancerID string) (FreelancerRef, error)
	ListActiveFreelancers(ctx context.Context) ([]FreelancerRef, error)
	// ApplyClassification updates the stored tier/grade inside a single
	// transaction, recording a tier_history row when anything changed.
	ApplyClassification(ctx context.Context, freelancerID, tier, grade, reason, changedBy string) error
	TierGradeCounts(ctx context.Context) (Stats, error)
}

type ConfigAPI interface {
	Value(ctx context.Context, key string) (string, error)
}

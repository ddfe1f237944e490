package payment

import (
	"context"
	"time"
)

type StoreAPI interface {
	WorkRecords(ctx context.Context, freelancerID string, from, to time.Time) ([]WorkRecord, error)
	ProjectRatesByID(ctx context.Context, ids []string) (map[string]ProjectRates, error)
	// AssignmentRoles resolves the freelancer's role on each project,
	// considering only assignments that are not removed and whose dates
	// overlap the period. Projects with no qualifying assignment are
	// absent from the map.
	AssignmentRoles(ctx context.Context, freelancerID string, projectIDs []string, from, to time.Time) (map[string]string, error)

	Insert(ctx context.Context, in CreateInput, totals Calculation, currency string) (Payment, error)
	Get(ctx context.Context, id string) (Payment, error)
	List(ctx context.Context, f ListFilter) ([]Payment, int, error)
	UpdateStatus(ctx context.Context, id string, upd StatusUpdate) (Payment, error)
	Delete(ctx context.Context, id string) error
	Stats(ctx context.Context, year int) (Stats, error)
	FreelancerName(ctx context.Context, freelancerID string) (string, error)
}

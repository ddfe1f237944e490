package performance

import "context"

type StoreAPI interface {
	Insert(ctx context.Context, r Record) (Record, error)
	Get(ctx context.Context, id string) (Record, error)
	List(ctx context.Context, f ListFilter) ([]Record, int, error)
	Update(ctx context.Context, r Record) (Record, error)
	Delete(ctx context.Context, id string) error
	FreelancerStats(ctx context.Context, freelancerID string) (FreelancerStats, error)
}

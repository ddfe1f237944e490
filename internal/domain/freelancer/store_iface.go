package freelancer

import "context"

type StoreAPI interface {
	Insert(ctx context.Context, f Freelancer) (Freelancer, error)
	Get(ctx context.Context, id string) (Freelancer, error)
	GetByUserID(ctx context.Context, userID string) (Freelancer, error)
	List(ctx context.Context, f ListFilter) ([]Freelancer, int, error)
	Update(ctx context.Context, f Freelancer) (Freelancer, error)
	SetStatus(ctx context.Context, id, status string) error
	TierHistory(ctx context.Context, freelancerID string) ([]TierChange, error)
	NextRosterSeq(ctx context.Context) (int, error)
}

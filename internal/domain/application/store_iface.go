package application

import "context"

// AcceptData is everything the store needs to convert an application
// inside one transaction.
type AcceptData struct {
	ApplicationID string
	ReviewerID    string
	PasswordHash  string
	RosterID      string
	RoleID        string
}

type StoreAPI interface {
	Insert(ctx context.Context, a Application) (Application, error)
	Get(ctx context.Context, id string) (Application, error)
	List(ctx context.Context, f ListFilter) ([]Application, int, error)
	SetStatus(ctx context.Context, id, status, reviewerID, reason string) error
	Accept(ctx context.Context, data AcceptData) (AcceptResult, error)
	Stats(ctx context.Context) (Stats, error)
	NextRosterSeq(ctx context.Context) (int, error)
}

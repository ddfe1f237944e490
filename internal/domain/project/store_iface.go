package project

import "context"

type ListFilter struct {
	Status string
	Search string
	Limit  int
	Offset int
}

type StoreAPI interface {
	Insert(ctx context.Context, p Project) (Project, error)
	Get(ctx context.Context, id string) (Project, error)
	List(ctx context.Context, f ListFilter) ([]Project, int, error)
	Update(ctx context.Context, p Project) (Project, error)
	Delete(ctx context.Context, id string) error

	Assign(ctx context.Context, a Assignment) (Assignment, error)
	Assignments(ctx context.Context, projectID string) ([]Assignment, error)
	FreelancerAssignments(ctx context.Context, freelancerID string) ([]Assignment, error)
	UpdateAssignment(ctx context.Context, a Assignment) (Assignment, error)
	RemoveAssignment(ctx context.Context, id string) error
}

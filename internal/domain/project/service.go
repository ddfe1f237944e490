package project

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
)

type Service struct {
	store StoreAPI
}

func NewService(store StoreAPI) *Service {
	return &Service{store: store}
}

// Create validates the rate card against the payment model before
// persisting. A project whose model has no usable rate would only
// produce calculation gaps later.
func (s *Service) Create(ctx context.Context, p Project) (Project, error) {
	p.Code = strings.ToUpper(strings.TrimSpace(p.Code))
	if !ValidPaymentModel(p.PaymentModel) {
		return Project{}, ErrInvalidModel
	}
	if err := checkRates(p); err != nil {
		return Project{}, err
	}
	if p.Status == "" {
		p.Status = StatusPlanned
	}
	saved, err := s.store.Insert(ctx, p)
	if err != nil {
		return Project{}, err
	}
	slog.Info("project created", "projectId", saved.ID, "code", saved.Code, "model", saved.PaymentModel)
	return saved, nil
}

func (s *Service) Get(ctx context.Context, id string) (Project, error) {
	return s.store.Get(ctx, id)
}

func (s *Service) List(ctx context.Context, f ListFilter) ([]Project, int, error) {
	return s.store.List(ctx, f)
}

func (s *Service) Update(ctx context.Context, p Project) (Project, error) {
	if !ValidPaymentModel(p.PaymentModel) {
		return Project{}, ErrInvalidModel
	}
	if err := checkRates(p); err != nil {
		return Project{}, err
	}
	return s.store.Update(ctx, p)
}

func (s *Service) Delete(ctx context.Context, id string) error {
	return s.store.Delete(ctx, id)
}

// Assign adds a freelancer to a project. One active assignment per
// freelancer and project; the unique constraint backs this up.
func (s *Service) Assign(ctx context.Context, a Assignment) (Assignment, error) {
	if !ValidRole(a.Role) {
		return Assignment{}, ErrInvalidRole
	}
	if a.Status == "" {
		a.Status = AssignmentActive
	}
	if _, err := s.store.Get(ctx, a.ProjectID); err != nil {
		return Assignment{}, err
	}
	saved, err := s.store.Assign(ctx, a)
	if err != nil {
		return Assignment{}, err
	}
	slog.Info("freelancer assigned", "projectId", a.ProjectID, "freelancerId", a.FreelancerID, "role", a.Role)
	return saved, nil
}

func (s *Service) Assignments(ctx context.Context, projectID string) ([]Assignment, error) {
	return s.store.Assignments(ctx, projectID)
}

func (s *Service) FreelancerAssignments(ctx context.Context, freelancerID string) ([]Assignment, error) {
	return s.store.FreelancerAssignments(ctx, freelancerID)
}

func (s *Service) UpdateAssignment(ctx context.Context, a Assignment) (Assignment, error) {
	if a.Role != "" && !ValidRole(a.Role) {
		return Assignment{}, ErrInvalidRole
	}
	return s.store.UpdateAssignment(ctx, a)
}

func (s *Service) RemoveAssignment(ctx context.Context, id string) error {
	return s.store.RemoveAssignment(ctx, id)
}

func checkRates(p Project) error {
	has := func(rates ...*float64) bool {
		for _, r := range rates {
			if r != nil && *r > 0 {
				return true
			}
		}
		return false
	}
	switch p.PaymentModel {
	case PaymentModelHourly:
		if !has(p.HourlyRateAnnotation, p.HourlyRateReview) {
			return fmt.Errorf("%w: hourly", ErrMissingRate)
		}
	case PaymentModelPerAsset:
		if !has(p.PerAssetRateAnnotation, p.PerAssetRateReview) {
			return fmt.Errorf("%w: per asset", ErrMissingRate)
		}
	case PaymentModelPerObject:
		if !has(p.PerObjectRateAnnotation, p.PerObjectRateReview) {
			return fmt.Errorf("%w: per object", ErrMissingRate)
		}
	}
	return nil
}

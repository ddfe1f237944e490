package project

import (
	"context"
	"errors"
	"fmt"
	"testing"
)

func fp(v float64) *float64 { return &v }

type fakeProjectStore struct {
	projects    map[string]Project
	assignments map[string]Assignment
	nextID      int
}

func newFakeProjectStore() *fakeProjectStore {
	return &fakeProjectStore{projects: map[string]Project{}, assignments: map[string]Assignment{}}
}

func (f *fakeProjectStore) id(prefix string) string {
	f.nextID++
	return fmt.Sprintf("%s-%d", prefix, f.nextID)
}

func (f *fakeProjectStore) Insert(_ context.Context, p Project) (Project, error) {
	for _, existing := range f.projects {
		if existing.Code == p.Code {
			return Project{}, ErrDuplicateCode
		}
	}
	p.ID = f.id("proj")
	f.projects[p.ID] = p
	return p, nil
}

func (f *fakeProjectStore) Get(_ context.Context, id string) (Project, error) {
	p, ok := f.projects[id]
	if !ok {
		return Project{}, ErrNotFound
	}
	return p, nil
}

func (f *fakeProjectStore) List(_ context.Context, _ ListFilter) ([]Project, int, error) {
	var out []Project
	for _, p := range f.projects {
		out = append(out, p)
	}
	return out, len(out), nil
}

func (f *fakeProjectStore) Update(_ context.Context, p Project) (Project, error) {
	if _, ok := f.projects[p.ID]; !ok {
		return Project{}, ErrNotFound
	}
	f.projects[p.ID] = p
	return p, nil
}

func (f *fakeProjectStore) Delete(_ context.Context, id string) error {
	if _, ok := f.projects[id]; !ok {
		return ErrNotFound
	}
	delete(f.projects, id)
	return nil
}

func (f *fakeProjectStore) Assign(_ context.Context, a Assignment) (Assignment, error) {
	for _, existing := range f.assignments {
		if existing.ProjectID == a.ProjectID && existing.FreelancerID == a.FreelancerID {
			return Assignment{}, ErrAlreadyAssigned
		}
	}
	a.ID = f.id("asg")
	f.assignments[a.ID] = a
	return a, nil
}

func (f *fakeProjectStore) Assignments(_ context.Context, projectID string) ([]Assignment, error) {
	var out []Assignment
	for _, a := range f.assignments {
		if a.ProjectID == projectID {
			out = append(out, a)
		}
	}
	return out, nil
}

func (f *fakeProjectStore) FreelancerAssignments(_ context.Context, freelancerID string) ([]Assignment, error) {
	var out []Assignment
	for _, a := range f.assignments {
		if a.FreelancerID == freelancerID {
			out = append(out, a)
		}
	}
	return out, nil
}

func (f *fakeProjectStore) UpdateAssignment(_ context.Context, a Assignment) (Assignment, error) {
	if _, ok := f.assignments[a.ID]; !ok {
		return Assignment{}, ErrAssignmentNotFound
	}
	f.assignments[a.ID] = a
	return a, nil
}

func (f *fakeProjectStore) RemoveAssignment(_ context.Context, id string) error {
	if _, ok := f.assignments[id]; !ok {
		return ErrAssignmentNotFound
	}
	delete(f.assignments, id)
	return nil
}

func TestCreateValidatesRateCard(t *testing.T) {
	svc := NewService(newFakeProjectStore())

	_, err := svc.Create(context.Background(), Project{
		Code: "lidar-01", Name: "Lidar", PaymentModel: PaymentModelPerAsset,
	})
	if !errors.Is(err, ErrMissingRate) {
		t.Fatalf("model without matching rate should fail, got %v", err)
	}

	p, err := svc.Create(context.Background(), Project{
		Code: "lidar-01", Name: "Lidar",
		PaymentModel: PaymentModelPerAsset, PerAssetRateAnnotation: fp(2.5),
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if p.Code != "LIDAR-01" {
		t.Errorf("code should be upper-cased, got %q", p.Code)
	}
	if p.Status != StatusPlanned {
		t.Errorf("default status should be PLANNED, got %q", p.Status)
	}
}

func TestCreateRejectsUnknownModel(t *testing.T) {
	svc := NewService(newFakeProjectStore())
	_, err := svc.Create(context.Background(), Project{Code: "X", Name: "X", PaymentModel: "SALARY"})
	if !errors.Is(err, ErrInvalidModel) {
		t.Fatalf("expected ErrInvalidModel, got %v", err)
	}
}

func TestAssignLifecycle(t *testing.T) {
	store := newFakeProjectStore()
	svc := NewService(store)

	p, err := svc.Create(context.Background(), Project{
		Code: "SEG-1", Name: "Segmentation",
		PaymentModel: PaymentModelHourly, HourlyRateAnnotation: fp(20),
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	if _, err := svc.Assign(context.Background(), Assignment{
		ProjectID: p.ID, FreelancerID: "f1", Role: "MANAGER",
	}); !errors.Is(err, ErrInvalidRole) {
		t.Fatalf("bad role should fail, got %v", err)
	}

	a, err := svc.Assign(context.Background(), Assignment{
		ProjectID: p.ID, FreelancerID: "f1", Role: RoleAnnotation,
	})
	if err != nil {
		t.Fatalf("Assign: %v", err)
	}
	if a.Status != AssignmentActive {
		t.Errorf("default assignment status should be ACTIVE, got %q", a.Status)
	}

	if _, err := svc.Assign(context.Background(), Assignment{
		ProjectID: p.ID, FreelancerID: "f1", Role: RoleReview,
	}); !errors.Is(err, ErrAlreadyAssigned) {
		t.Errorf("double assignment should fail, got %v", err)
	}

	if _, err := svc.Assign(context.Background(), Assignment{
		ProjectID: "missing", FreelancerID: "f2", Role: RoleReview,
	}); !errors.Is(err, ErrNotFound) {
		t.Errorf("assignment to missing project should fail, got %v", err)
	}
}

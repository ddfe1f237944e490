package application

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"
)

type fakeAppStore struct {
	apps   map[string]Application
	seq    int
	nextID int

	accepted []AcceptData
}

func newFakeAppStore() *fakeAppStore {
	return &fakeAppStore{apps: map[string]Application{}}
}

func (f *fakeAppStore) Insert(_ context.Context, a Application) (Application, error) {
	for _, existing := range f.apps {
		if existing.Email == a.Email {
			return Application{}, ErrDuplicateEmail
		}
	}
	f.nextID++
	a.ID = fmt.Sprintf("app-%d", f.nextID)
	a.CreatedAt = time.Now()
	f.apps[a.ID] = a
	return a, nil
}

func (f *fakeAppStore) Get(_ context.Context, id string) (Application, error) {
	a, ok := f.apps[id]
	if !ok {
		return Application{}, ErrNotFound
	}
	return a, nil
}

func (f *fakeAppStore) List(_ context.Context, _ ListFilter) ([]Application, int, error) {
	var out []Application
	for _, a := range f.apps {
		out = append(out, a)
	}
	return out, len(out), nil
}

func (f *fakeAppStore) SetStatus(_ context.Context, id, status, reviewerID, reason string) error {
	a, ok := f.apps[id]
	if !ok {
		return ErrNotFound
	}
	a.Status = status
	a.ReviewedBy = reviewerID
	a.RejectionReason = reason
	f.apps[id] = a
	return nil
}

func (f *fakeAppStore) Accept(_ context.Context, data AcceptData) (AcceptResult, error) {
	a, ok := f.apps[data.ApplicationID]
	if !ok {
		return AcceptResult{}, ErrNotFound
	}
	if Terminal(a.Status) {
		return AcceptResult{}, ErrAlreadyReviewed
	}
	a.Status = StatusAccepted
	f.apps[data.ApplicationID] = a
	f.accepted = append(f.accepted, data)
	return AcceptResult{
		FreelancerID: "f-1",
		RosterID:     data.RosterID,
		UserID:       "u-1",
		Email:        a.Email,
	}, nil
}

func (f *fakeAppStore) Stats(_ context.Context) (Stats, error) {
	return Stats{}, nil
}

func (f *fakeAppStore) NextRosterSeq(_ context.Context) (int, error) {
	f.seq++
	return f.seq, nil
}

type fakeMailer struct {
	received []string
	accepted []string
	rejected []string
	err      error
}

func (m *fakeMailer) SendApplicationReceived(_ context.Context, to, _ string) error {
	m.received = append(m.received, to)
	return m.err
}

func (m *fakeMailer) SendApplicationAccepted(_ context.Context, to, _, _ string) error {
	m.accepted = append(m.accepted, to)
	return m.err
}

func (m *fakeMailer) SendApplicationRejected(_ context.Context, to, _, _ string) error {
	m.rejected = append(m.rejected, to)
	return m.err
}

type fakeRoles struct{}

func (fakeRoles) RoleID(_ context.Context, name string) (string, error) {
	return "role-" + name, nil
}

func submit(t *testing.T, svc *Service) Application {
	t.Helper()
	a, err := svc.Submit(context.Background(), Application{
		FirstName: "Lena", LastName: "Petrov", Email: "LENA@example.com",
	})
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	return a
}

func TestSubmitNormalizesAndNotifies(t *testing.T) {
	mailer := &fakeMailer{}
	svc := NewService(newFakeAppStore(), mailer, fakeRoles{})

	a := submit(t, svc)
	if a.Status != StatusPending {
		t.Errorf("new application should be PENDING, got %s", a.Status)
	}
	if a.Email != "lena@example.com" {
		t.Errorf("email not normalized: %q", a.Email)
	}
	if len(mailer.received) != 1 {
		t.Errorf("confirmation email not sent")
	}
}

func TestSubmitValidatesRequired(t *testing.T) {
	svc := NewService(newFakeAppStore(), nil, fakeRoles{})
	if _, err := svc.Submit(context.Background(), Application{FirstName: "X"}); !errors.Is(err, ErrMissingRequired) {
		t.Errorf("expected ErrMissingRequired, got %v", err)
	}
}

func TestReviewPipeline(t *testing.T) {
	store := newFakeAppStore()
	mailer := &fakeMailer{}
	svc := NewService(store, mailer, fakeRoles{})
	a := submit(t, svc)

	if _, err := svc.Review(context.Background(), a.ID, StatusAccepted, "admin", ""); !errors.Is(err, ErrBadTransition) {
		t.Errorf("accepting via Review should be refused, got %v", err)
	}

	got, err := svc.Review(context.Background(), a.ID, StatusShortlisted, "admin", "")
	if err != nil {
		t.Fatalf("shortlist: %v", err)
	}
	if got.Status != StatusShortlisted {
		t.Errorf("expected SHORTLISTED, got %s", got.Status)
	}

	if _, err := svc.Review(context.Background(), a.ID, StatusPending, "admin", ""); !errors.Is(err, ErrBadTransition) {
		t.Errorf("moving backwards should fail, got %v", err)
	}

	got, err = svc.Review(context.Background(), a.ID, StatusRejected, "admin", "")
	if err != nil {
		t.Fatalf("reject: %v", err)
	}
	if got.RejectionReason == "" {
		t.Errorf("rejection should carry a default reason")
	}
	if len(mailer.rejected) != 1 {
		t.Errorf("rejection email not sent")
	}

	if _, err := svc.Review(context.Background(), a.ID, StatusInterview, "admin", ""); !errors.Is(err, ErrAlreadyReviewed) {
		t.Errorf("terminal application should refuse review, got %v", err)
	}
}

func TestAcceptCreatesAccounts(t *testing.T) {
	store := newFakeAppStore()
	mailer := &fakeMailer{}
	svc := NewService(store, mailer, fakeRoles{})
	a := submit(t, svc)

	res, err := svc.Accept(context.Background(), a.ID, "admin")
	if err != nil {
		t.Fatalf("Accept: %v", err)
	}
	if res.RosterID != "FL-00001" {
		t.Errorf("expected roster ID FL-00001, got %q", res.RosterID)
	}
	if len(store.accepted) != 1 {
		t.Fatalf("store.Accept not called")
	}
	if store.accepted[0].PasswordHash == "" || store.accepted[0].RoleID != "role-FREELANCER" {
		t.Errorf("accept data incomplete: %+v", store.accepted[0])
	}
	if len(mailer.accepted) != 1 {
		t.Errorf("acceptance email not sent")
	}
	if res.TemporaryPassword != "" {
		t.Errorf("password should not be returned when the email went out")
	}

	if _, err := svc.Accept(context.Background(), a.ID, "admin"); !errors.Is(err, ErrAlreadyReviewed) {
		t.Errorf("double accept should fail, got %v", err)
	}
}

func TestAcceptReturnsPasswordWithoutMailer(t *testing.T) {
	svc := NewService(newFakeAppStore(), nil, fakeRoles{})
	a := submit(t, svc)

	res, err := svc.Accept(context.Background(), a.ID, "admin")
	if err != nil {
		t.Fatalf("Accept: %v", err)
	}
	if res.TemporaryPassword == "" {
		t.Errorf("without a mailer the password must be surfaced")
	}
}

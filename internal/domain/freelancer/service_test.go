package freelancer

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"flm/internal/domain/tiering"
	"flm/internal/platform/crypto"
)

type fakeFreelancerStore struct {
	rows   map[string]Freelancer
	seq    int
	nextID int
}

func newFakeFreelancerStore() *fakeFreelancerStore {
	return &fakeFreelancerStore{rows: map[string]Freelancer{}}
}

func (f *fakeFreelancerStore) Insert(_ context.Context, fl Freelancer) (Freelancer, error) {
	for _, existing := range f.rows {
		if existing.Email == fl.Email {
			return Freelancer{}, ErrDuplicateEmail
		}
	}
	f.nextID++
	fl.ID = fmt.Sprintf("f-%d", f.nextID)
	f.rows[fl.ID] = fl
	return fl, nil
}

func (f *fakeFreelancerStore) Get(_ context.Context, id string) (Freelancer, error) {
	fl, ok := f.rows[id]
	if !ok {
		return Freelancer{}, ErrNotFound
	}
	return fl, nil
}

func (f *fakeFreelancerStore) GetByUserID(_ context.Context, userID string) (Freelancer, error) {
	for _, fl := range f.rows {
		if fl.UserID == userID {
			return fl, nil
		}
	}
	return Freelancer{}, ErrNotFound
}

func (f *fakeFreelancerStore) List(_ context.Context, _ ListFilter) ([]Freelancer, int, error) {
	var out []Freelancer
	for _, fl := range f.rows {
		out = append(out, fl)
	}
	return out, len(out), nil
}

func (f *fakeFreelancerStore) Update(_ context.Context, fl Freelancer) (Freelancer, error) {
	if _, ok := f.rows[fl.ID]; !ok {
		return Freelancer{}, ErrNotFound
	}
	f.rows[fl.ID] = fl
	return fl, nil
}

func (f *fakeFreelancerStore) SetStatus(_ context.Context, id, status string) error {
	fl, ok := f.rows[id]
	if !ok {
		return ErrNotFound
	}
	fl.Status = status
	f.rows[id] = fl
	return nil
}

func (f *fakeFreelancerStore) TierHistory(_ context.Context, _ string) ([]TierChange, error) {
	return nil, nil
}

func (f *fakeFreelancerStore) NextRosterSeq(_ context.Context) (int, error) {
	f.seq++
	return f.seq, nil
}

func testCipher(t *testing.T) *crypto.Service {
	t.Helper()
	svc, err := crypto.New("0123456789abcdef0123456789abcdef0123456789abcdef0123456789abcdef")
	if err != nil {
		t.Fatalf("crypto.New: %v", err)
	}
	return svc
}

func TestCreateDefaultsAndRosterID(t *testing.T) {
	store := newFakeFreelancerStore()
	svc := NewService(store, testCipher(t))

	f, err := svc.Create(context.Background(), Freelancer{
		FirstName: "Amara", LastName: "Mensah", Email: "Amara@Example.com ",
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if f.RosterID != "FL-00001" {
		t.Errorf("expected roster ID FL-00001, got %q", f.RosterID)
	}
	if f.Email != "amara@example.com" {
		t.Errorf("email not normalized: %q", f.Email)
	}
	if f.Status != StatusActive || f.CurrentTier != tiering.TierBronze || f.CurrentGrade != tiering.GradeC {
		t.Errorf("entry defaults not applied: %s %s %s", f.Status, f.CurrentTier, f.CurrentGrade)
	}
}

func TestPayoutAccountEncryptedAtRest(t *testing.T) {
	store := newFakeFreelancerStore()
	svc := NewService(store, testCipher(t))

	f, err := svc.Create(context.Background(), Freelancer{
		FirstName: "Noor", LastName: "Haddad", Email: "noor@example.com",
		PayoutAccount: "ACC-1234-5678",
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if f.PayoutAccount != "ACC-1234-5678" {
		t.Errorf("caller should see the plaintext back, got %q", f.PayoutAccount)
	}

	stored := store.rows[f.ID]
	if stored.PayoutAccount == "" || strings.Contains(stored.PayoutAccount, "ACC-1234") {
		t.Errorf("stored payout account is not encrypted: %q", stored.PayoutAccount)
	}

	got, err := svc.Get(context.Background(), f.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.PayoutAccount != "ACC-1234-5678" {
		t.Errorf("Get should decrypt, got %q", got.PayoutAccount)
	}
}

func TestListHidesPayoutAccounts(t *testing.T) {
	store := newFakeFreelancerStore()
	svc := NewService(store, testCipher(t))
	if _, err := svc.Create(context.Background(), Freelancer{
		FirstName: "A", LastName: "B", Email: "a@example.com", PayoutAccount: "SECRET",
	}); err != nil {
		t.Fatalf("Create: %v", err)
	}

	list, _, err := svc.List(context.Background(), ListFilter{})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	for _, fl := range list {
		if fl.PayoutAccount != "" {
			t.Errorf("listing leaked a payout account")
		}
	}
}

func TestSetStatusValidates(t *testing.T) {
	store := newFakeFreelancerStore()
	svc := NewService(store, nil)
	f, err := svc.Create(context.Background(), Freelancer{
		FirstName: "C", LastName: "D", Email: "c@example.com",
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	if err := svc.SetStatus(context.Background(), f.ID, "RETIRED"); !errors.Is(err, ErrInvalidStatus) {
		t.Errorf("unknown status should fail, got %v", err)
	}
	if err := svc.SetStatus(context.Background(), f.ID, StatusEngaged); err != nil {
		t.Errorf("SetStatus: %v", err)
	}
	if store.rows[f.ID].Status != StatusEngaged {
		t.Errorf("status not persisted")
	}
}

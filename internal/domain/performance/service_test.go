package performance

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"
)

type fakeRecordStore struct {
	records map[string]Record
	nextID  int
}

func newFakeRecordStore() *fakeRecordStore {
	return &fakeRecordStore{records: map[string]Record{}}
}

func (f *fakeRecordStore) Insert(_ context.Context, r Record) (Record, error) {
	f.nextID++
	r.ID = fmt.Sprintf("rec-%d", f.nextID)
	f.records[r.ID] = r
	return r, nil
}

func (f *fakeRecordStore) Get(_ context.Context, id string) (Record, error) {
	r, ok := f.records[id]
	if !ok {
		return Record{}, ErrNotFound
	}
	return r, nil
}

func (f *fakeRecordStore) List(_ context.Context, _ ListFilter) ([]Record, int, error) {
	var out []Record
	for _, r := range f.records {
		out = append(out, r)
	}
	return out, len(out), nil
}

func (f *fakeRecordStore) Update(_ context.Context, r Record) (Record, error) {
	if _, ok := f.records[r.ID]; !ok {
		return Record{}, ErrNotFound
	}
	f.records[r.ID] = r
	return r, nil
}

func (f *fakeRecordStore) Delete(_ context.Context, id string) error {
	if _, ok := f.records[id]; !ok {
		return ErrNotFound
	}
	delete(f.records, id)
	return nil
}

func (f *fakeRecordStore) FreelancerStats(_ context.Context, _ string) (FreelancerStats, error) {
	return FreelancerStats{}, nil
}

type captureNotifier struct {
	freelancerID string
	message      string
	err          error
}

func (c *captureNotifier) NotifyFreelancer(_ context.Context, freelancerID, _, message string) error {
	c.freelancerID = freelancerID
	c.message = message
	return c.err
}

func TestCreateDerivesTotalsAndNotifies(t *testing.T) {
	store := newFakeRecordStore()
	notifier := &captureNotifier{}
	svc := NewService(store, notifier)

	r := Record{
		FreelancerID: "f1",
		RecordType:   RecordWeekly,
		RecordDate:   time.Date(2026, 5, 10, 0, 0, 0, 0, time.UTC),
		ComResponsibility: fp(4), ComCommitment: fp(4), ComInitiative: fp(4),
		ComWillingness: fp(4), ComCommunication: fp(4),
		QualSpeed: fp(5), QualDelibOmission: fp(5), QualAccuracy: fp(5),
		QualAttention: fp(5), QualUnannotated: fp(5), QualUnderstanding: fp(5),
	}
	saved, err := svc.Create(context.Background(), r)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if saved.OverallScore == nil || *saved.OverallScore != 4.5 {
		t.Errorf("expected overall 4.5, got %v", saved.OverallScore)
	}
	if saved.Month != 5 || saved.Year != 2026 {
		t.Errorf("expected period 2026-05, got %d-%d", saved.Year, saved.Month)
	}
	if notifier.freelancerID != "f1" {
		t.Errorf("freelancer was not notified")
	}
}

func TestCreateNotificationFailureDoesNotFailWrite(t *testing.T) {
	store := newFakeRecordStore()
	svc := NewService(store, &captureNotifier{err: errors.New("smtp down")})

	_, err := svc.Create(context.Background(), Record{
		FreelancerID: "f1", RecordType: RecordDaily, ComCommitment: fp(3),
	})
	if err != nil {
		t.Fatalf("Create should survive a notifier error: %v", err)
	}
}

func TestCreateValidation(t *testing.T) {
	svc := NewService(newFakeRecordStore(), nil)

	if _, err := svc.Create(context.Background(), Record{RecordType: RecordDaily}); !errors.Is(err, ErrMissingRequired) {
		t.Errorf("missing freelancer should fail, got %v", err)
	}
	if _, err := svc.Create(context.Background(), Record{FreelancerID: "f1", RecordType: "HOURLY"}); !errors.Is(err, ErrInvalidType) {
		t.Errorf("bad record type should fail, got %v", err)
	}
	if _, err := svc.Create(context.Background(), Record{
		FreelancerID: "f1", RecordType: RecordDaily, QualSpeed: fp(6),
	}); !errors.Is(err, ErrInvalidScore) {
		t.Errorf("out-of-range score should fail, got %v", err)
	}
}

func TestUpdateRederivesTotals(t *testing.T) {
	store := newFakeRecordStore()
	svc := NewService(store, nil)

	saved, err := svc.Create(context.Background(), Record{
		FreelancerID: "f1", RecordType: RecordMonthly,
		RecordDate: time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC),
		QualSpeed:  fp(2), QualAccuracy: fp(2),
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	saved.QualSpeed = fp(4)
	saved.QualAccuracy = fp(4)
	updated, err := svc.Update(context.Background(), saved)
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if updated.QualTotal == nil || *updated.QualTotal != 4 {
		t.Errorf("qualTotal not re-derived, got %v", updated.QualTotal)
	}
	if updated.OverallScore == nil || *updated.OverallScore != 4 {
		t.Errorf("overall not re-derived, got %v", updated.OverallScore)
	}
}

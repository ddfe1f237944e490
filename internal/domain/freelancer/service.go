package freelancer

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"flm/internal/domain/tiering"
	"flm/internal/platform/crypto"
)

type Service struct {
	store  StoreAPI
	cipher *crypto.Service
}

func NewService(store StoreAPI, cipher *crypto.Service) *Service {
	return &Service{store: store, cipher: cipher}
}

// Create adds a freelancer to the roster with a fresh roster ID and the
// entry-level classification. The payout account, if provided, is
// encrypted before it reaches the database.
func (s *Service) Create(ctx context.Context, f Freelancer) (Freelancer, error) {
	f.Email = strings.ToLower(strings.TrimSpace(f.Email))
	if f.Status == "" {
		f.Status = StatusActive
	}
	if !ValidStatus(f.Status) {
		return Freelancer{}, ErrInvalidStatus
	}
	if f.Onboarding == "" {
		f.Onboarding = OnboardingPending
	}
	if f.CurrentTier == "" {
		f.CurrentTier = tiering.TierBronze
	}
	if f.CurrentGrade == "" {
		f.CurrentGrade = tiering.GradeC
	}

	seq, err := s.store.NextRosterSeq(ctx)
	if err != nil {
		return Freelancer{}, err
	}
	f.RosterID = fmt.Sprintf("FL-%05d", seq)

	if err := s.sealPayout(&f); err != nil {
		return Freelancer{}, err
	}
	saved, err := s.store.Insert(ctx, f)
	if err != nil {
		return Freelancer{}, err
	}
	s.openPayout(&saved)
	slog.Info("freelancer created", "freelancerId", saved.ID, "rosterId", saved.RosterID)
	return saved, nil
}

func (s *Service) Get(ctx context.Context, id string) (Freelancer, error) {
	f, err := s.store.Get(ctx, id)
	if err != nil {
		return Freelancer{}, err
	}
	s.openPayout(&f)
	return f, nil
}

func (s *Service) GetByUserID(ctx context.Context, userID string) (Freelancer, error) {
	f, err := s.store.GetByUserID(ctx, userID)
	if err != nil {
		return Freelancer{}, err
	}
	s.openPayout(&f)
	return f, nil
}

// List never decrypts payout accounts; the listing view has no use for
// them.
func (s *Service) List(ctx context.Context, f ListFilter) ([]Freelancer, int, error) {
	out, total, err := s.store.List(ctx, f)
	if err != nil {
		return nil, 0, err
	}
	for i := range out {
		out[i].PayoutAccount = ""
	}
	return out, total, nil
}

func (s *Service) Update(ctx context.Context, f Freelancer) (Freelancer, error) {
	if err := s.sealPayout(&f); err != nil {
		return Freelancer{}, err
	}
	saved, err := s.store.Update(ctx, f)
	if err != nil {
		return Freelancer{}, err
	}
	s.openPayout(&saved)
	return saved, nil
}

func (s *Service) SetStatus(ctx context.Context, id, status string) error {
	if !ValidStatus(status) {
		return ErrInvalidStatus
	}
	if err := s.store.SetStatus(ctx, id, status); err != nil {
		return err
	}
	slog.Info("freelancer status changed", "freelancerId", id, "status", status)
	return nil
}

func (s *Service) TierHistory(ctx context.Context, freelancerID string) ([]TierChange, error) {
	return s.store.TierHistory(ctx, freelancerID)
}

func (s *Service) sealPayout(f *Freelancer) error {
	if f.PayoutAccount == "" || s.cipher == nil || !s.cipher.Configured() {
		return nil
	}
	enc, err := s.cipher.EncryptString(f.PayoutAccount)
	if err != nil {
		return fmt.Errorf("encrypt payout account: %w", err)
	}
	f.PayoutAccount = enc
	return nil
}

func (s *Service) openPayout(f *Freelancer) {
	if f.PayoutAccount == "" || s.cipher == nil || !s.cipher.Configured() {
		return
	}
	dec, err := s.cipher.DecryptString(f.PayoutAccount)
	if err != nil {
		// Leave ciphertext hidden rather than exposing garbage.
		slog.Warn("payout account decrypt failed", "freelancerId", f.ID)
		f.PayoutAccount = ""
		return
	}
	f.PayoutAccount = dec
}

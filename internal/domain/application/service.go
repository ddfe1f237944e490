package application

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"log/slog"
	"strings"

	"flm/internal/domain/auth"
)

// Mailer sends intake emails. Failures are logged, never fatal.
type Mailer interface {
	SendApplicationReceived(ctx context.Context, to, firstName string) error
	SendApplicationAccepted(ctx context.Context, to, firstName, tempPassword string) error
	SendApplicationRejected(ctx context.Context, to, firstName, reason string) error
}

// RoleResolver looks up the role ID for newly created portal accounts.
type RoleResolver interface {
	RoleID(ctx context.Context, name string) (string, error)
}

type Service struct {
	store  StoreAPI
	mailer Mailer
	roles  RoleResolver
}

func NewService(store StoreAPI, mailer Mailer, roles RoleResolver) *Service {
	return &Service{store: store, mailer: mailer, roles: roles}
}

// Submit records a new application from the public apply form.
func (s *Service) Submit(ctx context.Context, a Application) (Application, error) {
	a.Email = strings.ToLower(strings.TrimSpace(a.Email))
	if a.FirstName == "" || a.LastName == "" || a.Email == "" {
		return Application{}, ErrMissingRequired
	}
	a.Status = StatusPending

	saved, err := s.store.Insert(ctx, a)
	if err != nil {
		return Application{}, err
	}
	slog.Info("application submitted", "applicationId", saved.ID, "email", saved.Email)

	if s.mailer != nil {
		if err := s.mailer.SendApplicationReceived(ctx, saved.Email, saved.FirstName); err != nil {
			slog.Warn("application received email failed", "applicationId", saved.ID, "error", err)
		}
	}
	return saved, nil
}

func (s *Service) Get(ctx context.Context, id string) (Application, error) {
	return s.store.Get(ctx, id)
}

func (s *Service) List(ctx context.Context, f ListFilter) ([]Application, int, error) {
	return s.store.List(ctx, f)
}

// Review moves an application through the pipeline. Accepting goes
// through Accept instead because it creates accounts.
func (s *Service) Review(ctx context.Context, id, newStatus, reviewerID, reason string) (Application, error) {
	app, err := s.store.Get(ctx, id)
	if err != nil {
		return Application{}, err
	}
	if Terminal(app.Status) {
		return Application{}, ErrAlreadyReviewed
	}
	if newStatus == StatusAccepted {
		return Application{}, fmt.Errorf("%w: use accept", ErrBadTransition)
	}
	if !CanTransition(app.Status, newStatus) {
		return Application{}, fmt.Errorf("%w: %s to %s", ErrBadTransition, app.Status, newStatus)
	}
	if newStatus == StatusRejected && reason == "" {
		reason = "Application did not meet requirements"
	}
	if err := s.store.SetStatus(ctx, id, newStatus, reviewerID, reason); err != nil {
		return Application{}, err
	}
	slog.Info("application reviewed", "applicationId", id, "status", newStatus, "reviewer", reviewerID)

	if newStatus == StatusRejected && s.mailer != nil {
		if err := s.mailer.SendApplicationRejected(ctx, app.Email, app.FirstName, reason); err != nil {
			slog.Warn("rejection email failed", "applicationId", id, "error", err)
		}
	}
	return s.store.Get(ctx, id)
}

// Accept converts an application into a portal user plus roster profile
// and issues a temporary password. The password only travels by email;
// the API response carries it solely when no mailer is configured.
func (s *Service) Accept(ctx context.Context, id, reviewerID string) (AcceptResult, error) {
	app, err := s.store.Get(ctx, id)
	if err != nil {
		return AcceptResult{}, err
	}
	if Terminal(app.Status) {
		return AcceptResult{}, ErrAlreadyReviewed
	}

	tempPassword, err := generatePassword()
	if err != nil {
		return AcceptResult{}, fmt.Errorf("generate password: %w", err)
	}
	hash, err := auth.HashPassword(tempPassword)
	if err != nil {
		return AcceptResult{}, fmt.Errorf("hash password: %w", err)
	}

	roleID, err := s.roles.RoleID(ctx, auth.RoleFreelancer)
	if err != nil {
		return AcceptResult{}, fmt.Errorf("resolve freelancer role: %w", err)
	}
	seq, err := s.store.NextRosterSeq(ctx)
	if err != nil {
		return AcceptResult{}, err
	}

	res, err := s.store.Accept(ctx, AcceptData{
		ApplicationID: id,
		ReviewerID:    reviewerID,
		PasswordHash:  hash,
		RosterID:      fmt.Sprintf("FL-%05d", seq),
		RoleID:        roleID,
	})
	if err != nil {
		return AcceptResult{}, err
	}
	slog.Info("application accepted", "applicationId", id, "freelancerId", res.FreelancerID, "rosterId", res.RosterID)

	if s.mailer != nil {
		if err := s.mailer.SendApplicationAccepted(ctx, res.Email, app.FirstName, tempPassword); err != nil {
			slog.Warn("acceptance email failed", "applicationId", id, "error", err)
			res.TemporaryPassword = tempPassword
		}
	} else {
		res.TemporaryPassword = tempPassword
	}
	return res, nil
}

func (s *Service) Stats(ctx context.Context) (Stats, error) {
	return s.store.Stats(ctx)
}

func generatePassword() (string, error) {
	buf := make([]byte, 12)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return "Tmp-" + base64.RawURLEncoding.EncodeToString(buf), nil
}

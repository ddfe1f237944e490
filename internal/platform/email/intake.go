package email

import (
	"context"
	"fmt"

	"flm/internal/domain/notifications"
)

// IntakeMailer renders the application lifecycle emails on top of the
// plain mailer.
type IntakeMailer struct {
	mailer notifications.Mailer
}

func NewIntakeMailer(mailer notifications.Mailer) *IntakeMailer {
	return &IntakeMailer{mailer: mailer}
}

func (m *IntakeMailer) SendApplicationReceived(ctx context.Context, to, firstName string) error {
	body := fmt.Sprintf(
		"Hi %s,\n\nThanks for applying. Our team reviews applications on a rolling basis and will be in touch.\n",
		firstName)
	return m.mailer.Send(ctx, to, "Application received", body)
}

func (m *IntakeMailer) SendApplicationAccepted(ctx context.Context, to, firstName, tempPassword string) error {
	body := fmt.Sprintf(
		"Hi %s,\n\nWelcome aboard. A portal account has been created for this address.\n\nTemporary password: %s\n\nPlease sign in and change it right away.\n",
		firstName, tempPassword)
	return m.mailer.Send(ctx, to, "Application accepted", body)
}

func (m *IntakeMailer) SendApplicationRejected(ctx context.Context, to, firstName, reason string) error {
	body := fmt.Sprintf(
		"Hi %s,\n\nThank you for your interest. We are not moving forward with your application at this time.\n\nReason: %s\n",
		firstName, reason)
	return m.mailer.Send(ctx, to, "Application update", body)
}

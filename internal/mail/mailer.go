package mail

import (
	"context"
	"fmt"
	"log"

	"github.com/resend/resend-go/v3"
)

// Mailer sends account lifecycle mail. Delivery is best-effort from the
// caller's point of view: failures are logged by the caller, never turned
// into authorization failures.
type Mailer interface {
	SendVerification(ctx context.Context, to, name, token string) error
	SendPasswordReset(ctx context.Context, to, name, token string) error
}

// ResendMailer delivers mail through the Resend API.
type ResendMailer struct {
	client  *resend.Client
	from    string
	hostURL string
}

// NewResendMailer creates a Resend-backed mailer.
func NewResendMailer(apiKey, from, hostURL string) *ResendMailer {
	return &ResendMailer{
		client:  resend.NewClient(apiKey),
		from:    from,
		hostURL: hostURL,
	}
}

// SendVerification implements Mailer.
func (m *ResendMailer) SendVerification(ctx context.Context, to, name, token string) error {
	link := fmt.Sprintf("%s/api/auth/verify/%s", m.hostURL, token)
	req := &resend.SendEmailRequest{
		From:    m.from,
		To:      []string{to},
		Subject: "Verify your forum account",
		Html: fmt.Sprintf(
			"<p>Hi %s,</p><p>Confirm your email address to activate your account:</p><p><a href=%q>%s</a></p><p>The link expires in 24 hours.</p>",
			name, link, link),
	}
	if _, err := m.client.Emails.SendWithContext(ctx, req); err != nil {
		return fmt.Errorf("resend: send verification mail: %w", err)
	}
	return nil
}

// SendPasswordReset implements Mailer.
func (m *ResendMailer) SendPasswordReset(ctx context.Context, to, name, token string) error {
	link := fmt.Sprintf("%s/reset-password?token=%s", m.hostURL, token)
	req := &resend.SendEmailRequest{
		From:    m.from,
		To:      []string{to},
		Subject: "Reset your forum password",
		Html: fmt.Sprintf(
			"<p>Hi %s,</p><p>Use the link below to choose a new password:</p><p><a href=%q>%s</a></p><p>The link expires in one hour. If you did not request this, ignore this mail.</p>",
			name, link, link),
	}
	if _, err := m.client.Emails.SendWithContext(ctx, req); err != nil {
		return fmt.Errorf("resend: send reset mail: %w", err)
	}
	return nil
}

// LogMailer writes mail to the process log instead of sending it. Used when
// no Resend API key is configured, typically local development.
type LogMailer struct{}

// SendVerification implements Mailer.
func (LogMailer) SendVerification(ctx context.Context, to, name, token string) error {
	log.Printf("mail (log only): verification for %s <%s>, token %s", name, to, token)
	return nil
}

// SendPasswordReset implements Mailer.
func (LogMailer) SendPasswordReset(ctx context.Context, to, name, token string) error {
	log.Printf("mail (log only): password reset for %s <%s>, token %s", name, to, token)
	return nil
}

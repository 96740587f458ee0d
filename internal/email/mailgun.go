package email

import (
	"context"
	"fmt"
	"time"

	"github.com/burnsbros/taskdeck/internal/config"
	"github.com/mailgun/mailgun-go/v4"
	"github.com/rs/zerolog/log"
)

// Sender delivers outbound application email
type Sender interface {
	SendInvitation(ctx context.Context, inv InvitationMail) error
}

// InvitationMail is the content of a workspace invitation email
type InvitationMail struct {
	To            string
	WorkspaceName string
	InviterName   string
	Message       string
	AcceptURL     string
}

// MailgunSender implements Sender via the Mailgun API
type MailgunSender struct {
	mg   *mailgun.MailgunImpl
	from string
}

// NewMailgunSender creates a sender from email configuration
func NewMailgunSender(cfg config.EmailConfig) *MailgunSender {
	return &MailgunSender{
		mg:   mailgun.NewMailgun(cfg.Domain, cfg.APIKey),
		from: cfg.From,
	}
}

// SendInvitation sends a workspace invitation email
func (s *MailgunSender) SendInvitation(ctx context.Context, inv InvitationMail) error {
	subject := fmt.Sprintf("%s invited you to %s", inv.InviterName, inv.WorkspaceName)

	body := fmt.Sprintf("%s has invited you to join the %s workspace.\n", inv.InviterName, inv.WorkspaceName)
	if inv.Message != "" {
		body += "\n" + inv.Message + "\n"
	}
	body += "\nAccept the invitation: " + inv.AcceptURL + "\n"

	message := s.mg.NewMessage(s.from, subject, body, inv.To)

	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	_, id, err := s.mg.Send(ctx, message)
	if err != nil {
		return fmt.Errorf("failed to send invitation email: %w", err)
	}

	log.Debug().Str("message_id", id).Str("to", inv.To).Msg("Invitation email queued")
	return nil
}

// NopSender drops all mail. Used when email is not configured and in tests.
type NopSender struct{}

func (NopSender) SendInvitation(ctx context.Context, inv InvitationMail) error {
	log.Warn().Str("to", inv.To).Msg("Email not configured, invitation not sent")
	return nil
}

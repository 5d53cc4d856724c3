package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/resend/resend-go/v2"
)

// EmailSender is the outgoing mail surface used by the auth flows.
type EmailSender interface {
	SendPasswordResetEmail(ctx context.Context, to, name, resetURL string) error
	SendWelcomeEmail(ctx context.Context, to, name string) error
}

type EmailService struct {
	client      *resend.Client
	fromEmail   string
	isDev       bool
	frontendURL string
	appName     string
}

func NewEmailService(apiKey, fromEmail, frontendURL, appName string, isDev bool) *EmailService {
	var client *resend.Client
	if apiKey != "" && !isDev {
		client = resend.NewClient(apiKey)
	}

	return &EmailService{
		client:      client,
		fromEmail:   fromEmail,
		isDev:       isDev,
		frontendURL: frontendURL,
		appName:     appName,
	}
}

func (s *EmailService) SendPasswordResetEmail(ctx context.Context, to, name, resetURL string) error {
	subject, html := passwordResetEmailTemplate(name, resetURL, s.appName)
	return s.send(ctx, "password_reset", to, subject, html, "url", resetURL)
}

func (s *EmailService) SendWelcomeEmail(ctx context.Context, to, name string) error {
	loginURL := s.frontendURL + "/login"
	subject, html := welcomeEmailTemplate(name, loginURL, s.appName)
	return s.send(ctx, "welcome", to, subject, html, "url", loginURL)
}

func (s *EmailService) send(ctx context.Context, kind, to, subject, html string, attrs ...any) error {
	if s.isDev {
		slog.Info("email sent (dev mode)", append([]any{"type", kind, "to", to, "subject", subject}, attrs...)...)
		return nil
	}

	if s.client == nil {
		return fmt.Errorf("email service not configured (missing RESEND_API_KEY)")
	}

	_, err := s.client.Emails.SendWithContext(ctx, &resend.SendEmailRequest{
		From:    s.fromEmail,
		To:      []string{to},
		Subject: subject,
		Html:    html,
	})
	if err != nil {
		return fmt.Errorf("failed to send %s email: %w", kind, err)
	}

	slog.Info("email sent", "type", kind, "to", to)
	return nil
}

package service

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wneessen/go-mail"

	"github.com/GoNotify/notigate/internal/config"
	"github.com/GoNotify/notigate/internal/model"
	"github.com/GoNotify/notigate/internal/templates"
)

type capturedMail struct {
	to      []string
	subject string
	body    string
}

func stubEmailService(t *testing.T, deliverErr error) (*EmailService, *[]capturedMail) {
	t.Helper()
	var sent []capturedMail
	svc := &EmailService{
		tmpl:     templates.Defaults(),
		from:     "noreply@example.com",
		fromName: "Notification Service",
		support:  "support@example.com",
		deliver: func(_ context.Context, msg *mail.Msg) error {
			if deliverErr != nil {
				return deliverErr
			}
			to, err := msg.GetRecipients()
			require.NoError(t, err)

			var subject string
			if vals := msg.GetGenHeader(mail.HeaderSubject); len(vals) > 0 {
				subject = vals[0]
			}

			parts := msg.GetParts()
			require.NotEmpty(t, parts)
			body, err := parts[0].GetContent()
			require.NoError(t, err)

			sent = append(sent, capturedMail{to: to, subject: subject, body: string(body)})
			return nil
		},
	}
	return svc, &sent
}

func TestSendNotificationVerificationEmail(t *testing.T) {
	svc, sent := stubEmailService(t, nil)

	out := svc.SendNotification(context.Background(), model.NotificationRequest{
		Email:    "user@example.com",
		Task:     model.TaskEmailVerification,
		Link:     "https://example.com/verify?token=abc123",
		UserName: "Alice",
	})

	assert.True(t, out.Success)
	assert.Equal(t, "Email sent successfully", out.Message)
	assert.Equal(t, "user@example.com", out.Email)

	require.Len(t, *sent, 1)
	msg := (*sent)[0]
	assert.Equal(t, []string{"user@example.com"}, msg.to)
	assert.Equal(t, "Please verify your email address", msg.subject)
	assert.Contains(t, msg.body, "Verify your email address")
	assert.Contains(t, msg.body, "https://example.com/verify?token=abc123")
	assert.Contains(t, msg.body, "Alice")
}

func TestSendNotificationChangePassword(t *testing.T) {
	svc, sent := stubEmailService(t, nil)

	out := svc.SendNotification(context.Background(), model.NotificationRequest{
		Email:   "user@example.com",
		Task:    model.TaskChangePassword,
		Link:    "https://example.com/reset?token=xyz",
		Subject: "Reset requested",
	})

	assert.True(t, out.Success)
	require.Len(t, *sent, 1)
	msg := (*sent)[0]
	assert.Equal(t, "Reset requested", msg.subject)
	assert.Contains(t, msg.body, "Password change requested")
	assert.Contains(t, msg.body, "https://example.com/reset?token=xyz")
}

func TestSendNotificationUnknownTaskFallsBack(t *testing.T) {
	svc, sent := stubEmailService(t, nil)

	out := svc.SendNotification(context.Background(), model.NotificationRequest{
		Email: "user@example.com",
		Task:  model.NotificationTask("newsletter"),
		Link:  "https://example.com/x",
	})

	assert.True(t, out.Success)
	require.Len(t, *sent, 1)
	assert.Contains(t, (*sent)[0].body, "Verify your email address")
}

func TestSendNotificationDeliveryFailure(t *testing.T) {
	svc, _ := stubEmailService(t, errors.New("dial tcp: connection refused"))

	out := svc.SendNotification(context.Background(), model.NotificationRequest{
		Email: "user@example.com",
		Task:  model.TaskEmailVerification,
		Link:  "https://example.com/x",
	})

	assert.False(t, out.Success)
	assert.Contains(t, out.Message, "Failed to send email")
	assert.Contains(t, out.Message, "connection refused")
	assert.Equal(t, "user@example.com", out.Email)
}

func TestSendSupportTicketBothLegs(t *testing.T) {
	svc, sent := stubEmailService(t, nil)

	result := svc.SendSupportTicket(context.Background(), model.SupportTicketRequest{
		TicketID:  "TCK-1042",
		UserEmail: "user@example.com",
		UserName:  "Bob",
		Subject:   "Cannot log in",
		Message:   "The reset link never arrives.",
		Priority:  "high",
	})

	assert.True(t, result.Success())
	assert.True(t, result.User.Success)
	assert.True(t, result.Support.Success)
	assert.Equal(t, "user@example.com", result.User.Email)
	assert.Equal(t, "support@example.com", result.Support.Email)

	require.Len(t, *sent, 2)
	confirmation, alert := (*sent)[0], (*sent)[1]
	assert.Equal(t, []string{"user@example.com"}, confirmation.to)
	assert.Contains(t, confirmation.subject, "TCK-1042")
	assert.Contains(t, confirmation.body, "TCK-1042")

	assert.Equal(t, []string{"support@example.com"}, alert.to)
	assert.Equal(t, "[Ticket #TCK-1042] Cannot log in", alert.subject)
	assert.Contains(t, alert.body, "user@example.com")
	assert.Contains(t, alert.body, "high")
	assert.Contains(t, alert.body, "The reset link never arrives.")
}

func TestSendSupportTicketWithoutInbox(t *testing.T) {
	svc, sent := stubEmailService(t, nil)
	svc.support = ""

	result := svc.SendSupportTicket(context.Background(), model.SupportTicketRequest{
		TicketID:  "TCK-7",
		UserEmail: "user@example.com",
	})

	assert.False(t, result.Success())
	assert.True(t, result.User.Success)
	assert.False(t, result.Support.Success)
	assert.Contains(t, result.Support.Message, "not configured")
	require.Len(t, *sent, 1)
}

func TestRenderEscapesUserContent(t *testing.T) {
	svc, _ := stubEmailService(t, nil)

	html, err := svc.Render(templates.SupportTicketConfirmation, supportTicketData{
		TicketID: "TCK-9",
		Message:  `<script>alert("x")</script>`,
	})
	require.NoError(t, err)
	assert.NotContains(t, html, "<script>")
	assert.Contains(t, html, "&lt;script&gt;")
}

func TestNewEmailServiceTemplateDirOverride(t *testing.T) {
	dir := t.TempDir()
	override := `<p>custom verification {{.Link}}</p>`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "email_verification.html"), []byte(override), 0o644))

	cfg := &config.Config{
		SMTP: config.SMTPConfig{Host: "localhost", Port: 1025},
		Email: config.EmailConfig{
			FromAddress: "noreply@example.com",
			FromName:    "Notification Service",
			TemplateDir: dir,
		},
	}
	svc, err := NewEmailService(cfg)
	require.NoError(t, err)

	html, err := svc.Render(templates.EmailVerification, notificationData{Link: "https://example.com/v"})
	require.NoError(t, err)
	assert.Contains(t, html, "custom verification")
	assert.Contains(t, html, "https://example.com/v")

	// 未覆盖的模板保持内置内容
	html, err = svc.Render(templates.ChangePassword, notificationData{Link: "https://example.com/r"})
	require.NoError(t, err)
	assert.Contains(t, html, "Password change requested")
}

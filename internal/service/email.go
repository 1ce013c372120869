package service

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"path/filepath"
	"time"

	"github.com/wneessen/go-mail"

	"github.com/GoNotify/notigate/internal/config"
	"github.com/GoNotify/notigate/internal/model"
	"github.com/GoNotify/notigate/internal/pkg/logger"
	"github.com/GoNotify/notigate/internal/pkg/metrics"
	"github.com/GoNotify/notigate/internal/templates"
)

// SupportTicketResult carries the per-recipient outcome of a support ticket:
// one confirmation to the user, one alert to the support inbox.
type SupportTicketResult struct {
	User    model.EmailOutcome
	Support model.EmailOutcome
}

func (r SupportTicketResult) Success() bool {
	return r.User.Success && r.Support.Success
}

type notificationData struct {
	UserName string
	Link     string
}

type supportTicketData struct {
	TicketID  string
	UserName  string
	UserEmail string
	Subject   string
	Message   string
	Priority  string
}

// EmailService renders templated e-mails and delivers them over SMTP.
type EmailService struct {
	tmpl     *template.Template
	from     string
	fromName string
	support  string

	// deliver 单测里替换成桩, 避免真实 SMTP 连接
	deliver func(ctx context.Context, msg *mail.Msg) error
}

func NewEmailService(cfg *config.Config) (*EmailService, error) {
	tmpl := templates.Defaults()
	if dir := cfg.Email.TemplateDir; dir != "" {
		parsed, err := tmpl.ParseGlob(filepath.Join(dir, "*.html"))
		if err != nil {
			return nil, fmt.Errorf("load templates from %s: %w", dir, err)
		}
		tmpl = parsed
	}

	client, err := newSMTPClient(cfg.SMTP)
	if err != nil {
		return nil, fmt.Errorf("smtp client: %w", err)
	}

	return &EmailService{
		tmpl:     tmpl,
		from:     cfg.Email.FromAddress,
		fromName: cfg.Email.FromName,
		support:  cfg.Email.SupportInbox,
		deliver: func(ctx context.Context, msg *mail.Msg) error {
			return client.DialAndSendWithContext(ctx, msg)
		},
	}, nil
}

// newSMTPClient picks the TLS mode from the port: 465 is implicit SSL, 587 is
// mandatory STARTTLS, anything else (MailHog on 1025 etc.) speaks plain.
func newSMTPClient(cfg config.SMTPConfig) (*mail.Client, error) {
	opts := []mail.Option{
		mail.WithPort(cfg.Port),
		mail.WithTimeout(15 * time.Second),
	}

	switch cfg.Port {
	case 465:
		opts = append(opts, mail.WithSSL())
	case 587:
		opts = append(opts, mail.WithTLSPolicy(mail.TLSMandatory))
	default:
		opts = append(opts, mail.WithTLSPolicy(mail.NoTLS))
	}

	if cfg.Username != "" && cfg.Password != "" {
		opts = append(opts,
			mail.WithSMTPAuth(mail.SMTPAuthPlain),
			mail.WithUsername(cfg.Username),
			mail.WithPassword(cfg.Password),
		)
	}

	return mail.NewClient(cfg.Host, opts...)
}

// SendNotification renders the template selected by the task and mails it.
// 不返回 error: 调用方只消费 outcome, 与日志服务的审计语义一致
func (s *EmailService) SendNotification(ctx context.Context, req model.NotificationRequest) model.EmailOutcome {
	name := templateForTask(req.Task)
	html, err := s.Render(name, notificationData{UserName: req.UserName, Link: req.Link})
	if err != nil {
		logger.Error("template render failed", "task", req.Task, "template", name, "error", err.Error())
		metrics.EmailsTotal.WithLabelValues(string(req.Task), "failed").Inc()
		return model.EmailOutcome{
			Success: false,
			Message: fmt.Sprintf("Failed to send email: %v", err),
			Email:   req.Email,
		}
	}

	subject := req.Subject
	if subject == "" {
		subject = defaultSubject(req.Task)
	}

	if err := s.send(ctx, req.Email, subject, html); err != nil {
		logger.Error("email delivery failed", "email", req.Email, "task", req.Task, "error", err.Error())
		metrics.EmailsTotal.WithLabelValues(string(req.Task), "failed").Inc()
		return model.EmailOutcome{
			Success: false,
			Message: fmt.Sprintf("Failed to send email: %v", err),
			Email:   req.Email,
		}
	}

	logger.Info("email sent", "email", req.Email, "task", req.Task)
	metrics.EmailsTotal.WithLabelValues(string(req.Task), "sent").Inc()
	return model.EmailOutcome{
		Success: true,
		Message: "Email sent successfully",
		Email:   req.Email,
	}
}

// SendSupportTicket mails a confirmation to the user and an alert to the
// support inbox. Each leg succeeds or fails on its own.
func (s *EmailService) SendSupportTicket(ctx context.Context, req model.SupportTicketRequest) SupportTicketResult {
	data := supportTicketData{
		TicketID:  req.TicketID,
		UserName:  req.UserName,
		UserEmail: req.UserEmail,
		Subject:   req.Subject,
		Message:   req.Message,
		Priority:  req.Priority,
	}

	var result SupportTicketResult
	result.User = s.sendSupportLeg(ctx, "support_confirmation",
		req.UserEmail, fmt.Sprintf("We received your support request #%s", req.TicketID),
		templates.SupportTicketConfirmation, data)

	if s.support == "" {
		logger.Warn("support inbox not configured, skipping team alert", "ticket_id", req.TicketID)
		result.Support = model.EmailOutcome{
			Success: false,
			Message: "support inbox is not configured",
		}
		return result
	}

	alertSubject := fmt.Sprintf("[Ticket #%s] %s", req.TicketID, req.Subject)
	if req.Subject == "" {
		alertSubject = fmt.Sprintf("[Ticket #%s] New support ticket", req.TicketID)
	}
	result.Support = s.sendSupportLeg(ctx, "support_alert",
		s.support, alertSubject, templates.SupportTicketAlert, data)

	return result
}

func (s *EmailService) sendSupportLeg(ctx context.Context, kind, to, subject, tmplName string, data supportTicketData) model.EmailOutcome {
	html, err := s.Render(tmplName, data)
	if err == nil {
		err = s.send(ctx, to, subject, html)
	}
	if err != nil {
		logger.Error("support email failed", "kind", kind, "email", to, "ticket_id", data.TicketID, "error", err.Error())
		metrics.EmailsTotal.WithLabelValues(kind, "failed").Inc()
		return model.EmailOutcome{
			Success: false,
			Message: fmt.Sprintf("Failed to send email: %v", err),
			Email:   to,
		}
	}

	logger.Info("support email sent", "kind", kind, "email", to, "ticket_id", data.TicketID)
	metrics.EmailsTotal.WithLabelValues(kind, "sent").Inc()
	return model.EmailOutcome{
		Success: true,
		Message: "Email sent successfully",
		Email:   to,
	}
}

// Render executes the named template. Exported so operators can smoke-test
// custom template directories.
func (s *EmailService) Render(name string, data any) (string, error) {
	var buf bytes.Buffer
	if err := s.tmpl.ExecuteTemplate(&buf, name, data); err != nil {
		return "", fmt.Errorf("render %s: %w", name, err)
	}
	return buf.String(), nil
}

func (s *EmailService) send(ctx context.Context, to, subject, html string) error {
	msg := mail.NewMsg()
	if err := msg.FromFormat(s.fromName, s.from); err != nil {
		return fmt.Errorf("invalid from address %q: %w", s.from, err)
	}
	if err := msg.To(to); err != nil {
		return fmt.Errorf("invalid recipient %q: %w", to, err)
	}
	msg.Subject(subject)
	msg.SetBodyString(mail.TypeTextHTML, html)

	return s.deliver(ctx, msg)
}

func templateForTask(task model.NotificationTask) string {
	switch task {
	case model.TaskChangePassword:
		return templates.ChangePassword
	default:
		// 未知任务回落到验证邮件模板
		return templates.EmailVerification
	}
}

func defaultSubject(task model.NotificationTask) string {
	switch task {
	case model.TaskChangePassword:
		return "Change your password"
	default:
		return "Please verify your email address"
	}
}

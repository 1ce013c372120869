package model

// NotificationTask selects the e-mail template to render.
type NotificationTask string

const (
	TaskEmailVerification NotificationTask = "email_verification"
	TaskChangePassword    NotificationTask = "change_password"
)

// NotificationRequest represents the incoming JSON body for a send.
type NotificationRequest struct {
	Email    string           `json:"email" binding:"required,email"`
	Task     NotificationTask `json:"task" binding:"required,oneof=email_verification change_password"`
	Link     string           `json:"link" binding:"required"`
	UserName string           `json:"user_name,omitempty"`
	Subject  string           `json:"subject,omitempty"` // 为空时按任务类型取默认标题
}

type NotificationResponse struct {
	Success bool             `json:"success"`
	Message string           `json:"message"`
	Email   string           `json:"email"`
	Task    NotificationTask `json:"task"`
}

// SupportTicketRequest carries a support ticket to be mailed both to the
// requesting user and to the support inbox.
type SupportTicketRequest struct {
	TicketID  string `json:"ticket_id" binding:"required"`
	UserEmail string `json:"user_email" binding:"required,email"`
	UserName  string `json:"user_name,omitempty"`
	Subject   string `json:"subject,omitempty"`
	Message   string `json:"message,omitempty"`
	Priority  string `json:"priority,omitempty"` // low/normal/high, informational only
}

// EmailOutcome is the per-recipient result of one SMTP dispatch.
type EmailOutcome struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Email   string `json:"email"`
}

type SupportTicketResponse struct {
	Success         bool         `json:"success"`
	Message         string       `json:"message"`
	TicketID        string       `json:"ticket_id"`
	UserEmailResult EmailOutcome `json:"user_email_result"`
	SupportResult   EmailOutcome `json:"support_email_result"`
}

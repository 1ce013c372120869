package handler

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/GoNotify/notigate/internal/model"
	"github.com/GoNotify/notigate/internal/pkg/apperrors"
	"github.com/GoNotify/notigate/internal/pkg/logger"
	"github.com/GoNotify/notigate/internal/service"
)

// EmailSender is implemented by service.EmailService.
type EmailSender interface {
	SendNotification(ctx context.Context, req model.NotificationRequest) model.EmailOutcome
	SendSupportTicket(ctx context.Context, req model.SupportTicketRequest) service.SupportTicketResult
}

type NotificationHandler struct {
	svc EmailSender
}

func NewNotificationHandler(svc EmailSender) *NotificationHandler {
	return &NotificationHandler{svc: svc}
}

// Send handles POST /api/v1/notifications/send.
func (h *NotificationHandler) Send(c *gin.Context) {
	var req model.NotificationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(apperrors.NewInvalidRequest(err.Error()))
		return
	}

	logger.Info("notification request received", "email", req.Email, "task", req.Task)

	out := h.svc.SendNotification(c.Request.Context(), req)
	if !out.Success {
		c.Error(apperrors.NewEmailDelivery(out.Message, nil))
		return
	}

	c.JSON(http.StatusOK, model.NotificationResponse{
		Success: true,
		Message: out.Message,
		Email:   out.Email,
		Task:    req.Task,
	})
}

// Health handles GET /api/v1/notifications/health.
func (h *NotificationHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"service": "notification",
		"message": "Notification service is running",
	})
}

// SupportTicket handles POST /api/v1/notifications/support-ticket. Each leg
// (user confirmation, support alert) is reported on its own; only a total
// failure turns into an error status.
func (h *NotificationHandler) SupportTicket(c *gin.Context) {
	var req model.SupportTicketRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(apperrors.NewInvalidRequest(err.Error()))
		return
	}

	logger.Info("support ticket received", "ticket_id", req.TicketID, "user_email", req.UserEmail)

	result := h.svc.SendSupportTicket(c.Request.Context(), req)
	resp := model.SupportTicketResponse{
		Success:         result.Success(),
		TicketID:        req.TicketID,
		UserEmailResult: result.User,
		SupportResult:   result.Support,
	}

	switch {
	case result.Success():
		resp.Message = "Support ticket processed successfully - confirmation sent to user and notification sent to support team"
	case !result.User.Success && !result.Support.Success:
		c.Error(apperrors.NewEmailDelivery(failedLegsMessage(result), nil))
		return
	default:
		resp.Message = failedLegsMessage(result)
	}

	c.JSON(http.StatusOK, resp)
}

func failedLegsMessage(result service.SupportTicketResult) string {
	var failed []string
	if !result.User.Success {
		failed = append(failed, "user confirmation email")
	}
	if !result.Support.Success {
		failed = append(failed, "support team notification")
	}
	return "Failed to send: " + strings.Join(failed, ", ")
}

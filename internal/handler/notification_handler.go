package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/spot-review-api/internal/dto"
	appErrors "github.com/noah-isme/spot-review-api/pkg/errors"
	"github.com/noah-isme/spot-review-api/pkg/response"
)

type notificationService interface {
	RecordIntent(ctx context.Context, req dto.RecordIntentRequest) (*dto.RecordIntentResponse, error)
}

// NotificationHandler accepts notification intents without delivering them.
type NotificationHandler struct {
	service notificationService
}

// NewNotificationHandler constructs the handler.
func NewNotificationHandler(service notificationService) *NotificationHandler {
	return &NotificationHandler{service: service}
}

// RecordIntent godoc
// @Summary Record a notification intent
// @Description Logs the request. No message is sent.
// @Tags Notifications
// @Accept json
// @Produce json
// @Param payload body dto.RecordIntentRequest true "Intent"
// @Success 202 {object} response.Envelope
// @Router /notifications/intent [post]
func (h *NotificationHandler) RecordIntent(c *gin.Context) {
	var req dto.RecordIntentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid intent payload"))
		return
	}
	resp, err := h.service.RecordIntent(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusAccepted, resp, nil)
}

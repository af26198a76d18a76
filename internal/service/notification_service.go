package service

import (
	"context"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/spot-review-api/internal/dto"
)

// NotificationService records that a caller asked for a notification. Nothing is delivered.
type NotificationService struct {
	validator *validator.Validate
	logger    *zap.Logger
}

// NewNotificationService constructs the service.
func NewNotificationService(validate *validator.Validate, logger *zap.Logger) *NotificationService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &NotificationService{validator: validate, logger: logger}
}

// RecordIntent validates and logs the intent.
func (s *NotificationService) RecordIntent(ctx context.Context, req dto.RecordIntentRequest) (*dto.RecordIntentResponse, error) {
	req.Recipient = strings.TrimSpace(req.Recipient)
	req.Subject = strings.TrimSpace(req.Subject)
	req.RecordID = strings.TrimSpace(req.RecordID)
	if err := validatePayload(s.validator, req); err != nil {
		return nil, err
	}
	s.logger.Info("notification intent recorded",
		zap.String("recipient", req.Recipient),
		zap.String("subject", req.Subject),
		zap.String("record_id", req.RecordID),
	)
	return &dto.RecordIntentResponse{Recorded: true}, nil
}

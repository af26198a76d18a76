package service

import (
	"errors"

	"go.uber.org/zap"

	"github.com/noah-isme/spot-review-api/pkg/database"
	appErrors "github.com/noah-isme/spot-review-api/pkg/errors"
)

// mapStoreError converts a record store failure into a caller-facing error.
// Unreachable stores become retryable; anything unexpected is logged.
func mapStoreError(logger *zap.Logger, op string, err error) error {
	if err == nil {
		return nil
	}
	var appErr *appErrors.Error
	if errors.As(err, &appErr) {
		return appErr
	}
	if database.IsUnavailable(err) {
		logger.Warn("record store unavailable", zap.String("op", op), zap.Error(err))
		return appErrors.Wrap(err, appErrors.ErrStoreUnavailable.Code, appErrors.ErrStoreUnavailable.Status, appErrors.ErrStoreUnavailable.Message)
	}
	logger.Error("record store failure", zap.String("op", op), zap.Error(err))
	return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to "+op)
}

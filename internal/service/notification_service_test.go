package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/spot-review-api/internal/dto"
	appErrors "github.com/noah-isme/spot-review-api/pkg/errors"
)

func TestNotificationServiceRecordIntent(t *testing.T) {
	svc := NewNotificationService(nil, nil)

	resp, err := svc.RecordIntent(context.Background(), dto.RecordIntentRequest{
		Recipient: "applicant@example.com",
		Subject:   "Your location was approved",
		RecordID:  "7f1c8e4a-1d2b-4c3d-9e8f-0a1b2c3d4e5f",
	})
	require.NoError(t, err)
	assert.True(t, resp.Recorded)

	_, err = svc.RecordIntent(context.Background(), dto.RecordIntentRequest{Recipient: "nobody", Subject: "x"})
	requireCode(t, err, appErrors.ErrValidation)
}

package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/spot-review-api/internal/dto"
	"github.com/noah-isme/spot-review-api/internal/models"
	appErrors "github.com/noah-isme/spot-review-api/pkg/errors"
)

type statusTransitioner interface {
	Transition(ctx context.Context, params models.TransitionParams) error
	GetStatus(ctx context.Context, id string) (*models.StatusView, error)
}

type listCache interface {
	Get(ctx context.Context, key string, dest interface{}) (bool, error)
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	Invalidate(ctx context.Context, pattern string) error
}

// SubmissionServiceConfig holds settings shared by the submission services.
type SubmissionServiceConfig struct {
	APIPrefix string
	CacheTTL  time.Duration
}

func (c SubmissionServiceConfig) withDefaults() SubmissionServiceConfig {
	if c.APIPrefix == "" {
		c.APIPrefix = "/api/v1"
	}
	c.APIPrefix = strings.TrimRight(c.APIPrefix, "/")
	if c.CacheTTL <= 0 {
		c.CacheTTL = 2 * time.Minute
	}
	return c
}

// reviewer runs the pending -> approved|rejected transition for one record kind.
type reviewer struct {
	kind     string
	store    statusTransitioner
	approved *approvedList
	metrics  *MetricsService
	logger   *zap.Logger
	now      func() time.Time
}

func (r *reviewer) transition(ctx context.Context, id string, target models.SubmissionStatus, actor, reason string) error {
	err := r.apply(ctx, id, target, actor, reason)
	outcome := string(target)
	if err != nil {
		outcome = appErrors.FromError(err).Code
	}
	r.metrics.RecordTransition(r.kind, outcome)
	return err
}

func (r *reviewer) apply(ctx context.Context, id string, target models.SubmissionStatus, actor, reason string) error {
	id = strings.TrimSpace(id)
	if id == "" {
		return appErrors.Clone(appErrors.ErrValidation, r.kind+" id is required")
	}
	if !target.Terminal() {
		return appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("cannot transition %s to %q", r.kind, target))
	}

	params := models.TransitionParams{
		ID:          id,
		Status:      target,
		ProcessedAt: r.now().UTC(),
		ProcessedBy: strings.TrimSpace(actor),
	}
	if params.ProcessedBy == "" {
		params.ProcessedBy = models.DefaultProcessedBy
	}
	if target == models.StatusRejected {
		reason = strings.TrimSpace(reason)
		if reason == "" {
			reason = models.DefaultRejectionReason
		}
		params.RejectionReason = &reason
	}

	err := r.store.Transition(ctx, params)
	if errors.Is(err, sql.ErrNoRows) {
		return r.explainNoMatch(ctx, id)
	}
	if err != nil {
		return mapStoreError(r.logger, "update "+r.kind+" status", err)
	}

	r.approved.rotate(ctx)
	r.logger.Info("submission processed",
		zap.String("kind", r.kind),
		zap.String("id", id),
		zap.String("status", string(target)),
		zap.String("processed_by", params.ProcessedBy),
	)
	return nil
}

// explainNoMatch distinguishes an unknown id from an already processed record
// after the conditional update matched nothing.
func (r *reviewer) explainNoMatch(ctx context.Context, id string) error {
	view, err := r.store.GetStatus(ctx, id)
	if errors.Is(err, sql.ErrNoRows) {
		return appErrors.Clone(appErrors.ErrNotFound, r.kind+" not found")
	}
	if err != nil {
		return mapStoreError(r.logger, "load "+r.kind+" status", err)
	}
	return appErrors.Clone(appErrors.ErrInvalidState, fmt.Sprintf("%s already %s", r.kind, view.Status))
}

func validatePayload(v *validator.Validate, payload interface{}) error {
	err := v.Struct(payload)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid payload")
	}
	messages := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		messages = append(messages, describeField(fe))
	}
	return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, strings.Join(messages, "; "))
}

func describeField(fe validator.FieldError) string {
	field := fe.Field()
	switch fe.Tag() {
	case "required":
		return field + " is required"
	case "min":
		return fmt.Sprintf("%s must be at least %s", field, fe.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s", field, fe.Param())
	case "email":
		return field + " must be a valid email address"
	case "url":
		return field + " must be a valid URL"
	case "uuid":
		return field + " must be a valid identifier"
	default:
		return fmt.Sprintf("%s failed %s validation", field, fe.Tag())
	}
}

func trimApplicant(req dto.ApplicantRequest) dto.ApplicantRequest {
	req.FullName = strings.TrimSpace(req.FullName)
	req.Email = strings.TrimSpace(req.Email)
	req.Phone = strings.TrimSpace(req.Phone)
	req.Address = strings.TrimSpace(req.Address)
	return req
}

func applicantFrom(req dto.ApplicantRequest) models.Applicant {
	return models.Applicant{
		FullName: req.FullName,
		Age:      req.Age,
		Email:    req.Email,
		Phone:    req.Phone,
		Address:  req.Address,
	}
}

func normalizeSubmissionFilter(query dto.SubmissionQuery) (models.SubmissionFilter, error) {
	status := models.SubmissionStatus(strings.ToLower(strings.TrimSpace(string(query.Status))))
	if status != "" && !status.Valid() {
		return models.SubmissionFilter{}, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unknown status %q", query.Status))
	}
	if query.Offset < 0 {
		return models.SubmissionFilter{}, appErrors.Clone(appErrors.ErrValidation, "offset must not be negative")
	}
	if query.Limit < 0 {
		return models.SubmissionFilter{}, appErrors.Clone(appErrors.ErrValidation, "limit must not be negative")
	}
	limit := query.Limit
	if limit == 0 {
		limit = 50
	}
	if limit > 200 {
		limit = 200
	}
	return models.SubmissionFilter{Status: status, Limit: limit, Offset: query.Offset}, nil
}

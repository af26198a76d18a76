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

type joinRequestStore interface {
	Create(ctx context.Context, req *models.JoinRequest) error
	GetByID(ctx context.Context, id string) (*models.JoinRequest, error)
	ListByLocation(ctx context.Context, filter models.JoinRequestFilter) ([]models.JoinRequest, int, error)
}

type approvedLocationResolver interface {
	RequireApproved(ctx context.Context, id string) (*models.Location, error)
	Get(ctx context.Context, id string) (*models.Location, error)
}

// JoinRequestService accepts join requests for approved locations.
type JoinRequestService struct {
	repo      joinRequestStore
	locations approvedLocationResolver
	images    imageIngester
	metrics   *MetricsService
	validator *validator.Validate
	logger    *zap.Logger
	cfg       SubmissionServiceConfig
}

// NewJoinRequestService constructs the service.
func NewJoinRequestService(repo joinRequestStore, locations approvedLocationResolver, images imageIngester, metrics *MetricsService, validate *validator.Validate, logger *zap.Logger, cfg SubmissionServiceConfig) *JoinRequestService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &JoinRequestService{
		repo:      repo,
		locations: locations,
		images:    images,
		metrics:   metrics,
		validator: validate,
		logger:    logger,
		cfg:       cfg.withDefaults(),
	}
}

// Create records a join request. The location must exist and be approved at
// this moment; the reference is not checked again later.
func (s *JoinRequestService) Create(ctx context.Context, locationID string, req dto.ApplicantRequest, upload ImageUpload) (*models.JoinRequest, error) {
	locationID = strings.TrimSpace(locationID)
	if locationID == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "location id is required")
	}
	if _, err := s.locations.RequireApproved(ctx, locationID); err != nil {
		return nil, err
	}
	req = trimApplicant(req)
	if err := validatePayload(s.validator, req); err != nil {
		return nil, err
	}
	image, err := s.images.Ingest(ctx, upload)
	if err != nil {
		return nil, err
	}
	joinReq := &models.JoinRequest{
		LocationID: locationID,
		Applicant:  applicantFrom(req),
		Image:      *image,
		JoinedAt:   time.Now().UTC(),
	}
	start := time.Now()
	err = s.repo.Create(ctx, joinReq)
	s.metrics.ObserveDBQuery("join_request_create", time.Since(start))
	if err != nil {
		return nil, mapStoreError(s.logger, "create join request", err)
	}
	s.logger.Info("join request created", zap.String("id", joinReq.ID), zap.String("location_id", locationID))
	return s.decorate(joinReq), nil
}

// Get returns a single join request.
func (s *JoinRequestService) Get(ctx context.Context, id string) (*models.JoinRequest, error) {
	joinReq, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "join request not found")
		}
		return nil, mapStoreError(s.logger, "get join request", err)
	}
	return s.decorate(joinReq), nil
}

// Image loads the stored photo of a join request.
func (s *JoinRequestService) Image(ctx context.Context, id string) (*ImageContent, error) {
	joinReq, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.images.Open(ctx, joinReq.Image)
}

// ListByLocation returns join requests of a location, newest first.
func (s *JoinRequestService) ListByLocation(ctx context.Context, locationID string, query dto.SubmissionQuery) ([]models.JoinRequest, *models.Pagination, error) {
	if _, err := s.locations.Get(ctx, locationID); err != nil {
		return nil, nil, err
	}
	filter, err := normalizeSubmissionFilter(dto.SubmissionQuery{Offset: query.Offset, Limit: query.Limit})
	if err != nil {
		return nil, nil, err
	}
	start := time.Now()
	items, total, err := s.repo.ListByLocation(ctx, models.JoinRequestFilter{LocationID: locationID, Limit: filter.Limit, Offset: filter.Offset})
	s.metrics.ObserveDBQuery("join_request_list", time.Since(start))
	if err != nil {
		return nil, nil, mapStoreError(s.logger, "list join requests", err)
	}
	for i := range items {
		s.decorate(&items[i])
	}
	return items, &models.Pagination{Offset: filter.Offset, Limit: filter.Limit, Total: total}, nil
}

func (s *JoinRequestService) decorate(joinReq *models.JoinRequest) *models.JoinRequest {
	joinReq.ImageURL = fmt.Sprintf("%s/join-requests/%s/image", s.cfg.APIPrefix, joinReq.ID)
	return joinReq
}

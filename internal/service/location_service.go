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

const locationApprovedCacheKey = "locations:approved"

type locationStore interface {
	Create(ctx context.Context, location *models.Location) error
	GetByID(ctx context.Context, id string) (*models.Location, error)
	GetStatus(ctx context.Context, id string) (*models.StatusView, error)
	List(ctx context.Context, filter models.SubmissionFilter) ([]models.Location, int, error)
	ListPending(ctx context.Context) ([]models.Location, error)
	ListApproved(ctx context.Context) ([]models.Location, error)
	Transition(ctx context.Context, params models.TransitionParams) error
}

type imageIngester interface {
	Ingest(ctx context.Context, upload ImageUpload) (*models.Image, error)
	Open(ctx context.Context, image models.Image) (*ImageContent, error)
}

// LocationService manages location submissions and their review.
type LocationService struct {
	repo      locationStore
	images    imageIngester
	approved  *approvedList
	metrics   *MetricsService
	validator *validator.Validate
	logger    *zap.Logger
	cfg       SubmissionServiceConfig
	review    *reviewer
}

// NewLocationService constructs the service. cache and metrics may be nil.
func NewLocationService(repo locationStore, images imageIngester, cache listCache, metrics *MetricsService, validate *validator.Validate, logger *zap.Logger, cfg SubmissionServiceConfig) *LocationService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	svc := &LocationService{
		repo:      repo,
		images:    images,
		metrics:   metrics,
		validator: validate,
		logger:    logger,
		cfg:       cfg.withDefaults(),
	}
	svc.approved = newApprovedList(cache, locationApprovedCacheKey, svc.cfg.CacheTTL, logger)
	svc.review = &reviewer{
		kind:     "location",
		store:    repo,
		approved: svc.approved,
		metrics:  metrics,
		logger:   logger,
		now:      time.Now,
	}
	return svc
}

// Submit validates the form, ingests the image and stores a pending location.
func (s *LocationService) Submit(ctx context.Context, req dto.CreateLocationRequest, upload ImageUpload) (*models.Location, error) {
	req.Name = strings.TrimSpace(req.Name)
	req.Description = strings.TrimSpace(req.Description)
	req.Link = strings.TrimSpace(req.Link)
	if err := validatePayload(s.validator, req); err != nil {
		return nil, err
	}
	image, err := s.images.Ingest(ctx, upload)
	if err != nil {
		return nil, err
	}
	location := &models.Location{
		Name:        req.Name,
		Description: req.Description,
		Link:        req.Link,
		Image:       *image,
		Review:      models.Review{Status: models.StatusPending, SubmittedAt: time.Now().UTC()},
	}
	start := time.Now()
	err = s.repo.Create(ctx, location)
	s.metrics.ObserveDBQuery("location_create", time.Since(start))
	if err != nil {
		return nil, mapStoreError(s.logger, "create location", err)
	}
	s.logger.Info("location submitted", zap.String("id", location.ID))
	return s.decorate(location), nil
}

// Get returns a single location.
func (s *LocationService) Get(ctx context.Context, id string) (*models.Location, error) {
	location, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "location not found")
		}
		return nil, mapStoreError(s.logger, "get location", err)
	}
	return s.decorate(location), nil
}

// GetStatus returns the status projection of a location.
func (s *LocationService) GetStatus(ctx context.Context, id string) (*models.StatusView, error) {
	view, err := s.repo.GetStatus(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "location not found")
		}
		return nil, mapStoreError(s.logger, "get location status", err)
	}
	return view, nil
}

// Image loads the stored image of a location.
func (s *LocationService) Image(ctx context.Context, id string) (*ImageContent, error) {
	location, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "location not found")
		}
		return nil, mapStoreError(s.logger, "get location", err)
	}
	return s.images.Open(ctx, location.Image)
}

// ListPending returns pending locations, newest submission first.
func (s *LocationService) ListPending(ctx context.Context) ([]models.Location, error) {
	start := time.Now()
	items, err := s.repo.ListPending(ctx)
	s.metrics.ObserveDBQuery("location_list_pending", time.Since(start))
	if err != nil {
		return nil, mapStoreError(s.logger, "list pending locations", err)
	}
	return s.decorateAll(items), nil
}

// List returns a filtered page of locations with the total match count.
func (s *LocationService) List(ctx context.Context, query dto.SubmissionQuery) ([]models.Location, *models.Pagination, error) {
	filter, err := normalizeSubmissionFilter(query)
	if err != nil {
		return nil, nil, err
	}
	start := time.Now()
	items, total, err := s.repo.List(ctx, filter)
	s.metrics.ObserveDBQuery("location_list", time.Since(start))
	if err != nil {
		return nil, nil, mapStoreError(s.logger, "list locations", err)
	}
	return s.decorateAll(items), &models.Pagination{Offset: filter.Offset, Limit: filter.Limit, Total: total}, nil
}

// ListApproved returns approved locations, most recently approved first.
// The second return value reports whether the result came from cache.
func (s *LocationService) ListApproved(ctx context.Context) ([]models.Location, bool, error) {
	var cached []models.Location
	cacheKey, hit := s.approved.load(ctx, &cached)
	if hit {
		return cached, true, nil
	}
	start := time.Now()
	items, err := s.repo.ListApproved(ctx)
	s.metrics.ObserveDBQuery("location_list_approved", time.Since(start))
	if err != nil {
		return nil, false, mapStoreError(s.logger, "list approved locations", err)
	}
	items = s.decorateAll(items)
	s.approved.store(ctx, cacheKey, items)
	return items, false, nil
}

// Approve moves a pending location to approved.
func (s *LocationService) Approve(ctx context.Context, id string, req dto.ApproveRequest) (*models.Location, error) {
	if err := s.review.transition(ctx, id, models.StatusApproved, req.ProcessedBy, ""); err != nil {
		return nil, err
	}
	return s.Get(ctx, id)
}

// Reject moves a pending location to rejected.
func (s *LocationService) Reject(ctx context.Context, id string, req dto.RejectRequest) (*models.Location, error) {
	if err := s.review.transition(ctx, id, models.StatusRejected, req.ProcessedBy, req.Reason); err != nil {
		return nil, err
	}
	return s.Get(ctx, id)
}

// RequireApproved loads a location and fails unless it is approved.
func (s *LocationService) RequireApproved(ctx context.Context, id string) (*models.Location, error) {
	location, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if location.Status != models.StatusApproved {
		return nil, appErrors.Clone(appErrors.ErrInvalidState, fmt.Sprintf("location is %s, only approved locations accept join requests", location.Status))
	}
	return location, nil
}

func (s *LocationService) decorate(location *models.Location) *models.Location {
	location.ImageURL = fmt.Sprintf("%s/locations/%s/image", s.cfg.APIPrefix, location.ID)
	return location
}

func (s *LocationService) decorateAll(items []models.Location) []models.Location {
	for i := range items {
		s.decorate(&items[i])
	}
	return items
}

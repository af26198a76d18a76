package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/spot-review-api/internal/dto"
	"github.com/noah-isme/spot-review-api/internal/models"
	appErrors "github.com/noah-isme/spot-review-api/pkg/errors"
)

const profileApprovedCacheKey = "profiles:approved"

type profileStore interface {
	Create(ctx context.Context, profile *models.Profile) error
	GetByID(ctx context.Context, id string) (*models.Profile, error)
	GetStatus(ctx context.Context, id string) (*models.StatusView, error)
	List(ctx context.Context, filter models.SubmissionFilter) ([]models.Profile, int, error)
	ListPending(ctx context.Context) ([]models.Profile, error)
	ListApproved(ctx context.Context) ([]models.Profile, error)
	Transition(ctx context.Context, params models.TransitionParams) error
}

// ProfileService manages personal profile submissions.
type ProfileService struct {
	repo      profileStore
	images    imageIngester
	approved  *approvedList
	metrics   *MetricsService
	validator *validator.Validate
	logger    *zap.Logger
	cfg       SubmissionServiceConfig
	review    *reviewer
}

// NewProfileService constructs the service. cache and metrics may be nil.
func NewProfileService(repo profileStore, images imageIngester, cache listCache, metrics *MetricsService, validate *validator.Validate, logger *zap.Logger, cfg SubmissionServiceConfig) *ProfileService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	cfg = cfg.withDefaults()
	approved := newApprovedList(cache, profileApprovedCacheKey, cfg.CacheTTL, logger)
	return &ProfileService{
		repo:      repo,
		images:    images,
		approved:  approved,
		metrics:   metrics,
		validator: validate,
		logger:    logger,
		cfg:       cfg,
		review: &reviewer{
			kind:     "profile",
			store:    repo,
			approved: approved,
			metrics:  metrics,
			logger:   logger,
			now:      time.Now,
		},
	}
}

// Submit validates applicant data, ingests the photo and stores a pending profile.
func (s *ProfileService) Submit(ctx context.Context, req dto.ApplicantRequest, upload ImageUpload) (*models.Profile, error) {
	req = trimApplicant(req)
	if err := validatePayload(s.validator, req); err != nil {
		return nil, err
	}
	image, err := s.images.Ingest(ctx, upload)
	if err != nil {
		return nil, err
	}
	profile := &models.Profile{
		Applicant: applicantFrom(req),
		Image:     *image,
		Review:    models.Review{Status: models.StatusPending, SubmittedAt: time.Now().UTC()},
	}
	start := time.Now()
	err = s.repo.Create(ctx, profile)
	s.metrics.ObserveDBQuery("profile_create", time.Since(start))
	if err != nil {
		return nil, mapStoreError(s.logger, "create profile", err)
	}
	s.logger.Info("profile submitted", zap.String("id", profile.ID))
	return s.decorate(profile), nil
}

// Get returns a single profile.
func (s *ProfileService) Get(ctx context.Context, id string) (*models.Profile, error) {
	profile, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "profile not found")
		}
		return nil, mapStoreError(s.logger, "get profile", err)
	}
	return s.decorate(profile), nil
}

// GetStatus returns the status projection of a profile.
func (s *ProfileService) GetStatus(ctx context.Context, id string) (*models.StatusView, error) {
	view, err := s.repo.GetStatus(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "profile not found")
		}
		return nil, mapStoreError(s.logger, "get profile status", err)
	}
	return view, nil
}

// Image loads the stored photo of a profile.
func (s *ProfileService) Image(ctx context.Context, id string) (*ImageContent, error) {
	profile, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.images.Open(ctx, profile.Image)
}

// ListPending returns pending profiles, newest submission first.
func (s *ProfileService) ListPending(ctx context.Context) ([]models.Profile, error) {
	start := time.Now()
	items, err := s.repo.ListPending(ctx)
	s.metrics.ObserveDBQuery("profile_list_pending", time.Since(start))
	if err != nil {
		return nil, mapStoreError(s.logger, "list pending profiles", err)
	}
	return s.decorateAll(items), nil
}

// List returns a filtered page of profiles with the total match count.
func (s *ProfileService) List(ctx context.Context, query dto.SubmissionQuery) ([]models.Profile, *models.Pagination, error) {
	filter, err := normalizeSubmissionFilter(query)
	if err != nil {
		return nil, nil, err
	}
	start := time.Now()
	items, total, err := s.repo.List(ctx, filter)
	s.metrics.ObserveDBQuery("profile_list", time.Since(start))
	if err != nil {
		return nil, nil, mapStoreError(s.logger, "list profiles", err)
	}
	return s.decorateAll(items), &models.Pagination{Offset: filter.Offset, Limit: filter.Limit, Total: total}, nil
}

// ListApproved returns approved profiles, most recently approved first.
func (s *ProfileService) ListApproved(ctx context.Context) ([]models.Profile, bool, error) {
	var cached []models.Profile
	cacheKey, hit := s.approved.load(ctx, &cached)
	if hit {
		return cached, true, nil
	}
	start := time.Now()
	items, err := s.repo.ListApproved(ctx)
	s.metrics.ObserveDBQuery("profile_list_approved", time.Since(start))
	if err != nil {
		return nil, false, mapStoreError(s.logger, "list approved profiles", err)
	}
	items = s.decorateAll(items)
	s.approved.store(ctx, cacheKey, items)
	return items, false, nil
}

// Approve moves a pending profile to approved.
func (s *ProfileService) Approve(ctx context.Context, id string, req dto.ApproveRequest) (*models.Profile, error) {
	if err := s.review.transition(ctx, id, models.StatusApproved, req.ProcessedBy, ""); err != nil {
		return nil, err
	}
	return s.Get(ctx, id)
}

// Reject moves a pending profile to rejected.
func (s *ProfileService) Reject(ctx context.Context, id string, req dto.RejectRequest) (*models.Profile, error) {
	if err := s.review.transition(ctx, id, models.StatusRejected, req.ProcessedBy, req.Reason); err != nil {
		return nil, err
	}
	return s.Get(ctx, id)
}

func (s *ProfileService) decorate(profile *models.Profile) *models.Profile {
	profile.ImageURL = fmt.Sprintf("%s/profiles/%s/image", s.cfg.APIPrefix, profile.ID)
	return profile
}

func (s *ProfileService) decorateAll(items []models.Profile) []models.Profile {
	for i := range items {
		s.decorate(&items[i])
	}
	return items
}

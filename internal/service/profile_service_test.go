package service

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/spot-review-api/internal/dto"
	"github.com/noah-isme/spot-review-api/internal/models"
	appErrors "github.com/noah-isme/spot-review-api/pkg/errors"
)

type profileRepoStub struct {
	mu    sync.Mutex
	items map[string]*models.Profile
}

func newProfileRepoStub() *profileRepoStub {
	return &profileRepoStub{items: make(map[string]*models.Profile)}
}

func (r *profileRepoStub) Create(ctx context.Context, profile *models.Profile) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	profile.ID = fmt.Sprintf("p-%d", len(r.items)+1)
	copy := *profile
	r.items[profile.ID] = &copy
	return nil
}

func (r *profileRepoStub) GetByID(ctx context.Context, id string) (*models.Profile, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	item, ok := r.items[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	copy := *item
	return &copy, nil
}

func (r *profileRepoStub) GetStatus(ctx context.Context, id string) (*models.StatusView, error) {
	item, err := r.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return item.StatusView(), nil
}

func (r *profileRepoStub) List(ctx context.Context, filter models.SubmissionFilter) ([]models.Profile, int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	result := make([]models.Profile, 0)
	for _, item := range r.items {
		if filter.Status == "" || item.Status == filter.Status {
			result = append(result, *item)
		}
	}
	return result, len(result), nil
}

func (r *profileRepoStub) ListPending(ctx context.Context) ([]models.Profile, error) {
	items, _, err := r.List(ctx, models.SubmissionFilter{Status: models.StatusPending})
	return items, err
}

func (r *profileRepoStub) ListApproved(ctx context.Context) ([]models.Profile, error) {
	items, _, err := r.List(ctx, models.SubmissionFilter{Status: models.StatusApproved})
	return items, err
}

func (r *profileRepoStub) Transition(ctx context.Context, params models.TransitionParams) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	item, ok := r.items[params.ID]
	if !ok || item.Status != models.StatusPending {
		return sql.ErrNoRows
	}
	processedAt := params.ProcessedAt
	processedBy := params.ProcessedBy
	item.Status = params.Status
	item.ProcessedAt = &processedAt
	item.ProcessedBy = &processedBy
	item.RejectionReason = params.RejectionReason
	return nil
}

func newProfileServiceForTest(cache listCache) *ProfileService {
	images := NewImageService(newMemoryBlobStore(), nil, nil, ImageServiceConfig{})
	return NewProfileService(newProfileRepoStub(), images, cache, NewMetricsService(), nil, nil, SubmissionServiceConfig{})
}

func TestProfileServiceSubmitAndReview(t *testing.T) {
	ctx := context.Background()
	cache := newMemoryListCache()
	svc := newProfileServiceForTest(cache)

	profile, err := svc.Submit(ctx, validApplicant(), upload("me.jpg", "image/jpeg", imageBytes("image/jpeg", 4*mib)))
	require.NoError(t, err)
	assert.Equal(t, models.StatusPending, profile.Status)
	assert.Equal(t, "/api/v1/profiles/"+profile.ID+"/image", profile.ImageURL)

	approved, err := svc.Approve(ctx, profile.ID, dto.ApproveRequest{ProcessedBy: "  "})
	require.NoError(t, err)
	assert.Equal(t, models.StatusApproved, approved.Status)
	assert.Equal(t, models.DefaultProcessedBy, *approved.ProcessedBy)
	assert.Contains(t, cache.entries, profileApprovedCacheKey+":generation")

	_, err = svc.Reject(ctx, profile.ID, dto.RejectRequest{})
	requireCode(t, err, appErrors.ErrInvalidState)

	items, _, err := svc.ListApproved(ctx)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, profile.ID, items[0].ID)
}

func TestProfileServiceSubmitValidation(t *testing.T) {
	svc := newProfileServiceForTest(nil)
	img := upload("me.png", "image/png", imageBytes("image/png", 64))

	missingPhone := validApplicant()
	missingPhone.Phone = ""
	_, err := svc.Submit(context.Background(), missingPhone, img)
	requireCode(t, err, appErrors.ErrValidation)
	assert.Contains(t, err.Error(), "Phone is required")

	underage := validApplicant()
	underage.Age = 12
	_, err = svc.Submit(context.Background(), underage, img)
	requireCode(t, err, appErrors.ErrValidation)
}

func TestProfileServiceStatusProjection(t *testing.T) {
	ctx := context.Background()
	svc := newProfileServiceForTest(nil)

	profile, err := svc.Submit(ctx, validApplicant(), upload("me.gif", "image/gif", imageBytes("image/gif", 512)))
	require.NoError(t, err)
	_, err = svc.Reject(ctx, profile.ID, dto.RejectRequest{ProcessedBy: "ops", Reason: "blurry"})
	require.NoError(t, err)

	view, err := svc.GetStatus(ctx, profile.ID)
	require.NoError(t, err)
	assert.Equal(t, profile.ID, view.ID)
	assert.Equal(t, models.StatusRejected, view.Status)
	assert.Equal(t, "blurry", *view.RejectionReason)

	_, err = svc.GetStatus(ctx, "missing")
	requireCode(t, err, appErrors.ErrNotFound)
}

package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/noah-isme/spot-review-api/internal/dto"
	"github.com/noah-isme/spot-review-api/internal/models"
	appErrors "github.com/noah-isme/spot-review-api/pkg/errors"
)

type pagedLocations struct {
	items   []models.Location
	err     error
	queries []dto.SubmissionQuery
}

func (p *pagedLocations) List(_ context.Context, query dto.SubmissionQuery) ([]models.Location, *models.Pagination, error) {
	p.queries = append(p.queries, query)
	if p.err != nil {
		return nil, nil, p.err
	}
	end := query.Offset + query.Limit
	if end > len(p.items) {
		end = len(p.items)
	}
	var page []models.Location
	if query.Offset < len(p.items) {
		page = p.items[query.Offset:end]
	}
	return page, &models.Pagination{Offset: query.Offset, Limit: query.Limit, Total: len(p.items)}, nil
}

type pagedProfiles struct {
	items []models.Profile
}

func (p *pagedProfiles) List(_ context.Context, query dto.SubmissionQuery) ([]models.Profile, *models.Pagination, error) {
	return p.items, &models.Pagination{Offset: query.Offset, Limit: query.Limit, Total: len(p.items)}, nil
}

func newExportService(locations locationPager, profiles profilePager) *ExportService {
	svc := NewExportService(locations, profiles, zap.NewNop())
	svc.now = func() time.Time { return time.Date(2024, 5, 1, 10, 30, 0, 0, time.UTC) }
	return svc
}

func TestExportLocationsPagesThroughEveryRecord(t *testing.T) {
	store := &pagedLocations{}
	for i := 0; i < 450; i++ {
		store.items = append(store.items, models.Location{ID: "loc", Name: "Spot", Link: "https://example.com", Review: models.Review{Status: models.StatusApproved}})
	}
	svc := newExportService(store, &pagedProfiles{})

	file, err := svc.ExportLocations(context.Background(), dto.ExportQuery{Status: models.StatusApproved})
	require.NoError(t, err)

	assert.Equal(t, 450, file.Rows)
	assert.Len(t, store.queries, 3)
	assert.Equal(t, models.StatusApproved, store.queries[0].Status)
	assert.Equal(t, "locations-20240501-103000.csv", file.Filename)
	assert.Equal(t, "text/csv; charset=utf-8", file.ContentType)
	assert.True(t, strings.HasPrefix(string(file.Data), "id,name,link,status"))
}

func TestExportProfilesAsPDF(t *testing.T) {
	reason := "blurry photo"
	profiles := &pagedProfiles{items: []models.Profile{{
		ID:        "p1",
		Applicant: models.Applicant{FullName: "Jane Roe", Age: 30, Email: "jane@example.com", Phone: "555"},
		Review:    models.Review{Status: models.StatusRejected, RejectionReason: &reason},
	}}}
	svc := newExportService(&pagedLocations{}, profiles)

	file, err := svc.ExportProfiles(context.Background(), dto.ExportQuery{Format: "PDF"})
	require.NoError(t, err)
	assert.Equal(t, "application/pdf", file.ContentType)
	assert.Equal(t, "profiles-20240501-103000.pdf", file.Filename)
	assert.Equal(t, 1, file.Rows)
}

func TestExportRejectsUnknownFormatAndStatus(t *testing.T) {
	svc := newExportService(&pagedLocations{}, &pagedProfiles{})

	_, err := svc.ExportLocations(context.Background(), dto.ExportQuery{Format: "xlsx"})
	requireCode(t, err, appErrors.ErrValidation)

	_, err = svc.ExportProfiles(context.Background(), dto.ExportQuery{Status: "archived"})
	requireCode(t, err, appErrors.ErrValidation)
}

func TestExportPropagatesStoreErrors(t *testing.T) {
	unavailable := appErrors.Clone(appErrors.ErrStoreUnavailable, "store unavailable")
	svc := newExportService(&pagedLocations{err: unavailable}, &pagedProfiles{})

	_, err := svc.ExportLocations(context.Background(), dto.ExportQuery{})
	require.Error(t, err)
	assert.True(t, errors.Is(err, appErrors.ErrStoreUnavailable))
}

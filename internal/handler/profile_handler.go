package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/spot-review-api/internal/dto"
	"github.com/noah-isme/spot-review-api/internal/models"
	"github.com/noah-isme/spot-review-api/internal/service"
	appErrors "github.com/noah-isme/spot-review-api/pkg/errors"
	"github.com/noah-isme/spot-review-api/pkg/response"
)

type profileService interface {
	Submit(ctx context.Context, req dto.ApplicantRequest, upload service.ImageUpload) (*models.Profile, error)
	Get(ctx context.Context, id string) (*models.Profile, error)
	GetStatus(ctx context.Context, id string) (*models.StatusView, error)
	Image(ctx context.Context, id string) (*service.ImageContent, error)
	ListPending(ctx context.Context) ([]models.Profile, error)
	List(ctx context.Context, query dto.SubmissionQuery) ([]models.Profile, *models.Pagination, error)
	ListApproved(ctx context.Context) ([]models.Profile, bool, error)
	Approve(ctx context.Context, id string, req dto.ApproveRequest) (*models.Profile, error)
	Reject(ctx context.Context, id string, req dto.RejectRequest) (*models.Profile, error)
}

// ProfileHandler exposes personal profile submission endpoints.
type ProfileHandler struct {
	service     profileService
	imageMaxAge time.Duration
}

// NewProfileHandler constructs the handler.
func NewProfileHandler(service profileService, imageMaxAge time.Duration) *ProfileHandler {
	return &ProfileHandler{service: service, imageMaxAge: imageMaxAge}
}

// Create godoc
// @Summary Submit a profile
// @Tags Profiles
// @Accept multipart/form-data
// @Produce json
// @Param fullName formData string true "Full name"
// @Param age formData int true "Age (18-100)"
// @Param email formData string true "Email"
// @Param phone formData string true "Phone"
// @Param address formData string true "Address"
// @Param image formData file true "Photo (jpg, jpeg, png, gif; max 5 MiB)"
// @Success 201 {object} response.Envelope
// @Router /profiles [post]
func (h *ProfileHandler) Create(c *gin.Context) {
	if h.service == nil {
		response.Error(c, appErrors.Clone(appErrors.ErrInternal, "profile service not configured"))
		return
	}
	req, err := bindApplicant(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	upload, closer, err := openImage(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	defer closer.Close()

	profile, err := h.service.Submit(c.Request.Context(), req, upload)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, profile)
}

// ListApproved godoc
// @Summary List approved profiles
// @Tags Profiles
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /profiles/approved [get]
func (h *ProfileHandler) ListApproved(c *gin.Context) {
	items, cached, err := h.service.ListApproved(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, items, nil, map[string]interface{}{"count": len(items), "cached": cached})
}

// Get godoc
// @Summary Get profile
// @Tags Profiles
// @Produce json
// @Param id path string true "Profile ID"
// @Success 200 {object} response.Envelope
// @Router /profiles/{id} [get]
func (h *ProfileHandler) Get(c *gin.Context) {
	profile, err := h.service.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, profile, nil)
}

// GetStatus godoc
// @Summary Get profile review status
// @Tags Profiles
// @Produce json
// @Param id path string true "Profile ID"
// @Success 200 {object} response.Envelope
// @Router /profiles/{id}/status [get]
func (h *ProfileHandler) GetStatus(c *gin.Context) {
	view, err := h.service.GetStatus(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, view, nil)
}

// Image godoc
// @Summary Download profile photo
// @Tags Profiles
// @Produce image/jpeg,image/png,image/gif
// @Param id path string true "Profile ID"
// @Success 200 {file} binary
// @Router /profiles/{id}/image [get]
func (h *ProfileHandler) Image(c *gin.Context) {
	content, err := h.service.Image(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Blob(c, content.MimeType, content.Data, imageCacheControl(h.imageMaxAge))
}

// ListPending godoc
// @Summary List pending profiles
// @Tags Admin
// @Produce json
// @Security AdminSecret
// @Success 200 {object} response.Envelope
// @Router /admin/profiles/pending [get]
func (h *ProfileHandler) ListPending(c *gin.Context) {
	items, err := h.service.ListPending(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, items, nil, map[string]interface{}{"count": len(items)})
}

// List godoc
// @Summary List profiles
// @Tags Admin
// @Produce json
// @Security AdminSecret
// @Param status query string false "pending, approved or rejected"
// @Param offset query int false "Offset"
// @Param limit query int false "Page size (max 200)"
// @Success 200 {object} response.Envelope
// @Router /admin/profiles [get]
func (h *ProfileHandler) List(c *gin.Context) {
	query, err := parseSubmissionQuery(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	items, pagination, err := h.service.List(c.Request.Context(), query)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, items, pagination)
}

// Approve godoc
// @Summary Approve profile
// @Tags Admin
// @Accept json
// @Produce json
// @Security AdminSecret
// @Param id path string true "Profile ID"
// @Param payload body dto.ApproveRequest false "Approval"
// @Success 200 {object} response.Envelope
// @Router /admin/profiles/{id}/approve [put]
func (h *ProfileHandler) Approve(c *gin.Context) {
	var req dto.ApproveRequest
	if err := bindOptionalJSON(c, &req); err != nil {
		response.Error(c, err)
		return
	}
	profile, err := h.service.Approve(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, profile, nil)
}

// Reject godoc
// @Summary Reject profile
// @Tags Admin
// @Accept json
// @Produce json
// @Security AdminSecret
// @Param id path string true "Profile ID"
// @Param payload body dto.RejectRequest false "Rejection"
// @Success 200 {object} response.Envelope
// @Router /admin/profiles/{id}/reject [put]
func (h *ProfileHandler) Reject(c *gin.Context) {
	var req dto.RejectRequest
	if err := bindOptionalJSON(c, &req); err != nil {
		response.Error(c, err)
		return
	}
	profile, err := h.service.Reject(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, profile, nil)
}

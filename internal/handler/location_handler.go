package handler

import (
	"context"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/spot-review-api/internal/dto"
	"github.com/noah-isme/spot-review-api/internal/models"
	"github.com/noah-isme/spot-review-api/internal/service"
	appErrors "github.com/noah-isme/spot-review-api/pkg/errors"
	"github.com/noah-isme/spot-review-api/pkg/response"
)

type locationService interface {
	Submit(ctx context.Context, req dto.CreateLocationRequest, upload service.ImageUpload) (*models.Location, error)
	Get(ctx context.Context, id string) (*models.Location, error)
	GetStatus(ctx context.Context, id string) (*models.StatusView, error)
	Image(ctx context.Context, id string) (*service.ImageContent, error)
	ListPending(ctx context.Context) ([]models.Location, error)
	List(ctx context.Context, query dto.SubmissionQuery) ([]models.Location, *models.Pagination, error)
	ListApproved(ctx context.Context) ([]models.Location, bool, error)
	Approve(ctx context.Context, id string, req dto.ApproveRequest) (*models.Location, error)
	Reject(ctx context.Context, id string, req dto.RejectRequest) (*models.Location, error)
}

// LocationHandler exposes location submission endpoints.
type LocationHandler struct {
	service     locationService
	imageMaxAge time.Duration
}

// NewLocationHandler constructs the handler.
func NewLocationHandler(service locationService, imageMaxAge time.Duration) *LocationHandler {
	return &LocationHandler{service: service, imageMaxAge: imageMaxAge}
}

// Create godoc
// @Summary Submit a location
// @Tags Locations
// @Accept multipart/form-data
// @Produce json
// @Param name formData string true "Name"
// @Param description formData string true "Description"
// @Param link formData string true "Link"
// @Param image formData file true "Image (jpg, jpeg, png, gif; max 5 MiB)"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /locations [post]
func (h *LocationHandler) Create(c *gin.Context) {
	if h.service == nil {
		response.Error(c, appErrors.Clone(appErrors.ErrInternal, "location service not configured"))
		return
	}
	var req dto.CreateLocationRequest
	if err := c.ShouldBind(&req); err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid location payload"))
		return
	}
	upload, closer, err := openImage(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	defer closer.Close()

	location, err := h.service.Submit(c.Request.Context(), req, upload)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, location)
}

// ListApproved godoc
// @Summary List approved locations
// @Tags Locations
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /locations/approved [get]
func (h *LocationHandler) ListApproved(c *gin.Context) {
	items, cached, err := h.service.ListApproved(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, items, nil, map[string]interface{}{"count": len(items), "cached": cached})
}

// Get godoc
// @Summary Get location
// @Tags Locations
// @Produce json
// @Param id path string true "Location ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /locations/{id} [get]
func (h *LocationHandler) Get(c *gin.Context) {
	location, err := h.service.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, location, nil)
}

// GetStatus godoc
// @Summary Get location review status
// @Tags Locations
// @Produce json
// @Param id path string true "Location ID"
// @Success 200 {object} response.Envelope
// @Router /locations/{id}/status [get]
func (h *LocationHandler) GetStatus(c *gin.Context) {
	view, err := h.service.GetStatus(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, view, nil)
}

// Image godoc
// @Summary Download location image
// @Tags Locations
// @Produce image/jpeg,image/png,image/gif
// @Param id path string true "Location ID"
// @Success 200 {file} binary
// @Router /locations/{id}/image [get]
func (h *LocationHandler) Image(c *gin.Context) {
	content, err := h.service.Image(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Blob(c, content.MimeType, content.Data, imageCacheControl(h.imageMaxAge))
}

// ListPending godoc
// @Summary List pending locations
// @Tags Admin
// @Produce json
// @Security AdminSecret
// @Success 200 {object} response.Envelope
// @Router /admin/locations/pending [get]
func (h *LocationHandler) ListPending(c *gin.Context) {
	items, err := h.service.ListPending(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, items, nil, map[string]interface{}{"count": len(items)})
}

// List godoc
// @Summary List locations
// @Tags Admin
// @Produce json
// @Security AdminSecret
// @Param status query string false "pending, approved or rejected"
// @Param offset query int false "Offset"
// @Param limit query int false "Page size (max 200)"
// @Success 200 {object} response.Envelope
// @Router /admin/locations [get]
func (h *LocationHandler) List(c *gin.Context) {
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
// @Summary Approve location
// @Tags Admin
// @Accept json
// @Produce json
// @Security AdminSecret
// @Param id path string true "Location ID"
// @Param payload body dto.ApproveRequest false "Approval"
// @Success 200 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /admin/locations/{id}/approve [put]
func (h *LocationHandler) Approve(c *gin.Context) {
	var req dto.ApproveRequest
	if err := bindOptionalJSON(c, &req); err != nil {
		response.Error(c, err)
		return
	}
	location, err := h.service.Approve(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, location, nil)
}

// Reject godoc
// @Summary Reject location
// @Tags Admin
// @Accept json
// @Produce json
// @Security AdminSecret
// @Param id path string true "Location ID"
// @Param payload body dto.RejectRequest false "Rejection"
// @Success 200 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /admin/locations/{id}/reject [put]
func (h *LocationHandler) Reject(c *gin.Context) {
	var req dto.RejectRequest
	if err := bindOptionalJSON(c, &req); err != nil {
		response.Error(c, err)
		return
	}
	location, err := h.service.Reject(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, location, nil)
}

// bindOptionalJSON decodes a JSON body when one was sent.
func bindOptionalJSON(c *gin.Context, dest interface{}) error {
	if c.Request.Body == nil || c.Request.ContentLength == 0 {
		return nil
	}
	if err := c.ShouldBindJSON(dest); err != nil && !errors.Is(err, io.EOF) {
		return appErrors.Clone(appErrors.ErrValidation, "invalid JSON body")
	}
	return nil
}

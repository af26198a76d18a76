package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/spot-review-api/internal/dto"
	"github.com/noah-isme/spot-review-api/internal/models"
	"github.com/noah-isme/spot-review-api/internal/service"
	"github.com/noah-isme/spot-review-api/pkg/response"
)

type joinRequestService interface {
	Create(ctx context.Context, locationID string, req dto.ApplicantRequest, upload service.ImageUpload) (*models.JoinRequest, error)
	Get(ctx context.Context, id string) (*models.JoinRequest, error)
	Image(ctx context.Context, id string) (*service.ImageContent, error)
	ListByLocation(ctx context.Context, locationID string, query dto.SubmissionQuery) ([]models.JoinRequest, *models.Pagination, error)
}

// JoinRequestHandler exposes join request endpoints.
type JoinRequestHandler struct {
	service     joinRequestService
	imageMaxAge time.Duration
}

// NewJoinRequestHandler constructs the handler.
func NewJoinRequestHandler(service joinRequestService, imageMaxAge time.Duration) *JoinRequestHandler {
	return &JoinRequestHandler{service: service, imageMaxAge: imageMaxAge}
}

// Create godoc
// @Summary Request to join an approved location
// @Tags JoinRequests
// @Accept multipart/form-data
// @Produce json
// @Param id path string true "Location ID"
// @Param fullName formData string true "Full name"
// @Param age formData int true "Age (18-100)"
// @Param email formData string true "Email"
// @Param phone formData string true "Phone"
// @Param address formData string true "Address"
// @Param image formData file true "Photo (jpg, jpeg, png, gif; max 5 MiB)"
// @Success 201 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /locations/{id}/join-requests [post]
func (h *JoinRequestHandler) Create(c *gin.Context) {
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

	joinReq, err := h.service.Create(c.Request.Context(), c.Param("id"), req, upload)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, joinReq)
}

// Get godoc
// @Summary Get join request
// @Tags JoinRequests
// @Produce json
// @Param id path string true "Join request ID"
// @Success 200 {object} response.Envelope
// @Router /join-requests/{id} [get]
func (h *JoinRequestHandler) Get(c *gin.Context) {
	joinReq, err := h.service.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, joinReq, nil)
}

// Image godoc
// @Summary Download join request photo
// @Tags JoinRequests
// @Produce image/jpeg,image/png,image/gif
// @Param id path string true "Join request ID"
// @Success 200 {file} binary
// @Router /join-requests/{id}/image [get]
func (h *JoinRequestHandler) Image(c *gin.Context) {
	content, err := h.service.Image(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Blob(c, content.MimeType, content.Data, imageCacheControl(h.imageMaxAge))
}

// ListByLocation godoc
// @Summary List join requests of a location
// @Tags Admin
// @Produce json
// @Security AdminSecret
// @Param id path string true "Location ID"
// @Param offset query int false "Offset"
// @Param limit query int false "Page size (max 200)"
// @Success 200 {object} response.Envelope
// @Router /admin/locations/{id}/join-requests [get]
func (h *JoinRequestHandler) ListByLocation(c *gin.Context) {
	query, err := parseSubmissionQuery(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	items, pagination, err := h.service.ListByLocation(c.Request.Context(), c.Param("id"), query)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, items, pagination)
}

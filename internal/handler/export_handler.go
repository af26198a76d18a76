package handler

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/spot-review-api/internal/dto"
	"github.com/noah-isme/spot-review-api/internal/models"
	"github.com/noah-isme/spot-review-api/internal/service"
	appErrors "github.com/noah-isme/spot-review-api/pkg/errors"
	"github.com/noah-isme/spot-review-api/pkg/response"
)

type exportService interface {
	ExportLocations(ctx context.Context, query dto.ExportQuery) (*service.ExportFile, error)
	ExportProfiles(ctx context.Context, query dto.ExportQuery) (*service.ExportFile, error)
}

// ExportHandler serves admin downloads of submission listings.
type ExportHandler struct {
	service exportService
}

// NewExportHandler constructs the handler.
func NewExportHandler(service exportService) *ExportHandler {
	return &ExportHandler{service: service}
}

// Locations godoc
// @Summary Export locations
// @Tags Admin
// @Produce text/csv
// @Produce application/pdf
// @Param format query string false "csv or pdf" Enums(csv, pdf)
// @Param status query string false "Status filter" Enums(pending, approved, rejected)
// @Success 200 {file} file
// @Failure 400 {object} response.Envelope
// @Security AdminSecret
// @Router /admin/locations/export [get]
func (h *ExportHandler) Locations(c *gin.Context) {
	h.serve(c, func(ctx context.Context, query dto.ExportQuery) (*service.ExportFile, error) {
		return h.service.ExportLocations(ctx, query)
	})
}

// Profiles godoc
// @Summary Export profiles
// @Tags Admin
// @Produce text/csv
// @Produce application/pdf
// @Param format query string false "csv or pdf" Enums(csv, pdf)
// @Param status query string false "Status filter" Enums(pending, approved, rejected)
// @Success 200 {file} file
// @Failure 400 {object} response.Envelope
// @Security AdminSecret
// @Router /admin/profiles/export [get]
func (h *ExportHandler) Profiles(c *gin.Context) {
	h.serve(c, func(ctx context.Context, query dto.ExportQuery) (*service.ExportFile, error) {
		return h.service.ExportProfiles(ctx, query)
	})
}

func (h *ExportHandler) serve(c *gin.Context, run func(context.Context, dto.ExportQuery) (*service.ExportFile, error)) {
	if h.service == nil {
		response.Error(c, appErrors.Clone(appErrors.ErrInternal, "export service not configured"))
		return
	}
	query := dto.ExportQuery{
		Format: c.Query("format"),
		Status: models.SubmissionStatus(strings.TrimSpace(c.Query("status"))),
	}
	file, err := run(c.Request.Context(), query)
	if err != nil {
		response.Error(c, err)
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=\"%s\"", file.Filename))
	c.Header("Cache-Control", "no-store")
	c.Data(http.StatusOK, file.ContentType, file.Data)
}

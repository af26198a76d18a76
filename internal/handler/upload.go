package handler

import (
	"fmt"
	"io"
	"mime/multipart"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/spot-review-api/internal/dto"
	"github.com/noah-isme/spot-review-api/internal/models"
	"github.com/noah-isme/spot-review-api/internal/service"
	appErrors "github.com/noah-isme/spot-review-api/pkg/errors"
)

// imageField is the multipart field carrying the uploaded image.
const imageField = "image"

// openImage returns the uploaded image and a closer for its stream.
func openImage(c *gin.Context) (service.ImageUpload, io.Closer, error) {
	fileHeader, err := c.FormFile(imageField)
	if err != nil {
		return service.ImageUpload{}, nil, appErrors.Clone(appErrors.ErrValidation, "image is required")
	}
	return openFileHeader(fileHeader)
}

func openFileHeader(fileHeader *multipart.FileHeader) (service.ImageUpload, io.Closer, error) {
	src, err := fileHeader.Open()
	if err != nil {
		return service.ImageUpload{}, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to open image")
	}
	return service.ImageUpload{
		Filename: fileHeader.Filename,
		Size:     fileHeader.Size,
		MimeType: fileHeader.Header.Get("Content-Type"),
		Content:  src,
	}, src, nil
}

// bindApplicant reads applicant fields from a multipart form.
func bindApplicant(c *gin.Context) (dto.ApplicantRequest, error) {
	var req dto.ApplicantRequest
	req.FullName = c.PostForm("fullName")
	req.Email = c.PostForm("email")
	req.Phone = c.PostForm("phone")
	req.Address = c.PostForm("address")
	if raw := strings.TrimSpace(c.PostForm("age")); raw != "" {
		age, err := strconv.Atoi(raw)
		if err != nil {
			return req, appErrors.Clone(appErrors.ErrValidation, "age must be a whole number")
		}
		req.Age = age
	}
	return req, nil
}

func parseSubmissionQuery(c *gin.Context) (dto.SubmissionQuery, error) {
	query := dto.SubmissionQuery{Status: models.SubmissionStatus(strings.TrimSpace(c.Query("status")))}
	var err error
	if query.Offset, err = intQuery(c, "offset"); err != nil {
		return query, err
	}
	if query.Limit, err = intQuery(c, "limit"); err != nil {
		return query, err
	}
	return query, nil
}

func intQuery(c *gin.Context, key string) (int, error) {
	raw := strings.TrimSpace(c.Query(key))
	if raw == "" {
		return 0, nil
	}
	val, err := strconv.Atoi(raw)
	if err != nil {
		return 0, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("%s must be a whole number", key))
	}
	return val, nil
}

func imageCacheControl(maxAge time.Duration) string {
	if maxAge <= 0 {
		maxAge = 365 * 24 * time.Hour
	}
	return fmt.Sprintf("public, max-age=%d, immutable", int64(maxAge.Seconds()))
}

package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/spot-review-api/internal/dto"
	appErrors "github.com/noah-isme/spot-review-api/pkg/errors"
	"github.com/noah-isme/spot-review-api/pkg/response"
)

type secretVerifier interface {
	Verify(token string) bool
}

// AdminHandler exposes the shared-secret check.
type AdminHandler struct {
	verifier secretVerifier
}

// NewAdminHandler constructs the handler.
func NewAdminHandler(verifier secretVerifier) *AdminHandler {
	return &AdminHandler{verifier: verifier}
}

// Verify godoc
// @Summary Check the admin secret
// @Tags Admin
// @Accept json
// @Produce json
// @Param payload body dto.VerifySecretRequest true "Token"
// @Success 200 {object} response.Envelope
// @Router /admin/verify [post]
func (h *AdminHandler) Verify(c *gin.Context) {
	var req dto.VerifySecretRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid verify payload"))
		return
	}
	valid := h.verifier != nil && h.verifier.Verify(req.Token)
	response.JSON(c, http.StatusOK, dto.VerifySecretResponse{Valid: valid}, nil)
}

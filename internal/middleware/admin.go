package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	appErrors "github.com/noah-isme/spot-review-api/pkg/errors"
	"github.com/noah-isme/spot-review-api/pkg/response"
)

// AdminSecretHeader carries the shared admin secret.
const AdminSecretHeader = "X-Admin-Secret"

type secretVerifier interface {
	Verify(token string) bool
}

// AdminSecret guards routes with the shared admin secret, read from
// X-Admin-Secret or a Bearer Authorization header.
func AdminSecret(verifier secretVerifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := strings.TrimSpace(c.GetHeader(AdminSecretHeader))
		if token == "" {
			parts := strings.SplitN(c.GetHeader("Authorization"), " ", 2)
			if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
				token = strings.TrimSpace(parts[1])
			}
		}
		if token == "" {
			response.Error(c, appErrors.Clone(appErrors.ErrUnauthorized, "admin secret required"))
			c.Abort()
			return
		}
		if verifier == nil || !verifier.Verify(token) {
			response.Error(c, appErrors.Clone(appErrors.ErrUnauthorized, "invalid admin secret"))
			c.Abort()
			return
		}
		c.Next()
	}
}

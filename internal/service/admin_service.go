package service

import (
	"crypto/subtle"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// AdminConfig holds the shared secret settings.
type AdminConfig struct {
	Secret     string
	SecretHash string
}

// AdminService compares caller tokens against the configured shared secret.
// It does not issue sessions.
type AdminService struct {
	secret []byte
	hash   []byte
	logger *zap.Logger
}

// NewAdminService constructs the service. A bcrypt hash, when present, takes
// precedence over the plain secret.
func NewAdminService(cfg AdminConfig, logger *zap.Logger) *AdminService {
	if logger == nil {
		logger = zap.NewNop()
	}
	svc := &AdminService{logger: logger}
	if hash := strings.TrimSpace(cfg.SecretHash); hash != "" {
		svc.hash = []byte(hash)
	} else if cfg.Secret != "" {
		svc.secret = []byte(cfg.Secret)
	}
	return svc
}

// Configured reports whether any secret is set.
func (s *AdminService) Configured() bool {
	return len(s.hash) > 0 || len(s.secret) > 0
}

// Verify reports whether token matches the shared secret.
func (s *AdminService) Verify(token string) bool {
	if token == "" || !s.Configured() {
		return false
	}
	if len(s.hash) > 0 {
		err := bcrypt.CompareHashAndPassword(s.hash, []byte(token))
		if err != nil && err != bcrypt.ErrMismatchedHashAndPassword {
			s.logger.Warn("admin secret hash unusable", zap.Error(err))
		}
		return err == nil
	}
	return subtle.ConstantTimeCompare(s.secret, []byte(token)) == 1
}

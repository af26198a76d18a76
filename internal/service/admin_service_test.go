package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestAdminServiceVerifyPlainSecret(t *testing.T) {
	svc := NewAdminService(AdminConfig{Secret: "s3cret"}, nil)

	assert.True(t, svc.Verify("s3cret"))
	assert.False(t, svc.Verify("s3cret "))
	assert.False(t, svc.Verify(""))
	assert.False(t, svc.Verify("other"))
}

func TestAdminServiceVerifyHashedSecret(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("hunter2"), bcrypt.MinCost)
	require.NoError(t, err)
	svc := NewAdminService(AdminConfig{Secret: "ignored", SecretHash: string(hash)}, nil)

	assert.True(t, svc.Verify("hunter2"))
	assert.False(t, svc.Verify("ignored"))
}

func TestAdminServiceUnconfigured(t *testing.T) {
	svc := NewAdminService(AdminConfig{}, nil)

	assert.False(t, svc.Configured())
	assert.False(t, svc.Verify("anything"))
}

package handler

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	internalmiddleware "github.com/noah-isme/spot-review-api/internal/middleware"
	"github.com/noah-isme/spot-review-api/internal/service"
)

func buildTestRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	admin := service.NewAdminService(service.AdminConfig{Secret: "top-secret"}, nil)
	r := gin.New()
	api := r.Group("/api/v1")
	RegisterRoutes(api, Handlers{
		Locations:     NewLocationHandler(&locationServiceMock{}, time.Hour),
		Profiles:      NewProfileHandler(&profileServiceMock{}, time.Hour),
		JoinRequests:  NewJoinRequestHandler(&joinRequestServiceMock{}, time.Hour),
		Admin:         NewAdminHandler(admin),
		Notifications: NewNotificationHandler(service.NewNotificationService(nil, nil)),
		Exports:       NewExportHandler(&exportServiceStub{}),
	}, internalmiddleware.AdminSecret(admin))
	return r
}

func performRequest(r http.Handler, req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestRoutesIntegration(t *testing.T) {
	router := buildTestRouter()

	t.Run("public approved listing", func(t *testing.T) {
		resp := performRequest(router, httptest.NewRequest(http.MethodGet, "/api/v1/locations/approved", nil))
		require.Equal(t, http.StatusOK, resp.Code)
		assert.Contains(t, resp.Body.String(), `"loc-9"`)
	})

	t.Run("status projection", func(t *testing.T) {
		resp := performRequest(router, httptest.NewRequest(http.MethodGet, "/api/v1/profiles/p-1/status", nil))
		require.Equal(t, http.StatusOK, resp.Code)
		assert.Contains(t, resp.Body.String(), `"approved"`)
	})

	t.Run("admin route without secret", func(t *testing.T) {
		resp := performRequest(router, httptest.NewRequest(http.MethodGet, "/api/v1/admin/locations/pending", nil))
		require.Equal(t, http.StatusUnauthorized, resp.Code)
	})

	t.Run("admin route with secret", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPut, "/api/v1/admin/locations/loc-1/approve", nil)
		req.Header.Set(internalmiddleware.AdminSecretHeader, "top-secret")
		resp := performRequest(router, req)
		require.Equal(t, http.StatusOK, resp.Code)
		assert.Contains(t, resp.Body.String(), `"approved"`)
	})

	t.Run("export is guarded and not shadowed by id routes", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/admin/locations/export?format=csv", nil)
		resp := performRequest(router, req)
		require.Equal(t, http.StatusUnauthorized, resp.Code)

		req.Header.Set(internalmiddleware.AdminSecretHeader, "top-secret")
		resp = performRequest(router, req)
		require.Equal(t, http.StatusOK, resp.Code)
		assert.Equal(t, `attachment; filename="locations.csv"`, resp.Header().Get("Content-Disposition"))
	})

	t.Run("verify is reachable without secret", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/admin/verify", bytes.NewBufferString(`{"token":"top-secret"}`))
		req.Header.Set("Content-Type", "application/json")
		resp := performRequest(router, req)
		require.Equal(t, http.StatusOK, resp.Code)
		assert.Contains(t, resp.Body.String(), `"valid":true`)
	})

	t.Run("verify rejects wrong token", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/admin/verify", bytes.NewBufferString(`{"token":"guess"}`))
		req.Header.Set("Content-Type", "application/json")
		resp := performRequest(router, req)
		require.Equal(t, http.StatusOK, resp.Code)
		assert.Contains(t, resp.Body.String(), `"valid":false`)
	})

	t.Run("notification intent is accepted", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/notifications/intent", bytes.NewBufferString(`{"recipient":"a@example.com","subject":"hi"}`))
		req.Header.Set("Content-Type", "application/json")
		resp := performRequest(router, req)
		require.Equal(t, http.StatusAccepted, resp.Code)
		assert.Contains(t, resp.Body.String(), `"recorded":true`)
	})

	t.Run("notification intent validation", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/notifications/intent", bytes.NewBufferString(`{"recipient":"nope"}`))
		req.Header.Set("Content-Type", "application/json")
		resp := performRequest(router, req)
		require.Equal(t, http.StatusBadRequest, resp.Code)
	})

	t.Run("join request image", func(t *testing.T) {
		resp := performRequest(router, httptest.NewRequest(http.MethodGet, "/api/v1/join-requests/jr-1/image", nil))
		require.Equal(t, http.StatusOK, resp.Code)
		assert.Equal(t, "image/gif", resp.Header().Get("Content-Type"))
		assert.Contains(t, resp.Header().Get("Cache-Control"), "immutable")
	})
}

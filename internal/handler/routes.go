package handler

import (
	"github.com/gin-gonic/gin"
)

// Handlers groups the HTTP handlers mounted under the API prefix.
type Handlers struct {
	Locations     *LocationHandler
	Profiles      *ProfileHandler
	JoinRequests  *JoinRequestHandler
	Admin         *AdminHandler
	Notifications *NotificationHandler
	Exports       *ExportHandler
}

// RegisterRoutes mounts public and admin routes on api. adminGuard may be nil
// to leave admin routes open.
func RegisterRoutes(api gin.IRouter, h Handlers, adminGuard gin.HandlerFunc) {
	locations := api.Group("/locations")
	locations.POST("", h.Locations.Create)
	locations.GET("/approved", h.Locations.ListApproved)
	locations.GET("/:id", h.Locations.Get)
	locations.GET("/:id/status", h.Locations.GetStatus)
	locations.GET("/:id/image", h.Locations.Image)
	locations.POST("/:id/join-requests", h.JoinRequests.Create)

	joinRequests := api.Group("/join-requests")
	joinRequests.GET("/:id", h.JoinRequests.Get)
	joinRequests.GET("/:id/image", h.JoinRequests.Image)

	profiles := api.Group("/profiles")
	profiles.POST("", h.Profiles.Create)
	profiles.GET("/approved", h.Profiles.ListApproved)
	profiles.GET("/:id", h.Profiles.Get)
	profiles.GET("/:id/status", h.Profiles.GetStatus)
	profiles.GET("/:id/image", h.Profiles.Image)

	api.POST("/notifications/intent", h.Notifications.RecordIntent)
	api.POST("/admin/verify", h.Admin.Verify)

	admin := api.Group("/admin")
	if adminGuard != nil {
		admin.Use(adminGuard)
	}
	admin.GET("/locations", h.Locations.List)
	admin.GET("/locations/pending", h.Locations.ListPending)
	admin.GET("/locations/export", h.Exports.Locations)
	admin.PUT("/locations/:id/approve", h.Locations.Approve)
	admin.PUT("/locations/:id/reject", h.Locations.Reject)
	admin.GET("/locations/:id/join-requests", h.JoinRequests.ListByLocation)
	admin.GET("/profiles", h.Profiles.List)
	admin.GET("/profiles/pending", h.Profiles.ListPending)
	admin.GET("/profiles/export", h.Exports.Profiles)
	admin.PUT("/profiles/:id/approve", h.Profiles.Approve)
	admin.PUT("/profiles/:id/reject", h.Profiles.Reject)
}

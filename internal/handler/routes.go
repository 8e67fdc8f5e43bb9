package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/noah-isme/residence-portal-api/internal/middleware"
	"github.com/noah-isme/residence-portal-api/internal/models"
)

// Routes groups every API handler for registration under the API prefix.
type Routes struct {
	Auth          *AuthHandler
	Requests      *RequestHandler
	Notifications *NotificationHandler
	Announcements *AnnouncementHandler
	Users         *UserHandler
	Analytics     *AnalyticsHandler
	Reports       *ReportHandler
	Security      *SecurityHandler
}

// Register mounts the routes on api. Every route except export downloads requires a bearer token.
func (r Routes) Register(api *gin.RouterGroup, auth middleware.TokenValidator) {
	if r.Reports != nil {
		api.GET("/exports/:token", r.Reports.Download)
	}
	if r.Notifications != nil {
		api.GET("/notifications/stream", middleware.JWTOrQuery(auth), r.Notifications.Stream)
	}

	secured := api.Group("")
	secured.Use(middleware.JWT(auth))
	staff := middleware.Staff()

	if r.Auth != nil {
		secured.GET("/auth/me", r.Auth.Me)
	}

	if r.Requests != nil {
		requests := secured.Group("/requests/:kind")
		requests.POST("", middleware.Residents(), r.Requests.Submit)
		requests.GET("", r.Requests.List)
		requests.GET("/:id", r.Requests.Get)
		requests.POST("/:id/transitions", r.Requests.Transition)
	}

	if r.Notifications != nil {
		notifications := secured.Group("/notifications")
		notifications.GET("", r.Notifications.List)
		notifications.GET("/unread-count", r.Notifications.UnreadCount)
		notifications.POST("/read-all", r.Notifications.MarkAllRead)
		notifications.POST("/:id/read", r.Notifications.MarkRead)
	}

	if r.Announcements != nil {
		announcements := secured.Group("/announcements")
		announcements.GET("", r.Announcements.List)
		announcements.POST("", staff, r.Announcements.Create)
		announcements.PUT("/:id", staff, r.Announcements.Update)
		announcements.DELETE("/:id", staff, r.Announcements.Delete)
	}

	if r.Users != nil {
		applications := secured.Group("/applications")
		applications.GET("", staff, r.Users.ListApplications)
		applications.GET("/:id", middleware.RBAC(string(models.RoleAdmin), string(models.RoleSuperAdmin), "SELF"), r.Users.Get)
		applications.POST("/:id/decision", staff, r.Users.Decide)
		applications.POST("/:id/messages", staff, r.Users.AppendMessage)
	}

	dashboard := secured.Group("/dashboard", staff)
	if r.Analytics != nil {
		dashboard.GET("/analytics", middleware.WithResponseMeta(), r.Analytics.Series)
		dashboard.POST("/analytics/refresh", middleware.WithResponseMeta(), r.Analytics.Refresh)
	}
	if r.Reports != nil {
		dashboard.GET("/reports/daily", r.Reports.Daily)
		dashboard.POST("/reports/daily/export", r.Reports.Export)
	}

	if r.Security != nil {
		pin := secured.Group("/security/checkout-pin")
		pin.GET("", middleware.RequireRoles(models.RoleAdmin, models.RoleSuperAdmin, models.RoleSecurity), r.Security.CheckoutPIN)
		pin.PUT("", staff, r.Security.RotateCheckoutPIN)
	}
}

// RegisterProbes mounts liveness, readiness and metrics endpoints outside the API prefix.
func (h *MetricsHandler) RegisterProbes(r gin.IRouter) {
	r.GET("/health", h.Health)
	r.GET("/ready", h.Ready)
	r.GET("/metrics", h.Prometheus)
}

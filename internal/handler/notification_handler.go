package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/noah-isme/residence-portal-api/internal/dto"
	"github.com/noah-isme/residence-portal-api/internal/models"
	"github.com/noah-isme/residence-portal-api/internal/service"
	"github.com/noah-isme/residence-portal-api/internal/websocket"
	appErrors "github.com/noah-isme/residence-portal-api/pkg/errors"
	"github.com/noah-isme/residence-portal-api/pkg/response"
)

// NotificationHandler serves the caller's notifications.
type NotificationHandler struct {
	service *service.NotificationService
	hub     *websocket.Hub
	logger  *zap.Logger
}

// NewNotificationHandler constructs the handler. hub may be nil when streaming is disabled.
func NewNotificationHandler(svc *service.NotificationService, hub *websocket.Hub, logger *zap.Logger) *NotificationHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &NotificationHandler{service: svc, hub: hub, logger: logger}
}

// List godoc
// @Summary List my notifications
// @Tags Notifications
// @Produce json
// @Param unread query bool false "Only unread"
// @Param limit query int false "Maximum items (default 50, max 200)"
// @Success 200 {object} response.Envelope
// @Router /notifications [get]
func (h *NotificationHandler) List(c *gin.Context) {
	if h.service == nil {
		response.Error(c, appErrors.ErrInternal)
		return
	}
	actor, ok := actorFromContext(c)
	if !ok {
		return
	}
	var query dto.NotificationListQuery
	if !bindQuery(c, &query) {
		return
	}
	items, err := h.service.List(c.Request.Context(), actor, models.NotificationFilter{UnreadOnly: query.Unread, Limit: query.Limit})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, items, nil)
}

// UnreadCount godoc
// @Summary Count my unread notifications
// @Tags Notifications
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /notifications/unread-count [get]
func (h *NotificationHandler) UnreadCount(c *gin.Context) {
	if h.service == nil {
		response.Error(c, appErrors.ErrInternal)
		return
	}
	actor, ok := actorFromContext(c)
	if !ok {
		return
	}
	count, err := h.service.UnreadCount(c.Request.Context(), actor)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, dto.UnreadCountResponse{Count: count}, nil)
}

// MarkRead godoc
// @Summary Mark a notification read
// @Tags Notifications
// @Produce json
// @Param id path string true "Notification ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /notifications/{id}/read [post]
func (h *NotificationHandler) MarkRead(c *gin.Context) {
	if h.service == nil {
		response.Error(c, appErrors.ErrInternal)
		return
	}
	actor, ok := actorFromContext(c)
	if !ok {
		return
	}
	n, err := h.service.MarkRead(c.Request.Context(), actor, c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, n, nil)
}

// MarkAllRead godoc
// @Summary Mark all my notifications read
// @Tags Notifications
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /notifications/read-all [post]
func (h *NotificationHandler) MarkAllRead(c *gin.Context) {
	if h.service == nil {
		response.Error(c, appErrors.ErrInternal)
		return
	}
	actor, ok := actorFromContext(c)
	if !ok {
		return
	}
	changed, err := h.service.MarkAllRead(c.Request.Context(), actor)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, dto.MarkAllReadResponse{Updated: changed}, nil)
}

// Stream godoc
// @Summary Live notification stream
// @Description Upgrades to a websocket that pushes each new notification as {"type":"notification","data":{...}}
// @Tags Notifications
// @Param access_token query string false "Token for clients that cannot send headers"
// @Success 101
// @Router /notifications/stream [get]
func (h *NotificationHandler) Stream(c *gin.Context) {
	if h.hub == nil {
		response.Error(c, appErrors.Clone(appErrors.ErrNotFound, "notification streaming is disabled"))
		return
	}
	actor, ok := actorFromContext(c)
	if !ok {
		return
	}
	// Serve writes its own failure response; the connection is hijacked either way.
	if err := h.hub.Serve(c.Writer, c.Request, actor.UserID); err != nil {
		level := h.logger.Debug
		if errors.Is(err, websocket.ErrHubClosed) {
			level = h.logger.Info
		}
		level("notification stream not opened", zap.String("user_id", actor.UserID), zap.Error(err))
	}
}

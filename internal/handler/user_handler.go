package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/residence-portal-api/internal/dto"
	"github.com/noah-isme/residence-portal-api/internal/models"
	"github.com/noah-isme/residence-portal-api/internal/service"
	appErrors "github.com/noah-isme/residence-portal-api/pkg/errors"
	"github.com/noah-isme/residence-portal-api/pkg/response"
)

// UserHandler handles residence applications and communication logs.
type UserHandler struct {
	service *service.UserService
}

// NewUserHandler creates a new user handler.
func NewUserHandler(svc *service.UserService) *UserHandler {
	return &UserHandler{service: svc}
}

// ListApplications godoc
// @Summary List residence applications
// @Tags Applications
// @Produce json
// @Param status query string false "pending | accepted | denied"
// @Param limit query int false "Maximum items"
// @Success 200 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Router /applications [get]
func (h *UserHandler) ListApplications(c *gin.Context) {
	if h.service == nil {
		response.Error(c, appErrors.ErrInternal)
		return
	}
	var query dto.ApplicationListQuery
	if !bindQuery(c, &query) {
		return
	}
	users, err := h.service.ListApplications(c.Request.Context(), models.ApplicationStatus(query.Status), query.Limit)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, users, nil)
}

// Get godoc
// @Summary Get an applicant or resident profile
// @Tags Applications
// @Produce json
// @Param id path string true "User ID"
// @Success 200 {object} response.Envelope
// @Router /applications/{id} [get]
func (h *UserHandler) Get(c *gin.Context) {
	if h.service == nil {
		response.Error(c, appErrors.ErrInternal)
		return
	}
	actor, ok := actorFromContext(c)
	if !ok {
		return
	}
	user, err := h.service.Get(c.Request.Context(), actor, c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, user, nil)
}

// Decide godoc
// @Summary Accept or deny an application
// @Tags Applications
// @Accept json
// @Produce json
// @Param id path string true "User ID"
// @Param payload body service.DecisionRequest true "Decision"
// @Success 200 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /applications/{id}/decision [post]
func (h *UserHandler) Decide(c *gin.Context) {
	if h.service == nil {
		response.Error(c, appErrors.ErrInternal)
		return
	}
	actor, ok := actorFromContext(c)
	if !ok {
		return
	}
	var req service.DecisionRequest
	if !bindJSON(c, &req) {
		return
	}
	user, err := h.service.Decide(c.Request.Context(), actor, c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, user, nil)
}

// AppendMessage godoc
// @Summary Add a message to a communication log
// @Tags Applications
// @Accept json
// @Produce json
// @Param id path string true "User ID"
// @Param payload body service.MessageRequest true "Message"
// @Success 200 {object} response.Envelope
// @Router /applications/{id}/messages [post]
func (h *UserHandler) AppendMessage(c *gin.Context) {
	if h.service == nil {
		response.Error(c, appErrors.ErrInternal)
		return
	}
	actor, ok := actorFromContext(c)
	if !ok {
		return
	}
	var req service.MessageRequest
	if !bindJSON(c, &req) {
		return
	}
	user, err := h.service.AppendMessage(c.Request.Context(), actor, c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, user, nil)
}

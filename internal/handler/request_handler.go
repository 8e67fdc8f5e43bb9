package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/residence-portal-api/internal/dto"
	"github.com/noah-isme/residence-portal-api/internal/models"
	"github.com/noah-isme/residence-portal-api/internal/service"
	appErrors "github.com/noah-isme/residence-portal-api/pkg/errors"
	"github.com/noah-isme/residence-portal-api/pkg/response"
)

// RequestHandler exposes the request lifecycle for every kind.
type RequestHandler struct {
	service *service.LifecycleService
	loc     *time.Location
}

// NewRequestHandler constructs the handler. loc interprets bare dates in list filters.
func NewRequestHandler(svc *service.LifecycleService, loc *time.Location) *RequestHandler {
	if loc == nil {
		loc = time.UTC
	}
	return &RequestHandler{service: svc, loc: loc}
}

func view(req *models.Request) dto.RequestView {
	actions := service.ActionsFor(req.Kind, req.Status)
	if actions == nil {
		actions = []models.Action{}
	}
	return dto.RequestView{Request: *req, AllowedActions: actions}
}

// Submit godoc
// @Summary Submit a request
// @Description Body is the kind-specific payload (guest visit, sleepover request, maintenance ticket or complaint)
// @Tags Requests
// @Accept json
// @Produce json
// @Param kind path string true "guest | sleepover | maintenance | complaint"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /requests/{kind} [post]
func (h *RequestHandler) Submit(c *gin.Context) {
	if h.service == nil {
		response.Error(c, appErrors.ErrInternal)
		return
	}
	actor, ok := actorFromContext(c)
	if !ok {
		return
	}
	kind, ok := kindParam(c)
	if !ok {
		return
	}
	body, ok := readBody(c)
	if !ok {
		return
	}
	payload, err := dto.DecodePayload(kind, body)
	if err != nil {
		response.Error(c, err)
		return
	}
	req, err := h.service.Submit(c.Request.Context(), kind, actor.UserID, payload)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, view(req))
}

// List godoc
// @Summary List requests of a kind
// @Description Residents only see their own requests. Use active=true&sort=checkInTime for the presence view.
// @Tags Requests
// @Produce json
// @Param kind path string true "Request kind"
// @Param status query string false "Status filter"
// @Param userId query string false "Requester filter (staff)"
// @Param active query bool false "Active flag"
// @Param from query string false "Created from (RFC3339 or YYYY-MM-DD)"
// @Param to query string false "Created to (RFC3339 or YYYY-MM-DD)"
// @Param sort query string false "createdAt | updatedAt | checkInTime | checkOutTime | signOutTime | status"
// @Param order query string false "asc | desc"
// @Param limit query int false "Maximum items"
// @Success 200 {object} response.Envelope
// @Router /requests/{kind} [get]
func (h *RequestHandler) List(c *gin.Context) {
	if h.service == nil {
		response.Error(c, appErrors.ErrInternal)
		return
	}
	actor, ok := actorFromContext(c)
	if !ok {
		return
	}
	kind, ok := kindParam(c)
	if !ok {
		return
	}
	var query dto.ListRequestsQuery
	if !bindQuery(c, &query) {
		return
	}
	filter, err := query.ToFilter(h.loc)
	if err != nil {
		response.Error(c, err)
		return
	}
	items, err := h.service.List(c.Request.Context(), kind, filter, actor)
	if err != nil {
		response.Error(c, err)
		return
	}
	views := make([]dto.RequestView, 0, len(items))
	for i := range items {
		views = append(views, view(&items[i]))
	}
	response.JSON(c, http.StatusOK, views, nil, map[string]interface{}{"count": len(views)})
}

// Get godoc
// @Summary Get a request
// @Tags Requests
// @Produce json
// @Param kind path string true "Request kind"
// @Param id path string true "Request ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /requests/{kind}/{id} [get]
func (h *RequestHandler) Get(c *gin.Context) {
	if h.service == nil {
		response.Error(c, appErrors.ErrInternal)
		return
	}
	actor, ok := actorFromContext(c)
	if !ok {
		return
	}
	kind, ok := kindParam(c)
	if !ok {
		return
	}
	req, err := h.service.Get(c.Request.Context(), kind, c.Param("id"), actor)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, view(req), nil)
}

// Transition godoc
// @Summary Apply a lifecycle action
// @Description Moves the request along its state machine and notifies the requester
// @Tags Requests
// @Accept json
// @Produce json
// @Param kind path string true "Request kind"
// @Param id path string true "Request ID"
// @Param payload body service.TransitionRequest true "Action, optional response and code"
// @Success 200 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /requests/{kind}/{id}/transitions [post]
func (h *RequestHandler) Transition(c *gin.Context) {
	if h.service == nil {
		response.Error(c, appErrors.ErrInternal)
		return
	}
	actor, ok := actorFromContext(c)
	if !ok {
		return
	}
	kind, ok := kindParam(c)
	if !ok {
		return
	}
	var req service.TransitionRequest
	if !bindJSON(c, &req) {
		return
	}
	updated, err := h.service.Transition(c.Request.Context(), kind, c.Param("id"), actor, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, view(updated), nil)
}

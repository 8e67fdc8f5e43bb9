package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/residence-portal-api/internal/service"
	appErrors "github.com/noah-isme/residence-portal-api/pkg/errors"
	"github.com/noah-isme/residence-portal-api/pkg/response"
)

// SecurityHandler manages the shared guest checkout PIN.
type SecurityHandler struct {
	codes *service.SecurityCodeService
}

// NewSecurityHandler constructs the handler.
func NewSecurityHandler(codes *service.SecurityCodeService) *SecurityHandler {
	return &SecurityHandler{codes: codes}
}

// CheckoutPIN godoc
// @Summary Current guest checkout PIN
// @Tags Security
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /security/checkout-pin [get]
func (h *SecurityHandler) CheckoutPIN(c *gin.Context) {
	if h.codes == nil {
		response.Error(c, appErrors.ErrInternal)
		return
	}
	response.JSON(c, http.StatusOK, h.codes.CheckoutSetting(), nil)
}

// RotateCheckoutPIN godoc
// @Summary Replace the guest checkout PIN
// @Tags Security
// @Accept json
// @Produce json
// @Param payload body service.RotatePINRequest true "New PIN"
// @Success 200 {object} response.Envelope
// @Router /security/checkout-pin [put]
func (h *SecurityHandler) RotateCheckoutPIN(c *gin.Context) {
	if h.codes == nil {
		response.Error(c, appErrors.ErrInternal)
		return
	}
	actor, ok := actorFromContext(c)
	if !ok {
		return
	}
	var req service.RotatePINRequest
	if !bindJSON(c, &req) {
		return
	}
	setting, err := h.codes.RotateCheckoutPIN(c.Request.Context(), actor, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, setting, nil)
}

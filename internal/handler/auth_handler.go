package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/residence-portal-api/pkg/response"
)

// AuthHandler exposes the verified identity of the caller.
type AuthHandler struct{}

// NewAuthHandler creates a new handler.
func NewAuthHandler() *AuthHandler {
	return &AuthHandler{}
}

type meResponse struct {
	UserID    string `json:"userId"`
	Role      string `json:"role"`
	AdminType string `json:"adminType,omitempty"`
	Email     string `json:"email,omitempty"`
	FullName  string `json:"fullName,omitempty"`
}

// Me godoc
// @Summary Current identity
// @Description Returns the claims of the verified bearer token
// @Tags Authentication
// @Produce json
// @Success 200 {object} response.Envelope
// @Failure 401 {object} response.Envelope
// @Router /auth/me [get]
func (h *AuthHandler) Me(c *gin.Context) {
	if _, ok := actorFromContext(c); !ok {
		return
	}
	claims := claimsFromContext(c)
	response.JSON(c, http.StatusOK, meResponse{
		UserID:    claims.UserID,
		Role:      string(claims.Role),
		AdminType: string(claims.AdminType),
		Email:     claims.Email,
		FullName:  claims.FullName,
	}, nil)
}

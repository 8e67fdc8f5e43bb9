package handler

import (
	"fmt"
	"io"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/residence-portal-api/internal/middleware"
	"github.com/noah-isme/residence-portal-api/internal/models"
	appErrors "github.com/noah-isme/residence-portal-api/pkg/errors"
	"github.com/noah-isme/residence-portal-api/pkg/response"
)

const maxBodyBytes = 1 << 20

func claimsFromContext(c *gin.Context) *models.JWTClaims {
	claims, ok := middleware.Claims(c)
	if !ok {
		return nil
	}
	return claims
}

// actorFromContext writes a 401 and returns false when the caller is unauthenticated.
func actorFromContext(c *gin.Context) (models.Actor, bool) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return models.Actor{}, false
	}
	return models.ActorFromClaims(claims), true
}

// kindParam resolves the :kind route parameter, accepting collection aliases.
func kindParam(c *gin.Context) (models.Kind, bool) {
	kind, ok := models.ParseKind(c.Param("kind"))
	if !ok {
		response.Error(c, appErrors.Clone(appErrors.ErrNotFound, fmt.Sprintf("unknown request kind %q", c.Param("kind"))))
		return "", false
	}
	return kind, true
}

func readBody(c *gin.Context) ([]byte, bool) {
	body, err := io.ReadAll(io.LimitReader(c.Request.Body, maxBodyBytes))
	if err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "unable to read request body"))
		return nil, false
	}
	return body, true
}

func bindJSON(c *gin.Context, dest interface{}) bool {
	if err := c.ShouldBindJSON(dest); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid request body"))
		return false
	}
	return true
}

func bindQuery(c *gin.Context, dest interface{}) bool {
	if err := c.ShouldBindQuery(dest); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid query parameters"))
		return false
	}
	return true
}

package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/residence-portal-api/internal/models"
	appErrors "github.com/noah-isme/residence-portal-api/pkg/errors"
	"github.com/noah-isme/residence-portal-api/pkg/logger"
	"github.com/noah-isme/residence-portal-api/pkg/response"
)

// ContextUserKey is the gin context key storing JWT claims.
const ContextUserKey = "currentUser"

// accessTokenParam carries the token for clients that cannot set headers, such as browser websockets.
const accessTokenParam = "access_token"

// TokenValidator verifies an access token and returns its claims.
type TokenValidator interface {
	ValidateToken(token string) (*models.JWTClaims, error)
}

// JWT protects routes by requiring a valid bearer token.
func JWT(auth TokenValidator) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			response.Error(c, appErrors.ErrUnauthorized)
			c.Abort()
			return
		}

		parts := strings.SplitN(header, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			response.Error(c, appErrors.Clone(appErrors.ErrUnauthorized, "invalid authorization header"))
			c.Abort()
			return
		}

		authenticate(c, auth, strings.TrimSpace(parts[1]))
	}
}

// JWTOrQuery accepts the bearer header or, failing that, an access_token query parameter.
func JWTOrQuery(auth TokenValidator) gin.HandlerFunc {
	header := JWT(auth)
	return func(c *gin.Context) {
		if c.GetHeader("Authorization") != "" {
			header(c)
			return
		}
		token := c.Query(accessTokenParam)
		if token == "" {
			response.Error(c, appErrors.ErrUnauthorized)
			c.Abort()
			return
		}
		authenticate(c, auth, token)
	}
}

func authenticate(c *gin.Context, auth TokenValidator, token string) {
	claims, err := auth.ValidateToken(token)
	if err != nil {
		response.Error(c, err)
		c.Abort()
		return
	}

	c.Set(ContextUserKey, claims)
	c.Set(logger.UserIDKey, claims.UserID)
	c.Next()
}

// Claims returns the authenticated caller's claims, if any.
func Claims(c *gin.Context) (*models.JWTClaims, bool) {
	value, exists := c.Get(ContextUserKey)
	if !exists {
		return nil, false
	}
	claims, ok := value.(*models.JWTClaims)
	return claims, ok && claims != nil
}

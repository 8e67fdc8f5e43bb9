package service

import (
	"fmt"

	"github.com/golang-jwt/jwt/v5"

	"github.com/noah-isme/residence-portal-api/internal/models"
	"github.com/noah-isme/residence-portal-api/pkg/config"
	appErrors "github.com/noah-isme/residence-portal-api/pkg/errors"
)

// AuthService verifies access tokens issued by the external identity provider.
type AuthService struct {
	secret []byte
	opts   []jwt.ParserOption
}

// NewAuthService builds a verifier for HS256 tokens signed with cfg.Secret.
func NewAuthService(cfg config.JWTConfig) *AuthService {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
	}
	if cfg.Issuer != "" {
		opts = append(opts, jwt.WithIssuer(cfg.Issuer))
	}
	for _, aud := range cfg.Audience {
		opts = append(opts, jwt.WithAudience(aud))
	}
	return &AuthService{secret: []byte(cfg.Secret), opts: opts}
}

// ValidateToken parses and validates an access token returning the claims.
func (s *AuthService) ValidateToken(tokenString string) (*models.JWTClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &models.JWTClaims{}, func(token *jwt.Token) (interface{}, error) {
		if len(s.secret) == 0 {
			return nil, fmt.Errorf("token secret not configured")
		}
		return s.secret, nil
	}, s.opts...)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrUnauthorized.Code, appErrors.ErrUnauthorized.Status, "invalid token")
	}

	claims, ok := token.Claims.(*models.JWTClaims)
	if !ok || !token.Valid {
		return nil, appErrors.Clone(appErrors.ErrUnauthorized, "invalid token claims")
	}
	if claims.UserID == "" {
		claims.UserID = claims.Subject
	}
	if claims.UserID == "" || claims.Role == "" {
		return nil, appErrors.Clone(appErrors.ErrUnauthorized, "token is missing subject or role")
	}
	return claims, nil
}

package models

import "github.com/golang-jwt/jwt/v5"

// JWTClaims is the payload of access tokens issued by the identity provider.
type JWTClaims struct {
	UserID    string    `json:"user_id"`
	Role      UserRole  `json:"role"`
	AdminType AdminType `json:"admin_type,omitempty"`
	Email     string    `json:"email"`
	FullName  string    `json:"full_name"`
	jwt.RegisteredClaims
}

// Actor is the authenticated caller of a service operation.
type Actor struct {
	UserID    string
	Role      UserRole
	AdminType AdminType
	Name      string
}

// ActorFromClaims converts token claims into an Actor.
func ActorFromClaims(c *JWTClaims) Actor {
	if c == nil {
		return Actor{}
	}
	return Actor{UserID: c.UserID, Role: c.Role, AdminType: c.AdminType, Name: c.FullName}
}

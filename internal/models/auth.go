package models

import "github.com/golang-jwt/jwt/v5"

// UserRole enumerates token roles.
type UserRole string

const (
	RoleAdmin   UserRole = "ADMIN"
	RolePlanner UserRole = "PLANNER"
)

// JWTClaims carries the identity that owns saved study plans.
type JWTClaims struct {
	UserID string   `json:"user_id"`
	Role   UserRole `json:"role"`
	Email  string   `json:"email,omitempty"`
	jwt.RegisteredClaims
}

package auth

import (
	"github.com/golang-jwt/jwt/v5"
)

// Role scopes attached to authenticated principals.
const (
	ScopeUser  = "user"
	ScopeAdmin = "admin"
)

// Claims carried in the signed access token.
type Claims struct {
	UserID    int64    `json:"id"`
	FirstName string   `json:"firstName"`
	LastName  string   `json:"lastName"`
	Mail      string   `json:"mail"`
	Scope     []string `json:"scope"`
	jwt.RegisteredClaims
}

// LoginRequest represents the login request body.
type LoginRequest struct {
	Mail     string `json:"mail"`
	Password string `json:"password"`
}

// LoginResponse represents the login response body.
type LoginResponse struct {
	Token   string `json:"token"`
	Message string `json:"message"`
}

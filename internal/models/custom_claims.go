package models

import "github.com/golang-jwt/jwt/v5"

// CustomClaims is the claim set carried by both connected-account and guest
// session tokens. UserID is the account id for connected users and the
// generated session id for guests; Role decides whether requests are served
// from the database or the local guest store.
type CustomClaims struct {
	jwt.RegisteredClaims
	UserID    string `json:"user_id"`
	Email     string `json:"email,omitempty"`
	Role      string `json:"role,omitempty"`
	TokenType string `json:"token_type"`
}

// IsGuest reports whether the token belongs to a guest session. Guest sessions
// have no server-side account, no refresh token and no sync access.
func (c *CustomClaims) IsGuest() bool {
	return c.Role == RoleGuest
}

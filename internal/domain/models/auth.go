package models

import "github.com/golang-jwt/jwt/v5"

// Claims is the access token payload issued by the auth provider.
// The layout follows Supabase Auth tokens.
type Claims struct {
	jwt.RegisteredClaims
	Email       string `json:"email"`
	Role        string `json:"role"` // "authenticated" or "anon"
	SessionID   string `json:"session_id"`
	IsAnonymous bool   `json:"is_anonymous"`
}

// GetUserID returns the subject claim.
func (c *Claims) GetUserID() string {
	return c.Subject
}

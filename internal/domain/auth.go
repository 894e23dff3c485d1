package domain

import "time"

// TokenClaims is the verified content of an access token.
type TokenClaims struct {
	ID        string
	Subject   string
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// IssuedToken is a signed access token handed to a client.
type IssuedToken struct {
	Token     string
	ExpiresAt time.Time
}

package domain

import "errors"

var (
	ErrDuplicateEmail     = errors.New("email already registered")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidToken       = errors.New("could not validate credentials")
	ErrForbidden          = errors.New("insufficient role")
	ErrNotFound           = errors.New("not found")
	ErrOutOfStock         = errors.New("sweet is out of stock")
	ErrInvalidAmount      = errors.New("amount must not be negative")
	ErrInvalidRole        = errors.New("unknown role")
)

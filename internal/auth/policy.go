package auth

import "github.com/spec-kit/sweetshop/internal/domain"

// CheckAdmin enforces the admin capability level.
func CheckAdmin(user *domain.User) error {
	if user == nil {
		return domain.ErrInvalidToken
	}
	if !user.IsAdmin() {
		return domain.ErrForbidden
	}
	return nil
}

// CheckOwner hides records owned by someone else behind ErrNotFound so that
// their existence is never confirmed.
func CheckOwner(user *domain.User, sweet *domain.Sweet) error {
	if user == nil || sweet == nil || sweet.OwnerID != user.ID {
		return domain.ErrNotFound
	}
	return nil
}

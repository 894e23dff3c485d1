package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/spec-kit/sweetshop/internal/domain"
)

func TestCheckAdmin(t *testing.T) {
	assert.ErrorIs(t, CheckAdmin(nil), domain.ErrInvalidToken)
	assert.ErrorIs(t, CheckAdmin(&domain.User{Role: domain.RoleCustomer}), domain.ErrForbidden)
	assert.NoError(t, CheckAdmin(&domain.User{Role: domain.RoleAdmin}))
}

func TestCheckOwner(t *testing.T) {
	owner := &domain.User{ID: 1}
	other := &domain.User{ID: 2}
	sweet := &domain.Sweet{ID: 10, OwnerID: 1}

	assert.NoError(t, CheckOwner(owner, sweet))
	assert.ErrorIs(t, CheckOwner(other, sweet), domain.ErrNotFound)
	assert.ErrorIs(t, CheckOwner(owner, nil), domain.ErrNotFound)
}

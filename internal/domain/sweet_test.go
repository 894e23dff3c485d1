package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSweetPatch_ApplyOnlySetFields(t *testing.T) {
	s := Sweet{Name: "Lemon Tart", Category: "Dessert", Price: 2.75, Quantity: 7}
	price := 3.0
	qty := 5

	patch := SweetPatch{Price: &price, Quantity: &qty}
	assert.False(t, patch.Empty())
	patch.Apply(&s)

	assert.Equal(t, "Lemon Tart", s.Name)
	assert.Equal(t, "Dessert", s.Category)
	assert.Equal(t, 3.0, s.Price)
	assert.Equal(t, 5, s.Quantity)
}

func TestSweetPatch_Empty(t *testing.T) {
	assert.True(t, SweetPatch{}.Empty())
}

func TestRole(t *testing.T) {
	assert.True(t, RoleAdmin.Valid())
	assert.True(t, RoleCustomer.Valid())
	assert.False(t, Role("owner").Valid())

	var nilUser *User
	assert.False(t, nilUser.IsAdmin())
	assert.True(t, (&User{Role: RoleAdmin}).IsAdmin())
}

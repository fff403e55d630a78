package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUser_IsAdmin(t *testing.T) {
	assert.True(t, (&User{Role: RoleAdmin}).IsAdmin())
	assert.False(t, (&User{Role: RoleUser}).IsAdmin())

	var nobody *User
	assert.False(t, nobody.IsAdmin())
}

func TestUser_HasFavorite(t *testing.T) {
	u := &User{Favorites: []string{"b1", "b2"}}
	assert.True(t, u.HasFavorite("b1"))
	assert.False(t, u.HasFavorite("b3"))

	var nobody *User
	assert.False(t, nobody.HasFavorite("b1"))
}

func TestUser_ToggledFavorites(t *testing.T) {
	u := &User{Favorites: []string{"b1", "b2"}}

	added := u.ToggledFavorites("b3")
	assert.Equal(t, []string{"b1", "b2", "b3"}, added)

	removed := u.ToggledFavorites("b1")
	assert.Equal(t, []string{"b2"}, removed)

	// receiver untouched either way
	require.Equal(t, []string{"b1", "b2"}, u.Favorites)
}

func TestBook_Available(t *testing.T) {
	assert.True(t, (&Book{}).Available())
	assert.False(t, (&Book{RentedBy: "u1"}).Available())
}

func TestOrder_Active(t *testing.T) {
	assert.True(t, (&Order{}).Active())

	now := time.Now()
	assert.False(t, (&Order{ReturnedAt: &now}).Active())
}

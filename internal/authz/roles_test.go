package authz

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"autodocs/internal/models"
)

func TestHasRole(t *testing.T) {
	assert.False(t, HasRole(nil, RoleAdmin))
	assert.False(t, HasRole(&models.User{}, RoleStudent))
	assert.True(t, HasRole(&models.User{RoleName: "student"}, RoleStudent))
	assert.False(t, HasRole(&models.User{RoleName: RoleAlumni}, RoleAdmin))
}

func TestCanRequestDocuments(t *testing.T) {
	assert.True(t, CanRequestDocuments(&models.User{RoleName: RoleStudent}))
	assert.True(t, CanRequestDocuments(&models.User{RoleName: RoleAlumni}))
	assert.False(t, CanRequestDocuments(&models.User{RoleName: RoleAdmin}))
	assert.True(t, IsAdmin("admin"))
}

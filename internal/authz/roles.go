package authz

import (
	"strings"

	"autodocs/internal/models"
)

// Имена ролей из таблицы roles.
const (
	RoleAdmin   = "Admin"
	RoleStudent = "Student"
	RoleAlumni  = "Alumni"
)

// HasRole — проверка возможности по роли аккаунта.
func HasRole(u *models.User, role string) bool {
	if u == nil || u.RoleName == "" {
		return false
	}
	return strings.EqualFold(u.RoleName, role)
}

// CanRequestDocuments — документы заказывают только студенты и выпускники.
func CanRequestDocuments(u *models.User) bool {
	return HasRole(u, RoleStudent) || HasRole(u, RoleAlumni)
}

func IsAdmin(roleName string) bool {
	return strings.EqualFold(roleName, RoleAdmin)
}

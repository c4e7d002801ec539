package models

import "time"

type UserRole string

const (
	RoleAdmin   UserRole = "admin"
	RoleAlmacen UserRole = "almacen"
	RoleVentas  UserRole = "ventas"
	RoleCompras UserRole = "compras"
)

// ValidRole: roles aceptados al crear/editar usuarios
func ValidRole(r UserRole) bool {
	switch r {
	case RoleAdmin, RoleAlmacen, RoleVentas, RoleCompras:
		return true
	}
	return false
}

type User struct {
	ID           uint     `gorm:"primaryKey"`
	Username     string   `gorm:"size:150;uniqueIndex;not null"`
	FirstName    string   `gorm:"size:150;not null"`
	LastName     string   `gorm:"size:150"`
	Email        string   `gorm:"size:100"`
	PasswordHash string   `gorm:"size:255;not null"`
	Role         UserRole `gorm:"size:20;not null;default:almacen"`
	Status       string   `gorm:"size:20;not null;default:active"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

func (u *User) FullName() string {
	if u.LastName == "" {
		return u.FirstName
	}
	return u.FirstName + " " + u.LastName
}

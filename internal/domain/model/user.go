package model

import "time"

// Role grants access to administrative endpoints.
type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

// User represents a marketplace customer holding a wallet balance.
type User struct {
	ID           int64
	Name         string
	Email        string
	PasswordHash string
	Balance      int64
	Role         Role
	Banned       bool
	BanReason    string
	CreatedAt    time.Time
}

// IsAdmin reports whether the user carries the admin role.
func (u User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

package models

// UserRole is carried in the "role" claim of access tokens.
type UserRole string

const (
	RoleAdmin  UserRole = "admin"
	RoleUmpire UserRole = "umpire"
	RoleViewer UserRole = "viewer"
)

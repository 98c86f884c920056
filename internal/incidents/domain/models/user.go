package models

const (
	RoleAdmin    = "admin"
	RoleManager  = "manager"
	RoleReporter = "reporter"
)

type User struct {
	ID           int64  `json:"user_id"` //nolint:tagliatelle
	Email        string `json:"email"`
	PasswordHash string `json:"-"`
	Name         string `json:"name"`
	Role         string `json:"role"`
}

func ValidRole(role string) bool {
	switch role {
	case RoleAdmin, RoleManager, RoleReporter:
		return true
	default:
		return false
	}
}

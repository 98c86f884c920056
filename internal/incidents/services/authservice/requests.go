package authservice

import "github.com/Leopold1975/incidents_control/internal/incidents/domain/models"

type RegisterRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name"`
	Role     string `json:"role"`
	// Token is the caller's access token, required only
	// when registering privileged roles.
	Token string `json:"-"`
}

type AuthResponse struct {
	Token        string      `json:"token"`
	RefreshToken string      `json:"refreshToken"` //nolint:tagliatelle
	User         models.User `json:"user"`
}

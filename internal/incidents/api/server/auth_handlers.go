package server

import (
	"encoding/json"
	"net/http"
	"net/mail"
	"strings"
	"unicode/utf8"

	"github.com/Leopold1975/incidents_control/internal/incidents/domain/models"
	"github.com/Leopold1975/incidents_control/internal/incidents/services/authservice"
)

const minPasswordLen = 8

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type refreshRequest struct {
	RefreshToken string `json:"refreshToken"` //nolint:tagliatelle
}

func (s Server) register(w http.ResponseWriter, r *http.Request) {
	var req authservice.RegisterRequest

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		handleError(w, "invalid body", http.StatusBadRequest)

		return
	}

	req.Email = strings.ToLower(strings.TrimSpace(req.Email))

	if _, err := mail.ParseAddress(req.Email); err != nil {
		handleError(w, "valid email required", http.StatusBadRequest)

		return
	}

	if utf8.RuneCountInString(req.Password) < minPasswordLen {
		handleError(w, "password must be at least 8 characters", http.StatusBadRequest)

		return
	}

	if req.Role != "" && !models.ValidRole(req.Role) {
		handleError(w, "invalid role", http.StatusBadRequest)

		return
	}

	if auth := r.Header.Get("Authorization"); strings.HasPrefix(auth, "Bearer ") {
		req.Token = strings.TrimPrefix(auth, "Bearer ")
	}

	resp, err := s.authService.Register(r.Context(), req)
	if err != nil {
		s.handleServiceError(w, err)

		return
	}

	writeJSON(w, http.StatusCreated, resp)
}

func (s Server) login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		handleError(w, "invalid body", http.StatusBadRequest)

		return
	}

	req.Email = strings.ToLower(strings.TrimSpace(req.Email))

	if req.Email == "" || req.Password == "" {
		handleError(w, "email and password required", http.StatusBadRequest)

		return
	}

	resp, err := s.authService.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		s.handleServiceError(w, err)

		return
	}

	writeJSON(w, http.StatusOK, resp)
}

func (s Server) refreshToken(w http.ResponseWriter, r *http.Request) {
	var req refreshRequest

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || strings.TrimSpace(req.RefreshToken) == "" {
		handleError(w, "refreshToken required", http.StatusBadRequest)

		return
	}

	resp, err := s.authService.Refresh(r.Context(), strings.TrimSpace(req.RefreshToken))
	if err != nil {
		s.handleServiceError(w, err)

		return
	}

	writeJSON(w, http.StatusOK, resp)
}

func (s Server) logout(w http.ResponseWriter, r *http.Request) {
	var req refreshRequest

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || strings.TrimSpace(req.RefreshToken) == "" {
		handleError(w, "refreshToken required", http.StatusBadRequest)

		return
	}

	if err := s.authService.Logout(r.Context(), strings.TrimSpace(req.RefreshToken)); err != nil {
		s.handleServiceError(w, err)

		return
	}

	writeJSON(w, http.StatusOK, MessageResponse{Message: "logged out"})
}

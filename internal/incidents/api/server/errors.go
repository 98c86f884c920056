package server

import (
	"errors"
	"net/http"

	"github.com/Leopold1975/incidents_control/internal/incidents/domain/models"
	"github.com/Leopold1975/incidents_control/internal/incidents/repository/userrepo"
	"github.com/Leopold1975/incidents_control/internal/incidents/services/authservice"
	"github.com/Leopold1975/incidents_control/internal/incidents/services/incidentservice"
	"github.com/Leopold1975/incidents_control/internal/incidents/services/projectservice"
	"github.com/Leopold1975/incidents_control/internal/pkg/jwtauth"
)

func handleError(w http.ResponseWriter, msg string, code int) {
	writeJSON(w, code, MessageResponse{Message: msg})
}

// handleServiceError maps service failures onto the API's error taxonomy.
// Anything unclassified becomes a 500; the raw error text is exposed only
// in development mode.
func (s Server) handleServiceError(w http.ResponseWriter, err error) {
	var vErr models.ValidationError

	switch {
	case errors.As(err, &vErr):
		handleError(w, vErr.Msg, http.StatusBadRequest)
	case errors.Is(err, userrepo.ErrAlreadyExists):
		handleError(w, "duplicate entry", http.StatusBadRequest)
	case errors.Is(err, authservice.ErrInvalidCredentials):
		handleError(w, "invalid credentials", http.StatusUnauthorized)
	case errors.Is(err, authservice.ErrSessionRevoked):
		handleError(w, "refresh session revoked", http.StatusUnauthorized)
	case errors.Is(err, jwtauth.ErrTokenExpired):
		handleError(w, "token expired", http.StatusUnauthorized)
	case errors.Is(err, jwtauth.ErrTokenInvalid):
		handleError(w, "invalid token", http.StatusUnauthorized)
	case errors.Is(err, authservice.ErrNotAllowed),
		errors.Is(err, projectservice.ErrNotAllowed),
		errors.Is(err, incidentservice.ErrNotAllowed):
		handleError(w, "not allowed", http.StatusForbidden)
	case errors.Is(err, projectservice.ErrNotFound):
		handleError(w, "project not found", http.StatusNotFound)
	case errors.Is(err, incidentservice.ErrNotFound):
		handleError(w, "incident not found", http.StatusNotFound)
	case errors.Is(err, projectservice.ErrHasIncidents):
		handleError(w, "project still has incidents", http.StatusBadRequest)
	default:
		msg := "server error"
		if s.dev {
			msg = err.Error()
		}

		handleError(w, msg, http.StatusInternalServerError)
	}
}

package server

import (
	"encoding/json"
	"net/http"

	"github.com/Leopold1975/incidents_control/internal/incidents/domain/models"
)

type MessageResponse struct {
	Message string `json:"message"`
}

type CreateIncidentResponse struct {
	Message    string `json:"message"`
	IncidentID int64  `json:"incident_id"` //nolint:tagliatelle
}

type UpdateIncidentResponse struct {
	Message  string          `json:"message"`
	Incident models.Incident `json:"incident"`
}

type CreateProjectResponse struct {
	Message string         `json:"message"`
	Project models.Project `json:"project"`
}

type UpdateProjectResponse struct {
	Message string         `json:"message"`
	Project models.Project `json:"project"`
}

type UploadResponse struct {
	Message  string `json:"message"`
	Uploaded int    `json:"uploaded"`
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)

	enc := json.NewEncoder(w)
	enc.Encode(v) //nolint:errcheck
}

package incidentservice

import (
	"io"

	"github.com/Leopold1975/incidents_control/internal/incidents/domain/models"
)

type CreateRequest struct {
	Title       string          `json:"title"`
	Description string          `json:"description"`
	ProjectID   int64           `json:"project_id"` //nolint:tagliatelle
	Severity    models.Severity `json:"severity"`
	Status      models.Status   `json:"status"`
}

type UpdateRequest struct {
	Title       *string          `json:"title"`
	Description *string          `json:"description"`
	ProjectID   *int64           `json:"project_id"` //nolint:tagliatelle
	Severity    *models.Severity `json:"severity"`
	Status      *models.Status   `json:"status"`
}

type ListRequest struct {
	ProjectID int64
	Severity  models.Severity
	Status    models.Status
}

type IncidentDetails struct {
	models.Incident
	Attachments []models.Attachment `json:"attachments"`
}

// UploadFile is one file of an attachment request, decoupled from the
// multipart plumbing so the service can be driven from tests directly.
type UploadFile struct {
	Name string
	Size int64
	Open func() (io.ReadCloser, error)
}

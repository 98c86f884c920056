package incidentrepo

import (
	"errors"

	"github.com/Leopold1975/incidents_control/internal/incidents/domain/models"
)

var ErrNotFound = errors.New("incident not found")

type ListRequest struct {
	ProjectID int64
	Severity  models.Severity
	Status    models.Status
}

// UpdateRequest carries a partial patch, nil fields stay untouched.
type UpdateRequest struct {
	Title       *string
	Description *string
	ProjectID   *int64
	Severity    *models.Severity
	Status      *models.Status
}

func (r UpdateRequest) Empty() bool {
	return r.Title == nil && r.Description == nil && r.ProjectID == nil &&
		r.Severity == nil && r.Status == nil
}

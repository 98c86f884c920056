package policy

import (
	"github.com/Leopold1975/incidents_control/internal/incidents/domain/models"
)

type Action string

const (
	ProjectList   Action = "project.list"
	ProjectGet    Action = "project.get"
	ProjectCreate Action = "project.create"
	ProjectUpdate Action = "project.update"
	ProjectDelete Action = "project.delete"

	IncidentList   Action = "incident.list"
	IncidentGet    Action = "incident.get"
	IncidentCreate Action = "incident.create"
	IncidentUpdate Action = "incident.update"
	IncidentDelete Action = "incident.delete"
	AttachmentAdd  Action = "incident.attach"
)

type Actor struct {
	ID    int64
	Email string
	Role  string
}

// roleGrants is the static allow-list per action. Actions missing a role
// may still be permitted through ownership, see Allow.
var roleGrants = map[Action]map[string]bool{
	ProjectList:   {models.RoleAdmin: true, models.RoleManager: true},
	ProjectGet:    {models.RoleAdmin: true, models.RoleManager: true, models.RoleReporter: true},
	ProjectCreate: {models.RoleAdmin: true, models.RoleManager: true},
	ProjectUpdate: {models.RoleAdmin: true, models.RoleManager: true},
	ProjectDelete: {models.RoleAdmin: true, models.RoleManager: true},

	IncidentList:   {models.RoleAdmin: true, models.RoleManager: true, models.RoleReporter: true},
	IncidentGet:    {models.RoleAdmin: true, models.RoleManager: true, models.RoleReporter: true},
	IncidentCreate: {models.RoleAdmin: true, models.RoleManager: true, models.RoleReporter: true},
	IncidentUpdate: {models.RoleAdmin: true, models.RoleManager: true},
	IncidentDelete: {models.RoleAdmin: true, models.RoleManager: true},
	AttachmentAdd:  {models.RoleAdmin: true, models.RoleManager: true, models.RoleReporter: true},
}

// Allow evaluates whether the actor may perform action on res.
// res may be nil for actions without an ownership dimension; an incident
// passed as res additionally permits its reporter to mutate or attach to it.
func Allow(actor Actor, action Action, res any) bool {
	if roleGrants[action][actor.Role] {
		return true
	}

	inc, ok := res.(models.Incident)
	if !ok {
		return false
	}

	switch action {
	case IncidentUpdate, IncidentDelete, AttachmentAdd:
		return inc.ReportedBy == actor.ID
	default:
		return false
	}
}

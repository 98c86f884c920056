package projectrepo

import "errors"

var (
	ErrNotFound     = errors.New("project not found")
	ErrHasIncidents = errors.New("project has incidents")
)

type ListRequest struct {
	Page  int
	Limit int
}

type UpdateRequest struct {
	Name     *string
	Location *string
}

package projectservice

import "github.com/Leopold1975/incidents_control/internal/incidents/domain/models"

type CreateRequest struct {
	Name     string `json:"name"`
	Location string `json:"location"`
}

type UpdateRequest struct {
	Name     *string `json:"name"`
	Location *string `json:"location"`
}

type ListRequest struct {
	Page  int
	Limit int
}

type Pagination struct {
	Page       int `json:"page"`
	Limit      int `json:"limit"`
	Total      int `json:"total"`
	TotalPages int `json:"totalPages"` //nolint:tagliatelle
}

type ListResponse struct {
	Projects   []models.Project `json:"projects"`
	Pagination Pagination       `json:"pagination"`
}

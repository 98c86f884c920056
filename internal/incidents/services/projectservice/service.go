package projectservice

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/Leopold1975/incidents_control/internal/incidents/domain/models"
	"github.com/Leopold1975/incidents_control/internal/incidents/domain/policy"
	repo "github.com/Leopold1975/incidents_control/internal/incidents/repository/projectrepo"
	"github.com/Leopold1975/incidents_control/pkg/logger"
)

var (
	ErrNotFound     = errors.New("project not found")
	ErrNotAllowed   = errors.New("not allowed")
	ErrHasIncidents = errors.New("project still has incidents")
)

type Repository interface {
	Create(context.Context, models.Project) (int64, error)
	GetByID(context.Context, int64) (models.Project, error)
	Update(context.Context, int64, repo.UpdateRequest) error
	Delete(context.Context, int64) error
	List(context.Context, repo.ListRequest) ([]models.Project, int, error)
}

type ProjectService struct {
	projectRepo Repository
	lg          logger.Logger
}

func New(projectRepo Repository, lg logger.Logger) *ProjectService {
	return &ProjectService{
		projectRepo: projectRepo,
		lg:          lg,
	}
}

func (ps *ProjectService) Create(ctx context.Context, actor policy.Actor, req CreateRequest) (models.Project, error) {
	if !policy.Allow(actor, policy.ProjectCreate, nil) {
		return models.Project{}, ErrNotAllowed
	}

	name := strings.TrimSpace(req.Name)
	location := strings.TrimSpace(req.Location)

	if name == "" || location == "" {
		return models.Project{}, models.Invalid("name and location required")
	}

	p := models.Project{Name: name, Location: location}

	id, err := ps.projectRepo.Create(ctx, p)
	if err != nil {
		return models.Project{}, fmt.Errorf("create project error: %w", err)
	}

	created, err := ps.projectRepo.GetByID(ctx, id)
	if err != nil {
		return models.Project{}, fmt.Errorf("get project error: %w", err)
	}

	return created, nil
}

func (ps *ProjectService) Get(ctx context.Context, actor policy.Actor, id int64) (models.Project, error) {
	if !policy.Allow(actor, policy.ProjectGet, nil) {
		return models.Project{}, ErrNotAllowed
	}

	p, err := ps.projectRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return models.Project{}, ErrNotFound
		}

		return models.Project{}, fmt.Errorf("get project error: %w", err)
	}

	return p, nil
}

func (ps *ProjectService) Update(ctx context.Context, actor policy.Actor, id int64, req UpdateRequest) (models.Project, error) {
	if !policy.Allow(actor, policy.ProjectUpdate, nil) {
		return models.Project{}, ErrNotAllowed
	}

	var patch repo.UpdateRequest

	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return models.Project{}, models.Invalid("project name must be a non-empty string")
		}

		patch.Name = &name
	}

	if req.Location != nil {
		location := strings.TrimSpace(*req.Location)
		if location == "" {
			return models.Project{}, models.Invalid("location must be a non-empty string")
		}

		patch.Location = &location
	}

	if patch.Name == nil && patch.Location == nil {
		return models.Project{}, models.Invalid("no valid fields to update")
	}

	if err := ps.projectRepo.Update(ctx, id, patch); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return models.Project{}, ErrNotFound
		}

		return models.Project{}, fmt.Errorf("update project error: %w", err)
	}

	p, err := ps.projectRepo.GetByID(ctx, id)
	if err != nil {
		return models.Project{}, fmt.Errorf("get project error: %w", err)
	}

	return p, nil
}

func (ps *ProjectService) Delete(ctx context.Context, actor policy.Actor, id int64) error {
	if !policy.Allow(actor, policy.ProjectDelete, nil) {
		return ErrNotAllowed
	}

	if err := ps.projectRepo.Delete(ctx, id); err != nil {
		switch {
		case errors.Is(err, repo.ErrNotFound):
			return ErrNotFound
		case errors.Is(err, repo.ErrHasIncidents):
			return ErrHasIncidents
		default:
			return fmt.Errorf("delete project error: %w", err)
		}
	}

	ps.lg.Infof("project %d deleted by user %d", id, actor.ID)

	return nil
}

func (ps *ProjectService) List(ctx context.Context, actor policy.Actor, req ListRequest) (ListResponse, error) {
	if !policy.Allow(actor, policy.ProjectList, nil) {
		return ListResponse{}, ErrNotAllowed
	}

	if req.Page < 1 {
		req.Page = 1
	}

	if req.Limit < 1 || req.Limit > 100 {
		req.Limit = 10
	}

	projects, total, err := ps.projectRepo.List(ctx, repo.ListRequest{Page: req.Page, Limit: req.Limit})
	if err != nil {
		return ListResponse{}, fmt.Errorf("list projects error: %w", err)
	}

	totalPages := (total + req.Limit - 1) / req.Limit

	return ListResponse{
		Projects: projects,
		Pagination: Pagination{
			Page:       req.Page,
			Limit:      req.Limit,
			Total:      total,
			TotalPages: totalPages,
		},
	}, nil
}

package incidentservice

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Leopold1975/incidents_control/internal/incidents/domain/models"
	"github.com/Leopold1975/incidents_control/internal/incidents/domain/policy"
	repo "github.com/Leopold1975/incidents_control/internal/incidents/repository/incidentrepo"
	"github.com/Leopold1975/incidents_control/internal/incidents/repository/projectrepo"
	"github.com/Leopold1975/incidents_control/pkg/logger"
)

var (
	ErrNotFound   = errors.New("incident not found")
	ErrNotAllowed = errors.New("not allowed")
)

const (
	maxTitleLen       = 80
	maxDescriptionLen = 5000
)

type Repository interface {
	Create(context.Context, models.Incident) (int64, error)
	GetByID(context.Context, int64) (models.Incident, error)
	List(context.Context, repo.ListRequest) ([]models.Incident, error)
	Update(context.Context, int64, repo.UpdateRequest) error
	Delete(context.Context, int64) ([]string, error)
	AddAttachments(context.Context, []models.Attachment) error
	ListAttachments(context.Context, int64) ([]models.Attachment, error)
}

type ProjectRepository interface {
	GetByID(context.Context, int64) (models.Project, error)
}

type IncidentService struct {
	incidentRepo Repository
	projectRepo  ProjectRepository
	uploads      Uploads
	lg           logger.Logger
}

func New(incidentRepo Repository, projectRepo ProjectRepository, uploads Uploads, lg logger.Logger) *IncidentService {
	return &IncidentService{
		incidentRepo: incidentRepo,
		projectRepo:  projectRepo,
		uploads:      uploads,
		lg:           lg,
	}
}

func (is *IncidentService) Create(ctx context.Context, actor policy.Actor, req CreateRequest) (models.Incident, error) {
	if !policy.Allow(actor, policy.IncidentCreate, nil) {
		return models.Incident{}, ErrNotAllowed
	}

	title := strings.TrimSpace(req.Title)
	if title == "" || req.ProjectID == 0 {
		return models.Incident{}, models.Invalid("title and project_id are required")
	}

	if len(title) > maxTitleLen {
		return models.Incident{}, models.Invalid("title must be between 1 and 80 characters")
	}

	if len(req.Description) > maxDescriptionLen {
		return models.Incident{}, models.Invalid("description must be less than 5000 characters")
	}

	severity := req.Severity
	if severity == "" {
		severity = models.SeverityLow
	}

	if !severity.Valid() {
		return models.Incident{}, models.Invalid("invalid severity, must be low, moderate, or high")
	}

	status := req.Status
	if status == "" {
		status = models.StatusOpen
	}

	if !status.Valid() {
		return models.Incident{}, models.Invalid("invalid status, must be open or closed")
	}

	if _, err := is.projectRepo.GetByID(ctx, req.ProjectID); err != nil {
		if errors.Is(err, projectrepo.ErrNotFound) {
			return models.Incident{}, models.Invalid("project not found")
		}

		return models.Incident{}, fmt.Errorf("get project error: %w", err)
	}

	inc := models.Incident{
		Title:       title,
		Description: req.Description,
		ProjectID:   req.ProjectID,
		Severity:    severity,
		Status:      status,
		ReportedBy:  actor.ID,
		ReportedOn:  time.Now().UTC(),
	}

	id, err := is.incidentRepo.Create(ctx, inc)
	if err != nil {
		return models.Incident{}, fmt.Errorf("create incident error: %w", err)
	}

	inc.ID = id

	return inc, nil
}

func (is *IncidentService) Get(ctx context.Context, actor policy.Actor, id int64) (IncidentDetails, error) {
	if !policy.Allow(actor, policy.IncidentGet, nil) {
		return IncidentDetails{}, ErrNotAllowed
	}

	inc, err := is.incidentRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return IncidentDetails{}, ErrNotFound
		}

		return IncidentDetails{}, fmt.Errorf("get incident error: %w", err)
	}

	atts, err := is.incidentRepo.ListAttachments(ctx, id)
	if err != nil {
		return IncidentDetails{}, fmt.Errorf("list attachments error: %w", err)
	}

	return IncidentDetails{Incident: inc, Attachments: atts}, nil
}

func (is *IncidentService) List(ctx context.Context, actor policy.Actor, req ListRequest) ([]models.Incident, error) {
	if !policy.Allow(actor, policy.IncidentList, nil) {
		return nil, ErrNotAllowed
	}

	if req.Severity != "" && !req.Severity.Valid() {
		return nil, models.Invalid("invalid severity, must be low, moderate, or high")
	}

	if req.Status != "" && !req.Status.Valid() {
		return nil, models.Invalid("invalid status, must be open or closed")
	}

	incidents, err := is.incidentRepo.List(ctx, repo.ListRequest{
		ProjectID: req.ProjectID,
		Severity:  req.Severity,
		Status:    req.Status,
	})
	if err != nil {
		return nil, fmt.Errorf("list incidents error: %w", err)
	}

	return incidents, nil
}

func (is *IncidentService) Update(ctx context.Context, actor policy.Actor, id int64, req UpdateRequest) (models.Incident, error) {
	inc, err := is.incidentRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return models.Incident{}, ErrNotFound
		}

		return models.Incident{}, fmt.Errorf("get incident error: %w", err)
	}

	if !policy.Allow(actor, policy.IncidentUpdate, inc) {
		return models.Incident{}, ErrNotAllowed
	}

	var patch repo.UpdateRequest

	if req.Title != nil {
		title := strings.TrimSpace(*req.Title)
		if title == "" {
			return models.Incident{}, models.Invalid("title cannot be empty")
		}

		if len(title) > maxTitleLen {
			return models.Incident{}, models.Invalid("title must be between 1 and 80 characters")
		}

		patch.Title = &title
	}

	if req.Description != nil {
		if len(*req.Description) > maxDescriptionLen {
			return models.Incident{}, models.Invalid("description must be less than 5000 characters")
		}

		patch.Description = req.Description
	}

	if req.Severity != nil {
		if !req.Severity.Valid() {
			return models.Incident{}, models.Invalid("invalid severity, must be low, moderate, or high")
		}

		patch.Severity = req.Severity
	}

	if req.Status != nil {
		if !req.Status.Valid() {
			return models.Incident{}, models.Invalid("invalid status, must be open or closed")
		}

		patch.Status = req.Status
	}

	if req.ProjectID != nil {
		if _, err := is.projectRepo.GetByID(ctx, *req.ProjectID); err != nil {
			if errors.Is(err, projectrepo.ErrNotFound) {
				return models.Incident{}, models.Invalid("project not found")
			}

			return models.Incident{}, fmt.Errorf("get project error: %w", err)
		}

		patch.ProjectID = req.ProjectID
	}

	if patch.Empty() {
		return models.Incident{}, models.Invalid("no valid fields to update")
	}

	if err := is.incidentRepo.Update(ctx, id, patch); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return models.Incident{}, ErrNotFound
		}

		return models.Incident{}, fmt.Errorf("update incident error: %w", err)
	}

	updated, err := is.incidentRepo.GetByID(ctx, id)
	if err != nil {
		return models.Incident{}, fmt.Errorf("get incident error: %w", err)
	}

	return updated, nil
}

func (is *IncidentService) Delete(ctx context.Context, actor policy.Actor, id int64) error {
	inc, err := is.incidentRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return ErrNotFound
		}

		return fmt.Errorf("get incident error: %w", err)
	}

	if !policy.Allow(actor, policy.IncidentDelete, inc) {
		return ErrNotAllowed
	}

	paths, err := is.incidentRepo.Delete(ctx, id)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return ErrNotFound
		}

		return fmt.Errorf("delete incident error: %w", err)
	}

	// Files go after the rows are gone: a leftover file is harmless,
	// a dangling row is not.
	for _, p := range paths {
		if err := is.uploads.store.Remove(p); err != nil {
			is.lg.Errorf("remove attachment file error: %s", err.Error())
		}
	}

	is.lg.Infof("incident %d deleted by user %d", id, actor.ID)

	return nil
}

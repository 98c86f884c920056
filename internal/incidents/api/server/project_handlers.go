package server

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/Leopold1975/incidents_control/internal/incidents/services/projectservice"
	"github.com/go-chi/chi/v5"
)

func (s Server) createProject(w http.ResponseWriter, r *http.Request) {
	actor, _ := actorFrom(r.Context())

	var req projectservice.CreateRequest

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		handleError(w, "invalid body", http.StatusBadRequest)

		return
	}

	p, err := s.projectService.Create(r.Context(), actor, req)
	if err != nil {
		s.handleServiceError(w, err)

		return
	}

	writeJSON(w, http.StatusCreated, CreateProjectResponse{
		Message: "project created successfully",
		Project: p,
	})
}

func (s Server) getProject(w http.ResponseWriter, r *http.Request) {
	actor, _ := actorFrom(r.Context())

	id, ok := pathID(w, r)
	if !ok {
		return
	}

	p, err := s.projectService.Get(r.Context(), actor, id)
	if err != nil {
		s.handleServiceError(w, err)

		return
	}

	writeJSON(w, http.StatusOK, p)
}

func (s Server) updateProject(w http.ResponseWriter, r *http.Request) {
	actor, _ := actorFrom(r.Context())

	id, ok := pathID(w, r)
	if !ok {
		return
	}

	var req projectservice.UpdateRequest

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		handleError(w, "invalid body", http.StatusBadRequest)

		return
	}

	p, err := s.projectService.Update(r.Context(), actor, id, req)
	if err != nil {
		s.handleServiceError(w, err)

		return
	}

	writeJSON(w, http.StatusOK, UpdateProjectResponse{
		Message: "successfully updated",
		Project: p,
	})
}

func (s Server) deleteProject(w http.ResponseWriter, r *http.Request) {
	actor, _ := actorFrom(r.Context())

	id, ok := pathID(w, r)
	if !ok {
		return
	}

	if err := s.projectService.Delete(r.Context(), actor, id); err != nil {
		s.handleServiceError(w, err)

		return
	}

	writeJSON(w, http.StatusOK, MessageResponse{Message: "project deleted successfully"})
}

func (s Server) listProjects(w http.ResponseWriter, r *http.Request) {
	actor, _ := actorFrom(r.Context())

	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

	resp, err := s.projectService.List(r.Context(), actor, projectservice.ListRequest{
		Page:  page,
		Limit: limit,
	})
	if err != nil {
		s.handleServiceError(w, err)

		return
	}

	writeJSON(w, http.StatusOK, resp)
}

func pathID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id < 1 {
		handleError(w, "id must be a positive integer", http.StatusBadRequest)

		return 0, false
	}

	return id, true
}

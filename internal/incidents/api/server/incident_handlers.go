package server

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/Leopold1975/incidents_control/internal/incidents/domain/models"
	"github.com/Leopold1975/incidents_control/internal/incidents/services/incidentservice"
)

// uploadField is the multipart form field attachments must arrive in.
const uploadField = "image"

func (s Server) createIncident(w http.ResponseWriter, r *http.Request) {
	actor, _ := actorFrom(r.Context())

	var req incidentservice.CreateRequest

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		handleError(w, "invalid body", http.StatusBadRequest)

		return
	}

	inc, err := s.incidentService.Create(r.Context(), actor, req)
	if err != nil {
		s.handleServiceError(w, err)

		return
	}

	writeJSON(w, http.StatusCreated, CreateIncidentResponse{
		Message:    "incident created successfully",
		IncidentID: inc.ID,
	})
}

func (s Server) listIncidents(w http.ResponseWriter, r *http.Request) {
	actor, _ := actorFrom(r.Context())

	q := r.URL.Query()

	var req incidentservice.ListRequest

	if v := q.Get("project_id"); v != "" {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil || id < 1 {
			handleError(w, "project_id must be a positive integer", http.StatusBadRequest)

			return
		}

		req.ProjectID = id
	}

	req.Severity = models.Severity(q.Get("severity"))
	req.Status = models.Status(q.Get("status"))

	incidents, err := s.incidentService.List(r.Context(), actor, req)
	if err != nil {
		s.handleServiceError(w, err)

		return
	}

	writeJSON(w, http.StatusOK, incidents)
}

func (s Server) getIncident(w http.ResponseWriter, r *http.Request) {
	actor, _ := actorFrom(r.Context())

	id, ok := pathID(w, r)
	if !ok {
		return
	}

	details, err := s.incidentService.Get(r.Context(), actor, id)
	if err != nil {
		s.handleServiceError(w, err)

		return
	}

	writeJSON(w, http.StatusOK, details)
}

func (s Server) updateIncident(w http.ResponseWriter, r *http.Request) {
	actor, _ := actorFrom(r.Context())

	id, ok := pathID(w, r)
	if !ok {
		return
	}

	var req incidentservice.UpdateRequest

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		handleError(w, "invalid body", http.StatusBadRequest)

		return
	}

	inc, err := s.incidentService.Update(r.Context(), actor, id, req)
	if err != nil {
		s.handleServiceError(w, err)

		return
	}

	writeJSON(w, http.StatusOK, UpdateIncidentResponse{
		Message:  "incident updated successfully",
		Incident: inc,
	})
}

func (s Server) deleteIncident(w http.ResponseWriter, r *http.Request) {
	actor, _ := actorFrom(r.Context())

	id, ok := pathID(w, r)
	if !ok {
		return
	}

	if err := s.incidentService.Delete(r.Context(), actor, id); err != nil {
		s.handleServiceError(w, err)

		return
	}

	writeJSON(w, http.StatusOK, MessageResponse{Message: "incident deleted successfully"})
}

func (s Server) addAttachment(w http.ResponseWriter, r *http.Request) {
	actor, _ := actorFrom(r.Context())

	id, ok := pathID(w, r)
	if !ok {
		return
	}

	// Bound the whole body, a single oversized request shouldn't be
	// buffered before per-file checks run.
	maxBody := s.uploads.MaxFileSize*int64(s.uploads.MaxFiles) + 1<<20
	r.Body = http.MaxBytesReader(w, r.Body, maxBody)

	if err := r.ParseMultipartForm(32 << 20); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			handleError(w, "request too large", http.StatusBadRequest)

			return
		}

		handleError(w, "invalid multipart form", http.StatusBadRequest)

		return
	}
	defer r.MultipartForm.RemoveAll() //nolint:errcheck

	for field := range r.MultipartForm.File {
		if field != uploadField {
			handleError(w, `unexpected field name, use field name "image"`, http.StatusBadRequest)

			return
		}
	}

	headers := r.MultipartForm.File[uploadField]

	files := make([]incidentservice.UploadFile, 0, len(headers))

	for _, fh := range headers {
		fh := fh
		files = append(files, incidentservice.UploadFile{
			Name: fh.Filename,
			Size: fh.Size,
			Open: func() (io.ReadCloser, error) { return fh.Open() },
		})
	}

	atts, err := s.incidentService.AddAttachments(r.Context(), actor, id, files)
	if err != nil {
		s.handleServiceError(w, err)

		return
	}

	writeJSON(w, http.StatusCreated, UploadResponse{
		Message:  "attachment uploaded",
		Uploaded: len(atts),
	})
}

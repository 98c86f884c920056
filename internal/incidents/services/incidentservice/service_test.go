package incidentservice_test

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"testing"

	"github.com/Leopold1975/incidents_control/internal/incidents/domain/models"
	"github.com/Leopold1975/incidents_control/internal/incidents/domain/policy"
	"github.com/Leopold1975/incidents_control/internal/incidents/repository/incidentrepo"
	"github.com/Leopold1975/incidents_control/internal/incidents/repository/projectrepo"
	"github.com/Leopold1975/incidents_control/internal/incidents/services/incidentservice"
	"github.com/Leopold1975/incidents_control/internal/pkg/config"
	"github.com/stretchr/testify/require"
)

type fakeIncidentRepo struct {
	incidents   map[int64]models.Incident
	attachments map[int64][]models.Attachment
	nextID      int64
}

func newFakeIncidentRepo() *fakeIncidentRepo {
	return &fakeIncidentRepo{
		incidents:   make(map[int64]models.Incident),
		attachments: make(map[int64][]models.Attachment),
		nextID:      1,
	}
}

func (f *fakeIncidentRepo) Create(_ context.Context, inc models.Incident) (int64, error) {
	inc.ID = f.nextID
	f.nextID++
	f.incidents[inc.ID] = inc

	return inc.ID, nil
}

func (f *fakeIncidentRepo) GetByID(_ context.Context, id int64) (models.Incident, error) {
	inc, ok := f.incidents[id]
	if !ok {
		return models.Incident{}, incidentrepo.ErrNotFound
	}

	return inc, nil
}

func (f *fakeIncidentRepo) List(_ context.Context, req incidentrepo.ListRequest) ([]models.Incident, error) {
	res := make([]models.Incident, 0, len(f.incidents))

	for _, inc := range f.incidents {
		if req.ProjectID != 0 && inc.ProjectID != req.ProjectID {
			continue
		}

		if req.Severity != "" && inc.Severity != req.Severity {
			continue
		}

		if req.Status != "" && inc.Status != req.Status {
			continue
		}

		res = append(res, inc)
	}

	return res, nil
}

func (f *fakeIncidentRepo) Update(_ context.Context, id int64, req incidentrepo.UpdateRequest) error {
	inc, ok := f.incidents[id]
	if !ok {
		return incidentrepo.ErrNotFound
	}

	if req.Title != nil {
		inc.Title = *req.Title
	}

	if req.Description != nil {
		inc.Description = *req.Description
	}

	if req.ProjectID != nil {
		inc.ProjectID = *req.ProjectID
	}

	if req.Severity != nil {
		inc.Severity = *req.Severity
	}

	if req.Status != nil {
		inc.Status = *req.Status
	}

	f.incidents[id] = inc

	return nil
}

func (f *fakeIncidentRepo) Delete(_ context.Context, id int64) ([]string, error) {
	if _, ok := f.incidents[id]; !ok {
		return nil, incidentrepo.ErrNotFound
	}

	paths := make([]string, 0, len(f.attachments[id]))
	for _, a := range f.attachments[id] {
		paths = append(paths, a.FileURL)
	}

	delete(f.incidents, id)
	delete(f.attachments, id)

	return paths, nil
}

func (f *fakeIncidentRepo) AddAttachments(_ context.Context, atts []models.Attachment) error {
	for _, a := range atts {
		f.attachments[a.IncidentID] = append(f.attachments[a.IncidentID], a)
	}

	return nil
}

func (f *fakeIncidentRepo) ListAttachments(_ context.Context, incidentID int64) ([]models.Attachment, error) {
	return f.attachments[incidentID], nil
}

type fakeProjectRepo struct {
	ids map[int64]bool
}

func (f fakeProjectRepo) GetByID(_ context.Context, id int64) (models.Project, error) {
	if !f.ids[id] {
		return models.Project{}, projectrepo.ErrNotFound
	}

	return models.Project{ID: id, Name: "plant"}, nil
}

type fakeFileStore struct {
	saved  map[string]bool
	nextID int
}

func newFakeFileStore() *fakeFileStore {
	return &fakeFileStore{saved: make(map[string]bool)}
}

func (f *fakeFileStore) Save(src io.Reader, _ string) (string, error) {
	if _, err := io.Copy(io.Discard, src); err != nil {
		return "", err
	}

	f.nextID++
	path := fmt.Sprintf("uploads/file-%d", f.nextID)
	f.saved[path] = true

	return path, nil
}

func (f *fakeFileStore) Remove(path string) error {
	delete(f.saved, path)

	return nil
}

type nopLogger struct{}

func (nopLogger) Debugf(string, ...interface{}) {}
func (nopLogger) Info(...interface{}) {}
func (nopLogger) Infof(string, ...interface{}) {}
func (nopLogger) Warnf(string, ...interface{}) {}
func (nopLogger) Error(...interface{}) {}
func (nopLogger) Errorf(string, ...interface{}) {}

var (
	reporter = policy.Actor{ID: 10, Email: "rep@example.com", Role: models.RoleReporter}
	stranger = policy.Actor{ID: 11, Email: "other@example.com", Role: models.RoleReporter}
	manager  = policy.Actor{ID: 20, Email: "mgr@example.com", Role: models.RoleManager}
)

func newService(t *testing.T) (*incidentservice.IncidentService, *fakeIncidentRepo, *fakeFileStore) {
	t.Helper()

	incRepo := newFakeIncidentRepo()
	store := newFakeFileStore()

	uploads := incidentservice.NewUploads(store, config.Uploads{
		Dir:         "uploads",
		MaxFileSize: 1 << 20,
		MaxFiles:    10,
	})

	svc := incidentservice.New(incRepo, fakeProjectRepo{ids: map[int64]bool{1: true}}, uploads, nopLogger{})

	return svc, incRepo, store
}

func TestCreateDefaults(t *testing.T) {
	svc, _, _ := newService(t)

	inc, err := svc.Create(context.Background(), reporter, incidentservice.CreateRequest{
		Title:     "Pump leak",
		ProjectID: 1,
	})
	require.NoError(t, err)
	require.Equal(t, models.SeverityLow, inc.Severity)
	require.Equal(t, models.StatusOpen, inc.Status)
	require.Equal(t, reporter.ID, inc.ReportedBy)
	require.False(t, inc.ReportedOn.IsZero())
}

func TestCreateValidation(t *testing.T) {
	svc, incRepo, _ := newService(t)

	cases := []struct {
		name string
		req  incidentservice.CreateRequest
	}{
		{"no title", incidentservice.CreateRequest{ProjectID: 1}},
		{"no project", incidentservice.CreateRequest{Title: "x"}},
		{"bad severity", incidentservice.CreateRequest{Title: "x", ProjectID: 1, Severity: "catastrophic"}},
		{"bad status", incidentservice.CreateRequest{Title: "x", ProjectID: 1, Status: "pending"}},
		{"long title", incidentservice.CreateRequest{Title: string(bytes.Repeat([]byte("a"), 81)), ProjectID: 1}},
		{"unknown project", incidentservice.CreateRequest{Title: "x", ProjectID: 99}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.Create(context.Background(), reporter, tc.req)

			var vErr models.ValidationError
			require.ErrorAs(t, err, &vErr)
		})
	}

	// nothing persisted on rejected requests
	require.Empty(t, incRepo.incidents)
}

func TestUpdateOwnership(t *testing.T) {
	svc, _, _ := newService(t)

	inc, err := svc.Create(context.Background(), reporter, incidentservice.CreateRequest{
		Title:     "Valve stuck",
		ProjectID: 1,
	})
	require.NoError(t, err)

	closed := models.StatusClosed

	_, err = svc.Update(context.Background(), stranger, inc.ID, incidentservice.UpdateRequest{Status: &closed})
	require.ErrorIs(t, err, incidentservice.ErrNotAllowed)

	updated, err := svc.Update(context.Background(), reporter, inc.ID, incidentservice.UpdateRequest{Status: &closed})
	require.NoError(t, err)
	require.Equal(t, models.StatusClosed, updated.Status)

	// managers mutate regardless of ownership
	open := models.StatusOpen

	updated, err = svc.Update(context.Background(), manager, inc.ID, incidentservice.UpdateRequest{Status: &open})
	require.NoError(t, err)
	require.Equal(t, models.StatusOpen, updated.Status)
}

func TestUpdateNoFields(t *testing.T) {
	svc, _, _ := newService(t)

	inc, err := svc.Create(context.Background(), reporter, incidentservice.CreateRequest{
		Title:     "Valve stuck",
		ProjectID: 1,
	})
	require.NoError(t, err)

	_, err = svc.Update(context.Background(), reporter, inc.ID, incidentservice.UpdateRequest{})

	var vErr models.ValidationError
	require.ErrorAs(t, err, &vErr)
}

func TestDeleteCascadesAttachments(t *testing.T) {
	svc, incRepo, store := newService(t)

	inc, err := svc.Create(context.Background(), reporter, incidentservice.CreateRequest{
		Title:     "Spill",
		ProjectID: 1,
	})
	require.NoError(t, err)

	_, err = svc.AddAttachments(context.Background(), reporter, inc.ID, []incidentservice.UploadFile{
		pngUpload("a.png"), pngUpload("b.png"),
	})
	require.NoError(t, err)
	require.Len(t, store.saved, 2)

	require.NoError(t, svc.Delete(context.Background(), reporter, inc.ID))

	require.Empty(t, incRepo.incidents)
	require.Empty(t, incRepo.attachments)
	require.Empty(t, store.saved)

	require.ErrorIs(t, svc.Delete(context.Background(), reporter, inc.ID), incidentservice.ErrNotFound)
}

func TestDeleteOwnership(t *testing.T) {
	svc, _, _ := newService(t)

	inc, err := svc.Create(context.Background(), reporter, incidentservice.CreateRequest{
		Title:     "Spill",
		ProjectID: 1,
	})
	require.NoError(t, err)

	require.ErrorIs(t, svc.Delete(context.Background(), stranger, inc.ID), incidentservice.ErrNotAllowed)
	require.NoError(t, svc.Delete(context.Background(), manager, inc.ID))
}

var pngHeader = []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n', 0, 0, 0, 0}

func pngUpload(name string) incidentservice.UploadFile {
	return incidentservice.UploadFile{
		Name: name,
		Size: int64(len(pngHeader)),
		Open: func() (io.ReadCloser, error) {
			return io.NopCloser(bytes.NewReader(pngHeader)), nil
		},
	}
}

func TestAddAttachmentsBatchLimit(t *testing.T) {
	svc, incRepo, store := newService(t)

	inc, err := svc.Create(context.Background(), reporter, incidentservice.CreateRequest{
		Title:     "Spill",
		ProjectID: 1,
	})
	require.NoError(t, err)

	files := make([]incidentservice.UploadFile, 0, 11)
	for i := 0; i < 11; i++ {
		files = append(files, pngUpload(fmt.Sprintf("f%d.png", i)))
	}

	_, err = svc.AddAttachments(context.Background(), reporter, inc.ID, files)

	var vErr models.ValidationError
	require.ErrorAs(t, err, &vErr)

	// the whole batch is rejected, nothing reaches disk or the store
	require.Empty(t, store.saved)
	require.Empty(t, incRepo.attachments[inc.ID])
}

func TestAddAttachmentsRejectsBadFile(t *testing.T) {
	svc, incRepo, store := newService(t)

	inc, err := svc.Create(context.Background(), reporter, incidentservice.CreateRequest{
		Title:     "Spill",
		ProjectID: 1,
	})
	require.NoError(t, err)

	script := incidentservice.UploadFile{
		Name: "evil.sh",
		Size: 11,
		Open: func() (io.ReadCloser, error) {
			return io.NopCloser(bytes.NewReader([]byte("#!/bin/sh\n"))), nil
		},
	}

	_, err = svc.AddAttachments(context.Background(), reporter, inc.ID,
		[]incidentservice.UploadFile{pngUpload("ok.png"), script})

	var vErr models.ValidationError
	require.ErrorAs(t, err, &vErr)
	require.Empty(t, store.saved)
	require.Empty(t, incRepo.attachments[inc.ID])
}

func TestAddAttachmentsRejectsOversized(t *testing.T) {
	svc, _, store := newService(t)

	inc, err := svc.Create(context.Background(), reporter, incidentservice.CreateRequest{
		Title:     "Spill",
		ProjectID: 1,
	})
	require.NoError(t, err)

	big := pngUpload("big.png")
	big.Size = 2 << 20

	_, err = svc.AddAttachments(context.Background(), reporter, inc.ID, []incidentservice.UploadFile{big})

	var vErr models.ValidationError
	require.ErrorAs(t, err, &vErr)
	require.Empty(t, store.saved)
}

func TestGetWithAttachments(t *testing.T) {
	svc, _, _ := newService(t)

	inc, err := svc.Create(context.Background(), reporter, incidentservice.CreateRequest{
		Title:     "Spill",
		ProjectID: 1,
		Severity:  models.SeverityHigh,
	})
	require.NoError(t, err)

	_, err = svc.AddAttachments(context.Background(), reporter, inc.ID,
		[]incidentservice.UploadFile{pngUpload("a.png")})
	require.NoError(t, err)

	details, err := svc.Get(context.Background(), stranger, inc.ID)
	require.NoError(t, err)
	require.Equal(t, models.SeverityHigh, details.Severity)
	require.Len(t, details.Attachments, 1)

	_, err = svc.Get(context.Background(), stranger, 999)
	require.ErrorIs(t, err, incidentservice.ErrNotFound)
}

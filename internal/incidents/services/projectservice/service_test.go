package projectservice_test

import (
	"context"
	"fmt"
	"sort"
	"testing"
	"time"

	"github.com/Leopold1975/incidents_control/internal/incidents/domain/models"
	"github.com/Leopold1975/incidents_control/internal/incidents/domain/policy"
	"github.com/Leopold1975/incidents_control/internal/incidents/repository/projectrepo"
	"github.com/Leopold1975/incidents_control/internal/incidents/services/projectservice"
	"github.com/stretchr/testify/require"
)

type fakeProjectRepo struct {
	projects     map[int64]models.Project
	withIncident map[int64]bool
	nextID       int64
}

func newFakeProjectRepo() *fakeProjectRepo {
	return &fakeProjectRepo{
		projects:     make(map[int64]models.Project),
		withIncident: make(map[int64]bool),
		nextID:       1,
	}
}

func (f *fakeProjectRepo) Create(_ context.Context, p models.Project) (int64, error) {
	p.ID = f.nextID
	f.nextID++
	p.CreatedAt = time.Now().UTC()
	f.projects[p.ID] = p

	return p.ID, nil
}

func (f *fakeProjectRepo) GetByID(_ context.Context, id int64) (models.Project, error) {
	p, ok := f.projects[id]
	if !ok {
		return models.Project{}, projectrepo.ErrNotFound
	}

	return p, nil
}

func (f *fakeProjectRepo) Update(_ context.Context, id int64, req projectrepo.UpdateRequest) error {
	p, ok := f.projects[id]
	if !ok {
		return projectrepo.ErrNotFound
	}

	if req.Name != nil {
		p.Name = *req.Name
	}

	if req.Location != nil {
		p.Location = *req.Location
	}

	f.projects[id] = p

	return nil
}

func (f *fakeProjectRepo) Delete(_ context.Context, id int64) error {
	if _, ok := f.projects[id]; !ok {
		return projectrepo.ErrNotFound
	}

	if f.withIncident[id] {
		return projectrepo.ErrHasIncidents
	}

	delete(f.projects, id)

	return nil
}

func (f *fakeProjectRepo) List(_ context.Context, req projectrepo.ListRequest) ([]models.Project, int, error) {
	all := make([]models.Project, 0, len(f.projects))
	for _, p := range f.projects {
		all = append(all, p)
	}

	sort.Slice(all, func(i, j int) bool { return all[i].ID > all[j].ID })

	start := (req.Page - 1) * req.Limit
	if start >= len(all) {
		return nil, len(all), nil
	}

	end := start + req.Limit
	if end > len(all) {
		end = len(all)
	}

	return all[start:end], len(all), nil
}

type nopLogger struct{}

func (nopLogger) Debugf(string, ...interface{}) {}
func (nopLogger) Info(...interface{}) {}
func (nopLogger) Infof(string, ...interface{}) {}
func (nopLogger) Warnf(string, ...interface{}) {}
func (nopLogger) Error(...interface{}) {}
func (nopLogger) Errorf(string, ...interface{}) {}

var (
	admin    = policy.Actor{ID: 1, Role: models.RoleAdmin}
	reporter = policy.Actor{ID: 2, Role: models.RoleReporter}
)

func TestCreateAndGet(t *testing.T) {
	repo := newFakeProjectRepo()
	svc := projectservice.New(repo, nopLogger{})

	p, err := svc.Create(context.Background(), admin, projectservice.CreateRequest{
		Name:     "  North Plant  ",
		Location: "Hamburg",
	})
	require.NoError(t, err)
	require.Equal(t, "North Plant", p.Name)
	require.NotZero(t, p.ID)

	got, err := svc.Get(context.Background(), reporter, p.ID)
	require.NoError(t, err)
	require.Equal(t, p.ID, got.ID)

	_, err = svc.Get(context.Background(), reporter, 99)
	require.ErrorIs(t, err, projectservice.ErrNotFound)
}

func TestCreateDenied(t *testing.T) {
	svc := projectservice.New(newFakeProjectRepo(), nopLogger{})

	_, err := svc.Create(context.Background(), reporter, projectservice.CreateRequest{
		Name:     "North Plant",
		Location: "Hamburg",
	})
	require.ErrorIs(t, err, projectservice.ErrNotAllowed)
}

func TestCreateValidation(t *testing.T) {
	svc := projectservice.New(newFakeProjectRepo(), nopLogger{})

	_, err := svc.Create(context.Background(), admin, projectservice.CreateRequest{Name: "   "})

	var vErr models.ValidationError
	require.ErrorAs(t, err, &vErr)
}

func TestUpdate(t *testing.T) {
	repo := newFakeProjectRepo()
	svc := projectservice.New(repo, nopLogger{})

	p, err := svc.Create(context.Background(), admin, projectservice.CreateRequest{
		Name:     "North Plant",
		Location: "Hamburg",
	})
	require.NoError(t, err)

	name := "South Plant"

	updated, err := svc.Update(context.Background(), admin, p.ID, projectservice.UpdateRequest{Name: &name})
	require.NoError(t, err)
	require.Equal(t, "South Plant", updated.Name)
	require.Equal(t, "Hamburg", updated.Location)

	_, err = svc.Update(context.Background(), admin, p.ID, projectservice.UpdateRequest{})

	var vErr models.ValidationError
	require.ErrorAs(t, err, &vErr)

	empty := " "

	_, err = svc.Update(context.Background(), admin, p.ID, projectservice.UpdateRequest{Name: &empty})
	require.ErrorAs(t, err, &vErr)
}

func TestDeleteWithIncidents(t *testing.T) {
	repo := newFakeProjectRepo()
	svc := projectservice.New(repo, nopLogger{})

	p, err := svc.Create(context.Background(), admin, projectservice.CreateRequest{
		Name:     "North Plant",
		Location: "Hamburg",
	})
	require.NoError(t, err)

	repo.withIncident[p.ID] = true

	require.ErrorIs(t, svc.Delete(context.Background(), admin, p.ID), projectservice.ErrHasIncidents)

	repo.withIncident[p.ID] = false

	require.NoError(t, svc.Delete(context.Background(), admin, p.ID))
	require.ErrorIs(t, svc.Delete(context.Background(), admin, p.ID), projectservice.ErrNotFound)
}

func TestListPagination(t *testing.T) {
	repo := newFakeProjectRepo()
	svc := projectservice.New(repo, nopLogger{})

	for i := 0; i < 25; i++ {
		_, err := svc.Create(context.Background(), admin, projectservice.CreateRequest{
			Name:     fmt.Sprintf("plant %d", i),
			Location: "here",
		})
		require.NoError(t, err)
	}

	resp, err := svc.List(context.Background(), admin, projectservice.ListRequest{Page: 1, Limit: 10})
	require.NoError(t, err)
	require.Len(t, resp.Projects, 10)
	require.Equal(t, 25, resp.Pagination.Total)
	require.Equal(t, 3, resp.Pagination.TotalPages)

	resp, err = svc.List(context.Background(), admin, projectservice.ListRequest{Page: 3, Limit: 10})
	require.NoError(t, err)
	require.Len(t, resp.Projects, 5)

	// out-of-range paging parameters fall back to defaults
	resp, err = svc.List(context.Background(), admin, projectservice.ListRequest{Page: -1, Limit: 1000})
	require.NoError(t, err)
	require.Equal(t, 1, resp.Pagination.Page)
	require.Equal(t, 10, resp.Pagination.Limit)

	_, err = svc.List(context.Background(), reporter, projectservice.ListRequest{})
	require.ErrorIs(t, err, projectservice.ErrNotAllowed)
}

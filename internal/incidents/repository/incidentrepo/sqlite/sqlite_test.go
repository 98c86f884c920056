package sqlite_test

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/Leopold1975/incidents_control/internal/incidents/domain/models"
	"github.com/Leopold1975/incidents_control/internal/incidents/repository/incidentrepo"
	"github.com/Leopold1975/incidents_control/internal/incidents/repository/incidentrepo/sqlite"
	projectsqlite "github.com/Leopold1975/incidents_control/internal/incidents/repository/projectrepo/sqlite"
	usersqlite "github.com/Leopold1975/incidents_control/internal/incidents/repository/userrepo/sqlite"
	"github.com/Leopold1975/incidents_control/internal/pkg/config"
	"github.com/Leopold1975/incidents_control/internal/pkg/sqlitetools"
	"github.com/stretchr/testify/require"
)

type fixture struct {
	incidents sqlite.IncidentsSQLiteRepo
	projectID int64
	userID    int64
}

func newFixture(t *testing.T) fixture {
	t.Helper()

	cfg := config.SQLiteDB{Path: filepath.Join(t.TempDir(), "test.db"), Reload: false}

	db, err := sqlitetools.Connect(context.Background(), cfg)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	require.NoError(t, sqlitetools.ApplyMigration(db, cfg))

	ctx := context.Background()

	projectID, err := projectsqlite.New(db).Create(ctx, models.Project{Name: "North Plant", Location: "Hamburg"})
	require.NoError(t, err)

	userID, err := usersqlite.New(db).CreateUser(ctx, models.User{
		Email:        "rep@example.com",
		PasswordHash: "hash",
		Role:         models.RoleReporter,
	})
	require.NoError(t, err)

	return fixture{incidents: sqlite.New(db), projectID: projectID, userID: userID}
}

func (f fixture) newIncident(t *testing.T, title string) int64 {
	t.Helper()

	id, err := f.incidents.Create(context.Background(), models.Incident{
		Title:      title,
		ProjectID:  f.projectID,
		Severity:   models.SeverityLow,
		Status:     models.StatusOpen,
		ReportedBy: f.userID,
		ReportedOn: time.Now().UTC(),
	})
	require.NoError(t, err)

	return id
}

func TestCreateAndGet(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	id := f.newIncident(t, "Pump leak")

	inc, err := f.incidents.GetByID(ctx, id)
	require.NoError(t, err)
	require.Equal(t, "Pump leak", inc.Title)
	require.Equal(t, models.SeverityLow, inc.Severity)
	require.Equal(t, models.StatusOpen, inc.Status)
	require.Equal(t, f.userID, inc.ReportedBy)
	require.False(t, inc.ReportedOn.IsZero())

	_, err = f.incidents.GetByID(ctx, 999)
	require.ErrorIs(t, err, incidentrepo.ErrNotFound)
}

func TestListFilters(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	first := f.newIncident(t, "Pump leak")
	second := f.newIncident(t, "Valve stuck")

	high := models.SeverityHigh

	require.NoError(t, f.incidents.Update(ctx, second, incidentrepo.UpdateRequest{Severity: &high}))

	all, err := f.incidents.List(ctx, incidentrepo.ListRequest{})
	require.NoError(t, err)
	require.Len(t, all, 2)
	// newest first
	require.Equal(t, second, all[0].ID)

	highOnly, err := f.incidents.List(ctx, incidentrepo.ListRequest{Severity: models.SeverityHigh})
	require.NoError(t, err)
	require.Len(t, highOnly, 1)
	require.Equal(t, second, highOnly[0].ID)

	byProject, err := f.incidents.List(ctx, incidentrepo.ListRequest{ProjectID: f.projectID})
	require.NoError(t, err)
	require.Len(t, byProject, 2)

	none, err := f.incidents.List(ctx, incidentrepo.ListRequest{ProjectID: 999})
	require.NoError(t, err)
	require.Empty(t, none)
	require.NotZero(t, first)
}

func TestUpdatePartial(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	id := f.newIncident(t, "Pump leak")

	closed := models.StatusClosed
	desc := "sealed and checked"

	require.NoError(t, f.incidents.Update(ctx, id, incidentrepo.UpdateRequest{
		Status:      &closed,
		Description: &desc,
	}))

	inc, err := f.incidents.GetByID(ctx, id)
	require.NoError(t, err)
	require.Equal(t, "Pump leak", inc.Title)
	require.Equal(t, models.StatusClosed, inc.Status)
	require.Equal(t, "sealed and checked", inc.Description)

	require.ErrorIs(t,
		f.incidents.Update(ctx, 999, incidentrepo.UpdateRequest{Status: &closed}),
		incidentrepo.ErrNotFound)
}

func TestDeleteReturnsAttachmentPaths(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	id := f.newIncident(t, "Spill")

	require.NoError(t, f.incidents.AddAttachments(ctx, []models.Attachment{
		{IncidentID: id, FileURL: "uploads/a.png"},
		{IncidentID: id, FileURL: "uploads/b.png", Comments: "close-up"},
	}))

	atts, err := f.incidents.ListAttachments(ctx, id)
	require.NoError(t, err)
	require.Len(t, atts, 2)
	require.Equal(t, "close-up", atts[1].Comments)

	paths, err := f.incidents.Delete(ctx, id)
	require.NoError(t, err)
	require.ElementsMatch(t, []string{"uploads/a.png", "uploads/b.png"}, paths)

	atts, err = f.incidents.ListAttachments(ctx, id)
	require.NoError(t, err)
	require.Empty(t, atts)

	_, err = f.incidents.Delete(ctx, id)
	require.ErrorIs(t, err, incidentrepo.ErrNotFound)
}

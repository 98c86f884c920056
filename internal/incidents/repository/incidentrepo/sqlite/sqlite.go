package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Leopold1975/incidents_control/internal/incidents/domain/models"
	"github.com/Leopold1975/incidents_control/internal/incidents/repository/incidentrepo"
	"github.com/Leopold1975/incidents_control/internal/pkg/sqlitetools"
	"github.com/Masterminds/squirrel"
)

type IncidentsSQLiteRepo struct {
	db *sql.DB
}

func New(db *sql.DB) IncidentsSQLiteRepo {
	return IncidentsSQLiteRepo{db: db}
}

func (ir IncidentsSQLiteRepo) Create(ctx context.Context, inc models.Incident) (id int64, err error) {
	tx, err := ir.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("cannot begin transaction error: %w", err)
	}

	defer func() {
		err = sqlitetools.CommitOrRollback(tx, err, "create incident")
	}()

	query, args, err := squirrel.Insert("incidents").
		Columns("title", "description", "project_id", "severity", "status", "reported_by", "reported_on").
		Values(inc.Title, inc.Description, inc.ProjectID, inc.Severity, inc.Status, inc.ReportedBy, inc.ReportedOn).
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("to sql error: %w", err)
	}

	res, err := tx.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("exec error: %w", err)
	}

	id, err = res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("last insert id error: %w", err)
	}

	return id, nil
}

func (ir IncidentsSQLiteRepo) GetByID(ctx context.Context, id int64) (models.Incident, error) {
	query, args, err := selectIncidents().Where(squirrel.Eq{"id": id}).ToSql()
	if err != nil {
		return models.Incident{}, fmt.Errorf("to sql error: %w", err)
	}

	var inc models.Incident

	if err := scanIncident(ir.db.QueryRowContext(ctx, query, args...), &inc); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return inc, incidentrepo.ErrNotFound
		}

		return inc, fmt.Errorf("scan error: %w", err)
	}

	return inc, nil
}

func (ir IncidentsSQLiteRepo) List(ctx context.Context, req incidentrepo.ListRequest) ([]models.Incident, error) {
	b := selectIncidents().OrderBy("id DESC")

	if req.ProjectID != 0 {
		b = b.Where(squirrel.Eq{"project_id": req.ProjectID})
	}

	if req.Severity != "" {
		b = b.Where(squirrel.Eq{"severity": req.Severity})
	}

	if req.Status != "" {
		b = b.Where(squirrel.Eq{"status": req.Status})
	}

	query, args, err := b.ToSql()
	if err != nil {
		return nil, fmt.Errorf("to sql error: %w", err)
	}

	rows, err := ir.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query error: %w", err)
	}
	defer rows.Close()

	incidents := make([]models.Incident, 0)

	for rows.Next() {
		var inc models.Incident
		if err := scanIncident(rows, &inc); err != nil {
			return nil, fmt.Errorf("scan error: %w", err)
		}

		incidents = append(incidents, inc)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}

	return incidents, nil
}

func (ir IncidentsSQLiteRepo) Update(ctx context.Context, id int64, req incidentrepo.UpdateRequest) (err error) {
	tx, err := ir.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("cannot begin transaction error: %w", err)
	}

	defer func() {
		err = sqlitetools.CommitOrRollback(tx, err, "update incident")
	}()

	b := squirrel.Update("incidents").Where(squirrel.Eq{"id": id})

	if req.Title != nil {
		b = b.Set("title", *req.Title)
	}

	if req.Description != nil {
		b = b.Set("description", *req.Description)
	}

	if req.ProjectID != nil {
		b = b.Set("project_id", *req.ProjectID)
	}

	if req.Severity != nil {
		b = b.Set("severity", *req.Severity)
	}

	if req.Status != nil {
		b = b.Set("status", *req.Status)
	}

	query, args, err := b.ToSql()
	if err != nil {
		return fmt.Errorf("to sql error: %w", err)
	}

	res, err := tx.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("exec error: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected error: %w", err)
	}

	if n == 0 {
		return incidentrepo.ErrNotFound
	}

	return nil
}

// Delete removes the incident and its attachment rows in one transaction,
// so a failure can't leave orphaned attachments behind.
func (ir IncidentsSQLiteRepo) Delete(ctx context.Context, id int64) (paths []string, err error) {
	tx, err := ir.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("cannot begin transaction error: %w", err)
	}

	defer func() {
		err = sqlitetools.CommitOrRollback(tx, err, "delete incident")
	}()

	query, args, err := squirrel.Select("file_url").
		From("incident_attachments").
		Where(squirrel.Eq{"incident_id": id}).ToSql()
	if err != nil {
		return nil, fmt.Errorf("to sql error: %w", err)
	}

	rows, err := tx.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query error: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var p string
		if err := rows.Scan(&p); err != nil {
			return nil, fmt.Errorf("scan error: %w", err)
		}

		paths = append(paths, p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}

	query, args, err = squirrel.Delete("incident_attachments").
		Where(squirrel.Eq{"incident_id": id}).ToSql()
	if err != nil {
		return nil, fmt.Errorf("to sql error: %w", err)
	}

	if _, err = tx.ExecContext(ctx, query, args...); err != nil {
		return nil, fmt.Errorf("exec error: %w", err)
	}

	query, args, err = squirrel.Delete("incidents").
		Where(squirrel.Eq{"id": id}).ToSql()
	if err != nil {
		return nil, fmt.Errorf("to sql error: %w", err)
	}

	res, err := tx.ExecContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("exec error: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("rows affected error: %w", err)
	}

	if n == 0 {
		return nil, incidentrepo.ErrNotFound
	}

	return paths, nil
}

func (ir IncidentsSQLiteRepo) AddAttachments(ctx context.Context, atts []models.Attachment) (err error) {
	if len(atts) == 0 {
		return nil
	}

	tx, err := ir.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("cannot begin transaction error: %w", err)
	}

	defer func() {
		err = sqlitetools.CommitOrRollback(tx, err, "add attachments")
	}()

	b := squirrel.Insert("incident_attachments").
		Columns("incident_id", "file_url", "comments")

	for _, a := range atts {
		b = b.Values(a.IncidentID, a.FileURL, a.Comments)
	}

	query, args, err := b.ToSql()
	if err != nil {
		return fmt.Errorf("to sql error: %w", err)
	}

	if _, err = tx.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("exec error: %w", err)
	}

	return nil
}

func (ir IncidentsSQLiteRepo) ListAttachments(ctx context.Context, incidentID int64) ([]models.Attachment, error) {
	query, args, err := squirrel.Select("id", "incident_id", "file_url", "comments").
		From("incident_attachments").
		Where(squirrel.Eq{"incident_id": incidentID}).ToSql()
	if err != nil {
		return nil, fmt.Errorf("to sql error: %w", err)
	}

	rows, err := ir.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query error: %w", err)
	}
	defer rows.Close()

	atts := make([]models.Attachment, 0)

	for rows.Next() {
		var (
			a        models.Attachment
			comments sql.NullString
		)

		if err := rows.Scan(&a.ID, &a.IncidentID, &a.FileURL, &comments); err != nil {
			return nil, fmt.Errorf("scan error: %w", err)
		}

		a.Comments = comments.String
		atts = append(atts, a)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}

	return atts, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func selectIncidents() squirrel.SelectBuilder {
	return squirrel.Select("id", "title", "description", "project_id", "severity",
		"status", "reported_by", "reported_on").From("incidents")
}

func scanIncident(row rowScanner, inc *models.Incident) error {
	return row.Scan(&inc.ID, &inc.Title, &inc.Description, &inc.ProjectID,
		&inc.Severity, &inc.Status, &inc.ReportedBy, &inc.ReportedOn)
}

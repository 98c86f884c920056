package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/Leopold1975/incidents_control/internal/incidents/domain/models"
	"github.com/Leopold1975/incidents_control/internal/incidents/repository/projectrepo"
	"github.com/Leopold1975/incidents_control/internal/pkg/sqlitetools"
	"github.com/Masterminds/squirrel"
	"github.com/mattn/go-sqlite3"
)

type ProjectsSQLiteRepo struct {
	db *sql.DB
}

func New(db *sql.DB) ProjectsSQLiteRepo {
	return ProjectsSQLiteRepo{db: db}
}

func (pr ProjectsSQLiteRepo) Create(ctx context.Context, p models.Project) (id int64, err error) {
	tx, err := pr.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("cannot begin transaction error: %w", err)
	}

	defer func() {
		err = sqlitetools.CommitOrRollback(tx, err, "create project")
	}()

	query, args, err := squirrel.Insert("projects").
		Columns("project_name", "location", "created_at").
		Values(p.Name, p.Location, time.Now().UTC()).ToSql()
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

func (pr ProjectsSQLiteRepo) GetByID(ctx context.Context, id int64) (models.Project, error) {
	query, args, err := squirrel.Select("id", "project_name", "location", "created_at").
		From("projects").
		Where(squirrel.Eq{"id": id}).ToSql()
	if err != nil {
		return models.Project{}, fmt.Errorf("to sql error: %w", err)
	}

	var p models.Project

	if err := pr.db.QueryRowContext(ctx, query, args...).Scan(
		&p.ID, &p.Name, &p.Location, &p.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return p, projectrepo.ErrNotFound
		}

		return p, fmt.Errorf("scan error: %w", err)
	}

	return p, nil
}

func (pr ProjectsSQLiteRepo) Update(ctx context.Context, id int64, req projectrepo.UpdateRequest) (err error) {
	tx, err := pr.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("cannot begin transaction error: %w", err)
	}

	defer func() {
		err = sqlitetools.CommitOrRollback(tx, err, "update project")
	}()

	b := squirrel.Update("projects").Where(squirrel.Eq{"id": id})

	if req.Name != nil {
		b = b.Set("project_name", *req.Name)
	}

	if req.Location != nil {
		b = b.Set("location", *req.Location)
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
		return projectrepo.ErrNotFound
	}

	return nil
}

func (pr ProjectsSQLiteRepo) Delete(ctx context.Context, id int64) (err error) {
	tx, err := pr.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("cannot begin transaction error: %w", err)
	}

	defer func() {
		err = sqlitetools.CommitOrRollback(tx, err, "delete project")
	}()

	query, args, err := squirrel.Delete("projects").
		Where(squirrel.Eq{"id": id}).ToSql()
	if err != nil {
		return fmt.Errorf("to sql error: %w", err)
	}

	res, err := tx.ExecContext(ctx, query, args...)
	if err != nil {
		var target sqlite3.Error
		if errors.As(err, &target) && target.Code == sqlite3.ErrConstraint {
			return projectrepo.ErrHasIncidents
		}

		return fmt.Errorf("exec error: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected error: %w", err)
	}

	if n == 0 {
		return projectrepo.ErrNotFound
	}

	return nil
}

func (pr ProjectsSQLiteRepo) List(ctx context.Context, req projectrepo.ListRequest) ([]models.Project, int, error) {
	countQuery, _, err := squirrel.Select("COUNT(*)").From("projects").ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("to sql error: %w", err)
	}

	var total int
	if err := pr.db.QueryRowContext(ctx, countQuery).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count scan error: %w", err)
	}

	offset := (req.Page - 1) * req.Limit

	query, args, err := squirrel.Select("id", "project_name", "location", "created_at").
		From("projects").
		OrderBy("id DESC").
		Limit(uint64(req.Limit)).
		Offset(uint64(offset)).ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("to sql error: %w", err)
	}

	rows, err := pr.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("query error: %w", err)
	}
	defer rows.Close()

	projects := make([]models.Project, 0, req.Limit)

	for rows.Next() {
		var p models.Project
		if err := rows.Scan(&p.ID, &p.Name, &p.Location, &p.CreatedAt); err != nil {
			return nil, 0, fmt.Errorf("scan error: %w", err)
		}

		projects = append(projects, p)
	}

	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("rows error: %w", err)
	}

	return projects, total, nil
}

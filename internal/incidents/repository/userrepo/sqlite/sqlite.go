package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Leopold1975/incidents_control/internal/incidents/domain/models"
	"github.com/Leopold1975/incidents_control/internal/incidents/repository/userrepo"
	"github.com/Leopold1975/incidents_control/internal/pkg/sqlitetools"
	"github.com/Masterminds/squirrel"
	"github.com/mattn/go-sqlite3"
)

type UsersSQLiteRepo struct {
	db *sql.DB
}

func New(db *sql.DB) UsersSQLiteRepo {
	return UsersSQLiteRepo{db: db}
}

func (ur UsersSQLiteRepo) CreateUser(ctx context.Context, u models.User) (id int64, err error) {
	tx, err := ur.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("cannot begin transaction error: %w", err)
	}

	defer func() {
		err = sqlitetools.CommitOrRollback(tx, err, "create user")
	}()

	query, args, err := squirrel.Insert("users").
		Columns("email", "password_hash", "name", "user_role").
		Values(u.Email, u.PasswordHash, u.Name, u.Role).ToSql()
	if err != nil {
		return 0, fmt.Errorf("to sql error: %w", err)
	}

	res, err := tx.ExecContext(ctx, query, args...)
	if err != nil {
		var target sqlite3.Error
		if errors.As(err, &target) && target.ExtendedCode == sqlite3.ErrConstraintUnique {
			return 0, userrepo.ErrAlreadyExists
		}

		return 0, fmt.Errorf("exec error: %w", err)
	}

	id, err = res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("last insert id error: %w", err)
	}

	return id, nil
}

func (ur UsersSQLiteRepo) GetByEmail(ctx context.Context, email string) (models.User, error) {
	return ur.get(ctx, squirrel.Eq{"email": email})
}

func (ur UsersSQLiteRepo) GetByID(ctx context.Context, id int64) (models.User, error) {
	return ur.get(ctx, squirrel.Eq{"id": id})
}

func (ur UsersSQLiteRepo) get(ctx context.Context, where squirrel.Eq) (models.User, error) {
	query, args, err := squirrel.Select("id", "email", "password_hash", "name", "user_role").
		From("users").
		Where(where).ToSql()
	if err != nil {
		return models.User{}, fmt.Errorf("to sql error: %w", err)
	}

	var u models.User

	if err := ur.db.QueryRowContext(ctx, query, args...).Scan(
		&u.ID, &u.Email, &u.PasswordHash, &u.Name, &u.Role); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return u, userrepo.ErrNotFound
		}

		return u, fmt.Errorf("scan error: %w", err)
	}

	return u, nil
}

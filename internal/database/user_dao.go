package database

import (
	"context"
	"log/slog"

	"github.com/Masterminds/squirrel"
	"github.com/protomem/night-stations/internal/model"
)

type UserDAO struct {
	Logger *slog.Logger
	*DB
}

func NewUserDAO(logger *slog.Logger, db *DB) *UserDAO {
	return &UserDAO{
		Logger: logger.With("dao", "user"),
		DB:     db,
	}
}

func (dao *UserDAO) Get(ctx context.Context, id string) (model.User, error) {
	logger := dao.Logger.With("query", "get")

	query, args, err := dao.Builder.
		Select("*").
		From("users").
		Where(squirrel.Eq{"id": id}).
		Limit(1).
		ToSql()
	if err != nil {
		return model.User{}, err
	}

	logger.Debug("build query", "sql", query, "args", args)

	var user model.User
	row := dao.QueryRowxContext(ctx, query, args...)
	if err := row.StructScan(&user); err != nil {
		if IsNoRows(err) {
			return model.User{}, model.NewError("user", model.ErrNotFound)
		}

		logger.Warn("failed query execute", "error", err)

		return model.User{}, err
	}

	return user, nil
}

func (dao *UserDAO) GetByEmail(ctx context.Context, email string) (model.User, error) {
	logger := dao.Logger.With("query", "getByEmail")

	query, args, err := dao.Builder.
		Select("*").
		From("users").
		Where(squirrel.Eq{"email": email}).
		Limit(1).
		ToSql()
	if err != nil {
		return model.User{}, err
	}

	logger.Debug("build query", "sql", query, "args", args)

	var user model.User
	row := dao.QueryRowxContext(ctx, query, args...)
	if err := row.StructScan(&user); err != nil {
		if IsNoRows(err) {
			return model.User{}, model.NewError("user", model.ErrNotFound)
		}

		logger.Warn("failed query execute", "error", err)

		return model.User{}, err
	}

	return user, nil
}

func (dao *UserDAO) ListByIDs(ctx context.Context, ids []string) ([]model.User, error) {
	logger := dao.Logger.With("query", "listByIds")

	if len(ids) == 0 {
		return []model.User{}, nil
	}

	query, args, err := dao.Builder.
		Select("*").
		From("users").
		Where(squirrel.Eq{"id": ids}).
		ToSql()
	if err != nil {
		return []model.User{}, err
	}

	logger.Debug("build query", "sql", query, "args", args)

	users := make([]model.User, 0, len(ids))
	if err := dao.SelectContext(ctx, &users, query, args...); err != nil {
		logger.Warn("failed query execute", "error", err)
		return []model.User{}, err
	}

	return users, nil
}

type InsertUserDTO struct {
	ID      string
	Email   string
	Name    string
	Picture *string
}

// Insert creates a user with the non-administrator default. Administrators
// are promoted manually in the database.
func (dao *UserDAO) Insert(ctx context.Context, dto InsertUserDTO) error {
	logger := dao.Logger.With("query", "insert")

	query, args, err := dao.Builder.
		Insert("users").
		Columns("id", "email", "name", "picture", "is_admin").
		Values(dto.ID, dto.Email, dto.Name, dto.Picture, false).
		ToSql()
	if err != nil {
		return err
	}

	logger.Debug("build query", "sql", query, "args", args)

	if _, err := dao.ExecContext(ctx, query, args...); err != nil {
		if IsUniqueViolation(err) {
			return model.NewError("user", model.ErrExists)
		}

		logger.Warn("failed query execute", "error", err)

		return err
	}

	return nil
}

package database

import (
	"context"
	"log/slog"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/protomem/night-stations/internal/model"
)

type SessionDAO struct {
	Logger *slog.Logger
	*DB
}

func NewSessionDAO(logger *slog.Logger, db *DB) *SessionDAO {
	return &SessionDAO{
		Logger: logger.With("dao", "session"),
		DB:     db,
	}
}

func (dao *SessionDAO) Get(ctx context.Context, token string) (model.Session, error) {
	query, args, err := dao.Builder.
		Select("*").
		From("sessions").
		Where(squirrel.Eq{"id": token}).
		Limit(1).
		ToSql()
	if err != nil {
		return model.Session{}, err
	}

	dao.Logger.Debug("build query", "sql", query, "args", args)

	var session model.Session
	row := dao.QueryRowxContext(ctx, query, args...)
	if err := row.StructScan(&session); err != nil {
		if IsNoRows(err) {
			return model.Session{}, model.NewError("session", model.ErrNotFound)
		}

		return model.Session{}, err
	}

	return session, nil
}

type InsertSessionDTO struct {
	Token     string
	User      string
	ExpiresAt time.Time
}

func (dao *SessionDAO) Insert(ctx context.Context, dto InsertSessionDTO) error {
	query, args, err := dao.Builder.
		Insert("sessions").
		Columns("id", "user_id", "expires_at").
		Values(dto.Token, dto.User, dto.ExpiresAt).
		ToSql()
	if err != nil {
		return err
	}

	dao.Logger.Debug("build query", "sql", query, "args", args)

	if _, err := dao.ExecContext(ctx, query, args...); err != nil {
		if IsUniqueViolation(err) {
			return model.NewError("session", model.ErrExists)
		}

		return err
	}

	return nil
}

func (dao *SessionDAO) Delete(ctx context.Context, token string) error {
	query, args, err := dao.Builder.
		Delete("sessions").
		Where(squirrel.Eq{"id": token}).
		ToSql()
	if err != nil {
		return err
	}

	dao.Logger.Debug("build query", "sql", query, "args", args)

	if _, err := dao.ExecContext(ctx, query, args...); err != nil {
		return err
	}

	return nil
}

func (dao *SessionDAO) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	query, args, err := dao.Builder.
		Delete("sessions").
		Where(squirrel.LtOrEq{"expires_at": now}).
		ToSql()
	if err != nil {
		return 0, err
	}

	dao.Logger.Debug("build query", "sql", query, "args", args)

	result, err := dao.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, err
	}

	count, err := result.RowsAffected()
	if err != nil {
		return 0, err
	}

	return count, nil
}

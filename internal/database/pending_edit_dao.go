package database

import (
	"context"
	"log/slog"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/protomem/night-stations/internal/model"
)

type PendingEditDAO struct {
	Logger *slog.Logger
	*DB
}

func NewPendingEditDAO(logger *slog.Logger, db *DB) *PendingEditDAO {
	return &PendingEditDAO{
		Logger: logger.With("dao", "pendingEdit"),
		DB:     db,
	}
}

func (dao *PendingEditDAO) Get(ctx context.Context, id model.ID) (model.PendingEdit, error) {
	logger := dao.Logger.With("query", "get")

	query, args, err := dao.Builder.
		Select("*").
		From("pending_edits").
		Where(squirrel.Eq{"id": id}).
		Limit(1).
		ToSql()
	if err != nil {
		return model.PendingEdit{}, err
	}

	logger.Debug("build query", "sql", query, "args", args)

	var edit model.PendingEdit
	row := dao.QueryRowxContext(ctx, query, args...)
	if err := row.StructScan(&edit); err != nil {
		if IsNoRows(err) {
			return model.PendingEdit{}, model.NewError("pending edit", model.ErrNotFound)
		}

		logger.Warn("failed query execute", "error", err)

		return model.PendingEdit{}, err
	}

	return edit, nil
}

// buildGetOwnQuery scopes the lookup to one user's outstanding edit for one
// station. Only status "pending" counts as outstanding: reviewed edits never
// block a new submission.
func buildGetOwnQuery(builder squirrel.StatementBuilderType, eva int64, userID string) (string, []any, error) {
	return builder.
		Select("*").
		From("pending_edits").
		Where(squirrel.Eq{
			"station_eva": eva,
			"user_id":     userID,
			"status":      model.EditStatusPending,
		}).
		Limit(1).
		ToSql()
}

// GetOwn returns the user's outstanding pending edit for a station, if any.
// A user has at most one: submitting again before review updates it in place.
func (dao *PendingEditDAO) GetOwn(ctx context.Context, eva int64, userID string) (model.PendingEdit, error) {
	logger := dao.Logger.With("query", "getOwn")

	query, args, err := buildGetOwnQuery(dao.Builder, eva, userID)
	if err != nil {
		return model.PendingEdit{}, err
	}

	logger.Debug("build query", "sql", query, "args", args)

	var edit model.PendingEdit
	row := dao.QueryRowxContext(ctx, query, args...)
	if err := row.StructScan(&edit); err != nil {
		if IsNoRows(err) {
			return model.PendingEdit{}, model.NewError("pending edit", model.ErrNotFound)
		}

		logger.Warn("failed query execute", "error", err)

		return model.PendingEdit{}, err
	}

	return edit, nil
}

// ListPending returns pending edits for review, oldest first. An empty
// userID lists everyone's (the administrator view).
func (dao *PendingEditDAO) ListPending(ctx context.Context, userID string) ([]model.PendingEdit, error) {
	logger := dao.Logger.With("query", "listPending")

	builder := dao.Builder.
		Select("*").
		From("pending_edits").
		Where(squirrel.Eq{"status": model.EditStatusPending}).
		OrderBy("created_at ASC")

	if userID != "" {
		builder = builder.Where(squirrel.Eq{"user_id": userID})
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return []model.PendingEdit{}, err
	}

	logger.Debug("build query", "sql", query, "args", args)

	edits := make([]model.PendingEdit, 0)
	if err := dao.SelectContext(ctx, &edits, query, args...); err != nil {
		logger.Warn("failed query execute", "error", err)
		return []model.PendingEdit{}, err
	}

	return edits, nil
}

type InsertPendingEditDTO struct {
	StationEVA int64
	User       string
	Amenities  model.Amenities
}

func insertPendingEditMap(dto InsertPendingEditDTO) map[string]any {
	data := amenityMap(dto.Amenities)
	data["station_eva"] = dto.StationEVA
	data["user_id"] = dto.User
	data["status"] = model.EditStatusPending
	return data
}

func (dao *PendingEditDAO) Insert(ctx context.Context, dto InsertPendingEditDTO) (model.ID, error) {
	logger := dao.Logger.With("query", "insert")

	query, args, err := dao.Builder.
		Insert("pending_edits").
		SetMap(insertPendingEditMap(dto)).
		Suffix("RETURNING id").
		ToSql()
	if err != nil {
		return 0, err
	}

	logger.Debug("build query", "sql", query, "args", args)

	var id model.ID
	row := dao.QueryRowxContext(ctx, query, args...)
	if err := row.Scan(&id); err != nil {
		logger.Warn("failed query execute", "error", err)
		return 0, err
	}

	return id, nil
}

func (dao *PendingEditDAO) UpdateFields(ctx context.Context, id model.ID, amenities model.Amenities) error {
	logger := dao.Logger.With("query", "updateFields")

	query, args, err := dao.Builder.
		Update("pending_edits").
		SetMap(amenityMap(amenities)).
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return err
	}

	logger.Debug("build query", "sql", query, "args", args)

	if _, err := dao.ExecContext(ctx, query, args...); err != nil {
		logger.Warn("failed query execute", "error", err)
		return err
	}

	return nil
}

// reviewedMap records the verdict together with who reviewed and when.
func reviewedMap(status model.EditStatus, reviewerID string) map[string]any {
	return map[string]any{
		"status":      status,
		"reviewed_at": time.Now(),
		"reviewed_by": reviewerID,
	}
}

func (dao *PendingEditDAO) MarkReviewed(ctx context.Context, id model.ID, status model.EditStatus, reviewerID string) error {
	logger := dao.Logger.With("query", "markReviewed")

	query, args, err := dao.Builder.
		Update("pending_edits").
		SetMap(reviewedMap(status, reviewerID)).
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return err
	}

	logger.Debug("build query", "sql", query, "args", args)

	if _, err := dao.ExecContext(ctx, query, args...); err != nil {
		logger.Warn("failed query execute", "error", err)
		return err
	}

	return nil
}

func (dao *PendingEditDAO) Delete(ctx context.Context, id model.ID) error {
	logger := dao.Logger.With("query", "delete")

	query, args, err := dao.Builder.
		Delete("pending_edits").
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return err
	}

	logger.Debug("build query", "sql", query, "args", args)

	if _, err := dao.ExecContext(ctx, query, args...); err != nil {
		logger.Warn("failed query execute", "error", err)
		return err
	}

	return nil
}

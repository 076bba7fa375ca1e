package database

import (
	"context"
	"log/slog"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/protomem/night-stations/internal/model"
)

const _searchLimit = 30

type StationDAO struct {
	Logger *slog.Logger
	*DB
}

func NewStationDAO(logger *slog.Logger, db *DB) *StationDAO {
	return &StationDAO{
		Logger: logger.With("dao", "station"),
		DB:     db,
	}
}

// SearchStationsFilter combines a free-text query with amenity filters.
// Filters are conjunctive: every flag set to true must hold on a match.
type SearchStationsFilter struct {
	Query string

	Open24h        bool
	WarmSleep      bool
	Toilets        bool
	ToiletsAtNight bool
	Outlets        bool
	Wifi           bool
}

func filterConditions(filter SearchStationsFilter) squirrel.And {
	cond := squirrel.And{}
	if filter.Open24h {
		cond = append(cond, squirrel.Eq{"is_open_24h": true})
	}
	if filter.WarmSleep {
		cond = append(cond, squirrel.Eq{"has_warm_sleep": true})
	}
	if filter.Toilets {
		cond = append(cond, squirrel.Eq{"has_toilets": true})
	}
	if filter.ToiletsAtNight {
		cond = append(cond, squirrel.Eq{"toilets_open_at_night": true})
	}
	if filter.Outlets {
		cond = append(cond, squirrel.Eq{"has_outlets": true})
	}
	if filter.Wifi {
		cond = append(cond, squirrel.Eq{"has_wifi": true})
	}
	return cond
}

// buildSearchQuery ranks by a weighted score: trigram similarity of name or
// city, plus a prefix bonus (0.5) and a substring bonus (0.3). Ties break on
// the importance category, 1 being a major hub.
func buildSearchQuery(builder squirrel.StatementBuilderType, filter SearchStationsFilter) (string, []any, error) {
	prefix := filter.Query + "%"
	substring := "%" + filter.Query + "%"

	q := builder.
		Select("*").
		Column(squirrel.Expr(
			"greatest(similarity(name, ?), similarity(city, ?))"+
				" + (case when name ilike ? or city ilike ? then 0.5 else 0 end)"+
				" + (case when name ilike ? or city ilike ? then 0.3 else 0 end) AS score",
			filter.Query, filter.Query, prefix, prefix, substring, substring,
		)).
		From("stations").
		Where(squirrel.Or{
			squirrel.Expr("name % ?", filter.Query),
			squirrel.Expr("city % ?", filter.Query),
			squirrel.ILike{"name": substring},
			squirrel.ILike{"city": substring},
		}).
		OrderBy("score DESC", "category ASC NULLS LAST").
		Limit(_searchLimit)

	if cond := filterConditions(filter); len(cond) > 0 {
		q = q.Where(cond)
	}

	return q.ToSql()
}

// buildSearchFallbackQuery is the plain case-insensitive substring variant,
// used when the similarity query fails (e.g. pg_trgm is not installed).
func buildSearchFallbackQuery(builder squirrel.StatementBuilderType, filter SearchStationsFilter) (string, []any, error) {
	substring := "%" + filter.Query + "%"

	q := builder.
		Select("*").
		From("stations").
		Where(squirrel.Or{
			squirrel.ILike{"name": substring},
			squirrel.ILike{"city": substring},
		}).
		OrderBy("category ASC NULLS LAST", "name ASC").
		Limit(_searchLimit)

	if cond := filterConditions(filter); len(cond) > 0 {
		q = q.Where(cond)
	}

	return q.ToSql()
}

type stationSearchRow struct {
	model.Station
	Score float64 `db:"score"`
}

func (dao *StationDAO) Search(ctx context.Context, filter SearchStationsFilter) ([]model.Station, error) {
	logger := dao.Logger.With("query", "search")

	query, args, err := buildSearchQuery(dao.Builder, filter)
	if err != nil {
		return []model.Station{}, err
	}

	logger.Debug("build query", "sql", query, "args", args)

	rows := make([]stationSearchRow, 0, _searchLimit)
	if err := dao.SelectContext(ctx, &rows, query, args...); err == nil {
		stations := make([]model.Station, len(rows))
		for i, row := range rows {
			stations[i] = row.Station
		}
		return stations, nil
	} else {
		logger.Warn("similarity query failed, falling back to substring match", "error", err)
	}

	query, args, err = buildSearchFallbackQuery(dao.Builder, filter)
	if err != nil {
		return []model.Station{}, err
	}

	logger.Debug("build fallback query", "sql", query, "args", args)

	stations := make([]model.Station, 0, _searchLimit)
	if err := dao.SelectContext(ctx, &stations, query, args...); err != nil {
		logger.Warn("fallback query failed", "error", err)
		return []model.Station{}, nil
	}

	return stations, nil
}

func (dao *StationDAO) Get(ctx context.Context, eva int64) (model.Station, error) {
	logger := dao.Logger.With("query", "get")

	query, args, err := dao.Builder.
		Select("*").
		From("stations").
		Where(squirrel.Eq{"eva": eva}).
		Limit(1).
		ToSql()
	if err != nil {
		return model.Station{}, err
	}

	logger.Debug("build query", "sql", query, "args", args)

	var station model.Station
	row := dao.QueryRowxContext(ctx, query, args...)
	if err := row.StructScan(&station); err != nil {
		if IsNoRows(err) {
			return model.Station{}, model.NewError("station", model.ErrNotFound)
		}

		logger.Warn("failed query execute", "error", err)

		return model.Station{}, err
	}

	return station, nil
}

func (dao *StationDAO) ListByEVAs(ctx context.Context, evas []int64) ([]model.Station, error) {
	logger := dao.Logger.With("query", "listByEvas")

	if len(evas) == 0 {
		return []model.Station{}, nil
	}

	query, args, err := dao.Builder.
		Select("*").
		From("stations").
		Where(squirrel.Eq{"eva": evas}).
		OrderBy("name ASC").
		ToSql()
	if err != nil {
		return []model.Station{}, err
	}

	logger.Debug("build query", "sql", query, "args", args)

	stations := make([]model.Station, 0, len(evas))
	if err := dao.SelectContext(ctx, &stations, query, args...); err != nil {
		logger.Warn("failed query execute", "error", err)
		return []model.Station{}, err
	}

	return stations, nil
}

type InsertStationDTO struct {
	EVA          int64
	StationIDGer *int64
	Name         string
	City         *string
	Country      string
	Category     *int
	Latitude     float64
	Longitude    float64

	Amenities model.Amenities
}

func (dao *StationDAO) Insert(ctx context.Context, dto InsertStationDTO) error {
	logger := dao.Logger.With("query", "insert")

	// Amenity columns ride along so a lazily created row carries its
	// defaults explicitly.
	query, args, err := dao.Builder.
		Insert("stations").
		SetMap(insertStationMap(dto)).
		ToSql()
	if err != nil {
		return err
	}

	logger.Debug("build query", "sql", query, "args", args)

	if _, err := dao.ExecContext(ctx, query, args...); err != nil {
		if IsUniqueViolation(err) {
			return model.NewError("station", model.ErrExists)
		}

		logger.Warn("failed query execute", "error", err)

		return err
	}

	return nil
}

func insertStationMap(dto InsertStationDTO) map[string]any {
	data := amenityMap(dto.Amenities)
	data["eva"] = dto.EVA
	data["station_id_ger"] = dto.StationIDGer
	data["name"] = dto.Name
	data["city"] = dto.City
	data["country"] = dto.Country
	data["category"] = dto.Category
	data["latitude"] = dto.Latitude
	data["longitude"] = dto.Longitude
	return data
}

// amenityMap lists every crowd-editable column. Approving a pending edit
// copies exactly this set onto the station row.
func amenityMap(a model.Amenities) map[string]any {
	return map[string]any{
		"has_warm_sleep":        a.HasWarmSleep,
		"sleep_notes":           a.SleepNotes,
		"has_outlets":           a.HasOutlets,
		"outlet_notes":          a.OutletNotes,
		"has_toilets":           a.HasToilets,
		"toilet_notes":          a.ToiletNotes,
		"toilets_open_at_night": a.ToiletsOpenAtNight,
		"is_open_24h":           a.IsOpen24h,
		"opening_hours":         a.OpeningHours,
		"has_wifi":              a.HasWifi,
		"wifi_has_limit":        a.WifiHasLimit,
		"wifi_notes":            a.WifiNotes,
		"additional_info":       a.AdditionalInfo,
	}
}

func (dao *StationDAO) UpdateAmenities(ctx context.Context, eva int64, amenities model.Amenities) error {
	logger := dao.Logger.With("query", "updateAmenities")

	data := amenityMap(amenities)
	data["updated_at"] = time.Now()

	query, args, err := dao.Builder.
		Update("stations").
		SetMap(data).
		Where(squirrel.Eq{"eva": eva}).
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

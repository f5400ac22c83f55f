package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"GeoData-App/internal/domain/model"
	"GeoData-App/internal/domain/repository"
	"GeoData-App/internal/infrastructure/database"
)

// pgColumns fields/sortのフィールド名からカラム名への対応
var pgColumns = map[string]string{
	"id":              "id",
	"locationName":    "location_name",
	"latitude":        "latitude",
	"longitude":       "longitude",
	"date":            "date",
	"url":             "url",
	"type":            "type",
	"service_version": "service_version",
	"createdAt":       "created_at",
}

type PostgresGeoDataRepository struct {
	client *database.PostgreSQLClient
}

func NewPostgresGeoDataRepository(client *database.PostgreSQLClient) repository.GeoDataRepository {
	return &PostgresGeoDataRepository{
		client: client,
	}
}

// EnsureSchema geodataテーブルが存在しない場合に作成する
func (r *PostgresGeoDataRepository) EnsureSchema(ctx context.Context) error {
	_, err := r.client.DB.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS geodata (
			id              TEXT PRIMARY KEY,
			location_name   TEXT,
			latitude        DOUBLE PRECISION NOT NULL,
			longitude       DOUBLE PRECISION NOT NULL,
			date            DATE NOT NULL,
			url             TEXT NOT NULL,
			type            TEXT,
			service_version TEXT,
			created_at      TIMESTAMPTZ NOT NULL DEFAULT now()
		)`)
	if err != nil {
		return fmt.Errorf("geodataテーブルの作成失敗: %w", err)
	}
	return nil
}

// geoDataRow PostgreSQLの行を受け取るための構造体
type geoDataRow struct {
	ID             string
	LocationName   sql.NullString
	Latitude       float64
	Longitude      float64
	Date           string
	URL            string
	Type           sql.NullString
	ServiceVersion sql.NullString
	CreatedAt      time.Time
}

func (row *geoDataRow) toModel() model.GeoData {
	return model.GeoData{
		ID:             row.ID,
		LocationName:   row.LocationName.String,
		Latitude:       row.Latitude,
		Longitude:      row.Longitude,
		Date:           row.Date,
		URL:            row.URL,
		Type:           row.Type.String,
		ServiceVersion: row.ServiceVersion.String,
		CreatedAt:      row.CreatedAt,
	}
}

const geoDataColumns = `id, location_name, latitude, longitude, date::text, url, type, service_version, created_at`

func (r *PostgresGeoDataRepository) Create(ctx context.Context, data *model.GeoData) (string, error) {
	id := uuid.New().String()

	createdAt := data.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}

	_, err := r.client.DB.ExecContext(ctx, `
		INSERT INTO geodata (id, location_name, latitude, longitude, date, url, type, service_version, created_at)
		VALUES ($1, $2, $3, $4, $5::date, $6, $7, $8, $9)`,
		id, data.LocationName, data.Latitude, data.Longitude, data.Date,
		data.URL, data.Type, data.ServiceVersion, createdAt,
	)
	if err != nil {
		return "", fmt.Errorf("エントリの保存失敗: %w", err)
	}
	return id, nil
}

func (r *PostgresGeoDataRepository) GetByID(ctx context.Context, id string) (*model.GeoData, error) {
	var row geoDataRow
	err := r.client.DB.QueryRowContext(ctx,
		`SELECT `+geoDataColumns+` FROM geodata WHERE id = $1`, id,
	).Scan(
		&row.ID, &row.LocationName, &row.Latitude, &row.Longitude, &row.Date,
		&row.URL, &row.Type, &row.ServiceVersion, &row.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, model.ErrGeoDataNotFound
		}
		return nil, fmt.Errorf("エントリの取得失敗: %w", err)
	}

	data := row.toModel()
	return &data, nil
}

func (r *PostgresGeoDataRepository) Delete(ctx context.Context, id string) error {
	result, err := r.client.DB.ExecContext(ctx, `DELETE FROM geodata WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("エントリの削除失敗: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("削除結果の確認失敗: %w", err)
	}
	if affected == 0 {
		return model.ErrGeoDataNotFound
	}
	return nil
}

func (r *PostgresGeoDataRepository) List(ctx context.Context, query *model.ListQuery) ([]model.GeoData, int64, error) {
	whereSQL, args := buildPostgresWhere(query)

	var total int64
	if err := r.client.DB.QueryRowContext(ctx,
		`SELECT count(*) FROM geodata`+whereSQL, args...,
	).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("件数の取得失敗: %w", err)
	}

	listSQL := fmt.Sprintf(
		`SELECT `+geoDataColumns+` FROM geodata%s%s LIMIT $%d OFFSET $%d`,
		whereSQL, buildPostgresOrderBy(query), len(args)+1, len(args)+2,
	)
	rows, err := r.client.DB.QueryContext(ctx, listSQL, append(args, query.Limit, query.Offset())...)
	if err != nil {
		return nil, 0, fmt.Errorf("エントリの検索失敗: %w", err)
	}
	defer rows.Close()

	var results []model.GeoData
	for rows.Next() {
		var row geoDataRow
		if err := rows.Scan(
			&row.ID, &row.LocationName, &row.Latitude, &row.Longitude, &row.Date,
			&row.URL, &row.Type, &row.ServiceVersion, &row.CreatedAt,
		); err != nil {
			return nil, 0, fmt.Errorf("検索結果の読み取り失敗: %w", err)
		}
		results = append(results, row.toModel())
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("検索結果の読み取り失敗: %w", err)
	}
	return results, total, nil
}

// buildPostgresWhere 検索プランからWHERE句とバインド引数を構築する
func buildPostgresWhere(q *model.ListQuery) (string, []interface{}) {
	var conditions []string
	var args []interface{}

	arg := func(v interface{}) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if q.DateAfter != "" {
		conditions = append(conditions, fmt.Sprintf("date > %s::date", arg(q.DateAfter)))
	}
	if q.DateBefore != "" {
		conditions = append(conditions, fmt.Sprintf("date < %s::date", arg(q.DateBefore)))
	}
	if q.LatMin != nil {
		conditions = append(conditions, fmt.Sprintf("latitude >= %s", arg(*q.LatMin)))
	}
	if q.LatMax != nil {
		conditions = append(conditions, fmt.Sprintf("latitude <= %s", arg(*q.LatMax)))
	}
	if q.LonMin != nil {
		conditions = append(conditions, fmt.Sprintf("longitude >= %s", arg(*q.LonMin)))
	}
	if q.LonMax != nil {
		conditions = append(conditions, fmt.Sprintf("longitude <= %s", arg(*q.LonMax)))
	}
	if q.LocationName != "" {
		pattern := "%" + escapeLikePattern(q.LocationName) + "%"
		conditions = append(conditions, fmt.Sprintf(`location_name ILIKE %s ESCAPE '\'`, arg(pattern)))
	}

	if len(conditions) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(conditions, " AND "), args
}

// buildPostgresOrderBy 検索プランからORDER BY句を構築する。
// ソート指定がない場合はidで安定した順序にする。
func buildPostgresOrderBy(q *model.ListQuery) string {
	if len(q.Sort) == 0 {
		return " ORDER BY id"
	}

	var keys []string
	for _, key := range q.Sort {
		column, ok := pgColumns[key.Field]
		if !ok {
			continue
		}
		direction := "ASC"
		if key.Desc {
			direction = "DESC"
		}
		keys = append(keys, column+" "+direction)
	}
	if len(keys) == 0 {
		return " ORDER BY id"
	}
	return " ORDER BY " + strings.Join(keys, ", ")
}

// escapeLikePattern LIKEの特殊文字をエスケープしてリテラルな部分一致にする
func escapeLikePattern(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, `%`, `\%`)
	s = strings.ReplaceAll(s, `_`, `\_`)
	return s
}

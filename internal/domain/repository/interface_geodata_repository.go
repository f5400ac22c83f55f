package repository

import (
	"context"

	"GeoData-App/internal/domain/model"
)

// GeoDataRepository 衛星画像エントリの永続化を担うリポジトリ
type GeoDataRepository interface {
	// Create エントリを保存し、採番されたIDを返す
	Create(ctx context.Context, data *model.GeoData) (string, error)

	// GetByID IDでエントリを1件取得する。存在しない場合はmodel.ErrGeoDataNotFound
	GetByID(ctx context.Context, id string) (*model.GeoData, error)

	// Delete IDでエントリを削除する。存在しない場合はmodel.ErrGeoDataNotFound
	Delete(ctx context.Context, id string) error

	// List 検索プランに従ってエントリを取得し、フィルタに一致する総件数も返す。
	// 総件数はプロジェクション・ソート・ページングを適用する前の値。
	List(ctx context.Context, query *model.ListQuery) ([]model.GeoData, int64, error)
}

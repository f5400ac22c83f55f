package usecase

import (
	"context"
	"fmt"
	"net/url"

	"GeoData-App/internal/domain/model"
	"GeoData-App/internal/domain/repository"
)

// GeoDataUseCase 衛星画像データに関するビジネスロジックを提供するユースケース
type GeoDataUseCase interface {
	// FetchImagery 外部プロバイダから指定座標・日付の衛星画像を取得する
	FetchImagery(ctx context.Context, lat, lon float64, date string) (*model.ImageryResult, error)

	// Save エントリを保存する
	Save(ctx context.Context, req *model.SaveGeoDataRequest) (*model.SaveGeoDataResponse, error)

	// List クエリパラメータから検索プランを構築し、ページングされた一覧を返す
	List(ctx context.Context, params url.Values) (*model.GeoDataListResponse, error)

	// GetByID エントリを1件取得する
	GetByID(ctx context.Context, id string) (*model.GeoData, error)

	// Delete エントリを削除する
	Delete(ctx context.Context, id string) (*model.DeleteGeoDataResponse, error)
}

type geoDataUseCaseImpl struct {
	geoDataRepo repository.GeoDataRepository
	imagery     repository.ImageryProvider
}

// NewGeoDataUseCase GeoDataUseCaseの新しいインスタンスを作成
func NewGeoDataUseCase(geoDataRepo repository.GeoDataRepository, imagery repository.ImageryProvider) GeoDataUseCase {
	return &geoDataUseCaseImpl{
		geoDataRepo: geoDataRepo,
		imagery:     imagery,
	}
}

func (u *geoDataUseCaseImpl) FetchImagery(ctx context.Context, lat, lon float64, date string) (*model.ImageryResult, error) {
	result, err := u.imagery.FetchImagery(ctx, lat, lon, date)
	if err != nil {
		return nil, fmt.Errorf("衛星画像の取得失敗: %w", err)
	}
	return result, nil
}

func (u *geoDataUseCaseImpl) Save(ctx context.Context, req *model.SaveGeoDataRequest) (*model.SaveGeoDataResponse, error) {
	id, err := u.geoDataRepo.Create(ctx, req.ToRecord())
	if err != nil {
		return nil, fmt.Errorf("エントリの保存失敗: %w", err)
	}

	return &model.SaveGeoDataResponse{
		Message: "Saved",
		ID:      id,
	}, nil
}

func (u *geoDataUseCaseImpl) List(ctx context.Context, params url.Values) (*model.GeoDataListResponse, error) {
	query := model.ParseListQuery(params)

	records, total, err := u.geoDataRepo.List(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("エントリの一覧取得失敗: %w", err)
	}

	results := make([]map[string]interface{}, 0, len(records))
	for i := range records {
		results = append(results, query.Project(&records[i]))
	}

	return &model.GeoDataListResponse{
		Page:       query.Page,
		Limit:      query.Limit,
		Total:      total,
		TotalPages: totalPages(total, query.Limit),
		Results:    results,
	}, nil
}

func (u *geoDataUseCaseImpl) GetByID(ctx context.Context, id string) (*model.GeoData, error) {
	return u.geoDataRepo.GetByID(ctx, id)
}

func (u *geoDataUseCaseImpl) Delete(ctx context.Context, id string) (*model.DeleteGeoDataResponse, error) {
	if err := u.geoDataRepo.Delete(ctx, id); err != nil {
		return nil, err
	}

	return &model.DeleteGeoDataResponse{
		Message: "Entry deleted successfully",
		ID:      id,
	}, nil
}

// totalPages フィルタ一致件数から総ページ数を計算する（切り上げ）
func totalPages(total int64, limit int) int64 {
	if total == 0 {
		return 0
	}
	return (total + int64(limit) - 1) / int64(limit)
}

package repository

import (
	"context"

	"GeoData-App/internal/domain/model"
)

// ImageryProvider 外部の衛星画像APIから画像を取得するプロバイダ
type ImageryProvider interface {
	// FetchImagery 指定座標・日付の画像URLを取得する。
	// プロバイダ側がリクエストを拒否した場合はmodel.ErrImageryUpstreamを返す。
	FetchImagery(ctx context.Context, lat, lon float64, date string) (*model.ImageryResult, error)
}

package model

import (
	"time"
)

// GeoData 保存された衛星画像エントリ
type GeoData struct {
	ID             string    `json:"id" db:"id"`                           // ストアが採番するユニークID
	LocationName   string    `json:"locationName" db:"location_name"`      // 地点名（自由入力）
	Latitude       float64   `json:"latitude" db:"latitude"`               // 緯度 [-90, 90]
	Longitude      float64   `json:"longitude" db:"longitude"`             // 経度 [-180, 180]
	Date           string    `json:"date" db:"date"`                       // 撮影日 (YYYY-MM-DD)
	URL            string    `json:"url" db:"url"`                         // 画像リソースのURL
	Type           string    `json:"type" db:"type"`                       // 種別タグ
	ServiceVersion string    `json:"service_version" db:"service_version"` // 提供元APIのバージョンタグ
	CreatedAt      time.Time `json:"createdAt" db:"created_at"`            // 保存日時
}

// SaveGeoDataRequest POST /api/geo-data のリクエストボディ
type SaveGeoDataRequest struct {
	LocationName   string  `json:"locationName"`
	Latitude       float64 `json:"latitude"`
	Longitude      float64 `json:"longitude"`
	Date           string  `json:"date"`
	URL            string  `json:"url"`
	Type           string  `json:"type"`
	ServiceVersion string  `json:"service_version"`
}

// SaveGeoDataResponse 保存成功時のレスポンス
type SaveGeoDataResponse struct {
	Message string `json:"message"`
	ID      string `json:"id"`
}

// DeleteGeoDataResponse 削除成功時のレスポンス
type DeleteGeoDataResponse struct {
	Message string `json:"message"`
	ID      string `json:"id"`
}

// GeoDataListResponse 一覧取得のレスポンスエンベロープ
type GeoDataListResponse struct {
	Page       int                      `json:"page"`
	Limit      int                      `json:"limit"`
	Total      int64                    `json:"total"`
	TotalPages int64                    `json:"totalPages"`
	Results    []map[string]interface{} `json:"results"`
}

// ImageryResult 衛星画像プロバイダからの取得結果
type ImageryResult struct {
	ImageURL string     `json:"imageUrl"`
	Lat      float64    `json:"lat"`
	Lon      float64    `json:"lon"`
	Date     string     `json:"date"`
	BBox     [4]float64 `json:"bbox"` // サンプリング範囲 [minLon, minLat, maxLon, maxLat]
}

// ToRecord 保存リクエストからGeoDataを作成する
func (r *SaveGeoDataRequest) ToRecord() *GeoData {
	return &GeoData{
		LocationName:   r.LocationName,
		Latitude:       r.Latitude,
		Longitude:      r.Longitude,
		Date:           r.Date,
		URL:            r.URL,
		Type:           r.Type,
		ServiceVersion: r.ServiceVersion,
	}
}

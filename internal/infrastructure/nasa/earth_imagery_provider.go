package nasa

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/paulmach/orb"

	"GeoData-App/internal/domain/model"
)

const (
	defaultBaseURL = "https://api.nasa.gov/planetary/earth/imagery"

	// samplingDim 取得する画像の1辺の角度幅（度）
	samplingDim = 0.1
)

// EarthImageryProvider はNASA Earth Imagery APIを使用した衛星画像取得の実装
type EarthImageryProvider struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
}

// NewEarthImageryProvider は新しいプロバイダを生成する。
// APIキーが空の場合はNASAのデモキーを使用する。
func NewEarthImageryProvider(apiKey string) *EarthImageryProvider {
	if apiKey == "" {
		apiKey = "DEMO_KEY"
	}
	return &EarthImageryProvider{
		apiKey:     apiKey,
		baseURL:    defaultBaseURL,
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
}

// FetchImagery はNASA APIを呼び出して指定座標・日付の衛星画像URLを取得する
func (p *EarthImageryProvider) FetchImagery(ctx context.Context, lat, lon float64, date string) (*model.ImageryResult, error) {
	// 1. APIリクエストURLを構築
	reqURL := p.buildURL(lat, lon, date)

	// 2. HTTPリクエストを作成・実行
	req, err := http.NewRequestWithContext(ctx, "GET", reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("リクエストの作成に失敗: %w", err)
	}

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("APIリクエストに失敗: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("%w: %s", model.ErrImageryUpstream, resp.Status)
	}

	// 3. リダイレクト解決後の最終URLが画像本体を指す
	imageURL := resp.Request.URL.String()

	// 4. サンプリング範囲の境界ボックスを計算
	bound := orb.Point{lon, lat}.Bound().Pad(samplingDim / 2)

	return &model.ImageryResult{
		ImageURL: imageURL,
		Lat:      lat,
		Lon:      lon,
		Date:     date,
		BBox:     [4]float64{bound.Min[0], bound.Min[1], bound.Max[0], bound.Max[1]},
	}, nil
}

func (p *EarthImageryProvider) buildURL(lat, lon float64, date string) string {
	params := url.Values{}
	params.Set("lat", strconv.FormatFloat(lat, 'f', -1, 64))
	params.Set("lon", strconv.FormatFloat(lon, 'f', -1, 64))
	params.Set("date", date)
	params.Set("dim", strconv.FormatFloat(samplingDim, 'f', -1, 64))
	params.Set("api_key", p.apiKey)

	return fmt.Sprintf("%s?%s", p.baseURL, params.Encode())
}

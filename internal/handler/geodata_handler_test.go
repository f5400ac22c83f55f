package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"GeoData-App/internal/domain/model"
	"GeoData-App/internal/usecase"
)

type stubGeoDataRepo struct {
	records   []model.GeoData
	total     int64
	createErr error
	created   *model.GeoData
}

func (s *stubGeoDataRepo) Create(ctx context.Context, data *model.GeoData) (string, error) {
	if s.createErr != nil {
		return "", s.createErr
	}
	s.created = data
	return "new-id", nil
}

func (s *stubGeoDataRepo) GetByID(ctx context.Context, id string) (*model.GeoData, error) {
	for i := range s.records {
		if s.records[i].ID == id {
			return &s.records[i], nil
		}
	}
	return nil, model.ErrGeoDataNotFound
}

func (s *stubGeoDataRepo) Delete(ctx context.Context, id string) error {
	for i := range s.records {
		if s.records[i].ID == id {
			s.records = append(s.records[:i], s.records[i+1:]...)
			return nil
		}
	}
	return model.ErrGeoDataNotFound
}

func (s *stubGeoDataRepo) List(ctx context.Context, query *model.ListQuery) ([]model.GeoData, int64, error) {
	return s.records, s.total, nil
}

type stubImageryProvider struct {
	err error
}

func (s *stubImageryProvider) FetchImagery(ctx context.Context, lat, lon float64, date string) (*model.ImageryResult, error) {
	if s.err != nil {
		return nil, s.err
	}
	return &model.ImageryResult{
		ImageURL: "https://images.example.com/earth.png",
		Lat:      lat,
		Lon:      lon,
		Date:     date,
	}, nil
}

func setupRouter(repo *stubGeoDataRepo, provider *stubImageryProvider) *gin.Engine {
	gin.SetMode(gin.TestMode)

	geoDataHandler := NewGeoDataHandler(usecase.NewGeoDataUseCase(repo, provider))

	router := gin.New()
	router.GET("/api/geo-data", geoDataHandler.FetchImagery)
	router.POST("/api/geo-data", geoDataHandler.SaveGeoData)
	router.GET("/api/geo-data/all", geoDataHandler.ListGeoData)
	router.GET("/api/geo-data/:id", geoDataHandler.GetGeoDataByID)
	router.DELETE("/api/geo-data/:id", geoDataHandler.DeleteGeoDataByID)
	return router
}

func TestFetchImagery(t *testing.T) {
	t.Run("有効なパラメータは入力値をそのまま返す", func(t *testing.T) {
		router := setupRouter(&stubGeoDataRepo{}, &stubImageryProvider{})

		w := httptest.NewRecorder()
		req, _ := http.NewRequest("GET", "/api/geo-data?lat=35.6586&lon=139.7454&date=2024-01-15", nil)
		router.ServeHTTP(w, req)

		require.Equal(t, http.StatusOK, w.Code)

		var resp model.ImageryResult
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, 35.6586, resp.Lat)
		assert.Equal(t, 139.7454, resp.Lon)
		assert.Equal(t, "2024-01-15", resp.Date)
		assert.NotEmpty(t, resp.ImageURL)
	})

	t.Run("範囲外・不正なパラメータは400になる", func(t *testing.T) {
		cases := []struct {
			name  string
			query string
		}{
			{"緯度が範囲外", "lat=91&lon=139&date=2024-01-15"},
			{"緯度が数値でない", "lat=abc&lon=139&date=2024-01-15"},
			{"緯度なし", "lon=139&date=2024-01-15"},
			{"経度が範囲外", "lat=35&lon=181&date=2024-01-15"},
			{"日付が不正", "lat=35&lon=139&date=Jan-15"},
			{"日付なし", "lat=35&lon=139"},
		}

		router := setupRouter(&stubGeoDataRepo{}, &stubImageryProvider{})
		for _, c := range cases {
			t.Run(c.name, func(t *testing.T) {
				w := httptest.NewRecorder()
				req, _ := http.NewRequest("GET", "/api/geo-data?"+c.query, nil)
				router.ServeHTTP(w, req)

				assert.Equal(t, http.StatusBadRequest, w.Code)
				assert.Contains(t, w.Body.String(), "error")
			})
		}
	})

	t.Run("アップストリーム拒否は400、通信エラーは500になる", func(t *testing.T) {
		router := setupRouter(&stubGeoDataRepo{}, &stubImageryProvider{err: model.ErrImageryUpstream})
		w := httptest.NewRecorder()
		req, _ := http.NewRequest("GET", "/api/geo-data?lat=35&lon=139&date=2024-01-15", nil)
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, w.Body.String(), "Failed to fetch from NASA API")

		router = setupRouter(&stubGeoDataRepo{}, &stubImageryProvider{err: errors.New("connection refused")})
		w = httptest.NewRecorder()
		req, _ = http.NewRequest("GET", "/api/geo-data?lat=35&lon=139&date=2024-01-15", nil)
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusInternalServerError, w.Code)
		assert.Contains(t, w.Body.String(), "Server error fetching image")
	})
}

func TestSaveGeoData(t *testing.T) {
	validBody := map[string]interface{}{
		"locationName": "Mt. Fuji",
		"latitude":     35.3606,
		"longitude":    138.7274,
		"date":         "2024-01-15",
		"url":          "https://images.example.com/fuji.png",
	}

	post := func(router *gin.Engine, body map[string]interface{}) *httptest.ResponseRecorder {
		data, _ := json.Marshal(body)
		w := httptest.NewRecorder()
		req, _ := http.NewRequest("POST", "/api/geo-data", bytes.NewBuffer(data))
		req.Header.Set("Content-Type", "application/json")
		router.ServeHTTP(w, req)
		return w
	}

	t.Run("有効なボディは201でIDが返る", func(t *testing.T) {
		router := setupRouter(&stubGeoDataRepo{}, &stubImageryProvider{})
		w := post(router, validBody)

		require.Equal(t, http.StatusCreated, w.Code)

		var resp model.SaveGeoDataResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, "Saved", resp.Message)
		assert.Equal(t, "new-id", resp.ID)
	})

	t.Run("日付はYYYY-MM-DDに正規化されて保存される", func(t *testing.T) {
		repo := &stubGeoDataRepo{}
		router := setupRouter(repo, &stubImageryProvider{})

		body := map[string]interface{}{}
		for k, v := range validBody {
			body[k] = v
		}
		body["date"] = "2024-01-15T00:00:00Z"

		w := post(router, body)
		require.Equal(t, http.StatusCreated, w.Code)

		require.NotNil(t, repo.created)
		assert.Equal(t, "2024-01-15", repo.created.Date)
		// 正規化により排他的なafter境界と同日レコードの文字列比較が成立する
		assert.False(t, repo.created.Date > "2024-01-15")
	})

	t.Run("バリデーション違反は400になる", func(t *testing.T) {
		router := setupRouter(&stubGeoDataRepo{}, &stubImageryProvider{})

		cases := []struct {
			name     string
			override map[string]interface{}
		}{
			{"緯度が範囲外", map[string]interface{}{"latitude": 95.0}},
			{"経度が範囲外", map[string]interface{}{"longitude": -200.0}},
			{"日付が不正", map[string]interface{}{"date": "15/01/2024"}},
			{"URLが不正", map[string]interface{}{"url": "not a url"}},
			{"URLのスキームが不正", map[string]interface{}{"url": "ftp://example.com/a.png"}},
		}

		for _, c := range cases {
			t.Run(c.name, func(t *testing.T) {
				body := map[string]interface{}{}
				for k, v := range validBody {
					body[k] = v
				}
				for k, v := range c.override {
					body[k] = v
				}

				w := post(router, body)
				assert.Equal(t, http.StatusBadRequest, w.Code)
			})
		}
	})

	t.Run("ストア障害は500になる", func(t *testing.T) {
		router := setupRouter(&stubGeoDataRepo{createErr: errors.New("store down")}, &stubImageryProvider{})
		w := post(router, validBody)

		assert.Equal(t, http.StatusInternalServerError, w.Code)
		assert.Contains(t, w.Body.String(), "Failed to save entry")
	})
}

func TestListGeoData(t *testing.T) {
	t.Run("一覧はエンベロープ形式で返る", func(t *testing.T) {
		repo := &stubGeoDataRepo{
			records: []model.GeoData{
				{ID: "a", LocationName: "Tokyo", Date: "2024-02-01"},
				{ID: "b", LocationName: "Osaka", Date: "2024-01-01"},
			},
			total: 42,
		}
		router := setupRouter(repo, &stubImageryProvider{})

		w := httptest.NewRecorder()
		req, _ := http.NewRequest("GET", "/api/geo-data/all?limit=2", nil)
		router.ServeHTTP(w, req)

		require.Equal(t, http.StatusOK, w.Code)

		var resp map[string]interface{}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, float64(1), resp["page"])
		assert.Equal(t, float64(2), resp["limit"])
		assert.Equal(t, float64(42), resp["total"])
		assert.Equal(t, float64(21), resp["totalPages"])
		assert.Len(t, resp["results"], 2)
	})
}

func TestGetGeoDataByID(t *testing.T) {
	repo := &stubGeoDataRepo{records: []model.GeoData{{ID: "known", LocationName: "Nara"}}}
	router := setupRouter(repo, &stubImageryProvider{})

	t.Run("存在するIDはレコードが返る", func(t *testing.T) {
		w := httptest.NewRecorder()
		req, _ := http.NewRequest("GET", "/api/geo-data/known", nil)
		router.ServeHTTP(w, req)

		require.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), "Nara")
	})

	t.Run("存在しないIDは404になる", func(t *testing.T) {
		w := httptest.NewRecorder()
		req, _ := http.NewRequest("GET", "/api/geo-data/missing", nil)
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusNotFound, w.Code)
		assert.Contains(t, w.Body.String(), "Entry not found")
	})
}

func TestDeleteGeoDataByID(t *testing.T) {
	t.Run("削除後は同じIDの取得が404になる", func(t *testing.T) {
		repo := &stubGeoDataRepo{records: []model.GeoData{{ID: "doomed"}}}
		router := setupRouter(repo, &stubImageryProvider{})

		w := httptest.NewRecorder()
		req, _ := http.NewRequest("DELETE", "/api/geo-data/doomed", nil)
		router.ServeHTTP(w, req)

		require.Equal(t, http.StatusOK, w.Code)

		var resp model.DeleteGeoDataResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, "doomed", resp.ID)

		w = httptest.NewRecorder()
		req, _ = http.NewRequest("GET", "/api/geo-data/doomed", nil)
		router.ServeHTTP(w, req)
		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("存在しないIDの削除は404でサーバーエラーにならない", func(t *testing.T) {
		router := setupRouter(&stubGeoDataRepo{}, &stubImageryProvider{})

		w := httptest.NewRecorder()
		req, _ := http.NewRequest("DELETE", "/api/geo-data/missing", nil)
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusNotFound, w.Code)
		assert.Contains(t, w.Body.String(), "Entry not found")
	})
}

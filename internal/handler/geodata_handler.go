package handler

import (
	"errors"
	"net/http"
	"net/url"
	"strconv"

	"github.com/gin-gonic/gin"

	"GeoData-App/internal/domain/model"
	"GeoData-App/internal/usecase"
)

// GeoDataHandler 衛星画像データに関するHTTPハンドラー
type GeoDataHandler struct {
	geoDataUseCase usecase.GeoDataUseCase
}

// NewGeoDataHandler GeoDataHandlerの新しいインスタンスを作成
func NewGeoDataHandler(geoDataUseCase usecase.GeoDataUseCase) *GeoDataHandler {
	return &GeoDataHandler{
		geoDataUseCase: geoDataUseCase,
	}
}

// FetchImagery GET /api/geo-data - 外部プロバイダから衛星画像を取得
func (h *GeoDataHandler) FetchImagery(c *gin.Context) {
	lat, err := strconv.ParseFloat(c.Query("lat"), 64)
	if err != nil || lat < -90 || lat > 90 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Latitude must be between -90 and 90"})
		return
	}

	lon, err := strconv.ParseFloat(c.Query("lon"), 64)
	if err != nil || lon < -180 || lon > 180 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Longitude must be between -180 and 180"})
		return
	}

	date := c.Query("date")
	if !isValidISODate(date) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Date must be a valid ISO date"})
		return
	}

	result, err := h.geoDataUseCase.FetchImagery(c.Request.Context(), lat, lon, date)
	if err != nil {
		if errors.Is(err, model.ErrImageryUpstream) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Failed to fetch from NASA API"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Server error fetching image"})
		return
	}

	c.JSON(http.StatusOK, result)
}

// SaveGeoData POST /api/geo-data - エントリの保存
func (h *GeoDataHandler) SaveGeoData(c *gin.Context) {
	var req model.SaveGeoDataRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request payload"})
		return
	}

	if req.Latitude < -90 || req.Latitude > 90 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Latitude must be between -90 and 90"})
		return
	}
	if req.Longitude < -180 || req.Longitude > 180 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Longitude must be between -180 and 180"})
		return
	}
	// 保存する日付はYYYY-MM-DDに正規化する（日付境界との文字列比較を成立させるため）
	date, ok := model.ParseDate(req.Date)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Date must be a valid ISO date"})
		return
	}
	req.Date = date
	if !isValidURL(req.URL) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "URL must be valid"})
		return
	}

	response, err := h.geoDataUseCase.Save(c.Request.Context(), &req)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save entry"})
		return
	}

	c.JSON(http.StatusCreated, response)
}

// ListGeoData GET /api/geo-data/all - フィルタ・ソート・ページング付きの一覧取得
func (h *GeoDataHandler) ListGeoData(c *gin.Context) {
	response, err := h.geoDataUseCase.List(c.Request.Context(), c.Request.URL.Query())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve entries"})
		return
	}

	c.JSON(http.StatusOK, response)
}

// GetGeoDataByID GET /api/geo-data/:id - エントリを1件取得
func (h *GeoDataHandler) GetGeoDataByID(c *gin.Context) {
	data, err := h.geoDataUseCase.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, model.ErrGeoDataNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Entry not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Server error retrieving entry"})
		return
	}

	c.JSON(http.StatusOK, data)
}

// DeleteGeoDataByID DELETE /api/geo-data/:id - エントリを削除
func (h *GeoDataHandler) DeleteGeoDataByID(c *gin.Context) {
	response, err := h.geoDataUseCase.Delete(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, model.ErrGeoDataNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Entry not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete entry"})
		return
	}

	c.JSON(http.StatusOK, response)
}

// isValidISODate 日付がYYYY-MM-DDまたはRFC3339として妥当かチェックする
func isValidISODate(date string) bool {
	if date == "" {
		return false
	}
	_, ok := model.ParseDate(date)
	return ok
}

// isValidURL http/httpsの絶対URLかチェックする
func isValidURL(raw string) bool {
	u, err := url.Parse(raw)
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}

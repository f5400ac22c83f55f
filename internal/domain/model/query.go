package model

import (
	"net/url"
	"strconv"
	"strings"
	"time"
)

const (
	// DefaultListLimit limit未指定・不正時のデフォルト件数
	DefaultListLimit = 20
	// MaxListLimit 1ページの最大件数（無制限な取得を防ぐ上限）
	MaxListLimit = 100
)

// queryableFields fields/sortで指定可能なフィールド名
var queryableFields = map[string]bool{
	"id":              true,
	"locationName":    true,
	"latitude":        true,
	"longitude":       true,
	"date":            true,
	"url":             true,
	"type":            true,
	"service_version": true,
	"createdAt":       true,
}

// SortKey ソートキー（フィールド名と方向）
type SortKey struct {
	Field string
	Desc  bool
}

// ListQuery 一覧取得リクエストから導出される検索プラン
type ListQuery struct {
	DateAfter    string   // date > DateAfter（排他的、空なら条件なし）
	DateBefore   string   // date < DateBefore（排他的、空なら条件なし）
	LatMin       *float64 // latitude >= LatMin（nilなら条件なし）
	LatMax       *float64 // latitude <= LatMax
	LonMin       *float64 // longitude >= LonMin
	LonMax       *float64 // longitude <= LonMax
	LocationName string   // 大文字小文字を無視した部分一致（空なら条件なし）
	Fields       []string // 出力フィールドの許可リスト（空なら全フィールド）
	Sort         []SortKey
	Limit        int
	Page         int
}

// ParseListQuery クエリパラメータから検索プランを構築する。
// 解析できない数値・日付の境界値は黙って無視する（不正な値でリクエスト全体を
// 落とさない、元の寛容なパラメータ仕様に合わせた挙動）。
func ParseListQuery(values url.Values) *ListQuery {
	q := &ListQuery{
		Limit: DefaultListLimit,
		Page:  1,
	}

	if after := values.Get("after"); after != "" {
		if d, ok := ParseDate(after); ok {
			q.DateAfter = d
		}
	}
	if before := values.Get("before"); before != "" {
		if d, ok := ParseDate(before); ok {
			q.DateBefore = d
		}
	}

	q.LatMin = parseFloatParam(values.Get("latMin"))
	q.LatMax = parseFloatParam(values.Get("latMax"))
	q.LonMin = parseFloatParam(values.Get("lonMin"))
	q.LonMax = parseFloatParam(values.Get("lonMax"))

	q.LocationName = values.Get("locationName")

	if fields := values.Get("fields"); fields != "" {
		for _, f := range strings.Split(fields, ",") {
			f = strings.TrimSpace(f)
			if queryableFields[f] {
				q.Fields = append(q.Fields, f)
			}
		}
	}

	if sort := values.Get("sort"); sort != "" {
		for _, s := range strings.Split(sort, ",") {
			s = strings.TrimSpace(s)
			desc := strings.HasPrefix(s, "-")
			field := strings.TrimPrefix(s, "-")
			if queryableFields[field] {
				q.Sort = append(q.Sort, SortKey{Field: field, Desc: desc})
			}
		}
	}

	if limit, err := strconv.Atoi(values.Get("limit")); err == nil && limit > 0 {
		q.Limit = limit
	}
	if q.Limit > MaxListLimit {
		q.Limit = MaxListLimit
	}
	if page, err := strconv.Atoi(values.Get("page")); err == nil && page > 0 {
		q.Page = page
	}

	return q
}

// Offset スキップする件数を返す
func (q *ListQuery) Offset() int {
	return (q.Page - 1) * q.Limit
}

// HasProjection 出力フィールドが絞り込まれているか
func (q *ListQuery) HasProjection() bool {
	return len(q.Fields) > 0
}

// projectableFields 許可リスト未指定時に出力される全フィールド
var projectableFields = []string{
	"locationName", "latitude", "longitude", "date", "url",
	"type", "service_version", "createdAt",
}

// Project 許可リストに含まれるフィールドのみを持つ出力を作成する。
// idは常に含まれ、許可リストが空の場合は全フィールドが出力される。
func (q *ListQuery) Project(g *GeoData) map[string]interface{} {
	fields := q.Fields
	if len(fields) == 0 {
		fields = projectableFields
	}

	out := map[string]interface{}{"id": g.ID}
	for _, f := range fields {
		switch f {
		case "locationName":
			out["locationName"] = g.LocationName
		case "latitude":
			out["latitude"] = g.Latitude
		case "longitude":
			out["longitude"] = g.Longitude
		case "date":
			out["date"] = g.Date
		case "url":
			out["url"] = g.URL
		case "type":
			out["type"] = g.Type
		case "service_version":
			out["service_version"] = g.ServiceVersion
		case "createdAt":
			out["createdAt"] = g.CreatedAt
		}
	}
	return out
}

// ParseDate 日付文字列をYYYY-MM-DDに正規化する
func ParseDate(s string) (string, bool) {
	if t, err := time.Parse("2006-01-02", s); err == nil {
		return t.Format("2006-01-02"), true
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t.Format("2006-01-02"), true
	}
	return "", false
}

func parseFloatParam(s string) *float64 {
	if s == "" {
		return nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil
	}
	return &f
}

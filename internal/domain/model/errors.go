package model

import "errors"

var (
	// ErrGeoDataNotFound 指定されたIDのエントリが存在しない
	ErrGeoDataNotFound = errors.New("entry not found")

	// ErrImageryUpstream 画像プロバイダがリクエストを拒否した（接続自体は成功）
	ErrImageryUpstream = errors.New("imagery provider rejected the request")
)

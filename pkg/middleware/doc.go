// Package middleware はGinベースのHTTP APIで使用する共通ミドルウェアを提供する。
//
// 分析者向けJWTの検証、構造化リクエストログ、Prometheusメトリクス、
// パニックリカバリ、CORS設定を含む。
package middleware

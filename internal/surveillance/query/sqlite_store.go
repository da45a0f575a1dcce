package query

import (
	"context"
	"database/sql"
	"fmt"

	"go.uber.org/zap"
	_ "modernc.org/sqlite"

	surveillancedb "github.com/nao1215/epidemiology/internal/surveillance/query/db"
)

// SQLiteStore はSQLiteのcase_recordsテーブルを読み取るStore実装。
type SQLiteStore struct {
	// db はSQLiteのデータベース接続。
	db *sql.DB
	// queries は型付きクエリの実行オブジェクト。
	queries *surveillancedb.Queries
}

// OpenSQLite はdsnのSQLiteデータベースに接続したStoreを返す。
//
// case_recordsは外部ETLが所有するため、既定では書き込みを一切行わない。
// applySchemaがtrueの場合のみマイグレーションを適用する（開発環境やテスト用）。
// 読み取り専用のDSN（例: "file:etl.db?mode=ro"）ではapplySchemaをfalseにすること。
// 呼び出し側は使用後にCloseを呼ぶこと。
func OpenSQLite(ctx context.Context, dsn string, applySchema bool, logger *zap.Logger) (*SQLiteStore, error) {
	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("SQLiteデータベース接続に失敗: %w", err)
	}
	if err := sqlDB.PingContext(ctx); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("SQLiteデータベースへの疎通確認に失敗: %w", err)
	}

	if !applySchema {
		return newSQLiteStore(sqlDB), nil
	}
	store, err := NewSQLiteStore(ctx, sqlDB, logger)
	if err != nil {
		_ = sqlDB.Close()
		return nil, err
	}
	return store, nil
}

// NewSQLiteStore は既存のデータベース接続にスキーマを適用してStoreを返す。
// 接続の所有権はStoreに移り、Closeで閉じられる。
func NewSQLiteStore(ctx context.Context, sqlDB *sql.DB, logger *zap.Logger) (*SQLiteStore, error) {
	if err := initSchema(ctx, sqlDB, logger); err != nil {
		return nil, fmt.Errorf("スキーマ初期化に失敗: %w", err)
	}
	return newSQLiteStore(sqlDB), nil
}

func newSQLiteStore(sqlDB *sql.DB) *SQLiteStore {
	return &SQLiteStore{
		db:      sqlDB,
		queries: surveillancedb.New(sqlDB),
	}
}

// Close はデータベース接続を閉じる。
func (s *SQLiteStore) Close(_ context.Context) error {
	return s.db.Close()
}

// DiseaseExists は疾病のレコードが存在するかを返す。
func (s *SQLiteStore) DiseaseExists(ctx context.Context, disease string) (bool, error) {
	return s.queries.DiseaseExists(ctx, disease)
}

// CountyExists は郡のレコードが存在するかを返す。
func (s *SQLiteStore) CountyExists(ctx context.Context, county string) (bool, error) {
	return s.queries.CountyExists(ctx, county)
}

// LatestYear は疾病のレコードの最新年を返す。
func (s *SQLiteStore) LatestYear(ctx context.Context, disease string) (int, error) {
	year, err := s.queries.LatestYear(ctx, disease)
	if err != nil {
		return 0, err
	}
	if !year.Valid {
		return 0, fmt.Errorf("%s: %w", disease, ErrDiseaseNotFound)
	}
	return int(year.Int64), nil
}

// CountyTotals は郡ごとの症例数合計を返す。
func (s *SQLiteStore) CountyTotals(ctx context.Context, disease string, limit int) ([]CountyTotal, error) {
	rows, err := s.queries.ListCountyTotals(ctx, surveillancedb.ListCountyTotalsParams{
		Disease: disease,
		Limit:   int64(limit),
	})
	if err != nil {
		return nil, err
	}

	totals := make([]CountyTotal, 0, len(rows))
	for _, r := range rows {
		totals = append(totals, CountyTotal{County: r.County, TotalCases: r.TotalCases})
	}
	return totals, nil
}

// StatewideYearTotals は州全体の年ごとの症例数合計を返す。
func (s *SQLiteStore) StatewideYearTotals(ctx context.Context, disease string, minYear int) ([]YearTotal, error) {
	rows, err := s.queries.ListStatewideYearTotals(ctx, surveillancedb.ListStatewideYearTotalsParams{
		Disease: disease,
		MinYear: int64(minYear),
	})
	if err != nil {
		return nil, err
	}

	totals := make([]YearTotal, 0, len(rows))
	for _, r := range rows {
		totals = append(totals, YearTotal{Year: int(r.Year), TotalCases: r.TotalCases})
	}
	return totals, nil
}

// DiseaseTotals は郡の疾病ごとの症例数合計を返す。
func (s *SQLiteStore) DiseaseTotals(ctx context.Context, county string, limit int) ([]DiseaseTotal, error) {
	rows, err := s.queries.ListDiseaseTotalsByCounty(ctx, surveillancedb.ListDiseaseTotalsByCountyParams{
		County: county,
		Limit:  int64(limit),
	})
	if err != nil {
		return nil, err
	}

	totals := make([]DiseaseTotal, 0, len(rows))
	for _, r := range rows {
		totals = append(totals, DiseaseTotal{Disease: r.Disease, TotalCases: r.TotalCases})
	}
	return totals, nil
}

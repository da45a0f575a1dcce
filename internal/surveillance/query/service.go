package query

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"slices"

	"go.uber.org/zap"
)

// Service は症例数データに対する集計クエリを提供する。
// 内部に可変状態を持たないため、複数のゴルーチンから同時に呼び出してよい。
type Service struct {
	// store は症例数レコードの読み取り先。
	store Store
	// logger は診断メッセージの出力先。
	logger *zap.Logger
}

// NewService は新しいクエリサービスを生成する。loggerがnilの場合はログを出力しない。
func NewService(store Store, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		store:  store,
		logger: logger.Named("query"),
	}
}

// DiseaseExists は疾病のレコードが1件以上存在する場合にtrueを返す。
// 存在しない場合は診断メッセージをログに出力する。
// 空の疾病名に一致するレコードは無いため、ストアに問い合わせずfalseを返す。
func (s *Service) DiseaseExists(ctx context.Context, disease string) (bool, error) {
	exists := false
	if disease != "" {
		var err error
		exists, err = s.store.DiseaseExists(ctx, disease)
		if err != nil {
			return false, fmt.Errorf("疾病の存在確認に失敗: %w", err)
		}
	}
	if !exists {
		s.logger.Info("疾病が見つかりません", zap.String("disease", disease))
	}
	return exists, nil
}

// AffectedCounties は疾病の症例数合計が多い郡をlimit件返す。
// 州全体の集計行は含まない。合計が同じ郡は郡名の昇順で並ぶ。
// 疾病が存在しない場合はErrDiseaseNotFoundを返す。
func (s *Service) AffectedCounties(ctx context.Context, disease string, limit int) (totals []CountyTotal, err error) {
	defer func() { observeQuery("affected_counties", err) }()

	if limit <= 0 {
		return nil, fmt.Errorf("件数は1以上を指定してください (limit=%d): %w", limit, ErrInvalidArgument)
	}
	if err := s.requireDisease(ctx, disease); err != nil {
		return nil, err
	}

	totals, err = s.store.CountyTotals(ctx, disease, limit)
	if err != nil {
		return nil, fmt.Errorf("郡ごとの症例数集計に失敗: %w", err)
	}
	return totals, nil
}

// DiseaseTrend は疾病の州全体の年次症例数を、新しい年から順に返す。
//
// 対象期間はデータ上の最新年を基準に [最新年-years, 最新年] とする。
// 実行時点の暦年は基準にしない。
// 疾病が存在しない場合はErrDiseaseNotFoundを返す。
func (s *Service) DiseaseTrend(ctx context.Context, disease string, years int) (trend []YearTotal, err error) {
	defer func() { observeQuery("disease_trend", err) }()

	if years < 0 {
		return nil, fmt.Errorf("年数は0以上を指定してください (years=%d): %w", years, ErrInvalidArgument)
	}
	if err := s.requireDisease(ctx, disease); err != nil {
		return nil, err
	}

	latest, err := s.store.LatestYear(ctx, disease)
	if err != nil {
		return nil, fmt.Errorf("最新年の取得に失敗: %w", err)
	}
	minYear := latest - years

	trend, err = s.store.StatewideYearTotals(ctx, disease, minYear)
	if err != nil {
		return nil, fmt.Errorf("年次推移の集計に失敗: %w", err)
	}
	return trend, nil
}

// CountyDiseases は郡で症例数合計が多い疾病をlimit件返す。
// 合計が同じ疾病は疾病名の昇順で並ぶ。
// 郡のレコードが存在しない場合はErrCountyNotFoundを返す。
func (s *Service) CountyDiseases(ctx context.Context, county string, limit int) (totals []DiseaseTotal, err error) {
	defer func() { observeQuery("county_diseases", err) }()

	if county == "" {
		return nil, fmt.Errorf("郡名が空です: %w", ErrInvalidArgument)
	}
	if limit <= 0 {
		return nil, fmt.Errorf("件数は1以上を指定してください (limit=%d): %w", limit, ErrInvalidArgument)
	}

	exists, err := s.store.CountyExists(ctx, county)
	if err != nil {
		return nil, fmt.Errorf("郡の存在確認に失敗: %w", err)
	}
	if !exists {
		s.logger.Info("郡が見つかりません", zap.String("county", county))
		return nil, fmt.Errorf("%s: %w", county, ErrCountyNotFound)
	}

	totals, err = s.store.DiseaseTotals(ctx, county, limit)
	if err != nil {
		return nil, fmt.Errorf("疾病ごとの症例数集計に失敗: %w", err)
	}
	return totals, nil
}

// requireDisease は疾病が存在しない場合にErrDiseaseNotFoundを返す。
func (s *Service) requireDisease(ctx context.Context, disease string) error {
	exists, err := s.DiseaseExists(ctx, disease)
	if err != nil {
		return err
	}
	if !exists {
		return fmt.Errorf("%s: %w", disease, ErrDiseaseNotFound)
	}
	return nil
}

// TrendSeries は年次推移を古い年から順に並べ替えたコピーを返す。
// HTTPクライアント側の同等の処理はhttpclient.Ascending。
// グラフ描画側は横軸を昇順で受け取るため、DiseaseTrendの結果をそのまま渡さずにこれを使う。
func TrendSeries(trend []YearTotal) []YearTotal {
	series := slices.Clone(trend)
	slices.SortFunc(series, func(a, b YearTotal) int {
		return cmp.Compare(a.Year, b.Year)
	})
	return series
}

// outcomeOf はクエリ結果をメトリクスのラベル値に分類する。
func outcomeOf(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, ErrNotFound):
		return "not_found"
	case errors.Is(err, ErrInvalidArgument):
		return "invalid_argument"
	default:
		return "error"
	}
}

package query

import (
	"context"
	"errors"
)

const (
	// StatewideCounty は州全体の集計行を表す郡名のセンチネル値。実在の郡ではない。
	StatewideCounty = "California"
	// SexTotal は性別を合算した集計行を表す性別区分。
	SexTotal = "Total"
)

const (
	// DefaultCountyLimit はAffectedCountiesで返す郡の既定件数。
	DefaultCountyLimit = 10
	// DefaultTrendYears はDiseaseTrendで遡る既定年数。
	DefaultTrendYears = 5
	// DefaultDiseaseLimit はCountyDiseasesで返す疾病の既定件数。
	DefaultDiseaseLimit = 3
)

var (
	// ErrNotFound は問い合わせ対象（疾病または郡）のレコードが存在しないことを表す。
	ErrNotFound = errors.New("対象のレコードが見つかりません")
	// ErrDiseaseNotFound は指定された疾病のレコードが存在しないことを表す。
	// errors.Is(err, ErrNotFound) でも判定できる。
	ErrDiseaseNotFound = notFoundError("疾病が見つかりません")
	// ErrCountyNotFound は指定された郡のレコードが存在しないことを表す。
	// errors.Is(err, ErrNotFound) でも判定できる。
	ErrCountyNotFound = notFoundError("郡が見つかりません")
	// ErrInvalidArgument はクエリの引数が不正であることを表す。
	ErrInvalidArgument = errors.New("引数が不正です")
)

// notFoundError はErrNotFoundをラップする種別付きのエラーを生成する。
func notFoundError(msg string) error {
	return &kindError{msg: msg, kind: ErrNotFound}
}

// kindError は上位の種別エラーを持つセンチネルエラー。
type kindError struct {
	msg  string
	kind error
}

func (e *kindError) Error() string { return e.msg }

func (e *kindError) Unwrap() error { return e.kind }

// CaseRecord は1件の症例数レコード。外部ETLが所有し、このサービスからは読み取りのみ行う。
type CaseRecord struct {
	// Disease は疾病名（例: "Salmonellosis"）。大文字小文字を区別する。
	Disease string
	// County は郡名。StatewideCountyの場合は州全体の集計行。
	County string
	// Sex は性別区分。SexTotalの場合は性別合算の集計行。
	Sex string
	// Year は集計年。
	Year int
	// Cases は症例数（0以上）。
	Cases int64
}

// CountyTotal は郡ごとの症例数合計。
type CountyTotal struct {
	County     string `json:"county"`
	TotalCases int64  `json:"total_cases"`
}

// YearTotal は年ごとの症例数合計。
type YearTotal struct {
	Year       int   `json:"year"`
	TotalCases int64 `json:"total_cases"`
}

// DiseaseTotal は疾病ごとの症例数合計。
type DiseaseTotal struct {
	Disease    string `json:"disease"`
	TotalCases int64  `json:"total_cases"`
}

// Store は症例数レコードに対するフィルタ・グループ集計・ソート・件数制限の読み取りを提供する。
//
// 集計結果の並び順はストア側の責務とする。
// 合計値が同じ場合はグループキーの昇順で並べ、結果を決定的にすること。
type Store interface {
	// DiseaseExists は疾病のレコードが1件以上存在するかを返す。
	DiseaseExists(ctx context.Context, disease string) (bool, error)
	// CountyExists は郡のレコードが（疾病・性別を問わず）1件以上存在するかを返す。
	CountyExists(ctx context.Context, county string) (bool, error)
	// LatestYear は疾病のレコードの最新年を返す。レコードが無い場合はErrDiseaseNotFoundを返す。
	LatestYear(ctx context.Context, disease string) (int, error)
	// CountyTotals は州全体行を除いた郡ごとのTotal行の合計を、多い順にlimit件返す。
	CountyTotals(ctx context.Context, disease string, limit int) ([]CountyTotal, error)
	// StatewideYearTotals はminYear以降の州全体Total行の年ごとの合計を、新しい年から順に返す。
	StatewideYearTotals(ctx context.Context, disease string, minYear int) ([]YearTotal, error)
	// DiseaseTotals は郡のTotal行の疾病ごとの合計を、多い順にlimit件返す。
	DiseaseTotals(ctx context.Context, county string, limit int) ([]DiseaseTotal, error)
}

package httpclient

import (
	"cmp"
	"context"
	"fmt"
	"net/url"
	"slices"
)

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

// DiseaseExists は疾病のレコードが存在するかを返す。
func (c *Client) DiseaseExists(ctx context.Context, disease string) (bool, error) {
	var resp struct {
		Exists bool `json:"exists"`
	}
	path := "/api/v1/diseases/" + url.PathEscape(disease)
	if err := c.GetJSON(ctx, path, &resp); err != nil {
		return false, err
	}
	return resp.Exists, nil
}

// AffectedCounties は疾病の症例数が多い郡をlimit件返す。
// 疾病が存在しない場合はErrNotFoundとなるエラーを返す。
func (c *Client) AffectedCounties(ctx context.Context, disease string, limit int) ([]CountyTotal, error) {
	var resp struct {
		Counties []CountyTotal `json:"counties"`
	}
	path := fmt.Sprintf("/api/v1/diseases/%s/counties?limit=%d", url.PathEscape(disease), limit)
	if err := c.GetJSON(ctx, path, &resp); err != nil {
		return nil, err
	}
	return resp.Counties, nil
}

// DiseaseTrend は疾病の州全体の年次推移を新しい年から順に返す。
// 疾病が存在しない場合はErrNotFoundとなるエラーを返す。
func (c *Client) DiseaseTrend(ctx context.Context, disease string, years int) ([]YearTotal, error) {
	var resp struct {
		Trend []YearTotal `json:"trend"`
	}
	path := fmt.Sprintf("/api/v1/diseases/%s/trend?years=%d", url.PathEscape(disease), years)
	if err := c.GetJSON(ctx, path, &resp); err != nil {
		return nil, err
	}
	return resp.Trend, nil
}

// CountyDiseases は郡で症例数が多い疾病をlimit件返す。
// 郡が存在しない場合はErrNotFoundとなるエラーを返す。
func (c *Client) CountyDiseases(ctx context.Context, county string, limit int) ([]DiseaseTotal, error) {
	var resp struct {
		Diseases []DiseaseTotal `json:"diseases"`
	}
	path := fmt.Sprintf("/api/v1/counties/%s/diseases?limit=%d", url.PathEscape(county), limit)
	if err := c.GetJSON(ctx, path, &resp); err != nil {
		return nil, err
	}
	return resp.Diseases, nil
}

// Ascending は年次推移を古い年から順に並べ替えたコピーを返す。グラフ描画に渡す前に使う。
// サーバー側のquery.TrendSeriesと同じ並びになり、trendエンドポイントのorder=ascとも一致する。
func Ascending(trend []YearTotal) []YearTotal {
	series := slices.Clone(trend)
	slices.SortFunc(series, func(a, b YearTotal) int {
		return cmp.Compare(a.Year, b.Year)
	})
	return series
}

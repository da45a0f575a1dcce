package db

// CountyTotalRow は郡ごとの集計行。
type CountyTotalRow struct {
	County     string
	TotalCases int64
}

// YearTotalRow は年ごとの集計行。
type YearTotalRow struct {
	Year       int64
	TotalCases int64
}

// DiseaseTotalRow は疾病ごとの集計行。
type DiseaseTotalRow struct {
	Disease    string
	TotalCases int64
}

package db

import (
	"context"
	"database/sql"
)

const diseaseExists = `
SELECT EXISTS (SELECT 1 FROM case_records WHERE disease = ?)
`

// DiseaseExists は疾病のレコードが存在するかを返す。
func (q *Queries) DiseaseExists(ctx context.Context, disease string) (bool, error) {
	row := q.db.QueryRowContext(ctx, diseaseExists, disease)
	var exists bool
	err := row.Scan(&exists)
	return exists, err
}

const countyExists = `
SELECT EXISTS (SELECT 1 FROM case_records WHERE county = ?)
`

// CountyExists は郡のレコードが存在するかを返す。
func (q *Queries) CountyExists(ctx context.Context, county string) (bool, error) {
	row := q.db.QueryRowContext(ctx, countyExists, county)
	var exists bool
	err := row.Scan(&exists)
	return exists, err
}

const latestYear = `
SELECT MAX(year) FROM case_records WHERE disease = ?
`

// LatestYear は疾病のレコードの最新年を返す。レコードが無い場合はValid=falseとなる。
func (q *Queries) LatestYear(ctx context.Context, disease string) (sql.NullInt64, error) {
	row := q.db.QueryRowContext(ctx, latestYear, disease)
	var year sql.NullInt64
	err := row.Scan(&year)
	return year, err
}

const listCountyTotals = `
SELECT county, SUM(cases) AS total_cases
FROM case_records
WHERE disease = ?
  AND sex = 'Total'
  AND county <> 'California'
GROUP BY county
ORDER BY total_cases DESC, county ASC
LIMIT ?
`

// ListCountyTotalsParams はListCountyTotalsの引数。
type ListCountyTotalsParams struct {
	Disease string
	Limit   int64
}

// ListCountyTotals は州全体行を除いた郡ごとの症例数合計を返す。
func (q *Queries) ListCountyTotals(ctx context.Context, arg ListCountyTotalsParams) ([]CountyTotalRow, error) {
	rows, err := q.db.QueryContext(ctx, listCountyTotals, arg.Disease, arg.Limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []CountyTotalRow
	for rows.Next() {
		var i CountyTotalRow
		if err := rows.Scan(&i.County, &i.TotalCases); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const listStatewideYearTotals = `
SELECT year, SUM(cases) AS total_cases
FROM case_records
WHERE disease = ?
  AND sex = 'Total'
  AND county = 'California'
  AND year >= ?
GROUP BY year
ORDER BY year DESC
`

// ListStatewideYearTotalsParams はListStatewideYearTotalsの引数。
type ListStatewideYearTotalsParams struct {
	Disease string
	MinYear int64
}

// ListStatewideYearTotals は州全体行の年ごとの症例数合計を新しい年から順に返す。
func (q *Queries) ListStatewideYearTotals(ctx context.Context, arg ListStatewideYearTotalsParams) ([]YearTotalRow, error) {
	rows, err := q.db.QueryContext(ctx, listStatewideYearTotals, arg.Disease, arg.MinYear)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []YearTotalRow
	for rows.Next() {
		var i YearTotalRow
		if err := rows.Scan(&i.Year, &i.TotalCases); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const listDiseaseTotalsByCounty = `
SELECT disease, SUM(cases) AS total_cases
FROM case_records
WHERE county = ?
  AND sex = 'Total'
GROUP BY disease
ORDER BY total_cases DESC, disease ASC
LIMIT ?
`

// ListDiseaseTotalsByCountyParams はListDiseaseTotalsByCountyの引数。
type ListDiseaseTotalsByCountyParams struct {
	County string
	Limit  int64
}

// ListDiseaseTotalsByCounty は郡の疾病ごとの症例数合計を返す。
func (q *Queries) ListDiseaseTotalsByCounty(ctx context.Context, arg ListDiseaseTotalsByCountyParams) ([]DiseaseTotalRow, error) {
	rows, err := q.db.QueryContext(ctx, listDiseaseTotalsByCounty, arg.County, arg.Limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []DiseaseTotalRow
	for rows.Next() {
		var i DiseaseTotalRow
		if err := rows.Scan(&i.Disease, &i.TotalCases); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

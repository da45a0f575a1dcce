package mongostore

import (
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/nao1215/epidemiology/internal/surveillance/query"
)

// ドキュメントのフィールドパス。
const (
	fieldDisease = "disease"
	fieldCounty  = "location.county"
	fieldSex     = "demographics.sex"
	fieldYear    = "demographics.year"
	fieldCases   = "stats.cases"
)

func diseaseFilter(disease string) bson.D {
	return bson.D{{Key: fieldDisease, Value: disease}}
}

func countyFilter(county string) bson.D {
	return bson.D{{Key: fieldCounty, Value: county}}
}

// sumCasesBy はgroupKeyごとに症例数を合計する$groupステージを返す。
func sumCasesBy(groupKey string) bson.D {
	return bson.D{{Key: "$group", Value: bson.D{
		{Key: "_id", Value: "$" + groupKey},
		{Key: "total_cases", Value: bson.D{{Key: "$sum", Value: "$" + fieldCases}}},
	}}}
}

// byTotalDesc は合計の降順、同数の場合はグループキーの昇順に並べる$sortステージ。
var byTotalDesc = bson.D{{Key: "$sort", Value: bson.D{
	{Key: "total_cases", Value: -1},
	{Key: "_id", Value: 1},
}}}

func limitStage(limit int) bson.D {
	return bson.D{{Key: "$limit", Value: int64(limit)}}
}

// affectedCountiesPipeline は州全体行を除いた郡ごとの症例数ランキングを求める。
func affectedCountiesPipeline(disease string, limit int) mongo.Pipeline {
	return mongo.Pipeline{
		{{Key: "$match", Value: bson.D{
			{Key: fieldDisease, Value: disease},
			{Key: fieldSex, Value: query.SexTotal},
			{Key: fieldCounty, Value: bson.D{{Key: "$ne", Value: query.StatewideCounty}}},
		}}},
		sumCasesBy(fieldCounty),
		byTotalDesc,
		limitStage(limit),
	}
}

// diseaseTrendPipeline はminYear以降の州全体行を年ごとに合計し、新しい年から並べる。
func diseaseTrendPipeline(disease string, minYear int) mongo.Pipeline {
	return mongo.Pipeline{
		{{Key: "$match", Value: bson.D{
			{Key: fieldDisease, Value: disease},
			{Key: fieldSex, Value: query.SexTotal},
			{Key: fieldCounty, Value: query.StatewideCounty},
			{Key: fieldYear, Value: bson.D{{Key: "$gte", Value: minYear}}},
		}}},
		sumCasesBy(fieldYear),
		{{Key: "$sort", Value: bson.D{{Key: "_id", Value: -1}}}},
	}
}

// countyDiseasesPipeline は郡の疾病ごとの症例数ランキングを求める。
func countyDiseasesPipeline(county string, limit int) mongo.Pipeline {
	return mongo.Pipeline{
		{{Key: "$match", Value: bson.D{
			{Key: fieldCounty, Value: county},
			{Key: fieldSex, Value: query.SexTotal},
		}}},
		sumCasesBy(fieldDisease),
		byTotalDesc,
		limitStage(limit),
	}
}

// Package mongostore は症例数データを保持するMongoDBコレクションに対するquery.Store実装を提供する。
//
// ドキュメントは次の形を持つ。
//
//	{
//	  "disease": "Salmonellosis",
//	  "location": {"county": "Sacramento"},
//	  "demographics": {"sex": "Total", "year": 2022},
//	  "stats": {"cases": 120}
//	}
//
// 集計はすべてアグリゲーションパイプライン（$match, $group, $sort, $limit）で行う。
package mongostore

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"

	"github.com/nao1215/epidemiology/internal/surveillance/query"
)

const (
	// DefaultDatabase は症例数コレクションを持つ既定のデータベース名。
	DefaultDatabase = "epidemiology"
	// DefaultCollection は症例数の既定のコレクション名。
	DefaultCollection = "infectious_diseases"
)

// Store はMongoDBの症例数コレクションを読み取るquery.Store実装。
type Store struct {
	// client はMongoDBクライアント。Storeが所有し、Closeで切断する。
	client *mongo.Client
	// collection は症例数コレクション。
	collection *mongo.Collection
	// logger は接続状態のログ出力先。
	logger *zap.Logger
}

var _ query.Store = (*Store)(nil)

// Open はuriのMongoDBに接続し、database.collectionを読み取るStoreを返す。
// 呼び出し側は使用後にCloseを呼ぶこと。
func Open(ctx context.Context, uri, database, collection string, logger *zap.Logger) (*Store, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("MongoDB接続に失敗: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("MongoDBへの疎通確認に失敗: %w", err)
	}

	logger.Info("MongoDBに接続しました",
		zap.String("database", database),
		zap.String("collection", collection),
	)

	return &Store{
		client:     client,
		collection: client.Database(database).Collection(collection),
		logger:     logger,
	}, nil
}

// Close はMongoDBとの接続を切断する。
func (s *Store) Close(ctx context.Context) error {
	if err := s.client.Disconnect(ctx); err != nil {
		return fmt.Errorf("MongoDB切断に失敗: %w", err)
	}
	s.logger.Info("MongoDBとの接続を切断しました")
	return nil
}

// DiseaseExists は疾病のドキュメントが存在するかを返す。
func (s *Store) DiseaseExists(ctx context.Context, disease string) (bool, error) {
	return s.exists(ctx, diseaseFilter(disease))
}

// CountyExists は郡のドキュメントが存在するかを返す。
func (s *Store) CountyExists(ctx context.Context, county string) (bool, error) {
	return s.exists(ctx, countyFilter(county))
}

func (s *Store) exists(ctx context.Context, filter bson.D) (bool, error) {
	opts := options.FindOne().SetProjection(bson.D{{Key: "_id", Value: 1}})
	err := s.collection.FindOne(ctx, filter, opts).Err()
	if errors.Is(err, mongo.ErrNoDocuments) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// LatestYear は疾病のドキュメントの最新年を返す。
func (s *Store) LatestYear(ctx context.Context, disease string) (int, error) {
	opts := options.FindOne().
		SetSort(bson.D{{Key: "demographics.year", Value: -1}}).
		SetProjection(bson.D{{Key: "demographics.year", Value: 1}})

	var doc struct {
		Demographics struct {
			Year int `bson:"year"`
		} `bson:"demographics"`
	}
	err := s.collection.FindOne(ctx, diseaseFilter(disease), opts).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return 0, fmt.Errorf("%s: %w", disease, query.ErrDiseaseNotFound)
	}
	if err != nil {
		return 0, err
	}
	return doc.Demographics.Year, nil
}

// CountyTotals は郡ごとの症例数合計を返す。
func (s *Store) CountyTotals(ctx context.Context, disease string, limit int) ([]query.CountyTotal, error) {
	var groups []struct {
		County     string `bson:"_id"`
		TotalCases int64  `bson:"total_cases"`
	}
	if err := s.aggregate(ctx, affectedCountiesPipeline(disease, limit), &groups); err != nil {
		return nil, err
	}

	totals := make([]query.CountyTotal, 0, len(groups))
	for _, g := range groups {
		totals = append(totals, query.CountyTotal{County: g.County, TotalCases: g.TotalCases})
	}
	return totals, nil
}

// StatewideYearTotals は州全体の年ごとの症例数合計を返す。
func (s *Store) StatewideYearTotals(ctx context.Context, disease string, minYear int) ([]query.YearTotal, error) {
	var groups []struct {
		Year       int   `bson:"_id"`
		TotalCases int64 `bson:"total_cases"`
	}
	if err := s.aggregate(ctx, diseaseTrendPipeline(disease, minYear), &groups); err != nil {
		return nil, err
	}

	totals := make([]query.YearTotal, 0, len(groups))
	for _, g := range groups {
		totals = append(totals, query.YearTotal{Year: g.Year, TotalCases: g.TotalCases})
	}
	return totals, nil
}

// DiseaseTotals は郡の疾病ごとの症例数合計を返す。
func (s *Store) DiseaseTotals(ctx context.Context, county string, limit int) ([]query.DiseaseTotal, error) {
	var groups []struct {
		Disease    string `bson:"_id"`
		TotalCases int64  `bson:"total_cases"`
	}
	if err := s.aggregate(ctx, countyDiseasesPipeline(county, limit), &groups); err != nil {
		return nil, err
	}

	totals := make([]query.DiseaseTotal, 0, len(groups))
	for _, g := range groups {
		totals = append(totals, query.DiseaseTotal{Disease: g.Disease, TotalCases: g.TotalCases})
	}
	return totals, nil
}

// aggregate はパイプラインを実行し、全結果をresultsにデコードする。
func (s *Store) aggregate(ctx context.Context, pipeline mongo.Pipeline, results any) error {
	cursor, err := s.collection.Aggregate(ctx, pipeline)
	if err != nil {
		return fmt.Errorf("アグリゲーションの実行に失敗: %w", err)
	}
	if err := cursor.All(ctx, results); err != nil {
		return fmt.Errorf("アグリゲーション結果のデコードに失敗: %w", err)
	}
	return nil
}

package mongostore

import (
	"context"
	"errors"
	"os"
	"reflect"
	"testing"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"

	"github.com/nao1215/epidemiology/internal/surveillance/query"
)

// setupTestStore はMONGO_TEST_URIのMongoDBに一時コレクションを作り、Storeを返す。
// MONGO_TEST_URIが未設定の場合はテストをスキップする。
func setupTestStore(t *testing.T) *Store {
	t.Helper()

	uri := os.Getenv("MONGO_TEST_URI")
	if uri == "" {
		t.Skip("MONGO_TEST_URIが未設定のためMongoDB結合テストをスキップします")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	collection := "infectious_diseases_" + uuid.NewString()
	store, err := Open(ctx, uri, "epidemiology_test", collection, nil)
	if err != nil {
		t.Fatalf("MongoDBへの接続に失敗: %v", err)
	}

	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = store.collection.Drop(ctx)
		_ = store.Close(ctx)
	})

	return store
}

// insertTestDocuments は症例数ドキュメントを挿入する。
func insertTestDocuments(t *testing.T, store *Store, records ...query.CaseRecord) {
	t.Helper()

	docs := make([]any, 0, len(records))
	for _, r := range records {
		docs = append(docs, bson.D{
			{Key: "disease", Value: r.Disease},
			{Key: "location", Value: bson.D{{Key: "county", Value: r.County}}},
			{Key: "demographics", Value: bson.D{{Key: "sex", Value: r.Sex}, {Key: "year", Value: r.Year}}},
			{Key: "stats", Value: bson.D{{Key: "cases", Value: r.Cases}}},
		})
	}
	if _, err := store.collection.InsertMany(context.Background(), docs); err != nil {
		t.Fatalf("テスト用ドキュメントの挿入に失敗: %v", err)
	}
}

func TestStore(t *testing.T) {
	store := setupTestStore(t)
	insertTestDocuments(t, store,
		query.CaseRecord{Disease: "Amebiasis", County: "CountyA", Sex: query.SexTotal, Year: 2020, Cases: 50},
		query.CaseRecord{Disease: "Amebiasis", County: "CountyB", Sex: query.SexTotal, Year: 2020, Cases: 30},
		query.CaseRecord{Disease: "Amebiasis", County: query.StatewideCounty, Sex: query.SexTotal, Year: 2020, Cases: 80},
		query.CaseRecord{Disease: "Salmonellosis", County: query.StatewideCounty, Sex: query.SexTotal, Year: 2021, Cases: 40},
		query.CaseRecord{Disease: "Salmonellosis", County: query.StatewideCounty, Sex: query.SexTotal, Year: 2022, Cases: 50},
		query.CaseRecord{Disease: "Salmonellosis", County: "CountyA", Sex: query.SexTotal, Year: 2022, Cases: 5},
	)
	svc := query.NewService(store, nil)
	ctx := context.Background()

	t.Run("疾病の存在を判定できること", func(t *testing.T) {
		exists, err := svc.DiseaseExists(ctx, "Amebiasis")
		if err != nil || !exists {
			t.Errorf("DiseaseExists(Amebiasis) = %v, %v, want true, nil", exists, err)
		}
		exists, err = svc.DiseaseExists(ctx, "Nonexistent")
		if err != nil || exists {
			t.Errorf("DiseaseExists(Nonexistent) = %v, %v, want false, nil", exists, err)
		}
	})

	t.Run("郡ランキングが州全体行を含まないこと", func(t *testing.T) {
		got, err := svc.AffectedCounties(ctx, "Amebiasis", 5)
		if err != nil {
			t.Fatalf("AffectedCounties()でエラーが発生: %v", err)
		}
		want := []query.CountyTotal{{County: "CountyA", TotalCases: 50}, {County: "CountyB", TotalCases: 30}}
		if !reflect.DeepEqual(got, want) {
			t.Errorf("AffectedCounties() = %v, want %v", got, want)
		}
	})

	t.Run("年次推移を新しい年から返すこと", func(t *testing.T) {
		got, err := svc.DiseaseTrend(ctx, "Salmonellosis", 5)
		if err != nil {
			t.Fatalf("DiseaseTrend()でエラーが発生: %v", err)
		}
		want := []query.YearTotal{{Year: 2022, TotalCases: 50}, {Year: 2021, TotalCases: 40}}
		if !reflect.DeepEqual(got, want) {
			t.Errorf("DiseaseTrend() = %v, want %v", got, want)
		}
	})

	t.Run("郡の疾病ランキングを返すこと", func(t *testing.T) {
		got, err := svc.CountyDiseases(ctx, "CountyA", 3)
		if err != nil {
			t.Fatalf("CountyDiseases()でエラーが発生: %v", err)
		}
		want := []query.DiseaseTotal{{Disease: "Amebiasis", TotalCases: 50}, {Disease: "Salmonellosis", TotalCases: 5}}
		if !reflect.DeepEqual(got, want) {
			t.Errorf("CountyDiseases() = %v, want %v", got, want)
		}
	})

	t.Run("存在しない疾病の最新年はErrDiseaseNotFoundになること", func(t *testing.T) {
		if _, err := store.LatestYear(ctx, "Nonexistent"); !errors.Is(err, query.ErrDiseaseNotFound) {
			t.Errorf("LatestYear() エラー = %v, want ErrDiseaseNotFound", err)
		}
	})
}

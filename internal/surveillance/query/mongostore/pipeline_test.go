package mongostore

import (
	"reflect"
	"testing"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// stage はパイプラインのi番目のステージのオペレータ名と値を返す。
func stage(t *testing.T, p mongo.Pipeline, i int) (string, any) {
	t.Helper()
	if i >= len(p) {
		t.Fatalf("ステージ%dが存在しない (len=%d)", i, len(p))
	}
	if len(p[i]) != 1 {
		t.Fatalf("ステージ%dのキー数 = %d, want 1", i, len(p[i]))
	}
	return p[i][0].Key, p[i][0].Value
}

// operators はパイプラインのオペレータ名を順に返す。
func operators(p mongo.Pipeline) []string {
	ops := make([]string, 0, len(p))
	for _, s := range p {
		ops = append(ops, s[0].Key)
	}
	return ops
}

func TestAffectedCountiesPipeline(t *testing.T) {
	t.Parallel()

	p := affectedCountiesPipeline("Amebiasis", 5)

	t.Run("match・group・sort・limitの順でステージが並ぶこと", func(t *testing.T) {
		t.Parallel()

		want := []string{"$match", "$group", "$sort", "$limit"}
		if got := operators(p); !reflect.DeepEqual(got, want) {
			t.Errorf("operators = %v, want %v", got, want)
		}
	})

	t.Run("州全体行を除外しTotal行のみを対象にすること", func(t *testing.T) {
		t.Parallel()

		_, v := stage(t, p, 0)
		want := bson.D{
			{Key: "disease", Value: "Amebiasis"},
			{Key: "demographics.sex", Value: "Total"},
			{Key: "location.county", Value: bson.D{{Key: "$ne", Value: "California"}}},
		}
		if !reflect.DeepEqual(v, want) {
			t.Errorf("$match = %v, want %v", v, want)
		}
	})

	t.Run("郡ごとに症例数を合計すること", func(t *testing.T) {
		t.Parallel()

		_, v := stage(t, p, 1)
		want := bson.D{
			{Key: "_id", Value: "$location.county"},
			{Key: "total_cases", Value: bson.D{{Key: "$sum", Value: "$stats.cases"}}},
		}
		if !reflect.DeepEqual(v, want) {
			t.Errorf("$group = %v, want %v", v, want)
		}
	})

	t.Run("合計の降順と郡名の昇順で並べlimit件に制限すること", func(t *testing.T) {
		t.Parallel()

		_, sortSpec := stage(t, p, 2)
		wantSort := bson.D{{Key: "total_cases", Value: -1}, {Key: "_id", Value: 1}}
		if !reflect.DeepEqual(sortSpec, wantSort) {
			t.Errorf("$sort = %v, want %v", sortSpec, wantSort)
		}

		_, limit := stage(t, p, 3)
		if limit != int64(5) {
			t.Errorf("$limit = %v, want 5", limit)
		}
	})
}

func TestDiseaseTrendPipeline(t *testing.T) {
	t.Parallel()

	p := diseaseTrendPipeline("Salmonellosis", 2019)

	t.Run("件数制限を持たないこと", func(t *testing.T) {
		t.Parallel()

		want := []string{"$match", "$group", "$sort"}
		if got := operators(p); !reflect.DeepEqual(got, want) {
			t.Errorf("operators = %v, want %v", got, want)
		}
	})

	t.Run("州全体のTotal行をminYear以降に絞り込むこと", func(t *testing.T) {
		t.Parallel()

		_, v := stage(t, p, 0)
		want := bson.D{
			{Key: "disease", Value: "Salmonellosis"},
			{Key: "demographics.sex", Value: "Total"},
			{Key: "location.county", Value: "California"},
			{Key: "demographics.year", Value: bson.D{{Key: "$gte", Value: 2019}}},
		}
		if !reflect.DeepEqual(v, want) {
			t.Errorf("$match = %v, want %v", v, want)
		}
	})

	t.Run("年ごとに合計し新しい年から並べること", func(t *testing.T) {
		t.Parallel()

		_, group := stage(t, p, 1)
		if g := group.(bson.D); g[0].Value != "$demographics.year" {
			t.Errorf("$group._id = %v, want $demographics.year", g[0].Value)
		}

		_, sortSpec := stage(t, p, 2)
		want := bson.D{{Key: "_id", Value: -1}}
		if !reflect.DeepEqual(sortSpec, want) {
			t.Errorf("$sort = %v, want %v", sortSpec, want)
		}
	})
}

func TestCountyDiseasesPipeline(t *testing.T) {
	t.Parallel()

	p := countyDiseasesPipeline("Sacramento", 3)

	t.Run("郡のTotal行を疾病ごとに合計すること", func(t *testing.T) {
		t.Parallel()

		_, match := stage(t, p, 0)
		wantMatch := bson.D{
			{Key: "location.county", Value: "Sacramento"},
			{Key: "demographics.sex", Value: "Total"},
		}
		if !reflect.DeepEqual(match, wantMatch) {
			t.Errorf("$match = %v, want %v", match, wantMatch)
		}

		_, group := stage(t, p, 1)
		if g := group.(bson.D); g[0].Value != "$disease" {
			t.Errorf("$group._id = %v, want $disease", g[0].Value)
		}
	})

	t.Run("合計の降順と疾病名の昇順で並べlimit件に制限すること", func(t *testing.T) {
		t.Parallel()

		want := []string{"$match", "$group", "$sort", "$limit"}
		if got := operators(p); !reflect.DeepEqual(got, want) {
			t.Errorf("operators = %v, want %v", got, want)
		}

		_, limit := stage(t, p, 3)
		if limit != int64(3) {
			t.Errorf("$limit = %v, want 3", limit)
		}
	})
}

// Package query はカリフォルニア州の感染症サーベイランスデータに対する読み取り専用クエリサービスを提供する。
//
// 郡・年・人口統計区分ごとの症例数レコードを集計し、次の問い合わせに答える。
//   - 疾病の存在確認
//   - 疾病の影響が大きい郡のランキング
//   - 州全体の年次推移
//   - 郡ごとの疾病ランキング
//
// レコードは外部のETLが投入するため、このパッケージは書き込みを一切行わない。
// ストアはSQLite（既定）またはMongoDB（mongostoreパッケージ）を差し替えて使用できる。
package query

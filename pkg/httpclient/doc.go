// Package httpclient は感染症サーベイランスクエリAPIのGoクライアントを提供する。
//
// 分析者がストアのクエリ言語を知らなくても、疾病の存在確認・郡ランキング・
// 年次推移・郡ごとの疾病ランキングを関数呼び出しで取得できるようにする。
package httpclient

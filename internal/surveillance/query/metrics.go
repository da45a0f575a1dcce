package query

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// queriesTotal はクエリ種別・結果ごとの実行回数。
var queriesTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "surveillance_queries_total",
		Help: "Total number of surveillance aggregation queries",
	},
	[]string{"query", "outcome"},
)

// observeQuery はクエリの実行結果をメトリクスに記録する。
func observeQuery(name string, err error) {
	queriesTotal.WithLabelValues(name, outcomeOf(err)).Inc()
}

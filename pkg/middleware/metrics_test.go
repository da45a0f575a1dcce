package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

// TestMetrics はMetricsミドルウェアを検証する。
// メトリクスはプロセス共通のため、パスごとに他のテストと重ならないラベルを使う。
func TestMetrics(t *testing.T) {
	t.Parallel()

	router := gin.New()
	router.Use(Metrics())
	router.GET("/metrics-test/:id", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"id": c.Param("id")})
	})

	t.Run("pathラベルにルートのパターンを使うこと", func(t *testing.T) {
		for _, id := range []string{"a", "b", "c"} {
			router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/metrics-test/"+id, nil))
		}

		got := testutil.ToFloat64(httpRequestsTotal.WithLabelValues(http.MethodGet, "/metrics-test/:id", "200"))
		if got != 3 {
			t.Errorf("リクエスト数 = %v, want 3", got)
		}
	})

	t.Run("一致するルートが無い場合はunmatchedにまとめること", func(t *testing.T) {
		before := testutil.ToFloat64(httpRequestsTotal.WithLabelValues(http.MethodDelete, unmatchedPath, "404"))

		router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodDelete, "/no/such/route", nil))

		after := testutil.ToFloat64(httpRequestsTotal.WithLabelValues(http.MethodDelete, unmatchedPath, "404"))
		if after-before != 1 {
			t.Errorf("unmatchedの増分 = %v, want 1", after-before)
		}
	})
}

package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
)

// newCORSRouter はCORSミドルウェア付きのルーターを作り、ハンドラの呼び出し有無を記録する。
func newCORSRouter(origins []string, called *bool) *gin.Engine {
	router := gin.New()
	router.Use(CORS(origins))
	handler := func(c *gin.Context) {
		*called = true
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	}
	router.GET("/test", handler)
	router.OPTIONS("/test", handler)
	return router
}

// TestCORS はCORSミドルウェアを検証する。
func TestCORS(t *testing.T) {
	t.Parallel()

	t.Run("許可されたオリジンからのリクエストに読み取り専用のCORSヘッダーが設定されること", func(t *testing.T) {
		t.Parallel()

		var called bool
		router := newCORSRouter([]string{"http://localhost:3000", "https://example.com"}, &called)

		req := httptest.NewRequest(http.MethodGet, "/test", nil)
		req.Header.Set("Origin", "https://example.com")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		if w.Code != http.StatusOK {
			t.Errorf("ステータスコード = %d, want %d", w.Code, http.StatusOK)
		}
		if !called {
			t.Error("GETリクエストでハンドラーが呼ばれるべき")
		}

		wantHeaders := map[string]string{
			"Access-Control-Allow-Origin":   "https://example.com",
			"Access-Control-Allow-Methods":  "GET, OPTIONS",
			"Access-Control-Allow-Headers":  "Authorization, Content-Type, X-Request-ID",
			"Access-Control-Expose-Headers": "X-Request-ID",
			"Access-Control-Max-Age":        "86400",
			"Vary":                          "Origin",
		}
		for k, want := range wantHeaders {
			if got := w.Header().Get(k); got != want {
				t.Errorf("%s = %q, want %q", k, got, want)
			}
		}
	})

	t.Run("許可されていないオリジンやOriginなしのリクエストにCORSヘッダーが設定されないこと", func(t *testing.T) {
		t.Parallel()

		for _, origin := range []string{"https://evil.com", ""} {
			var called bool
			router := newCORSRouter([]string{"http://localhost:3000"}, &called)

			req := httptest.NewRequest(http.MethodGet, "/test", nil)
			if origin != "" {
				req.Header.Set("Origin", origin)
			}
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			if w.Code != http.StatusOK {
				t.Errorf("Origin=%q: ステータスコード = %d, want %d", origin, w.Code, http.StatusOK)
			}
			if got := w.Header().Get("Access-Control-Allow-Origin"); got != "" {
				t.Errorf("Origin=%q: Access-Control-Allow-Origin = %q, want empty string", origin, got)
			}
		}
	})

	t.Run("空文字列のオリジンは許可リストに含めないこと", func(t *testing.T) {
		t.Parallel()

		var called bool
		router := newCORSRouter([]string{""}, &called)

		req := httptest.NewRequest(http.MethodGet, "/test", nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		if got := w.Header().Get("Access-Control-Allow-Origin"); got != "" {
			t.Errorf("Access-Control-Allow-Origin = %q, want empty string", got)
		}
	})

	t.Run("OPTIONSリクエストで204が返りハンドラーが呼ばれないこと", func(t *testing.T) {
		t.Parallel()

		for _, origin := range []string{"http://localhost:3000", "https://evil.com"} {
			var called bool
			router := newCORSRouter([]string{"http://localhost:3000"}, &called)

			req := httptest.NewRequest(http.MethodOptions, "/test", nil)
			req.Header.Set("Origin", origin)
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			if w.Code != http.StatusNoContent {
				t.Errorf("Origin=%q: ステータスコード = %d, want %d", origin, w.Code, http.StatusNoContent)
			}
			if called {
				t.Errorf("Origin=%q: OPTIONSリクエストでハンドラーが呼ばれるべきではない", origin)
			}
		}
	})
}

package query

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/nao1215/epidemiology/pkg/middleware"
)

// maxLimit はHTTP経由で指定できる件数の上限。超えた値は上限に丸める。
// 年数は集計期間を変えてしまうため丸めない。
const maxLimit = 100

// ServerConfig はクエリサーバーの設定。
type ServerConfig struct {
	// Port はサーバーのリッスンポート。
	Port string
	// JWTSecret は分析者トークンの検証に使う署名鍵。
	JWTSecret string
	// AllowedOrigins はCORSで許可するオリジン。
	AllowedOrigins []string
}

// Server は感染症サーベイランスクエリサービスのHTTPサーバー。
type Server struct {
	// router はGinのHTTPルーター。
	router *gin.Engine
	// httpServer はrouterを公開するHTTPサーバー。
	httpServer *http.Server
	// service は集計クエリの実行オブジェクト。
	service *Service
	// logger はハンドラのエラーログ出力先。
	logger *zap.Logger
}

// NewServer は新しいクエリサーバーを生成する。
// ストアの所有権は呼び出し側に残り、Shutdownでは閉じない。
func NewServer(cfg ServerConfig, service *Service, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}

	router := gin.New()
	router.Use(middleware.RequestLogger(logger, "/health", "/metrics"))
	router.Use(middleware.Recovery(logger))
	router.Use(middleware.Metrics())
	router.Use(middleware.CORS(cfg.AllowedOrigins))

	s := &Server{
		router:  router,
		service: service,
		logger:  logger,
		httpServer: &http.Server{
			Addr:              fmt.Sprintf(":%s", cfg.Port),
			Handler:           router,
			ReadHeaderTimeout: 10 * time.Second,
		},
	}
	s.setupRoutes(cfg.JWTSecret)

	return s
}

// Handler はサーバーのHTTPハンドラを返す。
func (s *Server) Handler() http.Handler {
	return s.router
}

// Run はHTTPサーバーを起動する。Shutdownが呼ばれるとhttp.ErrServerClosedを返す。
func (s *Server) Run() error {
	return s.httpServer.ListenAndServe()
}

// Shutdown は処理中のリクエストの完了を待ってサーバーを停止する。
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// setupRoutes はAPIルーティングを設定する。
func (s *Server) setupRoutes(jwtSecret string) {
	api := s.router.Group("/api/v1")
	api.Use(middleware.JWTAuth(jwtSecret))
	{
		diseases := api.Group("/diseases/:disease")
		{
			// 疾病の存在確認
			diseases.GET("", s.handleDiseaseExists())
			// 影響の大きい郡のランキング
			diseases.GET("/counties", s.handleAffectedCounties())
			// 州全体の年次推移
			diseases.GET("/trend", s.handleDiseaseTrend())
		}

		// 郡ごとの疾病ランキング
		api.GET("/counties/:county/diseases", s.handleCountyDiseases())
	}

	// ヘルスチェック
	s.router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "service": "surveillance-query"})
	})
	// Prometheusメトリクス
	s.router.GET("/metrics", gin.WrapH(promhttp.Handler()))
}

// handleDiseaseExists は疾病のレコードが存在するかを返すハンドラ。
// 存在しない場合も200でexists=falseを返す。
func (s *Server) handleDiseaseExists() gin.HandlerFunc {
	return func(c *gin.Context) {
		disease := c.Param("disease")

		exists, err := s.service.DiseaseExists(c.Request.Context(), disease)
		if err != nil {
			s.abortWithError(c, err)
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"disease": disease,
			"exists":  exists,
		})
	}
}

// handleAffectedCounties は疾病の症例数が多い郡を返すハンドラ。
// クエリパラメータ limit で件数を指定する（既定10件）。
func (s *Server) handleAffectedCounties() gin.HandlerFunc {
	return func(c *gin.Context) {
		disease := c.Param("disease")

		limit, err := limitQuery(c, DefaultCountyLimit)
		if err != nil {
			s.abortWithError(c, err)
			return
		}

		counties, err := s.service.AffectedCounties(c.Request.Context(), disease, limit)
		if err != nil {
			s.abortWithError(c, err)
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"disease":  disease,
			"counties": counties,
			"count":    len(counties),
		})
	}
}

// handleDiseaseTrend は疾病の州全体の年次推移を返すハンドラ。
// クエリパラメータ years で遡る年数（既定5年）、order で並び順（desc|asc、既定desc）を指定する。
func (s *Server) handleDiseaseTrend() gin.HandlerFunc {
	return func(c *gin.Context) {
		disease := c.Param("disease")

		years, err := intQuery(c, "years", DefaultTrendYears)
		if err != nil {
			s.abortWithError(c, err)
			return
		}

		order := c.DefaultQuery("order", "desc")
		if order != "desc" && order != "asc" {
			s.abortWithError(c, fmt.Errorf("orderはdescまたはascを指定してください: %w", ErrInvalidArgument))
			return
		}

		trend, err := s.service.DiseaseTrend(c.Request.Context(), disease, years)
		if err != nil {
			s.abortWithError(c, err)
			return
		}
		if order == "asc" {
			trend = TrendSeries(trend)
		}

		c.JSON(http.StatusOK, gin.H{
			"disease": disease,
			"trend":   trend,
			"count":   len(trend),
		})
	}
}

// handleCountyDiseases は郡で症例数の多い疾病を返すハンドラ。
// クエリパラメータ limit で件数を指定する（既定3件）。
func (s *Server) handleCountyDiseases() gin.HandlerFunc {
	return func(c *gin.Context) {
		county := c.Param("county")

		limit, err := limitQuery(c, DefaultDiseaseLimit)
		if err != nil {
			s.abortWithError(c, err)
			return
		}

		diseases, err := s.service.CountyDiseases(c.Request.Context(), county, limit)
		if err != nil {
			s.abortWithError(c, err)
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"county":   county,
			"diseases": diseases,
			"count":    len(diseases),
		})
	}
}

// abortWithError はエラー種別に応じたステータスコードでレスポンスを返す。
func (s *Server) abortWithError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, ErrDiseaseNotFound):
		c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": "疾病が見つかりません"})
	case errors.Is(err, ErrCountyNotFound):
		c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": "郡が見つかりません"})
	case errors.Is(err, ErrInvalidArgument):
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		s.logger.Error("クエリの実行に失敗",
			zap.String("request_id", middleware.GetRequestID(c)),
			zap.String("path", c.Request.URL.Path),
			zap.Error(err),
		)
		_ = c.Error(err)
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "クエリの実行に失敗しました"})
	}
}

// intQuery はクエリパラメータを整数として読み取る。未指定の場合はdefを返す。
func intQuery(c *gin.Context, key string, def int) (int, error) {
	raw := c.Query(key)
	if raw == "" {
		return def, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%sは整数で指定してください (%q): %w", key, raw, ErrInvalidArgument)
	}
	return v, nil
}

// limitQuery はクエリパラメータlimitを読み取り、maxLimitを超える値はmaxLimitに丸める。
func limitQuery(c *gin.Context, def int) (int, error) {
	v, err := intQuery(c, "limit", def)
	if err != nil {
		return 0, err
	}
	return min(v, maxLimit), nil
}

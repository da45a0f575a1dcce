// 感染症サーベイランスクエリサービスのエントリポイント。
// 症例数データ（SQLiteまたはMongoDB）に対する集計クエリをHTTP APIとして公開する。
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/nao1215/epidemiology/internal/config"
	"github.com/nao1215/epidemiology/internal/surveillance/query"
	"github.com/nao1215/epidemiology/internal/surveillance/query/mongostore"
)

// store はクエリサービスが読み取り、main が所有して閉じるストア。
type store interface {
	query.Store
	Close(ctx context.Context) error
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "設定の読み込みに失敗: %v\n", err)
		os.Exit(1)
	}

	logger, err := cfg.NewLogger()
	if err != nil {
		fmt.Fprintf(os.Stderr, "ロガーの初期化に失敗: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync() //nolint:errcheck

	if err := run(cfg, logger); err != nil {
		logger.Error("クエリサービスが異常終了しました", zap.Error(err))
		_ = logger.Sync()
		os.Exit(1)
	}
}

func run(cfg config.Config, logger *zap.Logger) error {
	connectCtx, cancel := context.WithTimeout(context.Background(), cfg.ConnectTimeout)
	st, err := openStore(connectCtx, cfg, logger)
	cancel()
	if err != nil {
		return err
	}
	defer func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		if err := st.Close(closeCtx); err != nil {
			logger.Error("ストアのクローズに失敗", zap.Error(err))
		}
	}()

	server := query.NewServer(query.ServerConfig{
		Port:           cfg.Port,
		JWTSecret:      cfg.JWTSecret,
		AllowedOrigins: cfg.AllowedOrigins,
	}, query.NewService(st, logger), logger)

	errCh := make(chan error, 1)
	go func() {
		logger.Info("クエリサービスを起動します",
			zap.String("port", cfg.Port),
			zap.String("store", cfg.StoreDriver),
		)
		errCh <- server.Run()
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("HTTPサーバーの起動に失敗: %w", err)
		}
		return nil
	case sig := <-quit:
		logger.Info("シャットダウンします", zap.String("signal", sig.String()))
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("HTTPサーバーの停止に失敗: %w", err)
	}
	return nil
}

// openStore は設定されたドライバのストアを開く。
func openStore(ctx context.Context, cfg config.Config, logger *zap.Logger) (store, error) {
	switch cfg.StoreDriver {
	case config.StoreDriverMongo:
		st, err := mongostore.Open(ctx, cfg.MongoURI, cfg.MongoDatabase, cfg.MongoCollection, logger)
		if err != nil {
			return nil, err
		}
		return st, nil
	default:
		st, err := query.OpenSQLite(ctx, cfg.SQLitePath, cfg.SQLiteMigrate, logger)
		if err != nil {
			return nil, err
		}
		return st, nil
	}
}

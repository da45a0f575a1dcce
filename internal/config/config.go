// Package config は環境変数からサービスの設定を読み込む。
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"go.uber.org/zap"
)

const (
	// StoreDriverSQLite はSQLiteをストアとして使う設定値。
	StoreDriverSQLite = "sqlite"
	// StoreDriverMongo はMongoDBをストアとして使う設定値。
	StoreDriverMongo = "mongo"
)

// Config はクエリサービスの設定。
type Config struct {
	// Port はHTTPサーバーのリッスンポート。
	Port string `env:"PORT" envDefault:"8087"`
	// StoreDriver は症例数データの読み取り先（sqlite または mongo）。
	StoreDriver string `env:"STORE_DRIVER" envDefault:"sqlite"`
	// SQLitePath はSQLiteのDSN。
	SQLitePath string `env:"SQLITE_PATH" envDefault:"file:/data/surveillance.db?mode=ro&_pragma=busy_timeout(5000)"`
	// SQLiteMigrate がtrueの場合、起動時にcase_recordsのスキーマを適用する。
	// 外部ETLが所有するデータベースを読む本番環境ではfalseのままにする。
	SQLiteMigrate bool `env:"SQLITE_MIGRATE" envDefault:"false"`
	// MongoURI はMongoDBの接続URI。
	MongoURI string `env:"MONGO_URI" envDefault:"mongodb://localhost:27017"`
	// MongoDatabase は症例数コレクションを持つデータベース名。
	MongoDatabase string `env:"MONGO_DATABASE" envDefault:"epidemiology"`
	// MongoCollection は症例数のコレクション名。
	MongoCollection string `env:"MONGO_COLLECTION" envDefault:"infectious_diseases"`
	// JWTSecret は分析者トークンの署名鍵。
	JWTSecret string `env:"JWT_SECRET" envDefault:"dev-secret-key"`
	// AllowedOrigins はCORSで許可するオリジン（カンマ区切り）。
	AllowedOrigins []string `env:"FRONTEND_URL" envDefault:"http://localhost:3000" envSeparator:","`
	// LogEnv はロガーの構成（development または production）。
	LogEnv string `env:"LOG_ENV" envDefault:"development"`
	// ConnectTimeout はストア接続時のタイムアウト。
	ConnectTimeout time.Duration `env:"CONNECT_TIMEOUT" envDefault:"10s"`
	// ShutdownTimeout はグレースフルシャットダウンの待機時間。
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"10s"`
}

// Load は環境変数から設定を読み込み、値を検証する。
func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("環境変数の読み込みに失敗: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) validate() error {
	switch c.StoreDriver {
	case StoreDriverSQLite:
		if c.SQLitePath == "" {
			return fmt.Errorf("SQLITE_PATHが空です")
		}
		if c.SQLiteMigrate && strings.Contains(c.SQLitePath, "mode=ro") {
			return fmt.Errorf("読み取り専用のSQLITE_PATHにはSQLITE_MIGRATEを指定できません")
		}
	case StoreDriverMongo:
		if c.MongoURI == "" || c.MongoDatabase == "" || c.MongoCollection == "" {
			return fmt.Errorf("MONGO_URI, MONGO_DATABASE, MONGO_COLLECTIONは必須です")
		}
	default:
		return fmt.Errorf("STORE_DRIVERが不正です: %q (sqlite または mongo)", c.StoreDriver)
	}
	if c.Port == "" {
		return fmt.Errorf("PORTが空です")
	}
	return nil
}

// NewLogger はLogEnvに応じたzapロガーを生成する。
// productionの場合はJSON形式、それ以外は開発者向けのコンソール形式で出力する。
func (c Config) NewLogger() (*zap.Logger, error) {
	if c.LogEnv == "production" {
		return zap.NewProduction()
	}
	return zap.NewDevelopment()
}

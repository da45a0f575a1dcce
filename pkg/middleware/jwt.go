package middleware

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

// JWTClaims は分析者トークンのクレーム（ペイロード）を表す。
type JWTClaims struct {
	jwt.RegisteredClaims
	// AnalystID はクエリAPIを利用する分析者の一意識別子。
	AnalystID string `json:"analyst_id"`
	// Email は分析者のメールアドレス。
	Email string `json:"email"`
}

const (
	// tokenIssuer はこのサービスが発行・受理するトークンの発行者。
	tokenIssuer = "surveillance-query"
	// defaultTokenTTL はGenerateJWTでttlを省略した場合の有効期間。
	defaultTokenTTL = 24 * time.Hour
	// contextKeyAnalystID はGinコンテキストに分析者IDを格納するキー。
	contextKeyAnalystID = "analyst_id"
	// contextKeyEmail はGinコンテキストにメールアドレスを格納するキー。
	contextKeyEmail = "email"
)

// GenerateJWT は分析者情報からHS256署名のJWTトークンを生成する。
// ttlが0以下の場合は24時間とする。
func GenerateJWT(secret, analystID, email string, ttl time.Duration) (string, error) {
	if ttl <= 0 {
		ttl = defaultTokenTTL
	}
	now := time.Now()
	claims := JWTClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   analystID,
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
			Issuer:    tokenIssuer,
		},
		AnalystID: analystID,
		Email:     email,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(secret))
	if err != nil {
		return "", fmt.Errorf("JWTトークンの署名に失敗: %w", err)
	}
	return signed, nil
}

// JWTAuth はJWTトークンを検証するGinミドルウェアを返す。
// HS256以外の署名や、発行者が異なるトークンは拒否する。
// 検証に成功した場合、コンテキストに分析者IDとメールアドレスを設定する。
func JWTAuth(secret string) gin.HandlerFunc {
	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(tokenIssuer),
		jwt.WithExpirationRequired(),
	)

	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": "Authorizationヘッダーが必要です",
			})
			return
		}

		tokenString, found := strings.CutPrefix(authHeader, "Bearer ")
		if !found {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": "Bearer トークン形式が不正です",
			})
			return
		}

		claims := &JWTClaims{}
		token, err := parser.ParseWithClaims(tokenString, claims, func(_ *jwt.Token) (any, error) {
			return []byte(secret), nil
		})
		if err != nil || !token.Valid {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": "トークンが無効です",
			})
			return
		}

		c.Set(contextKeyAnalystID, claims.AnalystID)
		c.Set(contextKeyEmail, claims.Email)
		c.Next()
	}
}

// GetAnalystID はGinコンテキストから分析者IDを取得する。
// JWTAuthミドルウェアが事前に適用されていない場合は空文字列を返す。
func GetAnalystID(c *gin.Context) string {
	return c.GetString(contextKeyAnalystID)
}

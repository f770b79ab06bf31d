package rest

import (
	"crypto/subtle"
	"net/http"
	"strings"
	"time"

	"storefront-service/internal/session"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const (
	HeaderSessionID = "X-Session-ID"
	ctxSession      = "session"
)

func loggerMiddleware(log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		query := c.Request.URL.RawQuery

		c.Next()

		log.Info("HTTP request",
			zap.String("method", c.Request.Method),
			zap.String("path", path),
			zap.String("query", query),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)),
		)
	}
}

// SessionRequired загружает сессию по заголовку X-Session-ID и кладёт её в контекст gin.
func SessionRequired(checkout Checkout) gin.HandlerFunc {
	return func(c *gin.Context) {
		id := strings.TrimSpace(c.GetHeader(HeaderSessionID))
		if id == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, NewUnauthorizedError("missing "+HeaderSessionID+" header"))
			return
		}
		s, err := checkout.Session(c.Request.Context(), id)
		if err != nil {
			status, body := toHTTPError(err)
			c.AbortWithStatusJSON(status, body)
			return
		}
		c.Set(ctxSession, s)
		c.Next()
	}
}

func currentSession(c *gin.Context) *session.Session {
	v, _ := c.Get(ctxSession)
	s, _ := v.(*session.Session)
	return s
}

// AdminRequired пропускает запросы только с Bearer-токеном администратора.
func AdminRequired(token string, log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		if token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, NewUnauthorizedError("admin access is disabled"))
			return
		}
		authz := c.GetHeader("Authorization")
		if authz == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, NewUnauthorizedError("missing Authorization header"))
			return
		}
		got, ok := ExtractBearerToken(authz)
		if !ok || got == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, NewUnauthorizedError("invalid Authorization header"))
			return
		}
		if subtle.ConstantTimeCompare([]byte(got), []byte(token)) != 1 {
			log.Warn("admin token mismatch", zap.String("path", c.Request.URL.Path))
			c.AbortWithStatusJSON(http.StatusUnauthorized, NewUnauthorizedError("invalid token"))
			return
		}
		c.Next()
	}
}

// ExtractBearerToken извлекает токен из заголовка Authorization, устойчиво к лишним символам
// Примеры допустимых значений:
// - "Bearer abc"
// - "Bearer \"abc\""
// - "Bearer abc, extra"
func ExtractBearerToken(authz string) (string, bool) {
	if authz == "" {
		return "", false
	}
	parts := strings.SplitN(authz, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", false
	}
	t := strings.Trim(strings.TrimSpace(parts[1]), " \"'")
	if i := strings.IndexRune(t, ','); i >= 0 {
		t = strings.TrimSpace(t[:i])
	}
	if i := strings.IndexByte(t, ' '); i >= 0 {
		t = strings.TrimSpace(t[:i])
	}
	return strings.Trim(t, " \"'"), true
}

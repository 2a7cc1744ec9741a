package router

import (
	"errors"
	"strings"
	"time"

	"github.com/campusbooks/internal/authz"
	"github.com/campusbooks/internal/config"
	"github.com/campusbooks/internal/constants"
	"github.com/campusbooks/internal/http/handlers/shared"
	"github.com/campusbooks/internal/http/response"
	"github.com/campusbooks/internal/i18n"
	"github.com/campusbooks/internal/logger"
	"github.com/campusbooks/internal/service"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const requestIDKey = response.RequestIDKey
const requestIDHeader = "X-Request-ID"

// CORSMiddleware 跨域中间件
func CORSMiddleware(cfg config.CORSConfig) gin.HandlerFunc {
	allowedOrigins := cfg.AllowedOrigins
	if len(allowedOrigins) == 0 {
		allowedOrigins = []string{"*"}
	}
	allowedMethods := cfg.AllowedMethods
	if len(allowedMethods) == 0 {
		allowedMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
	}
	allowedHeaders := cfg.AllowedHeaders
	if len(allowedHeaders) == 0 {
		allowedHeaders = []string{
			"Origin",
			"Content-Type",
			"Content-Length",
			"Accept-Language",
			"Authorization",
			requestIDHeader,
			constants.IdempotencyHeader,
		}
	}

	corsConfig := cors.Config{
		AllowOriginFunc: func(origin string) bool {
			return resolveAllowedOrigin(origin, allowedOrigins, cfg.AllowCredentials) != ""
		},
		AllowMethods:     allowedMethods,
		AllowHeaders:     allowedHeaders,
		ExposeHeaders:    []string{"Content-Length", requestIDHeader},
		AllowCredentials: cfg.AllowCredentials,
	}
	if cfg.MaxAge > 0 {
		corsConfig.MaxAge = time.Duration(cfg.MaxAge) * time.Second
	}
	return cors.New(corsConfig)
}

func resolveAllowedOrigin(origin string, allowedOrigins []string, allowCredentials bool) string {
	if len(allowedOrigins) == 0 {
		return ""
	}
	for _, allowed := range allowedOrigins {
		if allowed == "*" {
			if allowCredentials && origin != "" {
				return origin
			}
			return "*"
		}
	}
	if origin == "" {
		return ""
	}
	for _, allowed := range allowedOrigins {
		if strings.EqualFold(allowed, origin) {
			return origin
		}
	}
	return ""
}

// RequestIDMiddleware 请求 ID 中间件
func RequestIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := strings.TrimSpace(c.GetHeader(requestIDHeader))
		if requestID == "" {
			requestID = uuid.NewString()
		}
		c.Set(requestIDKey, requestID)
		c.Writer.Header().Set(requestIDHeader, requestID)
		c.Next()
	}
}

// LoggerMiddleware 结构化请求日志中间件
func LoggerMiddleware(logger *zap.Logger) gin.HandlerFunc {
	if logger == nil {
		logger = zap.L()
	}
	sugar := logger.Sugar()
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		log := sugar.With(
			"request_id", getRequestID(c),
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"latency_ms", time.Since(start).Milliseconds(),
			"client_ip", c.ClientIP(),
		)
		if sess := shared.GetSession(c); sess != nil {
			log = log.With("user_id", sess.UserID)
		}
		if len(c.Errors) > 0 {
			log.Errorw("request", "errors", c.Errors.String())
			return
		}
		log.Infow("request")
	}
}

func getRequestID(c *gin.Context) string {
	value, ok := c.Get(requestIDKey)
	if !ok {
		return ""
	}
	if requestID, ok := value.(string); ok {
		return requestID
	}
	return ""
}

// AuthMiddleware 解析 Bearer 令牌并写入会话，失败时提示跳转登录页
func AuthMiddleware(authService *service.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := bearerToken(c)
		if !ok {
			abortUnauthorized(c, "error.unauthorized")
			return
		}
		if authService == nil {
			abortUnauthorized(c, "error.token_invalid")
			return
		}

		sess, err := authService.ResolveSession(c.Request.Context(), token)
		if err != nil {
			if errors.Is(err, service.ErrTokenRevoked) {
				abortUnauthorized(c, "error.token_revoked")
				return
			}
			if !service.IsTokenError(err) {
				logger.Errorw("auth_resolve_session_failed", "request_id", getRequestID(c), "error", err)
			}
			abortUnauthorized(c, "error.token_invalid")
			return
		}
		shared.SetSession(c, sess)
		c.Next()
	}
}

// RequireRole 按角色能力拦截，junior 与 senior 入口共用同一个中间件
func RequireRole(authzService *authz.Service, role string) gin.HandlerFunc {
	deniedKey := "error.forbidden"
	switch role {
	case constants.RoleJunior:
		deniedKey = "error.role_denied_junior"
	case constants.RoleSenior:
		deniedKey = "error.role_denied_senior"
	}

	return func(c *gin.Context) {
		sess := shared.GetSession(c)
		if !sess.Authenticated() {
			abortUnauthorized(c, "error.unauthorized")
			return
		}
		if authzService == nil {
			logger.Errorw("role_guard_service_unavailable", "required", role)
			abortForbidden(c, deniedKey)
			return
		}

		allowed, err := authzService.AllowRole(sess.Role, role)
		if err != nil {
			logger.Errorw("role_guard_enforce_failed",
				"user_id", sess.UserID,
				"role", sess.Role,
				"required", role,
				"error", err,
			)
			abortForbidden(c, deniedKey)
			return
		}
		if !allowed {
			logger.Warnw("role_guard_denied",
				"user_id", sess.UserID,
				"role", sess.Role,
				"required", role,
				"path", c.Request.URL.Path,
			)
			abortForbidden(c, deniedKey)
			return
		}
		c.Next()
	}
}

func bearerToken(c *gin.Context) (string, bool) {
	authHeader := strings.TrimSpace(c.GetHeader("Authorization"))
	if authHeader == "" {
		return "", false
	}
	parts := strings.SplitN(authHeader, " ", 2)
	if !(len(parts) == 2 && parts[0] == "Bearer") {
		return "", false
	}
	token := strings.TrimSpace(parts[1])
	return token, token != ""
}

func abortUnauthorized(c *gin.Context, key string) {
	msg := i18n.T(i18n.ResolveLocale(c), key)
	response.ErrorWithRedirect(c, response.CodeUnauthorized, msg, constants.RedirectLogin)
	c.Abort()
}

func abortForbidden(c *gin.Context, key string) {
	msg := i18n.T(i18n.ResolveLocale(c), key)
	response.ErrorWithRedirect(c, response.CodeForbidden, msg, constants.RedirectHome)
	c.Abort()
}

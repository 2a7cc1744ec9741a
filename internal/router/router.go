package router

import (
	"errors"
	"fmt"
	"strings"

	"github.com/campusbooks/internal/cache"
	"github.com/campusbooks/internal/config"
	"github.com/campusbooks/internal/constants"
	publichandlers "github.com/campusbooks/internal/http/handlers/public"
	"github.com/campusbooks/internal/logger"
	"github.com/campusbooks/internal/models"
	"github.com/campusbooks/internal/provider"

	"github.com/gin-gonic/gin"
)

// SetupRouter 初始化路由
func SetupRouter(cfg *config.Config, c *provider.Container) *gin.Engine {
	log := logger.L
	if log == nil {
		log = logger.Init(cfg.Server.Mode, cfg.Log.ToLoggerOptions())
	}
	r := gin.New()

	handler := publichandlers.New(c)
	redisPrefix := strings.TrimSpace(cfg.Redis.Prefix)
	if redisPrefix == "" {
		redisPrefix = "cb"
	}
	redisClient := cache.Client()
	loginRule := RateLimitRule{
		Prefix:        fmt.Sprintf("%s:rate:login", redisPrefix),
		WindowSeconds: cfg.Security.LoginRateLimit.WindowSeconds,
		MaxRequests:   cfg.Security.LoginRateLimit.MaxAttempts,
		BlockSeconds:  cfg.Security.LoginRateLimit.BlockSeconds,
		MessageKey:    "error.rate_limited",
	}
	registerRule := RateLimitRule{
		Prefix:        fmt.Sprintf("%s:rate:register", redisPrefix),
		WindowSeconds: cfg.Security.LoginRateLimit.WindowSeconds,
		MaxRequests:   cfg.Security.LoginRateLimit.MaxAttempts,
		BlockSeconds:  cfg.Security.LoginRateLimit.BlockSeconds,
		MessageKey:    "error.rate_limited",
	}

	// 中间件
	r.Use(gin.Recovery())
	r.Use(RequestIDMiddleware())
	r.Use(LoggerMiddleware(log))
	r.Use(CORSMiddleware(cfg.CORS))

	authenticated := AuthMiddleware(c.AuthService)

	apiV1 := r.Group("/api/v1")
	{
		// 认证
		auth := apiV1.Group("/auth")
		{
			auth.POST("/register", RateLimitMiddleware(redisClient, registerRule, KeyByIP), handler.Register)
			auth.POST("/login", RateLimitMiddleware(redisClient, loginRule, KeyByIPAndJSONField("email")), handler.Login)
			auth.POST("/logout", authenticated, handler.Logout)
		}

		// 个人资料
		profile := apiV1.Group("/profile", authenticated)
		{
			profile.GET("", handler.GetProfile)
			profile.PUT("", handler.UpdateProfile)
		}

		// 公开浏览
		books := apiV1.Group("/books")
		{
			books.GET("", handler.ListBooks)
			books.GET("/subjects", handler.ListSubjects)
			books.GET("/featured", handler.FeaturedBooks)
			books.GET("/:id", handler.GetBook)
		}

		// 买家入口
		junior := apiV1.Group("", authenticated, RequireRole(c.AuthzService, constants.RoleJunior))
		{
			junior.GET("/cart", handler.GetCart)
			junior.POST("/cart", handler.AddCartItem)
			junior.PATCH("/cart/:book_id", handler.UpdateCartQuantity)
			junior.DELETE("/cart/:book_id", handler.RemoveCartItem)
			junior.DELETE("/cart", handler.ClearCart)
			junior.PUT("/cart", handler.SyncCart)
			junior.POST("/checkout", handler.Checkout)
			junior.GET("/orders", handler.ListOrders)
			junior.GET("/orders/:id", handler.GetOrder)
		}

		// 卖家入口
		seller := apiV1.Group("/seller", authenticated, RequireRole(c.AuthzService, constants.RoleSenior))
		{
			seller.GET("/books", handler.ListSellerBooks)
			seller.POST("/books", handler.CreateSellerBook)
			seller.PUT("/books/:id", handler.UpdateSellerBook)
			seller.DELETE("/books/:id", handler.DeleteSellerBook)
			seller.GET("/orders", handler.ListSellerOrders)
		}
	}

	// 健康检查
	r.GET("/health", func(ctx *gin.Context) {
		status := gin.H{"status": "ok", "database": "ok", "redis": "ok"}
		if err := pingDatabase(ctx); err != nil {
			status["status"] = "degraded"
			status["database"] = err.Error()
		}
		if !cache.Enabled() {
			status["redis"] = "disabled"
		} else if err := cache.Ping(ctx.Request.Context()); err != nil {
			status["status"] = "degraded"
			status["redis"] = err.Error()
		}
		ctx.JSON(200, status)
	})

	return r
}

func pingDatabase(c *gin.Context) error {
	if models.DB == nil {
		return errors.New("database not initialized")
	}
	sqlDB, err := models.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(c.Request.Context())
}

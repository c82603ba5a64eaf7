package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "lms_platform/docs"
	_ "lms_platform/internal/domain/common"
	_ "lms_platform/internal/domain/community"
	_ "lms_platform/internal/domain/document"

	"lms_platform/internal/pkg/config"
	"lms_platform/internal/pkg/middleware"
	"lms_platform/internal/pkg/push"
	"lms_platform/internal/pkg/registry"
	"lms_platform/internal/pkg/uploader"
	"lms_platform/pkg/database"
	"lms_platform/pkg/logger"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"
)

// @title LMS Platform Development API
// @version 1.0
// @description 学习平台客户端核心的开发联调服务：讨论区与文档处理流水线
// @BasePath /
func main() {
	// 1. 配置与日志
	config.LoadConfig()
	logger.Init(config.GlobalConfig.App.Debug)
	defer logger.Sync()

	if config.GlobalConfig.Server.Mode != "" {
		gin.SetMode(config.GlobalConfig.Server.Mode)
	}

	// 2. 基础设施
	db := database.InitDatabase()
	sqlxDB := database.InitSQLX(db)
	rdb := database.InitRedis()

	if err := uploader.InitUploader(); err != nil {
		logger.Log.Fatal("uploader init failed", zap.Error(err))
	}
	if err := push.InitPushService(); err != nil {
		logger.Log.Fatal("push service init failed", zap.Error(err))
	}

	// 3. 引擎与中间件
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.TraceMiddleware())
	r.Use(middleware.LoggerMiddleware())
	r.Use(middleware.MetricsMiddleware())
	r.Use(middleware.RateLimitMiddleware())

	corsConfig := cors.DefaultConfig()
	corsConfig.AllowAllOrigins = true
	corsConfig.AllowHeaders = append(corsConfig.AllowHeaders, "Authorization")
	r.Use(cors.New(corsConfig))

	// 4. 业务模块
	if err := registry.InitModules(&registry.ModuleContext{
		DB:     db,
		SQLX:   sqlxDB,
		Redis:  rdb,
		Router: r,
	}); err != nil {
		logger.Log.Fatal("module init failed", zap.Error(err))
	}

	// 5. 运维端点
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// 6. 启动与优雅退出
	srv := &http.Server{
		Addr:    ":" + config.GlobalConfig.Server.Port,
		Handler: r,
	}

	go func() {
		logger.Log.Info("server listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Log.Fatal("server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Log.Info("shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Log.Error("forced shutdown", zap.Error(err))
	}
}

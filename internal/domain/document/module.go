package document

import (
	"lms_platform/internal/domain/document/handler"
	"lms_platform/internal/domain/document/repository"
	"lms_platform/internal/domain/document/service"
	"lms_platform/internal/pkg/config"
	"lms_platform/internal/pkg/middleware"
	"lms_platform/internal/pkg/registry"
	"lms_platform/internal/pkg/worker"

	"github.com/gin-gonic/gin"
)

// DocumentModule 文档处理模块
type DocumentModule struct{}

func init() {
	registry.Register(&DocumentModule{})
}

func (m *DocumentModule) Name() string {
	return "document"
}

func (m *DocumentModule) Priority() int {
	return 20
}

func (m *DocumentModule) Init(ctx *registry.ModuleContext) error {
	cfg := config.GlobalConfig.Document

	// 1. 依赖注入
	repo := repository.NewDocumentRepository(ctx.DB)
	statsRepo := repository.NewDocumentStatsRepository(ctx.SQLX)

	pool := worker.NewWorkerPool(repo, cfg.WorkerNum, cfg.QueueSize, cfg.MaxAttempts)
	pool.Start()

	svc := service.NewDocumentService(repo, statsRepo, pool, cfg.MaxAttempts)
	h := handler.NewDocumentHandler(svc)

	// 2. 路由注册
	setupRoutes(ctx.Router, h)

	return nil
}

func setupRoutes(r *gin.Engine, h *handler.DocumentHandler) {
	lessons := r.Group("/lessons")
	lessons.Use(middleware.AuthMiddleware())
	{
		lessons.POST("/:lessonId/documents", h.CreateDocument)
		lessons.GET("/:lessonId/documents/:documentId/status", h.GetStatus)
	}

	docs := r.Group("/documents")
	docs.Use(middleware.AuthMiddleware(), middleware.AdminMiddleware())
	{
		docs.GET("/stats", h.GetStats)
	}
}

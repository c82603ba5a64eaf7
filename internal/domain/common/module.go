package common

import (
	commonHandler "lms_platform/internal/pkg/common"
	"lms_platform/internal/pkg/middleware"
	"lms_platform/internal/pkg/registry"

	"github.com/gin-gonic/gin"
)

// CommonModule 通用功能模块
type CommonModule struct{}

func init() {
	registry.Register(&CommonModule{})
}

func (m *CommonModule) Name() string {
	return "common"
}

func (m *CommonModule) Priority() int {
	return 100 // 最后初始化
}

func (m *CommonModule) Init(ctx *registry.ModuleContext) error {
	setupRoutes(ctx.Router)
	return nil
}

func setupRoutes(r *gin.Engine) {
	// 附件上传
	r.POST("/upload", middleware.AuthMiddleware(), commonHandler.UploadFile)

	// 开发 token (仅 debug 模式生效)
	r.POST("/auth/dev_token", commonHandler.DevToken)

	// 本地上传目录的静态访问
	r.Static("/static", "./uploads")
}

package community

import (
	"lms_platform/internal/domain/community/handler"
	"lms_platform/internal/domain/community/repository"
	"lms_platform/internal/domain/community/service"
	"lms_platform/internal/pkg/middleware"
	"lms_platform/internal/pkg/registry"
	"lms_platform/pkg/cache"

	"github.com/gin-gonic/gin"
)

// CommunityModule 讨论区模块
type CommunityModule struct{}

func init() {
	registry.Register(&CommunityModule{})
}

func (m *CommunityModule) Name() string {
	return "community"
}

func (m *CommunityModule) Priority() int {
	return 10
}

func (m *CommunityModule) Init(ctx *registry.ModuleContext) error {
	// 1. 依赖注入
	repo := repository.NewCommunityRepository(ctx.DB)
	base := service.NewCommunityService(repo)
	svc := service.NewCachedCommunityService(base, cache.NewRedisCache(ctx.Redis))
	h := handler.NewCommunityHandler(svc)

	// 2. 路由注册
	setupRoutes(ctx.Router, h)

	return nil
}

func setupRoutes(r *gin.Engine, h *handler.CommunityHandler) {
	// 客户端每次调用都带凭证，读端点也走认证 (userReactions 因人而异)
	g := r.Group("/community")
	g.Use(middleware.AuthMiddleware())
	{
		g.GET("/posts", h.GetFeed)
		g.POST("/posts", h.CreatePost)
		g.GET("/posts/:id/comments", h.GetComments)
		g.POST("/posts/:id/comments", h.AddComment)
		g.POST("/posts/:id/reactions", h.ReactToPost)
		g.POST("/comments/:id/reactions", h.ReactToComment)
	}
}

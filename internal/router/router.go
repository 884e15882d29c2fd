package router

import (
	"fmt"
	"strings"

	"github.com/hevea-next/internal/cache"
	"github.com/hevea-next/internal/config"
	adminhandlers "github.com/hevea-next/internal/http/handlers/admin"
	staffhandlers "github.com/hevea-next/internal/http/handlers/staff"
	"github.com/hevea-next/internal/logger"
	"github.com/hevea-next/internal/provider"

	"github.com/gin-gonic/gin"
)

// SetupRouter 初始化路由
func SetupRouter(cfg *config.Config, c *provider.Container) *gin.Engine {
	log := logger.L
	if log == nil {
		log = logger.Init(cfg.Server.Mode, cfg.Log.ToLoggerOptions())
	}
	r := gin.New()

	adminHandler := adminhandlers.New(c)
	staffHandler := staffhandlers.New(c)
	redisPrefix := strings.TrimSpace(cfg.Redis.Prefix)
	if redisPrefix == "" {
		redisPrefix = "hv"
	}
	redisClient := cache.Client()
	loginRule := RateLimitRule{
		Prefix:        fmt.Sprintf("%s:rate:login", redisPrefix),
		WindowSeconds: cfg.Security.LoginRateLimit.WindowSeconds,
		MaxRequests:   cfg.Security.LoginRateLimit.MaxAttempts,
		BlockSeconds:  cfg.Security.LoginRateLimit.BlockSeconds,
	}

	r.Use(gin.Recovery())
	r.Use(RequestIDMiddleware())
	r.Use(LoggerMiddleware(log))
	r.Use(CORSMiddleware(cfg.CORS))

	apiV1 := r.Group("/api/v1")
	{
		auth := apiV1.Group("/auth")
		{
			auth.POST("/login", RateLimitMiddleware(redisClient, loginRule, KeyByIP), staffHandler.Login)
		}

		// 员工端：配送/化验人员操作自己名下的任务
		staffGroup := apiV1.Group("/staff")
		staffGroup.Use(StaffJWTAuthMiddleware(cfg.JWT.SecretKey, c.StaffRepo))
		{
			staffGroup.GET("/tasks", staffHandler.GetMyTasks)
			staffGroup.GET("/tasks/:id", staffHandler.GetMyTask)
			staffGroup.POST("/tasks/:id/advance", staffHandler.AdvanceMyTask)
			staffGroup.POST("/tasks/:id/barrels", staffHandler.RecordMyTaskBarrels)
		}

		// 管理端：细粒度权限由编排层按命令动作执行 casbin 校验
		admin := apiV1.Group("/admin")
		admin.Use(StaffJWTAuthMiddleware(cfg.JWT.SecretKey, c.StaffRepo))
		{
			// 胶桶
			admin.POST("/barrels", adminHandler.RegisterBarrel)
			admin.GET("/barrels", adminHandler.GetBarrels)
			admin.GET("/barrels/:id", adminHandler.GetBarrel)
			admin.POST("/barrels/:id/retire", adminHandler.RetireBarrel)

			// 保管台账
			admin.POST("/custody/issue", adminHandler.IssueBarrel)
			admin.POST("/custody/:id/return", adminHandler.ReturnBarrel)
			admin.GET("/custody", adminHandler.GetCustodyRecords)
			admin.GET("/custody/overdue", adminHandler.GetOverdueCustodyRecords)
			admin.POST("/custody/sweep", adminHandler.TriggerCustodySweep)

			// 挂胶槽位
			admin.POST("/slots/seed", adminHandler.SeedGrid)
			admin.GET("/slots", adminHandler.GetGrid)
			admin.PUT("/slots/status", adminHandler.BulkSetSlotStatus)
			admin.PUT("/slots/:id/status", adminHandler.SetSlotStatus)
			admin.GET("/slots/:id/audit", adminHandler.GetSlotAudit)

			// 出售申请
			admin.POST("/sell-requests", adminHandler.CreateSellRequest)
			admin.GET("/sell-requests", adminHandler.GetSellRequests)
			admin.GET("/sell-requests/:id", adminHandler.GetSellRequest)
			admin.POST("/sell-requests/:id/approve", adminHandler.ApproveSellRequest)
			admin.POST("/sell-requests/:id/reject", adminHandler.RejectSellRequest)
			admin.POST("/sell-requests/:id/assign", adminHandler.AssignSellRequestDelivery)
			admin.POST("/sell-requests/:id/advance", adminHandler.AdvanceSellRequest)

			// 配送任务
			admin.GET("/tasks", adminHandler.GetDeliveryTasks)
			admin.GET("/tasks/:id", adminHandler.GetDeliveryTask)
			admin.POST("/tasks/:id/cancel", adminHandler.CancelDeliveryTask)
			admin.POST("/tasks/:id/advance-all", adminHandler.BulkAdvanceDeliveryTask)

			// 系统管理
			admin.POST("/staff", adminHandler.CreateStaff)
			admin.GET("/staff", adminHandler.GetStaffByRole)
			admin.GET("/audit-logs", adminHandler.GetAuditLogs)
			admin.GET("/notifications", adminHandler.GetNotifications)
			admin.GET("/settings/custody", adminHandler.GetCustodyPolicy)
			admin.PUT("/settings/custody", adminHandler.UpdateCustodyPolicy)
		}
	}

	// 健康检查
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	return r
}

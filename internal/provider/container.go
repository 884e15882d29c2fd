package provider

import (
	"github.com/hevea-next/internal/authz"
	"github.com/hevea-next/internal/cache"
	"github.com/hevea-next/internal/config"
	"github.com/hevea-next/internal/logger"
	"github.com/hevea-next/internal/models"
	"github.com/hevea-next/internal/queue"
	"github.com/hevea-next/internal/repository"
	"github.com/hevea-next/internal/service"
)

// Container 依赖注入容器
type Container struct {
	Config      *config.Config
	QueueClient *queue.Client

	// Repositories
	StaffRepo         repository.StaffRepository
	BarrelRepo        repository.BarrelRepository
	CustodyRecordRepo repository.CustodyRecordRepository
	HangerSlotRepo    repository.HangerSlotRepository
	SellRequestRepo   repository.SellRequestRepository
	DeliveryTaskRepo  repository.DeliveryTaskRepository
	AuditLogRepo      repository.AuditLogRepository
	NotificationRepo  repository.NotificationRepository
	SettingRepo       repository.SettingRepository

	// Services
	AuthzService        *authz.Service
	AuthService         *service.AuthService
	StaffService        *service.StaffService
	SettingService      *service.SettingService
	AuditService        *service.AuditService
	NotificationService *service.NotificationService
	BarrelService       *service.BarrelService
	CustodyService      *service.CustodyService
	HangerGridService   *service.HangerGridService
	DeliveryTaskService *service.DeliveryTaskService
	SellRequestService  *service.SellRequestService
	Orchestrator        *service.OrchestratorService
}

// NewContainer 初始化容器
func NewContainer(cfg *config.Config) *Container {
	if err := cache.InitRedis(&cfg.Redis); err != nil {
		logger.Warnw("provider_init_redis_failed", "error", err)
	}

	var queueClient *queue.Client
	if cfg.Queue.Enabled {
		qc, err := queue.NewClient(&cfg.Queue)
		if err != nil {
			logger.Errorw("provider_init_queue_client_failed", "error", err)
		} else {
			queueClient = qc
		}
	}

	c := &Container{
		Config:      cfg,
		QueueClient: queueClient,
	}

	c.initRepositories()
	c.initServices()

	return c
}

func (c *Container) initRepositories() {
	db := models.DB
	c.StaffRepo = repository.NewStaffRepository(db)
	c.BarrelRepo = repository.NewBarrelRepository(db)
	c.CustodyRecordRepo = repository.NewCustodyRecordRepository(db)
	c.HangerSlotRepo = repository.NewHangerSlotRepository(db)
	c.SellRequestRepo = repository.NewSellRequestRepository(db)
	c.DeliveryTaskRepo = repository.NewDeliveryTaskRepository(db)
	c.AuditLogRepo = repository.NewAuditLogRepository(db)
	c.NotificationRepo = repository.NewNotificationRepository(db)
	c.SettingRepo = repository.NewSettingRepository(db)
}

func (c *Container) initServices() {
	authzService, err := authz.NewService(models.DB)
	if err != nil {
		logger.Errorw("provider_init_authz_failed", "error", err)
		panic(err)
	}
	c.AuthzService = authzService
	if err := c.AuthzService.BootstrapBuiltinRoles(); err != nil {
		logger.Errorw("provider_bootstrap_builtin_roles_failed", "error", err)
		panic(err)
	}

	c.SettingService = service.NewSettingService(c.SettingRepo, c.Config.Custody)
	c.AuthService = service.NewAuthService(c.Config, c.StaffRepo)
	c.StaffService = service.NewStaffService(c.StaffRepo)
	c.AuditService = service.NewAuditService(c.AuditLogRepo)
	c.NotificationService = service.NewNotificationService(c.NotificationRepo, c.QueueClient)
	c.BarrelService = service.NewBarrelService(c.BarrelRepo)
	c.CustodyService = service.NewCustodyService(c.CustodyRecordRepo, c.BarrelRepo, c.SettingService)
	c.HangerGridService = service.NewHangerGridService(c.HangerSlotRepo)
	c.DeliveryTaskService = service.NewDeliveryTaskService(c.DeliveryTaskRepo)
	c.SellRequestService = service.NewSellRequestService(c.SellRequestRepo)
	c.Orchestrator = service.NewOrchestratorService(
		c.StaffRepo,
		c.BarrelService,
		c.CustodyService,
		c.HangerGridService,
		c.DeliveryTaskService,
		c.SellRequestService,
		c.AuditService,
		c.NotificationService,
		c.AuthzService,
	)
}

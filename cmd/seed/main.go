package main

import (
	"fmt"

	"github.com/hevea-next/internal/authz"
	"github.com/hevea-next/internal/config"
	"github.com/hevea-next/internal/constants"
	"github.com/hevea-next/internal/logger"
	"github.com/hevea-next/internal/models"

	"golang.org/x/crypto/bcrypt"
)

func main() {
	// 连接数据库
	cfg := config.Load()
	logger.Init(cfg.Server.Mode, cfg.Log.ToLoggerOptions())
	stdLog := logger.StdLogger()
	if err := models.InitDB(cfg.Database.Driver, cfg.Database.DSN, models.DBPoolConfig{
		MaxOpenConns:           cfg.Database.Pool.MaxOpenConns,
		MaxIdleConns:           cfg.Database.Pool.MaxIdleConns,
		ConnMaxLifetimeSeconds: cfg.Database.Pool.ConnMaxLifetimeSeconds,
		ConnMaxIdleTimeSeconds: cfg.Database.Pool.ConnMaxIdleTimeSeconds,
	}); err != nil {
		stdLog.Fatalf("Failed to connect database: %v", err)
	}

	// 自动迁移
	if err := models.AutoMigrate(); err != nil {
		stdLog.Fatalf("Failed to migrate database: %v", err)
	}

	authzService, err := authz.NewService(models.DB)
	if err != nil {
		stdLog.Fatalf("Failed to init authz: %v", err)
	}
	if err := authzService.BootstrapBuiltinRoles(); err != nil {
		stdLog.Fatalf("Failed to bootstrap roles: %v", err)
	}

	// 默认管理员
	if err := models.InitDefaultAdmin("", ""); err != nil {
		stdLog.Fatalf("Failed to init default admin: %v", err)
	}

	// 示例员工账号
	seedStaff := []struct {
		Username    string
		DisplayName string
		Role        string
	}{
		{Username: "manager01", DisplayName: "采购主管", Role: constants.RoleManager},
		{Username: "driver01", DisplayName: "配送员一号", Role: constants.RoleDelivery},
		{Username: "driver02", DisplayName: "配送员二号", Role: constants.RoleDelivery},
		{Username: "lab01", DisplayName: "化验员", Role: constants.RoleLab},
	}
	for _, item := range seedStaff {
		var count int64
		models.DB.Model(&models.Staff{}).Where("username = ?", item.Username).Count(&count)
		if count > 0 {
			continue
		}
		hash, err := bcrypt.GenerateFromPassword([]byte("hevea123"), bcrypt.DefaultCost)
		if err != nil {
			stdLog.Fatalf("Failed to hash password: %v", err)
		}
		staff := models.Staff{
			Username:     item.Username,
			PasswordHash: string(hash),
			DisplayName:  item.DisplayName,
			Role:         item.Role,
			Status:       constants.StaffStatusActive,
		}
		if err := models.DB.Create(&staff).Error; err != nil {
			stdLog.Fatalf("Failed to create staff %s: %v", item.Username, err)
		}
		if err := authzService.AssignStaffRole(staff.ID, staff.Role); err != nil {
			stdLog.Fatalf("Failed to assign role for %s: %v", item.Username, err)
		}
	}

	// 铺满挂胶格位（2 区块 × 9 行 × 10 列）
	var slotCount int64
	models.DB.Model(&models.HangerSlot{}).Count(&slotCount)
	if slotCount == 0 {
		for block := 1; block <= constants.GridBlocks; block++ {
			for row := 1; row <= constants.GridRows; row++ {
				for col := 1; col <= constants.GridColumns; col++ {
					slot := models.HangerSlot{
						Block:  block,
						Row:    row,
						Column: col,
						Status: constants.SlotStatusVacant,
					}
					if err := models.DB.Create(&slot).Error; err != nil {
						stdLog.Fatalf("Failed to create slot: %v", err)
					}
				}
			}
		}
	}

	// 示例胶桶
	seedBarrels := []string{"BHFP1", "BHFP2", "BHFP3", "GTX10", "GTX11"}
	for _, code := range seedBarrels {
		var count int64
		models.DB.Model(&models.Barrel{}).Where("code = ?", code).Count(&count)
		if count > 0 {
			continue
		}
		barrel := models.Barrel{
			Code:         code,
			CustodyState: constants.BarrelStateInWarehouse,
		}
		if err := models.DB.Create(&barrel).Error; err != nil {
			stdLog.Fatalf("Failed to create barrel %s: %v", code, err)
		}
	}

	fmt.Println("Seed data created:")
	fmt.Println("  - builtin roles bootstrapped")
	fmt.Println("  - default admin (admin / admin123)")
	fmt.Printf("  - %d staff accounts (password hevea123)\n", len(seedStaff))
	fmt.Printf("  - %d hanger slots\n", constants.GridSize)
	fmt.Printf("  - %d barrels\n", len(seedBarrels))
}

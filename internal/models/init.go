package models

import (
	"github.com/hevea-next/internal/constants"
	"github.com/hevea-next/internal/logger"

	"golang.org/x/crypto/bcrypt"
)

// InitDefaultAdmin 初始化默认管理员员工账号
func InitDefaultAdmin(username, password string) error {
	var count int64
	DB.Model(&Staff{}).Where("role = ?", constants.RoleAdmin).Count(&count)
	if count > 0 {
		return nil
	}

	if username == "" {
		username = "admin"
	}
	if password == "" {
		password = "admin123"
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	staff := Staff{
		Username:     username,
		PasswordHash: string(hash),
		DisplayName:  username,
		Role:         constants.RoleAdmin,
		Status:       constants.StaffStatusActive,
	}
	if err := DB.Create(&staff).Error; err != nil {
		return err
	}

	if password == "admin123" {
		logger.Warnw("default_admin_created_with_default_password", "username", username)
		logger.Warnw("default_admin_password_change_required", "username", username)
	} else {
		logger.Warnw("default_admin_created", "username", username, "password_hidden", true)
	}
	return nil
}

package app

import (
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/phytolab/orderport/internal/domain"
	"github.com/phytolab/orderport/pkg/common"
)

func (a *Application) checkSuper() {
	const superUsername = "admin"
	const defaultPassword = "orderport"

	hashedPassword := common.Sha256HashWithSalt(defaultPassword, common.GetSecretSalt())

	var operator domain.SysOpr
	err := a.gormDB.Where("username = ?", superUsername).First(&operator).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		if err := a.gormDB.Create(&domain.SysOpr{
			ID:        common.UUIDint64(),
			Realname:  "administrator",
			Mobile:    "0000",
			Email:     "N/A",
			Username:  superUsername,
			Password:  hashedPassword,
			Level:     "super",
			Status:    common.ENABLED,
			Remark:    "super",
			LastLogin: time.Now(),
		}).Error; err != nil {
			zap.L().Error("failed to create default super admin", zap.Error(err))
		} else {
			zap.L().Info("initialized default super admin account", zap.String("username", superUsername))
		}
		return
	case err != nil:
		zap.L().Error("failed to query super admin", zap.Error(err))
		return
	}

	resetPassword := strings.TrimSpace(operator.Password) == ""
	resetLevel := !strings.EqualFold(operator.Level, "super")
	resetStatus := !strings.EqualFold(operator.Status, common.ENABLED)

	if !resetPassword && !resetLevel && !resetStatus {
		return
	}

	updates := map[string]interface{}{
		"updated_at": time.Now(),
	}
	if resetPassword {
		updates["password"] = hashedPassword
	}
	if resetLevel {
		updates["level"] = "super"
	}
	if resetStatus {
		updates["status"] = common.ENABLED
	}

	if err := a.gormDB.Model(&domain.SysOpr{}).Where("id = ?", operator.ID).Updates(updates).Error; err != nil {
		zap.L().Error("failed to repair super admin account", zap.Error(err))
		return
	}

	zap.L().Warn("repaired default super admin account",
		zap.String("username", superUsername),
		zap.Bool("passwordReset", resetPassword),
		zap.Bool("levelReset", resetLevel),
		zap.Bool("statusEnabled", resetStatus))
}

// checkSettings ensures the single settings row exists with the built-in
// defaults.
func (a *Application) checkSettings() {
	var count int64
	a.gormDB.Model(&domain.SiteSettingsRecord{}).
		Where("id = ?", domain.SiteSettingsRecordID).
		Count(&count)
	if count > 0 {
		return
	}
	rec := domain.SiteSettingsRecord{
		ID:   domain.SiteSettingsRecordID,
		Data: domain.DefaultSettings(),
	}
	if err := a.gormDB.Create(&rec).Error; err != nil {
		zap.L().Error("failed to initialize site settings", zap.Error(err))
	} else {
		zap.L().Info("initialized default site settings")
	}
}

// checkProducts initializes demo catalog entries on an empty store.
func (a *Application) checkProducts() {
	var count int64
	a.gormDB.Model(&domain.Product{}).Count(&count)
	if count > 0 {
		return
	}

	defaultProducts := []domain.Product{
		{
			Code:        "CUR001",
			Ean:         "7891234567890",
			Name:        "Turmeric Extract 500mg",
			Description: "Dry turmeric extract standardized to 95% curcuminoids.",
			Category:    "Supplements",
			Price:       45.90,
			InStock:     true,
		},
		{
			Code:        "OMG002",
			Name:        "Omega-3 Fish Oil 1000mg",
			Description: "High-concentration EPA/DHA soft capsules.",
			Category:    "Supplements",
			Price:       62.50,
			InStock:     true,
		},
	}

	for _, p := range defaultProducts {
		p.ID = common.UUIDint64()
		p.CreatedAt = time.Now()
		p.UpdatedAt = time.Now()
		if err := a.gormDB.Create(&p).Error; err != nil {
			zap.L().Error("failed to create default product", zap.String("code", p.Code), zap.Error(err))
		} else {
			zap.L().Info("initialized default product", zap.String("code", p.Code), zap.String("name", p.Name))
		}
	}
}

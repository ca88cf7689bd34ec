package db

import (
	"errors"

	"fleet/internal/models"

	"gorm.io/gorm"
)

// SeedHooks создаёт выключенные hook-строки для каждого модуля, если их нет.
// Отсутствие строки для диспетчера эквивалентно is_enable=false, но строка
// даёт администратору готовую запись для PUT /hooks/{module}.
func SeedHooks(db *gorm.DB) error {
	if db == nil {
		return nil
	}
	for _, module := range []string{models.HookModuleDevice, models.HookModuleGateway} {
		var h models.Hook
		err := db.First(&h, "module = ?", module).Error
		if err == nil {
			continue
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}
		if err := db.Create(&models.Hook{Module: module, IsEnable: false}).Error; err != nil {
			return err
		}
	}
	return nil
}

package models

import "time"

// Модули, для которых настраиваются webhook-и.
const (
	HookModuleDevice  = "Device"
	HookModuleGateway = "Gateway"
)

// Действия, о которых уведомляет диспетчер.
const (
	ActionCreated = "created"
	ActionUpdated = "updated"
	ActionDeleted = "deleted"
)

// Hook — конфигурация исходящего webhook-а, одна строка на модуль.
type Hook struct {
	Module    string    `gorm:"primaryKey;size:64" json:"module"`
	URL       string    `gorm:"column:url" json:"url"`
	IsEnable  bool      `json:"is_enable"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

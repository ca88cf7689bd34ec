package webhook

import (
	"fleet/internal/models"

	"gorm.io/gorm"
)

// Registry — таблица hooks: по одной строке на модуль (Device, Gateway).
type Registry struct{ db *gorm.DB }

func NewRegistry(db *gorm.DB) *Registry { return &Registry{db: db} }

// Lookup возвращает конфигурацию webhook-а модуля. Отсутствие строки —
// gorm.ErrRecordNotFound; для диспетчера это то же, что is_enable=false.
func (r *Registry) Lookup(module string) (*models.Hook, error) {
	var h models.Hook
	if err := r.db.First(&h, "module = ?", module).Error; err != nil {
		return nil, err
	}
	return &h, nil
}

func (r *Registry) Create(h *models.Hook) error { return r.db.Create(h).Error }
func (r *Registry) Save(h *models.Hook) error   { return r.db.Save(h).Error }
func (r *Registry) Delete(h *models.Hook) error { return r.db.Delete(h).Error }

func (r *Registry) List() ([]models.Hook, error) {
	var out []models.Hook
	err := r.db.Order("module").Find(&out).Error
	return out, err
}

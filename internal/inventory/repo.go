package inventory

import (
	"errors"

	"fleet/internal/models"

	"gorm.io/gorm"
)

// ErrTypeInUse — тип нельзя удалить, пока на него ссылаются устройства.
var ErrTypeInUse = errors.New("type is referenced by devices")

type Repo struct{ db *gorm.DB }

func NewRepo(db *gorm.DB) *Repo { return &Repo{db: db} }

// ── Types CRUD ───────────────────────────────────────────────

func (r *Repo) CreateType(t *models.Type) error { return r.db.Create(t).Error }
func (r *Repo) SaveType(t *models.Type) error   { return r.db.Save(t).Error }

func (r *Repo) GetType(id string) (*models.Type, error) {
	var t models.Type
	if err := r.db.First(&t, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &t, nil
}

func (r *Repo) ListTypes() ([]models.Type, error) {
	var out []models.Type
	err := r.db.Order("created_at").Find(&out).Error
	return out, err
}

// DeleteType отказывает, пока на тип ссылается хотя бы одно устройство:
// осиротевший type_id делал бы устройство необновляемым (схема резолвится
// по существующему типу при каждом update).
func (r *Repo) DeleteType(t *models.Type) error {
	var n int64
	if err := r.db.Model(&models.Device{}).Where("type_id = ?", t.ID).Count(&n).Error; err != nil {
		return err
	}
	if n > 0 {
		return ErrTypeInUse
	}
	return r.db.Delete(t).Error
}

// ── Devices CRUD ─────────────────────────────────────────────

func (r *Repo) CreateDevice(d *models.Device) error { return r.db.Create(d).Error }
func (r *Repo) SaveDevice(d *models.Device) error   { return r.db.Save(d).Error }
func (r *Repo) DeleteDevice(d *models.Device) error { return r.db.Delete(d).Error }

// GetDevice всегда подгружает связанный тип — он нужен и ответу API,
// и webhook-проекции.
func (r *Repo) GetDevice(id string) (*models.Device, error) {
	var d models.Device
	if err := r.db.Preload("Type").First(&d, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &d, nil
}

func (r *Repo) ListDevices() ([]models.Device, error) {
	var out []models.Device
	err := r.db.Preload("Type").Order("created_at").Find(&out).Error
	return out, err
}

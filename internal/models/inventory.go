package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// FieldSchema — объявленный набор ключей полей для устройств данного типа.
// Хранится в колонке types.fields как JSON {"fields": ["key", ...]}.
type FieldSchema struct {
	Fields []string `json:"fields"`
}

// KeySet возвращает ключи схемы как множество для проверки членства.
func (s FieldSchema) KeySet() map[string]struct{} {
	m := make(map[string]struct{}, len(s.Fields))
	for _, k := range s.Fields {
		m[k] = struct{}{}
	}
	return m
}

type Type struct {
	ID        string                          `gorm:"type:char(36);primaryKey" json:"id"`
	Name      string                          `json:"name"`
	Fields    datatypes.JSONType[FieldSchema] `json:"fields"`
	Notes     string                          `gorm:"type:text" json:"notes"`
	CreatedAt time.Time                       `json:"-"`
	UpdatedAt time.Time                       `json:"-"`

	Devices []Device `gorm:"foreignKey:TypeID" json:"-"`
}

func (t *Type) BeforeCreate(_ *gorm.DB) error {
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	return nil
}

type Device struct {
	ID           string            `gorm:"type:char(36);primaryKey" json:"id"`
	SerialNumber string            `gorm:"uniqueIndex" json:"serial_number"`
	TypeID       string            `gorm:"type:char(36);index" json:"-"`
	Fields       datatypes.JSONMap `json:"fields"`
	Notes        string            `gorm:"type:text" json:"notes"`
	CreatedAt    time.Time         `json:"-"`
	UpdatedAt    time.Time         `json:"-"`

	Type *Type `gorm:"foreignKey:TypeID" json:"type,omitempty"`
}

func (d *Device) BeforeCreate(_ *gorm.DB) error {
	if d.ID == "" {
		d.ID = uuid.NewString()
	}
	return nil
}

// FieldString достаёт строковое значение ключа из fields; отсутствие — "".
func (d *Device) FieldString(key string) string {
	if d.Fields == nil {
		return ""
	}
	if v, ok := d.Fields[key]; ok {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}

type Gateway struct {
	ID           string    `gorm:"type:char(36);primaryKey" json:"id"`
	SerialNumber string    `json:"serial_number"`
	Name         string    `json:"name"`
	Notes        string    `gorm:"type:text" json:"notes"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

func (g *Gateway) BeforeCreate(_ *gorm.DB) error {
	if g.ID == "" {
		g.ID = uuid.NewString()
	}
	return nil
}

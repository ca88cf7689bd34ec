package inventory

import (
	"fleet/internal/models"
)

// ── Gateways CRUD ────────────────────────────────────────────

func (r *Repo) CreateGateway(g *models.Gateway) error { return r.db.Create(g).Error }
func (r *Repo) SaveGateway(g *models.Gateway) error   { return r.db.Save(g).Error }
func (r *Repo) DeleteGateway(g *models.Gateway) error { return r.db.Delete(g).Error }

func (r *Repo) GetGateway(id string) (*models.Gateway, error) {
	var g models.Gateway
	if err := r.db.First(&g, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &g, nil
}

func (r *Repo) ListGateways() ([]models.Gateway, error) {
	var out []models.Gateway
	err := r.db.Order("created_at").Find(&out).Error
	return out, err
}

package inventory

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"fleet/internal/apiresp"
	"fleet/internal/auth"
	"fleet/internal/models"

	"github.com/gorilla/mux"
	"gorm.io/gorm"
)

type GatewayHTTP struct {
	repo   *Repo
	notify Notifier
	guard  *auth.Guard
}

func NewGatewayHTTP(r *Repo, n Notifier, g *auth.Guard) *GatewayHTTP {
	return &GatewayHTTP{repo: r, notify: n, guard: g}
}

func (h *GatewayHTTP) RegisterRoutes(r *mux.Router) {
	api := r.PathPrefix("/api/v1").Subrouter()

	api.HandleFunc("/gateways", h.guard.RequireRead(h.list)).Methods(http.MethodGet)
	api.HandleFunc("/gateways", h.guard.RequireWrite(h.create)).Methods(http.MethodPost)
	api.HandleFunc("/gateways/{id}", h.guard.RequireRead(h.show)).Methods(http.MethodGet)
	api.HandleFunc("/gateways/{id}", h.guard.RequireWrite(h.update)).Methods(http.MethodPut, http.MethodPatch)
	api.HandleFunc("/gateways/{id}", h.guard.RequireWrite(h.delete)).Methods(http.MethodDelete)
}

func (h *GatewayHTTP) list(w http.ResponseWriter, _ *http.Request) {
	gateways, err := h.repo.ListGateways()
	if err != nil {
		apiresp.Internal(w, err)
		return
	}
	apiresp.OK(w, map[string]any{"gateways": gateways})
}

func (h *GatewayHTTP) create(w http.ResponseWriter, r *http.Request) {
	var in struct {
		SerialNumber string `json:"serial_number"`
		Name         string `json:"name"`
		Notes        string `json:"notes"`
	}
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		apiresp.BadRequest(w, "invalid json")
		return
	}
	if in.SerialNumber == "" || in.Name == "" {
		apiresp.Unprocessable(w, "serial_number and name are required")
		return
	}

	g := &models.Gateway{
		SerialNumber: in.SerialNumber,
		Name:         in.Name,
		Notes:        in.Notes,
	}
	if err := h.repo.CreateGateway(g); err != nil {
		apiresp.Internal(w, err)
		return
	}

	h.notify.GatewayChanged(models.ActionCreated, g)
	apiresp.OK(w, map[string]any{"gateway": g})
}

func (h *GatewayHTTP) show(w http.ResponseWriter, r *http.Request) {
	g, err := h.repo.GetGateway(mux.Vars(r)["id"])
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			apiresp.NotFound(w)
			return
		}
		apiresp.Internal(w, err)
		return
	}
	apiresp.OK(w, map[string]any{"gateway": g})
}

func (h *GatewayHTTP) update(w http.ResponseWriter, r *http.Request) {
	var in struct {
		SerialNumber *string `json:"serial_number"`
		Name         *string `json:"name"`
		Notes        *string `json:"notes"`
	}
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil && !errors.Is(err, io.EOF) {
		apiresp.BadRequest(w, "invalid json")
		return
	}

	g, err := h.repo.GetGateway(mux.Vars(r)["id"])
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			apiresp.NotFound(w)
			return
		}
		apiresp.Internal(w, err)
		return
	}

	if in.SerialNumber != nil {
		g.SerialNumber = *in.SerialNumber
	}
	if in.Name != nil {
		g.Name = *in.Name
	}
	if in.Notes != nil {
		g.Notes = *in.Notes
	}

	if err := h.repo.SaveGateway(g); err != nil {
		apiresp.Internal(w, err)
		return
	}

	h.notify.GatewayChanged(models.ActionUpdated, g)
	apiresp.OK(w, map[string]any{"gateway": g})
}

func (h *GatewayHTTP) delete(w http.ResponseWriter, r *http.Request) {
	g, err := h.repo.GetGateway(mux.Vars(r)["id"])
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			apiresp.NotFound(w)
			return
		}
		apiresp.Internal(w, err)
		return
	}
	if err := h.repo.DeleteGateway(g); err != nil {
		apiresp.Internal(w, err)
		return
	}

	h.notify.GatewayChanged(models.ActionDeleted, g)
	apiresp.OK(w, nil)
}

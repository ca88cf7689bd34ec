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
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Notifier — контракт диспетчера webhook-ов; вызывается после записи в БД,
// результат доставки на ответ API не влияет.
type Notifier interface {
	DeviceChanged(action string, d *models.Device)
	GatewayChanged(action string, g *models.Gateway)
}

type HTTP struct {
	repo   *Repo
	notify Notifier
	guard  *auth.Guard
}

func NewHTTP(r *Repo, n Notifier, g *auth.Guard) *HTTP {
	return &HTTP{repo: r, notify: n, guard: g}
}

func (h *HTTP) RegisterRoutes(r *mux.Router) {
	api := r.PathPrefix("/api/v1").Subrouter()

	api.HandleFunc("/devices", h.guard.RequireRead(h.listDevices)).Methods(http.MethodGet)
	api.HandleFunc("/devices", h.guard.RequireWrite(h.createDevice)).Methods(http.MethodPost)
	api.HandleFunc("/devices/{id}", h.guard.RequireRead(h.showDevice)).Methods(http.MethodGet)
	api.HandleFunc("/devices/{id}", h.guard.RequireWrite(h.updateDevice)).Methods(http.MethodPut, http.MethodPatch)
	api.HandleFunc("/devices/{id}", h.guard.RequireWrite(h.deleteDevice)).Methods(http.MethodDelete)
}

func (h *HTTP) listDevices(w http.ResponseWriter, _ *http.Request) {
	devices, err := h.repo.ListDevices()
	if err != nil {
		apiresp.Internal(w, err)
		return
	}
	apiresp.OK(w, map[string]any{"devices": devices})
}

func (h *HTTP) createDevice(w http.ResponseWriter, r *http.Request) {
	var in struct {
		SerialNumber string          `json:"serial_number"`
		TypeID       string          `json:"type_id"`
		Fields       json.RawMessage `json:"fields"`
		Notes        string          `json:"notes"`
	}
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		apiresp.BadRequest(w, "invalid json")
		return
	}
	if in.SerialNumber == "" || in.TypeID == "" {
		apiresp.Unprocessable(w, "serial_number and type_id are required")
		return
	}

	typ, err := h.repo.GetType(in.TypeID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			apiresp.NotFound(w)
			return
		}
		apiresp.Internal(w, err)
		return
	}

	if err := ValidateFields(typ.Fields.Data(), in.Fields); err != nil {
		var ke *KeyError
		if errors.As(err, &ke) {
			apiresp.BadRequest(w, "Key not match")
			return
		}
		apiresp.BadRequest(w, err.Error())
		return
	}

	fields := datatypes.JSONMap{}
	if len(in.Fields) > 0 {
		if err := json.Unmarshal(in.Fields, &fields); err != nil {
			apiresp.BadRequest(w, "invalid fields")
			return
		}
	}

	d := &models.Device{
		SerialNumber: in.SerialNumber,
		TypeID:       typ.ID,
		Fields:       fields,
		Notes:        in.Notes,
	}
	if err := h.repo.CreateDevice(d); err != nil {
		apiresp.Internal(w, err)
		return
	}
	d.Type = typ

	h.notify.DeviceChanged(models.ActionCreated, d)
	apiresp.OK(w, map[string]any{"device": d})
}

func (h *HTTP) showDevice(w http.ResponseWriter, r *http.Request) {
	d, err := h.repo.GetDevice(mux.Vars(r)["id"])
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			apiresp.NotFound(w)
			return
		}
		apiresp.Internal(w, err)
		return
	}
	apiresp.OK(w, map[string]any{"device": d})
}

func (h *HTTP) updateDevice(w http.ResponseWriter, r *http.Request) {
	var in struct {
		SerialNumber *string         `json:"serial_number"`
		Fields       json.RawMessage `json:"fields"`
		Notes        *string         `json:"notes"`
	}
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil && !errors.Is(err, io.EOF) {
		apiresp.BadRequest(w, "invalid json")
		return
	}

	d, err := h.repo.GetDevice(mux.Vars(r)["id"])
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			apiresp.NotFound(w)
			return
		}
		apiresp.Internal(w, err)
		return
	}

	// Схема резолвится по существующему типу устройства: запрос сменить тип
	// не может.
	typ, err := h.repo.GetType(d.TypeID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			apiresp.NotFound(w)
			return
		}
		apiresp.Internal(w, err)
		return
	}

	if in.Fields != nil {
		if err := ValidateFields(typ.Fields.Data(), in.Fields); err != nil {
			var ke *KeyError
			if errors.As(err, &ke) {
				apiresp.BadRequest(w, "Key not match")
				return
			}
			apiresp.BadRequest(w, err.Error())
			return
		}
		fields := datatypes.JSONMap{}
		if err := json.Unmarshal(in.Fields, &fields); err != nil {
			apiresp.BadRequest(w, "invalid fields")
			return
		}
		// fields при обновлении заменяются целиком, не сливаются поключево
		d.Fields = fields
	}
	if in.SerialNumber != nil {
		d.SerialNumber = *in.SerialNumber
	}
	if in.Notes != nil {
		d.Notes = *in.Notes
	}

	if err := h.repo.SaveDevice(d); err != nil {
		apiresp.Internal(w, err)
		return
	}
	d.Type = typ

	h.notify.DeviceChanged(models.ActionUpdated, d)
	apiresp.OK(w, map[string]any{"device": d})
}

func (h *HTTP) deleteDevice(w http.ResponseWriter, r *http.Request) {
	d, err := h.repo.GetDevice(mux.Vars(r)["id"])
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			apiresp.NotFound(w)
			return
		}
		apiresp.Internal(w, err)
		return
	}
	if err := h.repo.DeleteDevice(d); err != nil {
		apiresp.Internal(w, err)
		return
	}

	h.notify.DeviceChanged(models.ActionDeleted, d)
	apiresp.OK(w, nil)
}

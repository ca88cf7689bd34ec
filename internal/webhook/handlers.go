package webhook

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

// HTTP — административный CRUD таблицы hooks. Мутации hooks webhook-ов
// не порождают.
type HTTP struct {
	reg   *Registry
	guard *auth.Guard
}

func NewHTTP(reg *Registry, g *auth.Guard) *HTTP {
	return &HTTP{reg: reg, guard: g}
}

func (h *HTTP) RegisterRoutes(r *mux.Router) {
	api := r.PathPrefix("/api/v1").Subrouter()

	api.HandleFunc("/hooks", h.guard.RequireRead(h.list)).Methods(http.MethodGet)
	api.HandleFunc("/hooks", h.guard.RequireWrite(h.create)).Methods(http.MethodPost)
	api.HandleFunc("/hooks/{module}", h.guard.RequireRead(h.show)).Methods(http.MethodGet)
	api.HandleFunc("/hooks/{module}", h.guard.RequireWrite(h.update)).Methods(http.MethodPut, http.MethodPatch)
	api.HandleFunc("/hooks/{module}", h.guard.RequireWrite(h.delete)).Methods(http.MethodDelete)
}

func (h *HTTP) list(w http.ResponseWriter, _ *http.Request) {
	hooks, err := h.reg.List()
	if err != nil {
		apiresp.Internal(w, err)
		return
	}
	apiresp.OK(w, map[string]any{"hooks": hooks})
}

func (h *HTTP) create(w http.ResponseWriter, r *http.Request) {
	var in struct {
		Module   string `json:"module"`
		URL      string `json:"url"`
		IsEnable bool   `json:"is_enable"`
	}
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		apiresp.BadRequest(w, "invalid json")
		return
	}
	if in.Module == "" || in.URL == "" {
		apiresp.Unprocessable(w, "module and url are required")
		return
	}
	if _, err := h.reg.Lookup(in.Module); err == nil {
		apiresp.BadRequest(w, "Module already exists")
		return
	}

	hook := &models.Hook{Module: in.Module, URL: in.URL, IsEnable: in.IsEnable}
	if err := h.reg.Create(hook); err != nil {
		apiresp.Internal(w, err)
		return
	}
	apiresp.OK(w, map[string]any{"hook": hook})
}

func (h *HTTP) show(w http.ResponseWriter, r *http.Request) {
	hook, err := h.reg.Lookup(mux.Vars(r)["module"])
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			apiresp.NotFound(w)
			return
		}
		apiresp.Internal(w, err)
		return
	}
	apiresp.OK(w, map[string]any{"hook": hook})
}

func (h *HTTP) update(w http.ResponseWriter, r *http.Request) {
	var in struct {
		URL      *string `json:"url"`
		IsEnable *bool   `json:"is_enable"`
		// module в теле игнорируется: ключ задаётся путём и неизменяем
	}
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil && !errors.Is(err, io.EOF) {
		apiresp.BadRequest(w, "invalid json")
		return
	}

	hook, err := h.reg.Lookup(mux.Vars(r)["module"])
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			apiresp.NotFound(w)
			return
		}
		apiresp.Internal(w, err)
		return
	}

	if in.URL != nil {
		hook.URL = *in.URL
	}
	if in.IsEnable != nil {
		hook.IsEnable = *in.IsEnable
	}

	if err := h.reg.Save(hook); err != nil {
		apiresp.Internal(w, err)
		return
	}
	apiresp.OK(w, map[string]any{"hook": hook})
}

func (h *HTTP) delete(w http.ResponseWriter, r *http.Request) {
	hook, err := h.reg.Lookup(mux.Vars(r)["module"])
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			apiresp.NotFound(w)
			return
		}
		apiresp.Internal(w, err)
		return
	}
	if err := h.reg.Delete(hook); err != nil {
		apiresp.Internal(w, err)
		return
	}
	apiresp.OK(w, nil)
}

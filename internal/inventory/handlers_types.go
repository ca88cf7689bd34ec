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

type TypeHTTP struct {
	repo  *Repo
	guard *auth.Guard
}

func NewTypeHTTP(r *Repo, g *auth.Guard) *TypeHTTP {
	return &TypeHTTP{repo: r, guard: g}
}

func (h *TypeHTTP) RegisterRoutes(r *mux.Router) {
	api := r.PathPrefix("/api/v1").Subrouter()

	api.HandleFunc("/types", h.guard.RequireRead(h.list)).Methods(http.MethodGet)
	api.HandleFunc("/types", h.guard.RequireWrite(h.create)).Methods(http.MethodPost)
	api.HandleFunc("/types/{id}", h.guard.RequireRead(h.show)).Methods(http.MethodGet)
	api.HandleFunc("/types/{id}", h.guard.RequireWrite(h.update)).Methods(http.MethodPut, http.MethodPatch)
	api.HandleFunc("/types/{id}", h.guard.RequireWrite(h.delete)).Methods(http.MethodDelete)
}

func (h *TypeHTTP) list(w http.ResponseWriter, _ *http.Request) {
	types, err := h.repo.ListTypes()
	if err != nil {
		apiresp.Internal(w, err)
		return
	}
	apiresp.OK(w, map[string]any{"types": types})
}

func (h *TypeHTTP) create(w http.ResponseWriter, r *http.Request) {
	var in struct {
		Name   string              `json:"name"`
		Fields *models.FieldSchema `json:"fields"`
		Notes  string              `json:"notes"`
	}
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		apiresp.BadRequest(w, "invalid json")
		return
	}
	if in.Name == "" || in.Fields == nil || in.Fields.Fields == nil {
		apiresp.Unprocessable(w, "name and fields are required")
		return
	}

	t := &models.Type{
		Name:   in.Name,
		Fields: datatypes.NewJSONType(*in.Fields),
		Notes:  in.Notes,
	}
	if err := h.repo.CreateType(t); err != nil {
		apiresp.Internal(w, err)
		return
	}
	apiresp.OK(w, map[string]any{"type": t})
}

func (h *TypeHTTP) show(w http.ResponseWriter, r *http.Request) {
	t, err := h.repo.GetType(mux.Vars(r)["id"])
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			apiresp.NotFound(w)
			return
		}
		apiresp.Internal(w, err)
		return
	}
	apiresp.OK(w, map[string]any{"type": t})
}

func (h *TypeHTTP) update(w http.ResponseWriter, r *http.Request) {
	var in struct {
		Name   *string             `json:"name"`
		Fields *models.FieldSchema `json:"fields"`
		Notes  *string             `json:"notes"`
	}
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil && !errors.Is(err, io.EOF) {
		apiresp.BadRequest(w, "invalid json")
		return
	}

	t, err := h.repo.GetType(mux.Vars(r)["id"])
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			apiresp.NotFound(w)
			return
		}
		apiresp.Internal(w, err)
		return
	}

	if in.Name != nil {
		t.Name = *in.Name
	}
	// Смена схемы не перепроверяет уже существующие устройства — осознанная
	// несогласованность; новые записи валидируются уже по новой схеме.
	if in.Fields != nil {
		t.Fields = datatypes.NewJSONType(*in.Fields)
	}
	if in.Notes != nil {
		t.Notes = *in.Notes
	}

	if err := h.repo.SaveType(t); err != nil {
		apiresp.Internal(w, err)
		return
	}
	apiresp.OK(w, map[string]any{"type": t})
}

func (h *TypeHTTP) delete(w http.ResponseWriter, r *http.Request) {
	t, err := h.repo.GetType(mux.Vars(r)["id"])
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			apiresp.NotFound(w)
			return
		}
		apiresp.Internal(w, err)
		return
	}
	if err := h.repo.DeleteType(t); err != nil {
		if errors.Is(err, ErrTypeInUse) {
			apiresp.BadRequest(w, "Type is in use")
			return
		}
		apiresp.Internal(w, err)
		return
	}
	apiresp.OK(w, nil)
}

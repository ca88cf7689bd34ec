package webhook

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"fleet/internal/models"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupRegistry(t *testing.T) *Registry {
	t.Helper()
	dsn := "file:" + uuid.NewString() + "?mode=memory&cache=shared"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	if err := db.AutoMigrate(&models.Hook{}); err != nil {
		t.Fatalf("automigrate: %v", err)
	}
	return NewRegistry(db)
}

// receiver — webhook-приёмник, запоминающий входящие вызовы.
type receiver struct {
	mu    sync.Mutex
	calls []receivedCall
	srv   *httptest.Server
}

type receivedCall struct {
	Method string
	Path   string
	Body   []byte
}

func newReceiver(t *testing.T) *receiver {
	t.Helper()
	rec := &receiver{}
	rec.srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		rec.mu.Lock()
		rec.calls = append(rec.calls, receivedCall{Method: r.Method, Path: r.URL.Path, Body: body})
		rec.mu.Unlock()
		w.WriteHeader(http.StatusOK)
	}))
	t.Cleanup(rec.srv.Close)
	return rec
}

func (r *receiver) snapshot() []receivedCall {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]receivedCall(nil), r.calls...)
}

func enableHook(t *testing.T, reg *Registry, module, url string) {
	t.Helper()
	if err := reg.Create(&models.Hook{Module: module, URL: url, IsEnable: true}); err != nil {
		t.Fatalf("create hook: %v", err)
	}
}

func testDevice() *models.Device {
	return &models.Device{
		SerialNumber: "SN-100",
		Fields: map[string]any{
			"name":      "probe-1",
			"ipaddress": "10.0.0.5",
			// manufacture отсутствует — должен уйти пустым
		},
		Type: &models.Type{Name: "sensor"},
	}
}

func TestDeviceCreatedDeliversProjection(t *testing.T) {
	reg := setupRegistry(t)
	rec := newReceiver(t)
	enableHook(t, reg, models.HookModuleDevice, rec.srv.URL)

	d := NewDispatcher(reg, time.Second)
	d.DeviceChanged(models.ActionCreated, testDevice())
	d.Flush()

	calls := rec.snapshot()
	if len(calls) != 1 {
		t.Fatalf("calls = %d, want 1 (exclusive branching)", len(calls))
	}
	if calls[0].Method != http.MethodPost {
		t.Fatalf("method = %s, want POST", calls[0].Method)
	}

	var payload map[string]string
	if err := json.Unmarshal(calls[0].Body, &payload); err != nil {
		t.Fatalf("payload: %v", err)
	}
	want := map[string]string{
		"id":          "SN-100",
		"name":        "probe-1",
		"type":        "sensor",
		"manufacture": "",
		"ipaddress":   "10.0.0.5",
	}
	for k, v := range want {
		if payload[k] != v {
			t.Fatalf("payload[%q] = %q, want %q (full: %v)", k, payload[k], v, payload)
		}
	}
}

func TestDeviceUpdatedUsesPUT(t *testing.T) {
	reg := setupRegistry(t)
	rec := newReceiver(t)
	enableHook(t, reg, models.HookModuleDevice, rec.srv.URL)

	d := NewDispatcher(reg, time.Second)
	d.DeviceChanged(models.ActionUpdated, testDevice())
	d.Flush()

	calls := rec.snapshot()
	if len(calls) != 1 || calls[0].Method != http.MethodPut {
		t.Fatalf("calls = %+v, want single PUT", calls)
	}
}

func TestDeviceDeletedAppendsSerialToPath(t *testing.T) {
	reg := setupRegistry(t)
	rec := newReceiver(t)
	enableHook(t, reg, models.HookModuleDevice, rec.srv.URL+"/notify")

	d := NewDispatcher(reg, time.Second)
	d.DeviceChanged(models.ActionDeleted, testDevice())
	d.Flush()

	calls := rec.snapshot()
	if len(calls) != 1 {
		t.Fatalf("calls = %d, want 1", len(calls))
	}
	c := calls[0]
	if c.Method != http.MethodDelete {
		t.Fatalf("method = %s, want DELETE", c.Method)
	}
	if c.Path != "/notify/SN-100" {
		t.Fatalf("path = %q, want /notify/SN-100", c.Path)
	}
	if len(c.Body) != 0 {
		t.Fatalf("delete must have no body, got %q", c.Body)
	}
}

func TestGatewayPayloadProjectsOwnColumns(t *testing.T) {
	reg := setupRegistry(t)
	rec := newReceiver(t)
	enableHook(t, reg, models.HookModuleGateway, rec.srv.URL)

	d := NewDispatcher(reg, time.Second)
	d.GatewayChanged(models.ActionCreated, &models.Gateway{
		SerialNumber: "GW-7", Name: "north", Notes: "roof",
	})
	d.Flush()

	calls := rec.snapshot()
	if len(calls) != 1 {
		t.Fatalf("calls = %d, want 1", len(calls))
	}
	var payload map[string]string
	if err := json.Unmarshal(calls[0].Body, &payload); err != nil {
		t.Fatalf("payload: %v", err)
	}
	if payload["id"] != "GW-7" || payload["name"] != "north" || payload["notes"] != "roof" {
		t.Fatalf("payload = %v", payload)
	}
}

func TestDisabledHookMakesNoCall(t *testing.T) {
	reg := setupRegistry(t)
	rec := newReceiver(t)
	if err := reg.Create(&models.Hook{
		Module: models.HookModuleDevice, URL: rec.srv.URL, IsEnable: false,
	}); err != nil {
		t.Fatalf("create hook: %v", err)
	}

	d := NewDispatcher(reg, time.Second)
	d.DeviceChanged(models.ActionCreated, testDevice())
	d.Flush()

	if calls := rec.snapshot(); len(calls) != 0 {
		t.Fatalf("calls = %d, want 0", len(calls))
	}
}

func TestMissingHookRowMakesNoCall(t *testing.T) {
	reg := setupRegistry(t)
	rec := newReceiver(t)
	// строки для Device нет вообще — эквивалент выключенного hook-а

	d := NewDispatcher(reg, time.Second)
	d.DeviceChanged(models.ActionCreated, testDevice())
	d.Flush()

	if calls := rec.snapshot(); len(calls) != 0 {
		t.Fatalf("calls = %d, want 0", len(calls))
	}
}

func TestUnreachableEndpointIsSwallowed(t *testing.T) {
	reg := setupRegistry(t)
	// порт 1 на loopback: мгновенный connection refused
	enableHook(t, reg, models.HookModuleDevice, "http://127.0.0.1:1/hook")

	d := NewDispatcher(reg, time.Second)
	d.DeviceChanged(models.ActionCreated, testDevice())
	d.Flush() // не должен ни паниковать, ни зависнуть
}

func TestNon2xxIsFailureButSilent(t *testing.T) {
	reg := setupRegistry(t)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	t.Cleanup(srv.Close)
	enableHook(t, reg, models.HookModuleDevice, srv.URL)

	d := NewDispatcher(reg, time.Second)
	d.DeviceChanged(models.ActionUpdated, testDevice())
	d.Flush()
}

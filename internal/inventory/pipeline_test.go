package inventory

import (
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"fleet/internal/auth"
	"fleet/internal/models"
	"fleet/internal/webhook"

	"github.com/gorilla/mux"
)

// setupPipeline собирает полный тракт: хендлеры + настоящий диспетчер.
func setupPipeline(t *testing.T, hook *models.Hook) (*mux.Router, *webhook.Dispatcher) {
	t.Helper()
	db := setupTestDB(t)
	repo := NewRepo(db)
	reg := webhook.NewRegistry(db)
	if hook != nil {
		if err := reg.Create(hook); err != nil {
			t.Fatalf("create hook: %v", err)
		}
	}
	disp := webhook.NewDispatcher(reg, time.Second)
	guard := auth.New("")

	r := mux.NewRouter()
	NewHTTP(repo, disp, guard).RegisterRoutes(r)
	NewTypeHTTP(repo, guard).RegisterRoutes(r)
	NewGatewayHTTP(repo, disp, guard).RegisterRoutes(r)
	return r, disp
}

func TestMutationSucceedsWhenWebhookEndpointUnreachable(t *testing.T) {
	r, disp := setupPipeline(t, &models.Hook{
		Module:   models.HookModuleDevice,
		URL:      "http://127.0.0.1:1/hook", // заведомо недостижим
		IsEnable: true,
	})

	typeID := createType(t, r, "temp")
	w, env := doJSON(t, r, http.MethodPost, "/api/v1/devices",
		`{"serial_number":"SN-NET","type_id":"`+typeID+`","fields":{"temp":"20"}}`)
	if w.Code != http.StatusOK || env.Status != "success" {
		t.Fatalf("mutation affected by webhook failure: %d %+v", w.Code, env)
	}
	disp.Flush() // ошибка доставки поглощается внутри диспетчера
}

func TestDisabledHookNoCallButMutationSucceeds(t *testing.T) {
	var calls int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		atomic.AddInt64(&calls, 1)
		w.WriteHeader(http.StatusOK)
	}))
	t.Cleanup(srv.Close)

	r, disp := setupPipeline(t, &models.Hook{
		Module:   models.HookModuleGateway,
		URL:      srv.URL,
		IsEnable: false,
	})

	w, env := doJSON(t, r, http.MethodPost, "/api/v1/gateways",
		`{"serial_number":"GW-OFF","name":"idle"}`)
	if w.Code != http.StatusOK || env.Status != "success" {
		t.Fatalf("mutation: %d %+v", w.Code, env)
	}
	disp.Flush()

	if n := atomic.LoadInt64(&calls); n != 0 {
		t.Fatalf("outbound calls = %d, want 0", n)
	}
}

func TestDeviceMutationDeliversToReceiver(t *testing.T) {
	type call struct {
		method string
		path   string
		body   string
	}
	ch := make(chan call, 4)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		b, _ := io.ReadAll(req.Body)
		ch <- call{method: req.Method, path: req.URL.Path, body: string(b)}
		w.WriteHeader(http.StatusOK)
	}))
	t.Cleanup(srv.Close)

	r, disp := setupPipeline(t, &models.Hook{
		Module:   models.HookModuleDevice,
		URL:      srv.URL + "/devices",
		IsEnable: true,
	})

	typeID := createType(t, r, "name", "manufacture", "ipaddress")
	d := createDevice(t, r, typeID, "SN-E2E", `{"name":"probe","ipaddress":"10.0.0.9"}`)
	disp.Flush()

	got := <-ch
	if got.method != http.MethodPost || got.path != "/devices" {
		t.Fatalf("create call = %+v", got)
	}

	if w, _ := doJSON(t, r, http.MethodDelete, "/api/v1/devices/"+d.ID, ""); w.Code != http.StatusOK {
		t.Fatalf("delete: %d", w.Code)
	}
	disp.Flush()

	got = <-ch
	if got.method != http.MethodDelete || got.path != "/devices/SN-E2E" || got.body != "" {
		t.Fatalf("delete call = %+v", got)
	}
}

package webhook

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"fleet/internal/logs"
	"fleet/internal/metrics"
	"fleet/internal/models"
)

const defaultTimeout = 5 * time.Second

// Dispatcher доставляет уведомления о мутациях по настроенным webhook-ам.
// Каждая доставка — одна попытка в отдельной горутине: ни ошибки сети, ни
// не-2xx статусы до вызывающего не доходят. Ретраев нет.
type Dispatcher struct {
	reg    *Registry
	client *http.Client
	wg     sync.WaitGroup
}

func NewDispatcher(reg *Registry, timeout time.Duration) *Dispatcher {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Dispatcher{
		reg:    reg,
		client: &http.Client{Timeout: timeout},
	}
}

func (d *Dispatcher) DeviceChanged(action string, dev *models.Device) {
	d.dispatch(models.HookModuleDevice, action, devicePayload(dev), dev.SerialNumber)
}

func (d *Dispatcher) GatewayChanged(action string, g *models.Gateway) {
	d.dispatch(models.HookModuleGateway, action, gatewayPayload(g), g.SerialNumber)
}

// Flush дожидается завершения всех запущенных доставок (для тестов и
// graceful shutdown).
func (d *Dispatcher) Flush() { d.wg.Wait() }

func (d *Dispatcher) dispatch(module, action string, payload any, serial string) {
	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		d.deliver(module, action, payload, serial)
	}()
}

func (d *Dispatcher) deliver(module, action string, payload any, serial string) {
	hook, err := d.reg.Lookup(module)
	if err != nil || !hook.IsEnable {
		// нет строки или выключен — тихо выходим без сетевого вызова
		metrics.WebhookDeliveries.WithLabelValues(module, action, "skipped").Inc()
		return
	}

	req, err := buildRequest(hook.URL, action, payload, serial)
	if err != nil {
		logs.Logger.Warnf("webhook %s %s error %v", module, action, err)
		metrics.WebhookDeliveries.WithLabelValues(module, action, "failed").Inc()
		return
	}

	resp, err := d.client.Do(req)
	if err != nil {
		logs.Logger.Warnf("webhook %s %s error %v", module, action, err)
		metrics.WebhookDeliveries.WithLabelValues(module, action, "failed").Inc()
		return
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		logs.Logger.Warnf("webhook %s %s error status %d: %s", module, action, resp.StatusCode, body)
		metrics.WebhookDeliveries.WithLabelValues(module, action, "failed").Inc()
		return
	}

	logs.Logger.Debugf("webhook %s %s delivered: %d %s", module, action, resp.StatusCode, body)
	metrics.WebhookDeliveries.WithLabelValues(module, action, "delivered").Inc()
}

// buildRequest: POST при создании, PUT при обновлении — JSON-тело;
// DELETE — без тела, серийный номер добавляется к пути.
func buildRequest(url, action string, payload any, serial string) (*http.Request, error) {
	switch action {
	case models.ActionCreated, models.ActionUpdated:
		b, err := json.Marshal(payload)
		if err != nil {
			return nil, err
		}
		method := http.MethodPost
		if action == models.ActionUpdated {
			method = http.MethodPut
		}
		req, err := http.NewRequest(method, url, bytes.NewReader(b))
		if err != nil {
			return nil, err
		}
		req.Header.Set("Content-Type", "application/json")
		return req, nil
	case models.ActionDeleted:
		return http.NewRequest(http.MethodDelete, strings.TrimSuffix(url, "/")+"/"+serial, nil)
	default:
		return nil, fmt.Errorf("unknown action %q", action)
	}
}

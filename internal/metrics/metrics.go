package metrics

import (
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// HTTPRequests — счётчик запросов по методу/пути/статусу.
	HTTPRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "fleet_http_requests_total",
		Help: "HTTP requests processed.",
	}, []string{"method", "path", "status"})

	// WebhookDeliveries — исходы доставки webhook-ов.
	// outcome: delivered | failed | skipped
	WebhookDeliveries = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "fleet_webhook_deliveries_total",
		Help: "Webhook delivery attempts by module, action and outcome.",
	}, []string{"module", "action", "outcome"})
)

func RegisterRoutes(r *mux.Router) {
	r.Handle("/metrics", promhttp.Handler()).Methods(http.MethodGet)
}

type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}

// Middleware считает запросы по шаблону маршрута, не по сырому пути,
// чтобы не раздувать кардинальность метрики идентификаторами.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sw := &statusWriter{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(sw, r)

		path := r.URL.Path
		if route := mux.CurrentRoute(r); route != nil {
			if tpl, err := route.GetPathTemplate(); err == nil {
				path = tpl
			}
		}
		HTTPRequests.WithLabelValues(r.Method, path, strconv.Itoa(sw.status)).Inc()
	})
}

package metrics

import (
	"fmt"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/graphwire/golang-bolt5-driver/log"
)

var (
	// Connection lifecycle metrics
	ConnectionsActive = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "bolt_connections_active",
		Help: "The current number of open bolt connections.",
	})
	ConnectionsCreated = promauto.NewCounter(prometheus.CounterOpts{
		Name: "bolt_connections_created_total",
		Help: "The total number of bolt connections established.",
	})
	ConnectionsDestroyed = promauto.NewCounter(prometheus.CounterOpts{
		Name: "bolt_connections_destroyed_total",
		Help: "The total number of bolt connections closed.",
	})
	StaleEvictions = promauto.NewCounter(prometheus.CounterOpts{
		Name: "bolt_connections_stale_evicted_total",
		Help: "The total number of connections the pool refused to reuse because they went stale.",
	})
	DefunctEvictions = promauto.NewCounter(prometheus.CounterOpts{
		Name: "bolt_connections_defunct_evicted_total",
		Help: "The total number of connections the pool refused to reuse because of an unrecoverable error.",
	})

	// Message volume metrics
	MessagesSent = promauto.NewCounter(prometheus.CounterOpts{
		Name: "bolt_messages_sent_total",
		Help: "The total number of protocol messages flushed to servers.",
	})
	MessagesReceived = promauto.NewCounter(prometheus.CounterOpts{
		Name: "bolt_messages_received_total",
		Help: "The total number of protocol messages received from servers.",
	})

	// Handshake metrics
	AuthFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "bolt_auth_failures_total",
		Help: "The total number of FAILURE responses during authentication handshakes.",
	})
)

// StartServer starts the HTTP server for Prometheus metrics.
func StartServer(port int, path string) {
	http.Handle(path, promhttp.Handler())

	addr := fmt.Sprintf(":%d", port)
	log.Infof("Starting metrics server on %s%s", addr, path)
	go func() {
		if err := http.ListenAndServe(addr, nil); err != nil {
			log.Errorf("Metrics server failed: %s", err)
		}
	}()
}

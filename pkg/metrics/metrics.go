package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

const subsystem = "payments"

// Metrics holds the service's prometheus collectors.
type Metrics struct {
	registry *prometheus.Registry

	PaymentsInitiated *prometheus.CounterVec
	PaymentsTerminal  *prometheus.CounterVec
	ProviderDuration  *prometheus.HistogramVec
	PollTicks         prometheus.Counter
	WatchesActive     prometheus.Gauge
}

func New() *Metrics {
	m := &Metrics{registry: prometheus.NewRegistry()}

	m.PaymentsInitiated = prometheus.NewCounterVec(prometheus.CounterOpts{
		Subsystem: subsystem,
		Name:      "initiated_total",
		Help:      "Transactions created on the backend, by payment method.",
	}, []string{"method"})

	m.PaymentsTerminal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Subsystem: subsystem,
		Name:      "terminal_total",
		Help:      "Transactions observed reaching a terminal status.",
	}, []string{"status"})

	m.ProviderDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Subsystem: subsystem,
		Name:      "provider_call_duration_ms",
		Help:      "Duration of provider dispatch calls in milliseconds.",
		Buckets:   HistogramBuckets,
	}, []string{"method"})

	m.PollTicks = prometheus.NewCounter(prometheus.CounterOpts{
		Subsystem: subsystem,
		Name:      "poll_ticks_total",
		Help:      "Status poll attempts against the backend.",
	})

	m.WatchesActive = prometheus.NewGauge(prometheus.GaugeOpts{
		Subsystem: subsystem,
		Name:      "watches_active",
		Help:      "Currently running status watches.",
	})

	m.registry.MustRegister(
		m.PaymentsInitiated,
		m.PaymentsTerminal,
		m.ProviderDuration,
		m.PollTicks,
		m.WatchesActive,
	)
	return m
}

// Handler exposes the registry for scraping.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Serve starts a side HTTP listener for /metrics, the way the main API keeps
// scrape traffic off the public port.
func (m *Metrics) Serve(addr string, log *zap.SugaredLogger) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", m.Handler())
	go func() {
		if err := http.ListenAndServe(addr, mux); err != nil {
			log.Errorf("metrics listener error: %v", err)
		}
	}()
	log.Infow("metrics started", "addr", addr)
}

var Module = fx.Options(
	fx.Provide(New),
)

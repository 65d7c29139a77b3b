package main

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/tr4cks/picled/led"
)

var buckets = []float64{.0001, .0005, .001, .005, .01, .05, .1}

var _ prometheus.Collector = (*metrics)(nil)

type metrics struct {
	ledOn           prometheus.Gauge
	toggles         *prometheus.CounterVec
	requestCounter  *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
}

func newMetrics() *metrics {
	return &metrics{
		ledOn: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "picled_led_on",
			Help: "1 if the LED was last switched on, 0 otherwise.",
		}),
		toggles: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "picled_toggles_total",
				Help: "Number of toggle attempts by result.",
			},
			[]string{"result"},
		),
		requestCounter: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "picled_http_requests_total",
				Help: "A counter for requests to the wrapped handler.",
			},
			[]string{"code", "method"},
		),
		requestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "picled_http_request_duration_seconds",
				Help:    "A histogram of latencies for requests.",
				Buckets: buckets,
			},
			[]string{"code", "method"},
		),
	}
}

func (m *metrics) Describe(ch chan<- *prometheus.Desc) {
	m.ledOn.Describe(ch)
	m.toggles.Describe(ch)
	m.requestCounter.Describe(ch)
	m.requestDuration.Describe(ch)
}

func (m *metrics) Collect(ch chan<- prometheus.Metric) {
	m.ledOn.Collect(ch)
	m.toggles.Collect(ch)
	m.requestCounter.Collect(ch)
	m.requestDuration.Collect(ch)
}

// Observe is subscribed to the controller.
func (m *metrics) Observe(ev led.Event) {
	if ev.Err != nil {
		m.toggles.WithLabelValues("failure").Inc()
		return
	}
	m.toggles.WithLabelValues("success").Inc()
	if ev.State.On {
		m.ledOn.Set(1)
	} else {
		m.ledOn.Set(0)
	}
}

func (m *metrics) ServerMiddleware(next http.Handler) http.Handler {
	return promhttp.InstrumentHandlerCounter(m.requestCounter,
		promhttp.InstrumentHandlerDuration(m.requestDuration,
			next,
		),
	)
}

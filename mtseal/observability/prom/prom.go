package prom

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/TheusHen/mtseal/mtseal/observability"
)

// NewRegistry returns a fresh Prometheus registry.
func NewRegistry() *prometheus.Registry {
	return prometheus.NewRegistry()
}

// Handler returns a Prometheus HTTP handler bound to the registry.
func Handler(reg *prometheus.Registry) http.Handler {
	return promhttp.HandlerFor(reg, promhttp.HandlerOpts{})
}

// FrameObserver exports frame metrics to Prometheus.
type FrameObserver struct {
	builtTotal   *prometheus.CounterVec
	frameBytes   prometheus.Histogram
	buildLatency prometheus.Histogram
	failedTotal  *prometheus.CounterVec
	sendTotal    *prometheus.CounterVec
}

// NewFrameObserver registers frame metrics on the registry.
func NewFrameObserver(reg *prometheus.Registry) *FrameObserver {
	o := &FrameObserver{
		builtTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "mtseal_frames_built_total",
			Help: "Encrypted frames built, by fingerprint source.",
		}, []string{"source"}),
		frameBytes: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "mtseal_frame_bytes",
			Help:    "Size of built frames.",
			Buckets: prometheus.ExponentialBuckets(64, 2, 12),
		}),
		buildLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "mtseal_frame_build_seconds",
			Help:    "Time spent building one frame.",
			Buckets: prometheus.DefBuckets,
		}),
		failedTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "mtseal_frame_build_failures_total",
			Help: "Frame construction failures by stage.",
		}, []string{"stage"}),
		sendTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "mtseal_sends_total",
			Help: "Send outcomes.",
		}, []string{"result"}),
	}
	reg.MustRegister(
		o.builtTotal,
		o.frameBytes,
		o.buildLatency,
		o.failedTotal,
		o.sendTotal,
	)
	return o
}

func (o *FrameObserver) FrameBuilt(source string, size int, d time.Duration) {
	o.builtTotal.WithLabelValues(source).Inc()
	o.frameBytes.Observe(float64(size))
	o.buildLatency.Observe(d.Seconds())
}

func (o *FrameObserver) BuildFailed(stage observability.Stage) {
	o.failedTotal.WithLabelValues(string(stage)).Inc()
}

func (o *FrameObserver) Send(result observability.SendResult) {
	o.sendTotal.WithLabelValues(string(result)).Inc()
}

var _ observability.FrameObserver = (*FrameObserver)(nil)

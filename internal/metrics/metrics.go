package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	trackedBeacons = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "ble2wled_tracked_beacons",
			Help: "Number of beacons currently tracked, fading ones included.",
		},
	)

	lastTick = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "ble2wled_last_tick_timestamp_seconds",
			Help: "Unix time of the last completed animation tick.",
		},
	)

	framesTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "ble2wled_frames_total",
			Help: "Total number of frames handed to the output sink.",
		},
	)

	sinkFailuresTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "ble2wled_sink_failures_total",
			Help: "Total number of frames the output sink failed to deliver.",
		},
	)

	skippedTicksTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "ble2wled_skipped_ticks_total",
			Help: "Ticks skipped because a previous tick overran the interval.",
		},
	)

	telemetryTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ble2wled_telemetry_messages_total",
			Help: "Beacon observations accepted, by source.",
		},
		[]string{"source"},
	)

	telemetryDroppedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ble2wled_telemetry_dropped_total",
			Help: "Telemetry messages rejected before reaching the store, by reason.",
		},
		[]string{"reason"},
	)

	tickDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "ble2wled_tick_duration_seconds",
			Help:    "Time spent building and delivering one frame.",
			Buckets: []float64{.0005, .001, .0025, .005, .01, .025, .05, .1, .25, .5},
		},
	)
)

func init() {
	prometheus.MustRegister(trackedBeacons)
	prometheus.MustRegister(lastTick)
	prometheus.MustRegister(framesTotal)
	prometheus.MustRegister(sinkFailuresTotal)
	prometheus.MustRegister(skippedTicksTotal)
	prometheus.MustRegister(telemetryTotal)
	prometheus.MustRegister(telemetryDroppedTotal)
	prometheus.MustRegister(tickDuration)
}

// ObserveTick records a completed animation tick.
func ObserveTick(at time.Time, beacons int, took time.Duration, delivered bool) {
	trackedBeacons.Set(float64(beacons))
	lastTick.Set(float64(at.UnixNano()) / 1e9)
	tickDuration.Observe(took.Seconds())
	framesTotal.Inc()
	if !delivered {
		sinkFailuresTotal.Inc()
	}
}

// AddSkippedTicks counts ticks dropped to keep the cadence.
func AddSkippedTicks(n int) {
	skippedTicksTotal.Add(float64(n))
}

// IncTelemetry counts one accepted observation from source.
func IncTelemetry(source string) {
	telemetryTotal.WithLabelValues(source).Inc()
}

// IncTelemetryDropped counts one rejected telemetry message.
func IncTelemetryDropped(reason string) {
	telemetryDroppedTotal.WithLabelValues(reason).Inc()
}

package metrics

import (
	"log"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Collector struct {
	reg *prometheus.Registry

	ViewSwitches   *prometheus.CounterVec // view label
	Renders        *prometheus.CounterVec // view, kind label: full|partial|panel
	SkippedRegions prometheus.Counter
	LiveCharts     prometheus.Gauge

	MutatorTicks  prometheus.Counter
	TrainAdvances prometheus.Counter
	TickDuration  prometheus.Histogram
	PassengerLoad prometheus.Gauge
	Punctuality   prometheus.Gauge

	SimulationsStarted prometheus.Counter
	SimulationsIgnored prometheus.Counter
	SimulationRunning  prometheus.Gauge

	NATSPublished   prometheus.Counter
	NATSPublishErrs prometheus.Counter
	NATSConnected   prometheus.Gauge
	PublishDuration prometheus.Histogram

	MutateInterval    prometheus.Gauge // seconds
	ClockInterval     prometheus.Gauge // seconds
	SimulationLatency prometheus.Gauge // seconds
}

func NewCollector(mutateInterval, clockInterval, simulationLatency time.Duration) *Collector {
	reg := prometheus.NewRegistry()

	c := &Collector{
		reg: reg,
		ViewSwitches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "twin_view_switches_total",
			Help: "View transitions by target view.",
		}, []string{"view"}),
		Renders: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "twin_renders_total",
			Help: "Frames applied to the surface.",
		}, []string{"view", "kind"}),
		SkippedRegions: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "twin_skipped_regions_total",
			Help: "Render instructions skipped because the target region was not mounted.",
		}),
		LiveCharts: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "twin_live_charts",
			Help: "Charts currently bound to a slot.",
		}),
		MutatorTicks: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "twin_mutator_ticks_total",
			Help: "Periodic mutator ticks.",
		}),
		TrainAdvances: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "twin_train_advances_total",
			Help: "Trains moved to the next station by the mutator.",
		}),
		TickDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "twin_tick_duration_seconds",
			Help:    "Duration of a mutator tick including re-render.",
			Buckets: prometheus.ExponentialBuckets(0.0001, 2, 15),
		}),
		PassengerLoad: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "twin_passenger_load",
			Help: "Current passenger load.",
		}),
		Punctuality: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "twin_punctuality_percent",
			Help: "Current punctuality percentage.",
		}),
		SimulationsStarted: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "twin_simulations_started_total",
			Help: "Simulation runs started.",
		}),
		SimulationsIgnored: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "twin_simulations_ignored_total",
			Help: "Run requests ignored because a run was in progress.",
		}),
		SimulationRunning: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "twin_simulation_running",
			Help: "1 while a simulation run is in progress.",
		}),
		NATSPublished: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "twin_nats_published_total",
			Help: "Total NATS messages published.",
		}),
		NATSPublishErrs: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "twin_nats_publish_errors_total",
			Help: "Total NATS publish errors.",
		}),
		NATSConnected: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "twin_nats_connected",
			Help: "1 if NATS connection is established, 0 otherwise.",
		}),
		PublishDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "twin_publish_duration_seconds",
			Help:    "Duration to marshal and publish a NATS message.",
			Buckets: prometheus.ExponentialBuckets(0.0005, 2, 15),
		}),
		MutateInterval: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "twin_mutate_interval_seconds",
			Help: "Periodic mutator interval in seconds.",
		}),
		ClockInterval: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "twin_clock_interval_seconds",
			Help: "Clock refresh interval in seconds.",
		}),
		SimulationLatency: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "twin_simulation_latency_seconds",
			Help: "Fixed simulation latency in seconds.",
		}),
	}

	reg.MustRegister(
		c.ViewSwitches, c.Renders, c.SkippedRegions, c.LiveCharts,
		c.MutatorTicks, c.TrainAdvances, c.TickDuration, c.PassengerLoad, c.Punctuality,
		c.SimulationsStarted, c.SimulationsIgnored, c.SimulationRunning,
		c.NATSPublished, c.NATSPublishErrs, c.NATSConnected, c.PublishDuration,
		c.MutateInterval, c.ClockInterval, c.SimulationLatency,
	)

	c.MutateInterval.Set(mutateInterval.Seconds())
	c.ClockInterval.Set(clockInterval.Seconds())
	c.SimulationLatency.Set(simulationLatency.Seconds())

	return c
}

func (c *Collector) Handler() http.Handler { return promhttp.HandlerFor(c.reg, promhttp.HandlerOpts{}) }

// Serve starts an HTTP server exposing /metrics on the given address.
func (c *Collector) Serve(addr string) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", c.Handler())
	srv := &http.Server{Addr: addr, Handler: mux}
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Printf("metrics server error: %v", err)
		}
	}()
	log.Printf("metrics listening on %s", addr)
	return srv
}

package main

import (
	"context"
	"log"
	"math/rand"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"metro-twin/internal/api"
	"metro-twin/internal/config"
	"metro-twin/internal/db"
	"metro-twin/internal/feed"
	"metro-twin/internal/metrics"
	"metro-twin/internal/publisher"
	"metro-twin/internal/sched"
	"metro-twin/internal/sim"
	"metro-twin/internal/surface"
	"metro-twin/internal/twin"
	"metro-twin/internal/view"
)

func main() {
	// Load configuration from .env and environment
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}

	// Root context with cancellation on SIGINT/SIGTERM
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	data, err := loadModel(ctx, cfg)
	if err != nil {
		log.Fatalf("load model: %v", err)
	}
	log.Printf("model loaded: %d stations, %d trains", len(data.Stations), len(data.Trains))

	// Metrics setup
	var mcol *metrics.Collector
	var metricsSrv *http.Server
	if cfg.MetricsAddr != "" {
		mcol = metrics.NewCollector(cfg.MutateInterval, cfg.ClockInterval, cfg.SimulationLatency)
		metricsSrv = mcol.Serve(cfg.MetricsAddr)
	}

	// NATS publisher is optional
	var pub *publisher.NATSPublisher
	if cfg.NATSURL != "" {
		pub, err = publisher.NewNATSPublisher(cfg.NATSURL, cfg.NATSSubjectPrefix, cfg.LogNATSSubjects, wrapPublisherMetrics(mcol))
		if err != nil {
			log.Fatalf("nats error: %v", err)
		}
		defer pub.Close()
	}

	opts := []view.Option{view.WithFleetSeed(cfg.FleetSeed), view.WithLocation(cfg.Location)}
	if mcol != nil {
		opts = append(opts, view.WithMetrics(mcol))
	}
	if pub != nil {
		opts = append(opts, view.WithPublisher(pub))
	}
	surf := surface.NewDashboard()
	ctrl := view.New(data, surf, opts...)

	seed := cfg.RandomSeed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	rng := rand.New(rand.NewSource(seed))

	loop := sched.NewLoop(64)
	loopDone := make(chan struct{})
	go func() {
		loop.Run(ctx)
		close(loopDone)
	}()

	mutator := sim.NewMutator(data, rng, sim.MutatorOptions{
		AdvanceProbability: cfg.AdvanceProbability,
		LoadStep:           100,
		PunctualityStep:    0.1,
	}, mcol)
	clock := sim.NewClock(loop, cfg.ClockInterval, ctrl.ShowTime)
	runner := sim.NewRunner(loop, rng, ctrl, cfg.SimulationLatency, mcol)
	mgr := sim.NewManager(loop, mutator, clock, runner, cfg.MutateInterval, func(fields twin.Field) {
		ctrl.Refresh(fields)
		if pub != nil {
			if err := pub.PublishVehiclePositions(feed.VehiclePositions(data, loop.Now())); err != nil {
				log.Printf("publish vehicle positions: %v", err)
			}
		}
	})

	if err := loop.Do(ctx, func() {
		ctrl.Init()
		mgr.Start()
	}); err != nil {
		log.Fatalf("start: %v", err)
	}

	apiSrv := api.NewServer(loop, ctrl, surf, runner, cfg.AllowedOrigins).Serve(cfg.HTTPAddr)

	// Block until context cancelled
	<-ctx.Done()
	mgr.Stop()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer shutdownCancel()
	_ = apiSrv.Shutdown(shutdownCtx)
	if metricsSrv != nil {
		_ = metricsSrv.Shutdown(shutdownCtx)
	}
	<-loopDone
	log.Println("shutdown complete")
}

// loadModel reads the seed database when one is configured and the
// built-in seed otherwise.
func loadModel(ctx context.Context, cfg *config.Config) (*twin.Data, error) {
	if cfg.SeedDSN == "" {
		return twin.SeedSource{}.Load(ctx)
	}
	dsn := cfg.SeedDSN
	if cfg.SeedDBName != "" {
		var err error
		if dsn, err = db.WithDBName(dsn, cfg.SeedDBName); err != nil {
			return nil, err
		}
	}
	sqlDB, err := db.Open(dsn)
	if err != nil {
		return nil, err
	}
	defer sqlDB.Close()
	if err := db.Ping(ctx, sqlDB); err != nil {
		return nil, err
	}
	log.Printf("loading model from %s seed database", db.Driver(dsn))
	return db.NewSource(sqlDB).Load(ctx)
}

// wrapPublisherMetrics adapts our Collector to the PublisherMetrics interface.
func wrapPublisherMetrics(c *metrics.Collector) publisher.PublisherMetrics {
	if c == nil {
		return nil
	}
	return &pubMetrics{c: c}
}

type pubMetrics struct{ c *metrics.Collector }

func (p *pubMetrics) NATSPublishedInc()              { p.c.NATSPublished.Inc() }
func (p *pubMetrics) NATSPublishErrInc()             { p.c.NATSPublishErrs.Inc() }
func (p *pubMetrics) PublishObserve(d time.Duration) { p.c.PublishDuration.Observe(d.Seconds()) }
func (p *pubMetrics) NATSSetConnected(b bool) {
	if b {
		p.c.NATSConnected.Set(1)
	} else {
		p.c.NATSConnected.Set(0)
	}
}

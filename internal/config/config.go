package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	SeedDSN            string
	SeedDBName         string
	NATSURL            string
	NATSSubjectPrefix  string
	LogNATSSubjects    bool
	MetricsAddr        string
	HTTPAddr           string
	AllowedOrigins     []string
	MutateInterval     time.Duration
	ClockInterval      time.Duration
	SimulationLatency  time.Duration
	AdvanceProbability float64
	RandomSeed         int64
	FleetSeed          int64
	Location           *time.Location
}

func Load() (*Config, error) {
	// Load .env into environment (ignore if missing)
	_ = godotenv.Load()

	cfg := &Config{}

	// Optional seed database. Empty serves the built-in seed.
	cfg.SeedDSN = firstNonEmpty(os.Getenv("SEED_DSN"), os.Getenv("DATABASE_URL"))
	// Selects a database on the same Postgres cluster, e.g. one per line.
	cfg.SeedDBName = strings.TrimSpace(os.Getenv("SEED_DB_NAME"))

	// Empty NATS_URL disables publishing
	cfg.NATSURL = strings.TrimSpace(os.Getenv("NATS_URL"))
	cfg.NATSSubjectPrefix = getenvDefault("NATS_SUBJECT_PREFIX", "twin")
	cfg.LogNATSSubjects = parseBool(os.Getenv("LOG_NATS_SUBJECTS"))

	// Metrics listen address (e.g., ":9102"). Empty disables the metrics server.
	cfg.MetricsAddr = os.Getenv("METRICS_ADDR")
	cfg.HTTPAddr = getenvDefault("HTTP_ADDR", ":8080")

	origins := getenvDefault("ALLOWED_ORIGINS", "*")
	for _, o := range strings.Split(origins, ",") {
		if o = strings.TrimSpace(o); o != "" {
			cfg.AllowedOrigins = append(cfg.AllowedOrigins, o)
		}
	}

	var err error
	if cfg.MutateInterval, err = durationMS("MUTATE_INTERVAL_MS", 5000); err != nil {
		return nil, err
	}
	if cfg.ClockInterval, err = durationMS("CLOCK_INTERVAL_MS", 1000); err != nil {
		return nil, err
	}
	if cfg.SimulationLatency, err = durationMS("SIMULATION_LATENCY_MS", 3000); err != nil {
		return nil, err
	}

	if v := os.Getenv("ADVANCE_PROBABILITY"); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil || f < 0 || f > 1 {
			return nil, fmt.Errorf("invalid ADVANCE_PROBABILITY: %q", v)
		}
		cfg.AdvanceProbability = f
	} else {
		cfg.AdvanceProbability = 0.3
	}

	// 0 seeds from the wall clock at startup
	if cfg.RandomSeed, err = int64Env("RANDOM_SEED", 0); err != nil {
		return nil, err
	}
	if cfg.FleetSeed, err = int64Env("FLEET_SEED", 1); err != nil {
		return nil, err
	}

	// Time zone for the header clock
	loc, err := time.LoadLocation(getenvDefault("TZ", "Asia/Kolkata"))
	if err != nil {
		return nil, fmt.Errorf("invalid TZ: %v", err)
	}
	cfg.Location = loc

	return cfg, nil
}

func durationMS(key string, def int) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return time.Duration(def) * time.Millisecond, nil
	}
	ms, err := strconv.Atoi(v)
	if err != nil || ms <= 0 {
		return 0, fmt.Errorf("invalid %s: %q", key, v)
	}
	return time.Duration(ms) * time.Millisecond, nil
}

func int64Env(key string, def int64) (int64, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %q", key, v)
	}
	return n, nil
}

func parseBool(v string) bool {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "1", "true", "t", "yes", "y", "on":
		return true
	}
	return false
}

func getenvDefault(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}

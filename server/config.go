package main

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"matchup-arena/server/tracker"
)

// config is everything main reads from the environment.
type config struct {
	Agents      string
	Target      int
	MaxDispatch int
	MinBatch    int
	Ceiling     int
	Seed        uint64
	Workers     int
	Shards      int
	ReportEvery time.Duration

	DatabaseURL string
	AutoMigrate bool
	RedisURL    string
	Port        string

	LogLevel logrus.Level
	UseColor bool
}

func loadConfig() (config, error) {
	cfg := config{
		Agents:      getenv("ARENA_AGENTS", "caller=caller,coin=random:0.5,tight=equity:0.6,loose=equity:0.35"),
		Target:      atoiDef(os.Getenv("ARENA_TARGET"), 64),
		MaxDispatch: atoiDef(os.Getenv("ARENA_MAX_DISPATCH"), tracker.DefaultMaxDispatch),
		MinBatch:    atoiDef(os.Getenv("ARENA_MIN_BATCH"), 0),
		Ceiling:     atoiDef(os.Getenv("ARENA_SLOT_CEILING"), tracker.DefaultCeiling),
		Workers:     atoiDef(os.Getenv("ARENA_WORKERS"), 4),
		Shards:      atoiDef(os.Getenv("ARENA_SHARDS"), 1),
		ReportEvery: time.Duration(atoiDef(os.Getenv("REPORT_EVERY_SEC"), 5)) * time.Second,
		DatabaseURL: getenv("DATABASE_URL", ""),
		AutoMigrate: asBool(os.Getenv("AUTO_MIGRATE")),
		RedisURL:    getenv("REDIS_URL", ""),
		Port:        getenv("PORT", "8080"),
		UseColor:    os.Getenv("NO_COLOR") == "" && strings.TrimSpace(os.Getenv("USE_COLOR")) != "0",
	}
	if cfg.Target < 0 {
		return config{}, fmt.Errorf("ARENA_TARGET must be >= 0, got %d", cfg.Target)
	}
	if cfg.Shards < 1 {
		return config{}, fmt.Errorf("ARENA_SHARDS must be >= 1, got %d", cfg.Shards)
	}
	if s := strings.TrimSpace(os.Getenv("ARENA_SEED")); s != "" {
		seed, err := strconv.ParseUint(s, 10, 64)
		if err != nil {
			return config{}, fmt.Errorf("ARENA_SEED: %w", err)
		}
		cfg.Seed = seed
	} else {
		cfg.Seed = uint64(time.Now().UnixNano())
	}
	lvl, err := logrus.ParseLevel(getenv("LOG_LEVEL", "info"))
	if err != nil {
		return config{}, fmt.Errorf("LOG_LEVEL: %w", err)
	}
	cfg.LogLevel = lvl
	return cfg, nil
}

func getenv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func atoiDef(s string, def int) int {
	if s == "" {
		return def
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return n
}

func asBool(s string) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "1", "true", "yes", "y", "on":
		return true
	default:
		return false
	}
}

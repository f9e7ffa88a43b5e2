package config

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"
)

// Grid strategy names accepted by -grid.
const (
	GridH3  = "h3"
	GridBin = "bin"
)

// Config holds one aggregation run's settings. Pipeline parameters come from
// flags; ambient settings (logging, ops server, announcements) come from
// environment variables.
type Config struct {
	CSVPath        string
	OutPath        string
	Grid           string
	H3Res          int
	BinSize        float64
	YearsPerWindow int
	ConusOnly      bool
	MaxSizeMB      float64
	MinYear        int

	HTTPAddr           string // ops server listen address; empty disables it
	KafkaBrokers       []string
	KafkaAnnounceTopic string
	AnnounceEnabled    bool
	LogLevel           string
	LogFormat          string
	ShutdownTimeout    time.Duration
}

// Load parses the aggregate command line and environment, applying defaults
// where unset.
func Load(args []string) (*Config, error) {
	fs := flag.NewFlagSet("aggregate", flag.ContinueOnError)
	csvPath := fs.String("csv", "", "input CSV of incident points (required)")
	outPath := fs.String("out", "dist/aggregates.json", "output artifact path")
	grid := fs.String("grid", GridH3, "spatial grid strategy: h3 or bin")
	h3Res := fs.Int("h3-res", 6, "H3 resolution for the h3 grid")
	binSize := fs.Float64("bin-size", 0.1, "bin size in degrees for the bin grid")
	yearsPer := fs.Int("years-per-window", 3, "calendar years per aggregation window")
	conusOnly := fs.Bool("conus-only", false, "keep only points inside the contiguous US")
	maxSizeMB := fs.Float64("max-size-mb", 50, "artifact size budget in megabytes")
	minYear := fs.Int("min-year", 0, "drop records before this year, 0 disables")
	httpAddr := fs.String("http-addr", EnvOrDefault("HTTP_ADDR", ""), "ops server listen address (empty disables)")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	shutdownTimeout, err := parseShutdownTimeout()
	if err != nil {
		return nil, err
	}

	brokers := ParseBrokers(os.Getenv("KAFKA_BROKERS"))

	cfg := &Config{
		CSVPath:        *csvPath,
		OutPath:        *outPath,
		Grid:           *grid,
		H3Res:          *h3Res,
		BinSize:        *binSize,
		YearsPerWindow: *yearsPer,
		ConusOnly:      *conusOnly,
		MaxSizeMB:      *maxSizeMB,
		MinYear:        *minYear,

		HTTPAddr:           *httpAddr,
		KafkaBrokers:       brokers,
		KafkaAnnounceTopic: strings.TrimSpace(EnvOrDefault("KAFKA_ANNOUNCE_TOPIC", "heatmap-artifacts")),
		AnnounceEnabled:    len(brokers) > 0,
		LogLevel:           EnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:          EnvOrDefault("LOG_FORMAT", "json"),
		ShutdownTimeout:    shutdownTimeout,
	}

	if cfg.CSVPath == "" {
		return nil, errors.New("-csv is required")
	}
	if cfg.OutPath == "" {
		return nil, errors.New("-out must not be empty")
	}
	if cfg.Grid != GridH3 && cfg.Grid != GridBin {
		return nil, fmt.Errorf("invalid -grid %q, want h3 or bin", cfg.Grid)
	}
	if cfg.H3Res < 0 || cfg.H3Res > 15 {
		return nil, fmt.Errorf("invalid -h3-res %d, want 0..15", cfg.H3Res)
	}
	if cfg.BinSize <= 0 {
		return nil, fmt.Errorf("invalid -bin-size %v, want a positive number of degrees", cfg.BinSize)
	}
	if cfg.YearsPerWindow < 1 {
		return nil, fmt.Errorf("invalid -years-per-window %d, want at least 1", cfg.YearsPerWindow)
	}
	if cfg.MaxSizeMB <= 0 {
		return nil, fmt.Errorf("invalid -max-size-mb %v, want a positive budget", cfg.MaxSizeMB)
	}
	if cfg.MinYear < 0 {
		return nil, fmt.Errorf("invalid -min-year %d, want 0 or a calendar year", cfg.MinYear)
	}
	if cfg.AnnounceEnabled && cfg.KafkaAnnounceTopic == "" {
		return nil, errors.New("KAFKA_BROKERS is set but KAFKA_ANNOUNCE_TOPIC is empty")
	}

	return cfg, nil
}

// MaxSizeBytes converts the megabyte budget to bytes.
func (c *Config) MaxSizeBytes() int64 {
	return int64(c.MaxSizeMB * 1024 * 1024)
}

// EnvOrDefault returns the value of key, or fallback when unset or empty.
func EnvOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// ParseBrokers splits a comma-separated broker list, dropping empty entries.
func ParseBrokers(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func parseShutdownTimeout() (time.Duration, error) {
	s := EnvOrDefault("SHUTDOWN_TIMEOUT", "10s")
	d, err := time.ParseDuration(s)
	if err != nil || d <= 0 {
		return 0, errors.New("invalid SHUTDOWN_TIMEOUT")
	}
	return d, nil
}

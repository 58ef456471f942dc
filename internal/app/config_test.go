package app

import (
	"strings"
	"testing"
	"time"
)

func TestDefaultConfig_Values(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.HTTPAddr != ":8080" {
		t.Errorf("expected HTTPAddr :8080, got %s", cfg.HTTPAddr)
	}
	if cfg.GRPCAddr != ":50051" {
		t.Errorf("expected GRPCAddr :50051, got %s", cfg.GRPCAddr)
	}
	if cfg.MetricsAddr != ":9090" {
		t.Errorf("expected MetricsAddr :9090, got %s", cfg.MetricsAddr)
	}
	if cfg.StorageDriver != StorageDriverFile {
		t.Errorf("expected StorageDriver %s, got %s", StorageDriverFile, cfg.StorageDriver)
	}
	if cfg.DataDir != "book-storage-files" {
		t.Errorf("unexpected DataDir: %s", cfg.DataDir)
	}
	if cfg.BooksFile != "all-books.json" || cfg.ReservationsFile != "book-reservations.json" {
		t.Errorf("unexpected file names: %s, %s", cfg.BooksFile, cfg.ReservationsFile)
	}
	if !cfg.PostgresAutoMigrate {
		t.Error("expected PostgresAutoMigrate to be true")
	}
	if cfg.RedisAddr != "" {
		t.Errorf("expected in-process locks by default, got redis %s", cfg.RedisAddr)
	}
	if cfg.LockTTL != 10*time.Second || cfg.LockWait != 5*time.Second {
		t.Errorf("unexpected lock timings: ttl=%s wait=%s", cfg.LockTTL, cfg.LockWait)
	}
	if cfg.KafkaBrokers != "" {
		t.Errorf("expected events disabled by default, got brokers %s", cfg.KafkaBrokers)
	}
	if cfg.KafkaTopic != "library.catalog.events" {
		t.Errorf("unexpected KafkaTopic: %s", cfg.KafkaTopic)
	}
	if cfg.ReservationPeriodMonths != 2 || cfg.MaxReservationsPerClient != 1 {
		t.Errorf("unexpected reservation limits: %d months, %d per client",
			cfg.ReservationPeriodMonths, cfg.MaxReservationsPerClient)
	}
	if cfg.LogLevel != "info" {
		t.Errorf("unexpected LogLevel: %s", cfg.LogLevel)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config must be valid: %v", err)
	}
}

func TestConfig_Comparison(t *testing.T) {
	cfg1 := DefaultConfig()
	cfg2 := DefaultConfig()

	if cfg1 != cfg2 {
		t.Error("two DefaultConfig instances should be equal")
	}

	cfg2.HTTPAddr = ":8081"
	if cfg1 == cfg2 {
		t.Error("modified config should not be equal to original")
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{name: "memory", mutate: func(c *Config) { c.StorageDriver = StorageDriverMemory }},
		{
			name:   "postgres with dsn",
			mutate: func(c *Config) { c.StorageDriver = StorageDriverPostgres; c.PostgresDSN = "postgres://x" },
		},
		{
			name:    "postgres without dsn",
			mutate:  func(c *Config) { c.StorageDriver = StorageDriverPostgres },
			wantErr: "postgres dsn is required",
		},
		{
			name:    "file without dir",
			mutate:  func(c *Config) { c.DataDir = " " },
			wantErr: "data dir is required",
		},
		{
			name:    "unknown driver",
			mutate:  func(c *Config) { c.StorageDriver = "sqlite" },
			wantErr: "unsupported storage driver",
		},
		{
			name:    "zero period",
			mutate:  func(c *Config) { c.ReservationPeriodMonths = 0 },
			wantErr: "reservation period",
		},
		{
			name:    "negative per client",
			mutate:  func(c *Config) { c.MaxReservationsPerClient = -1 },
			wantErr: "max reservations per client",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(&cfg)

			err := cfg.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Fatalf("expected error containing %q, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestConfig_ReservationPolicy(t *testing.T) {
	cfg := DefaultConfig()
	cfg.ReservationPeriodMonths = 3
	cfg.MaxReservationsPerClient = 5

	policy := cfg.ReservationPolicy()
	if policy.MaxPeriodMonths != 3 || policy.MaxPerClient != 5 {
		t.Fatalf("unexpected policy: %+v", policy)
	}
}

func TestConfig_KafkaBrokerList(t *testing.T) {
	tests := []struct {
		raw  string
		want []string
	}{
		{raw: "", want: nil},
		{raw: " , ", want: nil},
		{raw: "kafka:9092", want: []string{"kafka:9092"}},
		{raw: " a:9092, ,b:9092 ", want: []string{"a:9092", "b:9092"}},
	}

	for _, tt := range tests {
		cfg := Config{KafkaBrokers: tt.raw}
		got := cfg.KafkaBrokerList()
		if strings.Join(got, "|") != strings.Join(tt.want, "|") {
			t.Errorf("KafkaBrokerList(%q) = %v, want %v", tt.raw, got, tt.want)
		}
	}
}

package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/booklibrary/internal/app"
	"github.com/vladislavdragonenkov/booklibrary/internal/version"
)

const (
	envHTTPAddr                 = "LIBRARY_HTTP_ADDR"
	envGRPCAddr                 = "LIBRARY_GRPC_ADDR"
	envMetricsAddr              = "LIBRARY_METRICS_ADDR"
	envStorageDriver            = "LIBRARY_STORAGE_DRIVER"
	envDataDir                  = "LIBRARY_DATA_DIR"
	envBooksFile                = "LIBRARY_BOOKS_FILE"
	envReservationsFile         = "LIBRARY_RESERVATIONS_FILE"
	envPostgresDSN              = "LIBRARY_POSTGRES_DSN"
	envPostgresAutoMigrate      = "LIBRARY_POSTGRES_AUTO_MIGRATE"
	envRedisAddr                = "LIBRARY_REDIS_ADDR"
	envRedisPassword            = "LIBRARY_REDIS_PASSWORD"
	envRedisDB                  = "LIBRARY_REDIS_DB"
	envLockTTL                  = "LIBRARY_LOCK_TTL"
	envLockWait                 = "LIBRARY_LOCK_WAIT"
	envKafkaBrokers             = "LIBRARY_KAFKA_BROKERS"
	envKafkaTopic               = "LIBRARY_KAFKA_TOPIC"
	envReservationPeriodMonths  = "LIBRARY_RESERVATION_PERIOD_MONTHS"
	envMaxReservationsPerClient = "LIBRARY_MAX_RESERVATIONS_PER_CLIENT"
	envLogLevel                 = "LIBRARY_LOG_LEVEL"
)

type envLookup func(key string) (string, bool)

// setupLogger настраивает формат и уровень логирования для сервиса.
// Неизвестный уровень заменяется на info и возвращается как предупреждение.
func setupLogger(level string) string {
	log.SetFormatter(&log.TextFormatter{FullTimestamp: true})

	parsed, err := log.ParseLevel(strings.TrimSpace(level))
	if err != nil {
		log.SetLevel(log.InfoLevel)
		return fmt.Sprintf("%s: %v, using info", envLogLevel, err)
	}
	log.SetLevel(parsed)
	return ""
}

// readConfigFromEnv собирает конфигурацию из окружения.
// Некорректные значения не роняют запуск: остаётся значение по умолчанию, а проблема попадает в warnings.
func readConfigFromEnv(lookup envLookup) (app.Config, []string) {
	cfg := app.DefaultConfig()
	var warnings []string

	str := func(key string, target *string) {
		if v, ok := lookup(key); ok && strings.TrimSpace(v) != "" {
			*target = strings.TrimSpace(v)
		}
	}
	warn := func(key, value string, err error) {
		warnings = append(warnings, fmt.Sprintf("%s=%q: %v", key, value, err))
	}
	positive := func(v int) bool { return v > 0 }
	nonNegative := func(v int) bool { return v >= 0 }
	positiveDuration := func(v time.Duration) bool { return v > 0 }

	str(envHTTPAddr, &cfg.HTTPAddr)
	str(envGRPCAddr, &cfg.GRPCAddr)
	str(envMetricsAddr, &cfg.MetricsAddr)
	str(envDataDir, &cfg.DataDir)
	str(envBooksFile, &cfg.BooksFile)
	str(envReservationsFile, &cfg.ReservationsFile)
	str(envPostgresDSN, &cfg.PostgresDSN)
	str(envRedisAddr, &cfg.RedisAddr)
	str(envKafkaBrokers, &cfg.KafkaBrokers)
	str(envKafkaTopic, &cfg.KafkaTopic)
	str(envLogLevel, &cfg.LogLevel)

	// пароль берётся как есть, пробелы в нём значимы
	if v, ok := lookup(envRedisPassword); ok {
		cfg.RedisPassword = v
	}

	if v, ok := lookup(envStorageDriver); ok && strings.TrimSpace(v) != "" {
		driver := app.StorageDriver(strings.ToLower(strings.TrimSpace(v)))
		switch driver {
		case app.StorageDriverFile, app.StorageDriverMemory, app.StorageDriverPostgres:
			cfg.StorageDriver = driver
		default:
			warn(envStorageDriver, v, errors.New("expected file|memory|postgres"))
		}
	}

	if v, ok := lookup(envPostgresAutoMigrate); ok && strings.TrimSpace(v) != "" {
		parsed, err := parseBool(v)
		if err != nil {
			warn(envPostgresAutoMigrate, v, err)
		} else {
			cfg.PostgresAutoMigrate = parsed
		}
	}

	ints := []struct {
		key    string
		target *int
		valid  func(int) bool
		rule   string
	}{
		{envRedisDB, &cfg.RedisDB, nonNegative, "must be >= 0"},
		{envReservationPeriodMonths, &cfg.ReservationPeriodMonths, positive, "must be > 0"},
		{envMaxReservationsPerClient, &cfg.MaxReservationsPerClient, positive, "must be > 0"},
	}
	for _, item := range ints {
		v, ok := lookup(item.key)
		if !ok || strings.TrimSpace(v) == "" {
			continue
		}
		parsed, err := parseInt(v, item.valid, item.rule)
		if err != nil {
			warn(item.key, v, err)
			continue
		}
		*item.target = parsed
	}

	durations := []struct {
		key    string
		target *time.Duration
	}{
		{envLockTTL, &cfg.LockTTL},
		{envLockWait, &cfg.LockWait},
	}
	for _, item := range durations {
		v, ok := lookup(item.key)
		if !ok || strings.TrimSpace(v) == "" {
			continue
		}
		parsed, err := parseDuration(v, positiveDuration, "must be > 0")
		if err != nil {
			warn(item.key, v, err)
			continue
		}
		*item.target = parsed
	}

	return cfg, warnings
}

func parseBool(raw string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "1", "true", "yes", "y", "on":
		return true, nil
	case "0", "false", "no", "n", "off":
		return false, nil
	default:
		return false, fmt.Errorf("invalid bool value %q", raw)
	}
}

func parseInt(raw string, valid func(int) bool, rule string) (int, error) {
	value, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return 0, fmt.Errorf("invalid int value %q: %w", raw, err)
	}
	if valid != nil && !valid(value) {
		return 0, fmt.Errorf("value %d %s", value, rule)
	}
	return value, nil
}

func parseDuration(raw string, valid func(time.Duration) bool, rule string) (time.Duration, error) {
	value, err := time.ParseDuration(strings.TrimSpace(raw))
	if err != nil {
		return 0, fmt.Errorf("invalid duration value %q: %w", raw, err)
	}
	if valid != nil && !valid(value) {
		return 0, fmt.Errorf("value %s %s", value, rule)
	}
	return value, nil
}

func main() {
	// .env необязателен: в контейнере переменные приходят из окружения
	envErr := godotenv.Load()

	cfg, warnings := readConfigFromEnv(os.LookupEnv)
	if warning := setupLogger(cfg.LogLevel); warning != "" {
		warnings = append(warnings, warning)
	}
	if envErr != nil && !errors.Is(envErr, os.ErrNotExist) {
		log.WithError(envErr).Warn("не удалось прочитать .env")
	}
	for _, w := range warnings {
		log.Warn("некорректная настройка, используем значение по умолчанию: " + w)
	}

	if log.GetLevel() < log.DebugLevel {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	log.WithFields(log.Fields{
		"http_addr":      cfg.HTTPAddr,
		"grpc_addr":      cfg.GRPCAddr,
		"metrics_addr":   cfg.MetricsAddr,
		"storage_driver": cfg.StorageDriver,
		"redis":          cfg.RedisAddr != "",
		"kafka":          cfg.KafkaBrokers != "",
	}).Info("запускаем " + version.String())

	if err := app.Run(ctx, cfg); err != nil && !errors.Is(err, context.Canceled) {
		log.WithError(err).Fatal("приложение завершилось с ошибкой")
	}

	log.Info("library-service остановлен")
}

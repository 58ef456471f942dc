package app

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/vladislavdragonenkov/booklibrary/internal/domain"
	"github.com/vladislavdragonenkov/booklibrary/internal/lock/redislock"
	"github.com/vladislavdragonenkov/booklibrary/internal/messaging/kafka"
)

// StorageDriver выбирает реализацию хранилища каталога.
type StorageDriver string

const (
	StorageDriverFile     StorageDriver = "file"
	StorageDriverMemory   StorageDriver = "memory"
	StorageDriverPostgres StorageDriver = "postgres"
)

// Config описывает настройки запуска сервиса.
// Структура сравнимая: в ней только скалярные поля.
type Config struct {
	HTTPAddr    string
	GRPCAddr    string
	MetricsAddr string

	StorageDriver       StorageDriver
	DataDir             string
	BooksFile           string
	ReservationsFile    string
	PostgresDSN         string
	PostgresAutoMigrate bool

	// Пустой RedisAddr оставляет блокировки внутри процесса.
	RedisAddr     string
	RedisPassword string
	RedisDB       int
	LockTTL       time.Duration
	LockWait      time.Duration

	// KafkaBrokers: список через запятую, пустой отключает события.
	KafkaBrokers string
	KafkaTopic   string

	ReservationPeriodMonths  int
	MaxReservationsPerClient int

	LogLevel string
}

// DefaultConfig возвращает настройки по умолчанию.
func DefaultConfig() Config {
	policy := domain.DefaultReservationPolicy()
	return Config{
		HTTPAddr:                 ":8080",
		GRPCAddr:                 ":50051",
		MetricsAddr:              ":9090",
		StorageDriver:            StorageDriverFile,
		DataDir:                  "book-storage-files",
		BooksFile:                "all-books.json",
		ReservationsFile:         "book-reservations.json",
		PostgresAutoMigrate:      true,
		LockTTL:                  redislock.DefaultTTL,
		LockWait:                 redislock.DefaultWait,
		KafkaTopic:               kafka.DefaultTopic,
		ReservationPeriodMonths:  policy.MaxPeriodMonths,
		MaxReservationsPerClient: policy.MaxPerClient,
		LogLevel:                 "info",
	}
}

// Validate проверяет согласованность настроек.
func (c Config) Validate() error {
	var errs []error

	switch c.StorageDriver {
	case StorageDriverFile:
		if strings.TrimSpace(c.DataDir) == "" {
			errs = append(errs, errors.New("data dir is required for file storage"))
		}
	case StorageDriverMemory:
	case StorageDriverPostgres:
		if strings.TrimSpace(c.PostgresDSN) == "" {
			errs = append(errs, errors.New("postgres dsn is required for postgres storage"))
		}
	default:
		errs = append(errs, fmt.Errorf("unsupported storage driver: %q", c.StorageDriver))
	}

	if c.ReservationPeriodMonths <= 0 {
		errs = append(errs, fmt.Errorf("reservation period must be > 0 months, got %d", c.ReservationPeriodMonths))
	}
	if c.MaxReservationsPerClient <= 0 {
		errs = append(errs, fmt.Errorf("max reservations per client must be > 0, got %d", c.MaxReservationsPerClient))
	}
	return errors.Join(errs...)
}

// ReservationPolicy собирает лимиты бронирования из настроек.
func (c Config) ReservationPolicy() domain.ReservationPolicy {
	return domain.ReservationPolicy{
		MaxPeriodMonths: c.ReservationPeriodMonths,
		MaxPerClient:    c.MaxReservationsPerClient,
	}
}

// KafkaBrokerList разбирает KafkaBrokers, отбрасывая пустые элементы.
func (c Config) KafkaBrokerList() []string {
	var brokers []string
	for _, b := range strings.Split(c.KafkaBrokers, ",") {
		if b = strings.TrimSpace(b); b != "" {
			brokers = append(brokers, b)
		}
	}
	return brokers
}

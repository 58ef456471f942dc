package app

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/booklibrary/internal/domain"
	healthcheck "github.com/vladislavdragonenkov/booklibrary/internal/health"
	"github.com/vladislavdragonenkov/booklibrary/internal/lock"
	"github.com/vladislavdragonenkov/booklibrary/internal/lock/redislock"
	"github.com/vladislavdragonenkov/booklibrary/internal/messaging/kafka"
	"github.com/vladislavdragonenkov/booklibrary/internal/metrics"
	"github.com/vladislavdragonenkov/booklibrary/internal/service/library"
	"github.com/vladislavdragonenkov/booklibrary/internal/storage/file"
	"github.com/vladislavdragonenkov/booklibrary/internal/storage/memory"
	"github.com/vladislavdragonenkov/booklibrary/internal/storage/postgres"
)

const dependencyInitTimeout = 10 * time.Second

// runtimeDependencies — собранные компоненты одного запуска сервиса.
type runtimeDependencies struct {
	store    domain.CatalogStore
	locker   domain.Locker
	producer *kafka.Producer
	metrics  *metrics.LibraryMetrics
	service  *library.Service
	checkers map[string]healthcheck.Checker
	closers  []func() error
}

// close освобождает ресурсы в обратном порядке создания.
func (d *runtimeDependencies) close() error {
	if d == nil {
		return nil
	}
	var errs []error
	for i := len(d.closers) - 1; i >= 0; i-- {
		if err := d.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	d.closers = nil
	return errors.Join(errs...)
}

// initRuntimeDependencies собирает хранилище, блокировки, продюсер событий и сервис по конфигурации.
// При ошибке уже открытые ресурсы закрываются.
func initRuntimeDependencies(ctx context.Context, cfg Config, logger *log.Entry) (_ *runtimeDependencies, err error) {
	if logger == nil {
		logger = log.WithField("component", "app")
	}

	deps := &runtimeDependencies{checkers: make(map[string]healthcheck.Checker)}
	defer func() {
		if err != nil {
			_ = deps.close()
		}
	}()

	initCtx, cancel := context.WithTimeout(ctx, dependencyInitTimeout)
	defer cancel()

	if err := deps.initStore(initCtx, cfg, logger); err != nil {
		return nil, err
	}
	if err := deps.initLocker(initCtx, cfg, logger); err != nil {
		return nil, err
	}
	deps.initProducer(cfg, logger)

	deps.metrics = metrics.NewLibraryMetrics()
	warmUpGauges(initCtx, deps.store, deps.metrics, logger)

	opts := []library.Option{
		library.WithLocker(deps.locker),
		library.WithMetrics(deps.metrics),
		library.WithPolicy(cfg.ReservationPolicy()),
		library.WithLogger(logger.WithField("layer", "service")),
	}
	if deps.producer != nil {
		opts = append(opts, library.WithPublisher(deps.producer))
	}
	deps.service = library.NewService(deps.store, opts...)

	return deps, nil
}

func (d *runtimeDependencies) initStore(ctx context.Context, cfg Config, logger *log.Entry) error {
	switch cfg.StorageDriver {
	case StorageDriverMemory:
		d.store = memory.NewCatalogStore()
		logger.Warn("используется in-memory хранилище, данные не переживут перезапуск")

	case StorageDriverFile:
		store, err := file.Open(file.Options{
			Dir:              cfg.DataDir,
			BooksFile:        cfg.BooksFile,
			ReservationsFile: cfg.ReservationsFile,
		})
		if err != nil {
			return fmt.Errorf("open file storage: %w", err)
		}
		d.store = store
		logger.WithField("dir", filepath.Clean(cfg.DataDir)).Info("файловое хранилище открыто")

	case StorageDriverPostgres:
		if cfg.PostgresDSN == "" {
			return errors.New("postgres dsn is required for postgres storage")
		}
		pg, err := postgres.Open(ctx, cfg.PostgresDSN)
		if err != nil {
			return fmt.Errorf("open postgres storage: %w", err)
		}
		d.closers = append(d.closers, pg.Close)
		if cfg.PostgresAutoMigrate {
			if err := pg.EnsureSchema(ctx); err != nil {
				return fmt.Errorf("apply postgres migrations: %w", err)
			}
		}
		d.store = postgres.NewCatalogStore(pg)
		logger.WithField("auto_migrate", cfg.PostgresAutoMigrate).Info("postgres хранилище подключено")

	default:
		return fmt.Errorf("unsupported storage driver: %q", cfg.StorageDriver)
	}

	d.checkers["storage"] = healthcheck.NewFuncChecker("storage", d.store.Ping)
	return nil
}

func (d *runtimeDependencies) initLocker(ctx context.Context, cfg Config, logger *log.Entry) error {
	if cfg.RedisAddr == "" {
		d.locker = lock.NewKeyed()
		return nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	d.closers = append(d.closers, client.Close)

	locker := redislock.New(client, redislock.Options{TTL: cfg.LockTTL, Wait: cfg.LockWait}, logger)
	if err := locker.Ping(ctx); err != nil {
		return fmt.Errorf("ping redis %s: %w", cfg.RedisAddr, err)
	}
	d.locker = locker
	d.checkers["lock"] = healthcheck.NewFuncChecker("lock", locker.Ping)
	logger.WithField("addr", cfg.RedisAddr).Info("блокировки через redis")
	return nil
}

// initProducer подключает Kafka. Недоступность брокеров не мешает запуску: события просто не публикуются.
func (d *runtimeDependencies) initProducer(cfg Config, logger *log.Entry) {
	brokers := cfg.KafkaBrokerList()
	if len(brokers) == 0 {
		return
	}

	producer, err := kafka.NewProducer(brokers, cfg.KafkaTopic, logger)
	if err != nil {
		logger.WithError(err).Warn("failed to create kafka producer, continuing without kafka")
		return
	}
	d.producer = producer
	d.closers = append(d.closers, producer.Close)
	logger.WithFields(log.Fields{"brokers": brokers, "topic": cfg.KafkaTopic}).Info("kafka producer initialized")
}

// warmUpGauges выставляет размер каталога и число броней до первого запроса.
func warmUpGauges(ctx context.Context, store domain.CatalogStore, m *metrics.LibraryMetrics, logger *log.Entry) {
	books, err := store.LoadBooks(ctx)
	if err != nil {
		logger.WithError(err).Warn("не удалось прочитать каталог для метрик")
		return
	}
	reservations, err := store.LoadReservations(ctx)
	if err != nil {
		logger.WithError(err).Warn("не удалось прочитать брони для метрик")
		return
	}
	m.SetCatalogSize(len(books))
	m.SetActiveReservations(len(reservations))
}

// Package library реализует сервис каталога книг: создание, поиск, бронирование и удаление
// поверх CatalogStore с сериализацией записей, метриками и публикацией событий.
package library

import (
	"context"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/booklibrary/internal/domain"
	"github.com/vladislavdragonenkov/booklibrary/internal/lock"
	"github.com/vladislavdragonenkov/booklibrary/internal/metrics"
)

// Имена операций для логов и метрик.
const (
	OpCreateBook  = "create_book"
	OpReserveBook = "reserve_book"
	OpGetBook     = "get_book"
	OpListBooks   = "list_books"
	OpDeleteBook  = "delete_book"

	publishTimeout = 5 * time.Second
)

// Metrics — метрики, которые пишет сервис. nil отключает запись.
type Metrics interface {
	ObserveOperation(operation, outcome string, duration time.Duration)
	RecordReservationRejected(reason string)
	SetCatalogSize(books int)
	SetActiveReservations(reservations int)
	RecordEventPublished(eventType string, ok bool)
}

// Service — оркестратор операций каталога.
type Service struct {
	store     domain.CatalogStore
	locker    domain.Locker
	publisher domain.EventPublisher
	metrics   Metrics
	policy    domain.ReservationPolicy
	now       func() time.Time
	logger    *log.Entry
}

// Option настраивает Service.
type Option func(*Service)

// WithLocker задаёт блокировку коллекций. По умолчанию блокировка внутрипроцессная.
func WithLocker(locker domain.Locker) Option {
	return func(s *Service) {
		if locker != nil {
			s.locker = locker
		}
	}
}

// WithPublisher включает публикацию событий каталога.
func WithPublisher(publisher domain.EventPublisher) Option {
	return func(s *Service) { s.publisher = publisher }
}

// WithMetrics включает запись метрик.
func WithMetrics(m Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

// WithPolicy задаёт лимиты бронирования.
func WithPolicy(policy domain.ReservationPolicy) Option {
	return func(s *Service) { s.policy = policy }
}

// WithClock подменяет источник текущего времени.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// WithLogger задаёт логгер.
func WithLogger(logger *log.Entry) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// NewService создаёт сервис каталога.
func NewService(store domain.CatalogStore, opts ...Option) *Service {
	s := &Service{
		store:  store,
		locker: lock.NewKeyed(),
		policy: domain.DefaultReservationPolicy(),
		now:    time.Now,
		logger: log.New().WithField("component", "library-service"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Policy возвращает действующие лимиты бронирования.
func (s *Service) Policy() domain.ReservationPolicy {
	return s.policy
}

// CreateBook добавляет книгу в конец каталога. Дубликат guid даёт ErrBookAlreadyExists.
func (s *Service) CreateBook(ctx context.Context, book domain.Book) (_ domain.Book, err error) {
	defer s.observe(OpCreateBook, s.now(), &err)
	logger := s.logger.WithFields(log.Fields{"operation": OpCreateBook, "book_guid": book.GUID})

	unlock, err := s.lock(ctx, domain.CollectionBooks)
	if err != nil {
		return domain.Book{}, s.fail(logger, err)
	}
	defer unlock()

	books, err := s.store.LoadBooks(ctx)
	if err != nil {
		return domain.Book{}, s.fail(logger, domain.StorageUnavailable(err))
	}
	if _, exists := domain.FindBook(books, book.GUID); exists {
		return domain.Book{}, s.fail(logger, domain.ErrBookAlreadyExists)
	}

	books = append(books, book)
	if err := s.store.SaveBooks(ctx, books); err != nil {
		return domain.Book{}, s.fail(logger, domain.StorageUnavailable(err))
	}
	s.setCatalogSize(len(books))

	logger.Info("book created")
	s.publish(ctx, domain.CatalogEvent{Type: domain.EventBookCreated, BookGUID: book.GUID, Book: &book})
	return book, nil
}

// ReserveBook бронирует книгу bookGUID. Поле BookGUID в reservation всегда заменяется на bookGUID.
func (s *Service) ReserveBook(ctx context.Context, bookGUID int64, reservation domain.Reservation) (_ domain.Reservation, err error) {
	defer s.observe(OpReserveBook, s.now(), &err)
	reservation.BookGUID = bookGUID
	logger := s.logger.WithFields(log.Fields{
		"operation": OpReserveBook,
		"book_guid": bookGUID,
		"client":    reservation.ClientName,
	})

	unlock, err := s.lock(ctx, domain.CollectionReservations)
	if err != nil {
		return domain.Reservation{}, s.fail(logger, err)
	}
	defer unlock()

	books, err := s.store.LoadBooks(ctx)
	if err != nil {
		return domain.Reservation{}, s.fail(logger, domain.StorageUnavailable(err))
	}
	reservations, err := s.store.LoadReservations(ctx)
	if err != nil {
		return domain.Reservation{}, s.fail(logger, domain.StorageUnavailable(err))
	}

	today := domain.DateOf(s.now())
	if err := domain.ValidateReservation(reservation, books, reservations, s.policy, today); err != nil {
		if s.metrics != nil {
			s.metrics.RecordReservationRejected(string(domain.KindOf(err)))
		}
		return domain.Reservation{}, s.fail(logger, err)
	}

	reservations = append(reservations, reservation)
	if err := s.store.SaveReservations(ctx, reservations); err != nil {
		return domain.Reservation{}, s.fail(logger, domain.StorageUnavailable(err))
	}
	if s.metrics != nil {
		s.metrics.SetActiveReservations(len(reservations))
	}

	logger.WithField("taken_until", reservation.TakenUntilDate.String()).Info("book reserved")
	s.publish(ctx, domain.CatalogEvent{Type: domain.EventBookReserved, BookGUID: bookGUID, Reservation: &reservation})
	return reservation, nil
}

// GetBookByGUID возвращает книгу или ErrBookNotFound.
func (s *Service) GetBookByGUID(ctx context.Context, guid int64) (_ domain.Book, err error) {
	defer s.observe(OpGetBook, s.now(), &err)
	logger := s.logger.WithFields(log.Fields{"operation": OpGetBook, "book_guid": guid})

	books, err := s.store.LoadBooks(ctx)
	if err != nil {
		return domain.Book{}, s.fail(logger, domain.StorageUnavailable(err))
	}
	book, ok := domain.FindBook(books, guid)
	if !ok {
		return domain.Book{}, s.fail(logger, domain.ErrBookNotFound)
	}
	return book, nil
}

// ListBooks возвращает книги, подходящие под фильтр, в порядке каталога.
// Противоречивый фильтр отклоняется до обращения к хранилищу.
func (s *Service) ListBooks(ctx context.Context, filter domain.BookFilter) (_ []domain.Book, err error) {
	defer s.observe(OpListBooks, s.now(), &err)
	logger := s.logger.WithField("operation", OpListBooks)

	if err := filter.Validate(); err != nil {
		return nil, s.fail(logger, err)
	}

	books, err := s.store.LoadBooks(ctx)
	if err != nil {
		return nil, s.fail(logger, domain.StorageUnavailable(err))
	}

	var reservations []domain.Reservation
	if filter.NeedsReservations() {
		reservations, err = s.store.LoadReservations(ctx)
		if err != nil {
			return nil, s.fail(logger, domain.StorageUnavailable(err))
		}
	}

	result, err := domain.FilterBooks(books, reservations, filter)
	if err != nil {
		return nil, s.fail(logger, err)
	}
	return result, nil
}

// DeleteBook удаляет книгу из каталога. Брони на неё остаются в хранилище.
func (s *Service) DeleteBook(ctx context.Context, guid int64) (err error) {
	defer s.observe(OpDeleteBook, s.now(), &err)
	logger := s.logger.WithFields(log.Fields{"operation": OpDeleteBook, "book_guid": guid})

	unlock, err := s.lock(ctx, domain.CollectionBooks)
	if err != nil {
		return s.fail(logger, err)
	}
	defer unlock()

	books, err := s.store.LoadBooks(ctx)
	if err != nil {
		return s.fail(logger, domain.StorageUnavailable(err))
	}
	removed, ok := domain.FindBook(books, guid)
	if !ok {
		return s.fail(logger, domain.ErrBookNotFound)
	}
	remaining, _ := domain.RemoveBook(books, guid)

	if err := s.store.SaveBooks(ctx, remaining); err != nil {
		return s.fail(logger, domain.StorageUnavailable(err))
	}
	s.setCatalogSize(len(remaining))

	logger.Info("book deleted")
	s.publish(ctx, domain.CatalogEvent{Type: domain.EventBookDeleted, BookGUID: guid, Book: &removed})
	return nil
}

func (s *Service) lock(ctx context.Context, collection string) (func(), error) {
	unlock, err := s.locker.Lock(ctx, collection)
	if err != nil {
		return nil, &domain.Error{
			Kind:    domain.KindStorageUnavailable,
			Message: domain.ErrStorageUnavailable.Message,
			Err:     err,
		}
	}
	return unlock, nil
}

// fail логирует ошибку операции с уровнем по её виду и возвращает её без изменений.
func (s *Service) fail(logger *log.Entry, err error) error {
	switch {
	case domain.IsStorageUnavailable(err):
		logger.WithError(err).Error("catalog storage unavailable")
	case domain.IsNotFound(err):
		logger.Info("book not found")
	case domain.IsReservationRejected(err):
		logger.WithField("reason", domain.KindOf(err)).Warn("reservation rejected")
	case domain.KindOf(err) != "":
		logger.WithField("reason", domain.KindOf(err)).Info("operation rejected")
	default:
		logger.WithError(err).Error("operation failed")
	}
	return err
}

func (s *Service) observe(operation string, started time.Time, errPtr *error) {
	if s.metrics == nil {
		return
	}
	s.metrics.ObserveOperation(operation, outcomeOf(*errPtr), s.now().Sub(started))
}

func outcomeOf(err error) string {
	switch {
	case err == nil:
		return metrics.OutcomeSuccess
	case domain.IsStorageUnavailable(err):
		return metrics.OutcomeError
	case domain.KindOf(err) != "":
		return metrics.OutcomeRejected
	default:
		return metrics.OutcomeError
	}
}

func (s *Service) setCatalogSize(n int) {
	if s.metrics != nil {
		s.metrics.SetCatalogSize(n)
	}
}

// publish отправляет событие после успешной записи. Ошибка брокера не отменяет операцию.
func (s *Service) publish(ctx context.Context, event domain.CatalogEvent) {
	if s.publisher == nil {
		return
	}

	publishCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), publishTimeout)
	defer cancel()

	err := s.publisher.Publish(publishCtx, event)
	if s.metrics != nil {
		s.metrics.RecordEventPublished(string(event.Type), err == nil)
	}
	if err != nil {
		s.logger.WithError(err).WithFields(log.Fields{
			"event_type": event.Type,
			"book_guid":  event.BookGUID,
		}).Warn("failed to publish catalog event")
	}
}

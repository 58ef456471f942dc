package domain

import "context"

// Ключи коллекций хранилища каталога.
const (
	CollectionBooks        = "books"
	CollectionReservations = "reservations"
)

// CatalogStore хранит каталог и брони как две цельные упорядоченные коллекции.
// Каждая операция читает или перезаписывает коллекцию полностью.
type CatalogStore interface {
	LoadBooks(ctx context.Context) ([]Book, error)
	SaveBooks(ctx context.Context, books []Book) error
	LoadReservations(ctx context.Context) ([]Reservation, error)
	SaveReservations(ctx context.Context, reservations []Reservation) error
	// Ping проверяет доступность хранилища для health checks.
	Ping(ctx context.Context) error
}

// Locker выдаёт эксклюзивную блокировку по ключу на время read-decide-write последовательности.
type Locker interface {
	// Lock блокирует ключ и возвращает функцию освобождения.
	Lock(ctx context.Context, key string) (unlock func(), err error)
}

// EventType — тип события каталога.
type EventType string

const (
	EventBookCreated  EventType = "book.created"
	EventBookDeleted  EventType = "book.deleted"
	EventBookReserved EventType = "book.reserved"
)

// CatalogEvent — факт успешного изменения каталога.
type CatalogEvent struct {
	Type        EventType
	BookGUID    int64
	Book        *Book
	Reservation *Reservation
}

// EventPublisher публикует события каталога во внешнюю систему.
type EventPublisher interface {
	Publish(ctx context.Context, event CatalogEvent) error
}

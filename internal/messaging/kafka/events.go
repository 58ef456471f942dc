package kafka

import (
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/vladislavdragonenkov/booklibrary/internal/domain"
)

// DefaultTopic — топик событий каталога по умолчанию.
const DefaultTopic = "library.catalog.events"

// Заголовки сообщений.
const (
	HeaderEventType = "x-event-type"
	HeaderEventID   = "x-event-id"
)

// CatalogMessage — JSON-представление события каталога в Kafka.
type CatalogMessage struct {
	EventID     string              `json:"event_id"`
	EventType   domain.EventType    `json:"event_type"`
	BookGUID    int64               `json:"book_guid"`
	Book        *domain.Book        `json:"book,omitempty"`
	Reservation *domain.Reservation `json:"reservation,omitempty"`
	OccurredAt  time.Time           `json:"occurred_at"`
}

// NewCatalogMessage строит сообщение из доменного события.
func NewCatalogMessage(event domain.CatalogEvent, now time.Time) *CatalogMessage {
	return &CatalogMessage{
		EventID:     uuid.NewString(),
		EventType:   event.Type,
		BookGUID:    event.BookGUID,
		Book:        event.Book,
		Reservation: event.Reservation,
		OccurredAt:  now.UTC(),
	}
}

// Key возвращает guid книги как ключ партиционирования.
func (m *CatalogMessage) Key() string {
	return strconv.FormatInt(m.BookGUID, 10)
}

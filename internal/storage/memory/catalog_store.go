package memory

import (
	"context"
	"sync"

	"github.com/vladislavdragonenkov/booklibrary/internal/domain"
)

// catalogStoreInMemory — in-memory реализация CatalogStore для локальной разработки и тестов.
type catalogStoreInMemory struct {
	mu           sync.RWMutex
	books        []domain.Book
	reservations []domain.Reservation
	failures     map[string]error
}

// CatalogStore расширяет domain.CatalogStore тестовыми хуками.
type CatalogStore interface {
	domain.CatalogStore
	// FailOn заставляет операцию op ("LoadBooks", "SaveReservations", ...) возвращать err.
	// nil снимает сбой.
	FailOn(op string, err error)
}

// NewCatalogStore возвращает пустое хранилище каталога.
func NewCatalogStore() CatalogStore {
	return &catalogStoreInMemory{failures: make(map[string]error)}
}

// NewCatalogStoreWith возвращает хранилище с заранее заполненными коллекциями.
func NewCatalogStoreWith(books []domain.Book, reservations []domain.Reservation) CatalogStore {
	return &catalogStoreInMemory{
		books:        cloneBooks(books),
		reservations: cloneReservations(reservations),
		failures:     make(map[string]error),
	}
}

func (s *catalogStoreInMemory) FailOn(op string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err == nil {
		delete(s.failures, op)
		return
	}
	s.failures[op] = err
}

// LoadBooks возвращает копию каталога.
func (s *catalogStoreInMemory) LoadBooks(_ context.Context) ([]domain.Book, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if err := s.failures["LoadBooks"]; err != nil {
		return nil, err
	}
	return cloneBooks(s.books), nil
}

// SaveBooks заменяет каталог целиком.
func (s *catalogStoreInMemory) SaveBooks(_ context.Context, books []domain.Book) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.failures["SaveBooks"]; err != nil {
		return err
	}
	// Храним копию, чтобы вызывающий код не мог изменить состояние после записи.
	s.books = cloneBooks(books)
	return nil
}

// LoadReservations возвращает копию коллекции броней.
func (s *catalogStoreInMemory) LoadReservations(_ context.Context) ([]domain.Reservation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if err := s.failures["LoadReservations"]; err != nil {
		return nil, err
	}
	return cloneReservations(s.reservations), nil
}

// SaveReservations заменяет коллекцию броней целиком.
func (s *catalogStoreInMemory) SaveReservations(_ context.Context, reservations []domain.Reservation) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.failures["SaveReservations"]; err != nil {
		return err
	}
	s.reservations = cloneReservations(reservations)
	return nil
}

func (s *catalogStoreInMemory) Ping(_ context.Context) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.failures["Ping"]
}

func cloneBooks(books []domain.Book) []domain.Book {
	result := make([]domain.Book, len(books))
	copy(result, books)
	return result
}

func cloneReservations(reservations []domain.Reservation) []domain.Reservation {
	result := make([]domain.Reservation, len(reservations))
	copy(result, reservations)
	return result
}

var _ domain.CatalogStore = (*catalogStoreInMemory)(nil)

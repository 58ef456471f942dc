package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/vladislavdragonenkov/booklibrary/internal/domain"
)

const opTimeout = 5 * time.Second

type catalogStore struct {
	db *sql.DB
}

// NewCatalogStore создаёт PostgreSQL-реализацию CatalogStore.
// Коллекция сохраняется целиком в одной транзакции, порядок хранится в колонке position.
func NewCatalogStore(store *Store) domain.CatalogStore {
	return &catalogStore{db: store.DB()}
}

func (s *catalogStore) LoadBooks(ctx context.Context) ([]domain.Book, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	rows, err := s.db.QueryContext(ctx, `
		SELECT guid, name, author, category, language, publication_date, isbn
		FROM books
		ORDER BY position
	`)
	if err != nil {
		return nil, fmt.Errorf("query books: %w", err)
	}
	defer rows.Close()

	books := []domain.Book{}
	for rows.Next() {
		var b domain.Book
		if err := rows.Scan(&b.GUID, &b.Name, &b.Author, &b.Category, &b.Language, &b.PublicationDate, &b.ISBN); err != nil {
			return nil, fmt.Errorf("scan book: %w", err)
		}
		books = append(books, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate books: %w", err)
	}
	return books, nil
}

func (s *catalogStore) SaveBooks(ctx context.Context, books []domain.Book) error {
	return s.replace(ctx, "books", func(ctx context.Context, tx *sql.Tx) error {
		for i, b := range books {
			if _, err := tx.ExecContext(ctx, `
				INSERT INTO books (guid, position, name, author, category, language, publication_date, isbn)
				VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
			`, b.GUID, i, b.Name, b.Author, b.Category, b.Language, b.PublicationDate, b.ISBN); err != nil {
				return fmt.Errorf("insert book %d: %w", b.GUID, err)
			}
		}
		return nil
	})
}

func (s *catalogStore) LoadReservations(ctx context.Context) ([]domain.Reservation, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	rows, err := s.db.QueryContext(ctx, `
		SELECT book_guid, client_name, taken_until_date
		FROM reservations
		ORDER BY position
	`)
	if err != nil {
		return nil, fmt.Errorf("query reservations: %w", err)
	}
	defer rows.Close()

	reservations := []domain.Reservation{}
	for rows.Next() {
		var r domain.Reservation
		if err := rows.Scan(&r.BookGUID, &r.ClientName, &r.TakenUntilDate); err != nil {
			return nil, fmt.Errorf("scan reservation: %w", err)
		}
		reservations = append(reservations, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate reservations: %w", err)
	}
	return reservations, nil
}

func (s *catalogStore) SaveReservations(ctx context.Context, reservations []domain.Reservation) error {
	return s.replace(ctx, "reservations", func(ctx context.Context, tx *sql.Tx) error {
		for i, r := range reservations {
			if _, err := tx.ExecContext(ctx, `
				INSERT INTO reservations (position, book_guid, client_name, taken_until_date)
				VALUES ($1, $2, $3, $4)
			`, i, r.BookGUID, r.ClientName, r.TakenUntilDate); err != nil {
				return fmt.Errorf("insert reservation for book %d: %w", r.BookGUID, err)
			}
		}
		return nil
	})
}

func (s *catalogStore) Ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()
	return s.db.PingContext(ctx)
}

// replace очищает таблицу и заполняет её заново внутри одной транзакции.
func (s *catalogStore) replace(ctx context.Context, table string, fill func(ctx context.Context, tx *sql.Tx) error) (err error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if _, err = tx.ExecContext(ctx, `DELETE FROM `+table); err != nil {
		return fmt.Errorf("clear %s: %w", table, err)
	}
	if err = fill(ctx, tx); err != nil {
		return err
	}
	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit %s: %w", table, err)
	}
	return nil
}

// Package file хранит каталог и брони в JSON-файлах: по одному массиву на коллекцию.
package file

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	jsoniter "github.com/json-iterator/go"

	"github.com/vladislavdragonenkov/booklibrary/internal/domain"
)

const (
	DefaultBooksFile        = "all-books.json"
	DefaultReservationsFile = "book-reservations.json"

	filePerm = 0o644
	dirPerm  = 0o755
)

var codec = jsoniter.ConfigCompatibleWithStandardLibrary

// Store — файловая реализация domain.CatalogStore.
type Store struct {
	mu    sync.RWMutex
	dir   string
	paths map[string]string
}

// Options задаёт расположение файлов коллекций.
type Options struct {
	Dir              string
	BooksFile        string
	ReservationsFile string
}

// Open готовит каталог хранения: создаёт директорию и пустые коллекции, если их ещё нет.
func Open(opts Options) (*Store, error) {
	if opts.Dir == "" {
		return nil, errors.New("storage directory is required")
	}
	if opts.BooksFile == "" {
		opts.BooksFile = DefaultBooksFile
	}
	if opts.ReservationsFile == "" {
		opts.ReservationsFile = DefaultReservationsFile
	}

	if err := os.MkdirAll(opts.Dir, dirPerm); err != nil {
		return nil, fmt.Errorf("create storage dir %s: %w", opts.Dir, err)
	}

	s := &Store{
		dir: opts.Dir,
		paths: map[string]string{
			domain.CollectionBooks:        filepath.Join(opts.Dir, opts.BooksFile),
			domain.CollectionReservations: filepath.Join(opts.Dir, opts.ReservationsFile),
		},
	}

	for key, path := range s.paths {
		if _, err := os.Stat(path); err == nil {
			continue
		} else if !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("stat %s collection: %w", key, err)
		}
		if err := writeAtomic(path, []byte("[]")); err != nil {
			return nil, fmt.Errorf("init %s collection: %w", key, err)
		}
	}

	return s, nil
}

// Path возвращает путь к файлу коллекции.
func (s *Store) Path(collection string) string {
	return s.paths[collection]
}

func (s *Store) LoadBooks(ctx context.Context) ([]domain.Book, error) {
	var books []domain.Book
	if err := s.read(ctx, domain.CollectionBooks, &books); err != nil {
		return nil, err
	}
	if books == nil {
		books = []domain.Book{}
	}
	return books, nil
}

func (s *Store) SaveBooks(ctx context.Context, books []domain.Book) error {
	if books == nil {
		books = []domain.Book{}
	}
	return s.write(ctx, domain.CollectionBooks, books)
}

func (s *Store) LoadReservations(ctx context.Context) ([]domain.Reservation, error) {
	var reservations []domain.Reservation
	if err := s.read(ctx, domain.CollectionReservations, &reservations); err != nil {
		return nil, err
	}
	if reservations == nil {
		reservations = []domain.Reservation{}
	}
	return reservations, nil
}

func (s *Store) SaveReservations(ctx context.Context, reservations []domain.Reservation) error {
	if reservations == nil {
		reservations = []domain.Reservation{}
	}
	return s.write(ctx, domain.CollectionReservations, reservations)
}

// Ping проверяет, что директория хранения доступна.
func (s *Store) Ping(_ context.Context) error {
	info, err := os.Stat(s.dir)
	if err != nil {
		return fmt.Errorf("stat storage dir: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("storage path %s is not a directory", s.dir)
	}
	return nil
}

func (s *Store) read(ctx context.Context, collection string, dest any) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	path := s.paths[collection]
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read %s from %s: %w", collection, path, err)
	}
	if err := codec.Unmarshal(data, dest); err != nil {
		return fmt.Errorf("decode %s from %s: %w", collection, path, err)
	}
	return nil
}

func (s *Store) write(ctx context.Context, collection string, value any) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	data, err := codec.MarshalIndent(value, "", "  ")
	if err != nil {
		return fmt.Errorf("encode %s: %w", collection, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	path := s.paths[collection]
	if err := writeAtomic(path, data); err != nil {
		return fmt.Errorf("write %s to %s: %w", collection, path, err)
	}
	return nil
}

// writeAtomic пишет во временный файл рядом с целевым и переименовывает его,
// так что читатель видит либо старую, либо новую коллекцию целиком.
func writeAtomic(path string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".*.tmp")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return err
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return err
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return err
	}
	if err := os.Chmod(tmpName, filePerm); err != nil {
		_ = os.Remove(tmpName)
		return err
	}
	return os.Rename(tmpName, path)
}

var _ domain.CatalogStore = (*Store)(nil)

package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/vladislavdragonenkov/booklibrary/internal/domain"
)

// catalogTables — таблицы коллекций каталога в порядке миграций.
var catalogTables = []string{domain.CollectionBooks, domain.CollectionReservations}

// TableInfo описывает таблицу коллекции: есть ли она в схеме и сколько в ней строк.
type TableInfo struct {
	Name   string
	Exists bool
	Rows   int64
}

// CatalogTables сообщает состояние таблиц books и reservations.
func (s *Store) CatalogTables(ctx context.Context) ([]TableInfo, error) {
	if s == nil || s.db == nil {
		return nil, errNotInitialized
	}

	queryCtx, cancel := context.WithTimeout(ctx, migrationTimeout)
	defer cancel()

	result := make([]TableInfo, 0, len(catalogTables))
	for _, name := range catalogTables {
		info := TableInfo{Name: name}

		var regclass sql.NullString
		if err := s.db.QueryRowContext(queryCtx, `SELECT to_regclass($1)::text`, name).Scan(&regclass); err != nil {
			return nil, fmt.Errorf("lookup table %s: %w", name, err)
		}
		info.Exists = regclass.Valid
		if info.Exists {
			// имя берётся только из catalogTables, не из ввода
			if err := s.db.QueryRowContext(queryCtx, `SELECT COUNT(*) FROM `+name).Scan(&info.Rows); err != nil {
				return nil, fmt.Errorf("count rows in %s: %w", name, err)
			}
		}
		result = append(result, info)
	}
	return result, nil
}

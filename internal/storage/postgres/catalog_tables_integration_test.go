package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/vladislavdragonenkov/booklibrary/internal/domain"
)

func TestCatalogTables_ReflectSchemaAndRows(t *testing.T) {
	store := openMigratedStoreForIntegrationTest(t)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	catalog := NewCatalogStore(store)
	if err := catalog.SaveBooks(ctx, []domain.Book{
		{GUID: 1, Name: "A", PublicationDate: domain.NewDate(2020, time.January, 1)},
		{GUID: 2, Name: "B", PublicationDate: domain.NewDate(2021, time.January, 1)},
	}); err != nil {
		t.Fatalf("save books: %v", err)
	}

	tables, err := store.CatalogTables(ctx)
	if err != nil {
		t.Fatalf("catalog tables: %v", err)
	}
	want := []TableInfo{
		{Name: "books", Exists: true, Rows: 2},
		{Name: "reservations", Exists: true, Rows: 0},
	}
	if len(tables) != len(want) {
		t.Fatalf("expected %d tables, got %+v", len(want), tables)
	}
	for i := range want {
		if tables[i] != want[i] {
			t.Fatalf("table %d: expected %+v, got %+v", i, want[i], tables[i])
		}
	}

	if err := store.MigrateDown(ctx, 1); err != nil {
		t.Fatalf("migrate down: %v", err)
	}
	t.Cleanup(func() { _ = store.EnsureSchema(context.Background()) })

	tables, err = store.CatalogTables(ctx)
	if err != nil {
		t.Fatalf("catalog tables after down: %v", err)
	}
	if !tables[0].Exists || tables[1].Exists {
		t.Fatalf("expected only books to remain after rolling back reservations, got %+v", tables)
	}
}

func TestCatalogTables_NilStore(t *testing.T) {
	var store *Store
	if _, err := store.CatalogTables(context.Background()); err == nil {
		t.Fatal("expected error for nil store")
	}
}

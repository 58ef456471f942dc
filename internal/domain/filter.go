package domain

import "strings"

// BookFilter — параметры выборки книг. Пустое (или из одних пробелов) значение поля
// означает отсутствие ограничения. Все условия объединяются через AND.
type BookFilter struct {
	Name          string
	Author        string
	Category      string
	Language      string
	ISBN          string
	OnlyTaken     bool
	OnlyAvailable bool
}

// Validate проверяет непротиворечивость фильтра.
func (f BookFilter) Validate() error {
	if f.OnlyTaken && f.OnlyAvailable {
		return ErrConflictingFilter
	}
	return nil
}

// NeedsReservations сообщает, нужна ли для фильтра коллекция броней.
func (f BookFilter) NeedsReservations() bool {
	return f.OnlyTaken || f.OnlyAvailable
}

// FilterBooks возвращает книги, прошедшие все условия фильтра, в исходном порядке каталога.
// Противоречивый фильтр отклоняется до какой-либо обработки.
func FilterBooks(books []Book, reservations []Reservation, f BookFilter) ([]Book, error) {
	if err := f.Validate(); err != nil {
		return nil, err
	}

	var taken map[int64]struct{}
	if f.NeedsReservations() {
		taken = TakenBookGUIDs(reservations)
	}

	result := make([]Book, 0, len(books))
	for _, b := range books {
		if !matchField(b.Name, f.Name) ||
			!matchField(b.Author, f.Author) ||
			!matchField(b.Category, f.Category) ||
			!matchField(b.Language, f.Language) ||
			!matchField(b.ISBN, f.ISBN) {
			continue
		}
		_, isTaken := taken[b.GUID]
		if f.OnlyTaken && !isTaken {
			continue
		}
		if f.OnlyAvailable && isTaken {
			continue
		}
		result = append(result, b)
	}
	return result, nil
}

// matchField — точное регистрозависимое совпадение либо выключенный фильтр.
func matchField(value, filter string) bool {
	return strings.TrimSpace(filter) == "" || value == filter
}

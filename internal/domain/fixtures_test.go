package domain

import "time"

func newTestBook(guid int64) Book {
	return Book{
		GUID:            guid,
		Name:            "Test Book",
		Author:          "Test Author",
		Category:        "Test Category",
		Language:        "Test Language",
		PublicationDate: NewDate(2020, time.February, 12),
		ISBN:            "1234567890123",
	}
}

// newTestCatalog повторяет набор, где каждая книга после второй отличается ровно одним полем.
func newTestCatalog() []Book {
	books := []Book{newTestBook(1), newTestBook(2)}

	b := newTestBook(3)
	b.Name = "Not Test Book"
	books = append(books, b)

	b = newTestBook(4)
	b.Author = "Not Test Author"
	books = append(books, b)

	b = newTestBook(5)
	b.Category = "Not Test Category"
	books = append(books, b)

	b = newTestBook(6)
	b.Language = "Not Test Language"
	books = append(books, b)

	b = newTestBook(7)
	b.ISBN = "1234567899999"
	books = append(books, b)

	return books
}

func guids(books []Book) []int64 {
	result := make([]int64, 0, len(books))
	for _, b := range books {
		result = append(result, b.GUID)
	}
	return result
}

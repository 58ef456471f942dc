package domain

// Book описывает книгу каталога. После создания книга не изменяется, её можно только удалить.
type Book struct {
	GUID            int64  `json:"guid"`
	Name            string `json:"name"`
	Author          string `json:"author"`
	Category        string `json:"category"`
	Language        string `json:"language"`
	PublicationDate Date   `json:"publicationDate"`
	ISBN            string `json:"isbn"`
}

// findBook возвращает индекс книги с указанным guid или -1.
func findBook(books []Book, guid int64) int {
	for i := range books {
		if books[i].GUID == guid {
			return i
		}
	}
	return -1
}

// FindBook ищет книгу по guid в загруженном каталоге.
func FindBook(books []Book, guid int64) (Book, bool) {
	idx := findBook(books, guid)
	if idx < 0 {
		return Book{}, false
	}
	return books[idx], true
}

// RemoveBook возвращает каталог без книги guid, сохраняя порядок остальных записей.
// Исходный срез не изменяется.
func RemoveBook(books []Book, guid int64) ([]Book, bool) {
	idx := findBook(books, guid)
	if idx < 0 {
		return books, false
	}
	result := make([]Book, 0, len(books)-1)
	result = append(result, books[:idx]...)
	result = append(result, books[idx+1:]...)
	return result, true
}

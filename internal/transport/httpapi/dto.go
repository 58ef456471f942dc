package httpapi

import "github.com/vladislavdragonenkov/booklibrary/internal/domain"

// createBookRequest описывает тело POST /v1/books.
type createBookRequest struct {
	GUID            *int64      `json:"guid" validate:"required,min=0"`
	Name            string      `json:"name" validate:"notblank"`
	Author          string      `json:"author" validate:"notblank"`
	Category        string      `json:"category" validate:"notblank"`
	Language        string      `json:"language" validate:"notblank"`
	PublicationDate domain.Date `json:"publicationDate" validate:"required,notfuture"`
	ISBN            string      `json:"isbn" validate:"notblank,isbndigits"`
}

func (r createBookRequest) toDomain() domain.Book {
	return domain.Book{
		GUID:            *r.GUID,
		Name:            r.Name,
		Author:          r.Author,
		Category:        r.Category,
		Language:        r.Language,
		PublicationDate: r.PublicationDate,
		ISBN:            r.ISBN,
	}
}

// reserveBookRequest описывает тело POST /v1/books/:bookGuid/reserve.
// bookGuid из тела принимается, но заменяется значением из пути.
type reserveBookRequest struct {
	BookGUID       *int64      `json:"bookGuid"`
	ClientName     string      `json:"clientName" validate:"notblank"`
	TakenUntilDate domain.Date `json:"takenUntilDate" validate:"required,todayorlater"`
}

func (r reserveBookRequest) toDomain() domain.Reservation {
	return domain.Reservation{
		ClientName:     r.ClientName,
		TakenUntilDate: r.TakenUntilDate,
	}
}

// listBooksQuery описывает параметры GET /v1/books.
type listBooksQuery struct {
	Name            string `form:"name"`
	Author          string `form:"author"`
	Category        string `form:"category"`
	Language        string `form:"language"`
	ISBN            string `form:"isbn"`
	IsOnlyTaken     bool   `form:"isOnlyTaken"`
	IsOnlyAvailable bool   `form:"isOnlyAvailable"`
}

func (q listBooksQuery) toFilter() domain.BookFilter {
	return domain.BookFilter{
		Name:          q.Name,
		Author:        q.Author,
		Category:      q.Category,
		Language:      q.Language,
		ISBN:          q.ISBN,
		OnlyTaken:     q.IsOnlyTaken,
		OnlyAvailable: q.IsOnlyAvailable,
	}
}

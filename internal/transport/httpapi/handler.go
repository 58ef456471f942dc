package httpapi

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	"github.com/vladislavdragonenkov/booklibrary/internal/domain"
)

// BookService — операции каталога, которые обслуживает API.
type BookService interface {
	CreateBook(ctx context.Context, book domain.Book) (domain.Book, error)
	ReserveBook(ctx context.Context, bookGUID int64, reservation domain.Reservation) (domain.Reservation, error)
	GetBookByGUID(ctx context.Context, guid int64) (domain.Book, error)
	ListBooks(ctx context.Context, filter domain.BookFilter) ([]domain.Book, error)
	DeleteBook(ctx context.Context, guid int64) error
}

// BookHandler обрабатывает запросы /v1/books.
type BookHandler struct {
	service  BookService
	validate *validator.Validate
}

// NewBookHandler создаёт обработчик. now задаёт «сегодня» для проверок дат, при nil используется time.Now.
func NewBookHandler(service BookService, now func() time.Time) *BookHandler {
	if now == nil {
		now = time.Now
	}
	return &BookHandler{
		service:  service,
		validate: newValidator(now),
	}
}

// Register вешает маршруты на группу.
func (h *BookHandler) Register(group *gin.RouterGroup) {
	group.POST("", h.Create)
	group.GET("", h.List)
	group.GET("/:bookGuid", h.Get)
	group.DELETE("/:bookGuid", h.Delete)
	group.POST("/:bookGuid/reserve", h.Reserve)
}

// Create обрабатывает POST /v1/books.
func (h *BookHandler) Create(c *gin.Context) {
	var req createBookRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeInvalidRequest(c, "Invalid request body: "+err.Error())
		return
	}
	if err := h.validate.Struct(req); err != nil {
		writeInvalidRequest(c, describeValidationError(err))
		return
	}

	book, err := h.service.CreateBook(c.Request.Context(), req.toDomain())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, book)
}

// Reserve обрабатывает POST /v1/books/:bookGuid/reserve.
func (h *BookHandler) Reserve(c *gin.Context) {
	guid, ok := bookGUIDParam(c)
	if !ok {
		return
	}

	var req reserveBookRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeInvalidRequest(c, "Invalid request body: "+err.Error())
		return
	}
	if err := h.validate.Struct(req); err != nil {
		writeInvalidRequest(c, describeValidationError(err))
		return
	}

	reservation, err := h.service.ReserveBook(c.Request.Context(), guid, req.toDomain())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, reservation)
}

// Get обрабатывает GET /v1/books/:bookGuid.
func (h *BookHandler) Get(c *gin.Context) {
	guid, ok := bookGUIDParam(c)
	if !ok {
		return
	}

	book, err := h.service.GetBookByGUID(c.Request.Context(), guid)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, book)
}

// List обрабатывает GET /v1/books.
func (h *BookHandler) List(c *gin.Context) {
	var query listBooksQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		writeInvalidRequest(c, "Invalid query parameters: "+err.Error())
		return
	}

	books, err := h.service.ListBooks(c.Request.Context(), query.toFilter())
	if err != nil {
		writeError(c, err)
		return
	}
	if books == nil {
		books = []domain.Book{}
	}
	c.JSON(http.StatusOK, books)
}

// Delete обрабатывает DELETE /v1/books/:bookGuid.
func (h *BookHandler) Delete(c *gin.Context) {
	guid, ok := bookGUIDParam(c)
	if !ok {
		return
	}

	if err := h.service.DeleteBook(c.Request.Context(), guid); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusOK)
}

func bookGUIDParam(c *gin.Context) (int64, bool) {
	raw := c.Param("bookGuid")
	guid, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || guid < 0 {
		writeInvalidRequest(c, "Invalid request: bookGuid must be a non-negative integer, got "+strconv.Quote(raw))
		return 0, false
	}
	return guid, true
}

package httpapi

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/vladislavdragonenkov/booklibrary/internal/domain"
)

// Виды ошибок, которые существуют только на транспортном уровне.
const (
	KindInvalidRequest domain.ErrorKind = "INVALID_REQUEST"
	KindSystemError    domain.ErrorKind = "SYSTEM_ERR"

	systemErrorText = "Internal server error occurred"
)

// ErrorResponse — тело ответа с ошибкой.
type ErrorResponse struct {
	HTTPStatus string `json:"httpStatus"`
	ErrorName  string `json:"errorName"`
	Text       string `json:"text"`
}

// statusFor сопоставляет виду ошибки HTTP-код.
// Бизнес-отказы отдаются как 400, недоступность хранилища как 503.
func statusFor(kind domain.ErrorKind) int {
	switch kind {
	case domain.KindStorageUnavailable:
		return http.StatusServiceUnavailable
	case KindSystemError, "":
		return http.StatusInternalServerError
	default:
		return http.StatusBadRequest
	}
}

// statusLine форматирует код как "400 BAD_REQUEST".
func statusLine(code int) string {
	text := strings.ToUpper(strings.ReplaceAll(http.StatusText(code), " ", "_"))
	return fmt.Sprintf("%d %s", code, text)
}

func newErrorResponse(kind domain.ErrorKind, text string) (int, ErrorResponse) {
	code := statusFor(kind)
	return code, ErrorResponse{
		HTTPStatus: statusLine(code),
		ErrorName:  string(kind),
		Text:       text,
	}
}

// writeError переводит ошибку сервиса в JSON-ответ и прерывает цепочку обработчиков.
func writeError(c *gin.Context, err error) {
	var domainErr *domain.Error
	kind, text := KindSystemError, systemErrorText
	if errors.As(err, &domainErr) {
		kind, text = domainErr.Kind, domainErr.Message
	}

	_ = c.Error(err)
	code, body := newErrorResponse(kind, text)
	c.AbortWithStatusJSON(code, body)
}

func writeInvalidRequest(c *gin.Context, text string) {
	_ = c.Error(errors.New(text))
	code, body := newErrorResponse(KindInvalidRequest, text)
	c.AbortWithStatusJSON(code, body)
}

package domain

import (
	"errors"
	"fmt"
)

// ErrorKind — стабильное машиночитаемое имя ошибки.
type ErrorKind string

const (
	KindStorageUnavailable ErrorKind = "SERVICE_UNAVAILABLE"
	KindAlreadyExists      ErrorKind = "BOOK_ALREADY_EXISTS"
	KindNotFound           ErrorKind = "BOOK_DOESNT_EXIST"
	KindAlreadyReserved    ErrorKind = "RESERVATION_INVALID_BOOK_ALREADY_TAKEN"
	KindPeriodExceeded     ErrorKind = "RESERVATION_INVALID_EXCEEDS_ALLOWED_PERIOD"
	KindQuotaReached       ErrorKind = "RESERVATION_INVALID_MAX_RESERVATIONS_REACHED"
	KindConflictingFilter  ErrorKind = "CANT_REQUEST_BOTH_TAKEN_AND_AVAILABLE"
)

// Error — ошибка ядра каталога: вид, текст для пользователя и (опционально) причина.
// Протокольные коды (HTTP и пр.) сюда не входят, их назначает транспортный слой.
type Error struct {
	Kind    ErrorKind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

// Is сравнивает ошибки по виду, поэтому errors.Is(err, ErrBookNotFound) срабатывает
// и для обёрнутых копий с причиной.
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) {
		return false
	}
	return e.Kind == t.Kind
}

var (
	// ErrStorageUnavailable — хранилище каталога не смогло прочитать или записать коллекцию.
	ErrStorageUnavailable = &Error{Kind: KindStorageUnavailable, Message: "Requested service is unavailable"}
	// ErrBookAlreadyExists — книга с таким guid уже есть в каталоге.
	ErrBookAlreadyExists = &Error{Kind: KindAlreadyExists, Message: "This book already exists"}
	// ErrBookNotFound — книги с таким guid нет.
	ErrBookNotFound = &Error{Kind: KindNotFound, Message: "Requested book doesn't exist"}
	// ErrBookAlreadyReserved — на книгу уже есть бронь.
	ErrBookAlreadyReserved = &Error{Kind: KindAlreadyReserved, Message: "Reservation is invalid. This book is already taken"}
	// ErrReservationPeriodExceeded — срок брони выходит за допустимую границу.
	ErrReservationPeriodExceeded = &Error{Kind: KindPeriodExceeded, Message: "Reservation is invalid. Reservation period exceeds allowed boundaries"}
	// ErrReservationQuotaReached — у клиента уже максимальное число броней.
	ErrReservationQuotaReached = &Error{Kind: KindQuotaReached, Message: "Reservation is invalid. This client has already reached the maximum number of reservations."}
	// ErrConflictingFilter — одновременно запрошены только занятые и только свободные книги.
	ErrConflictingFilter = &Error{Kind: KindConflictingFilter, Message: "It is not possible to request both only taken and only available books."}
)

// StorageUnavailable оборачивает сбой хранилища в ошибку вида SERVICE_UNAVAILABLE.
// Уже классифицированные ошибки возвращаются как есть.
func StorageUnavailable(err error) error {
	if err == nil {
		return nil
	}
	var domainErr *Error
	if errors.As(err, &domainErr) {
		return err
	}
	return &Error{Kind: KindStorageUnavailable, Message: ErrStorageUnavailable.Message, Err: err}
}

// KindOf возвращает вид доменной ошибки или пустую строку для прочих ошибок.
func KindOf(err error) ErrorKind {
	var domainErr *Error
	if errors.As(err, &domainErr) {
		return domainErr.Kind
	}
	return ""
}

// IsNotFound проверяет, что книга не найдена.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrBookNotFound)
}

// IsStorageUnavailable проверяет, что ошибка пришла из хранилища.
func IsStorageUnavailable(err error) bool {
	return errors.Is(err, ErrStorageUnavailable)
}

// IsReservationRejected проверяет, что бронь отклонена одним из правил валидатора
// (кроме отсутствия книги).
func IsReservationRejected(err error) bool {
	switch KindOf(err) {
	case KindAlreadyReserved, KindPeriodExceeded, KindQuotaReached:
		return true
	default:
		return false
	}
}

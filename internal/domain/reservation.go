package domain

// Reservation — бронь книги клиентом до указанной даты.
// Бронь не снимается и не истекает: запись остаётся в коллекции навсегда.
type Reservation struct {
	BookGUID       int64  `json:"bookGuid"`
	ClientName     string `json:"clientName"`
	TakenUntilDate Date   `json:"takenUntilDate"`
}

// ReservationPolicy задаёт ограничения на бронирование.
// Передаётся в валидатор при каждом вызове, глобального состояния нет.
type ReservationPolicy struct {
	// MaxPeriodMonths — верхняя (исключающая) граница срока брони в полных месяцах.
	MaxPeriodMonths int
	// MaxPerClient — максимальное число броней у одного клиента.
	MaxPerClient int
}

// DefaultReservationPolicy возвращает лимиты по умолчанию.
func DefaultReservationPolicy() ReservationPolicy {
	return ReservationPolicy{
		MaxPeriodMonths: 2,
		MaxPerClient:    1,
	}
}

// TakenBookGUIDs возвращает множество guid книг, на которые есть хоть одна бронь (независимо от даты).
func TakenBookGUIDs(reservations []Reservation) map[int64]struct{} {
	taken := make(map[int64]struct{}, len(reservations))
	for _, r := range reservations {
		taken[r.BookGUID] = struct{}{}
	}
	return taken
}

// CountClientReservations считает брони клиента (точное совпадение имени).
func CountClientReservations(reservations []Reservation, clientName string) int {
	count := 0
	for _, r := range reservations {
		if r.ClientName == clientName {
			count++
		}
	}
	return count
}

package domain

// ValidateReservation решает, допустима ли новая бронь.
// Правила проверяются строго по порядку, возвращается первая нарушенная:
//
//  1. книга существует в каталоге (ErrBookNotFound);
//  2. на книгу нет ни одной брони, дата брони не учитывается (ErrBookAlreadyReserved);
//  3. полных месяцев от today до TakenUntilDate строго меньше policy.MaxPeriodMonths
//     (ErrReservationPeriodExceeded);
//  4. у клиента меньше policy.MaxPerClient броней, кандидат ещё не учтён (ErrReservationQuotaReached).
func ValidateReservation(
	candidate Reservation,
	books []Book,
	reservations []Reservation,
	policy ReservationPolicy,
	today Date,
) error {
	if findBook(books, candidate.BookGUID) < 0 {
		return ErrBookNotFound
	}

	for _, r := range reservations {
		if r.BookGUID == candidate.BookGUID {
			return ErrBookAlreadyReserved
		}
	}

	if MonthsBetween(today, candidate.TakenUntilDate) >= policy.MaxPeriodMonths {
		return ErrReservationPeriodExceeded
	}

	if CountClientReservations(reservations, candidate.ClientName) >= policy.MaxPerClient {
		return ErrReservationQuotaReached
	}

	return nil
}

package domain

import (
	"errors"
	"reflect"
	"testing"
)

func TestFilterBooks(t *testing.T) {
	catalog := newTestCatalog()
	reservations := []Reservation{
		{BookGUID: 1, ClientName: "Test Client"},
		{BookGUID: 6, ClientName: "Other Client"},
	}

	tests := []struct {
		name   string
		filter BookFilter
		want   []int64
	}{
		{name: "no filters", filter: BookFilter{}, want: []int64{1, 2, 3, 4, 5, 6, 7}},
		{name: "blank values are ignored", filter: BookFilter{Name: "  ", Author: ""}, want: []int64{1, 2, 3, 4, 5, 6, 7}},
		{name: "by name", filter: BookFilter{Name: "Not Test Book"}, want: []int64{3}},
		{name: "by author", filter: BookFilter{Author: "Test Author"}, want: []int64{1, 2, 3, 5, 6, 7}},
		{name: "by category", filter: BookFilter{Category: "Not Test Category"}, want: []int64{5}},
		{name: "by language", filter: BookFilter{Language: "Not Test Language"}, want: []int64{6}},
		{name: "by isbn", filter: BookFilter{ISBN: "1234567899999"}, want: []int64{7}},
		{
			name: "all fields",
			filter: BookFilter{
				Name:     "Test Book",
				Author:   "Test Author",
				Category: "Test Category",
				Language: "Test Language",
				ISBN:     "1234567890123",
			},
			want: []int64{1, 2},
		},
		{name: "case sensitive", filter: BookFilter{Name: "test book"}, want: []int64{}},
		{name: "no partial match", filter: BookFilter{Name: "Test"}, want: []int64{}},
		{name: "only taken", filter: BookFilter{OnlyTaken: true}, want: []int64{1, 6}},
		{name: "only available", filter: BookFilter{OnlyAvailable: true}, want: []int64{2, 3, 4, 5, 7}},
		{
			name: "all fields and only taken",
			filter: BookFilter{
				Name:      "Test Book",
				Author:    "Test Author",
				Category:  "Test Category",
				Language:  "Test Language",
				ISBN:      "1234567890123",
				OnlyTaken: true,
			},
			want: []int64{1},
		},
		{name: "some fields and only taken", filter: BookFilter{Name: "Test Book", ISBN: "1234567890123", OnlyTaken: true}, want: []int64{1, 6}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := FilterBooks(catalog, reservations, tt.filter)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !reflect.DeepEqual(guids(got), tt.want) {
				t.Errorf("FilterBooks() = %v, want %v", guids(got), tt.want)
			}
		})
	}
}

func TestFilterBooks_ConflictingFlags(t *testing.T) {
	got, err := FilterBooks(newTestCatalog(), nil, BookFilter{OnlyTaken: true, OnlyAvailable: true})
	if !errors.Is(err, ErrConflictingFilter) {
		t.Fatalf("expected conflicting filter error, got %v", err)
	}
	if got != nil {
		t.Fatalf("expected no result, got %v", got)
	}
}

func TestFilterBooks_ReservationDateIgnored(t *testing.T) {
	catalog := newTestCatalog()
	// Просроченная бронь всё равно делает книгу занятой.
	reservations := []Reservation{{BookGUID: 2, ClientName: "Late", TakenUntilDate: NewDate(2000, 1, 1)}}

	got, err := FilterBooks(catalog, reservations, BookFilter{OnlyTaken: true})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !reflect.DeepEqual(guids(got), []int64{2}) {
		t.Fatalf("unexpected result: %v", guids(got))
	}
}

func TestFilterBooks_DoesNotMutateInput(t *testing.T) {
	catalog := newTestCatalog()
	before := guids(catalog)

	if _, err := FilterBooks(catalog, nil, BookFilter{Name: "Not Test Book"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !reflect.DeepEqual(guids(catalog), before) {
		t.Fatal("catalog was modified")
	}
}

func TestBookFilter_NeedsReservations(t *testing.T) {
	if (BookFilter{Name: "x"}).NeedsReservations() {
		t.Error("field filters do not need reservations")
	}
	if !(BookFilter{OnlyAvailable: true}).NeedsReservations() {
		t.Error("availability filter needs reservations")
	}
}

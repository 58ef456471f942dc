package domain

import (
	"database/sql/driver"
	"fmt"
	"strings"
	"time"
)

// DateLayout — формат календарной даты в JSON и файлах хранилища.
const DateLayout = "2006-01-02"

// Date описывает календарную дату без времени суток (полночь UTC).
type Date struct {
	t time.Time
}

// NewDate создаёт дату из года, месяца и дня. Переполнения нормализуются как в time.Date.
func NewDate(year int, month time.Month, day int) Date {
	return Date{t: time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

// DateOf отбрасывает время суток, сохраняя календарный день в зоне исходного времени.
func DateOf(t time.Time) Date {
	y, m, d := t.Date()
	return NewDate(y, m, d)
}

// ParseDate разбирает дату в формате YYYY-MM-DD.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(DateLayout, strings.TrimSpace(s))
	if err != nil {
		return Date{}, fmt.Errorf("parse date %q: %w", s, err)
	}
	return Date{t: t}, nil
}

// IsZero сообщает, задана ли дата.
func (d Date) IsZero() bool { return d.t.IsZero() }

// Time возвращает полночь UTC этого дня.
func (d Date) Time() time.Time { return d.t }

func (d Date) String() string {
	if d.IsZero() {
		return ""
	}
	return d.t.Format(DateLayout)
}

// Before сообщает, что d раньше other.
func (d Date) Before(other Date) bool { return d.t.Before(other.t) }

// After сообщает, что d позже other.
func (d Date) After(other Date) bool { return d.t.After(other.t) }

// Equal сравнивает календарные дни.
func (d Date) Equal(other Date) bool { return d.t.Equal(other.t) }

// AddMonths сдвигает дату на n месяцев (с нормализацией переполнения дня, как time.AddDate).
func (d Date) AddMonths(n int) Date {
	return Date{t: d.t.AddDate(0, n, 0)}
}

// AddDays сдвигает дату на n дней.
func (d Date) AddDays(n int) Date {
	return Date{t: d.t.AddDate(0, 0, n)}
}

// MonthsBetween возвращает количество полных месяцев от from до to.
// Неполный месяц отбрасывается в сторону нуля, результат отрицательный, если to раньше from.
func MonthsBetween(from, to Date) int {
	return (packedMonthDay(to) - packedMonthDay(from)) / 32
}

func packedMonthDay(d Date) int {
	y, m, day := d.t.Date()
	return (y*12+int(m)-1)*32 + day
}

func (d Date) MarshalJSON() ([]byte, error) {
	if d.IsZero() {
		return []byte("null"), nil
	}
	return []byte(`"` + d.t.Format(DateLayout) + `"`), nil
}

func (d *Date) UnmarshalJSON(data []byte) error {
	s := strings.TrimSpace(string(data))
	if s == "null" || s == `""` {
		*d = Date{}
		return nil
	}
	if len(s) < 2 || s[0] != '"' || s[len(s)-1] != '"' {
		return fmt.Errorf("date must be a string in %s format", DateLayout)
	}
	parsed, err := ParseDate(s[1 : len(s)-1])
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// Value сохраняет дату в колонку DATE.
func (d Date) Value() (driver.Value, error) {
	if d.IsZero() {
		return nil, nil
	}
	return d.t, nil
}

// Scan читает колонку DATE.
func (d *Date) Scan(src any) error {
	switch v := src.(type) {
	case nil:
		*d = Date{}
		return nil
	case time.Time:
		*d = DateOf(v)
		return nil
	case string:
		parsed, err := ParseDate(v)
		if err != nil {
			return err
		}
		*d = parsed
		return nil
	case []byte:
		parsed, err := ParseDate(string(v))
		if err != nil {
			return err
		}
		*d = parsed
		return nil
	default:
		return fmt.Errorf("unsupported date source %T", src)
	}
}

package types

import (
	"database/sql/driver"
	"fmt"
	"time"
)

const (
	DateLayout  = time.DateOnly
	MonthLayout = "2006-01"

	secondsPerDay = 24 * 60 * 60
)

// Date is a calendar date without a time component. The zero value is not a
// valid date; use NewDate or ParseDate.
type Date struct {
	t time.Time
}

func NewDate(year int, month time.Month, day int) Date {
	return Date{t: time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

func DateOf(t time.Time) Date {
	return NewDate(t.Year(), t.Month(), t.Day())
}

func ParseDate(s string) (Date, error) {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return Date{}, fmt.Errorf("invalid date %q: %w", s, err)
	}
	return Date{t: t}, nil
}

func MustParseDate(s string) Date {
	d, err := ParseDate(s)
	if err != nil {
		panic(err)
	}
	return d
}

func (d Date) IsZero() bool { return d.t.IsZero() }
func (d Date) Time() time.Time { return d.t }
func (d Date) Year() int { return d.t.Year() }
func (d Date) Month() time.Month { return d.t.Month() }
func (d Date) AddDays(n int) Date { return Date{t: d.t.AddDate(0, 0, n)} }
func (d Date) Before(o Date) bool { return d.t.Before(o.t) }
func (d Date) After(o Date) bool { return d.t.After(o.t) }
func (d Date) Equal(o Date) bool { return d.t.Equal(o.t) }
func (d Date) MonthString() string { return d.t.Format(MonthLayout) }
func (d Date) FirstOfMonth() Date { return NewDate(d.Year(), d.Month(), 1) }
func (d Date) AddMonths(n int) Date { return Date{t: d.t.AddDate(0, n, 0)} }
func (d Date) DaysUntil(o Date) int { return int((o.t.Unix() - d.t.Unix()) / secondsPerDay) }
func (d Date) Compare(o Date) int { return d.t.Compare(o.t) }
func (d Date) MarshalText() ([]byte, error) { return []byte(d.String()), nil }

func (d Date) String() string {
	if d.t.IsZero() {
		return ""
	}
	return d.t.Format(DateLayout)
}

func (d *Date) UnmarshalText(b []byte) error {
	parsed, err := ParseDate(string(b))
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

func MinDate(a, b Date) Date {
	if b.Before(a) {
		return b
	}
	return a
}

// Value stores the date as YYYY-MM-DD, which postgres, mysql and sqlite all
// accept for DATE columns.
func (d Date) Value() (driver.Value, error) {
	if d.t.IsZero() {
		return nil, nil
	}
	return d.String(), nil
}

func (d *Date) Scan(src any) error {
	switch v := src.(type) {
	case nil:
		*d = Date{}
		return nil
	case time.Time:
		*d = DateOf(v)
		return nil
	case string:
		return d.scanString(v)
	case []byte:
		return d.scanString(string(v))
	default:
		return fmt.Errorf("cannot scan %T into Date", src)
	}
}

func (d *Date) scanString(s string) error {
	if len(s) > len(DateLayout) {
		// drivers that keep a time component, e.g. "2022-01-01T00:00:00Z"
		s = s[:len(DateLayout)]
	}
	parsed, err := ParseDate(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// NullDate is an optional Date. Callers must go through Get, so there is no
// way to do arithmetic on an absent date by accident.
type NullDate struct {
	date  Date
	valid bool
}

func SomeDate(d Date) NullDate { return NullDate{date: d, valid: true} }

func NoDate() NullDate { return NullDate{} }

func (n NullDate) Get() (Date, bool) { return n.date, n.valid }

func (n NullDate) Valid() bool { return n.valid }

// OrElse returns the date if present, otherwise fallback.
func (n NullDate) OrElse(fallback Date) Date {
	if n.valid {
		return n.date
	}
	return fallback
}

func (n NullDate) String() string {
	if !n.valid {
		return ""
	}
	return n.date.String()
}

func (n NullDate) MarshalJSON() ([]byte, error) {
	if !n.valid {
		return []byte("null"), nil
	}
	return []byte(`"` + n.date.String() + `"`), nil
}

func (n NullDate) Value() (driver.Value, error) {
	if !n.valid {
		return nil, nil
	}
	return n.date.Value()
}

func (n *NullDate) Scan(src any) error {
	if src == nil {
		*n = NullDate{}
		return nil
	}
	var d Date
	if err := d.Scan(src); err != nil {
		return err
	}
	*n = SomeDate(d)
	return nil
}

// ParseNullDate treats the empty string as an absent date.
func ParseNullDate(s string) (NullDate, error) {
	if s == "" {
		return NullDate{}, nil
	}
	d, err := ParseDate(s)
	if err != nil {
		return NullDate{}, err
	}
	return SomeDate(d), nil
}

package domain

import (
	"database/sql/driver"
	"fmt"
	"time"
)

const (
	DateLayout    = "2006-01-02"
	TimeLayout    = "15:04:05"
	displayLayout = "03:04 PM"
)

// Date is a calendar date in canonical YYYY-MM-DD form. The string backing
// keeps slot identity a plain comparable value and lets ISO dates order
// lexicographically.
type Date string

func ParseDate(s string) (Date, error) {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return "", err
	}
	return Date(t.Format(DateLayout)), nil
}

// DateOf renders t's calendar date in its own location.
func DateOf(t time.Time) Date {
	return Date(t.Format(DateLayout))
}

func (d Date) String() string { return string(d) }

func (d *Date) Scan(v any) error {
	switch src := v.(type) {
	case time.Time:
		*d = DateOf(src)
	case string:
		*d = Date(src)
	case []byte:
		*d = Date(src)
	case nil:
		*d = ""
	default:
		return fmt.Errorf("domain: cannot scan %T into Date", v)
	}
	return nil
}

func (d Date) Value() (driver.Value, error) {
	return string(d), nil
}

// TimeOfDay is a second-precision time of day in canonical HH:MM:SS form.
type TimeOfDay string

func ParseTimeOfDay(s string) (TimeOfDay, error) {
	t, err := time.Parse(TimeLayout, s)
	if err != nil {
		return "", err
	}
	return TimeOfDay(t.Format(TimeLayout)), nil
}

// TimeOfDayOf renders t's clock time in its own location.
func TimeOfDayOf(t time.Time) TimeOfDay {
	return TimeOfDay(t.Format(TimeLayout))
}

func (t TimeOfDay) String() string { return string(t) }

func (t TimeOfDay) parse() (time.Time, error) {
	return time.Parse(TimeLayout, string(t))
}

func (t TimeOfDay) Hour() int {
	p, err := t.parse()
	if err != nil {
		return 0
	}
	return p.Hour()
}

func (t TimeOfDay) Minute() int {
	p, err := t.parse()
	if err != nil {
		return 0
	}
	return p.Minute()
}

// SecondsOfDay returns the offset from midnight in seconds, the distance
// metric used for nearest-slot ranking.
func (t TimeOfDay) SecondsOfDay() int {
	p, err := t.parse()
	if err != nil {
		return 0
	}
	return p.Hour()*3600 + p.Minute()*60 + p.Second()
}

// Display renders the slot label in 12-hour form, e.g. "02:30 PM".
func (t TimeOfDay) Display() string {
	p, err := t.parse()
	if err != nil {
		return string(t)
	}
	return p.Format(displayLayout)
}

func (t *TimeOfDay) Scan(v any) error {
	switch src := v.(type) {
	case time.Time:
		*t = TimeOfDayOf(src)
	case string:
		*t = TimeOfDay(src)
	case []byte:
		*t = TimeOfDay(src)
	case nil:
		*t = ""
	default:
		return fmt.Errorf("domain: cannot scan %T into TimeOfDay", v)
	}
	return nil
}

func (t TimeOfDay) Value() (driver.Value, error) {
	return string(t), nil
}

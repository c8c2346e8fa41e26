package validate

import (
	"testing"
	"time"

	"slotd/backend/internal/domain"
)

func TestDate(t *testing.T) {
	cases := []struct {
		in    string
		valid bool
	}{
		{"2025-06-05", true},
		{"2025-12-31", true},
		{"2025-13-40", false},
		{"2025-02-30", false},
		{"06/05/2025", false},
		{"2025-6-5", false},
		{"", false},
	}
	for _, c := range cases {
		err := Date(c.in)
		if (err == nil) != c.valid {
			t.Errorf("Date(%q) err = %v, want valid=%v", c.in, err, c.valid)
		}
	}
}

func TestTime(t *testing.T) {
	cases := []struct {
		in    string
		valid bool
	}{
		{"09:00:00", true},
		{"16:30:00", true},
		{"25:70:00", false},
		{"09:00", false},
		{"9:00:00", false},
		{"", false},
	}
	for _, c := range cases {
		err := Time(c.in)
		if (err == nil) != c.valid {
			t.Errorf("Time(%q) err = %v, want valid=%v", c.in, err, c.valid)
		}
	}
}

func TestEmail(t *testing.T) {
	cases := []struct {
		in    string
		valid bool
	}{
		{"jane@x.com", true},
		{"first.last@sub.domain.co", true},
		{"not-an-email", false},
		{"@x.com", false},
		{"jane@x", false},
		{"", false},
	}
	for _, c := range cases {
		err := Email(c.in)
		if (err == nil) != c.valid {
			t.Errorf("Email(%q) err = %v, want valid=%v", c.in, err, c.valid)
		}
	}
}

func TestName(t *testing.T) {
	cases := []struct {
		in    string
		valid bool
	}{
		{"Jane Doe", true},
		{"O'Brien", true},
		{"Anne-Marie", true},
		{"Renée", true},
		{"John123", false},
		{"Jane_Doe", false},
		{"", false},
	}
	for _, c := range cases {
		err := Name(c.in)
		if (err == nil) != c.valid {
			t.Errorf("Name(%q) err = %v, want valid=%v", c.in, err, c.valid)
		}
	}
}

func TestAppointmentType(t *testing.T) {
	for _, in := range []string{"virtual", "Virtual", "TELEPHONIC", " telephonic "} {
		canonical, err := AppointmentType(in)
		if err != nil {
			t.Errorf("AppointmentType(%q) err = %v", in, err)
			continue
		}
		if canonical != domain.TypeVirtual && canonical != domain.TypeTelephonic {
			t.Errorf("AppointmentType(%q) = %q, want canonical type", in, canonical)
		}
	}

	if _, err := AppointmentType("Phone"); err == nil {
		t.Errorf("AppointmentType(%q) accepted, want error", "Phone")
	}
	if _, err := AppointmentType(""); err == nil {
		t.Error("AppointmentType(\"\") accepted, want error")
	}
}

func TestFuture(t *testing.T) {
	now := time.Date(2025, 6, 5, 14, 0, 0, 0, time.UTC)

	cases := []struct {
		name  string
		date  domain.Date
		time  domain.TimeOfDay
		valid bool
	}{
		{"tomorrow", "2025-06-06", "09:00:00", true},
		{"today later", "2025-06-05", "14:30:00", true},
		{"today exactly now", "2025-06-05", "14:00:00", false},
		{"today earlier", "2025-06-05", "09:00:00", false},
		{"yesterday", "2025-06-04", "16:00:00", false},
	}
	for _, c := range cases {
		err := Future(c.date, c.time, now)
		if (err == nil) != c.valid {
			t.Errorf("%s: Future(%s %s) err = %v, want valid=%v", c.name, c.date, c.time, err, c.valid)
		}
	}
}

func TestWithinBusinessHours(t *testing.T) {
	cases := []struct {
		in    domain.TimeOfDay
		valid bool
	}{
		{"09:00:00", true},
		{"16:30:00", true},
		{"08:30:00", false},
		{"17:00:00", false},
		{"23:00:00", false},
	}
	for _, c := range cases {
		err := WithinBusinessHours(c.in, 9, 17)
		if (err == nil) != c.valid {
			t.Errorf("WithinBusinessHours(%s) err = %v, want valid=%v", c.in, err, c.valid)
		}
	}
}

func TestSlotGranular(t *testing.T) {
	cases := []struct {
		in    domain.TimeOfDay
		valid bool
	}{
		{"09:00:00", true},
		{"09:30:00", true},
		{"09:15:00", false},
		{"09:00:30", false},
	}
	for _, c := range cases {
		err := SlotGranular(c.in, 30)
		if (err == nil) != c.valid {
			t.Errorf("SlotGranular(%s) err = %v, want valid=%v", c.in, err, c.valid)
		}
	}

	if err := SlotGranular("09:15:00", 15); err != nil {
		t.Errorf("SlotGranular(09:15:00, 15) err = %v, want nil", err)
	}
}

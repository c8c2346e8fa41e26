package booking

import (
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"slotd/backend/internal/domain"
	"slotd/backend/internal/store"
	"slotd/backend/internal/store/memory"
)

func newTestService(t *testing.T, now time.Time) *Service {
	t.Helper()
	svc := NewService(memory.NewLedger(), Config{
		StartHour:          9,
		EndHour:            17,
		GranularityMinutes: 30,
		Location:           time.UTC,
	}, slog.Default(), nil)
	svc.clock = func() time.Time { return now }
	return svc
}

func janeInput(date, timeStr string) CreateInput {
	return CreateInput{
		Name:            "Jane Doe",
		Email:           "jane@x.com",
		AppointmentType: "virtual",
		Date:            date,
		Time:            timeStr,
	}
}

var testNow = time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)

func TestCreate_ValidationChainOrder(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t, testNow)

	cases := []struct {
		name string
		in   CreateInput
		want string
	}{
		{"bad name", CreateInput{Name: "John123", Email: "jane@x.com", AppointmentType: "virtual", Date: "2025-06-05", Time: "14:30:00"},
			"Name must only contain letters, spaces, hyphens, or apostrophes."},
		{"bad email", CreateInput{Name: "Jane Doe", Email: "not-an-email", AppointmentType: "virtual", Date: "2025-06-05", Time: "14:30:00"},
			"Invalid email format."},
		{"bad type", CreateInput{Name: "Jane Doe", Email: "jane@x.com", AppointmentType: "Phone", Date: "2025-06-05", Time: "14:30:00"},
			"Appointment type must be one of: telephonic, virtual."},
		{"bad date", CreateInput{Name: "Jane Doe", Email: "jane@x.com", AppointmentType: "virtual", Date: "2025-13-40", Time: "14:30:00"},
			"Date must be in YYYY-MM-DD format."},
		{"bad time", CreateInput{Name: "Jane Doe", Email: "jane@x.com", AppointmentType: "virtual", Date: "2025-06-05", Time: "25:70:00"},
			"Time must be in HH:MM:SS format."},
		{"past", CreateInput{Name: "Jane Doe", Email: "jane@x.com", AppointmentType: "virtual", Date: "2025-05-01", Time: "14:30:00"},
			"Date is in the past."},
		{"after hours", CreateInput{Name: "Jane Doe", Email: "jane@x.com", AppointmentType: "virtual", Date: "2025-06-05", Time: "17:00:00"},
			"Time must be within business hours (09:00 to 17:00)."},
		{"not granular", CreateInput{Name: "Jane Doe", Email: "jane@x.com", AppointmentType: "virtual", Date: "2025-06-05", Time: "09:15:00"},
			"Appointments can only be booked at 30-minute intervals (e.g., 09:00:00, 09:30:00)."},
	}
	for _, c := range cases {
		_, err := svc.Create(ctx, c.in)
		if err == nil {
			t.Errorf("%s: expected error", c.name)
			continue
		}
		if !IsValidation(err) {
			t.Errorf("%s: error %T is not a validation error", c.name, err)
		}
		if err.Error() != c.want {
			t.Errorf("%s: message = %q, want %q", c.name, err.Error(), c.want)
		}
	}
}

func TestCreate_CanonicalizesType(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t, testNow)

	in := janeInput("2025-06-05", "14:30:00")
	in.AppointmentType = "Virtual"
	appt, err := svc.Create(ctx, in)
	if err != nil {
		t.Fatalf("Create error: %v", err)
	}
	if appt.AppointmentType != domain.TypeVirtual {
		t.Fatalf("type = %s, want virtual", appt.AppointmentType)
	}
	if appt.ID <= 0 {
		t.Fatalf("id = %d, want positive", appt.ID)
	}
}

// The concrete booking scenario: book, collide, inspect suggestions, cancel,
// rebook.
func TestBookingScenario(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t, testNow)

	appt, err := svc.Create(ctx, janeInput("2025-06-05", "14:30:00"))
	if err != nil {
		t.Fatalf("first booking error: %v", err)
	}

	_, err = svc.Create(ctx, janeInput("2025-06-05", "14:30:00"))
	var conflict *ConflictError
	if !errors.As(err, &conflict) {
		t.Fatalf("second booking err = %v, want ConflictError", err)
	}
	if !errors.Is(err, store.ErrConflict) {
		t.Fatal("ConflictError should unwrap to store.ErrConflict")
	}
	if len(conflict.Alternatives) != 5 {
		t.Fatalf("alternatives = %d, want 5", len(conflict.Alternatives))
	}
	// Equidistant neighbors: earlier one first.
	if conflict.Alternatives[0] != "14:00:00" || conflict.Alternatives[1] != "15:00:00" {
		t.Fatalf("nearest = %v, want 14:00:00 then 15:00:00", conflict.Alternatives[:2])
	}

	av, err := svc.CheckAvailability(ctx, "2025-06-05", "14:30:00")
	if err != nil {
		t.Fatalf("CheckAvailability error: %v", err)
	}
	if av.Available {
		t.Fatal("slot should be occupied")
	}

	if err := svc.Cancel(ctx, appt.ID); err != nil {
		t.Fatalf("Cancel error: %v", err)
	}

	av, err = svc.CheckAvailability(ctx, "2025-06-05", "14:30:00")
	if err != nil {
		t.Fatalf("CheckAvailability error: %v", err)
	}
	if !av.Available {
		t.Fatal("slot should be free after cancel")
	}
}

func TestListAvailable_ExcludesBookedAndIsIdempotent(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t, testNow)

	if _, err := svc.Create(ctx, janeInput("2025-06-05", "09:00:00")); err != nil {
		t.Fatalf("Create error: %v", err)
	}

	first, err := svc.ListAvailable(ctx, "2025-06-05")
	if err != nil {
		t.Fatalf("ListAvailable error: %v", err)
	}
	if len(first) != 15 {
		t.Fatalf("len = %d, want 15", len(first))
	}
	for _, s := range first {
		if s == "09:00:00" {
			t.Fatal("booked slot listed as available")
		}
	}

	second, err := svc.ListAvailable(ctx, "2025-06-05")
	if err != nil {
		t.Fatalf("ListAvailable error: %v", err)
	}
	if len(first) != len(second) {
		t.Fatalf("not idempotent: %d vs %d", len(first), len(second))
	}
	for i := range first {
		if first[i] != second[i] {
			t.Fatalf("not idempotent at %d: %s vs %s", i, first[i], second[i])
		}
	}
}

func TestListAvailable_TodayExcludesPastSlots(t *testing.T) {
	ctx := context.Background()
	// 14:10 on the queried day: 14:00 is past, 14:30 is next.
	svc := newTestService(t, time.Date(2025, 6, 5, 14, 10, 0, 0, time.UTC))

	slots, err := svc.ListAvailable(ctx, "2025-06-05")
	if err != nil {
		t.Fatalf("ListAvailable error: %v", err)
	}
	if len(slots) == 0 {
		t.Fatal("expected remaining slots")
	}
	if slots[0] != "14:30:00" {
		t.Fatalf("first slot = %s, want 14:30:00", slots[0])
	}
}

func TestNearestAvailable_EmptyWhenFull(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t, testNow)

	for _, s := range []string{
		"09:00:00", "09:30:00", "10:00:00", "10:30:00", "11:00:00", "11:30:00",
		"12:00:00", "12:30:00", "13:00:00", "13:30:00", "14:00:00", "14:30:00",
		"15:00:00", "15:30:00", "16:00:00", "16:30:00",
	} {
		if _, err := svc.Create(ctx, janeInput("2025-06-05", s)); err != nil {
			t.Fatalf("Create %s error: %v", s, err)
		}
	}

	alts, err := svc.NearestAvailable(ctx, "2025-06-05", "14:30:00", 5)
	if err != nil {
		t.Fatalf("NearestAvailable error: %v", err)
	}
	if len(alts) != 0 {
		t.Fatalf("alts = %v, want empty", alts)
	}
}

func TestUpdate_NotesOnly(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t, testNow)

	appt, err := svc.Create(ctx, janeInput("2025-06-05", "14:30:00"))
	if err != nil {
		t.Fatalf("Create error: %v", err)
	}

	notes := "prefers afternoon"
	updated, err := svc.Update(ctx, appt.ID, UpdateInput{Notes: &notes})
	if err != nil {
		t.Fatalf("Update error: %v", err)
	}
	if updated.Notes != notes {
		t.Fatalf("notes = %q", updated.Notes)
	}
	if updated.Date != appt.Date || updated.Time != appt.Time || updated.Status != appt.Status {
		t.Fatal("notes-only update touched other fields")
	}
}

func TestUpdate_EmptyPatch(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t, testNow)

	_, err := svc.Update(ctx, 1, UpdateInput{})
	if !errors.Is(err, ErrNoFields) {
		t.Fatalf("err = %v, want ErrNoFields", err)
	}
}

func TestUpdate_NotFound(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t, testNow)

	notes := "x"
	_, err := svc.Update(ctx, 42, UpdateInput{Notes: &notes})
	if !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestUpdate_MoveSlotRechecksOccupancy(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t, testNow)

	a1, err := svc.Create(ctx, janeInput("2025-06-05", "14:00:00"))
	if err != nil {
		t.Fatalf("Create error: %v", err)
	}
	if _, err := svc.Create(ctx, janeInput("2025-06-05", "14:30:00")); err != nil {
		t.Fatalf("Create error: %v", err)
	}

	target := "14:30:00"
	_, err = svc.Update(ctx, a1.ID, UpdateInput{Time: &target})
	var conflict *ConflictError
	if !errors.As(err, &conflict) {
		t.Fatalf("err = %v, want ConflictError", err)
	}
	if conflict.Time != "14:30:00" {
		t.Fatalf("conflict time = %s, want the target slot", conflict.Time)
	}
}

func TestUpdate_MovedSlotValidatesBusinessRules(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t, testNow)

	appt, err := svc.Create(ctx, janeInput("2025-06-05", "14:00:00"))
	if err != nil {
		t.Fatalf("Create error: %v", err)
	}

	badTime := "17:00:00"
	if _, err := svc.Update(ctx, appt.ID, UpdateInput{Time: &badTime}); err == nil || !IsValidation(err) {
		t.Fatalf("err = %v, want business-hours validation error", err)
	}

	pastDate := "2025-05-01"
	if _, err := svc.Update(ctx, appt.ID, UpdateInput{Date: &pastDate}); err == nil || !IsValidation(err) {
		t.Fatalf("err = %v, want past-date validation error", err)
	}
}

func TestUpdate_NoResurrection(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t, testNow)

	appt, err := svc.Create(ctx, janeInput("2025-06-05", "14:30:00"))
	if err != nil {
		t.Fatalf("Create error: %v", err)
	}
	if err := svc.Cancel(ctx, appt.ID); err != nil {
		t.Fatalf("Cancel error: %v", err)
	}

	status := "scheduled"
	_, err = svc.Update(ctx, appt.ID, UpdateInput{Status: &status})
	if err == nil || !IsValidation(err) {
		t.Fatalf("err = %v, want validation error", err)
	}
	if err.Error() != "A cancelled appointment cannot be rescheduled." {
		t.Fatalf("message = %q", err.Error())
	}

	bad := "pending"
	_, err = svc.Update(ctx, appt.ID, UpdateInput{Status: &bad})
	if err == nil || !IsValidation(err) {
		t.Fatalf("err = %v, want validation error for unknown status", err)
	}
}

func TestCancel_NotFound(t *testing.T) {
	svc := newTestService(t, testNow)
	if err := svc.Cancel(context.Background(), 42); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestListByDate_ExcludesCancelled(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t, testNow)

	a1, _ := svc.Create(ctx, janeInput("2025-06-05", "14:30:00"))
	if _, err := svc.Create(ctx, janeInput("2025-06-05", "09:00:00")); err != nil {
		t.Fatalf("Create error: %v", err)
	}
	if err := svc.Cancel(ctx, a1.ID); err != nil {
		t.Fatalf("Cancel error: %v", err)
	}

	rows, err := svc.ListByDate(ctx, "2025-06-05")
	if err != nil {
		t.Fatalf("ListByDate error: %v", err)
	}
	if len(rows) != 1 || rows[0].Time != "09:00:00" {
		t.Fatalf("rows = %v, want the 09:00 booking only", rows)
	}
}

// Package schedule derives the bookable slot grid from business-hour bounds
// and ranks free slots by distance to a requested time. Everything here is
// pure arithmetic over time-of-day values; persisted state never enters.
package schedule

import (
	"fmt"
	"sort"

	"slotd/backend/internal/domain"
)

// Grid returns the ordered candidate slots for one day: every granularity
// step from startHour:00 up to, but excluding, endHour:00. The sequence is
// deterministic and regenerated per call.
func Grid(startHour, endHour, granularityMinutes int) []domain.TimeOfDay {
	if granularityMinutes <= 0 {
		granularityMinutes = 30
	}
	if startHour < 0 || endHour > 24 || startHour >= endHour {
		return nil
	}

	out := make([]domain.TimeOfDay, 0, (endHour-startHour)*60/granularityMinutes)
	for minutes := startHour * 60; minutes < endHour*60; minutes += granularityMinutes {
		out = append(out, domain.TimeOfDay(fmt.Sprintf("%02d:%02d:00", minutes/60, minutes%60)))
	}
	return out
}

// Nearest returns up to max slots from available ranked by absolute
// time-of-day distance to requested. Equidistant slots resolve
// earlier-slot-first so suggestions are reproducible.
func Nearest(available []domain.TimeOfDay, requested domain.TimeOfDay, max int) []domain.TimeOfDay {
	if max <= 0 || len(available) == 0 {
		return nil
	}

	ranked := make([]domain.TimeOfDay, len(available))
	copy(ranked, available)

	req := requested.SecondsOfDay()
	distance := func(t domain.TimeOfDay) int {
		d := t.SecondsOfDay() - req
		if d < 0 {
			d = -d
		}
		return d
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		di, dj := distance(ranked[i]), distance(ranked[j])
		if di != dj {
			return di < dj
		}
		return ranked[i] < ranked[j]
	})

	if len(ranked) > max {
		ranked = ranked[:max]
	}
	return ranked
}

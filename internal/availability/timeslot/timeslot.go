// Package timeslot handles the 12-hour clock strings availability slots
// are stored with ("9:00 AM", "3:30 PM") and the arithmetic on them.
package timeslot

import (
	"fmt"
	"strings"
	"time"

	"github.com/azmiruddin-143/Local-Guide-Server/pkg/model"
)

// Layout is the canonical stored form. Hours carry no leading zero.
const Layout = "3:04 PM"

var acceptedLayouts = []string{Layout, "03:04 PM", "15:04"}

// Parse converts a clock string into minutes since midnight. It accepts
// the canonical form plus zero-padded and 24-hour variants, case and
// spacing insensitive.
func Parse(s string) (int, error) {
	normalized := strings.ToUpper(strings.Join(strings.Fields(s), " "))
	for _, layout := range acceptedLayouts {
		t, err := time.Parse(layout, normalized)
		if err == nil {
			return t.Hour()*60 + t.Minute(), nil
		}
	}
	return 0, fmt.Errorf("invalid time %q, expected a clock time like %q", s, "9:00 AM")
}

// Normalize re-renders any accepted clock string into the canonical form.
func Normalize(s string) (string, error) {
	mins, err := Parse(s)
	if err != nil {
		return "", err
	}
	return Format(mins), nil
}

// Format renders minutes since midnight as a canonical clock string.
func Format(mins int) string {
	base := time.Date(2000, 1, 1, 0, 0, 0, 0, time.UTC)
	return base.Add(time.Duration(mins) * time.Minute).Format(Layout)
}

// Duration returns end-start in minutes. End must be after start; slots
// never cross midnight.
func Duration(start, end string) (int, error) {
	startMins, err := Parse(start)
	if err != nil {
		return 0, err
	}
	endMins, err := Parse(end)
	if err != nil {
		return 0, err
	}
	if endMins <= startMins {
		return 0, fmt.Errorf("end time %q must be after start time %q", end, start)
	}
	return endMins - startMins, nil
}

// Bucket assigns a start time to its part of day: 6:00-11:59 is morning,
// 12:00-17:59 afternoon, everything else evening.
func Bucket(startMins int) model.TimeOfDay {
	hour := startMins / 60
	switch {
	case hour >= 6 && hour < 12:
		return model.TimeOfDayMorning
	case hour >= 12 && hour < 18:
		return model.TimeOfDayAfternoon
	default:
		return model.TimeOfDayEvening
	}
}

// Overlaps reports whether two half-open intervals [aStart,aEnd) and
// [bStart,bEnd) intersect. Back-to-back slots do not overlap.
func Overlaps(aStart, aEnd, bStart, bEnd int) bool {
	return aStart < bEnd && aEnd > bStart
}

package services

import (
	"fmt"

	"github.com/r1chc/Cookie-Spots-sub000/internal/domain/entities"
)

// periodDayNames maps the provider's numeric day (0=Sunday..6=Saturday) to
// the canonical weekday key.
var periodDayNames = map[int]string{
	0: "sunday",
	1: "monday",
	2: "tuesday",
	3: "wednesday",
	4: "thursday",
	5: "friday",
	6: "saturday",
}

// weekdayTextOrder is the day order of the legacy seven-string shape.
var weekdayTextOrder = []string{
	"monday", "tuesday", "wednesday", "thursday",
	"friday", "saturday", "sunday",
}

// NormalizeHours resolves either provider hours shape into the canonical
// seven-key weekday map. Days without data stay nil; callers cannot tell
// unknown from closed because the provider does not either.
func NormalizeHours(input *entities.HoursInput) map[string]*string {
	hours := entities.UnknownHours()
	if input.Empty() {
		return hours
	}

	if len(input.WeekdayText) > 0 {
		for i, text := range input.WeekdayText {
			if i >= len(weekdayTextOrder) {
				break
			}
			value := text
			hours[weekdayTextOrder[i]] = &value
		}
		return hours
	}

	// A later period for the same day overwrites an earlier one, so venues
	// with split shifts keep only the last shift.
	for _, period := range input.Periods {
		day, ok := periodDayNames[period.Open.Day]
		if !ok {
			continue
		}
		open := formatClockTime(period.Open.Hour, period.Open.Minute)
		var value string
		if period.Close != nil {
			value = fmt.Sprintf("%s - %s", open, formatClockTime(period.Close.Hour, period.Close.Minute))
		} else {
			value = fmt.Sprintf("%s - Open End", open)
		}
		hours[day] = &value
	}

	return hours
}

// formatClockTime renders an hour/minute pair as a 12-hour clock time with
// an AM/PM suffix and zero-padded minutes.
func formatClockTime(hour, minute int) string {
	suffix := "AM"
	display := hour
	switch {
	case hour == 0:
		display = 12
	case hour == 12:
		suffix = "PM"
	case hour > 12:
		display = hour - 12
		suffix = "PM"
	}
	return fmt.Sprintf("%d:%02d %s", display, minute, suffix)
}

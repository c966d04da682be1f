package entities

// HoursInput is the tagged union of the two opening-hours shapes the
// upstream provider returns. Exactly one of the two fields is expected to
// be populated; the normalizer resolves the union once at ingestion so
// nothing downstream branches on shape.
type HoursInput struct {
	// WeekdayText is the legacy shape: seven human-readable strings in
	// Monday..Sunday order.
	WeekdayText []string `json:"weekdayDescriptions,omitempty"`

	// Periods is the structured shape: open/close period records.
	Periods []HoursPeriod `json:"periods,omitempty"`
}

// Empty reports whether neither shape is present.
func (h *HoursInput) Empty() bool {
	return h == nil || (len(h.WeekdayText) == 0 && len(h.Periods) == 0)
}

// HoursPeriod is one open/close record. Close is nil for venues the
// provider reports as open-ended.
type HoursPeriod struct {
	Open  HoursPoint  `json:"open"`
	Close *HoursPoint `json:"close,omitempty"`
}

// HoursPoint is a day-of-week plus a time of day. Day is numbered the
// provider's way: 0=Sunday through 6=Saturday.
type HoursPoint struct {
	Day    int `json:"day"`
	Hour   int `json:"hour"`
	Minute int `json:"minute"`
}

package interval

import (
	"encoding/json"
	"fmt"

	"backupsdk/internal/ordinal"
	"backupsdk/internal/specifier"
)

// wireJSON is the on-disk shape of an Interval: six Specifier.JSON blocks,
// one per axis, matching the field layout spec.md §6 implies for a profile
// record's "interval" member.
type wireJSON struct {
	Minutes   specifier.JSON `json:"minutes"`
	Hours     specifier.JSON `json:"hours"`
	Weekdays  specifier.JSON `json:"weekdays"`
	Monthdays specifier.JSON `json:"monthdays"`
	Weeks     specifier.JSON `json:"weeks"`
	Months    specifier.JSON `json:"months"`
}

// MarshalJSON implements json.Marshaler.
func (iv Interval) MarshalJSON() ([]byte, error) {
	return json.Marshal(wireJSON{
		Minutes:   iv.Minutes.ToJSON(),
		Hours:     iv.Hours.ToJSON(),
		Weekdays:  iv.Weekdays.ToJSON(),
		Monthdays: iv.Monthdays.ToJSON(),
		Weeks:     iv.Weeks.ToJSON(),
		Months:    iv.Months.ToJSON(),
	})
}

// UnmarshalJSON implements json.Unmarshaler. It does not validate the
// result against the canonical ranges; callers must call Validate before
// using a deserialized Interval, per spec.md §3.
func (iv *Interval) UnmarshalJSON(data []byte) error {
	var w wireJSON
	if err := json.Unmarshal(data, &w); err != nil {
		return fmt.Errorf("interval: unmarshal: %w", err)
	}

	minutes, err := specifier.FromJSON(w.Minutes, ordinal.IntFromInt)
	if err != nil {
		return fmt.Errorf("interval: minutes: %w", err)
	}
	hours, err := specifier.FromJSON(w.Hours, ordinal.IntFromInt)
	if err != nil {
		return fmt.Errorf("interval: hours: %w", err)
	}
	weekdays, err := specifier.FromJSON(w.Weekdays, ordinal.WeekdayFromInt)
	if err != nil {
		return fmt.Errorf("interval: weekdays: %w", err)
	}
	monthdays, err := specifier.FromJSON(w.Monthdays, ordinal.IntFromInt)
	if err != nil {
		return fmt.Errorf("interval: monthdays: %w", err)
	}
	weeks, err := specifier.FromJSON(w.Weeks, ordinal.IntFromInt)
	if err != nil {
		return fmt.Errorf("interval: weeks: %w", err)
	}
	months, err := specifier.FromJSON(w.Months, ordinal.MonthFromInt)
	if err != nil {
		return fmt.Errorf("interval: months: %w", err)
	}

	*iv = Interval{
		Minutes:   minutes,
		Hours:     hours,
		Weekdays:  weekdays,
		Monthdays: monthdays,
		Weeks:     weeks,
		Months:    months,
	}
	return nil
}

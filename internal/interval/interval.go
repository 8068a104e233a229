// Package interval implements a six-axis composite temporal predicate:
// a cron-like matcher over minutes, hours, weekdays, monthdays, ISO
// week-of-year and months, plus the bounded next_datetime search the
// scheduling controller depends on.
//
// This is a pure function over its own fields; it performs no I/O.
package interval

import (
	"fmt"
	"time"

	"backupsdk/internal/ordinal"
	"backupsdk/internal/specifier"
)

// Canonical axis ranges. monthdays and weeks are zero-based; this
// repository follows the ranges ([0..31] and [0..52]) specified for this
// design rather than the wider ones in the original Rust source, which
// differs on these two axes.
const (
	MinutesMin, MinutesMax     = 0, 59
	HoursMin, HoursMax         = 0, 23
	MonthdaysMin, MonthdaysMax = 0, 31
	WeeksMin, WeeksMax         = 0, 52
)

// Interval aggregates six Specifiers over their fixed canonical ranges.
type Interval struct {
	Minutes   specifier.Specifier[ordinal.Int]
	Hours     specifier.Specifier[ordinal.Int]
	Weekdays  specifier.Specifier[ordinal.Weekday]
	Monthdays specifier.Specifier[ordinal.Int]
	Weeks     specifier.Specifier[ordinal.Int]
	Months    specifier.Specifier[ordinal.Month]
}

// Default returns the Interval that matches every minute of every day
// (every axis is KindAll over its canonical range), mirroring
// IntervalBuilder::default() in the original source.
func Default() Interval {
	return Interval{
		Minutes:   specifier.All(ordinal.Int(MinutesMin), ordinal.Int(MinutesMax), ordinal.IntFromInt),
		Hours:     specifier.All(ordinal.Int(HoursMin), ordinal.Int(HoursMax), ordinal.IntFromInt),
		Weekdays:  specifier.All(ordinal.Monday, ordinal.Sunday, ordinal.WeekdayFromInt),
		Monthdays: specifier.All(ordinal.Int(MonthdaysMin), ordinal.Int(MonthdaysMax), ordinal.IntFromInt),
		Weeks:     specifier.All(ordinal.Int(WeeksMin), ordinal.Int(WeeksMax), ordinal.IntFromInt),
		Months:    specifier.All(ordinal.January, ordinal.December, ordinal.MonthFromInt),
	}
}

// Daily returns an Interval matching the given minute and hour every day,
// grounded on Interval::daily in the original source.
func Daily(minute, hour int) (Interval, error) {
	if minute < MinutesMin || minute > MinutesMax {
		return Interval{}, fmt.Errorf("interval: minute %d out of range [%d,%d]", minute, MinutesMin, MinutesMax)
	}
	if hour < HoursMin || hour > HoursMax {
		return Interval{}, fmt.Errorf("interval: hour %d out of range [%d,%d]", hour, HoursMin, HoursMax)
	}
	iv := Default()
	iv.Minutes = specifier.Nth(ordinal.Int(MinutesMin), ordinal.Int(MinutesMax), ordinal.IntFromInt, minute)
	iv.Hours = specifier.Nth(ordinal.Int(HoursMin), ordinal.Int(HoursMax), ordinal.IntFromInt, hour)
	return iv, nil
}

// Validate checks that every axis's range equals its canonical range
// exactly, required of a deserialized Interval before use.
func (iv Interval) Validate() error {
	type axis struct {
		name     string
		min, max int
		wantMin  int
		wantMax  int
	}
	axes := []axis{
		{"minutes", iv.Minutes.Min().ToInt(), iv.Minutes.Max().ToInt(), MinutesMin, MinutesMax},
		{"hours", iv.Hours.Min().ToInt(), iv.Hours.Max().ToInt(), HoursMin, HoursMax},
		{"weekdays", iv.Weekdays.Min().ToInt(), iv.Weekdays.Max().ToInt(), int(ordinal.Monday), int(ordinal.Sunday)},
		{"monthdays", iv.Monthdays.Min().ToInt(), iv.Monthdays.Max().ToInt(), MonthdaysMin, MonthdaysMax},
		{"weeks", iv.Weeks.Min().ToInt(), iv.Weeks.Max().ToInt(), WeeksMin, WeeksMax},
		{"months", iv.Months.Min().ToInt(), iv.Months.Max().ToInt(), int(ordinal.January), int(ordinal.December)},
	}
	for _, a := range axes {
		if a.min != a.wantMin || a.max != a.wantMax {
			return fmt.Errorf("interval: %s specifier range [%d,%d] does not match canonical range [%d,%d]",
				a.name, a.min, a.max, a.wantMin, a.wantMax)
		}
	}
	return nil
}

// toOrdinalWeekday converts a time.Weekday (Sunday=0) to ordinal.Weekday
// (Monday=0), the bijection the weekday axis is defined over.
func toOrdinalWeekday(w time.Weekday) ordinal.Weekday {
	return ordinal.Weekday((int(w) + 6) % 7)
}

// toOrdinalMonth converts a time.Month (January=1) to ordinal.Month
// (January=0).
func toOrdinalMonth(m time.Month) ordinal.Month {
	return ordinal.Month(int(m) - 1)
}

// isoWeekZeroIndexed returns the zero-indexed ISO week-of-year for t:
// week 0 is the first ISO week.
func isoWeekZeroIndexed(t time.Time) int {
	_, week := t.ISOWeek()
	return week - 1
}

// MatchesDate implements the day-combination rule: if both the weekday
// and monthday specifiers are constrained (neither is KindAll), the day
// matches when either matches (OR); otherwise both must match (AND).
// Week-of-year and month are always AND-combined with the day result.
func (iv Interval) MatchesDate(d time.Time) bool {
	wd := toOrdinalWeekday(d.Weekday())
	md := ordinal.Int(d.Day() - 1)
	week := ordinal.Int(isoWeekZeroIndexed(d))
	mo := toOrdinalMonth(d.Month())

	weekdayMatches := iv.Weekdays.Matches(wd)
	monthdayMatches := iv.Monthdays.Matches(md)

	var dayMatches bool
	if !iv.Weekdays.IsAll() && !iv.Monthdays.IsAll() {
		dayMatches = weekdayMatches || monthdayMatches
	} else {
		dayMatches = weekdayMatches && monthdayMatches
	}

	return dayMatches && iv.Weeks.Matches(week) && iv.Months.Matches(mo)
}

// MatchesTime is the AND of minute and hour.
func (iv Interval) MatchesTime(t time.Time) bool {
	return iv.Minutes.Matches(ordinal.Int(t.Minute())) && iv.Hours.Matches(ordinal.Int(t.Hour()))
}

// DateTimeMatch is the three-valued result of MatchesDateTime.
type DateTimeMatch int

const (
	Ok DateTimeMatch = iota
	TimeNotMatched
	DateNotMatched
)

func (m DateTimeMatch) String() string {
	switch m {
	case Ok:
		return "Ok"
	case TimeNotMatched:
		return "TimeNotMatched"
	case DateNotMatched:
		return "DateNotMatched"
	default:
		return "Unknown"
	}
}

// MatchesDateTime reports whether dt matches both date and time axes. If
// the date mismatches, it returns DateNotMatched regardless of time.
func (iv Interval) MatchesDateTime(dt time.Time) DateTimeMatch {
	if !iv.MatchesDate(dt) {
		return DateNotMatched
	}
	if !iv.MatchesTime(dt) {
		return TimeNotMatched
	}
	return Ok
}

// cyclicNextTime returns the next matching (hour, minute) strictly later
// in the day than (hour, minute), wrapping within the day. If the hour
// matches, it tries the next matching minute in the same hour; otherwise
// it takes the first matching minute of the next matching hour.
func (iv Interval) cyclicNextTime(hour, minute int) (nextHour, nextMinute int, ok bool) {
	if iv.Hours.Matches(ordinal.Int(hour)) {
		if nm, okm := iv.Minutes.CyclicNext(ordinal.Int(minute)); okm && nm.ToInt() > minute {
			return hour, nm.ToInt(), true
		}
	}
	nh, okh := iv.Hours.CyclicNext(ordinal.Int(hour))
	if !okh {
		return 0, 0, false
	}
	fm, okm := iv.Minutes.FirstMatch()
	if !okm {
		return 0, 0, false
	}
	return nh.ToInt(), fm.ToInt(), true
}

func timeLess(h1, m1, h2, m2 int) bool {
	if h1 != h2 {
		return h1 < h2
	}
	return m1 < m2
}

// NextDateTime returns the smallest matching instant strictly greater than
// dt, searched within 365 days of dt. Returns false if no match exists in
// that window. All returned instants have their seconds component zero.
func (iv Interval) NextDateTime(dt time.Time) (time.Time, bool) {
	firstMinute, okMinute := iv.Minutes.FirstMatch()
	firstHour, okHour := iv.Hours.FirstMatch()
	if !okMinute || !okHour {
		return time.Time{}, false
	}

	loc := dt.Location()

	if iv.MatchesDate(dt) {
		nh, nm, ok := iv.cyclicNextTime(dt.Hour(), dt.Minute())
		if ok && timeLess(dt.Hour(), dt.Minute(), nh, nm) {
			return time.Date(dt.Year(), dt.Month(), dt.Day(), nh, nm, 0, 0, loc), true
		}
	}

	for i := 1; i <= 365; i++ {
		candidate := dt.AddDate(0, 0, i)
		candidateDate := time.Date(candidate.Year(), candidate.Month(), candidate.Day(), 0, 0, 0, 0, loc)
		if iv.MatchesDate(candidateDate) {
			return time.Date(candidate.Year(), candidate.Month(), candidate.Day(), firstHour.ToInt(), firstMinute.ToInt(), 0, 0, loc), true
		}
	}

	return time.Time{}, false
}

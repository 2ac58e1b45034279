package ds3231

import (
	"fmt"
	"time"
)

// Time is the calendar as held in the time registers. Hour is always in
// 24-hour form and Year counts from 2000. Weekday is 1-7; which day is 1 is a
// caller convention (FromStd uses Sunday).
//
// A Time is a plain value and is never modified in place.
type Time struct {
	Second  uint8
	Minute  uint8
	Hour    uint8
	Weekday uint8
	Day     uint8
	Month   uint8
	Year    uint8
}

// century is added to Year; the DS3231 century bit is ignored.
const century = 2000

// IsLeapYear reports whether 2000+year is a leap year. Every multiple of four
// in 2000-2099 is one.
func IsLeapYear(year uint8) bool {
	return year%4 == 0
}

// DaysInMonth returns the number of days in month (1-12) of 2000+year.
func DaysInMonth(month, year uint8) uint8 {
	switch month {
	case 2:
		if IsLeapYear(year) {
			return 29
		}
		return 28
	case 4, 6, 9, 11:
		return 30
	}
	return 31
}

// Validate checks every field against its range and the day against the
// length of the month.
func (t Time) Validate() error {
	switch {
	case t.Second > 59:
		return invalidArgument("second %d out of range 0-59", t.Second)
	case t.Minute > 59:
		return invalidArgument("minute %d out of range 0-59", t.Minute)
	case t.Hour > 23:
		return invalidArgument("hour %d out of range 0-23", t.Hour)
	case t.Weekday < 1 || t.Weekday > 7:
		return invalidArgument("weekday %d out of range 1-7", t.Weekday)
	case t.Day < 1 || t.Day > 31:
		return invalidArgument("day %d out of range 1-31", t.Day)
	case t.Month < 1 || t.Month > 12:
		return invalidArgument("month %d out of range 1-12", t.Month)
	case t.Year > 99:
		return invalidArgument("year %d out of range 0-99", t.Year)
	}
	if max := DaysInMonth(t.Month, t.Year); t.Day > max {
		return invalidArgument("day %d out of range 1-%d for %04d-%02d", t.Day, max, century+int(t.Year), t.Month)
	}
	return nil
}

// Std returns t as a time.Time in UTC. The weekday is not used.
func (t Time) Std() time.Time {
	return time.Date(century+int(t.Year), time.Month(t.Month), int(t.Day),
		int(t.Hour), int(t.Minute), int(t.Second), 0, time.UTC)
}

// FromStd converts a time.Time to a Time, in UTC and truncated to the second.
// Weekday is 1 for Sunday through 7 for Saturday.
func FromStd(tm time.Time) (Time, error) {
	tm = tm.UTC()
	if tm.Year() < century || tm.Year() > century+99 {
		return Time{}, invalidArgument("year %d outside %d-%d", tm.Year(), century, century+99)
	}
	return Time{
		Second:  uint8(tm.Second()),
		Minute:  uint8(tm.Minute()),
		Hour:    uint8(tm.Hour()),
		Weekday: uint8(tm.Weekday()) + 1,
		Day:     uint8(tm.Day()),
		Month:   uint8(tm.Month()),
		Year:    uint8(tm.Year() - century),
	}, nil
}

// String formats a valid t as DateTime24. Any other t is shown field by field
// since time.Date would normalize it into a different date.
func (t Time) String() string {
	if t.Validate() != nil {
		return t.raw()
	}
	s, err := t.Format(DateTime24)
	if err != nil {
		return t.raw()
	}
	return s
}

func (t Time) raw() string {
	return fmt.Sprintf("ds3231.Time(%d-%d-%d %d:%d:%d)", t.Year, t.Month, t.Day, t.Hour, t.Minute, t.Second)
}

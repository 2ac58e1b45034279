package ds3231

import (
	"errors"
	"testing"
	"time"

	qt "github.com/frankban/quicktest"
)

func TestValidate(t *testing.T) {
	base := Time{Second: 0, Minute: 0, Hour: 0, Weekday: 1, Day: 1, Month: 1, Year: 0}

	tests := []struct {
		name  string
		edit  func(*Time)
		valid bool
	}{
		{"base", func(*Time) {}, true},
		{"leap day 2000", func(t *Time) { t.Month, t.Day, t.Year = 2, 29, 0 }, true},
		{"leap day 2024", func(t *Time) { t.Month, t.Day, t.Year = 2, 29, 24 }, true},
		{"no leap day 2001", func(t *Time) { t.Month, t.Day, t.Year = 2, 29, 1 }, false},
		{"feb 30 leap", func(t *Time) { t.Month, t.Day, t.Year = 2, 30, 4 }, false},
		{"feb 28 common", func(t *Time) { t.Month, t.Day, t.Year = 2, 28, 23 }, true},
		{"jan 31", func(t *Time) { t.Month, t.Day = 1, 31 }, true},
		{"apr 31", func(t *Time) { t.Month, t.Day = 4, 31 }, false},
		{"apr 30", func(t *Time) { t.Month, t.Day = 4, 30 }, true},
		{"dec 31", func(t *Time) { t.Month, t.Day = 12, 31 }, true},
		{"nov 31", func(t *Time) { t.Month, t.Day = 11, 31 }, false},
		{"second 60", func(t *Time) { t.Second = 60 }, false},
		{"minute 60", func(t *Time) { t.Minute = 60 }, false},
		{"hour 24", func(t *Time) { t.Hour = 24 }, false},
		{"hour 23", func(t *Time) { t.Hour = 23 }, true},
		{"weekday 0", func(t *Time) { t.Weekday = 0 }, false},
		{"weekday 8", func(t *Time) { t.Weekday = 8 }, false},
		{"weekday 7", func(t *Time) { t.Weekday = 7 }, true},
		{"day 0", func(t *Time) { t.Day = 0 }, false},
		{"month 0", func(t *Time) { t.Month = 0 }, false},
		{"month 13", func(t *Time) { t.Month = 13 }, false},
		{"year 99", func(t *Time) { t.Year = 99 }, true},
		{"year 100", func(t *Time) { t.Year = 100 }, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := qt.New(t)
			tm := base
			tt.edit(&tm)
			err := tm.Validate()
			if tt.valid {
				c.Assert(err, qt.IsNil)
				return
			}
			c.Assert(errors.Is(err, ErrInvalidArgument), qt.Equals, true, qt.Commentf("err %v", err))
		})
	}
}

func TestDaysInMonth(t *testing.T) {
	c := qt.New(t)
	want := [...]uint8{31, 28, 31, 30, 31, 30, 31, 31, 30, 31, 30, 31}
	for m := uint8(1); m <= 12; m++ {
		c.Assert(DaysInMonth(m, 23), qt.Equals, want[m-1], qt.Commentf("month %d", m))
	}
	c.Assert(DaysInMonth(2, 96), qt.Equals, uint8(29))
}

func TestStdConversion(t *testing.T) {
	c := qt.New(t)

	tm := Time{Second: 5, Minute: 4, Hour: 15, Weekday: 2, Day: 2, Month: 1, Year: 6}
	c.Assert(tm.Std(), qt.Equals, time.Date(2006, 1, 2, 15, 4, 5, 0, time.UTC))

	got, err := FromStd(time.Date(2006, 1, 2, 15, 4, 5, 999, time.UTC))
	c.Assert(err, qt.IsNil)
	// 2006-01-02 was a Monday.
	c.Assert(got, qt.Equals, tm)

	loc := time.FixedZone("UTC+2", 2*60*60)
	got, err = FromStd(time.Date(2023, 1, 1, 1, 0, 0, 0, loc))
	c.Assert(err, qt.IsNil)
	c.Assert(got, qt.Equals, Time{Second: 0, Minute: 0, Hour: 23, Weekday: 7, Day: 31, Month: 12, Year: 22})

	_, err = FromStd(time.Date(2100, 1, 1, 0, 0, 0, 0, time.UTC))
	c.Assert(errors.Is(err, ErrInvalidArgument), qt.Equals, true)
	_, err = FromStd(time.Date(1999, 12, 31, 23, 59, 59, 0, time.UTC))
	c.Assert(errors.Is(err, ErrInvalidArgument), qt.Equals, true)
}

func TestString(t *testing.T) {
	c := qt.New(t)
	tm := Time{Second: 5, Minute: 4, Hour: 15, Weekday: 2, Day: 2, Month: 1, Year: 6}
	c.Assert(tm.String(), qt.Equals, "2006-01-02 15:04:05")

	// Invalid fields are shown as stored rather than normalized.
	c.Assert(Time{}.String(), qt.Equals, "ds3231.Time(0-0-0 0:0:0)")
	c.Assert(Time{Weekday: 1, Day: 31, Month: 4, Year: 23}.String(), qt.Equals, "ds3231.Time(23-4-31 0:0:0)")
}

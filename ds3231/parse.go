package ds3231

import (
	"strconv"
	"strings"
)

// Fields of a set-time command, in order.
var commandFields = [...]struct {
	name     string
	min, max int
}{
	{"second", 0, 59},
	{"minute", 0, 59},
	{"hour", 0, 23},
	{"weekday", 1, 7},
	{"day", 1, 31},
	{"month", 1, 12},
	{"year", 0, 99},
}

// ParseTime parses a set-time command of seven comma separated integers:
//
//	second,minute,hour,weekday,day,month,year
//
// with no spaces, for example "0,30,14,1,5,3,23". The result has been
// validated and can be passed straight to WriteTime.
func ParseTime(s string) (Time, error) {
	if n := strings.Count(s, ","); n != len(commandFields)-1 {
		return Time{}, invalidArgument("expected %d comma separated fields, got %d commas", len(commandFields), n)
	}

	var v [len(commandFields)]uint8
	for i, field := range strings.Split(s, ",") {
		f := commandFields[i]
		if strings.HasPrefix(field, "+") || strings.HasPrefix(field, "-") {
			return Time{}, invalidArgument("%s is not an integer: %q", f.name, field)
		}
		n, err := strconv.Atoi(field)
		if err != nil {
			return Time{}, &StatusErr{Status: InvalidArgument, Message: f.name + " is not an integer", Err: err}
		}
		if n < f.min || n > f.max {
			return Time{}, invalidArgument("%s %d out of range %d-%d", f.name, n, f.min, f.max)
		}
		v[i] = uint8(n)
	}

	t := Time{
		Second:  v[0],
		Minute:  v[1],
		Hour:    v[2],
		Weekday: v[3],
		Day:     v[4],
		Month:   v[5],
		Year:    v[6],
	}
	if err := t.Validate(); err != nil {
		return Time{}, err
	}
	return t, nil
}

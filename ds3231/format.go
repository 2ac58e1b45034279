package ds3231

import (
	"strconv"
	"strings"
)

// Layout selects how Format renders a Time.
type Layout uint8

const (
	DateTime24    Layout = iota // 2023-01-01 13:04:05
	DateTime12                  // 2023-01-01 01:04:05 PM
	DateOnly                    // 2023-01-01
	Time24                      // 13:04:05
	Time12                      // 01:04:05 PM
	UnixTimestamp               // seconds since 1970-01-01 UTC
)

// FormatBufferSize is the capacity of the buffer Format renders into. It holds
// the longest layout.
const FormatBufferSize = 30

var layouts = [...]string{
	DateTime24: "2006-01-02 15:04:05",
	DateTime12: "2006-01-02 03:04:05 PM",
	DateOnly:   "2006-01-02",
	Time24:     "15:04:05",
	Time12:     "03:04:05 PM",
}

var layoutNames = [...]string{
	DateTime24:    "24h",
	DateTime12:    "12h",
	DateOnly:      "date",
	Time24:        "time",
	Time12:        "time12",
	UnixTimestamp: "unix",
}

func (l Layout) String() string {
	if int(l) < len(layoutNames) {
		return layoutNames[l]
	}
	return "Layout(" + strconv.Itoa(int(l)) + ")"
}

// ParseLayout returns the layout with the given name: 24h, 12h, date, time,
// time12 or unix. Case is ignored.
func ParseLayout(name string) (Layout, error) {
	for l, n := range layoutNames {
		if strings.EqualFold(n, name) {
			return Layout(l), nil
		}
	}
	return 0, invalidArgument("unknown layout %q", name)
}

// AppendFormat appends the textual form of t to dst. UnixTimestamp treats t
// as UTC; the device has no notion of a time zone.
func (t Time) AppendFormat(dst []byte, l Layout) ([]byte, error) {
	switch {
	case l == UnixTimestamp:
		return strconv.AppendInt(dst, t.Std().Unix(), 10), nil
	case int(l) < len(layouts):
		return t.Std().AppendFormat(dst, layouts[l]), nil
	}
	return dst, invalidArgument("unknown layout %d", l)
}

// Format renders t into a fixed buffer of FormatBufferSize bytes.
func (t Time) Format(l Layout) (string, error) {
	var buf [FormatBufferSize]byte
	b, err := t.AppendFormat(buf[:0], l)
	if err != nil {
		return "", err
	}
	if len(b) > FormatBufferSize {
		return "", invalidArgument("%s rendering of %d bytes exceeds %d", l, len(b), FormatBufferSize)
	}
	return string(b), nil
}

// FormatTo renders t into dst and returns the number of bytes written. It
// returns ErrNoMemory if dst is too small.
func (t Time) FormatTo(dst []byte, l Layout) (int, error) {
	var buf [FormatBufferSize]byte
	b, err := t.AppendFormat(buf[:0], l)
	if err != nil {
		return 0, err
	}
	if len(b) > len(dst) {
		return 0, &StatusErr{Status: NoMemory, Message: "need " + strconv.Itoa(len(b)) + " bytes, have " + strconv.Itoa(len(dst))}
	}
	return copy(dst, b), nil
}

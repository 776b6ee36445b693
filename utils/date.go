package utils

import (
	"encoding/json"
	"regexp"
	"strings"
	"time"
)

// Stored dates are naive: the wall clock fields are kept, the zone is dropped (stored as UTC)
// and the value is truncated to whole seconds.
func NormalizeDate(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), t.Second(), 0, time.UTC)
}

// StartOfDay returns midnight of t's calendar day, naive.
func StartOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// DayRange turns an inclusive [from, to] day range into [start, end) instants.
func DayRange(from, to time.Time) (time.Time, time.Time) {
	return StartOfDay(from), StartOfDay(to).AddDate(0, 0, 1)
}

// YearRange returns [Jan 1 year, Jan 1 year+1).
func YearRange(year int) (time.Time, time.Time) {
	start := time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC)
	return start, start.AddDate(1, 0, 0)
}

var zoneSuffix = regexp.MustCompile(`([+-]\d{2}:?\d{2}|[Zz])$`)

var dateLayouts = []string{
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02T15:04",
	"2006-01-02 15:04",
	"2006-01-02",
	"02/01/2006",
}

// ParseDate parses a date or date-time string. A trailing "Z" or numeric offset is
// dropped before parsing, so the clock fields are kept as written.
func ParseDate(value string) (time.Time, error) {
	s := strings.TrimSpace(value)
	if len(s) > len("2006-01-02") {
		s = zoneSuffix.ReplaceAllString(s, "")
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return NormalizeDate(t), nil
		}
	}
	_, err := time.Parse(dateLayouts[0], s)
	return time.Time{}, &DateParseError{Value: value, Err: err}
}

// NaiveTime is a request-side date that accepts any layout ParseDate understands.
type NaiveTime struct {
	time.Time
}

func NewNaiveTime(t time.Time) NaiveTime {
	return NaiveTime{Time: NormalizeDate(t)}
}

// UnmarshalJSON rejects an empty string. JSON null leaves the value untouched.
func (n *NaiveTime) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		return nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return &DateParseError{Value: string(b), Err: err}
	}
	t, err := ParseDate(s)
	if err != nil {
		return err
	}
	n.Time = t
	return nil
}

func (n NaiveTime) MarshalJSON() ([]byte, error) {
	return json.Marshal(n.Time.Format("2006-01-02T15:04:05"))
}

// UnmarshalText lets gin bind query and form values.
func (n *NaiveTime) UnmarshalText(b []byte) error {
	t, err := ParseDate(string(b))
	if err != nil {
		return err
	}
	n.Time = t
	return nil
}

// Ptr returns nil for a nil receiver so optional patch fields map cleanly.
func (n *NaiveTime) Ptr() *time.Time {
	if n == nil {
		return nil
	}
	t := n.Time
	return &t
}

// CheckPatchDate rejects a present but zero date in a partial update.
func CheckPatchDate(field string, n *NaiveTime) error {
	if n != nil && n.Time.IsZero() {
		return NewValidationError(field, "must be a valid date")
	}
	return nil
}

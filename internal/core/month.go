package core

import (
	"fmt"
	"regexp"
	"strconv"
	"time"
)

var monthPattern = regexp.MustCompile(`^\d{4}-\d{2}$`)

// MonthKey identifies a calendar month. All boundaries are computed in UTC.
type MonthKey struct {
	Year  int
	Month time.Month
}

// ParseMonthKey parses "YYYY-MM". Any other shape, or a month outside
// 01..12, yields ErrInvalidMonth.
func ParseMonthKey(s string) (MonthKey, error) {
	if !monthPattern.MatchString(s) {
		return MonthKey{}, ErrInvalidMonth
	}
	year, _ := strconv.Atoi(s[:4])
	month, _ := strconv.Atoi(s[5:])
	if month < 1 || month > 12 {
		return MonthKey{}, ErrInvalidMonth
	}
	return MonthKey{Year: year, Month: time.Month(month)}, nil
}

// MustMonthKey is ParseMonthKey for literals known to be valid.
func MustMonthKey(s string) MonthKey {
	m, err := ParseMonthKey(s)
	if err != nil {
		panic(fmt.Sprintf("core: bad month key %q", s))
	}
	return m
}

// MonthOf returns the month containing t, evaluated in UTC.
func MonthOf(t time.Time) MonthKey {
	t = t.UTC()
	return MonthKey{Year: t.Year(), Month: t.Month()}
}

// CurrentMonth returns the month containing now.
func CurrentMonth(now time.Time) MonthKey {
	return MonthOf(now)
}

func (m MonthKey) IsZero() bool { return m.Year == 0 && m.Month == 0 }

func (m MonthKey) String() string {
	return fmt.Sprintf("%04d-%02d", m.Year, int(m.Month))
}

// Start is the first instant of the month (day 1, 00:00:00.000 UTC).
func (m MonthKey) Start() time.Time {
	return time.Date(m.Year, m.Month, 1, 0, 0, 0, 0, time.UTC)
}

// End is the last millisecond of the month (last day, 23:59:59.999 UTC).
func (m MonthKey) End() time.Time {
	return m.Start().AddDate(0, 1, 0).Add(-time.Millisecond)
}

// Days returns the number of days in the month.
func (m MonthKey) Days() int {
	return m.End().Day()
}

// Contains reports whether t falls within [Start, End].
func (m MonthKey) Contains(t time.Time) bool {
	t = t.UTC()
	return !t.Before(m.Start()) && !t.After(m.End())
}

func (m MonthKey) Next() MonthKey { return MonthOf(m.Start().AddDate(0, 1, 0)) }
func (m MonthKey) Prev() MonthKey { return MonthOf(m.Start().AddDate(0, -1, 0)) }

// Label is the human month name, e.g. "March 2025".
func (m MonthKey) Label() string {
	return m.Start().Format("January 2006")
}

func (m MonthKey) MarshalText() ([]byte, error) {
	return []byte(m.String()), nil
}

func (m *MonthKey) UnmarshalText(b []byte) error {
	parsed, err := ParseMonthKey(string(b))
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}

// MonthOption is one entry of a month picker.
type MonthOption struct {
	Value MonthKey `json:"value"`
	Label string   `json:"label"`
}

// MonthOptions lists the last 12 months (oldest first, ending with the
// current one) followed by the next 3.
func MonthOptions(now time.Time) []MonthOption {
	cur := CurrentMonth(now)
	opts := make([]MonthOption, 0, 15)
	m := cur
	for i := 0; i < 11; i++ {
		m = m.Prev()
	}
	for i := 0; i < 15; i++ {
		opts = append(opts, MonthOption{Value: m, Label: m.Label()})
		m = m.Next()
	}
	return opts
}

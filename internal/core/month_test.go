package core

import (
	"encoding/json"
	"errors"
	"testing"
	"time"
)

func TestParseMonthKey(t *testing.T) {
	cases := []struct {
		in string
		ok bool
	}{
		{"2025-03", true},
		{"1999-12", true},
		{"2025-01", true},
		{"2025-13", false},
		{"2025-00", false},
		{"2025-3", false},
		{"25-03", false},
		{"2025/03", false},
		{"2025-03-01", false},
		{" 2025-03", false},
		{"", false},
	}
	for _, tc := range cases {
		m, err := ParseMonthKey(tc.in)
		if tc.ok {
			if err != nil {
				t.Fatalf("%q: unexpected error %v", tc.in, err)
			}
			if m.String() != tc.in {
				t.Fatalf("%q: round trip gave %q", tc.in, m.String())
			}
			continue
		}
		if !errors.Is(err, ErrInvalidMonth) {
			t.Fatalf("%q: expected ErrInvalidMonth, got %v", tc.in, err)
		}
	}
}

func TestMonthBounds(t *testing.T) {
	cases := []struct {
		month string
		days  int
		end   string
	}{
		{"2025-03", 31, "2025-03-31T23:59:59.999Z"},
		{"2025-04", 30, "2025-04-30T23:59:59.999Z"},
		{"2024-02", 29, "2024-02-29T23:59:59.999Z"},
		{"2025-02", 28, "2025-02-28T23:59:59.999Z"},
		{"2025-12", 31, "2025-12-31T23:59:59.999Z"},
	}
	for _, tc := range cases {
		m := MustMonthKey(tc.month)
		if m.Days() != tc.days {
			t.Fatalf("%s: expected %d days, got %d", tc.month, tc.days, m.Days())
		}
		if got := m.End().Format("2006-01-02T15:04:05.000Z07:00"); got != tc.end {
			t.Fatalf("%s: expected end %s, got %s", tc.month, tc.end, got)
		}
		if m.Start().Day() != 1 || m.Start().Hour() != 0 || m.Start().Location() != time.UTC {
			t.Fatalf("%s: bad start %v", tc.month, m.Start())
		}
	}
}

func TestMonthContains(t *testing.T) {
	m := MustMonthKey("2025-03")
	inside := []time.Time{
		time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2025, 3, 31, 23, 59, 59, 999_000_000, time.UTC),
		time.Date(2025, 3, 15, 12, 0, 0, 0, time.UTC),
	}
	outside := []time.Time{
		time.Date(2025, 2, 28, 23, 59, 59, 999_000_000, time.UTC),
		time.Date(2025, 4, 1, 0, 0, 0, 0, time.UTC),
	}
	for _, ts := range inside {
		if !m.Contains(ts) {
			t.Fatalf("expected %v inside %s", ts, m)
		}
	}
	for _, ts := range outside {
		if m.Contains(ts) {
			t.Fatalf("expected %v outside %s", ts, m)
		}
	}
	// 00:30 on April 1st in UTC+2 is still March 31st in UTC.
	plus2 := time.FixedZone("UTC+2", 2*60*60)
	if !m.Contains(time.Date(2025, 4, 1, 0, 30, 0, 0, plus2)) {
		t.Fatal("boundaries must be evaluated in UTC")
	}
}

func TestMonthNavigation(t *testing.T) {
	if got := MustMonthKey("2025-01").Prev().String(); got != "2024-12" {
		t.Fatalf("prev: got %s", got)
	}
	if got := MustMonthKey("2025-12").Next().String(); got != "2026-01" {
		t.Fatalf("next: got %s", got)
	}
	if got := MustMonthKey("2025-03").Label(); got != "March 2025" {
		t.Fatalf("label: got %s", got)
	}
}

func TestMonthOptions(t *testing.T) {
	now := time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)
	opts := MonthOptions(now)
	if len(opts) != 15 {
		t.Fatalf("expected 15 options, got %d", len(opts))
	}
	if opts[0].Value.String() != "2024-04" {
		t.Fatalf("first option: got %s", opts[0].Value)
	}
	if opts[11].Value.String() != "2025-03" {
		t.Fatalf("current month should be 12th, got %s", opts[11].Value)
	}
	if opts[14].Value.String() != "2025-06" {
		t.Fatalf("last option: got %s", opts[14].Value)
	}
}

func TestMonthKeyJSON(t *testing.T) {
	var v struct {
		Month MonthKey `json:"month"`
	}
	if err := json.Unmarshal([]byte(`{"month":"2025-07"}`), &v); err != nil {
		t.Fatal(err)
	}
	if v.Month != MustMonthKey("2025-07") {
		t.Fatalf("got %v", v.Month)
	}
	if err := json.Unmarshal([]byte(`{"month":"2025-7"}`), &v); err == nil {
		t.Fatal("expected error for malformed month")
	}
	b, _ := json.Marshal(v)
	if string(b) != `{"month":"2025-07"}` {
		t.Fatalf("got %s", b)
	}
}

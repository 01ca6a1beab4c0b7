package core

import (
	"encoding/json"
	"testing"
)

func TestParseDecimalToCents(t *testing.T) {
	cases := []struct {
		in  string
		out int64
		ok  bool
	}{
		{"1", 100, true},
		{"1.0", 100, true},
		{"1.23", 123, true},
		{"1,23", 123, true},
		{"0.01", 1, true},
		{"1.005", 101, true}, // half-up rounding
		{"1.004", 100, true},
		{" 2.50 ", 250, true},
		{"-1", 0, false},
		{"+1", 0, false},
		{"0", 0, false},
		{"0.004", 0, false},
		{"abc", 0, false},
		{"1.2.3", 0, false},
		{"1e3", 0, false},
		{"", 0, false},
	}
	for _, tc := range cases {
		got, err := ParseDecimalToCents(tc.in)
		if tc.ok {
			if err != nil || got != tc.out {
				t.Fatalf("%q expected %d, got %d (err=%v)", tc.in, tc.out, got, err)
			}
		} else {
			if err == nil {
				t.Fatalf("%q expected error", tc.in)
			}
		}
	}
}

func TestMoneyString(t *testing.T) {
	cases := map[int64]string{
		0:    "0.00",
		5:    "0.05",
		4550: "45.50",
		-550: "-5.50",
	}
	for cents, want := range cases {
		if got := (Money{Cents: cents}).String(); got != want {
			t.Fatalf("%d: expected %s, got %s", cents, want, got)
		}
	}
}

func TestMoneyJSON(t *testing.T) {
	b, err := json.Marshal(struct {
		A Money `json:"a"`
	}{Money{Cents: 10550}})
	if err != nil {
		t.Fatal(err)
	}
	if string(b) != `{"a":105.50}` {
		t.Fatalf("got %s", b)
	}

	var in struct {
		A Money `json:"a"`
		B Money `json:"b"`
	}
	if err := json.Unmarshal([]byte(`{"a":45.5,"b":"12,345"}`), &in); err != nil {
		t.Fatal(err)
	}
	if in.A.Cents != 4550 || in.B.Cents != 1235 {
		t.Fatalf("got %d and %d", in.A.Cents, in.B.Cents)
	}

	if err := json.Unmarshal([]byte(`{"a":"lots"}`), &in); err == nil {
		t.Fatal("expected error for non-numeric amount")
	}
}

func TestMoneyValidateRange(t *testing.T) {
	if err := (Money{Cents: 1}).ValidateRange(100); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}
	if err := (Money{Cents: 100}).ValidateRange(100); err != nil {
		t.Fatalf("upper bound is inclusive, got %v", err)
	}
	if err := (Money{Cents: 101}).ValidateRange(100); err != ErrAmountTooLarge {
		t.Fatalf("expected ErrAmountTooLarge, got %v", err)
	}
	if err := (Money{Cents: 0}).ValidateRange(100); err != ErrInvalidAmount {
		t.Fatalf("expected ErrInvalidAmount, got %v", err)
	}
}

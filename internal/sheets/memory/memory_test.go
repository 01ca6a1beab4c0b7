package memory

import (
	"context"
	"errors"
	"testing"

	"fintrack/internal/core"
	"fintrack/internal/report"
)

func TestStoreKeepsLatestReport(t *testing.T) {
	s := New()
	jan := core.MustMonthKey("2025-01")

	ref, err := s.WriteMonthReport(context.Background(), report.MonthReport{UserID: "u1", Month: jan})
	if err != nil || ref != "mem:1" {
		t.Fatalf("unexpected write: ref=%q err=%v", ref, err)
	}
	second := report.MonthReport{UserID: "u1", Month: jan, Expenses: []core.ExpenseView{{}}}
	ref, err = s.WriteMonthReport(context.Background(), second)
	if err != nil || ref != "mem:2" {
		t.Fatalf("unexpected write: ref=%q err=%v", ref, err)
	}

	got, ok := s.Latest("u1", jan)
	if !ok || len(got.Expenses) != 1 {
		t.Fatalf("latest report not kept: %+v ok=%v", got, ok)
	}
	if _, ok := s.Latest("u2", jan); ok {
		t.Fatalf("reports must be scoped by user")
	}
	if s.Writes() != 2 {
		t.Fatalf("writes = %d, want 2", s.Writes())
	}
}

func TestStoreRejectsMissingMonth(t *testing.T) {
	s := New()
	_, err := s.WriteMonthReport(context.Background(), report.MonthReport{UserID: "u1"})
	if !errors.Is(err, core.ErrInvalidMonth) {
		t.Fatalf("expected ErrInvalidMonth, got %v", err)
	}
	if s.Writes() != 0 {
		t.Fatalf("failed write counted")
	}
}

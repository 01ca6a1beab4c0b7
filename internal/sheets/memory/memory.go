// Package memory provides an in-process sheets writer used when Google
// Sheets is not configured and in tests.
package memory

import (
	"context"
	"fmt"
	"sync"

	"fintrack/internal/core"
	"fintrack/internal/report"
	ports "fintrack/internal/sheets"
)

type Store struct {
	mu      sync.Mutex
	writes  int
	reports map[string]report.MonthReport
}

var _ ports.ReportWriter = (*Store)(nil)

func New() *Store {
	return &Store{reports: make(map[string]report.MonthReport)}
}

// WriteMonthReport keeps the latest report per user and month and returns a
// synthetic range reference.
func (s *Store) WriteMonthReport(_ context.Context, r report.MonthReport) (string, error) {
	if r.Month.IsZero() {
		return "", core.ErrInvalidMonth
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.writes++
	s.reports[key(r.UserID, r.Month)] = r
	return fmt.Sprintf("mem:%d", s.writes), nil
}

// Latest returns the last report written for the user and month.
func (s *Store) Latest(userID core.ID, month core.MonthKey) (report.MonthReport, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.reports[key(userID, month)]
	return r, ok
}

// Writes counts successful writes.
func (s *Store) Writes() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.writes
}

func key(userID core.ID, month core.MonthKey) string {
	return string(userID) + "|" + month.String()
}

package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"finreport/internal/core"
	ports "finreport/internal/sheets"
)

var (
	_ ports.ReportWriter = (*Store)(nil)
	_ ports.ReportReader = (*Store)(nil)
)

// Store keeps reports in memory, one per month.
type Store struct {
	mu      sync.Mutex
	reports map[core.Period]core.MonthlyReport
	writes  int
}

func New() *Store {
	return &Store{reports: make(map[core.Period]core.MonthlyReport)}
}

// WriteReport stores r and returns a synthetic row reference.
func (s *Store) WriteReport(_ context.Context, r core.MonthlyReport) (string, error) {
	if err := r.Period.Validate(); err != nil {
		return "", err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reports[r.Period] = r
	s.writes++
	return fmt.Sprintf("mem:%s", r.Period), nil
}

func (s *Store) ReadReports(_ context.Context, year int) ([]core.MonthlyReport, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []core.MonthlyReport
	for p, r := range s.reports {
		if p.Year == year {
			out = append(out, r)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Period.Month < out[j].Period.Month })
	return out, nil
}

// Writes returns how many reports have been written, including overwrites.
func (s *Store) Writes() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.writes
}

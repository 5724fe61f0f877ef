package services

import (
	"context"
	"sync"

	"finreport/internal/core"
)

type fakeBillRepo struct {
	mu    sync.Mutex
	bills []core.Bill
	err   error
	calls int
}

func (f *fakeBillRepo) ActiveBills(context.Context) ([]core.Bill, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.bills, nil
}

func (f *fakeBillRepo) Calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

type fakeExclusions struct {
	excluded map[string]bool
	err      error
	calls    int
}

func (f *fakeExclusions) IsExcluded(_ context.Context, description, _ string) (bool, error) {
	f.calls++
	if f.err != nil {
		return false, f.err
	}
	return f.excluded[description], nil
}

func bill(name, amount string, freq core.Frequency, start core.Date) core.Bill {
	return core.Bill{
		ID:        name,
		Name:      name,
		AmountMin: amount,
		AmountMax: amount,
		StartDate: start,
		Frequency: freq,
		Active:    true,
	}
}

package core

import (
	"errors"
	"strings"
	"testing"
)

func TestResult(t *testing.T) {
	ok := Ok(42)
	if !ok.IsOk() || ok.Value() != 42 || ok.Err() != nil {
		t.Fatalf("unexpected ok result: %+v", ok)
	}
	v, err := ok.Unwrap()
	if v != 42 || err != nil {
		t.Fatalf("Unwrap() = %d, %v", v, err)
	}

	failed := Err[int](NewFetchError(NewPeriod(3, 2024), "paycheck_surplus", errors.New("boom")))
	if failed.IsOk() {
		t.Fatalf("expected failure")
	}
	v, err = failed.Unwrap()
	if v != 0 || err == nil {
		t.Fatalf("Unwrap() = %d, %v", v, err)
	}
}

func TestAnalysisErrorKinds(t *testing.T) {
	cause := errors.New("upstream down")
	err := error(NewFetchError(NewPeriod(3, 2024), "budget_variance", cause))

	if !errors.Is(err, ErrFetch) {
		t.Errorf("expected fetch kind")
	}
	if errors.Is(err, ErrCalculation) {
		t.Errorf("did not expect calculation kind")
	}
	if !errors.Is(err, cause) {
		t.Errorf("expected cause in chain")
	}
	for _, want := range []string{"2024-03", "budget_variance", "upstream down"} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("error %q does not mention %q", err.Error(), want)
		}
	}

	ae, ok := AsAnalysisError(err)
	if !ok || ae.Operation != "budget_variance" {
		t.Fatalf("AsAnalysisError() = %v, %v", ae, ok)
	}
}

func TestAnalysisErrorYearOnly(t *testing.T) {
	err := NewValidationError(Period{Year: 20}, "average_monthly_bills", ErrInvalidYear)
	if !strings.Contains(err.Error(), "for 0020:") {
		t.Fatalf("unexpected message %q", err.Error())
	}
}

package scheduler

import (
	"context"
	"errors"
	"testing"
	"time"

	"finreport/internal/core"
	"finreport/internal/log"
	"finreport/internal/report"
)

type stubBuilder struct {
	periods []core.Period
	err     error
}

func (b *stubBuilder) Build(_ context.Context, p core.Period) (core.MonthlyReport, error) {
	b.periods = append(b.periods, p)
	if b.err != nil {
		return core.MonthlyReport{}, b.err
	}
	return core.MonthlyReport{Period: p}, nil
}

type recordingSink struct {
	got []core.MonthlyReport
	err error
}

func (s *recordingSink) Name() string { return "recording" }

func (s *recordingSink) Send(_ context.Context, r core.MonthlyReport) error {
	s.got = append(s.got, r)
	return s.err
}

func TestReportPeriod(t *testing.T) {
	tests := []struct {
		now  time.Time
		want core.Period
	}{
		{time.Date(2024, 3, 1, 6, 0, 0, 0, time.UTC), core.NewPeriod(2, 2024)},
		{time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC), core.NewPeriod(12, 2023)},
		{time.Date(2024, 12, 31, 23, 59, 0, 0, time.UTC), core.NewPeriod(11, 2024)},
	}
	for _, tt := range tests {
		if got := ReportPeriod(tt.now); got != tt.want {
			t.Errorf("ReportPeriod(%v) = %v, want %v", tt.now, got, tt.want)
		}
	}
}

func TestRunNow(t *testing.T) {
	b := &stubBuilder{}
	sink := &recordingSink{}
	s := New(context.Background(), b, []report.Sink{sink}, log.Discard())
	s.now = func() time.Time { return time.Date(2024, 4, 1, 6, 0, 0, 0, time.UTC) }

	r, err := s.RunNow(context.Background())
	if err != nil {
		t.Fatalf("RunNow() error = %v", err)
	}
	if r.Period != core.NewPeriod(3, 2024) {
		t.Errorf("period = %v", r.Period)
	}
	if len(sink.got) != 1 {
		t.Errorf("sink received %d reports, want 1", len(sink.got))
	}
}

func TestRunNowErrors(t *testing.T) {
	b := &stubBuilder{err: errors.New("invalid")}
	sink := &recordingSink{}
	s := New(context.Background(), b, []report.Sink{sink}, log.Discard())
	if _, err := s.RunNow(context.Background()); err == nil {
		t.Error("expected build error")
	}
	if len(sink.got) != 0 {
		t.Error("nothing should be delivered when the build fails")
	}

	failing := &recordingSink{err: errors.New("down")}
	s = New(context.Background(), &stubBuilder{}, []report.Sink{failing}, log.Discard())
	if _, err := s.RunNow(context.Background()); err == nil {
		t.Error("expected delivery error")
	}
}

func TestRegister(t *testing.T) {
	s := New(context.Background(), &stubBuilder{}, nil, log.Discard())
	if err := s.Register("0 0 6 1 * *"); err != nil {
		t.Errorf("Register() error = %v", err)
	}
	if err := s.Register("@monthly"); err != nil {
		t.Errorf("Register(@monthly) error = %v", err)
	}
	if err := s.Register("not a schedule"); err == nil {
		t.Error("expected error for invalid schedule")
	}
}

func TestMonthlyTaskSkipsAfterCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	b := &stubBuilder{}
	s := New(ctx, b, nil, log.Discard())
	s.monthlyTask()
	if len(b.periods) != 0 {
		t.Error("task should not build after cancellation")
	}
}

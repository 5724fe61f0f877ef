package google

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"finreport/internal/core"
)

const lastColumn = "L"

var reportHeaders = []string{
	"Month", "Expected bills", "Average monthly bills", "Paycheck surplus",
	"Budget limit", "Budget spent", "Budget remaining",
	"Unbudgeted total", "Unbudgeted count", "Pending categorization",
	"Generated at", "Errors",
}

func headerRow() []interface{} {
	out := make([]interface{}, len(reportHeaders))
	for i, h := range reportHeaders {
		out[i] = h
	}
	return out
}

// formatReportRow lays out r in the column order of reportHeaders.
func formatReportRow(r core.MonthlyReport) []interface{} {
	return []interface{}{
		r.Period.Month,
		core.FormatAmount(r.ExpectedBills),
		core.FormatAmount(r.AverageMonthlyBills),
		core.FormatAmount(r.PaycheckSurplus),
		core.FormatAmount(r.Budgets.TotalLimit),
		core.FormatAmount(r.Budgets.TotalSpent),
		core.FormatAmount(r.Budgets.TotalRemaining),
		core.FormatAmount(r.Unbudgeted.Total),
		r.Unbudgeted.Count,
		r.PendingCategorization,
		r.GeneratedAt.UTC().Format(time.RFC3339),
		formatErrors(r.Errors),
	}
}

// formatErrors renders "op: message" pairs sorted by operation.
func formatErrors(errs map[string]string) string {
	if len(errs) == 0 {
		return ""
	}
	ops := make([]string, 0, len(errs))
	for op := range errs {
		ops = append(ops, op)
	}
	sort.Strings(ops)
	parts := make([]string, len(ops))
	for i, op := range ops {
		parts[i] = op + ": " + errs[op]
	}
	return strings.Join(parts, "; ")
}

func parseErrors(s string) map[string]string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	out := make(map[string]string)
	for _, part := range strings.Split(s, "; ") {
		op, msg, ok := strings.Cut(part, ": ")
		if !ok {
			out[strings.TrimSpace(part)] = ""
			continue
		}
		out[strings.TrimSpace(op)] = msg
	}
	return out
}

// parseReportRows converts a values matrix into reports for year. Header
// and malformed rows are skipped; skipped counts only the malformed ones.
func parseReportRows(values [][]interface{}, year int) ([]core.MonthlyReport, int) {
	var out []core.MonthlyReport
	skipped := 0
	for i, raw := range values {
		row := toStrings(raw)
		if len(row) == 0 || strings.TrimSpace(row[0]) == "" {
			continue
		}
		if i == 0 && strings.EqualFold(row[0], reportHeaders[0]) {
			continue
		}
		r, err := parseReportRow(row, year)
		if err != nil {
			skipped++
			continue
		}
		out = append(out, r)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Period.Month < out[j].Period.Month })
	return out, skipped
}

func parseReportRow(row []string, year int) (core.MonthlyReport, error) {
	month, err := strconv.Atoi(row[0])
	if err != nil {
		return core.MonthlyReport{}, fmt.Errorf("month %q: %w", row[0], err)
	}
	r := core.MonthlyReport{Period: core.NewPeriod(month, year)}
	if err := r.Period.Validate(); err != nil {
		return core.MonthlyReport{}, err
	}

	amounts := []*decimal.Decimal{
		&r.ExpectedBills, &r.AverageMonthlyBills, &r.PaycheckSurplus,
		&r.Budgets.TotalLimit, &r.Budgets.TotalSpent, &r.Budgets.TotalRemaining,
		&r.Unbudgeted.Total,
	}
	for i, dst := range amounts {
		v := safeGet(row, i+1)
		if v == "" {
			continue
		}
		d, err := core.ParseAmount(v)
		if err != nil {
			return core.MonthlyReport{}, fmt.Errorf("column %s: %w", reportHeaders[i+1], err)
		}
		*dst = d
	}

	r.Unbudgeted.Count, _ = strconv.Atoi(safeGet(row, 8))
	r.PendingCategorization, _ = strconv.Atoi(safeGet(row, 9))
	if ts := safeGet(row, 10); ts != "" {
		if t, err := time.Parse(time.RFC3339, ts); err == nil {
			r.GeneratedAt = t
		}
	}
	r.Errors = parseErrors(safeGet(row, 11))
	return r, nil
}

func toStrings(in []interface{}) []string {
	out := make([]string, len(in))
	for i, v := range in {
		out[i] = strings.TrimSpace(fmt.Sprint(v))
	}
	return out
}

func safeGet(arr []string, idx int) string {
	if idx < 0 || idx >= len(arr) {
		return ""
	}
	return arr[idx]
}

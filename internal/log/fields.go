package log

// Common field names for structured logging
const (
	FieldComponent = "component"
	FieldRunID     = "run_id"
	FieldOperation = "operation"
	FieldYear      = "year"
	FieldMonth     = "month"
	FieldCount     = "count"
	FieldDuration  = "duration_ms"
	FieldSuccess   = "success"
	FieldError     = "error"
	FieldErrorType = "error_type"
	FieldBillID    = "bill_id"
	FieldBillName  = "bill_name"
	FieldFrequency = "frequency"
	FieldJournalID = "journal_id"
	FieldBudgetID  = "budget_id"
	FieldCacheHit  = "cache_hit"
	FieldAmount    = "amount"
	FieldBackend   = "backend"
)

// Components defines standard component names
const (
	ComponentApp        = "app"
	ComponentBills      = "bills"
	ComponentAnalysis   = "analysis"
	ComponentClassifier = "classifier"
	ComponentReport     = "report"
	ComponentStorage    = "storage"
	ComponentAMQP       = "amqp"
	ComponentSheets     = "sheets"
	ComponentCache      = "cache"
	ComponentScheduler  = "scheduler"
	ComponentBackend    = "backend"
)

// Operations defines standard operation names
const (
	OpExpectedBills       = "expected_bills_for_month"
	OpAverageMonthlyBills = "average_monthly_bills"
	OpPaycheckSurplus     = "paycheck_surplus"
	OpBudgetVariance      = "budget_variance"
	OpUnbudgeted          = "unbudgeted_expenses"
	OpPendingCategorize   = "pending_categorization"
	OpFetchTransactions   = "fetch_transactions"
	OpFetchBills          = "fetch_bills"
	OpFetchBudgets        = "fetch_budgets"
	OpPublish             = "publish"
	OpStartup             = "startup"
	OpShutdown            = "shutdown"
)

// ErrorTypes defines standard error type categories
const (
	ErrorTypeValidation    = "validation_error"
	ErrorTypeFetch         = "fetch_error"
	ErrorTypeCalculation   = "calculation_error"
	ErrorTypeConfiguration = "configuration_error"
	ErrorTypeInternal      = "internal_error"
)

// LogFields provides a builder pattern for structured log fields
type LogFields map[string]any

// NewFields creates a new LogFields instance
func NewFields() LogFields {
	return make(LogFields)
}

// WithComponent adds component field
func (f LogFields) WithComponent(component string) LogFields {
	f[FieldComponent] = component
	return f
}

// WithError adds error field
func (f LogFields) WithError(err error) LogFields {
	if err != nil {
		f[FieldError] = err.Error()
	}
	return f
}

// WithOperation adds operation field
func (f LogFields) WithOperation(op string) LogFields {
	f[FieldOperation] = op
	return f
}

// WithPeriod adds month and year fields
func (f LogFields) WithPeriod(month, year int) LogFields {
	f[FieldMonth] = month
	f[FieldYear] = year
	return f
}

// WithCount adds count field
func (f LogFields) WithCount(n int) LogFields {
	f[FieldCount] = n
	return f
}

// ToSlice converts LogFields to a slice for slog
func (f LogFields) ToSlice() []any {
	slice := make([]any, 0, len(f)*2)
	for k, v := range f {
		slice = append(slice, k, v)
	}
	return slice
}

package backend

import (
	"finreport/internal/config"
	"finreport/internal/log"
	"finreport/internal/report"
	"finreport/internal/services"
)

// NewReportBuilder wires a report builder over b. Bills are read through a
// TTL cache, which is returned so callers can register it for cleanup.
func NewReportBuilder(cfg *config.Config, b Backend, logger *log.Logger) (*report.Builder, *services.BillCache) {
	bills := services.NewBillCache(b, cfg.BillCacheTTL, nil, logger)
	builder := report.NewBuilder(report.Deps{
		Transactions:     b,
		Bills:            bills,
		Budgets:          b,
		Exclusions:       b,
		Classification:   cfg.Classification(),
		ExpectedPaycheck: cfg.ExpectedPaycheck(),
		Logger:           logger,
	})
	return builder, bills
}

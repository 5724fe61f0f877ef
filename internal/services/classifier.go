package services

import (
	"context"
	"fmt"

	"finreport/internal/core"
	"finreport/internal/ledger"
)

// TransactionClassifier answers what kind of entry a transaction is. Every
// predicate except IsExcludedTransaction is a pure function of the
// transaction and the configuration.
type TransactionClassifier struct {
	cfg        core.ClassificationConfig
	exclusions ledger.ExclusionLookup
}

// NewTransactionClassifier creates a classifier. exclusions may be nil, in
// which case nothing is ever excluded.
func NewTransactionClassifier(cfg core.ClassificationConfig, exclusions ledger.ExclusionLookup) *TransactionClassifier {
	return &TransactionClassifier{cfg: cfg, exclusions: exclusions}
}

// Config returns the classification configuration.
func (c *TransactionClassifier) Config() core.ClassificationConfig {
	return c.cfg
}

func (c *TransactionClassifier) IsTransfer(tx core.Transaction) bool {
	return tx.Type == core.Transfer
}

// IsBill reports whether the transaction pays a bill: it is linked to a bill
// or subscription, or it carries the bills tag.
func (c *TransactionClassifier) IsBill(tx core.Transaction) bool {
	return tx.BillID != "" || tx.SubscriptionID != "" || tx.HasTag(c.cfg.BillsTag)
}

func (c *TransactionClassifier) IsDeposit(tx core.Transaction) bool {
	return tx.Type == core.Deposit
}

func (c *TransactionClassifier) IsDisposableIncome(tx core.Transaction) bool {
	return tx.HasTag(c.cfg.DisposableIncomeTag)
}

// HasNoDestination reports whether the money went to the ledger's
// placeholder "no name" expense account.
func (c *TransactionClassifier) HasNoDestination(tx core.Transaction) bool {
	return c.cfg.NoNameExpenseAccountID != "" && tx.DestinationAccountID == c.cfg.NoNameExpenseAccountID
}

// IsSupplementedByDisposable reports whether tags contain the disposable
// income tag. Nil and empty tag sets never match.
func (c *TransactionClassifier) IsSupplementedByDisposable(tags []string) bool {
	return core.ContainsTag(tags, c.cfg.DisposableIncomeTag)
}

func (c *TransactionClassifier) HasACategory(tx core.Transaction) bool {
	return tx.CategoryID != ""
}

func (c *TransactionClassifier) IsPaycheck(tx core.Transaction) bool {
	return tx.HasTag(c.cfg.PaycheckTag)
}

// IsExcludedTransaction asks the exclusion list whether the description or
// amount is excluded from budgeting.
func (c *TransactionClassifier) IsExcludedTransaction(ctx context.Context, description, amount string) (bool, error) {
	if c.exclusions == nil {
		return false, nil
	}
	excluded, err := c.exclusions.IsExcluded(ctx, description, amount)
	if err != nil {
		return false, fmt.Errorf("exclusion lookup: %w", err)
	}
	return excluded, nil
}

// Package core provides money parsing and handling utilities.
//
// This file contains functions for parsing monetary amounts from the decimal
// strings the ledger returns and normalizing them for comparison.
package core

import (
	"strings"
	"unicode"

	"github.com/shopspring/decimal"
)

// ParseAmount converts a ledger decimal string to a decimal value.
//
// It accepts both dot (12.34) and comma (12,34) decimal separators and an
// optional leading sign. Grouping separators, exponents and non-numeric
// input are rejected with ErrInvalidAmount.
//
// Examples:
//
//	ParseAmount("12.34")  -> 12.34, nil
//	ParseAmount("12,34")  -> 12.34, nil
//	ParseAmount("-5")     -> -5, nil
//	ParseAmount("1e3")    -> 0, ErrInvalidAmount
func ParseAmount(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Zero, ErrInvalidAmount
	}
	s = strings.ReplaceAll(s, ",", ".")

	digits := strings.TrimLeft(s, "+-")
	if len(s)-len(digits) > 1 || digits == "" {
		return decimal.Zero, ErrInvalidAmount
	}
	parts := strings.Split(digits, ".")
	if len(parts) > 2 {
		return decimal.Zero, ErrInvalidAmount
	}
	seenDigit := false
	for _, part := range parts {
		for _, r := range part {
			if !unicode.IsDigit(r) {
				return decimal.Zero, ErrInvalidAmount
			}
			seenDigit = true
		}
	}
	if !seenDigit {
		return decimal.Zero, ErrInvalidAmount
	}

	intPart := parts[0]
	if intPart == "" {
		intPart = "0"
	}
	canonical := intPart
	if len(parts) == 2 && parts[1] != "" {
		canonical += "." + parts[1]
	}
	if strings.HasPrefix(s, "-") {
		canonical = "-" + canonical
	}

	d, err := decimal.NewFromString(canonical)
	if err != nil {
		return decimal.Zero, ErrInvalidAmount
	}
	return d, nil
}

// NormalizeAmount returns the canonical absolute representation of an
// amount string ("-12,50" -> "12.5"), used when matching exclusion records.
func NormalizeAmount(s string) (string, error) {
	d, err := ParseAmount(s)
	if err != nil {
		return "", err
	}
	return d.Abs().String(), nil
}

// FormatAmount renders an amount with two decimal places for reports.
func FormatAmount(d decimal.Decimal) string {
	return d.StringFixed(2)
}

// Copyright 2026 Peter Edge
//
// All rights reserved.

// Package amount provides parsing and display helpers for currency amounts
// and percentages backed by decimal.Decimal.
//
// Amounts are parsed from both the plain "1234.56" form and the Brazilian
// "1.234,56" form used by custody statements, and are displayed through the
// currency formatters of github.com/Rhymond/go-money.
package amount

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/Rhymond/go-money"
	"github.com/shopspring/decimal"
)

// DefaultCurrencyCode is the currency used when none is configured.
const DefaultCurrencyCode = "BRL"

// Places is the number of decimal places currency amounts are rounded to.
const Places = 2

// dotThousandsPattern matches "10.000" and "1.234.567", where dots group thousands.
var dotThousandsPattern = regexp.MustCompile(`^[+-]?[1-9]\d{0,2}(\.\d{3})+$`)

var (
	// Hundred is the decimal 100, used for percentage conversions.
	Hundred = decimal.NewFromInt(100)
	// Epsilon is the smallest amount that is not treated as zero (one cent).
	Epsilon = decimal.New(1, -Places)
)

// Parse parses a decimal amount.
//
// An optional "R$" prefix and surrounding whitespace are ignored. When both '.'
// and ',' appear, the last one is the decimal separator and the other groups
// thousands. A lone ',' is a decimal separator. Without a ',', dots that
// split the digits into groups of three are thousands separators, so
// "10.000" is ten thousand.
func Parse(value string) (decimal.Decimal, error) {
	clean := strings.TrimSpace(value)
	clean = strings.TrimSpace(strings.TrimPrefix(clean, "R$"))
	if clean == "" {
		return decimal.Zero, errors.New("empty amount")
	}
	if dotThousandsPattern.MatchString(clean) {
		clean = strings.ReplaceAll(clean, ".", "")
	}
	lastDot := strings.LastIndex(clean, ".")
	lastComma := strings.LastIndex(clean, ",")
	switch {
	case lastComma > lastDot:
		clean = strings.ReplaceAll(clean, ".", "")
		clean = strings.Replace(clean, ",", ".", 1)
	case lastComma >= 0:
		clean = strings.ReplaceAll(clean, ",", "")
	}
	d, err := decimal.NewFromString(clean)
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid amount %q: %w", value, err)
	}
	return d, nil
}

// ParseLenient parses a decimal amount, returning zero for empty or malformed input.
func ParseLenient(value string) decimal.Decimal {
	d, err := Parse(value)
	if err != nil {
		return decimal.Zero
	}
	return d
}

// Round rounds an amount to the currency fraction.
func Round(d decimal.Decimal) decimal.Decimal {
	return d.Round(Places)
}

// IsNegligible returns true if |d| is below one cent.
func IsNegligible(d decimal.Decimal) bool {
	return d.Abs().LessThan(Epsilon)
}

// Percent returns part / whole * 100, or zero if whole is zero.
func Percent(part decimal.Decimal, whole decimal.Decimal) decimal.Decimal {
	if whole.IsZero() {
		return decimal.Zero
	}
	return part.Mul(Hundred).Div(whole)
}

// Format formats an amount in the given currency, e.g. "R$1.234,56" for BRL.
//
// Unknown currency codes fall back to go-money's default layout.
func Format(d decimal.Decimal, currencyCode string) string {
	// money.New always returns a non-nil currency, unlike money.GetCurrency.
	currency := *money.New(0, currencyCode).Currency()
	minor := d.Shift(int32(currency.Fraction)).Round(0).IntPart()
	return currency.Formatter().Format(minor)
}

// FormatSigned formats an amount with an explicit sign. Zero is rendered as "-".
func FormatSigned(d decimal.Decimal, currencyCode string) string {
	if Round(d).IsZero() {
		return "-"
	}
	if d.IsPositive() {
		return "+" + Format(d, currencyCode)
	}
	return Format(d, currencyCode)
}

// FormatPercent formats a percentage with two decimal places, e.g. "12.50%".
func FormatPercent(p decimal.Decimal) string {
	return p.StringFixed(Places) + "%"
}

// FormatPlain formats an amount with two decimal places and no currency symbol.
func FormatPlain(d decimal.Decimal) string {
	return d.StringFixed(Places)
}

// Copyright 2026 Peter Edge
//
// All rights reserved.

// Package rebaldist aggregates asset records into a per-class distribution.
package rebaldist

import (
	"github.com/bufdev/rebal/internal/pkg/amount"
	"github.com/bufdev/rebal/internal/rebal/rebalasset"
	"github.com/shopspring/decimal"
)

// ClassDistribution is the current value and percentage of one class.
type ClassDistribution struct {
	Class          rebalasset.Class `json:"class"`
	CurrentValue   decimal.Decimal  `json:"current_value"`
	CurrentPercent decimal.Decimal  `json:"current_percent"`
}

// Distribution is the per-class distribution of a portfolio.
//
// Base is the percentage denominator: Total plus any positive Contribution.
// Classes are in order of first appearance in the records.
type Distribution struct {
	Base         decimal.Decimal     `json:"base"`
	Contribution decimal.Decimal     `json:"contribution"`
	Total        decimal.Decimal     `json:"total"`
	Classes      []ClassDistribution `json:"classes"`
}

// Compute computes the distribution of records by class.
//
// Negative contributions are treated as zero. A zero base yields zero
// percentages. An empty record list yields an empty distribution.
func Compute(records []rebalasset.Record, contribution decimal.Decimal) *Distribution {
	return compute(
		records,
		contribution,
		func(record rebalasset.Record) decimal.Decimal {
			return record.CurrentValue
		},
	)
}

// ComputeNew computes the distribution of records by class over their new values.
//
// This is the "after" view of an exported plan.
func ComputeNew(records []rebalasset.Record) *Distribution {
	return compute(
		records,
		decimal.Zero,
		func(record rebalasset.Record) decimal.Decimal {
			return record.NewValue
		},
	)
}

// Value returns the value of a class, or zero if the class is absent.
func (d *Distribution) Value(class rebalasset.Class) decimal.Decimal {
	if classDistribution, ok := d.find(class); ok {
		return classDistribution.CurrentValue
	}
	return decimal.Zero
}

// Percent returns the percentage of a class, or zero if the class is absent.
func (d *Distribution) Percent(class rebalasset.Class) decimal.Decimal {
	if classDistribution, ok := d.find(class); ok {
		return classDistribution.CurrentPercent
	}
	return decimal.Zero
}

func (d *Distribution) find(class rebalasset.Class) (ClassDistribution, bool) {
	for _, classDistribution := range d.Classes {
		if classDistribution.Class == class {
			return classDistribution, true
		}
	}
	return ClassDistribution{}, false
}

func compute(
	records []rebalasset.Record,
	contribution decimal.Decimal,
	valueOf func(rebalasset.Record) decimal.Decimal,
) *Distribution {
	if contribution.IsNegative() {
		contribution = decimal.Zero
	}
	var order []rebalasset.Class
	values := make(map[rebalasset.Class]decimal.Decimal)
	total := decimal.Zero
	for _, record := range records {
		if _, ok := values[record.Class]; !ok {
			order = append(order, record.Class)
		}
		value := valueOf(record)
		values[record.Class] = values[record.Class].Add(value)
		total = total.Add(value)
	}
	base := total.Add(contribution)
	classes := make([]ClassDistribution, 0, len(order))
	for _, class := range order {
		classes = append(
			classes,
			ClassDistribution{
				Class:          class,
				CurrentValue:   values[class],
				CurrentPercent: amount.Percent(values[class], base),
			},
		)
	}
	return &Distribution{
		Base:         base,
		Contribution: contribution,
		Total:        total,
		Classes:      classes,
	}
}

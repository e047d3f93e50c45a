// Copyright 2026 Peter Edge
//
// All rights reserved.

// Package rebalview converts rebal results into rows for table, CSV, and
// xlsx output.
//
// ToRow functions return plain numbers suitable for CSV and spreadsheets.
// ToTableRow functions format amounts in a currency for terminal display.
package rebalview

import (
	"strings"

	"github.com/bufdev/rebal/internal/pkg/amount"
	"github.com/bufdev/rebal/internal/rebal/rebalasset"
	"github.com/bufdev/rebal/internal/rebal/rebaldist"
	"github.com/bufdev/rebal/internal/rebal/rebaledit"
	"github.com/bufdev/rebal/internal/rebal/rebalexport"
	"github.com/bufdev/rebal/internal/rebal/reballiquidity"
	"github.com/bufdev/rebal/internal/rebal/rebalmodel"
	"github.com/bufdev/rebal/internal/rebal/rebalplan"
	"github.com/shopspring/decimal"
)

// TotalLabel is the label of totals rows.
const TotalLabel = "TOTAL"

// *** HOLDINGS ***

// HoldingHeaders returns the column headers for holding output.
func HoldingHeaders() []string {
	return []string{"NAME", "CLASS", "CURRENT VALUE", "LIQUIDITY"}
}

// HoldingToRow converts a record to a row.
func HoldingToRow(record rebalasset.Record) []string {
	return []string{record.Name, record.Class.String(), amount.FormatPlain(record.CurrentValue), record.LiquidityTag}
}

// HoldingToTableRow converts a record to a table row.
func HoldingToTableRow(record rebalasset.Record, currencyCode string) []string {
	return []string{record.Name, record.Class.String(), amount.Format(record.CurrentValue, currencyCode), record.LiquidityTag}
}

// *** DISTRIBUTION ***

// DistributionHeaders returns the column headers for distribution output.
func DistributionHeaders() []string {
	return []string{"CLASS", "VALUE", "PERCENT"}
}

// DistributionToRows converts a distribution to rows.
func DistributionToRows(distribution *rebaldist.Distribution) [][]string {
	rows := make([][]string, 0, len(distribution.Classes))
	for _, classDistribution := range distribution.Classes {
		rows = append(
			rows,
			[]string{
				classDistribution.Class.String(),
				amount.FormatPlain(classDistribution.CurrentValue),
				amount.FormatPlain(classDistribution.CurrentPercent),
			},
		)
	}
	return rows
}

// DistributionToTableRows converts a distribution to table rows.
//
// If the distribution has a contribution, it is shown as its own row so the
// percentages add up to 100.
func DistributionToTableRows(distribution *rebaldist.Distribution, currencyCode string) [][]string {
	rows := make([][]string, 0, len(distribution.Classes)+1)
	for _, classDistribution := range distribution.Classes {
		rows = append(
			rows,
			[]string{
				classDistribution.Class.String(),
				amount.Format(classDistribution.CurrentValue, currencyCode),
				amount.FormatPercent(classDistribution.CurrentPercent),
			},
		)
	}
	if distribution.Contribution.IsPositive() {
		rows = append(
			rows,
			[]string{
				"(contribution)",
				amount.Format(distribution.Contribution, currencyCode),
				amount.FormatPercent(amount.Percent(distribution.Contribution, distribution.Base)),
			},
		)
	}
	return rows
}

// DistributionTotalsTableRow returns the totals row of a distribution table.
func DistributionTotalsTableRow(distribution *rebaldist.Distribution, currencyCode string) []string {
	percent := decimal.Zero
	if distribution.Base.IsPositive() {
		percent = amount.Hundred
	}
	return []string{TotalLabel, amount.Format(distribution.Base, currencyCode), amount.FormatPercent(percent)}
}

// *** MODELS ***

// ModelHeaders returns the column headers for model listings.
func ModelHeaders() []string {
	return []string{"NAME", "PROFILE", "CLASSES"}
}

// ModelToRow converts a model to a listing row.
func ModelToRow(model *rebalmodel.Allocation) []string {
	weights := model.Weights()
	classes := make([]string, 0, len(weights))
	for _, weight := range weights {
		classes = append(classes, weight.Class.String())
	}
	return []string{model.Name(), model.RiskProfile(), strings.Join(classes, ", ")}
}

// WeightHeaders returns the column headers for model weights.
func WeightHeaders() []string {
	return []string{"CLASS", "PERCENT"}
}

// WeightToRow converts a weight to a row.
func WeightToRow(weight rebalmodel.Weight) []string {
	return []string{weight.Class.String(), amount.FormatPlain(weight.Percent)}
}

// WeightToTableRow converts a weight to a table row.
func WeightToTableRow(weight rebalmodel.Weight) []string {
	return []string{weight.Class.String(), amount.FormatPercent(weight.Percent)}
}

// *** PLANS ***

// PlanHeaders returns the column headers for plan output.
func PlanHeaders() []string {
	return []string{"CLASS", "CURRENT VALUE", "CURRENT %", "TARGET %", "TARGET VALUE", "DELTA", "ACTION"}
}

// EntryToRow converts a plan entry to a row.
func EntryToRow(entry rebalplan.Entry) []string {
	return []string{
		entry.Class.String(),
		amount.FormatPlain(entry.CurrentValue),
		amount.FormatPlain(entry.CurrentPercent),
		amount.FormatPlain(entry.TargetPercent),
		amount.FormatPlain(entry.TargetValue),
		amount.FormatPlain(entry.Delta),
		entry.Bucket.String(),
	}
}

// EntryToTableRow converts a plan entry to a table row.
func EntryToTableRow(entry rebalplan.Entry, currencyCode string) []string {
	return []string{
		entry.Class.String(),
		amount.Format(entry.CurrentValue, currencyCode),
		amount.FormatPercent(entry.CurrentPercent),
		amount.FormatPercent(entry.TargetPercent),
		amount.Format(entry.TargetValue, currencyCode),
		amount.FormatSigned(entry.Delta, currencyCode),
		entry.Bucket.String(),
	}
}

// PlanToTableRows converts a plan to table rows grouped by bucket.
//
// Increases come first, then decreases, then unchanged classes, with an
// empty row between non-empty groups.
func PlanToTableRows(plan *rebalplan.Plan, currencyCode string) [][]string {
	rows := make([][]string, 0, len(plan.Entries)+2)
	for _, entries := range [][]rebalplan.Entry{plan.Increases(), plan.Decreases(), plan.Unchanged()} {
		if len(entries) == 0 {
			continue
		}
		if len(rows) > 0 {
			rows = append(rows, make([]string, len(PlanHeaders())))
		}
		for _, entry := range entries {
			rows = append(rows, EntryToTableRow(entry, currencyCode))
		}
	}
	return rows
}

// PlanTotalsTableRow returns the totals row of a plan table.
//
// The delta column holds the total to reallocate.
func PlanTotalsTableRow(plan *rebalplan.Plan, currencyCode string) []string {
	var totalCurrent, totalTarget decimal.Decimal
	for _, entry := range plan.Entries {
		totalCurrent = totalCurrent.Add(entry.CurrentValue)
		totalTarget = totalTarget.Add(entry.TargetValue)
	}
	return []string{
		TotalLabel,
		amount.Format(totalCurrent, currencyCode),
		"",
		"",
		amount.Format(totalTarget, currencyCode),
		amount.Format(plan.TotalToReallocate(), currencyCode),
		"",
	}
}

// *** EDITOR ***

// SummaryHeaders returns the column headers for editor class summaries.
func SummaryHeaders() []string {
	return []string{"CLASS", "CURRENT %", "TARGET %", "CURRENT TOTAL", "NEW TOTAL", "SUGGESTED", "REALLOCATED", "GUIDANCE"}
}

// SummaryToTableRow converts a class summary to a table row.
func SummaryToTableRow(summary rebaledit.ClassSummary, currencyCode string) []string {
	return []string{
		summary.Class.String(),
		amount.FormatPercent(summary.CurrentPercent),
		amount.FormatPercent(summary.TargetPercent),
		amount.Format(summary.CurrentTotal, currencyCode),
		amount.Format(summary.NewTotal, currencyCode),
		amount.FormatSigned(summary.SuggestedDelta, currencyCode),
		amount.FormatSigned(summary.Reallocated, currencyCode),
		summary.Guidance.Text(currencyCode),
	}
}

// *** EXPORT ***

// ExportHeaders returns the column headers for exported records.
func ExportHeaders() []string {
	return []string{"CLASS", "NAME", "CURRENT VALUE", "REALLOCATED", "NEW VALUE", "LIQUIDITY"}
}

// ExportToRow converts an exported record to a row.
func ExportToRow(record rebalasset.Record) []string {
	return []string{
		record.Class.String(),
		record.Name,
		amount.FormatPlain(record.CurrentValue),
		amount.FormatPlain(record.ReallocatedAmount),
		amount.FormatPlain(record.NewValue),
		record.LiquidityTag,
	}
}

// ExportToTableRow converts an exported record to a table row.
func ExportToTableRow(record rebalasset.Record, currencyCode string) []string {
	return []string{
		record.Class.String(),
		record.Name,
		amount.Format(record.CurrentValue, currencyCode),
		amount.FormatSigned(record.ReallocatedAmount, currencyCode),
		amount.Format(record.NewValue, currencyCode),
		record.LiquidityTag,
	}
}

// DifferenceHeaders returns the column headers for report differences.
func DifferenceHeaders() []string {
	return []string{"CLASS", "CURRENT %", "PROPOSED %", "ADJUSTMENT", "ACTION"}
}

// DifferenceToTableRow converts a difference to a table row.
func DifferenceToTableRow(difference rebalexport.Difference) []string {
	adjustment := amount.FormatPercent(difference.Adjustment)
	if difference.Adjustment.IsPositive() {
		adjustment = "+" + adjustment
	}
	return []string{
		difference.Class.String(),
		amount.FormatPercent(difference.CurrentPercent),
		amount.FormatPercent(difference.ProposedPercent),
		adjustment,
		difference.Action.String(),
	}
}

// LiquidityHeaders returns the column headers for the liquidity profile.
func LiquidityHeaders() []string {
	return []string{"BAND", "VALUE"}
}

// BandTotalToTableRow converts a liquidity band total to a table row.
func BandTotalToTableRow(bandTotal reballiquidity.BandTotal, currencyCode string) []string {
	return []string{string(bandTotal.Band), amount.Format(bandTotal.Value, currencyCode)}
}
